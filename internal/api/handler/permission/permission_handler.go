package permission

import (
	"net/http"
	"strconv"

	"github.com/dnzakizamani/simple-login/internal/apperr"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PermissionHandler struct {
	permRepo *repository.PermissionRepository
}

func NewPermissionHandler(permRepo *repository.PermissionRepository) *PermissionHandler {
	return &PermissionHandler{permRepo: permRepo}
}

// ListPermissions 分页获取权限列表，支持按名称模糊搜索
// @Summary 获取权限列表
// @Tags permissions
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param search query string false "搜索关键字"
// @Success 200 {object} model.Response
// @Router /api/permissions [get]
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	perms, total, err := h.permRepo.FindPaged(page, limit, search)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询权限失败", err))
		return
	}
	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(perms, total, page, limit)))
}

// GetPermission 获取单个权限
// @Summary 获取单个权限
// @Tags permissions
// @Produce json
// @Param id path string true "Permission ID"
// @Success 200 {object} model.Response
// @Router /api/permissions/{id} [get]
func (h *PermissionHandler) GetPermission(c *gin.Context) {
	id := c.Param("id")

	perm, err := h.permRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "权限不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询权限失败", err))
		return
	}
	c.JSON(http.StatusOK, model.Success(perm))
}

// CreatePermission 创建权限
// @Summary 创建权限
// @Tags permissions
// @Accept json
// @Produce json
// @Param request body model.CreatePermissionRequest true "权限信息"
// @Success 200 {object} model.Response
// @Router /api/permissions [post]
func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	var req model.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	if err := h.checkNameUnique(req.Name, ""); err != nil {
		model.HandleError(c, err)
		return
	}

	perm := model.Permission{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.permRepo.Create(&perm); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "创建权限失败", err))
		return
	}

	logger.Infof("Permission created: %s by %s", perm.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(perm))
}

// UpdatePermission 更新权限，零值字段不变更
// @Summary 更新权限
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path string true "Permission ID"
// @Param request body model.UpdatePermissionRequest true "权限信息"
// @Success 200 {object} model.Response
// @Router /api/permissions/{id} [put]
func (h *PermissionHandler) UpdatePermission(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误"))
		return
	}

	perm, err := h.permRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "权限不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询权限失败", err))
		return
	}

	if req.Name != "" {
		// 重名检查排除自身，改回原名不算冲突
		if err := h.checkNameUnique(req.Name, id); err != nil {
			model.HandleError(c, err)
			return
		}
		if err := h.permRepo.Update(&model.Permission{ID: id, Name: req.Name}); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "更新权限失败", err))
			return
		}
	}
	if req.Description != nil {
		if err := h.permRepo.UpdateDescription(id, *req.Description); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "更新权限失败", err))
			return
		}
	}

	logger.Infof("Permission updated: %s by %s", perm.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

// DeletePermission 删除权限，仍有角色引用时拒绝
// @Summary 删除权限
// @Tags permissions
// @Produce json
// @Param id path string true "Permission ID"
// @Success 200 {object} model.Response
// @Router /api/permissions/{id} [delete]
func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	id := c.Param("id")

	perm, err := h.permRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "权限不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询权限失败", err))
		return
	}

	refs, err := h.permRepo.CountRoleRefs(id)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询权限引用失败", err))
		return
	}
	if refs > 0 {
		model.HandleError(c, apperr.New(apperr.ReferentialBlock, "该权限仍被角色引用，请先从角色中移除"))
		return
	}

	if err := h.permRepo.Delete(id); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "删除权限失败", err))
		return
	}

	logger.Infof("Permission deleted: %s by %s", perm.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

func (h *PermissionHandler) checkNameUnique(name, excludeID string) error {
	existing, err := h.permRepo.FindByName(name)
	if err != nil && err != gorm.ErrRecordNotFound {
		return apperr.Wrap(apperr.Internal, "查询权限失败", err)
	}
	if existing != nil && existing.ID != excludeID {
		return apperr.New(apperr.Conflict, "权限名称已被使用")
	}
	return nil
}
