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

type RoleHandler struct {
	roleRepo *repository.RoleRepository
	permRepo *repository.PermissionRepository
}

func NewRoleHandler(roleRepo *repository.RoleRepository, permRepo *repository.PermissionRepository) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo, permRepo: permRepo}
}

// ListRoles 分页获取角色列表及其权限，支持按名称模糊搜索
// @Summary 获取角色列表
// @Tags roles
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param search query string false "搜索关键字"
// @Success 200 {object} model.Response
// @Router /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	roles, total, err := h.roleRepo.FindPaged(page, limit, search)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询角色失败", err))
		return
	}

	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}
	permsByRole, err := h.roleRepo.GetPermissionsByRole(roleIDs)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询角色权限失败", err))
		return
	}

	result := make([]model.RoleWithPermissions, 0, len(roles))
	for _, role := range roles {
		rwp := model.RoleWithPermissions{Role: role, Permissions: []string{}, PermissionIDs: []string{}}
		for _, p := range permsByRole[role.ID] {
			rwp.Permissions = append(rwp.Permissions, p.Name)
			rwp.PermissionIDs = append(rwp.PermissionIDs, p.ID)
		}
		result = append(result, rwp)
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(result, total, page, limit)))
}

// GetRole 获取单个角色及其权限
// @Summary 获取单个角色
// @Tags roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} model.Response
// @Router /api/roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	id := c.Param("id")

	role, err := h.roleRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "角色不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询角色失败", err))
		return
	}

	perms, err := h.roleRepo.GetRolePermissions(id)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询角色权限失败", err))
		return
	}

	rwp := model.RoleWithPermissions{Role: *role, Permissions: []string{}, PermissionIDs: []string{}}
	for _, p := range perms {
		rwp.Permissions = append(rwp.Permissions, p.Name)
		rwp.PermissionIDs = append(rwp.PermissionIDs, p.ID)
	}

	c.JSON(http.StatusOK, model.Success(rwp))
}

// CreateRole 创建角色
// @Summary 创建角色
// @Tags roles
// @Accept json
// @Produce json
// @Param request body model.CreateRoleRequest true "角色信息"
// @Success 200 {object} model.Response
// @Router /api/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req model.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	if err := h.checkNameUnique(req.Name, ""); err != nil {
		model.HandleError(c, err)
		return
	}
	if err := h.validatePermissionIDs(req.PermissionIDs); err != nil {
		model.HandleError(c, err)
		return
	}

	role := model.Role{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.roleRepo.Create(&role); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "创建角色失败", err))
		return
	}

	if len(req.PermissionIDs) > 0 {
		if err := h.roleRepo.ReplacePermissions(role.ID, req.PermissionIDs); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "分配权限失败", err))
			return
		}
	}

	logger.Infof("Role created: %s by %s", role.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(role))
}

// UpdateRole 更新角色，零值字段不变更
// @Summary 更新角色
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body model.UpdateRoleRequest true "角色信息"
// @Success 200 {object} model.Response
// @Router /api/roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误"))
		return
	}

	role, err := h.roleRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "角色不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询角色失败", err))
		return
	}

	if req.Name != "" {
		// 重名检查排除自身，改回原名不算冲突
		if err := h.checkNameUnique(req.Name, id); err != nil {
			model.HandleError(c, err)
			return
		}
		if err := h.roleRepo.Update(&model.Role{ID: id, Name: req.Name}); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "更新角色失败", err))
			return
		}
	}
	if req.Description != nil {
		if err := h.roleRepo.UpdateDescription(id, *req.Description); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "更新角色失败", err))
			return
		}
	}

	if req.PermissionIDs != nil {
		if err := h.validatePermissionIDs(*req.PermissionIDs); err != nil {
			model.HandleError(c, err)
			return
		}
		if err := h.roleRepo.ReplacePermissions(id, *req.PermissionIDs); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "分配权限失败", err))
			return
		}
	}

	logger.Infof("Role updated: %s by %s", role.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

// DeleteRole 删除角色，仍有用户持有该角色时拒绝
// @Summary 删除角色
// @Tags roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} model.Response
// @Router /api/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id := c.Param("id")

	role, err := h.roleRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "角色不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询角色失败", err))
		return
	}

	members, err := h.roleRepo.CountMembers(id)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询角色成员失败", err))
		return
	}
	if members > 0 {
		model.HandleError(c, apperr.New(apperr.ReferentialBlock, "该角色下仍有用户，请先移除用户"))
		return
	}

	if err := h.roleRepo.Delete(id); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "删除角色失败", err))
		return
	}

	logger.Infof("Role deleted: %s by %s", role.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

func (h *RoleHandler) checkNameUnique(name, excludeID string) error {
	existing, err := h.roleRepo.FindByName(name)
	if err != nil && err != gorm.ErrRecordNotFound {
		return apperr.Wrap(apperr.Internal, "查询角色失败", err)
	}
	if existing != nil && existing.ID != excludeID {
		return apperr.New(apperr.Conflict, "角色名称已被使用")
	}
	return nil
}

func (h *RoleHandler) validatePermissionIDs(permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	perms, err := h.permRepo.FindByIDs(permissionIDs)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "查询权限失败", err)
	}
	if len(perms) != len(permissionIDs) {
		return apperr.New(apperr.ValidationFailed, "包含不存在的权限")
	}
	return nil
}
