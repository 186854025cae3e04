package system

import (
	"net/http"
	"strconv"

	"github.com/dnzakizamani/simple-login/internal/apperr"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
	"github.com/dnzakizamani/simple-login/internal/service/access"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuHandler struct {
	menuRepo      *repository.MenuRepository
	permRepo      *repository.PermissionRepository
	accessService *access.AccessService
}

func NewMenuHandler(
	menuRepo *repository.MenuRepository,
	permRepo *repository.PermissionRepository,
	accessService *access.AccessService,
) *MenuHandler {
	return &MenuHandler{
		menuRepo:      menuRepo,
		permRepo:      permRepo,
		accessService: accessService,
	}
}

// UserMenus 当前用户可见的菜单树
// 按用户权限过滤：未绑定权限的菜单所有人可见，绑定了权限的持有任一即可见
// @Summary 获取当前用户的菜单树
// @Tags menus
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/menus/user [get]
func (h *MenuHandler) UserMenus(c *gin.Context) {
	userID := c.GetString("user_id")

	tree, err := h.accessService.VisibleMenus(userID)
	if err != nil {
		model.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(tree))
}

// ListMenus 分页获取菜单（管理端，平铺列表带父菜单名和权限ID）
// @Summary 获取菜单列表
// @Tags menus
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param search query string false "按名称搜索"
// @Success 200 {object} model.Response
// @Router /api/menus [get]
func (h *MenuHandler) ListMenus(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	search := c.Query("search")
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	menus, total, err := h.menuRepo.FindPaged(page, limit, search)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询菜单失败", err))
		return
	}

	menuIDs := make([]string, 0, len(menus))
	parentIDSet := make(map[string]struct{})
	for _, m := range menus {
		menuIDs = append(menuIDs, m.ID)
		if m.ParentID != "" {
			parentIDSet[m.ParentID] = struct{}{}
		}
	}

	permsByMenu, err := h.menuRepo.GetPermissionIDsForMenus(menuIDs)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询菜单权限失败", err))
		return
	}

	// 父菜单可能不在当前页，单独按ID取名称
	nameByID := make(map[string]string, len(parentIDSet))
	if len(parentIDSet) > 0 {
		parentIDs := make([]string, 0, len(parentIDSet))
		for id := range parentIDSet {
			parentIDs = append(parentIDs, id)
		}
		parents, err := h.menuRepo.FindByIDs(parentIDs)
		if err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "查询父菜单失败", err))
			return
		}
		for _, p := range parents {
			nameByID[p.ID] = p.Name
		}
	}

	result := make([]model.MenuWithPermissions, 0, len(menus))
	for _, m := range menus {
		mwp := model.MenuWithPermissions{Menu: m, PermissionIDs: []string{}}
		if m.ParentID != "" {
			mwp.ParentName = nameByID[m.ParentID]
		}
		if ids := permsByMenu[m.ID]; ids != nil {
			mwp.PermissionIDs = ids
		}
		result = append(result, mwp)
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(result, total, page, limit)))
}

// GetMenu 获取单个菜单
// @Summary 获取单个菜单
// @Tags menus
// @Produce json
// @Param id path string true "Menu ID"
// @Success 200 {object} model.Response
// @Router /api/menus/{id} [get]
func (h *MenuHandler) GetMenu(c *gin.Context) {
	id := c.Param("id")

	menu, err := h.menuRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "菜单不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询菜单失败", err))
		return
	}

	permIDs, err := h.menuRepo.GetMenuPermissionIDs(id)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询菜单权限失败", err))
		return
	}

	mwp := model.MenuWithPermissions{Menu: *menu, PermissionIDs: permIDs}
	if mwp.PermissionIDs == nil {
		mwp.PermissionIDs = []string{}
	}
	c.JSON(http.StatusOK, model.Success(mwp))
}

// CreateMenu 创建菜单
// @Summary 创建菜单
// @Tags menus
// @Accept json
// @Produce json
// @Param request body model.CreateMenuRequest true "菜单信息"
// @Success 200 {object} model.Response
// @Router /api/menus [post]
func (h *MenuHandler) CreateMenu(c *gin.Context) {
	var req model.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	if err := h.checkNameUnique(req.Name, ""); err != nil {
		model.HandleError(c, err)
		return
	}
	if err := h.validateParent(req.ParentID, ""); err != nil {
		model.HandleError(c, err)
		return
	}
	if err := h.validatePermissionIDs(req.PermissionIDs); err != nil {
		model.HandleError(c, err)
		return
	}

	menu := model.Menu{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Path:     req.Path,
		Icon:     req.Icon,
		ParentID: req.ParentID,
		Sort:     req.Sort,
	}
	if err := h.menuRepo.Create(&menu); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "创建菜单失败", err))
		return
	}

	if len(req.PermissionIDs) > 0 {
		if err := h.menuRepo.ReplacePermissions(menu.ID, req.PermissionIDs); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "绑定菜单权限失败", err))
			return
		}
	}

	logger.Infof("Menu created: %s by %s", menu.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(menu))
}

// UpdateMenu 更新菜单，零值字段不变更
// @Summary 更新菜单
// @Tags menus
// @Accept json
// @Produce json
// @Param id path string true "Menu ID"
// @Param request body model.UpdateMenuRequest true "菜单信息"
// @Success 200 {object} model.Response
// @Router /api/menus/{id} [put]
func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误"))
		return
	}

	menu, err := h.menuRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "菜单不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询菜单失败", err))
		return
	}

	if req.Name != "" {
		if err := h.checkNameUnique(req.Name, id); err != nil {
			model.HandleError(c, err)
			return
		}
	}
	if req.ParentID != nil {
		if err := h.validateParent(*req.ParentID, id); err != nil {
			model.HandleError(c, err)
			return
		}
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Path != nil {
		fields["path"] = *req.Path
	}
	if req.Icon != nil {
		fields["icon"] = *req.Icon
	}
	if req.ParentID != nil {
		fields["parent_id"] = *req.ParentID
	}
	if req.Sort != nil {
		fields["sort"] = *req.Sort
	}
	if err := h.menuRepo.UpdateFields(id, fields); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "更新菜单失败", err))
		return
	}

	if req.PermissionIDs != nil {
		if err := h.validatePermissionIDs(*req.PermissionIDs); err != nil {
			model.HandleError(c, err)
			return
		}
		if err := h.menuRepo.ReplacePermissions(id, *req.PermissionIDs); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "绑定菜单权限失败", err))
			return
		}
	}

	logger.Infof("Menu updated: %s by %s", menu.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

// DeleteMenu 删除菜单，存在子菜单时拒绝
// @Summary 删除菜单
// @Tags menus
// @Produce json
// @Param id path string true "Menu ID"
// @Success 200 {object} model.Response
// @Router /api/menus/{id} [delete]
func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	id := c.Param("id")

	menu, err := h.menuRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "菜单不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询菜单失败", err))
		return
	}

	children, err := h.menuRepo.CountChildren(id)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询子菜单失败", err))
		return
	}
	if children > 0 {
		model.HandleError(c, apperr.New(apperr.ReferentialBlock, "该菜单下存在子菜单，请先删除子菜单"))
		return
	}

	if err := h.menuRepo.Delete(id); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "删除菜单失败", err))
		return
	}

	logger.Infof("Menu deleted: %s by %s", menu.Name, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

func (h *MenuHandler) checkNameUnique(name, excludeID string) error {
	existing, err := h.menuRepo.FindByName(name)
	if err != nil && err != gorm.ErrRecordNotFound {
		return apperr.Wrap(apperr.Internal, "查询菜单失败", err)
	}
	if existing != nil && existing.ID != excludeID {
		return apperr.New(apperr.Conflict, "菜单名称已被使用")
	}
	return nil
}

// validateParent 父菜单校验：必须存在、不能是自己、只允许挂在顶级菜单下
func (h *MenuHandler) validateParent(parentID, selfID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == selfID {
		return apperr.New(apperr.ValidationFailed, "菜单不能作为自己的父菜单")
	}
	parent, err := h.menuRepo.FindByID(parentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.New(apperr.ValidationFailed, "父菜单不存在")
		}
		return apperr.Wrap(apperr.Internal, "查询菜单失败", err)
	}
	if parent.ParentID != "" {
		return apperr.New(apperr.ValidationFailed, "只支持两级菜单，父菜单必须是顶级菜单")
	}
	return nil
}

func (h *MenuHandler) validatePermissionIDs(permissionIDs []string) error {
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
