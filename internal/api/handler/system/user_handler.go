package system

import (
	"net/http"
	"strconv"

	"github.com/dnzakizamani/simple-login/internal/apperr"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
	authsvc "github.com/dnzakizamani/simple-login/internal/service/auth"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserHandler struct {
	userRepo    *repository.UserRepository
	roleRepo    *repository.RoleRepository
	authService *authsvc.AuthService
}

func NewUserHandler(
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	authService *authsvc.AuthService,
) *UserHandler {
	return &UserHandler{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		authService: authService,
	}
}

// ListUsers 分页获取用户列表，支持按用户名/邮箱模糊搜索
// @Summary 获取用户列表
// @Tags users
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param search query string false "搜索关键字"
// @Success 200 {object} model.Response
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	users, total, err := h.userRepo.FindPaged(page, limit, search)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询用户失败", err))
		return
	}

	userIDs := make([]string, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}
	rolesByUser, err := h.userRepo.GetRolesForUsers(userIDs)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询用户角色失败", err))
		return
	}

	result := make([]model.UserWithRoles, 0, len(users))
	for _, u := range users {
		uwr := model.UserWithRoles{User: u, Roles: []string{}, RoleIDs: []string{}}
		for _, role := range rolesByUser[u.ID] {
			uwr.Roles = append(uwr.Roles, role.Name)
			uwr.RoleIDs = append(uwr.RoleIDs, role.ID)
		}
		result = append(result, uwr)
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(result, total, page, limit)))
}

// GetUser 获取单个用户及其角色
// @Summary 获取单个用户
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.Response
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")

	user, err := h.userRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "用户不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询用户失败", err))
		return
	}

	roles, err := h.userRepo.GetUserRoles(id)
	if err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询用户角色失败", err))
		return
	}

	uwr := model.UserWithRoles{User: *user, Roles: []string{}, RoleIDs: []string{}}
	for _, role := range roles {
		uwr.Roles = append(uwr.Roles, role.Name)
		uwr.RoleIDs = append(uwr.RoleIDs, role.ID)
	}

	c.JSON(http.StatusOK, model.Success(uwr))
}

// CreateUser 创建用户
// @Summary 创建用户
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.CreateUserRequest true "用户信息"
// @Success 200 {object} model.Response
// @Router /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	if err := authsvc.ValidateEmail(req.Email); err != nil {
		model.HandleError(c, err)
		return
	}
	if err := authsvc.ValidatePasswordPolicy(req.Password); err != nil {
		model.HandleError(c, err)
		return
	}

	if err := h.checkUniqueness(req.Username, req.Email, ""); err != nil {
		model.HandleError(c, err)
		return
	}

	if err := h.validateRoleIDs(req.RoleIDs); err != nil {
		model.HandleError(c, err)
		return
	}

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		model.HandleError(c, err)
		return
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	user := model.User{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Gender:   req.Gender,
		Status:   status,
	}
	if err := h.userRepo.Create(&user); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "创建用户失败", err))
		return
	}

	if len(req.RoleIDs) > 0 {
		if err := h.userRepo.ReplaceRoles(user.ID, req.RoleIDs); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "分配角色失败", err))
			return
		}
	}

	logger.Infof("User created: %s by %s", user.Username, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(user))
}

// UpdateUser 更新用户，零值字段不变更
// @Summary 更新用户
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body model.UpdateUserRequest true "用户信息"
// @Success 200 {object} model.Response
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误"))
		return
	}

	user, err := h.userRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "用户不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询用户失败", err))
		return
	}

	if req.Email != "" {
		if err := authsvc.ValidateEmail(req.Email); err != nil {
			model.HandleError(c, err)
			return
		}
	}
	// 重名检查排除自身，改回原名不算冲突
	if err := h.checkUniqueness(req.Username, req.Email, id); err != nil {
		model.HandleError(c, err)
		return
	}

	updates := model.User{ID: id}
	if req.Username != "" {
		updates.Username = req.Username
	}
	if req.Email != "" {
		updates.Email = req.Email
	}
	if req.Status != "" {
		updates.Status = req.Status
	}
	if req.Password != "" {
		if err := authsvc.ValidatePasswordPolicy(req.Password); err != nil {
			model.HandleError(c, err)
			return
		}
		hashed, err := h.authService.HashPassword(req.Password)
		if err != nil {
			model.HandleError(c, err)
			return
		}
		updates.Password = hashed
	}

	if err := h.userRepo.Update(&updates); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "更新用户失败", err))
		return
	}
	if req.Gender != nil {
		if err := h.userRepo.UpdateGender(id, *req.Gender); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "更新用户失败", err))
			return
		}
	}

	if req.RoleIDs != nil {
		if err := h.validateRoleIDs(*req.RoleIDs); err != nil {
			model.HandleError(c, err)
			return
		}
		if err := h.userRepo.ReplaceRoles(id, *req.RoleIDs); err != nil {
			model.HandleError(c, apperr.Wrap(apperr.Internal, "分配角色失败", err))
			return
		}
	}

	logger.Infof("User updated: %s by %s", user.Username, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

// DeleteUser 删除用户
// @Summary 删除用户
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.Response
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	// 禁止删除自己的账号
	if id == c.GetString("user_id") {
		model.HandleError(c, apperr.New(apperr.ValidationFailed, "不能删除当前登录的账号"))
		return
	}

	user, err := h.userRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			model.HandleError(c, apperr.New(apperr.NotFound, "用户不存在"))
			return
		}
		model.HandleError(c, apperr.Wrap(apperr.Internal, "查询用户失败", err))
		return
	}

	if err := h.userRepo.Delete(id); err != nil {
		model.HandleError(c, apperr.Wrap(apperr.Internal, "删除用户失败", err))
		return
	}

	logger.Infof("User deleted: %s by %s", user.Username, c.GetString("username"))
	c.JSON(http.StatusOK, model.Success(nil))
}

// checkUniqueness 用户名和邮箱的唯一性检查，excludeID 排除自身
func (h *UserHandler) checkUniqueness(username, email, excludeID string) error {
	if username != "" {
		existing, err := h.userRepo.FindByUsername(username)
		if err != nil && err != gorm.ErrRecordNotFound {
			return apperr.Wrap(apperr.Internal, "查询用户失败", err)
		}
		if existing != nil && existing.ID != excludeID {
			return apperr.New(apperr.Conflict, "用户名已被使用")
		}
	}
	if email != "" {
		existing, err := h.userRepo.FindByEmail(email)
		if err != nil && err != gorm.ErrRecordNotFound {
			return apperr.Wrap(apperr.Internal, "查询用户失败", err)
		}
		if existing != nil && existing.ID != excludeID {
			return apperr.New(apperr.Conflict, "邮箱已被使用")
		}
	}
	return nil
}

// validateRoleIDs 校验角色ID全部存在
func (h *UserHandler) validateRoleIDs(roleIDs []string) error {
	if len(roleIDs) == 0 {
		return nil
	}
	roles, err := h.roleRepo.FindByIDs(roleIDs)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "查询角色失败", err)
	}
	if len(roles) != len(roleIDs) {
		return apperr.New(apperr.ValidationFailed, "包含不存在的角色")
	}
	return nil
}
