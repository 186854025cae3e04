package auth

import (
	"net/http"

	"github.com/dnzakizamani/simple-login/internal/api/middleware"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/service/access"
	authsvc "github.com/dnzakizamani/simple-login/internal/service/auth"
	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService   *authsvc.AuthService
	accessService *access.AccessService
	security      *config.SecurityConfig
}

func NewAuthHandler(
	authService *authsvc.AuthService,
	accessService *access.AccessService,
	security *config.SecurityConfig,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		accessService: accessService,
		security:      security,
	}
}

// Login 登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "登录凭证"
// @Success 200 {object} model.Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误"))
		return
	}

	user, token, err := h.authService.Login(req.Identifier, req.Password)
	if err != nil {
		model.HandleError(c, err)
		return
	}

	// 会话Token走HttpOnly Cookie，前端JS不可读
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.security.CookieName,
		token,
		int(h.authService.TokenTTL().Seconds()),
		"/",
		"",
		h.security.CookieSecure,
		true,
	)

	roles, err := h.accessService.GetUserRoles(user.ID)
	if err != nil {
		model.HandleError(c, err)
		return
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	c.JSON(http.StatusOK, model.Success(gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"roles":    roleNames,
		},
	}))
}

// Logout 登出
// 仅清除Cookie，不做服务端吊销：已签发的Token在自然过期前仍然有效
// @Summary 用户登出
// @Tags auth
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.security.CookieName, "", -1, "/", "", h.security.CookieSecure, true)
	c.JSON(http.StatusOK, model.Success(nil))
}

// Me 当前会话信息：身份、角色和聚合后的权限并集
// @Summary 当前用户信息
// @Tags auth
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	roles, err := h.accessService.GetUserRoles(identity.ID)
	if err != nil {
		model.HandleError(c, err)
		return
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	permissions, err := h.accessService.PermissionsForUser(identity.ID)
	if err != nil {
		model.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(gin.H{
		"id":          identity.ID,
		"username":    identity.Username,
		"email":       identity.Email,
		"roles":       roleNames,
		"permissions": permissions,
	}))
}
