package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dnzakizamani/simple-login/internal/api/middleware"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
	"github.com/dnzakizamani/simple-login/internal/service/access"
	authsvc "github.com/dnzakizamani/simple-login/internal/service/auth"
	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	security *config.SecurityConfig
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Role{}, &model.Permission{}, &model.Menu{},
		&model.UserRole{}, &model.RolePermission{}, &model.MenuPermission{},
	))

	security := &config.SecurityConfig{}
	security.SetDefaults()

	userRepo := repository.NewUserRepository(db)
	authService := authsvc.NewAuthService(userRepo, security)
	accessService := access.NewAccessService(
		userRepo,
		repository.NewRoleRepository(db),
		repository.NewMenuRepository(db),
	)
	handler := NewAuthHandler(authService, accessService, security)

	r := gin.New()
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/logout", handler.Logout)
	r.GET("/auth/me", middleware.AuthMiddleware(authService, security.CookieName), handler.Me)

	return &testEnv{db: db, router: r, security: security}
}

func (e *testEnv) createUser(t *testing.T, username, password string) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Status:   "active",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) login(t *testing.T, identifier, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(model.LoginRequest{Identifier: identifier, Password: password})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_SetsHTTPOnlyCookie(t *testing.T) {
	env := setupEnv(t)
	env.createUser(t, "alice", "Secret123")

	w := env.login(t, "alice", "Secret123")
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(w, env.security.CookieName)
	require.NotNil(t, cookie, "登录成功必须下发会话Cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
	assert.Positive(t, cookie.MaxAge)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := setupEnv(t)
	env.createUser(t, "alice", "Secret123")

	w := env.login(t, "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w, env.security.CookieName))
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := setupEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w, env.security.CookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestMe_ReturnsRolesAndPermissions(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "alice", "Secret123")

	role := &model.Role{ID: uuid.New().String(), Name: "editor"}
	require.NoError(t, env.db.Create(role).Error)
	perm := &model.Permission{ID: uuid.New().String(), Name: "post:write"}
	require.NoError(t, env.db.Create(perm).Error)
	require.NoError(t, env.db.Create(&model.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
	require.NoError(t, env.db.Create(&model.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)

	login := env.login(t, "alice", "Secret123")
	require.Equal(t, http.StatusOK, login.Code)
	cookie := sessionCookie(login, env.security.CookieName)
	require.NotNil(t, cookie)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "editor")
	assert.Contains(t, w.Body.String(), "post:write")
}

func TestMe_WithoutSession(t *testing.T) {
	env := setupEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
