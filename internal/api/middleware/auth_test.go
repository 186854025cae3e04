package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
	"github.com/dnzakizamani/simple-login/internal/service/access"
	authsvc "github.com/dnzakizamani/simple-login/internal/service/auth"
	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const testCookie = "token"

type testEnv struct {
	db     *gorm.DB
	auth   *authsvc.AuthService
	access *access.AccessService
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
	return &testEnv{
		db:   db,
		auth: authsvc.NewAuthService(userRepo, security),
		access: access.NewAccessService(
			userRepo,
			repository.NewRoleRepository(db),
			repository.NewMenuRepository(db),
		),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, roleNames ...string) *model.User {
	t.Helper()
	user := &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Status:   "active",
	}
	require.NoError(t, e.db.Create(user).Error)
	for _, rn := range roleNames {
		var role model.Role
		err := e.db.Where("name = ?", rn).First(&role).Error
		if err == gorm.ErrRecordNotFound {
			role = model.Role{ID: uuid.New().String(), Name: rn}
			require.NoError(t, e.db.Create(&role).Error)
		} else {
			require.NoError(t, err)
		}
		require.NoError(t, e.db.Create(&model.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
	}
	return user
}

func (e *testEnv) router(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(e.auth, testCookie)}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("username")})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	env := setupEnv(t)
	r := env.router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	env := setupEnv(t)
	r := env.router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "garbage"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidCookie(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "alice")
	token, err := env.auth.GenerateToken(user)
	require.NoError(t, err)

	r := env.router()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthMiddleware_BearerFallback(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "bob")
	token, err := env.auth.GenerateToken(user)
	require.NoError(t, err)

	r := env.router()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "carol", "admin")
	token, err := env.auth.GenerateToken(user)
	require.NoError(t, err)

	r := env.router(RequireRole(env.access, "admin"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "dave", "user")
	token, err := env.auth.GenerateToken(user)
	require.NoError(t, err)

	r := env.router(RequireRole(env.access, "admin"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_RevocationTakesEffectNextRequest(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "erin", "admin")
	token, err := env.auth.GenerateToken(user)
	require.NoError(t, err)

	r := env.router(RequireRole(env.access, "admin"))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// 撤销角色后，同一个Token的下一个请求被拒绝
	require.NoError(t, env.db.Delete(&model.UserRole{}, "user_id = ?", user.ID).Error)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
