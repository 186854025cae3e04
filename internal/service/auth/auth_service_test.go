package auth

import (
	"testing"
	"time"

	"github.com/dnzakizamani/simple-login/internal/apperr"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/dnzakizamani/simple-login/pkg/config"
)

func setupService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.UserRole{}))

	security := &config.SecurityConfig{}
	security.SetDefaults()
	svc := NewAuthService(repository.NewUserRepository(db), security)
	return svc, db
}

func createUser(t *testing.T, db *gorm.DB, username, password, status string) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Status:   status,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	svc, db := setupService(t)
	createUser(t, db, "alice", "Secret123", "active")

	user, token, err := svc.Login("alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, token)

	user, token, err = svc.Login("alice@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, db := setupService(t)
	createUser(t, db, "bob", "Secret123", "active")

	_, _, err := svc.Login("bob", "wrong")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
	// 不泄露账号是否存在：话术与账号不存在时一致
	assert.Equal(t, "用户名或密码错误", err.Error())
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.Login("nobody", "whatever")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
	assert.Equal(t, "用户名或密码错误", err.Error())
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, db := setupService(t)
	createUser(t, db, "carol", "Secret123", "inactive")

	_, _, err := svc.Login("carol", "Secret123")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestTokenRoundtrip(t *testing.T) {
	svc, db := setupService(t)
	user := createUser(t, db, "dave", "Secret123", "active")

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.ID)
	assert.Equal(t, "dave", identity.Username)
	assert.Equal(t, "dave@example.com", identity.Email)
}

func TestValidateToken_Expired(t *testing.T) {
	svc, db := setupService(t)
	user := createUser(t, db, "erin", "Secret123", "active")

	// 直接构造已过期的Token
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	security := &config.SecurityConfig{}
	security.SetDefaults()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(security.JWTSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestValidateToken_Tampered(t *testing.T) {
	svc, db := setupService(t)
	user := createUser(t, db, "frank", "Secret123", "active")

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.ValidateToken(tampered)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestValidateToken_WrongSigningKey(t *testing.T) {
	svc, db := setupService(t)
	user := createUser(t, db, "grace", "Secret123", "active")

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestValidatePasswordPolicy(t *testing.T) {
	assert.NoError(t, ValidatePasswordPolicy("Secret123"))
	assert.Error(t, ValidatePasswordPolicy("Sh0rt"), "长度不足")
	assert.Error(t, ValidatePasswordPolicy("alllowercase1"), "缺少大写字母")
	assert.Error(t, ValidatePasswordPolicy("ALLUPPERCASE1"), "缺少小写字母")
	assert.Error(t, ValidatePasswordPolicy("NoDigitsHere"), "缺少数字")
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("user@"))
	assert.Error(t, ValidateEmail("@example.com"))
	assert.Error(t, ValidateEmail("user @example.com"))
}
