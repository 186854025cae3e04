package auth

import (
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/dnzakizamani/simple-login/internal/apperr"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/dnzakizamani/simple-login/pkg/metrics"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Claims JWT载荷，只携带身份信息
// 角色和权限不进Token，每次请求实时查库，授权变更下一个请求即生效
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepo *repository.UserRepository
	security *config.SecurityConfig
}

func NewAuthService(userRepo *repository.UserRepository, security *config.SecurityConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		security: security,
	}
}

// Login 校验凭证并签发会话Token
// identifier 可以是用户名或邮箱；凭证错误时返回统一话术，不泄露账号是否存在
func (s *AuthService) Login(identifier, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByIdentifier(identifier)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, "", apperr.New(apperr.Unauthenticated, "用户名或密码错误")
		}
		return nil, "", apperr.Wrap(apperr.Internal, "查询用户失败", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		logger.Warnf("Login failed for user %s: invalid password", user.Username)
		return nil, "", apperr.New(apperr.Unauthenticated, "用户名或密码错误")
	}

	if user.Status != "active" {
		metrics.LoginAttemptsTotal.WithLabelValues("disabled").Inc()
		logger.Warnf("Login rejected for user %s: status=%s", user.Username, user.Status)
		return nil, "", apperr.New(apperr.Forbidden, "账号已被禁用")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "生成Token失败", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	logger.Infof("User %s logged in", user.Username)
	return user, token, nil
}

// GenerateToken 签发HS256会话Token
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.security.TokenTTLHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "simple-login",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.security.JWTSecret))
}

// ValidateToken 验证Token签名和有效期，返回其中的身份信息
// 任何解析失败（过期、篡改、算法不符）都归一为未认证错误
func (s *AuthService) ValidateToken(tokenString string) (*model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.security.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.Unauthenticated, "会话无效或已过期")
	}

	return &model.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// TokenTTL 会话有效期，下发Cookie的MaxAge与之对齐
func (s *AuthService) TokenTTL() time.Duration {
	return time.Duration(s.security.TokenTTLHours) * time.Hour
}

// HashPassword 生成密码的bcrypt哈希
func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "密码哈希失败", err)
	}
	return string(hashed), nil
}

// ValidatePasswordPolicy 密码策略：至少8位，包含大写字母、小写字母和数字
func ValidatePasswordPolicy(password string) error {
	if len(password) < 8 {
		return apperr.New(apperr.ValidationFailed, "密码长度至少8位")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return apperr.New(apperr.ValidationFailed, "密码必须包含大写字母、小写字母和数字")
	}
	return nil
}

// ValidateEmail 邮箱格式校验
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.New(apperr.ValidationFailed, "邮箱格式不正确")
	}
	return nil
}
