package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	APIPort int    `yaml:"api_port"`
	Mode    string `yaml:"mode"` // debug / release

	// AllowedOrigins 允许携带Cookie跨域访问的前端地址列表
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // 数据库驱动: mysql, postgres (默认: mysql)
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	// Enabled 是否启用Redis（登录限流使用；禁用时退化为进程内限流）
	Enabled bool `yaml:"enabled"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// ConnectTimeout 连接超时时间（秒，默认5秒）
	ConnectTimeout int `yaml:"connect_timeout"`
	ReadTimeout    int `yaml:"read_timeout"`
	WriteTimeout   int `yaml:"write_timeout"`
	PoolSize       int `yaml:"pool_size"`
}

// Validate 验证Redis配置
func (c *RedisConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("redis host is required when enabled=true")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", c.Port)
	}
	return nil
}

// SetDefaults 设置默认值
func (c *RedisConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
}

type SecurityConfig struct {
	// JWTSecret JWT签名密钥（建议64字节或更长）
	// 生产环境必须通过配置文件或环境变量覆盖
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTLHours 会话Token有效期（小时，默认1小时）
	// 登出不做服务端吊销，Token在自然过期前始终有效
	TokenTTLHours int `yaml:"token_ttl_hours"`

	// CookieName 会话Cookie名称
	CookieName string `yaml:"cookie_name"`

	// CookieSecure 是否仅通过HTTPS下发Cookie
	CookieSecure bool `yaml:"cookie_secure"`

	// InitialAdminPassword 首次启动时种子管理员账户的密码
	InitialAdminPassword string `yaml:"initial_admin_password"`

	// LoginRateLimit 每分钟单IP允许的登录尝试次数（默认5次）
	LoginRateLimit int `yaml:"login_rate_limit"`
}

// SetDefaults 设置安全配置的默认值
func (c *SecurityConfig) SetDefaults() {
	if c.JWTSecret == "" {
		// 默认密钥仅用于开发环境
		c.JWTSecret = "k5kXoPvF0d3kJ9sR2mVnTq8yBwGhCeUzLxAaE1iZ7N4fYtDpQcMjHbS6uO0rWgI3"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 1
	}
	if c.CookieName == "" {
		c.CookieName = "token"
	}
	if c.InitialAdminPassword == "" {
		c.InitialAdminPassword = "Password123!"
	}
	if c.LoginRateLimit == 0 {
		c.LoginRateLimit = 5
	}
}

type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug / info / warn / error
	Output     string `yaml:"output"` // console / file / both
	File       string `yaml:"file"`   // 日志文件路径
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Database.SetDefaults()
	config.Redis.SetDefaults()
	config.Security.SetDefaults()

	// 支持通过环境变量覆盖数据库配置（Docker 部署时使用）
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = port
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		config.Database.Password = dbPassword
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		config.Database.DBName = dbName
	}

	// 支持通过环境变量覆盖Redis配置
	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		if enabled, err := strconv.ParseBool(redisEnabled); err == nil {
			config.Redis.Enabled = enabled
		}
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		config.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if port, err := strconv.Atoi(redisPort); err == nil {
			config.Redis.Port = port
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}

	// JWT密钥优先从环境变量读取
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		config.Security.JWTSecret = jwtSecret
	}

	config.Redis.SetDefaults()

	if err := config.Redis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}

	GlobalConfig = &config
	return &config, nil
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" || c.Driver == "postgresql" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.DBName)
	}
	// 默认 MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// SetDefaults 设置默认值
func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 100
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 3600 // 1 hour
	}
}
