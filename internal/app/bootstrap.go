package app

import (
	"log"
	"os"

	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/dnzakizamani/simple-login/pkg/database"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	pkgredis "github.com/dnzakizamani/simple-login/pkg/redis"
)

// Bootstrap 初始化基础设施（logger, database, redis）
func Bootstrap(cfgPath string) (*config.Config, error) {
	// 支持通过环境变量指定配置文件路径
	if cfgPath == "" {
		cfgPath = os.Getenv("SIMPLE_LOGIN_CONFIG")
		if cfgPath == "" {
			cfgPath = "config/config.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := database.Init(&cfg.Database, cfg.Security.InitialAdminPassword); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis 可选，仅登录限流使用；连接失败降级为进程内限流
	if err := pkgredis.Init(&cfg.Redis); err != nil {
		logger.Warnf("Redis initialization failed: %v", err)
	}

	return cfg, nil
}
