package database

import (
	"fmt"

	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init 初始化数据库连接、迁移表结构并写入种子数据
func Init(cfg *config.DatabaseConfig, initialAdminPassword string) error {
	cfg.SetDefaults()

	if err := InitDatabase(cfg); err != nil {
		return err
	}

	if DB == nil {
		return fmt.Errorf("database connection is nil after InitDatabase")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database connection lost before migration: %w", err)
	}

	if err := AutoMigrateAll(DB); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	if err := Seed(DB, initialAdminPassword); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	logger.Infof("Database initialized successfully")
	return nil
}

// Close 关闭数据库连接，未初始化时直接返回
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
