package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDatabase 初始化数据库连接（支持 MySQL 和 PostgreSQL）
func InitDatabase(cfg *config.DatabaseConfig) error {
	var err error
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres", "postgresql":
		if err := createPostgresDatabase(cfg); err != nil {
			return fmt.Errorf("failed to create PostgreSQL database: %w", err)
		}
		dialector = postgres.Open(cfg.DSN())
	case "mysql", "":
		if err := createMySQLDatabase(cfg); err != nil {
			return fmt.Errorf("failed to create MySQL database: %w", err)
		}
		dialector = mysql.Open(cfg.DSN())
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", cfg.Driver)
	}

	logger.Infof("Connecting to %s database...", cfg.Driver)

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns > cfg.MaxOpenConns {
		maxIdleConns = cfg.MaxOpenConns
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Database connection verified: MaxOpenConns=%d, MaxIdleConns=%d, ConnMaxLifetime=%ds",
		cfg.MaxOpenConns, maxIdleConns, cfg.ConnMaxLifetime)
	return nil
}

// AutoMigrateAll 迁移全部表结构
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.Menu{},
		&model.UserRole{},
		&model.RolePermission{},
		&model.MenuPermission{},
	)
}

// createMySQLDatabase 创建 MySQL 数据库（如果不存在）
// 使用 database/sql 而不是 GORM，避免影响主连接
func createMySQLDatabase(cfg *config.DatabaseConfig) error {
	dsnWithoutDB := fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port)

	db, err := sql.Open("mysql", dsnWithoutDB)
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL server: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Second)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping MySQL server: %w", err)
	}

	createDBSQL := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.DBName)
	if _, err := db.Exec(createDBSQL); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	logger.Infof("Database '%s' created or already exists", cfg.DBName)
	return nil
}

// createPostgresDatabase 创建 PostgreSQL 数据库（如果不存在）
func createPostgresDatabase(cfg *config.DatabaseConfig) error {
	dsnPostgres := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password)

	db, err := sql.Open("postgres", dsnPostgres)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Second)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	var count int64
	checkSQL := "SELECT COUNT(*) FROM pg_database WHERE datname = $1"
	if err := db.QueryRow(checkSQL, cfg.DBName).Scan(&count); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := db.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	logger.Infof("Database '%s' created", cfg.DBName)
	return nil
}
