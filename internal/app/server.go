package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnzakizamani/simple-login/internal/api/router"
	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/dnzakizamani/simple-login/pkg/database"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	pkgredis "github.com/dnzakizamani/simple-login/pkg/redis"
)

// StartServer 启动 HTTP 服务器，阻塞到收到退出信号后优雅关闭
func StartServer(cfg *config.Config, handlers *Handlers, services *Services) {
	r := router.Setup(
		cfg,
		handlers.Auth,
		handlers.User,
		handlers.Menu,
		handlers.Role,
		handlers.Permission,
		services.Auth,
		services.Access,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.APIPort)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	logger.Infof("Simple Login API server listening on %s (mode: %s)", addr, cfg.Server.Mode)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Infof("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP server shutdown error: %v", err)
	}

	if err := database.Close(); err != nil {
		logger.Warnf("Database close error: %v", err)
	}

	if cfg.Redis.Enabled {
		if err := pkgredis.Close(); err != nil {
			logger.Warnf("Redis close error: %v", err)
		}
	}

	logger.Infof("Shutdown complete")
	logger.Sync()
}
