// @title           Department Survey API
// @version         1.0
// @description     Cross-department satisfaction surveys, remarks and reporting.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deptsurvey/config"
	_ "deptsurvey/docs"
	"deptsurvey/services"
	"deptsurvey/storage"
	"deptsurvey/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := storage.Open(cfg, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := storage.Migrate(db, log); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var revoker services.TokenRevoker
	if cfg.RedisAddr != "" {
		rr, err := services.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rr.Close()
		revoker = rr
		log.WithField("addr", cfg.RedisAddr).Info("Token revocation backed by Redis")
	} else {
		revoker = services.NewMemoryRevoker()
		log.Warn("REDIS_ADDR not set; revoked tokens are kept in memory")
	}

	app := NewApp(cfg, db, revoker, log)

	seed := services.Seed{
		Departments:   cfg.SeedDepartments,
		AdminUsername: cfg.SeedAdminUsername,
		AdminPassword: cfg.SeedAdminPassword,
		AdminEmail:    cfg.SeedAdminEmail,
	}
	if err := services.Provision(context.Background(), app.DepartmentRepo, app.UserRepo, seed, log); err != nil {
		log.Fatalf("Provisioning failed: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server exiting")
}
