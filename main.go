package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DevotionLoop/controllers"
	"github.com/DevotionLoop/initializers"
	"github.com/DevotionLoop/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	initializers.LoadEnv()

	cfg, err := initializers.LoadConfig()
	if err != nil {
		panic(err)
	}

	if err := initializers.InitLogger(cfg.LogLevel, cfg.GinMode == gin.DebugMode); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, pool, err := initializers.ConnectDB(ctx, cfg.DBURL)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := initializers.CreateSchema(ctx, pool); err != nil {
			zap.L().Fatal("Failed to create schema", zap.Error(err))
		}
	}

	push := services.NewPushNotificationService(db)
	if cfg.PushEnabled {
		if err := push.InitFCM(ctx, cfg.FirebaseCredentialsPath); err != nil {
			zap.L().Warn("Push notifications disabled", zap.Error(err))
		}
	}

	email := services.NewEmailService(cfg.ResendAPIKey, cfg.ResendFromEmail)

	ctl := controllers.NewController(db, services.NewNotifier(db, push, email), controllers.SessionConfig{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           initializers.NewRouter(cfg, ctl),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info("Server starting", zap.String("addr", cfg.Addr()))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Error("Server closed", zap.Error(err))
		return
	}

	zap.L().Info("Server stopped")
}
