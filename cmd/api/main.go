package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub-backend/pkg/container"
	"novelhub-backend/pkg/logger"
)

const (
	// export xlsx earnings và upload cover chậm hơn request thường
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	poolCheckEvery  = time.Minute
)

func main() {
	// .env chỉ được load trong config.Load(), APP_ENV ở đây đọc từ system env
	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "novelhub api: %v\n", err)
		os.Exit(1)
	}
}

// run phục vụ HTTP tới khi nhận SIGINT/SIGTERM hoặc listener lỗi
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("init container: %w", err)
	}
	defer app.Cleanup()

	router, limiters := SetupRouter(app)
	defer limiters.Stop()

	go app.DB.MonitorPoolHealth(ctx, poolCheckEvery)

	cfg := app.Config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        router,
		ReadTimeout:    requestTimeout,
		WriteTimeout:   requestTimeout,
		IdleTimeout:    2 * requestTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("novelhub api listening", map[string]interface{}{
			"port":         cfg.App.Port,
			"env":          cfg.App.Environment,
			"version":      cfg.App.Version,
			"auto_migrate": cfg.Database.AutoMigrate,
			"paypal_mock":  cfg.PayPal.ClientID == "" && !cfg.IsProduction(),
		})
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on :%s: %w", cfg.App.Port, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down novelhub api", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
