package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/temperature-chart/internal/api/http"
	"github.com/i474232898/temperature-chart/internal/weather"
)

// serveCmd runs a local preview server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chart and the cleaned series over HTTP",
	Long: `Starts a preview server that re-reads the export on every request.

Endpoints:
  GET /health
  GET /chart                          interactive chart page
  GET /api/v1/series?from=&to=        cleaned readings as JSON
  GET /api/v1/summary                 row counts and temperature range`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func newApp(service *weather.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "temperature-chart",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "temperature-chart",
		})
	})

	httpapi.RegisterRoutes(app, service)
	return app
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service, err := newService(cfg)
	if err != nil {
		return err
	}

	app := newApp(service)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("preview server listening", zap.String("port", cfg.Port), zap.String("input", cfg.Input))
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-listenErr:
		if err == nil {
			return nil
		}
		logger.Error("fiber server stopped", zap.Error(err))
		return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
		return err
	}
	return nil
}
