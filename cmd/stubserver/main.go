// The stubserver command runs an in-memory notes service implementing the
// HTTP surface the client expects: token issue and refresh, note CRUD and a
// health endpoint. Meant for local development and demos only.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/noteshq/notesctl/internal/models"
	"golang.org/x/time/rate"
)

func main() {
	// Logging setup
	slog.SetDefault(jsonLogger)
	// Load configuration
	config, err := getConfig()
	if err != nil {
		slog.Error("loading the configuration failed", "error", err)
		os.Exit(1)
	}
	if config.Debug {
		logLevel.Set(slog.LevelDebug)
	}
	// Setup
	e := echo.New()
	requestIDs := models.NewRandomGenerator(16)
	e.Pre(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			id, err := requestIDs.ID()
			if err != nil {
				return ""
			}
			return id
		},
	}))
	e.Use(middleware.Recover(), requestLogger)
	// The banner and the port do not respect the logger formatting so we remove them,
	// the port is logged further down when the server starts.
	e.HideBanner = true
	e.HidePort = true
	// The store and the demo account
	store := newNoteStore()
	store.addUser("demo", "demo")
	if config.SeedFile != "" {
		if err := store.loadSeed(config.SeedFile); err != nil {
			slog.Error("loading the seed file failed", "error", err)
			os.Exit(1)
		}
		slog.Info("loaded seed data", "path", config.SeedFile)
	}
	srv := &server{store: store, minter: newTokenMinter(config.Tokens), debug: config.Debug}
	// Rate limiting for the credentials endpoint
	loginMiddlewares := []echo.MiddlewareFunc{}
	if config.RateLimits.Enabled {
		loginMiddlewares = append(loginMiddlewares, middleware.RateLimiter(
			middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(config.RateLimits.Rate),
					Burst:     config.RateLimits.Burst,
					ExpiresIn: 3 * time.Minute,
				}),
		))
	}
	srv.registerHandlers(e, loginMiddlewares...)
	// Prometheus
	if config.Metrics.Enabled {
		e.Use(echoprometheus.NewMiddleware("stubserver"))
		go func() {
			metrics := echo.New()
			metrics.HideBanner = true
			metrics.HidePort = true
			metrics.GET("/metrics", echoprometheus.NewHandler())
			err := metrics.Start(fmt.Sprintf(":%d", config.Metrics.Port))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("prometheus server failed to start", "error", err)
				os.Exit(1)
			}
		}()
	}
	// Start server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	slog.Info("starting the stub notes server on address " + address)
	go func() {
		err := e.Start(address)
		if err != nil && err != http.ErrServerClosed {
			slog.Error("starting the server failed", "error", err)
			os.Exit(1)
		}
	}()
	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("received signal to shut down the server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("shutting down the server gracefully failed", "error", err)
		os.Exit(1)
	}
}
