package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/directory/internal/api"
	"github.com/wolfeidau/directory/internal/directory"
	"github.com/wolfeidau/directory/internal/logger"
)

type ServeCmd struct {
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"DIRECTORY_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"DIRECTORY_CORS_ORIGINS"`

	// Rate limiting per client IP
	RateLimit  int           `help:"requests allowed per client IP per window, 0 disables" default:"100" env:"DIRECTORY_RATE_LIMIT"`
	RateWindow time.Duration `help:"rate limit window" default:"1m" env:"DIRECTORY_RATE_WINDOW"`

	Telemetry   TelemetryFlags   `embed:""`
	Store       StoreFlags       `embed:""`
	AWS         AWSFlags         `embed:"" prefix:"aws-"`
	Development DevelopmentFlags `embed:""`
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	defer c.Telemetry.initTelemetry(ctx, log, globals.Version)()

	if c.Development.Development {
		if _, err := c.Development.setupDevelopment(ctx, log, &c.AWS, &c.Store); err != nil {
			return err
		}
	}

	stores, closeStores, err := openStores(ctx, log, &c.Store, &c.AWS)
	if err != nil {
		return err
	}
	defer closeStores()

	handler := api.NewRouter(api.NewHandler(directory.NewService(stores)), api.RouterConfig{
		Logger:         log,
		AllowedOrigins: c.CORSOrigins,
		RateLimit:      c.RateLimit,
		RateWindow:     c.RateWindow,
	})

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
