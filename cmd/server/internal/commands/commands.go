package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/telemetry"
)

const serviceName = "directory"

type Globals struct {
	Debug   bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

type TelemetryFlags struct {
	Tracing          bool    `help:"enable telemetry export" default:"false" env:"DIRECTORY_TRACING"`
	TraceSampleRatio float64 `help:"fraction of traces sampled" default:"1" env:"DIRECTORY_TRACE_SAMPLE_RATIO"`
}

// initTelemetry starts the exporters when enabled and returns a func that flushes them.
func (t *TelemetryFlags) initTelemetry(ctx context.Context, log zerolog.Logger, version string) func() {
	if !t.Tracing {
		return func() {}
	}

	log.Info().Msg("Telemetry is enabled")
	shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
		ServiceName: serviceName,
		Version:     version,
		SampleRatio: t.TraceSampleRatio,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}
