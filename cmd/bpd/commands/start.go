package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dtn-stack/bplib/cmd/bpd/httpapi"
	"github.com/dtn-stack/bplib/internal/logger"
	"github.com/dtn-stack/bplib/pkg/config"
	"github.com/dtn-stack/bplib/pkg/metrics"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bpd daemon",
	Long: `Start opens every channel described by the configuration file and
serves an operational HTTP surface (liveness, readiness, stats, and
optionally Prometheus metrics) until interrupted.

Use --config to point at a specific configuration file. Without it, bpd
looks for $XDG_CONFIG_HOME/bplib/config.yaml and falls back to built-in
defaults if nothing is found.

Examples:
  # Start with the default configuration search path
  bpd start

  # Start with a specific configuration file
  bpd start --config /etc/bplib/config.yaml

  # Start with environment variable overrides
  BPLIB_LOGGING_LEVEL=DEBUG bpd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	metrics.Init(cfg.Metrics.Enabled)
	logger.Info("starting bpd",
		"channels", len(cfg.Channels),
		"metrics_enabled", metrics.IsEnabled(),
		"config_source", getConfigSource(GetConfigFile()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channels, err := config.OpenChannels(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open channels: %w", err)
	}
	defer func() {
		for name, ch := range channels {
			if err := ch.Close(); err != nil {
				logger.Warn("error closing channel", logger.Channel(name), logger.Err(err))
			}
		}
	}()

	for name := range channels {
		logger.Info("channel open", logger.Channel(name))
	}

	var httpServer *http.Server
	serverDone := make(chan error, 1)
	if cfg.Metrics.Port != 0 {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: httpapi.NewRouter(channels, metrics.GetRegistry()),
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverDone <- err
				return
			}
			serverDone <- nil
		}()
		logger.Info("http server listening", "addr", httpServer.Addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("bpd is running, press ctrl+c to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("http server error", logger.Err(err))
			return err
		}
	}

	cancel()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", logger.Err(err))
			return err
		}
	}

	logger.Info("bpd stopped gracefully")
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
