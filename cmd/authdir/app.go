// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authdir/authdir/internal/auth"
	"github.com/authdir/authdir/internal/config"
	"github.com/authdir/authdir/internal/logging"
	"github.com/authdir/authdir/internal/observability"
	"github.com/authdir/authdir/internal/seed"
)

const shutdownTimeout = 5 * time.Second

// app holds the components shared by the console and serve commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	dir      *auth.Directory
}

// newApp loads configuration, sets up logging and metrics, builds the
// Directory and applies the seed file if one is configured.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(logging.Options{
		Service: "authdir",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)

	dir, err := auth.NewDirectory(auth.Config{
		AdminEmail: cfg.AdminEmail,
		Validator:  auth.NewDefaultValidator(),
		IDs:        auth.NewULIDGenerator(),
		Hasher:     auth.NewArgon2idHasher(),
		Logger:     logger,
		Recorder:   metrics,
	})
	if err != nil {
		return nil, oops.Code("DIRECTORY_INIT_FAILED").Wrap(err)
	}

	a := &app{cfg: cfg, logger: logger, registry: registry, metrics: metrics, dir: dir}
	if err := a.seed(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) seed(ctx context.Context) error {
	if a.cfg.SeedFile == "" {
		return nil
	}
	f, err := seed.LoadFile(a.cfg.SeedFile)
	if err != nil {
		return err
	}
	n, err := seed.Apply(ctx, a.dir, f, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("seed file applied", "path", a.cfg.SeedFile, "users", n)
	return nil
}

// startObservability starts the metrics and health server when configured.
// Server errors cancel ctx through cancel. The returned stop function is
// always safe to call.
func (a *app) startObservability(ctx context.Context, cancel context.CancelFunc) (func(), error) {
	if a.cfg.MetricsAddr == "" {
		return func() {}, nil
	}

	srv := observability.NewServer(a.cfg.MetricsAddr, a.registry, func() bool { return true })
	errCh, err := srv.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start observability server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, errCh, "observability", a.logger)
	a.logger.Info("observability server started", "addr", srv.Addr())

	return func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			a.logger.Warn("error stopping observability server", "error", err)
		}
	}, nil
}

// monitorServerErrors cancels ctx when a server reports an error.
// It exits when an error is received, the channel is closed or ctx ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
