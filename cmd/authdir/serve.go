// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/authdir/authdir/internal/console"
)

// NewConsoleCmd creates the console subcommand.
func NewConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Run an interactive console on standard input and output",
		Args:  cobra.NoArgs,
		RunE:  runConsole,
	}
}

func runConsole(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stopObs, err := a.startObservability(ctx, cancel)
	if err != nil {
		return err
	}
	defer stopObs()

	c, err := console.NewWithLogger(a.dir, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
	if err != nil {
		return err
	}

	// A blocked read on stdin cannot be interrupted, so run the console
	// alongside the signal wait.
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		a.logger.Info("console interrupted")
		return nil
	}
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the console over TCP, one session per connection",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, cancel, a, func(addr string) {
		cmd.Println("Listening on " + addr)
	})
}

// serve runs the line server until ctx ends. ready is called once the
// listener is bound.
func serve(ctx context.Context, cancel context.CancelFunc, a *app, ready func(addr string)) error {
	stopObs, err := a.startObservability(ctx, cancel)
	if err != nil {
		return err
	}
	defer stopObs()

	srv, err := console.NewServer(a.cfg.ListenAddr, a.dir, a.logger, a.metrics)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case <-srv.Listening():
		if ready != nil {
			ready(srv.Addr())
		}
	case err := <-done:
		return err
	}

	err = <-done
	a.logger.Info("shutdown complete")
	return err
}
