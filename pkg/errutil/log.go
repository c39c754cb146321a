// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

// Package errutil logs and inspects oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Attrs returns the structured attributes of err: the message, and for oops
// errors also the code, domain and context.
func Attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil && code != "" {
		attrs = append(attrs, "code", code)
	}
	if domain := oopsErr.Domain(); domain != "" {
		attrs = append(attrs, "domain", domain)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}

// Log logs err at level with its structured attributes.
func Log(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, err error) {
	logger.Log(ctx, level, msg, Attrs(err)...)
}

// LogError logs err at error level.
func LogError(logger *slog.Logger, msg string, err error) {
	Log(context.Background(), logger, slog.LevelError, msg, err)
}
