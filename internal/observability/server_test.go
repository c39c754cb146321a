// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func startServer(t *testing.T, srv *Server) string {
	t.Helper()
	if _, err := srv.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})
	addr := srv.Addr()
	if addr == "" {
		t.Fatal("server address is empty")
	}
	return addr
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test-only local URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	registry := NewRegistry()
	metrics := NewMetrics(registry)
	addr := startServer(t, NewServer("127.0.0.1:0", registry, func() bool { return true }))

	metrics.RecordAuthOperation("login", "ok")
	metrics.RecordAuthOperation("login", "AUTH_INCORRECT_PASSWORD")
	metrics.SetUsersRegistered(3)
	metrics.ConnectionOpened("tcp")

	status, body := get(t, "http://"+addr+"/metrics")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}

	for _, want := range []string{
		"# HELP",
		"go_",
		"process_",
		`authdir_operations_total{operation="login",outcome="ok"} 1`,
		`authdir_operations_total{operation="login",outcome="AUTH_INCORRECT_PASSWORD"} 1`,
		"authdir_users_registered 3",
		`authdir_connections_total{transport="tcp"} 1`,
		"authdir_active_connections 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_Connections(t *testing.T) {
	metrics := NewMetrics(NewRegistry())

	metrics.ConnectionOpened("stdio")
	metrics.ConnectionOpened("tcp")
	metrics.ConnectionClosed()

	if got := testutil.ToFloat64(metrics.ActiveConnections); got != 1 {
		t.Errorf("active connections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ConnectionsTotal.WithLabelValues("tcp")); got != 1 {
		t.Errorf("tcp connections = %v, want 1", got)
	}
}

func TestServer_Liveness(t *testing.T) {
	addr := startServer(t, NewServer("127.0.0.1:0", nil, func() bool { return false }))

	status, body := get(t, "http://"+addr+"/healthz/liveness")
	if status != http.StatusOK || body != "ok\n" {
		t.Errorf("liveness = %d %q", status, body)
	}
}

func TestServer_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checker    ReadinessChecker
		wantStatus int
		wantBody   string
	}{
		{"ready", func() bool { return true }, http.StatusOK, "ok\n"},
		{"not ready", func() bool { return false }, http.StatusServiceUnavailable, "not ready\n"},
		{"nil checker", nil, http.StatusOK, "ok\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startServer(t, NewServer("127.0.0.1:0", nil, tt.checker))

			status, body := get(t, "http://"+addr+"/healthz/readiness")
			if status != tt.wantStatus || body != tt.wantBody {
				t.Errorf("readiness = %d %q, want %d %q", status, body, tt.wantStatus, tt.wantBody)
			}
		})
	}
}

func TestServer_DoubleStartFails(t *testing.T) {
	srv := NewServer("127.0.0.1:0", nil, nil)
	startServer(t, srv)

	if _, err := srv.Start(); err == nil {
		t.Error("expected second Start to fail")
	}
}

func TestServer_StopIdempotent(t *testing.T) {
	srv := NewServer("127.0.0.1:0", nil, nil)
	ctx := context.Background()

	if err := srv.Stop(ctx); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
	startServer(t, srv)
	if err := srv.Stop(ctx); err != nil {
		t.Errorf("first Stop: %v", err)
	}
	if err := srv.Stop(ctx); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestServer_ErrorChannelClosesOnShutdown(t *testing.T) {
	srv := NewServer("127.0.0.1:0", nil, nil)
	errCh, err := srv.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case err, ok := <-errCh:
		if ok {
			t.Errorf("expected closed channel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("error channel not closed after shutdown")
	}
}
