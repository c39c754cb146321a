// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics contains the directory's Prometheus metrics. It satisfies
// auth.Recorder.
type Metrics struct {
	AuthOperationsTotal *prometheus.CounterVec
	UsersRegistered     prometheus.Gauge
	ConnectionsTotal    *prometheus.CounterVec
	ActiveConnections   prometheus.Gauge
}

// NewRegistry creates a registry preloaded with Go runtime and process
// collectors, so the default global registry stays untouched.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// NewMetrics creates and registers the directory metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdir_operations_total",
				Help: "Total number of directory operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UsersRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "authdir_users_registered",
				Help: "Number of registered users",
			},
		),
		ConnectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdir_connections_total",
				Help: "Total number of console connections by transport",
			},
			[]string{"transport"},
		),
		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "authdir_active_connections",
				Help: "Number of open console connections",
			},
		),
	}

	reg.MustRegister(m.AuthOperationsTotal, m.UsersRegistered, m.ConnectionsTotal, m.ActiveConnections)
	return m
}

// RecordAuthOperation counts one directory operation outcome.
func (m *Metrics) RecordAuthOperation(operation, outcome string) {
	m.AuthOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// SetUsersRegistered publishes the registry size.
func (m *Metrics) SetUsersRegistered(n int) {
	m.UsersRegistered.Set(float64(n))
}

// ConnectionOpened records a new console connection.
func (m *Metrics) ConnectionOpened(transport string) {
	m.ConnectionsTotal.WithLabelValues(transport).Inc()
	m.ActiveConnections.Inc()
}

// ConnectionClosed records the end of a console connection.
func (m *Metrics) ConnectionClosed() {
	m.ActiveConnections.Dec()
}
