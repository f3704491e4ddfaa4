package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nodecore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests served, by path and status code.",
		}, []string{"path", "code"},
	)
	nodeInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "nodecore",
			Subsystem: "node",
			Name:      "info",
			Help:      "Static node identity labels; value is always 1.",
		}, []string{"name", "version", "role"},
	)
	nodeUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nodecore",
			Subsystem: "node",
			Name:      "up",
			Help:      "1 while the node is registered and serving, 0 after shutdown begins.",
		},
	)
	registryEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nodecore",
			Subsystem: "registry",
			Name:      "events_total",
			Help:      "Number of registry store operations by kind (register, status, log).",
		}, []string{"kind"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{httpRequests, nodeInfo, nodeUp, registryEvents}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncRequest(path, code string) {
	if regOK.Load() {
		httpRequests.WithLabelValues(path, code).Inc()
	}
}

func SetNodeInfo(name, version, role string) {
	if regOK.Load() {
		nodeInfo.WithLabelValues(name, version, role).Set(1)
	}
}

func SetNodeUp(up bool) {
	if regOK.Load() {
		v := 0.0
		if up {
			v = 1
		}
		nodeUp.Set(v)
	}
}

func IncRegistryEvent(kind string) {
	if regOK.Load() {
		registryEvents.WithLabelValues(kind).Inc()
	}
}
