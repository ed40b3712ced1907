// Package observability exposes Prometheus metrics for the mapper runtime.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics of one runtime instance. Each
// Collector owns a private registry, so isolated instances per test never
// collide on registration.
type Collector struct {
	registry *prometheus.Registry

	// Session lifecycle
	SessionsOpened   *prometheus.CounterVec
	SessionsReleased *prometheus.CounterVec

	// Dispatch
	DispatchFaults   *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec

	// Resolver
	ProxiesBuilt *prometheus.CounterVec
}

// NewCollector creates a metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	sessionsOpened := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Total number of sessions opened by the dispatcher",
		},
		[]string{"environment", "contract"},
	)

	sessionsReleased := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_released_total",
			Help:      "Total number of sessions released by the dispatcher",
		},
		[]string{"environment", "contract"},
	)

	dispatchFaults := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_faults_total",
			Help:      "Total number of delegated calls that returned an error",
		},
		[]string{"environment", "contract"},
	)

	dispatchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of delegated mapper calls, session lifecycle included",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"environment", "contract"},
	)

	proxiesBuilt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxies_built_total",
			Help:      "Total number of mapper proxies materialized",
		},
		[]string{"environment", "contract"},
	)

	registry.MustRegister(
		sessionsOpened,
		sessionsReleased,
		dispatchFaults,
		dispatchDuration,
		proxiesBuilt,
	)

	return &Collector{
		registry:         registry,
		SessionsOpened:   sessionsOpened,
		SessionsReleased: sessionsReleased,
		DispatchFaults:   dispatchFaults,
		DispatchDuration: dispatchDuration,
		ProxiesBuilt:     proxiesBuilt,
	}
}

// Registry returns the underlying Prometheus registry for exposition.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveDispatch records one completed dispatch. A nil Collector is a no-op,
// so the dispatcher works without metrics wired in.
func (c *Collector) ObserveDispatch(environment, contract string, d time.Duration, faulted bool) {
	if c == nil {
		return
	}
	c.DispatchDuration.WithLabelValues(environment, contract).Observe(d.Seconds())
	if faulted {
		c.DispatchFaults.WithLabelValues(environment, contract).Inc()
	}
}

// SessionOpened records one session acquisition. Nil-safe.
func (c *Collector) SessionOpened(environment, contract string) {
	if c == nil {
		return
	}
	c.SessionsOpened.WithLabelValues(environment, contract).Inc()
}

// SessionReleased records one session release. Nil-safe.
func (c *Collector) SessionReleased(environment, contract string) {
	if c == nil {
		return
	}
	c.SessionsReleased.WithLabelValues(environment, contract).Inc()
}

// ProxyBuilt records one proxy materialization. Nil-safe.
func (c *Collector) ProxyBuilt(environment, contract string) {
	if c == nil {
		return
	}
	c.ProxiesBuilt.WithLabelValues(environment, contract).Inc()
}
