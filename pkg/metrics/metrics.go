// Package metrics exposes navigation metrics as a Prometheus
// collector. The Observer plugs into the router's observer slot and
// records one sample per navigation attempt.
//
// Metrics collected:
//   - zenith_navigations_total: counter of navigations by path and outcome
//   - zenith_navigation_duration_seconds: histogram of navigation duration by path
//   - zenith_navigations_inflight: gauge of currently running navigations
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	obs := metrics.New(metrics.WithRegistry(reg))
//
//	r, err := router.New(&router.Config{
//	    Routes:    routes,
//	    Observers: []router.Observer{obs},
//	    ...
//	})
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zenith-dev/zenith/pkg/router"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "zenith").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// PathLabel maps a navigated path to the label value recorded for
	// it. Dynamic routes produce unbounded raw paths, so hosts that
	// navigate to many distinct URLs should map each path to its route
	// pattern here to keep label cardinality down. Default: identity.
	PathLabel func(path string) string
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithPathLabel sets the path-to-label mapping.
func WithPathLabel(fn func(path string) string) Option {
	return func(c *Config) {
		c.PathLabel = fn
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "zenith",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer records navigation metrics. It implements router.Observer.
type Observer struct {
	pathLabel           func(string) string
	navigationsTotal    *prometheus.CounterVec
	navigationDuration  *prometheus.HistogramVec
	navigationsInflight prometheus.Gauge
}

// New builds an observer registered against the configured registry.
// Registering two observers with identical metric names on the same
// registry panics, as Prometheus registration always does; use Default
// for a process-wide shared instance.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	return &Observer{
		pathLabel: config.PathLabel,

		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigation attempts by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),

		navigationsInflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_inflight",
			Help:        "Number of navigations currently in flight",
			ConstLabels: config.ConstLabels,
		}),
	}
}

var (
	defaultObserver     *Observer
	defaultObserverOnce sync.Once
)

// Default returns the process-wide observer, registered on the default
// Prometheus registerer the first time it is called. Options passed to
// later calls are ignored.
func Default(opts ...Option) *Observer {
	defaultObserverOnce.Do(func() {
		defaultObserver = New(opts...)
	})
	return defaultObserver
}

// NavigationStarted implements router.Observer.
func (o *Observer) NavigationStarted(ctx context.Context, path string, token uint64) context.Context {
	o.navigationsInflight.Inc()
	return ctx
}

// NavigationCompleted implements router.Observer.
func (o *Observer) NavigationCompleted(ctx context.Context, path string, token uint64, outcome router.Outcome, elapsed time.Duration) {
	if path == "" {
		path = "/"
	}
	if o.pathLabel != nil {
		path = o.pathLabel(path)
	}
	o.navigationsInflight.Dec()
	o.navigationDuration.WithLabelValues(path).Observe(elapsed.Seconds())
	o.navigationsTotal.WithLabelValues(path, outcome.String()).Inc()
}
