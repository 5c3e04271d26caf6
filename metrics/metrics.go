// Package metrics exports widget and carousel activity as Prometheus
// metrics. A Collector is a widget.Observer: pass it to the registry with
// widget.WithObserver.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/widget"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "swipekit").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry receives the metrics. Default: a new registry.
	Registry *prometheus.Registry
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Collector counts registry and carousel events.
type Collector struct {
	registry *prometheus.Registry

	widgets      *prometheus.GaugeVec
	initialized  *prometheus.CounterVec
	ready        *prometheus.CounterVec
	destroyed    *prometheus.CounterVec
	initFailures *prometheus.CounterVec
	slides       *prometheus.CounterVec
	slideEnds    prometheus.Counter
	rebases      prometheus.Counter
	gestures     *prometheus.CounterVec
	zooms        *prometheus.CounterVec
	interrupts   prometheus.Counter
}

var _ widget.Observer = (*Collector)(nil)

// New registers the collector's metrics.
func New(opts ...Option) *Collector {
	cfg := Config{Namespace: "swipekit"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(cfg.Registry)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, labels)
	}

	return &Collector{
		registry: cfg.Registry,

		widgets: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "widgets",
			Help:        "Number of live widgets by type",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),
		initialized:  counter("widgets_initialized_total", "Total widgets created by type", "type"),
		ready:        counter("widgets_ready_total", "Total widgets that signalled ready by type", "type"),
		destroyed:    counter("widgets_destroyed_total", "Total widgets destroyed by type", "type"),
		initFailures: counter("widget_init_failures_total", "Total failed widget constructions by type", "type"),
		slides:       counter("carousel_slides_total", "Total carousel slides by direction and speed", "direction", "speed"),
		gestures:     counter("carousel_gestures_total", "Total classified carousel drags by outcome", "gesture"),
		zooms:        counter("carousel_zoom_changes_total", "Total carousel zoom changes", "zoomed"),

		slideEnds: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "carousel_slides_completed_total",
			Help:        "Total carousel slides that reached their target",
			ConstLabels: cfg.ConstLabels,
		}),
		rebases: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "carousel_rebases_total",
			Help:        "Total infinite carousel wrap-arounds",
			ConstLabels: cfg.ConstLabels,
		}),
		interrupts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "carousel_interrupts_total",
			Help:        "Total drags that interrupted a transition",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) WidgetInitialized(_ int, typ string) {
	c.initialized.WithLabelValues(typ).Inc()
	c.widgets.WithLabelValues(typ).Inc()
}

func (c *Collector) WidgetReady(_ int, typ string) {
	c.ready.WithLabelValues(typ).Inc()
}

func (c *Collector) WidgetDestroyed(_ int, typ string) {
	c.destroyed.WithLabelValues(typ).Inc()
	c.widgets.WithLabelValues(typ).Dec()
}

func (c *Collector) InitFailed(typ string, _ error) {
	c.initFailures.WithLabelValues(typ).Inc()
}

func (c *Collector) SlideStarted(_ int, forward, fast bool) {
	direction, speed := "backward", "normal"
	if forward {
		direction = "forward"
	}
	if fast {
		speed = "fast"
	}
	c.slides.WithLabelValues(direction, speed).Inc()
}

func (c *Collector) SlideEnded(int, int)                         { c.slideEnds.Inc() }
func (c *Collector) Rebased(int)                                 { c.rebases.Inc() }
func (c *Collector) Interrupted(int)                             { c.interrupts.Inc() }
func (c *Collector) GestureClassified(_ int, g carousel.Gesture) { c.gestures.WithLabelValues(g.String()).Inc() }

func (c *Collector) ZoomChanged(_ int, zoomed bool) {
	c.zooms.WithLabelValues(strconv.FormatBool(zoomed)).Inc()
}
