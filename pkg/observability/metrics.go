package observability

import (
	"net/http"

	"github.com/agnivade/levenshtein"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// Metrics records scrambler activity in a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	Transitions      *prometheus.CounterVec
	TransitionFrames prometheus.Histogram
	Distance         prometheus.Histogram
	Frames           prometheus.Counter
	Animating        prometheus.Gauge
	Advances         *prometheus.CounterVec
	Flips            prometheus.Counter
}

var _ ports.FrameSink = (*Metrics)(nil)

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scramble_transitions_total",
				Help: "Transitions by outcome (started, settled, superseded)",
			},
			[]string{"outcome"},
		),
		TransitionFrames: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scramble_transition_frames",
				Help:    "Frames rendered by settled transitions",
				Buckets: prometheus.LinearBuckets(10, 10, 8),
			},
		),
		Distance: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scramble_transition_distance",
				Help:    "Edit distance between the old and new text of each transition",
				Buckets: prometheus.ExponentialBuckets(1, 2, 7),
			},
		),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scramble_frames_total",
			Help: "Total number of rendered frames",
		}),
		Animating: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scramble_animating",
			Help: "1 while a transition is in flight",
		}),
		Advances: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scramble_advances_total",
				Help: "Sequence advances by trigger (auto, manual)",
			},
			[]string{"trigger"},
		),
		Flips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scramble_flips_total",
			Help: "Total number of companion flips",
		}),
	}
	m.registry.MustRegister(m.Transitions, m.TransitionFrames, m.Distance, m.Frames, m.Animating, m.Advances, m.Flips)
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransitionStart: func(e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues("started").Inc()
			m.Distance.Observe(float64(levenshtein.ComputeDistance(e.From, e.To)))
			m.Animating.Set(1)
		},
		OnTransitionSettle: func(e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues("settled").Inc()
			m.TransitionFrames.Observe(float64(e.Frames))
			m.Animating.Set(0)
		},
		OnTransitionSupersede: func(e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues("superseded").Inc()
			m.Animating.Set(0)
		},
		OnAdvance: func(e *domain.AdvanceEvent) {
			trigger := "auto"
			if e.Manual {
				trigger = "manual"
			}
			m.Advances.WithLabelValues(trigger).Inc()
		},
		OnFlip: func(e *domain.AdvanceEvent) {
			m.Flips.Inc()
		},
	}
}

// Render implements ports.FrameSink by counting frames.
func (m *Metrics) Render(domain.Frame) {
	m.Frames.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
