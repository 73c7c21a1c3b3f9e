package observability

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

// Metrics records operation lifecycle events as Prometheus series.
type Metrics struct {
	validations   *prometheus.CounterVec
	calculations  *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	errors        *prometheus.GaugeVec
	durations     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglotter_validations_total",
				Help: "Total number of operation validation passes",
			},
			[]string{"transform", "state"},
		),
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglotter_calculations_total",
				Help: "Total number of operation calculations (cache misses)",
			},
			[]string{"transform", "category"},
		),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglotter_invalidations_total",
				Help: "Total number of operation invalidations",
			},
			[]string{"transform"},
		),
		errors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "polyglotter_operation_errors",
				Help: "Error problems reported by the last validation of each operation",
			},
			[]string{"transform", "operation"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "polyglotter_lifecycle_duration_seconds",
				Help:    "Duration of validation and calculation steps",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"event"},
		),
	}

	if reg != nil {
		var err error
		m.validations = register(reg, m.validations, &err)
		m.calculations = register(reg, m.calculations, &err)
		m.invalidations = register(reg, m.invalidations, &err)
		m.errors = register(reg, m.errors, &err)
		m.durations = register(reg, m.durations, &err)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, errp *error) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		*errp = errors.Join(*errp, err)
	}
	return c
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() grammar.Hooks {
	return grammar.Hooks{
		OnValidate: func(e *grammar.OperationEvent) {
			tid := e.TransformID.String()
			m.validations.WithLabelValues(tid, e.State.String()).Inc()
			m.errors.WithLabelValues(tid, e.OperationID.String()).Set(float64(e.Errors))
			m.durations.WithLabelValues(string(e.Type)).Observe(e.Duration.Seconds())
		},
		OnCalculate: func(e *grammar.OperationEvent) {
			m.calculations.WithLabelValues(e.TransformID.String(), e.Category.String()).Inc()
			m.durations.WithLabelValues(string(e.Type)).Observe(e.Duration.Seconds())
		},
		OnInvalidate: func(e *grammar.OperationEvent) {
			m.invalidations.WithLabelValues(e.TransformID.String()).Inc()
		},
	}
}
