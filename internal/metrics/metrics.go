package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for operation counters.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Seed row result labels.
const (
	SeedInserted = "inserted"
	SeedSkipped  = "skipped"
	SeedInvalid  = "invalid"
)

// Metrics provides observability for SWIFT code operations and seeding.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SeedRows          *prometheus.CounterVec
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swiftcodes_operations_total",
			Help: "Total number of SWIFT code operations by outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swiftcodes_operation_duration_seconds",
			Help:    "Duration of SWIFT code operations including store access",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		SeedRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swiftcodes_seed_rows_total",
			Help: "Rows processed by the CSV seeder by result",
		}, []string{"result"}),
	}
}

// ObserveOperation records one operation. Call with time.Now() taken at the
// start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// AddSeedRows records n seeded rows with the given result.
func (m *Metrics) AddSeedRows(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SeedRows.WithLabelValues(result).Add(float64(n))
}
