// Package metrics holds the Prometheus collectors for export activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Export status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Exports counts exporter runs and the size of what they rendered.
type Exports struct {
	total *prometheus.CounterVec
	rows  *prometheus.HistogramVec
}

// NewExports creates the export collectors and registers them with reg.
func NewExports(reg prometheus.Registerer) (*Exports, error) {
	m := &Exports{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvexport_exports_total",
				Help: "Total number of CSV exports by sink and outcome.",
			},
			[]string{"sink", "status"},
		),
		rows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "csvexport_export_rows",
				Help:    "Number of records per successful CSV export.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"sink"},
		),
	}

	for _, c := range []prometheus.Collector{m.total, m.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one exporter run. A nil receiver is a no-op.
func (m *Exports) Observe(sink string, rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.total.WithLabelValues(sink, StatusError).Inc()
		return
	}
	m.total.WithLabelValues(sink, StatusSuccess).Inc()
	m.rows.WithLabelValues(sink).Observe(float64(rows))
}
