package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus collectors for the authorization engine.
// All metrics use the erp_authz_ namespace.
type Metrics struct {
	DecisionsTotal *prometheus.CounterVec
	ReloadsTotal   prometheus.Counter
	RelationRows   *prometheus.GaugeVec
}

// NewMetrics creates and registers engine metrics on the given registry.
// Returns nil if reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Authorization decisions by outcome and portal.",
		}, []string{"decision", "portal"}),

		ReloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "authz",
			Name:      "cache_reloads_total",
			Help:      "Full cache rebuilds from the grant store.",
		}),

		RelationRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "erp",
			Subsystem: "authz",
			Name:      "relation_rows",
			Help:      "Cached relation tuples by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.DecisionsTotal, m.ReloadsTotal, m.RelationRows)
	return m
}

func (m *Metrics) observeDecision(allowed bool, portal string) {
	if m == nil {
		return
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	m.DecisionsTotal.WithLabelValues(decision, portal).Inc()
}

func (m *Metrics) observeReload(counts map[string]int) {
	if m == nil {
		return
	}
	m.ReloadsTotal.Inc()
	for kind, count := range counts {
		m.RelationRows.WithLabelValues(kind).Set(float64(count))
	}
}
