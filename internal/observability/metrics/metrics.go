package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the phone intake flow.
type IntakeMetrics struct {
	turnsTotal        *prometheus.CounterVec
	turnLatency       *prometheus.HistogramVec
	dispositionsTotal *prometheus.CounterVec
	sinkTotal         *prometheus.CounterVec
	distanceTotal     *prometheus.CounterVec
	webhookTotal      *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashcar",
			Subsystem: "intake",
			Name:      "turns_total",
			Help:      "Total caller turns processed by step and outcome",
		}, []string{"step", "outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cashcar",
			Subsystem: "intake",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a single intake turn including collaborator calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		dispositionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashcar",
			Subsystem: "intake",
			Name:      "dispositions_total",
			Help:      "Calls that reached a terminal disposition",
		}, []string{"disposition"}),
		sinkTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashcar",
			Subsystem: "leads",
			Name:      "sink_writes_total",
			Help:      "Lead sink writes by sink and status",
		}, []string{"sink", "status"}),
		distanceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashcar",
			Subsystem: "distance",
			Name:      "lookups_total",
			Help:      "Driving distance lookups by status",
		}, []string{"status"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashcar",
			Subsystem: "voice",
			Name:      "webhook_total",
			Help:      "Total inbound Twilio voice webhooks",
		}, []string{"route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.dispositionsTotal, m.sinkTotal, m.distanceTotal, m.webhookTotal)
	return m
}

func (m *IntakeMetrics) ObserveTurn(step, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(step, outcome).Inc()
	m.turnLatency.WithLabelValues(step).Observe(seconds)
}

func (m *IntakeMetrics) ObserveDisposition(disposition string) {
	if m == nil {
		return
	}
	m.dispositionsTotal.WithLabelValues(disposition).Inc()
}

// ObserveSinkResult records one lead write. A nil err counts as "ok".
func (m *IntakeMetrics) ObserveSinkResult(sink string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sinkTotal.WithLabelValues(sink, status).Inc()
}

func (m *IntakeMetrics) ObserveDistance(status string) {
	if m == nil {
		return
	}
	m.distanceTotal.WithLabelValues(status).Inc()
}

func (m *IntakeMetrics) ObserveWebhook(route, status string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(route, status).Inc()
}
