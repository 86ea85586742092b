package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoiceMetrics exposes counters/histograms for the call flow.
type VoiceMetrics struct {
	callsAnswered *prometheus.CounterVec
	turnsTotal    *prometheus.CounterVec
	bookingsTotal *prometheus.CounterVec
	turnLatency   prometheus.Histogram
}

func NewVoiceMetrics(reg prometheus.Registerer) *VoiceMetrics {
	m := &VoiceMetrics{
		callsAnswered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceline",
			Subsystem: "voice",
			Name:      "calls_answered_total",
			Help:      "Total inbound calls answered",
		}, []string{"status"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceline",
			Subsystem: "voice",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"step", "outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceline",
			Subsystem: "voice",
			Name:      "bookings_total",
			Help:      "Total appointments committed",
		}, []string{"trigger"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voiceline",
			Subsystem: "voice",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one utterance-to-reply turn",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsAnswered, m.turnsTotal, m.bookingsTotal, m.turnLatency)
	return m
}

func (m *VoiceMetrics) ObserveCallAnswered(status string) {
	if m == nil {
		return
	}
	m.callsAnswered.WithLabelValues(status).Inc()
}

func (m *VoiceMetrics) ObserveTurn(step, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(step, outcome).Inc()
}

func (m *VoiceMetrics) ObserveBooking(trigger string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(trigger).Inc()
}

func (m *VoiceMetrics) ObserveTurnLatency(seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.Observe(seconds)
}
