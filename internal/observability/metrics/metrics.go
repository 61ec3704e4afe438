package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConsultationMetrics exposes counters/histograms for the consultation workflow.
type ConsultationMetrics struct {
	sessionsStarted   *prometheus.CounterVec
	sessionsCompleted *prometheus.CounterVec
	answersRecorded   *prometheus.CounterVec
	paymentsRecorded  *prometheus.CounterVec
	feeReviews        *prometheus.CounterVec
	answerLatency     *prometheus.HistogramVec
}

func NewConsultationMetrics(reg prometheus.Registerer) *ConsultationMetrics {
	m := &ConsultationMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthconsult",
			Subsystem: "intake",
			Name:      "sessions_started_total",
			Help:      "Total intake chat sessions started",
		}, []string{"condition"}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthconsult",
			Subsystem: "intake",
			Name:      "sessions_completed_total",
			Help:      "Total intake chat sessions completed",
		}, []string{"condition"}),
		answersRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthconsult",
			Subsystem: "intake",
			Name:      "answers_recorded_total",
			Help:      "Total intake answers recorded",
		}, []string{"status"}),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthconsult",
			Subsystem: "appointments",
			Name:      "payments_recorded_total",
			Help:      "Total appointment payment attempts",
		}, []string{"status"}),
		feeReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthconsult",
			Subsystem: "fees",
			Name:      "fee_reviews_total",
			Help:      "Total fee change request reviews",
		}, []string{"outcome"}),
		answerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthconsult",
			Subsystem: "intake",
			Name:      "answer_latency_seconds",
			Help:      "Latency of intake answer processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.sessionsStarted,
		m.sessionsCompleted,
		m.answersRecorded,
		m.paymentsRecorded,
		m.feeReviews,
		m.answerLatency,
	)
	return m
}

func (m *ConsultationMetrics) ObserveSessionStarted(condition string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(condition).Inc()
}

func (m *ConsultationMetrics) ObserveSessionCompleted(condition string) {
	if m == nil {
		return
	}
	m.sessionsCompleted.WithLabelValues(condition).Inc()
}

func (m *ConsultationMetrics) ObserveAnswer(status string) {
	if m == nil {
		return
	}
	m.answersRecorded.WithLabelValues(status).Inc()
}

func (m *ConsultationMetrics) ObservePayment(status string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(status).Inc()
}

func (m *ConsultationMetrics) ObserveFeeReview(outcome string) {
	if m == nil {
		return
	}
	m.feeReviews.WithLabelValues(outcome).Inc()
}

func (m *ConsultationMetrics) ObserveAnswerLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.answerLatency.WithLabelValues(status).Observe(seconds)
}
