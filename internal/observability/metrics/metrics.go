package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters for webhook dialogue turns.
type DialogueMetrics struct {
	turnsTotal *prometheus.CounterVec
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sereneminds",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total webhook dialogue turns by intent and outcome",
		}, []string{"intent", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal)
	return m
}

// ObserveTurn records one webhook turn.
func (m *DialogueMetrics) ObserveTurn(intent, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, outcome).Inc()
}

// MessagingMetrics exposes counters for outbound WhatsApp campaigns.
type MessagingMetrics struct {
	campaignsTotal *prometheus.CounterVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		campaignsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sereneminds",
			Subsystem: "messaging",
			Name:      "campaigns_total",
			Help:      "Total outbound WhatsApp campaign sends by campaign and status",
		}, []string{"campaign", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.campaignsTotal)
	return m
}

// ObserveCampaign records one campaign send attempt.
func (m *MessagingMetrics) ObserveCampaign(campaign, status string) {
	if m == nil {
		return
	}
	m.campaignsTotal.WithLabelValues(campaign, status).Inc()
}
