package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatch counters. Each worker process registers one set.
type Metrics struct {
	EventsTotal      *prometheus.CounterVec
	SendGridTotal    *prometheus.CounterVec
	BlacklistedTotal *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_delivery_events_total",
				Help: "The total number of email delivery events for the specified type.",
			},
			[]string{"email_type"},
		),
		SendGridTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_delivery_sendgrid_emails_total",
				Help: "The total number of email delivery events with types that use SendGrid",
			},
			[]string{"email_type"},
		),
		BlacklistedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_delivery_blacklisted_emails_total",
				Help: "The total number of email delivery events for black listed emails",
			},
			[]string{"email"}, // literal recipient address
		),
	}
}

func (m *Metrics) MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		m.EventsTotal,
		m.SendGridTotal,
		m.BlacklistedTotal,
	)
}
