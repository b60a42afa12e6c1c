// Package metrics объявляет счётчики Prometheus, публикуемые на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExplainRequests считает обработанные запросы объяснений
	// по источнику результата: cache, llm или local.
	ExplainRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefe_explain_requests_total",
		Help: "Processed explain requests by result source.",
	}, []string{"source"})

	// WebhookEvents считает принятые webhook-события по типу и результату.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "briefe_webhook_events_total",
		Help: "Received payment provider webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	// CheckoutSessions считает созданные checkout сессии.
	CheckoutSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "briefe_checkout_sessions_total",
		Help: "Created provider checkout sessions.",
	})
)
