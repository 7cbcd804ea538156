package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters, incremented by the workflow package and scraped
// from /metrics.
var (
	TranscriptsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_transcripts_processed_total",
		Help: "Transcripts handled, by extraction status.",
	}, []string{"status"})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_decisions_total",
		Help: "Decision button presses handled, by outcome.",
	}, []string{"outcome"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_emails_sent_total",
		Help: "Notification emails attempted, by delivery status.",
	}, []string{"status"})
)
