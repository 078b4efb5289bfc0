// Package metrics exposes Prometheus counters for the call front end.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CallsAnswered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promptline_calls_answered_total",
		Help: "Inbound calls that reached the IVR menu",
	})

	Keypresses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptline_keypresses_total",
		Help: "DTMF keypresses received, by normalized digit",
	}, []string{"digit"})

	OutboundCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptline_outbound_calls_total",
		Help: "Outbound call creation attempts, by result",
	}, []string{"result"})

	SheetLogDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptline_sheet_log_total",
		Help: "Keypress log webhook deliveries, by result",
	}, []string{"result"})

	UploadGrants = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promptline_upload_grants_total",
		Help: "Presigned upload grants issued",
	})

	AudioUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptline_audio_updates_total",
		Help: "Audio slot updates, by kind",
	}, []string{"kind"})
)

// NormalizeDigit maps a raw Digits value onto a bounded label set so that
// arbitrary webhook input cannot grow metric cardinality.
func NormalizeDigit(d string) string {
	switch d {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return d
	case "*":
		return "star"
	case "#":
		return "pound"
	case "":
		return "none"
	}
	return "other"
}
