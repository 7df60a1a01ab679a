// Package telemetry emits named pipeline events. Emission is fire and
// forget: it never blocks and never influences the outcome of the
// operation that produced the event.
package telemetry

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Event names emitted by the pipeline.
const (
	EventEnqueued     = "invitation_enqueued"
	EventSent         = "invitation_sent"
	EventCompleted    = "invitation_completed"
	EventSkipped      = "invitation_skipped"
	EventFailed       = "invitation_failed"
	EventDeadLettered = "invitation_deadlettered"
	EventRetried      = "invitation_retried"
	EventDropped      = "invitation_dropped"
)

// Emitter records a named event with free-form attributes.
type Emitter interface {
	Emit(name string, attrs map[string]string)
}

// Prometheus counts events in a CounterVec and mirrors the attributes to
// debug logs.
type Prometheus struct {
	events *prometheus.CounterVec
	logger *slog.Logger
}

func NewPrometheus(reg prometheus.Registerer, logger *slog.Logger) *Prometheus {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "onboard_pipeline_events_total",
		Help: "Invitation pipeline events by name.",
	}, []string{"event"})
	reg.MustRegister(events)

	return &Prometheus{
		events: events,
		logger: logger,
	}
}

func (p *Prometheus) Emit(name string, attrs map[string]string) {
	p.events.WithLabelValues(name).Inc()

	if p.logger != nil && p.logger.Enabled(context.Background(), slog.LevelDebug) {
		args := make([]any, 0, len(attrs)*2+2)
		args = append(args, "event", name)
		for k, v := range attrs {
			args = append(args, k, v)
		}
		p.logger.Debug("telemetry", args...)
	}
}

// Nop discards all events. Used in tests and when telemetry is disabled.
type Nop struct{}

func (Nop) Emit(string, map[string]string) {}
