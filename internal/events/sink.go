package events

import "motionpitch/internal/infra"

// Sink receives progress narration from the generation pipeline. Emit is
// fire-and-forget: a slow or absent consumer must never affect orchestration.
type Sink interface {
	Emit(event string, payload map[string]any)
}

// LogSink narrates progress into the service log.
type LogSink struct {
	logger infra.Logger
}

// NewLogSink builds a sink over the given logger.
func NewLogSink(logger infra.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit writes the event as a structured log line.
func (s *LogSink) Emit(event string, payload map[string]any) {
	s.logger.Info().Str("event", event).Fields(payload).Msg("progress")
}

// NopSink discards all events. Useful in tests.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(event string, payload map[string]any) {}

// MultiSink fans one emission out to several sinks.
type MultiSink []Sink

// Emit forwards the event to every sink.
func (m MultiSink) Emit(event string, payload map[string]any) {
	for _, s := range m {
		s.Emit(event, payload)
	}
}
