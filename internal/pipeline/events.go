package pipeline

import (
	"time"

	"github.com/google/uuid"

	"proposal-engine/internal/common/logger"
)

// EventLevel classifies a progress event.
type EventLevel string

const (
	LevelInfo    EventLevel = "info"
	LevelSuccess EventLevel = "success"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// Event is one progress notification emitted while a run executes. Consumers
// see phases start, finish and fail in order within a run.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Level     EventLevel             `json:"level"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Sink receives progress events. Emit must not block for long; slow consumers
// should buffer on their side.
type Sink interface {
	Emit(event Event)
}

func newEvent(level EventLevel, component, message string, fields map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Level:     level,
		Component: component,
		Message:   message,
		Fields:    fields,
	}
}

// ==========================
// Sinks
// ==========================

// LoggerSink mirrors events onto the structured logger.
type LoggerSink struct {
	logger logger.Logger
}

func NewLoggerSink(log logger.Logger) *LoggerSink {
	return &LoggerSink{logger: log}
}

func (s *LoggerSink) Emit(event Event) {
	fields := map[string]interface{}{
		"eventId":   event.ID,
		"component": event.Component,
	}
	for k, v := range event.Fields {
		fields[k] = v
	}
	switch event.Level {
	case LevelError:
		s.logger.Error(event.Message, fields)
	case LevelWarning:
		s.logger.Warn(event.Message, fields)
	default:
		s.logger.Info(event.Message, fields)
	}
}

// ChannelSink forwards events to a channel, dropping when the buffer is full
// so a stalled consumer cannot stall the run.
type ChannelSink struct {
	ch chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(event Event) {
	select {
	case s.ch <- event:
	default:
	}
}

// Events exposes the receive side.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Emit(event Event) {
	for _, s := range m {
		s.Emit(event)
	}
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Emit(Event) {}
