package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventLevel classifies reporter events.
type EventLevel string

const (
	// LevelInfo marks informational events, e.g. a discarded duplicate
	// record during a merge.
	LevelInfo EventLevel = "info"

	// LevelWarn marks degradations, e.g. a foreign loader that failed and
	// was excluded from the merge.
	LevelWarn EventLevel = "warn"

	// LevelError marks failures surfaced to the caller.
	LevelError EventLevel = "error"
)

// Event is one structured progress/result event consumed by reporter
// sinks.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Level is the event severity.
	Level EventLevel `json:"level"`

	// Message is the human-readable summary.
	Message string `json:"message"`

	// Fields carries structured payload data.
	Fields map[string]any `json:"fields,omitempty"`

	// Time is when the event was produced.
	Time time.Time `json:"time"`
}

// NewEvent creates an event with a fresh identity and timestamp.
func NewEvent(level EventLevel, message string, fields map[string]any) Event {
	return Event{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Fields:  fields,
		Time:    time.Now().UTC(),
	}
}
