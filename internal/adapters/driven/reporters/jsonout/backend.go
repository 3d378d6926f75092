// Package jsonout is the machine-readable reporter backend. Each event is
// written as one JSON object per line.
package jsonout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
)

// BackendName is the hook name of the JSON reporter.
const BackendName = "json"

// Ensure the backend and sink implement the reporter ports.
var (
	_ driven.ReporterBackend = (*Backend)(nil)
	_ driven.ReporterSink    = (*Sink)(nil)
)

// Backend opens JSON sinks.
type Backend struct{}

// New creates the JSON backend.
func New() *Backend {
	return &Backend{}
}

// Open binds the backend to a destination: "stdout", "stderr" or a file
// path (opened for append).
func (b *Backend) Open(destination string) (driven.ReporterSink, error) {
	switch destination {
	case "stdout":
		return &Sink{w: os.Stdout}, nil
	case "stderr":
		return &Sink{w: os.Stderr}, nil
	default:
		f, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening reporter destination: %w", err)
		}
		return &Sink{w: f, closer: f}, nil
	}
}

// Sink writes events as JSON lines to one destination.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// Emit writes one event as a JSON line.
func (s *Sink) Emit(event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	_, err = fmt.Fprintln(s.w, string(data))
	return err
}

// Close closes file destinations. Standard streams stay open.
func (s *Sink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
