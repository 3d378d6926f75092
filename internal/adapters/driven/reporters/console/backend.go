// Package console is the default reporter backend. It renders events as
// styled human-readable lines and offers the aligned key/value table
// format used by informational commands.
package console

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
)

// BackendName is the hook name of the console reporter.
const BackendName = "console"

// Ensure the backend and sink implement the reporter ports.
var (
	_ driven.ReporterBackend = (*Backend)(nil)
	_ driven.ReporterSink    = (*Sink)(nil)
)

// Backend opens console sinks.
type Backend struct{}

// New creates the console backend.
func New() *Backend {
	return &Backend{}
}

// Open binds the backend to a destination: "stdout", "stderr" or a file
// path (opened for append).
func (b *Backend) Open(destination string) (driven.ReporterSink, error) {
	switch destination {
	case "stdout":
		return newSink(os.Stdout, nil), nil
	case "stderr":
		return newSink(os.Stderr, nil), nil
	default:
		f, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening reporter destination: %w", err)
		}
		return newSink(f, f), nil
	}
}

// Sink writes styled event lines to one destination.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	styled bool

	warnStyle  lipgloss.Style
	errorStyle lipgloss.Style
	fieldStyle lipgloss.Style
}

func newSink(w io.Writer, closer io.Closer) *Sink {
	return &Sink{
		w:          w,
		closer:     closer,
		styled:     isTerminal(w),
		warnStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		errorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		fieldStyle: lipgloss.NewStyle().Faint(true),
	}
}

// isTerminal reports whether the destination supports styling.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Emit writes one event line.
func (s *Sink) Emit(event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := event.Message
	if len(event.Fields) > 0 {
		line += " " + s.style(s.fieldStyle, formatFields(event.Fields))
	}
	switch event.Level {
	case domain.LevelWarn:
		line = s.style(s.warnStyle, "warning: ") + line
	case domain.LevelError:
		line = s.style(s.errorStyle, "error: ") + line
	}

	_, err := fmt.Fprintln(s.w, line)
	return err
}

// Close closes file destinations. Standard streams stay open.
func (s *Sink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Sink) style(style lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}
	return style.Render(text)
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Table renders a key/value map in the aligned "   key : value" format.
// Keys are right-aligned to the longest key and rows sorted by key.
func Table(data map[string]string) string {
	if len(data) == 0 {
		return "\n"
	}

	keys := make([]string, 0, len(data))
	width := 0
	for k := range data {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("\n")
	for _, k := range keys {
		fmt.Fprintf(&b, " %*s : %s\n", width, k, data[k])
	}
	b.WriteString("\n")
	return b.String()
}
