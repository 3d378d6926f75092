package console

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxpkg/cx/internal/core/domain"
)

func TestSink_Emit(t *testing.T) {
	var buf bytes.Buffer
	sink := newSink(&buf, nil)

	err := sink.Emit(domain.NewEvent(domain.LevelInfo, "merged 3 packages", nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "merged 3 packages")
}

func TestSink_Emit_WarnPrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	sink := newSink(&buf, nil)

	err := sink.Emit(domain.NewEvent(domain.LevelWarn, "loader failed", map[string]any{
		"loader": "pip",
		"prefix": "/envs/test",
	}))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "warning: loader failed")
	// Fields print sorted by key.
	assert.Contains(t, out, "(loader=pip, prefix=/envs/test)")
	// A plain writer gets no ANSI escapes.
	assert.NotContains(t, out, "\x1b[")
}

func TestBackend_Open_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	sink, err := New().Open(path)
	require.NoError(t, err)

	require.NoError(t, sink.Emit(domain.NewEvent(domain.LevelInfo, "hello", nil)))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestTable(t *testing.T) {
	out := Table(map[string]string{
		"one":   "value_one",
		"two":   "value_two",
		"three": "value_three",
	})

	assert.Equal(t, "\n   one : value_one\n three : value_three\n   two : value_two\n\n", out)
}

func TestTable_Empty(t *testing.T) {
	assert.Equal(t, "\n", Table(nil))
}
