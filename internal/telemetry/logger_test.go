package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock handler to inspect log records
type mockHandler struct {
	mu      sync.Mutex
	records []slog.Record
	attrs   []slog.Attr
	group   string
	enabled bool
}

func (h *mockHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.enabled
}

func (h *mockHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *mockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &mockHandler{enabled: h.enabled, group: h.group, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *mockHandler) WithGroup(name string) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &mockHandler{enabled: h.enabled, group: group, attrs: h.attrs}
}

func (h *mockHandler) getRecords() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.records
}

func TestMultiHandler(t *testing.T) {
	h1 := &mockHandler{enabled: true}
	h2 := &mockHandler{enabled: true}
	multi := &multiHandler{handlers: []slog.Handler{h1, h2}}

	t.Run("Handle", func(t *testing.T) {
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
		require.NoError(t, multi.Handle(context.Background(), record))
		assert.Len(t, h1.getRecords(), 1)
		assert.Len(t, h2.getRecords(), 1)
		assert.Equal(t, "test message", h1.getRecords()[0].Message)
	})

	t.Run("Skips disabled handler", func(t *testing.T) {
		h3 := &mockHandler{enabled: false}
		m := &multiHandler{handlers: []slog.Handler{h3}}
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "ignored", 0)
		require.NoError(t, m.Handle(context.Background(), record))
		assert.Empty(t, h3.getRecords())
		assert.False(t, m.Enabled(context.Background(), slog.LevelInfo))
	})

	t.Run("WithAttrs", func(t *testing.T) {
		attrs := []slog.Attr{slog.String("key", "value")}
		newMulti, ok := multi.WithAttrs(attrs).(*multiHandler)
		require.True(t, ok)
		for _, h := range newMulti.handlers {
			assert.Equal(t, attrs, h.(*mockHandler).attrs)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		newMulti, ok := multi.WithGroup("bench").(*multiHandler)
		require.True(t, ok)
		for _, h := range newMulti.handlers {
			assert.Equal(t, "bench", h.(*mockHandler).group)
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("File logging", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lineaops.log")
		logger := NewLogger(false, path, true)
		logger.Info("file message", "stage", "load")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "file message")
		assert.Contains(t, string(content), `"stage":"load"`)
	})

	t.Run("Debug level goes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "debug.log")
		NewLogger(true, path, true).Debug("debug details")
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "debug details")
	})

	t.Run("Silence stdout", func(t *testing.T) {
		old := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		NewLogger(false, "", true).Info("should not appear")

		w.Close()
		os.Stdout = old
		var buf bytes.Buffer
		io.Copy(&buf, r)
		assert.Empty(t, buf.String())
	})
}

func TestNewLogger_FileError(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	invalidPath := filepath.Join(t.TempDir(), "nonexistent/test.log")
	logger := NewLogger(false, invalidPath, true)
	assert.NotNil(t, logger)
	assert.True(t, strings.Contains(buf.String(), "Failed to open log file"), "got: "+buf.String())
}
