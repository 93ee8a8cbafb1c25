package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capHandler is a simple slog.Handler that captures records for assertions.
type capHandler struct {
	recs  *[]slog.Record
	attrs []slog.Attr
}

func newCapHandler() *capHandler {
	return &capHandler{recs: &[]slog.Record{}}
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	rec := r.Clone()
	rec.AddAttrs(h.attrs...)
	*h.recs = append(*h.recs, rec)
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &capHandler{recs: h.recs, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func attrsToMap(r slog.Record) map[string]any {
	m := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value.Any()
		return true
	})
	return m
}

func TestLogger_WithComponent(t *testing.T) {
	h := newCapHandler()
	log := New(Opts{Handler: h})

	log.WithComponent("StoryRepo").Info("story created", "story_id", "42")

	require.Len(t, *h.recs, 1)
	rec := (*h.recs)[0]
	assert.Equal(t, slog.LevelInfo, rec.Level)
	assert.Equal(t, "story created", rec.Message)

	attrs := attrsToMap(rec)
	assert.Equal(t, "StoryRepo", attrs["component"])
	assert.Equal(t, "42", attrs["story_id"])
}

func TestLogger_Levels(t *testing.T) {
	h := newCapHandler()
	log := New(Opts{Handler: h})

	log.Debug("d")
	log.Warn("w")
	log.Error("e", "error", "boom")
	log.Printf("fx %s", "event")

	require.Len(t, *h.recs, 4)
	assert.Equal(t, slog.LevelDebug, (*h.recs)[0].Level)
	assert.Equal(t, slog.LevelWarn, (*h.recs)[1].Level)
	assert.Equal(t, slog.LevelError, (*h.recs)[2].Level)
	assert.Equal(t, "fx event", (*h.recs)[3].Message)
}

func TestLogger_ZerologOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "production", Output: &buf})

	log.Info("archive finished", "created", 3)
	log.Debug("hidden in production")

	out := buf.String()
	assert.Contains(t, out, `"message":"archive finished"`)
	assert.Contains(t, out, `"created":3`)
	assert.NotContains(t, out, "hidden in production")
}
