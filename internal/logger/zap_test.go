package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "INFO", want: InfoLevel},
		{in: "", want: InfoLevel},
		{in: "warning", want: WarnLevel},
		{in: "error", want: ErrorLevel},
		{in: "verbose", want: InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(InfoLevel, &buf)

	l.With(Component("session")).Info("Session saved",
		String("user_id", "u1"),
		Int("count", 2),
		Bool("fresh", true),
		Duration("ttl", time.Minute),
		Error(errors.New("boom")))
	require.NoError(t, l.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Session saved", entry["msg"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, float64(2), entry["count"])
	assert.Equal(t, true, entry["fresh"])
	assert.Equal(t, "1m0s", entry["ttl"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(InfoLevel, &buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel(DebugLevel)
	l.Debug("visible")
	assert.True(t, strings.Contains(buf.String(), "visible"))
}

func TestLogger_NilErrorAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := New(InfoLevel, &buf)

	l.Info("ok", Error(nil))
	require.NoError(t, l.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, present := entry["error"]
	assert.False(t, present)
	assert.Contains(t, entry, "ts")
}

func TestLogger_ChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(WarnLevel, &buf)
	child := l.With(Component("cache"))

	child.Info("dropped")
	assert.Empty(t, buf.String())

	l.SetLevel(InfoLevel)
	child.Info("kept")
	assert.Contains(t, buf.String(), `"component":"cache"`)
}
