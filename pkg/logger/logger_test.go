package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// swapGlobal installs l as the global logger for the duration of the test.
func swapGlobal(t *testing.T, l *zap.Logger) {
	t.Helper()
	mu.Lock()
	previous := global
	global = l
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		global = previous
		mu.Unlock()
	})
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewHonorsLevel(t *testing.T) {
	l, err := New(Config{Level: "debug", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(Config{Level: "warn", Encoding: "console", Development: true, OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestInitReplacesGlobalEachTime(t *testing.T) {
	swapGlobal(t, zap.NewNop())

	require.NoError(t, Init(Config{Level: "error", OutputPaths: []string{"stderr"}}))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, Init(Config{Level: "debug", OutputPaths: []string{"stderr"}}))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))

	current := Get()
	require.Error(t, Init(Config{Level: "loud"}))
	assert.Same(t, current, Get())
}

func TestWithContextAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	swapGlobal(t, zap.New(core))

	ctx := NewContext(context.Background(), RunIDKey, "run-1")
	ctx = NewContext(ctx, CommandKey, "simulate")

	WithContext(ctx).Info("started")
	WithContext(context.Background()).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, "simulate", fields["command"])
	assert.Empty(t, entries[1].ContextMap())
}
