// Package logger provides structured logging for scenepool
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// contextKey is the type for context keys
type contextKey string

const (
	// RunIDKey is the context key for the simulation or process run ID
	RunIDKey contextKey = "run_id"
	// CommandKey is the context key for the CLI command being executed
	CommandKey contextKey = "command"
)

// contextFields lists the keys WithContext copies into log fields, in order.
var contextFields = []contextKey{RunIDKey, CommandKey}

// Config represents logger configuration
type Config struct {
	Level       string
	Development bool
	Encoding    string // json or console
	OutputPaths []string
}

// NewContext returns a copy of ctx carrying value under key
func NewContext(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// New builds a standalone logger from cfg without touching the global one.
// Development loggers use zap's development preset: console output, caller
// and stack traces from warn level up.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.MessageKey = "message"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	if cfg.Encoding != "" {
		zapCfg.Encoding = cfg.Encoding
	}
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Init replaces the global logger. The previous one is flushed. On error the
// global logger is left unchanged.
func Init(cfg Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	previous := global
	global = logger
	mu.Unlock()
	_ = previous.Sync()
	return nil
}

// Get returns the global logger. It discards everything until Init is called.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithContext returns the global logger annotated with the run and command
// carried by ctx.
func WithContext(ctx context.Context) *zap.Logger {
	logger := Get()
	for _, key := range contextFields {
		if value, ok := ctx.Value(key).(string); ok {
			logger = logger.With(zap.String(string(key), value))
		}
	}
	return logger
}

// Sync flushes any buffered log entries
func Sync() error {
	return Get().Sync()
}
