// Package logger owns the process-wide zap logger.  Components obtain
// a named child through WithComponent so every line carries its
// origin (scheduler, service, consumer, ...).
package logger

import (
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var L *zap.Logger

// Init builds the global logger.  Production gets JSON output at info
// level; anything else gets the colored development console.
func Init(env string) error {
    var cfg zap.Config
    if env == "prod" || env == "production" {
        cfg = zap.NewProductionConfig()
        cfg.EncoderConfig.TimeKey = "ts"
        cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    } else {
        cfg = zap.NewDevelopmentConfig()
        cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }
    l, err := cfg.Build()
    if err != nil {
        return err
    }
    L = l
    zap.ReplaceGlobals(l)
    return nil
}

// WithComponent returns a logger tagged with a component field.
func WithComponent(component string) *zap.Logger {
    if L == nil {
        L, _ = zap.NewDevelopment()
    }
    return L.With(zap.String("component", component))
}

// Sync flushes buffered entries; call on shutdown.
func Sync() {
    if L != nil {
        _ = L.Sync()
    }
}
