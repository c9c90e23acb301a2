// Package logger exposes the shared loggers of the engine.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Progress logs the main steps of a stylesheet compilation.
var Progress = newLogger(zapcore.InfoLevel)

// Warning emits a warning for each non fatal error, like dropped
// declarations, unknown properties or URL resolution failures.
var Warning = newLogger(zapcore.WarnLevel)

func newLogger(level zapcore.Level) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l.Sugar().Named("csscade")
}

// UseDevelopment switches both loggers to a human readable console
// encoding. The debug command line tool calls it at startup.
func UseDevelopment() {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	s := l.Sugar().Named("csscade")
	Progress = s
	Warning = s
}

// SetLoggers replaces both loggers, typically with a zaptest or
// observer backed logger in tests. It returns a restore function.
func SetLoggers(progress, warning *zap.SugaredLogger) (restore func()) {
	oldP, oldW := Progress, Warning
	Progress = progress
	Warning = warning
	return func() {
		Progress = oldP
		Warning = oldW
	}
}
