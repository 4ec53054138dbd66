//go:build !(rp2040 || rp2350)

package logx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewConfig returns the console logger config: no stack traces, ISO8601
// timestamps, coloured levels.
func NewConfig(debug bool) zap.Config {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// New builds a named console logger. It falls back to Nop if zap cannot
// open its outputs.
func New(name string, debug bool) Logger {
	z, err := NewConfig(debug).Build()
	if err != nil {
		return Nop()
	}
	return FromZap(z.Named(name))
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) Logger { return zapLogger{z.Sugar()} }

type zapLogger struct{ s *zap.SugaredLogger }

func (l zapLogger) Debugf(f string, a ...any) { l.s.Debugf(f, a...) }
func (l zapLogger) Infof(f string, a ...any)  { l.s.Infof(f, a...) }
func (l zapLogger) Warnf(f string, a ...any)  { l.s.Warnf(f, a...) }
func (l zapLogger) Errorf(f string, a ...any) { l.s.Errorf(f, a...) }
func (l zapLogger) Named(n string) Logger     { return zapLogger{l.s.Named(n)} }
