// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"context"
	"log/slog"

	"github.com/luxfi/log"
	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.SugaredLogger to the luxfi/log.Logger interface.
// cmd/vmengine always runs the pipeline with it, at Info level by
// default and at Debug level when --verbose asks for stage-by-stage
// pipeline output.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger builds a ZapLogger around a zap production config at the
// given atomic level, so callers can flip verbosity at runtime.
func NewZapLogger(level zap.AtomicLevel) (log.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	built, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{s: built.Sugar()}, nil
}

func (z *ZapLogger) With(ctx ...interface{}) log.Logger {
	return &ZapLogger{s: z.s.With(ctx...)}
}

func (z *ZapLogger) New(ctx ...interface{}) log.Logger {
	return z.With(ctx...)
}

func (z *ZapLogger) Log(level slog.Level, msg string, ctx ...interface{}) {
	z.s.Debugw(msg, ctx...)
}

func (z *ZapLogger) Trace(msg string, ctx ...interface{}) { z.s.Debugw(msg, ctx...) }
func (z *ZapLogger) Debug(msg string, ctx ...interface{}) { z.s.Debugw(msg, ctx...) }
func (z *ZapLogger) Info(msg string, ctx ...interface{})  { z.s.Infow(msg, ctx...) }
func (z *ZapLogger) Warn(msg string, ctx ...interface{})  { z.s.Warnw(msg, ctx...) }
func (z *ZapLogger) Error(msg string, ctx ...interface{}) { z.s.Errorw(msg, ctx...) }
func (z *ZapLogger) Crit(msg string, ctx ...interface{})  { z.s.Errorw(msg, ctx...) }

func (z *ZapLogger) WriteLog(level slog.Level, msg string, attrs ...any) {
	z.s.Infow(msg, attrs...)
}

func (z *ZapLogger) Enabled(ctx context.Context, level slog.Level) bool { return true }

func (z *ZapLogger) Handler() slog.Handler { return nil }

func (z *ZapLogger) Fatal(msg string, fields ...zap.Field) {
	z.s.Desugar().Fatal(msg, fields...)
}

func (z *ZapLogger) Verbo(msg string, fields ...zap.Field) {
	z.s.Desugar().Debug(msg, fields...)
}

func (z *ZapLogger) WithFields(fields ...zap.Field) log.Logger {
	return &ZapLogger{s: z.s.Desugar().With(fields...).Sugar()}
}

func (z *ZapLogger) WithOptions(opts ...zap.Option) log.Logger {
	return &ZapLogger{s: z.s.Desugar().WithOptions(opts...).Sugar()}
}

func (z *ZapLogger) SetLevel(level slog.Level) {}

func (z *ZapLogger) GetLevel() slog.Level { return slog.LevelInfo }

func (z *ZapLogger) EnabledLevel(lvl slog.Level) bool { return true }

func (z *ZapLogger) StopOnPanic() {}

func (z *ZapLogger) RecoverAndPanic(f func()) { f() }

func (z *ZapLogger) RecoverAndExit(f, exit func()) { f() }

func (z *ZapLogger) Stop() { _ = z.s.Sync() }

func (z *ZapLogger) Write(p []byte) (n int, err error) {
	z.s.Info(string(p))
	return len(p), nil
}
