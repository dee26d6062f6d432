// Package sinks implements concrete progress consumers: structured logging
// and in-memory run counters. Each sink satisfies the progress.Sink
// interface and is safe for repeated Consume/Close cycles.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/progress"
)

// LogSink emits structured logs for the progress stream. Item failures log
// at warn, everything else at info.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("run_id", evt.RunUUID().String()),
			zap.String("stage", string(evt.Stage)),
			zap.String("key", evt.Key),
			zap.String("slug", evt.Slug),
			zap.Duration("dur", evt.Dur),
			zap.String("note", evt.Note),
		}
		if evt.Stage == progress.StageItemFail {
			s.logger.Warn("progress event", fields...)
			continue
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
