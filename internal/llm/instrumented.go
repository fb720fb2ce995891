package llm

import (
	"context"
	"log/slog"
	"time"
)

type operationKey struct{}

// WithOperation labels model calls made with ctx, e.g. "reorganize" or
// "answer", for latency tracking and logs.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFrom returns the label set by WithOperation, or "chat".
func OperationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "chat"
}

// Instrumented decorates a Provider with latency stats and structured logs.
type Instrumented struct {
	Provider
	stats *Stats
	log   *slog.Logger
}

func Instrument(p Provider, stats *Stats, log *slog.Logger) *Instrumented {
	return &Instrumented{Provider: p, stats: stats, log: log}
}

func (i *Instrumented) Chat(ctx context.Context, messages []Message) (string, error) {
	op := OperationFrom(ctx)
	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
	}
	i.log.Debug("llm.chat.start", "op", op, "model", i.Model(), "messages", len(messages), "prompt_chars", chars)

	start := time.Now()
	out, err := i.Provider.Chat(ctx, messages)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		i.stats.RecordError(op)
		i.log.Warn("llm.chat.failed", "op", op, "model", i.Model(), "duration_ms", elapsed, "error", err)
		return "", err
	}

	i.stats.Record(op, elapsed)
	i.log.Info("llm.chat.done", "op", op, "model", i.Model(), "duration_ms", elapsed, "completion_chars", len(out))
	return out, nil
}

// Stats exposes the latency tracker.
func (i *Instrumented) Stats() *Stats {
	return i.stats
}
