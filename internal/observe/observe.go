// Package observe reports operation boundaries to pluggable hooks.
package observe

import (
	"context"
	"log/slog"
	"time"
)

// Event describes one completed operation. Key is the source the operation
// addressed; ID is set once the link's id is known.
type Event struct {
	Op       string
	Key      string
	ID       int64
	Duration time.Duration
	Err      error
}

// Hook receives operation events. Implementations must not block.
type Hook interface {
	Observe(ctx context.Context, evt Event)
}

// Hooks fans an event out to every non-nil hook.
type Hooks []Hook

func (h Hooks) Observe(ctx context.Context, evt Event) {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		hook.Observe(ctx, evt)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Observe(context.Context, Event) {}

// Func adapts a function to Hook.
type Func func(ctx context.Context, evt Event)

func (f Func) Observe(ctx context.Context, evt Event) {
	if f == nil {
		return
	}
	f(ctx, evt)
}

// Log writes one structured record per event. Failures log at warn level.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Observe(ctx context.Context, evt Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("op", evt.Op),
		slog.String("key", evt.Key),
		slog.Duration("duration", evt.Duration),
	}
	if evt.ID != 0 {
		attrs = append(attrs, slog.Int64("id", evt.ID))
	}
	if evt.Err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "operation failed", append(attrs, slog.String("error", evt.Err.Error()))...)
		return
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "operation", attrs...)
}

// Span times one operation. Fields may be filled in before End.
type Span struct {
	ctx   context.Context
	hook  Hook
	began time.Time
	Event Event
}

// Start begins timing op on key.
//
//	span := observe.Start(ctx, hook, "link.create", source)
//	defer func() { span.End(err) }()
func Start(ctx context.Context, h Hook, op, key string) *Span {
	return &Span{ctx: ctx, hook: h, began: time.Now(), Event: Event{Op: op, Key: key}}
}

// End reports the operation with its outcome.
func (s *Span) End(err error) {
	if s.hook == nil {
		return
	}
	evt := s.Event
	evt.Duration = time.Since(s.began)
	evt.Err = err
	s.hook.Observe(s.ctx, evt)
}
