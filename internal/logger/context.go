package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	eventKey  struct{}
)

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// Event accumulates fields for the single log line written when a request ends.
// Safe for concurrent use.
type Event struct {
	mu     sync.Mutex
	fields []zap.Field
}

// Add appends fields. A later field with the same key wins when the line is encoded.
func (e *Event) Add(fields ...zap.Field) {
	e.mu.Lock()
	e.fields = append(e.fields, fields...)
	e.mu.Unlock()
}

// Fields returns a copy of the collected fields.
func (e *Event) Fields() []zap.Field {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]zap.Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// ContextWithEvent attaches a fresh Event to the context.
func ContextWithEvent(ctx context.Context) (context.Context, *Event) {
	e := &Event{}
	return context.WithValue(ctx, eventKey{}, e), e
}

// AddFields records fields on the request's Event. No-op outside a request.
func AddFields(ctx context.Context, fields ...zap.Field) {
	if e, ok := ctx.Value(eventKey{}).(*Event); ok {
		e.Add(fields...)
	}
}
