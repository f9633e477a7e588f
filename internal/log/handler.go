package log

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/healthcover-api/internal/reqctx"
)

// ContextHandler decorates records with the request_id and user_id found in
// the record's context, so handlers and usecases only pass ctx along.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler returns a handler that enriches records before delegating to inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := reqctx.RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if uid, ok := reqctx.UserID(ctx); ok {
		r.AddAttrs(slog.Int64("user_id", uid))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
