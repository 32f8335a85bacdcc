package logx

import (
	"context"

	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithView annotates the logger with a view id when available.
func WithView(log pslog.Logger, viewID schema.ViewID) pslog.Logger {
	if viewID != "" {
		log = log.With("view", string(viewID))
	}
	return log
}

// WithAction annotates the logger with a command action when available.
func WithAction(log pslog.Logger, action string) pslog.Logger {
	if action != "" {
		log = log.With("action", action)
	}
	return log
}

// WithPath annotates the logger with a file path when available.
func WithPath(log pslog.Logger, path string) pslog.Logger {
	if path != "" {
		log = log.With("path", path)
	}
	return log
}

// ContextWithView binds log, annotated with the view id, to ctx.
func ContextWithView(ctx context.Context, log pslog.Logger, viewID schema.ViewID) context.Context {
	return pslog.ContextWithLogger(ctx, WithView(log, viewID))
}
