package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler fans each record out to every child handler that accepts its
// level. One child failing does not stop delivery to the others.
type MultiHandler struct {
	children []slog.Handler
}

func NewMultiHandler(children ...slog.Handler) *MultiHandler {
	return &MultiHandler{children: children}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.children {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range m.children {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.apply(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.apply(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) apply(fn func(slog.Handler) slog.Handler) slog.Handler {
	children := make([]slog.Handler, len(m.children))
	for i, h := range m.children {
		children[i] = fn(h)
	}
	return &MultiHandler{children: children}
}
