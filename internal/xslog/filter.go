package xslog

import (
	"context"
	"log/slog"
	"strings"
)

var _ slog.Handler = (*FilterHandler)(nil)

type FilterFunc func(ctx context.Context, record slog.Record) bool

// IgnorePathPrefix returns a filter that drops records whose "path" attribute
// starts with the given prefix. Used to keep static asset requests out of the
// request log.
func IgnorePathPrefix(prefix string) FilterFunc {
	return func(ctx context.Context, record slog.Record) bool {
		ignore := false
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == "path" && strings.HasPrefix(attr.Value.String(), prefix) {
				ignore = true
				return false
			}
			return true
		})
		return !ignore
	}
}

func NewFilterHandler(handler slog.Handler, filter FilterFunc) *FilterHandler {
	return &FilterHandler{handler: handler, filter: filter}
}

type FilterHandler struct {
	handler slog.Handler
	filter  FilterFunc
}

func (f *FilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.handler.Enabled(ctx, level)
}

func (f *FilterHandler) Handle(ctx context.Context, record slog.Record) error {
	if f.filter != nil {
		if !f.filter(ctx, record) {
			return nil
		}
	}
	return f.handler.Handle(ctx, record)
}

func (f *FilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewFilterHandler(f.handler.WithAttrs(attrs), f.filter)
}

func (f *FilterHandler) WithGroup(name string) slog.Handler {
	return NewFilterHandler(f.handler.WithGroup(name), f.filter)
}
