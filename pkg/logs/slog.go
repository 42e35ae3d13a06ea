package logs

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
)

const maxAttrLen = 80

type termHandler struct {
	t      *term.Term
	attrs  []slog.Attr
	prefix string // group prefix, dot-terminated
}

func NewTermLogger(t *term.Term) *slog.Logger {
	return slog.New(&termHandler{t: t})
}

func (h *termHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []string
	for _, a := range h.attrs {
		attrs = append(attrs, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		attrs = append(attrs, formatAttr(a))
		return true
	})

	msg := r.Message
	if len(attrs) > 0 {
		msg += " {" + strings.Join(attrs, ", ") + "}"
	}

	var err error
	switch {
	case r.Level < slog.LevelInfo:
		_, err = h.t.Debug(msg)
	case r.Level < slog.LevelWarn:
		_, err = h.t.Info(msg)
	case r.Level < slog.LevelError:
		_, err = h.t.Warn(msg)
	default:
		_, err = h.t.Error(msg)
	}
	return err
}

func formatAttr(a slog.Attr) string {
	s := a.String()
	if runes := []rune(s); len(runes) > maxAttrLen {
		s = string(runes[:maxAttrLen-3]) + "..."
	}
	return s
}

func (h *termHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < slog.LevelInfo {
		return h.t.DoDebug()
	}
	return true
}

func (h *termHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *termHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
