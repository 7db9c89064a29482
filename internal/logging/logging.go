package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
)

type Options struct {
	Env          string
	Level        string
	RollbarToken string
}

// New builds the process logger. Production logs are JSON; everything else is
// text. With a rollbar token, error records are also reported to rollbar.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(opts.Env, "production") {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}

	if opts.RollbarToken != "" {
		rollbar.SetToken(opts.RollbarToken)
		rollbar.SetEnvironment(opts.Env)
		rollbar.SetStackTracer(rollbarerrors.StackTracer)
		h = NewRollbarHandler(h, rollbarReporter{})
	}
	return slog.New(h)
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Reporter receives error-level records.
type Reporter interface {
	Report(msg string, err error, extras map[string]interface{})
}

type rollbarReporter struct{}

func (rollbarReporter) Report(msg string, err error, extras map[string]interface{}) {
	if err != nil {
		rollbar.Error(err, extras)
		return
	}
	rollbar.Error(msg, extras)
}

// RollbarHandler forwards records at error level or above to a Reporter and
// always passes them on to the wrapped handler.
type RollbarHandler struct {
	next     slog.Handler
	reporter Reporter
	attrs    []slog.Attr
}

func NewRollbarHandler(next slog.Handler, reporter Reporter) *RollbarHandler {
	return &RollbarHandler{next: next, reporter: reporter}
}

func (h *RollbarHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RollbarHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		extras := map[string]interface{}{"message": r.Message}
		var err error
		collect := func(a slog.Attr) bool {
			if e, ok := a.Value.Any().(error); ok && err == nil {
				err = e
				return true
			}
			extras[a.Key] = a.Value.String()
			return true
		}
		for _, a := range h.attrs {
			collect(a)
		}
		r.Attrs(collect)
		h.reporter.Report(r.Message, err, extras)
	}
	return h.next.Handle(ctx, r)
}

func (h *RollbarHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &RollbarHandler{next: h.next.WithAttrs(attrs), reporter: h.reporter, attrs: merged}
}

func (h *RollbarHandler) WithGroup(name string) slog.Handler {
	return &RollbarHandler{next: h.next.WithGroup(name), reporter: h.reporter, attrs: h.attrs}
}

// Close flushes pending rollbar reports.
func Close() {
	rollbar.Close()
}
