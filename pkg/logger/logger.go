package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithComponent returns a child logger tagging every record with component=name.
	WithComponent(name string) Logger
	// With returns a child logger carrying the given key/value pairs.
	With(args ...any) Logger

	// Printf satisfies fx.Printer so the logger can be handed to fx.Logger.
	Printf(format string, args ...any)
}

type Opts struct {
	Env       string
	Level     string
	SentryDSN string
	// Output defaults to os.Stdout.
	Output io.Writer
}

type Impl struct {
	log    *slog.Logger
	sentry bool
}

var _ Logger = (*Impl)(nil)

func New(opts Opts) *Impl {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := parseLevel(opts.Level)

	var zl zerolog.Logger
	if opts.Env == "production" {
		zl = zerolog.New(out).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}).With().Timestamp().Logger()
	}

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler(),
	}

	impl := &Impl{}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
		})
		if err != nil {
			zl.Error().Err(err).Msg("Sentry init failed, continuing without it")
		} else {
			impl.sentry = true
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError, AddSource: true}.NewSentryHandler())
		}
	}

	impl.log = slog.New(slogmulti.Fanout(handlers...))
	return impl
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Impl {
	return New(Opts{Level: "error", Output: io.Discard})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func (l *Impl) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *Impl) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *Impl) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *Impl) Error(msg string, args ...any) { l.log.Error(msg, args...) }

func (l *Impl) WithComponent(name string) Logger {
	return l.With("component", name)
}

func (l *Impl) With(args ...any) Logger {
	return &Impl{log: l.log.With(args...), sentry: l.sentry}
}

func (l *Impl) Printf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

// Flush waits for buffered Sentry events to be delivered.
func (l *Impl) Flush(ctx context.Context) {
	if !l.sentry {
		return
	}
	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	sentry.Flush(timeout)
}
