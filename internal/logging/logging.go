// Package logging configures structured logging: colored console output
// split by level, plus an optional plain-text log file.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// levelRouter is a slog.Handler that routes records below ERROR to stdout
// and ERROR+ to stderr. If file is set, every record is also written there.
type levelRouter struct {
	level  slog.Leveler
	stdout slog.Handler
	stderr slog.Handler
	file   slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if r.Level >= slog.LevelError {
		err = lr.stderr.Handle(ctx, r)
	} else {
		err = lr.stdout.Handle(ctx, r)
	}
	if lr.file != nil {
		err = errors.Join(err, lr.file.Handle(ctx, r.Clone()))
	}
	return err
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
	if lr.file != nil {
		next.file = lr.file.WithAttrs(attrs)
	}
	return next
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	next := &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
	if lr.file != nil {
		next.file = lr.file.WithGroup(name)
	}
	return next
}

// NewHandler builds the router over the given writers. file may be nil.
func NewHandler(level slog.Level, stdout, stderr, file io.Writer) slog.Handler {
	console := func(w io.Writer) slog.Handler {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(w),
		})
	}

	h := &levelRouter{
		level:  level,
		stdout: console(stdout),
		stderr: console(stderr),
	}
	if file != nil {
		h.file = slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})
	}
	return h
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Setup installs the default logger. If logPath is non-empty, all levels
// are also appended to that file. Returns a cleanup function that closes the
// log file (if opened).
func Setup(level slog.Level, logPath string) (func(), error) {
	var (
		file    io.Writer
		cleanup = func() {}
	)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		file = f
	}

	slog.SetDefault(slog.New(NewHandler(level, os.Stdout, os.Stderr, file)))
	return cleanup, nil
}
