package slogutil

import (
	"fmt"
	"io"
	"log/slog"
)

// Options selects where command line logs go.
type Options struct {
	Level slog.Level
	// Format is "text" for the line format or "json".
	Format string
	// File, when set, also receives every record at Level in the line
	// format, rotated once it grows past MaxSize.
	File       string
	MaxSize    string
	MaxBackups int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the logger for a run. The returned closer is never nil and
// must be closed after the last record.
func Setup(stderr io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	var console slog.Handler
	switch opts.Format {
	case "", "text":
		console = NewLineHandler(stderr, &LineOptions{Level: opts.Level})
	case "json":
		console = slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: opts.Level})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	if opts.File == "" {
		return slog.New(console), nopCloser{}, nil
	}

	size, err := ParseSize(opts.MaxSize)
	if err != nil {
		return nil, nil, err
	}
	rf, err := OpenRotatingFile(opts.File, size, opts.MaxBackups)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	file := NewLineHandler(rf, &LineOptions{Level: opts.Level})
	return slog.New(NewTeeHandler(console, file)), rf, nil
}
