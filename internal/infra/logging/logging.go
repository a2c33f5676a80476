package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupJSON sets slog's default logger to use JSON output at the given level.
func SetupJSON(level slog.Level) {
	setup(os.Stdout, level)
}

// FileConfig describes the rotated log file written next to stdout.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// SetupJSONWithFile is SetupJSON plus a copy of every record in a rotated file.
// The returned closer releases the file.
func SetupJSONWithFile(level slog.Level, fc FileConfig) io.Closer {
	rotate := &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.MaxSizeMB,
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAgeDays,
		LocalTime:  true,
		Compress:   fc.Compress,
	}

	setup(io.MultiWriter(os.Stdout, rotate), level)

	return rotate
}

func setup(w io.Writer, level slog.Level) {
	logger := slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	)
	slog.SetDefault(logger)
}
