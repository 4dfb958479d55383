package slogutil

import (
	"io"
	"log/slog"

	"codeaxe/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the process logger: console output at consoleLevel plus, when
// logFile is non-empty, a rotating file at the configured level.
// The returned closer releases the file.
func Setup(console io.Writer, consoleLevel slog.Level, logFile string, cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	handlers := []slog.Handler{
		NewHandler(console, &slog.HandlerOptions{Level: consoleLevel}),
	}
	if logFile == "" {
		return slog.New(handlers[0]), nopCloser{}, nil
	}

	rf, err := OpenRotatingFile(logFile, ParseSize(cfg.MaxSize), cfg.MaxBackups)
	if err != nil {
		return slog.New(handlers[0]), nopCloser{}, err
	}
	fileLevel := LevelFromString(cfg.Level)
	if consoleLevel < fileLevel && consoleLevel != LevelSilent {
		fileLevel = consoleLevel
	}
	handlers = append(handlers, NewHandler(rf, &slog.HandlerOptions{Level: fileLevel}))
	return slog.New(NewTeeHandler(handlers...)), rf, nil
}
