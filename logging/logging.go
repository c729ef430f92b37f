// Package logging wraps log/slog with a per-component logger so every line
// carries a component field without each call site repeating it.
package logging

import (
	"log/slog"
	"os"
)

// Component names used across the codebase.
const (
	ComponentServer    = "server"
	ComponentScheduler = "scheduler"
	ComponentImporter  = "importer"
)

// Logger is a slog.Logger bound to a component.
type Logger struct {
	*slog.Logger
	component string
}

// New creates a text logger on stdout at the given level.
func New(level slog.Level, component string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger:    slog.New(handler),
		component: component,
	}
}

// Default returns an info-level logger for the given component.
func Default(component string) *Logger {
	return New(slog.LevelInfo, component)
}

// WithComponent returns a logger for a different component sharing the
// same handler.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, append([]any{"component", l.component}, args...)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, append([]any{"component", l.component}, args...)...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, append([]any{"component", l.component}, args...)...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, append([]any{"component", l.component}, args...)...)
}
