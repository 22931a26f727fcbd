package scraper

import (
	"fmt"

	"newscr/log"
)

type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type ZeroLogger struct{}

func (l *ZeroLogger) Info(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func (l *ZeroLogger) Warn(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func (l *ZeroLogger) Error(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

type DummyLogger struct {
	entries []logEntry
}

type logLevel int

const (
	logLevelInfo logLevel = iota
	logLevelWarn
	logLevelError
)

type logEntry struct {
	Level  logLevel
	Format string
	Args   []any
}

func NewDummyLogger() *DummyLogger {
	return &DummyLogger{entries: nil}
}

func (l *DummyLogger) Info(format string, args ...any) {
	l.entries = append(l.entries, logEntry{logLevelInfo, format, args})
}

func (l *DummyLogger) Warn(format string, args ...any) {
	l.entries = append(l.entries, logEntry{logLevelWarn, format, args})
}

func (l *DummyLogger) Error(format string, args ...any) {
	l.entries = append(l.entries, logEntry{logLevelError, format, args})
}

func (l *DummyLogger) Lines() []string {
	var lines []string
	for _, entry := range l.entries {
		lines = append(lines, fmt.Sprintf(entry.Format, entry.Args...))
	}
	return lines
}
