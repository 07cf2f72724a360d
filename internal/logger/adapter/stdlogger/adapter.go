// Package stdlogger exposes the global zerolog logger through printf style methods,
// for libraries that expect a Printf logger (gorm, cron).
package stdlogger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
	level     zerolog.Level // level used by Printf
}

// New returns a Logger writing Printf calls on info level.
func New() *Logger {
	return &Logger{level: zerolog.InfoLevel}
}

// NewComponent returns a Logger tagging every line with component,
// writing Printf calls on the given level.
func NewComponent(component string, level zerolog.Level) *Logger {
	return &Logger{component: component, level: level}
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	e := log.WithLevel(level)
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	return e
}

// Printf implements gorm's logger.Writer and cron's printf logger.
func (l *Logger) Printf(format string, v ...any) {
	l.event(l.level).Msgf(format, v...)
}

// Debugf logs on debug level.
func (l *Logger) Debugf(format string, v ...any) {
	l.event(zerolog.DebugLevel).Msgf(format, v...)
}

// Infof logs on info level.
func (l *Logger) Infof(format string, v ...any) {
	l.event(zerolog.InfoLevel).Msgf(format, v...)
}

// Warningf logs on warn level.
func (l *Logger) Warningf(format string, v ...any) {
	l.event(zerolog.WarnLevel).Msgf(format, v...)
}

// Errorf logs on error level.
func (l *Logger) Errorf(format string, v ...any) {
	l.event(zerolog.ErrorLevel).Msgf(format, v...)
}
