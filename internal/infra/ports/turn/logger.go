package turn

import (
	"fmt"
	"log/slog"

	"github.com/pion/logging"
)

// slogLoggerFactory отправляет логи pion в общий slog
type slogLoggerFactory struct{}

func newSlogLoggerFactory() logging.LoggerFactory {
	return slogLoggerFactory{}
}

func (slogLoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &slogLogger{log: slog.Default().With(slog.String("scope", scope))}
}

type slogLogger struct {
	log *slog.Logger
}

// trace у pion очень шумный, пишем его как debug
func (l *slogLogger) Trace(msg string)                          { l.log.Debug(msg) }
func (l *slogLogger) Tracef(format string, args ...interface{}) { l.log.Debug(fmt.Sprintf(format, args...)) }
func (l *slogLogger) Debug(msg string)                          { l.log.Debug(msg) }
func (l *slogLogger) Debugf(format string, args ...interface{}) { l.log.Debug(fmt.Sprintf(format, args...)) }
func (l *slogLogger) Info(msg string)                           { l.log.Info(msg) }
func (l *slogLogger) Infof(format string, args ...interface{})  { l.log.Info(fmt.Sprintf(format, args...)) }
func (l *slogLogger) Warn(msg string)                           { l.log.Warn(msg) }
func (l *slogLogger) Warnf(format string, args ...interface{})  { l.log.Warn(fmt.Sprintf(format, args...)) }
func (l *slogLogger) Error(msg string)                          { l.log.Error(msg) }
func (l *slogLogger) Errorf(format string, args ...interface{}) { l.log.Error(fmt.Sprintf(format, args...)) }
