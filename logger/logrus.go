package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/entreg/entreg/utils"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	Logger        *logrus.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration

	ctx    context.Context
	fields logrus.Fields
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
	}
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		ctx = l.ctx
	}

	entry := logrus.NewEntry(l.Logger)
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	if len(l.fields) > 0 {
		entry = entry.WithFields(l.fields)
	}
	return entry
}

// Info logs info messages
func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		fields := logrus.Fields{
			"file": utils.FileWithLineNum(),
			"data": data,
		}
		l.entry(ctx).WithFields(fields).Info(msg)
	}
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		fields := logrus.Fields{
			"file": utils.FileWithLineNum(),
			"data": data,
		}
		l.entry(ctx).WithFields(fields).Warn(msg)
	}
}

// Error logs error messages
func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		fields := logrus.Fields{
			"file": utils.FileWithLineNum(),
			"data": data,
		}
		l.entry(ctx).WithFields(fields).Error(msg)
	}
}

// Trace logs registration details
func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (op string, entities int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	op, entities := fc()

	fields := logrus.Fields{
		"file":     utils.FileWithLineNum(),
		"duration": fmt.Sprintf("%.3fms", float64(elapsed.Nanoseconds())/1e6),
		"op":       op,
	}

	if entities != -1 {
		fields["entities"] = entities
	}

	switch {
	case err != nil:
		fields["error"] = err.Error()
		l.entry(ctx).WithFields(fields).Error("registered")

	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold:
		fields["slow_threshold"] = l.SlowThreshold.String()
		l.entry(ctx).WithFields(fields).Warn("SLOW registration")

	case l.LogLevel >= Info:
		l.entry(ctx).WithFields(fields).Info("registered")
	}
}

// WithContext returns a logger that attaches ctx to every entry
func (l *LogrusLogger) WithContext(ctx context.Context) *LogrusLogger {
	if ctx == nil {
		return l
	}

	newLogger := *l
	newLogger.ctx = ctx
	return &newLogger
}

// WithField adds a field to the logger
func (l *LogrusLogger) WithField(key string, value interface{}) *LogrusLogger {
	return l.WithFields(logrus.Fields{key: value})
}

// WithFields adds multiple fields to the logger
func (l *LogrusLogger) WithFields(fields logrus.Fields) *LogrusLogger {
	newLogger := *l
	newLogger.fields = make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return &newLogger
}
