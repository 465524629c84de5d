package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// NewJSONLogger creates a logger writing JSON lines
func NewJSONLogger(writer io.Writer, level Level) *StreamLogger {
	return NewLogger(writer, FormatJSON, level)
}

// NewTextLogger creates a logger writing human-readable lines
func NewTextLogger(writer io.Writer, level Level) *StreamLogger {
	return NewLogger(writer, FormatText, level)
}

// NewLogger creates a logger with an explicit format
func NewLogger(writer io.Writer, format Format, level Level) *StreamLogger {
	return &StreamLogger{
		writer: writer,
		format: format,
		level:  level,
		mu:     &sync.Mutex{},
	}
}

func (l *StreamLogger) log(level Level, msg string, fields ...Field) {
	if !l.Enabled(level) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fieldMap := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	now := time.Now().Format(time.RFC3339Nano)
	if l.format == FormatText {
		fmt.Fprintln(l.writer, formatText(now, level, msg, fieldMap))
		return
	}

	entry := LogEntry{
		Time:    now,
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] Failed to marshal log entry: %v\n", err)
		return
	}
	l.writer.Write(append(data, '\n'))
}

// formatText renders fields in key order so lines are stable
func formatText(now string, level Level, msg string, fields map[string]any) string {
	var sb strings.Builder
	sb.WriteString(now)
	sb.WriteByte(' ')
	sb.WriteString(level.String())
	sb.WriteByte(' ')
	sb.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	return sb.String()
}

// Debug logs a debug-level message
func (l *StreamLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields...)
}

// Info logs an info-level message
func (l *StreamLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields...)
}

// Warn logs a warning-level message
func (l *StreamLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields...)
}

// Error logs an error-level message
func (l *StreamLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields...)
}

// With creates a child logger sharing the writer and lock
func (l *StreamLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &StreamLogger{
		writer: l.writer,
		format: l.format,
		level:  l.level,
		fields: newFields,
		mu:     l.mu,
	}
}

// SetLevel sets the minimum log level
func (l *StreamLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *StreamLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Enabled reports whether level passes the logger's threshold. Hot loops
// check it before building fields.
func (l *StreamLogger) Enabled(level Level) bool {
	return level >= l.GetLevel()
}

var (
	defaultLogger Logger
	once          sync.Once
)

// DefaultLogger returns the global default logger. RLBWT_LOG_LEVEL and
// RLBWT_LOG_FORMAT override the INFO/json defaults.
func DefaultLogger() Logger {
	once.Do(func() {
		if defaultLogger != nil {
			return
		}
		level := InfoLevel
		if levelStr := os.Getenv("RLBWT_LOG_LEVEL"); levelStr != "" {
			level = ParseLevel(levelStr)
		}
		defaultLogger = NewLogger(os.Stderr, ParseFormat(os.Getenv("RLBWT_LOG_FORMAT")), level)
	})
	return defaultLogger
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger Logger) {
	once.Do(func() {})
	defaultLogger = logger
}

// Info logs an info-level message using the default logger
func Info(msg string, fields ...Field) {
	DefaultLogger().Info(msg, fields...)
}

// ErrorLog logs an error-level message using the default logger
func ErrorLog(msg string, fields ...Field) {
	DefaultLogger().Error(msg, fields...)
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End logs the operation with its duration and returns the duration
func (t *TimedOperation) End(fields ...Field) time.Duration {
	elapsed := time.Since(t.start)
	all := append(append([]Field{}, t.fields...), fields...)
	t.logger.Info(t.msg, append(all, Latency(elapsed))...)
	return elapsed
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) {
	elapsed := time.Since(t.start)
	t.logger.Error(t.msg, append(t.fields, Latency(elapsed), Error(err))...)
}
