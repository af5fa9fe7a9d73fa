// internal/logger/logger.go
package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where and how verbosely logs are written.
type Config struct {
	Debug bool
	// File, если задан, получает JSON-копию всех записей.
	File string
	// Buffer заменяет консольный вывод (режим TUI).
	Buffer *LogBuffer
}

// Logger wraps zap.Logger and owns the file sink.
type Logger struct {
	*zap.Logger
	file *os.File
}

// New builds a logger from cfg. Console output goes to stderr unless a Buffer is set.
func New(cfg Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	var cores []zapcore.Core
	if cfg.Buffer != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoderConfig()),
			cfg.Buffer,
			level,
		))
	} else {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(prettyEncoderConfig()),
			zapcore.Lock(os.Stderr),
			level,
		))
	}

	var file *os.File
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoderConfig()),
			zapcore.Lock(f),
			level,
		))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		file: file,
	}, nil
}

// WithOperation создает логгер для конкретной операции
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return WithOperation(l.Logger, operation)
}

// WithComponent добавляет информацию о компоненте системы
func (l *Logger) WithComponent(component string) *zap.Logger {
	return WithComponent(l.Logger, component)
}

// WithOperation tags l with an operation name and a fresh correlation id.
func WithOperation(l *zap.Logger, operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
		zap.Time("start_time", time.Now().UTC()),
	)
}

// WithComponent tags l with a component name.
func WithComponent(l *zap.Logger, component string) *zap.Logger {
	return l.Named(component)
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	err := l.Sync()
	if l.file != nil {
		err = errors.Join(err, l.file.Close())
	}
	return err
}

// Sync ignores the errors stderr returns when it is a terminal.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if err == nil {
		return nil
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && pathErr.Path == os.Stderr.Name() {
		return nil
	}
	return err
}
