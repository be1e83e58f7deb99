// Package logger provides a structured logging wrapper around Go's slog package.
// It supports both JSON and text formatted output, multiple log levels (debug, info, warn, error),
// and flexible output destinations (stdout, stderr, or file paths).
//
// File outputs are append-only and rotated on a cron schedule, so that an
// unattended job started by a system scheduler leaves a bounded audit trail.
//
// Example usage:
//
//	log, err := logger.New(logger.Config{
//	    Level:          "info",
//	    Format:         "text",
//	    Output:         "/var/log/webui-janitor/janitor.log",
//	    MaxBackups:     4,
//	    RotateSchedule: "0 0 * * 1",
//	})
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
//	log.Info("cleanup started", logger.Field{Key: "mode", Value: "LIVE"})
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config представляет конфигурацию logger
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output string // stdout, stderr, или путь к файлу

	MaxBackups     int    // сколько ротированных файлов хранить (0 = все)
	RotateSchedule string // cron выражение ротации файла, пусто = без ротации по времени
}

// Logger представляет обёртку вокруг slog.Logger
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// Field представляет поле для structured logging
type Field struct {
	Key   string
	Value any
}

// New создает новый logger с заданной конфигурацией
func New(cfg Config) (*Logger, error) {
	// Определение writer для вывода
	var writer io.Writer
	var closer io.Closer
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		file, err := openFile(cfg)
		if err != nil {
			return nil, err
		}
		writer = file
		closer = file
	}

	l, err := NewWithWriter(writer, cfg)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	l.closer = closer
	return l, nil
}

// NewWithWriter создает logger, пишущий в произвольный writer.
// Output, MaxBackups и RotateSchedule игнорируются.
func NewWithWriter(w io.Writer, cfg Config) (*Logger, error) {
	// Парсинг уровня логирования
	level, valid := parseLevel(cfg.Level)
	if !valid {
		return nil, fmt.Errorf("invalid log level: %s (expected: debug, info, warn, error)", cfg.Level)
	}

	// Создание handler
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s (expected: json, text)", cfg.Format)
	}

	return &Logger{
		slog: slog.New(handler),
	}, nil
}

// openFile открывает файл лога через lumberjack и ротирует его, если
// граница расписания уже пройдена
func openFile(cfg Config) (*lumberjack.Logger, error) {
	filePath, err := expandPath(cfg.Output)
	if err != nil {
		return nil, err
	}

	// Создаём директорию, если она не существует
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	// lumberjack открывает файл лениво, проверяем доступность заранее
	probe, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	_ = probe.Close()

	file := &lumberjack.Logger{
		Filename:   filePath,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}

	if cfg.RotateSchedule != "" {
		if _, err := rotateIfDue(file, cfg.RotateSchedule, timeNow()); err != nil {
			return nil, err
		}
	}

	return file, nil
}

// expandPath разворачивает ~ в домашнюю директорию
func expandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		p = filepath.Join(homeDir, p[2:])
	}
	return filepath.Clean(p), nil
}

// parseLevel конвертирует строку уровня в slog.Level
func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false // Invalid
	}
}

// Debug логирует сообщение на уровне debug
func (l *Logger) Debug(msg string, fields ...Field) {
	l.slog.Debug(msg, l.fieldsToAny(fields...)...)
}

// Info логирует сообщение на уровне info
func (l *Logger) Info(msg string, fields ...Field) {
	l.slog.Info(msg, l.fieldsToAny(fields...)...)
}

// Warn логирует сообщение на уровне warn
func (l *Logger) Warn(msg string, fields ...Field) {
	l.slog.Warn(msg, l.fieldsToAny(fields...)...)
}

// Error логирует сообщение на уровне error с ошибкой
func (l *Logger) Error(msg string, err error, fields ...Field) {
	allFields := append([]Field{{Key: "error", Value: err}}, fields...)
	l.slog.Error(msg, l.fieldsToAny(allFields...)...)
}

// fieldsToAny конвертирует срез Field в срез slog.Attr
func (l *Logger) fieldsToAny(fields ...Field) []any {
	result := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		result = append(result, f.Key, f.Value)
	}
	return result
}

// With возвращает новый logger с добавленными полями.
// Возвращённый logger не владеет файлом, закрывать нужно исходный.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{
		slog: l.slog.With(l.fieldsToAny(fields...)...),
	}
}

// Close закрывает файл лога, если logger им владеет
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
