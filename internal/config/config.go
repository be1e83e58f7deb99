package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/wasilibs/go-re2"
)

// ErrConfigNotFound is returned by Load when the configuration file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

const (
	DefaultDatabasePath   = "/app/backend/data/webui.db"
	DefaultUploadsDir     = "/app/backend/data/uploads"
	DefaultRetentionDays  = 30
	DefaultLogOutput      = "./logs/webui-janitor.log"
	DefaultLogMaxBackups  = 4
	DefaultRotateSchedule = "0 0 * * 1" // каждый понедельник в полночь
)

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	_ = expandEnvVars(cfg)
	return cfg
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := expandEnvVars(&cfg); err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	return &cfg, nil
}

// Encode сериализует конфигурацию обратно в TOML
func (c *Config) Encode() (string, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return sb.String(), nil
}

// Validate проверяет валидность конфигурации
func (c *Config) Validate() []error {
	var errs []error

	if c.Database.Path == "" {
		errs = append(errs, fmt.Errorf("database.path is required"))
	}

	if c.Uploads.Dir == "" {
		errs = append(errs, fmt.Errorf("uploads.dir is required"))
	}
	for i, pattern := range c.Uploads.ExcludePatterns {
		if pattern == "" {
			errs = append(errs, fmt.Errorf("uploads.exclude_patterns[%d] is empty", i))
			continue
		}
		if _, err := re2.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("invalid uploads.exclude_patterns[%d] %q: %w", i, pattern, err))
		}
	}

	if c.Cleanup.RetentionDays < 1 {
		errs = append(errs, fmt.Errorf("cleanup.retention_days must be >= 1 (got %d)", c.Cleanup.RetentionDays))
	}

	// Проверка logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	if c.Logging.Output == "" {
		errs = append(errs, fmt.Errorf("logging.output is required"))
	}

	if c.Logging.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("logging.max_backups must be >= 0 (got %d)", c.Logging.MaxBackups))
	}

	if c.Logging.RotateSchedule != "" {
		if _, err := cron.ParseStandard(c.Logging.RotateSchedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid logging.rotate_schedule %q: %w", c.Logging.RotateSchedule, err))
		}
	}

	return errs
}

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = DefaultUploadsDir
	}
	if c.Cleanup.RetentionDays == 0 {
		c.Cleanup.RetentionDays = DefaultRetentionDays
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = DefaultLogOutput
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.RotateSchedule == "" {
		c.Logging.RotateSchedule = DefaultRotateSchedule
	}
}

// expandEnvVars расширяет переменные окружения в путях конфигурации
func expandEnvVars(c *Config) error {
	for _, p := range []*string{
		&c.Database.Path,
		&c.Uploads.Dir,
		&c.Logging.Output,
		&c.Metrics.TextfileDir,
	} {
		*p = expandHome(expandEnv(*p))
	}

	return nil
}

// expandEnv расширяет переменную окружения формата ${VAR:default}.
// Остаток строки после } сохраняется.
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	rest := s[end+1:]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		if val := os.Getenv(parts[0]); val != "" {
			return val + rest
		}
		return parts[1] + rest
	}

	// Без значения по умолчанию
	return os.Getenv(content) + rest
}

// expandHome расширяет ~ в пути
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
