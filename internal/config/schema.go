// Package config provides configuration loading and validation for webui-janitor.
// It supports TOML configuration files with environment variable expansion,
// default values, and validation.
//
// Configuration structure:
//   - [database]: Path to the Open WebUI SQLite database
//   - [uploads]: Uploads directory and names that are never treated as orphans
//   - [cleanup]: Retention window for age-based chat cleanup
//   - [logging]: Logging level, format, output and rotation
//   - [metrics]: Optional node_exporter textfile directory for run metrics
//
// Environment variables:
// Path values can reference environment variables using ${VAR} or ${VAR:default} syntax.
// For example: path = "${WEBUI_DATA:/app/backend/data}/webui.db"
package config

// Config represents the main application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Uploads  UploadsConfig  `toml:"uploads"`
	Cleanup  CleanupConfig  `toml:"cleanup"`
	Logging  LoggingConfig  `toml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// UploadsConfig представляет конфигурацию директории загрузок
type UploadsConfig struct {
	Dir             string   `toml:"dir"`
	ExcludePatterns []string `toml:"exclude_patterns"` // RE2 выражения имён, которые не считаются сиротами
}

// CleanupConfig представляет конфигурацию очистки старых чатов
type CleanupConfig struct {
	RetentionDays int `toml:"retention_days"`
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	Output         string `toml:"output"`
	MaxBackups     int    `toml:"max_backups"`
	RotateSchedule string `toml:"rotate_schedule"`
}

// MetricsConfig представляет конфигурацию метрик
type MetricsConfig struct {
	TextfileDir string `toml:"textfile_dir"` // пусто = метрики не пишутся
}
