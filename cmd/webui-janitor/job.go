package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aatumaykin/webui-janitor/internal/cleanup"
	"github.com/aatumaykin/webui-janitor/internal/config"
	"github.com/aatumaykin/webui-janitor/internal/constants"
	"github.com/aatumaykin/webui-janitor/internal/logger"
	"github.com/aatumaykin/webui-janitor/internal/metrics"
	"github.com/aatumaykin/webui-janitor/internal/store"
	"github.com/aatumaykin/webui-janitor/internal/uploads"
)

// jobOptions holds the flags of a cleanup command.
type jobOptions struct {
	ConfigPath string
	Debug      bool
	Test       string
	DB         string
	Uploads    string
	Days       int // 0 = из конфигурации
	Summary    bool
}

type jobFunc func(ctx context.Context, r *cleanup.Runner) (cleanup.Stats, error)

// newJobCmd builds a cleanup command. defaultTest is the --test value used
// when the flag is not given; withDays adds the --days override.
func newJobCmd(use, short, long, defaultTest string, withDays bool, run jobFunc) *cobra.Command {
	opts := &jobOptions{}

	cmd := &cobra.Command{
		Use:          use,
		Short:        short,
		Long:         long,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			opts.Debug = debug

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runJob(ctx, cmd.OutOrStdout(), use, *opts, run)
		},
	}

	cmd.Flags().StringVar(&opts.Test, "test", defaultTest, "test mode: Y logs what would be deleted, N deletes")
	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the Open WebUI database (overrides config)")
	cmd.Flags().StringVar(&opts.Uploads, "uploads", "", "path to the uploads directory (overrides config)")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "print run statistics as YAML")
	if withDays {
		cmd.Flags().IntVar(&opts.Days, "days", 0, "retention in days (overrides config)")
	}

	return cmd
}

// parseTestMode maps a --test value to dry-run.
func parseTestMode(v string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case constants.TestModeYes:
		return true, nil
	case constants.TestModeNo:
		return false, nil
	default:
		return false, fmt.Errorf("invalid --test value %q (expected Y or N)", v)
	}
}

// loadConfig loads path. Without an explicit path a missing default config
// file yields the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cfg, err := config.Load(constants.DefaultConfigPath)
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// resolveConfig loads the config and applies command-line overrides.
func resolveConfig(opts jobOptions) (*config.Config, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.DB != "" {
		cfg.Database.Path = opts.DB
	}
	if opts.Uploads != "" {
		cfg.Uploads.Dir = opts.Uploads
	}
	if opts.Days != 0 {
		cfg.Cleanup.RetentionDays = opts.Days
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// runJob runs one cleanup job end to end: config, logger, database, run,
// metrics and summary.
func runJob(ctx context.Context, out io.Writer, job string, opts jobOptions, run jobFunc) error {
	dryRun, err := parseTestMode(opts.Test)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	baseLog, err := logger.New(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		Output:         cfg.Logging.Output,
		MaxBackups:     cfg.Logging.MaxBackups,
		RotateSchedule: cfg.Logging.RotateSchedule,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := baseLog.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log: %v\n", err)
		}
	}()

	log := baseLog.With(
		logger.Field{Key: "run_id", Value: uuid.NewString()},
		logger.Field{Key: "job", Value: job},
	)
	log.Info("starting webui-janitor",
		logger.Field{Key: "version", Value: Version},
		logger.Field{Key: "git_commit", Value: GitCommit},
		logger.Field{Key: "config", Value: opts.ConfigPath})

	stats, runErr := execute(ctx, cfg, dryRun, log, run)
	stats.Job = job
	stats.DryRun = dryRun

	if cfg.Metrics.TextfileDir != "" {
		m := metrics.InitPrometheusMetrics(metrics.Namespace)
		m.Observe(stats, runErr, time.Now())
		path, err := m.WriteTextfile(cfg.Metrics.TextfileDir, job)
		if err != nil {
			log.Error("failed to write metrics", err)
		} else {
			log.Debug("metrics written", logger.Field{Key: "path", Value: path})
		}
	}

	if opts.Summary {
		data, err := yaml.Marshal(stats)
		if err != nil {
			log.Error("failed to encode summary", err)
		} else if _, err := out.Write(data); err != nil {
			log.Error("failed to print summary", err)
		}
	}

	return runErr
}

func execute(ctx context.Context, cfg *config.Config, dryRun bool, log *logger.Logger, run jobFunc) (cleanup.Stats, error) {
	db, err := store.Open(ctx, cfg.Database.Path, store.Options{ReadOnly: dryRun})
	if err != nil {
		log.Error("failed to open database", err,
			logger.Field{Key: "path", Value: cfg.Database.Path})
		return cleanup.Stats{}, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", err)
		}
	}()

	dir, err := uploads.New(cfg.Uploads.Dir, cfg.Uploads.ExcludePatterns)
	if err != nil {
		log.Error("invalid uploads configuration", err)
		return cleanup.Stats{}, err
	}

	runner := cleanup.NewRunner(cleanup.Config{
		RetentionDays: cfg.Cleanup.RetentionDays,
		DryRun:        dryRun,
	}, db, dir, log)

	return run(ctx, runner)
}
