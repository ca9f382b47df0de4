package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BuzzLyutic/task-tracker/internal/config"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

func main() {
	// Load configuration; flags are layered on top below
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCommand(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task tracker over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfg)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the task store (an empty task file, or the tasks table) and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), *cfg)
		},
	}

	root := &cobra.Command{
		Use:   "task-tracker",
		Short: "A minimal task tracking web application",
		Long: `task-tracker keeps short textual tasks (title, description, status)
in a JSON file, or optionally in PostgreSQL or SQLite, and serves a small
HTML/JSON interface to add, list, update and delete them.

CONFIGURATION:
  defaults < tasks.toml (or $TASKS_CONFIG) < .env < environment < flags

  PORT, APP_ENV, LOG_LEVEL, STORAGE (file|postgres|sqlite),
  TASKS_FILE, DATABASE_URL, SQLITE_PATH, QUEUE_SIZE, SHUTDOWN_TIMEOUT`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: file, postgres or sqlite")
	flags.StringVar(&cfg.TasksFile, "tasks-file", cfg.TasksFile, "path of the JSON task file")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string")
	flags.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flags.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "pending storage calls buffered by the writer")

	root.AddCommand(serve, initCmd)
	return root
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// openRepository builds the configured backend and makes sure its storage exists.
func openRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.TaskRepository, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		r := repo.NewPostgresRepo(pool, logger)
		if err := r.EnsureSchema(ctx); err != nil {
			r.Close()
			return nil, err
		}
		logger.Info("Successfully connected to the Database!")
		return r, nil

	case config.StorageSQLite:
		return repo.NewSQLiteRepo(cfg.SQLitePath, logger)

	default:
		r := repo.NewFileRepo(cfg.TasksFile, logger)
		if err := r.Init(); err != nil {
			return nil, err
		}
		return r, nil
	}
}

func runInit(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	r, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Task store ready", zap.String("storage", cfg.Storage))
	return r.Close()
}
