package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/sundayezeilo/shortstore"
	"github.com/sundayezeilo/shortstore/aliasgen"
	"github.com/sundayezeilo/shortstore/internal/config"
	"github.com/sundayezeilo/shortstore/internal/shell"
)

// App holds the application dependencies and configuration.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *shortstore.Store
	Shell  *shell.Shell
}

// Options carry command line overrides. Zero values leave the loaded
// configuration untouched.
type Options struct {
	Domain        string
	AliasLength   int
	AliasStrategy string
	Prompt        bool
	Quiet         bool
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(opts Options) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, opts)
	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	if cfg.Store.Domain == "" {
		return nil, fmt.Errorf("short domain is required: set SHORTSTORE_DOMAIN or pass --domain")
	}

	logger := setupLogger(cfg.App.LogLevel, cfg.App.LogFormat, opts.Quiet)

	logger.Info("starting shortstore",
		"env", cfg.App.Environment,
		"domain", cfg.Store.Domain,
	)

	store, err := shortstore.New(shortstore.Config{
		Domain:          cfg.Store.Domain,
		Aliases:         aliasGenerator(cfg.Store.AliasStrategy),
		AliasLength:     cfg.Store.AliasLength,
		AliasMaxRetries: cfg.Store.AliasMaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	// Every session carries its own identity in the logs.
	sh := shell.New(shell.Config{
		Store:  store,
		Logger: logger.With("session_id", uuid.NewString()),
		Prompt: opts.Prompt,
	})

	logger.Info("store initialized",
		"alias_length", cfg.Store.AliasLength,
		"alias_strategy", cfg.Store.AliasStrategy,
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Shell:  sh,
	}, nil
}

// Run drives the interactive session until it ends.
func (a *App) Run(ctx context.Context) error {
	if err := a.Shell.Run(ctx); err != nil {
		return fmt.Errorf("session error: %w", err)
	}

	return nil
}

// Shutdown logs the final store state before the process exits.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down", "records", a.Store.Len())

	return nil
}

// applyOverrides folds command line flags into the loaded configuration.
func applyOverrides(cfg *config.Config, opts Options) {
	if opts.Domain != "" {
		cfg.Store.Domain = opts.Domain
	}
	if opts.AliasLength > 0 {
		cfg.Store.AliasLength = opts.AliasLength
	}
	if opts.AliasStrategy != "" {
		cfg.Store.AliasStrategy = opts.AliasStrategy
	}
}

// aliasGenerator picks the generator behind an alias strategy name.
func aliasGenerator(strategy string) aliasgen.Generator {
	if strategy == "sequence" {
		return aliasgen.NewSequence()
	}

	return aliasgen.NewRandom()
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level and
// format. Logs go to stderr so result envelopes own stdout.
func setupLogger(level, format string, quiet bool) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}
