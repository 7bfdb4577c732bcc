package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/devnest/internal/client/api"
	"github.com/iudanet/devnest/internal/client/auth"
	"github.com/iudanet/devnest/internal/client/cli"
	"github.com/iudanet/devnest/internal/client/iocli"
	"github.com/iudanet/devnest/internal/client/session"
	"github.com/iudanet/devnest/internal/client/social"
	"github.com/iudanet/devnest/internal/client/storage/boltdb"
	"github.com/iudanet/devnest/internal/config"
	"github.com/iudanet/devnest/internal/logging"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Глобальные флаги
var (
	configPath string
	serverURL  string
	dbPath     string
	logLevel   string
	timeout    time.Duration
)

// app зависимости, собранные в PersistentPreRunE
var app struct {
	cli     *cli.Cli
	storage *boltdb.Storage
}

var rootCmd = &cobra.Command{
	Use:   "devnest",
	Short: "DevNest social network client",
	Long: `devnest is a command-line client for the DevNest social network.

Read your feed, publish posts, like, comment and follow people.
The session is stored locally and reused between invocations.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Show version information",
	Annotations: map[string]string{"skipSetup": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("DevNest Client\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Git Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to TOML config file (or set "+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to local database (default devnest-client.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(versionCmd)
	addCommands(rootCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = teardown()
		stop()
		os.Exit(1)
	}
}

// loadConfig собирает конфигурацию: defaults -> файл -> env -> флаги
func loadConfig(cmd *cobra.Command) (config.Client, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}

	cfg, err := config.LoadClient(path, os.Getenv)
	if err != nil {
		return config.Client{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = serverURL
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}

	return cfg, cfg.Validate()
}

func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations["skipSetup"] == "true" {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx := cmd.Context()

	// Открываем BoltDB storage
	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	app.storage = store

	sessions := session.NewManager(store, session.NewReconciler(logger), logger)
	if _, err := sessions.Load(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
		return err
	}

	apiClient := api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.Timeout),
		api.WithTokenSource(sessions),
		api.WithLogger(logger),
	)

	authService := auth.NewService(apiClient, sessions, logger)
	socialService := social.NewService(apiClient, sessions, cfg.Timeout, logger)

	app.cli = cli.New(iocli.NewStdio(), authService, socialService)

	logger.Debug("client ready", slog.String("server", cfg.ServerURL), slog.String("db", cfg.DBPath))
	return nil
}

func teardown() error {
	if app.storage == nil {
		return nil
	}
	err := app.storage.Close()
	app.storage = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
