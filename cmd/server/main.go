package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/devnest/internal/config"
	"github.com/iudanet/devnest/internal/logging"
	"github.com/iudanet/devnest/internal/server"
	"github.com/iudanet/devnest/internal/server/handlers"
	"github.com/iudanet/devnest/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// errVersion сигнализирует, что был запрошен только вывод версии
var errVersion = errors.New("version requested")

type options struct {
	configPath string
	addr       string
	dbPath     string
	style      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errVersion) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stdout io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("devnest-server", flag.ContinueOnError)
	fs.SetOutput(stdout)

	showVersion := fs.Bool("version", false, "Show version information")
	fs.StringVar(&opts.configPath, "config", "", "Path to TOML config file (or set "+config.EnvConfig+")")
	fs.StringVar(&opts.addr, "addr", "", "Listen address (default :8080)")
	fs.StringVar(&opts.dbPath, "db", "", "Path to SQLite database")
	fs.StringVar(&opts.style, "auth-style", "", "Auth response style: nested, flattened, token_only")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if *showVersion {
		printVersion(stdout)
		return options{}, errVersion
	}
	return opts, nil
}

// loadConfig собирает конфигурацию: defaults -> файл -> env -> флаги
func loadConfig(opts options, getenv func(string) string) (config.Server, error) {
	path := opts.configPath
	if path == "" {
		path = getenv(config.EnvConfig)
	}

	cfg, err := config.LoadServer(path, getenv)
	if err != nil {
		return config.Server{}, err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.style != "" {
		cfg.AuthResponseStyle = opts.style
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts, getenv)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	style, err := handlers.ParseAuthStyle(cfg.AuthResponseStyle)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	srv := server.New(server.Config{
		Version: Version,
		Style:   style,
		JWT: handlers.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			TokenTTL: cfg.TokenTTL,
		},
		RateWindow: cfg.RateWindow,
		RateLimit:  cfg.RateLimit,
	}, store, logger)
	defer srv.Close()

	logger.Info("devnest server starting",
		slog.String("addr", cfg.Addr),
		slog.String("db", cfg.DBPath),
		slog.String("auth_style", cfg.AuthResponseStyle),
		slog.String("version", Version),
	)

	if err := srv.Run(ctx, cfg.Addr); err != nil {
		return err
	}

	logger.Info("devnest server stopped")
	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "DevNest Server\n")
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
}
