package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AntonStoeckl/userbooks-store-go/config"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/facade"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine"
)

const (
	adapterPGX           = "pgx"
	adapterSQL           = "sql"
	adapterSQLX          = "sqlx"
	strategyRepository   = "repository"
	strategyTemplate     = "template"
	defaultTimeout       = 30 * time.Second
	exitCodeFailure      = 1
	exitCodePrecondition = 2
	exitCodeNotFound     = 3
)

type Config struct {
	DSN         string
	ReplicaDSN  string
	UseReplica  bool
	Adapter     string
	Strategy    string
	Operation   string
	ID          userbooks.RecordID
	RequestFile string
	Timeout     time.Duration
	Debug       bool
}

func main() {
	cfg := parseFlags()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.ErrorContext(ctx, "userbooks failed", "error", err.Error(), "error_kind", userbooks.KindOf(err).String())
		os.Exit(exitCodeOf(err))
	}
}

func parseFlags() Config {
	var (
		dsn         = flag.String("dsn", config.PostgresDSN(), "PostgreSQL DSN of the primary database")
		replicaDSN  = flag.String("replica-dsn", config.PostgresReplicaDSN(), "PostgreSQL DSN of the replica database")
		useReplica  = flag.Bool("read-replica", false, "Serve get from the replica (pgx and sql adapters only)")
		adapter     = flag.String("adapter", adapterPGX, "Database adapter: pgx, sql or sqlx")
		strategy    = flag.String("strategy", strategyRepository, "Persistence strategy: repository or template")
		id          = flag.Int64("id", 0, "User id for get and delete")
		requestFile = flag.String("request", "-", "Request JSON file for create and update, - reads stdin")
		timeout     = flag.Duration("timeout", defaultTimeout, "Timeout for the whole operation")
		debug       = flag.Bool("debug", false, "Log executed SQL statements")
	)

	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] create|update|get|delete\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	return Config{
		DSN:         *dsn,
		ReplicaDSN:  *replicaDSN,
		UseReplica:  *useReplica,
		Adapter:     strings.ToLower(*adapter),
		Strategy:    strings.ToLower(*strategy),
		Operation:   strings.ToLower(flag.Arg(0)),
		ID:          *id,
		RequestFile: *requestFile,
		Timeout:     *timeout,
		Debug:       *debug,
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, postgresengine.WithContextualLogger(logger))
	if err != nil {
		return err
	}
	defer closeStore()

	if err = store.EnsureSchema(ctx); err != nil {
		return err
	}

	users, books, err := newServices(cfg.Strategy, store)
	if err != nil {
		return err
	}

	userData, err := facade.NewUserDataFacade(users, books, store, facade.WithContextualLogger(logger))
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(cfg)
	if err != nil {
		return err
	}
	defer closeInput()

	if cfg.UseReplica && cfg.Operation == opGet {
		ctx = userbooks.WithEventualConsistency(ctx)
	}

	return runOperation(ctx, userData, cfg.Operation, cfg.ID, input, os.Stdout)
}

func openInput(cfg Config) (io.Reader, func(), error) {
	if cfg.Operation != opCreate && cfg.Operation != opUpdate {
		return strings.NewReader(""), func() {}, nil
	}

	if cfg.RequestFile == "-" {
		return os.Stdin, func() {}, nil
	}

	file, err := os.Open(cfg.RequestFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open request file: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}

func exitCodeOf(err error) int {
	switch userbooks.KindOf(err) {
	case userbooks.KindPreconditionFailure:
		return exitCodePrecondition
	case userbooks.KindNotFound:
		return exitCodeNotFound
	default:
		return exitCodeFailure
	}
}
