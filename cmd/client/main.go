// Package main wires the GophTasks client: configuration, logging, the
// simulated backend over its task repository, the session store and the
// interactive shell.
package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/GophTasks/internal/backend"
	"github.com/atinyakov/GophTasks/internal/client/shell"
	"github.com/atinyakov/GophTasks/internal/client/storage"
	"github.com/atinyakov/GophTasks/internal/config"
	"github.com/atinyakov/GophTasks/internal/db"
	"github.com/atinyakov/GophTasks/internal/logger"
	"github.com/atinyakov/GophTasks/internal/repository"
	"github.com/atinyakov/GophTasks/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// sessionKeyPrefix namespaces the session keys in Redis.
const sessionKeyPrefix = "gophtasks:session:"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		return err
	}
	if options.Version {
		fmt.Printf("GophTasks Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return nil
	}

	log := logger.New()
	var outputs []string
	if options.LogFile != "" {
		outputs = append(outputs, options.LogFile)
	}
	if err := log.Init(options.LogLevel, outputs...); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// unblock the shell's pending read on interrupt
	go func() {
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	seed, err := backend.LoadSeed(options.CredentialsPath, options.TasksPath)
	if err != nil {
		return fmt.Errorf("cannot load seed data: %w", err)
	}

	repo, closeRepo, err := newTaskRepository(ctx, options, seed, zapLogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Seed IDs are known up front; a Postgres dataset may hold more rows.
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("cannot read task dataset: %w", err)
	}

	simOpts := []backend.Option{
		backend.WithLogger(zapLogger.Named("backend")),
		backend.WithLatency(backend.DefaultLatency().Scale(options.LatencyScale)),
	}
	switch options.IDStrategy {
	case config.IDUUID:
		simOpts = append(simOpts, backend.WithIDGenerator(backend.UUIDGenerator{}))
	default:
		simOpts = append(simOpts, backend.WithIDGenerator(backend.NewSequenceGenerator("t", existing)))
	}
	if options.StrictTokens {
		simOpts = append(simOpts, backend.WithStrictTokens())
	}
	sim := backend.New(backend.NewGate(), repository.NewCredentialTable(seed.Credentials), repo, simOpts...)

	store, closeStore, err := newSessionStore(ctx, options, zapLogger.Named("storage"))
	if err != nil {
		return err
	}
	defer closeStore()

	router := shell.NewRouter()
	session := service.NewSessionManager(sim, store, router, zapLogger.Named("session"))
	tasks := service.NewTaskCollection(sim, zapLogger.Named("tasks"))

	service.StartAutoRefresh(ctx, tasks, options.RefreshInterval(), session.IsAuthenticated, zapLogger.Named("refresh"))

	zapLogger.Info("client started",
		zap.String("store", options.Store),
		zap.Bool("postgres", options.DatabaseDSN != ""),
		zap.String("ids", options.IDStrategy),
	)

	sh := shell.New(session, tasks, router, os.Stdin, os.Stdout, zapLogger.Named("shell"))
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// newTaskRepository returns the Postgres repository when a DSN is configured
// and the in-memory one otherwise. Both start from the seed dataset.
func newTaskRepository(ctx context.Context, options *config.Options, seed *backend.Seed, log *zap.Logger) (backend.TaskRepository, func(), error) {
	if options.DatabaseDSN == "" {
		return repository.NewMemoryTaskRepository(seed.Tasks...), func() {}, nil
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot init database: %w", err)
	}
	closeDB := func() { closeQuietly(postgresDB, log) }

	if err := db.SeedTasks(ctx, postgresDB, seed.Tasks); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("cannot seed database: %w", err)
	}
	return repository.NewPostgresTaskRepository(postgresDB), closeDB, nil
}

func closeQuietly(postgresDB *sql.DB, log *zap.Logger) {
	if err := postgresDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

func newSessionStore(ctx context.Context, options *config.Options, log *zap.Logger) (service.KeyValueStore, func(), error) {
	switch options.Store {
	case config.StoreMemory:
		return storage.NewMemoryStore(), func() {}, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: options.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("cannot reach redis at %s: %w", options.RedisAddr, err)
		}
		rs, err := storage.NewRedisStore(client, sessionKeyPrefix, options.SessionTTL())
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return rs, func() { _ = client.Close() }, nil
	default:
		fs, err := storage.NewFileStore(options.StorePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open session file: %w", err)
		}
		return fs, func() {}, nil
	}
}
