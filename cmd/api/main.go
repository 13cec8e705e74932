package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Dan9191/salary-bridge/internal/config"
	"github.com/Dan9191/salary-bridge/internal/handler"
	"github.com/Dan9191/salary-bridge/internal/integrations/gemini"
	"github.com/Dan9191/salary-bridge/internal/narrative"
	"github.com/Dan9191/salary-bridge/internal/repository"
	"github.com/Dan9191/salary-bridge/internal/scheduler"
	"github.com/Dan9191/salary-bridge/internal/service"
	"github.com/Dan9191/salary-bridge/internal/settings"
	"github.com/Dan9191/salary-bridge/internal/storage"
	"github.com/Dan9191/salary-bridge/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local cache tier
	local, closeLocal, err := openLocalCache(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to open local cache: %v", err)
	}
	defer closeLocal()

	// Remote tier is best effort: the service keeps working from the local cache without it
	var repo *repository.Repository
	opts := service.Options{}
	var remote settings.Remote
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo = repository.NewRepository(db)
		if err := db.PingContext(ctx); err != nil {
			logger.Warnf("Database unreachable, remote sync will fail until it recovers: %v", err)
		} else if err := repo.Migrate(ctx); err != nil {
			logger.Warnf("Failed to migrate database: %v", err)
		}
		remote = repo
		opts.Scenarios = repo
		opts.Digest = repo
	}

	// Text generation
	var gen narrative.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Fatalf("Failed to create Gemini client: %v", err)
		}
		gen = client
		logger.Infof("Narrative generation via %s", client.Name())
	} else {
		logger.Warn("GEMINI_API_KEY not set, financial plans use the fallback template")
	}

	if cfg.MailEnabled() {
		opts.Mailer = email.NewSender(cfg, logger)
	}

	// Initialize layers
	store := settings.NewStore(local, remote, cfg.RemoteTimeout, logger)
	narrator := narrative.NewAdapter(gen, cfg.NarrativeTimeout, logger)
	svc := service.NewService(store, narrator, logger, opts)
	h := handler.NewHandler(svc, logger)

	jobs := scheduler.Jobs{
		PruneSchedule: cfg.PruneSchedule,
		Retention:     cfg.CacheRetention,
	}
	if p, ok := local.(storage.Pruner); ok {
		jobs.Pruner = p
	}
	if opts.Digest != nil && opts.Mailer != nil {
		jobs.DigestSchedule = cfg.DigestSchedule
		jobs.Digest = svc
	}
	sched, err := scheduler.New(jobs, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, cfg, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.NarrativeTimeout + 10*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
	logger.Info("Server stopped")
}

// openLocalCache builds the configured local backend, sealed when a cache key is set
func openLocalCache(ctx context.Context, cfg *config.Config) (storage.KV, func(), error) {
	var kv storage.KV
	closeFn := func() {}

	switch cfg.CacheBackend {
	case "sqlite":
		db, err := storage.OpenSQLite(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		kv, closeFn = db, func() { db.Close() }
	case "redis":
		rdb, err := storage.DialRedis(ctx, cfg.RedisAddr, cfg.CacheRetention)
		if err != nil {
			return nil, nil, err
		}
		kv, closeFn = rdb, func() { rdb.Close() }
	default:
		kv = storage.NewMemoryKV()
	}

	key, err := cfg.CacheKeyBytes()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if key != nil {
		sealed, err := storage.NewSealedKV(kv, key)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		kv = sealed
	}
	return kv, closeFn, nil
}
