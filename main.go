// Copyright (c) 2024 cblomart
// Licensed under the MIT License

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "showcase/docs"
	"showcase/internal/api"
	"showcase/internal/cache"
	"showcase/internal/catalog"
	"showcase/internal/config"
	"showcase/internal/discovery"
	"showcase/internal/feed"
	"showcase/internal/loader"
	"showcase/internal/metrics"
	"showcase/internal/newsletter"
	"showcase/internal/notify"
	"showcase/internal/session"
	"showcase/internal/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const sessionSweepInterval = time.Minute

func main() {
	dotEnvErr := config.LoadDotEnv()
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// A missing .env is normal outside development
	if dotEnvErr != nil {
		zap.S().Debugf("No .env file loaded, using process environment: %v", dotEnvErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource, err := catalogSource(ctx, cfg)
	if err != nil {
		zap.S().Fatalf("Failed to initialize catalog source: %v", err)
	}
	store, err := catalog.Build(ctx, source)
	closeSource()
	if err != nil {
		zap.S().Fatalf("Failed to load catalog: %v", err)
	}

	// One attempter for all sessions so the failure rate holds service-wide
	var loadAttempter loader.Attempter
	if cfg.Showcase.LoadFailureRate > 0 {
		loadAttempter = loader.NewRandomAttempter(cfg.Showcase.LoadFailureRate, time.Now().UnixNano())
	}

	sessions := session.NewRegistry(
		cache.NewManager(cfg.Showcase.SessionTTL, sessionSweepInterval),
		func(n notify.Notifier) *discovery.Engine {
			return discovery.New(store, discovery.Options{
				PageSize:       cfg.Showcase.PageSize,
				SearchDebounce: cfg.Showcase.SearchDebounce,
				Load: loader.Options{
					InitialDelay: cfg.Showcase.LoadDelay,
					RetryDelay:   cfg.Showcase.RetryDelay,
				},
				Attempter: loadAttempter,
				Notifier:  n,
			})
		},
	)
	sessions.OnClose(metrics.SessionsActive.Dec)
	defer sessions.Close()

	newsletters := cache.NewManager(cfg.Showcase.SessionTTL, sessionSweepInterval)
	defer newsletters.CloseAll()
	subscribeAttempter := subscriptionAttempter(cfg.Newsletter.SuccessRate)

	server := api.NewServer(api.Dependencies{
		Store:       store,
		Sessions:    sessions,
		Newsletters: newsletters,
		NewForm: func() *newsletter.Form {
			return newsletter.NewForm(newsletter.Options{
				Delay:     cfg.Newsletter.Delay,
				Attempter: subscribeAttempter,
				Notifier:  notify.Log{},
			})
		},
	}, cfg)

	zap.S().Infof("Starting content showcase on port %d", cfg.Port)
	zap.S().Infof("Catalog: %d articles from %s source", store.Len(), cfg.Catalog.Source)
	zap.S().Infof("Session TTL: %v", cfg.Showcase.SessionTTL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		zap.S().Info("Received shutdown signal, stopping services...")
		cancel()
	}()

	if err := server.StartWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zap.S().Fatalf("Failed to start server: %v", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	return zapConfig.Build()
}

// catalogSource picks where the article store is read from. The returned
// func releases the source once the store is built.
func catalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, func(), error) {
	noop := func() {}

	switch cfg.Catalog.Source {
	case config.SourceStatic:
		return catalog.Static{}, noop, nil

	case config.SourceYAML:
		if cfg.Catalog.File == "" {
			return nil, nil, errors.New("CATALOG_FILE is required for the yaml source")
		}
		return catalog.YAMLFile{Path: cfg.Catalog.File}, noop, nil

	case config.SourceSQLite:
		db, err := storage.NewStorage(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		var seed storage.Seeder = catalog.Static{}
		if cfg.Catalog.File != "" {
			seed = catalog.YAMLFile{Path: cfg.Catalog.File}
		}
		if err := storage.EnsureSeeded(ctx, db, seed); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				zap.S().Warnf("Failed to close catalog database: %v", err)
			}
		}, nil

	case config.SourceFeed:
		return feed.NewImporter(cfg.Catalog.FeedURLs, cfg.Catalog.FeedTimeout), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog source '%s'", cfg.Catalog.Source)
	}
}

// subscriptionAttempter succeeds with the configured probability and counts outcomes
func subscriptionAttempter(successRate float64) loader.Attempter {
	var inner loader.Attempter = loader.Succeed{}
	if successRate < 1 {
		inner = loader.NewRandomAttempter(1-successRate, time.Now().UnixNano())
	}

	return loader.AttemptFunc(func(ctx context.Context) error {
		err := inner.Attempt(ctx)
		result := "success"
		if err != nil {
			result = "failed"
		}
		metrics.NewsletterSubmissions.WithLabelValues(result).Inc()
		return err
	})
}
