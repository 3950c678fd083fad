package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-pull/app/api"
	"github.com/lysyi3m/rss-pull/app/cache"
	"github.com/lysyi3m/rss-pull/app/cfg"
	"github.com/lysyi3m/rss-pull/app/database"
	"github.com/lysyi3m/rss-pull/app/feed"
	"github.com/lysyi3m/rss-pull/app/fetch"
	"github.com/lysyi3m/rss-pull/app/tasks"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if errors.Is(err, cfg.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting RSS Pull", "version", appCfg.Version, "timezone", appCfg.Timezone)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", db.Path(), "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed configurations: %w", err)
	}

	feedRepo := database.NewFeedRepository(db)
	articleRepo := database.NewArticleRepository(db)

	var responseCache fetch.ResponseCache = database.NewResponseRepository(db)
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(context.Background(), appCfg.RedisAddr, appCfg.CacheMaxAge)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		responseCache = redisCache
	}

	downloader := fetch.NewDownloader(fetch.Options{
		UserAgent:      appCfg.UserAgent,
		CacheMaxAge:    appCfg.CacheMaxAge,
		ConnectTimeout: appCfg.ConnectTimeout,
		ReadTimeout:    appCfg.ReadTimeout,
		Cache:          responseCache,
	})

	if appCfg.ClearCache {
		if err := downloader.ClearCache(); err != nil {
			return fmt.Errorf("failed to clear response cache: %w", err)
		}
		slog.Info("Response cache cleared")
	}

	scheduler := tasks.NewScheduler(tasks.Deps{
		ConfigCache:   configCache,
		FeedRepo:      feedRepo,
		ArticleRepo:   articleRepo,
		Fetcher:       downloader,
		Extractor:     feed.NewContentExtractor(),
		Callback:      tasks.LogCallback{},
		ParserOptions: []feed.Option{feed.WithLogger(slog.Default().With("component", "parser"))},
	}, time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(configCache, feedRepo, articleRepo, scheduler, appCfg.BaseUrl, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return nil
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
