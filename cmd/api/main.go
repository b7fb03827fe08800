package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/mediazoo/laukaainfo/api/internal/cache"
	"github.com/mediazoo/laukaainfo/api/internal/config"
	"github.com/mediazoo/laukaainfo/api/internal/database"
	"github.com/mediazoo/laukaainfo/api/internal/handler"
	"github.com/mediazoo/laukaainfo/api/internal/ingest"
	middlewarepkg "github.com/mediazoo/laukaainfo/api/internal/middleware"
	"github.com/mediazoo/laukaainfo/api/internal/repository"
	"github.com/mediazoo/laukaainfo/api/internal/router"
	"github.com/mediazoo/laukaainfo/api/internal/service"
	"github.com/mediazoo/laukaainfo/api/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshots, media, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}
	defer closeStores()

	fetcher := source.NewSheetFetcher(cfg.SheetCSVURL, nil, source.Options{
		Timeout:     cfg.CSVTimeout,
		InsecureTLS: cfg.UpstreamInsecureTLS,
	})
	pipeline := ingest.NewPipeline(
		ingest.WithProxyPath(cfg.ImageProxyPath),
		ingest.WithPhoneRegion(cfg.PhoneRegion),
	)
	directoryService := service.NewDirectoryService(fetcher, pipeline, snapshots,
		service.WithSnapshotTTL(cfg.SnapshotTTL),
		service.WithSnapshotKey(cfg.SnapshotKey),
	)

	endpoints := service.DefaultDriveEndpoints(service.NewMediaHTTPClient(cfg.UpstreamInsecureTLS))
	if cfg.DriveAPIKey != "" {
		driveEndpoint, err := service.NewDriveAPIEndpoint(ctx, cfg.DriveAPIKey)
		if err != nil {
			log.Printf("drive api endpoint disabled: %v", err)
		} else {
			endpoints = append(endpoints, driveEndpoint)
		}
	}
	mediaService := service.NewMediaService(media, endpoints,
		service.WithAttemptTimeout(cfg.MediaAttemptTimeout),
		service.WithTotalTimeout(cfg.MediaTotalTimeout),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, router.Handlers{
		Directory: handler.NewDirectoryHandler(directoryService),
		Media:     handler.NewMediaHandler(mediaService),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s cache_backend=%s sheet=%s", cfg.Port, cfg.CacheBackend, fetcher.URL())
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// openStores builds the snapshot and media stores for the configured backend.
func openStores(ctx context.Context, cfg *config.Config) (snapshots, media cache.Store, closeFn func(), err error) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		return cache.NewMemoryStore(nil), cache.NewMemoryStore(nil), func() {}, nil
	case config.CacheBackendPostgres:
		var pool *pgxpool.Pool
		pool, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err = repository.EnsureCacheSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return repository.NewPGXCacheStore(pool, repository.NamespaceSnapshots),
			repository.NewPGXCacheStore(pool, repository.NamespaceMedia),
			pool.Close, nil
	case config.CacheBackendFile:
		snapshotStore, mediaStore := cache.NewFileStore(cfg.CacheDir), cache.NewFileStore(cfg.MediaCacheDir)
		log.Printf("cache backend=file snapshots=%s media=%s", snapshotStore.Dir(), mediaStore.Dir())
		return snapshotStore, mediaStore, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
