package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/storefront/backend/config"
	httpDelivery "github.com/storefront/backend/internal/delivery/http"
	"github.com/storefront/backend/internal/domain"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/catalog"
	"github.com/storefront/backend/internal/usecase"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stdout)
	log := logger.WithField("service", "storefront-search")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Environment == "development" {
		logger.SetLevel(logrus.DebugLevel)
	}

	log.WithFields(logrus.Fields{
		"environment":    cfg.Server.Environment,
		"port":           cfg.Server.Port,
		"catalog_source": cfg.Catalog.Source,
		"cache_ttl":      cfg.Cache.TTL.String(),
	}).Info("Starting Storefront Search v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	source := newCatalogSource(cfg, logger)
	memoryCache := cache.NewMemoryCache(cache.MemoryCacheConfig{
		MaxEntries: cfg.Cache.MaxEntries,
	})
	defer memoryCache.Close()

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(source, usecase.CatalogServiceConfig{
		RefreshInterval: cfg.Catalog.RefreshInterval,
		PrepareWorkers:  cfg.Search.PrepareWorkers,
		ResultCache:     memoryCache,
	}, logger.WithField("component", "catalog_service"))

	// The service starts with an empty catalog if the first load fails;
	// the refresher keeps trying.
	if _, err := catalogService.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial catalog load failed, serving empty catalog")
	}
	go catalogService.Run(ctx)

	searchService := usecase.NewSearchService(memoryCache, catalogService, usecase.SearchServiceConfig{
		CacheTTL:        cfg.Cache.TTL,
		DefaultLimit:    cfg.Search.DefaultLimit,
		MaxResults:      cfg.Search.MaxResults,
		SuggestDistance: cfg.Search.SuggestDistance,
		SuggestLimit:    cfg.Search.SuggestLimit,
	}, logger.WithField("component", "search_service"))

	handler := httpDelivery.NewHandler(searchService, catalogService, logger.WithField("component", "http_handler"))
	router := httpDelivery.SetupRouter(cfg, handler, logger.WithField("component", "http"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// newCatalogSource picks the catalog loader named by configuration
func newCatalogSource(cfg *config.Config, logger *logrus.Logger) domain.CatalogSource {
	if cfg.Catalog.Source == "file" {
		return catalog.NewFileSource(cfg.Catalog.FilePath, logger.WithField("component", "catalog_file"))
	}

	client := catalog.NewClient(catalog.ClientConfig{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		Table:             cfg.Catalog.Table,
		PageSize:          cfg.Catalog.PageSize,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	}, logger.WithField("component", "catalog_client"))

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}
	return client
}
