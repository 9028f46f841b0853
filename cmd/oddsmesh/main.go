// Package main provides the entry point for the oddsmesh aggregation service.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/oddsmesh/internal/aggregate"
	"github.com/yourusername/oddsmesh/internal/api"
	"github.com/yourusername/oddsmesh/internal/config"
	"github.com/yourusername/oddsmesh/internal/health"
	"github.com/yourusername/oddsmesh/internal/logger"
	"github.com/yourusername/oddsmesh/internal/metrics"
	"github.com/yourusername/oddsmesh/internal/models"
	"github.com/yourusername/oddsmesh/internal/pipeline"
	"github.com/yourusername/oddsmesh/internal/provider"
	"github.com/yourusername/oddsmesh/internal/scheduler"
	"github.com/yourusername/oddsmesh/internal/service"
	"github.com/yourusername/oddsmesh/internal/store"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "oddsmesh",
	Short: "Multi-provider sports odds aggregation service",
	Long:  `Oddsmesh collects odds from multiple upstream providers, normalizes them into a canonical model, and serves confidence-weighted consensus odds over HTTP and websocket.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the aggregation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("oddsmesh %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runServe() error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.New(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Oddsmesh starting")

	metrics.InitRegistry()

	if cfg.Metrics.Enabled {
		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			appLog.WithField("addr", addr).Info("Metrics server listening")
			if err := http.ListenAndServe(addr, metricsMux); err != nil {
				appLog.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Key-value store backing the per-provider feed caches.
	var kv store.Store
	var storePinger health.StorePinger
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := store.NewPostgresStore(context.Background(), cfg.Store.Postgres)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres store: %w", err)
		}
		kv = pg
		storePinger = pg
		appLog.Info("Postgres store connected")
	default:
		kv = store.NewMemoryStore(5 * time.Minute)
	}
	defer kv.Close()

	normalizer := pipeline.NewNormalizer(logger.WithComponent(appLog, "pipeline"))
	factory := provider.NewFactory(kv, normalizer, logger.WithComponent(appLog, "provider"))

	registry, err := factory.BuildRegistry(cfg.Providers)
	if err != nil {
		return fmt.Errorf("failed to build provider registry: %w", err)
	}
	appLog.WithField("providers", len(registry.Providers())).Info("Provider registry ready")

	sports := models.DefaultSportCatalog()
	holder := aggregate.NewHolder(sports)
	aggregator := aggregate.NewAggregator(sports, logger.WithComponent(appLog, "aggregate"))

	hub := api.NewHub(logger.WithComponent(appLog, "websocket"))

	refreshInterval := time.Duration(cfg.Aggregation.RefreshIntervalSeconds) * time.Second
	sched := scheduler.New(registry, aggregator, holder, refreshInterval, hub, logger.WithComponent(appLog, "scheduler"))

	query := service.NewQuery(holder, registry, sched, logger.WithComponent(appLog, "query"))
	apiServer := api.NewServer(cfg.API, query, registry, hub, logger.WithComponent(appLog, "api"))

	healthServer := health.NewServer(health.Config{
		ServiceName:     cfg.App.Name,
		Version:         Version,
		Commit:          GitCommit,
		Port:            cfg.Health.Port,
		Logger:          appLog,
		Store:           storePinger,
		Refresh:         sched,
		RefreshInterval: refreshInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Run the first pass immediately so the API has data before the first
	// tick fires.
	go func() {
		if _, err := sched.RunPass(ctx); err != nil {
			appLog.WithError(err).Warn("Initial aggregation pass failed")
		}
		healthServer.SetReady(true)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.WithError(err).Error("API server exited")
		}
	}

	appLog.Info("Initiating graceful shutdown...")
	healthServer.SetReady(false)
	cancel()

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Error during API server shutdown")
	}

	appLog.Info("Oddsmesh shut down successfully")
	return nil
}
