package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/camden-git/labelloopbackend/config"
	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/handlers"
	"github.com/camden-git/labelloopbackend/logging"
	"github.com/camden-git/labelloopbackend/metrics"
	"github.com/camden-git/labelloopbackend/repository"
	"github.com/camden-git/labelloopbackend/services"
	"github.com/camden-git/labelloopbackend/storage"
)

const shutdownTimeout = 15 * time.Second

// rootCmd runs the API server when called without a subcommand
var rootCmd = &cobra.Command{
	Use:          "labelloop",
	Short:        "Image labeling backend: datasets, images, labels and annotations",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logging.Sync()
		defer database.Close(db)

		if err := database.AutoMigrateModels(db); err != nil {
			return err
		}
		logging.L().Infof("schema is up to date (driver: %s)", cfg.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// bootstrap loads .env and configuration, sets up logging and opens the database
func bootstrap() (config.Config, *gorm.DB, error) {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.Init(cfg.Debug); err != nil {
		return cfg, nil, err
	}
	if envErr != nil {
		logging.L().Debugf("no .env file loaded: %v", envErr)
	}

	db, err := database.InitGormDB(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logging.Sync()
	defer database.Close(db)
	log := logging.Named("server")

	if cfg.AutoMigrate {
		if err := database.AutoMigrateModels(db); err != nil {
			return err
		}
	}

	store, err := storage.NewS3Store(cfg)
	if err != nil {
		return err
	}

	m, err := metrics.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	datasetRepo := repository.NewDatasetRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	imageRepo := repository.NewImageRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)

	router := handlers.NewRouter(handlers.RouterDeps{
		AppName:        cfg.AppName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Datasets:       services.NewDatasetService(datasetRepo, labelRepo, imageRepo),
		Labels:         services.NewLabelService(labelRepo, datasetRepo),
		Images:         services.NewImageService(imageRepo, datasetRepo, store, m),
		Annotations:    services.NewAnnotationService(annotationRepo, imageRepo, labelRepo),
		Health:         services.NewHealthService(db, store, cfg.Debug),
		Metrics:        m,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("%s %s listening on %s", cfg.AppName, cfg.AppVersion, server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
