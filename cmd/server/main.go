// Package main is the entry point for the StayScout hotel booking
// decision-support service. It loads the historical catalog, builds every
// aggregation table eagerly, and only then starts serving requests; a
// failure during the build phase aborts startup instead of serving empty
// tables.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stayscout/stayscout/internal/config"
	"github.com/stayscout/stayscout/internal/database"
	"github.com/stayscout/stayscout/internal/dataset"
	"github.com/stayscout/stayscout/internal/modules/forecast"
	"github.com/stayscout/stayscout/internal/modules/pricing"
	"github.com/stayscout/stayscout/internal/modules/recommender"
	"github.com/stayscout/stayscout/internal/modules/risk"
	"github.com/stayscout/stayscout/internal/scheduler"
	"github.com/stayscout/stayscout/internal/server"
	"github.com/stayscout/stayscout/pkg/logger"
)

func main() {
	// Load configuration first to get the log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting StayScout")

	// Open the read-only catalog
	db, err := database.Open(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open catalog database")
	}
	defer db.Close()

	// Load the full dataset into memory. This is the only write phase of
	// the process; everything after this point reads immutable state.
	ds, err := dataset.NewStore(db, log).Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}

	// Build the aggregation tables and engine services
	buildStart := time.Now()
	cancellationSvc := risk.NewCancellationService(ds.Bookings, ds.HotelTypes, cfg.Analytics, log)
	overbookingSvc := risk.NewOverbookingService(ds.Bookings, ds.HotelTypes, cfg.Analytics, log)
	pricingSvc := pricing.NewService(ds.Bookings, ds.HotelTypes, cfg.Analytics, log)
	recommenderSvc := recommender.NewService(ds.Hotels, ds.Reviews, cfg.Analytics.Weights, log)

	observations, err := forecast.NewHistoryDB(cfg.HistoryDir, log).LoadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load price history")
	}
	forecastEngine := forecast.NewEngine(observations, cfg.Analytics, log)

	log.Info().
		Dur("elapsed", time.Since(buildStart)).
		Msg("Aggregation tables built")

	// Background maintenance
	sched := scheduler.New(log)
	if err := sched.AddJob("@every 6h", scheduler.NewCatalogCheckJob(db, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register catalog check job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:         cfg.Port,
		Log:          log,
		DevMode:      cfg.DevMode,
		Dataset:      ds,
		Cancellation: cancellationSvc,
		Overbooking:  overbookingSvc,
		Pricing:      pricingSvc,
		Recommender:  recommenderSvc,
		Forecast:     forecastEngine,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
