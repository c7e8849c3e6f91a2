// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	CatalogPath string // SQLite catalog with bookings, hotels and review summaries
	HistoryDir  string // Directory with per-city price history databases
	LogLevel    string
	Port        int
	DevMode     bool
	Analytics   AnalyticsConfig
}

// AnalyticsConfig holds the policy constants of the analytics engine.
// Every threshold is a configuration value, never hard-coded at a call site.
type AnalyticsConfig struct {
	// Minimum sample sizes gating hierarchical lookups
	MinCancellationSamples  int
	MinOverbookingSamples   int
	MinBookingWindowSamples int
	MinPriceSamples         int

	// Cancellation-risk advice tiers (rates, 0..1)
	CancellationElevated float64
	CancellationHigh     float64

	// Overbooking risk tiers applied to max(reassignment, waiting list) rate
	OverbookingMedium float64
	OverbookingHigh   float64

	// Price fairness: yellow band width above the expected price
	FairnessPctThreshold float64

	// Expected price baseline multipliers per star class (3-star = 1.0)
	ClassBaseMultipliers map[int]float64

	// Recommender scoring weights
	Weights ScoringWeights

	// Forecast policy
	TrendNoiseFloor          float64 // relative daily slope below which the trend is flat
	ForecastMinObservations  int
	ForecastAdviceConfidence float64 // minimum confidence for BOOK_NOW / WAIT
}

// ScoringWeights holds the recommender's weighted-linear-combination weights
type ScoringWeights struct {
	Rating    float64
	Sentiment float64
	Price     float64
	Volume    float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvAsInt("PORT", 8080),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		CatalogPath: getEnv("CATALOG_PATH", "./data/catalog.db"),
		HistoryDir:  getEnv("HISTORY_DIR", "./data/history"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Analytics:   loadAnalyticsConfig(),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and coherent
func (c *Config) Validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	return c.Analytics.Validate()
}

// Validate checks analytics policy constants for out-of-range values
func (a *AnalyticsConfig) Validate() error {
	if a.MinCancellationSamples < 1 || a.MinOverbookingSamples < 1 || a.MinBookingWindowSamples < 1 {
		return fmt.Errorf("minimum sample sizes must be positive")
	}
	if a.CancellationElevated >= a.CancellationHigh {
		return fmt.Errorf("cancellation elevated threshold (%.2f) must be below high threshold (%.2f)",
			a.CancellationElevated, a.CancellationHigh)
	}
	if a.OverbookingMedium >= a.OverbookingHigh {
		return fmt.Errorf("overbooking medium threshold (%.2f) must be below high threshold (%.2f)",
			a.OverbookingMedium, a.OverbookingHigh)
	}
	if a.FairnessPctThreshold <= 0 {
		return fmt.Errorf("fairness threshold must be positive")
	}
	sum := a.Weights.Rating + a.Weights.Sentiment + a.Weights.Price + a.Weights.Volume
	if sum <= 0 {
		return fmt.Errorf("recommender weights must sum to a positive value")
	}
	return nil
}

// loadAnalyticsConfig loads analytics policy constants with env overrides
func loadAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		MinCancellationSamples:  getEnvAsInt("MIN_CANCELLATION_SAMPLES", 30),
		MinOverbookingSamples:   getEnvAsInt("MIN_OVERBOOKING_SAMPLES", 30),
		MinBookingWindowSamples: getEnvAsInt("MIN_BOOKING_WINDOW_SAMPLES", 200),
		MinPriceSamples:         getEnvAsInt("MIN_PRICE_SAMPLES", 30),
		CancellationElevated:    getEnvAsFloat("CANCELLATION_ELEVATED_RATE", 0.20),
		CancellationHigh:        getEnvAsFloat("CANCELLATION_HIGH_RATE", 0.30),
		OverbookingMedium:       getEnvAsFloat("OVERBOOKING_MEDIUM_RATE", 0.05),
		OverbookingHigh:         getEnvAsFloat("OVERBOOKING_HIGH_RATE", 0.12),
		FairnessPctThreshold:    getEnvAsFloat("FAIRNESS_PCT_THRESHOLD", 0.15),
		ClassBaseMultipliers: getEnvAsClassMap("CLASS_BASE_MULTIPLIERS", map[int]float64{
			1: 0.55,
			2: 0.75,
			3: 1.00,
			4: 1.35,
			5: 1.80,
		}),
		Weights: ScoringWeights{
			Rating:    getEnvAsFloat("WEIGHT_RATING", 0.40),
			Sentiment: getEnvAsFloat("WEIGHT_SENTIMENT", 0.20),
			Price:     getEnvAsFloat("WEIGHT_PRICE", 0.25),
			Volume:    getEnvAsFloat("WEIGHT_VOLUME", 0.15),
		},
		TrendNoiseFloor:          getEnvAsFloat("TREND_NOISE_FLOOR", 0.0015),
		ForecastMinObservations:  getEnvAsInt("FORECAST_MIN_OBSERVATIONS", 30),
		ForecastAdviceConfidence: getEnvAsFloat("FORECAST_ADVICE_CONFIDENCE", 0.45),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsClassMap parses "1:0.55,2:0.75,..." into a class multiplier map.
// Any malformed entry falls back to the default map wholesale.
func getEnvAsClassMap(key string, defaultValue map[int]float64) map[int]float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed := make(map[int]float64)
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return defaultValue
		}
		class, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return defaultValue
		}
		mult, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || mult <= 0 {
			return defaultValue
		}
		parsed[class] = mult
	}
	return parsed
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
