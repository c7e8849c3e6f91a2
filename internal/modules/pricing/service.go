// Package pricing judges price fairness against historical rates and finds
// the cheapest lead-time window for a given hotel type and arrival month.
package pricing

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/config"
	"github.com/stayscout/stayscout/internal/domain"
	"github.com/stayscout/stayscout/internal/modules/aggregation"
	"github.com/stayscout/stayscout/internal/modules/risk"
)

// FairnessColor is the traffic-light classification of a quoted price
type FairnessColor string

const (
	FairnessGreen  FairnessColor = "green"
	FairnessYellow FairnessColor = "yellow"
	FairnessRed    FairnessColor = "red"
)

// FairnessResult compares a quoted price to the historically expected price
type FairnessResult struct {
	CurrentPrice  float64       `json:"current_price"`
	ExpectedPrice float64       `json:"expected_price"`
	PctDiff       float64       `json:"pct_diff"`
	Color         FairnessColor `json:"color"`
	Label         string        `json:"label"`
	Message       string        `json:"message"`
}

// WindowResult is the cheapest qualifying lead-time band
type WindowResult struct {
	RecommendedWindowDays string  `json:"recommended_window_days"`
	MinMedianADR          float64 `json:"min_median_adr"`
	Confidence            float64 `json:"confidence"`
	SampleSize            int     `json:"sample_size"`
	Message               string  `json:"message"`
}

// Service is the price advisor. Both of its tables are built once from the
// booking history and read concurrently afterwards.
type Service struct {
	expected    *risk.Resolver     // (hotel type, month) -> (hotel type) -> global, median ADR
	windowTable *aggregation.Table // (hotel type, month, lead bucket)
	knownTypes  map[string]struct{}
	cfg         config.AnalyticsConfig
	log         zerolog.Logger
}

// NewService builds the expected-price chain and the booking-window table
func NewService(
	bookings []domain.BookingRecord,
	hotelTypes []string,
	cfg config.AnalyticsConfig,
	log zerolog.Logger,
) *Service {
	chain := []aggregation.Dims{
		{HotelType: true, ArrivalMonth: true},
		{HotelType: true},
	}

	known := make(map[string]struct{}, len(hotelTypes))
	for _, t := range hotelTypes {
		known[t] = struct{}{}
	}

	return &Service{
		expected:    risk.NewResolver(bookings, chain),
		windowTable: aggregation.Build(bookings, aggregation.Dims{HotelType: true, ArrivalMonth: true, LeadTimeBucket: true}),
		knownTypes:  known,
		cfg:         cfg,
		log:         log.With().Str("component", "pricing").Logger(),
	}
}

// PriceFairness classifies a quoted price against the expected ADR for the
// hotel type and month, optionally adjusted by star class. Returns (nil, nil)
// when the history is empty.
func (s *Service) PriceFairness(hotelType, arrivalMonth string, currentPrice float64, hotelClass *float64) (*FairnessResult, error) {
	if err := s.validateKey(hotelType, arrivalMonth); err != nil {
		return nil, err
	}
	if currentPrice <= 0 {
		return nil, fmt.Errorf("current_price must be positive, got %.2f: %w", currentPrice, domain.ErrInvalidRequest)
	}

	key := aggregation.Key{HotelType: hotelType, ArrivalMonth: domain.CanonicalMonth(arrivalMonth)}
	match, ok := s.expected.Resolve(key, s.cfg.MinPriceSamples)
	if !ok {
		return nil, nil
	}

	expected := match.Bucket.MedianADR * s.classMultiplier(hotelClass)
	if expected <= 0 {
		return nil, nil
	}

	pctDiff := (currentPrice - expected) / expected

	result := &FairnessResult{
		CurrentPrice:  currentPrice,
		ExpectedPrice: expected,
		PctDiff:       pctDiff,
	}

	switch {
	case pctDiff <= 0:
		result.Color = FairnessGreen
		result.Label = "fair price"
		result.Message = fmt.Sprintf("The quoted price is at or below the typical rate (%.2f) for this period.", expected)
	case pctDiff <= s.cfg.FairnessPctThreshold:
		result.Color = FairnessYellow
		result.Label = "slightly above typical"
		result.Message = fmt.Sprintf("The quoted price is %.0f%% above the typical rate (%.2f).", pctDiff*100, expected)
	default:
		result.Color = FairnessRed
		result.Label = "well above typical"
		result.Message = fmt.Sprintf("The quoted price is %.0f%% above the typical rate (%.2f); shopping around is worthwhile.", pctDiff*100, expected)
	}

	return result, nil
}

// BestBookingWindow scans the lead-time bands for the given hotel type and
// month and returns the band with the lowest median ADR among bands with at
// least minBucketN records. Ties prefer the band closest to the dataset-wide
// median lead time, then band order. Returns (nil, nil) when no band
// qualifies; the caller should suggest lowering the sample threshold.
func (s *Service) BestBookingWindow(hotelType, arrivalMonth string, minBucketN int) (*WindowResult, error) {
	if err := s.validateKey(hotelType, arrivalMonth); err != nil {
		return nil, err
	}
	if minBucketN < 1 {
		return nil, fmt.Errorf("min_samples must be positive, got %d: %w", minBucketN, domain.ErrInvalidRequest)
	}

	month := domain.CanonicalMonth(arrivalMonth)
	medianLead := s.windowTable.MedianLeadTime()

	var best *aggregation.Bucket
	var bestDist float64

	for _, band := range aggregation.LeadTimeBands {
		bucket, ok := s.windowTable.Lookup(aggregation.Key{
			HotelType:      hotelType,
			ArrivalMonth:   month,
			LeadTimeBucket: band.Label,
		})
		if !ok || bucket.Count < minBucketN {
			continue
		}

		dist := math.Abs(band.Midpoint() - medianLead)
		if best == nil ||
			bucket.MedianADR < best.MedianADR ||
			(bucket.MedianADR == best.MedianADR && dist < bestDist) {
			best = bucket
			bestDist = dist
		}
	}

	if best == nil {
		return nil, nil
	}

	confidence := float64(best.Count) / float64(highTierSamples(minBucketN))
	if confidence > 1 {
		confidence = 1
	}

	return &WindowResult{
		RecommendedWindowDays: best.Key.LeadTimeBucket,
		MinMedianADR:          best.MedianADR,
		Confidence:            confidence,
		SampleSize:            best.Count,
		Message: fmt.Sprintf("Booking %s days ahead has historically had the lowest median rate (%.2f) for %s in %s.",
			best.Key.LeadTimeBucket, best.MedianADR, hotelType, month),
	}, nil
}

// DefaultWindowSamples returns the configured booking-window sample gate,
// used when a caller does not override min_samples.
func (s *Service) DefaultWindowSamples() int {
	return s.cfg.MinBookingWindowSamples
}

// classMultiplier scales the expected price by star class. The 3-star class
// is the 1.0 baseline; classes are clamped to the configured range.
func (s *Service) classMultiplier(hotelClass *float64) float64 {
	if hotelClass == nil {
		return 1.0
	}

	class := int(math.Round(*hotelClass))
	if class < 1 {
		class = 1
	}
	if class > 5 {
		class = 5
	}

	if m, ok := s.cfg.ClassBaseMultipliers[class]; ok {
		return m
	}
	return 1.0
}

func (s *Service) validateKey(hotelType, arrivalMonth string) error {
	if hotelType == "" {
		return fmt.Errorf("hotel_type is required: %w", domain.ErrInvalidRequest)
	}
	if _, ok := s.knownTypes[hotelType]; !ok {
		return fmt.Errorf("unknown hotel type %q: %w", hotelType, domain.ErrInvalidRequest)
	}
	if domain.CanonicalMonth(arrivalMonth) == "" {
		return fmt.Errorf("unknown arrival month %q: %w", arrivalMonth, domain.ErrInvalidRequest)
	}
	return nil
}

// highTierSamples is the sample count at which window confidence saturates
func highTierSamples(minBucketN int) int {
	return 3 * minBucketN
}
