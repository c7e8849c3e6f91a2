package risk

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/config"
	"github.com/stayscout/stayscout/internal/domain"
	"github.com/stayscout/stayscout/internal/modules/aggregation"
)

// RiskEntry is the result of a cancellation risk lookup. The key fields
// reflect the bucket that actually served the estimate, which may be broader
// than the requested key after fallback.
type RiskEntry struct {
	HotelType        string         `json:"hotel_type"`
	MarketSegment    string         `json:"market_segment,omitempty"`
	LeadTimeBucket   string         `json:"lead_time_bucket,omitempty"`
	CancellationRate float64        `json:"cancellation_rate"`
	TotalBookings    int            `json:"total_bookings"`
	Advice           string         `json:"advice"`
	ConfidenceTier   ConfidenceTier `json:"confidence_tier"`
}

// CancellationService answers cancellation risk queries against the
// pre-built aggregation chain.
type CancellationService struct {
	resolver   *Resolver
	knownTypes map[string]struct{}
	cfg        config.AnalyticsConfig
	log        zerolog.Logger
}

// NewCancellationService builds the cancellation aggregation chain:
// (hotel type, segment, lead bucket) -> (hotel type, segment) -> (hotel type)
// -> global. The lead-time bucket is dropped before the market segment, and
// the market segment before the hotel type.
func NewCancellationService(
	bookings []domain.BookingRecord,
	hotelTypes []string,
	cfg config.AnalyticsConfig,
	log zerolog.Logger,
) *CancellationService {
	chain := []aggregation.Dims{
		{HotelType: true, MarketSegment: true, LeadTimeBucket: true},
		{HotelType: true, MarketSegment: true},
		{HotelType: true},
	}

	known := make(map[string]struct{}, len(hotelTypes))
	for _, t := range hotelTypes {
		known[t] = struct{}{}
	}

	return &CancellationService{
		resolver:   NewResolver(bookings, chain),
		knownTypes: known,
		cfg:        cfg,
		log:        log.With().Str("component", "cancellation_risk").Logger(),
	}
}

// Lookup resolves cancellation risk for a hotel type, optionally narrowed by
// market segment and lead time. Returns (nil, nil) when the history is empty.
func (s *CancellationService) Lookup(hotelType string, marketSegment *string, leadTime *int) (*RiskEntry, error) {
	if hotelType == "" {
		return nil, fmt.Errorf("hotel_type is required: %w", domain.ErrInvalidRequest)
	}
	if _, ok := s.knownTypes[hotelType]; !ok {
		return nil, fmt.Errorf("unknown hotel type %q: %w", hotelType, domain.ErrInvalidRequest)
	}

	key := aggregation.Key{HotelType: hotelType}
	if marketSegment != nil && *marketSegment != "" {
		key.MarketSegment = *marketSegment
	}
	if leadTime != nil {
		key.LeadTimeBucket = aggregation.LeadTimeBucket(*leadTime)
	}

	match, ok := s.resolver.Resolve(key, s.cfg.MinCancellationSamples)
	if !ok {
		return nil, nil
	}

	entry := &RiskEntry{
		HotelType:        match.Bucket.Key.HotelType,
		MarketSegment:    match.Bucket.Key.MarketSegment,
		LeadTimeBucket:   match.Bucket.Key.LeadTimeBucket,
		CancellationRate: match.Bucket.CancellationRate,
		TotalBookings:    match.Bucket.Count,
		Advice:           s.advice(match.Bucket.CancellationRate),
		ConfidenceTier:   match.Tier,
	}
	if match.Global {
		// The global bucket carries no key; report the requested type
		entry.HotelType = hotelType
	}

	s.log.Debug().
		Str("hotel_type", hotelType).
		Float64("rate", entry.CancellationRate).
		Int("total_bookings", entry.TotalBookings).
		Str("tier", string(entry.ConfidenceTier)).
		Msg("Cancellation risk resolved")

	return entry, nil
}

// advice maps a cancellation rate to advice text using the configured tiers
func (s *CancellationService) advice(rate float64) string {
	switch {
	case rate >= s.cfg.CancellationHigh:
		return "High cancellation risk for similar bookings; a refundable rate is strongly recommended."
	case rate >= s.cfg.CancellationElevated:
		return "Elevated cancellation risk; consider a flexible rate."
	default:
		return "Typical cancellation risk for this kind of booking."
	}
}
