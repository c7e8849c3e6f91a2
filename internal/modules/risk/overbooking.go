package risk

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/config"
	"github.com/stayscout/stayscout/internal/domain"
	"github.com/stayscout/stayscout/internal/modules/aggregation"
)

// RiskLevel is the categorical overbooking exposure
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// OverbookingRisk is the result of an overbooking proxy lookup. There is no
// direct overbooking flag in booking history, so the estimate combines room
// reassignments and waiting-list usage.
type OverbookingRisk struct {
	HotelType        string         `json:"hotel_type"`
	ArrivalMonth     string         `json:"arrival_month,omitempty"`
	MarketSegment    string         `json:"market_segment,omitempty"`
	ReassignmentRate float64        `json:"reassignment_rate"`
	WaitingListRate  float64        `json:"waiting_list_rate"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	TotalBookings    int            `json:"total_bookings"`
	Advice           string         `json:"advice"`
	ConfidenceTier   ConfidenceTier `json:"confidence_tier"`
}

// GuestHistory optionally narrows a lookup to the guest's own track record.
// Nil fields leave the estimate unadjusted.
type GuestHistory struct {
	IsRepeatedGuest       *bool
	PreviousCancellations *int
}

// historyAdjuster holds the relative disruption rates of guest-history
// segments against the full population, computed once at construction.
// A factor of 1 means the segment was too thin to measure or matches the
// population rate.
type historyAdjuster struct {
	repeatedGuest float64
	priorCancels  float64
}

// OverbookingService answers overbooking risk queries
type OverbookingService struct {
	resolver   *Resolver
	adjuster   historyAdjuster
	knownTypes map[string]struct{}
	cfg        config.AnalyticsConfig
	log        zerolog.Logger
}

// NewOverbookingService builds the overbooking aggregation chain:
// (hotel type, month, segment) -> (hotel type, month) -> (hotel type) -> global.
func NewOverbookingService(
	bookings []domain.BookingRecord,
	hotelTypes []string,
	cfg config.AnalyticsConfig,
	log zerolog.Logger,
) *OverbookingService {
	chain := []aggregation.Dims{
		{HotelType: true, ArrivalMonth: true, MarketSegment: true},
		{HotelType: true, ArrivalMonth: true},
		{HotelType: true},
	}

	known := make(map[string]struct{}, len(hotelTypes))
	for _, t := range hotelTypes {
		known[t] = struct{}{}
	}

	return &OverbookingService{
		resolver:   NewResolver(bookings, chain),
		adjuster:   newHistoryAdjuster(bookings, cfg.MinOverbookingSamples),
		knownTypes: known,
		cfg:        cfg,
		log:        log.With().Str("component", "overbooking_risk").Logger(),
	}
}

// newHistoryAdjuster measures how much more (or less) often repeated guests
// and guests with prior cancellations get disrupted (reassigned or
// waitlisted) than the population. Segments below minSamples stay at factor 1.
func newHistoryAdjuster(bookings []domain.BookingRecord, minSamples int) historyAdjuster {
	var total, totalDisrupted int
	var repeated, repeatedDisrupted int
	var prior, priorDisrupted int

	for _, b := range bookings {
		disrupted := b.WasReassigned() || b.DaysInWaitingList > 0

		total++
		if disrupted {
			totalDisrupted++
		}
		if b.IsRepeatedGuest {
			repeated++
			if disrupted {
				repeatedDisrupted++
			}
		}
		if b.PreviousCancellations > 0 {
			prior++
			if disrupted {
				priorDisrupted++
			}
		}
	}

	a := historyAdjuster{repeatedGuest: 1, priorCancels: 1}
	if total == 0 || totalDisrupted == 0 {
		return a
	}
	base := float64(totalDisrupted) / float64(total)

	if repeated >= minSamples {
		a.repeatedGuest = clampFactor(float64(repeatedDisrupted) / float64(repeated) / base)
	}
	if prior >= minSamples {
		a.priorCancels = clampFactor(float64(priorDisrupted) / float64(prior) / base)
	}
	return a
}

// factor applies the guest-history segments named by the request
func (a historyAdjuster) factor(guest GuestHistory) float64 {
	f := 1.0
	if guest.IsRepeatedGuest != nil && *guest.IsRepeatedGuest {
		f *= a.repeatedGuest
	}
	if guest.PreviousCancellations != nil && *guest.PreviousCancellations > 0 {
		f *= a.priorCancels
	}
	return f
}

// clampFactor bounds a segment's relative rate so a skewed segment cannot
// dominate the bucket estimate.
func clampFactor(f float64) float64 {
	if f < 0.5 {
		return 0.5
	}
	if f > 2.0 {
		return 2.0
	}
	return f
}

// Lookup resolves overbooking risk for a hotel type and arrival month,
// optionally narrowed by market segment and the guest's own history.
// Returns (nil, nil) when the history is empty.
func (s *OverbookingService) Lookup(hotelType, arrivalMonth string, marketSegment *string, guest GuestHistory) (*OverbookingRisk, error) {
	if hotelType == "" {
		return nil, fmt.Errorf("hotel_type is required: %w", domain.ErrInvalidRequest)
	}
	if _, ok := s.knownTypes[hotelType]; !ok {
		return nil, fmt.Errorf("unknown hotel type %q: %w", hotelType, domain.ErrInvalidRequest)
	}
	month := domain.CanonicalMonth(arrivalMonth)
	if month == "" {
		return nil, fmt.Errorf("unknown arrival month %q: %w", arrivalMonth, domain.ErrInvalidRequest)
	}

	key := aggregation.Key{HotelType: hotelType, ArrivalMonth: month}
	if marketSegment != nil && *marketSegment != "" {
		key.MarketSegment = *marketSegment
	}

	match, ok := s.resolver.Resolve(key, s.cfg.MinOverbookingSamples)
	if !ok {
		return nil, nil
	}

	// Scale the bucket rates by the guest-history factor before leveling
	factor := s.adjuster.factor(guest)
	reassignment := clampRate(match.Bucket.ReassignmentRate * factor)
	waitingList := clampRate(match.Bucket.WaitingListRate * factor)

	// Risk level follows whichever proxy rate is higher
	rate := reassignment
	if waitingList > rate {
		rate = waitingList
	}
	level := s.level(rate)

	result := &OverbookingRisk{
		HotelType:        match.Bucket.Key.HotelType,
		ArrivalMonth:     match.Bucket.Key.ArrivalMonth,
		MarketSegment:    match.Bucket.Key.MarketSegment,
		ReassignmentRate: reassignment,
		WaitingListRate:  waitingList,
		RiskLevel:        level,
		TotalBookings:    match.Bucket.Count,
		Advice:           s.advice(level),
		ConfidenceTier:   match.Tier,
	}
	if match.Global {
		result.HotelType = hotelType
		result.ArrivalMonth = month
	}

	s.log.Debug().
		Str("hotel_type", hotelType).
		Str("arrival_month", month).
		Str("risk_level", string(level)).
		Int("total_bookings", result.TotalBookings).
		Msg("Overbooking risk resolved")

	return result, nil
}

// clampRate keeps an adjusted rate inside [0, 1]
func clampRate(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// level maps the dominant proxy rate to a categorical level
func (s *OverbookingService) level(rate float64) RiskLevel {
	switch {
	case rate >= s.cfg.OverbookingHigh:
		return RiskLevelHigh
	case rate >= s.cfg.OverbookingMedium:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

func (s *OverbookingService) advice(level RiskLevel) string {
	switch level {
	case RiskLevelHigh:
		return "Frequent room reassignments or waitlisting in this period; confirm the room type directly with the hotel."
	case RiskLevelMedium:
		return "Occasional room reassignments in this period; arriving early reduces the chance of a room change."
	default:
		return "Room reassignments are rare for this kind of stay."
	}
}
