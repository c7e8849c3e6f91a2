// Package forecast derives short-horizon price trend signals from historical
// per-city price series.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/config"
	"github.com/stayscout/stayscout/internal/domain"
	"github.com/stayscout/stayscout/pkg/formulas"
)

// Trend classifies the fitted price slope
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
)

// BookingAdvice is the categorical timing decision
type BookingAdvice string

const (
	AdviceBookNow BookingAdvice = "BOOK_NOW"
	AdviceWait    BookingAdvice = "WAIT"
	AdviceNeutral BookingAdvice = "NEUTRAL"
)

// Observation is one historical average-price data point for a city
type Observation struct {
	City       string
	HotelClass int // 0 = unclassified
	Date       time.Time
	AvgPrice   float64
}

// Signal is the forecast result for a city, class and check-in date
type Signal struct {
	City                 string        `json:"city"`
	HotelClass           float64       `json:"hotel_class,omitempty"`
	Trend                Trend         `json:"trend"`
	ExpectedChange       float64       `json:"expected_change"`
	HotelPriceVolatility float64       `json:"hotel_price_volatility"`
	Confidence           float64       `json:"confidence"`
	BookingAdvice        BookingAdvice `json:"booking_advice"`
	Observations         int           `json:"observations"`
	Message              string        `json:"message"`
}

// minTrendWindow is the smallest trailing window a slope is fitted over
const minTrendWindow = 14

// smoothingPeriod is the SMA period applied before fitting the trend
const smoothingPeriod = 3

// volatilityPenaltyWeight converts the coefficient of variation into a
// confidence penalty.
const volatilityPenaltyWeight = 2.0

type seriesKey struct {
	city  string
	class int
}

type point struct {
	date  time.Time
	price float64
}

// Engine holds the pre-built, immutable price series. Construction happens
// once at startup; Forecast is a pure read.
type Engine struct {
	series map[seriesKey][]point
	cfg    config.AnalyticsConfig
	log    zerolog.Logger
}

// NewEngine groups observations into per-(city, class) daily series plus a
// per-city aggregate series (class 0), averaging duplicate dates.
func NewEngine(observations []Observation, cfg config.AnalyticsConfig, log zerolog.Logger) *Engine {
	type acc struct {
		sum   float64
		count int
	}
	daily := make(map[seriesKey]map[time.Time]*acc)

	add := func(key seriesKey, date time.Time, price float64) {
		days, ok := daily[key]
		if !ok {
			days = make(map[time.Time]*acc)
			daily[key] = days
		}
		day := date.Truncate(24 * time.Hour)
		a, ok := days[day]
		if !ok {
			a = &acc{}
			days[day] = a
		}
		a.sum += price
		a.count++
	}

	for _, o := range observations {
		city := normalizeCity(o.City)
		if city == "" || o.AvgPrice <= 0 {
			continue
		}
		if o.HotelClass > 0 {
			add(seriesKey{city: city, class: o.HotelClass}, o.Date, o.AvgPrice)
		}
		// Per-city aggregate across all classes
		add(seriesKey{city: city}, o.Date, o.AvgPrice)
	}

	series := make(map[seriesKey][]point, len(daily))
	for key, days := range daily {
		points := make([]point, 0, len(days))
		for day, a := range days {
			points = append(points, point{date: day, price: a.sum / float64(a.count)})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].date.Before(points[j].date) })
		series[key] = points
	}

	e := &Engine{
		series: series,
		cfg:    cfg,
		log:    log.With().Str("component", "forecast").Logger(),
	}
	e.log.Info().Int("series", len(series)).Msg("Forecast series built")
	return e
}

// Forecast computes the trend signal for a city and optional star class.
// Returns (nil, nil) when the city/class has too little history; that is a
// reportable outcome, not a failure.
func (e *Engine) Forecast(city string, hotelClass *float64, checkIn time.Time, horizonDays int) (*Signal, error) {
	if strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("city is required: %w", domain.ErrInvalidRequest)
	}
	if horizonDays <= 0 {
		return nil, fmt.Errorf("horizon_days must be positive, got %d: %w", horizonDays, domain.ErrInvalidRequest)
	}

	points, class := e.resolveSeries(normalizeCity(city), hotelClass)
	if len(points) < e.cfg.ForecastMinObservations {
		return nil, nil
	}

	window := horizonDays
	if window < minTrendWindow {
		window = minTrendWindow
	}
	if window > len(points) {
		window = len(points)
	}
	tail := points[len(points)-window:]

	prices := make([]float64, len(tail))
	for i, p := range tail {
		prices[i] = p.price
	}

	smoothed := formulas.SMA(prices, smoothingPeriod)
	_, slope := formulas.LinearTrend(smoothed)

	mean := formulas.Mean(prices)
	trend := TrendFlat
	if mean > 0 {
		relSlope := slope / mean
		if relSlope > e.cfg.TrendNoiseFloor {
			trend = TrendRising
		} else if relSlope < -e.cfg.TrendNoiseFloor {
			trend = TrendFalling
		}
	}

	volatility := formulas.CoefficientOfVariation(prices)
	expectedChange := slope * float64(horizonDays)

	confidence := 1.0 - volatilityPenaltyWeight*volatility - e.extrapolationPenalty(tail[len(tail)-1].date, checkIn)
	confidence = clamp01(confidence)

	advice := AdviceNeutral
	switch {
	case trend == TrendRising && confidence >= e.cfg.ForecastAdviceConfidence:
		advice = AdviceBookNow
	case trend == TrendFalling && confidence >= e.cfg.ForecastAdviceConfidence:
		advice = AdviceWait
	}

	signal := &Signal{
		City:                 city,
		Trend:                trend,
		ExpectedChange:       round2(expectedChange),
		HotelPriceVolatility: round4(volatility),
		Confidence:           round4(confidence),
		BookingAdvice:        advice,
		Observations:         len(points),
		Message:              adviceMessage(advice, trend, horizonDays),
	}
	if class > 0 {
		signal.HotelClass = float64(class)
	}

	return signal, nil
}

// resolveSeries prefers the class-specific series when it has enough
// observations, otherwise falls back to the per-city aggregate. Returns the
// class actually used (0 for the aggregate).
func (e *Engine) resolveSeries(city string, hotelClass *float64) ([]point, int) {
	if hotelClass != nil {
		class := int(math.Round(*hotelClass))
		if points, ok := e.series[seriesKey{city: city, class: class}]; ok && len(points) >= e.cfg.ForecastMinObservations {
			return points, class
		}
	}
	return e.series[seriesKey{city: city}], 0
}

// extrapolationPenalty grows with the distance of the check-in date beyond
// the observed range, up to half the confidence budget.
func (e *Engine) extrapolationPenalty(lastObserved, checkIn time.Time) float64 {
	if checkIn.IsZero() || !checkIn.After(lastObserved) {
		return 0
	}
	gapDays := checkIn.Sub(lastObserved).Hours() / 24
	penalty := gapDays / 365
	if penalty > 0.5 {
		penalty = 0.5
	}
	return penalty
}

func adviceMessage(advice BookingAdvice, trend Trend, horizonDays int) string {
	switch advice {
	case AdviceBookNow:
		return fmt.Sprintf("Prices are trending up; booking within the next %d days is likely cheaper than waiting.", horizonDays)
	case AdviceWait:
		return fmt.Sprintf("Prices are trending down; waiting up to %d days may get a better rate.", horizonDays)
	default:
		if trend == TrendFlat {
			return "Prices look stable; there is no strong timing signal either way."
		}
		return "The trend is not confident enough for a timing call; keep monitoring."
	}
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// round2 rounds to 2 decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// round4 rounds to 4 decimal places
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
