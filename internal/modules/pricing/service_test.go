package pricing

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/config"
	"github.com/stayscout/stayscout/internal/domain"
)

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		MinPriceSamples:      10,
		FairnessPctThreshold: 0.15,
		ClassBaseMultipliers: map[int]float64{1: 0.55, 2: 0.75, 3: 1.0, 4: 1.35, 5: 1.80},
	}
}

// julyBookings builds n Resort Hotel bookings in July at the given lead time
// and rate.
func julyBookings(n, leadTime int, adr float64) []domain.BookingRecord {
	out := make([]domain.BookingRecord, n)
	for i := range out {
		out[i] = domain.BookingRecord{
			HotelType:    "Resort Hotel",
			ArrivalMonth: "July",
			LeadTime:     leadTime,
			ADR:          adr,
		}
	}
	return out
}

func newTestService(bookings []domain.BookingRecord) *Service {
	return NewService(bookings, []string{"Resort Hotel"}, testConfig(), zerolog.Nop())
}

func TestPriceFairnessClassification(t *testing.T) {
	// Median July ADR is exactly 100
	svc := newTestService(julyBookings(50, 10, 100))

	tests := []struct {
		name      string
		price     float64
		wantColor FairnessColor
	}{
		{name: "below expected", price: 80, wantColor: FairnessGreen},
		{name: "exactly expected", price: 100, wantColor: FairnessGreen},
		{name: "inside yellow band", price: 110, wantColor: FairnessYellow},
		{name: "at yellow boundary", price: 115, wantColor: FairnessYellow},
		{name: "above yellow boundary", price: 116, wantColor: FairnessRed},
		{name: "far above expected", price: 200, wantColor: FairnessRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.PriceFairness("Resort Hotel", "July", tt.price, nil)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantColor, result.Color)
			assert.InDelta(t, 100.0, result.ExpectedPrice, 1e-9)
		})
	}
}

func TestPriceFairnessRoundTrip(t *testing.T) {
	svc := newTestService(julyBookings(50, 10, 137.5))

	result, err := svc.PriceFairness("Resort Hotel", "July", 137.5, nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	// A price equal to the expectation is always green with zero diff
	assert.Equal(t, FairnessGreen, result.Color)
	assert.InDelta(t, 0.0, result.PctDiff, 1e-12)
}

func TestPriceFairnessClassAdjustment(t *testing.T) {
	svc := newTestService(julyBookings(50, 10, 100))

	five := 5.0
	result, err := svc.PriceFairness("Resort Hotel", "July", 150, &five)
	require.NoError(t, err)
	require.NotNil(t, result)

	// 5-star baseline is 1.80x, so 150 is well below the 180 expectation
	assert.InDelta(t, 180.0, result.ExpectedPrice, 1e-9)
	assert.Equal(t, FairnessGreen, result.Color)
}

func TestPriceFairnessFallsBackAcrossMonths(t *testing.T) {
	// All history is in July; a January query falls back to the hotel-type level
	svc := newTestService(julyBookings(50, 10, 100))

	result, err := svc.PriceFairness("Resort Hotel", "January", 90, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.InDelta(t, 100.0, result.ExpectedPrice, 1e-9)
}

func TestPriceFairnessInvalidInput(t *testing.T) {
	svc := newTestService(julyBookings(50, 10, 100))

	_, err := svc.PriceFairness("Motel", "July", 100, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))

	_, err = svc.PriceFairness("Resort Hotel", "Smarch", 100, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))

	_, err = svc.PriceFairness("Resort Hotel", "July", -5, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
}

func TestBestBookingWindowPicksCheapestQualifyingBand(t *testing.T) {
	bookings := julyBookings(30, 3, 120)                    // 0-7: expensive
	bookings = append(bookings, julyBookings(30, 40, 80)...) // 30-60: cheapest
	bookings = append(bookings, julyBookings(5, 90, 50)...)  // 60+: cheaper but thin

	svc := newTestService(bookings)

	result, err := svc.BestBookingWindow("Resort Hotel", "July", 10)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "30-60", result.RecommendedWindowDays, "thin 60+ band must not win")
	assert.InDelta(t, 80.0, result.MinMedianADR, 1e-9)
	assert.Equal(t, 30, result.SampleSize)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9, "30 >= 3x10 saturates confidence")
}

func TestBestBookingWindowNeverReturnsThinBand(t *testing.T) {
	bookings := julyBookings(30, 3, 120)
	bookings = append(bookings, julyBookings(30, 40, 80)...)

	svc := newTestService(bookings)

	// Raising the threshold above every band's count yields absent
	result, err := svc.BestBookingWindow("Resort Hotel", "July", 31)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestBestBookingWindowTieBreakPrefersMedianLeadTime(t *testing.T) {
	// Two bands tie at median 100; overall median lead time sits in 30-60
	bookings := julyBookings(20, 3, 100)
	bookings = append(bookings, julyBookings(40, 45, 100)...)

	svc := newTestService(bookings)

	result, err := svc.BestBookingWindow("Resort Hotel", "July", 10)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "30-60", result.RecommendedWindowDays)
}
