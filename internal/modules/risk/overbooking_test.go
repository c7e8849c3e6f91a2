package risk

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/domain"
)

func TestOverbookingLevelFollowsDominantRate(t *testing.T) {
	// 100 July bookings: 15% reassigned, 2% waitlisted -> reassignment dominates
	bookings := []domain.BookingRecord{}
	for i := 0; i < 100; i++ {
		b := domain.BookingRecord{
			HotelType:        "City Hotel",
			ArrivalMonth:     "July",
			MarketSegment:    "Online TA",
			ReservedRoomType: "A",
			AssignedRoomType: "A",
			ADR:              100,
		}
		if i < 15 {
			b.AssignedRoomType = "B"
		}
		if i < 2 {
			b.DaysInWaitingList = 3
		}
		bookings = append(bookings, b)
	}

	svc := NewOverbookingService(bookings, []string{"City Hotel"}, testConfig(), zerolog.Nop())

	segment := "Online TA"
	result, err := svc.Lookup("City Hotel", "July", &segment, GuestHistory{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.InDelta(t, 0.15, result.ReassignmentRate, 1e-9)
	assert.InDelta(t, 0.02, result.WaitingListRate, 1e-9)
	assert.Equal(t, RiskLevelHigh, result.RiskLevel, "0.15 >= high boundary 0.12")
	assert.Equal(t, 100, result.TotalBookings)
	assert.Equal(t, ConfidenceHigh, result.ConfidenceTier)
}

func TestOverbookingWaitlistCanDominate(t *testing.T) {
	// Waitlist rate 8% beats reassignment rate 1% -> medium
	bookings := []domain.BookingRecord{}
	for i := 0; i < 100; i++ {
		b := domain.BookingRecord{
			HotelType:        "Resort Hotel",
			ArrivalMonth:     "August",
			ReservedRoomType: "A",
			AssignedRoomType: "A",
			ADR:              120,
		}
		if i < 8 {
			b.DaysInWaitingList = 10
		}
		if i < 1 {
			b.AssignedRoomType = "C"
		}
		bookings = append(bookings, b)
	}

	svc := NewOverbookingService(bookings, []string{"Resort Hotel"}, testConfig(), zerolog.Nop())

	result, err := svc.Lookup("Resort Hotel", "August", nil, GuestHistory{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, RiskLevelMedium, result.RiskLevel)
}

// julyCityBookings builds n City Hotel July bookings, the first reassigned
// of which get a different room than reserved.
func julyCityBookings(n, reassigned int, repeated bool, prevCancellations int) []domain.BookingRecord {
	out := make([]domain.BookingRecord, n)
	for i := range out {
		b := domain.BookingRecord{
			HotelType:             "City Hotel",
			ArrivalMonth:          "July",
			ReservedRoomType:      "A",
			AssignedRoomType:      "A",
			IsRepeatedGuest:       repeated,
			PreviousCancellations: prevCancellations,
			ADR:                   100,
		}
		if i < reassigned {
			b.AssignedRoomType = "B"
		}
		out[i] = b
	}
	return out
}

func TestOverbookingRepeatedGuestHistoryRaisesRisk(t *testing.T) {
	// Repeated guests get reassigned at 12% against a 4% baseline, so the
	// population rate is 8% and the repeated-guest factor is 1.5
	bookings := append(
		julyCityBookings(100, 4, false, 0),
		julyCityBookings(100, 12, true, 0)...,
	)

	svc := NewOverbookingService(bookings, []string{"City Hotel"}, testConfig(), zerolog.Nop())

	baseline, err := svc.Lookup("City Hotel", "July", nil, GuestHistory{})
	require.NoError(t, err)
	require.NotNil(t, baseline)
	assert.InDelta(t, 0.08, baseline.ReassignmentRate, 1e-9)
	assert.Equal(t, RiskLevelMedium, baseline.RiskLevel)

	repeated := true
	refined, err := svc.Lookup("City Hotel", "July", nil, GuestHistory{IsRepeatedGuest: &repeated})
	require.NoError(t, err)
	require.NotNil(t, refined)
	assert.InDelta(t, 0.12, refined.ReassignmentRate, 1e-9)
	assert.Equal(t, RiskLevelHigh, refined.RiskLevel, "0.08 x 1.5 crosses the high boundary")

	// A first-time guest reads the baseline estimate
	notRepeated := false
	same, err := svc.Lookup("City Hotel", "July", nil, GuestHistory{IsRepeatedGuest: &notRepeated})
	require.NoError(t, err)
	require.NotNil(t, same)
	assert.InDelta(t, baseline.ReassignmentRate, same.ReassignmentRate, 1e-9)
}

func TestOverbookingPriorCancellationsFactorIsClamped(t *testing.T) {
	// Prior-cancellation guests get reassigned at 2% against a 14% baseline
	// segment; their raw factor (0.25) is clamped to 0.5
	bookings := append(
		julyCityBookings(100, 14, false, 0),
		julyCityBookings(100, 2, false, 1)...,
	)

	svc := NewOverbookingService(bookings, []string{"City Hotel"}, testConfig(), zerolog.Nop())

	one := 1
	refined, err := svc.Lookup("City Hotel", "July", nil, GuestHistory{PreviousCancellations: &one})
	require.NoError(t, err)
	require.NotNil(t, refined)

	// Population rate 0.08 scaled by the clamped 0.5 factor
	assert.InDelta(t, 0.04, refined.ReassignmentRate, 1e-9)
	assert.Equal(t, RiskLevelLow, refined.RiskLevel)
}

func TestOverbookingThinHistorySegmentIsNeutral(t *testing.T) {
	// No bookings carry prior cancellations, so that segment cannot be
	// measured and must not move the estimate
	bookings := julyCityBookings(100, 8, false, 0)

	svc := NewOverbookingService(bookings, []string{"City Hotel"}, testConfig(), zerolog.Nop())

	two := 2
	refined, err := svc.Lookup("City Hotel", "July", nil, GuestHistory{PreviousCancellations: &two})
	require.NoError(t, err)
	require.NotNil(t, refined)
	assert.InDelta(t, 0.08, refined.ReassignmentRate, 1e-9)
}

func TestOverbookingMonthValidation(t *testing.T) {
	bookings := []domain.BookingRecord{{HotelType: "Resort Hotel", ArrivalMonth: "July", ADR: 100}}
	svc := NewOverbookingService(bookings, []string{"Resort Hotel"}, testConfig(), zerolog.Nop())

	_, err := svc.Lookup("Resort Hotel", "Juvember", nil, GuestHistory{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))

	// Month names are case-insensitive
	result, err := svc.Lookup("Resort Hotel", "july", nil, GuestHistory{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "July", result.ArrivalMonth)
}
