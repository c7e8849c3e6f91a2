package aggregation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/domain"
)

func makeBookings(n int, canceled int) []domain.BookingRecord {
	bookings := make([]domain.BookingRecord, 0, n)
	for i := 0; i < n; i++ {
		bookings = append(bookings, domain.BookingRecord{
			HotelType:     "Resort Hotel",
			MarketSegment: "Online TA",
			ArrivalMonth:  "July",
			LeadTime:      10,
			IsCanceled:    i < canceled,
			ADR:           100,
		})
	}
	return bookings
}

func TestLeadTimeBucket(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "0-7"},
		{6, "0-7"},
		{7, "7-14"},
		{13, "7-14"},
		{14, "14-30"},
		{29, "14-30"},
		{30, "30-60"},
		{59, "30-60"},
		{60, "60+"},
		{400, "60+"},
		{-3, "0-7"},
	}

	for _, tt := range tests {
		if got := LeadTimeBucket(tt.days); got != tt.want {
			t.Errorf("LeadTimeBucket(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestBuildCountsEveryRecordExactlyOnce(t *testing.T) {
	bookings := []domain.BookingRecord{
		{HotelType: "Resort Hotel", MarketSegment: "Direct", ArrivalMonth: "July", LeadTime: 3, ADR: 90},
		{HotelType: "Resort Hotel", MarketSegment: "Online TA", ArrivalMonth: "July", LeadTime: 45, ADR: 120},
		{HotelType: "City Hotel", MarketSegment: "Direct", ArrivalMonth: "August", LeadTime: 80, ADR: 150},
		{HotelType: "City Hotel", MarketSegment: "Corporate", ArrivalMonth: "January", LeadTime: 12, ADR: 70},
	}

	table := Build(bookings, Dims{HotelType: true, MarketSegment: true, LeadTimeBucket: true})

	total := 0
	table.Each(func(b *Bucket) {
		total += b.Count
		assert.Greater(t, b.Count, 0, "zero-count buckets must never materialize")
	})
	assert.Equal(t, len(bookings), total, "every record must be counted exactly once")
	assert.Equal(t, len(bookings), table.TotalRecords())
}

func TestBuildCancellationRate(t *testing.T) {
	// 80 kept + 20 canceled bookings sharing one key
	bookings := makeBookings(100, 20)

	table := Build(bookings, Dims{HotelType: true, MarketSegment: true, LeadTimeBucket: true})

	bucket, ok := table.Lookup(Key{
		HotelType:      "Resort Hotel",
		MarketSegment:  "Online TA",
		LeadTimeBucket: LeadTimeBucket(10),
	})
	require.True(t, ok)
	assert.Equal(t, 100, bucket.Count)
	assert.InDelta(t, 0.20, bucket.CancellationRate, 1e-9)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	bookings := []domain.BookingRecord{}
	rng := rand.New(rand.NewSource(7))
	types := []string{"Resort Hotel", "City Hotel"}
	segments := []string{"Direct", "Online TA", "Corporate"}
	for i := 0; i < 500; i++ {
		bookings = append(bookings, domain.BookingRecord{
			HotelType:     types[rng.Intn(len(types))],
			MarketSegment: segments[rng.Intn(len(segments))],
			ArrivalMonth:  domain.Months[rng.Intn(12)],
			LeadTime:      rng.Intn(120),
			IsCanceled:    rng.Intn(3) == 0,
			ADR:           50 + rng.Float64()*150,
		})
	}

	dims := Dims{HotelType: true, MarketSegment: true, ArrivalMonth: true, LeadTimeBucket: true}
	first := Build(bookings, dims)

	shuffled := make([]domain.BookingRecord, len(bookings))
	copy(shuffled, bookings)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	second := Build(shuffled, dims)

	require.Equal(t, first.Len(), second.Len())
	first.Each(func(b *Bucket) {
		other, ok := second.Lookup(b.Key)
		require.True(t, ok, "bucket %+v missing after shuffle", b.Key)
		assert.Equal(t, b.Count, other.Count)
		assert.InDelta(t, b.CancellationRate, other.CancellationRate, 1e-12)
		assert.InDelta(t, b.MedianADR, other.MedianADR, 1e-12)
		assert.InDelta(t, b.MeanADR, other.MeanADR, 1e-12)
	})
}

func TestBuildDerivedRates(t *testing.T) {
	bookings := []domain.BookingRecord{
		{HotelType: "City Hotel", ReservedRoomType: "A", AssignedRoomType: "A", ADR: 100},
		{HotelType: "City Hotel", ReservedRoomType: "A", AssignedRoomType: "B", ADR: 110},
		{HotelType: "City Hotel", ReservedRoomType: "C", AssignedRoomType: "C", DaysInWaitingList: 5, ADR: 120},
		{HotelType: "City Hotel", ReservedRoomType: "C", AssignedRoomType: "C", ADR: 130},
	}

	table := Build(bookings, Dims{HotelType: true})

	bucket, ok := table.Lookup(Key{HotelType: "City Hotel"})
	require.True(t, ok)
	assert.Equal(t, 4, bucket.Count)
	assert.InDelta(t, 0.25, bucket.ReassignmentRate, 1e-9)
	assert.InDelta(t, 0.25, bucket.WaitingListRate, 1e-9)
	assert.InDelta(t, 115.0, bucket.MeanADR, 1e-9)
}

func TestBuildGlobalTable(t *testing.T) {
	bookings := makeBookings(10, 5)

	table := Build(bookings, Dims{})

	require.Equal(t, 1, table.Len(), "unconditioned table collapses to a single bucket")
	bucket, ok := table.Lookup(Key{HotelType: "whatever", MarketSegment: "ignored"})
	require.True(t, ok)
	assert.Equal(t, 10, bucket.Count)
	assert.InDelta(t, 0.5, bucket.CancellationRate, 1e-9)
}
