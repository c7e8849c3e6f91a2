package domain

import "strings"

// HotelType is the broad property category a booking belongs to
type HotelType string

const (
	HotelTypeResort HotelType = "Resort Hotel"
	HotelTypeCity   HotelType = "City Hotel"
)

// BookingRecord represents one historical hotel reservation.
// Records are loaded once at startup and never mutated afterwards.
type BookingRecord struct {
	HotelType             string  `json:"hotel_type"`
	MarketSegment         string  `json:"market_segment"`
	ArrivalMonth          string  `json:"arrival_month"`
	LeadTime              int     `json:"lead_time"` // days between booking and arrival
	IsCanceled            bool    `json:"is_canceled"`
	ReservedRoomType      string  `json:"reserved_room_type"`
	AssignedRoomType      string  `json:"assigned_room_type"`
	IsRepeatedGuest       bool    `json:"is_repeated_guest"`
	PreviousCancellations int     `json:"previous_cancellations"`
	DaysInWaitingList     int     `json:"days_in_waiting_list"`
	ADR                   float64 `json:"adr"` // average daily rate
}

// WasReassigned reports whether the guest ended up in a different room type
// than the one reserved (the overbooking proxy signal).
func (b BookingRecord) WasReassigned() bool {
	return b.ReservedRoomType != "" &&
		b.AssignedRoomType != "" &&
		b.ReservedRoomType != b.AssignedRoomType
}

// Candidate represents a bookable hotel offering from the catalog.
// Candidates are independent of historical bookings.
type Candidate struct {
	Hotel      string  `json:"hotel"`
	City       string  `json:"city"`
	HotelType  string  `json:"hotel_type"`
	HotelClass float64 `json:"hotel_class"` // star rating, 1-5
	ADR        float64 `json:"adr"`
	ADRLow     float64 `json:"adr_low"`
	ADRHigh    float64 `json:"adr_high"`
	Meal       string  `json:"meal"`
	MaxGuests  int     `json:"max_guests"` // 0 = unknown occupancy
}

// ReviewSummary is the per-hotel review aggregate, joined to a Candidate
// by hotel name.
type ReviewSummary struct {
	Hotel          string  `json:"hotel"`
	AvgRating      float64 `json:"avg_rating"` // 0-5
	NReviews       int     `json:"n_reviews"`
	SentimentScore float64 `json:"sentiment_score"` // -1..1
}

// RecommendationRequest holds user filter criteria. Nil fields impose no
// constraint on that dimension.
type RecommendationRequest struct {
	City      *string  `json:"city"`
	Budget    *float64 `json:"budget"`
	MinRating *float64 `json:"min_rating"`
	Adults    *int     `json:"adults"`
	Children  *int     `json:"children"`
	Meal      *string  `json:"meal"`
	HotelType *string  `json:"hotel_type"`
}

// Months lists arrival month names in calendar order
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// IsValidMonth reports whether name is a valid arrival month name
// (case-insensitive).
func IsValidMonth(name string) bool {
	return CanonicalMonth(name) != ""
}

// CanonicalMonth normalizes a month name to its canonical capitalized form.
// Returns "" when the name is not a month.
func CanonicalMonth(name string) string {
	for _, m := range Months {
		if strings.EqualFold(m, strings.TrimSpace(name)) {
			return m
		}
	}
	return ""
}
