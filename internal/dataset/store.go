// Package dataset loads the historical bookings and the hotel/review catalog
// into memory. Loading happens exactly once at startup; the resulting Dataset
// is immutable for the life of the process.
package dataset

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/database"
	"github.com/stayscout/stayscout/internal/domain"
)

// Dataset holds the fully loaded, immutable in-memory catalog.
type Dataset struct {
	Bookings []domain.BookingRecord
	Hotels   []domain.Candidate
	Reviews  map[string]domain.ReviewSummary // keyed by hotel name

	// Derived metadata, computed once during Load
	Cities         []string
	HotelTypes     []string
	ModalHotelType string // most frequent hotel type across bookings
}

// Store reads the catalog database into domain records.
type Store struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStore creates a new catalog store
func NewStore(db *database.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "dataset").Logger(),
	}
}

// Load reads bookings, hotels and review summaries from the catalog.
// An empty bookings table is a construction failure: serving with empty
// aggregation tables is indistinguishable from "up but no data", so the
// caller must treat the error as fatal.
func (s *Store) Load() (*Dataset, error) {
	bookings, err := s.loadBookings()
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("catalog contains no booking history")
	}

	hotels, err := s.loadHotels()
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel candidates: %w", err)
	}

	reviews, err := s.loadReviews()
	if err != nil {
		return nil, fmt.Errorf("failed to load review summaries: %w", err)
	}

	ds := &Dataset{
		Bookings: bookings,
		Hotels:   hotels,
		Reviews:  reviews,
	}
	ds.deriveMeta()

	s.log.Info().
		Int("bookings", len(ds.Bookings)).
		Int("hotels", len(ds.Hotels)).
		Int("reviews", len(ds.Reviews)).
		Int("cities", len(ds.Cities)).
		Str("modal_hotel_type", ds.ModalHotelType).
		Msg("Catalog loaded")

	return ds, nil
}

func (s *Store) loadBookings() ([]domain.BookingRecord, error) {
	query := `
		SELECT hotel, market_segment, arrival_date_month, lead_time,
		       is_canceled, reserved_room_type, assigned_room_type,
		       is_repeated_guest, previous_cancellations,
		       days_in_waiting_list, adr
		FROM bookings
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.BookingRecord
	for rows.Next() {
		var b domain.BookingRecord
		var canceled, repeated int
		var segment, reserved, assigned sql.NullString
		var waitingList, prevCancellations sql.NullInt64
		var adr sql.NullFloat64

		err := rows.Scan(
			&b.HotelType, &segment, &b.ArrivalMonth, &b.LeadTime,
			&canceled, &reserved, &assigned,
			&repeated, &prevCancellations,
			&waitingList, &adr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		b.MarketSegment = segment.String
		b.ReservedRoomType = reserved.String
		b.AssignedRoomType = assigned.String
		b.IsCanceled = canceled != 0
		b.IsRepeatedGuest = repeated != 0
		b.PreviousCancellations = int(prevCancellations.Int64)
		b.DaysInWaitingList = int(waitingList.Int64)
		b.ADR = adr.Float64

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

func (s *Store) loadHotels() ([]domain.Candidate, error) {
	query := `
		SELECT hotel, city, hotel_type, hotel_class,
		       adr, adr_low, adr_high, meal, max_guests
		FROM hotels
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotels: %w", err)
	}
	defer rows.Close()

	var hotels []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		var city, hotelType, meal sql.NullString
		var class, adrLow, adrHigh sql.NullFloat64
		var maxGuests sql.NullInt64

		err := rows.Scan(
			&c.Hotel, &city, &hotelType, &class,
			&c.ADR, &adrLow, &adrHigh, &meal, &maxGuests,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}

		c.City = city.String
		c.HotelType = hotelType.String
		c.HotelClass = class.Float64
		c.ADRLow = adrLow.Float64
		c.ADRHigh = adrHigh.Float64
		c.Meal = meal.String
		c.MaxGuests = int(maxGuests.Int64)

		hotels = append(hotels, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotels: %w", err)
	}

	return hotels, nil
}

func (s *Store) loadReviews() (map[string]domain.ReviewSummary, error) {
	query := `
		SELECT hotel, avg_rating, n_reviews, sentiment_score
		FROM review_summaries
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query review summaries: %w", err)
	}
	defer rows.Close()

	reviews := make(map[string]domain.ReviewSummary)
	for rows.Next() {
		var r domain.ReviewSummary
		var sentiment sql.NullFloat64

		if err := rows.Scan(&r.Hotel, &r.AvgRating, &r.NReviews, &sentiment); err != nil {
			return nil, fmt.Errorf("failed to scan review summary: %w", err)
		}

		r.SentimentScore = sentiment.Float64
		reviews[r.Hotel] = r
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review summaries: %w", err)
	}

	return reviews, nil
}

// deriveMeta computes the dataset-level metadata used by handlers and by the
// recommender's default hotel-type resolution.
func (d *Dataset) deriveMeta() {
	citySet := make(map[string]struct{})
	for _, h := range d.Hotels {
		if h.City != "" {
			citySet[h.City] = struct{}{}
		}
	}
	d.Cities = sortedKeys(citySet)

	typeCounts := make(map[string]int)
	for _, b := range d.Bookings {
		if b.HotelType != "" {
			typeCounts[b.HotelType]++
		}
	}

	typeSet := make(map[string]struct{}, len(typeCounts))
	for t := range typeCounts {
		typeSet[t] = struct{}{}
	}
	d.HotelTypes = sortedKeys(typeSet)

	// Modal hotel type: highest booking count, lexical tie-break so the
	// choice is deterministic regardless of load order.
	best, bestCount := "", -1
	for _, t := range d.HotelTypes {
		if n := typeCounts[t]; n > bestCount {
			best, bestCount = t, n
		}
	}
	d.ModalHotelType = best
}

// KnownHotelType reports whether hotelType appears in the booking history
func (d *Dataset) KnownHotelType(hotelType string) bool {
	for _, t := range d.HotelTypes {
		if t == hotelType {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
