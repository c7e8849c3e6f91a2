package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stayscout/stayscout/internal/domain"
	"github.com/stayscout/stayscout/internal/modules/risk"
)

// RecommendPayload is the request body of POST /api/recommend
type RecommendPayload struct {
	City      *string  `json:"city"`
	Budget    *float64 `json:"budget"`
	MinRating *float64 `json:"min_rating"`
	Adults    *int     `json:"adults"`
	Children  *int     `json:"children"`
	Meal      *string  `json:"meal"`
	HotelType *string  `json:"hotel_type"`
	Limit     int      `json:"limit"`

	// Optional cancellation-risk enrichment
	IncludeCancellationRisk bool    `json:"include_cancellation_risk"`
	MarketSegment           *string `json:"market_segment"`
	LeadTime                *int    `json:"lead_time"`
}

// CancellationRiskPayload is the request body of POST /api/risk/cancellation
type CancellationRiskPayload struct {
	HotelType     string  `json:"hotel_type"`
	MarketSegment *string `json:"market_segment"`
	LeadTime      *int    `json:"lead_time"`
}

// OverbookingRiskPayload is the request body of POST /api/risk/overbooking.
// The guest-history fields are integers (0/1 for the repeat flag) to match
// what booking clients send.
type OverbookingRiskPayload struct {
	HotelType             string  `json:"hotel_type"`
	ArrivalMonth          string  `json:"arrival_month"`
	MarketSegment         *string `json:"market_segment"`
	IsRepeatedGuest       *int    `json:"is_repeated_guest"`
	PreviousCancellations *int    `json:"previous_cancellations"`
}

// PriceFairnessPayload is the request body of POST /api/advice/price_fairness
type PriceFairnessPayload struct {
	HotelType    string   `json:"hotel_type"`
	ArrivalMonth string   `json:"arrival_month"`
	CurrentPrice float64  `json:"current_price"`
	HotelClass   *float64 `json:"hotel_class"`
}

// BestBookingWindowPayload is the request body of POST /api/advice/best_booking_window
type BestBookingWindowPayload struct {
	HotelType    string `json:"hotel_type"`
	ArrivalMonth string `json:"arrival_month"`
	MinSamples   *int   `json:"min_samples"`
}

// ForecastSignalPayload is the request body of POST /api/forecast/signal
type ForecastSignalPayload struct {
	City        string   `json:"city"`
	HotelClass  *float64 `json:"hotel_class"`
	CheckInDate string   `json:"check_in_date"`
	HorizonDays int      `json:"horizon_days"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	payload := RecommendPayload{Limit: 10}
	if !s.decodeJSON(w, r, &payload) {
		return
	}
	if payload.Limit <= 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be a positive integer, got %d", payload.Limit))
		return
	}

	req := domain.RecommendationRequest{
		City:      payload.City,
		Budget:    payload.Budget,
		MinRating: payload.MinRating,
		Adults:    payload.Adults,
		Children:  payload.Children,
		Meal:      payload.Meal,
		HotelType: payload.HotelType,
	}

	ranked, err := s.recommender.Recommend(req, payload.Limit)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	var cancellationRisk *risk.RiskEntry
	if payload.IncludeCancellationRisk {
		// When the request does not pin a hotel type, the dataset's most
		// common type is the explicit default.
		hotelType := s.dataset.ModalHotelType
		if payload.HotelType != nil && *payload.HotelType != "" {
			hotelType = *payload.HotelType
		}

		cancellationRisk, err = s.cancellation.Lookup(hotelType, payload.MarketSegment, payload.LeadTime)
		if err != nil {
			s.serviceError(w, err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":             len(ranked),
		"results":           ranked,
		"cancellation_risk": cancellationRisk,
	})
}

func (s *Server) handleCancellationRisk(w http.ResponseWriter, r *http.Request) {
	var payload CancellationRiskPayload
	if !s.decodeJSON(w, r, &payload) {
		return
	}

	entry, err := s.cancellation.Lookup(payload.HotelType, payload.MarketSegment, payload.LeadTime)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.writeResult(w, entry, entry != nil)
}

func (s *Server) handleOverbookingRisk(w http.ResponseWriter, r *http.Request) {
	var payload OverbookingRiskPayload
	if !s.decodeJSON(w, r, &payload) {
		return
	}

	guest := risk.GuestHistory{PreviousCancellations: payload.PreviousCancellations}
	if payload.IsRepeatedGuest != nil {
		repeated := *payload.IsRepeatedGuest != 0
		guest.IsRepeatedGuest = &repeated
	}

	result, err := s.overbooking.Lookup(payload.HotelType, payload.ArrivalMonth, payload.MarketSegment, guest)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.writeResult(w, result, result != nil)
}

func (s *Server) handlePriceFairness(w http.ResponseWriter, r *http.Request) {
	var payload PriceFairnessPayload
	if !s.decodeJSON(w, r, &payload) {
		return
	}

	result, err := s.pricing.PriceFairness(payload.HotelType, payload.ArrivalMonth, payload.CurrentPrice, payload.HotelClass)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.writeResult(w, result, result != nil)
}

func (s *Server) handleBestBookingWindow(w http.ResponseWriter, r *http.Request) {
	var payload BestBookingWindowPayload
	if !s.decodeJSON(w, r, &payload) {
		return
	}

	minSamples := s.pricing.DefaultWindowSamples()
	if payload.MinSamples != nil {
		minSamples = *payload.MinSamples
	}

	result, err := s.pricing.BestBookingWindow(payload.HotelType, payload.ArrivalMonth, minSamples)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	if result == nil {
		// Absent is reportable: tell the caller how to get an answer
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"result":  nil,
			"message": "no lead-time bucket meets the sample threshold; lower min_samples",
		})
		return
	}
	s.writeResult(w, result, true)
}

func (s *Server) handleForecastSignal(w http.ResponseWriter, r *http.Request) {
	payload := ForecastSignalPayload{HorizonDays: 7}
	if !s.decodeJSON(w, r, &payload) {
		return
	}

	checkIn, err := time.Parse("2006-01-02", payload.CheckInDate)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("check_in_date must be YYYY-MM-DD, got %q", payload.CheckInDate))
		return
	}

	signal, err := s.forecast.Forecast(payload.City, payload.HotelClass, checkIn, payload.HorizonDays)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.writeResult(w, signal, signal != nil)
}

// writeResult renders the engine's explicit-absence convention: a missing
// result is {"result": null}, not an error status.
func (s *Server) writeResult(w http.ResponseWriter, result interface{}, present bool) {
	if !present {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"result": nil})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}
