package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/stayscout/stayscout/internal/domain"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "stayscout",
	})
}

// handleMetaCities lists the cities available in the candidate catalog
func (s *Server) handleMetaCities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(s.dataset.Cities),
		"cities": s.dataset.Cities,
	})
}

// handleMetaStats reports catalog sizes and capability flags
func (s *Server) handleMetaStats(w http.ResponseWriter, r *http.Request) {
	hasPriceBand := false
	hasCity := false
	for _, h := range s.dataset.Hotels {
		if h.ADRLow > 0 && h.ADRHigh > 0 {
			hasPriceBand = true
		}
		if h.City != "" {
			hasCity = true
		}
		if hasPriceBand && hasCity {
			break
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"bookings":         len(s.dataset.Bookings),
		"candidates":       len(s.dataset.Hotels),
		"review_summaries": len(s.dataset.Reviews),
		"hotel_types":      s.dataset.HotelTypes,
		"has_city":         hasCity,
		"has_price_band":   hasPriceBand,
	})
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "running",
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	})
}

// decodeJSON parses a request body, rejecting unknown fields
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return false
	}
	return true
}

// serviceError maps engine errors onto HTTP responses
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error().Err(err).Msg("Handler failed")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
