// Package recommender filters and scores catalog hotels against a user
// request, producing a ranked list with human-readable justifications.
package recommender

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/config"
	"github.com/stayscout/stayscout/internal/domain"
)

// RankedResult is one recommendation: candidate fields joined with its
// review aggregate, plus the final score and its justification.
type RankedResult struct {
	Hotel          string  `json:"hotel"`
	City           string  `json:"city"`
	HotelType      string  `json:"hotel_type,omitempty"`
	HotelClass     float64 `json:"hotel_class,omitempty"`
	ADR            float64 `json:"adr"`
	ADRLow         float64 `json:"adr_low,omitempty"`
	ADRHigh        float64 `json:"adr_high,omitempty"`
	Meal           string  `json:"meal,omitempty"`
	AvgRating      float64 `json:"avg_rating"`
	NReviews       int     `json:"n_reviews"`
	SentimentScore float64 `json:"sentiment_score"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}

// Service scores candidates against requests. The candidate pool and review
// summaries are fixed at construction; every call is a pure function of the
// request.
type Service struct {
	candidates []domain.Candidate
	reviews    map[string]domain.ReviewSummary
	weights    config.ScoringWeights
	log        zerolog.Logger
}

// NewService creates a recommender over the loaded catalog
func NewService(
	candidates []domain.Candidate,
	reviews map[string]domain.ReviewSummary,
	weights config.ScoringWeights,
	log zerolog.Logger,
) *Service {
	return &Service{
		candidates: candidates,
		reviews:    reviews,
		weights:    weights,
		log:        log.With().Str("component", "recommender").Logger(),
	}
}

// Recommend filters, scores and ranks candidates. A request matching nothing
// yields an empty list, not an error. Results are ordered by score
// descending with deterministic tie-breaks (review count, then hotel name).
func (s *Service) Recommend(req domain.RecommendationRequest, limit int) ([]RankedResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be a positive integer, got %d: %w", limit, domain.ErrInvalidRequest)
	}

	pool := s.filter(req)
	if len(pool) == 0 {
		return []RankedResult{}, nil
	}

	results := s.score(pool)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].NReviews != results[j].NReviews {
			return results[i].NReviews > results[j].NReviews
		}
		return results[i].Hotel < results[j].Hotel
	})

	if len(results) > limit {
		results = results[:limit]
	}

	s.log.Debug().
		Int("pool", len(pool)).
		Int("returned", len(results)).
		Msg("Recommendation computed")

	return results, nil
}

// filter hard-excludes candidates failing any provided constraint.
// Absent request fields impose no constraint.
func (s *Service) filter(req domain.RecommendationRequest) []domain.Candidate {
	var pool []domain.Candidate
	for _, c := range s.candidates {
		if req.City != nil && !strings.EqualFold(c.City, *req.City) {
			continue
		}
		if req.HotelType != nil && c.HotelType != *req.HotelType {
			continue
		}
		if req.Meal != nil && !strings.EqualFold(c.Meal, *req.Meal) {
			continue
		}
		if req.Budget != nil && !withinBudget(c, *req.Budget) {
			continue
		}
		if req.MinRating != nil {
			review, ok := s.reviews[c.Hotel]
			if !ok || review.AvgRating < *req.MinRating {
				continue
			}
		}
		if !fitsOccupancy(c, req.Adults, req.Children) {
			continue
		}
		pool = append(pool, c)
	}
	return pool
}

// withinBudget accepts a candidate whose nightly rate, or the low end of its
// price band, is affordable.
func withinBudget(c domain.Candidate, budget float64) bool {
	if c.ADR > 0 && c.ADR <= budget {
		return true
	}
	return c.ADRLow > 0 && c.ADRLow <= budget
}

// fitsOccupancy checks the party size against declared occupancy, when both
// sides are known.
func fitsOccupancy(c domain.Candidate, adults, children *int) bool {
	if c.MaxGuests <= 0 {
		return true
	}
	if adults == nil && children == nil {
		return true
	}
	party := 0
	if adults != nil {
		party += *adults
	}
	if children != nil {
		party += *children
	}
	return party <= c.MaxGuests
}

// subScores holds the normalized scoring components of one candidate
type subScores struct {
	rating    float64
	sentiment float64
	price     float64
	volume    float64
}

// score computes the weighted linear combination over the filtered pool.
// Price and review-volume components are normalized within the pool, so a
// candidate's score is only meaningful relative to its competitors.
func (s *Service) score(pool []domain.Candidate) []RankedResult {
	minPrice, maxPrice := priceRange(pool)
	maxReviews := 0
	for _, c := range pool {
		if r, ok := s.reviews[c.Hotel]; ok && r.NReviews > maxReviews {
			maxReviews = r.NReviews
		}
	}

	results := make([]RankedResult, 0, len(pool))
	for _, c := range pool {
		review, hasReview := s.reviews[c.Hotel]

		sub := subScores{
			rating:    0.5,
			sentiment: 0.5,
		}
		if hasReview {
			sub.rating = clamp01(review.AvgRating / 5)
			sub.sentiment = clamp01((review.SentimentScore + 1) / 2)
			if maxReviews > 0 {
				// log damping keeps a pile of mediocre reviews from
				// outranking rating quality
				sub.volume = math.Log1p(float64(review.NReviews)) / math.Log1p(float64(maxReviews))
			}
		}
		sub.price = priceScore(effectivePrice(c), minPrice, maxPrice)

		score := s.weights.Rating*sub.rating +
			s.weights.Sentiment*sub.sentiment +
			s.weights.Price*sub.price +
			s.weights.Volume*sub.volume

		results = append(results, RankedResult{
			Hotel:          c.Hotel,
			City:           c.City,
			HotelType:      c.HotelType,
			HotelClass:     c.HotelClass,
			ADR:            c.ADR,
			ADRLow:         c.ADRLow,
			ADRHigh:        c.ADRHigh,
			Meal:           c.Meal,
			AvgRating:      review.AvgRating,
			NReviews:       review.NReviews,
			SentimentScore: review.SentimentScore,
			Score:          round4(score),
			Reason:         s.explain(review, hasReview, sub),
		})
	}

	return results
}

// explain names the top contributing factors of a candidate's score
func (s *Service) explain(review domain.ReviewSummary, hasReview bool, sub subScores) string {
	type contribution struct {
		name   string
		weight float64
		phrase string
	}

	contributions := []contribution{
		{name: "rating", weight: s.weights.Rating * sub.rating, phrase: ratingPhrase(review, hasReview)},
		{name: "sentiment", weight: s.weights.Sentiment * sub.sentiment, phrase: "very positive guest sentiment"},
		{name: "price", weight: s.weights.Price * sub.price, phrase: "great value for its price range"},
		{name: "volume", weight: s.weights.Volume * sub.volume, phrase: fmt.Sprintf("backed by %d reviews", review.NReviews)},
	}

	// Stable sort keeps the factor order deterministic on equal weights
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].weight > contributions[j].weight
	})

	first := contributions[0].phrase
	second := contributions[1].phrase
	reason := fmt.Sprintf("%s and %s", first, second)
	return strings.ToUpper(reason[:1]) + reason[1:]
}

func ratingPhrase(review domain.ReviewSummary, hasReview bool) string {
	if !hasReview {
		return "limited review history"
	}
	if review.AvgRating >= 4.0 {
		return fmt.Sprintf("highly rated (%.1f/5)", review.AvgRating)
	}
	return fmt.Sprintf("rated %.1f/5", review.AvgRating)
}

// effectivePrice prefers the point rate, falling back to the price band
func effectivePrice(c domain.Candidate) float64 {
	if c.ADR > 0 {
		return c.ADR
	}
	if c.ADRLow > 0 {
		return c.ADRLow
	}
	return 0
}

func priceRange(pool []domain.Candidate) (min, max float64) {
	first := true
	for _, c := range pool {
		p := effectivePrice(c)
		if first {
			min, max = p, p
			first = false
			continue
		}
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max
}

// priceScore maps a price to [0,1] within the pool's range; cheaper is
// higher. A degenerate range scores neutral.
func priceScore(price, min, max float64) float64 {
	if max <= min {
		return 0.5
	}
	return (max - price) / (max - min)
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

// round4 rounds to 4 decimal places
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
