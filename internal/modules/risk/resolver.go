// Package risk estimates cancellation and overbooking risk from historical
// booking aggregates, using a hierarchical lookup with a defined fallback
// chain and minimum-sample gating.
package risk

import (
	"github.com/stayscout/stayscout/internal/domain"
	"github.com/stayscout/stayscout/internal/modules/aggregation"
)

// ConfidenceTier summarizes how much evidence backs a resolved estimate
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// highTierMultiple: a bucket earns the high tier at this multiple of the
// minimum sample size.
const highTierMultiple = 3

// Match is the outcome of a hierarchical lookup
type Match struct {
	Bucket *aggregation.Bucket
	Tier   ConfidenceTier
	// Global reports that the match came from the unconditioned fallback
	Global bool
}

// Resolver walks a chain of aggregation tables from most to least specific.
// The final level is always the unconditioned (global) aggregate, which is
// never gated by the minimum sample size.
type Resolver struct {
	levels []*aggregation.Table
	global *aggregation.Table
}

// NewResolver builds one aggregation table per chain level plus the global
// fallback table. Levels must be ordered most specific first.
func NewResolver(bookings []domain.BookingRecord, chain []aggregation.Dims) *Resolver {
	levels := make([]*aggregation.Table, 0, len(chain))
	for _, dims := range chain {
		levels = append(levels, aggregation.Build(bookings, dims))
	}
	return &Resolver{
		levels: levels,
		global: aggregation.Build(bookings, aggregation.Dims{}),
	}
}

// Resolve finds the most specific bucket with at least minSamples records.
//
// A level only participates when the key provides every component that level
// groups by, so omitting an optional part (market segment, lead time) skips
// the levels that need it rather than looking up an empty component.
//
// When no gated level qualifies, the global aggregate is returned with the
// low confidence tier regardless of its size. The only absent outcome is an
// entirely empty table.
func (r *Resolver) Resolve(key aggregation.Key, minSamples int) (Match, bool) {
	for _, level := range r.levels {
		if !keyCovers(key, level.Dims()) {
			continue
		}
		bucket, ok := level.Lookup(key)
		if !ok || bucket.Count < minSamples {
			continue
		}

		tier := ConfidenceMedium
		if bucket.Count >= highTierMultiple*minSamples {
			tier = ConfidenceHigh
		}
		return Match{Bucket: bucket, Tier: tier}, true
	}

	bucket, ok := r.global.Lookup(aggregation.Key{})
	if !ok || bucket.Count == 0 {
		return Match{}, false
	}
	return Match{Bucket: bucket, Tier: ConfidenceLow, Global: true}, true
}

// MedianLeadTime exposes the dataset-wide median lead time in days
func (r *Resolver) MedianLeadTime() float64 {
	return r.global.MedianLeadTime()
}

// keyCovers reports whether key provides every component dims requires
func keyCovers(key aggregation.Key, dims aggregation.Dims) bool {
	if dims.HotelType && key.HotelType == "" {
		return false
	}
	if dims.MarketSegment && key.MarketSegment == "" {
		return false
	}
	if dims.ArrivalMonth && key.ArrivalMonth == "" {
		return false
	}
	if dims.LeadTimeBucket && key.LeadTimeBucket == "" {
		return false
	}
	return true
}
