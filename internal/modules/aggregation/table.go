// Package aggregation builds summary-statistics tables from historical
// booking records. Tables are constructed once at startup and are immutable
// afterwards; every lookup is a pure read.
package aggregation

import (
	"github.com/stayscout/stayscout/internal/domain"
	"github.com/stayscout/stayscout/pkg/formulas"
)

// Dims selects which key components a table is grouped by
type Dims struct {
	HotelType      bool
	MarketSegment  bool
	ArrivalMonth   bool
	LeadTimeBucket bool
}

// Key identifies an aggregation bucket. Components outside the table's Dims
// stay empty.
type Key struct {
	HotelType      string
	MarketSegment  string
	ArrivalMonth   string
	LeadTimeBucket string
}

// Reduce zeroes the key components not present in dims
func (k Key) Reduce(dims Dims) Key {
	reduced := Key{}
	if dims.HotelType {
		reduced.HotelType = k.HotelType
	}
	if dims.MarketSegment {
		reduced.MarketSegment = k.MarketSegment
	}
	if dims.ArrivalMonth {
		reduced.ArrivalMonth = k.ArrivalMonth
	}
	if dims.LeadTimeBucket {
		reduced.LeadTimeBucket = k.LeadTimeBucket
	}
	return reduced
}

// Bucket holds the derived statistics of one group of booking records.
// A bucket only exists if at least one record fell into it.
type Bucket struct {
	Key              Key     `json:"key"`
	Count            int     `json:"count"`
	CancellationRate float64 `json:"cancellation_rate"`
	ReassignmentRate float64 `json:"reassignment_rate"`
	WaitingListRate  float64 `json:"waiting_list_rate"`
	MedianADR        float64 `json:"median_adr"`
	MeanADR          float64 `json:"mean_adr"`
}

// accumulator collects raw per-group tallies during Build
type accumulator struct {
	count      int
	canceled   int
	reassigned int
	waitlisted int
	adrs       []float64
}

// Table is an immutable aggregation table over one key granularity
type Table struct {
	dims           Dims
	buckets        map[Key]*Bucket
	totalRecords   int
	medianLeadTime float64
}

// Build groups bookings by the key components in dims and derives the
// per-bucket statistics. Aggregation is order-independent: the same multiset
// of records always produces the same table.
//
// No minimum-sample gating happens here; that is a lookup-time policy so each
// caller can apply its own threshold.
func Build(bookings []domain.BookingRecord, dims Dims) *Table {
	accs := make(map[Key]*accumulator)
	leadTimes := make([]float64, 0, len(bookings))

	for _, b := range bookings {
		key := Key{
			HotelType:      b.HotelType,
			MarketSegment:  b.MarketSegment,
			ArrivalMonth:   domain.CanonicalMonth(b.ArrivalMonth),
			LeadTimeBucket: LeadTimeBucket(b.LeadTime),
		}.Reduce(dims)

		acc, ok := accs[key]
		if !ok {
			acc = &accumulator{}
			accs[key] = acc
		}

		acc.count++
		if b.IsCanceled {
			acc.canceled++
		}
		if b.WasReassigned() {
			acc.reassigned++
		}
		if b.DaysInWaitingList > 0 {
			acc.waitlisted++
		}
		acc.adrs = append(acc.adrs, b.ADR)

		leadTimes = append(leadTimes, float64(b.LeadTime))
	}

	buckets := make(map[Key]*Bucket, len(accs))
	for key, acc := range accs {
		n := float64(acc.count)
		buckets[key] = &Bucket{
			Key:              key,
			Count:            acc.count,
			CancellationRate: float64(acc.canceled) / n,
			ReassignmentRate: float64(acc.reassigned) / n,
			WaitingListRate:  float64(acc.waitlisted) / n,
			MedianADR:        formulas.Median(acc.adrs),
			MeanADR:          formulas.Mean(acc.adrs),
		}
	}

	return &Table{
		dims:           dims,
		buckets:        buckets,
		totalRecords:   len(bookings),
		medianLeadTime: formulas.Median(leadTimes),
	}
}

// Dims returns the key components this table is grouped by
func (t *Table) Dims() Dims {
	return t.dims
}

// Lookup returns the bucket for key, reduced to this table's dims
func (t *Table) Lookup(key Key) (*Bucket, bool) {
	b, ok := t.buckets[key.Reduce(t.dims)]
	return b, ok
}

// Len returns the number of buckets in the table
func (t *Table) Len() int {
	return len(t.buckets)
}

// TotalRecords returns the number of booking records the table was built from
func (t *Table) TotalRecords() int {
	return t.totalRecords
}

// MedianLeadTime returns the median lead time (days) across all records
func (t *Table) MedianLeadTime() float64 {
	return t.medianLeadTime
}

// Each calls fn for every bucket. Iteration order is unspecified; callers
// needing determinism must impose their own order.
func (t *Table) Each(fn func(*Bucket)) {
	for _, b := range t.buckets {
		fn(b)
	}
}
