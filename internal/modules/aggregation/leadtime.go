package aggregation

// LeadTimeBand is a half-open lead-time interval [Min, Max) in days.
// MaxDays < 0 marks the open-ended top band.
type LeadTimeBand struct {
	Label   string
	MinDays int
	MaxDays int
}

// LeadTimeBands are the lead-time buckets used across all tables, in band order
var LeadTimeBands = []LeadTimeBand{
	{Label: "0-7", MinDays: 0, MaxDays: 7},
	{Label: "7-14", MinDays: 7, MaxDays: 14},
	{Label: "14-30", MinDays: 14, MaxDays: 30},
	{Label: "30-60", MinDays: 30, MaxDays: 60},
	{Label: "60+", MinDays: 60, MaxDays: -1},
}

// LeadTimeBucket maps a lead time in days to its band label.
// Negative lead times land in the first band.
func LeadTimeBucket(days int) string {
	for _, band := range LeadTimeBands {
		if band.MaxDays < 0 || days < band.MaxDays {
			return band.Label
		}
	}
	return LeadTimeBands[len(LeadTimeBands)-1].Label
}

// BandByLabel returns the band definition for a bucket label
func BandByLabel(label string) (LeadTimeBand, bool) {
	for _, band := range LeadTimeBands {
		if band.Label == label {
			return band, true
		}
	}
	return LeadTimeBand{}, false
}

// Midpoint returns the representative lead time of the band. The open-ended
// top band uses its lower bound plus half the width of the band below it.
func (b LeadTimeBand) Midpoint() float64 {
	if b.MaxDays < 0 {
		return float64(b.MinDays) + 15
	}
	return (float64(b.MinDays) + float64(b.MaxDays)) / 2
}
