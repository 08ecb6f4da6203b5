// Package query answers filtered-view requests against the joined dataset.
// Filters apply conjunctively and always operate on deep copies; the
// canonical collections are never mutated.
package query

import (
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// All is the pass-through sentinel for every filter dimension.
const All = "all"

// View selects which count a volume filter buckets on.
type View string

// Views.
const (
	ViewObserved  View = "observed"
	ViewPredicted View = "predicted"
	// ViewCombined uses observed when present, else predicted, else 0.
	ViewCombined View = "combined"
)

// Volume bucket names.
const (
	BucketHigh       = "high"
	BucketMediumHigh = "medium-high"
	BucketMedium     = "medium"
	BucketMediumLow  = "medium-low"
	BucketLow        = "low"
)

// Filters is a conjunctive filter set. Zero values and the All sentinel
// pass everything through. Volume may hold one or more bucket names.
type Filters struct {
	Neighborhood string
	CounterType  string
	Volume       []string
	View         View
}

// Bucket maps a count to its volume bucket. Boundaries are closed on the
// lower edge: exactly 80 is high, exactly 50 medium-high, exactly 30
// medium, exactly 10 medium-low.
func Bucket(count float64) string {
	switch {
	case count >= 80:
		return BucketHigh
	case count >= 50:
		return BucketMediumHigh
	case count >= 30:
		return BucketMedium
	case count >= 10:
		return BucketMediumLow
	default:
		return BucketLow
	}
}

// CountForView selects the count a segment is bucketed on under a view.
func CountForView(seg *geodata.Segment, v View) float64 {
	switch v {
	case ViewObserved:
		if seg.Observed != nil {
			return *seg.Observed
		}
		return 0
	case ViewPredicted:
		if seg.Predicted != nil {
			return *seg.Predicted
		}
		return 0
	default:
		if seg.Observed != nil {
			return *seg.Observed
		}
		if seg.Predicted != nil {
			return *seg.Predicted
		}
		return 0
	}
}

// Segments returns clones of the segments passing the filters.
func Segments(src []*geodata.Segment, f Filters) []*geodata.Segment {
	out := make([]*geodata.Segment, 0, len(src))
	for _, seg := range src {
		if !segmentMatches(seg, f) {
			continue
		}
		out = append(out, seg.Clone())
	}
	return out
}

// Counters returns clones of the counter points passing the filters.
// Counters carry no neighborhood, so only the counter-type and volume
// dimensions apply; bucket membership uses the observed count (filler
// included, since filler exists precisely to keep rendering consistent).
func Counters(src []*geodata.CounterPoint, f Filters) []*geodata.CounterPoint {
	out := make([]*geodata.CounterPoint, 0, len(src))
	for _, pt := range src {
		if !counterTypePass(string(pt.CounterType), f.CounterType) {
			continue
		}
		var count float64
		if pt.Observed != nil {
			count = *pt.Observed
		}
		if !volumePass(count, f.Volume) {
			continue
		}
		out = append(out, pt.Clone())
	}
	return out
}

func segmentMatches(seg *geodata.Segment, f Filters) bool {
	if f.Neighborhood != "" && f.Neighborhood != All && seg.Neighborhood != f.Neighborhood {
		return false
	}
	if !counterTypePass(string(seg.CounterType), f.CounterType) {
		return false
	}
	return volumePass(CountForView(seg, f.View), f.Volume)
}

func counterTypePass(have, want string) bool {
	if want == "" || want == All {
		return true
	}
	return have == want
}

func volumePass(count float64, want []string) bool {
	if len(want) == 0 {
		return true
	}
	bucket := Bucket(count)
	for _, w := range want {
		if w == All || w == bucket {
			return true
		}
	}
	return false
}
