// Package join merges road segments with the prediction, counter, and
// census lookups and computes the derived attributes: residual, percent
// error, traffic-level bucket, and representative point.
package join

import (
	"github.com/shuyaguan/dc-dashboard/internal/attr"
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
	"github.com/shuyaguan/dc-dashboard/internal/lookup"
)

// Traffic-level thresholds on predicted volume.
const (
	trafficHighMin   = 80
	trafficMediumMin = 40
)

// Enrich joins every segment in place against the three lookups. Segments
// without a resolvable key pass through unenriched; they are never dropped.
func Enrich(segments []*geodata.Segment, preds map[string]lookup.Prediction, counters *lookup.CounterIndex, census map[string]*geodata.CensusArea) {
	for _, seg := range segments {
		seg.RepPoint = geodata.Midpoint(seg.Paths)
		if seg.Key == "" {
			continue
		}

		if p, ok := preds[seg.Key]; ok {
			seg.Predicted = geodata.Float(p.Predicted)
			seg.PredictedAlt = geodata.Float(p.PredictedAlt)
		}

		if obs, ok := counters.ByKey(seg.Key); ok {
			seg.CounterType = obs.Type
			// Filler counts exist for visual scaling only; attaching
			// them here would fabricate residuals.
			if obs.Observed != nil && !obs.Filler {
				v := *obs.Observed
				seg.Observed = geodata.Float(v)
			}
		}

		if area, ok := census[seg.Key]; ok {
			seg.Census = withAliasFallback(area.Attrs, seg.Props)
		}

		deriveMetrics(seg)
	}
}

// withAliasFallback fills census fields the lookup lacks from the
// segment's own raw properties via alias resolution.
func withAliasFallback(attrs geodata.CensusAttrs, props map[string]any) geodata.CensusAttrs {
	if attrs.Population == 0 {
		attrs.Population = attr.FloatOr(props, "population", 0)
	}
	if attrs.MedianIncome == 0 {
		attrs.MedianIncome = attr.FloatOr(props, "median_income", 0)
	}
	if attrs.BikeCommutePct == 0 {
		attrs.BikeCommutePct = attr.FloatOr(props, "bike_commute_pct", 0)
	}
	if attrs.EducationPct == 0 {
		attrs.EducationPct = attr.FloatOr(props, "education_pct", 0)
	}
	if attrs.Rent == 0 {
		attrs.Rent = attr.FloatOr(props, "rent", 0)
	}
	if attrs.MedianAge == 0 {
		attrs.MedianAge = attr.FloatOr(props, "median_age", 0)
	}
	if attrs.WhitePct == 0 {
		attrs.WhitePct = attr.FloatOr(props, "white_pct", 0)
	}
	return attrs
}

// deriveMetrics computes residual, percent error, and traffic level.
// Residual needs both observed and predicted; percent error additionally
// needs a nonzero observed.
func deriveMetrics(seg *geodata.Segment) {
	if seg.Predicted != nil {
		seg.TrafficLevel = BucketPredicted(*seg.Predicted)
	}
	if seg.Observed == nil || seg.Predicted == nil {
		return
	}
	residual := *seg.Observed - *seg.Predicted
	seg.Residual = geodata.Float(residual)
	if *seg.Observed != 0 {
		seg.PercentError = geodata.Float(residual / *seg.Observed * 100)
	}
}

// BucketPredicted maps a predicted volume to its traffic level.
func BucketPredicted(v float64) geodata.TrafficLevel {
	switch {
	case v >= trafficHighMin:
		return geodata.TrafficHigh
	case v >= trafficMediumMin:
		return geodata.TrafficMedium
	default:
		return geodata.TrafficLow
	}
}
