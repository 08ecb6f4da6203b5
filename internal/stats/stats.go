// Package stats computes city-wide summary statistics over the joined
// dataset. Averages over census-style fields deliberately exclude zero
// values: the upstream dashboard treats zero as "missing" for these
// fields, and changing that would change displayed numbers. The quirk is
// preserved and covered by tests rather than silently fixed.
package stats

import (
	"math"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// Snapshot holds the aggregate values computed once per dataset load.
// Percentages are rounded to the nearest integer for display.
type Snapshot struct {
	SegmentCount int `json:"segment_count"`

	TotalObserved  float64 `json:"total_observed"`
	TotalEstimated float64 `json:"total_estimated"`
	AvgPredicted   float64 `json:"avg_predicted"`

	BikeLaneCoveragePct int `json:"bike_lane_coverage_pct"`

	AvgIncome         float64 `json:"avg_income"`
	AvgPopulation     float64 `json:"avg_population"`
	AvgBikeCommutePct float64 `json:"avg_bike_commute_pct"`
	AvgEducationPct   float64 `json:"avg_education_pct"`

	ModelAccuracyPct int `json:"model_accuracy_pct"`
}

// Compute aggregates the enriched segments in a single pass.
func Compute(segments []*geodata.Segment) Snapshot {
	var (
		snap Snapshot

		predictedSum   float64
		predictedN     int
		lanedLength    float64
		totalLength    float64
		incomeSum      float64
		incomeN        int
		populationSum  float64
		populationN    int
		bikeCommuteSum float64
		bikeCommuteN   int
		educationSum   float64
		educationN     int
		relErrSum      float64
		relErrN        int
	)

	snap.SegmentCount = len(segments)

	for _, seg := range segments {
		if seg.Observed != nil {
			snap.TotalObserved += *seg.Observed
		}
		if seg.Predicted != nil {
			snap.TotalEstimated += *seg.Predicted
			predictedSum += *seg.Predicted
			predictedN++
		}

		totalLength += seg.LengthM
		if hasBikeLane(seg.Facility) {
			lanedLength += seg.LengthM
		}

		// Zero counts as missing here; see package comment.
		if seg.Census.MedianIncome != 0 {
			incomeSum += seg.Census.MedianIncome
			incomeN++
		}
		if seg.Census.Population != 0 {
			populationSum += seg.Census.Population
			populationN++
		}
		if seg.Census.BikeCommutePct != 0 {
			bikeCommuteSum += seg.Census.BikeCommutePct
			bikeCommuteN++
		}
		if seg.Census.EducationPct != 0 {
			educationSum += seg.Census.EducationPct
			educationN++
		}

		if seg.Observed != nil && seg.Predicted != nil && *seg.Observed != 0 {
			relErrSum += math.Abs(*seg.Observed-*seg.Predicted) / *seg.Observed
			relErrN++
		}
	}

	if predictedN > 0 {
		snap.AvgPredicted = predictedSum / float64(predictedN)
	}
	if totalLength > 0 {
		snap.BikeLaneCoveragePct = int(math.Round(lanedLength / totalLength * 100))
	}
	if incomeN > 0 {
		snap.AvgIncome = incomeSum / float64(incomeN)
	}
	if populationN > 0 {
		snap.AvgPopulation = populationSum / float64(populationN)
	}
	if bikeCommuteN > 0 {
		snap.AvgBikeCommutePct = bikeCommuteSum / float64(bikeCommuteN)
	}
	if educationN > 0 {
		snap.AvgEducationPct = educationSum / float64(educationN)
	}
	if relErrN > 0 {
		snap.ModelAccuracyPct = int(math.Round(100 * (1 - relErrSum/float64(relErrN))))
	}

	return snap
}

// hasBikeLane reports whether the facility counts toward lane coverage.
func hasBikeLane(f geodata.FacilityType) bool {
	switch f {
	case geodata.FacilityNone, geodata.FacilityUnknown, "":
		return false
	default:
		return true
	}
}
