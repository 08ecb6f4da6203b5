package stats

import "github.com/shuyaguan/dc-dashboard/internal/geodata"

// Metric compares one segment value against the city-wide average.
type Metric struct {
	Value      float64 `json:"value"`
	CityAvg    float64 `json:"city_avg"`
	PctOfAvg   float64 `json:"pct_of_avg"`
	HasValue   bool    `json:"has_value"`
	HasCityAvg bool    `json:"has_city_avg"`
}

// Comparison bundles per-metric segment-vs-average figures for the detail
// panel.
type Comparison struct {
	Key         string `json:"key"`
	Predicted   Metric `json:"predicted"`
	Income      Metric `json:"income"`
	Population  Metric `json:"population"`
	BikeCommute Metric `json:"bike_commute"`
	Education   Metric `json:"education"`
}

// CompareWithAverage builds the comparison bundle for a segment against a
// snapshot. Metrics with a missing segment value or a zero city average
// carry no percentage; division by zero is skipped, never NaN.
func CompareWithAverage(seg *geodata.Segment, snap Snapshot) Comparison {
	c := Comparison{Key: seg.Key}

	if seg.Predicted != nil {
		c.Predicted = metric(*seg.Predicted, snap.AvgPredicted)
	} else {
		c.Predicted = Metric{CityAvg: snap.AvgPredicted, HasCityAvg: snap.AvgPredicted != 0}
	}
	c.Income = metric(seg.Census.MedianIncome, snap.AvgIncome)
	c.Population = metric(seg.Census.Population, snap.AvgPopulation)
	c.BikeCommute = metric(seg.Census.BikeCommutePct, snap.AvgBikeCommutePct)
	c.Education = metric(seg.Census.EducationPct, snap.AvgEducationPct)

	return c
}

func metric(value, avg float64) Metric {
	m := Metric{
		Value:      value,
		CityAvg:    avg,
		HasValue:   value != 0,
		HasCityAvg: avg != 0,
	}
	if m.HasValue && m.HasCityAvg {
		m.PctOfAvg = value / avg * 100
	}
	return m
}
