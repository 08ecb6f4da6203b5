package query

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// csvHeader is the fixed export column set.
var csvHeader = []string{
	"key", "neighborhood", "facility", "length_m", "road_class",
	"predicted", "predicted_alt", "observed", "counter_type",
	"residual", "percent_error", "traffic_level",
	"population", "median_income", "bike_commute_pct", "education_pct",
	"rep_lng", "rep_lat",
}

// ExportCSV renders segments as UTF-8 comma-delimited text. Missing
// optional values export as empty cells, not zeros.
func ExportCSV(segments []*geodata.Segment) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", eris.Wrap(err, "query: write csv header")
	}

	for _, seg := range segments {
		row := []string{
			seg.Key,
			seg.Neighborhood,
			string(seg.Facility),
			formatFloat(seg.LengthM),
			seg.RoadClass,
			formatOpt(seg.Predicted),
			formatOpt(seg.PredictedAlt),
			formatOpt(seg.Observed),
			string(seg.CounterType),
			formatOpt(seg.Residual),
			formatOpt(seg.PercentError),
			string(seg.TrafficLevel),
			formatFloat(seg.Census.Population),
			formatFloat(seg.Census.MedianIncome),
			formatFloat(seg.Census.BikeCommutePct),
			formatFloat(seg.Census.EducationPct),
			repCoord(seg.RepPoint, 0),
			repCoord(seg.RepPoint, 1),
		}
		if err := w.Write(row); err != nil {
			return "", eris.Wrapf(err, "query: write csv row for %s", seg.Key)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", eris.Wrap(err, "query: flush csv")
	}
	return sb.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func repCoord(p *geodata.Coord, i int) string {
	if p == nil {
		return ""
	}
	return formatFloat(p[i])
}
