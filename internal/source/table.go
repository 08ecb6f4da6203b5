package source

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/attr"
	"github.com/shuyaguan/dc-dashboard/internal/fetcher"
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// ParsePredictions converts a delimited table into prediction rows.
// Predictions are numeric-coerced with 0 for invalid or missing values;
// rows without a key are retained here and skipped at lookup build time.
func ParsePredictions(t *fetcher.Table) ([]geodata.PredictionRow, error) {
	if t == nil {
		return nil, eris.New("source: nil predictions table")
	}

	rows := make([]geodata.PredictionRow, 0, len(t.Rows))
	for _, rec := range t.Records() {
		rows = append(rows, geodata.PredictionRow{
			Key:          attr.String(rec, "segment_key"),
			Predicted:    attr.FloatOr(rec, "predicted", 0),
			PredictedAlt: attr.FloatOr(rec, "predicted_alt", 0),
		})
	}
	return rows, nil
}

// ParseTemporal converts a delimited table into temporal prediction rows.
// Rows with an out-of-range day or hour are dropped with a log line; they
// cannot be placed in the day/hour grid.
func ParseTemporal(t *fetcher.Table) ([]geodata.TemporalRow, error) {
	if t == nil {
		return nil, eris.New("source: nil temporal table")
	}

	rows := make([]geodata.TemporalRow, 0, len(t.Rows))
	var dropped int
	for _, rec := range t.Records() {
		key := attr.String(rec, "temporal_key")
		day, dayOK := attr.Float(rec, "temporal_day")
		hour, hourOK := attr.Float(rec, "temporal_hour")
		if key == "" || !dayOK || !hourOK ||
			day < 1 || day > 7 || hour < 0 || hour > 23 {
			dropped++
			continue
		}
		rows = append(rows, geodata.TemporalRow{
			Key:   key,
			Day:   int(day),
			Hour:  int(hour),
			Value: attr.FloatOr(rec, "temporal_value", 0),
		})
	}
	if dropped > 0 {
		zap.L().Warn("source: dropped malformed temporal rows", zap.Int("count", dropped))
	}
	return rows, nil
}
