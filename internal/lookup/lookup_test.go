package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

func TestPredictionsLastWriteWins(t *testing.T) {
	m := Predictions([]geodata.PredictionRow{
		{Key: "SB0001", Predicted: 10, PredictedAlt: 11},
		{Key: "", Predicted: 99},
		{Key: "SB0001", Predicted: 84.2, PredictedAlt: 79.5},
	})

	require.Len(t, m, 1)
	p, ok := m["SB0001"]
	require.True(t, ok)
	assert.InDelta(t, 84.2, p.Predicted, 1e-9)
	assert.InDelta(t, 79.5, p.PredictedAlt, 1e-9)
}

func TestCounterIndexKeySpaces(t *testing.T) {
	idx := Counters([]*geodata.CounterPoint{
		{Key: "SB0001", SiteName: "15th St Cycletrack", CounterType: geodata.CounterAuto, Observed: geodata.Float(96)},
		{SiteName: "M St SE at 4th", CounterType: geodata.CounterManual, Observed: geodata.Float(18)},
		{CounterType: geodata.CounterUnknown, Observed: geodata.Float(5)}, // no key at all
	})

	// A keyed record is reachable by key, not by its site name: the two
	// spaces never shadow each other.
	obs, ok := idx.ByKey("SB0001")
	require.True(t, ok)
	assert.InDelta(t, 96, *obs.Observed, 1e-9)

	_, ok = idx.Resolve("", "15th St Cycletrack")
	assert.False(t, ok)

	// A keyless record stays retrievable through its site name.
	obs, ok = idx.Resolve("", "M St SE at 4th")
	require.True(t, ok)
	assert.Equal(t, geodata.CounterManual, obs.Type)
	assert.InDelta(t, 18, *obs.Observed, 1e-9)

	// Key wins over site when both resolve.
	obs, ok = idx.Resolve("SB0001", "M St SE at 4th")
	require.True(t, ok)
	assert.InDelta(t, 96, *obs.Observed, 1e-9)

	_, ok = idx.Resolve("SB0404", "nowhere")
	assert.False(t, ok)
}

func TestCounterIndexLastWriteWins(t *testing.T) {
	idx := Counters([]*geodata.CounterPoint{
		{Key: "SB0001", Observed: geodata.Float(10)},
		{Key: "SB0001", Observed: geodata.Float(20), Filler: true},
	})

	obs, ok := idx.ByKey("SB0001")
	require.True(t, ok)
	assert.InDelta(t, 20, *obs.Observed, 1e-9)
	assert.True(t, obs.Filler)
}

func TestCensusSkipsKeyless(t *testing.T) {
	m := Census([]*geodata.CensusArea{
		{Key: "SB0001", Attrs: geodata.CensusAttrs{MedianIncome: 98000}},
		{Key: ""},
	})

	require.Len(t, m, 1)
	assert.InDelta(t, 98000, m["SB0001"].Attrs.MedianIncome, 1e-9)
}
