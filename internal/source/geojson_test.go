package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

func TestParseSegmentsDefaults(t *testing.T) {
	segs, err := ParseSegments(defaultRoads)
	require.NoError(t, err)
	require.Len(t, segs, 4)

	byKey := make(map[string]*geodata.Segment)
	for _, s := range segs {
		byKey[s.Key] = s
	}

	sb1 := byKey["SB0001"]
	require.NotNil(t, sb1)
	assert.Equal(t, "Downtown", sb1.Neighborhood)
	assert.Equal(t, geodata.FacilityProtected, sb1.Facility)
	assert.InDelta(t, 210.5, sb1.LengthM, 1e-9)
	assert.Equal(t, "Minor Arterial", sb1.RoadClass)
	assert.InDelta(t, 4, sb1.Degree, 1e-9)
	require.Len(t, sb1.Paths, 1)
	assert.Len(t, sb1.Paths[0], 3)

	// SUBBLOK is an accepted key alias; MultiLineString yields two paths.
	sb3 := byKey["SB0003"]
	require.NotNil(t, sb3)
	assert.Equal(t, "Navy Yard", sb3.Neighborhood)
	assert.Equal(t, geodata.FacilityNone, sb3.Facility)
	assert.Len(t, sb3.Paths, 2)

	// Keyless features are retained, never dropped.
	keyless := byKey[""]
	require.NotNil(t, keyless)
	assert.Equal(t, geodata.FacilitySharrow, keyless.Facility)
}

func TestParseSegmentsLengthFallback(t *testing.T) {
	data := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"SUBBLOCKKEY":"SB0100"},
		 "geometry":{"type":"LineString","coordinates":[[-77.03,38.9],[-77.03,38.91]]}}]}`)

	segs, err := ParseSegments(data)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	// No SHAPE_Length, so length comes from the geometry.
	assert.InDelta(t, 1112, segs[0].LengthM, 10)
}

func TestParseSegmentsRejectsBadDocument(t *testing.T) {
	_, err := ParseSegments([]byte(`{"type":"Feature"}`))
	require.Error(t, err)

	_, err = ParseSegments([]byte(`not json`))
	require.Error(t, err)
}

func TestParseCountersFiller(t *testing.T) {
	pts, err := ParseCounters(defaultCounters, 25)
	require.NoError(t, err)
	require.Len(t, pts, 3)

	bySite := make(map[string]*geodata.CounterPoint)
	for _, p := range pts {
		bySite[p.SiteName] = p
	}

	auto := bySite["15th St Cycletrack"]
	require.NotNil(t, auto)
	assert.Equal(t, "SB0001", auto.Key)
	assert.Equal(t, geodata.CounterAuto, auto.CounterType)
	require.NotNil(t, auto.Observed)
	assert.InDelta(t, 96, *auto.Observed, 1e-9)
	assert.False(t, auto.Filler)

	manual := bySite["M St SE at 4th"]
	require.NotNil(t, manual)
	assert.Empty(t, manual.Key)
	assert.Equal(t, geodata.CounterManual, manual.CounterType)

	// No COUNT property: the filler substitutes, flagged.
	filled := bySite["G St NW"]
	require.NotNil(t, filled)
	require.NotNil(t, filled.Observed)
	assert.InDelta(t, 25, *filled.Observed, 1e-9)
	assert.True(t, filled.Filler)
}

func TestParseCensusAliases(t *testing.T) {
	areas, err := ParseCensus(defaultCensus)
	require.NoError(t, err)
	require.Len(t, areas, 2)

	byKey := make(map[string]*geodata.CensusArea)
	for _, a := range areas {
		byKey[a.Key] = a
	}

	a1 := byKey["SB0001"]
	require.NotNil(t, a1)
	assert.Equal(t, "005800", a1.AreaID)
	assert.InDelta(t, 98000, a1.Attrs.MedianIncome, 1e-9)
	assert.InDelta(t, 3200, a1.Attrs.Population, 1e-9)
	assert.NotEmpty(t, a1.Rings)

	// ACS-style suffixed fields resolve through the same alias table.
	a3 := byKey["SB0003"]
	require.NotNil(t, a3)
	assert.InDelta(t, 87500, a3.Attrs.MedianIncome, 1e-9)
	assert.InDelta(t, 2.8, a3.Attrs.BikeCommutePct, 1e-9)
	assert.InDelta(t, 49.7, a3.Attrs.WhitePct, 1e-9)
}

func TestParseNeighborhoodsSkipsNameless(t *testing.T) {
	data := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"NBH_NAMES":"Downtown"},
		 "geometry":{"type":"Polygon","coordinates":[[[-77.04,38.895],[-77.02,38.895],[-77.02,38.905],[-77.04,38.905],[-77.04,38.895]]]}},
		{"type":"Feature","properties":{},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`)

	hoods, err := ParseNeighborhoods(data)
	require.NoError(t, err)
	require.Len(t, hoods, 1)
	assert.Equal(t, "Downtown", hoods[0].Name)
	assert.Contains(t, hoods[0].RawJSON, "Polygon")
}
