package dataset

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
	"github.com/shuyaguan/dc-dashboard/internal/query"
	"github.com/shuyaguan/dc-dashboard/internal/source"
)

// failFetcher fails every fetch, forcing the loader onto its built-in
// sample datasets.
type failFetcher struct{}

func (failFetcher) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return nil, eris.Errorf("fail: %s", ref)
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := New(source.New(failFetcher{}, source.Paths{}, 0))
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestLoadFromDefaults(t *testing.T) {
	s := loadedStore(t)

	info := s.State()
	assert.True(t, info.Loaded)
	assert.NotEmpty(t, info.LoadID)
	assert.Equal(t, 4, info.SegmentCount)
	assert.Equal(t, 3, info.CounterCount)
	assert.Equal(t, 2, info.CensusCount)
	assert.Equal(t, 3, info.TemporalKeys)
	assert.ElementsMatch(t, []string{"Downtown", "Navy Yard"}, info.Neighborhoods)
}

func TestLoadJoinsSampleData(t *testing.T) {
	s := loadedStore(t)

	segs := s.FilteredRoads(query.Filters{View: query.ViewCombined})
	require.Len(t, segs, 4)

	byKey := make(map[string]*geodata.Segment)
	for _, seg := range segs {
		byKey[seg.Key] = seg
	}

	sb1 := byKey["SB0001"]
	require.NotNil(t, sb1)
	require.NotNil(t, sb1.Observed)
	assert.InDelta(t, 96, *sb1.Observed, 1e-9)
	require.NotNil(t, sb1.Predicted)
	assert.InDelta(t, 84.2, *sb1.Predicted, 1e-9)
	require.NotNil(t, sb1.Residual)
	assert.InDelta(t, 11.8, *sb1.Residual, 1e-6)
	assert.Equal(t, geodata.TrafficHigh, sb1.TrafficLevel)
	assert.InDelta(t, 98000, sb1.Census.MedianIncome, 1e-9)

	// SB0002's counter carries only a filler count: the counter type joins
	// but no observation does.
	sb2 := byKey["SB0002"]
	require.NotNil(t, sb2)
	assert.Equal(t, geodata.CounterAuto, sb2.CounterType)
	assert.Nil(t, sb2.Observed)
	assert.Equal(t, geodata.TrafficMedium, sb2.TrafficLevel)

	sb3 := byKey["SB0003"]
	require.NotNil(t, sb3)
	assert.Equal(t, geodata.TrafficLow, sb3.TrafficLevel)
}

func TestFilteredRoadsByNeighborhood(t *testing.T) {
	s := loadedStore(t)

	segs := s.FilteredRoads(query.Filters{Neighborhood: "Downtown", View: query.ViewCombined})
	require.Len(t, segs, 2)
	for _, seg := range segs {
		assert.Equal(t, "Downtown", seg.Neighborhood)
	}
}

func TestTemporalSeries(t *testing.T) {
	s := loadedStore(t)

	ds, ok := s.TemporalSeries("SB0001")
	require.True(t, ok)
	assert.InDelta(t, 88, ds[1][8], 1e-9)

	_, ok = s.TemporalSeries("SB0404")
	assert.False(t, ok)
}

func TestStatisticsFromDefaults(t *testing.T) {
	s := loadedStore(t)

	snap, ok := s.Statistics()
	require.True(t, ok)
	assert.Equal(t, 4, snap.SegmentCount)
	assert.InDelta(t, 96, snap.TotalObserved, 1e-9)
	assert.InDelta(t, 142.5, snap.TotalEstimated, 1e-9)
	assert.InDelta(t, 47.5, snap.AvgPredicted, 1e-9)
	assert.InDelta(t, 92750, snap.AvgIncome, 1e-9)
	// One comparable pair: |96-84.2|/96, about 12.3% off.
	assert.Equal(t, 88, snap.ModelAccuracyPct)
}

func TestCompare(t *testing.T) {
	s := loadedStore(t)

	c, ok := s.Compare("SB0001")
	require.True(t, ok)
	assert.Equal(t, "SB0001", c.Key)
	assert.True(t, c.Predicted.HasValue)

	_, ok = s.Compare("SB0404")
	assert.False(t, ok)
}

func TestExportCSVFromStore(t *testing.T) {
	s := loadedStore(t)

	out, err := s.ExportCSV(query.Filters{Neighborhood: "Downtown", View: query.ViewCombined})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, out, "SB0001")
}

func TestUnloadedStore(t *testing.T) {
	s := New(source.New(failFetcher{}, source.Paths{}, 0))

	assert.Nil(t, s.FilteredRoads(query.Filters{}))
	assert.Nil(t, s.FilteredCounters(query.Filters{}))
	_, ok := s.TemporalSeries("SB0001")
	assert.False(t, ok)
	_, ok = s.Statistics()
	assert.False(t, ok)
	_, err := s.ExportCSV(query.Filters{})
	require.Error(t, err)
	assert.False(t, s.State().Loaded)
}

func TestReloadReplacesState(t *testing.T) {
	s := loadedStore(t)
	first := s.State().LoadID

	require.NoError(t, s.Load(context.Background()))
	second := s.State()
	assert.NotEqual(t, first, second.LoadID)
	assert.Equal(t, 4, second.SegmentCount)
}
