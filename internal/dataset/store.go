// Package dataset owns the canonical joined collections and their
// lifecycle: constructed empty, populated by Load, read-only until the
// next Load replaces the state wholesale.
package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
	"github.com/shuyaguan/dc-dashboard/internal/join"
	"github.com/shuyaguan/dc-dashboard/internal/lookup"
	"github.com/shuyaguan/dc-dashboard/internal/query"
	"github.com/shuyaguan/dc-dashboard/internal/source"
	"github.com/shuyaguan/dc-dashboard/internal/stats"
)

// state holds one fully loaded and joined dataset. It is replaced as a
// unit on reload and never mutated in place after Load publishes it.
type state struct {
	loadID   string
	loadedAt time.Time

	segments []*geodata.Segment
	counters []*geodata.CounterPoint
	census   []*geodata.CensusArea
	hoods    *join.HoodIndex
	temporal *lookup.TemporalTable
	stats    stats.Snapshot
}

// Info is the read-only snapshot of the store's lifecycle state.
type Info struct {
	LoadID        string    `json:"load_id"`
	LoadedAt      time.Time `json:"loaded_at"`
	Loaded        bool      `json:"loaded"`
	SegmentCount  int       `json:"segment_count"`
	CounterCount  int       `json:"counter_count"`
	CensusCount   int       `json:"census_count"`
	TemporalKeys  int       `json:"temporal_keys"`
	Neighborhoods []string  `json:"neighborhoods,omitempty"`
}

// Store is the data core's single owned state.
type Store struct {
	loader *source.Loader

	mu sync.RWMutex
	st *state
}

// New creates an empty store around a loader.
func New(loader *source.Loader) *Store {
	return &Store{loader: loader}
}

// Load fetches all sources concurrently, waits for every one to settle,
// then runs the join and aggregation stages and replaces the previous
// state wholesale. Individual source failures were already resolved to
// fallbacks inside the loader; Load fails only when a loader's own
// fallback could not be built, which leaves the pipeline unable to run.
func (s *Store) Load(ctx context.Context) error {
	loadID := uuid.NewString()
	log := zap.L().With(zap.String("component", "dataset"), zap.String("load_id", loadID))
	started := time.Now()

	var (
		segments []*geodata.Segment
		counters []*geodata.CounterPoint
		census   []*geodata.CensusArea
		hoods    []geodata.Neighborhood
		preds    []geodata.PredictionRow
		temporal []geodata.TemporalRow
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		segments, err = s.loader.Roads(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		counters, err = s.loader.Counters(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		census, err = s.loader.Census(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		hoods, err = s.loader.Neighborhoods(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		preds, err = s.loader.Predictions(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		temporal, err = s.loader.Temporal(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "dataset: load sources")
	}

	if len(segments) == 0 {
		return eris.New("dataset: no road segments available after all fallbacks")
	}

	hoodIdx, err := join.NewHoodIndex(hoods)
	if err != nil {
		log.Warn("neighborhood index unavailable", zap.Error(err))
		hoodIdx = nil
	}

	join.Enrich(segments, lookup.Predictions(preds), lookup.Counters(counters), lookup.Census(census))
	hoodIdx.BackfillNeighborhoods(segments)

	next := &state{
		loadID:   loadID,
		loadedAt: time.Now(),
		segments: segments,
		counters: counters,
		census:   census,
		hoods:    hoodIdx,
		temporal: lookup.BuildTemporal(temporal),
		stats:    stats.Compute(segments),
	}

	s.mu.Lock()
	s.st = next
	s.mu.Unlock()

	log.Info("dataset loaded",
		zap.Int("segments", len(segments)),
		zap.Int("counters", len(counters)),
		zap.Int("census_areas", len(census)),
		zap.Int("temporal_keys", next.temporal.Len()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// current returns the published state, or nil before the first Load.
func (s *Store) current() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

// FilteredRoads returns cloned segments passing the filters.
func (s *Store) FilteredRoads(f query.Filters) []*geodata.Segment {
	st := s.current()
	if st == nil {
		return nil
	}
	return query.Segments(st.segments, f)
}

// FilteredCounters returns cloned counter points passing the filters.
func (s *Store) FilteredCounters(f query.Filters) []*geodata.CounterPoint {
	st := s.current()
	if st == nil {
		return nil
	}
	return query.Counters(st.counters, f)
}

// TemporalSeries returns the day/hour grid for a segment key. The second
// return is false for an unknown key or an unloaded store.
func (s *Store) TemporalSeries(key string) (lookup.DaySeries, bool) {
	st := s.current()
	if st == nil {
		return nil, false
	}
	return st.temporal.Series(key)
}

// Statistics returns the cached snapshot. The second return is false
// before the first Load.
func (s *Store) Statistics() (stats.Snapshot, bool) {
	st := s.current()
	if st == nil {
		return stats.Snapshot{}, false
	}
	return st.stats, true
}

// Compare builds the segment-vs-city-average bundle for a key.
func (s *Store) Compare(key string) (stats.Comparison, bool) {
	st := s.current()
	if st == nil {
		return stats.Comparison{}, false
	}
	for _, seg := range st.segments {
		if seg.Key == key {
			return stats.CompareWithAverage(seg, st.stats), true
		}
	}
	return stats.Comparison{}, false
}

// ExportCSV renders the filtered segment view as CSV text.
func (s *Store) ExportCSV(f query.Filters) (string, error) {
	st := s.current()
	if st == nil {
		return "", eris.New("dataset: not loaded")
	}
	return query.ExportCSV(query.Segments(st.segments, f))
}

// State returns the read-only lifecycle snapshot.
func (s *Store) State() Info {
	st := s.current()
	if st == nil {
		return Info{}
	}
	info := Info{
		LoadID:       st.loadID,
		LoadedAt:     st.loadedAt,
		Loaded:       true,
		SegmentCount: len(st.segments),
		CounterCount: len(st.counters),
		CensusCount:  len(st.census),
		TemporalKeys: st.temporal.Len(),
	}
	if st.hoods != nil {
		info.Neighborhoods = st.hoods.Names()
	}
	return info
}
