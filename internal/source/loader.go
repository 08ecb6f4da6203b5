// Package source loads the dashboard's raw datasets. Each loader makes one
// retrieval attempt, falls back to a secondary path, and finally to a small
// built-in dataset comparable in shape to production, so the pipeline never
// accidentally observes fully empty input. A loader only returns an error
// when even the built-in dataset cannot be parsed.
package source

import (
	"bytes"
	"context"
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/fetcher"
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

//go:embed defaults/roads.geojson
var defaultRoads []byte

//go:embed defaults/counters.geojson
var defaultCounters []byte

//go:embed defaults/neighborhoods.geojson
var defaultNeighborhoods []byte

//go:embed defaults/census.geojson
var defaultCensus []byte

//go:embed defaults/predictions.csv
var defaultPredictions []byte

//go:embed defaults/temporal.csv
var defaultTemporal []byte

// DefaultFillerCount substitutes for missing counter observations.
const DefaultFillerCount = 25

// Ref names a source's primary and fallback locations.
type Ref struct {
	Primary  string
	Fallback string
}

// Paths locate the six source files.
type Paths struct {
	Roads         Ref
	Counters      Ref
	Neighborhoods Ref
	Census        Ref
	Predictions   Ref
	Temporal      Ref
}

// Loader fetches and parses the source datasets.
type Loader struct {
	fetch  fetcher.Fetcher
	paths  Paths
	filler float64
	log    *zap.Logger
}

// New creates a Loader. A zero filler count selects the default.
func New(f fetcher.Fetcher, paths Paths, filler float64) *Loader {
	if filler == 0 {
		filler = DefaultFillerCount
	}
	return &Loader{
		fetch:  f,
		paths:  paths,
		filler: filler,
		log:    zap.L().With(zap.String("component", "source")),
	}
}

// Roads loads the road-segment collection.
func (l *Loader) Roads(ctx context.Context) ([]*geodata.Segment, error) {
	segs, err := loadWithFallback(ctx, l, "roads", l.paths.Roads, defaultRoads,
		func(data []byte) ([]*geodata.Segment, error) { return ParseSegments(data) })
	if err != nil {
		return nil, err
	}
	l.log.Info("loaded road segments", zap.Int("count", len(segs)))
	return segs, nil
}

// Counters loads the counter-point collection.
func (l *Loader) Counters(ctx context.Context) ([]*geodata.CounterPoint, error) {
	pts, err := loadWithFallback(ctx, l, "counters", l.paths.Counters, defaultCounters,
		func(data []byte) ([]*geodata.CounterPoint, error) { return ParseCounters(data, l.filler) })
	if err != nil {
		return nil, err
	}
	l.log.Info("loaded counter points", zap.Int("count", len(pts)))
	return pts, nil
}

// Neighborhoods loads the neighborhood polygon collection.
func (l *Loader) Neighborhoods(ctx context.Context) ([]geodata.Neighborhood, error) {
	hoods, err := loadWithFallback(ctx, l, "neighborhoods", l.paths.Neighborhoods, defaultNeighborhoods,
		func(data []byte) ([]geodata.Neighborhood, error) { return ParseNeighborhoods(data) })
	if err != nil {
		return nil, err
	}
	l.log.Info("loaded neighborhoods", zap.Int("count", len(hoods)))
	return hoods, nil
}

// Census loads the census polygon collection. A .shp primary path reads a
// local shapefile; anything else is parsed as GeoJSON.
func (l *Loader) Census(ctx context.Context) ([]*geodata.CensusArea, error) {
	if strings.HasSuffix(strings.ToLower(l.paths.Census.Primary), ".shp") {
		areas, err := CensusFromShapefile(l.paths.Census.Primary)
		if err == nil {
			l.log.Info("loaded census areas from shapefile", zap.Int("count", len(areas)))
			return areas, nil
		}
		l.log.Warn("census shapefile failed, falling back",
			zap.String("path", l.paths.Census.Primary), zap.Error(err))
	}
	areas, err := loadWithFallback(ctx, l, "census", l.paths.Census, defaultCensus,
		func(data []byte) ([]*geodata.CensusArea, error) { return ParseCensus(data) })
	if err != nil {
		return nil, err
	}
	l.log.Info("loaded census areas", zap.Int("count", len(areas)))
	return areas, nil
}

// Predictions loads the spatial model output. An .xlsx path is read as a
// workbook; anything else as a delimited table.
func (l *Loader) Predictions(ctx context.Context) ([]geodata.PredictionRow, error) {
	rows, err := loadWithFallback(ctx, l, "predictions", l.paths.Predictions, defaultPredictions,
		func(data []byte) ([]geodata.PredictionRow, error) {
			t, err := l.table(l.paths.Predictions.Primary, data)
			if err != nil {
				return nil, err
			}
			return ParsePredictions(t)
		})
	if err != nil {
		return nil, err
	}
	l.log.Info("loaded prediction rows", zap.Int("count", len(rows)))
	return rows, nil
}

// Temporal loads the per-day/per-hour model output.
func (l *Loader) Temporal(ctx context.Context) ([]geodata.TemporalRow, error) {
	rows, err := loadWithFallback(ctx, l, "temporal", l.paths.Temporal, defaultTemporal,
		func(data []byte) ([]geodata.TemporalRow, error) {
			t, err := fetcher.ReadTable(bytes.NewReader(data), fetcher.TableOptions{})
			if err != nil {
				return nil, err
			}
			return ParseTemporal(t)
		})
	if err != nil {
		return nil, err
	}
	l.log.Info("loaded temporal rows", zap.Int("count", len(rows)))
	return rows, nil
}

// table parses raw bytes as XLSX when the ref says so, else as CSV.
func (l *Loader) table(ref string, data []byte) (*fetcher.Table, error) {
	if strings.HasSuffix(strings.ToLower(ref), ".xlsx") && looksBinary(data) {
		return fetcher.ReadXLSXTable(data, fetcher.XLSXOptions{})
	}
	return fetcher.ReadTable(bytes.NewReader(data), fetcher.TableOptions{})
}

// looksBinary reports whether data starts with the ZIP magic used by XLSX.
// Fallback bytes for an .xlsx ref may still be the embedded CSV default.
func looksBinary(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && data[1] == 'K'
}

// loadWithFallback runs the per-source fallback chain: primary fetch, then
// fallback fetch, then the embedded default. Parse failures fall through
// the same chain as fetch failures.
func loadWithFallback[T any](ctx context.Context, l *Loader, name string, ref Ref, def []byte, parse func([]byte) (T, error)) (T, error) {
	for _, candidate := range []struct {
		ref  string
		kind string
	}{
		{ref.Primary, "primary"},
		{ref.Fallback, "fallback"},
	} {
		if candidate.ref == "" {
			continue
		}
		data, err := fetcher.ReadAll(ctx, l.fetch, candidate.ref)
		if err != nil {
			l.log.Warn("source fetch failed",
				zap.String("source", name),
				zap.String("kind", candidate.kind),
				zap.String("ref", candidate.ref),
				zap.Error(err),
			)
			continue
		}
		out, err := parse(data)
		if err != nil {
			l.log.Warn("source parse failed",
				zap.String("source", name),
				zap.String("kind", candidate.kind),
				zap.String("ref", candidate.ref),
				zap.Error(err),
			)
			continue
		}
		return out, nil
	}

	l.log.Warn("using built-in default dataset", zap.String("source", name))
	out, err := parse(def)
	if err != nil {
		var zero T
		return zero, eris.Wrapf(err, "source: built-in %s dataset", name)
	}
	return out, nil
}
