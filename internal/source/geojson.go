package source

import (
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/attr"
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// ParseSegments reads a polyline feature collection into road segments.
// Features without a resolvable key are retained: dropping them would
// silently hide whole streets from the map.
func ParseSegments(data []byte) ([]*geodata.Segment, error) {
	feats, err := features(data)
	if err != nil {
		return nil, eris.Wrap(err, "source: road collection")
	}

	segs := make([]*geodata.Segment, 0, len(feats))
	for _, f := range feats {
		props := propsMap(f)
		paths := linePaths(f)

		seg := &geodata.Segment{
			Key:          attr.String(props, "segment_key"),
			Neighborhood: attr.String(props, "neighborhood"),
			Facility:     attr.Facility(attr.String(props, "bike_facility")),
			LengthM:      attr.FloatOr(props, "length_m", 0),
			RoadClass:    attr.String(props, "road_class"),
			SpeedLimit:   attr.FloatOr(props, "speed_limit", 0),
			Degree:       attr.FloatOr(props, "degree", 0),
			Betweenness:  attr.FloatOr(props, "betweenness", 0),
			Closeness:    attr.FloatOr(props, "closeness", 0),
			Paths:        paths,
			Props:        props,
		}
		if seg.LengthM == 0 && len(paths) > 0 {
			seg.LengthM = geodata.PathLengthM(paths)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// ParseCounters reads a point feature collection into counter points.
// Missing observed counts are replaced by a flagged synthetic filler so
// size scaling downstream never breaks.
func ParseCounters(data []byte, filler float64) ([]*geodata.CounterPoint, error) {
	feats, err := features(data)
	if err != nil {
		return nil, eris.Wrap(err, "source: counter collection")
	}

	pts := make([]*geodata.CounterPoint, 0, len(feats))
	for _, f := range feats {
		props := propsMap(f)

		pt := &geodata.CounterPoint{
			Key:         attr.String(props, "segment_key"),
			SiteName:    attr.String(props, "site_name"),
			CounterType: attr.Counter(attr.String(props, "counter_type")),
			Props:       props,
		}
		if v, ok := attr.Float(props, "observed_count"); ok {
			pt.Observed = geodata.Float(v)
		} else {
			pt.Observed = geodata.Float(filler)
			pt.Filler = true
		}
		if c, ok := pointCoord(f); ok {
			pt.Point = c
		}
		pts = append(pts, pt)
	}
	return pts, nil
}

// ParseCensus reads a polygon feature collection into census areas.
func ParseCensus(data []byte) ([]*geodata.CensusArea, error) {
	feats, err := features(data)
	if err != nil {
		return nil, eris.Wrap(err, "source: census collection")
	}

	areas := make([]*geodata.CensusArea, 0, len(feats))
	for _, f := range feats {
		props := propsMap(f)
		areas = append(areas, &geodata.CensusArea{
			Key:    attr.String(props, "census_key"),
			AreaID: attr.String(props, "area_id"),
			Attrs:  censusAttrs(props),
			Rings:  polygonRings(f),
			Props:  props,
		})
	}
	return areas, nil
}

// ParseNeighborhoods reads a polygon feature collection, keeping the raw
// feature JSON for spatial indexing alongside the resolved name.
func ParseNeighborhoods(data []byte) ([]geodata.Neighborhood, error) {
	feats, err := features(data)
	if err != nil {
		return nil, eris.Wrap(err, "source: neighborhood collection")
	}

	hoods := make([]geodata.Neighborhood, 0, len(feats))
	for _, f := range feats {
		props := propsMap(f)
		name := attr.String(props, "neighborhood")
		if name == "" {
			zap.L().Debug("source: neighborhood feature without name, skipping")
			continue
		}
		hoods = append(hoods, geodata.Neighborhood{Name: name, RawJSON: f.Raw})
	}
	return hoods, nil
}

// censusAttrs resolves the demographic bundle from raw properties.
func censusAttrs(props map[string]any) geodata.CensusAttrs {
	return geodata.CensusAttrs{
		Population:     attr.FloatOr(props, "population", 0),
		MedianIncome:   attr.FloatOr(props, "median_income", 0),
		BikeCommutePct: attr.FloatOr(props, "bike_commute_pct", 0),
		EducationPct:   attr.FloatOr(props, "education_pct", 0),
		Rent:           attr.FloatOr(props, "rent", 0),
		MedianAge:      attr.FloatOr(props, "median_age", 0),
		WhitePct:       attr.FloatOr(props, "white_pct", 0),
	}
}

// features validates the document and returns its feature array.
func features(data []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, eris.New("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if doc.Get("type").String() != "FeatureCollection" {
		return nil, eris.Errorf("expected FeatureCollection, got %q", doc.Get("type").String())
	}
	return doc.Get("features").Array(), nil
}

// propsMap converts a feature's properties to a plain record for alias
// resolution.
func propsMap(f gjson.Result) map[string]any {
	props := make(map[string]any)
	f.Get("properties").ForEach(func(k, v gjson.Result) bool {
		props[k.String()] = v.Value()
		return true
	})
	return props
}

// linePaths extracts polyline paths from LineString or MultiLineString
// geometry. Other geometry types yield no paths.
func linePaths(f gjson.Result) [][]geodata.Coord {
	coords := f.Get("geometry.coordinates")
	switch f.Get("geometry.type").String() {
	case "LineString":
		if path := coordRun(coords); len(path) > 0 {
			return [][]geodata.Coord{path}
		}
	case "MultiLineString":
		var paths [][]geodata.Coord
		for _, part := range coords.Array() {
			if path := coordRun(part); len(path) > 0 {
				paths = append(paths, path)
			}
		}
		return paths
	}
	return nil
}

// polygonRings extracts rings from Polygon or MultiPolygon geometry.
func polygonRings(f gjson.Result) [][]geodata.Coord {
	coords := f.Get("geometry.coordinates")
	switch f.Get("geometry.type").String() {
	case "Polygon":
		var rings [][]geodata.Coord
		for _, ring := range coords.Array() {
			if r := coordRun(ring); len(r) > 0 {
				rings = append(rings, r)
			}
		}
		return rings
	case "MultiPolygon":
		var rings [][]geodata.Coord
		for _, poly := range coords.Array() {
			for _, ring := range poly.Array() {
				if r := coordRun(ring); len(r) > 0 {
					rings = append(rings, r)
				}
			}
		}
		return rings
	}
	return nil
}

// pointCoord extracts a Point geometry's coordinate.
func pointCoord(f gjson.Result) (geodata.Coord, bool) {
	if f.Get("geometry.type").String() != "Point" {
		return geodata.Coord{}, false
	}
	pair := f.Get("geometry.coordinates").Array()
	if len(pair) < 2 {
		return geodata.Coord{}, false
	}
	return geodata.Coord{pair[0].Float(), pair[1].Float()}, true
}

// coordRun converts a JSON coordinate array to a run of lng/lat pairs.
func coordRun(arr gjson.Result) []geodata.Coord {
	var run []geodata.Coord
	for _, pair := range arr.Array() {
		xy := pair.Array()
		if len(xy) < 2 {
			continue
		}
		run = append(run, geodata.Coord{xy[0].Float(), xy[1].Float()})
	}
	return run
}
