// Package geodata defines the entities of the bike-volume dataset: road
// segments, counter points, census areas, and prediction rows.
package geodata

// FacilityType classifies the bike facility on a segment, normalized from
// the free-text values that appear in the source files.
type FacilityType string

// Bike facility types.
const (
	FacilityProtected    FacilityType = "Protected"
	FacilityBuffered     FacilityType = "Buffered"
	FacilityConventional FacilityType = "Conventional"
	FacilitySharrow      FacilityType = "Sharrow"
	FacilityNone         FacilityType = "None"
	FacilityUnknown      FacilityType = "Unknown"
)

// CounterType identifies how a counting site collects data.
type CounterType string

// Counter types.
const (
	CounterAuto    CounterType = "AUTO"
	CounterManual  CounterType = "MANUAL"
	CounterUnknown CounterType = "UNKNOWN"
)

// TrafficLevel is the predicted-volume bucket attached to a segment.
// Empty when the segment has no predicted value.
type TrafficLevel string

// Traffic levels.
const (
	TrafficHigh   TrafficLevel = "high"
	TrafficMedium TrafficLevel = "medium"
	TrafficLow    TrafficLevel = "low"
)

// Coord is a longitude/latitude pair.
type Coord [2]float64

// Lng returns the longitude component.
func (c Coord) Lng() float64 { return c[0] }

// Lat returns the latitude component.
func (c Coord) Lat() float64 { return c[1] }

// CensusAttrs is the demographic bundle joined onto segments and carried by
// census areas. Zero means the source had no value; the aggregator treats
// zero as missing when averaging (see stats package).
type CensusAttrs struct {
	Population     float64 `json:"population"`
	MedianIncome   float64 `json:"median_income"`
	BikeCommutePct float64 `json:"bike_commute_pct"`
	EducationPct   float64 `json:"education_pct"`
	Rent           float64 `json:"rent"`
	MedianAge      float64 `json:"median_age"`
	WhitePct       float64 `json:"white_pct"`
}

// Segment is a road-network edge with everything the join engine attaches.
// Optional numerics are pointers: a segment with no model output must be
// distinguishable from one predicted at exactly zero riders.
type Segment struct {
	Key          string       `json:"key"`
	Neighborhood string       `json:"neighborhood,omitempty"`
	Facility     FacilityType `json:"facility"`
	LengthM      float64      `json:"length_m"`
	RoadClass    string       `json:"road_class,omitempty"`
	SpeedLimit   float64      `json:"speed_limit,omitempty"`

	// Network centrality, zero-defaulted.
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`

	Census CensusAttrs `json:"census"`

	Predicted    *float64    `json:"predicted,omitempty"`
	PredictedAlt *float64    `json:"predicted_alt,omitempty"`
	Observed     *float64    `json:"observed,omitempty"`
	CounterType  CounterType `json:"counter_type,omitempty"`

	// Derived by the join engine. Present only when their inputs are.
	Residual     *float64     `json:"residual,omitempty"`
	PercentError *float64     `json:"percent_error,omitempty"`
	TrafficLevel TrafficLevel `json:"traffic_level,omitempty"`
	RepPoint     *Coord       `json:"rep_point,omitempty"`

	// Paths holds the polyline geometry, one or more runs of lng/lat pairs.
	Paths [][]Coord `json:"paths"`

	// Props carries the raw source properties for alias fallback and
	// pass-through to the rendering layer.
	Props map[string]any `json:"-"`
}

// Clone returns a deep copy of the segment. Filtered views hand out clones
// so callers can never mutate the canonical store.
func (s *Segment) Clone() *Segment {
	if s == nil {
		return nil
	}
	out := *s
	out.Predicted = cloneFloat(s.Predicted)
	out.PredictedAlt = cloneFloat(s.PredictedAlt)
	out.Observed = cloneFloat(s.Observed)
	out.Residual = cloneFloat(s.Residual)
	out.PercentError = cloneFloat(s.PercentError)
	if s.RepPoint != nil {
		p := *s.RepPoint
		out.RepPoint = &p
	}
	if s.Paths != nil {
		out.Paths = make([][]Coord, len(s.Paths))
		for i, path := range s.Paths {
			out.Paths[i] = append([]Coord(nil), path...)
		}
	}
	if s.Props != nil {
		out.Props = make(map[string]any, len(s.Props))
		for k, v := range s.Props {
			out.Props[k] = v
		}
	}
	return &out
}

// CounterPoint is a physical counting location.
type CounterPoint struct {
	Key         string      `json:"key,omitempty"`
	SiteName    string      `json:"site_name,omitempty"`
	CounterType CounterType `json:"counter_type"`

	// Observed is never nil after loading: when the source row has no
	// count, a synthetic filler is substituted so visual size scaling
	// never breaks, and Filler is set so statistics can skip it.
	Observed *float64 `json:"observed,omitempty"`
	Filler   bool     `json:"filler,omitempty"`

	Point Coord          `json:"point"`
	Props map[string]any `json:"-"`
}

// Clone returns a deep copy of the counter point.
func (c *CounterPoint) Clone() *CounterPoint {
	if c == nil {
		return nil
	}
	out := *c
	out.Observed = cloneFloat(c.Observed)
	if c.Props != nil {
		out.Props = make(map[string]any, len(c.Props))
		for k, v := range c.Props {
			out.Props[k] = v
		}
	}
	return &out
}

// CensusArea is a demographic polygon keyed by the segment key convention.
type CensusArea struct {
	Key    string      `json:"key"`
	AreaID string      `json:"area_id,omitempty"`
	Attrs  CensusAttrs `json:"attrs"`

	// Rings holds the polygon boundary, outer ring first.
	Rings [][]Coord      `json:"rings,omitempty"`
	Props map[string]any `json:"-"`
}

// PredictionRow is one row of the spatial model output.
type PredictionRow struct {
	Key          string  `json:"key"`
	Predicted    float64 `json:"predicted"`
	PredictedAlt float64 `json:"predicted_alt"`
}

// TemporalRow is one row of the temporal model output: predicted riders for
// a segment at one day-of-week and hour.
type TemporalRow struct {
	Key   string  `json:"key"`
	Day   int     `json:"day"`  // 1=Monday .. 7=Sunday
	Hour  int     `json:"hour"` // 0..23
	Value float64 `json:"value"`
}

// Neighborhood is a named polygon used for filter matching and for
// backfilling segment neighborhood names by point-in-polygon.
type Neighborhood struct {
	Name string `json:"name"`
	// RawJSON is the original GeoJSON feature, kept for spatial indexing.
	RawJSON string `json:"-"`
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float returns a pointer to v. Convenience for building optional numerics.
func Float(v float64) *float64 { return &v }
