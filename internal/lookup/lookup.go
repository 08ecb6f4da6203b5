// Package lookup builds the keyed indexes the join engine reads from:
// predictions by key, counters by key (with a site-name secondary key
// space), and census attributes by key. Duplicate incoming keys resolve
// last-write-wins, matching the upstream data convention; conflicts are
// not reported.
package lookup

import (
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// Prediction is the attribute subset attached from the spatial model.
type Prediction struct {
	Predicted    float64
	PredictedAlt float64
}

// Predictions indexes prediction rows by segment key. Rows without a key
// are skipped; they stay in the source collection but cannot be joined.
func Predictions(rows []geodata.PredictionRow) map[string]Prediction {
	m := make(map[string]Prediction, len(rows))
	for _, r := range rows {
		if r.Key == "" {
			continue
		}
		m[r.Key] = Prediction{Predicted: r.Predicted, PredictedAlt: r.PredictedAlt}
	}
	return m
}

// Observation is the attribute subset attached from a counter point.
type Observation struct {
	Observed *float64
	Filler   bool
	Type     geodata.CounterType
}

// CounterIndex resolves observations by segment key first, site name as
// the alternate key space. The two spaces never shadow each other: a
// counter record is indexed under its segment key when it has one, under
// its site name otherwise.
type CounterIndex struct {
	byKey  map[string]Observation
	bySite map[string]Observation
}

// Counters builds the two-space counter index.
func Counters(pts []*geodata.CounterPoint) *CounterIndex {
	idx := &CounterIndex{
		byKey:  make(map[string]Observation),
		bySite: make(map[string]Observation),
	}
	for _, p := range pts {
		obs := Observation{
			Observed: p.Observed,
			Filler:   p.Filler,
			Type:     p.CounterType,
		}
		switch {
		case p.Key != "":
			idx.byKey[p.Key] = obs
		case p.SiteName != "":
			idx.bySite[p.SiteName] = obs
		}
	}
	return idx
}

// Resolve looks up an observation by segment key, then by site name.
func (ci *CounterIndex) Resolve(key, site string) (Observation, bool) {
	if key != "" {
		if obs, ok := ci.byKey[key]; ok {
			return obs, true
		}
	}
	if site != "" {
		if obs, ok := ci.bySite[site]; ok {
			return obs, true
		}
	}
	return Observation{}, false
}

// ByKey looks up an observation by segment key only.
func (ci *CounterIndex) ByKey(key string) (Observation, bool) {
	obs, ok := ci.byKey[key]
	return obs, ok
}

// Census indexes census areas by key. Areas without a key are skipped.
func Census(areas []*geodata.CensusArea) map[string]*geodata.CensusArea {
	m := make(map[string]*geodata.CensusArea, len(areas))
	for _, a := range areas {
		if a.Key == "" {
			continue
		}
		m[a.Key] = a
	}
	return m
}
