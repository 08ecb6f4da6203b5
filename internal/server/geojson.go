package server

import (
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
	"github.com/shuyaguan/dc-dashboard/internal/query"
)

// The API speaks plain GeoJSON so the map layer can consume responses
// without translation. Coord marshals as a [lng, lat] pair already.

type feature struct {
	Type       string         `json:"type"`
	Geometry   any            `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func segmentCollection(segments []*geodata.Segment, view query.View) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(segments))}
	for _, seg := range segments {
		fc.Features = append(fc.Features, segmentFeature(seg, view))
	}
	return fc
}

func segmentFeature(seg *geodata.Segment, view query.View) feature {
	var geom geometry
	if len(seg.Paths) == 1 {
		geom = geometry{Type: "LineString", Coordinates: seg.Paths[0]}
	} else {
		geom = geometry{Type: "MultiLineString", Coordinates: seg.Paths}
	}

	// Raw source properties pass through underneath the joined fields, so
	// anything the normalizer did not claim is still available to tooltips.
	props := make(map[string]any, len(seg.Props)+16)
	for k, v := range seg.Props {
		props[k] = v
	}
	props["key"] = seg.Key
	props["neighborhood"] = seg.Neighborhood
	props["facility"] = string(seg.Facility)
	props["length_m"] = seg.LengthM
	props["census"] = seg.Census
	count := query.CountForView(seg, view)
	props["count"] = count
	props["volume_bucket"] = query.Bucket(count)
	if seg.Predicted != nil {
		props["predicted"] = *seg.Predicted
	}
	if seg.PredictedAlt != nil {
		props["predicted_alt"] = *seg.PredictedAlt
	}
	if seg.Observed != nil {
		props["observed"] = *seg.Observed
	}
	if seg.Residual != nil {
		props["residual"] = *seg.Residual
	}
	if seg.PercentError != nil {
		props["percent_error"] = *seg.PercentError
	}
	if seg.TrafficLevel != "" {
		props["traffic_level"] = string(seg.TrafficLevel)
	}
	if seg.CounterType != "" {
		props["counter_type"] = string(seg.CounterType)
	}

	return feature{Type: "Feature", Geometry: geom, Properties: props}
}

func counterCollection(points []*geodata.CounterPoint) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(points))}
	for _, pt := range points {
		props := make(map[string]any, len(pt.Props)+6)
		for k, v := range pt.Props {
			props[k] = v
		}
		props["key"] = pt.Key
		props["site_name"] = pt.SiteName
		props["counter_type"] = string(pt.CounterType)
		if pt.Observed != nil {
			props["observed"] = *pt.Observed
			props["volume_bucket"] = query.Bucket(*pt.Observed)
		}
		props["filler"] = pt.Filler
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   geometry{Type: "Point", Coordinates: pt.Point},
			Properties: props,
		})
	}
	return fc
}
