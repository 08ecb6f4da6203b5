package source

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/attr"
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// CensusFromShapefile reads census areas from a TIGER-style shapefile,
// taking demographics from the DBF attributes. Used when the census source
// is published as .shp instead of GeoJSON; shapefiles are local-path only.
func CensusFromShapefile(path string) ([]*geodata.CensusArea, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var areas []*geodata.CensusArea
	for reader.Next() {
		_, shape := reader.Shape()

		props := make(map[string]any, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(reader.Attribute(i))
		}

		area := &geodata.CensusArea{
			Key:    attr.String(props, "census_key"),
			AreaID: attr.String(props, "area_id"),
			Attrs:  censusAttrs(props),
			Props:  props,
		}

		if poly, ok := shape.(*shp.Polygon); ok {
			if mp := polygonToMultiPolygon(poly); mp != nil {
				area.Rings = multiPolygonRings(mp)
			}
		}
		areas = append(areas, area)
	}

	return areas, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("source: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("source: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// multiPolygonRings flattens a MultiPolygon's rings into coordinate runs.
func multiPolygonRings(mp *geom.MultiPolygon) [][]geodata.Coord {
	var rings [][]geodata.Coord
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			coords := poly.LinearRing(j).Coords()
			ring := make([]geodata.Coord, 0, len(coords))
			for _, c := range coords {
				ring = append(ring, geodata.Coord{c.X(), c.Y()})
			}
			if len(ring) > 0 {
				rings = append(rings, ring)
			}
		}
	}
	return rings
}
