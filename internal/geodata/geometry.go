package geodata

import "math"

// earthRadiusM is the mean Earth radius used for segment length estimates.
const earthRadiusM = 6371000.0

// Midpoint returns a representative point for a polyline: the middle vertex
// of the middle path. It is meant for map centering and external links, not
// for spatial analysis. Returns nil for empty geometry.
func Midpoint(paths [][]Coord) *Coord {
	if len(paths) == 0 {
		return nil
	}
	path := paths[len(paths)/2]
	if len(path) == 0 {
		// Middle part empty; fall back to the first non-empty one.
		for _, p := range paths {
			if len(p) > 0 {
				path = p
				break
			}
		}
		if len(path) == 0 {
			return nil
		}
	}
	mid := path[len(path)/2]
	return &mid
}

// PathLengthM returns the approximate length of a polyline in meters using
// the haversine distance between consecutive vertices.
func PathLengthM(paths [][]Coord) float64 {
	var total float64
	for _, path := range paths {
		for i := 1; i < len(path); i++ {
			total += haversineM(path[i-1], path[i])
		}
	}
	return total
}

func haversineM(a, b Coord) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng() - a.Lng()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}
