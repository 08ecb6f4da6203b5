package join

import (
	"github.com/rotisserie/eris"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// HoodIndex answers point-in-polygon neighborhood queries via an R-tree
// over polygon bounding boxes.
type HoodIndex struct {
	tree  rtree.RTree
	names []string
}

type hoodEntry struct {
	name string
	obj  geojson.Object
}

// NewHoodIndex builds the index from named neighborhood polygons. Features
// whose geometry fails to parse are skipped with a log line.
func NewHoodIndex(hoods []geodata.Neighborhood) (*HoodIndex, error) {
	idx := &HoodIndex{}
	seen := make(map[string]bool, len(hoods))
	for _, h := range hoods {
		obj, err := geojson.Parse(h.RawJSON, nil)
		if err != nil {
			zap.L().Warn("join: unparseable neighborhood geometry",
				zap.String("name", h.Name), zap.Error(err))
			continue
		}
		r := obj.Rect()
		idx.tree.Insert(
			[2]float64{r.Min.X, r.Min.Y},
			[2]float64{r.Max.X, r.Max.Y},
			&hoodEntry{name: h.Name, obj: obj},
		)
		if !seen[h.Name] {
			seen[h.Name] = true
			idx.names = append(idx.names, h.Name)
		}
	}
	if idx.tree.Len() == 0 && len(hoods) > 0 {
		return nil, eris.New("join: no usable neighborhood polygons")
	}
	return idx, nil
}

// Locate returns the name of the first neighborhood containing the point,
// or "" when none does.
func (idx *HoodIndex) Locate(c geodata.Coord) string {
	var name string
	pt := geometry.Point{X: c.Lng(), Y: c.Lat()}
	idx.tree.Search(
		[2]float64{c.Lng(), c.Lat()},
		[2]float64{c.Lng(), c.Lat()},
		func(_, _ [2]float64, v any) bool {
			e := v.(*hoodEntry)
			if e.obj.Spatial().IntersectsPoint(pt) {
				name = e.name
				return false
			}
			return true
		},
	)
	return name
}

// Names returns the distinct neighborhood names in insertion order.
func (idx *HoodIndex) Names() []string {
	return append([]string(nil), idx.names...)
}

// BackfillNeighborhoods assigns a neighborhood to segments that lack one,
// by locating their representative point. Source-supplied names are never
// overwritten.
func (idx *HoodIndex) BackfillNeighborhoods(segments []*geodata.Segment) {
	if idx == nil {
		return
	}
	for _, seg := range segments {
		if seg.Neighborhood != "" || seg.RepPoint == nil {
			continue
		}
		seg.Neighborhood = idx.Locate(*seg.RepPoint)
	}
}
