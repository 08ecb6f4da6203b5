package lookup

import (
	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

// HoursPerDay is the length of one day's prediction series.
const HoursPerDay = 24

// DaySeries maps day-of-week (1=Monday..7=Sunday) to 24 hourly values.
type DaySeries map[int][HoursPerDay]float64

// TemporalTable maps segment key to a day/hour prediction grid. Built once
// at load time, immutable afterwards; a reload replaces the whole table.
type TemporalTable struct {
	series map[string]DaySeries
}

// BuildTemporal assembles the table from row-form model output. Duplicate
// key/day/hour cells resolve last-write-wins like the other lookups.
func BuildTemporal(rows []geodata.TemporalRow) *TemporalTable {
	t := &TemporalTable{series: make(map[string]DaySeries)}
	for _, r := range rows {
		if r.Key == "" || r.Day < 1 || r.Day > 7 || r.Hour < 0 || r.Hour >= HoursPerDay {
			continue
		}
		ds, ok := t.series[r.Key]
		if !ok {
			ds = make(DaySeries)
			t.series[r.Key] = ds
		}
		hours := ds[r.Day]
		hours[r.Hour] = r.Value
		ds[r.Day] = hours
	}
	return t
}

// Series returns a copy of the day/hour grid for a key. The second return
// is false when the key is absent, so callers can tell "no data" apart
// from an all-zero grid.
func (t *TemporalTable) Series(key string) (DaySeries, bool) {
	ds, ok := t.series[key]
	if !ok {
		return nil, false
	}
	out := make(DaySeries, len(ds))
	for day, hours := range ds {
		out[day] = hours
	}
	return out, true
}

// Len returns the number of keys in the table.
func (t *TemporalTable) Len() int {
	return len(t.series)
}
