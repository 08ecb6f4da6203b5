package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

func TestExportCSV(t *testing.T) {
	segments := []*geodata.Segment{
		{
			Key:          "SB0001",
			Neighborhood: "Downtown",
			Facility:     geodata.FacilityProtected,
			LengthM:      210.5,
			RoadClass:    "Minor Arterial",
			Predicted:    geodata.Float(84.2),
			Observed:     geodata.Float(96),
			Residual:     geodata.Float(11.8),
			TrafficLevel: geodata.TrafficHigh,
			Census:       geodata.CensusAttrs{MedianIncome: 98000},
			RepPoint:     &geodata.Coord{-77.03, 38.9},
		},
		{
			Key:      "SB0003",
			Facility: geodata.FacilityNone,
		},
	}

	out, err := ExportCSV(segments)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	header := strings.Split(lines[0], ",")
	assert.Equal(t, "key", header[0])
	assert.Len(t, header, 18)

	row := strings.Split(lines[1], ",")
	require.Len(t, row, 18)
	assert.Equal(t, "SB0001", row[0])
	assert.Equal(t, "Downtown", row[1])
	assert.Equal(t, "84.2", row[5])
	assert.Equal(t, "96", row[7])
	assert.Equal(t, "98000", row[13])
	assert.Equal(t, "-77.03", row[16])

	// Missing optionals are empty cells, not zeros.
	row = strings.Split(lines[2], ",")
	assert.Equal(t, "", row[5]) // predicted
	assert.Equal(t, "", row[7]) // observed
	assert.Equal(t, "", row[16])
	assert.Equal(t, "0", row[3]) // length is a plain float, zero exports as 0
}

func TestExportCSVEmpty(t *testing.T) {
	out, err := ExportCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "key,"))
}
