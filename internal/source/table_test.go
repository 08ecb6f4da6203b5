package source

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyaguan/dc-dashboard/internal/fetcher"
)

func TestParsePredictionsDefaults(t *testing.T) {
	tbl, err := fetcher.ReadTable(bytes.NewReader(defaultPredictions), fetcher.TableOptions{})
	require.NoError(t, err)

	rows, err := ParsePredictions(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "SB0001", rows[0].Key)
	assert.InDelta(t, 84.2, rows[0].Predicted, 1e-9)
	assert.InDelta(t, 79.5, rows[0].PredictedAlt, 1e-9)
}

func TestParsePredictionsKeepsKeylessRows(t *testing.T) {
	tbl, err := fetcher.ReadTable(strings.NewReader("SUBBLOCKKEY,pred_vol\n,12.5\nSB0009,bogus\n"), fetcher.TableOptions{})
	require.NoError(t, err)

	rows, err := ParsePredictions(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].Key)
	assert.InDelta(t, 12.5, rows[0].Predicted, 1e-9)
	// Unparseable values coerce to zero rather than failing the load.
	assert.Zero(t, rows[1].Predicted)

	_, err = ParsePredictions(nil)
	require.Error(t, err)
}

func TestParseTemporalDefaults(t *testing.T) {
	tbl, err := fetcher.ReadTable(bytes.NewReader(defaultTemporal), fetcher.TableOptions{})
	require.NoError(t, err)

	rows, err := ParseTemporal(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "SB0001", rows[0].Key)
	assert.Equal(t, 1, rows[0].Day)
	assert.Equal(t, 7, rows[0].Hour)
	assert.InDelta(t, 41.5, rows[0].Value, 1e-9)
}

func TestParseTemporalDropsOutOfRange(t *testing.T) {
	in := "GEOID,day,hour,value\n" +
		"SB0001,0,7,1\n" + // day below range
		"SB0001,8,7,1\n" + // day above range
		"SB0001,1,24,1\n" + // hour above range
		",1,7,1\n" + // missing key
		"SB0001,1,7,55.5\n"

	tbl, err := fetcher.ReadTable(strings.NewReader(in), fetcher.TableOptions{})
	require.NoError(t, err)

	rows, err := ParseTemporal(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 55.5, rows[0].Value, 1e-9)
}
