package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyaguan/dc-dashboard/internal/dataset"
	"github.com/shuyaguan/dc-dashboard/internal/source"
)

type failFetcher struct{}

func (failFetcher) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return nil, eris.Errorf("fail: %s", ref)
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := dataset.New(source.New(failFetcher{}, source.Paths{}, 0))
	require.NoError(t, store.Load(context.Background()))

	srv := httptest.NewServer(New(store).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Status  string       `json:"status"`
		Dataset dataset.Info `json:"dataset"`
	}
	code := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 4, body.Dataset.SegmentCount)
}

func TestHealthUnloaded(t *testing.T) {
	store := dataset.New(source.New(failFetcher{}, source.Paths{}, 0))
	srv := httptest.NewServer(New(store).Handler())
	defer srv.Close()

	var body struct {
		Status string `json:"status"`
	}
	code := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "loading", body.Status)
}

func TestRoadsEndpoint(t *testing.T) {
	srv := testServer(t)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	code := getJSON(t, srv.URL+"/api/roads", &fc)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 4)

	keys := make(map[any]bool)
	for _, f := range fc.Features {
		keys[f.Properties["key"]] = true
		assert.Contains(t, []string{"LineString", "MultiLineString"}, f.Geometry.Type)
		assert.Contains(t, f.Properties, "volume_bucket")
	}
	assert.True(t, keys["SB0001"])
	assert.True(t, keys["SB0003"])
}

func TestRoadsEndpointFiltered(t *testing.T) {
	srv := testServer(t)

	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	code := getJSON(t, srv.URL+"/api/roads?neighborhood=Downtown&view=predicted", &fc)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, fc.Features, 2)

	code = getJSON(t, srv.URL+"/api/roads?volume=high,low&view=combined", &fc)
	require.Equal(t, http.StatusOK, code)
	// SB0001 observed 96 is high; the keyless segment buckets at zero.
	// SB0002 and SB0003 land in the middle buckets and drop out.
	assert.Len(t, fc.Features, 2)
}

func TestCountersEndpoint(t *testing.T) {
	srv := testServer(t)

	var fc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	code := getJSON(t, srv.URL+"/api/counters", &fc)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, fc.Features, 3)

	code = getJSON(t, srv.URL+"/api/counters?counterType=MANUAL", &fc)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "M St SE at 4th", fc.Features[0].Properties["site_name"])
}

func TestTemporalEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Key    string               `json:"key"`
		Series map[string][]float64 `json:"series"`
	}
	code := getJSON(t, srv.URL+"/api/temporal/SB0001", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SB0001", body.Key)
	require.Contains(t, body.Series, "1")
	require.Len(t, body.Series["1"], 24)
	assert.InDelta(t, 88, body.Series["1"][8], 1e-9)

	code = getJSON(t, srv.URL+"/api/temporal/SB0404", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t)

	var body map[string]any
	code := getJSON(t, srv.URL+"/api/stats", &body)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 4, body["segment_count"])
	assert.EqualValues(t, 96, body["total_observed"])
}

func TestCompareEndpoint(t *testing.T) {
	srv := testServer(t)

	var body map[string]any
	code := getJSON(t, srv.URL+"/api/compare/SB0001", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SB0001", body["key"])

	code = getJSON(t, srv.URL+"/api/compare/SB0404", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestExportEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/export.csv?neighborhood=Downtown")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "SB0001")
	assert.NotContains(t, string(body), "SB0003")
}
