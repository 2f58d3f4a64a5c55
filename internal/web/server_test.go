package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	entries    []models.GlucoseEntry
	treatments []models.Treatment
	err        error
	lastDay    string
}

func (s *stubSource) FetchDay(day string, _ *time.Location) ([]models.GlucoseEntry, []models.Treatment, error) {
	s.lastDay = day
	return s.entries, s.treatments, s.err
}

func newTestServer(t *testing.T, source DaySource) *httptest.Server {
	t.Helper()
	srv, err := NewServer(source, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_Report(t *testing.T) {
	sgv := 120
	source := &stubSource{
		entries: []models.GlucoseEntry{
			{DateStr: "2025-03-14T03:00:00Z", SGV: &sgv},
		},
		treatments: []models.Treatment{
			{CreatedAt: "2025-03-14T03:02:00Z", Notes: "300 4.5N", Carbs: "45", Insulin: "4.5"},
		},
	}
	ts := newTestServer(t, source)

	resp, err := http.Get(ts.URL + "/api/report?date=2025-03-14")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "2025-03-14", source.lastDay)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var rep models.DailyReport
	require.NoError(t, sonic.Unmarshal(body, &rep))

	assert.Equal(t, []string{"03:00"}, rep.ChartTimes)
	assert.Equal(t, []int{120}, rep.ChartBGs)
	require.Len(t, rep.TableData, 1)
	assert.Equal(t, "120", rep.TableData[0].BG)
	assert.Equal(t, 120, rep.AvgBG)
	assert.Equal(t, "10.0", rep.TCIR)
}

func TestServer_Report_DefaultsToToday(t *testing.T) {
	source := &stubSource{}
	ts := newTestServer(t, source)

	resp, err := http.Get(ts.URL + "/api/report")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), source.lastDay)
}

func TestServer_Report_UpstreamFailure(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	ts := newTestServer(t, source)

	resp, err := http.Get(ts.URL + "/api/report?date=2025-03-14")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "error")
	// No partial report on upstream failure
	assert.NotContains(t, string(body), "table_data")
}

func TestServer_Chart(t *testing.T) {
	sgv := 150
	source := &stubSource{
		entries: []models.GlucoseEntry{
			{DateStr: "2025-03-14T03:00:00Z", SGV: &sgv},
			{DateStr: "2025-03-14T03:05:00Z", SGV: &sgv},
		},
	}
	ts := newTestServer(t, source)

	resp, err := http.Get(ts.URL + "/api/chart.png?date=2025-03-14")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(body) > 8, "expected PNG payload")
	assert.Equal(t, "\x89PNG", string(body[:4]))
}

func TestServer_Index(t *testing.T) {
	ts := newTestServer(t, &stubSource{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Nightscout Daily Report")
	assert.Contains(t, string(body), time.Now().UTC().Format("2006-01-02"))
}

func TestServer_IndexNotFoundOnOtherPaths(t *testing.T) {
	ts := newTestServer(t, &stubSource{})

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Healthz(t *testing.T) {
	ts := newTestServer(t, &stubSource{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
