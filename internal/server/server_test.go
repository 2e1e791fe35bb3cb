package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/selection"
	"github.com/verte-zerg/derdie/internal/stats"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	nouns := []model.Noun{
		{Word: "Sonne", Gender: model.Feminine, Usage: 50},
		{Word: "Katze", Gender: model.Feminine, Usage: 20},
		{Word: "Name", Gender: model.Masculine, Usage: 40},
		{Word: "Bote", Gender: model.Masculine, Usage: 5},
		{Word: "Zeitung", Gender: model.Feminine, Usage: 60},
		{Word: "Wohnung", Gender: model.Feminine, Usage: 30},
		{Word: "Lehrer", Gender: model.Masculine, Usage: 25},
	}
	report := stats.NewReport(nouns, nil, model.DashboardConfig{
		KeyCount:       stats.DefaultKeyCount,
		MinKeyAccuracy: stats.DefaultMinKeyAccuracy,
	})
	srv := httptest.NewServer(New(report, Config{}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthAndEndings(t *testing.T) {
	srv := newTestServer(t)

	var health map[string]interface{}
	resp := getJSON(t, srv.URL+"/healthz", &health)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", health["status"])

	var endings struct {
		Nouns   int          `json:"nouns"`
		Endings []endingJSON `json:"endings"`
	}
	resp = getJSON(t, srv.URL+"/api/endings?top=2", &endings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 7, endings.Nouns)
	require.Len(t, endings.Endings, 2)
	require.Equal(t, "e", endings.Endings[0].Ending)
	require.Equal(t, 4, endings.Endings[0].Total)
	require.Equal(t, 50, endings.Endings[0].AccuracyPct)

	resp = getJSON(t, srv.URL+"/api/endings?top=x", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExceptionsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var one exceptionsJSON
	getJSON(t, srv.URL+"/api/exceptions?ending=e", &one)
	require.Equal(t, []string{"yte", "bote", "see"}, one.Exceptions)
	require.Len(t, one.Stats, 3)
	require.Equal(t, "bote", one.Stats[0].Ending)

	var unknown exceptionsJSON
	getJSON(t, srv.URL+"/api/exceptions?ending=zzz", &unknown)
	require.Empty(t, unknown.Exceptions)
	require.Empty(t, unknown.Stats)

	var all []exceptionsJSON
	getJSON(t, srv.URL+"/api/exceptions", &all)
	require.Len(t, all, 21)
}

func TestSummaryAndKeyEndings(t *testing.T) {
	srv := newTestServer(t)

	var summary struct {
		Genders []summaryJSON `json:"genders"`
		Total   summaryJSON   `json:"total"`
	}
	getJSON(t, srv.URL+"/api/summary", &summary)
	require.Len(t, summary.Genders, 3)
	require.Equal(t, "f", summary.Genders[0].Gender)
	require.Equal(t, 1, summary.Genders[0].NumKeyEndings)
	require.Equal(t, 3, summary.Total.TotalCoverage)

	var keys []keyEndingJSON
	getJSON(t, srv.URL+"/api/key-endings?gender=der", &keys)
	require.Len(t, keys, 1)
	require.Equal(t, "er", keys[0].Ending)

	resp := getJSON(t, srv.URL+"/api/key-endings?gender=x", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectRoundTripsState(t *testing.T) {
	srv := newTestServer(t)

	post := func(body string) (*http.Response, selectResponse) {
		resp, err := http.Post(srv.URL+"/api/select", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = resp.Body.Close()
		})
		var out selectResponse
		if resp.StatusCode == http.StatusOK {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		}
		return resp, out
	}

	resp, out := post(`{"state":{},"event":{"type":"ending","label":"e"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, selection.EndingSelected, out.State.Phase)
	require.Equal(t, selection.Counts{Feminine: 2, Masculine: 2, Total: 4}, out.State.Counts)
	require.Equal(t, []selection.WordRow{{Word: "Sonne", Usage: 50}, {Word: "Katze", Usage: 20}}, out.Tables["f"])

	state, err := json.Marshal(out.State)
	require.NoError(t, err)
	_, out = post(`{"state":` + string(state) + `,"event":{"type":"exception","label":""}}`)
	require.Equal(t, selection.Unselected, out.State.Phase)
	require.Equal(t, "", out.State.TableFilter)
	require.Equal(t, selection.Counts{}, out.State.Counts)
	require.Equal(t, "e", out.State.SelectedEnding)
	require.Empty(t, out.Tables["m"])

	_, out = post(`{"state":{"phase":"ending","selected_ending":"e","exceptions":["sonne"],"table_filter":"e","counts":{"f":9,"total":9}},"event":{"type":"exception","label":"sonne"}}`)
	require.Equal(t, selection.Unselected, out.State.Phase)
	require.Equal(t, "", out.State.TableFilter)
	require.Equal(t, selection.Counts{}, out.State.Counts)
	require.NotContains(t, out.State.Exceptions, "sonne")
	require.Empty(t, out.Tables["f"])

	resp, _ = post(`{"state":{},"event":{"type":"hover"}}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChartsAndExport(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv.URL+"/charts/endings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = getJSON(t, srv.URL+"/charts/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "derdie.xlsx")
}
