package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/dishtip/internal/mockbackend"
)

// isolate keeps the developer's config files and API keys out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DISHTIP_CONFIG", "")
	for _, key := range []string{"GOOGLE_API_KEY", "VITE_GOOGLE_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(dir)
	return dir
}

func runDT(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mockURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(mockbackend.New(mockbackend.DefaultFixtures(), nil))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRootHelpListsCommands(t *testing.T) {
	isolate(t)
	out, err := runDT(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"lookup", "places", "serve-mock", "events", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestUnknownCommand(t *testing.T) {
	isolate(t)
	_, err := runDT(t, "nonexistent-command")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := runDT(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version, strings.TrimSpace(out))

	out, err = runDT(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "goVersion")
}

func TestLookupText(t *testing.T) {
	isolate(t)
	out, err := runDT(t, "lookup", "abc123", "--backend", mockURL(t), "--seed", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Top Dishes at Ramen Bar")
	assert.Contains(t, out, "https://ramenbar.example")
	assert.Contains(t, out, "1st")
	assert.Contains(t, out, "Ramen")
	assert.Contains(t, out, "google")
	assert.Contains(t, out, "Showing 1 of 1")
	assert.NotContains(t, out, "--all for more")
}

func TestLookupPaging(t *testing.T) {
	isolate(t)
	url := mockURL(t)

	out, err := runDT(t, "lookup", "twelve12", "--backend", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 5 of 12 (--all for more)")
	assert.NotContains(t, out, "6th")

	out, err = runDT(t, "lookup", "twelve12", "--backend", url, "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 12 of 12")
	assert.Contains(t, out, "12th")
}

func TestLookupJSON(t *testing.T) {
	isolate(t)
	out, err := runDT(t, "lookup", "twelve12", "--backend", mockURL(t), "--json")
	require.NoError(t, err)

	var got lookupOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "twelve12", got.PlaceID)
	assert.Equal(t, "Curry Haus", got.Name)
	assert.Equal(t, 12, got.Total)
	require.Len(t, got.Dishes, 5)

	seen := map[string]bool{}
	for i, d := range got.Dishes {
		assert.Equal(t, i+1, d.Rank)
		assert.NotEmpty(t, d.Label)
		assert.False(t, seen[d.Label], "label %q repeated within one page", d.Label)
		seen[d.Label] = true
	}
}

func TestLookupEmpty(t *testing.T) {
	isolate(t)
	out, err := runDT(t, "lookup", "empty001", "--backend", mockURL(t))
	require.NoError(t, err)
	assert.Contains(t, out, "No dish mentions found in recent reviews.")
}

func TestLookupBackendFailure(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := runDT(t, "lookup", "abc123", "--backend", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load recommendations")
}

func TestLookupRejectsBadBackend(t *testing.T) {
	isolate(t)
	_, err := runDT(t, "lookup", "abc123", "--backend", "not a url")
	assert.Error(t, err)
}

func TestPlacesNeedsAPIKey(t *testing.T) {
	isolate(t)
	_, err := runDT(t, "places", "ramen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestPlacesTable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"suggestions":[{"placePrediction":{"placeId":"abc123","structuredFormat":{"mainText":{"text":"Ramen Bar"},"secondaryText":{"text":"Kantstr. 1, Berlin"}}}}]}`))
	}))
	defer srv.Close()
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("DISHTIP_PLACES_ENDPOINT", srv.URL)

	out, err := runDT(t, "places", "ramen", "bar")
	require.NoError(t, err)
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "Ramen Bar")
	assert.Contains(t, out, "Kantstr. 1, Berlin")
}

const sampleEvents = `{"t":"2026-01-02T10:00:00Z","level":"info","kind":"session.select","comp":"session","sid":"abc-1","place_id":"abc123","msg":"Ramen Bar"}
{"t":"2026-01-02T10:00:01Z","level":"info","kind":"retrieval.complete","comp":"retrieval","sid":"abc-1","dur_ms":12.5,"count":1}
not json
{"t":"2026-01-02T10:00:02Z","level":"debug","kind":"session.stale","comp":"session","sid":"old-9"}
{"t":"2026-01-02T10:00:03Z","level":"error","kind":"retrieval.error","comp":"retrieval","sid":"xyz-2","err":"HTTP 502"}
`

func writeEvents(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "events.jsonl")
	require.NoError(t, os.WriteFile(p, []byte(sampleEvents), 0o644))
	return p
}

func TestEventsFilters(t *testing.T) {
	dir := isolate(t)
	p := writeEvents(t, dir)

	out, err := runDT(t, "events", "--file", p, "--kind", "session")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "session.select")
	assert.Contains(t, lines[0], "- Ramen Bar")
	assert.Contains(t, lines[1], "session.stale")

	out, err = runDT(t, "events", "--file", p, "--sid", "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "sid=abc-1"))
	assert.Contains(t, out, "(12.5ms)")

	out, err = runDT(t, "events", "--file", p, "--level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "err=HTTP 502")
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestEventsTailAndJSON(t *testing.T) {
	dir := isolate(t)
	p := writeEvents(t, dir)

	out, err := runDT(t, "events", "--file", p, "--tail", "1", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"2026-01-02T10:00:03Z","level":"error","kind":"retrieval.error","comp":"retrieval","sid":"xyz-2","err":"HTTP 502"}`, strings.TrimSpace(out))
}

func TestEventsMissingLog(t *testing.T) {
	isolate(t)
	_, err := runDT(t, "events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event log not found")
}
