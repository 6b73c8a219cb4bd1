package mockbackend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/dishtip/internal/backend"
	"github.com/abelbrown/dishtip/internal/model"
)

func startServer(t *testing.T) (*Server, *backend.Client) {
	t.Helper()
	s := New(DefaultFixtures(), nil)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	c, err := backend.New(backend.Options{BaseURL: srv.URL, BreakerFailures: 100})
	require.NoError(t, err)
	return s, c
}

func TestDefaultFixtures(t *testing.T) {
	fx := DefaultFixtures()
	require.Contains(t, fx, "abc123")
	assert.Len(t, fx["abc123"].Recommendations, 1)
	assert.Empty(t, fx["empty001"].Recommendations)
	assert.Len(t, fx["twelve12"].Recommendations, 12)
}

func TestRamenFixtureThroughClient(t *testing.T) {
	s, c := startServer(t)
	ctx := context.Background()

	dishes, err := c.Recommendations(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Ramen", dishes[0].Name)
	assert.Equal(t, "A", dishes[0].Author)
	assert.Equal(t, "google", dishes[0].Source)
	require.NotNil(t, dishes[0].Timestamp)
	assert.Equal(t, float64(1700000000), *dishes[0].Timestamp)

	info, err := c.RestaurantInfo(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Ramen Bar", info.Name)
	assert.Equal(t, "https://ramenbar.example", info.WebsiteURL, "homepage_url maps to website")
	assert.Equal(t, "https://maps.google.com/?cid=1", info.MapsURL, "google_url maps to maps")

	assert.Equal(t, 1, s.Hits("recommendations", "abc123"))
	assert.Equal(t, 1, s.Hits("restaurant_info", "abc123"))
}

func TestUnknownPlace(t *testing.T) {
	_, c := startServer(t)

	dishes, err := c.Recommendations(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, dishes)

	info, err := c.RestaurantInfo(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestRecommendationsSortedByRanking(t *testing.T) {
	_, c := startServer(t)

	dishes, err := c.Recommendations(context.Background(), "twelve12")
	require.NoError(t, err)
	require.Len(t, dishes, 12)
	assert.Equal(t, "currywurst", dishes[0].Name)
	assert.Equal(t, "spezi", dishes[11].Name, "null ranking sorts last")
	for i := 1; i < 11; i++ {
		require.NotNil(t, dishes[i].Ranking)
		assert.GreaterOrEqual(t, *dishes[i-1].Ranking, *dishes[i].Ranking)
	}
}

func TestSortByRanking(t *testing.T) {
	raw := func(s string) json.RawMessage { return json.RawMessage(s) }
	in := []model.RecommendationDTO{
		{DishName: "none"},
		{DishName: "low", Ranking: raw(`1`)},
		{DishName: "string", Ranking: raw(`"5"`)},
		{DishName: "null", Ranking: raw(`null`)},
		{DishName: "high", Ranking: raw(`9.5`)},
		{DishName: "low2", Ranking: raw(`1`)},
	}
	out := SortByRanking(in)

	names := make([]string, len(out))
	for i, r := range out {
		names[i] = r.DishName
	}
	assert.Equal(t, []string{"high", "string", "low", "low2", "none", "null"}, names)
	assert.Equal(t, "none", in[0].DishName, "input untouched")
}

func TestFaults(t *testing.T) {
	s, c := startServer(t)
	ctx := context.Background()

	s.SetFault("abc123", Fault{Status: http.StatusBadGateway})
	_, err := c.Recommendations(ctx, "abc123")
	var se *backend.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)

	s.SetFault("abc123", Fault{Malformed: true})
	_, err = c.Recommendations(ctx, "abc123")
	assert.ErrorIs(t, err, backend.ErrDecode)

	s.SetFault("abc123", Fault{Status: http.StatusInternalServerError, InfoOnly: true})
	_, err = c.RestaurantInfo(ctx, "abc123")
	assert.Error(t, err)
	dishes, err := c.Recommendations(ctx, "abc123")
	require.NoError(t, err, "info-only fault must not affect recommendations")
	assert.Len(t, dishes, 1)

	s.SetFault("abc123", Fault{})
	_, err = c.RestaurantInfo(ctx, "abc123")
	assert.NoError(t, err)
}

func TestDelayFaultHonoursCancellation(t *testing.T) {
	s, c := startServer(t)
	s.SetFault("abc123", Fault{Delay: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Recommendations(ctx, "abc123")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEscapedPlaceID(t *testing.T) {
	s, c := startServer(t)
	s.SetFixture("a/b c", Fixture{Recommendations: []model.RecommendationDTO{{DishName: "Pho"}}})

	dishes, err := c.Recommendations(context.Background(), "a/b c")
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Pho", dishes[0].Name)
}

func TestHealthAndPlaceIDs(t *testing.T) {
	s := New(DefaultFixtures(), nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")

	assert.Equal(t, []string{"abc123", "empty001", "twelve12"}, s.PlaceIDs())
}

func TestLoadFixturesRejectsGarbage(t *testing.T) {
	_, err := LoadFixtures(strings.NewReader("not json"))
	assert.Error(t, err)
}
