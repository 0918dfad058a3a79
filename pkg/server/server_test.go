package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/db"
	"github.com/dtnitsch/localfeed/pkg/mixer"
	"github.com/dtnitsch/localfeed/pkg/ratio"
	"github.com/dtnitsch/localfeed/pkg/remote"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type staticItems []models.ContentItem

func (s staticItems) GetItems(q db.ItemQuery) ([]models.ContentItem, error) {
	var out []models.ContentItem
	for _, it := range s {
		if !q.Since.IsZero() && it.PublishedAt.Before(q.Since) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func testPool() staticItems {
	var pool staticItems
	for i := 0; i < 10; i++ {
		pool = append(pool, models.ContentItem{
			ID:           fmt.Sprintf("r%02d", i),
			Title:        fmt.Sprintf("Region story %d", i),
			PublishedAt:  now.Add(-time.Duration(i) * time.Hour),
			LocationTags: models.LocationTags{Region: "North"},
		})
	}
	for i := 0; i < 5; i++ {
		pool = append(pool, models.ContentItem{
			ID:          fmt.Sprintf("s%02d", i),
			Title:       fmt.Sprintf("Match report %d", i),
			Category:    "sport",
			PublishedAt: now.Add(-time.Duration(i) * 90 * time.Minute),
		})
	}
	// Outside the window.
	pool = append(pool, models.ContentItem{
		ID: "old", Title: "Old story", PublishedAt: now.Add(-30 * 24 * time.Hour),
		LocationTags: models.LocationTags{Region: "North"},
	})
	return pool
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	prefs := ratio.NewService(ratio.NewMemoryStore(), nil, nil)
	s, err := New(testPool(), prefs, Config{DefaultN: 5, MaxN: 50, Window: 7 * 24 * time.Hour}, nil, mixer.WithSeed(42))
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestFeedRegionOnly(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/feed?region=North&n=5&mode=tags", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var res models.MixResult
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Items, 5)
	assert.Equal(t, "region", res.Level)
	assert.Equal(t, 5, res.Requested)
	for i, it := range res.Items {
		if it.Region != "North" {
			assert.Equal(t, "sport", it.Category, "item %d", i)
		}
		if i > 0 {
			assert.False(t, it.PublishedAt.After(res.Items[i-1].PublishedAt))
		}
		assert.NotEqual(t, "old", it.ID)
	}
}

func TestFeedDefaultsAndCap(t *testing.T) {
	_, ts := newTestServer(t)

	_, body := do(t, http.MethodGet, ts.URL+"/api/v1/feed", "")
	var res models.MixResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Len(t, res.Items, 5)
	assert.Equal(t, "none", res.Level)

	_, body = do(t, http.MethodGet, ts.URL+"/api/v1/feed?n=500", "")
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 50, res.Requested)
	assert.Len(t, res.Items, 15)
}

func TestFeedRejectsBadQuery(t *testing.T) {
	_, ts := newTestServer(t)

	for _, q := range []string{"n=abc", "n=0", "mode=fuzzy"} {
		resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/feed?"+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, string(body), "VALIDATION_ERROR", q)
	}
}

func TestFeedBlendsByUserRatio(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, http.MethodPut, ts.URL+"/api/v1/preferences/u1", `{"local":60}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := do(t, http.MethodGet, ts.URL+"/api/v1/feed?user=u1&region=North&n=10", "")
	var res models.MixResult
	require.NoError(t, json.Unmarshal(body, &res))

	assert.Len(t, res.Items, 10)
	assert.Equal(t, "sport", res.Topic)
	assert.Equal(t, 4, res.Topical)
}

func TestPreferencesLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	url := ts.URL + "/api/v1/preferences/u1"

	resp, _ := do(t, http.MethodGet, url, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := do(t, http.MethodPut, url, `{"local":70}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var prefs models.RatioPreferences
	require.NoError(t, json.Unmarshal(body, &prefs))
	assert.Equal(t, 70, prefs.Local)
	assert.Equal(t, 30, prefs.Topical)

	resp, body = do(t, http.MethodPut, url, `{"topical":130}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &prefs))
	assert.Equal(t, 0, prefs.Local)
	assert.Equal(t, 100, prefs.Topical)

	resp, body = do(t, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &prefs))
	assert.Equal(t, 100, prefs.Topical)
}

func TestPutPreferencesRejectsBadBodies(t *testing.T) {
	_, ts := newTestServer(t)
	url := ts.URL + "/api/v1/preferences/u1"

	for _, body := range []string{`{}`, `{"locale":10}`, `not json`, `{"topic":"` + strings.Repeat("x", 65) + `"}`} {
		resp, _ := do(t, http.MethodPut, url, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestTri(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodPut, ts.URL+"/api/v1/preferences/u1/tri", `{"weights":[50,30,20],"fixed":0,"value":60}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out TriResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, models.TriRatio{60, 24, 16}, out.Weights)

	resp, _ = do(t, http.MethodPut, ts.URL+"/api/v1/preferences/u1/tri", `{"weights":[50,30,20],"fixed":3,"value":60}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	do(t, http.MethodGet, ts.URL+"/api/v1/feed?region=North", "")

	_, body = do(t, http.MethodGet, ts.URL+"/metrics", "")
	assert.Contains(t, string(body), `localfeed_http_requests_total{method="GET",route="/api/v1/feed",status="200"} 1`)
	assert.Contains(t, string(body), `localfeed_feed_items_total{tier="region"}`)
}

func TestRateLimit(t *testing.T) {
	prefs := ratio.NewService(ratio.NewMemoryStore(), nil, nil)
	s, err := New(testPool(), prefs, Config{RateLimit: 2}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	codes := make([]int, 3)
	for i := range codes {
		resp, _ := do(t, http.MethodGet, ts.URL+"/api/v1/feed", "")
		codes[i] = resp.StatusCode
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRemoteClientAgainstServer(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()
	c := remote.New(ts.URL)

	_, err := c.Load(ctx, "u9")
	assert.ErrorIs(t, err, ratio.ErrNotFound)

	require.NoError(t, c.Save(ctx, models.RatioPreferences{UserID: "u9", Local: 25, Topical: 75, Topic: "weather"}))

	got, err := c.Load(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, 25, got.Local)
	assert.Equal(t, 75, got.Topical)
	assert.Equal(t, "weather", got.Topic)
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(testPool(), ratio.NewService(ratio.NewMemoryStore(), nil, nil), Config{Mode: "fuzzy"}, nil)
	assert.Error(t, err)
}
