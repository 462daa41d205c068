package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"showcase/internal/cache"
	"showcase/internal/catalog"
	"showcase/internal/config"
	"showcase/internal/discovery"
	"showcase/internal/loader"
	"showcase/internal/newsletter"
	"showcase/internal/notify"
	"showcase/internal/session"
	"showcase/internal/timer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	server *Server
	clock  *timer.ManualClock
}

type harnessOptions struct {
	pageSize  int
	attempter loader.Attempter
	// emptyCatalog serves a store with no articles
	emptyCatalog bool
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	articles := catalog.DefaultArticles()
	if opts.emptyCatalog {
		articles = nil
	}
	store, err := catalog.New(articles)
	require.NoError(t, err)
	clock := timer.NewManualClock(time.Unix(0, 0))

	sessions := session.NewRegistry(cache.NewManager(time.Hour, 0), func(n notify.Notifier) *discovery.Engine {
		return discovery.New(store, discovery.Options{
			PageSize:  opts.pageSize,
			Clock:     clock,
			Notifier:  n,
			Attempter: opts.attempter,
		})
	})
	newsletters := cache.NewManager(time.Hour, 0)
	t.Cleanup(func() {
		sessions.Close()
		newsletters.CloseAll()
	})

	cfg := &config.Config{
		Port:          8080,
		EnableMetrics: true,
		Showcase:      config.ShowcaseConfig{PageSize: 6},
		Security:      config.SecurityConfig{EnableRequestID: true, MaxRequestSize: 1 << 20},
	}

	server := NewServer(Dependencies{
		Store:       store,
		Sessions:    sessions,
		Newsletters: newsletters,
		NewForm: func() *newsletter.Form {
			return newsletter.NewForm(newsletter.Options{Clock: clock})
		},
	}, cfg)

	return &harness{server: server, clock: clock}
}

func (h *harness) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func cardIDs(view discovery.View) []string {
	ids := make([]string, 0, len(view.Articles))
	for _, a := range view.Articles {
		ids = append(ids, a.ID)
	}
	return ids
}

func (h *harness) createSession(t *testing.T) sessionResponse {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[sessionResponse](t, w)
}

func (h *harness) view(t *testing.T, id string) discovery.View {
	t.Helper()
	w := h.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[sessionResponse](t, w).View
}

func TestServer_Health(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.createSession(t)

	w := h.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(6), body["articles"])
	assert.Equal(t, float64(1), body["sessions"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_Metrics(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.createSession(t)

	w := h.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "showcase_sessions_active")
}

func TestServer_Categories(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Categories []categoryCount `json:"categories"`
		SortModes  []string        `json:"sort_modes"`
	}](t, w)

	require.Len(t, body.Categories, 5)
	assert.Equal(t, categoryCount{Name: "All", Count: 6}, body.Categories[0])
	assert.Equal(t, categoryCount{Name: "Lifestyle", Count: 2}, body.Categories[1])
	assert.Equal(t, categoryCount{Name: "Tech", Count: 2}, body.Categories[2])
	assert.Equal(t, []string{"Newest", "Most Popular"}, body.SortModes)
}

func TestServer_GetArticles(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	tests := []struct {
		name     string
		query    url.Values
		expected []string
		hasMore  bool
	}{
		{"default newest", nil, []string{"1", "2", "3", "4", "5", "6"}, false},
		{"category", url.Values{"category": {"tech"}}, []string{"2", "6"}, false},
		{"search", url.Values{"q": {"  minimalist "}}, []string{"1"}, false},
		{"most popular", url.Values{"sort": {"most popular"}}, []string{"3", "2", "5", "1", "6", "4"}, false},
		{"paged", url.Values{"page_size": {"4"}}, []string{"1", "2", "3", "4"}, true},
		{"second page is cumulative", url.Values{"page_size": {"4"}, "page": {"2"}}, []string{"1", "2", "3", "4", "5", "6"}, false},
		{"odata filter", url.Values{"$filter": {"publish_date ge '2024-01-10'"}}, []string{"1", "2", "3"}, false},
		{"filter after category", url.Values{"category": {"Lifestyle"}, "$filter": {"contains(title, 'fashion')"}}, []string{"5"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodGet, "/api/v1/articles?"+tt.query.Encode(), nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			page := decode[ArticlePage](t, w)
			ids := make([]string, 0, len(page.Articles))
			for _, a := range page.Articles {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.expected, ids)
			assert.Equal(t, tt.hasMore, page.HasMore)
			assert.Empty(t, page.EmptyHint)
		})
	}
}

func TestServer_GetArticlesEmptyCatalogHint(t *testing.T) {
	h := newHarness(t, harnessOptions{emptyCatalog: true})

	tests := []struct {
		name  string
		query string
		hint  string
	}{
		{"no query", "", "Check back soon for new content"},
		{"blank search", "?q=%20%20", "Check back soon for new content"},
		{"search", "?q=design", "Try adjusting your search or filters"},
		{"category", "?category=Tech", "Try adjusting your search or filters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodGet, "/api/v1/articles"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			page := decode[ArticlePage](t, w)
			assert.Empty(t, page.Articles)
			assert.Equal(t, tt.hint, page.EmptyHint)
		})
	}
}

func TestServer_GetArticlesEmptyAndErrors(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.do(t, http.MethodGet, "/api/v1/articles?q=zzz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[ArticlePage](t, w)
	assert.Empty(t, page.Articles)
	assert.Equal(t, "Try adjusting your search or filters", page.EmptyHint)

	for _, target := range []string{
		"/api/v1/articles?category=Sports",
		"/api/v1/articles?sort=oldest",
		"/api/v1/articles?page=abc",
		"/api/v1/articles?page_size=500",
		"/api/v1/articles?" + url.Values{"$filter": {"link eq 'x'"}}.Encode(),
	} {
		t.Run(target, func(t *testing.T) {
			w := h.do(t, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestServer_SessionLifecycle(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	created := h.createSession(t)
	assert.Equal(t, loader.StateLoading, created.View.State)
	assert.Equal(t, 6, created.View.Placeholders)
	assert.Empty(t, created.View.Articles)

	h.clock.Advance(1200 * time.Millisecond)
	view := h.view(t, created.ID)
	assert.Equal(t, loader.StateReady, view.State)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, cardIDs(view))

	w := h.do(t, http.MethodPut, "/api/v1/sessions/"+created.ID+"/category", categoryRequest{Category: "Tech"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"2", "6"}, cardIDs(decode[discovery.View](t, w)))

	w = h.do(t, http.MethodPut, "/api/v1/sessions/"+created.ID+"/search", searchRequest{Query: "remote"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[discovery.View](t, w)
	assert.True(t, view.SearchPending)
	assert.Equal(t, []string{"2", "6"}, cardIDs(view), "search waits for the debounce")

	h.clock.Advance(300 * time.Millisecond)
	view = h.view(t, created.ID)
	assert.False(t, view.SearchPending)
	assert.Equal(t, []string{"6"}, cardIDs(view))

	w = h.do(t, http.MethodPut, "/api/v1/sessions/"+created.ID+"/search", searchRequest{Query: "nothing matches", Commit: true})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[discovery.View](t, w)
	assert.True(t, view.Empty)
	assert.Equal(t, "Try adjusting your search or filters", view.EmptyHint)

	w = h.do(t, http.MethodPost, "/api/v1/sessions/"+created.ID+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[discovery.View](t, w).Articles, 6)

	w = h.do(t, http.MethodPut, "/api/v1/sessions/"+created.ID+"/sort", sortRequest{Sort: "Most Popular"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"3", "2", "5", "1", "6", "4"}, cardIDs(decode[discovery.View](t, w)))

	w = h.do(t, http.MethodDelete, "/api/v1/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_InvalidSessionRequests(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	created := h.createSession(t)

	w := h.do(t, http.MethodGet, "/api/v1/sessions/7c1c9a4e-3c55-4a4c-9f56-1f5d1c0f2a11", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, "/api/v1/sessions/"+created.ID+"/category", categoryRequest{Category: "Sports"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, "/api/v1/sessions/"+created.ID+"/sort", sortRequest{Sort: "oldest"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+created.ID+"/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_LoadMore(t *testing.T) {
	h := newHarness(t, harnessOptions{pageSize: 4})
	created := h.createSession(t)

	w := h.do(t, http.MethodPost, "/api/v1/sessions/"+created.ID+"/more", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "not loaded yet")

	h.clock.Advance(1200 * time.Millisecond)
	view := h.view(t, created.ID)
	assert.Len(t, view.Articles, 4)
	assert.True(t, view.HasMore)

	w = h.do(t, http.MethodPost, "/api/v1/sessions/"+created.ID+"/more", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[discovery.View](t, w)
	assert.Len(t, view.Articles, 6)
	assert.False(t, view.HasMore)
	assert.Equal(t, 2, view.Query.Page)

	w = h.do(t, http.MethodPost, "/api/v1/sessions/"+created.ID+"/more", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[discovery.View](t, w).Query.Page, "nothing more to reveal")
}

func TestServer_BookmarksAndPreview(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	created := h.createSession(t)
	base := "/api/v1/sessions/" + created.ID

	w := h.do(t, http.MethodPost, base+"/bookmarks/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	h.clock.Advance(1200 * time.Millisecond)

	w = h.do(t, http.MethodPost, base+"/bookmarks/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, w)["bookmarked"])

	w = h.do(t, http.MethodGet, base+"/articles/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[map[string]interface{}](t, w)
	assert.Equal(t, "The Art of Minimalist Living in Modern Spaces", detail["title"])
	assert.Equal(t, true, detail["bookmarked"])
	assert.Equal(t, "January 15, 2024", detail["display_date"])

	w = h.do(t, http.MethodPost, base+"/bookmarks/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]interface{}](t, w)["bookmarked"])

	w = h.do(t, http.MethodPost, base+"/bookmarks/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = h.do(t, http.MethodGet, base+"/articles/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, base+"/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Notifications []notify.Notification `json:"notifications"`
	}](t, w)
	require.Len(t, body.Notifications, 2)
	assert.Equal(t, "Added to bookmarks", body.Notifications[0].Message)
	assert.Equal(t, "Removed from bookmarks", body.Notifications[1].Message)

	w = h.do(t, http.MethodGet, base+"/notifications", nil)
	assert.Equal(t, float64(0), decode[map[string]interface{}](t, w)["count"], "drained")
}

func TestServer_Retry(t *testing.T) {
	h := newHarness(t, harnessOptions{attempter: loader.NewSequence(loader.ErrSimulatedFailure, nil)})
	created := h.createSession(t)
	base := "/api/v1/sessions/" + created.ID

	w := h.do(t, http.MethodPost, base+"/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, loader.StateLoading, decode[discovery.View](t, w).State, "retry is a no-op while loading")

	h.clock.Advance(1200 * time.Millisecond)
	view := h.view(t, created.ID)
	assert.Equal(t, loader.StateError, view.State)
	assert.Equal(t, "We couldn't load the articles. Please try again.", view.Error)

	w = h.do(t, http.MethodPost, base+"/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, loader.StateLoading, decode[discovery.View](t, w).State)

	h.clock.Advance(800 * time.Millisecond)
	assert.Equal(t, loader.StateReady, h.view(t, created.ID).State)
}

func TestServer_Newsletter(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.do(t, http.MethodPost, "/api/v1/newsletter", subscribeRequest{Email: ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	invalid := decode[subscriptionResponse](t, w)
	assert.Equal(t, newsletter.StateError, invalid.State)
	assert.Equal(t, "Email address is required", invalid.Error)

	w = h.do(t, http.MethodPost, "/api/v1/newsletter", subscribeRequest{Email: "reader@example"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a valid email address", decode[subscriptionResponse](t, w).Error)

	w = h.do(t, http.MethodPost, "/api/v1/newsletter", subscribeRequest{Email: "reader@example.com"})
	require.Equal(t, http.StatusAccepted, w.Code)
	accepted := decode[subscriptionResponse](t, w)
	require.NotEmpty(t, accepted.ID)
	assert.Equal(t, newsletter.StateValidating, accepted.State)

	h.clock.Advance(time.Second)

	w = h.do(t, http.MethodGet, "/api/v1/newsletter/"+accepted.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	done := decode[subscriptionResponse](t, w)
	assert.Equal(t, newsletter.StateSuccess, done.State)
	assert.Empty(t, done.Email)

	w = h.do(t, http.MethodGet, "/api/v1/newsletter/7c1c9a4e-3c55-4a4c-9f56-1f5d1c0f2a11", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_SwaggerDisabled(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.do(t, http.MethodGet, "/swagger/index.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
