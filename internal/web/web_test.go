package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	tu "github.com/desertthunder/mixtape/internal/testing"
	"golang.org/x/oauth2"
)

type mockAuth struct {
	err error
}

func (m *mockAuth) AuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + url.QueryEscape(state)
}

func (m *mockAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

type fixture struct {
	app      *App
	appCat   *tu.MockCatalog
	userCat  *tu.MockCatalog
	rankings *tu.MockRankings
	auth     *mockAuth
	store    *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		appCat:   tu.NewMockCatalog("app"),
		userCat:  tu.NewMockCatalog("user_1"),
		rankings: tu.NewMockRankings(),
		auth:     &mockAuth{},
	}

	logger := shared.NewLogger(io.Discard)
	f.store = session.NewStore(
		func(ctx context.Context) (services.Catalog, error) { return f.appCat, nil },
		func(ctx context.Context, token *oauth2.Token) services.Catalog { return f.userCat },
		session.WithMaxSessions(50),
	)
	cfg := shared.DefaultConfig()
	cfg.Rankings.Delay = time.Millisecond

	f.app = New(Options{
		Auth:      f.auth,
		Sessions:  f.store,
		Merger:    tasks.NewRankingsMerger(f.rankings, cfg.Rankings, logger),
		Generator: tasks.NewGenerator(logger),
		Defaults:  cfg.Generator,
		Logger:    logger,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

// login runs the /login → /callback flow and returns the session cookie.
func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/login", nil, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 from /login, got %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	state := loc.Query().Get("state")

	rec = f.do(t, http.MethodGet, "/callback?code=abc&state="+url.QueryEscape(state), nil, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 from /callback, got %d: %s", rec.Code, rec.Body.String())
	}
	return cookie
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("expected session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	return tu.DecodeJSON[T](t, rec.Body.Bytes())
}

type errResp struct {
	Error string `json:"error"`
}

type playlistsResp struct {
	Playlists []models.PlaylistSummary `json:"playlists"`
	Error     string                   `json:"error"`
}

func TestSessions(t *testing.T) {
	f := newFixture(t)

	t.Run("issues cookie once", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/auth/status", nil, nil)
		cookie := sessionCookie(t, rec)
		if !cookie.HttpOnly {
			t.Error("expected HttpOnly cookie")
		}

		rec = f.do(t, http.MethodGet, "/auth/status", nil, cookie)
		for _, c := range rec.Result().Cookies() {
			if c.Name == SessionCookie {
				t.Error("expected no new cookie for a known session")
			}
		}
	})

	t.Run("unknown cookie gets a fresh session", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/auth/status", nil, &http.Cookie{Name: SessionCookie, Value: "stale"})
		if c := sessionCookie(t, rec); c.Value == "stale" {
			t.Error("expected a new session id")
		}
	})
}

func TestAuthFlow(t *testing.T) {
	type status struct {
		Authenticated bool    `json:"authenticated"`
		UserID        *string `json:"user_id"`
		UserName      *string `json:"user_name"`
	}

	t.Run("status before login", func(t *testing.T) {
		f := newFixture(t)
		got := decode[status](t, f.do(t, http.MethodGet, "/auth/status", nil, nil))
		if got.Authenticated || got.UserID != nil || got.UserName != nil {
			t.Errorf("expected unauthenticated status, got %+v", got)
		}
	})

	t.Run("login and logout", func(t *testing.T) {
		f := newFixture(t)
		cookie := f.login(t)

		got := decode[status](t, f.do(t, http.MethodGet, "/auth/status", nil, cookie))
		if !got.Authenticated || got.UserID == nil || *got.UserID != "user_1" {
			t.Fatalf("expected user_1 authenticated, got %+v", got)
		}
		if *got.UserName != "User user_1" {
			t.Errorf("expected display name, got %s", *got.UserName)
		}

		rec := f.do(t, http.MethodGet, "/login", nil, cookie)
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect home when logged in, got %s", loc)
		}

		rec = f.do(t, http.MethodGet, "/logout", nil, cookie)
		if _, ok := f.store.Get(cookie.Value); ok {
			t.Error("expected logout to delete the session")
		}
		if cleared := sessionCookie(t, rec); cleared.MaxAge >= 0 || cleared.Value != "" {
			t.Errorf("expected an expired session cookie, got %+v", cleared)
		}

		got = decode[status](t, f.do(t, http.MethodGet, "/auth/status", nil, cookie))
		if got.Authenticated {
			t.Error("expected logout to drop user")
		}
	})

	t.Run("cookieless requests stay bounded", func(t *testing.T) {
		f := newFixture(t)
		for range 200 {
			f.do(t, http.MethodGet, "/auth/status", nil, nil)
		}
		if f.store.Len() != 50 {
			t.Errorf("expected 50 sessions, got %d", f.store.Len())
		}
	})

	t.Run("callback errors", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodGet, "/login", nil, nil)
		cookie := sessionCookie(t, rec)

		tests := []struct {
			name     string
			query    string
			expected int
			message  string
		}{
			{"missing code", "?state=x", http.StatusBadRequest, "No authorization code received"},
			{"wrong state", "?code=abc&state=nope", http.StatusBadRequest, "Invalid state parameter"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := f.do(t, http.MethodGet, "/callback"+tt.query, nil, cookie)
				if rec.Code != tt.expected {
					t.Errorf("expected %d, got %d", tt.expected, rec.Code)
				}
				if got := decode[errResp](t, rec); got.Error != tt.message {
					t.Errorf("expected %q, got %q", tt.message, got.Error)
				}
			})
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		f := newFixture(t)
		f.auth.err = shared.ErrAuthFailed
		rec := f.do(t, http.MethodGet, "/login", nil, nil)
		cookie := sessionCookie(t, rec)
		loc, _ := url.Parse(rec.Header().Get("Location"))

		rec = f.do(t, http.MethodGet, "/callback?code=abc&state="+url.QueryEscape(loc.Query().Get("state")), nil, cookie)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("no credentials configured", func(t *testing.T) {
		app := New(Options{Logger: shared.NewLogger(io.Discard)})
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if got := decode[errResp](t, rec); got.Error != msgCredentials {
			t.Errorf("expected %q, got %q", msgCredentials, got.Error)
		}
	})
}

func TestIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `href="/login"`) {
		t.Error("expected login link for anonymous visitor")
	}

	cookie := f.login(t)
	rec = f.do(t, http.MethodGet, "/", nil, cookie)
	if !strings.Contains(rec.Body.String(), "User user_1") {
		t.Error("expected user name once logged in")
	}
}

func TestSearch(t *testing.T) {
	t.Run("blank query", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/search", map[string]string{"query": "  "}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if got := decode[errResp](t, rec); got.Error != "Please enter a search term" {
			t.Errorf("unexpected error %q", got.Error)
		}
	})

	t.Run("without country uses catalog search", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.Searches["lofi"] = []models.PlaylistSummary{{ID: "p1", Name: "Lofi", Description: "lofi chill"}}

		rec := f.do(t, http.MethodPost, "/search", map[string]string{"query": "lofi"}, nil)
		got := decode[playlistsResp](t, rec)
		if len(got.Playlists) != 1 || got.Playlists[0].ID != "p1" {
			t.Fatalf("expected p1, got %+v", got.Playlists)
		}
		if len(got.Playlists[0].Keywords) != 2 {
			t.Errorf("expected enriched keywords, got %v", got.Playlists[0].Keywords)
		}
	})

	t.Run("country without data is empty", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/search", map[string]string{"query": "lofi", "country": "US"}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decode[playlistsResp](t, rec); got.Playlists == nil || len(got.Playlists) != 0 {
			t.Errorf("expected empty list, got %+v", got.Playlists)
		}
	})

	t.Run("country with rankings", func(t *testing.T) {
		f := newFixture(t)
		f.rankings.Data["lofi"] = models.KeywordRankings{"US": {{ID: "r1", Name: "R1", Position: 1}}}
		f.appCat.Details["r1"] = models.PlaylistSummary{ID: "r1", Name: "R1", Followers: 50}

		got := decode[playlistsResp](t, f.do(t, http.MethodPost, "/search", map[string]string{"query": "lofi", "country": "US"}, nil))
		if len(got.Playlists) != 1 || got.Playlists[0].Rank == nil || got.Playlists[0].Rank.Country != "US" {
			t.Errorf("expected ranked r1, got %+v", got.Playlists)
		}
	})

	t.Run("catalog failure is soft", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.Err = shared.ErrAPIRequest
		rec := f.do(t, http.MethodPost, "/search", map[string]string{"query": "lofi"}, nil)
		got := decode[playlistsResp](t, rec)
		if rec.Code != http.StatusOK || got.Error == "" || len(got.Playlists) != 0 {
			t.Errorf("expected soft failure, got %d %+v", rec.Code, got)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		f.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCatalogSearches(t *testing.T) {
	t.Run("suggestions", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.Searches[`"jazz"`] = []models.PlaylistSummary{{ID: "j"}}

		short := decode[playlistsResp](t, f.do(t, http.MethodPost, "/suggestions", map[string]string{"query": "j"}, nil))
		if len(short.Playlists) != 0 || len(f.appCat.Queries) != 0 {
			t.Error("expected short query to skip search")
		}

		got := decode[playlistsResp](t, f.do(t, http.MethodPost, "/suggestions", map[string]string{"query": "jazz"}, nil))
		if len(got.Playlists) != 1 {
			t.Errorf("expected 1 suggestion, got %d", len(got.Playlists))
		}
		if f.appCat.Queries[0] != `"jazz"` {
			t.Errorf("expected quoted query, got %s", f.appCat.Queries[0])
		}
	})

	t.Run("popular requires genre", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/popular", map[string]string{}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("featured fails soft", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.Err = shared.ErrAPIRequest
		rec := f.do(t, http.MethodGet, "/featured", nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"playlists":[]`) {
			t.Errorf("expected empty playlists, got %s", rec.Body.String())
		}
	})
}

func TestRankingsRoutes(t *testing.T) {
	f := newFixture(t)
	f.rankings.Data["lofi"] = models.KeywordRankings{
		"US": {{ID: "a", Name: "A", Position: 2}},
		"GB": {{ID: "b", Name: "B", Position: 1}},
	}

	t.Run("keyword", func(t *testing.T) {
		got := decode[struct {
			Rankings []models.RankedPlaylist `json:"rankings"`
		}](t, f.do(t, http.MethodGet, "/rankings/keyword/lofi", nil, nil))

		if len(got.Rankings) != 2 || got.Rankings[0].Country != "GB" {
			t.Errorf("expected GB first, got %+v", got.Rankings)
		}
	})

	t.Run("playlist", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/rankings/playlist/abc", nil, nil)
		if !strings.Contains(rec.Body.String(), `"rankings":[]`) {
			t.Errorf("expected empty rankings, got %s", rec.Body.String())
		}
	})

	t.Run("countries", func(t *testing.T) {
		got := decode[struct {
			Countries []models.Country `json:"countries"`
		}](t, f.do(t, http.MethodGet, "/rankings/countries", nil, nil))
		if len(got.Countries) != len(models.Countries) {
			t.Errorf("expected %d countries, got %d", len(models.Countries), len(got.Countries))
		}
	})

	t.Run("country falls back to search", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.Searches["lofi popular Japan"] = []models.PlaylistSummary{{ID: "jp1"}}

		got := decode[struct {
			Rankings []models.PlaylistSummary `json:"rankings"`
		}](t, f.do(t, http.MethodGet, "/rankings/country/jp", nil, nil))
		if len(got.Rankings) != 1 || got.Rankings[0].Rank.Country != "JP" {
			t.Errorf("expected jp1 ranked in JP, got %+v", got.Rankings)
		}
	})
}

func TestGenerateRoute(t *testing.T) {
	body := map[string]any{
		"playlists":           []map[string]string{{"id": "src", "name": "Source"}},
		"num_playlists":       2,
		"tracks_per_playlist": 3,
	}

	t.Run("no playlists", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/generate", map[string]any{"playlists": []any{}}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if got := decode[errResp](t, rec); got.Error != "Please select at least one playlist" {
			t.Errorf("unexpected error %q", got.Error)
		}
	})

	t.Run("requires login", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/generate", body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if got := decode[errResp](t, rec); got.Error != msgLogin {
			t.Errorf("unexpected error %q", got.Error)
		}
	})

	t.Run("empty source", func(t *testing.T) {
		f := newFixture(t)
		cookie := f.login(t)
		rec := f.do(t, http.MethodPost, "/generate", body, cookie)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if got := decode[errResp](t, rec); got.Error != msgNoTracks {
			t.Errorf("unexpected error %q", got.Error)
		}
	})

	t.Run("creates playlists", func(t *testing.T) {
		f := newFixture(t)
		f.userCat.Tracks["src"] = tu.MakeTracks("t", 5)
		cookie := f.login(t)

		rec := f.do(t, http.MethodPost, "/generate", body, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decode[struct {
			Playlists []models.GeneratedPlaylist `json:"playlists"`
		}](t, rec)

		if len(got.Playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(got.Playlists))
		}
		if got.Playlists[0].Name != "Mixed from Source #1" || got.Playlists[0].TrackCount != 3 {
			t.Errorf("unexpected playlist %+v", got.Playlists[0])
		}
		if f.userCat.Created[0].Public {
			t.Error("expected private playlists by default")
		}
	})

	t.Run("defaults apply", func(t *testing.T) {
		f := newFixture(t)
		f.userCat.Tracks["src"] = tu.MakeTracks("t", 30)
		cookie := f.login(t)

		f.do(t, http.MethodPost, "/generate", map[string]any{"playlists": []map[string]string{{"id": "src"}}}, cookie)
		if len(f.userCat.Created) != 3 {
			t.Fatalf("expected 3 playlists, got %d", len(f.userCat.Created))
		}
		if len(f.userCat.Created[0].URIs) != 20 {
			t.Errorf("expected 20 tracks, got %d", len(f.userCat.Created[0].URIs))
		}
	})
}

func TestCatalogRoutes(t *testing.T) {
	t.Run("playlist tracks", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.Tracks["p"] = tu.MakeTracks("x", 2)

		got := decode[struct {
			Tracks []models.Track `json:"tracks"`
		}](t, f.do(t, http.MethodGet, "/playlist/p/tracks", nil, nil))
		if len(got.Tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(got.Tracks))
		}
	})

	t.Run("playlist tracks not found", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.TrackErrs["p"] = errors.Join(shared.ErrPlaylistNotFound, errors.New("gone"))
		rec := f.do(t, http.MethodGet, "/playlist/p/tracks", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("recommendations", func(t *testing.T) {
		f := newFixture(t)
		f.appCat.Recommended = tu.MakeTracks("r", 3)

		rec := f.do(t, http.MethodPost, "/recommendations", map[string]any{"tracks": []string{}}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		got := decode[struct {
			Recommendations []models.Track `json:"recommendations"`
		}](t, f.do(t, http.MethodPost, "/recommendations", map[string]any{"tracks": []string{"a", "b"}}, nil))
		if len(got.Recommendations) != 3 {
			t.Errorf("expected 3 recommendations, got %d", len(got.Recommendations))
		}
		if len(f.appCat.Seeds) != 2 {
			t.Errorf("expected 2 seeds, got %v", f.appCat.Seeds)
		}
	})

	t.Run("user playlists require login", func(t *testing.T) {
		f := newFixture(t)
		if rec := f.do(t, http.MethodGet, "/user/playlists", nil, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}

		f.userCat.Library = []models.PlaylistSummary{{ID: "mine"}}
		cookie := f.login(t)
		got := decode[playlistsResp](t, f.do(t, http.MethodGet, "/user/playlists", nil, cookie))
		if len(got.Playlists) != 1 || got.Playlists[0].ID != "mine" {
			t.Errorf("expected library playlist, got %+v", got.Playlists)
		}
	})
}
