package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	tu "github.com/desertthunder/mixtape/internal/testing"
)

type testRunner struct {
	*Runner
	catalog  *tu.MockCatalog
	rankings *tu.MockRankings
	out      *bytes.Buffer
}

func newTestRunner(t *testing.T, withToken bool) *testRunner {
	t.Helper()

	config := shared.DefaultConfig()
	config.Rankings.Delay = time.Millisecond
	if withToken {
		config.Credentials.Spotify.AccessToken = "stored_access"
		config.Credentials.Spotify.RefreshToken = "stored_refresh"
	}

	catalog := tu.NewMockCatalog("user_1")
	rankings := tu.NewMockRankings()
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Auth:     &mockAuth{catalog: catalog},
		Rankings: rankings,
		Logger:   shared.NewLogger(io.Discard),
		Output:   out,
	})
	return &testRunner{Runner: runner, catalog: catalog, rankings: rankings, out: out}
}

func (tr *testRunner) run(args ...string) error {
	return newApp(tr.Runner).Run(context.Background(), append([]string{"mixtape"}, args...))
}

func TestSearchCommand(t *testing.T) {
	t.Run("joins the query and prints JSON", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.catalog.Searches["lofi beats"] = []models.PlaylistSummary{{ID: "s1", Name: "Lofi Beats"}}
		tr.catalog.Details["s1"] = models.PlaylistSummary{ID: "s1", Name: "Lofi Beats", Followers: 40}

		if err := tr.run("search", "--json", "lofi", "beats"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		results := tu.DecodeJSON[[]models.PlaylistSummary](t, tr.out.Bytes())
		if len(results) != 1 || results[0].Followers != 40 {
			t.Errorf("expected detailed result, got %+v", results)
		}
		if len(tr.catalog.Queries) != 1 || tr.catalog.Queries[0] != "lofi beats" {
			t.Errorf("expected one joined query, got %v", tr.catalog.Queries)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		tr := newTestRunner(t, false)

		err := tr.run("search", "  ")
		tu.AssertErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("without credentials", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.auth = nil
		tr.rebuild()

		err := tr.run("search", "lofi")
		tu.AssertErrorIs(t, err, shared.ErrMissingCredentials)
	})

	t.Run("catalog failure", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.catalog.Err = errors.New("boom")

		err := tr.run("search", "lofi")
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestPlaylistsCommand(t *testing.T) {
	t.Run("with stored token", func(t *testing.T) {
		tr := newTestRunner(t, true)
		tr.catalog.Library = []models.PlaylistSummary{
			{ID: "a", Name: "Alpha", Owner: "me", TrackCount: 3},
			{ID: "b", Name: "Beta", Owner: "me", TrackCount: 4},
		}

		if err := tr.run("playlists"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := tr.out.String()
		for _, want := range []string{"Your playlists", "1. Alpha by me (3 tracks", "2. Beta by me (4 tracks"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output, got:\n%s", want, output)
			}
		}
	})

	t.Run("without stored token", func(t *testing.T) {
		tr := newTestRunner(t, false)

		err := tr.run("playlists")
		tu.AssertErrorIs(t, err, shared.ErrAuthRequired)
	})
}

func TestTracksCommand(t *testing.T) {
	tr := newTestRunner(t, false)
	tr.catalog.Tracks["p1"] = tu.MakeTracks("p", 2)
	tr.catalog.Details["p1"] = models.PlaylistSummary{ID: "p1", Name: "Road Trip"}

	if err := tr.run("tracks", "--format", "csv", "https://open.spotify.com/playlist/p1?si=abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := tr.out.String()
	if !strings.HasPrefix(output, "ID,Title,Artist,Album,Duration,URI") {
		t.Errorf("expected CSV headers, got:\n%s", output)
	}
	if !strings.Contains(output, "p0,Track p0,Artist p,Album p,3:00,spotify:track:p0") {
		t.Errorf("expected track row, got:\n%s", output)
	}

	t.Run("writes to a file", func(t *testing.T) {
		tr.out.Reset()
		path := filepath.Join(t.TempDir(), "tracks")

		if err := tr.run("tracks", "-f", "markdown", "-o", path, "p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, path+".md")
		if content := tu.MustReadFile(t, path+".md"); !strings.HasPrefix(content, "# Road Trip") {
			t.Errorf("expected markdown title, got:\n%s", content)
		}
		if !strings.Contains(tr.out.String(), "Saved to") {
			t.Errorf("expected saved message, got %q", tr.out.String())
		}
	})

	t.Run("missing id", func(t *testing.T) {
		tu.AssertErrorIs(t, tr.run("tracks"), shared.ErrMissingArgument)
	})

	t.Run("unknown format", func(t *testing.T) {
		tu.AssertErrorIs(t, tr.run("tracks", "-f", "xml", "p1"), shared.ErrInvalidArgument)
	})
}

func TestRecommendCommand(t *testing.T) {
	tr := newTestRunner(t, false)
	tr.catalog.Recommended = tu.MakeTracks("r", 5)

	if err := tr.run("recommend", "--json", "--limit", "3", "t1", "t2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tracks := tu.DecodeJSON[[]models.Track](t, tr.out.Bytes())
	if len(tracks) != 3 {
		t.Errorf("expected 3 tracks, got %d", len(tracks))
	}
	if len(tr.catalog.Seeds) != 2 || tr.catalog.Seeds[0] != "t1" {
		t.Errorf("expected seeds [t1 t2], got %v", tr.catalog.Seeds)
	}

	t.Run("without seeds", func(t *testing.T) {
		tu.AssertErrorIs(t, tr.run("recommend"), shared.ErrMissingArgument)
	})
}

func TestRankingsCommands(t *testing.T) {
	t.Run("countries", func(t *testing.T) {
		tr := newTestRunner(t, false)

		if err := tr.run("rankings", "countries", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		countries := tu.DecodeJSON[[]models.Country](t, tr.out.Bytes())
		if len(countries) != len(models.Countries) {
			t.Errorf("expected %d countries, got %d", len(models.Countries), len(countries))
		}
	})

	t.Run("countries as text", func(t *testing.T) {
		tr := newTestRunner(t, false)

		if err := tr.run("rankings", "countries"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tr.out.String(), "US  United States") {
			t.Errorf("expected US line, got:\n%s", tr.out.String())
		}
	})

	t.Run("keyword", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.rankings.Data["lofi"] = models.KeywordRankings{
			"US": {{ID: "p1", Name: "Lofi US", Position: 1}},
			"DE": {{ID: "p2", Name: "Lofi DE", Position: 2}},
		}

		if err := tr.run("rankings", "keyword", "--json", "lofi"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ranked := tu.DecodeJSON[[]models.RankedPlaylist](t, tr.out.Bytes())
		if len(ranked) != 2 {
			t.Fatalf("expected 2 ranked playlists, got %d", len(ranked))
		}
		if ranked[0].Country != "DE" || ranked[1].Country != "US" {
			t.Errorf("expected countries in sorted order, got %s, %s", ranked[0].Country, ranked[1].Country)
		}
	})

	t.Run("keyword with failing provider", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.rankings.Errs["lofi"] = shared.ErrRateLimited

		if err := tr.run("rankings", "keyword", "--json", "lofi"); err != nil {
			t.Fatalf("expected partial results without error, got %v", err)
		}
		if got := strings.TrimSpace(tr.out.String()); got != "[]" {
			t.Errorf("expected empty list, got %s", got)
		}
	})

	t.Run("playlist", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.rankings.Playlist = json.RawMessage(`[{"keyword":"lofi","position":3}]`)

		if err := tr.run("rankings", "playlist", "spotify:playlist:p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(tr.out.String()); got != `[{"keyword":"lofi","position":3}]` {
			t.Errorf("expected raw rankings, got %s", got)
		}
		if tr.rankings.Calls[0] != "playlist:p1" {
			t.Errorf("expected lookup for p1, got %v", tr.rankings.Calls)
		}
	})

	t.Run("country falls back to search", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.catalog.Searches["deep house popular United States"] = []models.PlaylistSummary{{ID: "c1", Name: "House US"}}

		if err := tr.run("rankings", "country", "--json", "us"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		playlists := tu.DecodeJSON[[]models.PlaylistSummary](t, tr.out.Bytes())
		if len(playlists) != 1 || playlists[0].ID != "c1" {
			t.Fatalf("expected fallback playlist c1, got %+v", playlists)
		}
		if playlists[0].Rank == nil || playlists[0].Rank.Country != "US" {
			t.Errorf("expected US rank annotation, got %+v", playlists[0].Rank)
		}
	})
}

func TestGenerateCommand(t *testing.T) {
	t.Run("creates playlists from flags", func(t *testing.T) {
		tr := newTestRunner(t, true)
		tr.catalog.Tracks["a"] = tu.MakeTracks("a", 3)
		tr.catalog.Tracks["b"] = tu.MakeTracks("b", 4)
		tr.catalog.Details["a"] = models.PlaylistSummary{ID: "a", Name: "Alpha"}

		err := tr.run("generate", "--json", "-p", "a", "-p", "spotify:playlist:b", "--count", "2", "--tracks", "3", "--name", "First")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		created := tu.DecodeJSON[[]models.GeneratedPlaylist](t, tr.out.Bytes())
		if len(created) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(created))
		}
		if len(tr.catalog.Created) != 2 {
			t.Fatalf("expected 2 create calls, got %d", len(tr.catalog.Created))
		}
		if tr.catalog.Created[0].Name != "First" {
			t.Errorf("expected explicit first name, got %q", tr.catalog.Created[0].Name)
		}
		if tr.catalog.Created[1].Name != "Alpha + b Mix #2" {
			t.Errorf("expected generated second name, got %q", tr.catalog.Created[1].Name)
		}
		for _, c := range tr.catalog.Created {
			if len(c.URIs) != 3 {
				t.Errorf("expected 3 tracks in %s, got %d", c.Name, len(c.URIs))
			}
			if c.Public {
				t.Errorf("expected %s to be private", c.Name)
			}
		}
	})

	t.Run("text summary", func(t *testing.T) {
		tr := newTestRunner(t, true)
		tr.catalog.Tracks["a"] = tu.MakeTracks("a", 5)

		if err := tr.run("mix", "-p", "a", "-n", "1", "-t", "2", "--public"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := tr.out.String()
		if !strings.Contains(output, "Generated playlists") || !strings.Contains(output, "5 tracks") {
			t.Errorf("unexpected summary:\n%s", output)
		}
		if !tr.catalog.Created[0].Public {
			t.Error("expected public playlist")
		}
	})

	t.Run("without playlists outside a terminal", func(t *testing.T) {
		tr := newTestRunner(t, true)

		err := tr.run("generate")
		tu.AssertErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("without login", func(t *testing.T) {
		tr := newTestRunner(t, false)

		err := tr.run("generate", "-p", "a")
		tu.AssertErrorIs(t, err, shared.ErrAuthRequired)
	})

	t.Run("all sources empty", func(t *testing.T) {
		tr := newTestRunner(t, true)

		err := tr.run("generate", "-p", "a")
		tu.AssertErrorIs(t, err, shared.ErrEmptySource)
		if len(tr.catalog.Created) != 0 {
			t.Errorf("expected no playlists created, got %d", len(tr.catalog.Created))
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status when logged in", func(t *testing.T) {
		tr := newTestRunner(t, true)

		if err := tr.run("auth", "status", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		status := tu.DecodeJSON[map[string]any](t, tr.out.Bytes())
		if status["authenticated"] != true || status["user_id"] != "user_1" {
			t.Errorf("expected authenticated user_1, got %v", status)
		}
		if status["credentials"] != true || status["rankings"] != true {
			t.Errorf("expected credentials and rankings, got %v", status)
		}
	})

	t.Run("status when logged out", func(t *testing.T) {
		tr := newTestRunner(t, false)

		if err := tr.run("auth", "status", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		status := tu.DecodeJSON[map[string]any](t, tr.out.Bytes())
		if status["authenticated"] != false || status["user_id"] != nil {
			t.Errorf("expected unauthenticated status, got %v", status)
		}
	})

	t.Run("status as text", func(t *testing.T) {
		tr := newTestRunner(t, true)

		if err := tr.run("auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tr.out.String(), "Logged in:           ✓ User user_1 (user_1)") {
			t.Errorf("unexpected status:\n%s", tr.out.String())
		}
	})

	t.Run("logout clears the stored token", func(t *testing.T) {
		tr := newTestRunner(t, true)
		tr.configPath = filepath.Join(t.TempDir(), "config.toml")

		if err := tr.run("auth", "logout"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saved, err := shared.LoadConfig(tr.configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if saved.Credentials.Spotify.Token() != nil {
			t.Error("expected stored token to be cleared")
		}
		if !strings.Contains(tr.out.String(), "Logged out") {
			t.Errorf("expected logout message, got %q", tr.out.String())
		}
	})

	t.Run("login without credentials", func(t *testing.T) {
		tr := newTestRunner(t, false)
		tr.auth = nil
		tr.rebuild()

		tu.AssertErrorIs(t, tr.run("auth", "login", "--no-browser"), shared.ErrMissingCredentials)
	})
}

func TestSetupCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	tr := newTestRunner(t, false)

	if err := tr.run("--config", path, "setup"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tu.AssertFileExists(t, path)
	if !strings.Contains(tr.out.String(), "Config written to "+path) {
		t.Errorf("expected confirmation, got:\n%s", tr.out.String())
	}

	t.Run("refuses to overwrite", func(t *testing.T) {
		err := tr.run("--config", path, "setup")
		if err == nil || !strings.Contains(err.Error(), "--force") {
			t.Errorf("expected overwrite hint, got %v", err)
		}
	})

	t.Run("force overwrites", func(t *testing.T) {
		if err := tr.run("--config", path, "setup", "--force"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("expected a valid config, got %v", err)
		}
	})
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"37i9dQZF1DX0XUsuxWHRQd", "37i9dQZF1DX0XUsuxWHRQd"},
		{"  abc  ", "abc"},
		{"spotify:playlist:abc", "abc"},
		{"https://open.spotify.com/playlist/abc", "abc"},
		{"https://open.spotify.com/playlist/abc?si=123", "abc"},
		{"https://open.spotify.com/user/me/playlist/abc", "abc"},
		{"https://example.com/other", "https://example.com/other"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := playlistID(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCallbackAddr(t *testing.T) {
	tests := []struct {
		name         string
		redirect     string
		expectedAddr string
		expectedPath string
	}{
		{"redirect with port", "http://127.0.0.1:8888/callback", "127.0.0.1:8888", "/callback"},
		{"custom path", "http://localhost:9000/auth/done", "localhost:9000", "/auth/done"},
		{"no port uses server", "https://example.com/callback", "127.0.0.1:5000", "/callback"},
		{"no path", "http://127.0.0.1:8888", "127.0.0.1:8888", "/callback"},
		{"empty uses server", "", "127.0.0.1:5000", "/callback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Server = shared.ServerConfig{Host: "127.0.0.1", Port: 5000}
			config.Credentials.Spotify.RedirectURI = tt.redirect
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

			addr, path := runner.callbackAddr()
			if addr != tt.expectedAddr {
				t.Errorf("expected addr %q, got %q", tt.expectedAddr, addr)
			}
			if path != tt.expectedPath {
				t.Errorf("expected path %q, got %q", tt.expectedPath, path)
			}
		})
	}
}
