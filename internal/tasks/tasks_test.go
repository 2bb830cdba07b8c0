package tasks

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/shared"
	tu "github.com/desertthunder/mixtape/internal/testing"
	"golang.org/x/oauth2"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

// userSession returns a session already upgraded to UserScoped on catalog.
func userSession(t *testing.T, catalog *tu.MockCatalog) *session.Session {
	t.Helper()
	s := session.New("test", nil, func(ctx context.Context, token *oauth2.Token) services.Catalog {
		return catalog
	})
	if _, err := s.Authorize(context.Background(), &oauth2.Token{AccessToken: "token"}); err != nil {
		t.Fatalf("failed to authorize session: %v", err)
	}
	return s
}

func testGenerator() *Generator {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	return NewGenerator(quietLogger(),
		WithAssembler(NewAssemblerAt(func() time.Time { return fixed })),
		WithPoolFactory(func() *TrackPool { return NewSeededTrackPool(11) }),
	)
}

// overlappingCatalog has sources "a" (5 tracks) and "b" (7 tracks) sharing two IDs.
func overlappingCatalog() *tu.MockCatalog {
	catalog := tu.NewMockCatalog("user_1")
	a := tu.MakeTracks("t", 5)
	b := append(tu.MakeTracks("u", 5), a[0], a[1])
	catalog.Tracks["a"] = a
	catalog.Tracks["b"] = b
	return catalog
}

func drain(progress chan ProgressUpdate) []ProgressUpdate {
	close(progress)
	var updates []ProgressUpdate
	for u := range progress {
		updates = append(updates, u)
	}
	return updates
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	sources := []models.PlaylistRef{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}}

	t.Run("deduplicated pool with multiple outputs", func(t *testing.T) {
		catalog := overlappingCatalog()
		gen := testGenerator()

		result, err := gen.Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      2,
			TracksPerPlaylist: 6,
			AvoidDuplicates:   true,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PoolSize != 10 {
			t.Errorf("expected pool size 10, got %d", result.PoolSize)
		}
		if len(result.Playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(result.Playlists))
		}
		if len(catalog.Created) != 2 {
			t.Fatalf("expected 2 create calls, got %d", len(catalog.Created))
		}

		expectedNames := []string{"Alpha + Beta Mix #1", "Alpha + Beta Mix #2"}
		for i, created := range catalog.Created {
			if created.Name != expectedNames[i] {
				t.Errorf("expected name %q, got %q", expectedNames[i], created.Name)
			}
			if created.OwnerID != "user_1" {
				t.Errorf("expected owner user_1, got %s", created.OwnerID)
			}
			if created.Public {
				t.Error("expected private playlist")
			}
			if created.Description != "Auto-generated mix created on 2024-01-02 03:04:05" {
				t.Errorf("unexpected description %q", created.Description)
			}
			if len(created.URIs) != 6 {
				t.Errorf("expected 6 tracks, got %d", len(created.URIs))
			}

			seen := map[string]bool{}
			for _, uri := range created.URIs {
				if seen[uri] {
					t.Errorf("expected no duplicate within playlist, got %s twice", uri)
				}
				seen[uri] = true
			}
			if result.Playlists[i].TrackCount != 6 {
				t.Errorf("expected track count 6, got %d", result.Playlists[i].TrackCount)
			}
		}
	})

	t.Run("without dedup pool keeps repeats", func(t *testing.T) {
		catalog := overlappingCatalog()

		result, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      1,
			TracksPerPlaylist: 50,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PoolSize != 12 {
			t.Errorf("expected pool size 12, got %d", result.PoolSize)
		}
		if result.Playlists[0].TrackCount != 12 {
			t.Errorf("expected track count clamped to 12, got %d", result.Playlists[0].TrackCount)
		}
		if result.Playlists[0].Name != "Alpha + Beta Mix" {
			t.Errorf("expected unsuffixed name, got %q", result.Playlists[0].Name)
		}
	})

	t.Run("explicit names and description", func(t *testing.T) {
		catalog := overlappingCatalog()

		_, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      2,
			TracksPerPlaylist: 3,
			Names:             []string{"Morning"},
			Description:       "for the commute",
			Public:            true,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if catalog.Created[0].Name != "Morning" {
			t.Errorf("expected explicit name, got %q", catalog.Created[0].Name)
		}
		if catalog.Created[1].Name != "Alpha + Beta Mix #2" {
			t.Errorf("expected generated name, got %q", catalog.Created[1].Name)
		}
		for _, c := range catalog.Created {
			if c.Description != "for the commute" {
				t.Errorf("expected explicit description, got %q", c.Description)
			}
			if !c.Public {
				t.Error("expected public playlist")
			}
		}
	})

	t.Run("requires user session", func(t *testing.T) {
		catalog := overlappingCatalog()
		app := tu.NewMockCatalog("app")
		s := session.New("anon", func(ctx context.Context) (services.Catalog, error) { return app, nil }, nil)

		_, err := testGenerator().Generate(ctx, s, models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      1,
			TracksPerPlaylist: 5,
		}, nil)
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if len(catalog.Created) != 0 || len(app.Created) != 0 {
			t.Error("expected no playlists to be created")
		}
	})

	t.Run("empty source", func(t *testing.T) {
		catalog := tu.NewMockCatalog("user_1")
		catalog.Tracks["empty"] = nil

		_, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         []models.PlaylistRef{{ID: "empty"}},
			NumPlaylists:      1,
			TracksPerPlaylist: 5,
		}, nil)
		if !errors.Is(err, shared.ErrEmptySource) {
			t.Fatalf("expected ErrEmptySource, got %v", err)
		}
		if len(catalog.Created) != 0 {
			t.Errorf("expected no create calls, got %d", len(catalog.Created))
		}
	})

	t.Run("all sources fail", func(t *testing.T) {
		catalog := tu.NewMockCatalog("user_1")
		catalog.TrackErrs["a"] = shared.ErrPlaylistNotFound

		_, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         []models.PlaylistRef{{ID: "a"}},
			NumPlaylists:      1,
			TracksPerPlaylist: 5,
		}, nil)
		if !errors.Is(err, shared.ErrEmptySource) {
			t.Fatalf("expected ErrEmptySource, got %v", err)
		}
	})

	t.Run("skips failing source", func(t *testing.T) {
		catalog := overlappingCatalog()
		catalog.TrackErrs["b"] = shared.ErrPlaylistNotFound

		result, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      1,
			TracksPerPlaylist: 3,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Skipped) != 1 || result.Skipped[0].Playlist.ID != "b" {
			t.Fatalf("expected source b skipped, got %+v", result.Skipped)
		}
		if !errors.Is(result.Skipped[0].Error, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", result.Skipped[0].Error)
		}
		if result.PoolSize != 5 {
			t.Errorf("expected pool size 5, got %d", result.PoolSize)
		}
	})

	t.Run("create failure skips output", func(t *testing.T) {
		catalog := overlappingCatalog()
		catalog.CreateErr = shared.ErrAPIRequest

		result, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      3,
			TracksPerPlaylist: 3,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Failed != 3 {
			t.Errorf("expected 3 failed outputs, got %d", result.Failed)
		}
		if len(result.Playlists) != 0 {
			t.Errorf("expected no playlists, got %d", len(result.Playlists))
		}
	})

	t.Run("add tracks failure", func(t *testing.T) {
		catalog := overlappingCatalog()
		catalog.AddErr = shared.ErrAPIRequest

		result, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      1,
			TracksPerPlaylist: 3,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Failed != 1 {
			t.Errorf("expected 1 failed output, got %d", result.Failed)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			req   models.GenerationRequest
			field string
		}{
			{"no playlists", models.GenerationRequest{NumPlaylists: 1, TracksPerPlaylist: 1}, "playlists"},
			{"zero outputs", models.GenerationRequest{Playlists: sources, TracksPerPlaylist: 1}, "num_playlists"},
			{"zero tracks", models.GenerationRequest{Playlists: sources, NumPlaylists: 1}, "tracks_per_playlist"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				catalog := overlappingCatalog()
				_, err := testGenerator().Generate(ctx, userSession(t, catalog), tt.req, nil)
				if !errors.Is(err, shared.ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.field) {
					t.Errorf("expected error to mention %s, got %v", tt.field, err)
				}
				if len(catalog.Created) != 0 {
					t.Error("expected no playlists to be created")
				}
			})
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		catalog := overlappingCatalog()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := testGenerator().Generate(cctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      2,
			TracksPerPlaylist: 3,
		}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(catalog.Created) != 0 {
			t.Errorf("expected no create calls, got %d", len(catalog.Created))
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		catalog := overlappingCatalog()
		catalog.TrackErrs["b"] = shared.ErrPlaylistNotFound
		progress := make(chan ProgressUpdate, 20)

		_, err := testGenerator().Generate(ctx, userSession(t, catalog), models.GenerationRequest{
			Playlists:         sources,
			NumPlaylists:      2,
			TracksPerPlaylist: 3,
		}, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		updates := drain(progress)
		expected := []Phase{FetchTracks, FetchTracks, FetchTracks, BuildPool, CreatePlaylist, CreatePlaylist, Complete}
		if len(updates) != len(expected) {
			t.Fatalf("expected %d updates, got %d", len(expected), len(updates))
		}
		for i, phase := range expected {
			if updates[i].Phase != phase {
				t.Errorf("update %d: expected phase %s, got %s", i, phase, updates[i].Phase)
			}
		}
		if !strings.Contains(updates[2].Message, "✗") {
			t.Errorf("expected failure marker, got %q", updates[2].Message)
		}

		final, ok := updates[len(updates)-1].Data.(*GenerationResult)
		if !ok {
			t.Fatalf("expected *GenerationResult data, got %T", updates[len(updates)-1].Data)
		}
		if len(final.Playlists) != 2 {
			t.Errorf("expected 2 playlists in final update, got %d", len(final.Playlists))
		}
	})

	t.Run("full progress channel never blocks", func(t *testing.T) {
		catalog := overlappingCatalog()
		sess := userSession(t, catalog)
		progress := make(chan ProgressUpdate)

		done := make(chan error, 1)
		go func() {
			_, err := testGenerator().Generate(ctx, sess, models.GenerationRequest{
				Playlists:         sources,
				NumPlaylists:      1,
				TracksPerPlaylist: 3,
			}, progress)
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("expected generation to finish without a reader")
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{FetchTracks, "fetch_tracks"},
		{BuildPool, "build_pool"},
		{CreatePlaylist, "create_playlist"},
		{SkipPlaylist, "skip_playlist"},
		{Complete, "complete"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
