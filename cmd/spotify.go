package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a playlist search. With --country the results come from the rankings path.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: please enter a search term", shared.ErrMissingArgument)
	}
	country := strings.ToUpper(strings.TrimSpace(cmd.String("country")))

	catalog, err := r.appCatalog(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("searching playlists", "query", query, "country", country)
	results, err := r.merger.SearchWithCountry(ctx, catalog, query, country)
	if err != nil {
		return fmt.Errorf("%w: search failed: %v", shared.ErrAPIRequest, err)
	}

	title := fmt.Sprintf("Search: %s", query)
	if country != "" {
		title = fmt.Sprintf("%s (%s)", title, models.CountryName(country))
	}
	return r.render(cmd, results, func(f formatter.Format) ([]byte, error) {
		return formatter.Playlists(f, title, results)
	})
}

// Playlists lists the logged-in user's library.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.userCatalog(ctx)
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	r.logger.Debugf("listing user playlists with limit %v", limit)

	playlists, err := catalog.UserPlaylists(ctx, limit)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.render(cmd, playlists, func(f formatter.Format) ([]byte, error) {
		return formatter.Playlists(f, "Your playlists", playlists)
	})
}

// Tracks lists every track of a playlist.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	id := playlistID(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	catalog, err := r.appCatalog(ctx)
	if err != nil {
		return err
	}

	tracks, err := catalog.PlaylistTracks(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	title := id
	if detail, err := catalog.PlaylistDetail(ctx, id); err == nil {
		title = detail.Name
	} else {
		r.logger.Debug("playlist detail unavailable", "playlist_id", id, "error", err)
	}

	return r.render(cmd, tracks, func(f formatter.Format) ([]byte, error) {
		return formatter.Tracks(f, title, tracks)
	})
}

// Recommend passes the given seed tracks to the recommender.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	seeds := cmd.Args().Slice()
	if len(seeds) == 0 {
		return fmt.Errorf("%w: please provide seed tracks", shared.ErrMissingArgument)
	}
	if len(seeds) > services.MaxSeedTracks {
		r.logger.Warn("too many seed tracks, using the first ones", "given", len(seeds), "max", services.MaxSeedTracks)
	}

	catalog, err := r.appCatalog(ctx)
	if err != nil {
		return err
	}

	tracks, err := catalog.Recommendations(ctx, seeds, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.render(cmd, tracks, func(f formatter.Format) ([]byte, error) {
		return formatter.Tracks(f, "Recommendations", tracks)
	})
}

// playlistID accepts a bare ID, a spotify:playlist: URI or an open.spotify.com URL.
func playlistID(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "spotify:playlist:"); ok {
		return rest
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "playlist" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return s
}
