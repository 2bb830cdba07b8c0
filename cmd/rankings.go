package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// RankingsKeyword prints the flattened per-country rankings for a keyword.
func (r *Runner) RankingsKeyword(ctx context.Context, cmd *cli.Command) error {
	keyword := strings.TrimSpace(cmd.StringArg("keyword"))
	if keyword == "" {
		return fmt.Errorf("%w: keyword is required", shared.ErrMissingArgument)
	}

	ranked, lookup := r.merger.KeywordRankings(ctx, keyword)
	if lookup.Err != nil {
		r.warnLookup(lookup.Err, "keyword", keyword)
	}

	return r.render(cmd, ranked, func(f formatter.Format) ([]byte, error) {
		return formatter.Rankings(f, fmt.Sprintf("Rankings: %s", keyword), ranked)
	})
}

// RankingsPlaylist prints the provider's raw ranking data for a playlist.
func (r *Runner) RankingsPlaylist(ctx context.Context, cmd *cli.Command) error {
	id := playlistID(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	raw := r.merger.PlaylistRankings(ctx, id)
	if cmd.Bool("pretty") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			raw = buf.Bytes()
		}
	}
	return r.writePlain("%s\n", raw)
}

// RankingsPopular prints the best-ranked playlists across the configured keywords.
func (r *Runner) RankingsPopular(ctx context.Context, cmd *cli.Command) error {
	if !r.merger.HasProvider() {
		r.logger.Warn("rankings provider not configured, set PLAYLIST_RANKINGS_API_KEY")
	}

	ranked := r.merger.Popular(ctx)
	return r.render(cmd, ranked, func(f formatter.Format) ([]byte, error) {
		return formatter.Rankings(f, "Popular playlists", ranked)
	})
}

// RankingsCountry prints the top playlists for a country, falling back to catalog search.
func (r *Runner) RankingsCountry(ctx context.Context, cmd *cli.Command) error {
	code := strings.ToUpper(strings.TrimSpace(cmd.StringArg("code")))
	if code == "" {
		return fmt.Errorf("%w: country code is required", shared.ErrMissingArgument)
	}

	catalog, err := r.appCatalog(ctx)
	if err != nil {
		return err
	}

	playlists := r.merger.CountryRankings(ctx, catalog, code)
	return r.render(cmd, playlists, func(f formatter.Format) ([]byte, error) {
		return formatter.Playlists(f, fmt.Sprintf("Top playlists: %s", models.CountryName(code)), playlists)
	})
}

// RankingsCountries lists the supported country codes.
func (r *Runner) RankingsCountries(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") {
		return r.writeJSON(models.Countries, cmd.Bool("pretty"))
	}

	for _, c := range models.Countries {
		if err := r.writePlain("%s  %s\n", c.Code, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) warnLookup(err error, kv ...any) {
	kv = append(kv, "error", err)
	switch {
	case errors.Is(err, shared.ErrRateLimited):
		r.logger.Warn("rankings provider rate limited, showing partial results", kv...)
	case errors.Is(err, shared.ErrMissingCredentials):
		r.logger.Warn("rankings provider not configured, set PLAYLIST_RANKINGS_API_KEY", kv...)
	default:
		r.logger.Warn("rankings provider unavailable", kv...)
	}
}
