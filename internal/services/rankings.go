package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/go-resty/resty/v2"
)

const (
	defaultRankingsBaseURL = "https://www.playlistrankings.com/api"
	defaultRankingsTimeout = 10 * time.Second

	// statusAuthenticationTimeout is sent by the provider when its quota is exhausted.
	statusAuthenticationTimeout = 419
)

var _ RankingsProvider = (*RankingsService)(nil)

// rankingEntry is one element of a country's list in the provider payload.
type rankingEntry struct {
	Position int `json:"position"`
	Playlist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"playlist"`
}

// RankingsService implements [RankingsProvider] for the PlaylistRankings API.
type RankingsService struct {
	client *resty.Client
}

// NewRankingsService creates a rankings client. A missing API key is an error.
func NewRankingsService(cfg shared.RankingsCredentialConfig) (*RankingsService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: playlist rankings api_key is not set", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultRankingsBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRankingsTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &RankingsService{client: client}, nil
}

// Name returns the name of the service
func (s *RankingsService) Name() string {
	return "PlaylistRankings"
}

// KeywordRankings fetches the per-country rankings for keyword.
//
// 419 and 429 map to [shared.ErrRateLimited]; every other failure maps to
// [shared.ErrProviderUnavailable]. An empty body is an empty result.
func (s *RankingsService) KeywordRankings(ctx context.Context, keyword string) (models.KeywordRankings, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("keyword", keyword).
		Get("/keywords/{keyword}/rankings")
	if err != nil {
		return nil, fmt.Errorf("%w: keyword %q: %v", shared.ErrProviderUnavailable, keyword, err)
	}

	if err := checkStatus(resp.StatusCode(), "keyword "+keyword); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return models.KeywordRankings{}, nil
	}

	var raw map[string][]rankingEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: keyword %q: invalid payload: %v", shared.ErrProviderUnavailable, keyword, err)
	}

	rankings := make(models.KeywordRankings, len(raw))
	for country, entries := range raw {
		refs := make([]models.RankedPlaylistRef, 0, len(entries))
		for _, e := range entries {
			if e.Playlist.ID == "" {
				continue
			}
			name := e.Playlist.Name
			if name == "" {
				name = "Unknown Playlist"
			}
			refs = append(refs, models.RankedPlaylistRef{ID: e.Playlist.ID, Name: name, Position: e.Position})
		}
		rankings[country] = refs
	}
	return rankings, nil
}

// PlaylistRankings fetches ranking data for one playlist and returns it undecoded.
func (s *RankingsService) PlaylistRankings(ctx context.Context, playlistID string) (json.RawMessage, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", playlistID).
		Get("/playlists/{id}/rankings")
	if err != nil {
		return nil, fmt.Errorf("%w: playlist %s: %v", shared.ErrProviderUnavailable, playlistID, err)
	}

	if err := checkStatus(resp.StatusCode(), "playlist "+playlistID); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || !json.Valid(body) {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(body), nil
}

func checkStatus(status int, op string) error {
	switch {
	case status == statusAuthenticationTimeout || status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s: status %d", shared.ErrRateLimited, op, status)
	case status < 200 || status >= 300:
		return fmt.Errorf("%w: %s: status %d", shared.ErrProviderUnavailable, op, status)
	}
	return nil
}
