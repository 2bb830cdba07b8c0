// Spotify Web API implementation of [Catalog]
//
// Response types come from github.com/zmb3/spotify/v2, see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/zmb3/spotify/v2"
)

const (
	playlistItemsPageSize = 100
	userPlaylistsPageSize = 50
	searchPageLimit       = 50
	recommendationsTarget = 50
)

var _ Catalog = (*SpotifyService)(nil)

// SpotifyService implements [Catalog] for the Spotify Web API.
type SpotifyService struct {
	client *spotify.Client
}

// NewSpotifyService creates a service that sends requests through httpClient.
//
// httpClient must attach credentials (see [SpotifyAuth]). An empty baseURL uses the public API.
func NewSpotifyService(httpClient *http.Client, baseURL string) *SpotifyService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	opts := []spotify.ClientOption{}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, spotify.WithBaseURL(baseURL))
	}

	return &SpotifyService{client: spotify.New(httpClient, opts...)}
}

// Name returns the name of the service
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SearchPlaylists searches for playlists matching query.
func (s *SpotifyService) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.PlaylistSummary, error) {
	if limit <= 0 || limit > searchPageLimit {
		limit = searchPageLimit
	}

	results, err := s.client.Search(ctx, query, spotify.SearchTypePlaylist, spotify.Limit(limit))
	if err != nil {
		return nil, classify(err, "search playlists")
	}

	if results.Playlists == nil {
		return []models.PlaylistSummary{}, nil
	}

	summaries := make([]models.PlaylistSummary, 0, len(results.Playlists.Playlists))
	for _, p := range results.Playlists.Playlists {
		// search results occasionally contain null entries
		if p.ID == "" {
			continue
		}
		summaries = append(summaries, simpleSummary(p))
	}
	return summaries, nil
}

// PlaylistDetail fetches a playlist including its follower count.
func (s *SpotifyService) PlaylistDetail(ctx context.Context, playlistID string) (*models.PlaylistSummary, error) {
	p, err := s.client.GetPlaylist(ctx, spotify.ID(playlistID),
		spotify.Fields("id,name,owner,tracks.total,public,images,external_urls,followers,description"))
	if err != nil {
		return nil, classify(err, "get playlist "+playlistID)
	}

	summary := simpleSummary(p.SimplePlaylist)
	summary.TrackCount = int(p.Tracks.Total)
	summary.Followers = int(p.Followers.Count)
	return &summary, nil
}

// PlaylistTracks fetches every track item in a playlist. Episodes and local files without IDs are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track
	offset := 0

	for {
		page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(playlistItemsPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, classify(err, "get playlist items "+playlistID)
		}

		for _, item := range page.Items {
			if item.Track.Track == nil || item.Track.Track.ID == "" {
				continue
			}
			track := fullTrack(item.Track.Track)
			if added, err := time.Parse(time.RFC3339, item.AddedAt); err == nil {
				track.AddedAt = &added
			}
			tracks = append(tracks, track)
		}

		if len(page.Items) < playlistItemsPageSize {
			break
		}
		offset += playlistItemsPageSize
	}

	return tracks, nil
}

// UserPlaylists fetches up to limit playlists from the current user's library.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit int) ([]models.PlaylistSummary, error) {
	if limit <= 0 {
		limit = userPlaylistsPageSize
	}

	summaries := []models.PlaylistSummary{}
	offset := 0

	for len(summaries) < limit {
		pageSize := min(userPlaylistsPageSize, limit-len(summaries))
		page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(pageSize), spotify.Offset(offset))
		if err != nil {
			return nil, classify(err, "get user playlists")
		}

		for _, p := range page.Playlists {
			summaries = append(summaries, simpleSummary(p))
		}

		if len(page.Playlists) < pageSize {
			break
		}
		offset += pageSize
	}

	return summaries, nil
}

// CurrentUser fetches the profile behind the current token.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, classify(err, "get current user")
	}
	return &models.User{ID: u.ID, DisplayName: u.DisplayName}, nil
}

// CreatePlaylist creates an empty, non-collaborative playlist.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.GeneratedPlaylist, error) {
	p, err := s.client.CreatePlaylistForUser(ctx, ownerID, name, description, public, false)
	if err != nil {
		return nil, classify(err, "create playlist")
	}

	return &models.GeneratedPlaylist{
		ID:         string(p.ID),
		Name:       p.Name,
		TrackCount: int(p.Tracks.Total),
		URL:        p.ExternalURLs["spotify"],
		Image:      firstImage(p.Images),
	}, nil
}

// AddTracks adds tracks by URI (or bare ID) in batches of [AddTracksBatchSize].
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	ids := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		if id := trackIDFromURI(uri); id != "" {
			ids = append(ids, spotify.ID(id))
		}
	}

	for start := 0; start < len(ids); start += AddTracksBatchSize {
		end := min(start+AddTracksBatchSize, len(ids))
		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[start:end]...); err != nil {
			return classify(err, fmt.Sprintf("add tracks %d-%d", start, end))
		}
	}
	return nil
}

// Recommendations fetches tracks seeded by up to [MaxSeedTracks] track IDs.
func (s *SpotifyService) Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]models.Track, error) {
	if len(seedTrackIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one seed track is required", shared.ErrInvalidArgument)
	}
	if len(seedTrackIDs) > MaxSeedTracks {
		seedTrackIDs = seedTrackIDs[:MaxSeedTracks]
	}
	if limit <= 0 {
		limit = 20
	}

	seeds := spotify.Seeds{}
	for _, id := range seedTrackIDs {
		seeds.Tracks = append(seeds.Tracks, spotify.ID(trackIDFromURI(id)))
	}

	attrs := spotify.NewTrackAttributes().TargetPopularity(recommendationsTarget)
	recs, err := s.client.GetRecommendations(ctx, seeds, attrs, spotify.Limit(limit))
	if err != nil {
		return nil, classify(err, "get recommendations")
	}

	tracks := make([]models.Track, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		tracks = append(tracks, simpleTrack(t))
	}
	return tracks, nil
}

func simpleSummary(p spotify.SimplePlaylist) models.PlaylistSummary {
	owner := p.Owner.DisplayName
	if owner == "" {
		owner = p.Owner.ID
	}
	return models.PlaylistSummary{
		ID:          string(p.ID),
		Name:        p.Name,
		Owner:       owner,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
		Image:       firstImage(p.Images),
		URL:         p.ExternalURLs["spotify"],
		Description: p.Description,
		Keywords:    models.KeywordTags(p.Description),
	}
}

func fullTrack(t *spotify.FullTrack) models.Track {
	track := simpleTrack(t.SimpleTrack)
	track.Album = t.Album.Name
	track.Popularity = int(t.Popularity)
	return track
}

func simpleTrack(t spotify.SimpleTrack) models.Track {
	artist := "Unknown"
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	return models.Track{
		ID:         string(t.ID),
		Title:      t.Name,
		Artist:     artist,
		DurationMS: int(t.Duration),
		URI:        string(t.URI),
	}
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// trackIDFromURI accepts "spotify:track:<id>" or a bare ID.
func trackIDFromURI(uri string) string {
	if i := strings.LastIndex(uri, ":"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// classify wraps a catalog error with the matching sentinel.
func classify(err error, op string) error {
	if errors.Is(err, shared.ErrTokenExpired) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var se spotify.Error
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s: %v", shared.ErrTokenExpired, op, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %v", shared.ErrPlaylistNotFound, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}
