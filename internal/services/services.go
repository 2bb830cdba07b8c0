// package services defines the catalog and rankings collaborators consumed by the generator
//
// Spotify (catalog), PlaylistRankings (rankings provider)
package services

import (
	"context"
	"encoding/json"

	"github.com/desertthunder/mixtape/internal/models"
)

// MaxSeedTracks is the most seed tracks the recommender accepts.
const MaxSeedTracks = 5

// AddTracksBatchSize is the most tracks added per request.
const AddTracksBatchSize = 100

// Catalog defines the music catalog operations used by search, ranking resolution and playlist generation.
type Catalog interface {
	// SearchPlaylists runs a playlist search and returns up to limit summaries in provider order.
	SearchPlaylists(ctx context.Context, query string, limit int) ([]models.PlaylistSummary, error)

	// PlaylistDetail fetches full metadata (including followers) for a single playlist.
	PlaylistDetail(ctx context.Context, playlistID string) (*models.PlaylistSummary, error)

	// PlaylistTracks returns every track in a playlist, paging transparently.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// UserPlaylists returns up to limit playlists in the acting user's library.
	UserPlaylists(ctx context.Context, limit int) ([]models.PlaylistSummary, error)

	// CurrentUser returns the acting user's profile.
	CurrentUser(ctx context.Context) (*models.User, error)

	// CreatePlaylist creates an empty playlist owned by ownerID.
	CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.GeneratedPlaylist, error)

	// AddTracks appends tracks by URI in batches of [AddTracksBatchSize].
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Recommendations passes up to [MaxSeedTracks] seeds to the external recommender.
	Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]models.Track, error)
}

// RankingsProvider defines the third-party playlist rankings lookups.
type RankingsProvider interface {
	// KeywordRankings returns ranked playlists per country for a keyword.
	KeywordRankings(ctx context.Context, keyword string) (models.KeywordRankings, error)

	// PlaylistRankings returns the provider's raw ranking data for a playlist.
	PlaylistRankings(ctx context.Context, playlistID string) (json.RawMessage, error)
}
