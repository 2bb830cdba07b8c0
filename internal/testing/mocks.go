package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
)

var (
	_ services.Catalog          = (*MockCatalog)(nil)
	_ services.RankingsProvider = (*MockRankings)(nil)
)

// CreatedPlaylist records one [MockCatalog.CreatePlaylist] call and the tracks added to it.
type CreatedPlaylist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Public      bool
	URIs        []string
}

// MockCatalog is an in-memory test double for [services.Catalog]
type MockCatalog struct {
	mu sync.Mutex

	Searches    map[string][]models.PlaylistSummary // keyed by query
	Details     map[string]models.PlaylistSummary   // keyed by playlist ID
	Tracks      map[string][]models.Track           // keyed by playlist ID
	Library     []models.PlaylistSummary
	Profile     *models.User
	Recommended []models.Track

	Err        error            // returned by every call when set
	DetailErrs map[string]error // per playlist ID
	TrackErrs  map[string]error // per playlist ID
	CreateErr  error
	AddErr     error

	Queries     []string
	DetailCalls []string
	Seeds       []string
	Created     []CreatedPlaylist
}

// NewMockCatalog returns an empty catalog acting as the given user.
func NewMockCatalog(userID string) *MockCatalog {
	return &MockCatalog{
		Searches:   map[string][]models.PlaylistSummary{},
		Details:    map[string]models.PlaylistSummary{},
		Tracks:     map[string][]models.Track{},
		DetailErrs: map[string]error{},
		TrackErrs:  map[string]error{},
		Profile:    &models.User{ID: userID, DisplayName: "User " + userID},
	}
}

func (m *MockCatalog) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.PlaylistSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}

	results := append([]models.PlaylistSummary{}, m.Searches[query]...)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockCatalog) PlaylistDetail(ctx context.Context, playlistID string) (*models.PlaylistSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DetailCalls = append(m.DetailCalls, playlistID)
	if m.Err != nil {
		return nil, m.Err
	}
	if err := m.DetailErrs[playlistID]; err != nil {
		return nil, err
	}

	p, ok := m.Details[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}
	return &p, nil
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if err := m.TrackErrs[playlistID]; err != nil {
		return nil, err
	}
	return append([]models.Track{}, m.Tracks[playlistID]...), nil
}

func (m *MockCatalog) UserPlaylists(ctx context.Context, limit int) ([]models.PlaylistSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	results := append([]models.PlaylistSummary{}, m.Library...)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockCatalog) CurrentUser(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Profile == nil {
		return nil, fmt.Errorf("no profile")
	}
	u := *m.Profile
	return &u, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.GeneratedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	id := fmt.Sprintf("generated_%d", len(m.Created)+1)
	m.Created = append(m.Created, CreatedPlaylist{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Public:      public,
	})
	return &models.GeneratedPlaylist{
		ID:   id,
		Name: name,
		URL:  "https://open.spotify.com/playlist/" + id,
	}, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.AddErr != nil {
		return m.AddErr
	}

	for i := range m.Created {
		if m.Created[i].ID == playlistID {
			m.Created[i].URIs = append(m.Created[i].URIs, uris...)
			return nil
		}
	}
	return fmt.Errorf("playlist %s not found", playlistID)
}

func (m *MockCatalog) Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Seeds = append([]string{}, seedTrackIDs...)
	if m.Err != nil {
		return nil, m.Err
	}
	results := append([]models.Track{}, m.Recommended...)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// MockRankings is an in-memory test double for [services.RankingsProvider]
type MockRankings struct {
	mu sync.Mutex

	Data     map[string]models.KeywordRankings // keyed by keyword
	Errs     map[string]error                  // keyed by keyword
	Playlist json.RawMessage

	Calls []string
}

// NewMockRankings returns a provider with no data.
func NewMockRankings() *MockRankings {
	return &MockRankings{
		Data: map[string]models.KeywordRankings{},
		Errs: map[string]error{},
	}
}

func (m *MockRankings) KeywordRankings(ctx context.Context, keyword string) (models.KeywordRankings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, keyword)
	if err := m.Errs[keyword]; err != nil {
		return nil, err
	}
	if data, ok := m.Data[keyword]; ok {
		return data, nil
	}
	return models.KeywordRankings{}, nil
}

func (m *MockRankings) PlaylistRankings(ctx context.Context, playlistID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "playlist:"+playlistID)
	if m.Playlist == nil {
		return json.RawMessage("[]"), nil
	}
	return m.Playlist, nil
}

// CallCount returns the number of lookups made so far.
func (m *MockRankings) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MakeTracks builds n tracks with IDs prefix0..prefix{n-1}.
func MakeTracks(prefix string, n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		id := fmt.Sprintf("%s%d", prefix, i)
		tracks[i] = models.Track{
			ID:         id,
			Title:      "Track " + id,
			Artist:     "Artist " + prefix,
			Album:      "Album " + prefix,
			DurationMS: 180000,
			URI:        "spotify:track:" + id,
		}
	}
	return tracks
}
