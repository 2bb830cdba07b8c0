// package models defines the data model for the playlist remix service
package models

import (
	"slices"
	"strings"
	"time"
)

// Provenance records where a ranked result came from.
type Provenance string

const (
	ProvenanceRankings Provenance = "rankings" // Ranked by the rankings provider
	ProvenanceSearch   Provenance = "search"   // Heuristic position from catalog search order
)

// keywordVocabulary is matched against playlist descriptions to build [PlaylistSummary.Keywords].
var keywordVocabulary = []string{
	"pop", "rock", "hip hop", "jazz", "classical", "electronic", "country", "r&b", "reggae", "blues",
	"folk", "indie", "alternative", "metal", "punk", "soul", "funk", "disco", "house", "techno",
	"trance", "ambient", "chill", "lofi", "workout", "party", "romantic", "sad", "happy", "energetic", "relaxing",
}

// Track represents a catalog track.
type Track struct {
	ID         string     `json:"id"`
	Title      string     `json:"name"`
	Artist     string     `json:"artist"`
	Album      string     `json:"album"`
	DurationMS int        `json:"duration_ms"`
	Popularity int        `json:"popularity"`
	URI        string     `json:"uri"`
	AddedAt    *time.Time `json:"added_at,omitempty"`
}

// PlaylistSummary is the unit of selection presented to front-ends.
type PlaylistSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Owner       string   `json:"creator"`
	TrackCount  int      `json:"tracks"`
	Public      bool     `json:"public"`
	Followers   int      `json:"followers"`
	Image       string   `json:"image,omitempty"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Rank        *Ranking `json:"rank,omitempty"`
}

// Ranking annotates a [PlaylistSummary] that was reached through a ranked path.
type Ranking struct {
	Position   int        `json:"position"`
	Country    string     `json:"country"`
	Keyword    string     `json:"keyword"`
	Provenance Provenance `json:"provenance"`
}

// RankedPlaylistRef is a playlist position within one country/keyword pair (1 is best).
type RankedPlaylistRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// KeywordRankings maps a country code to the ranked refs for one keyword.
type KeywordRankings map[string][]RankedPlaylistRef

// Countries returns the country codes in sorted order.
func (k KeywordRankings) Countries() []string {
	codes := make([]string, 0, len(k))
	for code := range k {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// RankedPlaylist is a flattened ranked ref with the pair it was ranked in.
//
// Summary is populated when catalog detail was resolved for the ref.
type RankedPlaylist struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Position   int              `json:"position"`
	Country    string           `json:"country"`
	Keyword    string           `json:"keyword"`
	Provenance Provenance       `json:"provenance"`
	Summary    *PlaylistSummary `json:"playlist,omitempty"`
}

// PlaylistRef selects a source playlist for generation.
type PlaylistRef struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// GenerationRequest holds the parameters for one remix run.
type GenerationRequest struct {
	Playlists         []PlaylistRef `json:"playlists" validate:"required,min=1,dive"`
	NumPlaylists      int           `json:"num_playlists" validate:"gte=1"`
	TracksPerPlaylist int           `json:"tracks_per_playlist" validate:"gte=1"`
	AvoidDuplicates   bool          `json:"avoid_duplicates"`
	Names             []string      `json:"playlist_names"`
	Description       string        `json:"playlist_description"`
	Public            bool          `json:"-"`
}

// GeneratedPlaylist is the result of one creation call.
type GeneratedPlaylist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"tracks"`
	URL        string `json:"url"`
	Image      string `json:"image,omitempty"`
}

// User is the profile of the acting user.
type User struct {
	ID          string `json:"user_id"`
	DisplayName string `json:"user_name"`
}

// Country pairs an ISO country code with its display name.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// KeywordTags returns the vocabulary words found in description, in vocabulary order.
func KeywordTags(description string) []string {
	tags := []string{}
	if description == "" {
		return tags
	}

	lower := strings.ToLower(description)
	for _, kw := range keywordVocabulary {
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
		}
	}
	return tags
}
