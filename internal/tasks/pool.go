package tasks

import (
	"math/rand/v2"

	"github.com/desertthunder/mixtape/internal/models"
)

// TrackPool is the working set of tracks for one generation run.
type TrackPool struct {
	tracks  []models.Track
	shuffle func(n int, swap func(i, j int))
}

// NewTrackPool creates an empty pool shuffled by the global random source.
func NewTrackPool() *TrackPool {
	return &TrackPool{shuffle: rand.Shuffle}
}

// NewSeededTrackPool creates an empty pool with a deterministic shuffle.
func NewSeededTrackPool(seed uint64) *TrackPool {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &TrackPool{shuffle: r.Shuffle}
}

// Ingest appends tracks in the order given.
func (p *TrackPool) Ingest(tracks []models.Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Deduplicate keeps the first occurrence of each track ID.
func (p *TrackPool) Deduplicate() {
	seen := make(map[string]struct{}, len(p.tracks))
	kept := p.tracks[:0]
	for _, t := range p.tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		kept = append(kept, t)
	}
	clear(p.tracks[len(kept):])
	p.tracks = kept
}

// Sample shuffles the whole pool in place and returns a copy of the first n tracks.
//
// n is clamped to the pool size. Successive calls reshuffle, so samples may overlap.
func (p *TrackPool) Sample(n int) []models.Track {
	if n <= 0 || len(p.tracks) == 0 {
		return []models.Track{}
	}

	p.shuffle(len(p.tracks), func(i, j int) {
		p.tracks[i], p.tracks[j] = p.tracks[j], p.tracks[i]
	})

	n = min(n, len(p.tracks))
	out := make([]models.Track, n)
	copy(out, p.tracks[:n])
	return out
}

// Len returns the number of tracks in the pool.
func (p *TrackPool) Len() int {
	return len(p.tracks)
}

// Tracks returns a copy of the pool in its current order.
func (p *TrackPool) Tracks() []models.Track {
	out := make([]models.Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// URIs returns the playable references of tracks.
func URIs(tracks []models.Track) []string {
	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.URI != "" {
			uris = append(uris, t.URI)
		}
	}
	return uris
}
