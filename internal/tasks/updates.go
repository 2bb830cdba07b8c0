package tasks

import (
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTracks Phase = iota
	BuildPool
	CreatePlaylist
	SkipPlaylist
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchTracks:
		return "fetch_tracks"
	case BuildPool:
		return "build_pool"
	case CreatePlaylist:
		return "create_playlist"
	case SkipPlaylist:
		return "skip_playlist"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchTracksUpdate(step, total int, ref models.PlaylistRef) ProgressUpdate {
	name := ref.Name
	if name == "" {
		name = ref.ID
	}
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tracks from %s...", step, total, name),
	}
}

func fetchFailedUpdate(step, total int, ref models.PlaylistRef, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, ref.ID, err),
	}
}

func buildPoolUpdate(size int, deduplicated bool) ProgressUpdate {
	msg := fmt.Sprintf("Collected %d tracks", size)
	if deduplicated {
		msg = fmt.Sprintf("Collected %d unique tracks", size)
	}
	return ProgressUpdate{
		Phase:   BuildPool,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    size,
	}
}

func createPlaylistUpdate(step, total int, pl *models.GeneratedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, pl.Name, pl.TrackCount),
		Data:    pl,
	}
}

func skipPlaylistUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func completeUpdate(result *GenerationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    len(result.Playlists),
		Total:   len(result.Playlists),
		Message: fmt.Sprintf("Created %d playlist(s) from %d tracks", len(result.Playlists), result.PoolSize),
		Data:    result,
	}
}
