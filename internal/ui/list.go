package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mixtape/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.PlaylistSummary] to implement [list.Item].
type playlistItem struct {
	playlist models.PlaylistSummary
	selected bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }

func (i playlistItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.playlist.Name)
}

func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.Owner != "" {
		desc = fmt.Sprintf("%s • by %s", desc, i.playlist.Owner)
	}
	if i.playlist.Followers > 0 {
		desc = fmt.Sprintf("%s • %d followers", desc, i.playlist.Followers)
	}
	return desc
}

func (i playlistItem) ref() models.PlaylistRef {
	return models.PlaylistRef{ID: i.playlist.ID, Name: i.playlist.Name}
}
