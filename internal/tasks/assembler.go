package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
)

// DescriptionTimeLayout is the timestamp layout used in generated descriptions.
const DescriptionTimeLayout = "2006-01-02 15:04:05"

// Assembler names and describes output playlists.
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an assembler that stamps descriptions with the local time.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// NewAssemblerAt creates an assembler with a fixed clock.
func NewAssemblerAt(now func() time.Time) *Assembler {
	return &Assembler{now: now}
}

// NameFor builds the generated name for output outputIndex of totalOutputs.
func (a *Assembler) NameFor(sources []models.PlaylistRef, outputIndex, totalOutputs int) string {
	var name string
	switch len(sources) {
	case 1:
		name = "Mixed from " + sources[0].Name
	case 2:
		name = fmt.Sprintf("%s + %s Mix", sources[0].Name, sources[1].Name)
	default:
		name = fmt.Sprintf("Mixed from %d Playlists", len(sources))
	}

	if totalOutputs > 1 {
		name = fmt.Sprintf("%s #%d", name, outputIndex+1)
	}
	return name
}

// NameAt returns explicit[outputIndex] when present and non-blank, else the generated name.
func (a *Assembler) NameAt(sources []models.PlaylistRef, outputIndex, totalOutputs int, explicit []string) string {
	if outputIndex < len(explicit) && strings.TrimSpace(explicit[outputIndex]) != "" {
		return explicit[outputIndex]
	}
	return a.NameFor(sources, outputIndex, totalOutputs)
}

// DescriptionFor returns explicit when non-blank, else a timestamped default.
func (a *Assembler) DescriptionFor(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return "Auto-generated mix created on " + a.now().Format(DescriptionTimeLayout)
}
