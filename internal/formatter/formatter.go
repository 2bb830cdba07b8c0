// package formatter renders playlists, rankings and tracks as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
)

// ParseFormat resolves a --format flag value. Empty selects [Text].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (expected csv, markdown or text)", shared.ErrInvalidArgument, s)
	}
}

// table is the shared shape behind every renderer.
type table struct {
	title   string
	meta    []string
	headers []string
	rows    [][]string
	line    func(i int) string // plain-text/markdown list entry for row i
}

func (t table) render(f Format) ([]byte, error) {
	switch f {
	case CSV:
		return t.csv()
	case Markdown:
		return t.markdown(), nil
	case Text:
		return t.text(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

func (t table) csv() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range t.rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (t table) markdown() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", t.title)
	for _, m := range t.meta {
		fmt.Fprintf(&buf, "%s\n", m)
	}
	if len(t.meta) > 0 {
		buf.WriteString("\n")
	}

	buf.WriteString("| " + strings.Join(t.headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(t.headers)) + "\n")
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return buf.Bytes()
}

func (t table) text() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", t.title)
	for _, m := range t.meta {
		fmt.Fprintf(&buf, "%s\n", strings.ReplaceAll(m, "**", ""))
	}
	buf.WriteString("\n")

	for i := range t.rows {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, t.line(i))
	}
	return buf.Bytes()
}

// Playlists renders playlist summaries.
func Playlists(f Format, title string, playlists []models.PlaylistSummary) ([]byte, error) {
	t := table{
		title:   title,
		meta:    []string{fmt.Sprintf("**Playlists**: %d", len(playlists))},
		headers: []string{"Position", "ID", "Name", "Owner", "Tracks", "Followers", "Keywords", "URL"},
		line: func(i int) string {
			p := playlists[i]
			return fmt.Sprintf("%s by %s (%d tracks, %d followers)", p.Name, p.Owner, p.TrackCount, p.Followers)
		},
	}

	for _, p := range playlists {
		position := ""
		if p.Rank != nil {
			position = strconv.Itoa(p.Rank.Position)
		}
		t.rows = append(t.rows, []string{
			position,
			p.ID,
			p.Name,
			p.Owner,
			strconv.Itoa(p.TrackCount),
			strconv.Itoa(p.Followers),
			strings.Join(p.Keywords, ";"),
			p.URL,
		})
	}
	return t.render(f)
}

// Rankings renders flattened ranked playlists.
func Rankings(f Format, title string, ranked []models.RankedPlaylist) ([]byte, error) {
	t := table{
		title:   title,
		meta:    []string{fmt.Sprintf("**Entries**: %d", len(ranked))},
		headers: []string{"Position", "ID", "Name", "Country", "Keyword", "Source"},
		line: func(i int) string {
			r := ranked[i]
			return fmt.Sprintf("#%d %s [%s, %s]", r.Position, r.Name, r.Country, r.Keyword)
		},
	}

	for _, r := range ranked {
		t.rows = append(t.rows, []string{
			strconv.Itoa(r.Position),
			r.ID,
			r.Name,
			r.Country,
			r.Keyword,
			string(r.Provenance),
		})
	}
	return t.render(f)
}

// Tracks renders a track listing.
func Tracks(f Format, title string, tracks []models.Track) ([]byte, error) {
	total := 0
	for _, tr := range tracks {
		total += tr.DurationMS
	}

	t := table{
		title: title,
		meta: []string{
			fmt.Sprintf("**Tracks**: %d", len(tracks)),
			fmt.Sprintf("**Duration**: %s", shared.FormatDuration(total)),
		},
		headers: []string{"ID", "Title", "Artist", "Album", "Duration", "URI"},
		line: func(i int) string {
			tr := tracks[i]
			album := ""
			if tr.Album != "" {
				album = fmt.Sprintf(" (%s)", tr.Album)
			}
			return fmt.Sprintf("%s - %s%s [%s]", tr.Artist, tr.Title, album, shared.FormatDuration(tr.DurationMS))
		},
	}

	for _, tr := range tracks {
		t.rows = append(t.rows, []string{
			tr.ID,
			tr.Title,
			tr.Artist,
			tr.Album,
			shared.FormatDuration(tr.DurationMS),
			tr.URI,
		})
	}
	return t.render(f)
}

// Generated renders the playlists created by one generation run.
func Generated(f Format, playlists []models.GeneratedPlaylist, poolSize int, public bool) ([]byte, error) {
	t := table{
		title: "Generated playlists",
		meta: []string{
			fmt.Sprintf("**Pool**: %d tracks", poolSize),
			fmt.Sprintf("**Visibility**: %s", shared.VisibilityString(public)),
		},
		headers: []string{"ID", "Name", "Tracks", "URL"},
		line: func(i int) string {
			p := playlists[i]
			return fmt.Sprintf("%s (%d tracks) %s", p.Name, p.TrackCount, p.URL)
		},
	}

	for _, p := range playlists {
		t.rows = append(t.rows, []string{p.ID, p.Name, strconv.Itoa(p.TrackCount), p.URL})
	}
	return t.render(f)
}

// WriteFile writes rendered output to path, adding the format's extension when path has none.
func WriteFile(path string, f Format, data []byte) (string, error) {
	if !strings.Contains(path[strings.LastIndex(path, "/")+1:], ".") {
		path += Extension(f)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Extension returns the file extension for f.
func Extension(f Format) string {
	switch f {
	case CSV:
		return ".csv"
	case Markdown:
		return ".md"
	default:
		return ".txt"
	}
}
