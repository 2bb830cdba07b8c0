package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
)

// LibraryLimit is how many library playlists are loaded at startup.
const LibraryLimit = 50

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SourceView ViewState = iota
	SettingsView
	ConfirmView
	GenerateView
	ResultView
)

// Setting rows in [SettingsView].
const (
	settingNum = iota
	settingTracks
	settingDedup
	settingPublic
	settingCount
)

// Searcher runs the playlist searches offered in [SourceView]. [tasks.RankingsMerger] satisfies it.
type Searcher interface {
	SearchWithCountry(ctx context.Context, catalog services.Catalog, query, country string) ([]models.PlaylistSummary, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	sess      tasks.CatalogSession
	searcher  Searcher
	generator *tasks.Generator
	settings  shared.GeneratorConfig
	cursor    int
	width     int
	height    int
	sources   list.Model
	input     textinput.Model
	searching bool
	selected  []models.PlaylistRef
	progress  chan tasks.ProgressUpdate
	done      chan generatePayload
	events    []string
	result    *tasks.GenerationResult
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(
	ctx context.Context,
	sess tasks.CatalogSession,
	searcher Searcher,
	generator *tasks.Generator,
	defaults shared.GeneratorConfig,
) *Model {
	input := textinput.New()
	input.Placeholder = "genre, mood or keyword"
	input.CharLimit = 100

	sources := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	sources.SetFilteringEnabled(false)
	sources.SetShowHelp(false)
	sources.Title = "Loading playlists..."

	if defaults.NumPlaylists < 1 {
		defaults.NumPlaylists = 1
	}
	if defaults.TracksPerPlaylist < 1 {
		defaults.TracksPerPlaylist = 1
	}

	return &Model{
		ctx:       ctx,
		view:      SourceView,
		sess:      sess,
		searcher:  searcher,
		generator: generator,
		settings:  defaults,
		sources:   sources,
		input:     input,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init loads the user's library.
func (m *Model) Init() tea.Cmd {
	return m.fetchLibrary()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sources.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SourceView:
			return m.handleSourceKeys(msg)
		case SettingsView:
			return m.handleSettingsKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case GenerateView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	if m.view == SourceView && !m.searching {
		m.sources, cmd = m.sources.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsPayload)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.setSources(data.title, data.playlists)
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.events = append(m.events, update.Message)
		return m, m.waitForProgress()

	case MsgGenerateComplete:
		data := msg.data.(generatePayload)
		m.result = data.result
		m.err = data.err
		m.progress = nil
		m.done = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SourceView:
		return m.renderSources()
	case SettingsView:
		return m.renderSettings()
	case ConfirmView:
		return m.renderConfirm()
	case GenerateView:
		return m.renderGenerate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSourceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc:
			m.searching = false
			m.input.Blur()
			return m, nil
		case tea.KeyEnter:
			query := strings.TrimSpace(m.input.Value())
			m.searching = false
			m.input.Blur()
			if query == "" {
				return m, nil
			}
			return m, m.searchPlaylists(query)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.library):
		return m, m.fetchLibrary()
	case key.Matches(msg, m.keys.toggle):
		m.toggleSelected()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.selected) > 0 {
			m.view = SettingsView
			m.cursor = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.sources, cmd = m.sources.Update(msg)
	return m, cmd
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SourceView
	case key.Matches(msg, m.keys.up):
		m.cursor = (m.cursor + settingCount - 1) % settingCount
	case key.Matches(msg, m.keys.down):
		m.cursor = (m.cursor + 1) % settingCount
	case key.Matches(msg, m.keys.left):
		m.adjust(-1)
	case key.Matches(msg, m.keys.right):
		m.adjust(1)
	case key.Matches(msg, m.keys.toggle):
		m.adjust(0)
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
	}
	return m, nil
}

// adjust changes the setting under the cursor. Booleans flip on any delta.
func (m *Model) adjust(delta int) {
	switch m.cursor {
	case settingNum:
		m.settings.NumPlaylists = max(m.settings.NumPlaylists+delta, 1)
	case settingTracks:
		m.settings.TracksPerPlaylist = max(m.settings.TracksPerPlaylist+delta*5, 1)
	case settingDedup:
		m.settings.AvoidDuplicates = !m.settings.AvoidDuplicates
	case settingPublic:
		m.settings.Public = !m.settings.Public
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = SettingsView
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = GenerateView
		m.events = nil
		return m, m.startGenerate()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = SourceView
		m.result = nil
		m.err = nil
		m.events = nil
		m.clearSelection()
		return m, nil
	}
	return m, nil
}

func (m *Model) setSources(title string, playlists []models.PlaylistSummary) {
	chosen := make(map[string]bool, len(m.selected))
	for _, ref := range m.selected {
		chosen[ref.ID] = true
	}

	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl, selected: chosen[pl.ID]}
	}
	m.sources.SetItems(items)
	m.sources.Title = title
	m.sources.ResetSelected()
}

func (m *Model) toggleSelected() {
	item, ok := m.sources.SelectedItem().(playlistItem)
	if !ok {
		return
	}

	item.selected = !item.selected
	m.sources.SetItem(m.sources.Index(), item)

	if item.selected {
		m.selected = append(m.selected, item.ref())
		return
	}
	for i, ref := range m.selected {
		if ref.ID == item.playlist.ID {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
			break
		}
	}
}

func (m *Model) clearSelection() {
	m.selected = nil
	for i, it := range m.sources.Items() {
		if item, ok := it.(playlistItem); ok && item.selected {
			item.selected = false
			m.sources.SetItem(i, item)
		}
	}
}

// Request builds the generation request from the current selection and settings.
func (m *Model) Request() models.GenerationRequest {
	return models.GenerationRequest{
		Playlists:         append([]models.PlaylistRef(nil), m.selected...),
		NumPlaylists:      m.settings.NumPlaylists,
		TracksPerPlaylist: m.settings.TracksPerPlaylist,
		AvoidDuplicates:   m.settings.AvoidDuplicates,
		Public:            m.settings.Public,
	}
}

// Result returns the outcome shown on the result screen, or nil.
func (m *Model) Result() *tasks.GenerationResult {
	return m.result
}

func (m *Model) fetchLibrary() tea.Cmd {
	return func() tea.Msg {
		catalog, err := m.sess.Ensure(m.ctx, session.UserScoped)
		if err != nil {
			return playlistsFetchedMsg("", nil, err)
		}
		playlists, err := catalog.UserPlaylists(m.ctx, LibraryLimit)
		return playlistsFetchedMsg("Your playlists", playlists, err)
	}
}

func (m *Model) searchPlaylists(query string) tea.Cmd {
	return func() tea.Msg {
		catalog, err := m.sess.Ensure(m.ctx, session.AppScoped)
		if err != nil {
			return playlistsFetchedMsg("", nil, err)
		}
		playlists, err := m.searcher.SearchWithCountry(m.ctx, catalog, query, "")
		return playlistsFetchedMsg(fmt.Sprintf("Results for %q", query), playlists, err)
	}
}

func (m *Model) startGenerate() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan generatePayload, 1)
	m.progress = progress
	m.done = done

	req := m.Request()
	go func() {
		result, err := m.generator.Generate(m.ctx, m.sess, req, progress)
		done <- generatePayload{result, err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progress, m.done
	return func() tea.Msg {
		if progress == nil {
			return generateCompleteMsg(nil, nil)
		}

		update, ok := <-progress
		if !ok {
			outcome := <-done
			return generateCompleteMsg(outcome.result, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSources() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}
	if m.searching {
		b.WriteString("Search: " + m.input.View() + "\n\n")
	}

	b.WriteString(m.sources.View())
	b.WriteString("\n")
	b.WriteString(styles.help.Render(fmt.Sprintf("%d selected", len(m.selected))))
	b.WriteString("\n\n")

	helpKeys := []key.Binding{m.keys.toggle, m.keys.search, m.keys.library, m.keys.enter, m.keys.quit}
	if m.searching {
		helpKeys = []key.Binding{m.keys.enter, m.keys.back}
	}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderSettings() string {
	rows := []string{
		fmt.Sprintf("Playlists to create:  %d", m.settings.NumPlaylists),
		fmt.Sprintf("Tracks per playlist:  %d", m.settings.TracksPerPlaylist),
		fmt.Sprintf("Avoid duplicates:     %s", yesNo(m.settings.AvoidDuplicates)),
		fmt.Sprintf("Visibility:           %s", shared.VisibilityString(m.settings.Public)),
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Settings") + "\n")
	for i, row := range rows {
		if i == m.cursor {
			b.WriteString(styles.cursor.Render("> "+row) + "\n")
			continue
		}
		b.WriteString("  " + row + "\n")
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.left, m.keys.right, m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create %d playlist(s)?", m.settings.NumPlaylists))

	var b strings.Builder
	b.WriteString("\nSources:\n")
	for _, ref := range m.selected {
		b.WriteString(fmt.Sprintf("  • %s\n", ref.Name))
	}
	b.WriteString(fmt.Sprintf(
		"\nTracks per playlist: %d\nAvoid duplicates: %s\nVisibility: %s\n",
		m.settings.TracksPerPlaylist,
		yesNo(m.settings.AvoidDuplicates),
		shared.VisibilityString(m.settings.Public),
	))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render("Generating Playlists")

	events := m.events
	if len(events) > 10 {
		events = events[len(events)-10:]
	}
	if len(events) == 0 {
		return fmt.Sprintf("%s\n\nStarting...", title)
	}
	return fmt.Sprintf("%s\n\n%s", title, strings.Join(events, "\n"))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Generation failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render(fmt.Sprintf("✓ Created %d playlist(s) from %d tracks", len(m.result.Playlists), m.result.PoolSize)))
	b.WriteString("\n\n")
	for _, pl := range m.result.Playlists {
		b.WriteString(fmt.Sprintf("  • %s (%d tracks)\n    %s\n", pl.Name, pl.TrackCount, pl.URL))
	}

	if len(m.result.Skipped) > 0 {
		b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("Skipped %d source(s):", len(m.result.Skipped))) + "\n")
		for _, s := range m.result.Skipped {
			b.WriteString(fmt.Sprintf("  • %s: %v\n", s.Playlist.Name, s.Error))
		}
	}
	if m.result.Failed > 0 {
		b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("%d playlist(s) could not be created", m.result.Failed)) + "\n")
	}

	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
