// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one remix run:
//  1. [SourceView] : Browse the library or search, and mark source playlists
//  2. [SettingsView] : Adjust output count, tracks per playlist, dedup and visibility
//  3. [ConfirmView] : Review the run before anything is created
//  4. [GenerateView] : Monitor real-time progress updates
//  5. [ResultView] : Display created playlists and skipped sources
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.Generator], providing non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
