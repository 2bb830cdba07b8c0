package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive remix flow: pick sources from the library or a search, tune the
// settings, and generate.
//
// Logs go to --log-file while the alternate screen is active.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.userCatalog(ctx); err != nil {
		return err
	}

	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	previous := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(previous)

	model := ui.NewModel(ctx, r.session, r.merger, r.generator, r.config.Generator)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if res := model.Result(); res != nil {
		previous.Info("generation finished", "created", len(res.Playlists), "pool", res.PoolSize)
	}
	return nil
}
