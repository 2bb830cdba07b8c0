package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Generate builds the track pool from the source playlists and creates the remixed playlists.
//
// Without --playlist (or with --interactive) the sources and settings are chosen with prompts.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.userCatalog(ctx)
	if err != nil {
		return err
	}

	req := r.generateRequest(cmd)
	if cmd.Bool("interactive") || len(req.Playlists) == 0 {
		if !r.interactive() {
			return fmt.Errorf("%w: pass --playlist when not running in a terminal", shared.ErrMissingArgument)
		}
		if err := r.promptGenerate(ctx, catalog, &req); err != nil {
			return err
		}
	} else {
		req.Playlists = r.nameSources(ctx, catalog, req.Playlists)
	}

	var result *tasks.GenerationResult
	run := func(ctx context.Context) error {
		progress := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progress {
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}()

		var err error
		result, err = r.generator.Generate(ctx, r.session, req, progress)
		close(progress)
		<-done
		return err
	}

	if r.interactive() && !cmd.Bool("json") {
		err = spinner.New().Title("Generating playlists...").Context(ctx).ActionWithErr(run).Run()
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}

	for _, s := range result.Skipped {
		r.logger.Warn("skipped source playlist", "playlist_id", s.Playlist.ID, "error", s.Error)
	}

	return r.render(cmd, result.Playlists, func(f formatter.Format) ([]byte, error) {
		return formatter.Generated(f, result.Playlists, result.PoolSize, req.Public)
	})
}

// generateRequest reads the flags over the configured generator defaults.
func (r *Runner) generateRequest(cmd *cli.Command) models.GenerationRequest {
	defaults := r.config.Generator
	req := models.GenerationRequest{
		NumPlaylists:      defaults.NumPlaylists,
		TracksPerPlaylist: defaults.TracksPerPlaylist,
		AvoidDuplicates:   defaults.AvoidDuplicates,
		Public:            defaults.Public,
		Names:             cmd.StringSlice("name"),
		Description:       strings.TrimSpace(cmd.String("description")),
	}

	if cmd.IsSet("count") {
		req.NumPlaylists = cmd.Int("count")
	}
	if cmd.IsSet("tracks") {
		req.TracksPerPlaylist = cmd.Int("tracks")
	}
	if cmd.Bool("no-dedup") {
		req.AvoidDuplicates = false
	}
	if cmd.Bool("public") {
		req.Public = true
	}

	for _, p := range cmd.StringSlice("playlist") {
		if id := playlistID(p); id != "" {
			req.Playlists = append(req.Playlists, models.PlaylistRef{ID: id})
		}
	}
	return req
}

// nameSources fills in source names so generated names read "Mixed from <name>".
//
// A failed lookup keeps the ID as the name; the generator reports the source when its tracks fail too.
func (r *Runner) nameSources(ctx context.Context, catalog services.Catalog, refs []models.PlaylistRef) []models.PlaylistRef {
	named := make([]models.PlaylistRef, len(refs))
	for i, ref := range refs {
		named[i] = ref
		if ref.Name != "" {
			continue
		}

		detail, err := catalog.PlaylistDetail(ctx, ref.ID)
		if err != nil {
			r.logger.Debug("playlist detail unavailable", "playlist_id", ref.ID, "error", err)
			named[i].Name = ref.ID
			continue
		}
		named[i].Name = detail.Name
	}
	return named
}

// interactive reports whether output goes to a terminal, where prompts and the spinner can draw.
func (r *Runner) interactive() bool {
	f, ok := r.output.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// promptGenerate asks for the sources and settings, starting from req.
func (r *Runner) promptGenerate(ctx context.Context, catalog services.Catalog, req *models.GenerationRequest) error {
	library, err := catalog.UserPlaylists(ctx, 50)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if len(library) == 0 && len(req.Playlists) == 0 {
		return fmt.Errorf("%w: no playlists in your library, pass --playlist", shared.ErrEmptySource)
	}

	names := make(map[string]string, len(library))
	options := make([]huh.Option[string], len(library))
	for i, p := range library {
		names[p.ID] = p.Name
		options[i] = huh.NewOption(fmt.Sprintf("%s (%d tracks)", p.Name, p.TrackCount), p.ID)
	}

	selected := make([]string, 0, len(req.Playlists))
	for _, ref := range req.Playlists {
		selected = append(selected, ref.ID)
	}
	count := strconv.Itoa(req.NumPlaylists)
	tracks := strconv.Itoa(req.TracksPerPlaylist)
	dedup := req.AvoidDuplicates
	public := req.Public
	description := req.Description

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Choose source playlists").
				Height(12).
				Options(options...).
				Value(&selected).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return errors.New("select at least one playlist")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().Title("Playlists to create").Value(&count).Validate(positiveInt),
			huh.NewInput().Title("Tracks per playlist").Value(&tracks).Validate(positiveInt),
			huh.NewConfirm().Title("Avoid duplicate tracks?").Value(&dedup),
			huh.NewConfirm().Title("Make playlists public?").Value(&public),
			huh.NewInput().Title("Description").Placeholder("Auto-generated mix").Value(&description),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("%w: cancelled", shared.ErrInvalidRequest)
		}
		return err
	}

	req.Playlists = req.Playlists[:0]
	for _, id := range selected {
		req.Playlists = append(req.Playlists, models.PlaylistRef{ID: id, Name: names[id]})
	}
	req.Playlists = r.nameSources(ctx, catalog, req.Playlists)
	req.NumPlaylists, _ = strconv.Atoi(strings.TrimSpace(count))
	req.TracksPerPlaylist, _ = strconv.Atoi(strings.TrimSpace(tracks))
	req.AvoidDuplicates = dedup
	req.Public = public
	req.Description = strings.TrimSpace(description)
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("enter a whole number of at least 1")
	}
	return nil
}
