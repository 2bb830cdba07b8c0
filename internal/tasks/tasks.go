// package tasks implements playlist remix operations on top of the catalog and rankings services.
//
// The core abstraction is [Generator], which builds a track pool from source playlists and creates remixed playlists.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/shared"
)

// CatalogSession hands out catalogs gated by capability level. [session.Session] implements it.
type CatalogSession interface {
	Ensure(ctx context.Context, level session.Level) (services.Catalog, error)
	User() *models.User
}

// SkippedSource records a source playlist whose tracks could not be fetched.
type SkippedSource struct {
	Playlist models.PlaylistRef
	Error    error
}

// GenerationResult contains everything produced by one [Generator.Generate] run.
type GenerationResult struct {
	Playlists []models.GeneratedPlaylist // Created playlists, in output order
	PoolSize  int                        // Tracks available after optional dedup
	Skipped   []SkippedSource            // Sources that failed to load
	Failed    int                        // Outputs that could not be created
}

// Generator creates remixed playlists from a set of source playlists.
type Generator struct {
	assembler *Assembler
	newPool   func() *TrackPool
	logger    *log.Logger
}

// GeneratorOption configures a [Generator].
type GeneratorOption func(*Generator)

// WithAssembler overrides the naming/description assembler.
func WithAssembler(a *Assembler) GeneratorOption {
	return func(g *Generator) { g.assembler = a }
}

// WithPoolFactory overrides how the per-run track pool is created.
func WithPoolFactory(fn func() *TrackPool) GeneratorOption {
	return func(g *Generator) { g.newPool = fn }
}

// NewGenerator creates a generator.
func NewGenerator(logger *log.Logger, opts ...GeneratorOption) *Generator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	g := &Generator{
		assembler: NewAssembler(),
		newPool:   NewTrackPool,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (g *Generator) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Generate validates req, builds the track pool, and creates req.NumPlaylists playlists.
//
// A user-scoped session is required before any track is fetched ([shared.ErrAuthRequired]).
// An empty pool fails with [shared.ErrEmptySource]. Sources that fail to load and outputs
// that fail to be created are logged and skipped.
func (g *Generator) Generate(
	ctx context.Context,
	sess CatalogSession,
	req models.GenerationRequest,
	progress chan<- ProgressUpdate,
) (*GenerationResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	catalog, err := sess.Ensure(ctx, session.UserScoped)
	if err != nil {
		return nil, err
	}
	user := sess.User()
	if user == nil {
		return nil, shared.ErrAuthRequired
	}

	result := &GenerationResult{Playlists: []models.GeneratedPlaylist{}}
	pool := g.newPool()

	for i, ref := range req.Playlists {
		g.sendProgress(progress, fetchTracksUpdate(i+1, len(req.Playlists), ref))

		tracks, err := catalog.PlaylistTracks(ctx, ref.ID)
		if err != nil {
			g.logger.Warn("skipping source playlist", "playlist_id", ref.ID, "error", err)
			g.sendProgress(progress, fetchFailedUpdate(i+1, len(req.Playlists), ref, err))
			result.Skipped = append(result.Skipped, SkippedSource{Playlist: ref, Error: err})
			continue
		}

		g.logger.Debug("fetched source tracks", "playlist_id", ref.ID, "tracks", len(tracks))
		pool.Ingest(tracks)
	}

	if req.AvoidDuplicates {
		pool.Deduplicate()
	}
	result.PoolSize = pool.Len()
	g.sendProgress(progress, buildPoolUpdate(pool.Len(), req.AvoidDuplicates))

	if pool.Len() == 0 {
		return nil, shared.ErrEmptySource
	}

	description := g.assembler.DescriptionFor(req.Description)
	for i := range req.NumPlaylists {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := g.assembler.NameAt(req.Playlists, i, req.NumPlaylists, req.Names)
		tracks := pool.Sample(req.TracksPerPlaylist)

		created, err := g.createPlaylist(ctx, catalog, user.ID, name, description, req.Public, tracks)
		if err != nil {
			g.logger.Warn("failed to create playlist", "name", name, "error", err)
			g.sendProgress(progress, skipPlaylistUpdate(i+1, req.NumPlaylists, name, err))
			result.Failed++
			continue
		}

		g.logger.Info("created playlist", "name", created.Name, "id", created.ID, "tracks", created.TrackCount)
		g.sendProgress(progress, createPlaylistUpdate(i+1, req.NumPlaylists, created))
		result.Playlists = append(result.Playlists, *created)
	}

	g.sendProgress(progress, completeUpdate(result))
	return result, nil
}

func (g *Generator) createPlaylist(
	ctx context.Context,
	catalog services.Catalog,
	ownerID, name, description string,
	public bool,
	tracks []models.Track,
) (*models.GeneratedPlaylist, error) {
	created, err := catalog.CreatePlaylist(ctx, ownerID, name, description, public)
	if err != nil {
		return nil, err
	}

	uris := URIs(tracks)
	if err := catalog.AddTracks(ctx, created.ID, uris); err != nil {
		return nil, fmt.Errorf("playlist %s created but adding tracks failed: %w", created.ID, err)
	}

	created.TrackCount = len(uris)
	return created, nil
}
