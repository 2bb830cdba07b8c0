package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Authenticator builds catalogs for both session levels and runs the OAuth exchange.
// [services.SpotifyAuth] implements it.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	AppCatalog(ctx context.Context) (services.Catalog, error)
	UserCatalog(ctx context.Context, token *oauth2.Token) services.Catalog
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	loaded     bool
	auth       Authenticator
	webAuth    Authenticator
	authOpts   []services.AuthOption
	rankings   services.RankingsProvider
	session    *session.Session
	merger     *tasks.RankingsMerger
	generator  *tasks.Generator
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A non-nil Config marks the runner as loaded: [Runner.Before] will not resolve the config file
// and Auth/Rankings are used as given.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Auth       Authenticator
	Rankings   services.RankingsProvider
	Logger     *log.Logger
	Output     io.Writer

	// WebAuth serves browser sessions. It defaults to Auth when Auth is injected.
	WebAuth Authenticator
	// AuthOptions are applied to every authenticator built from the loaded config.
	AuthOptions []services.AuthOption
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loaded := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		loaded:     loaded,
		auth:       opts.Auth,
		webAuth:    opts.WebAuth,
		authOpts:   opts.AuthOptions,
		rankings:   opts.Rankings,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if r.webAuth == nil && opts.Auth != nil {
		r.webAuth = opts.Auth
	}
	r.rebuild()
	return r
}

// Before resolves the config file, .env and environment, then builds the service clients.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if r.loaded {
		return ctx, nil
	}

	path := cmd.String("config")
	config, err := shared.ResolveConfig(path)
	if err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	r.loaded = true
	r.wire()
	return ctx, nil
}

// wire builds the catalog authenticator and rankings client from the loaded config.
//
// Either may stay nil: commands that need them report the missing credentials.
// Browser sessions get their own authenticator so their tokens never reach the config file.
func (r *Runner) wire() {
	r.auth = nil
	r.webAuth = nil
	r.rankings = nil

	if cfg := r.config.Credentials.Spotify; cfg.Valid() {
		opts := append([]services.AuthOption{services.WithTokenCallback(r.onTokenRefresh)}, r.authOpts...)
		auth, err := services.NewSpotifyAuth(cfg, opts...)
		if err != nil {
			r.logger.Warn("spotify credentials rejected", "error", err)
		} else {
			r.auth = auth
		}

		if visitor, err := services.NewSpotifyAuth(cfg, r.authOpts...); err == nil {
			r.webAuth = visitor
		}
	} else {
		r.logger.Debug("spotify credentials not configured")
	}

	if provider, err := services.NewRankingsService(r.config.Credentials.Rankings); err != nil {
		r.logger.Debug("rankings provider disabled", "error", err)
	} else {
		r.rankings = provider
	}

	r.rebuild()
}

func (r *Runner) rebuild() {
	var app session.AppFactory
	var user session.UserFactory
	if r.auth != nil {
		app = r.auth.AppCatalog
		user = r.auth.UserCatalog
	}

	r.session = session.New("cli", app, user)
	r.merger = tasks.NewRankingsMerger(r.rankings, r.config.Rankings, r.logger)
	r.generator = tasks.NewGenerator(r.logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, rankingsCommand, playlistsCommand,
		tracksCommand, recommendCommand, generateCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// appCatalog returns a catalog holding at least application credentials.
func (r *Runner) appCatalog(ctx context.Context) (services.Catalog, error) {
	if r.auth == nil {
		return nil, r.missingSpotify()
	}
	return r.session.Ensure(ctx, session.AppScoped)
}

// userCatalog upgrades the session with the stored token when needed.
func (r *Runner) userCatalog(ctx context.Context) (services.Catalog, error) {
	if r.auth == nil {
		return nil, r.missingSpotify()
	}
	if r.session.Level() == session.UserScoped {
		return r.session.Ensure(ctx, session.UserScoped)
	}

	token := r.config.Credentials.Spotify.Token()
	if token == nil {
		return nil, fmt.Errorf("%w: run 'mixtape auth login'", shared.ErrAuthRequired)
	}
	if _, err := r.session.Authorize(ctx, token); err != nil {
		return nil, fmt.Errorf("%w: stored token rejected, run 'mixtape auth login' (%v)", shared.ErrAuthRequired, err)
	}
	return r.session.Ensure(ctx, session.UserScoped)
}

func (r *Runner) missingSpotify() error {
	return fmt.Errorf("%w: set credentials.spotify client_id and client_secret in %s or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET",
		shared.ErrMissingCredentials, r.configName())
}

func (r *Runner) configName() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

// saveTokens stores token in the config and persists it when a config path is known.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) onTokenRefresh(token *oauth2.Token) {
	if err := r.saveTokens(token); err != nil {
		r.logger.Warn("failed to persist refreshed token", "error", err)
		return
	}
	r.logger.Debug("persisted refreshed token", "expiry", token.Expiry)
}

// SetLogger replaces the logger used by the runner and the components it builds.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.merger = tasks.NewRankingsMerger(r.rankings, r.config.Rankings, r.logger)
	r.generator = tasks.NewGenerator(r.logger)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// render writes data as JSON when --json is set, otherwise through fn in the --format encoding,
// to --output when given.
func (r *Runner) render(cmd *cli.Command, data any, fn func(formatter.Format) ([]byte, error)) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	out, err := fn(format)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteFile(path, format, out)
		if err != nil {
			return err
		}
		r.logger.Info("output written", "path", written)
		return r.writePlain("✓ Saved to %s\n", written)
	}

	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
