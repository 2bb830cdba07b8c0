// Package web serves the browser front-end: an embedded dashboard page and a JSON API over the
// same rankings merger and generator the CLI uses.
//
// Every browser gets its own [session.Session], keyed by the mixtape_session cookie. Public reads
// run app-scoped; /generate and /user/playlists need a user who logged in through /login.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/server"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/oauth2"
)

// SessionCookie names the cookie holding the browser's session ID.
const SessionCookie = "mixtape_session"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Authenticator starts and completes the user OAuth flow. [services.SpotifyAuth] implements it.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// Options holds the collaborators of an [App].
type Options struct {
	Auth      Authenticator // nil when no application credentials are configured
	Sessions  *session.Store
	Merger    *tasks.RankingsMerger
	Generator *tasks.Generator
	Defaults  shared.GeneratorConfig
	Logger    *log.Logger

	AllowedOrigins []string
	SecureCookies  bool
}

// App is the web front-end's [http.Handler].
type App struct {
	router    *chi.Mux
	auth      Authenticator
	sessions  *session.Store
	merger    *tasks.RankingsMerger
	generator *tasks.Generator
	defaults  shared.GeneratorConfig
	logger    *log.Logger
	secure    bool
}

// New creates an App with all routes configured.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(nil, nil)
	}
	generator := opts.Generator
	if generator == nil {
		generator = tasks.NewGenerator(logger)
	}
	merger := opts.Merger
	if merger == nil {
		merger = tasks.NewRankingsMerger(nil, shared.DefaultConfig().Rankings, logger)
	}

	a := &App{
		router:    server.NewRouter(logger),
		auth:      opts.Auth,
		sessions:  sessions,
		merger:    merger,
		generator: generator,
		defaults:  opts.Defaults,
		logger:    logger,
		secure:    opts.SecureCookies,
	}

	a.setupMiddleware(opts.AllowedOrigins)
	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://127.0.0.1:*", "http://localhost:*"}
	}

	a.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	a.router.Use(middleware.Timeout(2 * time.Minute))
	a.router.Use(a.withSession)
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)

	a.router.Get("/login", a.handleLogin)
	a.router.Get("/callback", a.handleCallback)
	a.router.Get("/logout", a.handleLogout)
	a.router.Get("/auth/status", a.handleAuthStatus)

	a.router.Post("/search", a.handleSearch)
	a.router.Post("/suggestions", a.handleSuggestions)
	a.router.Post("/popular", a.handlePopular)
	a.router.Get("/featured", a.handleFeatured)

	a.router.Route("/rankings", func(r chi.Router) {
		r.Get("/keyword/{keyword}", a.handleKeywordRankings)
		r.Get("/playlist/{id}", a.handlePlaylistRankings)
		r.Get("/popular", a.handlePopularRankings)
		r.Get("/country/{code}", a.handleCountryRankings)
		r.Get("/countries", a.handleCountries)
	})

	a.router.Post("/generate", a.handleGenerate)
	a.router.Get("/playlist/{id}/tracks", a.handlePlaylistTracks)
	a.router.Post("/recommendations", a.handleRecommendations)
	a.router.Get("/user/playlists", a.handleUserPlaylists)
}
