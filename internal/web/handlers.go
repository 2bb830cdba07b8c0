package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/go-chi/chi/v5"
)

const (
	suggestionLimit   = 8
	popularLimit      = 20
	featuredLimit     = 12
	libraryLimit      = 50
	recommendLimit    = 20
	minSuggestionChar = 2
)

type playlistsBody struct {
	Playlists []models.PlaylistSummary `json:"playlists"`
	Error     string                   `json:"error,omitempty"`
}

func listBody(playlists []models.PlaylistSummary) playlistsBody {
	if playlists == nil {
		playlists = []models.PlaylistSummary{}
	}
	return playlistsBody{Playlists: playlists}
}

type indexData struct {
	Authenticated bool
	UserName      string
	Countries     []models.Country
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data := indexData{Countries: models.Countries}
	if user := sess.User(); user != nil {
		data.Authenticated = true
		data.UserName = user.DisplayName
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "index.html", data); err != nil {
		a.logger.Error("failed to render index", "error", err)
	}
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if a.auth == nil {
		writeError(w, http.StatusInternalServerError, msgCredentials, a.logger)
		return
	}

	sess := sessionFrom(r.Context())
	if sess.Level() == session.UserScoped {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	state, err := sess.BeginLogin()
	if err != nil {
		handleError(w, err, a.logger)
		return
	}
	http.Redirect(w, r, a.auth.AuthURL(state), http.StatusFound)
}

func (a *App) handleCallback(w http.ResponseWriter, r *http.Request) {
	if a.auth == nil {
		writeError(w, http.StatusInternalServerError, msgCredentials, a.logger)
		return
	}

	sess := sessionFrom(r.Context())
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "No authorization code received", a.logger)
		return
	}
	if !sess.VerifyState(query.Get("state")) {
		writeError(w, http.StatusBadRequest, "Invalid state parameter", a.logger)
		return
	}

	token, err := a.auth.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Warn("token exchange failed", "session", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed", a.logger)
		return
	}

	user, err := sess.Authorize(r.Context(), token)
	if err != nil {
		a.logger.Warn("authorization failed", "session", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed", a.logger)
		return
	}

	a.logger.Info("user logged in", "session", sess.ID, "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Logout()
	a.sessions.Delete(sess.ID)
	a.clearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *App) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Authenticated bool    `json:"authenticated"`
		UserID        *string `json:"user_id"`
		UserName      *string `json:"user_name"`
	}{}

	if user := sessionFrom(r.Context()).User(); user != nil {
		body.Authenticated = true
		body.UserID = &user.ID
		body.UserName = &user.DisplayName
	}
	writeJSON(w, http.StatusOK, body, a.logger)
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query   string `json:"query"`
		Country string `json:"country"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err, a.logger)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "Please enter a search term", a.logger)
		return
	}

	catalog, err := sessionFrom(r.Context()).Ensure(r.Context(), session.AppScoped)
	if err != nil {
		handleError(w, err, a.logger)
		return
	}

	results, err := a.merger.SearchWithCountry(r.Context(), catalog, query, strings.TrimSpace(req.Country))
	if err != nil {
		a.logger.Warn("search failed", "query", query, "error", err)
		writeJSON(w, http.StatusOK, playlistsBody{Playlists: []models.PlaylistSummary{}, Error: "Search failed, please try again"}, a.logger)
		return
	}
	writeJSON(w, http.StatusOK, listBody(results), a.logger)
}

func (a *App) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err, a.logger)
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) < minSuggestionChar {
		writeJSON(w, http.StatusOK, playlistsBody{Playlists: []models.PlaylistSummary{}}, a.logger)
		return
	}

	a.search(w, r, `"`+query+`"`, suggestionLimit, false)
}

func (a *App) handlePopular(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Genre string `json:"genre"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err, a.logger)
		return
	}

	genre := strings.TrimSpace(req.Genre)
	if genre == "" {
		writeError(w, http.StatusBadRequest, "Please enter a genre", a.logger)
		return
	}

	a.search(w, r, genre, popularLimit, false)
}

func (a *App) handleFeatured(w http.ResponseWriter, r *http.Request) {
	a.search(w, r, "popular", featuredLimit, true)
}

// search runs a plain catalog search. With soft set, any failure yields an empty list.
func (a *App) search(w http.ResponseWriter, r *http.Request, query string, limit int, soft bool) {
	fail := func(err error) {
		if soft {
			a.logger.Warn("search failed", "query", query, "error", err)
			writeJSON(w, http.StatusOK, playlistsBody{Playlists: []models.PlaylistSummary{}}, a.logger)
			return
		}
		handleError(w, err, a.logger)
	}

	catalog, err := sessionFrom(r.Context()).Ensure(r.Context(), session.AppScoped)
	if err != nil {
		fail(err)
		return
	}

	results, err := catalog.SearchPlaylists(r.Context(), query, limit)
	if err != nil {
		fail(err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(tasks.Enrich(results)), a.logger)
}

func (a *App) handleKeywordRankings(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	flat, lookup := a.merger.KeywordRankings(r.Context(), keyword)
	if lookup.Err != nil {
		a.logger.Debug("keyword rankings empty", "keyword", keyword, "error", lookup.Err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"rankings": flat}, a.logger)
}

func (a *App) handlePlaylistRankings(w http.ResponseWriter, r *http.Request) {
	raw := a.merger.PlaylistRankings(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{"rankings": raw}, a.logger)
}

func (a *App) handlePopularRankings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rankings": a.merger.Popular(r.Context())}, a.logger)
}

func (a *App) handleCountryRankings(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	catalog, err := sessionFrom(r.Context()).Ensure(r.Context(), session.AppScoped)
	if err != nil {
		a.logger.Warn("country rankings unavailable", "country", code, "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"rankings": []models.PlaylistSummary{}}, a.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rankings": a.merger.CountryRankings(r.Context(), catalog, code)}, a.logger)
}

func (a *App) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"countries": models.Countries}, a.logger)
}

// generateRequest mirrors [models.GenerationRequest] with optional fields so absent values take the configured defaults.
type generateRequest struct {
	Playlists         []models.PlaylistRef `json:"playlists"`
	NumPlaylists      *int                 `json:"num_playlists"`
	TracksPerPlaylist *int                 `json:"tracks_per_playlist"`
	AvoidDuplicates   *bool                `json:"avoid_duplicates"`
	Names             []string             `json:"playlist_names"`
	Description       string               `json:"playlist_description"`
}

func (g generateRequest) resolve(defaults models.GenerationRequest) models.GenerationRequest {
	req := defaults
	req.Playlists = g.Playlists
	req.Names = g.Names
	req.Description = strings.TrimSpace(g.Description)
	if g.NumPlaylists != nil {
		req.NumPlaylists = *g.NumPlaylists
	}
	if g.TracksPerPlaylist != nil {
		req.TracksPerPlaylist = *g.TracksPerPlaylist
	}
	if g.AvoidDuplicates != nil {
		req.AvoidDuplicates = *g.AvoidDuplicates
	}
	return req
}

func (a *App) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, err, a.logger)
		return
	}

	req := body.resolve(models.GenerationRequest{
		NumPlaylists:      a.defaults.NumPlaylists,
		TracksPerPlaylist: a.defaults.TracksPerPlaylist,
		AvoidDuplicates:   a.defaults.AvoidDuplicates,
		Public:            a.defaults.Public,
	})

	result, err := a.generator.Generate(r.Context(), sessionFrom(r.Context()), req, nil)
	if err != nil {
		var verr *tasks.ValidationError
		if errors.As(err, &verr) {
			if _, ok := verr.Fields["playlists"]; ok {
				writeError(w, http.StatusBadRequest, "Please select at least one playlist", a.logger)
				return
			}
		}
		handleError(w, err, a.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"playlists": result.Playlists}, a.logger)
}

func (a *App) handlePlaylistTracks(w http.ResponseWriter, r *http.Request) {
	catalog, err := sessionFrom(r.Context()).Ensure(r.Context(), session.AppScoped)
	if err != nil {
		handleError(w, err, a.logger)
		return
	}

	tracks, err := catalog.PlaylistTracks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err, a.logger)
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks}, a.logger)
}

func (a *App) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tracks []string `json:"tracks"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err, a.logger)
		return
	}
	if len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "Please provide seed tracks", a.logger)
		return
	}

	catalog, err := sessionFrom(r.Context()).Ensure(r.Context(), session.AppScoped)
	if err != nil {
		handleError(w, err, a.logger)
		return
	}

	tracks, err := catalog.Recommendations(r.Context(), req.Tracks, recommendLimit)
	if err != nil {
		handleError(w, err, a.logger)
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": tracks}, a.logger)
}

func (a *App) handleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	catalog, err := sessionFrom(r.Context()).Ensure(r.Context(), session.UserScoped)
	if err != nil {
		handleError(w, err, a.logger)
		return
	}

	playlists, err := catalog.UserPlaylists(r.Context(), libraryLimit)
	if err != nil {
		handleError(w, err, a.logger)
		return
	}
	writeJSON(w, http.StatusOK, listBody(tasks.Enrich(playlists)), a.logger)
}
