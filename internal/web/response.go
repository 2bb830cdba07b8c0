package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/shared"
)

const (
	msgCredentials = "Spotify credentials not configured"
	msgLogin       = "Please login to your Spotify account first. Go to /login to authenticate."
	msgNoTracks    = "No tracks found in selected playlists"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any, logger *log.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, status int, message string, logger *log.Logger) {
	writeJSON(w, status, errorBody{Error: message}, logger)
}

// handleError maps err onto a status code and message. Unknown errors become 500.
func handleError(w http.ResponseWriter, err error, logger *log.Logger) {
	switch {
	case errors.Is(err, shared.ErrAuthRequired), errors.Is(err, shared.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, msgLogin, logger)
	case errors.Is(err, shared.ErrEmptySource):
		writeError(w, http.StatusBadRequest, msgNoTracks, logger)
	case errors.Is(err, shared.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error(), logger)
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, err.Error(), logger)
	case errors.Is(err, shared.ErrMissingCredentials):
		writeError(w, http.StatusInternalServerError, msgCredentials, logger)
	default:
		logger.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), logger)
	}
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidRequest, err)
	}
	return nil
}
