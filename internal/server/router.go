package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns a chi router with request IDs, request logging and panic recovery installed.
//
// Each [Handler] is mounted for GET on every path from its Routes. Further middleware must be
// added with Use before any other route is registered.
func NewRouter(logger *log.Logger, handlers ...Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(logger))
	r.Use(Recover(logger))

	for _, h := range handlers {
		Mount(r, h)
	}
	return r
}

// Mount registers h for GET on each of its routes.
func Mount(r chi.Router, h Handler) {
	for _, route := range h.Routes() {
		r.Method(http.MethodGet, route, h)
	}
}
