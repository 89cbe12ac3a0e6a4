package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/gameplanhq/gameplan/internal/history"
	"github.com/gameplanhq/gameplan/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(store storage.Provider, db *history.DB, authEnabled bool, token string) chi.Router {
	h := NewHandler(store, db)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/items", h.ListItems)
	r.Get("/items/{adapter}/{id}", h.GetItem)
	r.Get("/agenda", h.GetAgenda)

	return r
}
