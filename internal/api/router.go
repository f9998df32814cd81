package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// corpusRoot is used to resolve the static assets directory.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler, corpusRoot string) chi.Router {
	h := NewHandler(svc)
	assets := NewAssetHandler(corpusRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Articles (read-only).
	r.Get("/articles", h.ListArticles)
	r.Get("/articles/{slug}", h.GetArticle)
	r.Get("/dataset", h.Dataset)

	// Link integrity.
	r.Get("/graph", h.Graph)
	r.Get("/report", h.Report)
	r.Get("/backlinks/{slug}", h.Backlinks)

	// Search.
	r.Get("/search", h.Search)

	// Static corpus assets (author images and the like).
	r.Get("/assets/{filename}", assets.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
