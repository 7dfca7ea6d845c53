// Package api implements v1 of the preference web API.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	actx "go.hackfix.me/prefsync/app/context"
)

// Handler is the API endpoint handler.
type Handler struct {
	appCtx *actx.Context
}

// Router returns the API router.
func Router(appCtx *actx.Context) chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))
	// Preference values are small; limit request sizes to 1MB.
	r.Use(middleware.RequestSize(1 << 20))

	h := Handler{appCtx}
	r.Get("/prefs/keys", h.PrefKeys)
	r.Get("/prefs/value/{key}", h.PrefGet)
	r.Post("/prefs/value/{key}", h.PrefSet)

	return r
}
