package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"go.hackfix.me/prefsync/web/server/types"
)

// PrefGet returns the current value of a preference.
func (h *Handler) PrefGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		_ = render.Render(w, r, types.ErrBadRequest(errors.New("key not provided")))
		return
	}

	val, ok := h.appCtx.Prefs.Value(key)
	if !ok {
		_ = render.Render(w, r, types.ErrNotFound(
			fmt.Errorf("preference '%s' is not declared", key)))
		return
	}
	typ, _ := h.appCtx.Prefs.Type(key)

	_ = render.Render(w, r, &types.PrefValueResponse{
		Response: &types.Response{StatusCode: http.StatusOK},
		Key:      key,
		Type:     typ.String(),
		Value:    val,
	})
}

// PrefSet sets the value of a preference.
func (h *Handler) PrefSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		_ = render.Render(w, r, types.ErrBadRequest(errors.New("key not provided")))
		return
	}

	req := &types.PrefSetRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		_ = render.Render(w, r, types.ErrBadRequest(err))
		return
	}

	if err := h.appCtx.Prefs.SetValue(key, req.Value); err != nil {
		_ = render.Render(w, r, types.ErrBadRequest(err))
		return
	}

	_ = render.Render(w, r, &types.Response{StatusCode: http.StatusOK})
}

// PrefKeys returns all declared preferences, their types and current
// values.
func (h *Handler) PrefKeys(w http.ResponseWriter, r *http.Request) {
	resp := &types.PrefKeysResponse{
		Response: &types.Response{StatusCode: http.StatusOK},
		Data:     []types.PrefInfo{},
	}

	for _, key := range h.appCtx.Prefs.Keys() {
		typ, _ := h.appCtx.Prefs.Type(key)
		val, _ := h.appCtx.Prefs.Value(key)
		resp.Data = append(resp.Data, types.PrefInfo{
			Key:   key,
			Type:  typ.String(),
			Value: val,
		})
	}

	_ = render.Render(w, r, resp)
}
