// Package types defines the request and response types of the web API.
package types

import (
	"net/http"

	"github.com/go-chi/render"
)

// Response is the common part of all API responses.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Render implements render.Renderer.
func (e *Response) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	if e.Status == "" {
		e.Status = http.StatusText(e.StatusCode)
	}
	return nil
}

// ErrBadRequest returns a 400 response renderer.
func ErrBadRequest(err error) render.Renderer {
	return &Response{
		StatusCode: http.StatusBadRequest,
		Error:      err.Error(),
	}
}

// ErrNotFound returns a 404 response renderer.
func ErrNotFound(err error) render.Renderer {
	return &Response{
		StatusCode: http.StatusNotFound,
		Error:      err.Error(),
	}
}

// PrefSetRequest is the body of a preference write.
type PrefSetRequest struct {
	Value string `json:"value"`
}

// PrefValueResponse carries one preference and its current value.
type PrefValueResponse struct {
	*Response
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// PrefInfo describes one declared preference.
type PrefInfo struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// PrefKeysResponse lists all declared preferences.
type PrefKeysResponse struct {
	*Response
	Data []PrefInfo `json:"prefs"`
}
