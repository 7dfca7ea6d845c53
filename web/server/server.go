// Package server implements the HTTP server exposing the preference facade
// of a running prefsync process. Writes made through the API go through the
// facade, so listeners fire exactly as they do for local sets.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	actx "go.hackfix.me/prefsync/app/context"
	apiv1 "go.hackfix.me/prefsync/web/server/api/v1"
)

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	appCtx *actx.Context
}

// New returns a new Server instance.
func New(appCtx *actx.Context, addr string) *Server {
	return &Server{
		appCtx: appCtx,
		Server: &http.Server{
			Handler:           setupRouter(appCtx),
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      time.Minute,
		},
	}
}

// ListenAndServe is a replacement of http.ListenAndServe to ensure we set
// the correct server address to be used in URLs. This is needed when
// starting the server with address ':0'. The server shuts down when the
// application context is canceled.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}

	s.Addr = ln.Addr().String()
	s.appCtx.Logger.Info("started web server", "address", s.Addr)

	go func() {
		<-s.appCtx.Ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	if err := s.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func setupRouter(appCtx *actx.Context) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger(appCtx.Logger))
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.Recoverer)

	r.Mount("/api/v1", apiv1.Router(appCtx))

	return r
}
