// Package rest exposes the portal services over HTTP with JSON bodies.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/services"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the handlers call into.
type Services struct {
	Contents *services.ContentService
	Contacts *services.ContactService
	Auth     *services.AuthService
	Images   *services.ImageService
	SEO      *services.SEOService
	Store    Pinger
}

type HTTPServer struct {
	address         string
	logger          logging.Logger
	svc             Services
	maxUploadSize   int64
	shutdownTimeout time.Duration
}

func NewHTTPServer(address string, l logging.Logger, svc Services, maxUploadSize int64, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         address,
		logger:          l.With("module", "http_server"),
		svc:             svc,
		maxUploadSize:   maxUploadSize,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully. It returns
// only after every handler has returned. Handlers still running when the
// shutdown timeout passes have their connections closed, which cancels
// their request contexts, and are then waited for.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen, s.Handler())
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener, h http.Handler) error {
	var handlers sync.WaitGroup

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.Add(1)
			defer handlers.Done()
			h.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			s.logger.Warn(ctx, "HTTP shutdown timed out, closing connections", "timeout", s.shutdownTimeout.String(), "error", err)
			_ = srv.Close()
		}
		handlers.Wait()
		stopped <- err
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
