// Package api exposes slideshow navigation over HTTP and a websocket stream.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bnema/mmwall/internal/application"
	"github.com/bnema/mmwall/internal/version"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Slideshow is the part of the slideshow service the API drives.
type Slideshow interface {
	Next(ctx context.Context) (application.Result, error)
	Previous(ctx context.Context) (application.Result, error)
	Refresh(ctx context.Context) (application.RefreshResult, error)
	Status(ctx context.Context) (application.Status, error)
	Subscribe() chan application.Result
	Unsubscribe(ch chan application.Result)
}

type Options struct {
	// Rate is the sustained number of next/previous presses per second.
	// Zero disables limiting.
	Rate  float64
	Burst int
}

type Server struct {
	router    *mux.Router
	slideshow Slideshow
	limiter   *rate.Limiter
	upgrader  websocket.Upgrader
	log       zerolog.Logger
}

func NewServer(slideshow Slideshow, log zerolog.Logger, opts Options) *Server {
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		router:    mux.NewRouter(),
		slideshow: slideshow,
		limiter:   rate.NewLimiter(limit, burst),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.Handle("/next", s.limited(s.handleNext)).Methods(http.MethodPost)
	api.Handle("/previous", s.limited(s.handlePrevious)).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/stream", s.handleStream)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, listener)
}

func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", listener.Addr().String()).Msg("control API listening")
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) limited(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.slideshow.Status(r.Context())
	if err != nil {
		s.fail(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(status))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	result, err := s.slideshow.Next(r.Context())
	if err != nil {
		s.fail(w, "next", err)
		return
	}
	writeJSON(w, http.StatusOK, toSelectionResponse(result))
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	result, err := s.slideshow.Previous(r.Context())
	if err != nil {
		s.fail(w, "previous", err)
		return
	}
	writeJSON(w, http.StatusOK, toSelectionResponse(result))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.slideshow.Refresh(r.Context())
	if err != nil {
		s.fail(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Received: result.Received, Accepted: result.Accepted, Changed: result.Changed})
}

// handleStream pushes the current image and then every new selection.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.slideshow.Subscribe()
	defer s.slideshow.Unsubscribe(updates)

	if status, err := s.slideshow.Status(r.Context()); err == nil && !status.Current.Empty() {
		if err := s.write(conn, status.Current); err != nil {
			return
		}
	}

	// the read loop only notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case result, ok := <-updates:
			if !ok {
				return
			}
			if err := s.write(conn, result); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, result application.Result) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(toSelectionResponse(result)); err != nil {
		s.log.Debug().Err(err).Msg("websocket write failed")
		return err
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, operation string, err error) {
	s.log.Error().Err(err).Str("operation", operation).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
