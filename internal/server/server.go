// Package server exposes a store to clients that render it elsewhere: the current
// state over HTTP, state streaming and actions over a WebSocket, and the store
// metrics for Prometheus.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/store"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Source is the part of a store the server needs.
type Source[S, A any] interface {
	State() S
	SendContext(ctx context.Context, action A) error
	Subscribe(ctx context.Context) <-chan S
}

// Decoder turns an action name sent by a client into an action. Its errors are the
// client's fault.
type Decoder[A any] func(name string) (A, error)

// ActionRequest is the body of POST /actions and of every WebSocket message.
type ActionRequest struct {
	Action string `json:"action"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server[S, A any] struct {
	source   Source[S, A]
	decode   Decoder[A]
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
	router   chi.Router
}

// New routes requests to source. A nil gatherer leaves /metrics unrouted.
func New[S, A any](source Source[S, A], decode Decoder[A], logger *zap.Logger, gatherer prometheus.Gatherer) *Server[S, A] {
	s := &Server[S, A]{
		source:   source,
		decode:   decode,
		logger:   logger,
		gatherer: gatherer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/state", s.handleState)
	r.Post("/actions", s.handleAction)
	r.Get("/ws", s.handleWebSocket)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

func (s *Server[S, A]) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server[S, A]) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("view server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server[S, A]) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.source.State())
}

func (s *Server[S, A]) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	action, err := s.decode(req.Action)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.source.SendContext(r.Context(), action); err != nil {
		s.writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, s.source.State())
}

// handleWebSocket writes the state on connect and after every change. Messages from
// the client are ActionRequests.
func (s *Server[S, A]) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			var req ActionRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			action, err := s.decode(req.Action)
			if err != nil {
				s.logger.Info("ignoring websocket action", zap.String("action", req.Action), zap.Error(err))
				continue
			}
			if err := s.source.SendContext(ctx, action); err != nil {
				return
			}
		}
	}()

	for state := range s.source.Subscribe(ctx) {
		if err := s.writeMessage(conn, state); err != nil {
			s.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

func (s *Server[S, A]) writeMessage(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func (s *Server[S, A]) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", zap.Error(err))
	}
}

func (s *Server[S, A]) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
