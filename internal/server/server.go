package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/selivandex/news-relay/internal/adapters/config"
	"github.com/selivandex/news-relay/internal/relay"
	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/models"
)

// Server exposes the relay over HTTP
type Server struct {
	server *http.Server
	relay  *relay.Service
}

// New creates new API server
func New(cfg *config.ServerConfig, relaySvc *relay.Service) *Server {
	s := &Server{relay: relaySvc}

	router := mux.NewRouter()
	router.Use(ClientIPMiddleware)
	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/news", s.handleNews).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(handleNotFound)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	logger.Info("API server starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "news-relay")
}

// handleNews decodes a filter payload over the defaults and serves a lookup
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	payload := models.DefaultQueryPayload()

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "malformed request payload",
		})
		return
	}

	clientIP := ClientIP(r.Context())

	resp, err := s.relay.GetNews(r.Context(), payload, clientIP)
	if err != nil {
		logger.Error("news lookup failed",
			zap.String("client_ip", clientIP),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "news lookup failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": fmt.Sprintf("route not found: %s %s", r.Method, r.URL.Path),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
