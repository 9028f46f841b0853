// Package api serves the read API and management endpoints over HTTP,
// plus the websocket feed of pass summaries.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmesh/internal/config"
	"github.com/yourusername/oddsmesh/internal/provider"
	"github.com/yourusername/oddsmesh/internal/service"
)

// Server hosts the HTTP API.
type Server struct {
	query    *service.Query
	registry *provider.Registry
	hub      *Hub
	logger   *logrus.Entry
	http     *http.Server
}

// NewServer wires the API routes and returns an unstarted server.
func NewServer(cfg config.APIConfig, query *service.Query, registry *provider.Registry, hub *Hub, logger *logrus.Entry) *Server {
	s := &Server{
		query:    query,
		registry: registry,
		hub:      hub,
		logger:   logger,
	}

	router := mux.NewRouter()

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/sports", s.handleGetSports).Methods(http.MethodGet)
	apiRouter.HandleFunc("/events", s.handleGetEvents).Methods(http.MethodGet)
	apiRouter.HandleFunc("/events/{id}", s.handleGetEvent).Methods(http.MethodGet)
	apiRouter.HandleFunc("/live", s.handleGetLive).Methods(http.MethodGet)
	apiRouter.HandleFunc("/providers", s.handleGetProviders).Methods(http.MethodGet)
	apiRouter.HandleFunc("/providers/{id}/toggle", s.handleToggleProvider).Methods(http.MethodPost)
	apiRouter.HandleFunc("/providers/{id}/weight", s.handleSetWeight).Methods(http.MethodPut)
	apiRouter.HandleFunc("/status", s.handleGetStatus).Methods(http.MethodGet)

	router.HandleFunc("/ws", hub.ServeWS)

	router.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start runs the hub and serves HTTP until Stop is called. It blocks.
func (s *Server) Start() error {
	go s.hub.Run()

	if s.logger != nil {
		s.logger.WithField("addr", s.http.Addr).Info("API server listening")
	}

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and closes the hub.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("Request handled")
		}
	})
}
