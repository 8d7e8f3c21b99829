// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"QuakeWatchAPI/internal/config"
	"QuakeWatchAPI/internal/handler"
	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/middleware"
	"QuakeWatchAPI/internal/websocket"

	"github.com/gorilla/mux"
)

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	cfg        *config.Config
	log        *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *Server {
	router := mux.NewRouter()

	server := &Server{
		router: router,
		cfg:    cfg,
		log:    log,
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}

	return server
}

func (s *Server) RegisterHandlers(
	zoneHandler *handler.ZoneHandler,
	eventHandler *handler.EventHandler,
	alertHandler *handler.AlertHandler,
	settingsHandler *handler.SettingsHandler,
	aiHandler *handler.AIHandler,
	reportHandler *handler.ReportHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
	hub *websocket.Hub,
) {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.Use(middleware.RequestLogger(s.log))
	api.Use(middleware.CORS(s.cfg.Security.CORSAllowedOrigins, s.cfg.Security.CORSAllowedMethods))
	api.Use(middleware.Recovery(s.log))

	if s.cfg.Security.EnableRateLimit {
		api.Use(middleware.RateLimit(s.cfg.Security.RateLimitPerMinute))
	}

	// Mutating routes hang off a second subrouter that additionally checks
	// the admin bearer token.
	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.Auth(s.cfg.Security.JWTSecret, s.log))

	authHandler.RegisterRoutes(api)
	zoneHandler.RegisterRoutes(api, admin)
	eventHandler.RegisterRoutes(api, admin)
	alertHandler.RegisterRoutes(api, admin)
	settingsHandler.RegisterRoutes(api, admin)
	aiHandler.RegisterRoutes(admin)
	reportHandler.RegisterRoutes(api)
	healthHandler.RegisterRoutes(s.router)

	s.router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(hub, w, r, s.log)
	})

	s.log.Info("All handlers registered")
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}
