package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crescendo/internal/auth"
	"crescendo/internal/charts"
	"crescendo/internal/config"
	"crescendo/internal/database"
	"crescendo/internal/tunnel"

	"github.com/sirupsen/logrus"
)

// AlbumServer represents the main album sharing server
type AlbumServer struct {
	db          *database.Database
	config      *config.Config
	charts      *charts.Service
	authService *auth.Service
	tunnel      *tunnel.Service
	logger      *logrus.Logger
}

// NewAlbumServer creates a new album server instance
func NewAlbumServer(cfg *config.Config, db *database.Database) (*AlbumServer, error) {
	logger := logrus.New()
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	authService, err := auth.NewService(&cfg.Auth, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	// Create tunnel service
	tunnelSvc, err := tunnel.NewService(&cfg.Tunnel)
	if err != nil {
		logger.WithError(err).Warn("Tunnel service not available")
		tunnelSvc = nil
	}

	server := &AlbumServer{
		db:          db,
		config:      cfg,
		charts:      charts.NewService(db),
		authService: authService,
		tunnel:      tunnelSvc,
		logger:      logger,
	}

	return server, nil
}

// Start starts the album server
func (as *AlbumServer) Start() error {
	handler := as.Handler()

	localAddress := fmt.Sprintf("http://%s", as.config.GetAddress())
	as.logger.WithField("port", as.config.Server.Port).Info("Crescendo server starting")
	as.logger.WithField("address", localAddress).Info("Local access")

	// Start tunnel if enabled
	if as.tunnel != nil {
		ctx := context.Background()
		if err := as.tunnel.Start(ctx, localAddress); err != nil {
			as.logger.WithError(err).Warn("Could not start public tunnel")
		} else {
			defer as.tunnel.Stop()
		}
	}

	// Create server with timeout
	server := &http.Server{
		Addr:        as.config.GetAddress(),
		Handler:     handler,
		ReadTimeout: time.Duration(as.config.Server.ReadTimeout) * time.Second,
	}

	return server.ListenAndServe()
}

// Handler builds the full route table wrapped in the middleware chain.
func (as *AlbumServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", as.handleHealthCheck)

	// Auth routes
	mux.HandleFunc("/api/auth/register", as.handleRegister)
	mux.HandleFunc("/api/auth/login", as.handleLogin)
	mux.HandleFunc("/api/auth/logout", as.handleLogout)
	mux.HandleFunc("/api/auth/me", as.handleCurrentUser)

	// Album routes
	mux.HandleFunc("/api/albums", as.handleAlbums)
	mux.HandleFunc("/api/albums/", as.handleAlbumSubtree)

	// Comment owner responses
	mux.HandleFunc("/api/comments/", as.handleCommentSubtree)

	// Chart routes
	mux.HandleFunc("/api/charts/albums/top", as.handleTopAlbums)
	mux.HandleFunc("/api/charts/albums/week", as.handleTopAlbumsWeek)
	mux.HandleFunc("/api/charts/albums/latest", as.handleLatestAlbums)
	mux.HandleFunc("/api/charts/users/week", as.handleTopUsersWeek)
	mux.HandleFunc("/api/charts/users/top", as.handleTopUsers)

	// User routes
	mux.HandleFunc("/api/users/", as.handleUserSubtree)

	var handler http.Handler = mux
	handler = as.authMiddleware(handler)
	handler = as.corsMiddleware(handler)
	handler = as.requestLoggingMiddleware(handler)
	handler = as.panicRecoveryMiddleware(handler)
	return handler
}

// Shutdown gracefully shuts down the album server
func (as *AlbumServer) Shutdown() {
	as.logger.Info("Shutting down album server...")

	if as.tunnel != nil {
		as.tunnel.Stop()
	}

	as.logger.Info("Album server shutdown complete")
}
