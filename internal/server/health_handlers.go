package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus represents operational status for the /health endpoint.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Database  string                 `json:"database"`
	Sessions  int                    `json:"activeSessions"`
	Albums    int                    `json:"albumCount"`
	Tunnel    string                 `json:"tunnelUrl,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// handleHealthCheck returns basic liveness + dependency checks.
func (as *AlbumServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Database:  "ok",
		Sessions:  as.authService.GetSessionManager().ActiveSessions(),
		Details:   make(map[string]interface{}),
	}

	// Check database connectivity
	if err := as.db.Ping(); err != nil {
		health.Status = "unhealthy"
		health.Database = "error"
		health.Details["database_error"] = err.Error()
	}

	// Get album count
	albums, err := as.db.ListAlbums()
	if err != nil {
		health.Details["album_count_error"] = err.Error()
	} else {
		health.Albums = len(albums)
	}

	if as.tunnel != nil {
		health.Tunnel = as.tunnel.PublicURL()
	}

	// Set appropriate HTTP status code
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}
