package server

import (
	"net/http"
	"strconv"
)

// countParam reads the ?count= query parameter, falling back to a default.
func countParam(r *http.Request, fallback int) int {
	countStr := r.URL.Query().Get("count")
	if countStr == "" {
		return fallback
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 1 {
		return fallback
	}
	return count
}

// handleTopAlbums returns the highest-rated albums of all time.
func (as *AlbumServer) handleTopAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := as.charts.TopAlbumsAllTime(countParam(r, 5))
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error computing chart", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, albumViews(albums))
}

// handleTopAlbumsWeek returns the highest-rated albums uploaded in the
// trailing week.
func (as *AlbumServer) handleTopAlbumsWeek(w http.ResponseWriter, r *http.Request) {
	albums, err := as.charts.TopAlbumsThisWeek(countParam(r, 5))
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error computing chart", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, albumViews(albums))
}

// handleLatestAlbums returns the most recent uploads.
func (as *AlbumServer) handleLatestAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := as.charts.LatestAlbums(countParam(r, 5))
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error computing chart", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, albumViews(albums))
}

// handleTopUsersWeek returns the best-rated uploaders of the trailing week.
func (as *AlbumServer) handleTopUsersWeek(w http.ResponseWriter, r *http.Request) {
	stats, err := as.charts.TopUsersThisWeek(countParam(r, 5))
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error computing chart", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, stats)
}

// handleTopUsers returns the all-time user ranking by album count.
func (as *AlbumServer) handleTopUsers(w http.ResponseWriter, r *http.Request) {
	stats, err := as.db.TopUsers(countParam(r, 10))
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error computing chart", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, stats)
}
