package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

type profileRequest struct {
	Bio              string `json:"bio"`
	ProfileImagePath string `json:"profileImagePath"`
}

// handleUserSubtree dispatches /api/users/{id}[/...] requests.
func (as *AlbumServer) handleUserSubtree(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(r.URL.Path, "/")
	// /api/users/{id} -> ["", "api", "users", id, ...]
	if len(pathParts) < 4 || pathParts[3] == "" {
		as.respondWithError(w, r, http.StatusBadRequest, "User ID is required", nil)
		return
	}
	userID := pathParts[3]

	if len(pathParts) == 4 {
		switch r.Method {
		case http.MethodGet:
			as.handleGetUser(w, r, userID)
		case http.MethodDelete:
			as.handleDeleteUser(w, r, userID)
		default:
			as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		}
		return
	}

	switch pathParts[4] {
	case "albums":
		as.handleUserAlbums(w, r, userID)
	case "stats":
		as.handleUserStats(w, r, userID)
	case "profile":
		as.handleUpdateProfile(w, r, userID)
	default:
		as.respondWithError(w, r, http.StatusNotFound, "Not found", nil)
	}
}

func (as *AlbumServer) handleGetUser(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := as.db.GetUser(userID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving user", err)
		return
	}
	if user == nil {
		as.respondWithError(w, r, http.StatusNotFound, "User not found", nil)
		return
	}

	averageRating, err := as.db.UserAverageRating(userID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error computing average rating", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]interface{}{
		"user":          user,
		"averageRating": averageRating,
	})
}

func (as *AlbumServer) handleUserAlbums(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	albums, err := as.db.ListAlbumsForUser(userID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving albums", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, albumViews(albums))
}

func (as *AlbumServer) handleUserStats(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	stats, err := as.charts.UserStats(userID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error computing stats", err)
		return
	}
	if stats == nil {
		as.respondWithError(w, r, http.StatusNotFound, "User not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, stats)
}

// handleUpdateProfile lets a user edit their own bio and profile image
// path.
func (as *AlbumServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPut {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	session := sessionFromContext(r)
	if session == nil || session.UserID != userID {
		as.respondWithError(w, r, http.StatusForbidden, "You can only edit your own profile", nil)
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	found, err := as.db.UpdateProfile(userID, sanitizeInput(req.Bio), sanitizeInput(req.ProfileImagePath))
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error updating profile", err)
		return
	}
	if !found {
		as.respondWithError(w, r, http.StatusNotFound, "User not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]bool{"success": true})
}

// handleDeleteUser removes the caller's own account. The delete is
// restricted while albums, ratings or comments still reference the user.
func (as *AlbumServer) handleDeleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	session := sessionFromContext(r)
	if session == nil || session.UserID != userID {
		as.respondWithError(w, r, http.StatusForbidden, "You can only delete your own account", nil)
		return
	}

	deleted, err := as.db.DeleteUser(userID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error deleting user", err)
		return
	}
	if !deleted {
		as.respondWithError(w, r, http.StatusConflict, "Account still has albums, ratings or comments", nil)
		return
	}

	as.authService.GetSessionManager().DeleteUserSessions(userID)
	as.authService.GetSessionManager().ClearSessionCookie(w)

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]bool{"success": true})
}
