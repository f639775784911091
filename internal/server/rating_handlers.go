package server

import (
	"encoding/json"
	"net/http"
)

type ratingRequest struct {
	Value  int    `json:"value"`
	Review string `json:"review"`
}

// handleAlbumRatings serves /api/albums/{id}/ratings: POST submits or
// re-submits the caller's rating, DELETE withdraws it.
func (as *AlbumServer) handleAlbumRatings(w http.ResponseWriter, r *http.Request, albumID string) {
	session := sessionFromContext(r)
	if session == nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req ratingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			as.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		if validationErrors := validateRatingValue(req.Value, req.Review); len(validationErrors) > 0 {
			as.respondWithValidationError(w, r, validationErrors)
			return
		}

		ok, err := as.db.AddOrUpdateRating(albumID, session.UserID, session.Username, req.Value, sanitizeInput(req.Review))
		if err != nil {
			as.respondWithError(w, r, http.StatusInternalServerError, "Error saving rating", err)
			return
		}
		if !ok {
			as.respondWithError(w, r, http.StatusNotFound, "Album not found", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		as.respondJSON(w, map[string]bool{"success": true})

	case http.MethodDelete:
		deleted, err := as.db.DeleteRating(albumID, session.UserID)
		if err != nil {
			as.respondWithError(w, r, http.StatusInternalServerError, "Error deleting rating", err)
			return
		}
		if !deleted {
			as.respondWithError(w, r, http.StatusNotFound, "Rating not found", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		as.respondJSON(w, map[string]bool{"success": true})

	default:
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}
