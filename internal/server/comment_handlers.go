package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

type commentRequest struct {
	Content string `json:"content"`
}

type responseRequest struct {
	Response string `json:"response"`
}

// handleAlbumComments serves /api/albums/{id}/comments and
// /api/albums/{id}/comments/{commentId}/replies.
func (as *AlbumServer) handleAlbumComments(w http.ResponseWriter, r *http.Request, albumID string, pathParts []string) {
	session := sessionFromContext(r)
	if session == nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	// /api/albums/{id}/comments -> len 5; .../comments/{cid}/replies -> len 7
	switch {
	case len(pathParts) == 5:
		if r.Method != http.MethodPost {
			as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
			return
		}
		as.handleAddComment(w, r, albumID, session.UserID, session.Username)

	case len(pathParts) == 7 && pathParts[6] == "replies":
		if r.Method != http.MethodPost {
			as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
			return
		}
		as.handleAddReply(w, r, albumID, pathParts[5], session.UserID, session.Username)

	default:
		as.respondWithError(w, r, http.StatusNotFound, "Not found", nil)
	}
}

func (as *AlbumServer) handleAddComment(w http.ResponseWriter, r *http.Request, albumID, userID, userName string) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	content := sanitizeInput(req.Content)
	if validationErr := validateCommentContent(content); validationErr != nil {
		as.respondWithValidationError(w, r, []ValidationError{*validationErr})
		return
	}

	album, err := as.db.GetAlbum(albumID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving album", err)
		return
	}
	if album == nil {
		as.respondWithError(w, r, http.StatusNotFound, "Album not found", nil)
		return
	}

	comment, err := as.db.AddComment(albumID, userID, userName, content)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error adding comment", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	as.respondJSON(w, comment)
}

func (as *AlbumServer) handleAddReply(w http.ResponseWriter, r *http.Request, albumID, parentCommentID, userID, userName string) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	content := sanitizeInput(req.Content)
	if validationErr := validateCommentContent(content); validationErr != nil {
		as.respondWithValidationError(w, r, []ValidationError{*validationErr})
		return
	}

	reply, err := as.db.AddReply(albumID, parentCommentID, userID, userName, content)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error adding reply", err)
		return
	}
	if reply == nil {
		as.respondWithError(w, r, http.StatusNotFound, "Parent comment not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	as.respondJSON(w, reply)
}

// handleCommentSubtree dispatches /api/comments/{id}[/response] requests.
func (as *AlbumServer) handleCommentSubtree(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r)
	if session == nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	pathParts := strings.Split(r.URL.Path, "/")
	// /api/comments/{id} -> ["", "api", "comments", id, ...]
	if len(pathParts) < 4 || pathParts[3] == "" {
		as.respondWithError(w, r, http.StatusBadRequest, "Comment ID is required", nil)
		return
	}
	commentID := pathParts[3]

	switch {
	case len(pathParts) == 4 && r.Method == http.MethodDelete:
		as.handleDeleteComment(w, r, commentID, session.UserID)
	case len(pathParts) == 5 && pathParts[4] == "response" && r.Method == http.MethodPost:
		as.handleOwnerResponse(w, r, commentID, session.UserID)
	default:
		as.respondWithError(w, r, http.StatusNotFound, "Not found", nil)
	}
}

// handleOwnerResponse attaches the album owner's response to a comment.
func (as *AlbumServer) handleOwnerResponse(w http.ResponseWriter, r *http.Request, commentID, userID string) {
	var req responseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	response := sanitizeInput(req.Response)
	if validationErr := validateCommentContent(response); validationErr != nil {
		as.respondWithValidationError(w, r, []ValidationError{*validationErr})
		return
	}

	ok, err := as.db.AddOwnerResponse(commentID, response, userID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error saving response", err)
		return
	}
	if !ok {
		as.respondWithError(w, r, http.StatusForbidden, "Only the album owner can respond to comments", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]bool{"success": true})
}

// handleDeleteComment removes the caller's own comment, unless replies
// still hang off it.
func (as *AlbumServer) handleDeleteComment(w http.ResponseWriter, r *http.Request, commentID, userID string) {
	comment, err := as.db.GetComment(commentID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving comment", err)
		return
	}
	if comment == nil {
		as.respondWithError(w, r, http.StatusNotFound, "Comment not found", nil)
		return
	}
	if comment.UserID != userID {
		as.respondWithError(w, r, http.StatusForbidden, "Only the comment author can delete it", nil)
		return
	}

	deleted, err := as.db.DeleteComment(commentID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error deleting comment", err)
		return
	}
	if !deleted {
		as.respondWithError(w, r, http.StatusConflict, "Comment still has replies", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]bool{"success": true})
}
