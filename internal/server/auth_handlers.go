package server

import (
	"encoding/json"
	"net/http"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates a new account and logs it in.
func (as *AlbumServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	if !as.authService.IsRegistrationAllowed() {
		as.respondWithError(w, r, http.StatusForbidden, "Registration is disabled", nil)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := as.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	session, err := as.authService.Login(req.Username, req.Password)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Registration succeeded but login failed", err)
		return
	}
	as.authService.GetSessionManager().SetSessionCookie(w, session)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	as.respondJSON(w, user)
}

// handleLogin authenticates a user and sets the session cookie.
func (as *AlbumServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := as.authService.Login(req.Username, req.Password)
	if err != nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	as.authService.GetSessionManager().SetSessionCookie(w, session)

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]string{
		"userId":   session.UserID,
		"username": session.Username,
	})
}

// handleLogout invalidates the current session.
func (as *AlbumServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	if session, valid := as.authService.GetSessionManager().GetSessionFromRequest(r); valid {
		as.authService.Logout(session.ID)
	}
	as.authService.GetSessionManager().ClearSessionCookie(w)

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]bool{"success": true})
}

// handleCurrentUser returns the profile of the authenticated user.
func (as *AlbumServer) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	session := sessionFromContext(r)
	if session == nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	user, err := as.db.GetUser(session.UserID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving user", err)
		return
	}
	if user == nil {
		as.respondWithError(w, r, http.StatusNotFound, "User not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, user)
}
