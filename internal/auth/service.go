package auth

import (
	"fmt"
	"strings"
	"time"

	"crescendo/internal/config"
	"crescendo/internal/database"
	"crescendo/pkg/models"

	"golang.org/x/crypto/bcrypt"
)

// Service provides registration, login and session handling on top of the
// user table.
type Service struct {
	config         *config.AuthConfig
	db             *database.Database
	sessionManager *SessionManager
}

// NewService creates a new authentication service
func NewService(cfg *config.AuthConfig, db *database.Database) (*Service, error) {
	duration, err := time.ParseDuration(cfg.SessionDuration)
	if err != nil {
		return nil, fmt.Errorf("invalid session duration: %w", err)
	}

	return &Service{
		config:         cfg,
		db:             db,
		sessionManager: NewSessionManager(duration, cfg.SecureCookies),
	}, nil
}

// IsRegistrationAllowed returns whether user registration is enabled
func (s *Service) IsRegistrationAllowed() bool {
	return s.config.AllowRegistration
}

// Register creates a new user account with a bcrypt password hash. Username
// and email must be unused.
func (s *Service) Register(username, email, password string) (*models.User, error) {
	if !s.IsRegistrationAllowed() {
		return nil, fmt.Errorf("registration is disabled")
	}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	if existing, err := s.db.GetUserByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("username '%s' is already taken", username)
	}
	if existing, err := s.db.GetUserByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login attempts to authenticate a user and create a session
func (s *Service) Login(username, password string) (*Session, error) {
	user, err := s.db.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	session, err := s.sessionManager.CreateSession(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session ID is valid
func (s *Service) ValidateSession(sessionID string) (*Session, bool) {
	return s.sessionManager.GetSession(sessionID)
}

// Logout invalidates a session
func (s *Service) Logout(sessionID string) {
	s.sessionManager.DeleteSession(sessionID)
}

// RefreshSession extends a session's expiration
func (s *Service) RefreshSession(sessionID string) bool {
	return s.sessionManager.RefreshSession(sessionID)
}

// GetSessionManager returns the session manager (for middleware)
func (s *Service) GetSessionManager() *SessionManager {
	return s.sessionManager
}
