package auth

import (
	"path/filepath"
	"testing"

	"crescendo/internal/config"
	"crescendo/internal/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.AuthConfig{
		SessionDuration:   "1h",
		AllowRegistration: true,
	}
	service, err := NewService(cfg, db)
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	return service
}

func TestRegister(t *testing.T) {
	service := newTestService(t)

	t.Run("Succeeds", func(t *testing.T) {
		user, err := service.Register("alice", "alice@example.com", "hunter22")
		if err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected server-assigned user ID")
		}
		if user.PasswordHash == "hunter22" {
			t.Error("Expected password to be hashed")
		}
		if user.JoinedAt.IsZero() {
			t.Error("Expected joined timestamp to be stamped")
		}
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		if _, err := service.Register("alice", "other@example.com", "hunter22"); err == nil {
			t.Error("Expected duplicate username to be rejected")
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		if _, err := service.Register("alice2", "alice@example.com", "hunter22"); err == nil {
			t.Error("Expected duplicate email to be rejected")
		}
	})

	t.Run("ShortPassword", func(t *testing.T) {
		if _, err := service.Register("bob", "bob@example.com", "12345"); err == nil {
			t.Error("Expected short password to be rejected")
		}
	})

	t.Run("EmailNormalized", func(t *testing.T) {
		if _, err := service.Register("carol", "  Carol@Example.COM ", "hunter22"); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if _, err := service.Register("carol2", "carol@example.com", "hunter22"); err == nil {
			t.Error("Expected case-folded duplicate email to be rejected")
		}
	})
}

func TestRegistrationDisabled(t *testing.T) {
	service := newTestService(t)
	service.config.AllowRegistration = false

	if _, err := service.Register("late", "late@example.com", "hunter22"); err == nil {
		t.Error("Expected registration to be refused when disabled")
	}
}

func TestLogin(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Register("dave", "dave@example.com", "hunter22"); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	t.Run("ValidCredentials", func(t *testing.T) {
		session, err := service.Login("dave", "hunter22")
		if err != nil {
			t.Fatalf("Failed to log in: %v", err)
		}
		if session.Username != "dave" {
			t.Errorf("Expected session for dave, got %s", session.Username)
		}

		validated, ok := service.ValidateSession(session.ID)
		if !ok {
			t.Fatal("Expected fresh session to validate")
		}
		if validated.UserID != session.UserID {
			t.Error("Expected validated session to carry the same user")
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		if _, err := service.Login("dave", "wrong"); err == nil {
			t.Error("Expected wrong password to be rejected")
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		if _, err := service.Login("nobody", "hunter22"); err == nil {
			t.Error("Expected unknown user to be rejected")
		}
	})

	t.Run("LogoutInvalidates", func(t *testing.T) {
		session, err := service.Login("dave", "hunter22")
		if err != nil {
			t.Fatalf("Failed to log in: %v", err)
		}
		service.Logout(session.ID)
		if _, ok := service.ValidateSession(session.ID); ok {
			t.Error("Expected session to be invalid after logout")
		}
	})
}
