package models

import (
	"testing"
	"time"
)

func TestSession(t *testing.T) {
	profile := Profile{
		SubjectID:   "sub-1",
		Email:       "user@example.com",
		DisplayName: "Example User",
		PictureURL:  "https://example.com/p.png",
	}

	t.Run("valid session passes validation", func(t *testing.T) {
		session := NewSession("token-abc", profile)
		if err := session.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing credential fails validation", func(t *testing.T) {
		session := NewSession("", profile)
		if err := session.Validate(); err == nil {
			t.Error("expected a validation error")
		}
	})

	t.Run("missing subject fails validation", func(t *testing.T) {
		session := NewSession("token-abc", Profile{Email: "user@example.com"})
		if err := session.Validate(); err == nil {
			t.Error("expected a validation error")
		}
	})

	t.Run("missing email fails validation", func(t *testing.T) {
		session := NewSession("token-abc", Profile{SubjectID: "sub-1"})
		if err := session.Validate(); err == nil {
			t.Error("expected a validation error")
		}
	})
}

func TestPendingLogin(t *testing.T) {
	t.Run("state doubles as the identifier", func(t *testing.T) {
		pending := NewPendingLogin("google_auth_abc", "verifier")
		if pending.ID() != "google_auth_abc" {
			t.Errorf("expected state as id, got %q", pending.ID())
		}
	})

	t.Run("age is measured from creation", func(t *testing.T) {
		pending := NewPendingLogin("google_auth_abc", "verifier")
		pending.SetCreatedAt(time.Now().Add(-15 * time.Minute))

		if pending.Age(time.Now()) < 15*time.Minute {
			t.Error("expected age of at least fifteen minutes")
		}
	})

	t.Run("missing verifier fails validation", func(t *testing.T) {
		pending := NewPendingLogin("google_auth_abc", "")
		if err := pending.Validate(); err == nil {
			t.Error("expected a validation error")
		}
	})
}

func TestLink(t *testing.T) {
	t.Run("valid link passes validation", func(t *testing.T) {
		link := NewLink(1, "abc123", "https://example.com/page")
		if err := link.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing code fails validation", func(t *testing.T) {
		link := NewLink(1, "", "https://example.com/page")
		if err := link.Validate(); err == nil {
			t.Error("expected a validation error")
		}
	})

	t.Run("missing target fails validation", func(t *testing.T) {
		link := NewLink(1, "abc123", "")
		if err := link.Validate(); err == nil {
			t.Error("expected a validation error")
		}
	})
}
