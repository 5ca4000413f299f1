package auth

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/repositories"
)

// SessionManager decides whether a stored session is usable.
//
// Credentials are JWTs issued by the Chainy backend. The manager never
// verifies the signature; it only inspects the expiry claim, since the
// backend is the authority and will reject a forged token anyway.
type SessionManager struct {
	sessions *repositories.SessionRepository
	logger   *log.Logger
	now      func() time.Time
}

// NewSessionManager creates a [SessionManager] over the given repository.
func NewSessionManager(sessions *repositories.SessionRepository, logger *log.Logger) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Save persists a session issued by the backend, replacing any previous one.
func (m *SessionManager) Save(credential string, profile models.Profile) error {
	session := models.NewSession(credential, profile)
	if err := m.sessions.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	m.logger.Debug("session saved", "subject", profile.SubjectID)
	return nil
}

// Current returns the stored session when it is live, or nil otherwise.
//
// A session whose credential is expired or unreadable is cleared on the
// spot, so a later read does not see it either.
func (m *SessionManager) Current() (*models.Session, error) {
	session, err := m.sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if !m.isLive(session.Credential()) {
		m.logger.Debug("stored session no longer live, clearing")
		if err := m.sessions.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear dead session: %w", err)
		}
		return nil, nil
	}

	return session, nil
}

// Credential returns the live credential, or an empty string when the
// client is not authenticated.
func (m *SessionManager) Credential() (string, error) {
	session, err := m.Current()
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.Credential(), nil
}

// Clear removes any stored session. Clearing twice is harmless.
func (m *SessionManager) Clear() error {
	if err := m.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// isLive reports whether the credential can still be presented.
//
// A token without an expiry claim is treated as live. A token that
// cannot be decoded at all is treated as dead; it would only bounce off
// the backend.
func (m *SessionManager) isLive(credential string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		m.logger.Debug("failed to decode credential", "error", err)
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		m.logger.Debug("failed to read expiry claim", "error", err)
		return false
	}
	if exp == nil {
		return true
	}

	// Strictly before: a token expiring this instant is already dead.
	return m.now().Before(exp.Time)
}
