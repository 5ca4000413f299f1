package models

import (
	"fmt"
	"time"
)

// PendingLogin records an in-flight authorization attempt.
//
// The state token is the primary key; the verifier is the PKCE secret
// that must survive until the provider redirects back.
type PendingLogin struct {
	state     string
	verifier  string
	createdAt time.Time
}

// NewPendingLogin creates a pending login for the given state and verifier.
func NewPendingLogin(state, verifier string) *PendingLogin {
	return &PendingLogin{
		state:     state,
		verifier:  verifier,
		createdAt: time.Now(),
	}
}

func (p *PendingLogin) ID() string           { return p.state }
func (p *PendingLogin) State() string        { return p.state }
func (p *PendingLogin) Verifier() string     { return p.verifier }
func (p *PendingLogin) CreatedAt() time.Time { return p.createdAt }
func (p *PendingLogin) UpdatedAt() time.Time { return p.createdAt }

func (p *PendingLogin) SetCreatedAt(t time.Time) { p.createdAt = t }

// Age returns how long ago the login attempt was started.
func (p *PendingLogin) Age(now time.Time) time.Duration {
	return now.Sub(p.createdAt)
}

// Validate checks that the pending login carries both a state and a verifier.
func (p *PendingLogin) Validate() error {
	if p.state == "" {
		return fmt.Errorf("pending login state is required")
	}
	if p.verifier == "" {
		return fmt.Errorf("pending login verifier is required")
	}
	return nil
}
