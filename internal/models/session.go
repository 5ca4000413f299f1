package models

import (
	"fmt"
	"time"
)

// Profile holds the account details returned by the backend after a login.
type Profile struct {
	SubjectID   string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	PictureURL  string `json:"picture"`
}

// Session pairs a backend credential with the profile it was issued for.
//
// A session is persisted as a single unit so the credential and profile
// never diverge.
type Session struct {
	id         string
	credential string
	profile    Profile
	createdAt  time.Time
	updatedAt  time.Time
}

// NewSession creates a session for the given credential and profile.
func NewSession(credential string, profile Profile) *Session {
	now := time.Now()
	return &Session{
		credential: credential,
		profile:    profile,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Credential() string   { return s.credential }
func (s *Session) Profile() Profile     { return s.profile }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

func (s *Session) SetID(id string)            { s.id = id }
func (s *Session) SetCreatedAt(t time.Time)   { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time)   { s.updatedAt = t }
func (s *Session) SetProfile(profile Profile) { s.profile = profile }
func (s *Session) SetCredential(token string) { s.credential = token }

// Validate checks that the session carries a credential and a subject.
func (s *Session) Validate() error {
	if s.credential == "" {
		return fmt.Errorf("session credential is required")
	}
	if s.profile.SubjectID == "" {
		return fmt.Errorf("session subject id is required")
	}
	if s.profile.Email == "" {
		return fmt.Errorf("session email is required")
	}
	return nil
}
