package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/shared"
)

// SessionRepository persists the single active [models.Session].
//
// Save replaces the stored session in one transaction so the credential
// and profile are written or discarded together.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save stores the session, replacing any previously stored one.
func (r *SessionRepository) Save(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if session.ID() == "" {
		session.SetID(shared.GenerateID())
	}
	session.SetUpdatedAt(time.Now())

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}

	query := `
		INSERT INTO sessions (id, credential, subject_id, email, display_name, picture_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	profile := session.Profile()
	_, err = tx.Exec(query, session.ID(), session.Credential(), profile.SubjectID,
		profile.Email, profile.DisplayName, profile.PictureURL,
		session.CreatedAt(), session.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return tx.Commit()
}

// Load retrieves the stored session, or nil when none exists.
func (r *SessionRepository) Load() (*models.Session, error) {
	query := `
		SELECT id, credential, subject_id, email, display_name, picture_url, created_at, updated_at
		FROM sessions
		LIMIT 1
	`

	var (
		id         string
		credential string
		subjectID  string
		email      string
		name       string
		picture    sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := r.db.QueryRow(query).Scan(&id, &credential, &subjectID, &email, &name, &picture, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	profile := models.Profile{
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: name,
	}
	if picture.Valid {
		profile.PictureURL = picture.String
	}

	session := models.NewSession(credential, profile)
	session.SetID(id)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)

	return session, nil
}

// Clear removes any stored session. Clearing an empty store is not an error.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
