package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/chainydev/chainyctl/internal/models"
)

// PendingLoginRepository persists in-flight authorization attempts keyed by state.
type PendingLoginRepository struct {
	db *sql.DB
}

// NewPendingLoginRepository creates a new [PendingLoginRepository] with the given database connection
func NewPendingLoginRepository(db *sql.DB) *PendingLoginRepository {
	return &PendingLoginRepository{db: db}
}

// Put stores a pending login. An existing entry for the same state is replaced.
func (r *PendingLoginRepository) Put(pending *models.PendingLogin) error {
	if err := pending.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO pending_logins (state, verifier, created_at) VALUES (?, ?, ?)
		ON CONFLICT(state) DO UPDATE SET verifier = excluded.verifier, created_at = excluded.created_at
	`

	_, err := r.db.Exec(query, pending.State(), pending.Verifier(), pending.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert pending login: %w", err)
	}

	return nil
}

// Take retrieves and deletes the pending login for the given state in one
// transaction. A second Take for the same state returns nil.
func (r *PendingLoginRepository) Take(state string) (*models.PendingLogin, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		verifier  string
		createdAt time.Time
	)

	err = tx.QueryRow("SELECT verifier, created_at FROM pending_logins WHERE state = ?", state).Scan(&verifier, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending login: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM pending_logins WHERE state = ?", state); err != nil {
		return nil, fmt.Errorf("failed to delete pending login: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit take transaction: %w", err)
	}

	pending := models.NewPendingLogin(state, verifier)
	pending.SetCreatedAt(createdAt)

	return pending, nil
}

// PurgeOlderThan deletes pending logins started before the given cutoff and
// returns how many were removed.
func (r *PendingLoginRepository) PurgeOlderThan(cutoff time.Time) (int, error) {
	result, err := r.db.Exec("DELETE FROM pending_logins WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge pending logins: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}
