package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/shared"
)

// LinkRepository implements [models.Repository] for cached [models.Link] persistence.
type LinkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new [LinkRepository] with the given database connection
func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a new link into the cache with generated ID and sequence
func (r *LinkRepository) Create(link *models.Link) error {
	sequence, err := NextSequence(r.db, "links")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if link.ID() == "" {
		link.SetID(shared.GenerateID())
	}

	if err := link.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO links (id, sequence, code, target, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, link.ID(), sequence, link.Code(), link.Target(), link.CreatedAt(), link.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

// Get retrieves a link by ID, excluding soft-deleted links
func (r *LinkRepository) Get(id string) (*models.Link, error) {
	return r.getWhere("id = ?", id)
}

// GetByCode retrieves a link by its short code, excluding soft-deleted links
func (r *LinkRepository) GetByCode(code string) (*models.Link, error) {
	return r.getWhere("code = ?", code)
}

func (r *LinkRepository) getWhere(clause string, arg any) (*models.Link, error) {
	query := fmt.Sprintf(`
		SELECT id, sequence, code, target, created_at, updated_at, deleted_at
		FROM links
		WHERE %s AND deleted_at IS NULL
	`, clause)

	var (
		linkID    string
		sequence  int
		code      string
		target    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := r.db.QueryRow(query, arg).Scan(&linkID, &sequence, &code, &target, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("link not found: %v", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link: %w", err)
	}

	link := models.NewLink(sequence, code, target)
	link.SetID(linkID)
	link.SetCreatedAt(createdAt)
	link.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		link.SetDeletedAt(&deletedAt.Time)
	}

	return link, nil
}

// Update modifies an existing link in the cache
func (r *LinkRepository) Update(link *models.Link) error {
	if err := link.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	link.SetUpdatedAt(now)

	query := `
		UPDATE links
		SET target = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, link.Target(), now, link.ID())
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("link not found or already deleted: %s", link.ID())
	}

	return nil
}

// Delete soft-deletes a link by ID
func (r *LinkRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE links
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("link not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all links matching the given criteria, excluding soft-deleted links
func (r *LinkRepository) List(criteria map[string]any) ([]*models.Link, error) {
	query := `
		SELECT id, sequence, code, target, created_at, updated_at, deleted_at
		FROM links
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if code, ok := criteria["code"].(string); ok && code != "" {
		query += " AND code = ?"
		args = append(args, code)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		var (
			linkID    string
			sequence  int
			code      string
			target    string
			createdAt time.Time
			updatedAt time.Time
			deletedAt sql.NullTime
		)

		err := rows.Scan(&linkID, &sequence, &code, &target, &createdAt, &updatedAt, &deletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}

		link := models.NewLink(sequence, code, target)
		link.SetID(linkID)
		link.SetCreatedAt(createdAt)
		link.SetUpdatedAt(updatedAt)
		if deletedAt.Valid {
			link.SetDeletedAt(&deletedAt.Time)
		}

		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return links, nil
}

// Replace clears the cache and stores the given links, preserving their
// backend identifiers. Used after a successful list fetch.
func (r *LinkRepository) Replace(links []*models.Link) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM links"); err != nil {
		return fmt.Errorf("failed to clear link cache: %w", err)
	}

	for i, link := range links {
		if link.ID() == "" {
			link.SetID(shared.GenerateID())
		}
		if err := link.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		query := `
			INSERT INTO links (id, sequence, code, target, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		`
		_, err := tx.Exec(query, link.ID(), i+1, link.Code(), link.Target(), link.CreatedAt(), link.UpdatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert link: %w", err)
		}
	}

	return tx.Commit()
}
