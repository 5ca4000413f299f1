// package services implements the HTTP client for the Chainy backend.
//
// All authenticated traffic flows through [Client], which attaches the
// stored credential, invalidates the session on auth failures, and maps
// 503 responses to a typed [ServiceDownError] describing the outage.
package services

import (
	"context"
	"time"

	"github.com/chainydev/chainyctl/internal/models"
)

// LinkService defines the operations the Chainy backend exposes for
// managing shortened links.
type LinkService interface {
	// ExchangeCode redeems an authorization code and PKCE verifier for a
	// backend credential and the account profile it belongs to.
	ExchangeCode(ctx context.Context, code, verifier string) (string, models.Profile, error)

	// ListLinks retrieves all links owned by the authenticated account.
	ListLinks(ctx context.Context) ([]Link, error)

	// GetLink retrieves a single link by its short code.
	GetLink(ctx context.Context, code string) (*Link, error)

	// CreateLink shortens a URL, optionally under a custom code.
	CreateLink(ctx context.Context, target, customCode string) (*Link, error)

	// DeleteLink removes a link by its short code.
	DeleteLink(ctx context.Context, code string) error

	// Health checks backend availability without authentication.
	Health(ctx context.Context) error

	// Name returns the name of the service.
	Name() string
}

// Link is a shortened link as returned by the backend.
type Link struct {
	ID        string    `json:"id"`
	Code      string    `json:"short_code"`
	ShortURL  string    `json:"short_url"`
	Target    string    `json:"original_url"`
	Visits    int       `json:"visits"`
	CreatedAt time.Time `json:"created_at"`
}
