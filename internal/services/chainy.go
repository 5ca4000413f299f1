package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/shared"
)

// exchangeRequest is the body sent to redeem an authorization code.
type exchangeRequest struct {
	GoogleToken  string `json:"googleToken"`
	Provider     string `json:"provider"`
	TokenType    string `json:"tokenType"`
	RedirectURI  string `json:"redirectUri"`
	CodeVerifier string `json:"codeVerifier"`
}

// exchangeResponse is the body returned on a successful exchange.
type exchangeResponse struct {
	JWT  string         `json:"jwt"`
	User models.Profile `json:"user"`
}

// createLinkRequest is the body for shortening a URL.
type createLinkRequest struct {
	URL        string `json:"url"`
	CustomCode string `json:"custom_code,omitempty"`
}

// ExchangeCode redeems an authorization code at the backend.
//
// The verifier always rides along; the backend decides whether the
// provider requires it.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (string, models.Profile, error) {
	payload := exchangeRequest{
		GoogleToken:  code,
		Provider:     "google",
		TokenType:    "code",
		RedirectURI:  c.redirectURI,
		CodeVerifier: verifier,
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/google", payload)
	if err != nil {
		return "", models.Profile{}, err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", models.Profile{}, err
	}

	if !resp.ok() {
		return "", models.Profile{}, fmt.Errorf("%w: %s", shared.ErrExchange, errorMessage(resp))
	}

	var result exchangeResponse
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return "", models.Profile{}, fmt.Errorf("failed to decode exchange response: %w", err)
	}
	if result.JWT == "" {
		return "", models.Profile{}, fmt.Errorf("%w: response carried no credential", shared.ErrExchange)
	}

	return result.JWT, result.User, nil
}

// ListLinks fetches all links for the authenticated account, retrying
// transient outages before giving up.
func (c *Client) ListLinks(ctx context.Context) ([]Link, error) {
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newAuthorizedRequest(ctx, http.MethodGet, "/links", nil)
	})
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, errorMessage(resp))
	}

	var links []Link
	if err := json.Unmarshal(resp.body, &links); err != nil {
		return nil, fmt.Errorf("failed to decode link list: %w", err)
	}

	return links, nil
}

// GetLink fetches a single link by short code.
func (c *Client) GetLink(ctx context.Context, code string) (*Link, error) {
	req, err := c.newAuthorizedRequest(ctx, http.MethodGet, "/links/"+code, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if resp.statusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrLinkNotFound, code)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, errorMessage(resp))
	}

	var link Link
	if err := json.Unmarshal(resp.body, &link); err != nil {
		return nil, fmt.Errorf("failed to decode link: %w", err)
	}

	return &link, nil
}

// CreateLink shortens a URL, optionally under a custom code.
func (c *Client) CreateLink(ctx context.Context, target, customCode string) (*Link, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: target url is required", shared.ErrInvalidInput)
	}

	payload := createLinkRequest{URL: target, CustomCode: customCode}

	req, err := c.newAuthorizedRequest(ctx, http.MethodPost, "/links", payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, errorMessage(resp))
	}

	var link Link
	if err := json.Unmarshal(resp.body, &link); err != nil {
		return nil, fmt.Errorf("failed to decode link: %w", err)
	}

	return &link, nil
}

// DeleteLink removes a link by short code.
func (c *Client) DeleteLink(ctx context.Context, code string) error {
	req, err := c.newAuthorizedRequest(ctx, http.MethodDelete, "/links/"+code, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}

	if resp.statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrLinkNotFound, code)
	}
	if !resp.ok() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, errorMessage(resp))
	}

	return nil
}

// Health probes the backend without authentication. A 503 surfaces as a
// [ServiceDownError] carrying the outage classification.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, errorMessage(resp))
	}

	return nil
}

// Name returns the service name.
func (c *Client) Name() string {
	return "Chainy"
}
