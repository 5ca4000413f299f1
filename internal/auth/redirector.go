package auth

import (
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/repositories"
	"github.com/chainydev/chainyctl/internal/shared"
)

// googleEndpoint is Google's OAuth 2.0 endpoint pair. The token URL is
// never called by this client; the code exchange happens on the backend.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// scopes requested on every login.
var scopes = []string{"openid", "email", "profile"}

// Attempt describes a login attempt handed off to the browser.
type Attempt struct {
	State string
	URL   string
}

// Redirector starts a login by sending the browser to Google's consent
// screen. The pending login is persisted before the browser is opened,
// so a callback can never arrive ahead of its verifier.
type Redirector struct {
	cfg     *shared.Config
	pending *repositories.PendingLoginRepository
	open    func(url string) error
	logger  *log.Logger
}

// NewRedirector creates a [Redirector]. The browser opener defaults to
// [shared.OpenBrowser].
func NewRedirector(cfg *shared.Config, pending *repositories.PendingLoginRepository, logger *log.Logger) *Redirector {
	return &Redirector{
		cfg:     cfg,
		pending: pending,
		open:    shared.OpenBrowser,
		logger:  logger,
	}
}

// SetOpener replaces the browser opener. Used by tests and by callers
// that print the URL instead of launching a browser.
func (r *Redirector) SetOpener(open func(url string) error) {
	r.open = open
}

// Begin mints a state token and verifier, stores the pending login, and
// opens the browser on the authorization URL.
//
// Returns [shared.ErrConfiguration] when no client ID is configured; no
// state is minted and nothing is persisted in that case.
func (r *Redirector) Begin() (*Attempt, error) {
	if r.cfg.Google.ClientID == "" {
		return nil, fmt.Errorf("%w: google client id is empty", shared.ErrConfiguration)
	}

	state, err := GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	verifier, err := GenerateVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verifier: %w", err)
	}

	if err := r.pending.Put(models.NewPendingLogin(state, verifier)); err != nil {
		return nil, fmt.Errorf("failed to store pending login: %w", err)
	}

	url := r.AuthURL(state, verifier)

	r.logger.Debug("opening authorization url", "state", state)
	if err := r.open(url); err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	return &Attempt{State: state, URL: url}, nil
}

// AuthURL builds the Google authorization URL for a state and verifier.
func (r *Redirector) AuthURL(state, verifier string) string {
	config := &oauth2.Config{
		ClientID:    r.cfg.Google.ClientID,
		RedirectURL: r.cfg.Google.RedirectURI,
		Endpoint:    googleEndpoint,
		Scopes:      scopes,
	}

	return config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("code_challenge", Challenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}
