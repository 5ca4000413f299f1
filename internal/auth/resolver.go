package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/repositories"
	"github.com/chainydev/chainyctl/internal/shared"
)

// pendingTTL is how long a pending login stays redeemable. Entries older
// than this are treated as missing.
const pendingTTL = 10 * time.Minute

// Status names the phases a callback moves through.
type Status int

const (
	StatusIdle Status = iota
	StatusErrorReceived
	StatusCallbackDetected
	StatusExchanging
	StatusExchanged
	StatusExchangeFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusErrorReceived:
		return "error_received"
	case StatusCallbackDetected:
		return "callback_detected"
	case StatusExchanging:
		return "exchanging"
	case StatusExchanged:
		return "exchanged"
	case StatusExchangeFailed:
		return "exchange_failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving one callback request.
type Outcome struct {
	Status  Status
	Session *models.Session
	Err     error
}

// Exchanger turns an authorization code and its verifier into a backend
// session. Implemented by the Chainy service client.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code, verifier string) (string, models.Profile, error)
}

// Resolver consumes provider callbacks and drives the code exchange.
type Resolver struct {
	pending   *repositories.PendingLoginRepository
	sessions  *SessionManager
	exchanger Exchanger
	logger    *log.Logger
	now       func() time.Time
}

// NewResolver creates a [Resolver] over the given stores and exchanger.
func NewResolver(pending *repositories.PendingLoginRepository, sessions *SessionManager, exchanger Exchanger, logger *log.Logger) *Resolver {
	return &Resolver{
		pending:   pending,
		sessions:  sessions,
		exchanger: exchanger,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve inspects callback query parameters and, when they describe a
// completed authorization, performs the exchange and saves the session.
//
// The pending login is consumed on first sight of its state token, so a
// replayed callback fails with [shared.ErrMissingVerifier] rather than
// triggering a second exchange.
func (r *Resolver) Resolve(ctx context.Context, query url.Values) Outcome {
	if errCode := query.Get("error"); errCode != "" {
		r.logger.Warn("provider returned an error", "error", errCode)
		return Outcome{
			Status: StatusErrorReceived,
			Err:    fmt.Errorf("%w: %s", shared.ErrProviderDenied, errCode),
		}
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		return Outcome{Status: StatusIdle}
	}

	r.logger.Debug("callback detected", "state", state)

	pending, err := r.pending.Take(state)
	if err != nil {
		return Outcome{Status: StatusExchangeFailed, Err: err}
	}
	if pending == nil {
		r.logger.Warn("no pending login for callback state", "state", state)
		return Outcome{
			Status: StatusExchangeFailed,
			Err:    fmt.Errorf("%w: state %s", shared.ErrMissingVerifier, state),
		}
	}

	if pending.Age(r.now()) > pendingTTL {
		r.logger.Warn("pending login is stale", "state", state, "age", pending.Age(r.now()))
		return Outcome{
			Status: StatusExchangeFailed,
			Err:    fmt.Errorf("%w: state %s", shared.ErrStalePending, state),
		}
	}

	r.logger.Debug("exchanging authorization code", "state", state)

	credential, profile, err := r.exchanger.ExchangeCode(ctx, code, pending.Verifier())
	if err != nil {
		r.logger.Error("code exchange failed", "error", err)
		return Outcome{Status: StatusExchangeFailed, Err: err}
	}

	if err := r.sessions.Save(credential, profile); err != nil {
		return Outcome{Status: StatusExchangeFailed, Err: err}
	}

	session, err := r.sessions.Current()
	if err != nil {
		return Outcome{Status: StatusExchangeFailed, Err: err}
	}

	r.logger.Info("login complete", "email", profile.Email)
	return Outcome{Status: StatusExchanged, Session: session}
}
