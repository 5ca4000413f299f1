package auth

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/repositories"
	"github.com/chainydev/chainyctl/internal/shared"
)

type fakeExchanger struct {
	credential string
	profile    models.Profile
	err        error

	calls    int
	lastCode string
	lastVer  string
}

func (f *fakeExchanger) ExchangeCode(_ context.Context, code, verifier string) (string, models.Profile, error) {
	f.calls++
	f.lastCode = code
	f.lastVer = verifier
	if f.err != nil {
		return "", models.Profile{}, f.err
	}
	return f.credential, f.profile, nil
}

type authFixture struct {
	pending   *repositories.PendingLoginRepository
	sessions  *SessionManager
	exchanger *fakeExchanger
	resolver  *Resolver
	redirect  *Redirector
	cfg       *shared.Config
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := shared.NewLogger(io.Discard)
	cfg := shared.DefaultConfig()
	cfg.Google.ClientID = "client-123"

	pending := repositories.NewPendingLoginRepository(db)
	sessions := NewSessionManager(repositories.NewSessionRepository(db), logger)
	exchanger := &fakeExchanger{
		credential: signToken(t, jwt.MapClaims{"sub": "sub-1"}),
		profile: models.Profile{
			SubjectID:   "sub-1",
			Email:       "user@example.com",
			DisplayName: "Example User",
		},
	}

	redirect := NewRedirector(cfg, pending, logger)
	redirect.SetOpener(func(string) error { return nil })

	return &authFixture{
		pending:   pending,
		sessions:  sessions,
		exchanger: exchanger,
		resolver:  NewResolver(pending, sessions, exchanger, logger),
		redirect:  redirect,
		cfg:       cfg,
	}
}

func TestRedirector(t *testing.T) {
	t.Run("refuses to start without a client id", func(t *testing.T) {
		f := setupAuth(t)
		f.cfg.Google.ClientID = ""

		if _, err := f.redirect.Begin(); !errors.Is(err, shared.ErrConfiguration) {
			t.Errorf("expected a configuration error, got %v", err)
		}
	})

	t.Run("persists the pending login before opening the browser", func(t *testing.T) {
		f := setupAuth(t)

		var stateAtOpen string
		f.redirect.SetOpener(func(u string) error {
			parsed, err := url.Parse(u)
			if err != nil {
				t.Fatalf("bad authorization url: %v", err)
			}
			stateAtOpen = parsed.Query().Get("state")

			pending, err := f.pending.Take(stateAtOpen)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pending == nil {
				t.Error("expected the pending login to exist before navigation")
			} else {
				f.pending.Put(pending)
			}
			return nil
		})

		attempt, err := f.redirect.Begin()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempt.State != stateAtOpen {
			t.Errorf("state mismatch: %q vs %q", attempt.State, stateAtOpen)
		}
	})

	t.Run("authorization url carries the PKCE parameters", func(t *testing.T) {
		f := setupAuth(t)

		attempt, err := f.redirect.Begin()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		parsed, err := url.Parse(attempt.URL)
		if err != nil {
			t.Fatalf("bad authorization url: %v", err)
		}
		q := parsed.Query()

		if parsed.Host != "accounts.google.com" {
			t.Errorf("unexpected host: %q", parsed.Host)
		}
		if q.Get("client_id") != "client-123" {
			t.Errorf("unexpected client_id: %q", q.Get("client_id"))
		}
		if q.Get("code_challenge_method") != "S256" {
			t.Errorf("unexpected challenge method: %q", q.Get("code_challenge_method"))
		}
		if len(q.Get("code_challenge")) != 43 {
			t.Errorf("unexpected challenge length: %d", len(q.Get("code_challenge")))
		}
		if q.Get("access_type") != "offline" {
			t.Errorf("unexpected access_type: %q", q.Get("access_type"))
		}
		if !strings.Contains(q.Get("scope"), "email") {
			t.Errorf("unexpected scope: %q", q.Get("scope"))
		}
		if !strings.HasPrefix(q.Get("state"), StatePrefix) {
			t.Errorf("unexpected state: %q", q.Get("state"))
		}
	})
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("completes a full login round trip", func(t *testing.T) {
		f := setupAuth(t)

		attempt, err := f.redirect.Begin()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		query := url.Values{"code": {"auth-code"}, "state": {attempt.State}}
		outcome := f.resolver.Resolve(ctx, query)

		if outcome.Status != StatusExchanged {
			t.Fatalf("expected exchanged, got %s (%v)", outcome.Status, outcome.Err)
		}
		if outcome.Session == nil || outcome.Session.Credential() != f.exchanger.credential {
			t.Error("expected the backend session to be saved")
		}
		if f.exchanger.lastCode != "auth-code" {
			t.Errorf("unexpected code forwarded: %q", f.exchanger.lastCode)
		}
		if len(f.exchanger.lastVer) != 128 {
			t.Errorf("expected the stored verifier to be forwarded, got %d chars", len(f.exchanger.lastVer))
		}
	})

	t.Run("a replayed callback does not exchange twice", func(t *testing.T) {
		f := setupAuth(t)

		attempt, err := f.redirect.Begin()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		query := url.Values{"code": {"auth-code"}, "state": {attempt.State}}
		if outcome := f.resolver.Resolve(ctx, query); outcome.Status != StatusExchanged {
			t.Fatalf("expected exchanged, got %s", outcome.Status)
		}

		outcome := f.resolver.Resolve(ctx, query)
		if outcome.Status != StatusExchangeFailed {
			t.Fatalf("expected exchange failure on replay, got %s", outcome.Status)
		}
		if !errors.Is(outcome.Err, shared.ErrMissingVerifier) {
			t.Errorf("expected a missing verifier error, got %v", outcome.Err)
		}
		if f.exchanger.calls != 1 {
			t.Errorf("expected a single exchange, got %d", f.exchanger.calls)
		}
	})

	t.Run("an unknown state fails without an exchange", func(t *testing.T) {
		f := setupAuth(t)

		query := url.Values{"code": {"auth-code"}, "state": {"google_auth_unknown"}}
		outcome := f.resolver.Resolve(ctx, query)

		if outcome.Status != StatusExchangeFailed {
			t.Fatalf("expected exchange failure, got %s", outcome.Status)
		}
		if !errors.Is(outcome.Err, shared.ErrMissingVerifier) {
			t.Errorf("expected a missing verifier error, got %v", outcome.Err)
		}
		if f.exchanger.calls != 0 {
			t.Error("expected no exchange attempt")
		}
	})

	t.Run("a stale pending login is not redeemable", func(t *testing.T) {
		f := setupAuth(t)

		attempt, err := f.redirect.Begin()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f.resolver.now = func() time.Time { return time.Now().Add(pendingTTL + time.Minute) }

		query := url.Values{"code": {"auth-code"}, "state": {attempt.State}}
		outcome := f.resolver.Resolve(ctx, query)

		if outcome.Status != StatusExchangeFailed {
			t.Fatalf("expected exchange failure, got %s", outcome.Status)
		}
		if !errors.Is(outcome.Err, shared.ErrStalePending) {
			t.Errorf("expected a stale pending error, got %v", outcome.Err)
		}
		if f.exchanger.calls != 0 {
			t.Error("expected no exchange attempt")
		}
	})

	t.Run("a provider error short-circuits", func(t *testing.T) {
		f := setupAuth(t)

		query := url.Values{"error": {"access_denied"}}
		outcome := f.resolver.Resolve(ctx, query)

		if outcome.Status != StatusErrorReceived {
			t.Fatalf("expected error received, got %s", outcome.Status)
		}
		if !errors.Is(outcome.Err, shared.ErrProviderDenied) {
			t.Errorf("expected a provider denied error, got %v", outcome.Err)
		}
	})

	t.Run("a request without callback parameters is idle", func(t *testing.T) {
		f := setupAuth(t)

		outcome := f.resolver.Resolve(ctx, url.Values{})
		if outcome.Status != StatusIdle {
			t.Errorf("expected idle, got %s", outcome.Status)
		}
	})

	t.Run("an exchange failure leaves no session behind", func(t *testing.T) {
		f := setupAuth(t)
		f.exchanger.err = errors.New("backend rejected the code")

		attempt, err := f.redirect.Begin()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		query := url.Values{"code": {"auth-code"}, "state": {attempt.State}}
		outcome := f.resolver.Resolve(ctx, query)

		if outcome.Status != StatusExchangeFailed {
			t.Fatalf("expected exchange failure, got %s", outcome.Status)
		}

		session, err := f.sessions.Current()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session != nil {
			t.Error("expected no session after a failed exchange")
		}
	})
}
