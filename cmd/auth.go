package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/chainydev/chainyctl/internal/auth"
	"github.com/chainydev/chainyctl/internal/server"
	"github.com/chainydev/chainyctl/internal/services"
	"github.com/chainydev/chainyctl/internal/shared"
)

// AuthLogin runs the browser-based login flow.
//
// A loopback HTTP server is started to receive the provider redirect,
// the browser is pointed at the consent screen, and the command waits
// until the callback resolves or the timeout passes.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if session, err := r.sessions.Current(); err != nil {
		return err
	} else if session != nil {
		r.writePlain("Already logged in as %s\n", session.Profile().Email)
		r.writePlain("Run 'chainyctl auth logout' first to switch accounts.\n")
		return nil
	}

	handler := server.NewCallbackHandler(r.resolver, r.logger)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if cmd.Bool("no-browser") {
		r.redirector.SetOpener(func(url string) error {
			return r.writePlain("Open this URL in your browser:\n\n%s\n\n", url)
		})
	}

	attempt, err := r.redirector.Begin()
	if err != nil {
		if errors.Is(err, shared.ErrConfiguration) {
			r.writePlain("Google login is not configured. Set google.client_id in config.toml.\n")
		}
		return err
	}

	r.logger.Debug("login started", "state", attempt.State)
	r.writePlain("Waiting for the browser callback on http://%s/callback ...\n", addr)

	timeout := time.Duration(cmd.Int("timeout")) * time.Second

	select {
	case outcome := <-handler.Result():
		return r.finishLogin(outcome)
	case err := <-serverErr:
		return fmt.Errorf("callback server failed: %w", err)
	case <-time.After(timeout):
		return fmt.Errorf("%w: no callback within %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) finishLogin(outcome auth.Outcome) error {
	if outcome.Status != auth.StatusExchanged {
		var down *services.ServiceDownError
		if errors.As(outcome.Err, &down) {
			r.writeOutage(down.Status)
		}
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, outcome.Err)
	}

	profile := outcome.Session.Profile()
	r.writePlain("✓ Logged in as %s (%s)\n", profile.DisplayName, profile.Email)
	return nil
}

// AuthLogout discards the stored session. Logging out twice is harmless.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.sessions.Clear(); err != nil {
		return err
	}

	r.logger.Info("session cleared")
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows the current session, if any.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.sessions.Current()
	if err != nil {
		return err
	}

	if session == nil {
		return r.writePlain("✗ Not logged in\n")
	}

	profile := session.Profile()

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}

	r.writePlain("✓ Logged in\n")
	r.writePlain("Name: %s\n", profile.DisplayName)
	r.writePlain("Email: %s\n", profile.Email)
	r.writePlain("Since: %s\n", session.CreatedAt().Format("2006-01-02 15:04"))
	return nil
}

// HealthCheck probes the backend and reports outages in detail.
func (r *Runner) HealthCheck(ctx context.Context, cmd *cli.Command) error {
	if err := r.svc.Health(ctx); err != nil {
		var down *services.ServiceDownError
		if errors.As(err, &down) {
			r.writeOutage(down.Status)
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	return r.writePlain("✓ Service is healthy\n")
}
