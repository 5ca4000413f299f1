package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/chainydev/chainyctl/internal/shared"
)

func TestExchangeCode(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the full exchange payload", func(t *testing.T) {
		var received map[string]string
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/google" || r.Method != http.MethodPost {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"jwt": "backend-jwt",
				"user": map[string]string{
					"id":    "sub-1",
					"name":  "Example User",
					"email": "user@example.com",
				},
			})
		}))

		credential, profile, err := f.client.ExchangeCode(ctx, "auth-code", "the-verifier")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if credential != "backend-jwt" {
			t.Errorf("unexpected credential: %q", credential)
		}
		if profile.Email != "user@example.com" {
			t.Errorf("unexpected profile: %+v", profile)
		}

		if received["googleToken"] != "auth-code" {
			t.Errorf("unexpected googleToken: %q", received["googleToken"])
		}
		if received["provider"] != "google" || received["tokenType"] != "code" {
			t.Errorf("unexpected provider fields: %+v", received)
		}
		if received["codeVerifier"] != "the-verifier" {
			t.Errorf("expected the verifier to be forwarded, got %q", received["codeVerifier"])
		}
		if received["redirectUri"] == "" {
			t.Error("expected the redirect uri to be forwarded")
		}
	})

	t.Run("surfaces the backend rejection message", func(t *testing.T) {
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"invalid authorization code"}`))
		}))

		_, _, err := f.client.ExchangeCode(ctx, "bad-code", "verifier")
		if !errors.Is(err, shared.ErrExchange) {
			t.Fatalf("expected an exchange error, got %v", err)
		}
		if got := err.Error(); !strings.Contains(got, "invalid authorization code") {
			t.Errorf("expected the backend message, got %q", got)
		}
	})

	t.Run("rejects a success response without a credential", func(t *testing.T) {
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user":{"id":"sub-1"}}`))
		}))

		_, _, err := f.client.ExchangeCode(ctx, "auth-code", "verifier")
		if !errors.Is(err, shared.ErrExchange) {
			t.Errorf("expected an exchange error, got %v", err)
		}
	})
}

func TestLinkOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateLink posts the target and custom code", func(t *testing.T) {
		var received map[string]string
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&received)
			w.Write([]byte(`{"short_code":"mycode","original_url":"https://example.com/page"}`))
		}))
		f.login(t)

		link, err := f.client.CreateLink(ctx, "https://example.com/page", "mycode")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if link.Code != "mycode" {
			t.Errorf("unexpected code: %q", link.Code)
		}
		if received["url"] != "https://example.com/page" || received["custom_code"] != "mycode" {
			t.Errorf("unexpected payload: %+v", received)
		}
	})

	t.Run("CreateLink rejects an empty target locally", func(t *testing.T) {
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected no request")
		}))
		f.login(t)

		if _, err := f.client.CreateLink(ctx, "", ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected an invalid input error, got %v", err)
		}
	})

	t.Run("GetLink maps a 404 to a not found error", func(t *testing.T) {
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		f.login(t)

		if _, err := f.client.GetLink(ctx, "missing"); !errors.Is(err, shared.ErrLinkNotFound) {
			t.Errorf("expected a not found error, got %v", err)
		}
	})

	t.Run("DeleteLink maps a 404 to a not found error", func(t *testing.T) {
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		f.login(t)

		if err := f.client.DeleteLink(ctx, "missing"); !errors.Is(err, shared.ErrLinkNotFound) {
			t.Errorf("expected a not found error, got %v", err)
		}
	})

	t.Run("Health succeeds without a session", func(t *testing.T) {
		f := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"status":"ok"}`))
		}))

		if err := f.client.Health(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
