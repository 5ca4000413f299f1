package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.Endpoint == "" {
			t.Error("expected a default API endpoint")
		}

		if config.API.Locale != "en" {
			t.Errorf("expected default locale en, got %q", config.API.Locale)
		}

		if config.Google.RedirectURI == "" {
			t.Error("expected a default redirect URI")
		}

		if config.Server.Port == 0 {
			t.Error("expected a default callback server port")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("parses a valid file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[api]
endpoint = "https://api.example.com"
locale = "zh"

[google]
client_id = "client-123"
redirect_uri = "http://localhost:3000/callback"

[database]
path = "test.db"
max_open_conns = 5
max_idle_conns = 2

[server]
host = "localhost"
port = 3000
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if config.API.Endpoint != "https://api.example.com" {
				t.Errorf("unexpected endpoint: %q", config.API.Endpoint)
			}

			if config.API.Locale != "zh" {
				t.Errorf("unexpected locale: %q", config.API.Locale)
			}

			if config.Google.ClientID != "client-123" {
				t.Errorf("unexpected client id: %q", config.Google.ClientID)
			}

			if config.Database.MaxOpenConns != 5 {
				t.Errorf("unexpected max open conns: %d", config.Database.MaxOpenConns)
			}
		})

		t.Run("fails on a missing file", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
				t.Error("expected an error for a missing file")
			}
		})

		t.Run("fails on malformed toml", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Error("expected an error for malformed toml")
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		t.Run("writes the example config", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := CreateConfigFile(path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("created config should parse: %v", err)
			}

			if config.API.Endpoint == "" {
				t.Error("expected the created config to carry defaults")
			}
		})

		t.Run("refuses to overwrite", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := CreateConfigFile(path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := CreateConfigFile(path); err == nil {
				t.Error("expected an error when the file already exists")
			}
		})
	})

	t.Run("SaveConfig round-trips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Google.ClientID = "saved-client"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if loaded.Google.ClientID != "saved-client" {
			t.Errorf("expected saved client id to survive, got %q", loaded.Google.ClientID)
		}
	})
}
