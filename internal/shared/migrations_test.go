package shared

import "testing"

func TestMigrations(t *testing.T) {
	t.Run("RunMigrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		t.Run("creates the expected tables", func(t *testing.T) {
			for _, table := range []string{"sessions", "pending_logins", "links", "links_sequence"} {
				var name string
				err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
				if err != nil {
					t.Errorf("expected table %s to exist: %v", table, err)
				}
			}
		})

		t.Run("seeds the link sequence", func(t *testing.T) {
			var value int
			if err := db.QueryRow("SELECT value FROM links_sequence WHERE id = 1").Scan(&value); err != nil {
				t.Fatalf("expected a seeded sequence row: %v", err)
			}
			if value != 0 {
				t.Errorf("expected sequence to start at 0, got %d", value)
			}
		})

		t.Run("is idempotent", func(t *testing.T) {
			if err := RunMigrations(db); err != nil {
				t.Errorf("second run should be a no-op: %v", err)
			}

			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
				t.Fatalf("failed to count migrations: %v", err)
			}
			if count != 1 {
				t.Errorf("expected one recorded migration, got %d", count)
			}
		})
	})

	t.Run("RollbackMigration", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		t.Run("fails with nothing applied", func(t *testing.T) {
			if err := RunMigrations(db); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := RollbackMigration(db); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='sessions'").Scan(&name)
			if err == nil {
				t.Error("expected sessions table to be dropped")
			}

			if err := RollbackMigration(db); err == nil {
				t.Error("expected an error with no migrations applied")
			}
		})
	})
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}

	for _, m := range migrations {
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d is missing up or down SQL", m.Version)
		}
	}
}
