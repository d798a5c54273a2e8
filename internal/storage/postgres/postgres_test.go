package postgres

import (
	"context"
	"os"
	"testing"

	"fintrack/internal/storage"
	"fintrack/internal/storage/storagetest"
)

func TestMigrationURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/db?sslmode=disable": "pgx5://u:p@localhost:5432/db?sslmode=disable",
		"postgresql://localhost/db":                        "pgx5://localhost/db",
		"pgx5://localhost/db":                              "pgx5://localhost/db",
	}
	for in, want := range cases {
		if got := migrationURL(in); got != want {
			t.Errorf("migrationURL(%q) = %q, want %q", in, got, want)
		}
	}
}

// Runs against a disposable database named by FINTRACK_TEST_DATABASE_URL.
func TestStore(t *testing.T) {
	dsn := os.Getenv("FINTRACK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FINTRACK_TEST_DATABASE_URL not set")
	}
	storagetest.Run(t, func(t *testing.T) storage.Store {
		ctx := context.Background()
		s, err := Connect(ctx, dsn)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.pool.Exec(ctx, "TRUNCATE transactions, users"); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}
