package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/JericoFX/advance-manager/internal/infrastructure/config"
	"github.com/JericoFX/advance-manager/internal/infrastructure/database"
)

// SetupTestDB connects to the test database and runs migrations. The test
// is skipped unless INTEGRATION is set.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("Skipping integration test. Set INTEGRATION=1 to run")
	}

	if err := config.InitConfig("test"); err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	pg, err := database.NewPostgres(context.Background(), &cfg.Database)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	path, err := database.FindMigrationsPath()
	if err != nil {
		t.Fatalf("Failed to locate migrations: %v", err)
	}
	if err := pg.RunMigrations(path); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pg.DB
}

// CleanupTestDB removes all rows and closes the connection
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range []string{"business_employees", "businesses"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("Warning: Failed to clean up table %s: %v", table, err)
		}
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}
