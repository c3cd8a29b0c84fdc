// store_test.go provides the shared helpers for store tests: a sqlmock
// constructor for unit tests and a real database for integration tests,
// which are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blockpress/internal/database"
	"blockpress/internal/models"
)

// newMock returns a sqlmock-backed *sql.DB and verifies that every
// expectation was met when the test ends.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var (
	pageCols  = []string{"id", "site_id", "slug", "title", "status", "meta_description", "header_template_id", "footer_template_id", "page_template_id", "published_at", "created_at", "updated_at"}
	blockCols = []string{"id", "page_id", "component_type", "props", "order_index", "is_visible", "created_at", "updated_at"}
	siteCols  = []string{"id", "name", "domain", "status", "created_at", "updated_at"}
)

func pageRow(rows *sqlmock.Rows, siteID, id uuid.UUID, slug string, status models.PageStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id.String(), siteID.String(), slug, "Title "+slug, string(status), nil, nil, nil, nil, nil, now, now)
}

// testDSN returns the PostgreSQL connection string for integration tests.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blockpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blockpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	// Reset goose global state for other packages.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testSite creates a throwaway site that is removed (with everything it
// owns) when the test ends.
func testSite(t *testing.T, db *sql.DB) *models.Site {
	t.Helper()
	site, err := NewSiteStore(db).Create(&models.Site{Name: "store-test " + uuid.NewString()})
	if err != nil {
		t.Fatalf("create test site: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM sites WHERE id = $1", site.ID) })
	return site
}

func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", e)
	}
}
