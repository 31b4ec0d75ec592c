package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/categories"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if u := m.Users(db); u == nil {
		t.Fatal("Users() nil")
	}
	if c := m.Categories(db); c == nil {
		t.Fatal("Categories() nil")
	}
	if r := m.Recipes(db); r == nil {
		t.Fatal("Recipes() nil")
	}
	if i := m.Ingredients(db); i == nil {
		t.Fatal("Ingredients() nil")
	}

	var _ users.Repository = m.Users(db)
	var _ categories.Repository = m.Categories(db)
	var _ recipes.Repository = m.Recipes(db)
	var _ ingredients.Repository = m.Ingredients(db)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpen_PingsDatabase(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing()

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" || dsn != "postgres://x" {
			t.Fatalf("unexpected open(%q, %q)", driver, dsn)
		}
		return db, nil
	}
	defer func() { sqlOpen = orig }()

	got, err := Open(context.Background(), "postgres://x")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got != db {
		t.Fatal("expected the opened handle")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpen_PingError(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }
	defer func() { sqlOpen = orig }()

	if _, err := Open(context.Background(), "postgres://x"); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestOpen_OpenError(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("bad driver") }
	defer func() { sqlOpen = orig }()

	if _, err := Open(context.Background(), "postgres://x"); err == nil {
		t.Fatal("expected open error")
	}
}
