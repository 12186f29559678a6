package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openTestDB подключается к базе из STORE_TEST_DSN; без неё тесты пропускаются.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("STORE_TEST_DSN")
	if dsn == "" {
		t.Skip("STORE_TEST_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// повторный вызов не ломается
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema again: %v", err)
	}
	return db
}

func TestSessionRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepo(db)
	chatID := time.Now().UnixNano()
	t.Cleanup(func() { _ = repo.Remove(ctx, chatID, "isLoggedIn") })

	if _, ok, err := repo.Get(ctx, chatID, "isLoggedIn"); err != nil || ok {
		t.Fatalf("fresh: ok=%v err=%v", ok, err)
	}
	if err := repo.Set(ctx, chatID, "isLoggedIn", "false"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Set(ctx, chatID, "isLoggedIn", "true"); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := repo.Get(ctx, chatID, "isLoggedIn"); err != nil || !ok || v != "true" {
		t.Fatalf("after upsert: %q ok=%v err=%v", v, ok, err)
	}
	if err := repo.Remove(ctx, chatID, "isLoggedIn"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := repo.Get(ctx, chatID, "isLoggedIn"); ok {
		t.Fatal("flag still present after Remove")
	}
}

func TestResultRepoRecent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewResultRepo(db)
	chatID := time.Now().UnixNano()
	t.Cleanup(func() { _, _ = db.ExecContext(ctx, `delete from screening_results where chat_id=$1`, chatID) })

	for _, label := range []string{"first", "second", "third"} {
		if err := repo.Insert(ctx, ResultRow{ChatID: chatID, Kind: "malaria", Type: "outcome", Severity: "negative", Label: label}); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := repo.Recent(ctx, chatID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Label != "third" || rows[1].Label != "second" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
