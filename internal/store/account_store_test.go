package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAccountStoreCreate(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO accounts") || strings.Contains(query, "ON CONFLICT") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "alice.test" || args[1] != "hash" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := NewAccountStore(stubDB{}).Create(ctx, execer, "alice.test", "hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountStoreUpsert(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "ON CONFLICT (id) DO UPDATE") {
				t.Fatalf("unexpected query: %s", query)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := NewAccountStore(stubDB{}).Upsert(ctx, execer, "fundchain", "hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountStoreGetSecretHash(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM accounts") || args[0] != "alice.test" {
				t.Fatalf("unexpected query: %s %#v", query, args)
			}
			*dest.(*string) = "hash"
			return nil
		},
	})
	hash, err := store.GetSecretHash(ctx, "alice.test")
	if err != nil || hash != "hash" {
		t.Fatalf("unexpected result %q (%v)", hash, err)
	}
}

func TestAccountStoreGetSecretHashNotFound(t *testing.T) {
	store := NewAccountStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error { return sql.ErrNoRows },
	})
	if _, err := store.GetSecretHash(context.Background(), "ghost"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
