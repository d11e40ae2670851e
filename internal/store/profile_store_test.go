package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"fundchain/internal/models"
)

func TestProfileStoreCreate(t *testing.T) {
	bio := "hello"
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO profiles") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[0] != "alice.test" || args[1] != "alice" || args[2] != &bio {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := NewProfileStore(stubDB{}).Create(context.Background(), execer, "alice.test", "alice", &bio); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProfileStoreGetForUpdateLocks(t *testing.T) {
	tx := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock: %s", query)
			}
			*dest.(*models.UserProfile) = models.UserProfile{AccountID: "alice.test", Username: "alice"}
			return nil
		},
	}
	profile, err := NewProfileStore(stubDB{}).GetForUpdate(context.Background(), tx, "alice.test")
	if err != nil || profile.Username != "alice" {
		t.Fatalf("unexpected profile %#v (%v)", profile, err)
	}
}

func TestProfileStoreAddContributionDeduplicates(t *testing.T) {
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "array_append(contributions") || !strings.Contains(query, "NOT ($2::bigint = ANY(contributions))") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "alice.test" || args[1] != uint64(3) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 0}, nil
		},
	}
	if err := NewProfileStore(stubDB{}).AddContribution(context.Background(), execer, "alice.test", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProfileStoreRowsAffected(t *testing.T) {
	store := NewProfileStore(stubDB{})
	execer := stubExecer{
		execFn: func(context.Context, string, ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	}
	for name, fn := range map[string]func() (int64, error){
		"bio":    func() (int64, error) { return store.UpdateBio(context.Background(), execer, "ghost", nil) },
		"kyc":    func() (int64, error) { return store.SetKYCVerified(context.Background(), execer, "ghost") },
		"delete": func() (int64, error) { return store.Delete(context.Background(), execer, "ghost") },
	} {
		n, err := fn()
		if err != nil || n != 0 {
			t.Fatalf("%s: expected 0 rows, got %d (%v)", name, n, err)
		}
	}
}
