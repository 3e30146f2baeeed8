package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"pennywise/internal/models"
)

func TestAccountStoreCreate(t *testing.T) {
	ctx := context.Background()
	execer := &recordingExecer{rows: 1}
	store := NewAccountStore(stubDB{})
	account := models.Account{
		ID:      "acc-1",
		OwnerID: "user-1",
		Name:    "Groceries",
		Kind:    models.AccountCash,
		Balance: 0,
	}
	if err := store.Create(ctx, execer, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(execer.queries) != 1 || !strings.Contains(execer.queries[0], "INSERT INTO accounts") {
		t.Fatalf("unexpected queries: %#v", execer.queries)
	}
	args := execer.args[0]
	if len(args) != 5 || args[0] != "acc-1" || args[1] != "user-1" || args[3] != models.AccountCash {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestAccountStoreGetOwnedScopesByOwner(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "id = $1 AND owner_id = $2") {
				t.Fatalf("expected owner-scoped query, got: %s", query)
			}
			if len(args) != 2 || args[0] != "acc-1" || args[1] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.Account) = models.Account{ID: "acc-1", OwnerID: "user-1", Balance: 500}
			return nil
		},
	})
	account, err := store.GetOwned(ctx, "acc-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Balance != 500 {
		t.Fatalf("unexpected account: %#v", account)
	}
}

func TestAccountStoreGetOwnedMissing(t *testing.T) {
	store := NewAccountStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			return sql.ErrNoRows
		},
	})
	if _, err := store.GetOwned(context.Background(), "acc-404", "user-1"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestAccountStoreAdjustBalanceIsAtomicIncrement(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "SET balance = balance + $1") {
				t.Fatalf("expected atomic increment, got: %s", query)
			}
			if !strings.Contains(query, "RETURNING balance") {
				t.Fatalf("expected RETURNING balance, got: %s", query)
			}
			if len(args) != 2 || args[0] != int64(-2500) || args[1] != "acc-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*int64) = 7500
			return nil
		},
	}
	balance, err := store.AdjustBalance(ctx, getter, "acc-1", -2500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 7500 {
		t.Fatalf("expected 7500, got %d", balance)
	}
}

func TestAccountStoreUpdateFieldsNeverTouchesBalance(t *testing.T) {
	execer := &recordingExecer{rows: 1}
	store := NewAccountStore(stubDB{})
	if err := store.UpdateFields(context.Background(), execer, "acc-1", "Renamed", models.AccountSavings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(execer.queries[0], "balance") {
		t.Fatalf("field update must not mention balance: %s", execer.queries[0])
	}
}

func TestAccountStoreDelete(t *testing.T) {
	execer := &recordingExecer{rows: 1}
	store := NewAccountStore(stubDB{})
	rows, err := store.Delete(context.Background(), execer, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 affected row, got %d", rows)
	}
	if !strings.Contains(execer.queries[0], "DELETE FROM accounts") {
		t.Fatalf("unexpected query: %s", execer.queries[0])
	}
}
