package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"pennywise/internal/models"
)

func TestTransactionStoreCreate(t *testing.T) {
	execer := &recordingExecer{rows: 1}
	store := NewTransactionStore(stubDB{})
	txn := models.Transaction{
		ID:        "txn-1",
		OwnerID:   "user-1",
		AccountID: "acc-1",
		Amount:    10000,
		Kind:      models.KindExpense,
		Category:  "groceries",
		Tags:      []string{"weekly"},
	}
	if err := store.Create(context.Background(), execer, txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(execer.queries[0], "INSERT INTO transactions") {
		t.Fatalf("unexpected query: %s", execer.queries[0])
	}
	if len(execer.args[0]) != 9 {
		t.Fatalf("expected 9 args, got %d", len(execer.args[0]))
	}
}

func TestTransactionStoreGetOwnedForUpdateLocksRow(t *testing.T) {
	store := NewTransactionStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock, got: %s", query)
			}
			if !strings.Contains(query, "owner_id = $2") {
				t.Fatalf("expected owner scoping, got: %s", query)
			}
			*dest.(*models.Transaction) = models.Transaction{ID: "txn-1", Amount: 100}
			return nil
		},
	}
	txn, err := store.GetOwnedForUpdate(context.Background(), getter, "txn-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Amount != 100 {
		t.Fatalf("unexpected transaction: %#v", txn)
	}
}

func TestTransactionStoreDeleteByAccountReportsCount(t *testing.T) {
	execer := &recordingExecer{rows: 7}
	store := NewTransactionStore(stubDB{})
	count, err := store.DeleteByAccount(context.Background(), execer, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 deleted rows, got %d", count)
	}
	if !strings.Contains(execer.queries[0], "WHERE account_id = $1") {
		t.Fatalf("unexpected query: %s", execer.queries[0])
	}
}

func TestTransactionStoreListAppliesFilters(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			for _, frag := range []string{"kind = $2", "category = $3", "account_id = $4", "occurred_at >= $5", "occurred_at <= $6", "LIMIT $7 OFFSET $8"} {
				if !strings.Contains(query, frag) {
					t.Fatalf("missing %q in query: %s", frag, query)
				}
			}
			if len(args) != 8 || args[0] != "user-1" || args[1] != models.KindExpense {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]models.Transaction) = []models.Transaction{{ID: "txn-1"}}
			return nil
		},
	})
	rows, err := store.List(context.Background(), "user-1", TransactionFilter{
		Kind:      models.KindExpense,
		Category:  "groceries",
		AccountID: "acc-1",
		Start:     &start,
		End:       &end,
	}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "txn-1" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestTransactionStoreCountUsesSameFilter(t *testing.T) {
	store := NewTransactionStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "SELECT COUNT(*) FROM transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "kind = $2") {
				t.Fatalf("expected kind filter, got: %s", query)
			}
			*dest.(*int) = 42
			return nil
		},
	})
	total, err := store.Count(context.Background(), "user-1", TransactionFilter{Kind: models.KindIncome})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Fatalf("expected 42, got %d", total)
	}
}

func TestTransactionStoreSetTags(t *testing.T) {
	execer := &recordingExecer{rows: 1}
	store := NewTransactionStore(stubDB{})
	if err := store.SetTags(context.Background(), execer, "txn-1", []string{"a", "b", "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(execer.queries[0], "SET tags = $1") {
		t.Fatalf("unexpected query: %s", execer.queries[0])
	}
}
