package services

import (
	"context"
	"testing"

	"pennywise/internal/models"
)

func newTestAccountService(mem *memStore) (*AccountService, *recordingAudit) {
	audit := &recordingAudit{}
	svc := NewAccountService(fakeTxRunner{}, memAccountStore{mem}, memTransactionStore{mem}, audit)
	return svc, audit
}

func TestAccountCreateDefaultsKind(t *testing.T) {
	mem := newMemStore()
	svc, audit := newTestAccountService(mem)

	account, err := svc.Create(context.Background(), CreateAccountRequest{OwnerID: "user-1", Name: "  Wallet "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Kind != models.AccountChecking {
		t.Fatalf("expected default kind, got %s", account.Kind)
	}
	if account.Name != "Wallet" {
		t.Fatalf("expected trimmed name, got %q", account.Name)
	}
	if account.Balance != 0 {
		t.Fatalf("new accounts start at zero, got %d", account.Balance)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "account.create" {
		t.Fatalf("expected audit entry, got %#v", audit.actions)
	}
}

func TestAccountCreateRejectsBadInput(t *testing.T) {
	mem := newMemStore()
	svc, _ := newTestAccountService(mem)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateAccountRequest{OwnerID: "user-1", Name: "   "}); err != ErrMissingField {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateAccountRequest{OwnerID: "user-1", Name: "Wallet", Kind: "offshore"}); err != ErrInvalidAccountKind {
		t.Fatalf("expected ErrInvalidAccountKind, got %v", err)
	}
}

func TestAccountUpdateNeverTouchesBalance(t *testing.T) {
	mem := newMemStore()
	mem.addAccount(models.Account{ID: "acc-1", OwnerID: "user-1", Name: "Old", Kind: models.AccountCash, Balance: 777})
	svc, _ := newTestAccountService(mem)

	name := "New name"
	kind := models.AccountSavings
	updated, err := svc.Update(context.Background(), "user-1", "acc-1", AccountPatch{Name: &name, Kind: &kind})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "New name" || updated.Kind != models.AccountSavings {
		t.Fatalf("unexpected account: %#v", updated)
	}
	if mem.accounts["acc-1"].Balance != 777 {
		t.Fatalf("balance must survive field edits, got %d", mem.accounts["acc-1"].Balance)
	}
}

func TestAccountUpdatePartial(t *testing.T) {
	mem := newMemStore()
	mem.addAccount(models.Account{ID: "acc-1", OwnerID: "user-1", Name: "Old", Kind: models.AccountCash})
	svc, _ := newTestAccountService(mem)

	kind := models.AccountCredit
	updated, err := svc.Update(context.Background(), "user-1", "acc-1", AccountPatch{Kind: &kind})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Old" {
		t.Fatalf("name must keep prior value, got %q", updated.Name)
	}
}

func TestAccountCascadeDelete(t *testing.T) {
	mem := newMemStore()
	mem.addAccount(models.Account{ID: "acc-1", OwnerID: "user-1", Name: "Main", Balance: 300})
	txnSvc, _, _ := newTestTransactionService(mem)
	first := seedTransaction(t, txnSvc, 100, models.KindIncome)
	second := seedTransaction(t, txnSvc, 50, models.KindExpense)
	svc, _ := newTestAccountService(mem)

	result, err := svc.Delete(context.Background(), "user-1", "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DeletedTransactions != 2 {
		t.Fatalf("expected 2 deleted transactions, got %d", result.DeletedTransactions)
	}
	if result.Account.ID != "acc-1" {
		t.Fatalf("expected account snapshot, got %#v", result.Account)
	}
	for _, id := range []string{first.ID, second.ID} {
		if _, err := txnSvc.Get(context.Background(), "user-1", id); err != ErrNotFound {
			t.Fatalf("expected cascade to remove %s, got %v", id, err)
		}
	}
	if _, err := svc.Get(context.Background(), "user-1", "acc-1"); err != ErrNotFound {
		t.Fatalf("expected account gone, got %v", err)
	}
}

func TestAccountDeleteNotOwned(t *testing.T) {
	mem := newMemStore()
	mem.addAccount(models.Account{ID: "acc-1", OwnerID: "user-2"})
	svc, _ := newTestAccountService(mem)

	if _, err := svc.Delete(context.Background(), "user-1", "acc-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(mem.accounts) != 1 {
		t.Fatal("foreign account must survive")
	}
}
