package services

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"pennywise/internal/models"
	"pennywise/internal/store"
	"pennywise/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// memStore is an in-memory double for the account and transaction stores.
// It applies balance increments for real so tests can assert the cached
// balance stays equal to the summed signed effects.
type memStore struct {
	accounts     map[string]models.Account
	transactions map[string]models.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[string]models.Account),
		transactions: make(map[string]models.Transaction),
	}
}

func (m *memStore) addAccount(account models.Account) {
	m.accounts[account.ID] = account
}

func (m *memStore) GetOwned(ctx context.Context, accountID, ownerID string) (models.Account, error) {
	account, ok := m.accounts[accountID]
	if !ok || account.OwnerID != ownerID {
		return models.Account{}, sql.ErrNoRows
	}
	return account, nil
}

func (m *memStore) GetOwnedForUpdate(ctx context.Context, tx store.Getter, accountID, ownerID string) (models.Account, error) {
	return m.GetOwned(ctx, accountID, ownerID)
}

func (m *memStore) AdjustBalance(ctx context.Context, tx store.Getter, accountID string, delta int64) (int64, error) {
	account, ok := m.accounts[accountID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	account.Balance += delta
	m.accounts[accountID] = account
	return account.Balance, nil
}

func (m *memStore) Create(ctx context.Context, tx store.Execer, txn models.Transaction) error {
	m.transactions[txn.ID] = txn
	return nil
}

func (m *memStore) GetOwnedTransaction(ctx context.Context, transactionID, ownerID string) (models.Transaction, error) {
	txn, ok := m.transactions[transactionID]
	if !ok || txn.OwnerID != ownerID {
		return models.Transaction{}, sql.ErrNoRows
	}
	return txn, nil
}

func (m *memStore) Update(ctx context.Context, tx store.Execer, txn models.Transaction) error {
	m.transactions[txn.ID] = txn
	return nil
}

func (m *memStore) SetTags(ctx context.Context, tx store.Execer, transactionID string, tags []string) error {
	txn := m.transactions[transactionID]
	txn.Tags = tags
	m.transactions[transactionID] = txn
	return nil
}

func (m *memStore) Delete(ctx context.Context, tx store.Execer, transactionID string) (int64, error) {
	if _, ok := m.transactions[transactionID]; !ok {
		return 0, nil
	}
	delete(m.transactions, transactionID)
	return 1, nil
}

func (m *memStore) DeleteByAccount(ctx context.Context, tx store.Execer, accountID string) (int64, error) {
	var deleted int64
	for id, txn := range m.transactions {
		if txn.AccountID == accountID {
			delete(m.transactions, id)
			deleted++
		}
	}
	return deleted, nil
}

// sumEffects recomputes an account's balance from scratch, the way the
// cached running total is defined.
func (m *memStore) sumEffects(accountID string) int64 {
	var sum int64
	for _, txn := range m.transactions {
		if txn.AccountID != accountID {
			continue
		}
		if txn.Kind == models.KindIncome {
			sum += txn.Amount
		} else {
			sum -= txn.Amount
		}
	}
	return sum
}

// memTransactionStore adapts memStore to the TransactionStore interface
// (GetOwned name collides with the account accessor).
type memTransactionStore struct {
	*memStore
}

func (m memTransactionStore) GetOwned(ctx context.Context, transactionID, ownerID string) (models.Transaction, error) {
	return m.GetOwnedTransaction(ctx, transactionID, ownerID)
}

func (m memTransactionStore) GetOwnedForUpdate(ctx context.Context, tx store.Getter, transactionID, ownerID string) (models.Transaction, error) {
	return m.GetOwnedTransaction(ctx, transactionID, ownerID)
}

type memAccountStore struct {
	*memStore
}

func (m memAccountStore) Create(ctx context.Context, tx store.Execer, account models.Account) error {
	m.accounts[account.ID] = account
	return nil
}

func (m memAccountStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error) {
	var out []models.Account
	for _, account := range m.accounts {
		if account.OwnerID == ownerID {
			out = append(out, account)
		}
	}
	return out, nil
}

func (m memAccountStore) UpdateFields(ctx context.Context, tx store.Execer, accountID, name string, kind models.AccountKind) error {
	account, ok := m.accounts[accountID]
	if !ok {
		return sql.ErrNoRows
	}
	account.Name = name
	account.Kind = kind
	m.accounts[accountID] = account
	return nil
}

func (m memAccountStore) Delete(ctx context.Context, tx store.Execer, accountID string) (int64, error) {
	if _, ok := m.accounts[accountID]; !ok {
		return 0, nil
	}
	delete(m.accounts, accountID)
	return 1, nil
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	r.actions = append(r.actions, action)
	return nil
}

type recordingHub struct {
	updates []websocket.BalanceUpdate
}

func (r *recordingHub) BroadcastBalance(userID string, update websocket.BalanceUpdate) {
	r.updates = append(r.updates, update)
}

func newTestTransactionService(mem *memStore) (*TransactionService, *recordingAudit, *recordingHub) {
	audit := &recordingAudit{}
	hub := &recordingHub{}
	svc := NewTransactionService(fakeTxRunner{}, memAccountStore{mem}, memTransactionStore{mem}, audit, hub)
	return svc, audit, hub
}
