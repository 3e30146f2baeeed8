package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pennywise/internal/db"
	"pennywise/internal/ledger"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/store"
	"pennywise/internal/websocket"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMissingField      = errors.New("missing required field")
	ErrImmutableField    = errors.New("field cannot be changed")
)

type AccountStore interface {
	GetOwnedForUpdate(ctx context.Context, tx store.Getter, accountID, ownerID string) (models.Account, error)
	AdjustBalance(ctx context.Context, tx store.Getter, accountID string, delta int64) (int64, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, txn models.Transaction) error
	GetOwned(ctx context.Context, transactionID, ownerID string) (models.Transaction, error)
	GetOwnedForUpdate(ctx context.Context, tx store.Getter, transactionID, ownerID string) (models.Transaction, error)
	Update(ctx context.Context, tx store.Execer, txn models.Transaction) error
	SetTags(ctx context.Context, tx store.Execer, transactionID string, tags []string) error
	Delete(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// TransactionService orchestrates every transaction mutation together with
// the paired balance adjustment on the owning account. Each mutation runs
// inside one serializable database transaction, so the transaction row and
// the balance increment commit or fail as a unit.
type TransactionService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	audit        AuditStore
	hub          BalanceHub
}

func NewTransactionService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, audit AuditStore, hub BalanceHub) *TransactionService {
	return &TransactionService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		audit:        audit,
		hub:          hub,
	}
}

type CreateTransactionRequest struct {
	OwnerID     string
	AccountID   string
	AmountMinor int64
	Kind        models.TransactionKind
	Category    string
	Description string
	Tags        []string
	OccurredAt  *time.Time
}

func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (models.Transaction, error) {
	if req.AmountMinor <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	if strings.TrimSpace(req.Category) == "" {
		return models.Transaction{}, ErrMissingField
	}
	delta, err := ledger.SignedEffect(req.AmountMinor, req.Kind)
	if err != nil {
		return models.Transaction{}, err
	}
	occurred := time.Now().UTC()
	if req.OccurredAt != nil {
		occurred = req.OccurredAt.UTC()
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	created := models.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     req.OwnerID,
		AccountID:   req.AccountID,
		Amount:      req.AmountMinor,
		Kind:        req.Kind,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Tags:        tags,
		OccurredAt:  occurred,
	}
	var balanceAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetOwnedForUpdate(ctx, tx, req.AccountID, req.OwnerID)
		if err != nil {
			return mapNoRows(err)
		}
		// Only the expense path checks funds; income never does.
		if req.Kind == models.KindExpense && account.Balance < req.AmountMinor {
			return ErrInsufficientFunds
		}
		if err := s.transactions.Create(ctx, tx, created); err != nil {
			return err
		}
		balanceAfter, err = s.accounts.AdjustBalance(ctx, tx, account.ID, delta)
		if err != nil {
			return err
		}
		return s.logBalanceOp(ctx, tx, req.OwnerID, "transaction.create", created.ID, account.ID, delta, balanceAfter)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.broadcast(req.OwnerID, req.AccountID, balanceAfter)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, transactionID string) (models.Transaction, error) {
	txn, err := s.transactions.GetOwned(ctx, transactionID, ownerID)
	if err != nil {
		return models.Transaction{}, mapNoRows(err)
	}
	return txn, nil
}

// TransactionPatch distinguishes "not provided" (nil pointer) from an
// explicit value, so unspecified fields keep their prior values.
type TransactionPatch struct {
	AccountID   *string
	AmountMinor *int64
	Kind        *models.TransactionKind
	Category    *string
	Description *string
	Tags        *[]string
	OccurredAt  *time.Time
}

// mergePatch applies the provided fields onto an existing transaction and
// validates the result. Moving a transaction between accounts is rejected:
// the balance arithmetic assumes a single account for its whole lifetime.
func mergePatch(txn models.Transaction, patch TransactionPatch) (models.Transaction, error) {
	if patch.AccountID != nil && *patch.AccountID != txn.AccountID {
		return models.Transaction{}, ErrImmutableField
	}
	if patch.AmountMinor != nil {
		if *patch.AmountMinor <= 0 {
			return models.Transaction{}, ErrInvalidAmount
		}
		txn.Amount = *patch.AmountMinor
	}
	if patch.Kind != nil {
		if !models.ValidTransactionKind(*patch.Kind) {
			return models.Transaction{}, ledger.ErrInvalidKind
		}
		txn.Kind = *patch.Kind
	}
	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			return models.Transaction{}, ErrMissingField
		}
		txn.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Description != nil {
		txn.Description = *patch.Description
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		txn.Tags = tags
	}
	if patch.OccurredAt != nil {
		txn.OccurredAt = patch.OccurredAt.UTC()
	}
	return txn, nil
}

// Update applies a partial update. When amount or kind changes, the old
// effect is reversed and the new one applied as two sequential increments.
// Insufficient funds is deliberately not re-checked here; only create
// enforces it.
func (s *TransactionService) Update(ctx context.Context, ownerID, transactionID string, patch TransactionPatch) (models.Transaction, error) {
	var updated models.Transaction
	var balanceAfter int64
	var accountID string
	var moved bool
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		old, err := s.transactions.GetOwnedForUpdate(ctx, tx, transactionID, ownerID)
		if err != nil {
			return mapNoRows(err)
		}
		merged, err := mergePatch(old, patch)
		if err != nil {
			return err
		}
		accountID = old.AccountID
		if merged.Amount != old.Amount || merged.Kind != old.Kind {
			undo, err := ledger.ReverseEffect(old.Amount, old.Kind)
			if err != nil {
				return err
			}
			redo, err := ledger.SignedEffect(merged.Amount, merged.Kind)
			if err != nil {
				return err
			}
			if _, err := s.accounts.AdjustBalance(ctx, tx, old.AccountID, undo); err != nil {
				return err
			}
			balanceAfter, err = s.accounts.AdjustBalance(ctx, tx, old.AccountID, redo)
			if err != nil {
				return err
			}
			moved = true
			if err := s.logBalanceOp(ctx, tx, ownerID, "transaction.update", old.ID, old.AccountID, undo+redo, balanceAfter); err != nil {
				return err
			}
		}
		if err := s.transactions.Update(ctx, tx, merged); err != nil {
			return err
		}
		updated = merged
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	if moved {
		s.broadcast(ownerID, accountID, balanceAfter)
	}
	return updated, nil
}

// Delete reverses the transaction's lifetime effect and removes the record
// in one atomic unit, so a retried delete can never double-reverse: the
// second attempt finds no row and fails NotFound with the balance intact.
func (s *TransactionService) Delete(ctx context.Context, ownerID, transactionID string) error {
	var balanceAfter int64
	var accountID string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		txn, err := s.transactions.GetOwnedForUpdate(ctx, tx, transactionID, ownerID)
		if err != nil {
			return mapNoRows(err)
		}
		undo, err := ledger.ReverseEffect(txn.Amount, txn.Kind)
		if err != nil {
			return err
		}
		accountID = txn.AccountID
		balanceAfter, err = s.accounts.AdjustBalance(ctx, tx, txn.AccountID, undo)
		if err != nil {
			return err
		}
		rows, err := s.transactions.Delete(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		return s.logBalanceOp(ctx, tx, ownerID, "transaction.delete", txn.ID, txn.AccountID, undo, balanceAfter)
	})
	if err != nil {
		return err
	}
	s.broadcast(ownerID, accountID, balanceAfter)
	return nil
}

// AddTag appends a tag; duplicates are permitted.
func (s *TransactionService) AddTag(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error) {
	if strings.TrimSpace(tag) == "" {
		return models.Transaction{}, ErrMissingField
	}
	var updated models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		txn, err := s.transactions.GetOwnedForUpdate(ctx, tx, transactionID, ownerID)
		if err != nil {
			return mapNoRows(err)
		}
		txn.Tags = append(txn.Tags, tag)
		if err := s.transactions.SetTags(ctx, tx, txn.ID, txn.Tags); err != nil {
			return err
		}
		updated = txn
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return updated, nil
}

// RemoveTag drops every occurrence of the tag; removing an absent tag is a
// no-op, not an error.
func (s *TransactionService) RemoveTag(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error) {
	var updated models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		txn, err := s.transactions.GetOwnedForUpdate(ctx, tx, transactionID, ownerID)
		if err != nil {
			return mapNoRows(err)
		}
		kept := make([]string, 0, len(txn.Tags))
		for _, existing := range txn.Tags {
			if existing != tag {
				kept = append(kept, existing)
			}
		}
		if len(kept) == len(txn.Tags) {
			updated = txn
			return nil
		}
		txn.Tags = kept
		if err := s.transactions.SetTags(ctx, tx, txn.ID, txn.Tags); err != nil {
			return err
		}
		updated = txn
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return updated, nil
}

func (s *TransactionService) logBalanceOp(ctx context.Context, tx store.Execer, actorID, action, transactionID, accountID string, delta, balanceAfter int64) error {
	data, _ := json.Marshal(map[string]string{
		"account_id":    accountID,
		"delta":         money.FormatMinor(delta),
		"balance_after": money.FormatMinor(balanceAfter),
	})
	return s.audit.Log(ctx, tx, actorID, action, "transaction", transactionID, string(data))
}

func (s *TransactionService) broadcast(ownerID, accountID string, balance int64) {
	s.hub.BroadcastBalance(ownerID, websocket.BalanceUpdate{
		AccountID: accountID,
		Balance:   money.FormatMinor(balance),
	})
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
