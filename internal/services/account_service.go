package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pennywise/internal/db"
	"pennywise/internal/models"
	"pennywise/internal/store"
	"pennywise/internal/validator"
)

var ErrInvalidAccountKind = errors.New("invalid account kind")

type AccountWriter interface {
	Create(ctx context.Context, tx store.Execer, account models.Account) error
	GetOwned(ctx context.Context, accountID, ownerID string) (models.Account, error)
	GetOwnedForUpdate(ctx context.Context, tx store.Getter, accountID, ownerID string) (models.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error)
	UpdateFields(ctx context.Context, tx store.Execer, accountID, name string, kind models.AccountKind) error
	Delete(ctx context.Context, tx store.Execer, accountID string) (int64, error)
}

type TransactionBulkDeleter interface {
	DeleteByAccount(ctx context.Context, tx store.Execer, accountID string) (int64, error)
}

// AccountService covers account lifecycle. Balance is never written here
// directly: it starts at zero and moves only through the transaction
// mutator's increments.
type AccountService struct {
	txRunner     db.TxRunner
	accounts     AccountWriter
	transactions TransactionBulkDeleter
	audit        AuditStore
}

func NewAccountService(txRunner db.TxRunner, accounts AccountWriter, transactions TransactionBulkDeleter, audit AuditStore) *AccountService {
	return &AccountService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		audit:        audit,
	}
}

type CreateAccountRequest struct {
	OwnerID string
	Name    string
	Kind    models.AccountKind
}

func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (models.Account, error) {
	if err := validator.ValidateAccountName(req.Name); err != nil {
		return models.Account{}, ErrMissingField
	}
	kind := req.Kind
	if kind == "" {
		kind = models.DefaultAccountKind
	}
	if !models.ValidAccountKind(kind) {
		return models.Account{}, ErrInvalidAccountKind
	}
	account := models.Account{
		ID:      uuid.NewString(),
		OwnerID: req.OwnerID,
		Name:    strings.TrimSpace(req.Name),
		Kind:    kind,
		Balance: 0,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"name": account.Name, "kind": string(account.Kind)})
		return s.audit.Log(ctx, tx, req.OwnerID, "account.create", "account", account.ID, string(data))
	})
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, ownerID, accountID string) (models.Account, error) {
	account, err := s.accounts.GetOwned(ctx, accountID, ownerID)
	if err != nil {
		return models.Account{}, mapNoRows(err)
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context, ownerID string) ([]models.Account, error) {
	return s.accounts.ListByOwner(ctx, ownerID)
}

// AccountPatch carries the balance-neutral edits; nil means keep the prior
// value.
type AccountPatch struct {
	Name *string
	Kind *models.AccountKind
}

func (s *AccountService) Update(ctx context.Context, ownerID, accountID string, patch AccountPatch) (models.Account, error) {
	var updated models.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetOwnedForUpdate(ctx, tx, accountID, ownerID)
		if err != nil {
			return mapNoRows(err)
		}
		if patch.Name != nil {
			if err := validator.ValidateAccountName(*patch.Name); err != nil {
				return ErrMissingField
			}
			account.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Kind != nil {
			if !models.ValidAccountKind(*patch.Kind) {
				return ErrInvalidAccountKind
			}
			account.Kind = *patch.Kind
		}
		if err := s.accounts.UpdateFields(ctx, tx, account.ID, account.Name, account.Kind); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

type CascadeDeleteResult struct {
	Account             models.Account
	DeletedTransactions int64
}

// Delete cascades: all of the account's transactions go first, then the
// account itself, in one database transaction. Per-transaction balance
// reversal is skipped on purpose since the balance is discarded with the
// account.
func (s *AccountService) Delete(ctx context.Context, ownerID, accountID string) (CascadeDeleteResult, error) {
	var result CascadeDeleteResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetOwnedForUpdate(ctx, tx, accountID, ownerID)
		if err != nil {
			return mapNoRows(err)
		}
		deleted, err := s.transactions.DeleteByAccount(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		rows, err := s.accounts.Delete(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		result = CascadeDeleteResult{Account: account, DeletedTransactions: deleted}
		data, _ := json.Marshal(map[string]any{"deleted_transactions": deleted})
		return s.audit.Log(ctx, tx, ownerID, "account.delete", "account", account.ID, string(data))
	})
	if err != nil {
		return CascadeDeleteResult{}, err
	}
	return result, nil
}
