package store

import (
	"context"

	"pennywise/internal/models"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, account models.Account) error {
	query := `
		INSERT INTO accounts (id, owner_id, name, kind, balance)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, account.ID, account.OwnerID, account.Name, account.Kind, account.Balance)
	return err
}

// GetOwned loads an account scoped to its owner. A missing account and an
// account belonging to someone else are indistinguishable: both surface as
// sql.ErrNoRows.
func (s *AccountStore) GetOwned(ctx context.Context, accountID, ownerID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, name, kind, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND owner_id = $2
	`, accountID, ownerID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetOwnedForUpdate(ctx context.Context, tx Getter, accountID, ownerID string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, owner_id, name, kind, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`, accountID, ownerID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, name, kind, balance, created_at, updated_at
		FROM accounts
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateFields writes the balance-neutral fields. Balance is never touched
// here; it only moves through AdjustBalance.
func (s *AccountStore) UpdateFields(ctx context.Context, tx Execer, accountID, name string, kind models.AccountKind) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET name = $1, kind = $2, updated_at = NOW()
		WHERE id = $3
	`, name, kind, accountID)
	return err
}

// AdjustBalance applies a delta with a single atomic increment and returns
// the resulting balance. No read-modify-write: concurrent adjustments to
// the same account cannot lose updates.
func (s *AccountStore) AdjustBalance(ctx context.Context, tx Getter, accountID string, delta int64) (int64, error) {
	var balance int64
	err := tx.GetContext(ctx, &balance, `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`, delta, accountID)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
