package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"pennywise/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// TransactionFilter narrows List/Count. Zero-valued fields are ignored.
type TransactionFilter struct {
	Kind      models.TransactionKind
	Category  string
	AccountID string
	Start     *time.Time
	End       *time.Time
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, txn models.Transaction) error {
	query := `
		INSERT INTO transactions (id, owner_id, account_id, amount, kind, category, description, tags, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		txn.ID, txn.OwnerID, txn.AccountID, txn.Amount, txn.Kind,
		txn.Category, txn.Description, txn.Tags, txn.OccurredAt,
	)
	return err
}

// GetOwned loads a transaction scoped to its owner; absent rows and rows
// owned by another caller both come back as sql.ErrNoRows.
func (s *TransactionStore) GetOwned(ctx context.Context, transactionID, ownerID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, account_id, amount, kind, category, description, tags, occurred_at, created_at
		FROM transactions
		WHERE id = $1 AND owner_id = $2
	`, transactionID, ownerID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// GetOwnedForUpdate locks the row so the read-then-reverse sequence in the
// update and delete paths cannot race a concurrent mutation of the same
// transaction.
func (s *TransactionStore) GetOwnedForUpdate(ctx context.Context, tx Getter, transactionID, ownerID string) (models.Transaction, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT id, owner_id, account_id, amount, kind, category, description, tags, occurred_at, created_at
		FROM transactions
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`, transactionID, ownerID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// Update writes the full mutable field set; partial-update semantics are
// handled by the caller merging the patch before the write.
func (s *TransactionStore) Update(ctx context.Context, tx Execer, txn models.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET amount = $1, kind = $2, category = $3, description = $4, tags = $5, occurred_at = $6
		WHERE id = $7
	`, txn.Amount, txn.Kind, txn.Category, txn.Description, txn.Tags, txn.OccurredAt, txn.ID)
	return err
}

func (s *TransactionStore) SetTags(ctx context.Context, tx Execer, transactionID string, tags []string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET tags = $1
		WHERE id = $2
	`, pq.StringArray(tags), transactionID)
	return err
}

func (s *TransactionStore) Delete(ctx context.Context, tx Execer, transactionID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByAccount bulk-removes an account's transactions during cascade
// deletion and reports how many rows went away.
func (s *TransactionStore) DeleteByAccount(ctx context.Context, tx Execer, accountID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) List(ctx context.Context, ownerID string, filter TransactionFilter, limit, offset int) ([]models.Transaction, error) {
	where, args := buildFilter(ownerID, filter)
	query := `
		SELECT id, owner_id, account_id, amount, kind, category, description, tags, occurred_at, created_at
		FROM transactions
	` + where + fmt.Sprintf(" ORDER BY occurred_at DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	var rows []models.Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) Count(ctx context.Context, ownerID string, filter TransactionFilter) (int, error) {
	where, args := buildFilter(ownerID, filter)
	var total int
	err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions`+where, args...)
	return total, err
}

func buildFilter(ownerID string, filter TransactionFilter) (string, []any) {
	where := " WHERE owner_id = $1"
	args := []any{ownerID}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		where += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		where += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		where += fmt.Sprintf(" AND occurred_at <= $%d", len(args))
	}
	return where, args
}
