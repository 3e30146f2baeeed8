package store

import (
	"context"
	"time"

	"pennywise/internal/models"
)

// StatsStore serves the read-only aggregation queries. Nothing here
// mutates state.
type StatsStore struct {
	db DB
}

func NewStatsStore(db DB) *StatsStore {
	return &StatsStore{db: db}
}

type CategoryTotal struct {
	Category string `db:"category"`
	Total    int64  `db:"total"`
	Count    int64  `db:"count"`
}

func (s *StatsStore) CategoryTotals(ctx context.Context, ownerID string, kind models.TransactionKind) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM transactions
		WHERE owner_id = $1 AND kind = $2
		GROUP BY category
		ORDER BY total DESC
	`, ownerID, kind)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type MonthlyTotal struct {
	Year  int                    `db:"year"`
	Month int                    `db:"month"`
	Kind  models.TransactionKind `db:"kind"`
	Total int64                  `db:"total"`
	Count int64                  `db:"count"`
}

func (s *StatsStore) MonthlyTotals(ctx context.Context, ownerID string, year int) ([]MonthlyTotal, error) {
	query := `
		SELECT EXTRACT(YEAR FROM occurred_at)::int AS year,
		       EXTRACT(MONTH FROM occurred_at)::int AS month,
		       kind,
		       COALESCE(SUM(amount), 0) AS total,
		       COUNT(*) AS count
		FROM transactions
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	if year > 0 {
		query += ` AND EXTRACT(YEAR FROM occurred_at)::int = $2`
		args = append(args, year)
	}
	query += `
		GROUP BY 1, 2, 3
		ORDER BY year DESC, month DESC, kind
	`
	var rows []MonthlyTotal
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReportRow is one transaction with its account's display name resolved.
// AccountName stays nil when the reference no longer resolves.
type ReportRow struct {
	Amount      int64                  `db:"amount"`
	Kind        models.TransactionKind `db:"kind"`
	Category    string                 `db:"category"`
	AccountName *string                `db:"account_name"`
	OccurredAt  time.Time              `db:"occurred_at"`
}

func (s *StatsStore) ReportRows(ctx context.Context, ownerID string, start, end time.Time) ([]ReportRow, error) {
	var rows []ReportRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.amount, t.kind, t.category, a.name AS account_name, t.occurred_at
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = $1 AND t.occurred_at >= $2 AND t.occurred_at <= $3
		ORDER BY t.occurred_at
	`, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type AccountKindStat struct {
	Kind  models.AccountKind `db:"kind"`
	Total int64              `db:"total"`
	Count int64              `db:"count"`
}

func (s *StatsStore) AccountKindStats(ctx context.Context, ownerID string) ([]AccountKindStat, error) {
	var rows []AccountKindStat
	err := s.db.SelectContext(ctx, &rows, `
		SELECT kind, COALESCE(SUM(balance), 0) AS total, COUNT(*) AS count
		FROM accounts
		WHERE owner_id = $1
		GROUP BY kind
		ORDER BY total DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type AccountTotals struct {
	Total int64 `db:"total"`
	Count int64 `db:"count"`
}

func (s *StatsStore) AccountTotals(ctx context.Context, ownerID string) (AccountTotals, error) {
	var row AccountTotals
	err := s.db.GetContext(ctx, &row, `
		SELECT COALESCE(SUM(balance), 0) AS total, COUNT(*) AS count
		FROM accounts
		WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return AccountTotals{}, err
	}
	return row, nil
}
