package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/store"
)

// UnknownAccountLabel groups report rows whose account reference no longer
// resolves to a display name.
const UnknownAccountLabel = "Unknown"

type StatsStore interface {
	CategoryTotals(ctx context.Context, ownerID string, kind models.TransactionKind) ([]store.CategoryTotal, error)
	MonthlyTotals(ctx context.Context, ownerID string, year int) ([]store.MonthlyTotal, error)
	ReportRows(ctx context.Context, ownerID string, start, end time.Time) ([]store.ReportRow, error)
	AccountKindStats(ctx context.Context, ownerID string) ([]store.AccountKindStat, error)
	AccountTotals(ctx context.Context, ownerID string) (store.AccountTotals, error)
}

// StatsService is the read-only aggregation side: it never mutates state
// and is safe to run concurrently with the mutator.
type StatsService struct {
	stats StatsStore
}

func NewStatsService(stats StatsStore) *StatsService {
	return &StatsService{stats: stats}
}

type CategoryBreakdown struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Count   int   `json:"count"`
}

type AccountBreakdown struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Total   int64 `json:"total"`
}

type DayBreakdown struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

type Report struct {
	TotalIncome  int64                        `json:"total_income"`
	TotalExpense int64                        `json:"total_expense"`
	Net          int64                        `json:"net"`
	ByCategory   map[string]CategoryBreakdown `json:"by_category"`
	ByAccount    map[string]AccountBreakdown  `json:"by_account"`
	ByDate       map[string]DayBreakdown      `json:"by_date"`
}

// Report reduces the owner's transactions within [start, end] inclusive
// into totals plus per-category, per-account-name and per-day breakdowns.
func (s *StatsService) Report(ctx context.Context, ownerID string, start, end time.Time) (Report, error) {
	if start.IsZero() || end.IsZero() {
		return Report{}, ErrMissingField
	}
	rows, err := s.stats.ReportRows(ctx, ownerID, start, end)
	if err != nil {
		return Report{}, err
	}
	return reduceReport(rows), nil
}

func reduceReport(rows []store.ReportRow) Report {
	report := Report{
		ByCategory: make(map[string]CategoryBreakdown),
		ByAccount:  make(map[string]AccountBreakdown),
		ByDate:     make(map[string]DayBreakdown),
	}
	for _, row := range rows {
		income := row.Kind == models.KindIncome
		if income {
			report.TotalIncome += row.Amount
		} else {
			report.TotalExpense += row.Amount
		}

		category := report.ByCategory[row.Category]
		category.Count++
		name := UnknownAccountLabel
		if row.AccountName != nil && *row.AccountName != "" {
			name = *row.AccountName
		}
		account := report.ByAccount[name]
		day := row.OccurredAt.Format("2006-01-02")
		date := report.ByDate[day]
		if income {
			category.Income += row.Amount
			account.Income += row.Amount
			account.Total += row.Amount
			date.Income += row.Amount
		} else {
			category.Expense += row.Amount
			account.Expense += row.Amount
			account.Total -= row.Amount
			date.Expense += row.Amount
		}
		report.ByCategory[row.Category] = category
		report.ByAccount[name] = account
		report.ByDate[day] = date
	}
	report.Net = report.TotalIncome - report.TotalExpense
	return report
}

type CategoryStat struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int64  `json:"count"`
}

// ByCategory returns per-category totals for one kind, largest first.
func (s *StatsService) ByCategory(ctx context.Context, ownerID string, kind models.TransactionKind) ([]CategoryStat, error) {
	if !models.ValidTransactionKind(kind) {
		return nil, ErrMissingField
	}
	rows, err := s.stats.CategoryTotals(ctx, ownerID, kind)
	if err != nil {
		return nil, err
	}
	stats := make([]CategoryStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, CategoryStat{
			Category: row.Category,
			Total:    money.FormatMinor(row.Total),
			Count:    row.Count,
		})
	}
	return stats, nil
}

type MonthlyStat struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	Kind  models.TransactionKind `json:"kind"`
	Total string                 `json:"total"`
	Count int64                  `json:"count"`
}

// Monthly returns per-(year, month, kind) sums, most recent first. A zero
// year means all years.
func (s *StatsService) Monthly(ctx context.Context, ownerID string, year int) ([]MonthlyStat, error) {
	rows, err := s.stats.MonthlyTotals(ctx, ownerID, year)
	if err != nil {
		return nil, err
	}
	stats := make([]MonthlyStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, MonthlyStat{
			Year:  row.Year,
			Month: row.Month,
			Kind:  row.Kind,
			Total: money.FormatMinor(row.Total),
			Count: row.Count,
		})
	}
	return stats, nil
}

type TotalBalance struct {
	Total    string `json:"total"`
	Accounts int64  `json:"accounts"`
}

func (s *StatsService) TotalBalance(ctx context.Context, ownerID string) (TotalBalance, error) {
	totals, err := s.stats.AccountTotals(ctx, ownerID)
	if err != nil {
		return TotalBalance{}, err
	}
	return TotalBalance{
		Total:    money.FormatMinor(totals.Total),
		Accounts: totals.Count,
	}, nil
}

type AccountKindStat struct {
	Kind    models.AccountKind `json:"kind"`
	Total   string             `json:"total"`
	Average string             `json:"average"`
	Count   int64              `json:"count"`
}

// KindStats summarizes accounts per kind with sum, average and count.
func (s *StatsService) KindStats(ctx context.Context, ownerID string) ([]AccountKindStat, error) {
	rows, err := s.stats.AccountKindStats(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	stats := make([]AccountKindStat, 0, len(rows))
	for _, row := range rows {
		average := decimal.Zero
		if row.Count > 0 {
			// Total is in minor units; the average is reported in major units.
			average = decimal.NewFromInt(row.Total).DivRound(decimal.NewFromInt(row.Count*100), 2)
		}
		stats = append(stats, AccountKindStat{
			Kind:    row.Kind,
			Total:   money.FormatMinor(row.Total),
			Average: average.StringFixedBank(2),
			Count:   row.Count,
		})
	}
	return stats, nil
}
