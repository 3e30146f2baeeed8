package models

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AccountKind is the closed set of account categories.
type AccountKind string

const (
	AccountChecking AccountKind = "checking"
	AccountSavings  AccountKind = "savings"
	AccountCredit   AccountKind = "credit"
	AccountCash     AccountKind = "cash"
)

const DefaultAccountKind = AccountChecking

func ValidAccountKind(kind AccountKind) bool {
	switch kind {
	case AccountChecking, AccountSavings, AccountCredit, AccountCash:
		return true
	}
	return false
}

// Account keeps Balance as a cached running total in minor units. The
// balance is adjusted only through atomic increments paired with
// transaction writes, so it always equals the summed signed effect of the
// account's transactions.
type Account struct {
	ID        string      `db:"id" json:"id"`
	OwnerID   string      `db:"owner_id" json:"owner_id"`
	Name      string      `db:"name" json:"name"`
	Kind      AccountKind `db:"kind" json:"kind"`
	Balance   int64       `db:"balance" json:"balance"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// TransactionKind carries the direction of a transaction; Amount stays a
// positive magnitude.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

func ValidTransactionKind(kind TransactionKind) bool {
	return kind == KindIncome || kind == KindExpense
}

type Transaction struct {
	ID          string          `db:"id" json:"id"`
	OwnerID     string          `db:"owner_id" json:"owner_id"`
	AccountID   string          `db:"account_id" json:"account_id"`
	Amount      int64           `db:"amount" json:"amount"`
	Kind        TransactionKind `db:"kind" json:"kind"`
	Category    string          `db:"category" json:"category"`
	Description string          `db:"description" json:"description"`
	Tags        pq.StringArray  `db:"tags" json:"tags"`
	OccurredAt  time.Time       `db:"occurred_at" json:"occurred_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
