// Package ledger holds the pure balance arithmetic shared by every
// transaction mutation: the signed effect a transaction has on its
// account's cached balance, and the inverse used to undo it.
package ledger

import (
	"errors"

	"pennywise/internal/models"
)

var ErrInvalidKind = errors.New("invalid transaction kind")

// SignedEffect returns the balance delta implied by a transaction:
// +amount for income, -amount for expense.
func SignedEffect(amountMinor int64, kind models.TransactionKind) (int64, error) {
	switch kind {
	case models.KindIncome:
		return amountMinor, nil
	case models.KindExpense:
		return -amountMinor, nil
	default:
		return 0, ErrInvalidKind
	}
}

// ReverseEffect returns the additive inverse of SignedEffect, used to undo
// a previously applied transaction before removing or reclassifying it.
func ReverseEffect(amountMinor int64, kind models.TransactionKind) (int64, error) {
	effect, err := SignedEffect(amountMinor, kind)
	if err != nil {
		return 0, err
	}
	return -effect, nil
}
