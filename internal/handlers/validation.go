package handlers

import (
	"errors"
	"strconv"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/money"
)

var errInvalidAmount = errors.New("invalid amount")
var errInvalidDate = errors.New("invalid date")

func parseAmountMinor(raw string) (int64, error) {
	amount, err := money.ParseMinor(raw)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

func parseKind(raw string) (models.TransactionKind, error) {
	kind := models.TransactionKind(raw)
	if !models.ValidTransactionKind(kind) {
		return "", errors.New("invalid kind")
	}
	return kind, nil
}

// parseDate accepts a bare day or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, errInvalidDate
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
