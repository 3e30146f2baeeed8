package ledger

import (
	"testing"

	"pennywise/internal/models"
)

func TestSignedEffect(t *testing.T) {
	effect, err := SignedEffect(2500, models.KindIncome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effect != 2500 {
		t.Fatalf("expected +2500, got %d", effect)
	}
	effect, err = SignedEffect(2500, models.KindExpense)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effect != -2500 {
		t.Fatalf("expected -2500, got %d", effect)
	}
}

func TestSignedEffectInvalidKind(t *testing.T) {
	if _, err := SignedEffect(100, models.TransactionKind("transfer")); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if _, err := SignedEffect(100, models.TransactionKind("")); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestReverseEffectUndoesSignedEffect(t *testing.T) {
	for _, kind := range []models.TransactionKind{models.KindIncome, models.KindExpense} {
		effect, err := SignedEffect(999, kind)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		reverse, err := ReverseEffect(999, kind)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if effect+reverse != 0 {
			t.Fatalf("reverse does not cancel effect for %s: %d + %d", kind, effect, reverse)
		}
	}
}

func TestReverseEffectInvalidKind(t *testing.T) {
	if _, err := ReverseEffect(100, models.TransactionKind("loan")); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
