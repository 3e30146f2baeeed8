package handlers

import (
	"encoding/json"
	"net/http"

	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/services"

	"github.com/go-chi/chi/v5"
)

func accountJSON(account models.Account) map[string]any {
	return map[string]any{
		"id":         account.ID,
		"owner_id":   account.OwnerID,
		"name":       account.Name,
		"kind":       account.Kind,
		"balance":    money.FormatMinor(account.Balance),
		"created_at": account.CreatedAt,
		"updated_at": account.UpdatedAt,
	}
}

type createAccountRequest struct {
	Name string             `json:"name"`
	Kind models.AccountKind `json:"kind"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	account, err := h.accountService.Create(r.Context(), services.CreateAccountRequest{
		OwnerID: userID,
		Name:    req.Name,
		Kind:    req.Kind,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, accountJSON(account))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.accountService.List(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accounts")
		return
	}
	normalized := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		normalized = append(normalized, accountJSON(account))
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accountService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accountJSON(account))
}

type updateAccountRequest struct {
	Name *string             `json:"name"`
	Kind *models.AccountKind `json:"kind"`
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	account, err := h.accountService.Update(r.Context(), userID, chi.URLParam(r, "id"), services.AccountPatch{
		Name: req.Name,
		Kind: req.Kind,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accountJSON(account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	result, err := h.accountService.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account":              accountJSON(result.Account),
		"deleted_transactions": result.DeletedTransactions,
	})
}

func (h *Handler) TotalBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	totals, err := h.stats.TotalBalance(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load balance")
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *Handler) AccountTypeStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stats, err := h.stats.KindStats(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// SelfCheck recomputes each account's balance from its transactions and
// reports any drift against the cached value. A non-zero difference means
// the running total needs repair from the audit trail.
func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	type row struct {
		AccountID      string `db:"account_id"`
		Name           string `db:"name"`
		AccountBalance int64  `db:"account_balance"`
		TransactionSum int64  `db:"transaction_sum"`
		Difference     int64  `db:"difference"`
	}
	query := `
		SELECT a.id AS account_id,
		       a.name,
		       a.balance AS account_balance,
		       COALESCE(SUM(CASE WHEN t.kind = 'income' THEN t.amount ELSE -t.amount END), 0) AS transaction_sum,
		       (a.balance - COALESCE(SUM(CASE WHEN t.kind = 'income' THEN t.amount ELSE -t.amount END), 0)) AS difference
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.id
		WHERE a.owner_id = $1
		GROUP BY a.id, a.name, a.balance
		ORDER BY a.name
	`
	var rows []row
	if err := h.reconcileDB.SelectContext(r.Context(), &rows, query, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	response := make([]map[string]any, 0, len(rows))
	for _, item := range rows {
		response = append(response, map[string]any{
			"account_id":      item.AccountID,
			"name":            item.Name,
			"account_balance": money.FormatMinor(item.AccountBalance),
			"transaction_sum": money.FormatMinor(item.TransactionSum),
			"difference":      money.FormatMinor(item.Difference),
		})
	}
	respondJSON(w, http.StatusOK, response)
}
