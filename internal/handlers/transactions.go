package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/money"
	"pennywise/internal/services"
	"pennywise/internal/store"

	"github.com/go-chi/chi/v5"
)

func transactionJSON(txn models.Transaction) map[string]any {
	tags := []string(txn.Tags)
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":          txn.ID,
		"owner_id":    txn.OwnerID,
		"account_id":  txn.AccountID,
		"amount":      money.FormatMinor(txn.Amount),
		"kind":        txn.Kind,
		"category":    txn.Category,
		"description": txn.Description,
		"tags":        tags,
		"occurred_at": txn.OccurredAt,
		"created_at":  txn.CreatedAt,
	}
}

type createTransactionRequest struct {
	AccountID   string   `json:"account_id"`
	Amount      string   `json:"amount"`
	Kind        string   `json:"kind"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	OccurredAt  *string  `json:"occurred_at"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.AccountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_kind")
		return
	}
	var occurredAt *time.Time
	if req.OccurredAt != nil && *req.OccurredAt != "" {
		parsed, err := parseDate(*req.OccurredAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		occurredAt = &parsed
	}
	txn, err := h.service.Create(r.Context(), services.CreateTransactionRequest{
		OwnerID:     userID,
		AccountID:   req.AccountID,
		AmountMinor: amountMinor,
		Kind:        kind,
		Category:    req.Category,
		Description: req.Description,
		Tags:        req.Tags,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionJSON(txn))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	filter := store.TransactionFilter{
		Kind:      models.TransactionKind(query.Get("type")),
		Category:  query.Get("category"),
		AccountID: query.Get("account_id"),
	}
	if raw := query.Get("start_date"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		filter.Start = &start
	}
	if raw := query.Get("end_date"); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		filter.End = &end
	}
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit

	transactions, err := h.transactions.List(r.Context(), userID, filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	total, err := h.transactions.Count(r.Context(), userID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, txn := range transactions {
		normalized = append(normalized, transactionJSON(txn))
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": normalized,
		"total":        total,
		"page":         page,
		"total_pages":  totalPages,
	})
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	txn, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactionJSON(txn))
}

type updateTransactionRequest struct {
	AccountID   *string   `json:"account_id"`
	Amount      *string   `json:"amount"`
	Kind        *string   `json:"kind"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	OccurredAt  *string   `json:"occurred_at"`
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	patch := services.TransactionPatch{
		AccountID:   req.AccountID,
		Category:    req.Category,
		Description: req.Description,
		Tags:        req.Tags,
	}
	if req.Amount != nil {
		amountMinor, err := parseAmountMinor(*req.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		patch.AmountMinor = &amountMinor
	}
	if req.Kind != nil {
		kind, err := parseKind(*req.Kind)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_kind")
			return
		}
		patch.Kind = &kind
	}
	if req.OccurredAt != nil {
		occurredAt, err := parseDate(*req.OccurredAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		patch.OccurredAt = &occurredAt
	}
	txn, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactionJSON(txn))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	txn, err := h.service.AddTag(r.Context(), userID, chi.URLParam(r, "id"), req.Tag)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactionJSON(txn))
}

func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	txn, err := h.service.RemoveTag(r.Context(), userID, chi.URLParam(r, "id"), req.Tag)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactionJSON(txn))
}

func (h *Handler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind, err := parseKind(r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_kind")
		return
	}
	stats, err := h.stats.ByCategory(r.Context(), userID, kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	year := parseInt(r.URL.Query().Get("year"), 0)
	stats, err := h.stats.Monthly(r.Context(), userID, year)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load monthly stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	start, err := parseDate(query.Get("start_date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	end, err := parseDate(query.Get("end_date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	// A bare end day means "through the end of that day".
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	report, err := h.stats.Report(r.Context(), userID, start, end)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
