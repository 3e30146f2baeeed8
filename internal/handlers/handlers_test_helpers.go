package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pennywise/internal/auth"
	"pennywise/internal/config"
	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/services"
	"pennywise/internal/store"
	"pennywise/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubReconcileDB struct {
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
}

func (s stubReconcileDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAccountStore struct {
	createFn func(ctx context.Context, tx store.Execer, account models.Account) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, account models.Account) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, account)
}

type stubTransactionStore struct {
	listFn  func(ctx context.Context, ownerID string, filter store.TransactionFilter, limit, offset int) ([]models.Transaction, error)
	countFn func(ctx context.Context, ownerID string, filter store.TransactionFilter) (int, error)
}

func (s stubTransactionStore) List(ctx context.Context, ownerID string, filter store.TransactionFilter, limit, offset int) ([]models.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, ownerID, filter, limit, offset)
}

func (s stubTransactionStore) Count(ctx context.Context, ownerID string, filter store.TransactionFilter) (int, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx, ownerID, filter)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubAccountService struct {
	createFn func(ctx context.Context, req services.CreateAccountRequest) (models.Account, error)
	getFn    func(ctx context.Context, ownerID, accountID string) (models.Account, error)
	listFn   func(ctx context.Context, ownerID string) ([]models.Account, error)
	updateFn func(ctx context.Context, ownerID, accountID string, patch services.AccountPatch) (models.Account, error)
	deleteFn func(ctx context.Context, ownerID, accountID string) (services.CascadeDeleteResult, error)
}

func (s stubAccountService) Create(ctx context.Context, req services.CreateAccountRequest) (models.Account, error) {
	if s.createFn == nil {
		return models.Account{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubAccountService) Get(ctx context.Context, ownerID, accountID string) (models.Account, error) {
	if s.getFn == nil {
		return models.Account{}, nil
	}
	return s.getFn(ctx, ownerID, accountID)
}

func (s stubAccountService) List(ctx context.Context, ownerID string) ([]models.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, ownerID)
}

func (s stubAccountService) Update(ctx context.Context, ownerID, accountID string, patch services.AccountPatch) (models.Account, error) {
	if s.updateFn == nil {
		return models.Account{}, nil
	}
	return s.updateFn(ctx, ownerID, accountID, patch)
}

func (s stubAccountService) Delete(ctx context.Context, ownerID, accountID string) (services.CascadeDeleteResult, error) {
	if s.deleteFn == nil {
		return services.CascadeDeleteResult{}, nil
	}
	return s.deleteFn(ctx, ownerID, accountID)
}

type stubTransactionService struct {
	createFn    func(ctx context.Context, req services.CreateTransactionRequest) (models.Transaction, error)
	getFn       func(ctx context.Context, ownerID, transactionID string) (models.Transaction, error)
	updateFn    func(ctx context.Context, ownerID, transactionID string, patch services.TransactionPatch) (models.Transaction, error)
	deleteFn    func(ctx context.Context, ownerID, transactionID string) error
	addTagFn    func(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error)
	removeTagFn func(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error)
}

func (s stubTransactionService) Create(ctx context.Context, req services.CreateTransactionRequest) (models.Transaction, error) {
	if s.createFn == nil {
		return models.Transaction{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubTransactionService) Get(ctx context.Context, ownerID, transactionID string) (models.Transaction, error) {
	if s.getFn == nil {
		return models.Transaction{}, nil
	}
	return s.getFn(ctx, ownerID, transactionID)
}

func (s stubTransactionService) Update(ctx context.Context, ownerID, transactionID string, patch services.TransactionPatch) (models.Transaction, error) {
	if s.updateFn == nil {
		return models.Transaction{}, nil
	}
	return s.updateFn(ctx, ownerID, transactionID, patch)
}

func (s stubTransactionService) Delete(ctx context.Context, ownerID, transactionID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, ownerID, transactionID)
}

func (s stubTransactionService) AddTag(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error) {
	if s.addTagFn == nil {
		return models.Transaction{}, nil
	}
	return s.addTagFn(ctx, ownerID, transactionID, tag)
}

func (s stubTransactionService) RemoveTag(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error) {
	if s.removeTagFn == nil {
		return models.Transaction{}, nil
	}
	return s.removeTagFn(ctx, ownerID, transactionID, tag)
}

type stubStatsService struct {
	reportFn       func(ctx context.Context, ownerID string, start, end time.Time) (services.Report, error)
	byCategoryFn   func(ctx context.Context, ownerID string, kind models.TransactionKind) ([]services.CategoryStat, error)
	monthlyFn      func(ctx context.Context, ownerID string, year int) ([]services.MonthlyStat, error)
	totalBalanceFn func(ctx context.Context, ownerID string) (services.TotalBalance, error)
	kindStatsFn    func(ctx context.Context, ownerID string) ([]services.AccountKindStat, error)
}

func (s stubStatsService) Report(ctx context.Context, ownerID string, start, end time.Time) (services.Report, error) {
	if s.reportFn == nil {
		return services.Report{}, nil
	}
	return s.reportFn(ctx, ownerID, start, end)
}

func (s stubStatsService) ByCategory(ctx context.Context, ownerID string, kind models.TransactionKind) ([]services.CategoryStat, error) {
	if s.byCategoryFn == nil {
		return nil, nil
	}
	return s.byCategoryFn(ctx, ownerID, kind)
}

func (s stubStatsService) Monthly(ctx context.Context, ownerID string, year int) ([]services.MonthlyStat, error) {
	if s.monthlyFn == nil {
		return nil, nil
	}
	return s.monthlyFn(ctx, ownerID, year)
}

func (s stubStatsService) TotalBalance(ctx context.Context, ownerID string) (services.TotalBalance, error) {
	if s.totalBalanceFn == nil {
		return services.TotalBalance{}, nil
	}
	return s.totalBalanceFn(ctx, ownerID)
}

func (s stubStatsService) KindStats(ctx context.Context, ownerID string) ([]services.AccountKindStat, error) {
	if s.kindStatsFn == nil {
		return nil, nil
	}
	return s.kindStatsFn(ctx, ownerID)
}

type handlerDeps struct {
	reconcileDB    stubReconcileDB
	txRunner       fakeTxRunner
	users          stubUserStore
	accounts       stubAccountStore
	transactions   stubTransactionStore
	audit          stubAuditStore
	accountService stubAccountService
	service        stubTransactionService
	stats          stubStatsService
}

func newTestHandler(deps handlerDeps) *Handler {
	cfg := config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
	return New(
		deps.reconcileDB,
		deps.txRunner,
		cfg,
		deps.users,
		deps.accounts,
		deps.transactions,
		deps.audit,
		deps.accountService,
		deps.service,
		deps.stats,
		websocket.NewHub(),
	)
}

// doAuthed runs one handler behind the auth middleware with a real token,
// optionally seeding chi URL params.
func doAuthed(t *testing.T, handler http.HandlerFunc, method, target, body, userID string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if len(params) > 0 {
		routeCtx := chi.NewRouteContext()
		for key, value := range params {
			routeCtx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("test-secret")(handler).ServeHTTP(rr, req)
	return rr
}
