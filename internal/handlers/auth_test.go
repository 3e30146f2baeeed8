package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pennywise/internal/auth"
	"pennywise/internal/models"
	"pennywise/internal/store"

	"github.com/lib/pq"
)

func TestRegisterCreatesUserWithDefaultAccount(t *testing.T) {
	var createdUser string
	var createdAccount models.Account
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			createFn: func(_ context.Context, _ store.Execer, _, username, email, _ string) error {
				createdUser = username + "/" + email
				return nil
			},
		},
		accounts: stubAccountStore{
			createFn: func(_ context.Context, _ store.Execer, account models.Account) error {
				createdAccount = account
				return nil
			},
		},
	})

	body := `{"username":"frugal","email":"frugal@example.com","password":"hunter2secure"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if createdUser != "frugal/frugal@example.com" {
		t.Fatalf("unexpected user: %s", createdUser)
	}
	if createdAccount.Name != "Main" {
		t.Fatalf("expected default account Main, got %q", createdAccount.Name)
	}
	if createdAccount.Kind != models.DefaultAccountKind {
		t.Fatalf("expected default kind, got %q", createdAccount.Kind)
	}
	if createdAccount.Balance != 0 {
		t.Fatalf("expected zero opening balance, got %d", createdAccount.Balance)
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["token"] == "" {
		t.Fatal("expected a token in the response")
	}
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	handler := newTestHandler(handlerDeps{})

	body := `{"username":"frugal","email":"not-an-email","password":"hunter2secure"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			createFn: func(context.Context, store.Execer, string, string, string, string) error {
				return &pq.Error{Code: "23505"}
			},
		},
	})

	body := `{"username":"frugal","email":"frugal@example.com","password":"hunter2secure"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestLoginIssuesToken(t *testing.T) {
	hash, err := auth.HashPassword("hunter2secure")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (models.User, error) {
				return models.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
			},
		},
	})

	body := `{"email":"frugal@example.com","password":"hunter2secure"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	claims, err := auth.ParseToken("test-secret", payload["token"])
	if err != nil {
		t.Fatalf("token did not parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("token carries wrong user: %s", claims.UserID)
	}
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	hash, err := auth.HashPassword("hunter2secure")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (models.User, error) {
				return models.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
			},
		},
	})

	body := `{"email":"frugal@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestMeReturnsProfile(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			getByIDFn: func(_ context.Context, userID string) (models.User, error) {
				return models.User{ID: userID, Username: "frugal", Email: "frugal@example.com", CreatedAt: created}, nil
			},
		},
	})

	rr := doAuthed(t, handler.Me, http.MethodGet, "/auth/me", "", "user-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["id"] != "user-1" || payload["username"] != "frugal" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}
