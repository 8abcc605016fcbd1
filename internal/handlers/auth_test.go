package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jfontan/parley/internal/auth"
	"github.com/jfontan/parley/internal/store/sqlstore"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	store, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return &AuthHandler{Store: store, Tokens: auth.NewTokens("test-secret")}
}

func register(t *testing.T, handler *AuthHandler, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	req, _ := http.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(handler.Register).ServeHTTP(rr, req)
	return rr
}

func TestRegister(t *testing.T) {
	handler := newAuthHandler(t)

	rr := register(t, handler, "alice", "alice@example.com", "password123")
	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusCreated)
	}

	var resp authResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token in the response")
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("Unexpected user in response: %+v", resp.User)
	}

	// Duplicate username
	rr = register(t, handler, "alice", "other@example.com", "password123")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code for duplicate user: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	handler := newAuthHandler(t)

	rr := register(t, handler, "alice", "alice@example.com", "tiny")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	handler := newAuthHandler(t)

	rr := register(t, handler, "alice", "", "password123")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func login(t *testing.T, handler *AuthHandler, identifier, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": identifier, "password": password})
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(handler.Login).ServeHTTP(rr, req)
	return rr
}

func TestLogin(t *testing.T) {
	handler := newAuthHandler(t)
	register(t, handler, "alice", "alice@example.com", "password123")

	// By email
	rr := login(t, handler, "alice@example.com", "password123")
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var resp authResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token in the response")
	}
	if resp.User == nil || !resp.User.IsOnline {
		t.Error("Expected login to flip the user online")
	}

	// By username, different case
	rr = login(t, handler, "ALICE", "password123")
	if rr.Code != http.StatusOK {
		t.Errorf("Login by username failed: got %v want %v", rr.Code, http.StatusOK)
	}
}

func TestLoginBadPassword(t *testing.T) {
	handler := newAuthHandler(t)
	register(t, handler, "alice", "alice@example.com", "password123")

	rr := login(t, handler, "alice@example.com", "wrong")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	handler := newAuthHandler(t)

	rr := login(t, handler, "nobody@example.com", "password123")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestVerify(t *testing.T) {
	handler := newAuthHandler(t)
	rr := register(t, handler, "alice", "alice@example.com", "password123")

	var resp authResponse
	json.NewDecoder(rr.Body).Decode(&resp)

	req, _ := http.NewRequest("GET", "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	http.HandlerFunc(handler.Verify).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	req, _ = http.NewRequest("GET", "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	http.HandlerFunc(handler.Verify).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code for bad token: got %v want %v", rr.Code, http.StatusUnauthorized)
	}
}
