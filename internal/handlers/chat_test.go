package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/jfontan/parley/internal/auth"
	"github.com/jfontan/parley/internal/delivery"
	"github.com/jfontan/parley/internal/middleware"
	"github.com/jfontan/parley/internal/models"
	"github.com/jfontan/parley/internal/store/sqlstore"
)

type chatFixture struct {
	store   *sqlstore.SQLStore
	tokens  *auth.Tokens
	handler *ChatHandler
	alice   string // token for alice (u1)
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	store, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range []struct{ id, name string }{{"u1", "alice"}, {"u2", "bob"}} {
		err := store.CreateUser(&models.User{ID: u.id, Username: u.name, Email: u.name + "@example.com", Password: "hashed"})
		if err != nil {
			t.Fatalf("Failed to create user %s: %v", u.name, err)
		}
	}

	tokens := auth.NewTokens("test-secret")
	token, err := tokens.Issue("u1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	return &chatFixture{
		store:   store,
		tokens:  tokens,
		handler: &ChatHandler{Store: store},
		alice:   token,
	}
}

func (f *chatFixture) do(t *testing.T, method, path string, vars map[string]string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+f.alice)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rr := httptest.NewRecorder()
	middleware.Auth(f.tokens)(h).ServeHTTP(rr, req)
	return rr
}

func TestListUsers(t *testing.T) {
	f := newChatFixture(t)

	msg := &models.Message{ID: "m1", SenderID: "u2", ReceiverID: "u1", Text: "hi alice", Status: delivery.StatusSent}
	if err := f.store.SaveMessage(msg); err != nil {
		t.Fatal(err)
	}

	rr := f.do(t, "GET", "/users", nil, f.handler.ListUsers)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var roster []models.RosterEntry
	if err := json.NewDecoder(rr.Body).Decode(&roster); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("Expected 1 roster entry, got %d", len(roster))
	}
	if roster[0].Username != "bob" {
		t.Errorf("Expected bob in the roster, got %s", roster[0].Username)
	}
	if roster[0].LastMessage == nil || roster[0].LastMessage.Text != "hi alice" {
		t.Errorf("Expected last-message preview, got %+v", roster[0].LastMessage)
	}
}

func TestGetConversationPromotes(t *testing.T) {
	f := newChatFixture(t)

	msg := &models.Message{ID: "m1", SenderID: "u2", ReceiverID: "u1", Text: "hi alice", Status: delivery.StatusSent}
	if err := f.store.SaveMessage(msg); err != nil {
		t.Fatal(err)
	}

	rr := f.do(t, "GET", "/conversations/u2/messages", map[string]string{"userId": "u2"}, f.handler.GetConversation)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var messages []models.Message
	if err := json.NewDecoder(rr.Body).Decode(&messages); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Status != delivery.StatusDelivered {
		t.Errorf("Expected the fetch to promote the message to delivered, got %s", messages[0].Status)
	}
}

func TestGetConversationEmpty(t *testing.T) {
	f := newChatFixture(t)

	rr := f.do(t, "GET", "/conversations/u2/messages", map[string]string{"userId": "u2"}, f.handler.GetConversation)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); body == "null\n" {
		t.Error("Expected an empty array, not null")
	}
}

func TestMarkConversationRead(t *testing.T) {
	f := newChatFixture(t)

	msg := &models.Message{ID: "m1", SenderID: "u2", ReceiverID: "u1", Text: "hi alice", Status: delivery.StatusDelivered}
	if err := f.store.SaveMessage(msg); err != nil {
		t.Fatal(err)
	}

	rr := f.do(t, "PUT", "/conversations/u2/read", map[string]string{"userId": "u2"}, f.handler.MarkConversationRead)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	stored, err := f.store.GetMessage("m1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != delivery.StatusRead {
		t.Errorf("Expected message read after bulk mark, got %s", stored.Status)
	}
}
