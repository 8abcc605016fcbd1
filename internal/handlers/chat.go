package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jfontan/parley/internal/middleware"
	"github.com/jfontan/parley/internal/models"
	"github.com/jfontan/parley/internal/store"
)

type ChatHandler struct {
	Store store.Store
}

// ListUsers returns the roster: every other user with presence and the
// last-message preview, ordered by username.
func (h *ChatHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	roster, err := h.Store.ListRoster(userID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error while fetching users")
		return
	}
	if roster == nil {
		roster = []models.RosterEntry{}
	}

	json.NewEncoder(w).Encode(roster)
}

// GetConversation returns the caller's conversation with the peer in the
// path. Fetching promotes pending messages addressed to the caller to
// delivered; see store.Store.FetchConversation.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	otherID := mux.Vars(r)["userId"]

	messages, err := h.Store.FetchConversation(userID, otherID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error while fetching messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	json.NewEncoder(w).Encode(messages)
}

// MarkConversationRead bulk-promotes everything the peer sent the caller to
// read. Invoked by clients when the conversation screen is opened.
func (h *ChatHandler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	otherID := mux.Vars(r)["userId"]

	if err := h.Store.MarkConversationRead(userID, otherID); err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error while marking messages as read")
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Messages marked as read"})
}
