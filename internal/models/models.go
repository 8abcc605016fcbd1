package models

import (
	"time"

	"github.com/jfontan/parley/internal/delivery"
)

type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Password string    `json:"-"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

// Message is one persisted chat message. Rows are immutable except for the
// status column, which only moves forward through the delivery lattice.
type Message struct {
	ID           string          `json:"id"`
	SenderID     string          `json:"senderId"`
	SenderName   string          `json:"senderName"`
	ReceiverID   string          `json:"receiverId"`
	ReceiverName string          `json:"receiverName,omitempty"`
	Text         string          `json:"text"`
	Status       delivery.Status `json:"status"`
	Timestamp    time.Time       `json:"timestamp"`
}

// LastMessage is the roster preview of the newest message in a conversation.
type LastMessage struct {
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	SenderName string    `json:"senderName"`
}

// RosterEntry is one row of the user list: a peer, their presence, and the
// preview of the latest message exchanged with them, if any.
type RosterEntry struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	IsOnline    bool         `json:"isOnline"`
	LastSeen    time.Time    `json:"lastSeen"`
	LastMessage *LastMessage `json:"lastMessage"`
}
