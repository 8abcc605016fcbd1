package ws

import (
	"encoding/json"

	"github.com/jfontan/parley/internal/models"
)

// Event names carried on the wire, in both directions.
const (
	EventAuthenticate  = "authenticate"
	EventAuthenticated = "authenticated"
	EventAuthError     = "auth_error"
	EventMessageSend   = "message:send"
	EventMessageNew    = "message:new"
	EventMessageSent   = "message:sent"
	EventMessageRead   = "message:read"
	EventTypingStart   = "typing:start"
	EventTypingStop    = "typing:stop"
	EventUserOnline    = "user:online"
	EventUserOffline   = "user:offline"
	EventError         = "error"
)

// Event is the JSON envelope carried on the wire: a name plus an
// event-specific payload.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// SendRequest is the client payload of message:send.
type SendRequest struct {
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

// TypingRequest is the client payload of typing:start and typing:stop.
type TypingRequest struct {
	ReceiverID string `json:"receiverId"`
}

// TypingNotice is the server payload of the relayed typing events.
type TypingNotice struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// ReadRequest is the client payload of message:read. Clients send senderId
// alongside the message id, but the router resolves the receipt's target
// from the stored message rather than trusting the field.
type ReadRequest struct {
	MessageID string `json:"messageId"`
	SenderID  string `json:"senderId"`
}

// ReadReceipt is the server payload of message:read, sent to the original
// sender when the receiver acknowledges.
type ReadReceipt struct {
	MessageID string `json:"messageId"`
	ReadBy    string `json:"readBy"`
}

// PresenceNotice is the payload of user:online and user:offline.
type PresenceNotice struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// AuthenticatedNotice confirms a successful socket authentication.
type AuthenticatedNotice struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// ErrorNotice is the payload of error and auth_error.
type ErrorNotice struct {
	Message string `json:"message"`
}
