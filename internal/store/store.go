package store

import (
	"errors"
	"time"

	"github.com/jfontan/parley/internal/delivery"
	"github.com/jfontan/parley/internal/models"
)

// ErrNotFound is returned when a user or message lookup matches no row.
var ErrNotFound = errors.New("store: not found")

type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	// GetUserByUsername looks the user up case-insensitively.
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	// ListRoster returns every user except the given one, ordered by
	// username, each with the preview of the newest message exchanged
	// with them.
	ListRoster(exceptID string) ([]models.RosterEntry, error)
	SetPresence(id string, online bool, lastSeen time.Time) error

	// Message operations
	SaveMessage(msg *models.Message) error
	GetMessage(id string) (*models.Message, error)
	SetMessageStatus(id string, status delivery.Status) error
	// FetchConversation returns every message between the two users,
	// ordered by timestamp ascending, with sender and receiver display
	// names resolved. As a documented side effect it first bulk-promotes
	// every "sent" message addressed to currentID in that conversation to
	// "delivered": fetching a conversation implicitly acknowledges
	// deliverability.
	FetchConversation(currentID, otherID string) ([]models.Message, error)
	// MarkConversationRead bulk-promotes every "sent" or "delivered"
	// message from otherID to currentID to "read".
	MarkConversationRead(currentID, otherID string) error
}
