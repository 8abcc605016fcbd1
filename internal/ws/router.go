package ws

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jfontan/parley/internal/delivery"
	"github.com/jfontan/parley/internal/models"
	"github.com/jfontan/parley/internal/store"
)

// Router receives send intents from authenticated connections, persists them,
// resolves receiver reachability, advances delivery status, and relays the
// ephemeral read-receipt and typing signals.
type Router struct {
	store    store.Store
	registry *Registry
	fanout   func(name string, data any)
	now      func() time.Time
	newID    func() string
}

func NewRouter(st store.Store, registry *Registry, fanout func(string, any)) *Router {
	return &Router{
		store:    st,
		registry: registry,
		fanout:   fanout,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Send routes one message. Broadcast sends are transient: relayed to every
// connected session (the sender included) and never persisted. Direct sends
// are persisted as "sent", pushed to the receiver as "delivered" when they
// are online, and always confirmed back to the sender with the persisted
// state.
func (r *Router) Send(sender *Client, receiverID, text string) {
	if !sender.Authenticated() {
		sender.Emit(EventError, ErrorNotice{Message: "User not authenticated"})
		return
	}

	recipient := ParseRecipient(receiverID)
	if recipient.Broadcast() {
		r.fanout(EventMessageNew, models.Message{
			ID:         r.newID(),
			SenderID:   sender.userID,
			SenderName: sender.username,
			ReceiverID: BroadcastRecipient,
			Text:       text,
			Status:     delivery.StatusSent,
			Timestamp:  r.now().UTC(),
		})
		return
	}

	receiver, err := r.store.GetUserByID(recipient.UserID())
	if err != nil {
		log.Printf("ws: resolve receiver %s: %v", recipient.UserID(), err)
		sender.Emit(EventError, ErrorNotice{Message: "Failed to send message"})
		return
	}

	msg := &models.Message{
		ID:           r.newID(),
		SenderID:     sender.userID,
		SenderName:   sender.username,
		ReceiverID:   receiver.ID,
		ReceiverName: receiver.Username,
		Text:         text,
		Status:       delivery.StatusSent,
	}
	if err := r.store.SaveMessage(msg); err != nil {
		log.Printf("ws: save message from %s: %v", sender.userID, err)
		sender.Emit(EventError, ErrorNotice{Message: "Failed to send message"})
		return
	}

	if conn := r.registry.Lookup(receiver.ID); conn != nil {
		next, _ := delivery.Advance(msg.Status, delivery.StatusDelivered)
		if err := r.store.SetMessageStatus(msg.ID, next); err != nil {
			// The row stays at "sent"; the receiver discovers it on
			// their next conversation fetch.
			log.Printf("ws: promote message %s: %v", msg.ID, err)
			sender.Emit(EventError, ErrorNotice{Message: "Failed to send message"})
			return
		}
		msg.Status = next
		conn.Emit(EventMessageNew, msg)
	}

	sender.Emit(EventMessageSent, msg)
}

// AcknowledgeRead promotes the referenced message to read and notifies its
// original sender if they are online. Unknown ids and already-read messages
// are silent no-ops; duplicate acknowledgments produce no second receipt.
func (r *Router) AcknowledgeRead(reader *Client, messageID string) {
	if !reader.Authenticated() {
		return
	}

	msg, err := r.store.GetMessage(messageID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("ws: load message %s: %v", messageID, err)
		}
		return
	}

	next, moved := delivery.Advance(msg.Status, delivery.StatusRead)
	if !moved {
		return
	}
	if err := r.store.SetMessageStatus(msg.ID, next); err != nil {
		log.Printf("ws: mark message %s read: %v", msg.ID, err)
		return
	}

	if conn := r.registry.Lookup(msg.SenderID); conn != nil {
		conn.Emit(EventMessageRead, ReadReceipt{MessageID: msg.ID, ReadBy: reader.userID})
	}
}

// Typing relays a start or stop signal to the receiver's connection. Signals
// to offline receivers are dropped, never queued, and nothing is persisted.
func (r *Router) Typing(sender *Client, name, receiverID string) {
	if !sender.Authenticated() {
		return
	}

	conn := r.registry.Lookup(receiverID)
	if conn == nil {
		return
	}
	conn.Emit(name, TypingNotice{UserID: sender.userID, Username: sender.username})
}
