// Package ws is the real-time core: it tracks which users are connected,
// publishes presence changes, and routes messages, read receipts, and typing
// signals between live connections.
package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/jfontan/parley/internal/auth"
	"github.com/jfontan/parley/internal/store"
)

// CredentialVerifier resolves an opaque bearer credential to the identity
// claims it carries.
type CredentialVerifier interface {
	Verify(credential string) (*auth.Claims, error)
}

type inbound struct {
	client *Client
	event  Event
}

// Hub owns every live connection and serializes all event handling on a
// single goroutine: events from one connection are handled in arrival order,
// and handlers never race on the registry or the store. Persistence calls run
// inside the loop iteration for that one event.
type Hub struct {
	clients  map[*Client]bool
	registry *Registry
	router   *Router
	store    store.Store
	verifier CredentialVerifier

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
}

func NewHub(st store.Store, verifier CredentialVerifier) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		registry:   NewRegistry(),
		store:      st,
		verifier:   verifier,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
	}
	h.router = NewRouter(st, h.registry, h.broadcastAll)
	return h
}

// Registry exposes the session registry, for wiring and tests.
func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.dropPresence(client)
			}

		case in := <-h.inbound:
			h.dispatch(in.client, in.event)
		}
	}
}

func (h *Hub) dispatch(c *Client, ev Event) {
	switch ev.Name {
	case EventAuthenticate:
		var credential string
		if err := json.Unmarshal(ev.Data, &credential); err != nil {
			c.Emit(EventAuthError, ErrorNotice{Message: "Authentication failed"})
			return
		}
		h.authenticate(c, credential)

	case EventMessageSend:
		var req SendRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			c.Emit(EventError, ErrorNotice{Message: "Failed to send message"})
			return
		}
		h.router.Send(c, req.ReceiverID, req.Text)

	case EventTypingStart, EventTypingStop:
		var req TypingRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			return
		}
		h.router.Typing(c, ev.Name, req.ReceiverID)

	case EventMessageRead:
		var req ReadRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			return
		}
		h.router.AcknowledgeRead(c, req.MessageID)

	default:
		log.Printf("ws: unknown event %q", ev.Name)
	}
}

// authenticate binds a connection to the user its credential names and
// publishes the presence change. Any failure surfaces auth_error to this
// connection only; the connection stays anonymous.
func (h *Hub) authenticate(c *Client, credential string) {
	claims, err := h.verifier.Verify(credential)
	if err != nil {
		c.Emit(EventAuthError, ErrorNotice{Message: "Authentication failed"})
		return
	}

	user, err := h.store.GetUserByID(claims.UserID)
	if err != nil {
		c.Emit(EventAuthError, ErrorNotice{Message: "Authentication failed"})
		return
	}

	// Re-authenticating as someone else unwinds the previous identity
	// first, so no stale registry entry outlives the rebind.
	if c.Authenticated() && c.userID != user.ID {
		h.dropPresence(c)
	}

	c.userID = user.ID
	c.username = user.Username
	h.registry.Register(user.ID, c)

	now := time.Now().UTC()
	if err := h.store.SetPresence(user.ID, true, now); err != nil {
		log.Printf("ws: presence update for %s: %v", user.ID, err)
	}
	user.IsOnline = true
	user.LastSeen = now

	c.Emit(EventAuthenticated, AuthenticatedNotice{Message: "Authentication successful", User: user})
	h.broadcastExcept(c, EventUserOnline, PresenceNotice{UserID: user.ID, Username: user.Username})
}

// dropPresence unwinds a connection's current identity, on disconnect and
// when it rebinds to a different user. A handle superseded by a newer
// registration is stale: the newer connection owns presence now, so the
// stale one unwinds nothing.
func (h *Hub) dropPresence(c *Client) {
	if !c.Authenticated() {
		return
	}
	if h.registry.Lookup(c.userID) != c {
		return
	}

	h.registry.Remove(c.userID)

	now := time.Now().UTC()
	if err := h.store.SetPresence(c.userID, false, now); err != nil {
		log.Printf("ws: presence update for %s: %v", c.userID, err)
	}

	h.broadcastExcept(c, EventUserOffline, PresenceNotice{UserID: c.userID, Username: c.username})
}

// broadcastExcept fans an event out to every currently registered connection
// except the originating one.
func (h *Hub) broadcastExcept(origin *Client, name string, data any) {
	for _, c := range h.registry.Snapshot() {
		if c == origin {
			continue
		}
		c.Emit(name, data)
	}
}

// broadcastAll sends an event to every connected session, including
// unauthenticated ones and the originator.
func (h *Hub) broadcastAll(name string, data any) {
	for c := range h.clients {
		c.Emit(name, data)
	}
}
