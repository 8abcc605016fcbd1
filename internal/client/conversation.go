// Package client implements the consuming side of the real-time channel: the
// optimistic local transcript of an open conversation and the reconciliation
// of server events into it. It owns no durable state; a transcript is rebuilt
// from a full conversation fetch every time a conversation is opened.
package client

import (
	"fmt"
	"time"

	"github.com/jfontan/parley/internal/delivery"
	"github.com/jfontan/parley/internal/models"
)

// StatusSending marks an optimistic local entry that the server has not
// confirmed yet. It is client-local and never part of the delivery lattice.
const StatusSending = delivery.Status("sending")

// Conversation is the ordered local view of the messages exchanged with one
// peer. It is not safe for concurrent use; drive it from a single loop.
type Conversation struct {
	selfID  string
	peerID  string
	entries []models.Message
	nextTmp int
	now     func() time.Time
}

func NewConversation(selfID, peerID string) *Conversation {
	return &Conversation{selfID: selfID, peerID: peerID, now: time.Now}
}

// Reset rebuilds the transcript from a full conversation fetch, dropping any
// local state.
func (c *Conversation) Reset(history []models.Message) {
	c.entries = append(c.entries[:0], history...)
}

// AppendLocal inserts an optimistic entry for text the local user just sent,
// so the view reflects the intent before the server confirms. The entry
// carries a temporary id and StatusSending until ApplySent replaces it.
func (c *Conversation) AppendLocal(text string) models.Message {
	c.nextTmp++
	entry := models.Message{
		ID:         fmt.Sprintf("local-%d", c.nextTmp),
		SenderID:   c.selfID,
		ReceiverID: c.peerID,
		Text:       text,
		Status:     StatusSending,
		Timestamp:  c.now(),
	}
	c.entries = append(c.entries, entry)
	return entry
}

// ApplySent reconciles the router's message:sent confirmation: the newest
// optimistic entry with the same text is replaced in place by the confirmed
// message. A confirmation with no optimistic match is appended, never
// dropped. Matching on text alone is ambiguous when the same text is sent
// twice in quick succession; the newest pending entry wins.
func (c *Conversation) ApplySent(confirmed models.Message) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].Status == StatusSending && c.entries[i].Text == confirmed.Text {
			c.entries[i] = confirmed
			return
		}
	}
	c.entries = append(c.entries, confirmed)
}

// ApplyNew merges an incoming message:new. The broadcast path echoes the
// sender's own messages back, so a message from the local user that still has
// an optimistic twin is skipped instead of duplicated.
func (c *Conversation) ApplyNew(msg models.Message) {
	if msg.SenderID == c.selfID {
		for _, e := range c.entries {
			if e.Status == StatusSending && e.Text == msg.Text {
				return
			}
		}
	}
	c.entries = append(c.entries, msg)
}

// ApplyRead flips the referenced message to read, leaving every other entry
// untouched.
func (c *Conversation) ApplyRead(messageID string) {
	for i := range c.entries {
		if c.entries[i].ID == messageID {
			c.entries[i].Status = delivery.StatusRead
		}
	}
}

// Messages returns a copy of the transcript in order.
func (c *Conversation) Messages() []models.Message {
	out := make([]models.Message, len(c.entries))
	copy(out, c.entries)
	return out
}
