package ws

// BroadcastRecipient is the reserved receiver id meaning "every connected
// session". Messages sent to it are relayed but never persisted.
const BroadcastRecipient = "general"

// Recipient is the target of a send intent: either a specific user or the
// broadcast channel. Modeling this as a tagged value keeps the two branches
// explicit instead of comparing against the sentinel at every use site.
type Recipient struct {
	userID string
}

// ParseRecipient interprets a wire-level receiver id.
func ParseRecipient(raw string) Recipient {
	if raw == BroadcastRecipient {
		return Recipient{}
	}
	return Recipient{userID: raw}
}

// Broadcast reports whether the recipient is the broadcast channel.
func (r Recipient) Broadcast() bool {
	return r.userID == ""
}

// UserID returns the target user id for a direct recipient.
func (r Recipient) UserID() string {
	return r.userID
}
