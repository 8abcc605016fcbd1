// Package delivery defines the per-message status lifecycle. Statuses form a
// lattice, sent < delivered < read, and a message's status only ever moves
// forward through it.
package delivery

// Status is the delivery state of a message.
type Status string

const (
	// StatusSent means the message is persisted but the receiver has not
	// been confirmed reachable.
	StatusSent Status = "sent"
	// StatusDelivered means the message was pushed to an online receiver,
	// or promoted in bulk when the receiver fetched the conversation.
	StatusDelivered Status = "delivered"
	// StatusRead means the receiver explicitly acknowledged the message.
	// It is terminal.
	StatusRead Status = "read"
)

var order = map[Status]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	_, ok := order[s]
	return ok
}

// AtLeast reports whether s is at or beyond other in the lattice.
func (s Status) AtLeast(other Status) bool {
	return order[s] >= order[other]
}

// Advance moves cur forward to next and reports whether anything changed.
// Regressions, repeats, and unknown target statuses leave cur untouched;
// they are no-ops, not errors.
func Advance(cur, next Status) (Status, bool) {
	if !next.Valid() || order[next] <= order[cur] {
		return cur, false
	}
	return next, true
}
