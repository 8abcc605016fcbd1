package delivery

import "testing"

func TestAdvanceForward(t *testing.T) {
	tests := []struct {
		cur, next Status
		want      Status
		moved     bool
	}{
		{StatusSent, StatusDelivered, StatusDelivered, true},
		{StatusSent, StatusRead, StatusRead, true},
		{StatusDelivered, StatusRead, StatusRead, true},
	}

	for _, tt := range tests {
		got, moved := Advance(tt.cur, tt.next)
		if got != tt.want || moved != tt.moved {
			t.Errorf("Advance(%s, %s) = (%s, %v), want (%s, %v)", tt.cur, tt.next, got, moved, tt.want, tt.moved)
		}
	}
}

func TestAdvanceNeverRegresses(t *testing.T) {
	tests := []struct {
		cur, next Status
	}{
		{StatusSent, StatusSent},
		{StatusDelivered, StatusSent},
		{StatusDelivered, StatusDelivered},
		{StatusRead, StatusSent},
		{StatusRead, StatusDelivered},
		{StatusRead, StatusRead},
	}

	for _, tt := range tests {
		got, moved := Advance(tt.cur, tt.next)
		if moved {
			t.Errorf("Advance(%s, %s) reported a change", tt.cur, tt.next)
		}
		if got != tt.cur {
			t.Errorf("Advance(%s, %s) = %s, want %s unchanged", tt.cur, tt.next, got, tt.cur)
		}
	}
}

func TestAdvanceUnknownStatus(t *testing.T) {
	got, moved := Advance(StatusSent, Status("bogus"))
	if moved || got != StatusSent {
		t.Errorf("Advance to unknown status = (%s, %v), want (%s, false)", got, moved, StatusSent)
	}
}

func TestValid(t *testing.T) {
	for _, s := range []Status{StatusSent, StatusDelivered, StatusRead} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("sending").Valid() {
		t.Error("client-local statuses are not part of the lattice")
	}
}
