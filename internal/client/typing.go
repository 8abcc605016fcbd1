package client

import (
	"sync"
	"time"
)

// TypingIdle is how long after the last keystroke the stop signal fires.
const TypingIdle = 2 * time.Second

// TypingNotifier turns a stream of keystrokes into typing signals: every
// keystroke emits start and re-arms the idle timer, and stop fires once the
// timer expires without further keystrokes. Sending the composed message
// calls Flush, which stops immediately.
type TypingNotifier struct {
	start func()
	stop  func()

	mu    sync.Mutex
	idle  time.Duration
	timer *time.Timer
}

func NewTypingNotifier(start, stop func()) *TypingNotifier {
	return &TypingNotifier{start: start, stop: stop, idle: TypingIdle}
}

// Keystroke records input activity: it emits a start signal and resets the
// idle window.
func (t *TypingNotifier) Keystroke() {
	t.start()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.idle, t.expire)
}

func (t *TypingNotifier) expire() {
	t.mu.Lock()
	t.timer = nil
	t.mu.Unlock()
	t.stop()
}

// Flush cancels the pending idle timer and emits stop immediately.
func (t *TypingNotifier) Flush() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	t.stop()
}
