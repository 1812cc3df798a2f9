package ocppj

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal result of a pending call: exactly one of Result
// (raw CallResult payload) or Err (*Error from a CallError, ErrCallTimeout,
// or ErrCallCanceled) is set.
type Outcome struct {
	Result json.RawMessage
	Err    error
}

// PendingCall tracks one outstanding server-initiated Call until its reply,
// timeout, or cancellation. It is completed exactly once.
type PendingCall struct {
	messageID string
	action    string
	sentAt    time.Time

	timer *time.Timer
	done  chan Outcome
}

func (p *PendingCall) MessageID() string { return p.messageID }
func (p *PendingCall) Action() string    { return p.action }
func (p *PendingCall) SentAt() time.Time { return p.sentAt }

// Done yields the single terminal outcome of the call.
func (p *PendingCall) Done() <-chan Outcome { return p.done }

// PendingCalls is one session's correlation table from message id to
// outstanding call. Completion can race between the session's read loop and
// the timeout timers, so the table carries its own lock.
type PendingCalls struct {
	mu    sync.Mutex
	calls map[string]*PendingCall
}

func NewPendingCalls() *PendingCalls {
	return &PendingCalls{calls: map[string]*PendingCall{}}
}

// Add records a new pending call under a fresh message id, unique among the
// ids currently outstanding, and arms its timeout. The returned call's id is
// the one to place in the outgoing frame.
func (t *PendingCalls) Add(action string, timeout time.Duration) *PendingCall {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	for {
		if _, taken := t.calls[id]; !taken {
			break
		}
		id = uuid.NewString()
	}

	call := &PendingCall{
		messageID: id,
		action:    action,
		sentAt:    time.Now(),
		done:      make(chan Outcome, 1),
	}
	call.timer = time.AfterFunc(timeout, func() {
		t.Resolve(id, Outcome{Err: ErrCallTimeout})
	})
	t.calls[id] = call
	return call
}

// Resolve completes the pending call registered under messageID and removes
// it from the table. It reports whether a call was matched; resolving an
// unknown or already-completed id is a no-op, so late replies after a timeout
// are silently ignored.
func (t *PendingCalls) Resolve(messageID string, outcome Outcome) bool {
	t.mu.Lock()
	call, ok := t.calls[messageID]
	if ok {
		delete(t.calls, messageID)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	call.timer.Stop()
	call.done <- outcome
	return true
}

// Action returns the action a message id was issued for, used to pick the
// response type when its CallResult arrives.
func (t *PendingCalls) Action(messageID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	call, ok := t.calls[messageID]
	if !ok {
		return "", false
	}
	return call.action, true
}

// CancelAll completes every outstanding call with ErrCallCanceled. Called on
// session teardown.
func (t *PendingCalls) CancelAll() {
	t.mu.Lock()
	calls := t.calls
	t.calls = map[string]*PendingCall{}
	t.mu.Unlock()

	for _, call := range calls {
		call.timer.Stop()
		call.done <- Outcome{Err: ErrCallCanceled}
	}
}

// Size returns the number of outstanding calls.
func (t *PendingCalls) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
