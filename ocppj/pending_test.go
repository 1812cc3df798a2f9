package ocppj

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingCallResolvedByResult(t *testing.T) {
	table := NewPendingCalls()
	call := table.Add("Reset", time.Minute)

	assert.NotEmpty(t, call.MessageID())
	assert.Equal(t, 1, table.Size())

	action, ok := table.Action(call.MessageID())
	require.True(t, ok)
	assert.Equal(t, "Reset", action)

	resolved := table.Resolve(call.MessageID(), Outcome{Result: json.RawMessage(`{"status":"Accepted"}`)})
	assert.True(t, resolved)
	assert.Equal(t, 0, table.Size())

	outcome := <-call.Done()
	require.NoError(t, outcome.Err)
	assert.JSONEq(t, `{"status":"Accepted"}`, string(outcome.Result))
}

func TestUnsolicitedResolveIsNoOp(t *testing.T) {
	table := NewPendingCalls()
	call := table.Add("Reset", time.Minute)

	assert.False(t, table.Resolve("never-issued", Outcome{Result: json.RawMessage(`{}`)}))
	assert.Equal(t, 1, table.Size())

	select {
	case <-call.Done():
		t.Fatal("call must not complete from an unsolicited resolve")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimeoutCompletesExactlyOnce(t *testing.T) {
	table := NewPendingCalls()
	call := table.Add("Reset", 20*time.Millisecond)

	outcome := <-call.Done()
	assert.ErrorIs(t, outcome.Err, ErrCallTimeout)
	assert.Equal(t, 0, table.Size())

	// A late reply for the timed-out id is ignored.
	assert.False(t, table.Resolve(call.MessageID(), Outcome{Result: json.RawMessage(`{}`)}))
	select {
	case <-call.Done():
		t.Fatal("second resolution must be a no-op")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestResolveStopsTimeout(t *testing.T) {
	table := NewPendingCalls()
	call := table.Add("Reset", 20*time.Millisecond)

	require.True(t, table.Resolve(call.MessageID(), Outcome{Result: json.RawMessage(`{}`)}))
	outcome := <-call.Done()
	require.NoError(t, outcome.Err)

	select {
	case <-call.Done():
		t.Fatal("timeout must not fire after resolution")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestCancelAll(t *testing.T) {
	table := NewPendingCalls()
	first := table.Add("Reset", time.Minute)
	second := table.Add("ClearCache", time.Minute)
	require.NotEqual(t, first.MessageID(), second.MessageID())

	table.CancelAll()
	assert.Equal(t, 0, table.Size())

	for _, call := range []*PendingCall{first, second} {
		outcome := <-call.Done()
		assert.ErrorIs(t, outcome.Err, ErrCallCanceled)
	}
}
