package ocppj

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCall(t *testing.T) {
	message, err := Parse([]byte(`[2,"42","Heartbeat",{}]`))
	require.NoError(t, err)

	call, ok := message.(*Call)
	require.True(t, ok)
	assert.Equal(t, "42", call.UniqueID)
	assert.Equal(t, "Heartbeat", call.Action)
	assert.JSONEq(t, `{}`, string(call.Payload))
}

func TestParseCallResult(t *testing.T) {
	message, err := Parse([]byte(`[3,"42",{"currentTime":"2026-08-30T10:00:00.000Z"}]`))
	require.NoError(t, err)

	result, ok := message.(*CallResult)
	require.True(t, ok)
	assert.Equal(t, "42", result.UniqueID)
}

func TestParseCallError(t *testing.T) {
	message, err := Parse([]byte(`[4,"42","NotImplemented","unknown action",{"detail":1}]`))
	require.NoError(t, err)

	callError, ok := message.(*CallError)
	require.True(t, ok)
	assert.Equal(t, NotImplemented, callError.Code)
	assert.Equal(t, "unknown action", callError.Description)
}

func TestParseRejectsMalformedFrames(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `garbage`},
		{"not an array", `{"messageTypeId":2}`},
		{"empty array", `[]`},
		{"unknown type id", `[5,"1","Heartbeat",{}]`},
		{"type id zero", `[0,"1","Heartbeat",{}]`},
		{"string type id", `["2","1","Heartbeat",{}]`},
		{"call wrong arity", `[2,"1","Heartbeat"]`},
		{"call extra element", `[2,"1","Heartbeat",{},{}]`},
		{"call result wrong arity", `[3,"1"]`},
		{"call error wrong arity", `[4,"1","GenericError","oops"]`},
		{"empty message id", `[2,"","Heartbeat",{}]`},
		{"numeric message id", `[2,7,"Heartbeat",{}]`},
		{"non-object payload", `[2,"1","Heartbeat",[1,2]]`},
		{"non-string action", `[2,"1",42,{}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
			var malformed *MalformedFrameError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestParseSalvagesMessageID(t *testing.T) {
	_, err := Parse([]byte(`[5,"abc","Heartbeat",{}]`))
	var malformed *MalformedFrameError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "abc", malformed.MessageID)

	_, err = Parse([]byte(`[2,"xyz","Heartbeat"]`))
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "xyz", malformed.MessageID)
}

func TestRoundTrip(t *testing.T) {
	frames := []Message{
		&Call{UniqueID: "1", Action: "BootNotification", Payload: json.RawMessage(`{"chargePointVendor":"X","chargePointModel":"Y"}`)},
		&CallResult{UniqueID: "2", Payload: json.RawMessage(`{"status":"Accepted"}`)},
		&CallError{UniqueID: "3", Code: InternalError, Description: "boom", Details: json.RawMessage(`{"k":"v"}`)},
	}
	for _, frame := range frames {
		data, err := frame.MarshalJSON()
		require.NoError(t, err)
		parsed, parseErr := Parse(data)
		require.NoError(t, parseErr)
		assert.Equal(t, frame, parsed)
	}
}

func TestEncodePositionalOrder(t *testing.T) {
	call := &Call{UniqueID: "7", Action: "Heartbeat", Payload: json.RawMessage(`{}`)}
	data, err := call.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[2,"7","Heartbeat",{}]`, string(data))

	callError := &CallError{UniqueID: "7", Code: ProtocolError, Description: "bad frame"}
	data, err = callError.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[4,"7","ProtocolError","bad frame",{}]`, string(data))
}
