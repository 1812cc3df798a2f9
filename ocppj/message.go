// Package ocppj implements the OCPP-J 1.6 message layer: the three wire frame
// kinds (Call, CallResult, CallError), the action registry, payload validation
// and the correlation table for server-initiated calls.
package ocppj

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// MessageType is the first element of every OCPP-J frame.
type MessageType int

const (
	MessageTypeCall       MessageType = 2
	MessageTypeCallResult MessageType = 3
	MessageTypeCallError  MessageType = 4
)

// Message is one decoded OCPP-J frame.
type Message interface {
	MessageType() MessageType
	MessageID() string
	MarshalJSON() ([]byte, error)
}

// Call is a request frame: [2, "<messageId>", "<Action>", {payload}].
type Call struct {
	UniqueID string
	Action   string
	Payload  json.RawMessage
}

func (c *Call) MessageType() MessageType { return MessageTypeCall }
func (c *Call) MessageID() string        { return c.UniqueID }

func (c *Call) MarshalJSON() ([]byte, error) {
	payload := c.Payload
	if payload == nil {
		payload = json.RawMessage("{}")
	}
	fields := []interface{}{MessageTypeCall, c.UniqueID, c.Action, payload}
	return json.Marshal(fields)
}

// CallResult is a success reply frame: [3, "<messageId>", {payload}].
type CallResult struct {
	UniqueID string
	Payload  json.RawMessage
}

func (r *CallResult) MessageType() MessageType { return MessageTypeCallResult }
func (r *CallResult) MessageID() string        { return r.UniqueID }

func (r *CallResult) MarshalJSON() ([]byte, error) {
	payload := r.Payload
	if payload == nil {
		payload = json.RawMessage("{}")
	}
	fields := []interface{}{MessageTypeCallResult, r.UniqueID, payload}
	return json.Marshal(fields)
}

// CallError is a failure reply frame:
// [4, "<messageId>", "<errorCode>", "<errorDescription>", {details}].
type CallError struct {
	UniqueID    string
	Code        ErrorCode
	Description string
	Details     json.RawMessage
}

func (e *CallError) MessageType() MessageType { return MessageTypeCallError }
func (e *CallError) MessageID() string        { return e.UniqueID }

func (e *CallError) MarshalJSON() ([]byte, error) {
	details := e.Details
	if details == nil {
		details = json.RawMessage("{}")
	}
	fields := []interface{}{MessageTypeCallError, e.UniqueID, e.Code, e.Description, details}
	return json.Marshal(fields)
}

// MalformedFrameError reports a frame that does not satisfy the OCPP-J array
// structure. MessageID is set when the second element could still be read as a
// string, so the caller may answer with a CallError; otherwise it is empty and
// the frame can only be dropped.
type MalformedFrameError struct {
	MessageID string
	Reason    string
}

func (e *MalformedFrameError) Error() string {
	return "malformed frame: " + e.Reason
}

func malformed(id, reason string) *MalformedFrameError {
	return &MalformedFrameError{MessageID: id, Reason: reason}
}

// salvageID extracts the second array element as a string if possible, so a
// structurally broken frame can still be answered by message id.
func salvageID(fields []json.RawMessage) string {
	if len(fields) < 2 {
		return ""
	}
	var id string
	if err := json.Unmarshal(fields[1], &id); err != nil {
		return ""
	}
	return id
}

// Parse decodes a single text frame. The frame structure is checked before
// any interpretation of the payload: the root must be a JSON array, the first
// element one of 2/3/4, and the arity must match the frame kind exactly.
func Parse(data []byte) (Message, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, malformed("", "not a JSON array")
	}
	if len(fields) < 1 {
		return nil, malformed("", "empty array")
	}
	var typeID int
	if err := json.Unmarshal(fields[0], &typeID); err != nil {
		return nil, malformed(salvageID(fields), "message type id is not an integer")
	}

	switch MessageType(typeID) {
	case MessageTypeCall:
		if len(fields) != 4 {
			return nil, malformed(salvageID(fields), "call frame must have 4 elements")
		}
		call := Call{}
		if err := json.Unmarshal(fields[1], &call.UniqueID); err != nil || call.UniqueID == "" {
			return nil, malformed("", "message id must be a non-empty string")
		}
		if err := json.Unmarshal(fields[2], &call.Action); err != nil {
			return nil, malformed(call.UniqueID, "action must be a string")
		}
		if !isJSONObject(fields[3]) {
			return nil, malformed(call.UniqueID, "payload must be a JSON object")
		}
		call.Payload = fields[3]
		return &call, nil

	case MessageTypeCallResult:
		if len(fields) != 3 {
			return nil, malformed(salvageID(fields), "call result frame must have 3 elements")
		}
		result := CallResult{}
		if err := json.Unmarshal(fields[1], &result.UniqueID); err != nil || result.UniqueID == "" {
			return nil, malformed("", "message id must be a non-empty string")
		}
		if !isJSONObject(fields[2]) {
			return nil, malformed(result.UniqueID, "payload must be a JSON object")
		}
		result.Payload = fields[2]
		return &result, nil

	case MessageTypeCallError:
		if len(fields) != 5 {
			return nil, malformed(salvageID(fields), "call error frame must have 5 elements")
		}
		callError := CallError{}
		if err := json.Unmarshal(fields[1], &callError.UniqueID); err != nil || callError.UniqueID == "" {
			return nil, malformed("", "message id must be a non-empty string")
		}
		var code string
		if err := json.Unmarshal(fields[2], &code); err != nil {
			return nil, malformed(callError.UniqueID, "error code must be a string")
		}
		callError.Code = ErrorCode(code)
		if err := json.Unmarshal(fields[3], &callError.Description); err != nil {
			return nil, malformed(callError.UniqueID, "error description must be a string")
		}
		if !isJSONObject(fields[4]) {
			return nil, malformed(callError.UniqueID, "error details must be a JSON object")
		}
		callError.Details = fields[4]
		return &callError, nil
	}
	return nil, malformed(salvageID(fields), "unsupported message type id")
}

func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// MarshalPayload serializes a typed request/response into the payload slot of
// an outgoing frame.
func MarshalPayload(payload interface{}) (json.RawMessage, error) {
	if payload == nil {
		return json.RawMessage("{}"), nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling payload")
	}
	return data, nil
}
