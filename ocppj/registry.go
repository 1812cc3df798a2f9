package ocppj

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"gopkg.in/go-playground/validator.v9"
)

// Validate is the process-wide payload validator. Profile packages register
// their custom enum checks on it at init time; it must not be mutated after
// startup.
var Validate = validator.New()

// Request is the typed payload of an inbound or outbound Call.
type Request interface {
	GetFeatureName() string
}

// Response is the typed payload of a CallResult.
type Response interface {
	GetFeatureName() string
}

// Direction states which endpoint may initiate a Call for a feature.
type Direction int

const (
	StationToCentral Direction = 1 << iota
	CentralToStation

	Bidirectional = StationToCentral | CentralToStation
)

// Allows reports whether d permits calls initiated from dir.
func (d Direction) Allows(dir Direction) bool {
	return d&dir != 0
}

// Feature describes one registered action: its name, which side may call it,
// and the Go types its request and response payloads decode into.
type Feature struct {
	Name         string
	Direction    Direction
	RequestType  reflect.Type
	ResponseType reflect.Type
}

// Registry is the immutable action whitelist. It is built once at startup and
// read concurrently by every session without locking.
type Registry struct {
	features map[string]*Feature
}

func NewRegistry() *Registry {
	return &Registry{features: map[string]*Feature{}}
}

// Register adds a feature, replacing any previous entry under the same name.
// Must complete before the registry is shared with sessions.
func (r *Registry) Register(f Feature) {
	entry := f
	r.features[f.Name] = &entry
}

// Lookup resolves an action name against the whitelist. Matching is exact and
// case-sensitive.
func (r *Registry) Lookup(action string) (*Feature, bool) {
	f, ok := r.features[action]
	return f, ok
}

// Actions returns the registered action names, for diagnostics.
func (r *Registry) Actions() []string {
	names := make([]string, 0, len(r.features))
	for name := range r.features {
		names = append(names, name)
	}
	return names
}

// UnmarshalRequest decodes a raw Call payload into the feature's request
// type. Interpretation is keyed entirely by the feature identity: no
// structural guessing across actions ever happens here. The schema is closed;
// unknown fields fail with OccurrenceConstraintViolation.
func (r *Registry) UnmarshalRequest(f *Feature, raw json.RawMessage) (Request, *Error) {
	value, ocppErr := unmarshalPayload(f.RequestType, raw)
	if ocppErr != nil {
		return nil, ocppErr
	}
	return value.(Request), nil
}

// UnmarshalResponse decodes a raw CallResult payload into the feature's
// response type. The feature comes from the pending call the message id was
// issued for, never from the payload shape.
func (r *Registry) UnmarshalResponse(f *Feature, raw json.RawMessage) (Response, *Error) {
	value, ocppErr := unmarshalPayload(f.ResponseType, raw)
	if ocppErr != nil {
		return nil, ocppErr
	}
	return value.(Response), nil
}

func unmarshalPayload(t reflect.Type, raw json.RawMessage) (interface{}, *Error) {
	if raw == nil {
		raw = json.RawMessage("{}")
	}
	value := reflect.New(t).Interface()
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return nil, payloadDecodeError(err)
	}
	if err := Validate.Struct(value); err != nil {
		return nil, validationError(err)
	}
	return value, nil
}

func payloadDecodeError(err error) *Error {
	msg := err.Error()
	if strings.Contains(msg, "unknown field") {
		return NewError(OccurrenceConstraintViolation, msg)
	}
	return NewError(TypeConstraintViolation, msg)
}

// validationError maps validator failures onto the OCPP error vocabulary:
// a missing required field is a formation problem, everything else violates a
// property constraint.
func validationError(err error) *Error {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return NewError(GenericError, err.Error())
	}
	first := fieldErrors[0]
	if first.Tag() == "required" {
		return NewError(FormationViolation, "missing required field "+first.Namespace())
	}
	return NewError(PropertyConstraintViolation,
		"field "+first.Namespace()+" violates constraint "+first.Tag())
}
