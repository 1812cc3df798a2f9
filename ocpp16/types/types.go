// Package types holds value types shared by every OCPP 1.6 profile.
package types

import (
	"encoding/json"
	"time"

	"github.com/relvacode/iso8601"
	"gopkg.in/go-playground/validator.v9"

	"github.com/moovolt/csms/ocppj"
)

// DateTimeFormat is the timestamp layout written on the wire. Parsing is
// lenient (any ISO8601 form a station may produce), formatting is canonical.
const DateTimeFormat = "2006-01-02T15:04:05.000Z"

// DateTime wraps time.Time with OCPP's ISO8601 JSON encoding.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) *DateTime {
	return &DateTime{Time: t}
}

// Now returns the current time as an OCPP DateTime, truncated to millisecond
// precision so a round trip through the wire format is lossless.
func Now() *DateTime {
	return &DateTime{Time: time.Now().UTC().Truncate(time.Millisecond)}
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := iso8601.ParseString(raw)
	if err != nil {
		return err
	}
	dt.Time = parsed
	return nil
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.Time.UTC().Format(DateTimeFormat))
}

// AuthorizationStatus is the verdict on an idTag in an IdTagInfo.
type AuthorizationStatus string

const (
	AuthorizationStatusAccepted     AuthorizationStatus = "Accepted"
	AuthorizationStatusBlocked      AuthorizationStatus = "Blocked"
	AuthorizationStatusExpired      AuthorizationStatus = "Expired"
	AuthorizationStatusInvalid      AuthorizationStatus = "Invalid"
	AuthorizationStatusConcurrentTx AuthorizationStatus = "ConcurrentTx"
)

func isValidAuthorizationStatus(fl validator.FieldLevel) bool {
	switch AuthorizationStatus(fl.Field().String()) {
	case AuthorizationStatusAccepted, AuthorizationStatusBlocked,
		AuthorizationStatusExpired, AuthorizationStatusInvalid,
		AuthorizationStatusConcurrentTx:
		return true
	}
	return false
}

// IdTagInfo carries the authorization verdict plus metadata returned for an
// idTag in Authorize, StartTransaction and StopTransaction responses.
type IdTagInfo struct {
	ExpiryDate  *DateTime           `json:"expiryDate,omitempty"`
	ParentIdTag string              `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	Status      AuthorizationStatus `json:"status" validate:"required,authorizationStatus"`
}

func NewIdTagInfo(status AuthorizationStatus) *IdTagInfo {
	return &IdTagInfo{Status: status}
}

func init() {
	ocppj.Validate.RegisterValidation("authorizationStatus", isValidAuthorizationStatus)
}
