// Package central implements the server side of OCPP-J 1.6: it accepts
// upgraded station WebSockets, runs one dispatch session per station, and
// routes validated payloads to business handlers.
package central

import (
	"github.com/moovolt/csms/ocpp16/core"
)

// Handler receives validated, typed station-initiated requests. Handlers see
// only typed payloads; frames and the correlation table stay inside this
// package. Returning an error produces a single CallError (InternalError
// unless the error is an *ocppj.Error carrying its own code) for the
// offending call.
type Handler interface {
	OnAuthorize(stationID string, request *core.AuthorizeRequest) (*core.AuthorizeResponse, error)
	OnDataTransfer(stationID string, request *core.DataTransferRequest) (*core.DataTransferResponse, error)
	OnMeterValues(stationID string, request *core.MeterValuesRequest) (*core.MeterValuesResponse, error)
	OnStartTransaction(stationID string, request *core.StartTransactionRequest) (*core.StartTransactionResponse, error)
	OnStatusNotification(stationID string, request *core.StatusNotificationRequest) (*core.StatusNotificationResponse, error)
	OnStopTransaction(stationID string, request *core.StopTransactionRequest) (*core.StopTransactionResponse, error)
}

// StationAuthorizer decides whether a booting station is known to the
// operator. It is the only identity policy in the engine; BootNotification is
// answered Accepted or Rejected based on its verdict.
type StationAuthorizer interface {
	IsKnownStation(stationID string, boot *core.BootNotificationRequest) bool
}

// AuthorizerFunc adapts a plain function to StationAuthorizer.
type AuthorizerFunc func(stationID string, boot *core.BootNotificationRequest) bool

func (f AuthorizerFunc) IsKnownStation(stationID string, boot *core.BootNotificationRequest) bool {
	return f(stationID, boot)
}

// BootObserver is an optional extension a Handler may implement to be told
// about BootNotification outcomes, e.g. to persist station metadata.
type BootObserver interface {
	OnBootNotification(stationID string, request *core.BootNotificationRequest, status core.RegistrationStatus)
}
