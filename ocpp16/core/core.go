// Package core defines the OCPP 1.6 Core profile: the typed request and
// response payloads for the sixteen mandatory actions, their validation
// rules, and the feature table the dispatcher's registry is built from.
package core

import (
	"reflect"

	"github.com/moovolt/csms/ocppj"
)

const (
	AuthorizeFeatureName              = "Authorize"
	BootNotificationFeatureName       = "BootNotification"
	ChangeAvailabilityFeatureName     = "ChangeAvailability"
	ChangeConfigurationFeatureName    = "ChangeConfiguration"
	ClearCacheFeatureName             = "ClearCache"
	DataTransferFeatureName           = "DataTransfer"
	GetConfigurationFeatureName       = "GetConfiguration"
	HeartbeatFeatureName              = "Heartbeat"
	MeterValuesFeatureName            = "MeterValues"
	RemoteStartTransactionFeatureName = "RemoteStartTransaction"
	RemoteStopTransactionFeatureName  = "RemoteStopTransaction"
	ResetFeatureName                  = "Reset"
	StartTransactionFeatureName       = "StartTransaction"
	StatusNotificationFeatureName     = "StatusNotification"
	StopTransactionFeatureName        = "StopTransaction"
	UnlockConnectorFeatureName        = "UnlockConnector"
)

// Profile returns the Core feature table with the canonical OCPP-J 1.6
// direction per action. Directions are data: a caller needing a non-standard
// policy re-registers the entry with a different direction.
func Profile() []ocppj.Feature {
	return []ocppj.Feature{
		feature(AuthorizeFeatureName, ocppj.StationToCentral, AuthorizeRequest{}, AuthorizeResponse{}),
		feature(BootNotificationFeatureName, ocppj.StationToCentral, BootNotificationRequest{}, BootNotificationResponse{}),
		feature(ChangeAvailabilityFeatureName, ocppj.CentralToStation, ChangeAvailabilityRequest{}, ChangeAvailabilityResponse{}),
		feature(ChangeConfigurationFeatureName, ocppj.CentralToStation, ChangeConfigurationRequest{}, ChangeConfigurationResponse{}),
		feature(ClearCacheFeatureName, ocppj.CentralToStation, ClearCacheRequest{}, ClearCacheResponse{}),
		feature(DataTransferFeatureName, ocppj.Bidirectional, DataTransferRequest{}, DataTransferResponse{}),
		feature(GetConfigurationFeatureName, ocppj.CentralToStation, GetConfigurationRequest{}, GetConfigurationResponse{}),
		feature(HeartbeatFeatureName, ocppj.StationToCentral, HeartbeatRequest{}, HeartbeatResponse{}),
		feature(MeterValuesFeatureName, ocppj.StationToCentral, MeterValuesRequest{}, MeterValuesResponse{}),
		feature(RemoteStartTransactionFeatureName, ocppj.CentralToStation, RemoteStartTransactionRequest{}, RemoteStartTransactionResponse{}),
		feature(RemoteStopTransactionFeatureName, ocppj.CentralToStation, RemoteStopTransactionRequest{}, RemoteStopTransactionResponse{}),
		feature(ResetFeatureName, ocppj.CentralToStation, ResetRequest{}, ResetResponse{}),
		feature(StartTransactionFeatureName, ocppj.StationToCentral, StartTransactionRequest{}, StartTransactionResponse{}),
		feature(StatusNotificationFeatureName, ocppj.StationToCentral, StatusNotificationRequest{}, StatusNotificationResponse{}),
		feature(StopTransactionFeatureName, ocppj.StationToCentral, StopTransactionRequest{}, StopTransactionResponse{}),
		feature(UnlockConnectorFeatureName, ocppj.CentralToStation, UnlockConnectorRequest{}, UnlockConnectorResponse{}),
	}
}

// NewRegistry builds an action registry holding exactly the Core profile.
func NewRegistry() *ocppj.Registry {
	registry := ocppj.NewRegistry()
	for _, f := range Profile() {
		registry.Register(f)
	}
	return registry
}

func feature(name string, direction ocppj.Direction, request ocppj.Request, response ocppj.Response) ocppj.Feature {
	return ocppj.Feature{
		Name:         name,
		Direction:    direction,
		RequestType:  reflect.TypeOf(request),
		ResponseType: reflect.TypeOf(response),
	}
}
