package core

import (
	"gopkg.in/go-playground/validator.v9"

	"github.com/moovolt/csms/ocpp16/types"
	"github.com/moovolt/csms/ocppj"
)

// RemoteStartStopStatus answers a RemoteStartTransaction or
// RemoteStopTransaction command.
type RemoteStartStopStatus string

// Reason explains why a transaction stopped.
type Reason string

const (
	RemoteStartStopStatusAccepted RemoteStartStopStatus = "Accepted"
	RemoteStartStopStatusRejected RemoteStartStopStatus = "Rejected"

	ReasonDeAuthorized   Reason = "DeAuthorized"
	ReasonEmergencyStop  Reason = "EmergencyStop"
	ReasonEVDisconnected Reason = "EVDisconnected"
	ReasonHardReset      Reason = "HardReset"
	ReasonLocal          Reason = "Local"
	ReasonOther          Reason = "Other"
	ReasonPowerLoss      Reason = "PowerLoss"
	ReasonReboot         Reason = "Reboot"
	ReasonRemote         Reason = "Remote"
	ReasonSoftReset      Reason = "SoftReset"
	ReasonUnlockCommand  Reason = "UnlockCommand"
)

func isValidRemoteStartStopStatus(fl validator.FieldLevel) bool {
	switch RemoteStartStopStatus(fl.Field().String()) {
	case RemoteStartStopStatusAccepted, RemoteStartStopStatusRejected:
		return true
	}
	return false
}

func isValidReason(fl validator.FieldLevel) bool {
	switch Reason(fl.Field().String()) {
	case ReasonDeAuthorized, ReasonEmergencyStop, ReasonEVDisconnected, ReasonHardReset,
		ReasonLocal, ReasonOther, ReasonPowerLoss, ReasonReboot, ReasonRemote,
		ReasonSoftReset, ReasonUnlockCommand:
		return true
	}
	return false
}

type StartTransactionRequest struct {
	ConnectorId   int             `json:"connectorId" validate:"required,gt=0"`
	IdTag         string          `json:"idTag" validate:"required,max=20"`
	MeterStart    int             `json:"meterStart" validate:"gte=0"`
	ReservationId *int            `json:"reservationId,omitempty"`
	Timestamp     *types.DateTime `json:"timestamp" validate:"required"`
}

type StartTransactionResponse struct {
	IdTagInfo     *types.IdTagInfo `json:"idTagInfo" validate:"required"`
	TransactionId int              `json:"transactionId"`
}

type StopTransactionRequest struct {
	IdTag           string          `json:"idTag,omitempty" validate:"omitempty,max=20"`
	MeterStop       int             `json:"meterStop" validate:"gte=0"`
	Timestamp       *types.DateTime `json:"timestamp" validate:"required"`
	TransactionId   int             `json:"transactionId"`
	Reason          Reason          `json:"reason,omitempty" validate:"omitempty,stopReason"`
	TransactionData []MeterValue    `json:"transactionData,omitempty" validate:"omitempty,dive"`
}

type StopTransactionResponse struct {
	IdTagInfo *types.IdTagInfo `json:"idTagInfo,omitempty"`
}

type RemoteStartTransactionRequest struct {
	ConnectorId *int   `json:"connectorId,omitempty" validate:"omitempty,gt=0"`
	IdTag       string `json:"idTag" validate:"required,max=20"`
}

type RemoteStartTransactionResponse struct {
	Status RemoteStartStopStatus `json:"status" validate:"required,remoteStartStopStatus"`
}

type RemoteStopTransactionRequest struct {
	TransactionId int `json:"transactionId"`
}

type RemoteStopTransactionResponse struct {
	Status RemoteStartStopStatus `json:"status" validate:"required,remoteStartStopStatus"`
}

func (r StartTransactionRequest) GetFeatureName() string  { return StartTransactionFeatureName }
func (r StartTransactionResponse) GetFeatureName() string { return StartTransactionFeatureName }
func (r StopTransactionRequest) GetFeatureName() string   { return StopTransactionFeatureName }
func (r StopTransactionResponse) GetFeatureName() string  { return StopTransactionFeatureName }
func (r RemoteStartTransactionRequest) GetFeatureName() string {
	return RemoteStartTransactionFeatureName
}
func (r RemoteStartTransactionResponse) GetFeatureName() string {
	return RemoteStartTransactionFeatureName
}
func (r RemoteStopTransactionRequest) GetFeatureName() string {
	return RemoteStopTransactionFeatureName
}
func (r RemoteStopTransactionResponse) GetFeatureName() string {
	return RemoteStopTransactionFeatureName
}

func NewStartTransactionResponse(info *types.IdTagInfo, transactionId int) *StartTransactionResponse {
	return &StartTransactionResponse{IdTagInfo: info, TransactionId: transactionId}
}

func NewRemoteStartTransactionResponse(status RemoteStartStopStatus) *RemoteStartTransactionResponse {
	return &RemoteStartTransactionResponse{Status: status}
}

func NewRemoteStopTransactionResponse(status RemoteStartStopStatus) *RemoteStopTransactionResponse {
	return &RemoteStopTransactionResponse{Status: status}
}

func init() {
	ocppj.Validate.RegisterValidation("remoteStartStopStatus", isValidRemoteStartStopStatus)
	ocppj.Validate.RegisterValidation("stopReason", isValidReason)
}
