package core

import (
	"gopkg.in/go-playground/validator.v9"

	"github.com/moovolt/csms/ocpp16/types"
	"github.com/moovolt/csms/ocppj"
)

type ChargePointErrorCode string

type ChargePointStatus string

const (
	ConnectorLockFailure ChargePointErrorCode = "ConnectorLockFailure"
	EVCommunicationError ChargePointErrorCode = "EVCommunicationError"
	GroundFailure        ChargePointErrorCode = "GroundFailure"
	HighTemperature      ChargePointErrorCode = "HighTemperature"
	InternalError        ChargePointErrorCode = "InternalError"
	LocalListConflict    ChargePointErrorCode = "LocalListConflict"
	NoError              ChargePointErrorCode = "NoError"
	OtherError           ChargePointErrorCode = "OtherError"
	OverCurrentFailure   ChargePointErrorCode = "OverCurrentFailure"
	OverVoltage          ChargePointErrorCode = "OverVoltage"
	PowerMeterFailure    ChargePointErrorCode = "PowerMeterFailure"
	PowerSwitchFailure   ChargePointErrorCode = "PowerSwitchFailure"
	ReaderFailure        ChargePointErrorCode = "ReaderFailure"
	ResetFailure         ChargePointErrorCode = "ResetFailure"
	UnderVoltage         ChargePointErrorCode = "UnderVoltage"
	WeakSignal           ChargePointErrorCode = "WeakSignal"

	ChargePointStatusAvailable     ChargePointStatus = "Available"
	ChargePointStatusPreparing     ChargePointStatus = "Preparing"
	ChargePointStatusCharging      ChargePointStatus = "Charging"
	ChargePointStatusSuspendedEVSE ChargePointStatus = "SuspendedEVSE"
	ChargePointStatusSuspendedEV   ChargePointStatus = "SuspendedEV"
	ChargePointStatusFinishing     ChargePointStatus = "Finishing"
	ChargePointStatusReserved      ChargePointStatus = "Reserved"
	ChargePointStatusUnavailable   ChargePointStatus = "Unavailable"
	ChargePointStatusFaulted       ChargePointStatus = "Faulted"
)

func isValidChargePointErrorCode(fl validator.FieldLevel) bool {
	switch ChargePointErrorCode(fl.Field().String()) {
	case ConnectorLockFailure, EVCommunicationError, GroundFailure, HighTemperature,
		InternalError, LocalListConflict, NoError, OtherError, OverCurrentFailure,
		OverVoltage, PowerMeterFailure, PowerSwitchFailure, ReaderFailure,
		ResetFailure, UnderVoltage, WeakSignal:
		return true
	}
	return false
}

func isValidChargePointStatus(fl validator.FieldLevel) bool {
	switch ChargePointStatus(fl.Field().String()) {
	case ChargePointStatusAvailable, ChargePointStatusPreparing, ChargePointStatusCharging,
		ChargePointStatusSuspendedEVSE, ChargePointStatusSuspendedEV, ChargePointStatusFinishing,
		ChargePointStatusReserved, ChargePointStatusUnavailable, ChargePointStatusFaulted:
		return true
	}
	return false
}

type StatusNotificationRequest struct {
	ConnectorId     int                  `json:"connectorId" validate:"gte=0"`
	ErrorCode       ChargePointErrorCode `json:"errorCode" validate:"required,chargePointErrorCode"`
	Info            string               `json:"info,omitempty" validate:"omitempty,max=50"`
	Status          ChargePointStatus    `json:"status" validate:"required,chargePointStatus"`
	Timestamp       *types.DateTime      `json:"timestamp,omitempty"`
	VendorId        string               `json:"vendorId,omitempty" validate:"omitempty,max=255"`
	VendorErrorCode string               `json:"vendorErrorCode,omitempty" validate:"omitempty,max=50"`
}

type StatusNotificationResponse struct{}

func (r StatusNotificationRequest) GetFeatureName() string  { return StatusNotificationFeatureName }
func (r StatusNotificationResponse) GetFeatureName() string { return StatusNotificationFeatureName }

func init() {
	ocppj.Validate.RegisterValidation("chargePointErrorCode", isValidChargePointErrorCode)
	ocppj.Validate.RegisterValidation("chargePointStatus", isValidChargePointStatus)
}
