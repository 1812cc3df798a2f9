package core

import (
	"gopkg.in/go-playground/validator.v9"

	"github.com/moovolt/csms/ocpp16/types"
	"github.com/moovolt/csms/ocppj"
)

// RegistrationStatus is the central system's verdict on a BootNotification.
type RegistrationStatus string

const (
	RegistrationStatusAccepted RegistrationStatus = "Accepted"
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

func isValidRegistrationStatus(fl validator.FieldLevel) bool {
	switch RegistrationStatus(fl.Field().String()) {
	case RegistrationStatusAccepted, RegistrationStatusPending, RegistrationStatusRejected:
		return true
	}
	return false
}

type BootNotificationRequest struct {
	ChargeBoxSerialNumber   string `json:"chargeBoxSerialNumber,omitempty" validate:"omitempty,max=25"`
	ChargePointModel        string `json:"chargePointModel" validate:"required,max=20"`
	ChargePointSerialNumber string `json:"chargePointSerialNumber,omitempty" validate:"omitempty,max=25"`
	ChargePointVendor       string `json:"chargePointVendor" validate:"required,max=20"`
	FirmwareVersion         string `json:"firmwareVersion,omitempty" validate:"omitempty,max=50"`
	Iccid                   string `json:"iccid,omitempty" validate:"omitempty,max=20"`
	Imsi                    string `json:"imsi,omitempty" validate:"omitempty,max=20"`
	MeterSerialNumber       string `json:"meterSerialNumber,omitempty" validate:"omitempty,max=25"`
	MeterType               string `json:"meterType,omitempty" validate:"omitempty,max=25"`
}

type BootNotificationResponse struct {
	CurrentTime *types.DateTime    `json:"currentTime" validate:"required"`
	Interval    int                `json:"interval" validate:"gte=0"`
	Status      RegistrationStatus `json:"status" validate:"required,registrationStatus"`
}

func (r BootNotificationRequest) GetFeatureName() string  { return BootNotificationFeatureName }
func (r BootNotificationResponse) GetFeatureName() string { return BootNotificationFeatureName }

// NewBootNotificationResponse fills the three mandatory fields; there are no
// optional ones for this message.
func NewBootNotificationResponse(status RegistrationStatus, currentTime *types.DateTime, interval int) *BootNotificationResponse {
	return &BootNotificationResponse{CurrentTime: currentTime, Interval: interval, Status: status}
}

func init() {
	ocppj.Validate.RegisterValidation("registrationStatus", isValidRegistrationStatus)
}
