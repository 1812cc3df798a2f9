package core

import (
	"gopkg.in/go-playground/validator.v9"

	"github.com/moovolt/csms/ocppj"
)

type AvailabilityType string

type AvailabilityStatus string

type ResetType string

type ResetStatus string

type UnlockStatus string

const (
	AvailabilityTypeOperative   AvailabilityType = "Operative"
	AvailabilityTypeInoperative AvailabilityType = "Inoperative"

	AvailabilityStatusAccepted  AvailabilityStatus = "Accepted"
	AvailabilityStatusRejected  AvailabilityStatus = "Rejected"
	AvailabilityStatusScheduled AvailabilityStatus = "Scheduled"

	ResetTypeHard ResetType = "Hard"
	ResetTypeSoft ResetType = "Soft"

	ResetStatusAccepted ResetStatus = "Accepted"
	ResetStatusRejected ResetStatus = "Rejected"

	UnlockStatusUnlocked     UnlockStatus = "Unlocked"
	UnlockStatusUnlockFailed UnlockStatus = "UnlockFailed"
	UnlockStatusNotSupported UnlockStatus = "NotSupported"
)

type ChangeAvailabilityRequest struct {
	ConnectorId int              `json:"connectorId" validate:"gte=0"`
	Type        AvailabilityType `json:"type" validate:"required,availabilityType"`
}

type ChangeAvailabilityResponse struct {
	Status AvailabilityStatus `json:"status" validate:"required,availabilityStatus"`
}

type ResetRequest struct {
	Type ResetType `json:"type" validate:"required,resetType"`
}

type ResetResponse struct {
	Status ResetStatus `json:"status" validate:"required,resetStatus"`
}

type UnlockConnectorRequest struct {
	ConnectorId int `json:"connectorId" validate:"required,gt=0"`
}

type UnlockConnectorResponse struct {
	Status UnlockStatus `json:"status" validate:"required,unlockStatus"`
}

func (r ChangeAvailabilityRequest) GetFeatureName() string  { return ChangeAvailabilityFeatureName }
func (r ChangeAvailabilityResponse) GetFeatureName() string { return ChangeAvailabilityFeatureName }
func (r ResetRequest) GetFeatureName() string               { return ResetFeatureName }
func (r ResetResponse) GetFeatureName() string              { return ResetFeatureName }
func (r UnlockConnectorRequest) GetFeatureName() string     { return UnlockConnectorFeatureName }
func (r UnlockConnectorResponse) GetFeatureName() string    { return UnlockConnectorFeatureName }

func init() {
	ocppj.Validate.RegisterValidation("availabilityType", func(fl validator.FieldLevel) bool {
		switch AvailabilityType(fl.Field().String()) {
		case AvailabilityTypeOperative, AvailabilityTypeInoperative:
			return true
		}
		return false
	})
	ocppj.Validate.RegisterValidation("availabilityStatus", func(fl validator.FieldLevel) bool {
		switch AvailabilityStatus(fl.Field().String()) {
		case AvailabilityStatusAccepted, AvailabilityStatusRejected, AvailabilityStatusScheduled:
			return true
		}
		return false
	})
	ocppj.Validate.RegisterValidation("resetType", func(fl validator.FieldLevel) bool {
		switch ResetType(fl.Field().String()) {
		case ResetTypeHard, ResetTypeSoft:
			return true
		}
		return false
	})
	ocppj.Validate.RegisterValidation("resetStatus", func(fl validator.FieldLevel) bool {
		switch ResetStatus(fl.Field().String()) {
		case ResetStatusAccepted, ResetStatusRejected:
			return true
		}
		return false
	})
	ocppj.Validate.RegisterValidation("unlockStatus", func(fl validator.FieldLevel) bool {
		switch UnlockStatus(fl.Field().String()) {
		case UnlockStatusUnlocked, UnlockStatusUnlockFailed, UnlockStatusNotSupported:
			return true
		}
		return false
	})
}
