package core

import (
	"gopkg.in/go-playground/validator.v9"

	"github.com/moovolt/csms/ocppj"
)

type ConfigurationStatus string

type ClearCacheStatus string

const (
	ConfigurationStatusAccepted       ConfigurationStatus = "Accepted"
	ConfigurationStatusRejected       ConfigurationStatus = "Rejected"
	ConfigurationStatusRebootRequired ConfigurationStatus = "RebootRequired"
	ConfigurationStatusNotSupported   ConfigurationStatus = "NotSupported"

	ClearCacheStatusAccepted ClearCacheStatus = "Accepted"
	ClearCacheStatusRejected ClearCacheStatus = "Rejected"
)

type ChangeConfigurationRequest struct {
	Key   string `json:"key" validate:"required,max=50"`
	Value string `json:"value" validate:"required,max=500"`
}

type ChangeConfigurationResponse struct {
	Status ConfigurationStatus `json:"status" validate:"required,configurationStatus"`
}

// ConfigurationKey is one key/value pair reported by GetConfiguration. Value
// is a pointer so a write-only key can be reported without a value.
type ConfigurationKey struct {
	Key      string  `json:"key" validate:"required,max=50"`
	Readonly bool    `json:"readonly"`
	Value    *string `json:"value,omitempty" validate:"omitempty,max=500"`
}

type GetConfigurationRequest struct {
	Key []string `json:"key,omitempty" validate:"omitempty,dive,max=50"`
}

type GetConfigurationResponse struct {
	ConfigurationKey []ConfigurationKey `json:"configurationKey,omitempty" validate:"omitempty,dive"`
	UnknownKey       []string           `json:"unknownKey,omitempty" validate:"omitempty,dive,max=50"`
}

type ClearCacheRequest struct{}

type ClearCacheResponse struct {
	Status ClearCacheStatus `json:"status" validate:"required,clearCacheStatus"`
}

func (r ChangeConfigurationRequest) GetFeatureName() string  { return ChangeConfigurationFeatureName }
func (r ChangeConfigurationResponse) GetFeatureName() string { return ChangeConfigurationFeatureName }
func (r GetConfigurationRequest) GetFeatureName() string     { return GetConfigurationFeatureName }
func (r GetConfigurationResponse) GetFeatureName() string    { return GetConfigurationFeatureName }
func (r ClearCacheRequest) GetFeatureName() string           { return ClearCacheFeatureName }
func (r ClearCacheResponse) GetFeatureName() string          { return ClearCacheFeatureName }

func init() {
	ocppj.Validate.RegisterValidation("configurationStatus", func(fl validator.FieldLevel) bool {
		switch ConfigurationStatus(fl.Field().String()) {
		case ConfigurationStatusAccepted, ConfigurationStatusRejected,
			ConfigurationStatusRebootRequired, ConfigurationStatusNotSupported:
			return true
		}
		return false
	})
	ocppj.Validate.RegisterValidation("clearCacheStatus", func(fl validator.FieldLevel) bool {
		switch ClearCacheStatus(fl.Field().String()) {
		case ClearCacheStatusAccepted, ClearCacheStatusRejected:
			return true
		}
		return false
	})
}
