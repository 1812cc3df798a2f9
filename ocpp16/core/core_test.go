package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moovolt/csms/ocppj"
)

func TestRegistryCoversCoreProfile(t *testing.T) {
	registry := NewRegistry()
	actions := []string{
		"Authorize", "BootNotification", "ChangeAvailability", "ChangeConfiguration",
		"ClearCache", "DataTransfer", "GetConfiguration", "Heartbeat", "MeterValues",
		"RemoteStartTransaction", "RemoteStopTransaction", "Reset", "StartTransaction",
		"StatusNotification", "StopTransaction", "UnlockConnector",
	}
	for _, action := range actions {
		_, ok := registry.Lookup(action)
		assert.True(t, ok, action)
	}
	assert.Len(t, registry.Actions(), len(actions))
}

func TestDirectionTable(t *testing.T) {
	registry := NewRegistry()

	stationInitiated := []string{
		"Authorize", "BootNotification", "Heartbeat", "MeterValues",
		"StartTransaction", "StatusNotification", "StopTransaction",
	}
	for _, action := range stationInitiated {
		feature, _ := registry.Lookup(action)
		assert.True(t, feature.Direction.Allows(ocppj.StationToCentral), action)
		assert.False(t, feature.Direction.Allows(ocppj.CentralToStation), action)
	}

	centralInitiated := []string{
		"ChangeAvailability", "ChangeConfiguration", "ClearCache", "GetConfiguration",
		"RemoteStartTransaction", "RemoteStopTransaction", "Reset", "UnlockConnector",
	}
	for _, action := range centralInitiated {
		feature, _ := registry.Lookup(action)
		assert.True(t, feature.Direction.Allows(ocppj.CentralToStation), action)
		assert.False(t, feature.Direction.Allows(ocppj.StationToCentral), action)
	}

	dataTransfer, _ := registry.Lookup("DataTransfer")
	assert.True(t, dataTransfer.Direction.Allows(ocppj.StationToCentral))
	assert.True(t, dataTransfer.Direction.Allows(ocppj.CentralToStation))
}

func TestBootNotificationValidation(t *testing.T) {
	registry := NewRegistry()
	feature, _ := registry.Lookup(BootNotificationFeatureName)

	request, ocppErr := registry.UnmarshalRequest(feature, json.RawMessage(
		`{"chargePointVendor":"X","chargePointModel":"Y","firmwareVersion":"v1.0.0"}`))
	require.Nil(t, ocppErr)
	boot := request.(*BootNotificationRequest)
	assert.Equal(t, "X", boot.ChargePointVendor)
	assert.Equal(t, "Y", boot.ChargePointModel)

	_, ocppErr = registry.UnmarshalRequest(feature, json.RawMessage(`{"chargePointVendor":"X"}`))
	require.NotNil(t, ocppErr)
	assert.Equal(t, ocppj.FormationViolation, ocppErr.Code)
}

func TestEnumValidation(t *testing.T) {
	registry := NewRegistry()
	feature, _ := registry.Lookup(StatusNotificationFeatureName)

	_, ocppErr := registry.UnmarshalRequest(feature, json.RawMessage(
		`{"connectorId":1,"errorCode":"NoError","status":"Levitating"}`))
	require.NotNil(t, ocppErr)
	assert.Equal(t, ocppj.PropertyConstraintViolation, ocppErr.Code)

	_, ocppErr = registry.UnmarshalRequest(feature, json.RawMessage(
		`{"connectorId":1,"errorCode":"NoError","status":"Charging"}`))
	assert.Nil(t, ocppErr)
}

// Structurally identical payloads must decode according to the named action,
// never by shape guessing.
func TestAmbiguousPayloadKeyedByAction(t *testing.T) {
	registry := NewRegistry()
	payload := json.RawMessage(`{}`)

	heartbeat, _ := registry.Lookup(HeartbeatFeatureName)
	request, ocppErr := registry.UnmarshalRequest(heartbeat, payload)
	require.Nil(t, ocppErr)
	assert.IsType(t, &HeartbeatRequest{}, request)
	assert.Equal(t, HeartbeatFeatureName, request.GetFeatureName())

	clearCache, _ := registry.Lookup(ClearCacheFeatureName)
	request, ocppErr = registry.UnmarshalRequest(clearCache, payload)
	require.Nil(t, ocppErr)
	assert.IsType(t, &ClearCacheRequest{}, request)
	assert.Equal(t, ClearCacheFeatureName, request.GetFeatureName())
}

func TestMeterValuesValidation(t *testing.T) {
	registry := NewRegistry()
	feature, _ := registry.Lookup(MeterValuesFeatureName)

	valid := `{"connectorId":1,"meterValue":[{"timestamp":"2026-08-30T10:00:00Z","sampledValue":[{"value":"1200","unit":"Wh"}]}]}`
	request, ocppErr := registry.UnmarshalRequest(feature, json.RawMessage(valid))
	require.Nil(t, ocppErr)
	mv := request.(*MeterValuesRequest)
	require.Len(t, mv.MeterValue, 1)
	assert.Equal(t, "1200", mv.MeterValue[0].SampledValue[0].Value)

	empty := `{"connectorId":1,"meterValue":[]}`
	_, ocppErr = registry.UnmarshalRequest(feature, json.RawMessage(empty))
	require.NotNil(t, ocppErr)
}

func TestStartTransactionValidation(t *testing.T) {
	registry := NewRegistry()
	feature, _ := registry.Lookup(StartTransactionFeatureName)

	valid := `{"connectorId":1,"idTag":"TAG-1","meterStart":0,"timestamp":"2026-08-30T10:00:00Z"}`
	_, ocppErr := registry.UnmarshalRequest(feature, json.RawMessage(valid))
	assert.Nil(t, ocppErr)

	noConnector := `{"connectorId":0,"idTag":"TAG-1","meterStart":0,"timestamp":"2026-08-30T10:00:00Z"}`
	_, ocppErr = registry.UnmarshalRequest(feature, json.RawMessage(noConnector))
	require.NotNil(t, ocppErr)
}

func TestResponseValidation(t *testing.T) {
	registry := NewRegistry()
	feature, _ := registry.Lookup(BootNotificationFeatureName)

	valid := `{"currentTime":"2026-08-30T10:00:00Z","interval":60,"status":"Accepted"}`
	response, ocppErr := registry.UnmarshalResponse(feature, json.RawMessage(valid))
	require.Nil(t, ocppErr)
	boot := response.(*BootNotificationResponse)
	assert.Equal(t, RegistrationStatusAccepted, boot.Status)
	assert.Equal(t, 60, boot.Interval)

	badStatus := `{"currentTime":"2026-08-30T10:00:00Z","interval":60,"status":"Maybe"}`
	_, ocppErr = registry.UnmarshalResponse(feature, json.RawMessage(badStatus))
	require.NotNil(t, ocppErr)
}
