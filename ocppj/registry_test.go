package ocppj

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRequest struct {
	Target string `json:"target" validate:"required,max=10"`
	Count  int    `json:"count,omitempty" validate:"omitempty,gte=1"`
}

type pingResponse struct {
	Latency int `json:"latency" validate:"gte=0"`
}

func (pingRequest) GetFeatureName() string  { return "Ping" }
func (pingResponse) GetFeatureName() string { return "Ping" }

func pingFeature() Feature {
	return Feature{
		Name:         "Ping",
		Direction:    CentralToStation,
		RequestType:  reflect.TypeOf(pingRequest{}),
		ResponseType: reflect.TypeOf(pingResponse{}),
	}
}

func TestLookupIsExactAndCaseSensitive(t *testing.T) {
	registry := NewRegistry()
	registry.Register(pingFeature())

	_, ok := registry.Lookup("Ping")
	assert.True(t, ok)
	_, ok = registry.Lookup("ping")
	assert.False(t, ok)
	_, ok = registry.Lookup("Pong")
	assert.False(t, ok)
}

func TestDirectionAllows(t *testing.T) {
	assert.True(t, Bidirectional.Allows(StationToCentral))
	assert.True(t, Bidirectional.Allows(CentralToStation))
	assert.True(t, StationToCentral.Allows(StationToCentral))
	assert.False(t, StationToCentral.Allows(CentralToStation))
	assert.False(t, CentralToStation.Allows(StationToCentral))
}

func TestUnmarshalRequestKeyedByFeature(t *testing.T) {
	registry := NewRegistry()
	feature := pingFeature()
	registry.Register(feature)

	request, ocppErr := registry.UnmarshalRequest(&feature, json.RawMessage(`{"target":"cp001","count":3}`))
	require.Nil(t, ocppErr)
	ping := request.(*pingRequest)
	assert.Equal(t, "cp001", ping.Target)
	assert.Equal(t, 3, ping.Count)
}

func TestUnmarshalRequestMissingRequiredField(t *testing.T) {
	feature := pingFeature()
	registry := NewRegistry()
	registry.Register(feature)

	_, ocppErr := registry.UnmarshalRequest(&feature, json.RawMessage(`{"count":3}`))
	require.NotNil(t, ocppErr)
	assert.Equal(t, FormationViolation, ocppErr.Code)
}

func TestUnmarshalRequestWrongType(t *testing.T) {
	feature := pingFeature()
	registry := NewRegistry()
	registry.Register(feature)

	_, ocppErr := registry.UnmarshalRequest(&feature, json.RawMessage(`{"target":"cp001","count":"three"}`))
	require.NotNil(t, ocppErr)
	assert.Equal(t, TypeConstraintViolation, ocppErr.Code)
}

func TestUnmarshalRequestUnknownField(t *testing.T) {
	feature := pingFeature()
	registry := NewRegistry()
	registry.Register(feature)

	_, ocppErr := registry.UnmarshalRequest(&feature, json.RawMessage(`{"target":"cp001","bogus":true}`))
	require.NotNil(t, ocppErr)
	assert.Equal(t, OccurrenceConstraintViolation, ocppErr.Code)
}

func TestUnmarshalRequestConstraintViolation(t *testing.T) {
	feature := pingFeature()
	registry := NewRegistry()
	registry.Register(feature)

	_, ocppErr := registry.UnmarshalRequest(&feature, json.RawMessage(`{"target":"a-very-long-target-name"}`))
	require.NotNil(t, ocppErr)
	assert.Equal(t, PropertyConstraintViolation, ocppErr.Code)
}

func TestUnmarshalResponseNilPayload(t *testing.T) {
	feature := pingFeature()
	registry := NewRegistry()
	registry.Register(feature)

	response, ocppErr := registry.UnmarshalResponse(&feature, nil)
	require.Nil(t, ocppErr)
	assert.Equal(t, 0, response.(*pingResponse).Latency)
}
