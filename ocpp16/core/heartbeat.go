package core

import (
	"github.com/moovolt/csms/ocpp16/types"
)

type HeartbeatRequest struct{}

type HeartbeatResponse struct {
	CurrentTime *types.DateTime `json:"currentTime" validate:"required"`
}

func (r HeartbeatRequest) GetFeatureName() string  { return HeartbeatFeatureName }
func (r HeartbeatResponse) GetFeatureName() string { return HeartbeatFeatureName }

func NewHeartbeatResponse(currentTime *types.DateTime) *HeartbeatResponse {
	return &HeartbeatResponse{CurrentTime: currentTime}
}
