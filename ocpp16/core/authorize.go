package core

import (
	"github.com/moovolt/csms/ocpp16/types"
)

type AuthorizeRequest struct {
	IdTag string `json:"idTag" validate:"required,max=20"`
}

type AuthorizeResponse struct {
	IdTagInfo *types.IdTagInfo `json:"idTagInfo" validate:"required"`
}

func (r AuthorizeRequest) GetFeatureName() string  { return AuthorizeFeatureName }
func (r AuthorizeResponse) GetFeatureName() string { return AuthorizeFeatureName }

func NewAuthorizeResponse(info *types.IdTagInfo) *AuthorizeResponse {
	return &AuthorizeResponse{IdTagInfo: info}
}
