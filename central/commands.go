package central

import (
	"context"

	"github.com/pkg/errors"

	"github.com/moovolt/csms/ocpp16/core"
	"github.com/moovolt/csms/ocppj"
)

// ErrStationNotConnected is returned when a command targets a station with no
// live session.
var ErrStationNotConnected = errors.New("station not connected")

func (srv *Server) call(ctx context.Context, stationID string, request ocppj.Request) (ocppj.Response, error) {
	session, ok := srv.connections.Get(stationID)
	if !ok {
		return nil, ErrStationNotConnected
	}
	return session.Call(ctx, request)
}

// Typed wrappers for the Core actions the central system may initiate. Each
// one issues a Call over the station's session and waits, bounded by the
// configured call timeout, for the typed response.

func (srv *Server) ChangeAvailability(ctx context.Context, stationID string, request *core.ChangeAvailabilityRequest) (*core.ChangeAvailabilityResponse, error) {
	response, err := srv.call(ctx, stationID, request)
	if err != nil {
		return nil, err
	}
	return response.(*core.ChangeAvailabilityResponse), nil
}

func (srv *Server) ChangeConfiguration(ctx context.Context, stationID string, request *core.ChangeConfigurationRequest) (*core.ChangeConfigurationResponse, error) {
	response, err := srv.call(ctx, stationID, request)
	if err != nil {
		return nil, err
	}
	return response.(*core.ChangeConfigurationResponse), nil
}

func (srv *Server) ClearCache(ctx context.Context, stationID string) (*core.ClearCacheResponse, error) {
	response, err := srv.call(ctx, stationID, &core.ClearCacheRequest{})
	if err != nil {
		return nil, err
	}
	return response.(*core.ClearCacheResponse), nil
}

func (srv *Server) DataTransfer(ctx context.Context, stationID string, request *core.DataTransferRequest) (*core.DataTransferResponse, error) {
	response, err := srv.call(ctx, stationID, request)
	if err != nil {
		return nil, err
	}
	return response.(*core.DataTransferResponse), nil
}

func (srv *Server) GetConfiguration(ctx context.Context, stationID string, keys []string) (*core.GetConfigurationResponse, error) {
	response, err := srv.call(ctx, stationID, &core.GetConfigurationRequest{Key: keys})
	if err != nil {
		return nil, err
	}
	return response.(*core.GetConfigurationResponse), nil
}

func (srv *Server) RemoteStartTransaction(ctx context.Context, stationID string, request *core.RemoteStartTransactionRequest) (*core.RemoteStartTransactionResponse, error) {
	response, err := srv.call(ctx, stationID, request)
	if err != nil {
		return nil, err
	}
	return response.(*core.RemoteStartTransactionResponse), nil
}

func (srv *Server) RemoteStopTransaction(ctx context.Context, stationID string, transactionID int) (*core.RemoteStopTransactionResponse, error) {
	response, err := srv.call(ctx, stationID, &core.RemoteStopTransactionRequest{TransactionId: transactionID})
	if err != nil {
		return nil, err
	}
	return response.(*core.RemoteStopTransactionResponse), nil
}

func (srv *Server) Reset(ctx context.Context, stationID string, resetType core.ResetType) (*core.ResetResponse, error) {
	response, err := srv.call(ctx, stationID, &core.ResetRequest{Type: resetType})
	if err != nil {
		return nil, err
	}
	return response.(*core.ResetResponse), nil
}

func (srv *Server) UnlockConnector(ctx context.Context, stationID string, connectorID int) (*core.UnlockConnectorResponse, error) {
	response, err := srv.call(ctx, stationID, &core.UnlockConnectorRequest{ConnectorId: connectorID})
	if err != nil {
		return nil, err
	}
	return response.(*core.UnlockConnectorResponse), nil
}
