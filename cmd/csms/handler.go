package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/moovolt/csms/central"
	"github.com/moovolt/csms/ocpp16/core"
	"github.com/moovolt/csms/ocpp16/types"
)

// centralHandler is the reference business layer: authorization against the
// stored idTag allowlist, transaction bookkeeping in badger, and logged
// telemetry. It implements central.Handler plus the BootObserver extension.
type centralHandler struct {
	store  *opStore
	logger *log.Entry
}

var _ central.Handler = (*centralHandler)(nil)
var _ central.BootObserver = (*centralHandler)(nil)

func (h *centralHandler) authorize(idTag string) *types.IdTagInfo {
	if h.store.isAuthorizedTag(idTag) {
		return types.NewIdTagInfo(types.AuthorizationStatusAccepted)
	}
	return types.NewIdTagInfo(types.AuthorizationStatusInvalid)
}

func (h *centralHandler) OnAuthorize(stationID string, request *core.AuthorizeRequest) (*core.AuthorizeResponse, error) {
	info := h.authorize(request.IdTag)
	h.logger.WithField("station", stationID).
		WithField("idTag", request.IdTag).
		WithField("status", info.Status).
		Info("authorize")
	return core.NewAuthorizeResponse(info), nil
}

func (h *centralHandler) OnBootNotification(stationID string, request *core.BootNotificationRequest, status core.RegistrationStatus) {
	if err := h.store.recordBoot(stationID, request, status); err != nil {
		h.logger.WithError(err).WithField("station", stationID).Error("recording boot metadata")
	}
}

func (h *centralHandler) OnDataTransfer(stationID string, request *core.DataTransferRequest) (*core.DataTransferResponse, error) {
	h.logger.WithField("station", stationID).
		WithField("vendorId", request.VendorId).
		WithField("messageId", request.MessageId).
		Info("data transfer")
	if request.VendorId != "moovolt" {
		return core.NewDataTransferResponse(core.DataTransferStatusUnknownVendorId), nil
	}
	return core.NewDataTransferResponse(core.DataTransferStatusAccepted), nil
}

func (h *centralHandler) OnMeterValues(stationID string, request *core.MeterValuesRequest) (*core.MeterValuesResponse, error) {
	fields := log.Fields{
		"station":      stationID,
		"connector_id": request.ConnectorId,
		"samples":      len(request.MeterValue),
	}
	if request.TransactionId != nil {
		fields["transaction_id"] = *request.TransactionId
	}
	h.logger.WithFields(fields).Info("meter values")
	return &core.MeterValuesResponse{}, nil
}

func (h *centralHandler) OnStartTransaction(stationID string, request *core.StartTransactionRequest) (*core.StartTransactionResponse, error) {
	info := h.authorize(request.IdTag)
	if info.Status != types.AuthorizationStatusAccepted {
		return core.NewStartTransactionResponse(info, 0), nil
	}
	transactionID, err := h.store.nextTransactionID()
	if err != nil {
		return nil, err
	}
	if err := h.store.recordTransaction(stationID, transactionID, "started"); err != nil {
		return nil, err
	}
	h.logger.WithField("station", stationID).
		WithField("transaction_id", transactionID).
		WithField("idTag", request.IdTag).
		WithField("connector_id", request.ConnectorId).
		Info("transaction started")
	return core.NewStartTransactionResponse(info, transactionID), nil
}

func (h *centralHandler) OnStatusNotification(stationID string, request *core.StatusNotificationRequest) (*core.StatusNotificationResponse, error) {
	h.logger.WithField("station", stationID).
		WithField("connector_id", request.ConnectorId).
		WithField("status", request.Status).
		WithField("error_code", request.ErrorCode).
		Info("status notification")
	return &core.StatusNotificationResponse{}, nil
}

func (h *centralHandler) OnStopTransaction(stationID string, request *core.StopTransactionRequest) (*core.StopTransactionResponse, error) {
	if err := h.store.recordTransaction(stationID, request.TransactionId, "stopped"); err != nil {
		return nil, err
	}
	h.logger.WithField("station", stationID).
		WithField("transaction_id", request.TransactionId).
		WithField("meter_stop", request.MeterStop).
		WithField("reason", request.Reason).
		Info("transaction stopped")
	response := &core.StopTransactionResponse{}
	if request.IdTag != "" {
		response.IdTagInfo = h.authorize(request.IdTag)
	}
	return response, nil
}

// storeAuthorizer accepts boots from stations on the badger allowlist.
type storeAuthorizer struct {
	store *opStore
}

func (a *storeAuthorizer) IsKnownStation(stationID string, boot *core.BootNotificationRequest) bool {
	return a.store.isKnownStation(stationID)
}
