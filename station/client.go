// Package station is a charge-point simulator speaking OCPP-J 1.6 against a
// central system. It drives the same codec and registry as the server and is
// used for development and integration testing of the fleet backend.
package station

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/moovolt/csms/ocpp16/core"
	"github.com/moovolt/csms/ocpp16/types"
	"github.com/moovolt/csms/ocppj"
)

// Client is one simulated charge point connected to a central system.
type Client struct {
	id       string
	conn     *websocket.Conn
	registry *ocppj.Registry
	pending  *ocppj.PendingCalls
	logger   *log.Entry

	writeMu sync.Mutex

	mu                sync.Mutex
	heartbeatInterval time.Duration
	transactionID     int
	meterWh           int

	stopC    chan struct{}
	stopOnce sync.Once
}

// CallTimeout bounds the wait for the central system's reply.
const CallTimeout = 30 * time.Second

// Connect dials the central system's OCPP endpoint for the given station id.
// The endpoint URL is the base path; the station id is appended as the final
// path segment.
func Connect(centralURL, stationID string, logger *log.Entry) (*Client, error) {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	url := strings.TrimRight(centralURL, "/") + "/" + stationID
	dialer := websocket.Dialer{
		Subprotocols:     []string{"ocpp1.6"},
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.Dial(url, http.Header{})
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}

	c := &Client{
		id:                stationID,
		conn:              conn,
		registry:          core.NewRegistry(),
		pending:           ocppj.NewPendingCalls(),
		logger:            logger.WithField("cp", stationID),
		heartbeatInterval: 300 * time.Second,
		stopC:             make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Stop closes the connection and cancels everything in flight.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopC)
		c.pending.CancelAll()
		c.conn.Close()
	})
}

// Done is closed when the client stops.
func (c *Client) Done() <-chan struct{} { return c.stopC }

func (c *Client) readLoop() {
	defer c.Stop()
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.WithError(err).Debug("connection closed")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		message, parseErr := ocppj.Parse(data)
		if parseErr != nil {
			c.logger.WithError(parseErr).Warn("malformed frame from central system")
			continue
		}
		switch m := message.(type) {
		case *ocppj.Call:
			c.handleServerCall(m)
		case *ocppj.CallResult:
			if !c.pending.Resolve(m.UniqueID, ocppj.Outcome{Result: m.Payload}) {
				c.logger.WithField("message_id", m.UniqueID).Warn("unsolicited call result")
			}
		case *ocppj.CallError:
			c.pending.Resolve(m.UniqueID, ocppj.Outcome{Err: &ocppj.Error{
				Code:        m.Code,
				Description: m.Description,
				Details:     m.Details,
				MessageID:   m.UniqueID,
			}})
		}
	}
}

func (c *Client) send(message ocppj.Message) error {
	data, err := message.MarshalJSON()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// call issues a station-initiated Call and waits for the typed response.
func (c *Client) call(ctx context.Context, request ocppj.Request) (ocppj.Response, error) {
	action := request.GetFeatureName()
	feature, known := c.registry.Lookup(action)
	if !known {
		return nil, errors.Errorf("action %s is not registered", action)
	}
	payload, err := ocppj.MarshalPayload(request)
	if err != nil {
		return nil, err
	}
	pendingCall := c.pending.Add(action, CallTimeout)
	frame := &ocppj.Call{UniqueID: pendingCall.MessageID(), Action: action, Payload: payload}
	if err := c.send(frame); err != nil {
		c.pending.Resolve(pendingCall.MessageID(), ocppj.Outcome{Err: ocppj.ErrCallCanceled})
		<-pendingCall.Done()
		return nil, err
	}
	var outcome ocppj.Outcome
	select {
	case outcome = <-pendingCall.Done():
	case <-ctx.Done():
		c.pending.Resolve(pendingCall.MessageID(), ocppj.Outcome{Err: ocppj.ErrCallCanceled})
		outcome = <-pendingCall.Done()
		if outcome.Err == ocppj.ErrCallCanceled {
			return nil, ctx.Err()
		}
	}
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	response, ocppErr := c.registry.UnmarshalResponse(feature, outcome.Result)
	if ocppErr != nil {
		return nil, ocppErr
	}
	return response, nil
}

// handleServerCall answers central-initiated commands. The simulator is an
// agreeable charger: it accepts whatever the operator asks of it.
func (c *Client) handleServerCall(call *ocppj.Call) {
	logger := c.logger.WithField("action", call.Action)

	feature, known := c.registry.Lookup(call.Action)
	if !known {
		c.sendError(call.UniqueID, ocppj.NewError(ocppj.NotImplemented, "unknown action "+call.Action))
		return
	}
	request, ocppErr := c.registry.UnmarshalRequest(feature, call.Payload)
	if ocppErr != nil {
		c.sendError(call.UniqueID, ocppErr)
		return
	}

	var response ocppj.Response
	switch req := request.(type) {
	case *core.ChangeAvailabilityRequest:
		logger.Println("OnChangeAvailability", req.ConnectorId, req.Type)
		response = &core.ChangeAvailabilityResponse{Status: core.AvailabilityStatusAccepted}
	case *core.ChangeConfigurationRequest:
		logger.Println("OnChangeConfiguration", req.Key)
		response = &core.ChangeConfigurationResponse{Status: core.ConfigurationStatusAccepted}
	case *core.ClearCacheRequest:
		logger.Println("OnClearCache")
		response = &core.ClearCacheResponse{Status: core.ClearCacheStatusAccepted}
	case *core.DataTransferRequest:
		logger.Println("OnDataTransfer", req.VendorId, req.MessageId)
		response = core.NewDataTransferResponse(core.DataTransferStatusAccepted)
	case *core.GetConfigurationRequest:
		response = c.reportConfiguration(req)
	case *core.RemoteStartTransactionRequest:
		response = c.remoteStart(req)
	case *core.RemoteStopTransactionRequest:
		response = c.remoteStop(req)
	case *core.ResetRequest:
		logger.Println("OnReset", req.Type)
		response = &core.ResetResponse{Status: core.ResetStatusAccepted}
	case *core.UnlockConnectorRequest:
		logger.Println("OnUnlockConnector", req.ConnectorId)
		response = &core.UnlockConnectorResponse{Status: core.UnlockStatusUnlocked}
	default:
		c.sendError(call.UniqueID, ocppj.NewError(ocppj.NotSupported, call.Action+" not supported by this charger"))
		return
	}

	payload, err := ocppj.MarshalPayload(response)
	if err != nil {
		c.sendError(call.UniqueID, ocppj.NewError(ocppj.InternalError, err.Error()))
		return
	}
	if err := c.send(&ocppj.CallResult{UniqueID: call.UniqueID, Payload: payload}); err != nil {
		logger.WithError(err).Warn("sending call result")
	}
}

func (c *Client) sendError(messageID string, ocppErr *ocppj.Error) {
	frame := &ocppj.CallError{
		UniqueID:    messageID,
		Code:        ocppErr.Code,
		Description: ocppErr.Description,
		Details:     ocppErr.Details,
	}
	if err := c.send(frame); err != nil {
		c.logger.WithError(err).Warn("sending call error")
	}
}

func (c *Client) reportConfiguration(req *core.GetConfigurationRequest) *core.GetConfigurationResponse {
	interval := c.HeartbeatInterval()
	value := interval.String()
	keys := []core.ConfigurationKey{{Key: "HeartbeatInterval", Value: &value}}
	unknown := []string{}
	for _, k := range req.Key {
		if k != "HeartbeatInterval" {
			unknown = append(unknown, k)
		}
	}
	return &core.GetConfigurationResponse{ConfigurationKey: keys, UnknownKey: unknown}
}

// Heartbeat sends one liveness probe and returns the server's clock.
func (c *Client) Heartbeat(ctx context.Context) (*types.DateTime, error) {
	response, err := c.call(ctx, &core.HeartbeatRequest{})
	if err != nil {
		return nil, err
	}
	return response.(*core.HeartbeatResponse).CurrentTime, nil
}

// HeartbeatLoop probes the central system on the interval negotiated at boot
// until the client stops.
func (c *Client) HeartbeatLoop() {
	for {
		interval := c.HeartbeatInterval()
		select {
		case <-c.stopC:
			c.logger.Debugln("stop signal received in heartbeat")
			return
		case <-time.After(interval):
		}
		ctx, cancel := context.WithTimeout(context.Background(), CallTimeout)
		_, err := c.Heartbeat(ctx)
		cancel()
		if err != nil {
			c.logger.WithError(err).Debugln("Heartbeat error")
			continue
		}
		c.logger.Println("Heartbeat sent to central system")
	}
}

func (c *Client) HeartbeatInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heartbeatInterval
}
