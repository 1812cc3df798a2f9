package central

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/moovolt/csms/ocpp16/core"
	"github.com/moovolt/csms/ocpp16/types"
	"github.com/moovolt/csms/ocppj"
)

// SessionState is the registration state of a connected station.
type SessionState string

const (
	// SessionStateUnregistered: socket open, no BootNotification seen yet.
	SessionStateUnregistered SessionState = "Unregistered"
	// SessionStatePending: a BootNotification is being evaluated.
	SessionStatePending  SessionState = "Pending"
	SessionStateAccepted SessionState = "Accepted"
	SessionStateRejected SessionState = "Rejected"
	SessionStateClosed   SessionState = "Closed"
)

// Session owns one station's connection: its read loop, registration state
// and pending-call table. All inbound processing for a session runs on a
// single goroutine, so a station's calls are handled and answered strictly in
// arrival order.
type Session struct {
	id     string
	conn   *websocket.Conn
	server *Server

	pending *ocppj.PendingCalls
	logger  *log.Entry

	writeMu sync.Mutex // gorilla allows one concurrent writer

	mu           sync.Mutex
	state        SessionState
	connectedAt  time.Time
	lastActivity time.Time

	closed    chan struct{}
	closeOnce sync.Once
}

// SessionInfo is a read-only snapshot for the status surface.
type SessionInfo struct {
	StationID    string       `json:"stationId"`
	State        SessionState `json:"state"`
	RemoteAddr   string       `json:"remoteAddr"`
	ConnectedAt  time.Time    `json:"connectedAt"`
	LastActivity time.Time    `json:"lastActivity"`
	PendingCalls int          `json:"pendingCalls"`
}

func newSession(server *Server, stationID string, conn *websocket.Conn) *Session {
	return &Session{
		id:           stationID,
		conn:         conn,
		server:       server,
		pending:      ocppj.NewPendingCalls(),
		logger:       server.logger.WithField("station", stationID),
		state:        SessionStateUnregistered,
		connectedAt:  time.Now(),
		lastActivity: time.Now(),
		closed:       make(chan struct{}),
	}
}

func (s *Session) StationID() string { return s.id }

// State returns the current registration state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	if s.state != SessionStateClosed {
		s.state = state
	}
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Info snapshots the session for monitoring.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		StationID:    s.id,
		State:        s.state,
		RemoteAddr:   s.conn.RemoteAddr().String(),
		ConnectedAt:  s.connectedAt,
		LastActivity: s.lastActivity,
		PendingCalls: s.pending.Size(),
	}
}

// run processes inbound frames until the socket fails or the session is
// closed. It is the session's single processing task.
func (s *Session) run() {
	defer s.teardown()

	idle := s.server.cfg.IdleTimeout
	s.conn.SetReadDeadline(time.Now().Add(idle))
	s.conn.SetPongHandler(func(string) error {
		s.touch()
		return s.conn.SetReadDeadline(time.Now().Add(idle))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WithError(err).Warn("transport error, closing session")
			} else {
				s.logger.WithError(err).Debug("connection closed")
			}
			return
		}
		s.touch()
		s.conn.SetReadDeadline(time.Now().Add(idle))
		if messageType != websocket.TextMessage {
			s.logger.Warn("dropping non-text frame")
			continue
		}
		s.handleFrame(data)
	}
}

// handleFrame decodes one text frame and routes it. Errors here are scoped
// to the frame; the connection always stays open.
func (s *Session) handleFrame(data []byte) {
	message, err := ocppj.Parse(data)
	if err != nil {
		var malformed *ocppj.MalformedFrameError
		if errors.As(err, &malformed) && malformed.MessageID != "" {
			s.logger.WithError(err).Warn("malformed frame, replying ProtocolError")
			s.sendCallError(malformed.MessageID, ocppj.NewError(ocppj.ProtocolError, malformed.Reason))
			return
		}
		s.logger.WithError(err).Warn("malformed frame dropped, no recoverable message id")
		return
	}

	switch m := message.(type) {
	case *ocppj.Call:
		s.handleCall(m)
	case *ocppj.CallResult:
		if !s.pending.Resolve(m.UniqueID, ocppj.Outcome{Result: m.Payload}) {
			s.logger.WithField("message_id", m.UniqueID).Warn("unsolicited call result dropped")
		}
	case *ocppj.CallError:
		resolved := s.pending.Resolve(m.UniqueID, ocppj.Outcome{Err: &ocppj.Error{
			Code:        m.Code,
			Description: m.Description,
			Details:     m.Details,
			MessageID:   m.UniqueID,
		}})
		if !resolved {
			s.logger.WithField("message_id", m.UniqueID).Warn("unsolicited call error dropped")
		}
	}
}

// handleCall validates and dispatches one inbound Call and emits exactly one
// reply for its message id.
func (s *Session) handleCall(call *ocppj.Call) {
	logger := s.logger.WithField("action", call.Action).WithField("message_id", call.UniqueID)

	feature, known := s.server.registry.Lookup(call.Action)
	if !known {
		logger.Warn("call for unknown action")
		s.sendCallError(call.UniqueID, ocppj.NewError(ocppj.NotImplemented, "unknown action "+call.Action))
		return
	}
	if !feature.Direction.Allows(ocppj.StationToCentral) {
		logger.Warn("call misdirected, action is central-initiated")
		s.sendCallError(call.UniqueID, ocppj.NewError(ocppj.NotSupported, call.Action+" cannot be initiated by the station"))
		return
	}

	request, ocppErr := s.server.registry.UnmarshalRequest(feature, call.Payload)
	if ocppErr != nil {
		logger.WithField("code", ocppErr.Code).Warn("invalid payload: ", ocppErr.Description)
		s.sendCallError(call.UniqueID, ocppErr)
		return
	}

	response, err := s.dispatch(request)
	if err != nil {
		var protocolErr *ocppj.Error
		if !errors.As(err, &protocolErr) {
			protocolErr = ocppj.NewError(ocppj.InternalError, err.Error())
		}
		logger.WithError(err).Warn("handler failed")
		s.sendCallError(call.UniqueID, protocolErr)
		return
	}
	s.sendCallResult(call.UniqueID, response)
}

// dispatch routes a validated request. Heartbeat and BootNotification are
// engine concerns; everything else goes to the business handler.
func (s *Session) dispatch(request ocppj.Request) (ocppj.Response, error) {
	switch req := request.(type) {
	case *core.HeartbeatRequest:
		// Liveness probe, answered regardless of registration state.
		return core.NewHeartbeatResponse(types.Now()), nil
	case *core.BootNotificationRequest:
		return s.handleBootNotification(req), nil
	case *core.AuthorizeRequest:
		return s.server.handler.OnAuthorize(s.id, req)
	case *core.DataTransferRequest:
		return s.server.handler.OnDataTransfer(s.id, req)
	case *core.MeterValuesRequest:
		return s.server.handler.OnMeterValues(s.id, req)
	case *core.StartTransactionRequest:
		return s.server.handler.OnStartTransaction(s.id, req)
	case *core.StatusNotificationRequest:
		return s.server.handler.OnStatusNotification(s.id, req)
	case *core.StopTransactionRequest:
		return s.server.handler.OnStopTransaction(s.id, req)
	}
	return nil, ocppj.NewError(ocppj.NotImplemented, "no handler for "+request.GetFeatureName())
}

func (s *Session) handleBootNotification(req *core.BootNotificationRequest) *core.BootNotificationResponse {
	s.setState(SessionStatePending)

	status := core.RegistrationStatusRejected
	if s.server.authorizer.IsKnownStation(s.id, req) {
		status = core.RegistrationStatusAccepted
	}
	if status == core.RegistrationStatusAccepted {
		s.setState(SessionStateAccepted)
	} else {
		s.setState(SessionStateRejected)
	}
	s.logger.WithField("vendor", req.ChargePointVendor).
		WithField("model", req.ChargePointModel).
		WithField("status", status).
		Info("boot notification")

	if observer, ok := s.server.handler.(BootObserver); ok {
		observer.OnBootNotification(s.id, req, status)
	}
	interval := int(s.server.cfg.HeartbeatInterval / time.Second)
	return core.NewBootNotificationResponse(status, types.Now(), interval)
}

// Call issues a server-initiated Call and blocks until the station's reply,
// the call timeout, context cancellation, or session teardown. The wait is
// always bounded by the configured call timeout.
func (s *Session) Call(ctx context.Context, request ocppj.Request) (ocppj.Response, error) {
	action := request.GetFeatureName()
	feature, known := s.server.registry.Lookup(action)
	if !known {
		return nil, errors.Errorf("action %s is not registered", action)
	}
	if !feature.Direction.Allows(ocppj.CentralToStation) {
		return nil, errors.Errorf("action %s cannot be initiated by the central system", action)
	}
	payload, err := ocppj.MarshalPayload(request)
	if err != nil {
		return nil, err
	}

	pendingCall := s.pending.Add(action, s.server.cfg.CallTimeout)
	call := &ocppj.Call{UniqueID: pendingCall.MessageID(), Action: action, Payload: payload}
	if err := s.send(call); err != nil {
		s.pending.Resolve(pendingCall.MessageID(), ocppj.Outcome{Err: ocppj.ErrCallCanceled})
		<-pendingCall.Done()
		return nil, errors.Wrap(err, "sending call")
	}

	var outcome ocppj.Outcome
	select {
	case outcome = <-pendingCall.Done():
	case <-ctx.Done():
		s.pending.Resolve(pendingCall.MessageID(), ocppj.Outcome{Err: ocppj.ErrCallCanceled})
		outcome = <-pendingCall.Done()
		if outcome.Err == ocppj.ErrCallCanceled {
			return nil, ctx.Err()
		}
	}
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	response, ocppErr := s.server.registry.UnmarshalResponse(feature, outcome.Result)
	if ocppErr != nil {
		return nil, ocppErr
	}
	return response, nil
}

func (s *Session) sendCallResult(messageID string, response ocppj.Response) {
	payload, err := ocppj.MarshalPayload(response)
	if err != nil {
		s.logger.WithError(err).Error("marshaling call result")
		s.sendCallError(messageID, ocppj.NewError(ocppj.InternalError, "response serialization failed"))
		return
	}
	if err := s.send(&ocppj.CallResult{UniqueID: messageID, Payload: payload}); err != nil {
		s.logger.WithError(err).Warn("sending call result")
	}
}

func (s *Session) sendCallError(messageID string, ocppErr *ocppj.Error) {
	frame := &ocppj.CallError{
		UniqueID:    messageID,
		Code:        ocppErr.Code,
		Description: ocppErr.Description,
		Details:     ocppErr.Details,
	}
	if err := s.send(frame); err != nil {
		s.logger.WithError(err).Warn("sending call error")
	}
}

// send serializes and writes one frame. Replies, server-initiated calls and
// pings come from different goroutines, so writes are serialized.
func (s *Session) send(message ocppj.Message) error {
	data, err := message.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "encoding frame")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.server.cfg.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.server.cfg.WriteTimeout))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// pingLoop keeps the connection alive until the session closes.
func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.server.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			if err := s.ping(); err != nil {
				s.logger.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

// Close tears the session down from the server side.
func (s *Session) Close() {
	s.teardown()
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = SessionStateClosed
		s.mu.Unlock()
		close(s.closed)
		s.pending.CancelAll()
		s.server.connections.Remove(s)
		s.conn.Close()
		s.logger.Info("session closed")
	})
}
