package central

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/moovolt/csms/ocppj"
)

// Config carries the protocol-level knobs of the server. Zero values are
// replaced by the defaults below.
type Config struct {
	// BasePath is the URL prefix stations connect under; the station id is
	// the final path segment.
	BasePath string
	// HeartbeatInterval is advertised to stations in BootNotification
	// responses.
	HeartbeatInterval time.Duration
	// CallTimeout bounds the wait for a station's reply to a
	// server-initiated Call.
	CallTimeout time.Duration
	// IdleTimeout closes a session with no inbound traffic (frames or pongs).
	IdleTimeout time.Duration
	// PingInterval is the keepalive ping cadence; it must stay below
	// IdleTimeout.
	PingInterval time.Duration
	WriteTimeout time.Duration
	// StartedAt is the process start time shown on the status surface. Set
	// it once at startup.
	StartedAt time.Time
}

func (c Config) withDefaults() Config {
	if c.BasePath == "" {
		c.BasePath = "/ocpp"
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 300 * time.Second
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 10 * time.Minute
	}
	if c.PingInterval == 0 {
		c.PingInterval = 2 * time.Minute
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now()
	}
	return c
}

// Server accepts station connections and runs one Session per station. The
// action registry is immutable after startup and shared by every session;
// the connection registry tracks who is online.
type Server struct {
	cfg         Config
	registry    *ocppj.Registry
	connections *ConnectionRegistry
	handler     Handler
	authorizer  StationAuthorizer
	logger      *log.Entry
	upgrader    websocket.Upgrader
	httpServer  *http.Server
}

// NewServer wires the engine with its collaborators. The handler receives
// validated station-initiated requests; the authorizer decides boot
// acceptance.
func NewServer(cfg Config, registry *ocppj.Registry, handler Handler, authorizer StationAuthorizer, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Server{
		cfg:         cfg.withDefaults(),
		registry:    registry,
		connections: NewConnectionRegistry(),
		handler:     handler,
		authorizer:  authorizer,
		logger:      logger,
		upgrader: websocket.Upgrader{
			Subprotocols:    []string{"ocpp1.6"},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Station auth happens before upgrade, outside this layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router exposes the OCPP endpoint plus the read-only status surface.
func (srv *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc(srv.cfg.BasePath+"/{id}", srv.handleUpgrade)
	router.HandleFunc("/status", srv.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/stations", srv.handleStations).Methods(http.MethodGet)
	router.HandleFunc("/stations/{id}", srv.handleStation).Methods(http.MethodGet)
	return router
}

// handleUpgrade is the hand-off point from the HTTP collaborator: it turns a
// completed WebSocket upgrade into a registered station session.
func (srv *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]
	if stationID == "" {
		http.Error(w, "missing station id", http.StatusBadRequest)
		return
	}

	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.WithError(err).WithField("station", stationID).Warn("upgrade failed")
		return
	}

	session := newSession(srv, stationID, conn)
	// Policy: a reconnect for a live id evicts the old session, since the
	// common cause is a charger that dropped without a close frame.
	if evicted := srv.connections.Register(session); evicted != nil {
		srv.logger.WithField("station", stationID).Warn("duplicate connection, evicting previous session")
		evicted.Close()
	}
	session.logger.WithField("remote", conn.RemoteAddr().String()).Info("station connected")

	go session.pingLoop()
	go session.run()
}

// Attach registers an externally-upgraded connection, for collaborators that
// own their own HTTP stack.
func (srv *Server) Attach(stationID string, conn *websocket.Conn) *Session {
	session := newSession(srv, stationID, conn)
	if evicted := srv.connections.Register(session); evicted != nil {
		evicted.Close()
	}
	go session.pingLoop()
	go session.run()
	return session
}

// Session returns the live session for a station.
func (srv *Server) Session(stationID string) (*Session, bool) {
	return srv.connections.Get(stationID)
}

// SessionState reports the registration state of a station, if connected.
func (srv *Server) SessionState(stationID string) (SessionState, bool) {
	session, ok := srv.connections.Get(stationID)
	if !ok {
		return "", false
	}
	return session.State(), true
}

// Sessions snapshots every live session for monitoring.
func (srv *Server) Sessions() []SessionInfo {
	all := srv.connections.All()
	infos := make([]SessionInfo, 0, len(all))
	for _, s := range all {
		infos = append(infos, s.Info())
	}
	return infos
}

// ListenAndServe blocks serving the OCPP endpoint on addr.
func (srv *Server) ListenAndServe(addr string) error {
	srv.httpServer = &http.Server{Addr: addr, Handler: srv.Router()}
	srv.logger.WithField("addr", addr).Info("central system listening")
	return srv.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and closes every live session.
func (srv *Server) Shutdown(ctx context.Context) error {
	for _, session := range srv.connections.All() {
		session.Close()
	}
	if srv.httpServer == nil {
		return nil
	}
	return srv.httpServer.Shutdown(ctx)
}
