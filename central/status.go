package central

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/jedib0t/go-pretty/v6/table"
)

func (srv *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"started_at": srv.cfg.StartedAt.UTC().Format(time.RFC3339),
		"uptime":     time.Since(srv.cfg.StartedAt).Round(time.Second).String(),
		"stations":   srv.connections.Len(),
	})
}

// handleStations renders the connected stations as a plain-text table.
func (srv *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	infos := srv.Sessions()
	sort.Slice(infos, func(i, j int) bool { return infos[i].StationID < infos[j].StationID })

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Station", "State", "Remote", "Connected", "Last Activity", "Pending"})
	for _, info := range infos {
		t.AppendRows([]table.Row{{
			info.StationID,
			info.State,
			info.RemoteAddr,
			info.ConnectedAt.UTC().Format(time.RFC3339),
			info.LastActivity.UTC().Format(time.RFC3339),
			info.PendingCalls,
		}})
	}
	t.Render()
}

func (srv *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]
	session, ok := srv.connections.Get(stationID)
	if !ok {
		http.Error(w, "station not connected", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Info())
}
