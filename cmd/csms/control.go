package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/moovolt/csms/central"
	"github.com/moovolt/csms/ocpp16/core"
)

// startControlServer exposes operator endpoints for firing server-initiated
// commands at connected stations. It listens on its own port (random when
// unset) so it can be firewalled separately from the station endpoint.
func startControlServer(server *central.Server, store *opStore, controlAddr string) (string, error) {
	mux := http.NewServeMux()

	callCtx := func(r *http.Request) (context.Context, context.CancelFunc) {
		return context.WithTimeout(r.Context(), 35*time.Second)
	}
	respond := func(w http.ResponseWriter, response interface{}, err error) {
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}

	type endpoint struct {
		path    string
		handler http.HandlerFunc
	}
	endpoints := []endpoint{
		{
			path: "/list-db",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t := table.NewWriter()
				t.SetOutputMirror(w)
				t.AppendHeader(table.Row{"Key", "Value"})
				store.db.View(func(txn *badger.Txn) error {
					opts := badger.DefaultIteratorOptions
					opts.PrefetchSize = 10
					it := txn.NewIterator(opts)
					defer it.Close()
					for it.Rewind(); it.Valid(); it.Next() {
						item := it.Item()
						k := item.Key()
						v, _ := item.ValueCopy(nil)
						if len(v) > 150 {
							v = []byte(fmt.Sprintf("%s...", v[:150]))
						}
						t.AppendRows([]table.Row{{string(k), string(v)}})
					}
					return nil
				})
				t.Render()
			},
		},
		{
			path: "/remote-start",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				connectorID, _ := strconv.Atoi(r.URL.Query().Get("connectorId"))
				if connectorID == 0 {
					connectorID = 1
				}
				response, err := server.RemoteStartTransaction(ctx, r.URL.Query().Get("cp"), &core.RemoteStartTransactionRequest{
					ConnectorId: &connectorID,
					IdTag:       r.URL.Query().Get("idTag"),
				})
				respond(w, response, err)
			},
		},
		{
			path: "/remote-stop",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				transactionID, _ := strconv.Atoi(r.URL.Query().Get("txId"))
				response, err := server.RemoteStopTransaction(ctx, r.URL.Query().Get("cp"), transactionID)
				respond(w, response, err)
			},
		},
		{
			path: "/reset",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				resetType := core.ResetTypeSoft
				if r.URL.Query().Get("type") == "Hard" {
					resetType = core.ResetTypeHard
				}
				response, err := server.Reset(ctx, r.URL.Query().Get("cp"), resetType)
				respond(w, response, err)
			},
		},
		{
			path: "/unlock",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				connectorID, _ := strconv.Atoi(r.URL.Query().Get("connectorId"))
				response, err := server.UnlockConnector(ctx, r.URL.Query().Get("cp"), connectorID)
				respond(w, response, err)
			},
		},
		{
			path: "/change-config",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				response, err := server.ChangeConfiguration(ctx, r.URL.Query().Get("cp"), &core.ChangeConfigurationRequest{
					Key:   r.URL.Query().Get("key"),
					Value: r.URL.Query().Get("value"),
				})
				respond(w, response, err)
			},
		},
		{
			path: "/get-config",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				var keys []string
				if key := r.URL.Query().Get("key"); key != "" {
					keys = []string{key}
				}
				response, err := server.GetConfiguration(ctx, r.URL.Query().Get("cp"), keys)
				respond(w, response, err)
			},
		},
		{
			path: "/clear-cache",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				response, err := server.ClearCache(ctx, r.URL.Query().Get("cp"))
				respond(w, response, err)
			},
		},
		{
			path: "/change-availability",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				connectorID, _ := strconv.Atoi(r.URL.Query().Get("connectorId"))
				availabilityType := core.AvailabilityTypeOperative
				if r.URL.Query().Get("type") == "Inoperative" {
					availabilityType = core.AvailabilityTypeInoperative
				}
				response, err := server.ChangeAvailability(ctx, r.URL.Query().Get("cp"), &core.ChangeAvailabilityRequest{
					ConnectorId: connectorID,
					Type:        availabilityType,
				})
				respond(w, response, err)
			},
		},
		{
			path: "/data-transfer",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ctx, cancel := callCtx(r)
				defer cancel()
				response, err := server.DataTransfer(ctx, r.URL.Query().Get("cp"), &core.DataTransferRequest{
					VendorId:  r.URL.Query().Get("vendorId"),
					MessageId: r.URL.Query().Get("messageId"),
				})
				respond(w, response, err)
			},
		},
	}
	endpoints = append(endpoints, endpoint{
		path: "/list",
		handler: func(w http.ResponseWriter, r *http.Request) {
			value := "Available endpoints:\n"
			for _, v := range endpoints {
				value += fmt.Sprintf("\t%s\n", v.path)
			}
			w.Write([]byte(value))
		},
	})

	for _, e := range endpoints {
		mux.HandleFunc(e.path, e.handler)
	}

	if controlAddr == "" {
		controlAddr = ":0"
	}
	listener, err := net.Listen("tcp", controlAddr)
	if err != nil {
		return "", err
	}
	go http.Serve(listener, mux)
	return listener.Addr().String(), nil
}
