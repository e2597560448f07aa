package relay

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lumen-space/spacepacket/decom"
	"github.com/lumen-space/spacepacket/transfer"
)

// Router builds the HTTP surface for a Hub: a websocket endpoint at
// wsPrefix, read-only REST access to the telemetry dictionary if dict
// is non-nil, and a snapshot of the transfer service's counters if svc
// is non-nil.
func Router(hub *Hub, svc *transfer.Service, dict *decom.Dictionary, wsPrefix string) *mux.Router {
	if wsPrefix == "" {
		wsPrefix = "/realtime"
	}

	r := mux.NewRouter()
	r.HandleFunc(wsPrefix, hub.ServeWS)

	if dict != nil {
		dictionary := r.PathPrefix("/dictionary").Subrouter()
		dictionary.HandleFunc("", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, dict)
		}).Methods("GET")
		dictionary.HandleFunc("/id/{id}", func(w http.ResponseWriter, req *http.Request) {
			id := mux.Vars(req)["id"]
			pkt, ok := dict.PacketByID(id)
			if !ok {
				http.NotFound(w, req)
				return
			}
			writeJSON(w, pkt)
		}).Methods("GET")
	}

	if svc != nil {
		r.HandleFunc("/telemetry", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, svc.Telemetry())
		}).Methods("GET")
	}

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}
