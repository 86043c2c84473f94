package hostloop

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joeycumines/corehost/transport"
)

// pluginStatus is the JSON shape served at /plugins.
type pluginStatus struct {
	Name    string `json:"name"`
	Version uint64 `json:"version"`
}

// hostStatus is the full JSON shape served at /plugins: every configured
// plugin, plus the transport peer's bookkeeping, if configured.
type hostStatus struct {
	Plugins []pluginStatus   `json:"plugins"`
	Peer    *transport.Stats `json:"peer,omitempty"`
}

// Serve starts the diagnostic HTTP surface (/metrics, /healthz, /plugins)
// on h.cfg.MetricsBind and blocks until the listener errors or is closed.
// Call it from its own goroutine; Close shuts the listener down.
func (h *Host) Serve() error {
	if h.cfg.MetricsBind == "" {
		return nil
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/plugins", func(w http.ResponseWriter, _ *http.Request) {
		plugins := h.Plugins()
		out := hostStatus{Plugins: make([]pluginStatus, len(plugins))}
		for i, p := range plugins {
			out.Plugins[i] = pluginStatus{Name: p.Name(), Version: p.Version()}
		}
		if stats, ok := h.PeerStats(); ok {
			out.Peer = &stats
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}).Methods(http.MethodGet)

	h.httpSrv = &http.Server{Addr: h.cfg.MetricsBind, Handler: r}
	err := h.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
