// Package gwhttp exposes a [gwatchdog.Watchdog] over HTTP.
package gwhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	done chan struct{}
}

type ServerConfig struct {
	Listener net.Listener

	Watchdog *gwatchdog.Watchdog

	// If set, served at GET /metrics.
	Metrics prometheus.Gatherer
}

// Status is the body returned from every successful watchdog route
// other than feed.
type Status struct {
	Mode    string
	Timeout float64
}

type timeoutRequest struct {
	Timeout float64
}

type modeRequest struct {
	Mode string
}

type deinitResponse struct {
	Disarmed bool
	Status
}

func NewServer(ctx context.Context, log *slog.Logger, cfg ServerConfig) *Server {
	srv := &http.Server{
		Handler: newMux(log, cfg),

		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	s := &Server{
		done: make(chan struct{}),
	}
	go s.serve(log, cfg.Listener, srv)
	go s.waitForShutdown(ctx, srv)

	return s
}

func (s *Server) Wait() {
	<-s.done
}

func (s *Server) waitForShutdown(ctx context.Context, srv *http.Server) {
	select {
	case <-s.done:
		return
	case <-ctx.Done():
		_ = srv.Close()
	}
}

func (s *Server) serve(log *slog.Logger, ln net.Listener, srv *http.Server) {
	defer close(s.done)

	if err := srv.Serve(ln); err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed) {
			log.Info("HTTP server shutting down")
		} else {
			log.Info("HTTP server shutting down due to error", "err", err)
		}
	}
}

func newMux(log *slog.Logger, cfg ServerConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/watchdog", handleStatus(log, cfg)).Methods("GET")
	r.HandleFunc("/watchdog/timeout", handleSetTimeout(log, cfg)).Methods("PUT")
	r.HandleFunc("/watchdog/mode", handleSetMode(log, cfg)).Methods("PUT")
	r.HandleFunc("/watchdog/feed", handleFeed(cfg)).Methods("POST")
	r.HandleFunc("/watchdog/deinit", handleDeinit(log, cfg)).Methods("POST")

	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{})).Methods("GET")
	}

	return r
}

func handleStatus(log *slog.Logger, cfg ServerConfig) func(w http.ResponseWriter, req *http.Request) {
	wd := cfg.Watchdog
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(log, w, currentStatus(wd))
	}
}

func handleSetTimeout(log *slog.Logger, cfg ServerConfig) func(w http.ResponseWriter, req *http.Request) {
	wd := cfg.Watchdog
	return func(w http.ResponseWriter, req *http.Request) {
		var body timeoutRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "failed to decode request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := wd.SetTimeout(body.Timeout); err != nil {
			writeControlError(w, err)
			return
		}

		writeJSON(log, w, currentStatus(wd))
	}
}

func handleSetMode(log *slog.Logger, cfg ServerConfig) func(w http.ResponseWriter, req *http.Request) {
	wd := cfg.Watchdog
	return func(w http.ResponseWriter, req *http.Request) {
		var body modeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "failed to decode request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		m, err := gwatchdog.ParseMode(body.Mode)
		if err != nil {
			writeControlError(w, err)
			return
		}

		if err := wd.SetMode(m); err != nil {
			writeControlError(w, err)
			return
		}

		// Mode may still be armed here, if the peripheral refused to disarm.
		writeJSON(log, w, currentStatus(wd))
	}
}

func handleFeed(cfg ServerConfig) func(w http.ResponseWriter, req *http.Request) {
	wd := cfg.Watchdog
	return func(w http.ResponseWriter, req *http.Request) {
		wd.Feed()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeinit(log *slog.Logger, cfg ServerConfig) func(w http.ResponseWriter, req *http.Request) {
	wd := cfg.Watchdog
	return func(w http.ResponseWriter, req *http.Request) {
		ok := wd.Deinit()
		writeJSON(log, w, deinitResponse{
			Disarmed: ok,
			Status:   currentStatus(wd),
		})
	}
}

func currentStatus(wd *gwatchdog.Watchdog) Status {
	return Status{
		Mode:    wd.Mode().String(),
		Timeout: wd.Timeout(),
	}
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to encode response", "err", err)
	}
}

func writeControlError(w http.ResponseWriter, err error) {
	var iae gwatchdog.InvalidArgumentError
	var oore gwatchdog.OutOfResourcesError
	switch {
	case errors.As(err, &iae):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &oore):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
