// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kvedge/respd/common"
	"github.com/kvedge/respd/confengine"
	"github.com/kvedge/respd/internal/fasttime"
	"github.com/kvedge/respd/internal/tracekit"
	"github.com/kvedge/respd/logger"
	"github.com/kvedge/respd/store"
)

// AdminConfig configures the admin HTTP surface, kept on a separate
// listener from the RESP port so metrics/health checks never compete
// with client traffic for accept-loop attention.
type AdminConfig struct {
	Enabled bool          `config:"enabled"`
	Address string        `config:"address"`
	Pprof   bool          `config:"pprof"`
	Timeout time.Duration `config:"timeout"`
}

// AdminServer exposes /metrics, /healthz and /-/loglevel over HTTP.
type AdminServer struct {
	config AdminConfig
	store  *store.Store
	router *mux.Router
	server *http.Server

	ready atomic.Bool
}

// NewAdminServer builds an AdminServer from the "admin" config section.
// An absent section leaves the server enabled with its defaults. It
// returns a nil *AdminServer (and no error) when the section sets
// enabled to false — callers must check before use.
func NewAdminServer(conf *confengine.Config, st *store.Store) (*AdminServer, error) {
	config := AdminConfig{Enabled: true, Address: "127.0.0.1:9736", Timeout: 5 * time.Second}
	if conf.Has("admin") {
		if err := conf.UnpackChild("admin", &config); err != nil {
			return nil, err
		}
	}
	if !config.Enabled {
		return nil, nil
	}

	router := mux.NewRouter()
	s := &AdminServer{
		config: config,
		store:  st,
		router: router,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}
	router.Use(traceparentLoggingMiddleware)
	s.registerRoutes()
	if config.Pprof {
		s.registerPprofRoutes()
	}
	return s, nil
}

// traceparentLoggingMiddleware logs the inbound trace ID when a caller
// (e.g. a reverse proxy or another internal service) forwards one, so
// an admin request can be correlated with the distributed trace that
// triggered it.
func traceparentLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if traceID, ok := tracekit.TraceIDFromHTTPHeader(r.Header); ok {
			logger.Debugf("admin request %s %s trace=%s", r.Method, r.URL.Path, traceID.String())
		}
		next.ServeHTTP(w, r)
	})
}

// MarkReady flips the /healthz response to 200 once the RESP listener
// is accepting connections.
func (s *AdminServer) MarkReady() {
	s.ready.Store(true)
}

func (s *AdminServer) registerRoutes() {
	s.RegisterGetRoute("/metrics", s.handleMetrics())
	s.RegisterGetRoute("/healthz", s.handleHealthz)
	s.RegisterPostRoute("/-/loglevel", s.handleLogLevel)
}

func (s *AdminServer) handleMetrics() http.HandlerFunc {
	h := promhttp.Handler()
	return func(w http.ResponseWriter, r *http.Request) {
		recordShardKeyCounts(s.store.ShardKeyCounts())
		uptime.Set(float64(fasttime.UnixTimestamp() - common.Started()))
		h.ServeHTTP(w, r)
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *AdminServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(healthResponse{Status: "starting"})
		return
	}
	json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}

type logLevelRequest struct {
	Level string `mapstructure:"level"`
}

// handleLogLevel accepts the new level either as a query parameter or as
// a JSON body (decoded into a generic map first, then into
// logLevelRequest via mapstructure — the same two-step config reload
// pattern confengine uses for the YAML config).
func (s *AdminServer) handleLogLevel(w http.ResponseWriter, r *http.Request) {
	req := logLevelRequest{Level: r.URL.Query().Get("level")}

	if r.ContentLength != 0 {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && req.Level == "" {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if len(raw) > 0 {
			if err := mapstructure.Decode(raw, &req); err != nil {
				http.Error(w, "invalid JSON body", http.StatusBadRequest)
				return
			}
		}
	}

	if req.Level == "" {
		http.Error(w, "missing level query parameter or JSON field", http.StatusBadRequest)
		return
	}
	logger.SetLoggerLevel(req.Level)
	logger.Infof("log level changed to %s via admin endpoint", req.Level)
	w.WriteHeader(http.StatusNoContent)
}

// ListenAndServe binds the admin address and serves until the listener
// is closed.
func (s *AdminServer) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	logger.Infof("admin server listening on %s", s.config.Address)
	bi := common.GetBuildInfo()
	buildInfo.WithLabelValues(bi.Version, bi.GitHash, bi.Time).Set(1)
	return s.server.Serve(l)
}

// Shutdown gracefully stops the admin HTTP server.
func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *AdminServer) RegisterGetRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodGet).Path(path).HandlerFunc(f)
}

func (s *AdminServer) RegisterPostRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodPost).Path(path).HandlerFunc(f)
}

func (s *AdminServer) registerPprofRoutes() {
	s.RegisterGetRoute("/debug/pprof/cmdline", pprof.Cmdline)
	s.RegisterGetRoute("/debug/pprof/profile", pprof.Profile)
	s.RegisterGetRoute("/debug/pprof/symbol", pprof.Symbol)
	s.RegisterGetRoute("/debug/pprof/trace", pprof.Trace)
	s.RegisterGetRoute("/debug/pprof/{other}", pprof.Index)
}
