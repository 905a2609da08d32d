package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/muurk/ookbridge/internal/discovery"
	"github.com/muurk/ookbridge/internal/logging"
	"github.com/muurk/ookbridge/internal/version"
	"go.uber.org/zap"
)

// Config holds the server configuration
type Config struct {
	Listen    string // host:port, e.g. ":9433"
	Advertise bool   // register the service via mDNS
	SourceID  string // reported on /healthz and in the mDNS TXT record
}

// Server serves the live feed, health, stats and metrics endpoints.
type Server struct {
	config   *Config
	hub      *Hub
	metrics  http.Handler
	stats    func() decoder.Snapshot
	http     *http.Server
	listener net.Listener
	mdns     *zeroconf.Server
}

// New creates a server. metrics and stats may be nil, in which case the
// corresponding endpoints answer 404.
func New(config *Config, hub *Hub, metrics http.Handler, stats func() decoder.Snapshot) *Server {
	s := &Server{
		config:  config,
		hub:     hub,
		metrics: metrics,
		stats:   stats,
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes:
//
//	/ws       websocket feed of decoder events
//	/healthz  liveness and version
//	/stats    decoder counters as JSON
//	/metrics  Prometheus metrics
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(discovery.FeedPath, s.hub)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.stats != nil {
		mux.HandleFunc("/stats", s.handleStats)
	}
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Health is the /healthz response body.
type Health struct {
	Status   string       `json:"status"`
	SourceID string       `json:"source"`
	Clients  int          `json:"clients"`
	Version  version.Info `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, Health{
		Status:   "ok",
		SourceID: s.config.SourceID,
		Clients:  s.hub.Clients(),
		Version:  version.Current(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stats())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to write JSON response", zap.Error(err))
	}
}

// Start listens on the configured address, serves in the background and,
// if enabled, advertises the service via mDNS. It returns once the listener
// is open.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.listener = listener

	logging.Info("HTTP server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("feed", discovery.FeedPath),
	)

	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		mdns, err := Advertise(s.config.SourceID, port)
		if err != nil {
			// The feed still works by URL; discovery is a convenience.
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.mdns = mdns
		}
	}

	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops advertising, disconnects feed clients and stops the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP server...")

	if s.mdns != nil {
		s.mdns.Shutdown()
	}
	s.hub.Close()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// Advertise registers the bridge as a _ookbridge._tcp service on port.
// The caller must Shutdown the returned server.
func Advertise(sourceID string, port int) (*zeroconf.Server, error) {
	instance := "ookbridge " + sourceID
	txt := discovery.TXT(sourceID, version.Version)

	server, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising via mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return server, nil
}
