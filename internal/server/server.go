// Package server streams simulation snapshots to browser renderers over
// websocket and serves body metadata, orbit paths and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/sim"
)

// DefaultMaxFPS is the default per-client frame limit.
const DefaultMaxFPS = 10

// Source is the read side of a simulation.
type Source interface {
	Snapshot() sim.Snapshot
	Bodies() []sim.Body
}

// Server is the HTTP adapter.
type Server struct {
	src     Source
	hub     *Hub
	metrics *metrics.Collector
	logger  *logging.Logger
	maxFPS  float64
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves /metrics and records websocket events.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMaxFPS sets the per-client websocket frame limit.
func WithMaxFPS(fps float64) Option {
	return func(s *Server) {
		s.maxFPS = fps
	}
}

// New creates a server reading from src.
func New(src Source, opts ...Option) *Server {
	s := &Server{
		src:    src,
		maxFPS: DefaultMaxFPS,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.maxFPS <= 0 {
		s.maxFPS = DefaultMaxFPS
	}

	var rec Recorder
	if s.metrics != nil {
		rec = s.metrics
	}
	s.hub = NewHub(s.maxFPS, rec, s.logger)
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bodies", s.handleBodies)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /ws", s.handleWS)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

// Publish broadcasts a snapshot to websocket clients. It is meant to be
// passed to sim.Run.
func (s *Server) Publish(snap sim.Snapshot) {
	if s.hub.Len() == 0 {
		return
	}
	msg, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("encode snapshot: %v", err)
		return
	}
	s.hub.Broadcast(msg)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// BodyInfo describes one body for renderers: elements, display hints and
// its sampled orbit path.
type BodyInfo struct {
	ID            string       `json:"id,omitempty"`
	Name          string       `json:"name"`
	Kind          string       `json:"kind"`
	Color         string       `json:"color,omitempty"`
	Size          float64      `json:"size"`
	Phase         string       `json:"phase_strategy"`
	SemiMajorAxis float64      `json:"semi_major_axis,omitempty"`
	Eccentricity  float64      `json:"eccentricity"`
	Perihelion    float64      `json:"perihelion,omitempty"`
	Aphelion      float64      `json:"aphelion,omitempty"`
	OrbitalPeriod float64      `json:"orbital_period_days"`
	Radius        float64      `json:"radius"`
	Path          []astro.Vec3 `json:"path"`
}

// BodiesResponse is the /api/bodies payload.
type BodiesResponse struct {
	AUScale       float64    `json:"au_scale"`
	RotationDelta float64    `json:"rotation_delta"`
	Bodies        []BodyInfo `json:"bodies"`
}

func (s *Server) handleBodies(w http.ResponseWriter, r *http.Request) {
	snap := s.src.Snapshot()
	bodies := s.src.Bodies()

	resp := BodiesResponse{
		AUScale:       snap.AUScale,
		RotationDelta: snap.RotationDelta,
		Bodies:        make([]BodyInfo, 0, len(bodies)),
	}
	for _, b := range bodies {
		el := b.Elements
		info := BodyInfo{
			ID:            el.ID,
			Name:          el.Label(),
			Kind:          el.Kind.String(),
			Color:         el.Color,
			Size:          el.SizeHint,
			Phase:         el.Phase.String(),
			Eccentricity:  el.Eccentricity,
			OrbitalPeriod: el.OrbitalPeriod,
			Radius:        b.State.Radius,
			Path:          b.Path,
		}
		if el.Units == orbit.UnitsAU && el.Radius == orbit.RadiusMean {
			info.SemiMajorAxis = el.SemiMajorAxis
			info.Perihelion = el.PerihelionDistance()
			info.Aphelion = el.AphelionDistance()
		}
		resp.Bodies = append(resp.Bodies, info)
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.src.Snapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	first, err := json.Marshal(s.src.Snapshot())
	if err != nil {
		http.Error(w, "encode snapshot", http.StatusInternalServerError)
		return
	}
	s.hub.serve(w, r, first)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response: %v", err)
	}
}
