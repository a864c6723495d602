// Package sim owns the set of simulated bodies and advances them tick by tick.
package sim

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/orbit"
)

// DefaultParallelThreshold is the body count above which ticks run in parallel.
const DefaultParallelThreshold = 256

// Body is one simulated body. Elements never change after construction;
// State is written only by the simulation.
type Body struct {
	Elements orbit.Elements
	State    orbit.BodyState
	Path     orbit.Path
}

// Dropped is a body refused at construction.
type Dropped struct {
	Name string
	Err  error
}

// Scheduler advances a simulation. It replaces an engine-owned render loop:
// callers decide when ticks happen and with what simulation time.
type Scheduler interface {
	Advance(simTime float64) (Snapshot, error)
	Snapshot() Snapshot
}

// Observer receives per-tick statistics.
type Observer interface {
	ObserveTick(d time.Duration, bodies int, parallel bool)
}

// Simulation holds the bodies and their per-tick state. Safe for concurrent
// use: Advance takes the write lock, readers get copies.
type Simulation struct {
	mu sync.RWMutex

	calc    orbit.Calculator
	sampler *orbit.Sampler
	bodies  []Body
	dropped []Dropped

	tick    uint64
	simTime float64
	lastDur time.Duration

	segments          int
	parallelThreshold int
	workers           int

	logger   *logging.Logger
	observer Observer
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithCalculator sets the position calculator.
func WithCalculator(c orbit.Calculator) Option {
	return func(s *Simulation) {
		s.calc = c
	}
}

// WithSampler shares a path cache between simulations.
func WithSampler(sp *orbit.Sampler) Option {
	return func(s *Simulation) {
		s.sampler = sp
	}
}

// WithSegments sets the segment count of each body's orbit path.
func WithSegments(n int) Option {
	return func(s *Simulation) {
		s.segments = n
	}
}

// WithParallelThreshold sets the body count above which ticks fan out.
// Zero keeps every tick sequential.
func WithParallelThreshold(n int) Option {
	return func(s *Simulation) {
		s.parallelThreshold = n
	}
}

// WithWorkers bounds the goroutines used by a parallel tick.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		s.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithObserver registers a tick observer.
func WithObserver(o Observer) Option {
	return func(s *Simulation) {
		s.observer = o
	}
}

// New builds a simulation from elements. Bodies whose elements fail
// validation, or whose path cannot be sampled, are dropped and logged.
func New(elements []orbit.Elements, opts ...Option) *Simulation {
	s := &Simulation{
		calc:              orbit.NewCalculator(),
		segments:          orbit.DefaultSegments,
		parallelThreshold: DefaultParallelThreshold,
		workers:           runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sampler == nil {
		s.sampler = orbit.NewSampler()
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.workers < 1 {
		s.workers = 1
	}

	s.bodies = make([]Body, 0, len(elements))
	for _, el := range elements {
		st, err := s.calc.Initial(el)
		if err != nil {
			s.drop(el, err)
			continue
		}
		path, err := s.sampler.PathFor(s.calc, el, s.segments)
		if err != nil {
			s.drop(el, err)
			continue
		}
		s.bodies = append(s.bodies, Body{Elements: el, State: st, Path: path})
	}

	s.logger.Debug("simulation: %d bodies, %d dropped", len(s.bodies), len(s.dropped))
	return s
}

func (s *Simulation) drop(el orbit.Elements, err error) {
	s.dropped = append(s.dropped, Dropped{Name: el.Label(), Err: err})
	s.logger.Warn("dropping body %s: %v", el.Label(), err)
}

// Advance moves every body forward one tick to simTime and returns the
// resulting snapshot.
func (s *Simulation) Advance(simTime float64) (Snapshot, error) {
	start := time.Now()

	s.mu.Lock()
	parallel := s.parallelThreshold > 0 && len(s.bodies) > s.parallelThreshold
	var err error
	if parallel {
		err = s.advanceParallel(simTime)
	} else {
		err = s.advanceSequential(simTime)
	}
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("tick %d: %w", s.tick+1, err)
	}
	s.tick++
	s.simTime = simTime
	s.lastDur = time.Since(start)
	snap := s.snapshotLocked()
	n := len(s.bodies)
	dur := s.lastDur
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveTick(dur, n, parallel)
	}
	return snap, nil
}

func (s *Simulation) advanceSequential(simTime float64) error {
	for i := range s.bodies {
		b := &s.bodies[i]
		if err := s.calc.Advance(b.Elements, &b.State, simTime); err != nil {
			return err
		}
	}
	return nil
}

// advanceParallel splits the bodies into contiguous chunks, one goroutine per
// chunk. Each goroutine writes only the states in its own chunk.
func (s *Simulation) advanceParallel(simTime float64) error {
	var g errgroup.Group
	g.SetLimit(s.workers)

	n := len(s.bodies)
	chunk := (n + s.workers - 1) / s.workers
	for lo := 0; lo < n; lo += chunk {
		part := s.bodies[lo:min(lo+chunk, n)]
		g.Go(func() error {
			for i := range part {
				if err := s.calc.Advance(part[i].Elements, &part[i].State, simTime); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Snapshot returns a copy of the current state.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Simulation) snapshotLocked() Snapshot {
	bodies := make([]BodySnapshot, len(s.bodies))
	for i, b := range s.bodies {
		bodies[i] = BodySnapshot{
			ID:        b.Elements.ID,
			Name:      b.Elements.Label(),
			Kind:      b.Elements.Kind.String(),
			Size:      b.Elements.SizeHint,
			Color:     b.Elements.Color,
			Units:     b.Elements.Units,
			BodyState: b.State,
		}
	}
	return Snapshot{
		Tick:          s.tick,
		Time:          s.simTime,
		RotationDelta: s.calc.RotationDelta(),
		AUScale:       s.calc.AUScale(),
		TickDuration:  s.lastDur,
		Bodies:        bodies,
	}
}

// Bodies returns a copy of every body including its cached path.
func (s *Simulation) Bodies() []Body {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Body, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = b
		out[i].Path = slices.Clone(b.Path)
	}
	return out
}

// Dropped returns the bodies refused at construction.
func (s *Simulation) Dropped() []Dropped {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dropped)
}

// Len returns the number of live bodies.
func (s *Simulation) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

// Calculator returns the calculator used for every body.
func (s *Simulation) Calculator() orbit.Calculator {
	return s.calc
}

// Sampler returns the path cache.
func (s *Simulation) Sampler() *orbit.Sampler {
	return s.sampler
}

// Segments returns the segment count of body paths.
func (s *Simulation) Segments() int {
	return s.segments
}
