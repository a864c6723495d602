package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/orbit"
)

// BuiltinSource names the builtin planet table in results.
const BuiltinSource = "builtin:planets"

// Loader reads catalogs from disk.
type Loader struct {
	logger    *logging.Logger
	sizeScale float64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report rejected records.
func WithLogger(l *logging.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// WithSizeScale multiplies every size hint.
func WithSizeScale(s float64) LoaderOption {
	return func(ld *Loader) {
		ld.sizeScale = s
	}
}

// NewLoader creates a catalog loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		sizeScale: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Discard()
	}
	return l
}

// Result contains the outcome of a load. Error is set when the source could
// not be read or decoded at all; per-record problems go to Rejected.
type Result struct {
	Source   string
	Bodies   []orbit.Elements
	Rejected []Rejection
	LoadedAt time.Time
	Duration time.Duration
	Error    error
}

// OK reports whether the source was read.
func (r Result) OK() bool {
	return r.Error == nil
}

// Load reads the catalog at path. An empty path loads the builtin planets.
// It never panics: unreadable input yields an empty result with Error set.
func (l *Loader) Load(path string) Result {
	if path == "" {
		return l.Builtin()
	}

	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		res := l.empty(path, start)
		res.Error = fmt.Errorf("read catalog: %w", err)
		l.logger.Error("catalog %s: %v", path, res.Error)
		return res
	}
	return l.decode(path, data, start)
}

// LoadBytes parses an in-memory catalog.
func (l *Loader) LoadBytes(source string, data []byte) Result {
	return l.decode(source, data, time.Now())
}

// Builtin returns the builtin planet table.
func (l *Loader) Builtin() Result {
	start := time.Now()
	bodies := BuiltinPlanets()
	for i := range bodies {
		bodies[i].SizeHint *= l.scale()
	}
	l.logger.Info("catalog %s: %d bodies", BuiltinSource, len(bodies))
	return Result{
		Source:   BuiltinSource,
		Bodies:   bodies,
		Rejected: make([]Rejection, 0),
		LoadedAt: start,
		Duration: time.Since(start),
	}
}

func (l *Loader) decode(source string, data []byte, start time.Time) Result {
	records, err := DecodeRecords(data)
	if err != nil {
		res := l.empty(source, start)
		res.Error = err
		l.logger.Error("catalog %s: %v", source, err)
		return res
	}

	batch := Build(records, l.scale())
	for _, rej := range batch.Rejected {
		l.logger.Warn("catalog %s: rejected %v", source, rej)
	}
	l.logger.Info("catalog %s: %d bodies, %d rejected", source, len(batch.Bodies), len(batch.Rejected))

	return Result{
		Source:   source,
		Bodies:   batch.Bodies,
		Rejected: batch.Rejected,
		LoadedAt: start,
		Duration: time.Since(start),
	}
}

func (l *Loader) empty(source string, start time.Time) Result {
	return Result{
		Source:   source,
		Bodies:   make([]orbit.Elements, 0),
		Rejected: make([]Rejection, 0),
		LoadedAt: start,
		Duration: time.Since(start),
	}
}

func (l *Loader) scale() float64 {
	if l.sizeScale <= 0 {
		return 1
	}
	return l.sizeScale
}
