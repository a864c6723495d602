package orbit

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/litescript/ls-orrery/internal/astro"
)

const (
	// DefaultSegments is the number of segments in a sampled orbit ring.
	DefaultSegments = 64

	// MinSegments is the smallest segment count that still encloses an area.
	MinSegments = 3
)

// closeTol is the tolerance used when checking that a path closes on itself.
const closeTol = 1e-9

// Path is an ordered, closed polyline: the last point repeats the first.
type Path []astro.Vec3

// Segments returns the number of segments in the path.
func (p Path) Segments() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Closed reports whether the last point coincides with the first.
func (p Path) Closed() bool {
	if len(p) < 2 {
		return false
	}
	first, last := p[0], p[len(p)-1]
	scale := math.Max(1, first.Norm())
	return scalar.EqualWithinAbs(first.X, last.X, closeTol*scale) &&
		scalar.EqualWithinAbs(first.Y, last.Y, closeTol*scale) &&
		scalar.EqualWithinAbs(first.Z, last.Z, closeTol*scale)
}

// Sample returns segments+1 points on a circle of the given radius in the X/Z
// plane. Point 0 and point segments are the same so closed-loop renderers draw
// a seamless ring.
func Sample(radius float64, segments int) (Path, error) {
	if err := checkSegments(segments); err != nil {
		return nil, err
	}
	if !finite(radius) || radius <= 0 {
		return nil, &ParameterError{Name: "radius", Value: radius, Reason: "must be positive"}
	}

	pts := make(Path, segments+1)
	for i := 0; i < segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		sin, cos := math.Sincos(theta)
		pts[i] = astro.Vec3{X: radius * cos, Z: radius * sin}
	}
	pts[segments] = pts[0]
	return pts, nil
}

// SampleEllipse returns segments+1 points on an ellipse with the sun at one
// focus. Point 0 is the perihelion on +X.
func SampleEllipse(semiMajor, ecc float64, segments int) (Path, error) {
	if err := checkSegments(segments); err != nil {
		return nil, err
	}
	if !finite(semiMajor) || semiMajor <= 0 {
		return nil, &ParameterError{Name: "semi_major_axis", Value: semiMajor, Reason: "must be positive"}
	}
	if !finite(ecc) || ecc < 0 || ecc >= 1 {
		return nil, &ParameterError{Name: "eccentricity", Value: ecc, Reason: "must be in [0, 1)"}
	}

	b := semiMajor * math.Sqrt(1-ecc*ecc)
	pts := make(Path, segments+1)
	for i := 0; i < segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		sin, cos := math.Sincos(theta)
		pts[i] = astro.Vec3{X: semiMajor * (cos - ecc), Z: b * sin}
	}
	pts[segments] = pts[0]
	return pts, nil
}

func checkSegments(n int) error {
	if n < MinSegments {
		return &ParameterError{Name: "segments", Value: float64(n), Reason: "degenerate polygon"}
	}
	return nil
}

type pathKey struct {
	a, e     float64
	segments int
}

// Sampler caches sampled paths per distinct shape. Safe for concurrent use.
type Sampler struct {
	mu     sync.Mutex
	cache  map[pathKey]Path
	hits   int
	misses int
}

// NewSampler creates an empty path cache.
func NewSampler() *Sampler {
	return &Sampler{cache: make(map[pathKey]Path)}
}

// Sample is the cached form of the package-level Sample.
// The returned path is a copy and may be modified by the caller.
func (s *Sampler) Sample(radius float64, segments int) (Path, error) {
	return s.lookup(pathKey{a: radius, segments: segments}, func() (Path, error) {
		return Sample(radius, segments)
	})
}

// SampleEllipse is the cached form of the package-level SampleEllipse.
func (s *Sampler) SampleEllipse(semiMajor, ecc float64, segments int) (Path, error) {
	if ecc == 0 {
		return s.Sample(semiMajor, segments)
	}
	return s.lookup(pathKey{a: semiMajor, e: ecc, segments: segments}, func() (Path, error) {
		return SampleEllipse(semiMajor, ecc, segments)
	})
}

// PathFor returns the ring a body travels under calc's radius policy.
func (s *Sampler) PathFor(calc Calculator, el Elements, segments int) (Path, error) {
	r, err := calc.Radius(el)
	if err != nil {
		return nil, err
	}
	return s.Sample(r, segments)
}

// EllipseFor returns the body's true heliocentric ellipse in display units.
// Fixed-radius bodies have no ellipse and get their ring.
func (s *Sampler) EllipseFor(calc Calculator, el Elements, segments int) (Path, error) {
	if err := el.Validate(); err != nil {
		return nil, err
	}
	if el.Radius == RadiusFixed {
		return s.PathFor(calc, el, segments)
	}
	a := (el.PerihelionDistance() + el.AphelionDistance()) / 2
	e := (el.AphelionDistance() - el.PerihelionDistance()) / (el.AphelionDistance() + el.PerihelionDistance())
	if el.Units == UnitsAU {
		a *= calc.AUScale()
	}
	return s.SampleEllipse(a, e, segments)
}

func (s *Sampler) lookup(key pathKey, build func() (Path, error)) (Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.cache[key]; ok {
		s.hits++
		return slices.Clone(p), nil
	}
	s.misses++

	p, err := build()
	if err != nil {
		return nil, err
	}
	s.cache[key] = p
	return slices.Clone(p), nil
}

// Stats returns cache hit and miss counts.
func (s *Sampler) Stats() (hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

// Len returns the number of cached paths.
func (s *Sampler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}
