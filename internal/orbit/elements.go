// Package orbit computes simplified orbital positions and orbit paths.
//
// Bodies move on circles in the X/Z plane around a sun at the origin. A body
// either follows the clock (one turn per orbital period) or accumulates a
// fixed angle per tick; the choice is made once per body when its elements
// are built and never changes.
package orbit

import (
	"fmt"
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Kind categorizes bodies by the dataset they came from.
type Kind int

const (
	KindGeneric Kind = iota
	KindPlanet
	KindComet
	KindNEO
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindPlanet:
		return "planet"
	case KindComet:
		return "comet"
	case KindNEO:
		return "neo"
	default:
		return "unknown"
	}
}

// PhaseStrategy selects how a body's orbit angle advances.
type PhaseStrategy int

const (
	// PhaseTimeDriven derives the angle from simulation time and orbital period.
	PhaseTimeDriven PhaseStrategy = iota

	// PhaseSpeedDriven accumulates AngularSpeed every tick, ignoring the period.
	PhaseSpeedDriven
)

// String returns the strategy name.
func (p PhaseStrategy) String() string {
	switch p {
	case PhaseTimeDriven:
		return "time"
	case PhaseSpeedDriven:
		return "speed"
	default:
		return "unknown"
	}
}

// RadiusPolicy selects how a body's orbital radius is derived.
type RadiusPolicy int

const (
	// RadiusMean uses MeanRadius, or the perihelion/aphelion midpoint.
	RadiusMean RadiusPolicy = iota

	// RadiusFixed uses OrbitalRadius as given.
	RadiusFixed
)

// Units declares the distance unit of an element set.
type Units int

const (
	// UnitsAU distances are scaled by the calculator's AU scale.
	UnitsAU Units = iota

	// UnitsDisplay distances are already in orrery display units.
	UnitsDisplay
)

// String returns the unit name.
func (u Units) String() string {
	switch u {
	case UnitsAU:
		return "au"
	case UnitsDisplay:
		return "display"
	default:
		return "unknown"
	}
}

// MarshalText encodes the unit by name.
func (u Units) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText decodes a unit name written by MarshalText.
func (u *Units) UnmarshalText(text []byte) error {
	switch string(text) {
	case "au":
		*u = UnitsAU
	case "display":
		*u = UnitsDisplay
	default:
		return fmt.Errorf("unknown units %q", text)
	}
	return nil
}

// Elements are the orbital elements of one body. They are immutable after load.
type Elements struct {
	ID   string
	Name string
	Kind Kind

	SemiMajorAxis float64 // a
	MeanRadius    float64 // overrides the derived mean radius when > 0
	Eccentricity  float64 // e, [0, 1)
	Perihelion    float64 // q; derived from a and e when zero
	Aphelion      float64 // Q; derived from a and e when zero

	OrbitalPeriod float64 // days
	InitialPhase  float64 // radians
	SizeHint      float64 // visual scale only

	Phase         PhaseStrategy
	Radius        RadiusPolicy
	OrbitalRadius float64 // RadiusFixed only
	AngularSpeed  float64 // radians per tick, PhaseSpeedDriven only

	Units Units
	Color string // display hint, "#rrggbb" or empty
}

// Label returns the display name, falling back to the ID.
func (el Elements) Label() string {
	if el.Name != "" {
		return el.Name
	}
	return el.ID
}

// PerihelionDistance returns q, deriving it as a(1-e) when not given.
func (el Elements) PerihelionDistance() float64 {
	if el.Perihelion > 0 {
		return el.Perihelion
	}
	return el.SemiMajorAxis * (1 - el.Eccentricity)
}

// AphelionDistance returns Q, deriving it as a(1+e) when not given.
func (el Elements) AphelionDistance() float64 {
	if el.Aphelion > 0 {
		return el.Aphelion
	}
	return el.SemiMajorAxis * (1 + el.Eccentricity)
}

// meanRadius returns the unscaled radius for RadiusMean.
func (el Elements) meanRadius() float64 {
	if el.MeanRadius > 0 {
		return el.MeanRadius
	}
	return (el.PerihelionDistance() + el.AphelionDistance()) / 2
}

// rawRadius returns the unscaled orbital radius under the body's policy.
func (el Elements) rawRadius() float64 {
	if el.Radius == RadiusFixed {
		return el.OrbitalRadius
	}
	return el.meanRadius()
}

// Validate checks that the elements describe a bound, simulatable orbit.
func (el Elements) Validate() error {
	fail := func(field string, v float64, reason string) error {
		return &ElementsError{Body: el.Label(), Field: field, Value: v, Reason: reason}
	}

	switch p := el.OrbitalPeriod; {
	case p == 0:
		return fail("orbital_period", p, "zero period")
	case !finite(p) || p < 0:
		return fail("orbital_period", p, "must be positive")
	}

	switch e := el.Eccentricity; {
	case !finite(e):
		return fail("eccentricity", e, "not a number")
	case e < 0:
		return fail("eccentricity", e, "negative")
	case e >= 1:
		return fail("eccentricity", e, "parabolic or hyperbolic orbits are unsupported")
	}

	if r := el.rawRadius(); !finite(r) || r <= 0 {
		return fail("radius", r, "must be positive")
	}
	if el.Radius == RadiusMean && el.Perihelion > 0 && el.Aphelion > 0 && el.Aphelion < el.Perihelion {
		return fail("aphelion", el.Aphelion, "less than perihelion")
	}
	if s := el.SizeHint; !finite(s) || s <= 0 {
		return fail("size", s, "must be positive")
	}
	if !finite(el.InitialPhase) {
		return fail("phase", el.InitialPhase, "not a number")
	}
	if el.Phase == PhaseSpeedDriven && !finite(el.AngularSpeed) {
		return fail("angular_speed", el.AngularSpeed, "not a number")
	}
	return nil
}

// BodyState is the per-tick mutable state of one body.
// Only the simulation loop writes it.
type BodyState struct {
	Position     astro.Vec3 `json:"position"`
	SelfRotation float64    `json:"rotation"`
	OrbitAngle   float64    `json:"angle"`
	Radius       float64    `json:"radius"`
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
