package orbit

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/litescript/ls-orrery/internal/astro"
)

const (
	// DefaultAUScale is the number of display units per AU.
	DefaultAUScale = 100

	// DefaultRotationStep is the self-rotation increment per tick in radians.
	DefaultRotationStep = 0.01
)

// Calculator turns orbital elements into positions.
// The zero value is not usable; build one with NewCalculator.
type Calculator struct {
	auScale      float64
	yOffset      float64
	rotationStep float64
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithAUScale sets the display units per AU applied to UnitsAU elements.
func WithAUScale(scale float64) CalculatorOption {
	return func(c *Calculator) {
		c.auScale = scale
	}
}

// WithYOffset lifts every body off the orbital plane by a fixed amount.
func WithYOffset(y float64) CalculatorOption {
	return func(c *Calculator) {
		c.yOffset = y
	}
}

// WithRotationStep sets the self-rotation increment per tick.
func WithRotationStep(step float64) CalculatorOption {
	return func(c *Calculator) {
		c.rotationStep = step
	}
}

// NewCalculator creates a calculator with the default unit policy.
func NewCalculator(opts ...CalculatorOption) Calculator {
	c := Calculator{
		auScale:      DefaultAUScale,
		rotationStep: DefaultRotationStep,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if !finite(c.auScale) || c.auScale <= 0 {
		c.auScale = DefaultAUScale
	}
	return c
}

// AUScale returns the display units per AU.
func (c Calculator) AUScale() float64 {
	return c.auScale
}

// RotationDelta returns the self-rotation increment applied each tick.
func (c Calculator) RotationDelta() float64 {
	return c.rotationStep
}

// Radius returns the body's orbital radius in display units.
func (c Calculator) Radius(el Elements) (float64, error) {
	if err := el.Validate(); err != nil {
		return 0, err
	}
	return c.radius(el), nil
}

func (c Calculator) radius(el Elements) float64 {
	r := el.rawRadius()
	if el.Units == UnitsAU {
		r *= c.auScale
	}
	return r
}

// Angle returns the orbit angle at simulationTime, before InitialPhase.
// Time-driven bodies make one full turn per OrbitalPeriod; speed-driven
// bodies treat simulationTime as a tick count.
func (c Calculator) Angle(el Elements, simulationTime float64) float64 {
	if el.Phase == PhaseSpeedDriven {
		return el.AngularSpeed * simulationTime
	}
	return 2 * math.Pi * simulationTime / el.OrbitalPeriod
}

// ComputePosition returns the body's position at simulationTime.
// It is a pure function of its arguments.
func (c Calculator) ComputePosition(el Elements, simulationTime float64) (astro.Vec3, error) {
	if err := el.Validate(); err != nil {
		return astro.Vec3{}, err
	}
	return c.place(c.radius(el), c.Angle(el, simulationTime)+el.InitialPhase), nil
}

// Advance moves st forward one tick. Time-driven bodies take their angle from
// simulationTime; speed-driven bodies add AngularSpeed to st.OrbitAngle.
func (c Calculator) Advance(el Elements, st *BodyState, simulationTime float64) error {
	if err := el.Validate(); err != nil {
		return err
	}

	var angle float64
	if el.Phase == PhaseSpeedDriven {
		angle = wrap(st.OrbitAngle + el.AngularSpeed)
	} else {
		angle = wrap(c.Angle(el, simulationTime))
	}

	r := c.radius(el)
	st.OrbitAngle = angle
	st.Radius = r
	st.Position = c.place(r, angle+el.InitialPhase)
	st.SelfRotation = wrap(st.SelfRotation + c.rotationStep)
	return nil
}

// Initial returns the state of a body before its first tick.
func (c Calculator) Initial(el Elements) (BodyState, error) {
	if err := el.Validate(); err != nil {
		return BodyState{}, err
	}
	r := c.radius(el)
	return BodyState{
		Position: c.place(r, el.InitialPhase),
		Radius:   r,
	}, nil
}

func (c Calculator) place(r, angle float64) astro.Vec3 {
	sin, cos := math.Sincos(angle)
	return astro.Vec3{X: r * cos, Y: c.yOffset, Z: r * sin}
}

// wrap reduces an angle to [0, 2π).
func wrap(rad float64) float64 {
	return unit.Angle(rad).Mod1().Rad()
}
