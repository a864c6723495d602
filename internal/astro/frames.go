// Package astro provides vector math and top-down projection for the orrery.
package astro

import (
	"math"
	"strconv"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// SpeedOfLight in kilometers per second.
const SpeedOfLight = 299792.458

// Vec3 represents a 3D vector in orrery space.
// The orbital plane is X/Z; Y points out of the plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// PlanarNorm returns the distance from the origin within the orbital plane.
func (v Vec3) PlanarNorm() float64 {
	return math.Hypot(v.X, v.Z)
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// ProjectedPoint represents a 2D projected position with metadata.
type ProjectedPoint struct {
	X float64 // Screen X coordinate in display units
	Y float64 // Screen Y coordinate in display units
	R float64 // Original 3D distance in AU
}

// ScaleMode defines how radial distances are mapped to screen space.
type ScaleMode int

const (
	// ScaleLogR uses logarithmic scaling: r_display = log10(r_AU + 1) * scale
	ScaleLogR ScaleMode = iota

	// ScaleInner uses linear scaling optimized for 0-5 AU
	ScaleInner

	// ScaleOuter uses compressed scaling for outer solar system (>5 AU)
	ScaleOuter
)

// String returns a short display name for the mode.
func (m ScaleMode) String() string {
	switch m {
	case ScaleLogR:
		return "Log"
	case ScaleInner:
		return "Inner"
	case ScaleOuter:
		return "Outer"
	default:
		return "?"
	}
}

// ProjectionConfig configures the top-down projection.
type ProjectionConfig struct {
	Scale      float64   // Base scale factor (zoom)
	Mode       ScaleMode // Scaling mode
	UnitsPerAU float64   // Orrery display units per AU; <= 0 means inputs are AU
}

// DefaultProjectionConfig returns a reasonable default configuration.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		Scale:      1.0,
		Mode:       ScaleLogR,
		UnitsPerAU: 100,
	}
}

// toAU converts a display-unit distance to AU under cfg.
func (cfg ProjectionConfig) toAU(d float64) float64 {
	if cfg.UnitsPerAU <= 0 {
		return d
	}
	return d / cfg.UnitsPerAU
}

// ProjectTopDown projects an orrery position onto the screen as seen from +Y.
// Screen X follows world X and screen Y follows world Z.
func ProjectTopDown(v Vec3, cfg ProjectionConfig) ProjectedPoint {
	rAU := cfg.toAU(v.PlanarNorm())
	rDisplay := ScaleRadius(rAU, cfg.Mode)
	angle := math.Atan2(v.Z, v.X)

	return ProjectedPoint{
		X: rDisplay * math.Cos(angle) * cfg.Scale,
		Y: rDisplay * math.Sin(angle) * cfg.Scale,
		R: cfg.toAU(v.Norm()),
	}
}

// ScaleRadius applies a scaling mode to a radial distance in AU.
func ScaleRadius(rAU float64, mode ScaleMode) float64 {
	switch mode {
	case ScaleLogR:
		// log10(r + 1) gives 0 at origin, ~0.78 at 5 AU, ~1.04 at 10 AU, ~1.32 at 20 AU
		return math.Log10(rAU + 1)

	case ScaleInner:
		// Clamp outer bodies to the edge
		if rAU > 5 {
			return 5
		}
		return rAU

	case ScaleOuter:
		// Linear to 5 AU, then logarithmic beyond
		if rAU <= 5 {
			return rAU / 5 * 0.5
		}
		return 0.5 + math.Log10(rAU/5+1)*0.5

	default:
		return math.Log10(rAU + 1)
	}
}

// PlaneLongitude returns the angle of v within the orbital plane in degrees [0, 360).
func PlaneLongitude(v Vec3) float64 {
	lon := math.Atan2(v.Z, v.X) * 180 / math.Pi
	if lon < 0 {
		lon += 360
	}
	return lon
}

// LightTimeFromAU returns the one-way light time for a distance in AU.
func LightTimeFromAU(au float64) float64 {
	return au * AU / SpeedOfLight
}

// FormatLightTime formats light time in seconds to a human-readable string.
func FormatLightTime(seconds float64) string {
	switch {
	case seconds < 60:
		return strconv.FormatFloat(seconds, 'f', 1, 64) + "s"
	case seconds < 3600:
		return strconv.Itoa(int(seconds/60)) + "m" + strconv.Itoa(int(seconds)%60) + "s"
	default:
		return strconv.Itoa(int(seconds/3600)) + "h" + strconv.Itoa((int(seconds)%3600)/60) + "m"
	}
}
