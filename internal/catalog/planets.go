package catalog

import (
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-orrery/internal/orbit"
)

// PlanetDef is one row of the builtin planet table.
type PlanetDef struct {
	Name          string
	Code          string
	Size          float64
	Color         string
	SemiMajorAxis float64 // AU
	Eccentricity  float64
	OrbitalPeriod float64 // days
	Longitude     float64 // mean longitude at J2000.0, degrees
}

// Planets is the builtin table used when no catalog is given. Elements are
// the J2000.0 mean values; sizes are for display, not to scale.
var Planets = []PlanetDef{
	{Name: "Mercury", Code: "MERC", Size: 2, Color: "#aaaaaa", SemiMajorAxis: 0.38710, Eccentricity: 0.20563, OrbitalPeriod: 87.969, Longitude: 252.25},
	{Name: "Venus", Code: "VEN", Size: 3, Color: "#ffdd99", SemiMajorAxis: 0.72333, Eccentricity: 0.00677, OrbitalPeriod: 224.701, Longitude: 181.98},
	{Name: "Earth", Code: "EARTH", Size: 3.5, Color: "#0000ff", SemiMajorAxis: 1.00000, Eccentricity: 0.01671, OrbitalPeriod: 365.256, Longitude: 100.46},
	{Name: "Mars", Code: "MARS", Size: 2.5, Color: "#c1440e", SemiMajorAxis: 1.52368, Eccentricity: 0.09340, OrbitalPeriod: 686.980, Longitude: 355.45},
	{Name: "Jupiter", Code: "JUP", Size: 7, Color: "#d8ca9d", SemiMajorAxis: 5.20260, Eccentricity: 0.04849, OrbitalPeriod: 4332.59, Longitude: 34.40},
	{Name: "Saturn", Code: "SAT", Size: 6, Color: "#e3e0c0", SemiMajorAxis: 9.55491, Eccentricity: 0.05551, OrbitalPeriod: 10759.22, Longitude: 49.94},
	{Name: "Uranus", Code: "URA", Size: 4.5, Color: "#afdbf5", SemiMajorAxis: 19.2184, Eccentricity: 0.04630, OrbitalPeriod: 30688.5, Longitude: 313.23},
	{Name: "Neptune", Code: "NEP", Size: 4.5, Color: "#3f54ba", SemiMajorAxis: 30.1104, Eccentricity: 0.00899, OrbitalPeriod: 60182, Longitude: 304.88},
}

// Elements converts the definition to time-driven mean-radius elements in AU,
// phased so simulation time zero is J2000.0.
func (p PlanetDef) Elements() orbit.Elements {
	return orbit.Elements{
		ID:            p.Code,
		Name:          p.Name,
		Kind:          orbit.KindPlanet,
		SemiMajorAxis: p.SemiMajorAxis,
		Eccentricity:  p.Eccentricity,
		OrbitalPeriod: p.OrbitalPeriod,
		InitialPhase:  unit.AngleFromDeg(p.Longitude).Rad(),
		Phase:         orbit.PhaseTimeDriven,
		Radius:        orbit.RadiusMean,
		SizeHint:      p.Size,
		Units:         orbit.UnitsAU,
		Color:         p.Color,
	}
}

// BuiltinPlanets returns the builtin table as elements.
func BuiltinPlanets() []orbit.Elements {
	out := make([]orbit.Elements, len(Planets))
	for i, p := range Planets {
		out[i] = p.Elements()
	}
	return out
}
