package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/litescript/ls-orrery/internal/orbit"
)

// Rejection reasons, kept coarse so they can be used as metric labels.
const (
	ReasonMalformed = "malformed"
	ReasonInvalid   = "invalid_elements"
	ReasonDuplicate = "duplicate"
)

// Rejection records why one raw record was not turned into a body.
type Rejection struct {
	Index  int    // position in the source array
	Name   string // best-effort name, may be empty
	Reason string // one of the Reason* constants
	Err    error
}

func (r Rejection) Error() string {
	name := r.Name
	if name == "" {
		name = "?"
	}
	return fmt.Sprintf("record %d (%s): %s: %v", r.Index, name, r.Reason, r.Err)
}

func (r Rejection) Unwrap() error {
	return r.Err
}

// Batch is the outcome of converting a set of records.
type Batch struct {
	Bodies   []orbit.Elements
	Rejected []Rejection
}

// Build converts records to elements. Every record is handled on its own:
// a bad record is rejected and the rest of the batch continues.
// sizeScale multiplies every size hint; non-positive means 1.
func Build(records []Record, sizeScale float64) Batch {
	if sizeScale <= 0 {
		sizeScale = 1
	}

	batch := Batch{
		Bodies:   make([]orbit.Elements, 0, len(records)),
		Rejected: make([]Rejection, 0),
	}
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		if rec == nil {
			batch.Rejected = append(batch.Rejected, Rejection{
				Index:  i,
				Reason: ReasonMalformed,
				Err:    fmt.Errorf("%w: not a JSON object", ErrMalformedRecord),
			})
			continue
		}

		el, err := Convert(rec)
		if err != nil {
			batch.Rejected = append(batch.Rejected, Rejection{
				Index:  i,
				Name:   recordName(rec),
				Reason: reasonFor(err),
				Err:    err,
			})
			continue
		}
		el.SizeHint *= sizeScale

		key := strings.ToLower(el.Label())
		if first, dup := seen[key]; dup {
			batch.Rejected = append(batch.Rejected, Rejection{
				Index:  i,
				Name:   el.Label(),
				Reason: ReasonDuplicate,
				Err:    fmt.Errorf("%w: first seen at record %d", ErrDuplicate, first),
			})
			continue
		}
		seen[key] = i
		batch.Bodies = append(batch.Bodies, el)
	}

	return batch
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, orbit.ErrInvalidElements):
		return ReasonInvalid
	case errors.Is(err, ErrDuplicate):
		return ReasonDuplicate
	default:
		return ReasonMalformed
	}
}

func recordName(r Record) string {
	for _, k := range []string{"name", "object_name", "full_name", "id"} {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Convert turns one record into validated elements.
func Convert(r Record) (orbit.Elements, error) {
	var (
		el  orbit.Elements
		err error
	)
	switch DetectShape(r) {
	case ShapeComet:
		el, err = convertComet(r)
	case ShapeNEO:
		el, err = convertNEO(r)
	case ShapePlanet:
		el, err = convertPlanet(r)
	default:
		el, err = convertGeneric(r)
	}
	if err != nil {
		return orbit.Elements{}, err
	}
	if el.Label() == "" {
		return orbit.Elements{}, &FieldError{Field: "name", Reason: "missing"}
	}
	if err := el.Validate(); err != nil {
		return orbit.Elements{}, err
	}
	return el, nil
}

// convertComet reads the comet catalog layout: perihelion and aphelion in AU,
// period in years.
func convertComet(r Record) (orbit.Elements, error) {
	q, err := r.required("q_au_1")
	if err != nil {
		return orbit.Elements{}, err
	}
	Q, err := r.required("q_au_2")
	if err != nil {
		return orbit.Elements{}, err
	}
	years, err := r.required("p_yr")
	if err != nil {
		return orbit.Elements{}, err
	}
	phase, err := r.optional("phase", 0)
	if err != nil {
		return orbit.Elements{}, err
	}

	el := orbit.Elements{
		Name:          r.String("object_name"),
		Kind:          orbit.KindComet,
		Perihelion:    q,
		Aphelion:      Q,
		OrbitalPeriod: years * DaysPerYear,
		InitialPhase:  phase,
		SizeHint:      q * cometSizeFactor,
		Units:         orbit.UnitsAU,
	}
	if q+Q > 0 {
		el.SemiMajorAxis = (q + Q) / 2
		el.Eccentricity = (Q - q) / (Q + q)
	}
	return el, nil
}

// convertNEO reads the small-body layout: a, e, period in years, diameter in km.
func convertNEO(r Record) (orbit.Elements, error) {
	a, err := r.required("a")
	if err != nil {
		return orbit.Elements{}, err
	}
	e, err := r.required("e")
	if err != nil {
		return orbit.Elements{}, err
	}
	years, err := r.required("per_y")
	if err != nil {
		return orbit.Elements{}, err
	}
	size, err := r.optional("diameter", DefaultSize)
	if err != nil {
		return orbit.Elements{}, err
	}
	phase, err := r.optional("phase", 0)
	if err != nil {
		return orbit.Elements{}, err
	}

	return orbit.Elements{
		Name:          r.String("full_name"),
		ID:            r.String("pdes"),
		Kind:          orbit.KindNEO,
		SemiMajorAxis: a,
		Eccentricity:  e,
		OrbitalPeriod: years * DaysPerYear,
		InitialPhase:  phase,
		SizeHint:      size,
		Units:         orbit.UnitsAU,
	}, nil
}

// convertPlanet reads the planet table layout. Radii are display units.
// Planets with an orbitalSpeed advance by that many radians per tick;
// otherwise they follow the clock.
func convertPlanet(r Record) (orbit.Elements, error) {
	radius, ok, err := r.Number("orbitalRadius")
	if err != nil {
		return orbit.Elements{}, err
	}
	if !ok {
		radius, err = positionX(r)
		if err != nil {
			return orbit.Elements{}, err
		}
	}
	period, err := r.required("orbitalPeriod")
	if err != nil {
		return orbit.Elements{}, err
	}
	size, err := r.optional("size", DefaultSize)
	if err != nil {
		return orbit.Elements{}, err
	}
	phase, err := r.optional("phase", 0)
	if err != nil {
		return orbit.Elements{}, err
	}
	color, err := parseColor(r["color"])
	if err != nil {
		return orbit.Elements{}, &FieldError{Field: "color", Reason: "bad color", Err: err}
	}

	el := orbit.Elements{
		Name:          r.String("name"),
		ID:            r.String("id"),
		Kind:          orbit.KindPlanet,
		Radius:        orbit.RadiusFixed,
		OrbitalRadius: radius,
		OrbitalPeriod: period,
		InitialPhase:  phase,
		SizeHint:      size,
		Units:         orbit.UnitsDisplay,
		Color:         color,
	}

	speed, ok, err := r.Number("orbitalSpeed")
	if err != nil {
		return orbit.Elements{}, err
	}
	if ok {
		el.Phase = orbit.PhaseSpeedDriven
		el.AngularSpeed = speed
	}
	return el, nil
}

// positionX falls back to the x coordinate of a nested start position.
func positionX(r Record) (float64, error) {
	pos, ok := r["position"].(map[string]any)
	if !ok {
		return 0, &FieldError{Field: "orbitalRadius", Reason: "missing"}
	}
	x, err := Record(pos).required("x")
	if err != nil {
		return 0, &FieldError{Field: "position.x", Reason: "missing or bad", Err: err}
	}
	return x, nil
}

// convertGeneric reads name/id, a, e, period in days, diameter and phase.
func convertGeneric(r Record) (orbit.Elements, error) {
	a, err := r.required("a")
	if err != nil {
		return orbit.Elements{}, err
	}
	e, err := r.optional("e", 0)
	if err != nil {
		return orbit.Elements{}, err
	}
	period, err := r.required("period")
	if err != nil {
		return orbit.Elements{}, err
	}
	size, err := r.optional("diameter", DefaultSize)
	if err != nil {
		return orbit.Elements{}, err
	}
	phase, err := r.optional("phase", 0)
	if err != nil {
		return orbit.Elements{}, err
	}
	color, err := parseColor(r["color"])
	if err != nil {
		return orbit.Elements{}, &FieldError{Field: "color", Reason: "bad color", Err: err}
	}

	return orbit.Elements{
		ID:            r.String("id"),
		Name:          r.String("name"),
		Kind:          orbit.KindGeneric,
		SemiMajorAxis: a,
		Eccentricity:  e,
		OrbitalPeriod: period,
		InitialPhase:  phase,
		SizeHint:      size,
		Units:         orbit.UnitsAU,
		Color:         color,
	}, nil
}
