package sim

import (
	"time"

	"github.com/litescript/ls-orrery/internal/orbit"
)

// Snapshot is a consistent copy of the simulation after one tick.
type Snapshot struct {
	Tick          uint64         `json:"tick"`
	Time          float64        `json:"time"` // simulation days
	RotationDelta float64        `json:"rotation_delta"`
	AUScale       float64        `json:"au_scale"`
	TickDuration  time.Duration  `json:"-"`
	Bodies        []BodySnapshot `json:"bodies"`
}

// BodySnapshot is one body's identity plus its state at the snapshot tick.
type BodySnapshot struct {
	ID    string      `json:"id,omitempty"`
	Name  string      `json:"name"`
	Kind  string      `json:"kind"`
	Size  float64     `json:"size"`
	Color string      `json:"color,omitempty"`
	Units orbit.Units `json:"units"`
	orbit.BodyState
}

// Body returns the named body, or nil.
func (s Snapshot) Body(name string) *BodySnapshot {
	for i := range s.Bodies {
		if s.Bodies[i].Name == name {
			return &s.Bodies[i]
		}
	}
	return nil
}

// DistanceAU returns the body's distance from the sun in AU. ok is false for
// bodies laid out in display units, whose distances have no AU meaning.
func (b BodySnapshot) DistanceAU(auScale float64) (au float64, ok bool) {
	if b.Units != orbit.UnitsAU || auScale <= 0 {
		return 0, false
	}
	return b.Position.PlanarNorm() / auScale, true
}
