package sim

import (
	"context"
	"sync"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Clock maps wall-clock time to simulation time in days since an epoch.
// The rate can change or pause without the simulation time jumping.
type Clock struct {
	mu sync.Mutex

	epoch      time.Time
	scale      float64 // simulated days per wall second
	anchorWall time.Time
	anchorSim  float64
	paused     bool
}

// NewClock starts a clock at simulation time zero, which corresponds to the
// calendar instant epoch.
func NewClock(epoch time.Time, scale float64, wall time.Time) *Clock {
	return &Clock{
		epoch:      epoch.UTC(),
		scale:      scale,
		anchorWall: wall,
	}
}

// Now returns the simulation time at the given wall time.
func (c *Clock) Now(wall time.Time) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked(wall)
}

func (c *Clock) nowLocked(wall time.Time) float64 {
	if c.paused {
		return c.anchorSim
	}
	return c.anchorSim + wall.Sub(c.anchorWall).Seconds()*c.scale
}

// Scale returns the current rate in days per wall second.
func (c *Clock) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// SetScale changes the rate from wall time onward.
func (c *Clock) SetScale(scale float64, wall time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchorSim = c.nowLocked(wall)
	c.anchorWall = wall
	c.scale = scale
}

// Pause freezes simulation time.
func (c *Clock) Pause(wall time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.anchorSim = c.nowLocked(wall)
	c.paused = true
}

// Resume continues from where Pause stopped.
func (c *Clock) Resume(wall time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.anchorWall = wall
	c.paused = false
}

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// JD returns the Julian day of the simulated instant at wall time.
func (c *Clock) JD(wall time.Time) float64 {
	return julian.TimeToJD(c.epoch) + c.Now(wall)
}

// Date returns the simulated calendar instant at wall time.
func (c *Clock) Date(wall time.Time) time.Time {
	return julian.JDToTime(c.JD(wall))
}

// Run advances sched on every interval tick until ctx is cancelled, passing
// each snapshot to fn. Ticks are skipped while the clock is paused.
func Run(ctx context.Context, sched Scheduler, clock *Clock, interval time.Duration, fn func(Snapshot)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if clock.Paused() {
				continue
			}
			snap, err := sched.Advance(clock.Now(now))
			if err != nil {
				return err
			}
			if fn != nil {
				fn(snap)
			}
		}
	}
}
