package projectile

import (
	"math"
	"time"

	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/entity"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/telemetry"
)

// MaxStepLength caps how far a projectile may advance in one tick
// (spec §4.7: "step length is capped at MAX_STEP_LENGTH; the tick diff
// is clamped to keep the step within bound").
const MaxStepLength = 64.0

// State is the per-projectile motion state the manager advances each
// tick; Trajectory is immutable once computed at launch.
type State struct {
	Origin     geom.Vec2
	Trajectory Trajectory
	Elapsed    time.Duration
	Duration   time.Duration
	lastParam  float64
}

// NewState computes the launch trajectory and seeds motion state
// (spec §4.7: "trajectory type chosen at creation").
func NewState(kind Type, origin, destination geom.Vec2, duration time.Duration) *State {
	return &State{
		Origin:     origin,
		Trajectory: Compute(kind, origin, destination),
		Duration:   duration,
	}
}

// Advance steps elapsed time by dt (clamped so the resulting world-
// space step never exceeds MaxStepLength) and returns the new absolute
// world position plus whether the projectile has reached its
// destination.
func (s *State) Advance(dt time.Duration) (geom.Vec2, bool) {
	if s.Duration <= 0 {
		return s.Origin.Add(s.Trajectory.End), true
	}

	clamped := dt
	if s.Trajectory.Length > 0 {
		maxDtForStep := time.Duration(MaxStepLength / s.Trajectory.Length * float64(s.Duration))
		if clamped > maxDtForStep {
			clamped = maxDtForStep
		}
	}
	s.Elapsed += clamped

	updateDt := math.Min(1.0, float64(s.Elapsed)/float64(s.Duration))
	target := updateDt * s.Trajectory.Length

	param := geom.ArcLengthToParam(
		func(t float64) float64 { return s.Trajectory.ArcLengthAt(t) },
		func(t float64) float64 { return s.instantSpeed(t) },
		target, s.Trajectory.Length,
	)
	s.lastParam = param

	pos := s.Origin.Add(s.Trajectory.PositionAt(param))
	finished := updateDt >= 1.0
	return pos, finished
}

// instantSpeed approximates d(arcLength)/dt via a small central
// difference, feeding Newton-Raphson's derivative term (spec §4.7:
// "matching parameter t is recovered by Newton-Raphson ... on the
// arc-length function").
func (s *State) instantSpeed(t float64) float64 {
	const h = 1e-3
	lo, hi := t-h, t+h
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}
	if hi == lo {
		return 0
	}
	return (s.Trajectory.ArcLengthAt(hi) - s.Trajectory.ArcLengthAt(lo)) / (hi - lo)
}

// Candidate is one attackable object the spatial grid offers as a
// collision check target this tick.
type Candidate struct {
	ID       ecs.EntityID
	Pos      geom.Vec2
	Radius   float64 // collision radius
}

// CollisionResult is a confirmed hit, ready for enter_collision
// dispatch.
type CollisionResult struct {
	Target    ecs.EntityID
	Precision float64 // in [0,1], higher = more centred hit
}

// CheckCollision scans candidates against the projectile's current
// position, returning every candidate within its radius this tick
// (spec §4.7: "collision check every tick against candidates obtained
// from the spatial grid"). already marks entities the projectile has
// already collided with (a projectile shouldn't double-hit the same
// target across ticks).
func CheckCollision(pos geom.Vec2, candidates []Candidate, already map[ecs.EntityID]struct{}) []CollisionResult {
	var hits []CollisionResult
	for _, c := range candidates {
		if _, seen := already[c.ID]; seen {
			continue
		}
		if c.Radius <= 0 {
			continue
		}
		d := geom.Dist(pos, c.Pos)
		if d > c.Radius {
			continue
		}
		precision := 1 - d/c.Radius
		hits = append(hits, CollisionResult{Target: c.ID, Precision: precision})
	}
	return hits
}

// Manager records prometheus counters for fired/collided projectiles
// (spec §4.7, SPEC_FULL §10.5). It does not move projectiles or check
// collisions; State.Advance and CheckCollision do that.
type Manager struct {
	metrics *telemetry.Metrics
	kindLabel func(entity.ProjectileType) string
}

func NewManager(m *telemetry.Metrics) *Manager {
	return &Manager{metrics: m, kindLabel: defaultKindLabel}
}

func defaultKindLabel(k entity.ProjectileType) string {
	switch k {
	case entity.ProjectileCharged:
		return "charged"
	case entity.ProjectileIntensified:
		return "intensified"
	default:
		return "normal"
	}
}

// RecordLaunch increments the fired counter, labeled by projectile
// kind (SPEC_FULL §10.5, grounded on Tank-Royale-2's
// ProjectilesFired.WithLabelValues(weaponType) idiom).
func (m *Manager) RecordLaunch(kind entity.ProjectileType) {
	if m.metrics == nil {
		return
	}
	m.metrics.ProjectilesFired.WithLabelValues(m.kindLabel(kind)).Inc()
}

// RecordCollision increments the collision counter for one confirmed
// hit (SPEC_FULL §10.5).
func (m *Manager) RecordCollision(projectileType string) {
	if m.metrics == nil {
		return
	}
	m.metrics.ProjectileCollisions.WithLabelValues(projectileType).Inc()
}
