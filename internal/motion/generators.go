package motion

import (
	"math"
	"math/rand"
	"time"

	"github.com/gamenio/arenacore/internal/geom"
)

// IdleGenerator is the always-valid fallback: never terminates, never
// moves (spec §4.3).
type IdleGenerator struct {
	At geom.Point
}

func (g *IdleGenerator) Initialize() {}
func (g *IdleGenerator) Finalize()   {}
func (g *IdleGenerator) Update(time.Duration) (geom.Point, bool) {
	return g.At, false
}

// ExploreProvider supplies the next district-exploration goal tile, or
// reports that exploring is no longer possible (spec §4.3: "terminates
// when cannot explore or replaced").
type ExploreProvider interface {
	NextExploreGoal() (geom.Point, bool)
}

// ExploreGenerator drives a bot toward successive unexplored tiles via
// a TargetStepGenerator, advancing Mover by one step each tick.
type ExploreGenerator struct {
	Provider ExploreProvider
	Step     StepGenerator
	Current  func() geom.Point
	goal     geom.Point
	haveGoal bool
}

func (g *ExploreGenerator) Initialize() {}
func (g *ExploreGenerator) Finalize()   {}

func (g *ExploreGenerator) Update(time.Duration) (geom.Point, bool) {
	if !g.haveGoal {
		goal, ok := g.Provider.NextExploreGoal()
		if !ok {
			return geom.Point{}, true
		}
		g.goal, g.haveGoal = goal, true
	}
	cur := g.Current()
	if cur == g.goal {
		g.haveGoal = false
		return cur, false
	}
	step, ok := g.Step.NextStep(cur, g.goal)
	if !ok {
		g.haveGoal = false
		return cur, false
	}
	return step, false
}

// TargetLocator resolves a chase/escape target's liveness and position
// each tick. Implemented by the entity/combat layer.
type TargetLocator interface {
	Valid() bool  // target exists, is in world, and (for chase) the chaser is alive
	Pos() geom.Point
}

// SimpleChaseGenerator walks straight toward the target's current tile
// using a step generator, no dodge behaviour (spec §4.3).
type SimpleChaseGenerator struct {
	Target  TargetLocator
	Step    StepGenerator
	Current func() geom.Point
}

func (g *SimpleChaseGenerator) Initialize() {}
func (g *SimpleChaseGenerator) Finalize()   {}

func (g *SimpleChaseGenerator) Update(time.Duration) (geom.Point, bool) {
	if !g.Target.Valid() {
		return geom.Point{}, true
	}
	cur := g.Current()
	step, ok := g.Step.NextStep(cur, g.Target.Pos())
	if !ok {
		return cur, false
	}
	return step, false
}

// PointGenerator walks to a fixed goal tile and finishes on arrival
// (spec §4.3: Point(goal, bypass_enemy)). BypassEnemy is carried for
// callers that need it to choose between a TargetStepGenerator and an
// enemy-aware step source; this package only needs the flag's
// presence, not its geometry, which callers fold into Step.
type PointGenerator struct {
	Goal        geom.Point
	BypassEnemy bool
	Step        StepGenerator
	Current     func() geom.Point
}

func (g *PointGenerator) Initialize() {}
func (g *PointGenerator) Finalize()   {}

func (g *PointGenerator) Update(time.Duration) (geom.Point, bool) {
	cur := g.Current()
	if cur == g.Goal {
		return cur, true
	}
	step, ok := g.Step.NextStep(cur, g.Goal)
	if !ok {
		return cur, true
	}
	if step == g.Goal {
		return step, true
	}
	return step, false
}

// SeekGenerator walks a bot through a queue of hiding spots, finishing
// once none remain (spec §4.3: Seek(initial_hiding_spot)).
type SeekGenerator struct {
	Pending []geom.Point
	Step    StepGenerator
	Current func() geom.Point
	idx     int
}

func (g *SeekGenerator) Initialize() {}
func (g *SeekGenerator) Finalize()   {}

func (g *SeekGenerator) Update(time.Duration) (geom.Point, bool) {
	if g.idx >= len(g.Pending) {
		return geom.Point{}, true
	}
	goal := g.Pending[g.idx]
	cur := g.Current()
	if cur == goal {
		g.idx++
		if g.idx >= len(g.Pending) {
			return cur, true
		}
		goal = g.Pending[g.idx]
	}
	step, ok := g.Step.NextStep(cur, goal)
	if !ok {
		g.idx++
		return cur, g.idx >= len(g.Pending)
	}
	return step, false
}

// Dodge proficiency bounds (spec §4.3).
const (
	DodgeDurationUnitMin    = 3000 * time.Millisecond
	DodgeDurationUnitMax    = 5000 * time.Millisecond
	DodgeDurationItemBoxMin = 500 * time.Millisecond
	DodgeDurationItemBoxMax = 2000 * time.Millisecond
)

// IncomingProjectile is what a SmartChase generator needs from the
// bot's projectile threat manager to dodge (spec §4.3 step 1-2).
type IncomingProjectile struct {
	Origin, Velocity geom.Vec2
}

// SmartChaseProvider supplies everything the SmartChase generator
// reads from the wider simulation each tick: the ranked incoming
// projectile (if any), attack range/effective dodge geometry, safe
// zone info, and dodge proficiency bounds.
type SmartChaseProvider interface {
	TopThreatProjectile() (IncomingProjectile, bool)
	EffectiveDodgeChance() float64
	DodgeReactionBounds() (min, max time.Duration)
	OptimalDodgeDistance() float64
	AttackRange() float64
	SafeZoneCenter() geom.Vec2
	IsOutsideSafeDistance(pos geom.Vec2) bool
	TargetLockedLastTick() bool
	IsItemBoxTarget() bool
}

// SmartChaseGenerator implements spec §4.3's hardest generator: dodge
// incoming projectiles imperfectly while circling or closing on a
// target.
type SmartChaseGenerator struct {
	Target   TargetLocator
	Provider SmartChaseProvider
	Current  func() geom.Point
	Step     StepGenerator
	Rng      *rand.Rand

	dodgeDir       int // +1 clockwise, -1 anticlockwise, 0 none
	nextDodgeDir   int
	reactionTimer  time.Duration
	reactionPeriod time.Duration
	dodgeTimer     time.Duration
	dodgeActive    bool
}

func (g *SmartChaseGenerator) Initialize() {
	min, max := g.Provider.DodgeReactionBounds()
	g.reactionPeriod = randDuration(g.Rng, min, max)
}

func (g *SmartChaseGenerator) Finalize() {}

func (g *SmartChaseGenerator) Update(dt time.Duration) (geom.Point, bool) {
	if !g.Target.Valid() {
		return geom.Point{}, true
	}
	cur := g.Current()
	curVec := tileToVec(cur)
	targetVec := tileToVec(g.Target.Pos())

	// Step 1-2: projectile dodge with imperfect reaction.
	if proj, ok := g.Provider.TopThreatProjectile(); ok {
		g.nextDodgeDir = dodgeSide(proj, curVec)
		if g.Rng.Float64() > g.Provider.EffectiveDodgeChance() {
			g.nextDodgeDir = -g.nextDodgeDir
		}
	}
	g.reactionTimer += dt
	if g.reactionTimer >= g.reactionPeriod {
		g.reactionTimer = 0
		min, max := g.Provider.DodgeReactionBounds()
		g.reactionPeriod = randDuration(g.Rng, min, max)
		g.dodgeDir = g.nextDodgeDir
		lo, hi := DodgeDurationUnitMin, DodgeDurationUnitMax
		if g.Provider.IsItemBoxTarget() {
			lo, hi = DodgeDurationItemBoxMin, DodgeDurationItemBoxMax
		}
		g.dodgeTimer = randDuration(g.Rng, lo, hi)
		g.dodgeActive = g.dodgeDir != 0
	}
	if g.dodgeActive {
		g.dodgeTimer -= dt
		if g.dodgeTimer <= 0 {
			g.dodgeActive = false
		}
	}

	dist := geom.Dist(curVec, targetVec)
	if dist <= g.Provider.AttackRange() {
		return g.circle(cur, curVec, targetVec), false
	}
	// Step 4: out of range, chase toward closest reachable tile.
	step, ok := g.Step.NextStep(cur, g.Target.Pos())
	if !ok {
		return cur, false
	}
	return step, false
}

func (g *SmartChaseGenerator) circle(cur geom.Point, curVec, targetVec geom.Vec2) geom.Point {
	radius := g.Provider.OptimalDodgeDistance()
	dist := geom.Dist(curVec, targetVec)
	if !g.dodgeActive && radius > dist {
		radius = dist
	}
	if radius < 1 {
		radius = 1
	}

	dir := 1.0
	if g.dodgeDir < 0 {
		dir = -1.0
	}
	if g.Provider.IsOutsideSafeDistance(curVec) {
		safe := g.Provider.SafeZoneCenter()
		toSafe := geom.AngleOf(targetVec, safe)
		curAngle := geom.AngleOf(targetVec, curVec)
		if angleDelta(curAngle, toSafe) < 0 {
			dir = -1
		} else {
			dir = 1
		}
	}

	arcStep := circleArcStep(radius)
	angle := geom.AngleOf(targetVec, curVec) + dir*arcStep
	next := geom.CirclePoint(targetVec, radius, angle)
	return vecToTile(next)
}

// dodgeSide returns +1/-1 depending on which side of the projectile's
// predicted line of travel the bot stands (spec §4.3 step 1).
func dodgeSide(p IncomingProjectile, botPos geom.Vec2) int {
	toBotX := botPos[0] - p.Origin[0]
	toBotY := botPos[1] - p.Origin[1]
	cross := p.Velocity[0]*toBotY - p.Velocity[1]*toBotX
	if cross >= 0 {
		return 1
	}
	return -1
}

// circleArcStep computes the DODGE_DISTANCE/radius angular step (spec
// §4.3: "arc step = DODGE_DISTANCE / radius radians").
const dodgeDistance = 40.0 // world units covered per dodge tick, matching a bot's typical move-speed budget

func circleArcStep(radius float64) float64 {
	if radius < 1 {
		radius = 1
	}
	return dodgeDistance / radius
}

func angleDelta(from, to float64) float64 {
	d := to - from
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func randDuration(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}

// tileToVec/vecToTile convert between integer tile coordinates and
// the float vector space circle geometry needs.
func tileToVec(p geom.Point) geom.Vec2 { return geom.Vec2{float64(p.X), float64(p.Y)} }
func vecToTile(v geom.Vec2) geom.Point {
	return geom.Point{X: int(math.Round(v[0])), Y: int(math.Round(v[1]))}
}

// EscapeProvider supplies everything the Escape generator needs from
// the wider simulation (spec §4.3).
type EscapeProvider interface {
	InSafeZone(p geom.Point) bool
	RandomSafePatrolPoint() (geom.Point, bool)
	ExploreGoalOrigin() (geom.Point, bool)
	WithinEnemyAttackRange(p geom.Point) bool
	EnemyPos() geom.Point
	AttackAbandonDistance() float64
}

// EscapeGenerator routes away from an attacker while respecting the
// safe zone and the bot's current explore goal (spec §4.3).
type EscapeGenerator struct {
	Target   TargetLocator
	Provider EscapeProvider
	Step     StepGenerator
	Current  func() geom.Point

	routedToSafety bool
	goal           geom.Point
	haveGoal       bool
}

func (g *EscapeGenerator) Initialize() {}
func (g *EscapeGenerator) Finalize()   {}

func (g *EscapeGenerator) Update(time.Duration) (geom.Point, bool) {
	if !g.Target.Valid() {
		return geom.Point{}, true
	}
	cur := g.Current()

	if g.routedToSafety && g.haveGoal && cur == g.goal {
		g.routedToSafety, g.haveGoal = false, false
	}

	if !g.haveGoal {
		switch {
		case !g.Provider.InSafeZone(cur):
			if p, ok := g.Provider.RandomSafePatrolPoint(); ok {
				g.goal, g.haveGoal, g.routedToSafety = p, true, true
			}
		default:
			if origin, ok := g.Provider.ExploreGoalOrigin(); ok && !g.Provider.WithinEnemyAttackRange(origin) {
				g.goal, g.haveGoal = origin, true
			} else {
				enemy := g.Provider.EnemyPos()
				fleeDist := g.Provider.AttackAbandonDistance()
				if d := geom.Dist(tileToVec(cur), tileToVec(enemy)); d > fleeDist {
					fleeDist = d
				}
				dir := geom.AngleOf(tileToVec(enemy), tileToVec(cur))
				fleeVec := geom.CirclePoint(tileToVec(enemy), fleeDist, dir)
				g.goal, g.haveGoal = vecToTile(fleeVec), true
			}
		}
	}
	if !g.haveGoal {
		return cur, false
	}

	step, ok := g.Step.NextStep(cur, g.goal)
	if !ok {
		g.haveGoal = false
		return cur, false
	}
	return g.bypassEnemy(cur, step), false
}

// bypassEnemy adjusts the raw step using tangent-circle geometry
// around the enemy's position so the escapee doesn't cut straight
// through attack range (spec §4.3 step 4).
func (g *EscapeGenerator) bypassEnemy(cur, step geom.Point) geom.Point {
	enemy := tileToVec(g.Provider.EnemyPos())
	radius := g.Provider.AttackAbandonDistance()
	botVec := tileToVec(cur)
	goalVec := tileToVec(step)

	t1, t2, ok := geom.TangentPoints(enemy, radius, botVec)
	if !ok {
		return step
	}
	g1, g2, ok2 := geom.TangentPoints(enemy, radius, goalVec)
	if !ok2 {
		return step
	}
	best := t1
	bestDist := geom.Dist(t1, g1)
	for _, cand := range [][2]geom.Vec2{{t1, g2}, {t2, g1}, {t2, g2}} {
		d := geom.Dist(cand[0], cand[1])
		if d < bestDist {
			bestDist, best = d, cand[0]
		}
	}
	return vecToTile(best)
}
