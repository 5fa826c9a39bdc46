// deps.go adapts one arenaSim robot into the seams bot.Actor and the
// motion package's generators need: bot.Deps, motion.TargetLocator,
// motion.SmartChaseProvider, motion.EscapeProvider, and
// motion.ExploreProvider. Grounded on internal/bot's own Deps
// interface doc (the seam a battle-tick wiring layer implements) and
// on internal/motion/generators.go's provider interfaces.
package main

import (
	"sort"
	"time"

	"github.com/gamenio/arenacore/internal/combat"
	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/data"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/motion"
	"github.com/gamenio/arenacore/internal/target"
	"go.uber.org/zap"
)

// tileVec converts a tile-space point to the float vector the geom
// distance/circle helpers operate on.
func tileVec(p geom.Point) geom.Vec2 { return geom.Vec2{float64(p.X), float64(p.Y)} }

// Demo-scope combat constants: this harness has no combat-power
// formula or per-stat derivation (out of this module's scope per
// spec.md's Non-goals on damage-formula ownership), so melee range and
// dodge geometry use fixed values instead of a stat-matrix lookup.
const (
	meleeAttackRange     = 1.5
	optimalDodgeDistance = 3.0
	defaultDodgeChance   = 0.5
	sightDistanceTiles   = 10.0
)

// robotDeps implements bot.Deps for one robot entity. It never
// mutates entity state directly outside of Explore bookkeeping: moves
// and combat actions flow back through the Outcome Actor.Tick returns,
// applied by arenaSim.applyOutcome.
type robotDeps struct {
	sim     *arenaSim
	self    ecs.EntityID
	threats *target.UnitThreatManager
	nature  *data.NatureTemplate
}

func (d *robotDeps) Pos() geom.Point {
	u, ok := d.sim.units[d.self]
	if !ok {
		return geom.Point{}
	}
	return u.robot.Pos()
}

func (d *robotDeps) HP() (int32, int32) {
	u, ok := d.sim.units[d.self]
	if !ok {
		return 0, 0
	}
	return u.robot.CurrentHealth, u.robot.MaxHealth
}

func (d *robotDeps) InSafeZone() bool {
	return d.sim.battleInst.IsInSafeZone(d.Pos())
}

func (d *robotDeps) Dist(candidate ecs.EntityID) float64 {
	other, ok := d.sim.units[candidate]
	if !ok {
		return 1e9
	}
	return geom.Dist(tileVec(d.Pos()), tileVec(other.robot.Pos()))
}

func (d *robotDeps) Locator(id ecs.EntityID) motion.TargetLocator {
	return robotLocator{sim: d.sim, id: id}
}

func (d *robotDeps) SmartChaseProvider(id ecs.EntityID) motion.SmartChaseProvider {
	return &smartChaseAdapter{sim: d.sim, self: d.self, target: id, nature: d.nature}
}

// ItemPos never resolves: this harness spawns robots only, no Item/
// ItemBox entities (DESIGN.md: the item/loot pipeline is exercised by
// internal/spawn's and internal/target's own unit tests instead of a
// headless demo with no collection UI to observe it).
func (d *robotDeps) ItemPos(ecs.EntityID) (geom.Point, bool) { return geom.Point{}, false }

func (d *robotDeps) ChaseStep() motion.StepGenerator {
	return motion.NewTargetStepGenerator(d.sim.finder)
}

func (d *robotDeps) EscapeStep() motion.StepGenerator {
	return motion.NewTargetStepGenerator(d.sim.finder)
}

func (d *robotDeps) ExploreStep() motion.StepGenerator {
	return motion.NewRandomStepGenerator(d.sim.m, d.sim.rng)
}

func (d *robotDeps) Explore() motion.ExploreProvider {
	return &districtExplorer{sim: d.sim, self: d.self}
}

func (d *robotDeps) Escape() motion.EscapeProvider {
	return &escapeAdapter{sim: d.sim, self: d.self, threats: d.threats, nature: d.nature}
}

// HidingSpots returns the map's concealable tiles nearest to this
// robot, capped to a handful of candidates (spec §4.3 "Seek" picks
// among nearby hiding spots, not the whole map's pool).
func (d *robotDeps) HidingSpots() []geom.Point {
	all := d.sim.m.HidingSpots()
	if len(all) == 0 {
		return nil
	}
	pos := d.Pos()
	spots := make([]geom.Point, len(all))
	copy(spots, all)
	sort.Slice(spots, func(i, j int) bool {
		return geom.Dist(tileVec(pos), tileVec(spots[i])) < geom.Dist(tileVec(pos), tileVec(spots[j]))
	})
	if len(spots) > 5 {
		spots = spots[:5]
	}
	return spots
}

// robotLocator implements motion.TargetLocator over a live robot
// lookup, so a chase/escape generator always sees the target's latest
// position without caching anything stale itself.
type robotLocator struct {
	sim *arenaSim
	id  ecs.EntityID
}

func (l robotLocator) Valid() bool {
	u, ok := l.sim.units[l.id]
	return ok && !u.robot.Dead
}

func (l robotLocator) Pos() geom.Point {
	u, ok := l.sim.units[l.id]
	if !ok {
		return geom.Point{}
	}
	return u.robot.Pos()
}

// smartChaseAdapter implements motion.SmartChaseProvider. Live
// projectiles (internal/projectile, wired into sim.go's active-update
// phase) aren't cross-referenced into a bot's own dodge math here:
// TopThreatProjectile always reports none, so the dodge behaviour it
// would gate degrades to plain circling, which SmartChaseGenerator
// already handles via EffectiveDodgeChance/OptimalDodgeDistance.
type smartChaseAdapter struct {
	sim    *arenaSim
	self   ecs.EntityID
	target ecs.EntityID
	nature *data.NatureTemplate
}

func (a *smartChaseAdapter) TopThreatProjectile() (motion.IncomingProjectile, bool) {
	return motion.IncomingProjectile{}, false
}

func (a *smartChaseAdapter) EffectiveDodgeChance() float64 { return defaultDodgeChance }

func (a *smartChaseAdapter) DodgeReactionBounds() (time.Duration, time.Duration) {
	if a.nature != nil && a.nature.MaxDodgeReactionMs > 0 {
		return time.Duration(a.nature.MinDodgeReactionMs) * time.Millisecond,
			time.Duration(a.nature.MaxDodgeReactionMs) * time.Millisecond
	}
	return a.sim.cfg.Bot.MinDodgeReaction, a.sim.cfg.Bot.MaxDodgeReaction
}

func (a *smartChaseAdapter) OptimalDodgeDistance() float64 { return optimalDodgeDistance }
func (a *smartChaseAdapter) AttackRange() float64          { return meleeAttackRange }

func (a *smartChaseAdapter) SafeZoneCenter() geom.Vec2 { return a.sim.battleInst.Center }

func (a *smartChaseAdapter) IsOutsideSafeDistance(pos geom.Vec2) bool {
	return geom.Dist(pos, a.sim.battleInst.Center) > float64(a.sim.battleInst.SafeDistance)
}

// TargetLockedLastTick always reports true: every "smart_chase"
// command in this harness targets the bot's already-ranked top
// hostile, so the lock never drops mid-chase the way it could with a
// client-driven target switch.
func (a *smartChaseAdapter) TargetLockedLastTick() bool { return true }
func (a *smartChaseAdapter) IsItemBoxTarget() bool      { return false }

// escapeAdapter implements motion.EscapeProvider. It resolves "the
// enemy" from the same UnitThreatManager the owning Actor just
// recomputed this tick, since Deps.Escape() takes no target argument.
type escapeAdapter struct {
	sim     *arenaSim
	self    ecs.EntityID
	threats *target.UnitThreatManager
	nature  *data.NatureTemplate
}

func (e *escapeAdapter) InSafeZone(p geom.Point) bool {
	return e.sim.battleInst.IsInSafeZone(p)
}

func (e *escapeAdapter) RandomSafePatrolPoint() (geom.Point, bool) {
	pts := e.sim.battleInst.PatrolPointsWithinRadius(e.sim.battleInst.SafeRadius)
	if len(pts) == 0 {
		return geom.Point{}, false
	}
	return pts[e.sim.rng.Intn(len(pts))], true
}

func (e *escapeAdapter) ExploreGoalOrigin() (geom.Point, bool) {
	u, ok := e.sim.units[e.self]
	if !ok || !u.robot.Explore.HasSource {
		return geom.Point{}, false
	}
	return u.robot.Explore.Source, true
}

func (e *escapeAdapter) enemyPos() (geom.Point, bool) {
	ranked := e.threats.Ranked()
	if len(ranked) == 0 {
		return geom.Point{}, false
	}
	u, ok := e.sim.units[ranked[0].Target]
	if !ok {
		return geom.Point{}, false
	}
	return u.robot.Pos(), true
}

func (e *escapeAdapter) WithinEnemyAttackRange(p geom.Point) bool {
	enemy, ok := e.enemyPos()
	if !ok {
		return false
	}
	return geom.Dist(tileVec(p), tileVec(enemy)) <= meleeAttackRange
}

func (e *escapeAdapter) EnemyPos() geom.Point {
	p, _ := e.enemyPos()
	return p
}

func (e *escapeAdapter) AttackAbandonDistance() float64 {
	if e.nature != nil && e.nature.AttackAbandonDistance > 0 {
		return e.nature.AttackAbandonDistance
	}
	return 12
}

// districtExplorer implements motion.ExploreProvider by round-robin
// cycling a robot's current district's registered waypoints (spec §3
// ExploreBookkeeping.OrderMap: "district id -> visit order").
type districtExplorer struct {
	sim  *arenaSim
	self ecs.EntityID
}

func (e *districtExplorer) NextExploreGoal() (geom.Point, bool) {
	u, ok := e.sim.units[e.self]
	if !ok {
		return geom.Point{}, false
	}
	d := e.sim.m.DistrictID(u.robot.Pos())
	wps := e.sim.m.DistrictWaypoints(d)
	if len(wps) == 0 {
		return geom.Point{}, false
	}
	if u.robot.Explore.OrderMap == nil {
		u.robot.Explore.OrderMap = make(map[uint32]int)
	}
	idx := u.robot.Explore.OrderMap[d] % len(wps)
	u.robot.Explore.OrderMap[d] = idx + 1
	goal := wps[idx]
	u.robot.Explore.Source, u.robot.Explore.HasSource = u.robot.Pos(), true
	return goal, true
}

// natureThreatCalc implements target.ThreatCalculator from one
// robot's point of view, deriving Distance/EnemyHealth/
// EnemyChargedPower the way a bot's nature-weighted threat score needs
// them (spec §4.4). ReceivedDamage is not computed here: it already
// accumulates on the UnitThreatManager via Track, called from
// arenaSim.onProjectileHit.
type natureThreatCalc struct {
	sim  *arenaSim
	self ecs.EntityID
}

func (c *natureThreatCalc) CalcThreat(enemy ecs.EntityID, kind target.ThreatType, _ target.UnitThreatData) float64 {
	self, ok := c.sim.units[c.self]
	if !ok {
		return 0
	}
	foe, ok := c.sim.units[enemy]
	if !ok {
		return 0
	}
	switch kind {
	case target.ThreatDistance:
		dist := geom.Dist(tileVec(self.robot.Pos()), tileVec(foe.robot.Pos()))
		threat := sightDistanceTiles - dist
		if threat < 0 {
			threat = 0
		}
		return threat
	case target.ThreatEnemyHealth:
		if foe.robot.MaxHealth <= 0 {
			return 0
		}
		return 1 - float64(foe.robot.CurrentHealth)/float64(foe.robot.MaxHealth)
	case target.ThreatEnemyChargedPower:
		if foe.stamina.MaxStamina <= 0 {
			return 0
		}
		return float64(foe.stamina.Stamina) / float64(foe.stamina.MaxStamina)
	}
	return 0
}

// simpleRewarder implements combat.Rewarder with a fixed money/XP-per-
// damage-point split: this harness has no player wallet or persisted
// character sheet to credit (spec.md's session/persistence layers are
// Non-goals here), so ApplyReward only logs what it would have
// granted.
type simpleRewarder struct {
	sim *arenaSim
}

func (r *simpleRewarder) CalcReward(_, _ ecs.EntityID, damagePoints int32) combat.Reward {
	return combat.Reward{Money: int64(damagePoints) * 2, Experience: int64(damagePoints) * 5}
}

func (r *simpleRewarder) ApplyReward(attacker, victim ecs.EntityID, reward combat.Reward) {
	r.sim.log.Info("reward apportioned",
		zap.Uint64("attacker", uint64(attacker)),
		zap.Uint64("victim", uint64(victim)),
		zap.Int64("money", reward.Money),
		zap.Int64("experience", reward.Experience))
	r.sim.metrics.RewardApportioned.WithLabelValues("money").Add(float64(reward.Money))
	r.sim.metrics.RewardApportioned.WithLabelValues("experience").Add(float64(reward.Experience))
}
