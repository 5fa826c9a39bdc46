// sim.go bundles the demo harness's per-tick simulation: robot
// spawning, spatial-grid placement, visibility-gated threat tracking,
// projectile-mediated attack resolution, and battle-lifecycle
// advancement, scheduled phase-by-phase on a core/system.Runner.
//
// Grounded on internal/core/system.Phase's own doc comment, which
// names this exact phase list ("patrol cache refresh, clear grid
// marks, player update, active-object update, relocation, spawn
// manager, delta flush, battle state advance, cleanup") as
// Battle.tick's top-level control flow; and on the teacher's
// cmd/l1jgo/main.go run() step ordering for how a harness wires
// data/map/battle construction ahead of the tick loop. The per-phase
// bodies are grounded on internal/grid, internal/visibility,
// internal/projectile, internal/battle, internal/bot, internal/combat,
// and internal/spawn for the algorithms they wire together.
package main

import (
	"math/rand"
	"time"

	"github.com/gamenio/arenacore/internal/battle"
	"github.com/gamenio/arenacore/internal/combat"
	"github.com/gamenio/arenacore/internal/config"
	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/core/event"
	"github.com/gamenio/arenacore/internal/core/system"
	"github.com/gamenio/arenacore/internal/data"
	"github.com/gamenio/arenacore/internal/entity"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/grid"
	"github.com/gamenio/arenacore/internal/jps"
	"github.com/gamenio/arenacore/internal/mapdata"
	"github.com/gamenio/arenacore/internal/projectile"
	"github.com/gamenio/arenacore/internal/protocol"
	"github.com/gamenio/arenacore/internal/scripting"
	"github.com/gamenio/arenacore/internal/spawn"
	"github.com/gamenio/arenacore/internal/target"
	"github.com/gamenio/arenacore/internal/telemetry"
	"github.com/gamenio/arenacore/internal/visibility"

	"github.com/gamenio/arenacore/internal/bot"
	"go.uber.org/zap"
)

// attackDamage is the demo harness's fixed per-hit damage: this
// module's scope ends at the simulation core, with no combat-power
// formula of its own (spec.md leaves attack-power resolution to a
// caller-supplied stat/equipment layer this harness doesn't build).
const attackDamage = 8

// projectileSpeedUnitsPerSec and projectileHitRadiusUnits size every
// attack's flight: this harness doesn't distinguish melee from ranged
// combat kinds, so even a melee-range hit travels a short, fast
// projectile arc rather than resolving instantly — the same delivery
// mechanism internal/projectile models for every attack (spec §4.7).
const (
	projectileSpeedUnitsPerSec = 600.0
	projectileHitRadiusUnits   = 40.0
)

// robotUnit bundles one spawned robot's entity component and its
// per-unit collaborators (stamina machine, threat/wish managers,
// reward ledger, and bot actor).
type robotUnit struct {
	id      ecs.EntityID
	robot   *entity.Robot
	nature  *data.NatureTemplate
	stamina *combat.StaminaMachine
	threats *target.UnitThreatManager
	wishes  *target.WishManager
	rewards *combat.RewardManager
	deps    *robotDeps
	actor   *bot.Actor

	coord grid.Coord
}

// liveProjectile is one in-flight attack: a projectile.State advanced
// every active-update phase until it collides with its victim or
// times out (spec §4.7).
type liveProjectile struct {
	attacker, victim ecs.EntityID
	state            *projectile.State
	collided         map[ecs.EntityID]struct{}
}

// projectileHitEvent is emitted via the core/event.Bus when a live
// projectile collides with its victim; it is consumed one tick later
// (the bus's own double-buffering, documented on event.Bus) by
// arenaSim.onProjectileHit, which applies damage/threat/reward
// bookkeeping.
type projectileHitEvent struct {
	Attacker, Victim ecs.EntityID
	Damage           int32
}

// robotRelocatedEvent is emitted for every robot that crosses a grid
// cell boundary this tick (spec §4.1 step 3's relocation sweep),
// consumed by a debug-logging subscriber standing in for the notifier
// pipeline a transport layer would otherwise drive.
type robotRelocatedEvent struct {
	ID ecs.EntityID
	To grid.Coord
}

// arenaSim owns every collaborator one battle instance needs and
// drives them one tick at a time from cmd/arenad's main loop via a
// core/system.Runner (see newArenaSim's phase registration).
type arenaSim struct {
	cfg *config.Config
	log *zap.Logger

	world  *ecs.World
	robots *ecs.PtrComponentStore[entity.Robot]

	m      *mapdata.Map
	finder *jps.Finder

	grid *grid.Grid
	vis  *visibility.Manager

	natures *data.NatureTable
	filler  *spawn.RobotFiller
	engine  *scripting.Engine

	battleInst *battle.Battle
	metrics    *telemetry.Metrics

	projMgr         *projectile.Manager
	liveProjectiles []*liveProjectile

	bus *event.Bus

	guids      *entity.GUIDCounters
	guidByGUID map[entity.GUID]ecs.EntityID
	rng        *rand.Rand

	tileWidth, tileHeight float64

	populationCap int
	units         map[ecs.EntityID]*robotUnit

	runner *system.Runner
	now    time.Time

	relocated      []ecs.EntityID
	lastAliveCount int32
}

func newArenaSim(
	cfg *config.Config,
	log *zap.Logger,
	m *mapdata.Map,
	finder *jps.Finder,
	natures *data.NatureTable,
	filler *spawn.RobotFiller,
	engine *scripting.Engine,
	battleInst *battle.Battle,
	metrics *telemetry.Metrics,
	rng *rand.Rand,
) *arenaSim {
	world := ecs.NewWorld()
	robots := ecs.NewPtrComponentStore[entity.Robot]()
	world.Registry().Register(robots)

	g := grid.New()

	s := &arenaSim{
		cfg:           cfg,
		log:           log,
		world:         world,
		robots:        robots,
		m:             m,
		finder:        finder,
		grid:          g,
		vis:           visibility.NewManager(g),
		natures:       natures,
		filler:        filler,
		engine:        engine,
		battleInst:    battleInst,
		metrics:       metrics,
		projMgr:       projectile.NewManager(metrics),
		bus:           event.NewBus(),
		guids:         &entity.GUIDCounters{},
		guidByGUID:    make(map[entity.GUID]ecs.EntityID),
		rng:           rng,
		tileWidth:     float64(m.Info.TileWidth),
		tileHeight:    float64(m.Info.TileHeight),
		populationCap: m.Info.PopulationCap,
		units:         make(map[ecs.EntityID]*robotUnit, m.Info.PopulationCap),
	}

	event.Subscribe(s.bus, s.onProjectileHit)
	event.Subscribe(s.bus, s.onRobotRelocated)

	s.runner = system.NewRunner()
	s.runner.Register(funcSystem{system.PhasePreTick, s.preTick})
	// PhasePlayerUpdate has no registered system: this harness spawns
	// no Players (DESIGN.md's cmd/arenad scope simplifications).
	s.runner.Register(funcSystem{system.PhaseActiveUpdate, s.activeUpdate})
	s.runner.Register(funcSystem{system.PhaseRelocate, s.relocatePhase})
	s.runner.Register(funcSystem{system.PhaseSpawn, s.spawnPhase})
	s.runner.Register(funcSystem{system.PhaseDeltaFlush, s.deltaFlushPhase})
	s.runner.Register(funcSystem{system.PhaseBattleAdvance, s.battleAdvancePhase})
	s.runner.Register(funcSystem{system.PhaseCleanup, s.cleanupPhase})

	return s
}

// funcSystem adapts a plain method value to core/system.System, so
// arenaSim's phase bodies can stay ordinary methods instead of each
// needing its own named type.
type funcSystem struct {
	phase system.Phase
	fn    func(dt time.Duration)
}

func (f funcSystem) Phase() system.Phase     { return f.phase }
func (f funcSystem) Update(dt time.Duration) { f.fn(dt) }

// guidOf resolves an EntityID to its GUID for the threat manager's
// tie-break comparison (spec §4.4: "ties: lower GUID first").
func (s *arenaSim) guidOf(id ecs.EntityID) uint32 {
	u, ok := s.units[id]
	if !ok {
		return 0
	}
	return uint32(u.robot.GUID)
}

// worldPos converts a tile-space point to the world-unit coordinates
// internal/grid's cells are keyed on (spec §4.1's GRID_SIZE cells are
// sized in world units, not tiles).
func (s *arenaSim) worldPos(p geom.Point) (int32, int32) {
	return int32(float64(p.X) * s.tileWidth), int32(float64(p.Y) * s.tileHeight)
}

func (s *arenaSim) worldVec(p geom.Point) geom.Vec2 {
	return geom.Vec2{float64(p.X) * s.tileWidth, float64(p.Y) * s.tileHeight}
}

// spawnRobot materializes a spawn.RobotSpawn roll into a live entity
// plus its bot actor, supporting collaborators, and grid placement.
func (s *arenaSim) spawnRobot(rs spawn.RobotSpawn) {
	nature := s.natures.Get(rs.NatureID)
	if nature == nil {
		s.log.Warn("robot spawn referenced unknown nature, skipping", zap.Int32("nature_id", rs.NatureID))
		return
	}

	id := s.world.CreateEntity()
	guid := s.guids.Next(entity.KindRobot)

	robot := &entity.Robot{}
	robot.GUID = guid
	robot.InWorld = true
	robot.Visible = true
	robot.X, robot.Y = int32(rs.Pos.X), int32(rs.Pos.Y)
	robot.MapID = int16(s.m.Info.MapID)
	robot.MaxHealth, robot.CurrentHealth = nature.MaxHealth, nature.MaxHealth
	robot.TemplateID = entity.RobotTemplateID(rs.NatureID)
	robot.Level = rs.Level
	robot.Country = rs.Country
	s.robots.Set(id, robot)

	stamina := &combat.StaminaMachine{
		Stamina:                        nature.MaxStamina,
		MaxStamina:                     nature.MaxStamina,
		ChargeConsumesStaminaPerSecond: nature.ChargeConsumeRate,
		RegenRate:                      nature.StaminaRegenRate,
	}

	threats := target.NewUnitThreatManager(&natureThreatCalc{sim: s, self: id})
	threats.Mods = nature.ThreatModifierMatrix()

	deps := &robotDeps{sim: s, self: id, nature: nature, threats: threats}

	u := &robotUnit{
		id:      id,
		robot:   robot,
		nature:  nature,
		stamina: stamina,
		threats: threats,
		wishes:  target.NewWishManager(),
		rewards: combat.NewRewardManager(s.cfg.Combat.AwardeeIdleTimeout, s.log),
		deps:    deps,
	}

	setup := bot.Setup{
		Stamina:            stamina,
		Threats:            threats,
		Projectiles:        target.NewProjectileThreatManager(),
		Wishes:             u.wishes,
		AttackTakesStamina: nature.AttackTakesStamina,
		DecisionInterval:   500 * time.Millisecond,
	}
	u.actor = bot.NewActor(id, scripting.PolicyTraining, s.engine, deps, setup, s.rng)

	wx, wy := s.worldPos(robot.Pos())
	u.coord = s.grid.Insert(id, grid.KindBot, wx, wy)

	s.units[id] = u
	s.guidByGUID[guid] = id

	s.log.Info("robot spawned",
		zap.String("guid", guid.String()),
		zap.String("nature", nature.Name),
		zap.Int32("level", rs.Level),
		zap.String("country", rs.Country),
		zap.Int("x", rs.Pos.X), zap.Int("y", rs.Pos.Y))
}

// preTick implements core/system.PhasePreTick: clear last tick's grid
// marks, recompute the visibility bound from present observers, and
// swap the event bus's buffers so this tick can read what last tick
// emitted (spec §4.1 step 1; event.Bus's own double-buffering contract).
func (s *arenaSim) preTick(dt time.Duration) {
	s.grid.ClearMarks()
	s.grid.SetMaxVisibleRange(visibility.RecomputeMaxVisibleRange(s.vis.Observers(), int32(s.tileWidth)))
	s.bus.SwapBuffers()
}

// activeUpdate implements core/system.PhaseActiveUpdate: per-robot
// visibility/threat refresh, bot decision ticking, stamina advance,
// and in-flight projectile motion (spec §4.1 step 2, generalized from
// "bots + projectiles" to this harness's robots-only population).
func (s *arenaSim) activeUpdate(dt time.Duration) {
	s.updateVisibilityAndThreats()

	for id, u := range s.units {
		if u.robot.Dead {
			continue
		}
		if sync, hasSync, justFull := u.stamina.Update(dt); hasSync {
			s.log.Debug("stamina sync",
				zap.Uint64("robot", uint64(id)),
				zap.Int32("stamina", sync.Stamina),
				zap.Bool("fully_charged", justFull))
		}

		out := u.actor.Tick(s.now, dt, s.world, s.guidOf)
		s.applyOutcome(id, u, out)
	}

	s.advanceProjectiles(dt)
}

// updateVisibilityAndThreats drives each living robot's
// visibility.Observer off an internal/grid neighbourhood query (spec
// §4.1's AOI pipeline), then feeds the resulting create/drop diff into
// the robot's UnitThreatManager: newly visible robots become tracked
// hostiles, robots that leave sight are dropped. This replaces a flat
// all-pairs distance scan with the grid-bounded sweep the spec's
// per-tick pipeline describes.
func (s *arenaSim) updateVisibilityAndThreats() {
	sightWorld := int32(sightDistanceTiles * s.tileWidth)

	for id, u := range s.units {
		if u.robot.Dead {
			continue
		}
		wx, wy := s.worldPos(u.robot.Pos())
		obs := s.vis.Observer(id)
		obs.CenterX, obs.CenterY = wx, wy
		obs.HalfWidth, obs.HalfHeight = sightWorld, sightWorld

		var candidates []visibility.Candidate
		for _, cell := range s.grid.Neighbourhood(wx, wy, sightWorld) {
			for otherID := range cell.Bots {
				if otherID == id {
					continue
				}
				other, ok := s.units[otherID]
				if !ok || other.robot.Dead {
					continue
				}
				if !visibility.CanSeeOrDetect(obs, &other.robot.Header, false, false, false, 0) {
					continue
				}
				candidates = append(candidates, visibility.Candidate{ID: otherID, GUID: other.robot.GUID})
			}
		}

		threats := u.threats
		visibility.Sweep(obs, candidates, func(c visibility.Candidate) protocol.UpdateBlock {
			threats.Track(c.ID, 0)
			return protocol.UpdateBlock{Type: protocol.UpdateCreate, GUID: uint32(c.GUID), TypeID: protocol.TypeID(entity.KindRobot)}
		})
		for _, guid := range obs.Batch.OutOfRange.GUIDs {
			if otherID, ok := s.guidByGUID[entity.GUID(guid)]; ok {
				threats.Remove(otherID)
			}
		}
	}
}

// applyOutcome resolves the movement and combat side effects one
// bot.Outcome implies (spec §10.4: the caller, not Actor, applies
// Attack/Collect/StaminaSync).
func (s *arenaSim) applyOutcome(id ecs.EntityID, u *robotUnit, out bot.Outcome) {
	if out.HasMove {
		u.robot.X, u.robot.Y = int32(out.MoveTo.X), int32(out.MoveTo.Y)
		s.relocateIfNeeded(id, u)
	}
	if out.Attack {
		s.launchProjectile(id, u, out.AttackTarget)
	}
	// out.Collect is never set: this harness spawns no Item entities
	// (see robotDeps.ItemPos doc in deps.go).
}

// relocateIfNeeded queues a cross-cell grid move when a robot's new
// position falls in a different cell (spec §4.1 step 3: bots are
// deferred to the end-of-tick relocation sweep, unlike the eager
// player path this harness has no Players to exercise).
func (s *arenaSim) relocateIfNeeded(id ecs.EntityID, u *robotUnit) {
	wx, wy := s.worldPos(u.robot.Pos())
	newCoord := grid.ToCellCoord(wx, wy)
	if newCoord == u.coord {
		return
	}
	s.grid.QueueRelocate(id, grid.KindBot, u.coord, newCoord)
	u.coord = newCoord
	s.relocated = append(s.relocated, id)
}

// launchProjectile gates and deducts attack stamina, then launches a
// projectile.State flight from attacker to victim (spec §4.7); the
// actual damage/threat/reward application happens in onProjectileHit
// once the projectile collides.
func (s *arenaSim) launchProjectile(attackerID ecs.EntityID, attacker *robotUnit, victimID ecs.EntityID) {
	if !attacker.stamina.CanAttack(attacker.nature.AttackTakesStamina) {
		return
	}
	victim, ok := s.units[victimID]
	if !ok || victim.robot.Dead {
		return
	}
	attacker.stamina.DeductForAttack(attacker.nature.AttackTakesStamina)

	origin := s.worldVec(attacker.robot.Pos())
	dest := s.worldVec(victim.robot.Pos())
	dist := geom.Dist(origin, dest)
	duration := time.Duration(dist / projectileSpeedUnitsPerSec * float64(time.Second))
	if duration <= 0 {
		duration = time.Millisecond
	}

	state := projectile.NewState(projectile.TypeProjectile, origin, dest, duration)
	s.projMgr.RecordLaunch(entity.ProjectileNormal)
	s.liveProjectiles = append(s.liveProjectiles, &liveProjectile{
		attacker: attackerID,
		victim:   victimID,
		state:    state,
		collided: make(map[ecs.EntityID]struct{}, 1),
	})
}

// advanceProjectiles steps every in-flight projectile by dt, checking
// collision against its victim's current position each tick (spec
// §4.7: "collision check every tick against candidates obtained from
// the spatial grid") and emitting a projectileHitEvent on a confirmed
// hit. Finished (collided or flight-complete) projectiles are dropped.
func (s *arenaSim) advanceProjectiles(dt time.Duration) {
	live := s.liveProjectiles[:0]
	for _, p := range s.liveProjectiles {
		pos, finished := p.state.Advance(dt)

		if victim, ok := s.units[p.victim]; ok && !victim.robot.Dead {
			candidate := projectile.Candidate{
				ID:     p.victim,
				Pos:    s.worldVec(victim.robot.Pos()),
				Radius: projectileHitRadiusUnits,
			}
			hits := projectile.CheckCollision(pos, []projectile.Candidate{candidate}, p.collided)
			for _, h := range hits {
				p.collided[h.Target] = struct{}{}
				s.projMgr.RecordCollision("normal")
				event.Emit(s.bus, projectileHitEvent{Attacker: p.attacker, Victim: h.Target, Damage: attackDamage})
				finished = true
			}
		} else {
			finished = true
		}

		if !finished {
			live = append(live, p)
		}
	}
	s.liveProjectiles = live
}

// onProjectileHit applies a confirmed hit's damage, threat, and reward
// bookkeeping (spec §4.5, §4.6). It runs one tick after the hit was
// detected, per event.Bus's double-buffering — an acceptable lag for
// a demo harness with no transport layer to otherwise synchronize.
func (s *arenaSim) onProjectileHit(e projectileHitEvent) {
	victim, ok := s.units[e.Victim]
	if !ok || victim.robot.Dead {
		return
	}

	victim.robot.CurrentHealth -= e.Damage
	s.metrics.DamageDealt.WithLabelValues("bot").Add(float64(e.Damage))
	victim.threats.Track(e.Attacker, float64(e.Damage))
	victim.rewards.RecordHit(e.Attacker, e.Damage, s.now)

	if victim.robot.CurrentHealth <= 0 {
		s.killRobot(e.Victim, victim)
	}
}

// onRobotRelocated logs a cross-cell move, standing in for the
// transport-layer notifier a relocation would otherwise drive (spec
// §4.1 step 3's "run relocation notifiers").
func (s *arenaSim) onRobotRelocated(e robotRelocatedEvent) {
	s.log.Debug("robot relocated", zap.Uint64("robot", uint64(e.ID)),
		zap.Int("to_cx", e.To.CX), zap.Int("to_cy", e.To.CY))
}

// relocatePhase implements core/system.PhaseRelocate: drain every
// queued cross-cell move and emit one robotRelocatedEvent per mover
// (spec §4.1 step 3).
func (s *arenaSim) relocatePhase(dt time.Duration) {
	s.grid.DrainRelocations()
	for _, id := range s.relocated {
		u, ok := s.units[id]
		if !ok {
			continue
		}
		event.Emit(s.bus, robotRelocatedEvent{ID: id, To: u.coord})
	}
	s.relocated = s.relocated[:0]
}

// spawnPhase implements core/system.PhaseSpawn: tally the living
// population and top it up via spawn.RobotFiller (spec §4.1 step 4).
func (s *arenaSim) spawnPhase(dt time.Duration) {
	var alive int32
	for _, u := range s.units {
		if !u.robot.Dead {
			alive++
		}
	}
	for _, rs := range s.filler.FillIfNeeded(int(alive), s.populationCap) {
		s.spawnRobot(rs)
	}
	s.lastAliveCount = alive
}

// deltaFlushPhase implements core/system.PhaseDeltaFlush: dispatch
// this tick's readable event-bus batch, then flush (and log, in lieu
// of a transport send) each observer's coalesced UpdateObject batch
// (spec §4.1 step 5).
func (s *arenaSim) deltaFlushPhase(dt time.Duration) {
	s.bus.DispatchAll()

	for id, obs := range s.vis.Observers() {
		batch := obs.FlushBatch()
		if len(batch.Blocks) == 0 && len(batch.OutOfRange.GUIDs) == 0 {
			continue
		}
		s.log.Debug("observer delta",
			zap.Uint64("robot", uint64(id)),
			zap.Int("creates", len(batch.Blocks)),
			zap.Int("out_of_range", len(batch.OutOfRange.GUIDs)))
	}
}

// battleAdvancePhase implements core/system.PhaseBattleAdvance: the
// battle FSM and safe-zone shrink (spec §4.8).
func (s *arenaSim) battleAdvancePhase(dt time.Duration) {
	s.battleInst.Tick(dt)
	s.battleInst.SetAliveCount(s.lastAliveCount)
}

// cleanupPhase implements core/system.PhaseCleanup: return destroyed
// entities to the pool (spec §4.1 step 8).
func (s *arenaSim) cleanupPhase(dt time.Duration) {
	s.world.FlushDestroyQueue()
}

// killRobot apportions the victim's accumulated reward ledger to its
// awardees (spec §4.5's five-step award sequence), then removes it
// from the grid/visibility bookkeeping and queues the entity for
// end-of-tick destruction.
func (s *arenaSim) killRobot(id ecs.EntityID, u *robotUnit) {
	u.robot.Dead = true
	champion, ok := u.rewards.AwardAllAwardees(id, &simpleRewarder{sim: s})
	if ok {
		s.log.Info("robot eliminated", zap.String("guid", u.robot.GUID.String()), zap.Uint64("champion", uint64(champion)))
	} else {
		s.log.Info("robot eliminated with no awardees", zap.String("guid", u.robot.GUID.String()))
	}

	s.grid.Remove(id, grid.KindBot, u.coord)
	s.vis.RemoveObserver(id)
	delete(s.guidByGUID, u.robot.GUID)

	s.world.MarkForDestruction(id)
	delete(s.units, id)
}

// Tick advances the whole simulation by dt, running every registered
// phase in order via the core/system.Runner.
func (s *arenaSim) Tick(now time.Time, dt time.Duration) {
	s.now = now
	s.runner.Tick(dt)
}
