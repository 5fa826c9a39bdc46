// Package bot implements the Sparring/Training bot actor (spec §4.11,
// GLOSSARY "Bot AI actors"): the per-tick loop that recomputes threat
// and wish rankings, stages a scripting.BotDecisionContext, hands it to
// the Lua decision function, and installs the motion generator (or
// combat action) each returned scripting.BotCommand implies.
//
// Grounded on the teacher's internal/system/npc_ai.go Go-detects/
// Lua-decides split (tickMonsterAI builds an AIContext, calls Lua,
// then switches on the returned command list) and on
// internal/scripting and internal/motion's command/generator contract.
// As with internal/target and internal/spawn, Actor stays decoupled
// from ecs.World and mapdata.Map: the Deps interface is the seam a
// future battle-tick wiring layer implements over real entity state.
package bot

import (
	"math/rand"
	"time"

	"github.com/gamenio/arenacore/internal/combat"
	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/motion"
	"github.com/gamenio/arenacore/internal/protocol"
	"github.com/gamenio/arenacore/internal/ref"
	"github.com/gamenio/arenacore/internal/scripting"
	"github.com/gamenio/arenacore/internal/target"
)

// Deps is everything an Actor needs from the wider simulation to stage
// a decision and install the motion generator it implies. Actor never
// touches ecs.World, mapdata.Map, or combat resolution directly; one
// concrete implementation lives in the battle-tick wiring layer.
type Deps interface {
	Pos() geom.Point
	HP() (current, max int32)
	InSafeZone() bool

	// Dist is the tile distance from the bot to candidate, used to
	// populate the Dist field of both hostile and wish rows.
	Dist(candidate ecs.EntityID) float64

	Locator(id ecs.EntityID) motion.TargetLocator
	SmartChaseProvider(id ecs.EntityID) motion.SmartChaseProvider
	ItemPos(id ecs.EntityID) (geom.Point, bool)

	ChaseStep() motion.StepGenerator
	EscapeStep() motion.StepGenerator
	ExploreStep() motion.StepGenerator

	Explore() motion.ExploreProvider
	Escape() motion.EscapeProvider
	HidingSpots() []geom.Point
}

// Outcome is what one Tick produced: the movement target the motion
// master's top generator wants this tick, plus any combat-adjacent
// action the decision requested. The caller (combat/item resolution)
// applies Attack/Collect/StaminaSync; Actor itself never resolves
// damage or picks up items.
type Outcome struct {
	HasMove bool
	MoveTo  geom.Point

	Attack       bool
	AttackTarget ecs.EntityID

	Collect       bool
	CollectItemID ecs.EntityID

	HasStaminaSync bool
	StaminaSync    protocol.StaminaInfo
}

// Setup bundles the per-bot collaborators Actor drives but does not
// construct: each depends on nature-template coefficients the combat
// layer resolves (spec §4.4 threat modifiers, §4.6 stamina rates), so
// the caller builds them and hands them over already configured.
type Setup struct {
	Stamina     *combat.StaminaMachine
	Threats     *target.UnitThreatManager
	Projectiles *target.ProjectileThreatManager
	Wishes      *target.WishManager

	AttackTakesStamina int32
	DecisionInterval   time.Duration
}

// Actor is one bot's decision loop: Go-side target/threat bookkeeping
// plus a Lua-scripted choice of what to do about it (spec §4.11).
type Actor struct {
	ID     ecs.EntityID
	Policy scripting.Policy
	Engine *scripting.Engine
	Deps   Deps

	Master      *motion.Master
	Stamina     *combat.StaminaMachine
	Threats     *target.UnitThreatManager
	Projectiles *target.ProjectileThreatManager
	Wishes      *target.WishManager

	AttackTakesStamina int32
	DecisionInterval   time.Duration

	Rng *rand.Rand

	decisionTimer  time.Duration
	lastHostile    ecs.EntityID
	haveHostile    bool
	activeFinished bool
	motionKind     string
}

// NewActor wires id's motion master to its SlotIdle baseline (the "IDLE
// always occupied" invariant, spec §4.3) and returns an Actor ready for
// Tick.
func NewActor(id ecs.EntityID, policy scripting.Policy, engine *scripting.Engine, deps Deps, setup Setup, rng *rand.Rand) *Actor {
	a := &Actor{
		ID:                 id,
		Policy:             policy,
		Engine:             engine,
		Deps:               deps,
		Master:             motion.NewMaster(),
		Stamina:            setup.Stamina,
		Threats:            setup.Threats,
		Projectiles:        setup.Projectiles,
		Wishes:             setup.Wishes,
		AttackTakesStamina: setup.AttackTakesStamina,
		DecisionInterval:   setup.DecisionInterval,
		Rng:                rng,
		activeFinished:     true,
		motionKind:         "idle",
	}
	a.Master.Mutate(motion.SlotIdle, &motion.IdleGenerator{At: deps.Pos()})
	return a
}

// Tick advances the bot one simulation step: refreshes threat ranking,
// stages a fresh decision if the hostile target changed, the active
// generator finished, or the decision interval elapsed, then drives the
// motion master (spec §10.4).
func (a *Actor) Tick(now time.Time, dt time.Duration, world ref.Alive, guidOf func(ecs.EntityID) uint32) Outcome {
	var out Outcome

	a.Threats.Recompute(world)
	hostile, hasHostile := a.Threats.GetHostileTarget(guidOf)
	hostileChanged := hasHostile != a.haveHostile || (hasHostile && hostile != a.lastHostile)
	a.lastHostile, a.haveHostile = hostile, hasHostile

	a.decisionTimer += dt
	due := hostileChanged || a.activeFinished || a.decisionTimer >= a.DecisionInterval
	if due {
		a.decisionTimer = 0
		a.decide(now, world, &out)
	}

	pos, moved := a.Master.Update(dt)
	out.HasMove, out.MoveTo = moved, pos
	a.activeFinished = a.Master.TopSlot() == motion.SlotIdle
	return out
}

// decide builds the decision context, resolves the command list (Lua,
// or DecideGuard for a degenerate policy with no scripting engine), and
// applies every command.
func (a *Actor) decide(now time.Time, world ref.Alive, out *Outcome) {
	ctx := a.buildContext(world)

	var cmds []scripting.BotCommand
	if a.Engine != nil {
		cmds = a.Engine.Decide(a.Policy, ctx)
	} else {
		cmds = []scripting.BotCommand{scripting.DecideGuard(ctx)}
	}

	for _, cmd := range cmds {
		a.apply(cmd, now, out)
	}
}

func (a *Actor) buildContext(world ref.Alive) scripting.BotDecisionContext {
	pos := a.Deps.Pos()
	hp, maxHP := a.Deps.HP()

	ranked := a.Threats.Ranked()
	hostiles := make([]scripting.ThreatEntry, len(ranked))
	for i, r := range ranked {
		hostiles[i] = scripting.ThreatEntry{
			TargetID: int(r.Target),
			Dist:     int(r.Distance),
			Threat:   r.Threat,
		}
	}

	rankedWishes := a.Wishes.Ranked(world)
	wishes := make([]scripting.ItemWish, len(rankedWishes))
	for i, w := range rankedWishes {
		wishes[i] = scripting.ItemWish{
			ItemID: int(w.Item),
			Wish:   w.Score,
			Dist:   int(a.Deps.Dist(w.Item)),
		}
	}

	goal, hasGoal := a.Deps.Explore().NextExploreGoal()

	return scripting.BotDecisionContext{
		BotID:      int(a.ID),
		X:          pos.X,
		Y:          pos.Y,
		HP:         hp,
		MaxHP:      maxHP,
		Stamina:    a.Stamina.Stamina,
		MaxStamina: a.Stamina.MaxStamina,
		CanAttack:  a.Stamina.CanAttack(a.AttackTakesStamina),
		CanCharge:  a.Stamina.State == combat.ChargeNone && a.Stamina.Stamina > 0,
		InSafeZone: a.Deps.InSafeZone(),

		Hostiles: hostiles,
		Wishes:   wishes,
		HasGoal:  hasGoal,
		GoalX:    goal.X,
		GoalY:    goal.Y,

		CurrentMotionKind: a.motionKind,
	}
}

// apply installs the motion generator (or records the combat action)
// one BotCommand implies (spec §10.4, scripting.BotCommand doc).
func (a *Actor) apply(cmd scripting.BotCommand, now time.Time, out *Outcome) {
	switch cmd.Type {
	case "chase":
		tgt := ecs.EntityID(cmd.TargetID)
		a.Master.Mutate(motion.SlotActive, &motion.SimpleChaseGenerator{
			Target:  a.Deps.Locator(tgt),
			Step:    a.Deps.ChaseStep(),
			Current: a.Deps.Pos,
		})
		a.motionKind = "simple_chase"

	case "smart_chase":
		tgt := ecs.EntityID(cmd.TargetID)
		a.Master.Mutate(motion.SlotActive, &motion.SmartChaseGenerator{
			Target:   a.Deps.Locator(tgt),
			Provider: a.Deps.SmartChaseProvider(tgt),
			Current:  a.Deps.Pos,
			Step:     a.Deps.ChaseStep(),
			Rng:      a.Rng,
		})
		a.motionKind = "smart_chase"

	case "collect":
		item := ecs.EntityID(cmd.ItemID)
		out.Collect, out.CollectItemID = true, item
		if goal, ok := a.Deps.ItemPos(item); ok {
			a.Master.Mutate(motion.SlotActive, &motion.PointGenerator{
				Goal:    goal,
				Step:    a.Deps.ChaseStep(),
				Current: a.Deps.Pos,
			})
			a.motionKind = "point"
		}

	case "attack":
		out.Attack, out.AttackTarget = true, ecs.EntityID(cmd.TargetID)

	case "charge":
		if info, ok := a.Stamina.Charge(now); ok {
			out.HasStaminaSync, out.StaminaSync = true, info
		}

	case "explore":
		a.Master.Mutate(motion.SlotIdle, &motion.ExploreGenerator{
			Provider: a.Deps.Explore(),
			Step:     a.Deps.ExploreStep(),
			Current:  a.Deps.Pos,
		})
		a.motionKind = "explore"

	case "seek":
		a.Master.Mutate(motion.SlotActive, &motion.SeekGenerator{
			Pending: a.Deps.HidingSpots(),
			Step:    a.Deps.ChaseStep(),
			Current: a.Deps.Pos,
		})
		a.motionKind = "seek"

	case "escape":
		tgt := ecs.EntityID(cmd.TargetID)
		a.Master.Mutate(motion.SlotActive, &motion.EscapeGenerator{
			Target:   a.Deps.Locator(tgt),
			Provider: a.Deps.Escape(),
			Step:     a.Deps.EscapeStep(),
			Current:  a.Deps.Pos,
		})
		a.motionKind = "escape"

	default: // "idle"
		a.Master.Mutate(motion.SlotIdle, &motion.IdleGenerator{At: a.Deps.Pos()})
		a.motionKind = "idle"
	}
}
