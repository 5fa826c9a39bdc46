package bot

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/combat"
	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/motion"
	"github.com/gamenio/arenacore/internal/scripting"
	"github.com/gamenio/arenacore/internal/target"
)

// --- fakes ---

type fakeWorld struct{}

func (fakeWorld) Alive(ecs.EntityID) bool { return true }

type fakeCalc struct{}

func (fakeCalc) CalcThreat(_ ecs.EntityID, kind target.ThreatType, d target.UnitThreatData) float64 {
	switch kind {
	case target.ThreatDistance:
		return d.Distance
	case target.ThreatEnemyHealth:
		return d.EnemyHealth
	case target.ThreatEnemyChargedPower:
		return d.EnemyChargedPower
	}
	return 0
}

type fakeLocator struct {
	valid bool
	pos   geom.Point
}

func (l fakeLocator) Valid() bool      { return l.valid }
func (l fakeLocator) Pos() geom.Point  { return l.pos }

type fakeStep struct{}

func (fakeStep) NextStep(current, goal geom.Point) (geom.Point, bool) {
	if current == goal {
		return geom.Point{}, false
	}
	step := current
	if goal.X > current.X {
		step.X++
	} else if goal.X < current.X {
		step.X--
	}
	if goal.Y > current.Y {
		step.Y++
	} else if goal.Y < current.Y {
		step.Y--
	}
	return step, true
}

type fakeExplore struct {
	goal geom.Point
	ok   bool
}

func (e fakeExplore) NextExploreGoal() (geom.Point, bool) { return e.goal, e.ok }

type fakeEscape struct{}

func (fakeEscape) InSafeZone(geom.Point) bool                  { return true }
func (fakeEscape) RandomSafePatrolPoint() (geom.Point, bool)    { return geom.Point{}, false }
func (fakeEscape) ExploreGoalOrigin() (geom.Point, bool)        { return geom.Point{}, false }
func (fakeEscape) WithinEnemyAttackRange(geom.Point) bool       { return false }
func (fakeEscape) EnemyPos() geom.Point                         { return geom.Point{} }
func (fakeEscape) AttackAbandonDistance() float64               { return 10 }

type fakeSmartChase struct{}

func (fakeSmartChase) TopThreatProjectile() (motion.IncomingProjectile, bool) {
	return motion.IncomingProjectile{}, false
}
func (fakeSmartChase) EffectiveDodgeChance() float64           { return 0.5 }
func (fakeSmartChase) DodgeReactionBounds() (time.Duration, time.Duration) {
	return 200 * time.Millisecond, 400 * time.Millisecond
}
func (fakeSmartChase) OptimalDodgeDistance() float64 { return 3 }
func (fakeSmartChase) AttackRange() float64          { return 5 }
func (fakeSmartChase) SafeZoneCenter() geom.Vec2     { return geom.Vec2{0, 0} }
func (fakeSmartChase) IsOutsideSafeDistance(geom.Vec2) bool { return false }
func (fakeSmartChase) TargetLockedLastTick() bool    { return false }
func (fakeSmartChase) IsItemBoxTarget() bool         { return false }

type fakeDeps struct {
	pos        geom.Point
	hp, maxHP  int32
	inSafeZone bool
	dist       map[ecs.EntityID]float64
	locators   map[ecs.EntityID]fakeLocator
	itemPos    map[ecs.EntityID]geom.Point
	explore    fakeExplore
	hiding     []geom.Point
}

func (d *fakeDeps) Pos() geom.Point              { return d.pos }
func (d *fakeDeps) HP() (int32, int32)           { return d.hp, d.maxHP }
func (d *fakeDeps) InSafeZone() bool             { return d.inSafeZone }
func (d *fakeDeps) Dist(id ecs.EntityID) float64 { return d.dist[id] }

func (d *fakeDeps) Locator(id ecs.EntityID) motion.TargetLocator { return d.locators[id] }
func (d *fakeDeps) SmartChaseProvider(ecs.EntityID) motion.SmartChaseProvider {
	return fakeSmartChase{}
}
func (d *fakeDeps) ItemPos(id ecs.EntityID) (geom.Point, bool) {
	p, ok := d.itemPos[id]
	return p, ok
}

func (d *fakeDeps) ChaseStep() motion.StepGenerator   { return fakeStep{} }
func (d *fakeDeps) EscapeStep() motion.StepGenerator  { return fakeStep{} }
func (d *fakeDeps) ExploreStep() motion.StepGenerator { return fakeStep{} }

func (d *fakeDeps) Explore() motion.ExploreProvider { return d.explore }
func (d *fakeDeps) Escape() motion.EscapeProvider   { return fakeEscape{} }
func (d *fakeDeps) HidingSpots() []geom.Point       { return d.hiding }

func newSetup() Setup {
	return Setup{
		Stamina:            &combat.StaminaMachine{Stamina: 100, MaxStamina: 100},
		Threats:            target.NewUnitThreatManager(fakeCalc{}),
		Projectiles:        target.NewProjectileThreatManager(),
		Wishes:             target.NewWishManager(),
		AttackTakesStamina: 10,
		DecisionInterval:   time.Second,
	}
}

func guidOf(id ecs.EntityID) uint32 { return uint32(id) }

func TestNewActorStartsIdle(t *testing.T) {
	Convey("A freshly constructed Actor occupies SlotIdle with an IdleGenerator", t, func() {
		deps := &fakeDeps{pos: geom.Point{X: 1, Y: 1}}
		a := NewActor(1, 0, nil, deps, newSetup(), rand.New(rand.NewSource(1)))
		So(a.Master.TopSlot(), ShouldEqual, motion.SlotIdle)
		So(a.Master.Top(), ShouldNotBeNil)
	})
}

func TestTickWithNoHostileOrWishExplores(t *testing.T) {
	Convey("Given a bot with no hostiles, no wishes, and an explore goal", t, func() {
		deps := &fakeDeps{
			pos:     geom.Point{X: 0, Y: 0},
			explore: fakeExplore{goal: geom.Point{X: 5, Y: 5}, ok: true},
		}
		a := NewActor(1, 0, nil, deps, newSetup(), rand.New(rand.NewSource(1)))

		Convey("DecideGuard installs an explore generator at the idle slot", func() {
			out := a.Tick(time.Now(), 100*time.Millisecond, fakeWorld{}, guidOf)
			So(out.Attack, ShouldBeFalse)
			So(out.Collect, ShouldBeFalse)
			So(a.motionKind, ShouldEqual, "explore")
			So(a.Master.TopSlot(), ShouldEqual, motion.SlotIdle)
		})
	})
}

func TestTickAttacksWhenHostilePresent(t *testing.T) {
	Convey("Given a bot tracking one hostile and able to attack", t, func() {
		deps := &fakeDeps{pos: geom.Point{X: 0, Y: 0}}
		setup := newSetup()
		hostile := ecs.EntityID(42)
		setup.Threats.Track(hostile, 0)

		a := NewActor(1, 0, nil, deps, setup, rand.New(rand.NewSource(1)))

		Convey("DecideGuard returns an attack command for the top hostile", func() {
			out := a.Tick(time.Now(), 100*time.Millisecond, fakeWorld{}, guidOf)
			So(out.Attack, ShouldBeTrue)
			So(out.AttackTarget, ShouldEqual, hostile)
		})
	})
}

func TestApplyChasesViaExplicitCommand(t *testing.T) {
	Convey("Given a bot applying an explicit chase command", t, func() {
		deps := &fakeDeps{
			pos:      geom.Point{X: 0, Y: 0},
			locators: map[ecs.EntityID]fakeLocator{9: {valid: true, pos: geom.Point{X: 3, Y: 0}}},
		}
		a := NewActor(1, 0, nil, deps, newSetup(), rand.New(rand.NewSource(1)))

		Convey("apply installs a SimpleChaseGenerator at the active slot", func() {
			var out Outcome
			a.apply(scripting.BotCommand{Type: "chase", TargetID: 9}, time.Now(), &out)
			So(a.motionKind, ShouldEqual, "simple_chase")
			So(a.Master.TopSlot(), ShouldEqual, motion.SlotActive)
		})
	})
}

func TestApplyCollectMovesThenReportsOutcome(t *testing.T) {
	Convey("Given a bot applying a collect command for a located item", t, func() {
		deps := &fakeDeps{
			pos:     geom.Point{X: 0, Y: 0},
			itemPos: map[ecs.EntityID]geom.Point{7: {X: 2, Y: 0}},
		}
		a := NewActor(1, 0, nil, deps, newSetup(), rand.New(rand.NewSource(1)))

		Convey("apply reports Collect and installs a PointGenerator", func() {
			var out Outcome
			a.apply(scripting.BotCommand{Type: "collect", ItemID: 7}, time.Now(), &out)
			So(out.Collect, ShouldBeTrue)
			So(out.CollectItemID, ShouldEqual, ecs.EntityID(7))
			So(a.motionKind, ShouldEqual, "point")
		})
	})
}

func TestChargeUpdatesStaminaMachine(t *testing.T) {
	Convey("Given a bot with stamina to spend", t, func() {
		deps := &fakeDeps{pos: geom.Point{X: 0, Y: 0}}
		setup := newSetup()
		a := NewActor(1, 0, nil, deps, setup, rand.New(rand.NewSource(1)))

		Convey("apply(charge) transitions the stamina machine to CHARGING", func() {
			var out Outcome
			a.apply(scripting.BotCommand{Type: "charge"}, time.Now(), &out)
			So(out.HasStaminaSync, ShouldBeTrue)
			So(a.Stamina.State, ShouldEqual, combat.ChargeCharging)
		})
	})
}
