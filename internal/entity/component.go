package entity

import (
	"time"

	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/fieldmask"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/ref"
)

// NotifyFlags tracks which relocation-driven notifications are
// pending for a WorldObject (spec §4.1): set by relocation, read and
// cleared by the per-tick notifier sweep.
type NotifyFlags uint8

const (
	NotifyVisibilityChanged NotifyFlags = 1 << iota
	NotifyTraceabilityChanged
	NotifySafetyChanged
)

// Header is embedded into every spatial object's component set: GUID,
// type discriminant, grid placement bookkeeping, and notify flags
// (spec §3: "shared header (GUID, type-id, type-bitmask, in-world
// flag, updated flag)").
type Header struct {
	GUID         GUID
	InWorld      bool
	ObjectUpdated bool
	Visible      bool
	X, Y         int32
	MapID        int16
	Notify       NotifyFlags
	Dirty        fieldmask.Mask
}

// Pos returns the object's current position as a geom.Point in tile
// coordinates (grid/pathfinding operate in tiles, not map units).
func (h Header) Pos() geom.Point { return geom.Point{X: int(h.X), Y: int(h.Y)} }

// WorldObject is the component for the abstract WorldObject kind:
// a non-owning map reference (carried by the caller via World/Grid
// lookups keyed on MapID, not stored here), plus observer refs.
type WorldObject struct {
	Header
	LocatorID   ecs.EntityID // optional UnitLocator child, 0 if none
	HasLocator  bool
	ObserverRefs ref.List[struct{}] // who is currently observing this object
}

// AttackableObject extends WorldObject with combat-adjacent
// reference sets (spec §3).
type AttackableObject struct {
	WorldObject
	AttackerRefs           ref.List[struct{}]
	WatcherRefs            ref.List[struct{}]
	ProjectileCollisionRefs ref.List[struct{}]
}

// UnitState is the bitmask of concurrent unit states (spec §3).
type UnitState uint16

const (
	StateMoving UnitState = 1 << iota
	StateInCombat
	StateAttacking
	StateInCollection
	StatePickingUp
	StateHiding
	StateSeeking
	StateCharging
	StateInExploration
	StateInUnlock
)

func (s UnitState) Has(flag UnitState) bool { return s&flag != 0 }

// StatKind indexes the stat-modifier matrix.
type StatKind int

const (
	StatMaxHealth StatKind = iota
	StatMoveSpeed
	StatAttackPower
	StatDefensePower
	StatSightDistance
	StatAttackRange
	statKindCount
)

// ModKind indexes the {value, percent} axis of the stat matrix.
type ModKind int

const (
	ModValue ModKind = iota
	ModPercent
	modKindCount
)

// StatModifierMatrix is the `[stat x {value,percent}]` accumulator
// from spec §3: flat additive modifiers and percentage modifiers are
// tracked separately, then combined as `base*(1+percent/100) + value`.
type StatModifierMatrix [statKindCount][modKindCount]float64

func (m *StatModifierMatrix) Apply(base float64, stat StatKind) float64 {
	return base*(1+m[stat][ModPercent]/100) + m[stat][ModValue]
}

// Timers bundles the per-unit tick timers enumerated in spec §3.
type Timers struct {
	HealthRegen  time.Duration
	HealthLoss   time.Duration
	UnsaySmiley  time.Duration
	Conceal      time.Duration
	Withdrawal   time.Duration
	DangerState  time.Duration
	SlowMove     time.Duration
	Pickup       time.Duration
}

// ItemSlotCount is the fixed size of a unit's equipped item-slot array.
const ItemSlotCount = 8

// Unit is the component for Unit ⊂ AttackableObject.
type Unit struct {
	AttackableObject
	State        UnitState
	Dead         bool
	InDanger     bool
	Mods         StatModifierMatrix
	ItemSlots    [ItemSlotCount]ecs.EntityID
	CarriedItemSeq uint32
	PickupTarget ecs.EntityID
	HasPickupTarget bool
	UnlockTarget ecs.EntityID
	HasUnlockTarget bool

	FollowerRefs     ref.List[struct{}]
	UnitHostileRefs  ref.List[UnitHostileData]
	LaunchRefs       ref.List[struct{}] // projectiles this unit launched
	ItemCollisionRefs ref.List[struct{}]

	Timers Timers

	CurrentHealth int32
	MaxHealth     int32
}

// UnitHostileData is the payload carried by a unit's UnitHostileRefs
// entry: the time the hostility was recorded.
type UnitHostileData struct {
	Since time.Time
}

// PlayerControllerKind distinguishes how a Player's inputs arrive —
// kept for parity with the spec's taxonomy even though this module's
// scope ends at the simulation core (no session/transport layer).
type PlayerControllerKind int

const (
	ControllerRemote PlayerControllerKind = iota
	ControllerReplay
)

// Player is the component for Player ⊂ Unit.
type Player struct {
	Unit
	ViewportWidth, ViewportHeight int32
	VisibleRangeX, VisibleRangeY  int32
	GM                            bool
	Controller                    PlayerControllerKind
	ItemSlotGUIDs                 [ItemSlotCount]GUID
	Concealed                     bool
	PickupDuration, PickupElapsed time.Duration
	KillCount                     int32
	Experience                    int64
	Money                         int64
	ClientKnownObjects            map[ecs.EntityID]struct{}
}

// RobotTemplateID identifies a robot's stat/behaviour template.
type RobotTemplateID int32

// CollectState tracks a robot's item-collection progress.
type CollectState int

const (
	CollectNone CollectState = iota
	CollectApproaching
	CollectInProgress
)

// ExploreBookkeeping holds a robot's area-exploration state (spec §3).
type ExploreBookkeeping struct {
	OrderMap          map[uint32]int // district id -> visit order
	UnexploredByDistrict map[uint32][]geom.Point
	Excluded          map[geom.Point]time.Time // temporarily excluded tiles, with exclusion timestamp
	Current, Goal, Source geom.Point
	HasCurrent, HasGoal, HasSource bool
}

// Robot is the component for Robot ⊂ Unit.
type Robot struct {
	Unit
	TemplateID       RobotTemplateID
	Level            int32
	Country          string
	HidingSpotActive bool
	HidingSpot       geom.Point

	Collect      CollectState
	UnlockState  int

	StepCount int64
	Explore   ExploreBookkeeping
}

// ItemBox is the component for ItemBox ⊂ AttackableObject.
type ItemBox struct {
	AttackableObject
	MaxHealth, CurrentHealth int32
	Direction                int
	SpawnTile                geom.Point
	LootID                   int32
}

// Item is the component for Item ⊂ WorldObject.
type Item struct {
	WorldObject
	TemplateID  int32
	StackCount  int32
	HolderID    ecs.EntityID
	HasHolder   bool
	DropDuration, DropElapsed time.Duration
	CollisionRefs ref.List[struct{}]
}

// CarriedItem is the non-spatial component for an item held in a
// unit's inventory (spec §3: "not spatial").
type CarriedItem struct {
	ItemID       int32
	Level        int32
	Count        int32
	Slot         int
	CooldownLeft time.Duration
	Owner        ecs.EntityID
}

// ProjectileType distinguishes damage/visual variants (spec §3).
type ProjectileType int

const (
	ProjectileNormal ProjectileType = iota
	ProjectileCharged
	ProjectileIntensified
)

// Projectile is the component for Projectile ⊂ AttackableObject.
type Projectile struct {
	AttackableObject
	LauncherID     ecs.EntityID
	LaunchOrigin   geom.Vec2
	AttackRange    float64
	LaunchCenter   geom.Vec2
	LaunchRadius   float64
	Orientation    float64
	Type           ProjectileType
	DamageBonusRatio float64
	Elapsed, Duration time.Duration
	Scale          float64
	Finished       bool
	CollidedWith   map[ecs.EntityID]struct{}
	HostileRefs    ref.List[struct{}]
	Launch         ref.Single[struct{}]
}

// LocatorObject / UnitLocator: a proxy so distant players can see a
// dot representing a tracked unit without full detail replication.
type UnitLocator struct {
	WorldObject
	OwnerID ecs.EntityID
}
