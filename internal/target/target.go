// Package target implements per-bot target selection (spec §4.4): the
// action-scoped target lists (collect/unlock), the unit
// and projectile threat managers that pick a combat target, and the
// wish manager that ranks nearby items.
//
// Grounded on original_source's TargetSelector/UnitThreatManager/
// ProjectileThreatManager/WishManager for the exact field shapes and
// tie-break rules; the "plain map + max-scan on demand, no intrusive
// list" texture is carried over from the teacher's internal/system/hate.go,
// reimplemented here atop internal/ref.List so invalid targets are
// pruned lazily instead of needing an explicit remove call on every
// despawn.
package target

import (
	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/ref"
)

// Action distinguishes the action-scoped target-list kinds a bot keeps:
// collect and unlock. Combat targets are ranked by UnitThreatManager
// instead of an action-scoped List.
type Action int

const (
	ActionCollect Action = iota
	ActionUnlock
)

// Weighted is the payload every action-scoped list entry carries: a
// recomputed proximity weight (spec §4.4: "weight = max(0, 1 -
// distance/sight_distance)").
type Weighted struct {
	Weight float64
}

// List is one action-scoped target list (spec §4.4).
type List struct {
	refs ref.List[Weighted]
}

// Add inserts target if not already present.
func (l *List) Add(target ecs.EntityID) {
	if l.refs.Find(target) != nil {
		return
	}
	l.refs.Add(target, Weighted{})
}

// Remove drops target, e.g. when it leaves visibility.
func (l *List) Remove(target ecs.EntityID) { l.refs.Remove(target) }

// DistanceFunc returns the current tile distance between the owning
// bot and a candidate target.
type DistanceFunc func(ecs.EntityID) float64

// EligibleFunc is the action-specific predicate (can_combat_with,
// can_collect, can_unlock) gating whether an entry survives the prune.
type EligibleFunc func(ecs.EntityID) bool

// Select prunes dead/ineligible entries, recomputes weights from the
// given sight distance, sorts descending, and returns the first
// entry's target (spec §4.4). Reports ok=false if nothing qualifies.
func (l *List) Select(world ref.Alive, sightDistance float64, dist DistanceFunc, eligible EligibleFunc) (ecs.EntityID, bool) {
	l.refs.PruneFunc(world, func(t ecs.EntityID, _ *Weighted) bool {
		return eligible(t)
	})
	l.refs.Each(func(t ecs.EntityID, w *Weighted) {
		if sightDistance <= 0 {
			w.Weight = 0
			return
		}
		w.Weight = 1 - dist(t)/sightDistance
		if w.Weight < 0 {
			w.Weight = 0
		}
	})
	l.refs.SortDescending(func(a, b Weighted) bool { return a.Weight < b.Weight })
	if l.refs.Len() == 0 {
		return 0, false
	}
	var first ecs.EntityID
	found := false
	l.refs.Each(func(t ecs.EntityID, _ *Weighted) {
		if !found {
			first, found = t, true
		}
	})
	return first, found
}

// Len reports how many entries the list currently holds.
func (l *List) Len() int { return l.refs.Len() }

// CombatState gates which threat-modifier column applies (spec §4.4:
// "[combat_state x threat_type]").
type CombatState int

const (
	CombatStateChase CombatState = iota
	CombatStateEscape
	combatStateCount
)

// ThreatType enumerates the four threat components spec §4.4 names
// generically ("distance, enemy health, received-damage, enemy-charged-
// power") — SPEC_FULL §12 fixes this concrete list.
type ThreatType int

const (
	ThreatDistance ThreatType = iota
	ThreatEnemyHealth
	ThreatReceivedDamage
	ThreatEnemyChargedPower
	threatTypeCount
)

// ThreatModifierMatrix is the bot nature template's [combat_state x
// threat_type] weighting table (spec §4.4).
type ThreatModifierMatrix [combatStateCount][threatTypeCount]float64

// UnitThreatData is the per-enemy accumulator the unit threat manager
// tracks (spec §4.4: "distance, enemy health, received-damage
// accumulator, enemy-charged-power").
type UnitThreatData struct {
	Distance           float64
	EnemyHealth        float64
	ReceivedDamage     float64
	EnemyChargedPower  float64
	sumThreat          float64
}

// ThreatCalculator computes one raw threat component for an enemy;
// implemented by the combat layer, which knows the bot's nature
// template coefficients.
type ThreatCalculator interface {
	CalcThreat(enemy ecs.EntityID, kind ThreatType, data UnitThreatData) float64
}

// UnitThreatManager ranks potential combat targets by a weighted sum
// of threat components (spec §4.4).
type UnitThreatManager struct {
	refs  ref.List[UnitThreatData]
	Calc  ThreatCalculator
	Mods  ThreatModifierMatrix
	State CombatState
}

func NewUnitThreatManager(calc ThreatCalculator) *UnitThreatManager {
	return &UnitThreatManager{Calc: calc}
}

// Track begins or refreshes tracking of enemy, accumulating
// ReceivedDamage across hits (spec §4.5-adjacent: damage grows the
// threat accumulator, independent of the reward manager's own
// damage_points ledger).
func (m *UnitThreatManager) Track(enemy ecs.EntityID, receivedDamage float64) {
	if d := m.refs.Find(enemy); d != nil {
		d.ReceivedDamage += receivedDamage
		return
	}
	m.refs.Add(enemy, UnitThreatData{ReceivedDamage: receivedDamage})
}

// Remove stops tracking enemy, e.g. on death or leaving combat range.
func (m *UnitThreatManager) Remove(enemy ecs.EntityID) { m.refs.Remove(enemy) }

// Recompute refreshes every tracked enemy's threat parts and re-sorts
// descending (spec §4.4: "re-sorts on next get_hostile_target").
func (m *UnitThreatManager) Recompute(world ref.Alive) {
	m.refs.Prune(world)
	m.refs.Each(func(enemy ecs.EntityID, d *UnitThreatData) {
		d.Distance = m.Calc.CalcThreat(enemy, ThreatDistance, *d)
		d.EnemyHealth = m.Calc.CalcThreat(enemy, ThreatEnemyHealth, *d)
		d.EnemyChargedPower = m.Calc.CalcThreat(enemy, ThreatEnemyChargedPower, *d)

		sum := 0.0
		sum += m.Mods[m.State][ThreatDistance] * d.Distance
		sum += m.Mods[m.State][ThreatEnemyHealth] * d.EnemyHealth
		sum += m.Mods[m.State][ThreatReceivedDamage] * d.ReceivedDamage
		sum += m.Mods[m.State][ThreatEnemyChargedPower] * d.EnemyChargedPower
		d.sumThreat = sum
	})
	m.refs.SortDescending(func(a, b UnitThreatData) bool {
		return a.sumThreat < b.sumThreat
	})
}

// RankedThreat is one tracked hostile as left by the last Recompute
// call, for a caller marshalling the ranked list into a scripting
// decision context (spec §10.4).
type RankedThreat struct {
	Target   ecs.EntityID
	Distance float64
	Threat   float64
}

// Ranked returns every tracked hostile in the descending order
// Recompute last sorted them into.
func (m *UnitThreatManager) Ranked() []RankedThreat {
	out := make([]RankedThreat, 0, m.refs.Len())
	m.refs.Each(func(enemy ecs.EntityID, d *UnitThreatData) {
		out = append(out, RankedThreat{Target: enemy, Distance: d.Distance, Threat: d.sumThreat})
	})
	return out
}

// GetHostileTarget returns the top-ranked enemy, breaking ties by
// lower GUID (spec §4.4: "ties: lower GUID first"). guidOf resolves an
// EntityID to its entity GUID for the tie-break comparison.
func (m *UnitThreatManager) GetHostileTarget(guidOf func(ecs.EntityID) uint32) (ecs.EntityID, bool) {
	if m.refs.Len() == 0 {
		return 0, false
	}
	var best ecs.EntityID
	var bestThreat float64
	var bestGUID uint32
	found := false
	m.refs.Each(func(enemy ecs.EntityID, d *UnitThreatData) {
		g := guidOf(enemy)
		switch {
		case !found:
			best, bestThreat, bestGUID, found = enemy, d.sumThreat, g, true
		case d.sumThreat > bestThreat, d.sumThreat == bestThreat && g < bestGUID:
			best, bestThreat, bestGUID = enemy, d.sumThreat, g
		}
	})
	return best, found
}

// IncomingProjectile is a projectile currently classified as a
// potential threat by the bot's is_potential_threat predicate (spec
// §4.4).
type IncomingProjectile struct {
	Projectile ecs.EntityID
}

// ProjectileThreatManager tracks incoming projectiles in insertion
// order; the first matching entry wins (spec §4.4).
type ProjectileThreatManager struct {
	order []ecs.EntityID
	set   map[ecs.EntityID]struct{}
}

func NewProjectileThreatManager() *ProjectileThreatManager {
	return &ProjectileThreatManager{set: map[ecs.EntityID]struct{}{}}
}

// Add records projectile as a potential threat if not already tracked.
func (m *ProjectileThreatManager) Add(projectile ecs.EntityID) {
	if _, ok := m.set[projectile]; ok {
		return
	}
	m.set[projectile] = struct{}{}
	m.order = append(m.order, projectile)
}

// Remove drops projectile, e.g. once it collides or expires.
func (m *ProjectileThreatManager) Remove(projectile ecs.EntityID) {
	if _, ok := m.set[projectile]; !ok {
		return
	}
	delete(m.set, projectile)
	for i, p := range m.order {
		if p == projectile {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// First returns the earliest-tracked surviving projectile (spec §4.4:
// "iteration order is insertion order; first matching entry wins").
// isThreat re-validates the predicate, since a projectile's threat
// classification can lapse between ticks.
func (m *ProjectileThreatManager) First(isThreat func(ecs.EntityID) bool) (ecs.EntityID, bool) {
	for _, p := range m.order {
		if isThreat(p) {
			return p, true
		}
	}
	return 0, false
}

// ItemClass orders wish priority buckets (spec §4.4).
type ItemClass int

const (
	ItemClassNone ItemClass = iota
	ItemClassGold
	ItemClassConsumableOther
	ItemClassMagicBean
	ItemClassEquipment
	ItemClassFirstAid
)

// WishInput is what the wish manager needs to rank one candidate item
// (spec §4.4).
type WishInput struct {
	Class          ItemClass
	Level          float64 // equipment level, if Class == Equipment
	EquipLevelMax  float64
	StackSizeBucket float64 // normalized [0,1] bucket for gold/magic-bean stack size
}

// Wish computes the priority+quality score spec §4.4 defines:
// `wish = priority + 0.9 * normalize`.
func Wish(in WishInput) float64 {
	var normalize float64
	switch in.Class {
	case ItemClassEquipment:
		if in.EquipLevelMax > 0 {
			normalize = in.Level / in.EquipLevelMax
		}
	case ItemClassGold, ItemClassMagicBean:
		normalize = in.StackSizeBucket
	default:
		normalize = 1.0
	}
	return float64(in.Class) + 0.9*normalize
}

// WishManager ranks nearby items by Wish score, descending.
type WishManager struct {
	refs ref.List[WishInput]
}

func NewWishManager() *WishManager { return &WishManager{} }

// Offer adds or updates item's wish input.
func (m *WishManager) Offer(item ecs.EntityID, in WishInput) {
	if d := m.refs.Find(item); d != nil {
		*d = in
		return
	}
	m.refs.Add(item, in)
}

// Remove drops item, e.g. once collected or out of range.
func (m *WishManager) Remove(item ecs.EntityID) { m.refs.Remove(item) }

// RankedWish is one surviving item as left by the last Ranked/Best
// call, for a caller marshalling the ranked list into a scripting
// decision context (spec §10.4).
type RankedWish struct {
	Item  ecs.EntityID
	Score float64
}

// Ranked prunes dead items, re-sorts descending by wish score, and
// returns every surviving entry.
func (m *WishManager) Ranked(world ref.Alive) []RankedWish {
	m.refs.Prune(world)
	m.refs.SortDescending(func(a, b WishInput) bool { return Wish(a) < Wish(b) })
	out := make([]RankedWish, 0, m.refs.Len())
	m.refs.Each(func(item ecs.EntityID, in *WishInput) {
		out = append(out, RankedWish{Item: item, Score: Wish(*in)})
	})
	return out
}

// Best returns the surviving item with the highest wish score.
func (m *WishManager) Best(world ref.Alive) (ecs.EntityID, bool) {
	m.refs.Prune(world)
	m.refs.SortDescending(func(a, b WishInput) bool { return Wish(a) < Wish(b) })
	if m.refs.Len() == 0 {
		return 0, false
	}
	var first ecs.EntityID
	found := false
	m.refs.Each(func(t ecs.EntityID, _ *WishInput) {
		if !found {
			first, found = t, true
		}
	})
	return first, found
}
