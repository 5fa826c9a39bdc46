// Package combat implements reward apportionment (spec §4.5) and the
// stamina/charge state machine (spec §4.6).
//
// Grounded on the teacher's internal/system/combat.go (HandleNpcDeath
// → addExp-to-nearby-players flow is the model for "sort awardees,
// apportion reward, clear") and original_source's RewardManager/
// AwardeeReference for the idle-timeout and agg-damage-assertion
// details spec.md describes abstractly.
package combat

import (
	"time"

	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/ref"
	"go.uber.org/zap"
)

// AwardeeData is the per-attacker accumulator a RewardManager tracks
// (spec §4.5: "one AwardeeReference per distinct attacker, accumulating
// damage_points").
type AwardeeData struct {
	DamagePoints int32
	LastHit      time.Time // monotonic clock snapshot, reset on each hit (spec §5: uptime_millis-based, not tick count)
}

// Rewarder computes reward/bounty arithmetic from the victim's and
// attacker's state; implemented by the entity layer, which owns
// bounty/level/damage-share inputs (spec §4.5: "reward arithmetic is
// implementation-supplied").
type Rewarder interface {
	CalcReward(victim, attacker ecs.EntityID, damagePoints int32) Reward
	ApplyReward(attacker ecs.EntityID, victim ecs.EntityID, r Reward)
}

// Reward is the money/XP split one awardee receives.
type Reward struct {
	Money      int64
	Experience int64
}

// RewardManager tracks one victim's distinct attackers and their
// accumulated damage, apportioning reward on death (spec §4.5).
type RewardManager struct {
	refs        ref.List[AwardeeData]
	IdleTimeout time.Duration
	AggDamage   int32
	log         *zap.Logger
}

func NewRewardManager(idleTimeout time.Duration, log *zap.Logger) *RewardManager {
	return &RewardManager{IdleTimeout: idleTimeout, log: log}
}

// RecordHit accumulates damage for attacker, resetting its idle timer
// (spec §4.5).
func (m *RewardManager) RecordHit(attacker ecs.EntityID, damage int32, now time.Time) {
	if d := m.refs.Find(attacker); d != nil {
		d.DamagePoints += damage
		d.LastHit = now
	} else {
		m.refs.Add(attacker, AwardeeData{DamagePoints: damage, LastHit: now})
	}
	m.AggDamage += damage
}

// ExpireIdle drops every awardee whose idle timer has lapsed,
// decrementing AggDamage by its current points (spec §4.5: "if it
// lapses, the reference is marked deletable and the victim's aggregate
// damage is decremented by its current points"). Returns the expired
// attacker IDs, e.g. for an AwardeeTimedOut event and telemetry.
func (m *RewardManager) ExpireIdle(world ref.Alive, now time.Time) []ecs.EntityID {
	var expired []ecs.EntityID
	m.refs.PruneFunc(world, func(attacker ecs.EntityID, d *AwardeeData) bool {
		if now.Sub(d.LastHit) >= m.IdleTimeout {
			m.AggDamage -= d.DamagePoints
			expired = append(expired, attacker)
			return false
		}
		return true
	})
	return expired
}

// AwardAllAwardees implements spec §4.5's five-step award sequence:
// sort descending by damage (ties by insertion order), the first is
// champion, apply reward to every entry with damage>0, assert the
// damage ledger balances, then clear.
func (m *RewardManager) AwardAllAwardees(victim ecs.EntityID, rewarder Rewarder) (champion ecs.EntityID, ok bool) {
	m.refs.SortDescending(func(a, b AwardeeData) bool { return a.DamagePoints < b.DamagePoints })

	first := true
	var awarded int32
	m.refs.Each(func(attacker ecs.EntityID, d *AwardeeData) {
		if first {
			champion, ok = attacker, true
			first = false
		}
		if d.DamagePoints <= 0 {
			return
		}
		r := rewarder.CalcReward(victim, attacker, d.DamagePoints)
		rewarder.ApplyReward(attacker, victim, r)
		awarded += d.DamagePoints
	})

	if remaining := m.AggDamage - awarded; remaining < 0 {
		m.log.Fatal("reward ledger assertion failed: agg_damage - awarded < 0",
			zap.Int("agg_damage", int(m.AggDamage)),
			zap.Int("awarded", int(awarded)),
			zap.Int("victim", int(victim)))
	}
	m.refs.Clear()
	m.AggDamage = 0
	return champion, ok
}
