// Package telemetry registers the battle controller's prometheus
// instruments on an injected registry — never the global default
// registry, matching the teacher's no-package-globals discipline
// (SPEC_FULL §10.5).
//
// Grounded on other_examples Tank-Royale-2's combat/projectiles.go
// metrics usage (`metrics.ProjectilesFired.WithLabelValues(weaponType)`,
// `metrics.DamageDealt.WithLabelValues(weaponType).Observe(...)`):
// the label-by-kind counter/histogram idiom is kept, relabeled from
// weapon-type to entity-kind/threat-type for the arena domain.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every instrument the battle controller updates each
// tick (spec §4.8 state changes, §4.5 reward apportionment, §4.7
// projectile collisions).
type Metrics struct {
	AliveCount      prometheus.Gauge
	SafeZoneRadius  prometheus.Gauge
	TickDuration    prometheus.Histogram

	DamageDealt          *prometheus.CounterVec // label: attacker_kind ("player","bot")
	RewardApportioned    *prometheus.CounterVec // label: reward_kind ("money","experience")
	ProjectileCollisions *prometheus.CounterVec // label: projectile_type ("normal","charged","intensified")
	ProjectilesFired     *prometheus.CounterVec // label: projectile_type
	AwardeeTimeouts      prometheus.Counter
	BattleStateChanges   *prometheus.CounterVec // label: to_state
}

// New registers and returns a fresh Metrics bundle on reg. Panics on
// duplicate registration, matching prometheus's own MustRegister
// convention — callers own exactly one Metrics per Battle instance.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		AliveCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arena",
			Name:      "alive_count",
			Help:      "Number of units currently alive in the battle.",
		}),
		SafeZoneRadius: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arena",
			Name:      "safe_zone_radius",
			Help:      "Current safe-zone radius in world units.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arena",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one Battle.tick call.",
			Buckets:   prometheus.DefBuckets,
		}),
		DamageDealt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "damage_dealt_total",
			Help:      "Damage dealt, labeled by attacker kind.",
		}, []string{"attacker_kind"}),
		RewardApportioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "reward_apportioned_total",
			Help:      "Reward apportioned to awardees, labeled by reward kind.",
		}, []string{"reward_kind"}),
		ProjectileCollisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "projectile_collisions_total",
			Help:      "Projectile collisions, labeled by projectile type.",
		}, []string{"projectile_type"}),
		ProjectilesFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "projectiles_fired_total",
			Help:      "Projectiles launched, labeled by projectile type.",
		}, []string{"projectile_type"}),
		AwardeeTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "awardee_timeouts_total",
			Help:      "Awardee references pruned for idling past their timeout.",
		}),
		BattleStateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "battle_state_changes_total",
			Help:      "Battle FSM transitions, labeled by the state transitioned to.",
		}, []string{"to_state"}),
	}
	reg.MustRegister(
		m.AliveCount,
		m.SafeZoneRadius,
		m.TickDuration,
		m.DamageDealt,
		m.RewardApportioned,
		m.ProjectileCollisions,
		m.ProjectilesFired,
		m.AwardeeTimeouts,
		m.BattleStateChanges,
	)
	return m
}
