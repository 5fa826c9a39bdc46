package event

import "github.com/gamenio/arenacore/internal/core/ecs"

// BotEliminated fires when a Robot's health reaches zero and its death
// has been processed (reward apportionment complete).
type BotEliminated struct {
	Victim    ecs.EntityID
	Champion  ecs.EntityID
	AggDamage int32
}

// PlayerEliminated fires when a Player's health reaches zero.
type PlayerEliminated struct {
	Victim   ecs.EntityID
	Champion ecs.EntityID
}

// BattleStateChanged fires on every battle FSM transition.
type BattleStateChanged struct {
	From, To int
}

// SafeZoneShrunk fires whenever the safe-zone radius decreases.
type SafeZoneShrunk struct {
	NewRadius       int32
	DangerAlert     bool
	RelocatedByTile bool
}

// AwardeeTimedOut fires when a RewardManager prunes an awardee whose
// 30s idle timer lapsed before the victim died.
type AwardeeTimedOut struct {
	Victim   ecs.EntityID
	Attacker ecs.EntityID
}
