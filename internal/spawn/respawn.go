package spawn

import (
	"time"

	"github.com/gamenio/arenacore/internal/geom"
)

// pendingRespawn is a floor item spawn point waiting out its respawn
// delay after the previous item there was picked up or expired.
type pendingRespawn struct {
	Pos       geom.Point
	ItemID    int32
	Count     int32
	Remaining time.Duration
}

// RespawnedItem is a floor item ready to reappear this tick.
type RespawnedItem struct {
	Pos    geom.Point
	ItemID int32
	Count  int32
}

// FloorRespawner implements SpawnManager::prepareItems' respawn half:
// floor items (as opposed to item-box loot) reappear at their fixed
// spawn point after a delay once picked up or expired.
type FloorRespawner struct {
	pending []pendingRespawn
}

func NewFloorRespawner() *FloorRespawner {
	return &FloorRespawner{}
}

// Schedule queues pos to respawn itemID (count units) after delay.
func (r *FloorRespawner) Schedule(pos geom.Point, itemID int32, count int32, delay time.Duration) {
	r.pending = append(r.pending, pendingRespawn{Pos: pos, ItemID: itemID, Count: count, Remaining: delay})
}

// Update advances every pending respawn timer by dt, returning every
// spawn point whose delay has elapsed this tick (and removing it from
// the pending set).
func (r *FloorRespawner) Update(dt time.Duration) []RespawnedItem {
	if len(r.pending) == 0 {
		return nil
	}
	var ready []RespawnedItem
	kept := r.pending[:0]
	for _, p := range r.pending {
		p.Remaining -= dt
		if p.Remaining <= 0 {
			ready = append(ready, RespawnedItem{Pos: p.Pos, ItemID: p.ItemID, Count: p.Count})
			continue
		}
		kept = append(kept, p)
	}
	r.pending = kept
	return ready
}

// Pending returns how many floor items are currently awaiting respawn.
func (r *FloorRespawner) Pending() int { return len(r.pending) }
