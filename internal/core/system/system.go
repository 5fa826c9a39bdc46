package system

import "time"

// Phase defines execution ordering within a single tick, mirroring
// Battle.tick(dt)'s top-level control flow: patrol cache refresh, grid
// mark clearing, player update, active-object update (bots + projectiles
// across loaded grids), relocation, spawn manager, delta flush, battle
// state advance, cleanup.
type Phase int

const (
	PhasePreTick       Phase = iota // 0: patrol-point cache refresh, clear grid marks
	PhasePlayerUpdate               // 1: refresh observer range, update each player, passive items in range
	PhaseActiveUpdate               // 2: update bots + projectiles across loaded grids
	PhaseRelocate                   // 3: drain objects_to_new_grid_list, run relocation notifiers
	PhaseSpawn                      // 4: spawn manager tick (player queue, robot fill, loot, respawn)
	PhaseDeltaFlush                 // 5: flush coalesced per-observer UpdateObject batches
	PhaseBattleAdvance              // 6: safe-zone shrink, state machine transitions
	PhaseCleanup                    // 7: destroy queued entities, return to pools
)

// System is the interface every tick-scheduled subsystem implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
