// Package spawn implements the battle's spawn manager: the pending-
// player queue gating PREPARING -> IN_PROGRESS, robot fill-to-capacity,
// item box loot assignment, and floor item respawn timers (spec.md
// "Spawn manager: Player queue, robot fill, itembox loot assignment,
// floor item respawn", 5% budget line).
//
// Grounded on original_source SpawnManager.h (addPlayerToQueue/
// removePlayerFromQueue/onPlayersInPlace/isAllPlayersHere/
// fillRobotsIfNeeded/item counters) and UnitSpawnPointGenerator.cpp
// (round-robin spawn-area cycling with a findNearestOpenPoint snap).
package spawn

import (
	"math/rand"

	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/data"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/mapdata"
)

// PlayerQueue tracks players pending battle entry (original_source
// SpawnManager's m_pendingPlayers), used to gate the PREPARING ->
// IN_PROGRESS and ENDING -> ENDED transitions.
type PlayerQueue struct {
	pending []ecs.EntityID
	total   int // expected final player count for this battle
}

func NewPlayerQueue(total int) *PlayerQueue {
	return &PlayerQueue{total: total}
}

// Add implements SpawnManager::addPlayerToQueue. Returns false if id
// is already queued.
func (q *PlayerQueue) Add(id ecs.EntityID) bool {
	for _, p := range q.pending {
		if p == id {
			return false
		}
	}
	q.pending = append(q.pending, id)
	return true
}

// Remove implements SpawnManager::removePlayerFromQueue.
func (q *PlayerQueue) Remove(id ecs.EntityID) {
	for i, p := range q.pending {
		if p == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Count returns how many players are currently queued.
func (q *PlayerQueue) Count() int { return len(q.pending) }

// IsAllHere implements SpawnManager::isAllPlayersHere.
func (q *PlayerQueue) IsAllHere() bool { return len(q.pending) >= q.total }

// Reset clears the queue, used when a battle instance is recycled.
func (q *PlayerQueue) Reset() { q.pending = q.pending[:0] }

// RobotSpawn is a fully determined new robot, ready for the caller to
// materialize as an entity.Robot (this package never touches the ECS
// directly, matching internal/target and internal/motion's stance of
// staying algorithmic and letting the caller own component wiring).
type RobotSpawn struct {
	NatureID int32
	Level    int32
	Name     string
	Country  string
	Pos      geom.Point
}

// RobotFiller implements SpawnManager::fillRobotsIfNeeded /
// UnitSpawnPointGenerator: keeps the robot population topped up to a
// map's population cap, cycling spawn areas round-robin per
// UnitSpawnPointGenerator.cpp (shuffled, consumed in order, and
// reshuffled each time the order is exhausted) and snapping each roll
// to the nearest open tile.
type RobotFiller struct {
	table *data.RobotSpawnTable
	m     *mapdata.Map
	rng   *rand.Rand

	order   []int // indices into table.SpawnInfos, shuffled
	nextIdx int
}

func NewRobotFiller(table *data.RobotSpawnTable, m *mapdata.Map, rng *rand.Rand) *RobotFiller {
	f := &RobotFiller{table: table, m: m, rng: rng}
	f.reshuffle()
	return f
}

func (f *RobotFiller) reshuffle() {
	f.order = make([]int, len(f.table.SpawnInfos))
	for i := range f.order {
		f.order[i] = i
	}
	f.rng.Shuffle(len(f.order), func(i, j int) { f.order[i], f.order[j] = f.order[j], f.order[i] })
	f.nextIdx = 0
}

// FillIfNeeded spawns enough robots to bring currentCount up to
// populationCap, returning one RobotSpawn per new robot
// (SpawnManager::spawnRobots).
func (f *RobotFiller) FillIfNeeded(currentCount, populationCap int) []RobotSpawn {
	if currentCount >= populationCap || len(f.table.SpawnInfos) == 0 {
		return nil
	}
	need := populationCap - currentCount
	spawns := make([]RobotSpawn, 0, need)
	for i := 0; i < need; i++ {
		info := f.table.SpawnInfos[f.order[f.nextIdx]]
		f.nextIdx++
		if f.nextIdx >= len(f.order) {
			f.reshuffle()
		}

		diff := f.selectDifficulty()
		spawns = append(spawns, RobotSpawn{
			NatureID: info.NatureID,
			Level:    f.generateLevel(diff),
			Name:     f.generateName(),
			Country:  f.generateCountry(),
			Pos:      f.nextPosition(info),
		})
	}
	return spawns
}

// nextPosition implements UnitSpawnPointGenerator::nextPosition: a
// uniform-random tile within the spawn area's bounding box, snapped to
// the nearest open tile.
func (f *RobotFiller) nextPosition(info data.RobotSpawnInfo) geom.Point {
	lo, hi := info.Low(), info.High()
	x := lo.X
	if hi.X > lo.X {
		x += f.rng.Intn(hi.X - lo.X + 1)
	}
	y := lo.Y
	if hi.Y > lo.Y {
		y += f.rng.Intn(hi.Y - lo.Y + 1)
	}
	p := geom.Point{X: x, Y: y}
	if open, ok := f.m.FindNearestOpenPoint(p, true); ok {
		return open
	}
	return p
}

// selectDifficulty implements SpawnManager::selectRobotDifficulty: a
// weighted pick over the difficulty tiers.
func (f *RobotFiller) selectDifficulty() data.RobotDifficulty {
	if len(f.table.Difficulties) == 0 {
		return data.RobotDifficulty{}
	}
	var total int32
	for _, d := range f.table.Difficulties {
		total += d.Weight
	}
	if total <= 0 {
		return f.table.Difficulties[0]
	}
	roll := f.rng.Int31n(total)
	var acc int32
	for _, d := range f.table.Difficulties {
		acc += d.Weight
		if roll < acc {
			return d
		}
	}
	return f.table.Difficulties[len(f.table.Difficulties)-1]
}

// generateLevel implements SpawnManager::generateRobotLevel.
func (f *RobotFiller) generateLevel(d data.RobotDifficulty) int32 {
	if d.LevelMax <= d.LevelMin {
		return d.LevelMin
	}
	return d.LevelMin + f.rng.Int31n(d.LevelMax-d.LevelMin+1)
}

func (f *RobotFiller) generateName() string {
	if len(f.table.Names) == 0 {
		return "Bot"
	}
	return f.table.Names[f.rng.Intn(len(f.table.Names))]
}

func (f *RobotFiller) generateCountry() string {
	if len(f.table.Countries) == 0 {
		return ""
	}
	return f.table.Countries[f.rng.Intn(len(f.table.Countries))]
}
