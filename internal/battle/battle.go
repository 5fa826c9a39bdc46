// Package battle implements the battle lifecycle state machine, the
// shrinking safe zone, and the waypoint-graph reachability update that
// tracks it (spec §4.8).
//
// Grounded on other_examples neper-stars-houston's blocks-battle.go
// for the from-scratch Go battle-FSM shape (small state enum + a
// switch-based transition function, no class hierarchy) and
// original_source's patrol radius->index acceleration table
// (SPEC_FULL §12) for the patrol-point cache.
package battle

import (
	"math/rand"
	"sort"
	"time"

	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/mapdata"
	"github.com/gamenio/arenacore/internal/protocol"
	"github.com/gamenio/arenacore/internal/telemetry"
	"github.com/google/uuid"
)

// State is the battle lifecycle FSM state (spec §4.8).
type State int

const (
	StateNone State = iota
	StatePreparing
	StateInProgress
	StateEnding
	StateEnded
)

// Config is the per-map, per-battle tunable set (spec §4.8).
type Config struct {
	IsTraining          bool // training-ground map skips PREPARING
	PreparingDuration   time.Duration
	BattleDuration      time.Duration
	InitialSafeRadius   int32
	InitialSafeDistance int32
	AlertRadius         int32 // map-dependent safe-zone alert threshold
	Seed                int64
}

// Battle owns the FSM, safe zone, and waypoint/patrol-point caches for
// one battle instance; all mutable state is owned here, matching spec
// §5's "all mutable state is owned by one Battle instance".
type Battle struct {
	ID    uuid.UUID
	Map   *mapdata.Map
	Cfg   Config
	rng   *rand.Rand
	metrics *telemetry.Metrics

	State     State
	elapsed   time.Duration
	startTime time.Time

	SafeRadius          int32
	SafeDistance        int32
	DangerAlertTriggered bool
	safeZoneRelocated   bool
	Center              geom.Vec2

	AliveCount         int32
	PlayerInBattleCount int32
	playersWithdrew    bool
	allPendingArrived  bool

	unlinked       map[geom.Point]bool
	startWaypoint  geom.Point
	hasStartWaypoint bool

	patrolPoints      []geom.Point // ordered descending by radius-to-centre
	patrolRadiusIndex []int32      // radius bucket -> first index whose radius is at most that bucket

	OnUpdate func(protocol.BattleUpdate)
}

// New constructs a battle and picks the deterministic (seeded) safe
// zone centre for non-training maps (DESIGN.md Open Question
// decision: seeded-random waypoint in the map's largest district,
// not a fixed map-centre, so the seed is load-bearing).
func New(m *mapdata.Map, cfg Config, metrics *telemetry.Metrics) *Battle {
	b := &Battle{
		ID:       uuid.New(),
		Map:      m,
		Cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		metrics:  metrics,
		State:    StateNone,
		SafeRadius: cfg.InitialSafeRadius,
		SafeDistance: cfg.InitialSafeDistance,
		unlinked: map[geom.Point]bool{},
	}
	b.Center = b.pickSafeZoneCenter()
	return b
}

func (b *Battle) pickSafeZoneCenter() geom.Vec2 {
	if b.Cfg.IsTraining {
		return geom.Vec2{float64(b.Map.Info.Width) / 2, float64(b.Map.Info.Height) / 2}
	}
	largest := b.largestDistrict()
	candidates := b.Map.DistrictWaypoints(largest)
	if len(candidates) == 0 {
		return geom.Vec2{float64(b.Map.Info.Width) / 2, float64(b.Map.Info.Height) / 2}
	}
	p := candidates[b.rng.Intn(len(candidates))]
	return geom.Vec2{float64(p.X), float64(p.Y)}
}

func (b *Battle) largestDistrict() uint32 {
	var best uint32 = 1
	bestLen := 0
	for d := uint32(1); d <= 64; d++ {
		wps := b.Map.DistrictWaypoints(d)
		if len(wps) > bestLen {
			bestLen, best = len(wps), d
		}
	}
	return best
}

// Start transitions NONE -> PREPARING (or directly to IN_PROGRESS for
// training maps, spec §4.8: "PREPARING ... skipped in the
// training-ground map").
func (b *Battle) Start(now time.Time) {
	b.startTime = now
	if b.Cfg.IsTraining {
		b.enter(StateInProgress)
		return
	}
	b.enter(StatePreparing)
}

// Tick advances the battle by dt, running the FSM's per-state update
// and emitting a BattleUpdate on any observable change (spec §4.8).
func (b *Battle) Tick(dt time.Duration) {
	b.elapsed += dt
	switch b.State {
	case StatePreparing:
		if b.elapsed >= b.Cfg.PreparingDuration {
			b.elapsed = 0
			b.enter(StateInProgress)
		}
	case StateInProgress:
		b.updateSafeZone()
		if b.playersWithdrew || (b.AliveCount <= 1 && b.allPendingArrived) {
			b.enter(StateEnding)
		}
	case StateEnding:
		if b.PlayerInBattleCount == 0 {
			b.enter(StateEnded)
		}
	}
}

// SetPlayerWithdrew and SetAllPendingArrived let the spawn/session
// layer report the two ENDING-transition conditions spec §4.8 names,
// since this package has no visibility into player session state.
func (b *Battle) SetPlayerWithdrew(v bool)     { b.playersWithdrew = v }
func (b *Battle) SetAllPendingArrived(v bool)  { b.allPendingArrived = v }

// SetAliveCount updates the alive counter, pushing a BattleUpdate on
// any change (spec §4.8: "on any state change or alive-count change").
func (b *Battle) SetAliveCount(n int32) {
	if n == b.AliveCount {
		return
	}
	b.AliveCount = n
	b.pushUpdate(protocol.BattleFieldAliveCount)
}

func (b *Battle) enter(to State) {
	b.State = to
	if b.metrics != nil {
		b.metrics.BattleStateChanges.WithLabelValues(stateLabel(to)).Inc()
	}
	b.pushUpdate(protocol.BattleFieldState)
}

func stateLabel(s State) string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StateInProgress:
		return "in_progress"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	default:
		return "none"
	}
}

func (b *Battle) pushUpdate(flags uint32) {
	if b.OnUpdate == nil {
		return
	}
	b.OnUpdate(protocol.BattleUpdate{
		Flags:               flags,
		State:               int32(b.State),
		PreparationDuration: int32(b.Cfg.PreparingDuration.Milliseconds()),
		BattleDuration:      int32(b.Cfg.BattleDuration.Milliseconds()),
		StartTime:           b.startTime.Unix(),
		AliveCount:          b.AliveCount,
	})
}

// updateSafeZone implements spec §4.8's per-tick radius formula and
// the downstream waypoint-graph/patrol-point recomputation it triggers
// on any shrink.
func (b *Battle) updateSafeZone() {
	if b.Cfg.BattleDuration <= 0 {
		return
	}
	progress := float64(b.elapsed) / float64(b.Cfg.BattleDuration)
	if progress > 1 {
		progress = 1
	}
	newRadius := b.Cfg.InitialSafeRadius - int32(float64(b.Cfg.InitialSafeRadius)*progress)

	if newRadius >= b.SafeRadius {
		return
	}
	b.SafeRadius = newRadius
	if b.SafeDistance > 0 {
		b.SafeDistance--
	}
	b.safeZoneRelocated = true
	if b.metrics != nil {
		b.metrics.SafeZoneRadius.Set(float64(b.SafeRadius))
	}

	if !b.DangerAlertTriggered && b.SafeRadius <= b.Cfg.AlertRadius {
		b.DangerAlertTriggered = true
	}

	b.updateWaypointGraph()
	b.rebuildPatrolPoints()
}

// updateWaypointGraph implements spec §4.8's waypoint-graph update:
// unlink nodes whose minimal radius-to-centre exceeds the current
// effective radius, then DFS from the start node and unlink anything
// unreached.
func (b *Battle) updateWaypointGraph() {
	effective := float64(b.SafeRadius - b.SafeDistance)
	startDistrict := b.Map.DistrictID(geom.Point{X: int(b.Center[0]), Y: int(b.Center[1])})

	for d := uint32(1); d <= 64; d++ {
		for _, wp := range b.Map.DistrictWaypoints(d) {
			r := geom.Dist(b.Center, geom.Vec2{float64(wp.X), float64(wp.Y)})
			if r > effective {
				b.unlinked[wp] = true
			}
		}
	}

	if !b.hasStartWaypoint {
		if wps := b.Map.DistrictWaypoints(startDistrict); len(wps) > 0 {
			b.startWaypoint, b.hasStartWaypoint = wps[0], true
		}
	}
	if !b.hasStartWaypoint {
		return
	}

	reached := map[geom.Point]bool{}
	var stack []geom.Point
	if !b.unlinked[b.startWaypoint] {
		stack = append(stack, b.startWaypoint)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[cur] {
			continue
		}
		reached[cur] = true
		if next, ok := b.Map.LinkedWaypoint(cur); ok && !b.unlinked[next] && !reached[next] {
			stack = append(stack, next)
		}
	}

	for d := uint32(1); d <= 64; d++ {
		for _, wp := range b.Map.DistrictWaypoints(d) {
			if !reached[wp] {
				b.unlinked[wp] = true
			}
		}
	}
}

// rebuildPatrolPoints implements spec §4.8's patrol-point table: every
// open, non-closed tile within sight distance of the safe-zone centre
// in the same district as the centre, ordered descending by
// radius-to-centre, with a radius->first-index acceleration table
// (original_source, SPEC_FULL §12).
func (b *Battle) rebuildPatrolPoints(sightDistance ...int32) {
	sight := int32(20)
	if len(sightDistance) > 0 {
		sight = sightDistance[0]
	}
	centerTile := geom.Point{X: int(b.Center[0]), Y: int(b.Center[1])}

	type entry struct {
		p geom.Point
		r float64
	}
	var entries []entry
	for dy := -sight; dy <= sight; dy++ {
		for dx := -sight; dx <= sight; dx++ {
			p := geom.Point{X: centerTile.X + int(dx), Y: centerTile.Y + int(dy)}
			if !b.Map.IsOpen(p) || !b.Map.IsSameDistrict(p, centerTile) {
				continue
			}
			r := geom.Dist(b.Center, geom.Vec2{float64(p.X), float64(p.Y)})
			if r > float64(sight) {
				continue
			}
			entries = append(entries, entry{p, r})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].r > entries[j].r })

	b.patrolPoints = b.patrolPoints[:0]
	for _, e := range entries {
		b.patrolPoints = append(b.patrolPoints, e.p)
	}

	maxRadius := int32(sight)
	b.patrolRadiusIndex = make([]int32, maxRadius+1)
	idx := int32(0)
	for r := maxRadius; r >= 0; r-- {
		for idx < int32(len(entries)) && entries[idx].r > float64(r) {
			idx++
		}
		b.patrolRadiusIndex[r] = idx
	}
}

// PatrolPointsWithinRadius returns the patrol points whose
// radius-to-centre is at most r, using the acceleration table
// (original_source, SPEC_FULL §12: "a radius->first-index table speeds
// lookup"). A negative r, or an r at or beyond the table's sight
// distance, returns every cached point.
func (b *Battle) PatrolPointsWithinRadius(r int32) []geom.Point {
	if r < 0 || int(r) >= len(b.patrolRadiusIndex) {
		return b.patrolPoints
	}
	return b.patrolPoints[b.patrolRadiusIndex[r]:]
}

// IsInSafeZone reports whether p lies within the current safe zone.
func (b *Battle) IsInSafeZone(p geom.Point) bool {
	r := geom.Dist(b.Center, geom.Vec2{float64(p.X), float64(p.Y)})
	return r <= float64(b.SafeRadius)
}
