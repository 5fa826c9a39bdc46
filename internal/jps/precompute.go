// Package jps implements JPS+ (Jump Point Search Plus) pathfinding
// over a mapdata.Map's tile grid (spec §4.2): a precomputed-jump-point
// variant of A* that searches over jump points instead of single
// tiles, with a fixed-point octile heuristic and a two-tier open list.
//
// Grounded on original_source/JPSPlus.{h,cpp} (Steve Rabin's JPS+,
// Game AI Pro 2 ch.14) for the algorithm shape — preprocessing pass,
// direction-pruned expansion, fast-stack/priority-queue open list —
// reimplemented from scratch in idiomatic Go: the 48 hand-written
// `explore_*` variants collapse into one table-driven dispatch over
// geom.Direction, since Go doesn't need (or want) 48 near-duplicate
// methods to express a lookup table.
package jps

import "github.com/gamenio/arenacore/internal/geom"

// DistantJumpPoints is the per-tile preprocessing record (spec §4.2):
// which of the 8 immediate neighbours are blocked, and for each
// direction, the signed distance to either a jump point (positive) or
// the last walkable tile before a wall (negative, no jump point on
// this ray).
type DistantJumpPoints struct {
	BlockedDirections uint8 // bit i set => geom.Direction(i) neighbour is blocked
	JumpDistance      [8]int32
}

// Blocked reports whether direction d's immediate neighbour is a wall.
func (djp DistantJumpPoints) Blocked(d geom.Direction) bool {
	return djp.BlockedDirections&(1<<uint(d)) != 0
}

// Open is the passability query the preprocessing pass and the search
// both need. Implemented by *mapdata.Map.
type Open interface {
	IsOpen(p geom.Point) bool
	IsValidTile(p geom.Point) bool
}

// PrecomputeMap holds the DistantJumpPoints grid for one map and
// tracks dirtiness so a tile-flag change (a projectile blowing a hole
// in cover, a dynamic obstacle) triggers lazy recomputation on the
// next getPath instead of an eager full rebuild (spec §4.2).
type PrecomputeMap struct {
	open   Open
	width  int
	height int
	data   []DistantJumpPoints
	dirty  bool
}

// NewPrecomputeMap builds (and computes) a fresh precompute grid.
func NewPrecomputeMap(open Open, width, height int) *PrecomputeMap {
	pm := &PrecomputeMap{
		open:   open,
		width:  width,
		height: height,
		data:   make([]DistantJumpPoints, width*height),
	}
	pm.Recompute()
	return pm
}

func (pm *PrecomputeMap) index(p geom.Point) int { return p.X + p.Y*pm.width }

// MarkDirty flags the grid for lazy recomputation. Called whenever a
// tile's walkable/closed flag toggles.
func (pm *PrecomputeMap) MarkDirty() { pm.dirty = true }

// At returns the DistantJumpPoints record for p, recomputing the whole
// grid first if it was marked dirty since the last call.
func (pm *PrecomputeMap) At(p geom.Point) DistantJumpPoints {
	if pm.dirty {
		pm.Recompute()
	}
	return pm.data[pm.index(p)]
}

// Recompute runs the three-pass preprocessing: cardinal directions
// first (each is an independent ray march), then diagonals, which are
// derived from their two adjacent cardinal passes so a diagonal jump
// point can also report "forced neighbour by way of an adjacent
// cardinal jump" the way the original DistantJumpPoints does.
func (pm *PrecomputeMap) Recompute() {
	pm.dirty = false
	for y := 0; y < pm.height; y++ {
		for x := 0; x < pm.width; x++ {
			p := geom.Point{X: x, Y: y}
			idx := pm.index(p)
			var rec DistantJumpPoints
			if !pm.open.IsOpen(p) {
				pm.data[idx] = rec
				continue
			}
			for d := geom.DirD; d <= geom.DirDL; d++ {
				if pm.open.IsOpen(p.Add(geom.Deltas[d])) {
					continue
				}
				rec.BlockedDirections |= 1 << uint(d)
			}
			pm.data[idx] = rec
		}
	}
	// Pass 1: cardinal ray distances.
	for _, d := range [4]geom.Direction{geom.DirD, geom.DirR, geom.DirU, geom.DirL} {
		pm.computeCardinal(d)
	}
	// Pass 2: diagonal ray distances, each step requiring both adjacent
	// cardinals to stay open (standard JPS diagonal-move rule).
	for _, pair := range [4][2]geom.Direction{
		{geom.DirDR, 0}, {geom.DirUR, 0}, {geom.DirUL, 0}, {geom.DirDL, 0},
	} {
		pm.computeDiagonal(pair[0])
	}
}

func (pm *PrecomputeMap) computeCardinal(d geom.Direction) {
	delta := geom.Deltas[d]
	for y := 0; y < pm.height; y++ {
		for x := 0; x < pm.width; x++ {
			p := geom.Point{X: x, Y: y}
			if !pm.open.IsOpen(p) {
				continue
			}
			dist := pm.rayDistance(p, delta)
			pm.data[pm.index(p)].JumpDistance[d] = dist
		}
	}
}

func (pm *PrecomputeMap) computeDiagonal(d geom.Direction) {
	delta := geom.Deltas[d]
	for y := 0; y < pm.height; y++ {
		for x := 0; x < pm.width; x++ {
			p := geom.Point{X: x, Y: y}
			if !pm.open.IsOpen(p) {
				continue
			}
			dist := pm.rayDistanceDiagonal(p, delta)
			pm.data[pm.index(p)].JumpDistance[d] = dist
		}
	}
}

// rayDistance walks a cardinal ray from p until it finds a forced
// neighbour (a jump point) or hits a wall, returning +distance for a
// jump point or -distance for a dead-end wall.
func (pm *PrecomputeMap) rayDistance(p geom.Point, delta geom.Point) int32 {
	cur := p
	var n int32
	for {
		next := cur.Add(delta)
		if !pm.open.IsOpen(next) {
			return -n - 1 // one step short of the wall behind us
		}
		n++
		cur = next
		if pm.hasForcedNeighbour(cur, delta) {
			return n
		}
	}
}

func (pm *PrecomputeMap) rayDistanceDiagonal(p geom.Point, delta geom.Point) int32 {
	cur := p
	var n int32
	for {
		next := cur.Add(delta)
		// diagonal step requires both orthogonal components open too.
		if !pm.open.IsOpen(next) ||
			!pm.open.IsOpen(geom.Point{X: cur.X + delta.X, Y: cur.Y}) ||
			!pm.open.IsOpen(geom.Point{X: cur.X, Y: cur.Y + delta.Y}) {
			return -n - 1
		}
		n++
		cur = next
		if pm.hasForcedNeighbour(cur, delta) {
			return n
		}
	}
}

// hasForcedNeighbour reports whether tile p, approached by moving in
// direction delta, has a neighbour whose only open path runs through
// p — the standard JPS forced-neighbour test.
func (pm *PrecomputeMap) hasForcedNeighbour(p geom.Point, delta geom.Point) bool {
	if delta.X != 0 && delta.Y != 0 {
		return false // handled by the cardinal passes adjacent to this diagonal
	}
	if delta.Y == 0 { // horizontal travel: check tiles above/below for forced turns
		return (!pm.open.IsOpen(geom.Point{X: p.X - delta.X, Y: p.Y + 1}) && pm.open.IsOpen(geom.Point{X: p.X, Y: p.Y + 1})) ||
			(!pm.open.IsOpen(geom.Point{X: p.X - delta.X, Y: p.Y - 1}) && pm.open.IsOpen(geom.Point{X: p.X, Y: p.Y - 1}))
	}
	return (!pm.open.IsOpen(geom.Point{X: p.X + 1, Y: p.Y - delta.Y}) && pm.open.IsOpen(geom.Point{X: p.X + 1, Y: p.Y})) ||
		(!pm.open.IsOpen(geom.Point{X: p.X - 1, Y: p.Y - delta.Y}) && pm.open.IsOpen(geom.Point{X: p.X - 1, Y: p.Y}))
}
