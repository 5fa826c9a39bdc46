package jps

import "github.com/gamenio/arenacore/internal/geom"

// cardinalsOf returns the 1 or 2 cardinal directions composing d: a
// cardinal direction returns itself twice, a diagonal returns its two
// adjacent cardinals (e.g. DirUR -> DirU, DirR).
func cardinalsOf(d geom.Direction) (a, b geom.Direction) {
	switch d {
	case geom.DirD, geom.DirR, geom.DirU, geom.DirL:
		return d, d
	case geom.DirDR:
		return geom.DirD, geom.DirR
	case geom.DirUR:
		return geom.DirU, geom.DirR
	case geom.DirUL:
		return geom.DirU, geom.DirL
	case geom.DirDL:
		return geom.DirD, geom.DirL
	}
	return d, d
}

var opposite = [8]geom.Direction{
	geom.DirD: geom.DirU, geom.DirU: geom.DirD,
	geom.DirR: geom.DirL, geom.DirL: geom.DirR,
	geom.DirDR: geom.DirUL, geom.DirUL: geom.DirDR,
	geom.DirUR: geom.DirDL, geom.DirDL: geom.DirUR,
}

// allowedDirections implements JPS's natural+forced neighbour pruning
// rule (spec §4.2's "48-variant expansion", expressed here as one
// computed rule over blockedDirections and cameFrom instead of 48
// hand-written functions): which of the 8 directions are worth
// expanding from a node reached by moving in direction cameFrom, given
// which of its own neighbours are blocked.
func allowedDirections(blocked uint8, cameFrom geom.Direction, hasParent bool) []geom.Direction {
	isBlocked := func(d geom.Direction) bool { return blocked&(1<<uint(d)) != 0 }

	if !hasParent {
		out := make([]geom.Direction, 0, 8)
		for d := geom.DirD; d <= geom.DirDL; d++ {
			if !isBlocked(d) {
				out = append(out, d)
			}
		}
		return out
	}

	out := make([]geom.Direction, 0, 3)
	add := func(d geom.Direction) {
		if !isBlocked(d) {
			out = append(out, d)
		}
	}

	if !cameFrom.IsDiagonal() {
		add(cameFrom)
		// forced neighbours: a blocked tile on one side of the
		// *previous* tile means a diagonal jump point here.
		perp1, perp2 := perpendiculars(cameFrom)
		if isBlocked(perp1) {
			add(diagonalOf(cameFrom, perp1))
		}
		if isBlocked(perp2) {
			add(diagonalOf(cameFrom, perp2))
		}
		return out
	}

	cardA, cardB := cardinalsOf(cameFrom)
	add(cameFrom)
	add(cardA)
	add(cardB)
	if isBlocked(opposite[cardA]) {
		add(diagonalOf(opposite[cardA], cardB))
	}
	if isBlocked(opposite[cardB]) {
		add(diagonalOf(cardA, opposite[cardB]))
	}
	return out
}

// perpendiculars returns the two directions perpendicular to cardinal
// direction d (e.g. R's perpendiculars are U and D).
func perpendiculars(d geom.Direction) (geom.Direction, geom.Direction) {
	switch d {
	case geom.DirR, geom.DirL:
		return geom.DirU, geom.DirD
	default: // DirU, DirD
		return geom.DirL, geom.DirR
	}
}

var diagonalTable = map[[2]geom.Direction]geom.Direction{
	{geom.DirD, geom.DirR}: geom.DirDR, {geom.DirR, geom.DirD}: geom.DirDR,
	{geom.DirU, geom.DirR}: geom.DirUR, {geom.DirR, geom.DirU}: geom.DirUR,
	{geom.DirU, geom.DirL}: geom.DirUL, {geom.DirL, geom.DirU}: geom.DirUL,
	{geom.DirD, geom.DirL}: geom.DirDL, {geom.DirL, geom.DirD}: geom.DirDL,
}

// diagonalOf composes two adjacent cardinal directions into the
// diagonal direction between them.
func diagonalOf(a, b geom.Direction) geom.Direction {
	return diagonalTable[[2]geom.Direction{a, b}]
}

// Finder runs JPS+ searches against one map's PrecomputeMap.
type Finder struct {
	pm  *PrecomputeMap
	gen uint32
}

func NewFinder(pm *PrecomputeMap) *Finder { return &Finder{pm: pm} }

// GetPath returns the sequence of jump-point tiles from start to goal
// inclusive, or nil if no path exists. The caller's step generator
// interpolates between consecutive entries into single-tile steps.
func (f *Finder) GetPath(start, goal geom.Point) []geom.Point {
	if start == goal {
		return []geom.Point{start}
	}
	f.gen++
	gen := f.gen

	nodes := map[geom.Point]*node{}
	get := func(p geom.Point) *node {
		if n, ok := nodes[p]; ok && n.touchedGen == gen {
			return n
		}
		n := &node{pos: p, touchedGen: gen, g: -1}
		nodes[p] = n
		return n
	}

	startNode := get(start)
	startNode.g = 0
	startNode.h = heuristic(start, goal)
	startNode.f = startNode.h

	ol := &openList{}
	ol.push(startNode, startNode.f)
	closed := map[geom.Point]bool{}

	for !ol.empty() {
		cur := ol.pop()
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true

		if cur.pos == goal {
			return reconstruct(cur)
		}

		djp := f.pm.At(cur.pos)
		dirs := allowedDirections(djp.BlockedDirections, cur.cameFrom, cur.hasParent)
		for _, d := range dirs {
			f.expand(cur, d, djp, goal, get, ol, closed)
		}
	}
	return nil
}

// expand walks direction d from cur using its precomputed jump
// distance: a positive distance lands on a jump point (or, if goal
// lies on this ray within distance, projects directly onto goal); a
// negative distance still offers the last open tile before a wall as
// a candidate when goal lies on the ray past it is impossible, so it
// is only used for the goal-on-ray check.
func (f *Finder) expand(cur *node, d geom.Direction, djp DistantJumpPoints, goal geom.Point, get func(geom.Point) *node, ol *openList, closed map[geom.Point]bool) {
	dist := djp.JumpDistance[d]
	delta := geom.Deltas[d]

	onRay, rayDist := pointOnRay(cur.pos, delta, goal)
	reach := dist
	if reach < 0 {
		reach = -reach - 1
	}
	if onRay && rayDist <= reach {
		f.relax(cur, d, goal, goal, rayDist, closed, get, ol)
		return
	}
	if dist <= 0 {
		return // dead end, no jump point and goal not on this ray within reach
	}
	target := geom.Point{X: cur.pos.X + delta.X*int(dist), Y: cur.pos.Y + delta.Y*int(dist)}
	f.relax(cur, d, target, goal, int(dist), closed, get, ol)
}

func (f *Finder) relax(cur *node, d geom.Direction, target, goal geom.Point, steps int, closed map[geom.Point]bool, get func(geom.Point) *node, ol *openList) {
	if closed[target] {
		return
	}
	cost := int32(steps) * geom.Unit
	if d.IsDiagonal() {
		cost = int32(steps) * geom.DiagUnit
	}
	g := cur.g + cost
	n := get(target)
	if n.g != -1 && n.g <= g {
		return
	}
	n.g = g
	n.h = heuristic(target, goal)
	n.parent = cur
	n.hasParent = true
	n.cameFrom = d
	n.f = n.g + n.h
	ol.push(n, cur.f)
}

func heuristic(p, goal geom.Point) int32 {
	return int32(geom.OctileCost(goal.X-p.X, goal.Y-p.Y))
}

// pointOnRay reports whether goal lies on the ray from origin along
// delta, and if so at what integer step distance.
func pointOnRay(origin, delta, goal geom.Point) (bool, int) {
	dx, dy := goal.X-origin.X, goal.Y-origin.Y
	switch {
	case delta.X == 0:
		if dx != 0 {
			return false, 0
		}
		if dy == 0 || sign(dy) != sign(delta.Y) {
			return false, 0
		}
		return true, abs(dy)
	case delta.Y == 0:
		if dy != 0 {
			return false, 0
		}
		if dx == 0 || sign(dx) != sign(delta.X) {
			return false, 0
		}
		return true, abs(dx)
	default:
		if dx == 0 || dy == 0 {
			return false, 0
		}
		if sign(dx) != sign(delta.X) || sign(dy) != sign(delta.Y) {
			return false, 0
		}
		if abs(dx) != abs(dy) {
			return false, 0
		}
		return true, abs(dx)
	}
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func reconstruct(n *node) []geom.Point {
	var out []geom.Point
	for cur := n; cur != nil; {
		out = append(out, cur.pos)
		if !cur.hasParent {
			break
		}
		cur = cur.parent
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
