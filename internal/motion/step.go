package motion

import (
	"math/rand"

	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/jps"
)

// Walkable is the passability query step generators need.
type Walkable interface {
	IsOpen(p geom.Point) bool
}

// StepGenerator produces the next single-tile step toward (or around)
// a target, given the mover's current position (spec §4.3).
type StepGenerator interface {
	NextStep(current, target geom.Point) (step geom.Point, ok bool)
}

// TargetStepGenerator wraps a jps.Finder, caching the last path so a
// mover that reached its expected step and whose target hasn't moved
// doesn't requery every tick (spec §4.3).
type TargetStepGenerator struct {
	finder       *jps.Finder
	path         []geom.Point
	idx          int
	target       geom.Point
	expectedStep geom.Point
	hasTarget    bool
}

func NewTargetStepGenerator(finder *jps.Finder) *TargetStepGenerator {
	return &TargetStepGenerator{finder: finder}
}

// NextStep returns the next tile step toward target, clamped to
// |dx|<=1 and |dy|<=1 as spec §4.3 requires.
func (g *TargetStepGenerator) NextStep(current, target geom.Point) (geom.Point, bool) {
	reusable := g.hasTarget && g.target == target && current == g.expectedStep && g.idx < len(g.path)
	if !reusable {
		g.path = g.finder.GetPath(current, target)
		g.idx = 0
		g.target = target
		g.hasTarget = true
		if len(g.path) > 0 && g.path[0] == current {
			g.idx = 1
		}
	}
	if g.idx >= len(g.path) {
		return geom.Point{}, false
	}
	next := clampStep(current, g.path[g.idx])
	g.idx++
	g.expectedStep = next
	return next, true
}

// clampStep reduces a (possibly multi-tile jump-point) step to a
// single tile in the same direction, since the step generator contract
// is "one tile at a time" (spec §4.3) even though JPS+ returns coarse
// waypoints.
func clampStep(current, next geom.Point) geom.Point {
	dx := sign(next.X - current.X)
	dy := sign(next.Y - current.Y)
	return geom.Point{X: current.X + dx, Y: current.Y + dy}
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

// RandomStepGenerator picks uniformly among the walkable 4-cardinal +
// 4-diagonal neighbours, gating diagonals on both adjacent cardinals
// being walkable (spec §4.3).
type RandomStepGenerator struct {
	open Walkable
	rng  *rand.Rand
}

func NewRandomStepGenerator(open Walkable, rng *rand.Rand) *RandomStepGenerator {
	return &RandomStepGenerator{open: open, rng: rng}
}

// NextStep ignores target; it always wanders to a random open neighbour.
func (g *RandomStepGenerator) NextStep(current, _ geom.Point) (geom.Point, bool) {
	var candidates []geom.Point
	for d := geom.DirD; d <= geom.DirDL; d++ {
		delta := geom.Deltas[d]
		np := current.Add(delta)
		if !g.open.IsOpen(np) {
			continue
		}
		if d.IsDiagonal() {
			cardA := geom.Point{X: current.X + delta.X, Y: current.Y}
			cardB := geom.Point{X: current.X, Y: current.Y + delta.Y}
			if !g.open.IsOpen(cardA) || !g.open.IsOpen(cardB) {
				continue
			}
		}
		candidates = append(candidates, np)
	}
	if len(candidates) == 0 {
		return geom.Point{}, false
	}
	return candidates[g.rng.Intn(len(candidates))], true
}
