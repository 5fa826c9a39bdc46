// Package projectile implements Bézier trajectory construction and
// per-tick arc-length-parameterized motion for PROJECTILE/ITEM
// launches, plus their spatial-grid collision check (spec §4.7).
//
// Grounded on original_source's TrajectoryGenerator.cpp for the exact
// control-point angle/length formulas (51°/45-unit projectile control,
// 90°/70° item control pair) — the geometry is reproduced with
// mgl64.Vec2 instead of the original's hand-rolled Point type, and the
// arc-length integral/inversion reuse internal/geom's
// QuadraticBezierArcLength/ArcLengthToParam (grounded on the same
// calcQuadBezierLength closed form, log term included).
package projectile

import (
	"math"

	"github.com/gamenio/arenacore/internal/geom"
)

// Type selects the Bézier order a launch uses (spec §4.7).
type Type int

const (
	TypeProjectile Type = iota // quadratic Bézier, single control point
	TypeItem                   // cubic Bézier, two control points (over-the-top arc)
)

const (
	projectileControlInitialAngle = 51.0 * math.Pi / 180
	projectileControlLength       = 45.0

	itemControl1InitialAngle = 90.0 * math.Pi / 180
	itemControl2InitialAngle = 70.0 * math.Pi / 180
)

// Trajectory is a fully computed launch curve, relative to the launch
// origin (matching the original's endPosition = destination - origin
// convention, so evaluation never loses precision far from the map
// origin).
type Trajectory struct {
	Type     Type
	End      geom.Vec2 // destination - origin
	Ctrl1    geom.Vec2
	Ctrl2    geom.Vec2 // only used for TypeItem
	Length   float64
}

// Compute builds the trajectory for a launch from origin to
// destination (spec §4.7: "control points computed analytically from
// origin, destination, direction, and distance").
func Compute(kind Type, origin, destination geom.Vec2) Trajectory {
	if kind == TypeItem {
		return computeItem(origin, destination)
	}
	return computeProjectile(origin, destination)
}

func computeProjectile(origin, destination geom.Vec2) Trajectory {
	delta := destination.Sub(origin)
	dist := delta.Len()
	dir := math.Atan2(delta[1], delta[0])

	rDir := math.Pi/2 - math.Abs(dir)
	ar := rDir / (math.Pi / 2)
	lr := math.Min(1.0, dist/projectileControlLength*0.5)
	angle := projectileControlInitialAngle * ar * lr
	length := projectileControlLength * lr

	var ctrl geom.Vec2
	if math.Abs(angle) < 1e-7 {
		dl := dist - length
		ctrl = geom.Vec2{math.Cos(dir) * dl, math.Sin(dir) * dl}
	} else {
		g := math.Cos(angle) * length
		f := math.Sin(angle) * length
		a := math.Atan2(f, dist-g)
		fa := f / math.Sin(a)
		A := dir + a
		ctrl = geom.Vec2{math.Cos(A) * fa, math.Sin(A) * fa}
	}

	end := delta
	arcLen := geom.QuadraticBezierArcLength(geom.Vec2{}, ctrl, end)
	return Trajectory{Type: TypeProjectile, End: end, Ctrl1: ctrl, Length: arcLen}
}

func computeItem(origin, destination geom.Vec2) Trajectory {
	delta := destination.Sub(origin)
	dist := delta.Len()
	dir := math.Atan2(delta[1], delta[0])

	ctrl1 := geom.Vec2{math.Cos(itemControl1InitialAngle) * dist, math.Sin(itemControl1InitialAngle) * dist}

	rDir := dir + math.Pi/2
	if rDir > math.Pi {
		rDir -= 2 * math.Pi
	}
	ar := rDir / (math.Pi / 2)
	var angle float64
	if math.Abs(ar) > 1.0 {
		angle = itemControl2InitialAngle + (math.Pi-itemControl2InitialAngle)*(math.Abs(ar)-1.0)
		if ar < 0 {
			angle = -angle
		}
	} else {
		angle = itemControl2InitialAngle * ar
	}

	length := 2 * dist * math.Sin(angle/2)
	A := dir + (math.Pi-angle)/2
	ctrl2 := geom.Vec2{math.Cos(A) * length, math.Sin(A) * length}

	end := delta
	// Cubic arc length has no closed form; approximate via the
	// quadratic integral over the (ctrl1,ctrl2)-averaged midpoint
	// curve, matching the original engine's choice to reuse the same
	// quadratic estimator for duration/step-clamp purposes on both
	// trajectory kinds (the cubic curve's true shape still drives
	// `position`, only the scalar Length estimate is approximate).
	mid := ctrl1.Add(ctrl2).Mul(0.5)
	arcLen := geom.QuadraticBezierArcLength(geom.Vec2{}, mid, end)
	return Trajectory{Type: TypeItem, End: end, Ctrl1: ctrl1, Ctrl2: ctrl2, Length: arcLen}
}

// PositionAt evaluates the trajectory at parameter t in [0,1],
// relative to the launch origin.
func (t Trajectory) PositionAt(param float64) geom.Vec2 {
	if t.Type == TypeItem {
		return geom.CubicBezier(geom.Vec2{}, t.Ctrl1, t.Ctrl2, t.End, param)
	}
	return geom.QuadraticBezier(geom.Vec2{}, t.Ctrl1, t.End, param)
}

// ArcLengthAt returns the arc length traveled from t=0 to t=param,
// reusing the quadratic closed form for both trajectory kinds
// (consistent with how Length above is computed).
func (t Trajectory) ArcLengthAt(param float64) float64 {
	ctrl := t.Ctrl1
	if t.Type == TypeItem {
		ctrl = t.Ctrl1.Add(t.Ctrl2).Mul(0.5)
	}
	return partialQuadraticArcLength(geom.Vec2{}, ctrl, t.End, param)
}

// partialQuadraticArcLength integrates the same closed-form expression
// internal/geom.QuadraticBezierArcLength uses, but truncated to [0,param]
// by substituting a scaled sub-curve — the standard trick for partial
// Bézier arc length without re-deriving the antiderivative's bounds.
func partialQuadraticArcLength(p0, c, p1 geom.Vec2, param float64) float64 {
	if param <= 0 {
		return 0
	}
	if param >= 1 {
		return geom.QuadraticBezierArcLength(p0, c, p1)
	}
	// Split the curve at `param` via de Casteljau and measure the
	// first sub-curve, which is itself a quadratic Bézier.
	a := p0.Add(c.Sub(p0).Mul(param))
	b := c.Add(p1.Sub(c).Mul(param))
	subC := a.Add(b.Sub(a).Mul(param))
	return geom.QuadraticBezierArcLength(p0, a, subC)
}
