// Package geom holds the fixed-point and vector math shared across
// pathfinding, motion, and projectile trajectory: the octile heuristic
// multiplier, point/distance helpers built on mgl64.Vec2, and the
// quadratic/cubic Bézier curves used by trajectory generation
// (spec §6).
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Fixed-point heuristic constants from JPS+ (spec §5.2). Costs are
// carried as integers scaled by Unit to avoid floating point drift
// across thousands of node expansions in a single search.
const (
	Unit        = 2378 // 1.0 scaled
	DiagUnit    = 3363 // sqrt(2) scaled
	DiagMinUnit = 985  // sqrt(2)-1 scaled, the extra cost of one diagonal step over one orthogonal step
)

// OctileCost returns the fixed-point cost of moving dx,dy tiles (both
// non-negative) using the standard octile distance: diagonal moves
// first, then the remaining straight moves.
func OctileCost(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return DiagUnit*dy + Unit*(dx-dy)
	}
	return DiagUnit*dx + Unit*(dy-dx)
}

// Point is a tile coordinate.
type Point struct {
	X, Y int
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Direction is one of the 8 fixed JPS+ expansion directions, always
// visited in this order (spec §5.3): D, DR, R, UR, U, UL, L, DL.
type Direction int

const (
	DirD Direction = iota
	DirDR
	DirR
	DirUR
	DirU
	DirUL
	DirL
	DirDL
)

// Deltas gives the tile offset for each Direction, indexed identically
// to the Direction constants.
var Deltas = [8]Point{
	DirD:  {0, -1},
	DirDR: {1, -1},
	DirR:  {1, 0},
	DirUR: {1, 1},
	DirU:  {0, 1},
	DirUL: {-1, 1},
	DirL:  {-1, 0},
	DirDL: {-1, -1},
}

// IsDiagonal reports whether d is one of the four diagonal directions.
func (d Direction) IsDiagonal() bool {
	return d == DirDR || d == DirUR || d == DirUL || d == DirDL
}

// Vec2 aliases mgl64's 2D vector for world-space (as opposed to tile)
// positions: grid placement, move-spline waypoints, trajectory curves.
type Vec2 = mgl64.Vec2

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec2) float64 {
	return a.Sub(b).Len()
}

// QuadraticBezier evaluates a quadratic Bézier curve with control
// point c at parameter t in [0,1] (spec §6.1: PROJECTILE trajectories
// use a single control point).
func QuadraticBezier(p0, c, p1 Vec2, t float64) Vec2 {
	u := 1 - t
	return p0.Mul(u * u).Add(c.Mul(2 * u * t)).Add(p1.Mul(t * t))
}

// CirclePoint returns the point at angle (radians, counterclockwise
// from +X) on a circle of radius r centred at c.
func CirclePoint(c Vec2, r, angle float64) Vec2 {
	return Vec2{c[0] + r*math.Cos(angle), c[1] + r*math.Sin(angle)}
}

// AngleOf returns the angle (radians) of p relative to centre c.
func AngleOf(c, p Vec2) float64 {
	d := p.Sub(c)
	return math.Atan2(d[1], d[0])
}

// TangentPoints returns the two points where lines from external point
// p touch a circle of radius r centred at c, used by the escape
// generator's bypass-enemy geometry (spec §4.3: "tangent lines from
// bot and from goal to a circle at the enemy's position"). Returns
// ok=false if p lies inside the circle (no real tangent exists).
func TangentPoints(c Vec2, r float64, p Vec2) (t1, t2 Vec2, ok bool) {
	d := Dist(c, p)
	if d <= r {
		return Vec2{}, Vec2{}, false
	}
	// Standard tangent-line construction: angle between c->p and
	// c->tangent-point is acos(r/d); the tangent points sit at the
	// base angle plus/minus that offset.
	base := AngleOf(c, p)
	offset := math.Acos(r / d)
	t1 = CirclePoint(c, r, base+offset)
	t2 = CirclePoint(c, r, base-offset)
	return t1, t2, true
}

// CubicBezier evaluates a cubic Bézier curve with control points c0,c1
// at parameter t in [0,1] (spec §6.1: ITEM trajectories use two
// control points).
func CubicBezier(p0, c0, c1, p1 Vec2, t float64) Vec2 {
	u := 1 - t
	a := p0.Mul(u * u * u)
	b := c0.Mul(3 * u * u * t)
	c := c1.Mul(3 * u * t * t)
	d := p1.Mul(t * t * t)
	return a.Add(b).Add(c).Add(d)
}

// QuadraticBezierArcLength gives the closed-form arc length of a
// quadratic Bézier from t=0 to t=1, via the standard log-based
// antiderivative (spec §6.2). Degenerates gracefully to the straight
// line length when the control point is collinear with the endpoints.
func QuadraticBezierArcLength(p0, c, p1 Vec2) float64 {
	ax := p0[0] - 2*c[0] + p1[0]
	ay := p0[1] - 2*c[1] + p1[1]
	bx := 2*c[0] - 2*p0[0]
	by := 2*c[1] - 2*p0[1]

	A := 4 * (ax*ax + ay*ay)
	B := 4 * (ax*bx + ay*by)
	C := bx*bx + by*by

	if A < 1e-9 {
		// control point collinear / degenerate: straight line.
		return math.Sqrt(C)
	}

	sAbc := math.Sqrt(A + B + C)
	sA := math.Sqrt(A)
	sC := math.Sqrt(C)
	if sC < 1e-12 {
		sC = 1e-12
	}

	numer1 := 2*sA*sAbc + 2*A + B
	denom1 := 2*sA*sC + B
	if denom1 < 1e-12 {
		denom1 = 1e-12
	}

	logTerm := math.Log(numer1/denom1) * (B*B - 4*A*C) / (8 * A * sA)
	return (2*A*sAbc+B*(sAbc-sC))/(4*A) - logTerm
}

// ArcLengthToParam inverts arc length s (0<=s<=total) back to a Bézier
// parameter t via Newton-Raphson, as the closed-form integral has no
// closed-form inverse (spec §6.2: tolerance 1e-4, max 10 iterations).
func ArcLengthToParam(arcLenAt func(t float64) float64, speedAt func(t float64) float64, target, total float64) float64 {
	if total <= 0 {
		return 0
	}
	t := target / total // linear initial guess
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	const tol = 1e-4
	const maxIter = 10
	for i := 0; i < maxIter; i++ {
		f := arcLenAt(t) - target
		if math.Abs(f) < tol {
			break
		}
		speed := speedAt(t)
		if speed < 1e-9 {
			break
		}
		t -= f / speed
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	return t
}
