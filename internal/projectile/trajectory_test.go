package projectile

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/geom"
)

func TestQuadraticBezierArcLength(t *testing.T) {
	Convey("A quadratic Bezier with p0=(0,0), control=(50,100), p1=(100,0)", t, func() {
		length := geom.QuadraticBezierArcLength(geom.Vec2{0, 0}, geom.Vec2{50, 100}, geom.Vec2{100, 0})

		Convey("its arc length matches the closed-form reference", func() {
			So(length, ShouldAlmostEqual, 147.89, 1e-3)
		})
	})
}

func TestStateAdvance(t *testing.T) {
	Convey("A projectile launched across a fixed distance", t, func() {
		origin := geom.Vec2{0, 0}
		dest := geom.Vec2{1000, 0}
		s := NewState(TypeProjectile, origin, dest, time.Second)

		Convey("reaches its destination exactly when elapsed time equals duration", func() {
			var pos geom.Vec2
			var finished bool
			for i := 0; i < 200; i++ {
				pos, finished = s.Advance(10 * time.Millisecond)
				if finished {
					break
				}
			}
			So(finished, ShouldBeTrue)
			So(geom.Dist(pos, origin.Add(s.Trajectory.End)), ShouldBeLessThan, 1e-6)
		})

		Convey("never steps further than MaxStepLength in world units per tick", func() {
			prev := origin
			for i := 0; i < 200; i++ {
				pos, finished := s.Advance(50 * time.Millisecond)
				So(geom.Dist(pos, prev), ShouldBeLessThanOrEqualTo, MaxStepLength+1e-6)
				prev = pos
				if finished {
					break
				}
			}
		})
	})
}

func TestCheckCollision(t *testing.T) {
	Convey("A projectile at the origin with one candidate in range and one out of range", t, func() {
		near := Candidate{ID: ecs.EntityID(1), Pos: geom.Vec2{10, 0}, Radius: 20}
		far := Candidate{ID: ecs.EntityID(2), Pos: geom.Vec2{500, 0}, Radius: 20}

		Convey("only the in-range candidate is reported as a hit", func() {
			hits := CheckCollision(geom.Vec2{0, 0}, []Candidate{near, far}, nil)
			So(len(hits), ShouldEqual, 1)
			So(hits[0].Target, ShouldEqual, near.ID)
			So(hits[0].Precision, ShouldBeGreaterThan, 0)
		})

		Convey("a candidate already marked as collided is never reported again", func() {
			already := map[ecs.EntityID]struct{}{near.ID: {}}
			hits := CheckCollision(geom.Vec2{0, 0}, []Candidate{near, far}, already)
			So(hits, ShouldBeEmpty)
		})
	})
}
