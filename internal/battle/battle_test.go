package battle

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/mapdata"
)

func openMap(w, h int) *mapdata.Map {
	rows := make([]string, h)
	for y := range rows {
		row := make([]byte, w)
		for x := range row {
			row[x] = '.'
		}
		rows[y] = string(row)
	}
	return mapdata.NewForTest(mapdata.MapInfo{Width: w, Height: h}, rows)
}

func baseConfig() Config {
	return Config{
		PreparingDuration:   1 * time.Second,
		BattleDuration:      10 * time.Second,
		InitialSafeRadius:   20,
		InitialSafeDistance: 2,
		AlertRadius:         6,
		Seed:                42,
	}
}

func TestLifecycleTransitions(t *testing.T) {
	Convey("Given a freshly constructed battle on a 40x40 open map", t, func() {
		m := openMap(40, 40)
		b := New(m, baseConfig(), nil)

		Convey("Start enters PREPARING", func() {
			b.Start(time.Now())
			So(b.State, ShouldEqual, StatePreparing)
		})

		Convey("PREPARING advances to IN_PROGRESS once its duration elapses", func() {
			b.Start(time.Now())
			b.Tick(2 * time.Second)
			So(b.State, ShouldEqual, StateInProgress)
		})

		Convey("IN_PROGRESS moves to ENDING once only one unit remains and all pending arrived", func() {
			b.Start(time.Now())
			b.Tick(2 * time.Second)
			b.SetAliveCount(1)
			b.SetAllPendingArrived(true)
			b.Tick(1 * time.Millisecond)
			So(b.State, ShouldEqual, StateEnding)
		})

		Convey("ENDING moves to ENDED once the in-battle player counter reaches zero", func() {
			b.Start(time.Now())
			b.Tick(2 * time.Second)
			b.SetPlayerWithdrew(true)
			b.Tick(1 * time.Millisecond)
			So(b.State, ShouldEqual, StateEnding)
			b.PlayerInBattleCount = 0
			b.Tick(1 * time.Millisecond)
			So(b.State, ShouldEqual, StateEnded)
		})
	})

	Convey("Given a training-ground battle config", t, func() {
		m := openMap(20, 20)
		cfg := baseConfig()
		cfg.IsTraining = true
		b := New(m, cfg, nil)

		Convey("Start skips PREPARING and enters IN_PROGRESS directly", func() {
			b.Start(time.Now())
			So(b.State, ShouldEqual, StateInProgress)
		})
	})
}

func TestSafeZoneShrink(t *testing.T) {
	Convey("Given an in-progress battle halfway through its duration", t, func() {
		m := openMap(40, 40)
		b := New(m, baseConfig(), nil)
		b.Start(time.Now())
		b.Tick(2 * time.Second) // -> IN_PROGRESS

		Convey("The safe radius shrinks proportionally to elapsed time", func() {
			b.Tick(5 * time.Second)
			So(b.SafeRadius, ShouldBeLessThan, 20)
			So(b.SafeRadius, ShouldBeGreaterThan, 0)
		})

		Convey("The safe distance decrements on every shrink, floored at zero", func() {
			before := b.SafeDistance
			b.Tick(1 * time.Second)
			So(b.SafeDistance, ShouldBeLessThanOrEqualTo, before)
		})

		Convey("Crossing the alert radius sets DangerAlertTriggered exactly once", func() {
			So(b.DangerAlertTriggered, ShouldBeFalse)
			b.Tick(8 * time.Second)
			So(b.DangerAlertTriggered, ShouldBeTrue)
		})
	})
}

func TestWaypointGraphUnlinksOutOfZoneNodes(t *testing.T) {
	Convey("Given a battle with waypoints registered at increasing distance from centre", t, func() {
		m := openMap(150, 150)
		b := New(m, baseConfig(), nil)
		center := geom.Point{X: int(b.Center[0]), Y: int(b.Center[1])}

		near := geom.Point{X: center.X + 2, Y: center.Y}
		far := geom.Point{X: center.X + 50, Y: center.Y}
		m.RegisterWaypoint(near, nil)
		m.RegisterWaypoint(far, nil)
		m.LinkWaypoints(near, far)

		b.Start(time.Now())
		b.Tick(2 * time.Second) // -> IN_PROGRESS

		Convey("A shrink that pushes the effective radius below far's distance unlinks it", func() {
			b.Tick(9 * time.Second)
			So(b.unlinked[far], ShouldBeTrue)
		})
	})
}

func TestPatrolPointsWithinRadius(t *testing.T) {
	Convey("Given a battle that has rebuilt its patrol-point table", t, func() {
		m := openMap(30, 30)
		b := New(m, baseConfig(), nil)
		b.rebuildPatrolPoints(10)

		Convey("PatrolPointsWithinRadius at the sight distance returns every cached point", func() {
			So(len(b.PatrolPointsWithinRadius(10)), ShouldEqual, len(b.patrolPoints))
		})

		Convey("A radius below the sight distance returns a subset of the cached points", func() {
			sub := b.PatrolPointsWithinRadius(5)
			So(len(sub), ShouldBeLessThanOrEqualTo, len(b.patrolPoints))
		})
	})
}
