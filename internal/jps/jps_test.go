package jps

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/geom"
)

// gridOpen is a minimal Open implementation over a '.'/'#' rune grid,
// used only by this package's tests.
type gridOpen struct {
	rows []string
}

func (g gridOpen) IsValidTile(p geom.Point) bool {
	return p.Y >= 0 && p.Y < len(g.rows) && p.X >= 0 && p.X < len(g.rows[p.Y])
}

func (g gridOpen) IsOpen(p geom.Point) bool {
	if !g.IsValidTile(p) {
		return false
	}
	return g.rows[p.Y][p.X] != '#'
}

func openField(w, h int) gridOpen {
	rows := make([]string, h)
	for y := range rows {
		row := make([]byte, w)
		for x := range row {
			row[x] = '.'
		}
		rows[y] = string(row)
	}
	return gridOpen{rows: rows}
}

func TestGetPathOpenField(t *testing.T) {
	Convey("Given an open 10x10 field with no obstacles", t, func() {
		open := openField(10, 10)
		pm := NewPrecomputeMap(open, 10, 10)
		finder := NewFinder(pm)

		Convey("A straight horizontal path reaches the goal directly", func() {
			path := finder.GetPath(geom.Point{X: 0, Y: 0}, geom.Point{X: 5, Y: 0})
			So(path, ShouldNotBeNil)
			So(path[0], ShouldResemble, geom.Point{X: 0, Y: 0})
			So(path[len(path)-1], ShouldResemble, geom.Point{X: 5, Y: 0})
		})

		Convey("A diagonal path reaches the goal directly", func() {
			path := finder.GetPath(geom.Point{X: 0, Y: 0}, geom.Point{X: 4, Y: 4})
			So(path, ShouldNotBeNil)
			So(path[len(path)-1], ShouldResemble, geom.Point{X: 4, Y: 4})
		})

		Convey("Start equal to goal returns a single-tile path", func() {
			path := finder.GetPath(geom.Point{X: 3, Y: 3}, geom.Point{X: 3, Y: 3})
			So(path, ShouldResemble, []geom.Point{{X: 3, Y: 3}})
		})
	})
}

func TestGetPathAroundWall(t *testing.T) {
	Convey("Given a field with a wall splitting it in two, gapped at the bottom", t, func() {
		rows := []string{
			"..........",
			"..........",
			"..........",
			"#####.####",
			"..........",
			"..........",
		}
		open := gridOpen{rows: rows}
		pm := NewPrecomputeMap(open, 10, 6)
		finder := NewFinder(pm)

		Convey("The path detours through the gap instead of failing", func() {
			path := finder.GetPath(geom.Point{X: 0, Y: 0}, geom.Point{X: 9, Y: 5})
			So(path, ShouldNotBeNil)
			So(path[len(path)-1], ShouldResemble, geom.Point{X: 9, Y: 5})

			foundGap := false
			for _, p := range path {
				if p.Y == 3 && p.X == 5 {
					foundGap = true
				}
			}
			So(foundGap, ShouldBeTrue)
		})
	})
}

func TestGetPathNoPath(t *testing.T) {
	Convey("Given a field fully sealed by a solid wall", t, func() {
		rows := []string{
			"..........",
			"..........",
			"..........",
			"##########",
			"..........",
			"..........",
		}
		open := gridOpen{rows: rows}
		pm := NewPrecomputeMap(open, 10, 6)
		finder := NewFinder(pm)

		Convey("GetPath returns nil", func() {
			path := finder.GetPath(geom.Point{X: 0, Y: 0}, geom.Point{X: 9, Y: 5})
			So(path, ShouldBeNil)
		})
	})
}

func TestPrecomputeMapDirty(t *testing.T) {
	Convey("Given a precompute map over an open field", t, func() {
		open := openField(5, 5)
		pm := NewPrecomputeMap(open, 5, 5)

		Convey("MarkDirty forces recomputation on the next query", func() {
			before := pm.At(geom.Point{X: 2, Y: 2})
			pm.MarkDirty()
			after := pm.At(geom.Point{X: 2, Y: 2})
			So(after, ShouldResemble, before)
			So(pm.dirty, ShouldBeFalse)
		})
	})
}
