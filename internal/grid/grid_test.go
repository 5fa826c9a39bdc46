package grid

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/core/ecs"
)

func TestToCellCoord(t *testing.T) {
	Convey("Cell coordinates floor-divide world positions, including negatives", t, func() {
		So(ToCellCoord(0, 0), ShouldResemble, Coord{0, 0})
		So(ToCellCoord(255, 255), ShouldResemble, Coord{0, 0})
		So(ToCellCoord(256, 0), ShouldResemble, Coord{1, 0})
		So(ToCellCoord(-1, -1), ShouldResemble, Coord{-1, -1})
		So(ToCellCoord(-256, -257), ShouldResemble, Coord{-1, -2})
	})
}

func TestGridInsertRemove(t *testing.T) {
	Convey("A fresh grid", t, func() {
		g := New()
		id := ecs.EntityID(1)

		Convey("Insert places an entity into the correct cell bucket", func() {
			c := g.Insert(id, KindBot, 10, 10)
			So(c, ShouldResemble, Coord{0, 0})

			cells := g.Neighbourhood(10, 10, 0)
			So(cells, ShouldHaveLength, 1)
			_, present := cells[0].Bots[id]
			So(present, ShouldBeTrue)

			Convey("Remove deallocates the cell once it becomes empty", func() {
				g.Remove(id, KindBot, c)
				So(g.Neighbourhood(10, 10, 0), ShouldBeEmpty)
			})
		})
	})
}

func TestGridRelocation(t *testing.T) {
	Convey("An entity that moves to a new cell", t, func() {
		g := New()
		id := ecs.EntityID(7)
		from := g.Insert(id, KindBot, 10, 10)
		to := ToCellCoord(5000, 5000)

		g.QueueRelocate(id, KindBot, from, to)

		Convey("DrainRelocations moves it and marks both the source and destination cells", func() {
			touched := g.DrainRelocations()
			So(touched, ShouldHaveLength, 2)
			for _, c := range touched {
				So(c.marked, ShouldBeTrue)
			}

			fromCells := g.Neighbourhood(10, 10, 0)
			So(fromCells, ShouldBeEmpty) // old cell deallocated, no longer holds id

			toWorldX, toWorldY := to.CX*CellUnits, to.CY*CellUnits
			toCells := g.Neighbourhood(toWorldX, toWorldY, 0)
			So(toCells, ShouldHaveLength, 1)
			_, present := toCells[0].Bots[id]
			So(present, ShouldBeTrue)

			Convey("ClearMarks resets every cell's marked flag", func() {
				g.ClearMarks()
				So(g.MarkedCells(), ShouldBeEmpty)
			})
		})
	})
}

func TestGridNeighbourhoodRadius(t *testing.T) {
	Convey("Entities scattered across adjacent cells", t, func() {
		g := New()
		near := ecs.EntityID(1)
		far := ecs.EntityID(2)
		g.Insert(near, KindBot, 300, 0)    // one cell over
		g.Insert(far, KindBot, 5000, 5000) // many cells away

		Convey("Neighbourhood only returns cells within the requested radius", func() {
			cells := g.Neighbourhood(0, 0, CellUnits)
			found := map[ecs.EntityID]bool{}
			for _, c := range cells {
				for id := range c.Bots {
					found[id] = true
				}
			}
			So(found[near], ShouldBeTrue)
			So(found[far], ShouldBeFalse)
		})
	})
}

func TestGridMaxVisibleRange(t *testing.T) {
	Convey("SetMaxVisibleRange/MaxVisibleRange round-trip", t, func() {
		g := New()
		g.SetMaxVisibleRange(512)
		So(g.MaxVisibleRange(), ShouldEqual, int32(512))
	})
}
