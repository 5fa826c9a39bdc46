package spawn

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/data"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/mapdata"
	"github.com/gamenio/arenacore/internal/target"
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

func TestPlayerQueue(t *testing.T) {
	Convey("Given a player queue expecting 2 players", t, func() {
		q := NewPlayerQueue(2)

		Convey("IsAllHere is false until both have joined", func() {
			So(q.IsAllHere(), ShouldBeFalse)
			q.Add(ecs.EntityID(1))
			So(q.IsAllHere(), ShouldBeFalse)
			q.Add(ecs.EntityID(2))
			So(q.IsAllHere(), ShouldBeTrue)
		})

		Convey("Adding the same id twice is a no-op", func() {
			So(q.Add(ecs.EntityID(1)), ShouldBeTrue)
			So(q.Add(ecs.EntityID(1)), ShouldBeFalse)
			So(q.Count(), ShouldEqual, 1)
		})

		Convey("Remove takes a player back out of the queue", func() {
			q.Add(ecs.EntityID(1))
			q.Add(ecs.EntityID(2))
			q.Remove(ecs.EntityID(1))
			So(q.Count(), ShouldEqual, 1)
			So(q.IsAllHere(), ShouldBeFalse)
		})
	})
}

func TestRobotFillerFillsToCap(t *testing.T) {
	Convey("Given a robot spawn table with two spawn areas and one difficulty", t, func() {
		m := openMap(30, 30)
		table := &data.RobotSpawnTable{
			Difficulties: []data.RobotDifficulty{{Name: "easy", Weight: 1, LevelMin: 1, LevelMax: 3}},
			SpawnInfos: []data.RobotSpawnInfo{
				{NatureID: 1, Weight: 1, LowX: 0, LowY: 0, HighX: 5, HighY: 5},
				{NatureID: 2, Weight: 1, LowX: 20, LowY: 20, HighX: 25, HighY: 25},
			},
			Names:     []string{"Rex"},
			Countries: []string{"NS"},
		}
		f := NewRobotFiller(table, m, rand.New(rand.NewSource(1)))

		Convey("FillIfNeeded spawns exactly the shortfall", func() {
			spawns := f.FillIfNeeded(3, 10)
			So(len(spawns), ShouldEqual, 7)
			for _, s := range spawns {
				So(s.Level, ShouldBeBetweenOrEqual, 1, 3)
				So(m.IsOpen(s.Pos), ShouldBeTrue)
			}
		})

		Convey("FillIfNeeded is a no-op once at capacity", func() {
			So(f.FillIfNeeded(10, 10), ShouldBeEmpty)
		})
	})
}

func TestLootRoller(t *testing.T) {
	Convey("Given a loot table with a single item entry", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "loot_list.yaml")
		yamlBody := "loots:\n  - loot_id: 1\n    items:\n      - item_id: 7\n        weight: 1\n        min_count: 2\n        max_count: 4\n"
		if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
			t.Fatal(err)
		}
		table, err := data.LoadLootTable(path)
		So(err, ShouldBeNil)
		roller := NewLootRoller(table, rand.New(rand.NewSource(1)))

		Convey("Roll always returns the only entry, count within bounds", func() {
			loot := roller.Roll(1, 5)
			So(len(loot), ShouldEqual, 5)
			for _, l := range loot {
				So(l.ItemID, ShouldEqual, int32(7))
				So(l.Count, ShouldBeBetweenOrEqual, int32(2), int32(4))
			}
		})

		Convey("Rolling an unknown loot id returns nothing", func() {
			So(roller.Roll(999, 3), ShouldBeEmpty)
		})
	})
}

func TestItemCounters(t *testing.T) {
	Convey("Given a fresh item counter set", t, func() {
		c := NewItemCounters()

		Convey("Increase updates both the per-item and per-class totals", func() {
			c.Increase(100, target.ItemClassMagicBean, 1)
			c.Increase(100, target.ItemClassMagicBean, 1)
			So(c.ItemCount(100), ShouldEqual, 2)
			So(c.ClassCount(target.ItemClassMagicBean), ShouldEqual, 2)
		})

		Convey("A negative delta decrements on pickup", func() {
			c.Increase(100, target.ItemClassMagicBean, 1)
			c.Increase(100, target.ItemClassMagicBean, -1)
			So(c.ItemCount(100), ShouldEqual, 0)
		})
	})
}

func TestFloorRespawner(t *testing.T) {
	Convey("Given a floor respawner with one scheduled item", t, func() {
		r := NewFloorRespawner()
		r.Schedule(geom.Point{X: 1, Y: 1}, 42, 1, 5*time.Second)

		Convey("Update before the delay elapses returns nothing", func() {
			ready := r.Update(2 * time.Second)
			So(ready, ShouldBeEmpty)
			So(r.Pending(), ShouldEqual, 1)
		})

		Convey("Update past the delay returns the respawned item and clears pending", func() {
			r.Update(2 * time.Second)
			ready := r.Update(4 * time.Second)
			So(len(ready), ShouldEqual, 1)
			So(ready[0].ItemID, ShouldEqual, int32(42))
			So(r.Pending(), ShouldEqual, 0)
		})
	})
}
