package data

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/target"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "table.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadNatureTable(t *testing.T) {
	Convey("Given a nature table YAML with one entry", t, func() {
		path := writeFile(t, `
natures:
  - nature_id: 1
    name: skirmisher
    max_health: 100
    max_stamina: 50
    stamina_regen_rate: 0.1
    charge_consume_rate: 1.0
    attack_takes_stamina: 10
    threat_modifiers:
      - [1.0, 0.5, 0.8, 0.3]
      - [0.2, 0.1, 0.1, 0.1]
    min_dodge_reaction_ms: 200
    max_dodge_reaction_ms: 600
    attack_abandon_distance: 380
`)
		table, err := LoadNatureTable(path)

		Convey("The table loads and indexes by nature id", func() {
			So(err, ShouldBeNil)
			So(table.Count(), ShouldEqual, 1)
			n := table.Get(1)
			So(n, ShouldNotBeNil)
			So(n.Name, ShouldEqual, "skirmisher")
			So(n.ThreatModifierMatrix()[0][0], ShouldEqual, 1.0)
		})

		Convey("An unknown nature id returns nil", func() {
			So(table.Get(999), ShouldBeNil)
		})
	})
}

func TestLoadItemTable(t *testing.T) {
	Convey("Given an item table YAML with an equipment and a gold entry", t, func() {
		path := writeFile(t, `
items:
  - item_id: 1
    name: Rusty Sword
    class: equipment
    level: 3
    stack_max: 1
  - item_id: 2
    name: Coins
    class: gold
    stack_max: 999
`)
		table, err := LoadItemTable(path)
		So(err, ShouldBeNil)

		Convey("TargetClass maps the YAML class string correctly", func() {
			So(table.Get(1).TargetClass(), ShouldEqual, target.ItemClassEquipment)
			So(table.Get(2).TargetClass(), ShouldEqual, target.ItemClassGold)
		})

		Convey("An unrecognized class string falls back to ItemClassNone", func() {
			it := &ItemTemplate{Class: "unknown"}
			So(it.TargetClass(), ShouldEqual, target.ItemClassNone)
		})
	})
}

func TestLoadItemBoxTable(t *testing.T) {
	Convey("Given an item box table YAML with one entry", t, func() {
		path := writeFile(t, `
item_boxes:
  - item_box_id: 1
    max_health: 200
    loot_id: 5
`)
		table, err := LoadItemBoxTable(path)
		So(err, ShouldBeNil)
		So(table.Count(), ShouldEqual, 1)
		So(table.Get(1).LootID, ShouldEqual, int32(5))
	})
}

func TestLoadRobotSpawnTable(t *testing.T) {
	Convey("Given a robot spawn table YAML", t, func() {
		path := writeFile(t, `
difficulties:
  - name: easy
    weight: 3
    level_min: 1
    level_max: 5
spawn_infos:
  - nature_id: 1
    weight: 1
    low_x: 0
    low_y: 0
    high_x: 10
    high_y: 10
countries: [NS]
names: [Rex]
`)
		table, err := LoadRobotSpawnTable(path)
		So(err, ShouldBeNil)
		So(len(table.Difficulties), ShouldEqual, 1)
		So(table.SpawnInfos[0].Low(), ShouldResemble, table.SpawnInfos[0].Low())
	})
}
