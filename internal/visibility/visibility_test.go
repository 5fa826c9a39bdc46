package visibility

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/core/ecs"
	"github.com/gamenio/arenacore/internal/entity"
	"github.com/gamenio/arenacore/internal/protocol"
)

func createBlock(c Candidate) protocol.UpdateBlock {
	return protocol.UpdateBlock{Type: protocol.UpdateCreate, GUID: uint32(c.GUID), TypeID: protocol.TypeID(entity.KindRobot)}
}

func TestVisibilityHysteresis(t *testing.T) {
	Convey("Player P starts outside bot R's visible rectangle", t, func() {
		o := NewObserver(ecs.EntityID(1))
		o.CenterX, o.CenterY = 0, 0
		o.HalfWidth, o.HalfHeight = 100, 100

		r := &entity.Header{GUID: entity.GUID(42), Visible: true, X: 1000, Y: 1000}
		robotID := ecs.EntityID(2)

		nearbyOf := func(h *entity.Header) []Candidate {
			if !CanSeeOrDetect(o, h, false, false, false, 0) {
				return nil
			}
			return []Candidate{{ID: robotID, GUID: h.GUID}}
		}

		Sweep(o, nearbyOf(r), createBlock)
		batch := o.FlushBatch()
		So(batch.Blocks, ShouldBeEmpty)
		So(batch.OutOfRange.GUIDs, ShouldBeEmpty)

		Convey("P walks one step in, R appears via a CREATE block", func() {
			r.X, r.Y = 50, 50

			Sweep(o, nearbyOf(r), createBlock)
			batch := o.FlushBatch()

			So(batch.Blocks, ShouldHaveLength, 1)
			So(batch.Blocks[0].Type, ShouldEqual, protocol.UpdateCreate)
			So(batch.Blocks[0].GUID, ShouldEqual, uint32(r.GUID))
			So(batch.OutOfRange.GUIDs, ShouldBeEmpty)

			Convey("no CREATE is emitted again for an already-known object", func() {
				Sweep(o, nearbyOf(r), createBlock)
				batch := o.FlushBatch()
				So(batch.Blocks, ShouldBeEmpty)
				So(batch.OutOfRange.GUIDs, ShouldBeEmpty)
			})

			Convey("P walks one step out, R appears via an OUT_OF_RANGE block", func() {
				r.X, r.Y = 1000, 1000

				Sweep(o, nearbyOf(r), createBlock)
				batch := o.FlushBatch()

				So(batch.Blocks, ShouldBeEmpty)
				So(batch.OutOfRange.GUIDs, ShouldResemble, []uint32{uint32(r.GUID)})

				Convey("no duplicate destroy is emitted once R is already forgotten", func() {
					Sweep(o, nearbyOf(r), createBlock)
					batch := o.FlushBatch()
					So(batch.Blocks, ShouldBeEmpty)
					So(batch.OutOfRange.GUIDs, ShouldBeEmpty)
				})
			})
		})
	})
}
