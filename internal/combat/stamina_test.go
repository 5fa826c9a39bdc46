package combat

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/protocol"
)

func TestStaminaMachineChargeCompletionSync(t *testing.T) {
	Convey("A stamina machine charging to completion", t, func() {
		m := &StaminaMachine{
			Stamina:                        100,
			MaxStamina:                     100,
			ChargeConsumesStaminaPerSecond: 100, // 1s to fully drain
		}
		_, ok := m.Charge(time.Unix(0, 0))
		So(ok, ShouldBeTrue)

		Convey("emits a final sync the tick it reaches ChargeFully", func() {
			sync, hasSync, justFullyCharged := m.Update(1100 * time.Millisecond)

			So(hasSync, ShouldBeTrue)
			So(justFullyCharged, ShouldBeTrue)
			So(m.State, ShouldEqual, ChargeFully)
			So(sync.Stamina, ShouldEqual, int32(0))
			So(sync.Flags&protocol.StaminaFlagCharging, ShouldNotEqual, uint32(0))
		})

		Convey("emits periodic syncs before completion", func() {
			sync, hasSync, justFullyCharged := m.Update(200 * time.Millisecond)

			So(hasSync, ShouldBeTrue)
			So(justFullyCharged, ShouldBeFalse)
			So(sync.Flags&protocol.StaminaFlagCharging, ShouldNotEqual, uint32(0))
		})
	})
}
