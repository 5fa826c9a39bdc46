package combat

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"

	"github.com/gamenio/arenacore/internal/core/ecs"
)

// fakeAliveWorld reports every entity alive, matching the scenarios'
// assumption that attackers never leave the world mid-fight.
type fakeAliveWorld struct{}

func (fakeAliveWorld) Alive(ecs.EntityID) bool { return true }

// fakeRewarder records every CalcReward/ApplyReward call so tests can
// assert exactly which attacker got how much.
type fakeRewarder struct {
	applied map[ecs.EntityID]int32
}

func newFakeRewarder() *fakeRewarder { return &fakeRewarder{applied: make(map[ecs.EntityID]int32)} }

func (r *fakeRewarder) CalcReward(victim, attacker ecs.EntityID, damagePoints int32) Reward {
	return Reward{Money: int64(damagePoints), Experience: int64(damagePoints)}
}

func (r *fakeRewarder) ApplyReward(attacker, victim ecs.EntityID, reward Reward) {
	r.applied[attacker] = int32(reward.Money)
}

func TestRewardApportionment(t *testing.T) {
	Convey("A victim takes 100 HP from attacker A (60) and attacker B (40)", t, func() {
		log := zap.NewNop()
		m := NewRewardManager(30*time.Second, log)
		victim := ecs.EntityID(1)
		attackerA := ecs.EntityID(2)
		attackerB := ecs.EntityID(3)

		now := time.Unix(0, 0)
		m.RecordHit(attackerA, 60, now)
		m.RecordHit(attackerB, 40, now)

		Convey("award_all_awardees designates A as champion and rewards both correctly", func() {
			rewarder := newFakeRewarder()
			champion, ok := m.AwardAllAwardees(victim, rewarder)

			So(ok, ShouldBeTrue)
			So(champion, ShouldEqual, attackerA)
			So(rewarder.applied[attackerA], ShouldEqual, int32(60))
			So(rewarder.applied[attackerB], ShouldEqual, int32(40))

			Convey("agg_damage returns to 0", func() {
				So(m.AggDamage, ShouldEqual, int32(0))
			})
		})
	})
}

func TestRewardManagerIdleTimerPruning(t *testing.T) {
	Convey("Attacker A deals 1 HP at t=0, then goes idle", t, func() {
		log := zap.NewNop()
		m := NewRewardManager(30*time.Second, log)
		attackerA := ecs.EntityID(2)

		start := time.Unix(0, 0)
		m.RecordHit(attackerA, 1, start)
		So(m.AggDamage, ShouldEqual, int32(1))

		Convey("at t=30001ms, ExpireIdle removes A and agg_damage becomes 0", func() {
			expired := m.ExpireIdle(fakeAliveWorld{}, start.Add(30001*time.Millisecond))

			So(expired, ShouldResemble, []ecs.EntityID{attackerA})
			So(m.AggDamage, ShouldEqual, int32(0))
		})

		Convey("just before the timeout lapses, A is not yet pruned", func() {
			expired := m.ExpireIdle(fakeAliveWorld{}, start.Add(29999*time.Millisecond))

			So(expired, ShouldBeEmpty)
			So(m.AggDamage, ShouldEqual, int32(1))
		})
	})
}
