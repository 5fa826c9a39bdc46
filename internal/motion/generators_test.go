package motion

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gamenio/arenacore/internal/geom"
)

// fakeTarget is a fixed, always-valid TargetLocator used to drive
// SmartChaseGenerator without a real entity/combat layer.
type fakeTarget struct {
	pos geom.Point
}

func (f fakeTarget) Valid() bool     { return true }
func (f fakeTarget) Pos() geom.Point { return f.pos }

// fakeSmartChaseProvider reports one fixed incoming projectile every
// tick and a controllable EffectiveDodgeChance, matching the
// dependencies SmartChaseGenerator.Update reads from a real bot.
type fakeSmartChaseProvider struct {
	proj   IncomingProjectile
	chance float64
}

func (f *fakeSmartChaseProvider) TopThreatProjectile() (IncomingProjectile, bool) {
	return f.proj, true
}
func (f *fakeSmartChaseProvider) EffectiveDodgeChance() float64 { return f.chance }
func (f *fakeSmartChaseProvider) DodgeReactionBounds() (time.Duration, time.Duration) {
	return 0, 0
}
func (f *fakeSmartChaseProvider) OptimalDodgeDistance() float64 { return 80 }
func (f *fakeSmartChaseProvider) AttackRange() float64          { return 1000 }
func (f *fakeSmartChaseProvider) SafeZoneCenter() geom.Vec2     { return geom.Vec2{0, 0} }
func (f *fakeSmartChaseProvider) IsOutsideSafeDistance(geom.Vec2) bool { return false }
func (f *fakeSmartChaseProvider) TargetLockedLastTick() bool           { return true }
func (f *fakeSmartChaseProvider) IsItemBoxTarget() bool                { return false }

func TestSmartChaseGeneratorDodgeProbabilityLimit(t *testing.T) {
	Convey("A bot facing 1000 identical incoming projectiles", t, func() {
		botPos := geom.Point{X: 10, Y: 0}
		proj := IncomingProjectile{
			Origin:   geom.Vec2{0, 0},
			Velocity: geom.Vec2{1, 0},
		}
		want := dodgeSide(proj, tileToVec(botPos))

		Convey("with effective_dodge_chance = 1.0, always dodges the physically-correct direction", func() {
			rng := rand.New(rand.NewSource(1))
			g := &SmartChaseGenerator{
				Target:   fakeTarget{pos: geom.Point{X: 500, Y: 0}},
				Provider: &fakeSmartChaseProvider{proj: proj, chance: 1.0},
				Current:  func() geom.Point { return botPos },
				Rng:      rng,
			}
			g.Initialize()

			for i := 0; i < 1000; i++ {
				g.Update(10 * time.Millisecond)
				So(g.dodgeDir, ShouldEqual, want)
			}
		})

		Convey("with effective_dodge_chance = 0.0, always dodges the wrong direction", func() {
			rng := rand.New(rand.NewSource(1))
			g := &SmartChaseGenerator{
				Target:   fakeTarget{pos: geom.Point{X: 500, Y: 0}},
				Provider: &fakeSmartChaseProvider{proj: proj, chance: 0.0},
				Current:  func() geom.Point { return botPos },
				Rng:      rng,
			}
			g.Initialize()

			for i := 0; i < 1000; i++ {
				g.Update(10 * time.Millisecond)
				So(g.dodgeDir, ShouldEqual, -want)
			}
		})
	})
}
