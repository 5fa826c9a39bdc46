// Package motion implements the motion master and its movement/step
// generators (spec §4.3): the ≤2-slot generator stack every bot owns,
// the seven movement-generator kinds, the two step-generator kinds,
// and the bot move spline.
//
// Grounded on original_source/movement/MotionMaster.h (slot enum,
// mutate/pop/top semantics) and the generators/ subdirectory (one file
// per generator kind, each with Initialize/Update/Finalize lifecycle
// methods) — reimplemented as a Go interface + slot array instead of
// a owner-pointer class hierarchy.
package motion

import (
	"time"

	"github.com/gamenio/arenacore/internal/geom"
)

// Slot is the fixed motion-master slot index (spec §4.3: "fixed-slot
// stack [IDLE, ACTIVE]").
type Slot int

const (
	SlotIdle Slot = iota
	SlotActive
	slotCount
)

// Generator is a movement generator occupying one Master slot.
type Generator interface {
	// Initialize is called once when the generator is installed.
	Initialize()
	// Update advances the generator by dt and returns the tile the
	// owner should move toward this tick, plus whether the generator
	// has finished (and should be popped).
	Update(dt time.Duration) (target geom.Point, finished bool)
	// Finalize is called once when the generator is popped or replaced.
	Finalize()
}

// Master is the ≤2-slot generator stack every bot owns (spec §4.3).
// Mutation semantics: installing at slot S destroys whatever currently
// occupies S and finalizes anything above S.
type Master struct {
	slots [slotCount]Generator
	top   Slot
	empty bool
}

// NewMaster returns a Master with nothing installed (top is invalid
// until the first Mutate call — callers should install SlotIdle
// immediately, matching the invariant "slot IDLE always occupied
// while any ACTIVE exists").
func NewMaster() *Master {
	return &Master{empty: true}
}

// Mutate installs g at slot, finalizing any existing occupant at slot
// and finalizing any generator above slot (spec §4.3).
func (m *Master) Mutate(slot Slot, g Generator) {
	for s := slotCount - 1; s > slot; s-- {
		if m.slots[s] != nil {
			m.slots[s].Finalize()
			m.slots[s] = nil
		}
	}
	if m.slots[slot] != nil {
		m.slots[slot].Finalize()
	}
	m.slots[slot] = g
	g.Initialize()
	if m.empty || slot > m.top {
		m.top = slot
	}
	m.empty = false
}

// Top returns the highest occupied slot's generator, or nil if empty.
func (m *Master) Top() Generator {
	if m.empty {
		return nil
	}
	return m.slots[m.top]
}

// TopSlot reports which slot is currently on top.
func (m *Master) TopSlot() Slot { return m.top }

// Pop removes and finalizes the top generator, then descends to the
// next-lower occupied slot.
func (m *Master) Pop() {
	if m.empty {
		return
	}
	m.slots[m.top].Finalize()
	m.slots[m.top] = nil
	for m.top > SlotIdle && m.slots[m.top] == nil {
		m.top--
	}
	if m.slots[m.top] == nil {
		m.empty = true
	}
}

// Update runs exactly the top generator this tick, popping it on
// completion so the next-lower slot runs next tick (spec §4.3: "exactly
// one generator runs per tick — the top non-null slot").
func (m *Master) Update(dt time.Duration) (target geom.Point, ok bool) {
	g := m.Top()
	if g == nil {
		return geom.Point{}, false
	}
	t, finished := g.Update(dt)
	if finished {
		m.Pop()
	}
	return t, true
}

// Clear finalizes and removes every slot.
func (m *Master) Clear() {
	for s := slotCount - 1; s >= SlotIdle; s-- {
		if m.slots[s] != nil {
			m.slots[s].Finalize()
			m.slots[s] = nil
		}
	}
	m.empty = true
	m.top = SlotIdle
}
