// Package ref implements the reference pattern (spec §3): a directed
// "X is observing/attacking/rewarding/coveting/colliding-with Y" edge
// that must never be dereferenced once its target is destroyed.
//
// The original engine threads these as intrusive doubly-linked lists
// with buildLink/destroyLink/clearReferences. This codebase instead
// rides on the generational EntityID already provided by core/ecs:
// a reference is just a target handle plus a payload, and "is valid"
// is "the generation in the handle still matches the live entity's
// generation" — the EntityPool we already have is the authority, so a
// reference needs no notification when its target dies. Staleness is
// caught lazily, on the owning manager's next scan, exactly as spec §3
// requires ("a reference whose Target is destroyed but whose Source
// has not yet scanned must never be dereferenced").
package ref

import "github.com/gamenio/arenacore/internal/core/ecs"

// Alive reports whether an EntityID still refers to a live entity.
// Implemented by core/ecs.World.
type Alive interface {
	Alive(id ecs.EntityID) bool
}

// Entry is one edge in a List: a target entity plus whatever payload
// the owning manager needs to keep per-target (a weight, a damage
// accumulator, a timeout clock, ...).
type Entry[D any] struct {
	Target ecs.EntityID
	Data   D
}

// List is an unordered collection of references from one owner to many
// targets, with lazy pruning of references whose target has died.
// Zero value is ready to use.
type List[D any] struct {
	entries []Entry[D]
}

// Add appends a new reference. Callers that require at most one entry
// per target should call Find first.
func (l *List[D]) Add(target ecs.EntityID, data D) {
	l.entries = append(l.entries, Entry[D]{Target: target, Data: data})
}

// Find returns a pointer to the entry for target, or nil.
func (l *List[D]) Find(target ecs.EntityID) *D {
	for i := range l.entries {
		if l.entries[i].Target == target {
			return &l.entries[i].Data
		}
	}
	return nil
}

// Remove deletes the entry for target, if present.
func (l *List[D]) Remove(target ecs.EntityID) {
	for i := range l.entries {
		if l.entries[i].Target == target {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// Prune drops every entry whose target is no longer alive. Managers
// call this once per tick before scanning (spec §3 invariant: is_valid
// is the sole gate before dereferencing a reference).
func (l *List[D]) Prune(world Alive) {
	out := l.entries[:0]
	for _, e := range l.entries {
		if world.Alive(e.Target) {
			out = append(out, e)
		}
	}
	l.entries = out
}

// PruneFunc drops every entry for which keep returns false, in
// addition to dropping dead targets. Used by managers with an
// additional eligibility predicate (e.g. can_combat_with).
func (l *List[D]) PruneFunc(world Alive, keep func(target ecs.EntityID, data *D) bool) {
	out := l.entries[:0]
	for i := range l.entries {
		e := l.entries[i]
		if !world.Alive(e.Target) {
			continue
		}
		if !keep(e.Target, &e.Data) {
			continue
		}
		out = append(out, e)
	}
	l.entries = out
}

// Each visits every entry in insertion order. The callback must not
// mutate the list (use Remove/Prune between iterations instead).
func (l *List[D]) Each(fn func(target ecs.EntityID, data *D)) {
	for i := range l.entries {
		fn(l.entries[i].Target, &l.entries[i].Data)
	}
}

// Len returns the number of entries currently held (including any not
// yet pruned this tick).
func (l *List[D]) Len() int { return len(l.entries) }

// Clear drops every entry, e.g. when the owner itself is about to be
// destroyed (spec §3 clearReferences) or dies and resets its lists.
func (l *List[D]) Clear() { l.entries = l.entries[:0] }

// SortDescending reorders entries by a caller-supplied key in
// descending order, ties broken by original insertion order (a stable
// sort), matching the target/threat/awardee selection rule (spec §4.4,
// §4.5: "sort descending by weight/damage, ties by insertion/GUID").
func (l *List[D]) SortDescending(less func(a, b D) bool) {
	// insertion sort: these lists are small (a handful of attackers or
	// nearby targets per bot), and stability matters more than
	// asymptotic complexity here.
	for i := 1; i < len(l.entries); i++ {
		j := i
		for j > 0 && less(l.entries[j-1].Data, l.entries[j].Data) {
			l.entries[j-1], l.entries[j] = l.entries[j], l.entries[j-1]
			j--
		}
	}
}

// Single is a reference that tracks at most one target (spec §3's
// LaunchReference: a projectile has exactly one launcher).
type Single[D any] struct {
	target ecs.EntityID
	data   D
	valid  bool
}

func (s *Single[D]) Set(target ecs.EntityID, data D) {
	s.target, s.data, s.valid = target, data, true
}

func (s *Single[D]) Clear() {
	var zero D
	s.target, s.data, s.valid = 0, zero, false
}

// Get returns the target/data pair and whether the reference is both
// set and still alive.
func (s *Single[D]) Get(world Alive) (ecs.EntityID, D, bool) {
	if !s.valid || !world.Alive(s.target) {
		var zero D
		return 0, zero, false
	}
	return s.target, s.data, true
}
