// Package entity defines the component data for every spatial object
// kind in the battle arena (spec §3 Entity taxonomy): pure data
// structs attached to an ecs.EntityID, mutated only by systems in
// other packages — the same "pure data, zero methods" discipline the
// teacher's internal/component package follows.
package entity

import "fmt"

// GUID is the 32-bit object identifier: high 8 bits are a type
// discriminant, low 24 bits are a monotonically assigned per-type
// counter (spec §3). GUID zero is the empty/unset value.
type GUID uint32

// Kind is the GUID's high-byte type discriminant.
type Kind uint8

const (
	KindNone Kind = iota
	KindPlayer
	KindRobot
	KindItemBox
	KindItem
	KindProjectile
	KindLocator
)

const counterMask = 0x00FFFFFF
const maxCounter = 0x00FFFFFF

func (g GUID) Kind() Kind    { return Kind(g >> 24) }
func (g GUID) Counter() uint32 { return uint32(g) & counterMask }
func (g GUID) IsEmpty() bool { return g == 0 }

func makeGUID(k Kind, counter uint32) GUID {
	return GUID(uint32(k)<<24 | (counter & counterMask))
}

func (g GUID) String() string {
	return fmt.Sprintf("%c#%d", kindLetter(g.Kind()), g.Counter())
}

func kindLetter(k Kind) byte {
	switch k {
	case KindPlayer:
		return 'P'
	case KindRobot:
		return 'R'
	case KindItemBox:
		return 'B'
	case KindItem:
		return 'I'
	case KindProjectile:
		return 'J'
	case KindLocator:
		return 'L'
	}
	return '?'
}

// GUIDCounters hands out the next GUID for each Kind. Overflow past
// maxCounter is a fatal invariant violation (spec §3): this many
// objects of one kind existing within a single battle's lifetime
// indicates a leak, not legitimate load.
type GUIDCounters struct {
	next [7]uint32 // indexed by Kind; next[KindNone] unused
}

// Next allocates the next GUID for kind k, panicking on 24-bit
// counter overflow.
func (c *GUIDCounters) Next(k Kind) GUID {
	n := c.next[k]
	if n >= maxCounter {
		panic(fmt.Sprintf("entity: GUID counter overflow for kind %d", k))
	}
	n++
	c.next[k] = n
	return makeGUID(k, n)
}
