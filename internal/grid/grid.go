// Package grid implements the spatial grid described in spec §4.1: a
// 23x23 array of GRID_SIZE=256-unit cells covering a battle map,
// allocated lazily, holding per-type object lists, with an end-of-tick
// relocation queue for objects that moved between cells this tick.
//
// Grounded on the teacher's internal/world/aoi.go (cell-key shape,
// 3x3-neighbourhood query, toCellCoord floor-division) generalized
// from a flat session-id set to typed per-cell lists, and on
// dm-vev-adamant's go.mod which already pulls in cespare/xxhash/v2 for
// hashing chunk-style grid coordinates — the same technique applies
// here to avoid Go's built-in map hash on every cell lookup in the hot
// per-tick relocation/visibility sweep.
package grid

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/gamenio/arenacore/internal/core/ecs"
)

// Size is the grid's fixed dimension (23x23 cells).
const Size = 23

// CellUnits is the world-space size of one cell (GRID_SIZE).
const CellUnits = 256

// Coord identifies a cell within the fixed array.
type Coord struct {
	CX, CY int
}

// ToCellCoord converts a world position to the cell it falls in.
func ToCellCoord(x, y int32) Coord {
	return Coord{CX: int(floorDiv(x, CellUnits)), CY: int(floorDiv(y, CellUnits))}
}

func floorDiv(v int32, d int32) int32 {
	if v < 0 {
		return (v - d + 1) / d
	}
	return v / d
}

func hashCoord(c Coord) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(int64(c.CX)))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(c.CY)))
	return xxhash.Sum64(buf[:])
}

// Cell holds the objects located within one grid cell, bucketed by
// object kind so a per-type sweep (player update, bot update,
// projectile update) doesn't have to filter a mixed list.
type Cell struct {
	Coord            Coord
	DataLoaded       bool // gated by the spawn manager
	Players          map[ecs.EntityID]struct{}
	Bots             map[ecs.EntityID]struct{}
	Items            map[ecs.EntityID]struct{}
	ItemBoxes        map[ecs.EntityID]struct{}
	Projectiles      map[ecs.EntityID]struct{}
	marked           bool // touched by a player/bot update this tick — drives the relocation/notifier sweep
}

func newCell(c Coord) *Cell {
	return &Cell{
		Coord:       c,
		Players:     map[ecs.EntityID]struct{}{},
		Bots:        map[ecs.EntityID]struct{}{},
		Items:       map[ecs.EntityID]struct{}{},
		ItemBoxes:   map[ecs.EntityID]struct{}{},
		Projectiles: map[ecs.EntityID]struct{}{},
	}
}

// Kind selects which per-cell bucket an entity belongs to.
type Kind int

const (
	KindPlayer Kind = iota
	KindBot
	KindItem
	KindItemBox
	KindProjectile
)

func (c *Cell) bucket(k Kind) map[ecs.EntityID]struct{} {
	switch k {
	case KindPlayer:
		return c.Players
	case KindBot:
		return c.Bots
	case KindItem:
		return c.Items
	case KindItemBox:
		return c.ItemBoxes
	case KindProjectile:
		return c.Projectiles
	}
	return nil
}

// relocation is one pending cross-cell move, drained at end of tick
// (spec §4.1: "enqueue object into objects_to_new_grid_list; end of
// tick, it is moved").
type relocation struct {
	id       ecs.EntityID
	kind     Kind
	from, to Coord
}

// Grid is the fixed 23x23 sparse cell array for one map.
type Grid struct {
	cells      map[uint64]*Cell
	pending    []relocation
	maxVisible int32 // recomputed each tick: max player visible-range + 4*max step length
}

// New creates an empty grid; cells are allocated lazily on first
// insert.
func New() *Grid {
	return &Grid{cells: make(map[uint64]*Cell, Size*Size)}
}

func (g *Grid) cellAt(c Coord, create bool) *Cell {
	h := hashCoord(c)
	cell := g.cells[h]
	if cell == nil && create {
		cell = newCell(c)
		g.cells[h] = cell
	}
	return cell
}

// Insert places id into the cell at position x,y, immediately (used
// for the first placement on spawn/creation, not relocation).
func (g *Grid) Insert(id ecs.EntityID, kind Kind, x, y int32) Coord {
	c := ToCellCoord(x, y)
	cell := g.cellAt(c, true)
	cell.bucket(kind)[id] = struct{}{}
	return c
}

// Remove takes id out of the cell at coordinate at, deallocating the
// cell if it becomes empty.
func (g *Grid) Remove(id ecs.EntityID, kind Kind, at Coord) {
	h := hashCoord(at)
	cell := g.cells[h]
	if cell == nil {
		return
	}
	delete(cell.bucket(kind), id)
	if len(cell.Players) == 0 && len(cell.Bots) == 0 && len(cell.Items) == 0 &&
		len(cell.ItemBoxes) == 0 && len(cell.Projectiles) == 0 {
		delete(g.cells, h)
	}
}

// QueueRelocate enqueues a cross-cell move for end-of-tick draining
// (spec §4.1 relocation sequence, step 3). Same-cell moves should not
// call this — the caller only needs to set notify flags.
func (g *Grid) QueueRelocate(id ecs.EntityID, kind Kind, from, to Coord) {
	g.pending = append(g.pending, relocation{id: id, kind: kind, from: from, to: to})
}

// DrainRelocations applies every queued cross-cell move and marks both
// the source and destination cells, then clears the queue. Returns the
// set of touched cells so the caller's per-tick notifier sweep (spec
// §4.1 "for every grid marked during this tick") can iterate exactly
// them.
func (g *Grid) DrainRelocations() []*Cell {
	touched := make(map[uint64]*Cell, len(g.pending)*2)
	for _, r := range g.pending {
		// Fetch the source cell before Remove, which deallocates it
		// once it is empty.
		src := g.cellAt(r.from, false)
		g.Remove(r.id, r.kind, r.from)
		g.Insert(r.id, r.kind, r.to.CX*CellUnits, r.to.CY*CellUnits)
		if src != nil {
			src.marked = true
			touched[hashCoord(r.from)] = src
		}
		if c := g.cellAt(r.to, true); c != nil {
			c.marked = true
			touched[hashCoord(r.to)] = c
		}
	}
	g.pending = g.pending[:0]
	out := make([]*Cell, 0, len(touched))
	for _, c := range touched {
		out = append(out, c)
	}
	return out
}

// Mark flags a cell as touched this tick (a player/bot updated inside
// it), used directly by eager player relocation (spec §4.1 step 4:
// "for players, change and visibility-update happen eagerly").
func (g *Grid) Mark(c Coord) {
	if cell := g.cellAt(c, true); cell != nil {
		cell.marked = true
	}
}

// MarkedCells returns every cell currently flagged marked.
func (g *Grid) MarkedCells() []*Cell {
	var out []*Cell
	for _, c := range g.cells {
		if c.marked {
			out = append(out, c)
		}
	}
	return out
}

// ClearMarks resets every cell's marked flag, done at the start of
// each tick's pre-tick phase (spec §4.1 / core/system.PhasePreTick).
func (g *Grid) ClearMarks() {
	for _, c := range g.cells {
		c.marked = false
	}
}

// SetMaxVisibleRange stores this tick's recomputed visibility bound.
func (g *Grid) SetMaxVisibleRange(r int32) { g.maxVisible = r }

// MaxVisibleRange returns the current visibility bound, used to size
// the neighbourhood scanned by notifiers and AOI queries.
func (g *Grid) MaxVisibleRange() int32 { return g.maxVisible }

// Neighbourhood returns every allocated cell within radius cells
// (Chebyshev distance) of the cell containing x,y — a generalisation
// of the teacher's fixed 3x3 AOI scan to the spec's variable
// max_visible_range-derived radius.
func (g *Grid) Neighbourhood(x, y int32, radiusUnits int32) []*Cell {
	center := ToCellCoord(x, y)
	radiusCells := int(radiusUnits/CellUnits) + 1
	var out []*Cell
	for dy := -radiusCells; dy <= radiusCells; dy++ {
		for dx := -radiusCells; dx <= radiusCells; dx++ {
			c := Coord{CX: center.CX + dx, CY: center.CY + dy}
			if cell := g.cellAt(c, false); cell != nil {
				out = append(out, cell)
			}
		}
	}
	return out
}
