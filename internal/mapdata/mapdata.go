// Package mapdata loads and queries the static tile grid each battle
// map is built on: tile classification (wall/penetrable/concealable),
// ground type, district membership, nearest-open-point tables, and the
// waypoint graph bots patrol along (spec §3 Map data, §4.8).
//
// Grounded on the teacher's internal/data.LoadMapData (YAML metadata +
// flat tile array loading shape) and original_source's MapData.h
// (tile/ground/district classification, nearest-open-point split
// tables, waypoint extents).
package mapdata

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gamenio/arenacore/internal/geom"
)

// TileType classifies a single tile for pathfinding and line-of-sight.
type TileType uint8

const (
	TileNone TileType = iota
	TilePenetrable
	TileCollidable
	TileConcealable
)

// GroundType affects footstep/visual state, not passability.
type GroundType uint8

const (
	GroundNone GroundType = iota
	GroundSnow
	GroundWater
)

// MapInfo is the per-map metadata row loaded from map_list.yaml.
type MapInfo struct {
	MapID          int    `yaml:"map_id"`
	Name           string `yaml:"name"`
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	TileWidth      int    `yaml:"tile_width"`
	TileHeight     int    `yaml:"tile_height"`
	PopulationCap  int    `yaml:"population_cap"`
	BattleDuration int    `yaml:"battle_duration_secs"`
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// Map holds the fully loaded tile grid and derived tables for one map.
type Map struct {
	Info MapInfo

	tiles    []TileType
	ground   []GroundType
	district []uint32

	openPoints             []geom.Point
	unconcealableOpen      []geom.Point
	hidingSpots            []geom.Point
	nearestOpen            map[int][]geom.Point
	nearestUnconcealOpen   map[int][]geom.Point
	nearestHiding          map[int]geom.Point
	districtWaypoints      map[uint32][]geom.Point
	waypointDistrict       map[int]uint32
	linkedWaypoint         map[int]geom.Point
	waypointExtent         map[int][]geom.Point
}

// Table indexes every loaded Map by id.
type Table struct {
	maps map[int]*Map
	log  *zap.Logger
}

// Load reads map_list.yaml and, for every entry, a companion raw tile
// file "<map_id>.tiles" from tileDir: one byte per tile, low nibble =
// TileType, high nibble = GroundType. Maps whose tile file is missing
// are skipped with a warning, not a fatal error — matches the
// teacher's "map file missing is non-fatal" loading posture.
func Load(yamlPath, tileDir string, log *zap.Logger) (*Table, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", yamlPath, err)
	}
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	t := &Table{maps: make(map[int]*Map, len(file.Maps)), log: log}
	for _, info := range file.Maps {
		m, err := loadOne(info, tileDir)
		if err != nil {
			log.Warn("skipping map with unreadable tile data", zap.Int("map_id", info.MapID), zap.Error(err))
			continue
		}
		t.maps[info.MapID] = m
	}
	return t, nil
}

func loadOne(info MapInfo, tileDir string) (*Map, error) {
	path := fmt.Sprintf("%s/%d.tiles", tileDir, info.MapID)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	n := info.Width * info.Height
	if len(raw) < n {
		return nil, fmt.Errorf("tile file %s too short: want %d bytes, got %d", path, n, len(raw))
	}

	m := &Map{
		Info:                 info,
		tiles:                make([]TileType, n),
		ground:               make([]GroundType, n),
		district:             make([]uint32, n),
		nearestOpen:          map[int][]geom.Point{},
		nearestUnconcealOpen: map[int][]geom.Point{},
		nearestHiding:        map[int]geom.Point{},
		districtWaypoints:    map[uint32][]geom.Point{},
		waypointDistrict:     map[int]uint32{},
		linkedWaypoint:       map[int]geom.Point{},
		waypointExtent:       map[int][]geom.Point{},
	}
	for i, b := range raw[:n] {
		m.tiles[i] = TileType(b & 0x0F)
		m.ground[i] = GroundType(b >> 4)
	}

	m.classifyOpenPoints()
	m.initDistricts()
	m.initNearestOpenPoints()
	m.initNearestHidingSpots()
	return m, nil
}

// Get returns the loaded map, or nil if unknown.
func (t *Table) Get(mapID int) *Map { return t.maps[mapID] }

// NewForTest builds a Map directly from an open/blocked rune grid,
// skipping the YAML/file loading path entirely. Exported for use by
// other packages' tests (battle, spawn) that need a real Map without
// fixture files on disk; rows use '.' for open ground and '#' for a
// collidable wall.
func NewForTest(info MapInfo, rows []string) *Map {
	n := info.Width * info.Height
	m := &Map{
		Info:                 info,
		tiles:                make([]TileType, n),
		ground:               make([]GroundType, n),
		district:             make([]uint32, n),
		nearestOpen:          map[int][]geom.Point{},
		nearestUnconcealOpen: map[int][]geom.Point{},
		nearestHiding:        map[int]geom.Point{},
		districtWaypoints:    map[uint32][]geom.Point{},
		waypointDistrict:     map[int]uint32{},
		linkedWaypoint:       map[int]geom.Point{},
		waypointExtent:       map[int][]geom.Point{},
	}
	for y := 0; y < info.Height && y < len(rows); y++ {
		row := rows[y]
		for x := 0; x < info.Width && x < len(row); x++ {
			if row[x] == '#' {
				m.tiles[m.index(geom.Point{X: x, Y: y})] = TileCollidable
			}
		}
	}
	m.classifyOpenPoints()
	m.initDistricts()
	m.initNearestOpenPoints()
	m.initNearestHidingSpots()
	return m
}

func (m *Map) index(p geom.Point) int { return p.X + p.Y*m.Info.Width }

// IsValidTile reports whether p lies within the map bounds.
func (m *Map) IsValidTile(p geom.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Info.Width && p.Y < m.Info.Height
}

// IsWall reports whether p blocks movement (collidable or penetrable
// to projectiles only, per original_source MapData::isWall).
func (m *Map) IsWall(p geom.Point) bool {
	if !m.IsValidTile(p) {
		return true
	}
	tt := m.tiles[m.index(p)]
	return tt == TileCollidable || tt == TilePenetrable
}

// IsCollidable reports whether p blocks both movement and projectiles.
func (m *Map) IsCollidable(p geom.Point) bool {
	return m.IsValidTile(p) && m.tiles[m.index(p)] == TileCollidable
}

// IsPenetrable reports whether p blocks movement but not projectiles
// (a low obstacle a bot can't walk through but an arrow can cross).
func (m *Map) IsPenetrable(p geom.Point) bool {
	return m.IsValidTile(p) && m.tiles[m.index(p)] == TilePenetrable
}

// IsConcealable reports whether p offers hiding cover.
func (m *Map) IsConcealable(p geom.Point) bool {
	return m.IsValidTile(p) && m.tiles[m.index(p)] == TileConcealable
}

// IsOpen reports whether p is walkable (not a wall of any kind).
func (m *Map) IsOpen(p geom.Point) bool {
	return m.IsValidTile(p) && !m.IsWall(p)
}

// IsSnow / IsWater report ground decoration, not passability.
func (m *Map) IsSnow(p geom.Point) bool  { return m.IsValidTile(p) && m.ground[m.index(p)] == GroundSnow }
func (m *Map) IsWater(p geom.Point) bool { return m.IsValidTile(p) && m.ground[m.index(p)] == GroundWater }

// DistrictID returns the flood-filled connected-region id containing
// p, used for scoping explore-area bookkeeping to reachable tiles.
func (m *Map) DistrictID(p geom.Point) uint32 {
	if !m.IsValidTile(p) {
		return 0
	}
	return m.district[m.index(p)]
}

// IsSameDistrict reports whether a and b are flood-fill connected.
func (m *Map) IsSameDistrict(a, b geom.Point) bool {
	return m.DistrictID(a) == m.DistrictID(b) && m.DistrictID(a) != 0
}

func (m *Map) classifyOpenPoints() {
	for y := 0; y < m.Info.Height; y++ {
		for x := 0; x < m.Info.Width; x++ {
			p := geom.Point{X: x, Y: y}
			switch {
			case m.IsWall(p):
				continue
			case m.IsConcealable(p):
				m.openPoints = append(m.openPoints, p)
				m.hidingSpots = append(m.hidingSpots, p)
			default:
				m.openPoints = append(m.openPoints, p)
				m.unconcealableOpen = append(m.unconcealableOpen, p)
			}
		}
	}
}

// initDistricts flood-fills connected open regions with a 4-connected
// depth-first fill (an explicit stack), assigning each its own district
// id starting at 1 (0 = wall / unreachable).
func (m *Map) initDistricts() {
	var next uint32 = 1
	visited := make([]bool, len(m.tiles))
	queue := make([]geom.Point, 0, 256)

	for y := 0; y < m.Info.Height; y++ {
		for x := 0; x < m.Info.Width; x++ {
			start := geom.Point{X: x, Y: y}
			idx := m.index(start)
			if visited[idx] || m.IsWall(start) {
				continue
			}
			id := next
			next++
			queue = queue[:0]
			queue = append(queue, start)
			visited[idx] = true
			for len(queue) > 0 {
				cur := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				m.district[m.index(cur)] = id
				for _, d := range [4]geom.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
					np := cur.Add(d)
					if !m.IsValidTile(np) || m.IsWall(np) {
						continue
					}
					nidx := m.index(np)
					if visited[nidx] {
						continue
					}
					visited[nidx] = true
					queue = append(queue, np)
				}
			}
		}
	}
}

// initNearestOpenPoints records every open tile as its own nearest open
// point, and every non-concealable open tile as its own nearest
// unconcealable open point. No district split is made, and
// FindNearestOpenPoint does not read these tables.
func (m *Map) initNearestOpenPoints() {
	for y := 0; y < m.Info.Height; y++ {
		for x := 0; x < m.Info.Width; x++ {
			p := geom.Point{X: x, Y: y}
			if !m.IsOpen(p) {
				continue
			}
			idx := m.index(p)
			m.nearestOpen[idx] = []geom.Point{p}
			if !m.IsConcealable(p) {
				m.nearestUnconcealOpen[idx] = []geom.Point{p}
			}
		}
	}
}

func (m *Map) initNearestHidingSpots() {
	for _, spot := range m.hidingSpots {
		m.nearestHiding[m.index(spot)] = spot
	}
}

// FindNearestOpenPoint returns the closest walkable tile to find,
// scanning outward ring by ring, optionally excluding concealable tiles
// (hiding spots) when a bot wants open ground instead of cover.
// Candidates are not restricted to find's district, so the result can
// lie on the far side of a wall.
func (m *Map) FindNearestOpenPoint(find geom.Point, excludeHidingSpots bool) (geom.Point, bool) {
	if m.IsOpen(find) && (!excludeHidingSpots || !m.IsConcealable(find)) {
		return find, true
	}
	maxRadius := m.Info.Width
	if m.Info.Height > maxRadius {
		maxRadius = m.Info.Height
	}
	for r := 1; r <= maxRadius; r++ {
		var best geom.Point
		bestDist := -1
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx > -r && dx < r && dy > -r && dy < r {
					continue // interior already scanned at a smaller radius
				}
				cand := geom.Point{X: find.X + dx, Y: find.Y + dy}
				if !m.IsOpen(cand) {
					continue
				}
				if excludeHidingSpots && m.IsConcealable(cand) {
					continue
				}
				d := dx*dx + dy*dy
				if bestDist == -1 || d < bestDist {
					bestDist, best = d, cand
				}
			}
		}
		if bestDist != -1 {
			return best, true
		}
	}
	return geom.Point{}, false
}

// RegisterWaypoint assigns waypoint p to a district and records its
// patrol extent (the set of points a bot standing at p should patrol
// around before moving to the next waypoint).
func (m *Map) RegisterWaypoint(p geom.Point, extent []geom.Point) {
	district := m.DistrictID(p)
	m.districtWaypoints[district] = append(m.districtWaypoints[district], p)
	m.waypointDistrict[m.index(p)] = district
	m.waypointExtent[m.index(p)] = extent
}

// LinkWaypoints records a directed patrol-graph edge source -> target.
func (m *Map) LinkWaypoints(source, target geom.Point) {
	m.linkedWaypoint[m.index(source)] = target
}

// LinkedWaypoint returns the patrol-graph successor of source, if any.
func (m *Map) LinkedWaypoint(source geom.Point) (geom.Point, bool) {
	t, ok := m.linkedWaypoint[m.index(source)]
	return t, ok
}

// WaypointExtent returns the patrol extent recorded for waypoint p.
func (m *Map) WaypointExtent(p geom.Point) []geom.Point {
	return m.waypointExtent[m.index(p)]
}

// DistrictWaypoints returns every waypoint registered in district d.
func (m *Map) DistrictWaypoints(d uint32) []geom.Point {
	return m.districtWaypoints[d]
}

// HidingSpots returns every concealable tile on the map (spec §4.3
// "Seek"): the candidate pool a unit's SeekGenerator picks from.
func (m *Map) HidingSpots() []geom.Point {
	return m.hidingSpots
}
