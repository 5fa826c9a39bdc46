package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gamenio/arenacore/internal/geom"
)

// RobotDifficulty is a weighted difficulty tier a filled-in robot is
// drawn from, bounding the level it spawns at (original_source
// SpawnManager::selectRobotDifficulty/generateRobotLevel).
type RobotDifficulty struct {
	Name     string `yaml:"name"`
	Weight   int32  `yaml:"weight"`
	LevelMin int32  `yaml:"level_min"`
	LevelMax int32  `yaml:"level_max"`
}

// RobotSpawnInfo is one weighted (nature, spawn area) pairing
// UnitSpawnPointGenerator cycles through round-robin (original_source
// UnitSpawnPointGenerator.cpp: per-district spawn area list, shuffled
// then cycled with wraparound).
type RobotSpawnInfo struct {
	NatureID int32 `yaml:"nature_id"`
	Weight   int32 `yaml:"weight"`
	LowX     int   `yaml:"low_x"`
	LowY     int   `yaml:"low_y"`
	HighX    int   `yaml:"high_x"`
	HighY    int   `yaml:"high_y"`
}

// Low and High return the spawn area's tile-space bounding corners.
func (s RobotSpawnInfo) Low() geom.Point  { return geom.Point{X: s.LowX, Y: s.LowY} }
func (s RobotSpawnInfo) High() geom.Point { return geom.Point{X: s.HighX, Y: s.HighY} }

type spawnTableFile struct {
	Difficulties []RobotDifficulty `yaml:"difficulties"`
	SpawnInfos   []RobotSpawnInfo  `yaml:"spawn_infos"`
	Countries    []string          `yaml:"countries"`
	Names        []string          `yaml:"names"`
}

// RobotSpawnTable bundles everything SpawnManager.fillRobotsIfNeeded
// needs to manufacture a new robot: difficulty tiers, spawn-area
// entries, and the country/name pools used for cosmetic naming.
type RobotSpawnTable struct {
	Difficulties []RobotDifficulty
	SpawnInfos   []RobotSpawnInfo
	Countries    []string
	Names        []string
}

// LoadRobotSpawnTable loads the robot spawn table from a YAML file.
func LoadRobotSpawnTable(path string) (*RobotSpawnTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read robot_spawn_list: %w", err)
	}
	var f spawnTableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse robot_spawn_list: %w", err)
	}
	return &RobotSpawnTable{
		Difficulties: f.Difficulties,
		SpawnInfos:   f.SpawnInfos,
		Countries:    f.Countries,
		Names:        f.Names,
	}, nil
}
