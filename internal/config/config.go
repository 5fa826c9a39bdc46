// Package config loads the arena core's simulation tunables: a
// complete zero-config default struct overlaid by an optional TOML
// file, following the teacher's internal/config pattern (Config
// struct with nested `toml:"..."` sections, a defaults() fallback,
// then Load(path) unmarshalling on top).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	TickRate    time.Duration     `toml:"tick_rate"`
	Grid        GridConfig        `toml:"grid"`
	Pathfinding PathfindingConfig `toml:"pathfinding"`
	Combat      CombatConfig      `toml:"combat"`
	Stamina     StaminaConfig     `toml:"stamina"`
	Battle      BattleConfig      `toml:"battle"`
	Bot         BotConfig         `toml:"bot"`
	Logging     LoggingConfig     `toml:"logging"`
}

// GridConfig sizes the spatial grid (spec §4.1).
type GridConfig struct {
	Size                int `toml:"size"`                   // cells per axis
	CellUnits           int `toml:"cell_units"`              // world units per cell
	MaxVisibleRangePad  int `toml:"max_visible_range_pad"`   // padding beyond the furthest observer's half-extent
}

// PathfindingConfig tunes JPS+ (spec §4.2, §5.2).
type PathfindingConfig struct {
	HeuristicUnit    int `toml:"heuristic_unit"`     // fixed-point scale of 1.0
	DiagUnit         int `toml:"diag_unit"`          // fixed-point scale of sqrt(2)
	DiagMinUnit      int `toml:"diag_min_unit"`      // fixed-point scale of sqrt(2)-1
	MaxExpandedNodes int `toml:"max_expanded_nodes"` // search node budget; no package reads it, so path searches are not capped
}

// CombatConfig tunes reward apportionment and combat-power clamping
// (spec §4.5).
type CombatConfig struct {
	AwardeeIdleTimeout time.Duration `toml:"awardee_idle_timeout"`
	CombatPowerMin     float64       `toml:"combat_power_min"`
	CombatPowerMax     float64       `toml:"combat_power_max"`
}

// StaminaConfig tunes the stamina/charge state machine (spec §4.6).
type StaminaConfig struct {
	SyncInterval            time.Duration `toml:"sync_interval"`
	DefaultRegenRate        float64       `toml:"default_regen_rate"`
	DefaultChargeConsumeRate float64      `toml:"default_charge_consume_rate"`
}

// BattleConfig tunes battle lifecycle timing (spec §4.8).
type BattleConfig struct {
	PreparingDuration   time.Duration `toml:"preparing_duration"`
	SafeZoneAlertRadius int32         `toml:"safe_zone_alert_radius"`
}

// BotConfig tunes bot AI reaction bounds and template source (spec
// §4.3, §10.4).
type BotConfig struct {
	MinDodgeReaction time.Duration `toml:"min_dodge_reaction"`
	MaxDodgeReaction time.Duration `toml:"max_dodge_reaction"`
	ProficiencyTable string        `toml:"proficiency_table"` // path to the YAML dodge-proficiency table
	ScriptDir        string        `toml:"script_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		TickRate: 200 * time.Millisecond,
		Grid: GridConfig{
			Size:               23,
			CellUnits:          256,
			MaxVisibleRangePad: 4,
		},
		Pathfinding: PathfindingConfig{
			HeuristicUnit:    2378,
			DiagUnit:         3363,
			DiagMinUnit:      985,
			MaxExpandedNodes: 4096,
		},
		Combat: CombatConfig{
			AwardeeIdleTimeout: 30 * time.Second,
			CombatPowerMin:     0,
			CombatPowerMax:     999999,
		},
		Stamina: StaminaConfig{
			SyncInterval:             200 * time.Millisecond,
			DefaultRegenRate:         0.1,
			DefaultChargeConsumeRate: 1.0,
		},
		Battle: BattleConfig{
			PreparingDuration:   15 * time.Second,
			SafeZoneAlertRadius: 6,
		},
		Bot: BotConfig{
			MinDodgeReaction: 200 * time.Millisecond,
			MaxDodgeReaction: 600 * time.Millisecond,
			ProficiencyTable: "data/bot_proficiency.yaml",
			ScriptDir:        "scripts/bot",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
