// Package data loads the core's template tables from YAML (spec §1:
// "consumes loaded immutable template data"; SPEC_FULL §10.3), one
// LoadXTable(path) function per table, following the
// teacher's internal/data per-table loader shape (npc.go/drop.go/
// item.go): a flat YAML list unmarshaled into a map indexed by id.
package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gamenio/arenacore/internal/target"
)

// NatureTemplate is a robot species/archetype's combat profile: base
// stats, threat weighting, and dodge proficiency (spec §4.4 threat
// modifier matrix, §4.3 dodge reaction bounds).
type NatureTemplate struct {
	NatureID int32  `yaml:"nature_id"`
	Name     string `yaml:"name"`

	MaxHealth  int32 `yaml:"max_health"`
	MaxStamina int32 `yaml:"max_stamina"`

	StaminaRegenRate      float64 `yaml:"stamina_regen_rate"`
	ChargeConsumeRate     float64 `yaml:"charge_consume_rate"`
	AttackTakesStamina    int32   `yaml:"attack_takes_stamina"`

	// ThreatModifiers[combatState][threatType], authored in YAML as two
	// rows of four values; target.ThreatModifierMatrix has the same
	// [2][4] shape (target.CombatState x target.ThreatType).
	ThreatModifiers [2][4]float64 `yaml:"threat_modifiers"`

	MinDodgeReactionMs int32 `yaml:"min_dodge_reaction_ms"`
	MaxDodgeReactionMs int32 `yaml:"max_dodge_reaction_ms"`

	AttackAbandonDistance float64 `yaml:"attack_abandon_distance"`
}

type natureListFile struct {
	Natures []NatureTemplate `yaml:"natures"`
}

// NatureTable holds all nature templates indexed by NatureID.
type NatureTable struct {
	templates map[int32]*NatureTemplate
}

// LoadNatureTable loads nature templates from a YAML file.
func LoadNatureTable(path string) (*NatureTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nature_list: %w", err)
	}
	var f natureListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse nature_list: %w", err)
	}
	t := &NatureTable{templates: make(map[int32]*NatureTemplate, len(f.Natures))}
	for i := range f.Natures {
		n := &f.Natures[i]
		t.templates[n.NatureID] = n
	}
	return t, nil
}

// ThreatModifierMatrix converts the YAML-authored [2][4] array into
// target.ThreatModifierMatrix.
func (n *NatureTemplate) ThreatModifierMatrix() target.ThreatModifierMatrix {
	return target.ThreatModifierMatrix(n.ThreatModifiers)
}

// Get returns a nature template by ID, or nil if not found.
func (t *NatureTable) Get(natureID int32) *NatureTemplate {
	return t.templates[natureID]
}

// Count returns the number of loaded nature templates.
func (t *NatureTable) Count() int {
	return len(t.templates)
}
