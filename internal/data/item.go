package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gamenio/arenacore/internal/target"
)

// ItemTemplate is a pickup item's static data: its wish-manager class
// and, for equipment, its level (spec §4.4 Wish()).
type ItemTemplate struct {
	ItemID   int32  `yaml:"item_id"`
	Name     string `yaml:"name"`
	Class    string `yaml:"class"` // "gold","consumable","magic_bean","equipment","first_aid"
	Level    int32  `yaml:"level,omitempty"`
	StackMax int32  `yaml:"stack_max"`
}

// TargetClass maps the YAML class string to target.ItemClass.
func (t *ItemTemplate) TargetClass() target.ItemClass {
	switch t.Class {
	case "gold":
		return target.ItemClassGold
	case "consumable":
		return target.ItemClassConsumableOther
	case "magic_bean":
		return target.ItemClassMagicBean
	case "equipment":
		return target.ItemClassEquipment
	case "first_aid":
		return target.ItemClassFirstAid
	default:
		return target.ItemClassNone
	}
}

type itemListFile struct {
	Items []ItemTemplate `yaml:"items"`
}

// ItemTable holds all item templates indexed by ItemID.
type ItemTable struct {
	templates map[int32]*ItemTemplate
}

// LoadItemTable loads item templates from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item_list: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item_list: %w", err)
	}
	t := &ItemTable{templates: make(map[int32]*ItemTemplate, len(f.Items))}
	for i := range f.Items {
		it := &f.Items[i]
		t.templates[it.ItemID] = it
	}
	return t, nil
}

// Get returns an item template by ID, or nil if not found.
func (t *ItemTable) Get(itemID int32) *ItemTemplate {
	return t.templates[itemID]
}

// Count returns the number of loaded item templates.
func (t *ItemTable) Count() int {
	return len(t.templates)
}

// ItemBoxTemplate is a destructible item box's static data: health and
// which loot table it rolls on destruction (spec §4 ItemBox).
type ItemBoxTemplate struct {
	ItemBoxID int32 `yaml:"item_box_id"`
	MaxHealth int32 `yaml:"max_health"`
	LootID    int32 `yaml:"loot_id"`
}

type itemBoxListFile struct {
	ItemBoxes []ItemBoxTemplate `yaml:"item_boxes"`
}

// ItemBoxTable holds all item box templates indexed by ItemBoxID.
type ItemBoxTable struct {
	templates map[int32]*ItemBoxTemplate
}

// LoadItemBoxTable loads item box templates from a YAML file.
func LoadItemBoxTable(path string) (*ItemBoxTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item_box_list: %w", err)
	}
	var f itemBoxListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item_box_list: %w", err)
	}
	t := &ItemBoxTable{templates: make(map[int32]*ItemBoxTemplate, len(f.ItemBoxes))}
	for i := range f.ItemBoxes {
		b := &f.ItemBoxes[i]
		t.templates[b.ItemBoxID] = b
	}
	return t, nil
}

// Get returns an item box template by ID, or nil if not found.
func (t *ItemBoxTable) Get(itemBoxID int32) *ItemBoxTemplate {
	return t.templates[itemBoxID]
}

// Count returns the number of loaded item box templates.
func (t *ItemBoxTable) Count() int {
	return len(t.templates)
}
