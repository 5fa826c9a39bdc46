package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LootEntry is one weighted possible drop within a loot table entry
// (original_source SpawnManager::rollItemBoxLoot/createItemBoxItem).
type LootEntry struct {
	ItemID   int32 `yaml:"item_id"`
	Weight   int32 `yaml:"weight"`
	MinCount int32 `yaml:"min_count"`
	MaxCount int32 `yaml:"max_count"`
}

type lootListEntry struct {
	LootID int32       `yaml:"loot_id"`
	Items  []LootEntry `yaml:"items"`
}

type lootListFile struct {
	Loots []lootListEntry `yaml:"loots"`
}

// LootTable holds all loot tables indexed by LootID.
type LootTable struct {
	loots map[int32][]LootEntry
}

// LoadLootTable loads loot tables from a YAML file.
func LoadLootTable(path string) (*LootTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read loot_list: %w", err)
	}
	var f lootListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse loot_list: %w", err)
	}
	t := &LootTable{loots: make(map[int32][]LootEntry, len(f.Loots))}
	for _, entry := range f.Loots {
		t.loots[entry.LootID] = entry.Items
	}
	return t, nil
}

// Get returns the possible drops for a loot id, or nil if none defined.
func (t *LootTable) Get(lootID int32) []LootEntry {
	return t.loots[lootID]
}

// Count returns the number of loot tables loaded.
func (t *LootTable) Count() int {
	return len(t.loots)
}
