package spawn

import (
	"math/rand"

	"github.com/gamenio/arenacore/internal/data"
	"github.com/gamenio/arenacore/internal/target"
)

// LootedItem is one item an item box's loot roll produced, ready for
// the caller to materialize as an entity.Item (original_source
// SpawnManager::createItemBoxItem).
type LootedItem struct {
	ItemID int32
	Count  int32
}

// LootRoller implements SpawnManager::rollItemBoxLoot: a weighted
// selection over a loot table's entries.
type LootRoller struct {
	table *data.LootTable
	rng   *rand.Rand
}

func NewLootRoller(table *data.LootTable, rng *rand.Rand) *LootRoller {
	return &LootRoller{table: table, rng: rng}
}

// Roll draws n independent weighted picks from lootID's entry list,
// each with a random count in [MinCount, MaxCount].
func (r *LootRoller) Roll(lootID int32, n int) []LootedItem {
	entries := r.table.Get(lootID)
	if len(entries) == 0 {
		return nil
	}
	var total int32
	for _, e := range entries {
		total += e.Weight
	}
	if total <= 0 {
		return nil
	}

	out := make([]LootedItem, 0, n)
	for i := 0; i < n; i++ {
		roll := r.rng.Int31n(total)
		var acc int32
		chosen := entries[len(entries)-1]
		for _, e := range entries {
			acc += e.Weight
			if roll < acc {
				chosen = e
				break
			}
		}
		count := chosen.MinCount
		if chosen.MaxCount > chosen.MinCount {
			count += r.rng.Int31n(chosen.MaxCount - chosen.MinCount + 1)
		}
		out = append(out, LootedItem{ItemID: chosen.ItemID, Count: count})
	}
	return out
}

// ItemCounters implements SpawnManager's m_itemCounters and
// m_classifiedItemCounters: a live count of each spawned item id and
// each target.ItemClass, letting the spawn manager cap how much of a
// scarce class (e.g. magic beans) is on the map at once.
type ItemCounters struct {
	byItem  map[int32]int32
	byClass map[target.ItemClass]int32
}

func NewItemCounters() *ItemCounters {
	return &ItemCounters{
		byItem:  map[int32]int32{},
		byClass: map[target.ItemClass]int32{},
	}
}

// Increase implements increaseItemCount/increaseClassifiedItemCount;
// delta may be negative (an item picked up or despawned).
func (c *ItemCounters) Increase(itemID int32, class target.ItemClass, delta int32) {
	c.byItem[itemID] += delta
	c.byClass[class] += delta
}

func (c *ItemCounters) ItemCount(itemID int32) int32        { return c.byItem[itemID] }
func (c *ItemCounters) ClassCount(class target.ItemClass) int32 { return c.byClass[class] }
