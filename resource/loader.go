package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ItemCatalog is the preloaded, read-only item template table.
// It is built once at startup and never mutated afterwards, so lookups
// need no locking.
type ItemCatalog struct {
	DataPath string
	items    map[int]*ItemMetadata
}

// NewLoader creates an ItemCatalog that reads templates from dataPath.
func NewLoader(dataPath string) *ItemCatalog {
	return &ItemCatalog{
		DataPath: dataPath,
		items:    make(map[int]*ItemMetadata),
	}
}

// NewCatalog builds an ItemCatalog directly from templates (tests, tools).
func NewCatalog(items ...*ItemMetadata) (*ItemCatalog, error) {
	c := &ItemCatalog{items: make(map[int]*ItemMetadata, len(items))}
	if err := c.index(items); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads every *.json file under DataPath. Each file is an array of
// ItemMetadata objects.
func (c *ItemCatalog) Load() error {
	files, err := filepath.Glob(filepath.Join(c.DataPath, "*.json"))
	if err != nil {
		return fmt.Errorf("resource: glob %s: %w", c.DataPath, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("resource: no item files in %s", c.DataPath)
	}
	for _, f := range files {
		items, err := loadJSONArray[ItemMetadata](f)
		if err != nil {
			return err
		}
		if err := c.index(items); err != nil {
			return err
		}
	}
	return nil
}

func (c *ItemCatalog) index(items []*ItemMetadata) error {
	for _, md := range items {
		if md == nil {
			continue
		}
		if _, dup := c.items[md.ID]; dup {
			return fmt.Errorf("resource: duplicate item id %d", md.ID)
		}
		c.items[md.ID] = md
	}
	return nil
}

func loadJSONArray[T any](path string) ([]*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	var arr []*T
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return arr, nil
}

// Len returns the number of templates loaded.
func (c *ItemCatalog) Len() int { return len(c.items) }

// Exists reports whether id is a known template.
func (c *ItemCatalog) Exists(id int) bool {
	_, ok := c.items[id]
	return ok
}

// Template returns the raw template for id, or nil.
func (c *ItemCatalog) Template(id int) *ItemMetadata {
	return c.items[id]
}

// get never returns nil; unknown ids resolve to an empty template.
func (c *ItemCatalog) get(id int) *ItemMetadata {
	if md, ok := c.items[id]; ok {
		return md
	}
	return &ItemMetadata{ID: id}
}

// ---- Lookups ----

func (c *ItemCatalog) GetName(id int) string { return c.get(id).Name }
func (c *ItemCatalog) GetRarity(id int) int { return c.get(id).Rarity }
func (c *ItemCatalog) GetPropertyMetadata(id int) ItemPropertyMetadata { return c.get(id).Property }
func (c *ItemCatalog) GetMusicMetadata(id int) ItemMusicMetadata { return c.get(id).Music }
func (c *ItemCatalog) GetLimitMetadata(id int) ItemLimitMetadata { return c.get(id).Limit }
func (c *ItemCatalog) GetSkillMetadata(id int) ItemSkillMetadata { return c.get(id).Skill }
func (c *ItemCatalog) GetHousingMetadata(id int) ItemHousingMetadata { return c.get(id).Housing }
func (c *ItemCatalog) GetFunctionMetadata(id int) ItemFunctionMetadata { return c.get(id).Function }
func (c *ItemCatalog) GetSlot(id int) ItemSlot { return c.get(id).Slot }
func (c *ItemCatalog) GetGem(id int) GemSlot { return c.get(id).Gem }
func (c *ItemCatalog) GetTab(id int) InventoryTab { return c.get(id).Tab }
func (c *ItemCatalog) GetIsTwoHand(id int) bool { return c.get(id).IsTwoHand }
func (c *ItemCatalog) GetIsDress(id int) bool { return c.get(id).IsDress }
func (c *ItemCatalog) GetIsUGC(id int) bool { return c.get(id).IsUGC }
func (c *ItemCatalog) GetTag(id int) string { return c.get(id).Tag }
func (c *ItemCatalog) GetShopID(id int) int { return c.get(id).ShopID }
func (c *ItemCatalog) GetPetID(id int) int { return c.get(id).PetID }
func (c *ItemCatalog) GetEquipColor(id int) EquipColor { return c.get(id).Color }
// GetExpirationDuration is how long a fresh instance lives; zero means forever.
func (c *ItemCatalog) GetExpirationDuration(id int) time.Duration {
	return time.Duration(c.get(id).ExpirationDuration) * time.Second
}
func (c *ItemCatalog) GetExtractionCount(id int) int { return c.get(id).ExtractionCount }
func (c *ItemCatalog) GetStatOptions(id int) []ItemStatOption { return c.get(id).Stats }

// GetAdditionalEffects returns the bonus effects granted while equipped.
func (c *ItemCatalog) GetAdditionalEffects(id int) ItemAdditionalEffectMetadata {
	return c.get(id).AdditionalEffects
}

// GetRecommendJobs returns the jobs the item is suggested for (display only).
func (c *ItemCatalog) GetRecommendJobs(id int) []Job {
	return append([]Job(nil), c.get(id).Limit.JobRecommendations...)
}

// GetRequiredJobs returns the jobs allowed to equip or use the item.
// An empty requirement list is reported as [JobNone].
func (c *ItemCatalog) GetRequiredJobs(id int) []Job {
	jobs := c.get(id).Limit.JobRequirements
	if len(jobs) == 0 {
		return []Job{JobNone}
	}
	return append([]Job(nil), jobs...)
}

// GetTransferFlag derives the instance transfer bitset from the template's
// trade policy and the instance rarity.
func (c *ItemCatalog) GetTransferFlag(id, rarity int) TransferFlag {
	md := c.get(id)
	var flag TransferFlag
	switch md.Limit.TransferType {
	case TransferTradeable:
		flag = TransferFlagSplittable | TransferFlagTradeable | TransferFlagSellable
	case TransferUntradeable:
		flag = TransferFlagSplittable | TransferFlagSellable
	case TransferBindOnLoot:
		flag = TransferFlagSplittable | TransferFlagBinds | TransferFlagSellable
	case TransferBindOnEquip, TransferBindOnUse, TransferBindOnTrade:
		flag = TransferFlagSplittable | TransferFlagTradeable | TransferFlagBinds | TransferFlagSellable
	case TransferBlockMerchant:
		flag = TransferFlagSplittable | TransferFlagTradeable
	}
	if md.Limit.TradeMaxRarity > 0 && rarity > md.Limit.TradeMaxRarity {
		flag &^= TransferFlagTradeable
	}
	if md.Property.TradeableCount > 0 && flag.Has(TransferFlagTradeable) {
		flag |= TransferFlagLimitedTradeCount
	}
	return flag
}
