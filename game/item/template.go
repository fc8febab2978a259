package item

import (
	"errors"
	"time"

	"github.com/kasuganosora/mmoitems/resource"
)

// ErrUnknownTemplate is returned when an item id is not in the catalog.
// The catalog is preloaded and exhaustive, so this is a configuration fault.
var ErrUnknownTemplate = errors.New("item: unknown template id")

// Catalog is the read-only template lookup the item core consumes.
// *resource.ItemCatalog implements it.
type Catalog interface {
	Exists(id int) bool
	GetName(id int) string
	GetRarity(id int) int
	GetPropertyMetadata(id int) resource.ItemPropertyMetadata
	GetMusicMetadata(id int) resource.ItemMusicMetadata
	GetLimitMetadata(id int) resource.ItemLimitMetadata
	GetSkillMetadata(id int) resource.ItemSkillMetadata
	GetHousingMetadata(id int) resource.ItemHousingMetadata
	GetFunctionMetadata(id int) resource.ItemFunctionMetadata
	GetSlot(id int) resource.ItemSlot
	GetGem(id int) resource.GemSlot
	GetTab(id int) resource.InventoryTab
	GetIsTwoHand(id int) bool
	GetIsDress(id int) bool
	GetIsUGC(id int) bool
	GetTag(id int) string
	GetShopID(id int) int
	GetPetID(id int) int
	GetEquipColor(id int) resource.EquipColor
	GetExpirationDuration(id int) time.Duration
	GetExtractionCount(id int) int
	GetStatOptions(id int) []resource.ItemStatOption
	GetAdditionalEffects(id int) resource.ItemAdditionalEffectMetadata
	GetRecommendJobs(id int) []resource.Job
	GetRequiredJobs(id int) []resource.Job
	GetTransferFlag(id, rarity int) resource.TransferFlag
}

// ResolveFacts builds the template fact block for (id, rarity) without
// touching any instance.
func ResolveFacts(c Catalog, id, rarity int) *TemplateFacts {
	property := c.GetPropertyMetadata(id)
	limit := c.GetLimitMetadata(id)
	music := c.GetMusicMetadata(id)
	return &TemplateFacts{
		Name:                c.GetName(id),
		Tab:                 c.GetTab(id),
		Slot:                c.GetSlot(id),
		GemSlot:             c.GetGem(id),
		Type:                TypeOf(id),
		StackLimit:          property.StackLimit,
		EnableBreak:         limit.Breakable,
		IsTwoHand:           c.GetIsTwoHand(id),
		IsDress:             c.GetIsDress(id),
		IsCustomScore:       music.IsCustomScore,
		FileName:            music.FileName,
		Gender:              limit.Gender,
		SkillID:             c.GetSkillMetadata(id).SkillID,
		RecommendJobs:       c.GetRecommendJobs(id),
		RequiredJobs:        c.GetRequiredJobs(id),
		Function:            c.GetFunctionMetadata(id),
		Tag:                 c.GetTag(id),
		ShopID:              c.GetShopID(id),
		PetID:               c.GetPetID(id),
		TransferType:        limit.TransferType,
		TransferFlag:        c.GetTransferFlag(id, rarity),
		HousingCategory:     c.GetHousingMetadata(id).HousingCategory,
		BlackMarketCategory: property.BlackMarketCategory,
		Category:            property.Category,
		DisableEnchant:      limit.DisableEnchant,
		VipOnly:             limit.VipOnly,
		LevelLimitMax:       limit.LevelLimitMax,
		GearScoreFactor:     property.GearScoreFactor,
		AdditionalEffects:   c.GetAdditionalEffects(id),
	}
}

// ApplyTemplate re-derives every template-backed fact of it from the catalog
// and publishes them in a single atomic swap. Calling it again without a
// template change yields an equal fact block.
func ApplyTemplate(c Catalog, it *Item) {
	facts := ResolveFacts(c, it.ID, it.Rarity)
	if facts.GemSlot == resource.GemTransparency && len(it.TransparencyBadge) != TransparencyBadgeSlots {
		it.TransparencyBadge = make([]bool, TransparencyBadgeSlots)
	}
	it.facts.Store(facts)
}
