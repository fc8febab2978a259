// Package item models a single ownable item instance: its identity, mutable
// runtime state, catalog-derived facts and the rules that govern equipping,
// using, binding, splitting and gear score.
//
// An *Item is owned by exactly one container at a time and is not safe for
// concurrent mutation. Readers in other goroutines must work on a Clone or
// synchronize through the owning container. The only exception is the
// template-derived fact block, which is swapped atomically so a reader never
// observes a half-applied template.
package item

import (
	"sync/atomic"

	"github.com/kasuganosora/mmoitems/resource"
)

const (
	// RarityAuto asks Create to take the rarity from the template.
	RarityAuto = -1
	// SlotUnplaced marks an item that is not sitting in any container slot.
	SlotUnplaced int16 = -1
	// TransparencyBadgeSlots is the size of the transparency toggle buffer.
	TransparencyBadgeSlots = 10
	// EnchantExpMax is 100% enchant progress.
	EnchantExpMax = 10000
)

// TemplateFacts is everything an instance derives from its template.
// A TemplateFacts value is immutable once published on an Item.
type TemplateFacts struct {
	Name                string
	Tab                 resource.InventoryTab
	Slot                resource.ItemSlot
	GemSlot             resource.GemSlot
	Type                ItemType
	StackLimit          int
	EnableBreak         bool
	IsTwoHand           bool
	IsDress             bool
	IsCustomScore       bool
	FileName            string
	Gender              resource.Gender
	SkillID             int
	RecommendJobs       []resource.Job
	RequiredJobs        []resource.Job
	Function            resource.ItemFunctionMetadata
	Tag                 string
	ShopID              int
	PetID               int
	TransferType        resource.TransferType
	TransferFlag        resource.TransferFlag
	HousingCategory     resource.HousingCategory
	BlackMarketCategory string
	Category            string
	DisableEnchant      bool
	VipOnly             bool
	LevelLimitMax       int
	GearScoreFactor     int
	AdditionalEffects   resource.ItemAdditionalEffectMetadata
}

// Item is one concrete occurrence of a template in the world.
type Item struct {
	UID    int64 // instance id, assigned by storage; 0 until persisted
	ID     int   // template id
	Rarity int   // fixed at creation

	Level      int
	Amount     int
	Slot       int16
	IsEquipped bool

	InventoryID     int64
	BankInventoryID int64
	HomeID          int64
	MailID          int64

	CreationTime int64 // unix seconds
	ExpiryTime   int64 // unix seconds, 0 = never

	TimesAttributesChanged  int
	IsLocked                bool
	UnlockTime              int64
	RemainingGlamorForges   int
	RemainingRepackageCount int
	RemainingTrades         int
	GachaDismantleID        int
	Charges                 int
	PlayCount               int

	GearScore       int
	EnchantLevel    int
	EnchantExp      int // 0-10000
	LimitBreakLevel int

	OwnerAccountID     int64
	OwnerCharacterID   int64
	OwnerCharacterName string

	PairedCharacterID   int64
	PairedCharacterName string
	PetSkinBadgeID      int
	TransparencyBadge   []bool

	Color          resource.EquipColor
	HairData       *HairData
	HatData        *HatData
	FaceDecoration []byte
	Score          *MusicScore
	Stats          *ItemStats
	UGC            *UGC
	PetInfo        *PetInfo
	Drop           *DropInformation

	facts atomic.Pointer[TemplateFacts]
}

var emptyFacts = &TemplateFacts{}

// Facts returns the currently published template facts. Never nil.
func (it *Item) Facts() *TemplateFacts {
	if f := it.facts.Load(); f != nil {
		return f
	}
	return emptyFacts
}

// Type is shorthand for Facts().Type.
func (it *Item) Type() ItemType { return it.Facts().Type }

// TransferFlag is shorthand for Facts().TransferFlag.
func (it *Item) TransferFlag() resource.TransferFlag { return it.Facts().TransferFlag }

// IsPlaced reports whether the item occupies a container slot.
func (it *Item) IsPlaced() bool { return it.Slot != SlotUnplaced }

// ---- Sub-records ----

// HairData is the cosmetic payload of a hair item.
type HairData struct {
	BackLength            float32    `json:"back_length"`
	FrontLength           float32    `json:"front_length"`
	BackPositionCoord     [3]float32 `json:"back_position_coord"`
	BackPositionRotation  [3]float32 `json:"back_position_rotation"`
	FrontPositionCoord    [3]float32 `json:"front_position_coord"`
	FrontPositionRotation [3]float32 `json:"front_position_rotation"`
}

// HatData is the placement payload of a hat item.
type HatData struct {
	Position [3]float32 `json:"position"`
	Rotation [3]float32 `json:"rotation"`
	Scale    float32    `json:"scale"`
}

// MusicScore is a playable instrument score attached to a sheet item.
type MusicScore struct {
	Length            int    `json:"length"`
	Instrument        int    `json:"instrument"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	AuthorCharacterID int64  `json:"author_character_id"`
	IsLocked          bool   `json:"is_locked"`
	Notes             string `json:"notes"`
}

// PetInfo is present only on items sorted into the Pets tab.
type PetInfo struct {
	Name         string `json:"name"`
	Exp          int64  `json:"exp"`
	EvolvePoints int    `json:"evolve_points"`
	Level        int    `json:"level"`
	HasItems     bool   `json:"has_items"`
}

// Clone returns an independent copy.
func (p *PetInfo) Clone() *PetInfo {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// UGC references a user-generated design registered in storage.
type UGC struct {
	UID           int64  `json:"uid"`
	GUID          string `json:"guid"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	CharacterID   int64  `json:"character_id"`
	CharacterName string `json:"character_name"`
	AccountID     int64  `json:"account_id"`
	CreationTime  int64  `json:"creation_time"`
	SalePrice     int64  `json:"sale_price"`
}
