package resource

// ---- Enumerations shared by the catalog, players and item instances ----

// Gender restricts who may wear an item. Players are always Male or Female.
type Gender int

const (
	GenderMale    Gender = 0
	GenderFemale  Gender = 1
	GenderNeutral Gender = 2
)

// Job is a character class. JobNone in a requirement list means "any job".
type Job int

const (
	JobNone        Job = 0
	JobBeginner    Job = 1
	JobKnight      Job = 10
	JobBerserker   Job = 20
	JobWizard      Job = 30
	JobPriest      Job = 40
	JobArcher      Job = 50
	JobHeavyGunner Job = 60
	JobThief       Job = 70
	JobAssassin    Job = 80
	JobRuneBlader  Job = 90
	JobStriker     Job = 100
	JobSoulBinder  Job = 110
	JobGameMaster  Job = 999
)

// InventoryTab is the bag tab an item is sorted into.
type InventoryTab int

const (
	TabGear         InventoryTab = 0
	TabOutfit       InventoryTab = 1
	TabMount        InventoryTab = 2
	TabCatalyst     InventoryTab = 3
	TabFishingMusic InventoryTab = 4
	TabQuest        InventoryTab = 5
	TabGemstone     InventoryTab = 6
	TabMisc         InventoryTab = 7
	TabLifeSkill    InventoryTab = 9
	TabPets         InventoryTab = 10
	TabConsumable   InventoryTab = 11
	TabCurrency     InventoryTab = 12
	TabBadge        InventoryTab = 13
	TabLapenshard   InventoryTab = 15
	TabFragment     InventoryTab = 16
)

// ItemSlot is the equipment slot an item occupies.
type ItemSlot int

const (
	SlotNone ItemSlot = iota
	SlotHR            // hair
	SlotFA            // face
	SlotFD            // face decoration
	SlotLH            // left hand
	SlotRH            // right hand
	SlotCP            // cap
	SlotMT            // mantle
	SlotCL            // clothes
	SlotPA            // pants
	SlotGL            // gloves
	SlotSH            // shoes
	SlotFH            // face accessory
	SlotEA            // earring
	SlotPD            // pendant
	SlotRI            // ring
	SlotBE            // belt
	SlotOH            // off hand
	SlotER            // ear
)

// GemSlot is the badge socket an item fits into.
type GemSlot int

const (
	GemNone GemSlot = iota
	GemTransparency
	GemDamage
	GemChat
	GemName
	GemTombstone
	GemSwim
	GemBuddy
	GemFishing
	GemGathering
	GemEffect
	GemPet
)

// TransferType is the catalog trade policy of a template.
type TransferType int

const (
	TransferTradeable TransferType = iota
	TransferUntradeable
	TransferBindOnLoot
	TransferBindOnEquip
	TransferBindOnUse
	TransferBindOnTrade
	TransferBlockMerchant
)

// TransferFlag is the per-instance trade/mail/sale restriction bitset.
type TransferFlag int

const (
	TransferFlagNone              TransferFlag = 0
	TransferFlagSplittable        TransferFlag = 1 << 0
	TransferFlagTradeable         TransferFlag = 1 << 1
	TransferFlagBinds             TransferFlag = 1 << 2
	TransferFlagLimitedTradeCount TransferFlag = 1 << 3
	TransferFlagSellable          TransferFlag = 1 << 4
)

// Has reports whether every bit of f is set.
func (t TransferFlag) Has(f TransferFlag) bool { return t&f == f }

// HousingCategory classifies furnishing templates.
type HousingCategory int

const (
	HousingNone HousingCategory = iota
	HousingBed
	HousingTable
	HousingSofa
	HousingStorage
	HousingWallDecoration
	HousingWallTile
	HousingBathroom
	HousingLighting
	HousingGallery
	HousingProp
	HousingFarming
	HousingRanching
)

// ---- Template metadata ----

// ItemPropertyMetadata holds general template properties.
type ItemPropertyMetadata struct {
	StackLimit          int    `json:"stackLimit"`
	TradeableCount      int    `json:"tradeableCount"`
	RepackageCount      int    `json:"repackageCount"`
	GearScoreFactor     int    `json:"gearScoreFactor"`
	BlackMarketCategory string `json:"blackMarketCategory"`
	Category            string `json:"category"`
}

// ItemLimitMetadata holds equip/use restrictions and trade policy.
type ItemLimitMetadata struct {
	LevelLimitMin      int          `json:"levelLimitMin"`
	LevelLimitMax      int          `json:"levelLimitMax"` // 0 = no ceiling
	Gender             Gender       `json:"gender"`
	Breakable          bool         `json:"breakable"`
	TransferType       TransferType `json:"transferType"`
	TradeMaxRarity     int          `json:"tradeMaxRarity"` // 0 = no rarity cap on trading
	VipOnly            bool         `json:"vipOnly"`
	DisableEnchant     bool         `json:"disableEnchant"`
	JobRequirements    []Job        `json:"jobRequirements"`
	JobRecommendations []Job        `json:"jobRecommendations"`
}

// ItemMusicMetadata holds instrument score facts.
type ItemMusicMetadata struct {
	PlayCount     int    `json:"playCount"`
	IsCustomScore bool   `json:"isCustomScore"`
	FileName      string `json:"fileName"`
}

// ItemSkillMetadata links an item to the skill it casts.
type ItemSkillMetadata struct {
	SkillID    int `json:"skillId"`
	SkillLevel int `json:"skillLevel"`
}

// ItemHousingMetadata holds furnishing facts.
type ItemHousingMetadata struct {
	HousingCategory HousingCategory `json:"housingCategory"`
	TrophyID        int             `json:"trophyId"`
}

// ItemFunctionMetadata describes what happens when an item is used.
type ItemFunctionMetadata struct {
	Name       string `json:"name"`
	ID         int    `json:"id"`
	Parameters string `json:"parameters"`
}

// ItemAdditionalEffectMetadata lists bonus effects granted while equipped.
type ItemAdditionalEffectMetadata struct {
	IDs    []int `json:"ids"`
	Levels []int `json:"levels"`
}

// EquipColor is the dye applied to an equipment piece.
type EquipColor struct {
	Primary   uint32 `json:"primary"`
	Secondary uint32 `json:"secondary"`
	Tertiary  uint32 `json:"tertiary"`
	Index     int    `json:"index"`
	PaletteID int    `json:"paletteId"`
}

// ItemStatOption is one base stat rolled onto new instances.
type ItemStatOption struct {
	Attribute int     `json:"attribute"`
	Flat      int     `json:"flat"`
	Rate      float64 `json:"rate"`
}

// ItemMetadata is the immutable template describing every instance of an item id.
type ItemMetadata struct {
	ID                 int                          `json:"id"`
	Name               string                       `json:"name"`
	Rarity             int                          `json:"rarity"`
	Slot               ItemSlot                     `json:"slot"`
	Gem                GemSlot                      `json:"gem"`
	Tab                InventoryTab                 `json:"tab"`
	IsTwoHand          bool                         `json:"isTwoHand"`
	IsDress            bool                         `json:"isDress"`
	IsUGC              bool                         `json:"isUgc"`
	Tag                string                       `json:"tag"`
	ShopID             int                          `json:"shopId"`
	PetID              int                          `json:"petId"`
	ExpirationDuration int64                        `json:"expirationDuration"` // seconds, 0 = never
	ExtractionCount    int                          `json:"extractionCount"`
	Property           ItemPropertyMetadata         `json:"property"`
	Limit              ItemLimitMetadata            `json:"limit"`
	Music              ItemMusicMetadata            `json:"music"`
	Skill              ItemSkillMetadata            `json:"skill"`
	Housing            ItemHousingMetadata          `json:"housing"`
	Function           ItemFunctionMetadata         `json:"function"`
	AdditionalEffects  ItemAdditionalEffectMetadata `json:"additionalEffects"`
	Color              EquipColor                   `json:"color"`
	Stats              []ItemStatOption             `json:"stats"`
}
