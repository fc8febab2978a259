package model

import (
	"time"

	"gorm.io/datatypes"
)

// ItemRecord is the persisted form of one item instance.
// Sub-records are stored as JSON columns.
type ItemRecord struct {
	UID                     int64          `gorm:"primaryKey;autoIncrement" json:"uid"`
	ItemID                  int            `gorm:"index:idx_item_template;not null" json:"item_id"`
	Rarity                  int            `gorm:"not null" json:"rarity"`
	Level                   int            `gorm:"default:0" json:"level"`
	Amount                  int            `gorm:"default:1" json:"amount"`
	Slot                    int16          `gorm:"default:-1" json:"slot"` // -1 = unplaced
	IsEquipped              bool           `gorm:"default:false" json:"is_equipped"`
	InventoryID             int64          `gorm:"index:idx_item_inventory" json:"inventory_id"`
	BankInventoryID         int64          `json:"bank_inventory_id"`
	HomeID                  int64          `json:"home_id"`
	MailID                  int64          `gorm:"index:idx_item_mail" json:"mail_id"`
	CreationTime            int64          `json:"creation_time"`
	ExpiryTime              int64          `json:"expiry_time"`
	TimesAttributesChanged  int            `json:"times_attributes_changed"`
	IsLocked                bool           `json:"is_locked"`
	UnlockTime              int64          `json:"unlock_time"`
	RemainingGlamorForges   int            `json:"remaining_glamor_forges"`
	RemainingRepackageCount int            `json:"remaining_repackage_count"`
	RemainingTrades         int            `json:"remaining_trades"`
	GachaDismantleID        int            `json:"gacha_dismantle_id"`
	Charges                 int            `json:"charges"`
	PlayCount               int            `json:"play_count"`
	GearScore               int            `json:"gear_score"`
	EnchantLevel            int            `json:"enchant_level"`
	EnchantExp              int            `json:"enchant_exp"`
	LimitBreakLevel         int            `json:"limit_break_level"`
	OwnerAccountID          int64          `json:"owner_account_id"`
	OwnerCharacterID        int64          `gorm:"index:idx_item_owner" json:"owner_character_id"`
	OwnerCharacterName      string         `gorm:"size:32" json:"owner_character_name"`
	PairedCharacterID       int64          `json:"paired_character_id"`
	PairedCharacterName     string         `gorm:"size:32" json:"paired_character_name"`
	PetSkinBadgeID          int            `json:"pet_skin_badge_id"`
	TransparencyBadge       datatypes.JSON `json:"transparency_badge"`
	Color                   datatypes.JSON `json:"color"`
	HairData                datatypes.JSON `json:"hair_data"`
	HatData                 datatypes.JSON `json:"hat_data"`
	FaceDecoration          []byte         `json:"face_decoration"`
	Score                   datatypes.JSON `json:"score"`
	Stats                   datatypes.JSON `json:"stats"`
	PetInfo                 datatypes.JSON `json:"pet_info"`
	UGCID                   *int64         `gorm:"index:idx_item_ugc" json:"ugc_id"`
	CreatedAt               time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name.
func (ItemRecord) TableName() string { return "items" }

// UGCRecord is a registered user-generated design.
type UGCRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GUID          string    `gorm:"uniqueIndex;size:36;not null" json:"guid"`
	Name          string    `gorm:"size:64" json:"name"`
	URL           string    `gorm:"size:255" json:"url"`
	CharacterID   int64     `gorm:"index:idx_ugc_char" json:"character_id"`
	CharacterName string    `gorm:"size:32" json:"character_name"`
	AccountID     int64     `json:"account_id"`
	CreationTime  int64     `json:"creation_time"`
	SalePrice     int64     `json:"sale_price"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName pins the table name.
func (UGCRecord) TableName() string { return "ugc" }
