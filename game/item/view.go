package item

// View is the wire form of an item used in item_update packets and the
// HTTP API.
type View struct {
	UID                int64      `json:"uid"`
	ID                 int        `json:"item_id"`
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	Rarity             int        `json:"rarity"`
	Amount             int        `json:"amount"`
	Slot               int16      `json:"slot"`
	Level              int        `json:"level"`
	IsEquipped         bool       `json:"is_equipped"`
	InventoryID        int64      `json:"inventory_id"`
	CreationTime       int64      `json:"creation_time"`
	ExpiryTime         int64      `json:"expiry_time"`
	IsLocked           bool       `json:"is_locked"`
	RemainingTrades    int        `json:"remaining_trades"`
	TransferFlag       int        `json:"transfer_flag"`
	GearScore          int        `json:"gear_score"`
	EnchantLevel       int        `json:"enchant_level"`
	EnchantExp         int        `json:"enchant_exp"`
	LimitBreakLevel    int        `json:"limit_break_level"`
	OwnerCharacterID   int64      `json:"owner_character_id"`
	OwnerCharacterName string     `json:"owner_character_name,omitempty"`
	Stats              *ItemStats `json:"stats,omitempty"`
	PetInfo            *PetInfo   `json:"pet,omitempty"`
	UGC                *UGC       `json:"ugc,omitempty"`
}

// NewView snapshots it.
func NewView(it *Item) *View {
	f := it.Facts()
	return &View{
		UID:                it.UID,
		ID:                 it.ID,
		Name:               f.Name,
		Type:               f.Type.String(),
		Rarity:             it.Rarity,
		Amount:             it.Amount,
		Slot:               it.Slot,
		Level:              it.Level,
		IsEquipped:         it.IsEquipped,
		InventoryID:        it.InventoryID,
		CreationTime:       it.CreationTime,
		ExpiryTime:         it.ExpiryTime,
		IsLocked:           it.IsLocked,
		RemainingTrades:    it.RemainingTrades,
		TransferFlag:       int(f.TransferFlag),
		GearScore:          it.GearScore,
		EnchantLevel:       it.EnchantLevel,
		EnchantExp:         it.EnchantExp,
		LimitBreakLevel:    it.LimitBreakLevel,
		OwnerCharacterID:   it.OwnerCharacterID,
		OwnerCharacterName: it.OwnerCharacterName,
		Stats:              it.Stats.Clone(),
		PetInfo:            it.PetInfo.Clone(),
		UGC:                it.UGC,
	}
}
