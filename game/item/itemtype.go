package item

import "github.com/kasuganosora/mmoitems/resource"

// ItemType is the coarse item category passed to the gear score formula.
type ItemType int

const (
	ItemTypeNone ItemType = iota
	ItemTypeEarring
	ItemTypeHat
	ItemTypeClothes
	ItemTypePants
	ItemTypeGloves
	ItemTypeShoes
	ItemTypeCape
	ItemTypeNecklace
	ItemTypeRing
	ItemTypeBelt
	ItemTypeOverall
	ItemTypeBludgeon
	ItemTypeDagger
	ItemTypeLongsword
	ItemTypeScepter
	ItemTypeThrowingStar
	ItemTypeSpellbook
	ItemTypeShield
	ItemTypeGreatsword
	ItemTypeBow
	ItemTypeStaff
	ItemTypeCannon
	ItemTypeBlade
	ItemTypeKnuckle
	ItemTypeOrb
	ItemTypeMedal
	ItemTypeLapenshard
	ItemTypeFurnishing
	ItemTypePet
	ItemTypeCurrency
)

var itemTypeNames = [...]string{
	"None", "Earring", "Hat", "Clothes", "Pants", "Gloves", "Shoes", "Cape",
	"Necklace", "Ring", "Belt", "Overall", "Bludgeon", "Dagger", "Longsword",
	"Scepter", "ThrowingStar", "Spellbook", "Shield", "Greatsword", "Bow",
	"Staff", "Cannon", "Blade", "Knuckle", "Orb", "Medal", "Lapenshard",
	"Furnishing", "Pet", "Currency",
}

func (t ItemType) String() string {
	if t < 0 || int(t) >= len(itemTypeNames) {
		return "None"
	}
	return itemTypeNames[t]
}

// typeRanges maps templateID/100000 to a category.
var typeRanges = map[int]ItemType{
	112: ItemTypeEarring,
	113: ItemTypeHat,
	114: ItemTypeClothes,
	115: ItemTypePants,
	116: ItemTypeGloves,
	117: ItemTypeShoes,
	118: ItemTypeCape,
	119: ItemTypeNecklace,
	120: ItemTypeRing,
	121: ItemTypeBelt,
	122: ItemTypeOverall,
	130: ItemTypeBludgeon,
	131: ItemTypeDagger,
	132: ItemTypeLongsword,
	133: ItemTypeScepter,
	134: ItemTypeThrowingStar,
	140: ItemTypeSpellbook,
	141: ItemTypeShield,
	150: ItemTypeGreatsword,
	151: ItemTypeBow,
	152: ItemTypeStaff,
	153: ItemTypeCannon,
	154: ItemTypeBlade,
	155: ItemTypeKnuckle,
	156: ItemTypeOrb,
	209: ItemTypeMedal,
	410: ItemTypeLapenshard,
	420: ItemTypeLapenshard,
	430: ItemTypeLapenshard,
	501: ItemTypeFurnishing,
	502: ItemTypeFurnishing,
	503: ItemTypeFurnishing,
	504: ItemTypeFurnishing,
	505: ItemTypeFurnishing,
	600: ItemTypePet,
	900: ItemTypeCurrency,
}

// TypeOf classifies a template id by its numeric range.
func TypeOf(templateID int) ItemType {
	if t, ok := typeRanges[templateID/100000]; ok {
		return t
	}
	return ItemTypeNone
}

// IsWeapon reports whether slot holds a weapon.
func IsWeapon(slot resource.ItemSlot) bool {
	switch slot {
	case resource.SlotRH, resource.SlotLH, resource.SlotOH:
		return true
	}
	return false
}

// IsAccessory reports whether slot holds an accessory.
func IsAccessory(slot resource.ItemSlot) bool {
	switch slot {
	case resource.SlotFH, resource.SlotEA, resource.SlotPD, resource.SlotRI, resource.SlotBE:
		return true
	}
	return false
}

// IsArmor reports whether slot holds armor.
func IsArmor(slot resource.ItemSlot) bool {
	switch slot {
	case resource.SlotCP, resource.SlotCL, resource.SlotPA, resource.SlotGL, resource.SlotSH, resource.SlotMT:
		return true
	}
	return false
}
