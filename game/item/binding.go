package item

import (
	"github.com/kasuganosora/mmoitems/game/player"
	"github.com/kasuganosora/mmoitems/resource"
)

// IsBound reports whether the item belongs to a character.
func (it *Item) IsBound() bool { return it.OwnerCharacterID != 0 }

// IsPet reports whether the template summons a pet.
func (it *Item) IsPet() bool { return it.Facts().PetID != 0 }

// IsSelfBound reports whether the item is bound to characterID.
func (it *Item) IsSelfBound(characterID int64) bool { return it.OwnerCharacterID == characterID }

// Bind binds the item to p. It returns false without changes if the item is
// bound to someone else, and true without changes if already bound to p.
// A fresh bind clears the remaining trade count and pushes an item update
// to p's session when online.
func (it *Item) Bind(p *player.Player) bool {
	if it.IsBound() && !it.IsSelfBound(p.CharacterID) {
		return false
	}
	if it.IsSelfBound(p.CharacterID) {
		return true
	}
	it.OwnerAccountID = p.AccountID
	it.OwnerCharacterID = p.CharacterID
	it.OwnerCharacterName = p.Name
	it.RemainingTrades = 0

	p.ItemUpdate(NewView(it))
	return true
}

// DecreaseTradeCount consumes one trade for items with a limited trade
// count. Items without the flag are never touched. The counter is not
// clamped and may go negative.
func (it *Item) DecreaseTradeCount() {
	if !it.TransferFlag().Has(resource.TransferFlagLimitedTradeCount) {
		return
	}
	it.RemainingTrades--
}
