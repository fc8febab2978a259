package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/mmoitems/resource"
)

// ErrInvalidAmount is returned for a negative stack amount.
var ErrInvalidAmount = errors.New("item: invalid amount")

// Storage is the persistence collaborator. Calls are synchronous and are
// not retried here; failures propagate to the caller.
type Storage interface {
	InsertItem(ctx context.Context, it *Item) (int64, error)
	InsertUGC(ctx context.Context, u *UGC) (int64, error)
}

// Factory creates, copies and splits item instances.
type Factory struct {
	catalog Catalog
	store   Storage
	scores  ScoreEvaluator
	now     func() time.Time
}

// NewFactory creates a Factory.
func NewFactory(c Catalog, store Storage, scores ScoreEvaluator) *Factory {
	return &Factory{catalog: c, store: store, scores: scores, now: time.Now}
}

// SetClock overrides the wall clock used for creation and expiry stamps.
func (f *Factory) SetClock(now func() time.Time) { f.now = now }

// Catalog returns the catalog the factory resolves templates against.
func (f *Factory) Catalog() Catalog { return f.catalog }

// Create builds a new instance of template id. amount 0 means 1; rarity
// RarityAuto takes the template default. When persist is false the item
// keeps UID 0 and the caller decides whether to store it later.
func (f *Factory) Create(ctx context.Context, id, amount, rarity int, persist bool) (*Item, error) {
	if !f.catalog.Exists(id) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTemplate, id)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if amount == 0 {
		amount = 1
	}
	if rarity == RarityAuto {
		rarity = f.catalog.GetRarity(id)
	}

	it := &Item{ID: id, Amount: amount, Rarity: rarity, Slot: SlotUnplaced}
	ApplyTemplate(f.catalog, it)

	property := f.catalog.GetPropertyMetadata(id)
	now := f.now().Unix()
	it.Level = f.catalog.GetLimitMetadata(id).LevelLimitMin
	it.CreationTime = now
	if d := f.catalog.GetExpirationDuration(id); d > 0 {
		it.ExpiryTime = now + int64(d/time.Second)
	}
	it.RemainingTrades = property.TradeableCount
	it.RemainingRepackageCount = property.RepackageCount
	it.RemainingGlamorForges = f.catalog.GetExtractionCount(id)
	it.PlayCount = f.catalog.GetMusicMetadata(id).PlayCount
	it.Color = f.catalog.GetEquipColor(id)
	it.Score = &MusicScore{}
	it.Stats = NewItemStats(f.catalog.GetStatOptions(id), rarity, it.Type(), 0, 0)
	if it.Facts().Tab == resource.TabPets {
		it.PetInfo = &PetInfo{}
	}

	gs, err := GetGearScore(ctx, f.scores, it)
	if err != nil {
		return nil, err
	}
	it.GearScore = gs

	if f.catalog.GetIsUGC(id) {
		u := &UGC{GUID: uuid.NewString(), CreationTime: now}
		uid, err := f.store.InsertUGC(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("item: insert ugc: %w", err)
		}
		u.UID = uid
		it.UGC = u
	}

	if !persist {
		return it, nil
	}
	uid, err := f.store.InsertItem(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("item: insert: %w", err)
	}
	it.UID = uid
	return it, nil
}

// Clone copies src field by field. Sharing policy:
//
//   - Stats, PetInfo, HairData, HatData, FaceDecoration, TransparencyBadge: deep copy
//   - Score: reset to an empty MusicScore
//   - UGC, Drop: shared reference
//   - UID: not copied; the clone has no identity until stored
//
// Template facts are re-resolved from the catalog afterwards.
func (f *Factory) Clone(src *Item) *Item {
	dst := &Item{
		ID:     src.ID,
		Rarity: src.Rarity,

		Level:      src.Level,
		Amount:     src.Amount,
		Slot:       src.Slot,
		IsEquipped: src.IsEquipped,

		InventoryID:     src.InventoryID,
		BankInventoryID: src.BankInventoryID,
		HomeID:          src.HomeID,
		MailID:          src.MailID,

		CreationTime: src.CreationTime,
		ExpiryTime:   src.ExpiryTime,

		TimesAttributesChanged:  src.TimesAttributesChanged,
		IsLocked:                src.IsLocked,
		UnlockTime:              src.UnlockTime,
		RemainingGlamorForges:   src.RemainingGlamorForges,
		RemainingRepackageCount: src.RemainingRepackageCount,
		RemainingTrades:         src.RemainingTrades,
		GachaDismantleID:        src.GachaDismantleID,
		Charges:                 src.Charges,
		PlayCount:               src.PlayCount,

		GearScore:       src.GearScore,
		EnchantLevel:    src.EnchantLevel,
		EnchantExp:      src.EnchantExp,
		LimitBreakLevel: src.LimitBreakLevel,

		OwnerAccountID:     src.OwnerAccountID,
		OwnerCharacterID:   src.OwnerCharacterID,
		OwnerCharacterName: src.OwnerCharacterName,

		PairedCharacterID:   src.PairedCharacterID,
		PairedCharacterName: src.PairedCharacterName,
		PetSkinBadgeID:      src.PetSkinBadgeID,
		TransparencyBadge:   cloneSlice(src.TransparencyBadge),

		Color:          src.Color,
		FaceDecoration: cloneSlice(src.FaceDecoration),
		Score:          &MusicScore{},
		Stats:          src.Stats.Clone(),
		UGC:            src.UGC,
		PetInfo:        src.PetInfo.Clone(),
		Drop:           src.Drop,
	}
	if src.HairData != nil {
		h := *src.HairData
		dst.HairData = &h
	}
	if src.HatData != nil {
		h := *src.HatData
		dst.HatData = &h
	}
	ApplyTemplate(f.catalog, dst)
	return dst
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// Split moves n units of src into a new, stored, unplaced instance.
// ok is false, with src untouched, when src holds fewer than n units or n is
// not positive. If storing the new instance fails src's amount is restored.
func (f *Factory) Split(ctx context.Context, src *Item, n int) (split *Item, ok bool, err error) {
	if n <= 0 || n > src.Amount {
		return nil, false, nil
	}
	src.Amount -= n

	split = f.Clone(src)
	split.Amount = n
	split.Slot = SlotUnplaced
	split.IsEquipped = false
	split.InventoryID = 0
	split.BankInventoryID = 0
	split.HomeID = 0
	split.MailID = 0

	uid, err := f.store.InsertItem(ctx, split)
	if err != nil {
		src.Amount += n
		return nil, false, fmt.Errorf("item: insert split: %w", err)
	}
	split.UID = uid
	return split, true, nil
}
