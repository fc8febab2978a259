package item

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kasuganosora/mmoitems/model"
	"github.com/kasuganosora/mmoitems/resource"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrItemNotFound is returned when no record exists for a uid.
var ErrItemNotFound = errors.New("item: not found")

// Store persists items and UGC records through gorm.
type Store struct {
	db      *gorm.DB
	catalog Catalog
}

// NewStore creates a Store. catalog is used to re-derive template facts
// when items are loaded.
func NewStore(db *gorm.DB, catalog Catalog) *Store {
	return &Store{db: db, catalog: catalog}
}

// InsertItem stores it as a new row and returns the assigned uid.
func (s *Store) InsertItem(ctx context.Context, it *Item) (int64, error) {
	rec, err := toRecord(it)
	if err != nil {
		return 0, err
	}
	rec.UID = 0
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.UID, nil
}

// InsertUGC stores u and returns its id.
func (s *Store) InsertUGC(ctx context.Context, u *UGC) (int64, error) {
	rec := &model.UGCRecord{
		GUID:          u.GUID,
		Name:          u.Name,
		URL:           u.URL,
		CharacterID:   u.CharacterID,
		CharacterName: u.CharacterName,
		AccountID:     u.AccountID,
		CreationTime:  u.CreationTime,
		SalePrice:     u.SalePrice,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// UpdateItem writes every column of it. The item must have a uid.
func (s *Store) UpdateItem(ctx context.Context, it *Item) error {
	if it.UID == 0 {
		return fmt.Errorf("item: update of unsaved item %d", it.ID)
	}
	rec, err := toRecord(it)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.ItemRecord{UID: it.UID}).Select("*").Omit("created_at").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// LoadItem reconstructs an item from storage and refreshes its template facts.
func (s *Store) LoadItem(ctx context.Context, uid int64) (*Item, error) {
	var rec model.ItemRecord
	if err := s.db.WithContext(ctx).First(&rec, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	it, err := fromRecord(&rec)
	if err != nil {
		return nil, err
	}
	if rec.UGCID != nil {
		var u model.UGCRecord
		if err := s.db.WithContext(ctx).First(&u, *rec.UGCID).Error; err == nil {
			it.UGC = &UGC{
				UID:           u.ID,
				GUID:          u.GUID,
				Name:          u.Name,
				URL:           u.URL,
				CharacterID:   u.CharacterID,
				CharacterName: u.CharacterName,
				AccountID:     u.AccountID,
				CreationTime:  u.CreationTime,
				SalePrice:     u.SalePrice,
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	ApplyTemplate(s.catalog, it)
	return it, nil
}

// DeleteItem removes the row for uid.
func (s *Store) DeleteItem(ctx context.Context, uid int64) error {
	res := s.db.WithContext(ctx).Delete(&model.ItemRecord{}, uid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ListByOwner returns the uids of every item bound to characterID.
func (s *Store) ListByOwner(ctx context.Context, characterID int64) ([]int64, error) {
	var uids []int64
	err := s.db.WithContext(ctx).Model(&model.ItemRecord{}).
		Where("owner_character_id = ?", characterID).
		Order("uid").
		Pluck("uid", &uids).Error
	return uids, err
}

// ---- mapping ----

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func unmarshalJSON[T any](data datatypes.JSON) (*T, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func toRecord(it *Item) (*model.ItemRecord, error) {
	rec := &model.ItemRecord{
		UID:                     it.UID,
		ItemID:                  it.ID,
		Rarity:                  it.Rarity,
		Level:                   it.Level,
		Amount:                  it.Amount,
		Slot:                    it.Slot,
		IsEquipped:              it.IsEquipped,
		InventoryID:             it.InventoryID,
		BankInventoryID:         it.BankInventoryID,
		HomeID:                  it.HomeID,
		MailID:                  it.MailID,
		CreationTime:            it.CreationTime,
		ExpiryTime:              it.ExpiryTime,
		TimesAttributesChanged:  it.TimesAttributesChanged,
		IsLocked:                it.IsLocked,
		UnlockTime:              it.UnlockTime,
		RemainingGlamorForges:   it.RemainingGlamorForges,
		RemainingRepackageCount: it.RemainingRepackageCount,
		RemainingTrades:         it.RemainingTrades,
		GachaDismantleID:        it.GachaDismantleID,
		Charges:                 it.Charges,
		PlayCount:               it.PlayCount,
		GearScore:               it.GearScore,
		EnchantLevel:            it.EnchantLevel,
		EnchantExp:              it.EnchantExp,
		LimitBreakLevel:         it.LimitBreakLevel,
		OwnerAccountID:          it.OwnerAccountID,
		OwnerCharacterID:        it.OwnerCharacterID,
		OwnerCharacterName:      it.OwnerCharacterName,
		PairedCharacterID:       it.PairedCharacterID,
		PairedCharacterName:     it.PairedCharacterName,
		PetSkinBadgeID:          it.PetSkinBadgeID,
		FaceDecoration:          it.FaceDecoration,
	}
	if it.UGC != nil && it.UGC.UID != 0 {
		id := it.UGC.UID
		rec.UGCID = &id
	}
	var err error
	cols := []struct {
		dst *datatypes.JSON
		v   interface{}
	}{
		{&rec.TransparencyBadge, it.TransparencyBadge},
		{&rec.Color, it.Color},
		{&rec.HairData, it.HairData},
		{&rec.HatData, it.HatData},
		{&rec.Score, it.Score},
		{&rec.Stats, it.Stats},
		{&rec.PetInfo, it.PetInfo},
	}
	for _, c := range cols {
		if *c.dst, err = marshalJSON(c.v); err != nil {
			return nil, fmt.Errorf("item: encode record %d: %w", it.ID, err)
		}
	}
	return rec, nil
}

func fromRecord(rec *model.ItemRecord) (*Item, error) {
	it := &Item{
		UID:                     rec.UID,
		ID:                      rec.ItemID,
		Rarity:                  rec.Rarity,
		Level:                   rec.Level,
		Amount:                  rec.Amount,
		Slot:                    rec.Slot,
		IsEquipped:              rec.IsEquipped,
		InventoryID:             rec.InventoryID,
		BankInventoryID:         rec.BankInventoryID,
		HomeID:                  rec.HomeID,
		MailID:                  rec.MailID,
		CreationTime:            rec.CreationTime,
		ExpiryTime:              rec.ExpiryTime,
		TimesAttributesChanged:  rec.TimesAttributesChanged,
		IsLocked:                rec.IsLocked,
		UnlockTime:              rec.UnlockTime,
		RemainingGlamorForges:   rec.RemainingGlamorForges,
		RemainingRepackageCount: rec.RemainingRepackageCount,
		RemainingTrades:         rec.RemainingTrades,
		GachaDismantleID:        rec.GachaDismantleID,
		Charges:                 rec.Charges,
		PlayCount:               rec.PlayCount,
		GearScore:               rec.GearScore,
		EnchantLevel:            rec.EnchantLevel,
		EnchantExp:              rec.EnchantExp,
		LimitBreakLevel:         rec.LimitBreakLevel,
		OwnerAccountID:          rec.OwnerAccountID,
		OwnerCharacterID:        rec.OwnerCharacterID,
		OwnerCharacterName:      rec.OwnerCharacterName,
		PairedCharacterID:       rec.PairedCharacterID,
		PairedCharacterName:     rec.PairedCharacterName,
		PetSkinBadgeID:          rec.PetSkinBadgeID,
		FaceDecoration:          rec.FaceDecoration,
	}
	if err := decodeColumns(it, rec); err != nil {
		return nil, fmt.Errorf("item: decode record %d: %w", rec.UID, err)
	}
	return it, nil
}

func decodeColumns(it *Item, rec *model.ItemRecord) error {
	badge, err := unmarshalJSON[[]bool](rec.TransparencyBadge)
	if err != nil {
		return err
	}
	if badge != nil {
		it.TransparencyBadge = *badge
	}
	color, err := unmarshalJSON[resource.EquipColor](rec.Color)
	if err != nil {
		return err
	}
	if color != nil {
		it.Color = *color
	}
	if it.HairData, err = unmarshalJSON[HairData](rec.HairData); err != nil {
		return err
	}
	if it.HatData, err = unmarshalJSON[HatData](rec.HatData); err != nil {
		return err
	}
	if it.Score, err = unmarshalJSON[MusicScore](rec.Score); err != nil {
		return err
	}
	if it.Stats, err = unmarshalJSON[ItemStats](rec.Stats); err != nil {
		return err
	}
	if it.PetInfo, err = unmarshalJSON[PetInfo](rec.PetInfo); err != nil {
		return err
	}
	return nil
}
