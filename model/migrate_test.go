package model_test

import (
	"testing"
	"time"

	"github.com/kasuganosora/mmoitems/model"
	"github.com/kasuganosora/mmoitems/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	ugc := &model.UGCRecord{GUID: "6f1c2b7e-1111-4c3a-9a8b-000000000001", Name: "banner", CharacterID: 9}
	require.NoError(t, db.Create(ugc).Error)
	assert.Greater(t, ugc.ID, int64(0))

	rec := &model.ItemRecord{
		ItemID:   11300001,
		Rarity:   4,
		Amount:   1,
		Slot:     -1,
		Stats:    datatypes.JSON(`{"constants":[]}`),
		UGCID:    &ugc.ID,
		PetInfo:  datatypes.JSON(`null`),
		Color:    datatypes.JSON(`{}`),
		HairData: datatypes.JSON(`null`),
	}
	require.NoError(t, db.Create(rec).Error)
	assert.Greater(t, rec.UID, int64(0))

	var found model.ItemRecord
	require.NoError(t, db.First(&found, rec.UID).Error)
	assert.Equal(t, 11300001, found.ItemID)
	assert.Equal(t, int16(-1), found.Slot)
	require.NotNil(t, found.UGCID)
	assert.Equal(t, ugc.ID, *found.UGCID)

	al := &model.AuditLog{TraceID: "trace-001", Action: "item_create", ItemUID: rec.UID, CreatedAt: time.Now()}
	require.NoError(t, db.Create(al).Error)
}

func TestAutoMigrate_UGCGUIDUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Create(&model.UGCRecord{GUID: "dup"}).Error)
	assert.Error(t, db.Create(&model.UGCRecord{GUID: "dup"}).Error)
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assert.NoError(t, model.AutoMigrate(db))
}
