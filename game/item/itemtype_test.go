package item

import (
	"context"
	"testing"

	"github.com/kasuganosora/mmoitems/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	cases := map[int]ItemType{
		11200001: ItemTypeEarring,
		11300001: ItemTypeHat,
		12200005: ItemTypeOverall,
		13100001: ItemTypeDagger,
		13499999: ItemTypeThrowingStar,
		14100001: ItemTypeShield,
		15600001: ItemTypeOrb,
		20900001: ItemTypeMedal,
		41000001: ItemTypeLapenshard,
		43000001: ItemTypeLapenshard,
		50300001: ItemTypeFurnishing,
		60000001: ItemTypePet,
		90000001: ItemTypeCurrency,
		20000001: ItemTypeNone,
		1:        ItemTypeNone,
		0:        ItemTypeNone,
	}
	for id, want := range cases {
		assert.Equal(t, want, TypeOf(id), "id %d", id)
	}
}

func TestItemType_String(t *testing.T) {
	assert.Equal(t, "Dagger", ItemTypeDagger.String())
	assert.Equal(t, "Currency", ItemTypeCurrency.String())
	assert.Equal(t, "None", ItemTypeNone.String())
}

func TestSlotClassification(t *testing.T) {
	assert.True(t, IsWeapon(resource.SlotRH))
	assert.True(t, IsWeapon(resource.SlotOH))
	assert.False(t, IsWeapon(resource.SlotCL))

	assert.True(t, IsAccessory(resource.SlotRI))
	assert.False(t, IsAccessory(resource.SlotRH))

	assert.True(t, IsArmor(resource.SlotCL))
	assert.True(t, IsArmor(resource.SlotMT))
	assert.False(t, IsArmor(resource.SlotEA))
	assert.False(t, IsArmor(resource.SlotNone))
}

func TestGetGearScore_TruncatesSum(t *testing.T) {
	it := &Item{ID: daggerID, Rarity: 4}
	ApplyTemplate(testCatalog(t), it)

	gs, err := GetGearScore(context.Background(), linearScores, it)
	require.NoError(t, err)
	assert.Equal(t, 41, gs)
	assert.Zero(t, it.GearScore, "GetGearScore does not store the result")
}

func TestGetGearScore_PassesInputs(t *testing.T) {
	it := &Item{ID: daggerID, Rarity: 4, EnchantLevel: 7, LimitBreakLevel: 2}
	ApplyTemplate(testCatalog(t), it)

	var got GearScoreInput
	ev := ScoreEvaluatorFunc(func(_ context.Context, in GearScoreInput) (float64, float64, error) {
		got = in
		return 1.5, 2.4, nil
	})
	gs, err := GetGearScore(context.Background(), ev, it)
	require.NoError(t, err)
	assert.Equal(t, 3, gs)
	assert.Equal(t, GearScoreInput{Factor: 10, Rarity: 4, Type: ItemTypeDagger, EnchantLevel: 7, LimitBreakLevel: 2}, got)
}

func TestRefreshGearScore_RecomputesStats(t *testing.T) {
	f, _ := newTestFactory(t)
	it := mustCreate(t, f, daggerID, 1)

	it.EnchantLevel = 2
	it.LimitBreakLevel = 1
	require.NoError(t, RefreshGearScore(context.Background(), linearScores, it))

	// 40.6 + (4 + 5 + 0.6)
	assert.Equal(t, 50, it.GearScore)
	require.Len(t, it.Stats.Enchants, 1)
	assert.Equal(t, 15, it.Stats.Enchants[0].Flat)
	require.Len(t, it.Stats.LimitBreak, 1)
	assert.Equal(t, 15, it.Stats.LimitBreak[0].Flat)
	assert.Equal(t, 180, it.Stats.Total(1).Flat)
}
