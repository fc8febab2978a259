package item

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kasuganosora/mmoitems/game/player"
	"github.com/kasuganosora/mmoitems/resource"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	daggerID    = 13100001
	potionID    = 20000001
	hatID       = 11300001
	ugcShirtID  = 11400001
	vipPantsID  = 11500001
	glovesID    = 11600001
	noEnchantID = 11700001
	petID       = 60000001
	mesoID      = 90000001
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func template(id int, name string, rarity int, slot resource.ItemSlot, factor int) *resource.ItemMetadata {
	md := &resource.ItemMetadata{ID: id, Name: name, Rarity: rarity, Slot: slot}
	md.Property.StackLimit = 1
	md.Property.GearScoreFactor = factor
	md.Limit.Gender = resource.GenderNeutral
	return md
}

func testCatalog(t *testing.T) *resource.ItemCatalog {
	t.Helper()

	dagger := template(daggerID, "Training Dagger", 4, resource.SlotRH, 10)
	dagger.Tab = resource.TabGear
	dagger.Property.TradeableCount = 3
	dagger.Property.RepackageCount = 2
	dagger.Limit.LevelLimitMin = 10
	dagger.Limit.JobRequirements = []resource.Job{resource.JobThief, resource.JobAssassin}
	dagger.ExtractionCount = 5
	dagger.Color = resource.EquipColor{Primary: 0xff0000, Index: 2}
	dagger.Stats = []resource.ItemStatOption{{Attribute: 1, Flat: 100, Rate: 0.1}}

	potion := template(potionID, "Red Potion", 1, resource.SlotNone, 0)
	potion.Tab = resource.TabConsumable
	potion.Property.StackLimit = 100

	hat := template(hatID, "Festival Hat", 2, resource.SlotCP, 2)
	hat.Tab = resource.TabOutfit
	hat.Gem = resource.GemTransparency
	hat.ExpirationDuration = 3600
	hat.Limit.Gender = resource.GenderFemale
	hat.Limit.TransferType = resource.TransferBindOnEquip

	shirt := template(ugcShirtID, "Custom Shirt", 1, resource.SlotCL, 1)
	shirt.IsUGC = true

	pants := template(vipPantsID, "Premium Pants", 3, resource.SlotPA, 3)
	pants.Limit.VipOnly = true

	gloves := template(glovesID, "Novice Gloves", 1, resource.SlotGL, 1)
	gloves.Limit.LevelLimitMin = 1
	gloves.Limit.LevelLimitMax = 20

	shoes := template(noEnchantID, "Cursed Shoes", 2, resource.SlotSH, 1)
	shoes.Limit.DisableEnchant = true

	pet := template(petID, "Baby Slime", 2, resource.SlotNone, 0)
	pet.Tab = resource.TabPets
	pet.PetID = 7

	meso := template(mesoID, "Meso", 1, resource.SlotNone, 0)
	meso.Tab = resource.TabCurrency
	meso.Property.StackLimit = 1000000
	meso.Stats = []resource.ItemStatOption{{Attribute: 1, Flat: 5}}

	c, err := resource.NewCatalog(dagger, potion, hat, shirt, pants, gloves, shoes, pet, meso)
	require.NoError(t, err)
	return c
}

// linearScores is a deterministic formula: factor*rarity and
// 2*enchant + 5*limitBreak, each offset by 0.6 so truncation of the sum and
// of the components differ.
var linearScores = ScoreEvaluatorFunc(func(_ context.Context, in GearScoreInput) (float64, float64, error) {
	return float64(in.Factor*in.Rarity) + 0.6, float64(2*in.EnchantLevel+5*in.LimitBreakLevel) + 0.6, nil
})

// memStore is an in-memory Storage.
type memStore struct {
	mu         sync.Mutex
	nextUID    int64
	nextUGC    int64
	items      map[int64]*Item
	ugc        []*UGC
	failInsert error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[int64]*Item)}
}

func (m *memStore) InsertItem(_ context.Context, it *Item) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return 0, m.failInsert
	}
	m.nextUID++
	m.items[m.nextUID] = it
	return m.nextUID, nil
}

func (m *memStore) InsertUGC(_ context.Context, u *UGC) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUGC++
	m.ugc = append(m.ugc, u)
	return m.nextUGC, nil
}

func (m *memStore) itemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

var errStoreDown = errors.New("store down")

func newTestFactory(t *testing.T) (*Factory, *memStore) {
	t.Helper()
	store := newMemStore()
	f := NewFactory(testCatalog(t), store, linearScores)
	f.SetClock(func() time.Time { return fixedNow })
	return f, store
}

func mustCreate(t *testing.T, f *Factory, id, amount int) *Item {
	t.Helper()
	it, err := f.Create(context.Background(), id, amount, RarityAuto, true)
	require.NoError(t, err)
	return it
}

// onlinePlayer returns a level 30 female thief with a session.
func onlinePlayer(charID int64) *player.Player {
	return &player.Player{
		AccountID:   charID * 100,
		CharacterID: charID,
		Name:        "char" + string(rune('A'+charID%26)),
		Level:       30,
		Gender:      resource.GenderFemale,
		Job:         resource.JobThief,
		Session:     player.NewPlayerSession(charID*100, charID, zap.NewNop()),
	}
}

// drainPackets returns every packet queued on p's session.
func drainPackets(t *testing.T, p *player.Player) []player.Packet {
	t.Helper()
	var out []player.Packet
	for {
		select {
		case raw := <-p.Session.SendChan:
			var pkt player.Packet
			require.NoError(t, json.Unmarshal(raw, &pkt))
			out = append(out, pkt)
		default:
			return out
		}
	}
}

// notices returns the notice codes queued on p's session.
func notices(t *testing.T, p *player.Player) []player.SystemNotice {
	t.Helper()
	var out []player.SystemNotice
	for _, pkt := range drainPackets(t, p) {
		if pkt.Type != player.PacketNotice {
			continue
		}
		var body struct {
			Notice player.SystemNotice `json:"notice"`
			Flags  player.NoticeType   `json:"flags"`
		}
		require.NoError(t, json.Unmarshal(pkt.Payload, &body))
		require.Equal(t, player.NoticeTypeChat|player.NoticeTypeFastText, body.Flags)
		out = append(out, body.Notice)
	}
	return out
}
