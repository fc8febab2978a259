package item

import (
	"encoding/json"
	"testing"

	"github.com/kasuganosora/mmoitems/game/player"
	"github.com/kasuganosora/mmoitems/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_SequenceAAB(t *testing.T) {
	f, _ := newTestFactory(t)
	it := mustCreate(t, f, daggerID, 1)
	a := onlinePlayer(1)
	b := onlinePlayer(2)
	require.Equal(t, 3, it.RemainingTrades)

	assert.True(t, it.Bind(a))
	assert.Equal(t, a.CharacterID, it.OwnerCharacterID)
	assert.Equal(t, a.AccountID, it.OwnerAccountID)
	assert.Equal(t, a.Name, it.OwnerCharacterName)
	assert.Zero(t, it.RemainingTrades)

	pkts := drainPackets(t, a)
	require.Len(t, pkts, 1)
	assert.Equal(t, player.PacketItemUpdate, pkts[0].Type)
	var v View
	require.NoError(t, json.Unmarshal(pkts[0].Payload, &v))
	assert.Equal(t, it.UID, v.UID)
	assert.Equal(t, a.CharacterID, v.OwnerCharacterID)

	// Rebinding to the owner is a no-op success.
	assert.True(t, it.Bind(a))
	assert.Empty(t, drainPackets(t, a))

	// Another character cannot take the binding.
	assert.False(t, it.Bind(b))
	assert.Equal(t, a.CharacterID, it.OwnerCharacterID)
	assert.Empty(t, drainPackets(t, b))
}

func TestBind_OfflinePlayer(t *testing.T) {
	f, _ := newTestFactory(t)
	it := mustCreate(t, f, daggerID, 1)
	p := onlinePlayer(3)
	p.Session = nil

	assert.True(t, it.Bind(p))
	assert.True(t, it.IsBound())
	assert.True(t, it.IsSelfBound(3))
	assert.False(t, it.IsSelfBound(4))
}

func TestDecreaseTradeCount(t *testing.T) {
	f, _ := newTestFactory(t)

	limited := mustCreate(t, f, daggerID, 1)
	require.True(t, limited.TransferFlag().Has(resource.TransferFlagLimitedTradeCount))
	limited.DecreaseTradeCount()
	assert.Equal(t, 2, limited.RemainingTrades)

	// Not clamped at zero.
	limited.RemainingTrades = 0
	limited.DecreaseTradeCount()
	assert.Equal(t, -1, limited.RemainingTrades)

	unlimited := mustCreate(t, f, potionID, 1)
	require.False(t, unlimited.TransferFlag().Has(resource.TransferFlagLimitedTradeCount))
	unlimited.RemainingTrades = 4
	unlimited.DecreaseTradeCount()
	assert.Equal(t, 4, unlimited.RemainingTrades)
}
