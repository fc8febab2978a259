package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kasuganosora/mmoitems/model"
	"github.com/kasuganosora/mmoitems/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { return zap.NewNop() }

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{})
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{})

	charID := int64(7)
	accountID := int64(3)
	svc.Log(AuditEntry{
		TraceID:    "trace-123",
		CharID:     &charID,
		AccountID:  &accountID,
		CharName:   "Alice",
		Action:     ActionSplit,
		ItemUID:    42,
		ItemID:     20000001,
		Amount:     5,
		Detail:     map[string]int64{"split_uid": 43},
		DurationMs: 2,
	})

	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, "Alice", logs[0].CharName)
	assert.Equal(t, ActionSplit, logs[0].Action)
	assert.Equal(t, int64(42), logs[0].ItemUID)
	assert.Equal(t, 20000001, logs[0].ItemID)
	assert.Equal(t, 5, logs[0].Amount)

	var detail map[string]int64
	require.NoError(t, json.Unmarshal(logs[0].Detail, &detail))
	assert.Equal(t, int64(43), detail["split_uid"])
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{})

	for i := 0; i < 250; i++ {
		svc.Log(AuditEntry{Action: ActionCreate, ItemUID: int64(i + 1)})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(250), count)
	assert.Zero(t, svc.Dropped())
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{})
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestLog_NilFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{})

	svc.Log(AuditEntry{Action: ActionBind})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	db.Find(&logs)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].CharID)
	assert.Nil(t, logs[0].AccountID)
	assert.Empty(t, logs[0].Detail)
}

func TestLog_DropsWhenFull(t *testing.T) {
	// No worker: the buffer only drains on read.
	svc := &Service{ch: make(chan *model.AuditLog, 2), logger: nop()}
	for i := 0; i < 5; i++ {
		svc.Log(AuditEntry{Action: "flood"})
	}
	assert.Len(t, svc.ch, 2)
	assert.Equal(t, int64(3), svc.Dropped())
}

func TestLog_UnencodableDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{})
	svc.Log(AuditEntry{Action: ActionEnchant, Detail: func() {}})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Detail)
}

func TestTickerFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{FlushInterval: 10 * time.Millisecond})
	defer svc.Stop(context.Background())

	svc.Log(AuditEntry{Action: ActionBind, ItemUID: 5})
	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AuditLog{}).Count(&count)
		return count == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop(), Options{})
	svc.Log(AuditEntry{Action: ActionCreate, ItemUID: 9})
	svc.Log(AuditEntry{Action: ActionCreate, ItemUID: 10})
	svc.Log(AuditEntry{Action: ActionEnchant, ItemUID: 9})
	svc.Log(AuditEntry{Action: ActionBind, ItemUID: 9})
	svc.Stop(context.Background())

	logs, err := svc.History(context.Background(), 9, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, []string{ActionBind, ActionEnchant, ActionCreate},
		[]string{logs[0].Action, logs[1].Action, logs[2].Action})

	logs, err = svc.History(context.Background(), 9, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionBind, logs[0].Action)

	logs, err = svc.History(context.Background(), 404, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFrom(ctx))
	assert.Empty(t, TraceIDFrom(context.Background()))
}
