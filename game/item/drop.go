package item

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/mmoitems/scheduler"
)

// Canceler stops a pending delayed action. Cancel must be idempotent and
// must not fail when the action already ran.
type Canceler interface {
	Cancel()
}

// DropInformation is the transient state of an item lying on the field.
// The fade-out task belongs to the field scheduler; the item only keeps the
// token.
type DropInformation struct {
	SourceObjectID     int
	BoundToCharacterID int64
	FadeOut            Canceler
}

// CanLoot reports whether charID may pick the drop up.
func (d *DropInformation) CanLoot(charID int64) bool {
	return d.BoundToCharacterID == 0 || d.BoundToCharacterID == charID
}

// CancelFadeOut stops the fade-out timer. Safe to call repeatedly.
func (d *DropInformation) CancelFadeOut() {
	if d == nil || d.FadeOut == nil {
		return
	}
	d.FadeOut.Cancel()
}

var dropSeq atomic.Uint64

// PlaceOnField attaches drop information to it and schedules onFade after
// lifetime on sched. The returned handle is also stored on the item.
func PlaceOnField(sched *scheduler.Scheduler, it *Item, sourceObjectID int, boundTo int64, lifetime time.Duration, onFade func()) *scheduler.Handle {
	name := fmt.Sprintf("item_fade:%d:%d:%d", sourceObjectID, it.UID, dropSeq.Add(1))
	h := sched.Schedule(name, lifetime, onFade)
	it.Drop = &DropInformation{
		SourceObjectID:     sourceObjectID,
		BoundToCharacterID: boundTo,
		FadeOut:            h,
	}
	return h
}

// PickUp cancels any pending fade-out and clears the drop state.
func PickUp(it *Item) {
	it.Drop.CancelFadeOut()
	it.Drop = nil
}
