package player

import (
	"time"

	"github.com/kasuganosora/mmoitems/resource"
)

// Player is the read-only view of a character that item rules consult.
// Session is nil when the character is offline.
type Player struct {
	AccountID   int64
	CharacterID int64
	Name        string
	Level       int
	Gender      resource.Gender
	Job         resource.Job
	VIPUntil    time.Time

	Session *PlayerSession
}

// IsVIP reports whether the account has an active VIP subscription at now.
func (p *Player) IsVIP(now time.Time) bool {
	return !p.VIPUntil.IsZero() && now.Before(p.VIPUntil)
}

// Notice sends a system notice if the player is online.
func (p *Player) Notice(notice SystemNotice, flags NoticeType) {
	if p.Session == nil {
		return
	}
	p.Session.SendNotice(notice, flags)
}

// ItemUpdate pushes an item_update packet if the player is online.
func (p *Player) ItemUpdate(v interface{}) {
	if p.Session == nil {
		return
	}
	p.Session.SendItemUpdate(v)
}
