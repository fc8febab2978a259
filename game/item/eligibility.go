package item

import (
	"slices"
	"time"

	"github.com/kasuganosora/mmoitems/game/player"
	"github.com/kasuganosora/mmoitems/resource"
)

const noticeFlags = player.NoticeTypeChat | player.NoticeTypeFastText

type usage int

const (
	usageEquip usage = iota
	usageUse
)

// restriction is one link of the eligibility chain. notices holds the
// notice sent on failure per usage; zero means fail silently.
type restriction struct {
	name    string
	allowed func(it *Item, p *player.Player, now time.Time) bool
	notices [2]player.SystemNotice
}

// restrictions are evaluated in order; the first failure wins.
var restrictions = []restriction{
	{
		// VIP failures are silent in both paths.
		name: "vip",
		allowed: func(it *Item, p *player.Player, now time.Time) bool {
			return !it.Facts().VipOnly || p.IsVIP(now)
		},
	},
	{
		name: "gender",
		allowed: func(it *Item, p *player.Player, _ time.Time) bool {
			g := it.Facts().Gender
			return g == resource.GenderNeutral || g == p.Gender
		},
		notices: [2]player.SystemNotice{player.NoticeErrorGender, player.NoticeErrorGender},
	},
	{
		name: "binding",
		allowed: func(it *Item, p *player.Player, _ time.Time) bool {
			return !it.IsBound() || it.IsSelfBound(p.CharacterID)
		},
		notices: [2]player.SystemNotice{player.NoticeItemErrPutonInvalidBinding, player.NoticeItemErrUseInvalidBinding},
	},
	{
		name: "job",
		allowed: func(it *Item, p *player.Player, _ time.Time) bool {
			jobs := it.Facts().RequiredJobs
			return len(jobs) == 0 || slices.Contains(jobs, resource.JobNone) || slices.Contains(jobs, p.Job)
		},
		notices: [2]player.SystemNotice{player.NoticeItemErrPutonJob, player.NoticeItemErrDisableJob},
	},
	{
		name: "expiry",
		allowed: func(it *Item, _ *player.Player, now time.Time) bool {
			return !it.IsExpired(now)
		},
		notices: [2]player.SystemNotice{player.NoticeItemErrPutonExpired, player.NoticeItemErrPutonExpired},
	},
	{
		name: "min_level",
		allowed: func(it *Item, p *player.Player, _ time.Time) bool {
			return it.Level <= p.Level
		},
		notices: [2]player.SystemNotice{player.NoticeItemErrPutonLowLevel, player.NoticeItemErrUseLowLevel},
	},
	{
		name: "max_level",
		allowed: func(it *Item, p *player.Player, _ time.Time) bool {
			maxLevel := it.Facts().LevelLimitMax
			return maxLevel == 0 || maxLevel >= p.Level
		},
	},
}

// check runs the chain and returns the name of the failing restriction,
// or "" when every restriction passes.
func check(it *Item, p *player.Player, now time.Time, u usage) string {
	for _, r := range restrictions {
		if r.allowed(it, p, now) {
			continue
		}
		if n := r.notices[u]; n != 0 {
			p.Notice(n, noticeFlags)
		}
		return r.name
	}
	return ""
}

// CanEquip reports whether p may put it on. On failure p receives the
// matching notice if online. Neither it nor p is modified.
func (it *Item) CanEquip(p *player.Player, now time.Time) bool {
	return check(it, p, now, usageEquip) == ""
}

// CanUse reports whether p may use it. On failure p receives the matching
// notice if online. Neither it nor p is modified.
func (it *Item) CanUse(p *player.Player, now time.Time) bool {
	return check(it, p, now, usageUse) == ""
}

// IsExpired reports whether the item has a nonzero expiry in the past.
func (it *Item) IsExpired(now time.Time) bool {
	return it.ExpiryTime != 0 && now.Unix() > it.ExpiryTime
}
