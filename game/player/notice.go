package player

import "encoding/json"

// SystemNotice identifies a localized system message on the client.
type SystemNotice int

const (
	NoticeErrorGender                SystemNotice = 1001
	NoticeItemErrPutonInvalidBinding SystemNotice = 2101
	NoticeItemErrUseInvalidBinding   SystemNotice = 2102
	NoticeItemErrPutonJob            SystemNotice = 2103
	NoticeItemErrDisableJob          SystemNotice = 2104
	NoticeItemErrPutonExpired        SystemNotice = 2105
	NoticeItemErrPutonLowLevel       SystemNotice = 2106
	NoticeItemErrUseLowLevel         SystemNotice = 2107
)

// NoticeType is a bitset of client display channels.
type NoticeType int

const (
	NoticeTypeChat     NoticeType = 1 << 0
	NoticeTypeMessage  NoticeType = 1 << 1
	NoticeTypeAlert    NoticeType = 1 << 2
	NoticeTypeFastText NoticeType = 1 << 3
	NoticeTypeMint     NoticeType = 1 << 4
)

const (
	PacketNotice     = "notice"
	PacketItemUpdate = "item_update"
)

type noticePayload struct {
	Notice SystemNotice `json:"notice"`
	Flags  NoticeType   `json:"flags"`
}

// SendNotice queues a system notice packet.
func (s *PlayerSession) SendNotice(notice SystemNotice, flags NoticeType) {
	payload, _ := json.Marshal(noticePayload{Notice: notice, Flags: flags})
	s.Send(&Packet{Type: PacketNotice, Payload: payload})
}

// SendItemUpdate queues an item_update packet carrying v as payload.
func (s *PlayerSession) SendItemUpdate(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("item_update marshal failed")
		return
	}
	s.Send(&Packet{Type: PacketItemUpdate, Payload: payload})
}
