package player

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const sendChanBuf = 256

// Packet is the envelope every server push uses. Seq is stamped per session.
type Packet struct {
	Seq     uint64          `json:"seq"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlayerSession buffers outbound packets for one connected character.
// A transport drains SendChan; nothing here blocks the game logic.
type PlayerSession struct {
	AccountID int64
	CharID    int64

	SendChan chan []byte

	seq       atomic.Uint64
	dropped   atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

func NewPlayerSession(accountID, charID int64, logger *zap.Logger) *PlayerSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlayerSession{
		AccountID: accountID,
		CharID:    charID,
		SendChan:  make(chan []byte, sendChanBuf),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// Send stamps the next sequence number on pkt and queues it.
// It reports false when the packet was dropped.
func (s *PlayerSession) Send(pkt *Packet) bool {
	if s.IsClosed() {
		return false
	}
	pkt.Seq = s.seq.Add(1)
	data, err := json.Marshal(pkt)
	if err != nil {
		s.logger.Warn("packet encode failed", zap.String("type", pkt.Type), zap.Error(err))
		return false
	}
	return s.SendRaw(data)
}

// SendRaw queues already encoded bytes. Full or closed sessions drop them.
func (s *PlayerSession) SendRaw(data []byte) bool {
	if s.IsClosed() {
		return false
	}
	select {
	case s.SendChan <- data:
		return true
	default:
		if s.dropped.Add(1) == 1 {
			s.logger.Warn("send buffer full, dropping packets",
				zap.Int64("account_id", s.AccountID),
				zap.Int64("char_id", s.CharID))
		}
		return false
	}
}

// Dropped counts packets discarded because the buffer was full.
func (s *PlayerSession) Dropped() int64 { return s.dropped.Load() }

// Done is closed when the session closes.
func (s *PlayerSession) Done() <-chan struct{} { return s.done }

func (s *PlayerSession) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *PlayerSession) IsClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
