package player

import (
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SessionManager is the registry of online characters keyed by character id.
type SessionManager struct {
	mu      sync.RWMutex
	players map[int64]*Player
	logger  *zap.Logger
}

// NewSessionManager creates an empty SessionManager.
func NewSessionManager(logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		players: make(map[int64]*Player),
		logger:  logger,
	}
}

// Register adds p. A previous entry for the same character has its session
// closed first (duplicate login / reconnect).
func (sm *SessionManager) Register(p *Player) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if old, ok := sm.players[p.CharacterID]; ok && old.Session != nil && old.Session != p.Session {
		old.Session.Close()
		sm.logger.Info("duplicate session displaced", zap.Int64("char_id", p.CharacterID))
	}
	sm.players[p.CharacterID] = p
	sm.logger.Info("player registered",
		zap.Int64("char_id", p.CharacterID),
		zap.Int64("account_id", p.AccountID))
}

// Unregister removes the character and closes its session.
func (sm *SessionManager) Unregister(charID int64) {
	sm.mu.Lock()
	p, ok := sm.players[charID]
	delete(sm.players, charID)
	sm.mu.Unlock()

	if ok && p.Session != nil {
		p.Session.Close()
	}
	sm.logger.Info("player unregistered", zap.Int64("char_id", charID))
}

// UnregisterSession removes the character owning sess, unless a newer
// session has replaced it. sess is closed either way.
func (sm *SessionManager) UnregisterSession(sess *PlayerSession) {
	sm.mu.Lock()
	p, ok := sm.players[sess.CharID]
	current := ok && p.Session == sess
	if current {
		delete(sm.players, sess.CharID)
	}
	sm.mu.Unlock()

	sess.Close()
	if current {
		sm.logger.Info("player unregistered", zap.Int64("char_id", sess.CharID))
	}
}

// Get returns the online player for charID, or nil.
func (sm *SessionManager) Get(charID int64) *Player {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.players[charID]
}

// GetByName finds an online character by name (case-insensitive).
func (sm *SessionManager) GetByName(name string) *Player {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, p := range sm.players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// IsOnline reports whether a character is registered.
func (sm *SessionManager) IsOnline(charID int64) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.players[charID]
	return ok
}

// Count returns the number of registered characters.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.players)
}

func (sm *SessionManager) snapshot() []*Player {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]*Player, 0, len(sm.players))
	for _, p := range sm.players {
		out = append(out, p)
	}
	return out
}

// BroadcastNotice sends notice to every online character.
func (sm *SessionManager) BroadcastNotice(notice SystemNotice, flags NoticeType) {
	for _, p := range sm.snapshot() {
		p.Notice(notice, flags)
	}
}

// BroadcastToAll encodes pkt once and queues it on every session.
func (sm *SessionManager) BroadcastToAll(pkt *Packet) {
	data, err := json.Marshal(pkt)
	if err != nil {
		sm.logger.Error("failed to marshal broadcast packet", zap.Error(err))
		return
	}
	for _, p := range sm.snapshot() {
		if p.Session != nil {
			p.Session.SendRaw(data)
		}
	}
}

// CloseAllSessions closes every session and empties the registry.
func (sm *SessionManager) CloseAllSessions() {
	sm.mu.Lock()
	players := sm.players
	sm.players = make(map[int64]*Player)
	sm.mu.Unlock()

	sm.logger.Info("closing all sessions", zap.Int("count", len(players)))
	for _, p := range players {
		if p.Session != nil {
			p.Session.Close()
		}
	}
}
