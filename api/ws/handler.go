package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kasuganosora/mmoitems/config"
	"github.com/kasuganosora/mmoitems/game/player"
	"github.com/kasuganosora/mmoitems/resource"
	"go.uber.org/zap"
)

const (
	writeDeadline = 10 * time.Second
	readDeadline  = 60 * time.Second
	pingInterval  = 30 * time.Second
)

// Handler is the Gin handler for GET /ws. Each connection registers one
// character with the SessionManager and relays its pushes to the client.
type Handler struct {
	sm       *player.SessionManager
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket Handler.
// sec.AllowedOrigins controls which origins are accepted; an empty slice
// permits all of them.
func NewHandler(sm *player.SessionManager, sec config.SecurityConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := sec.AllowedOrigins
	return &Handler{
		sm:     sm,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range allowed {
					if o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// ServeWS handles GET /ws?character_id=&account_id=&name=&level=&job=&gender=.
func (h *Handler) ServeWS(c *gin.Context) {
	p, ok := playerFromQuery(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", zap.Error(err))
		return
	}

	sess := player.NewPlayerSession(p.AccountID, p.CharacterID, h.logger)
	p.Session = sess
	h.sm.Register(p)

	go h.writePump(conn, sess)
	h.readPump(conn, sess)
}

func playerFromQuery(c *gin.Context) (*player.Player, bool) {
	charID, err := strconv.ParseInt(c.Query("character_id"), 10, 64)
	if err != nil || charID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character_id"})
		return nil, false
	}
	p := &player.Player{
		CharacterID: charID,
		Name:        c.Query("name"),
	}
	ints := []struct {
		key string
		set func(int64)
	}{
		{"account_id", func(v int64) { p.AccountID = v }},
		{"level", func(v int64) { p.Level = int(v) }},
		{"job", func(v int64) { p.Job = resource.Job(v) }},
		{"gender", func(v int64) { p.Gender = resource.Gender(v) }},
	}
	for _, f := range ints {
		raw := c.Query(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + f.key})
			return nil, false
		}
		f.set(v)
	}
	if p.Name == "" {
		p.Name = "char" + strconv.FormatInt(charID, 10)
	}
	return p, true
}

// readPump keeps the connection alive until the client goes away. Inbound
// frames carry no commands; they only extend the read deadline.
func (h *Handler) readPump(conn *websocket.Conn, sess *player.PlayerSession) {
	defer h.handleDisconnect(sess)

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				h.logger.Warn("ws unexpected close",
					zap.Int64("char_id", sess.CharID),
					zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	}
}

// writePump drains SendChan to the connection and pings periodically.
func (h *Handler) writePump(conn *websocket.Conn, sess *player.PlayerSession) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer conn.Close()
	for {
		select {
		case data := <-sess.SendChan:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("ws write error",
					zap.Int64("char_id", sess.CharID),
					zap.Error(err))
				sess.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.Close()
				return
			}
		case <-sess.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (h *Handler) handleDisconnect(sess *player.PlayerSession) {
	h.sm.UnregisterSession(sess)
	h.logger.Info("player disconnected",
		zap.Int64("account_id", sess.AccountID),
		zap.Int64("char_id", sess.CharID))
}
