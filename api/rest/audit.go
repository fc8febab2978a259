package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/mmoitems/model"
	"go.uber.org/zap"
)

// HistorySource reads the persisted audit trail of an item.
type HistorySource interface {
	History(ctx context.Context, itemUID int64, limit int) ([]model.AuditLog, error)
}

// AuditHandler serves read access to item audit logs.
type AuditHandler struct {
	src    HistorySource
	logger *zap.Logger
}

func NewAuditHandler(src HistorySource, logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{src: src, logger: logger}
}

func (h *AuditHandler) Register(g *gin.RouterGroup) {
	g.GET("/items/:uid/history", h.History)
}

// History handles GET /api/items/:uid/history?limit=N.
func (h *AuditHandler) History(c *gin.Context) {
	uid, ok := parseID(c, "uid")
	if !ok {
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	logs, err := h.src.History(c.Request.Context(), uid, limit)
	if err != nil {
		h.logger.Error("audit history", zap.Int64("uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": uid, "entries": logs})
}
