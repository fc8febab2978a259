package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/mmoitems/game/item"
	"github.com/kasuganosora/mmoitems/game/player"
	"go.uber.org/zap"
)

// ItemHandler serves the item REST endpoints.
type ItemHandler struct {
	svc     *item.Service
	players *player.SessionManager
	logger  *zap.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(svc *item.Service, players *player.SessionManager, logger *zap.Logger) *ItemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemHandler{svc: svc, players: players, logger: logger}
}

// Register mounts the handler's routes on g.
func (h *ItemHandler) Register(g *gin.RouterGroup) {
	g.POST("/items", h.Create)
	g.GET("/items/:uid", h.Get)
	g.POST("/items/:uid/split", h.Split)
	g.GET("/items/:uid/gear_score", h.GearScore)
	g.POST("/items/:uid/enchant", h.Enchant)
	g.POST("/items/:uid/limit_break", h.LimitBreak)
	g.POST("/items/:uid/bind", h.Bind)
	g.POST("/items/:uid/equip", h.Equip)
	g.POST("/items/:uid/unequip", h.Unequip)
	g.GET("/items/:uid/eligibility", h.Eligibility)
	g.GET("/characters/:id/items", h.ListOwned)
}

type createRequest struct {
	ItemID  int  `json:"item_id" binding:"required"`
	Amount  int  `json:"amount"`
	Rarity  *int `json:"rarity"`
	Preview bool `json:"preview"`
}

// Create handles POST /api/items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rarity := item.RarityAuto
	if req.Rarity != nil {
		rarity = *req.Rarity
	}
	it, err := h.svc.Create(c.Request.Context(), req.ItemID, req.Amount, rarity, !req.Preview)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusCreated
	if req.Preview {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"item": item.NewView(it)})
}

// Get handles GET /api/items/:uid.
func (h *ItemHandler) Get(c *gin.Context) {
	it, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.NewView(it)})
}

type amountRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// Split handles POST /api/items/:uid/split.
func (h *ItemHandler) Split(c *gin.Context) {
	uid, ok := parseID(c, "uid")
	if !ok {
		return
	}
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, split, err := h.svc.Split(c.Request.Context(), uid, req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"source": item.NewView(src), "split": item.NewView(split)})
}

// GearScore handles GET /api/items/:uid/gear_score.
func (h *ItemHandler) GearScore(c *gin.Context) {
	it, ok := h.load(c)
	if !ok {
		return
	}
	gs, err := h.svc.GearScore(c.Request.Context(), it)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": it.UID, "gear_score": gs, "stored": it.GearScore})
}

type levelsRequest struct {
	Levels int `json:"levels"`
}

// Enchant handles POST /api/items/:uid/enchant. levels defaults to 1.
func (h *ItemHandler) Enchant(c *gin.Context) {
	it, ok := h.load(c)
	if !ok {
		return
	}
	var req levelsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Levels == 0 {
		req.Levels = 1
	}
	if err := h.svc.Enchant(c.Request.Context(), it, req.Levels); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.NewView(it)})
}

// LimitBreak handles POST /api/items/:uid/limit_break.
func (h *ItemHandler) LimitBreak(c *gin.Context) {
	it, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.svc.LimitBreak(c.Request.Context(), it); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.NewView(it)})
}

type characterRequest struct {
	CharacterID int64 `json:"character_id" binding:"required"`
}

// Bind handles POST /api/items/:uid/bind.
func (h *ItemHandler) Bind(c *gin.Context) {
	it, p, ok := h.loadWithPlayer(c)
	if !ok {
		return
	}
	bound, err := h.svc.Bind(c.Request.Context(), it, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !bound {
		c.JSON(http.StatusConflict, gin.H{"error": "item is bound to another character"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.NewView(it)})
}

// Equip handles POST /api/items/:uid/equip.
func (h *ItemHandler) Equip(c *gin.Context) {
	it, p, ok := h.loadWithPlayer(c)
	if !ok {
		return
	}
	if err := h.svc.Equip(c.Request.Context(), it, p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.NewView(it)})
}

// Unequip handles POST /api/items/:uid/unequip.
func (h *ItemHandler) Unequip(c *gin.Context) {
	it, p, ok := h.loadWithPlayer(c)
	if !ok {
		return
	}
	if err := h.svc.Unequip(c.Request.Context(), it, p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.NewView(it)})
}

// Eligibility handles GET /api/items/:uid/eligibility?character_id=N.
// Failing checks also push the matching notice to the character.
func (h *ItemHandler) Eligibility(c *gin.Context) {
	it, ok := h.load(c)
	if !ok {
		return
	}
	charID, err := strconv.ParseInt(c.Query("character_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character_id"})
		return
	}
	p, ok := h.online(c, charID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uid":       it.UID,
		"can_equip": h.svc.CanEquip(it, p),
		"can_use":   h.svc.CanUse(it, p),
	})
}

// ListOwned handles GET /api/characters/:id/items.
func (h *ItemHandler) ListOwned(c *gin.Context) {
	charID, ok := parseID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListOwned(c.Request.Context(), charID)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]*item.View, 0, len(items))
	for _, it := range items {
		views = append(views, item.NewView(it))
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

// ---- helpers ----

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *ItemHandler) load(c *gin.Context) (*item.Item, bool) {
	uid, ok := parseID(c, "uid")
	if !ok {
		return nil, false
	}
	it, err := h.svc.Get(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return it, true
}

func (h *ItemHandler) online(c *gin.Context, charID int64) (*player.Player, bool) {
	p := h.players.Get(charID)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not online"})
		return nil, false
	}
	return p, true
}

func (h *ItemHandler) loadWithPlayer(c *gin.Context) (*item.Item, *player.Player, bool) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	it, ok := h.load(c)
	if !ok {
		return nil, nil, false
	}
	p, ok := h.online(c, req.CharacterID)
	if !ok {
		return nil, nil, false
	}
	return it, p, true
}

// fail maps a service error to an HTTP status.
func (h *ItemHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, item.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, item.ErrUnknownTemplate),
		errors.Is(err, item.ErrInvalidAmount),
		errors.Is(err, item.ErrSplitRejected),
		errors.Is(err, item.ErrNotEquippable),
		errors.Is(err, item.ErrNotEquipped):
		status = http.StatusBadRequest
	case errors.Is(err, item.ErrCannotEquip),
		errors.Is(err, item.ErrEnchantDisabled):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("item request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
