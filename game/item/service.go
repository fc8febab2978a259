package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/mmoitems/audit"
	"github.com/kasuganosora/mmoitems/game/player"
	"github.com/kasuganosora/mmoitems/plugin/hook"
	"github.com/kasuganosora/mmoitems/resource"
	"github.com/kasuganosora/mmoitems/scheduler"
	"go.uber.org/zap"
)

var (
	ErrSplitRejected   = errors.New("item: split amount out of range")
	ErrCannotEquip     = errors.New("item: cannot equip")
	ErrNotEquipped     = errors.New("item: not equipped")
	ErrNotEquippable   = errors.New("item: template has no equip slot")
	ErrEnchantDisabled = errors.New("item: enchanting disabled for template")
	ErrNotLootable     = errors.New("item: drop is bound to another character")
	ErrNotDropped      = errors.New("item: not on the field")
)

// ItemStore is the full persistence surface the service needs.
type ItemStore interface {
	Storage
	UpdateItem(ctx context.Context, it *Item) error
	LoadItem(ctx context.Context, uid int64) (*Item, error)
	DeleteItem(ctx context.Context, uid int64) error
	ListByOwner(ctx context.Context, characterID int64) ([]int64, error)
}

// Auditor receives one entry per state-changing operation.
type Auditor interface {
	Log(entry audit.AuditEntry)
}

// HookEvent is the payload of item lifecycle hooks. Player is nil when no
// character is involved.
type HookEvent struct {
	Item   *Item
	Player *player.Player
}

// Hooks is the hook center the service triggers.
type Hooks = hook.Center[HookEvent]

// Service runs item operations against storage and records them in the
// audit log.
type Service struct {
	factory      *Factory
	store        ItemStore
	scores       ScoreEvaluator
	auditor      Auditor
	hooks        *Hooks
	sched        *scheduler.Scheduler
	dropLifetime time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// Options configures a Service. Auditor, Hooks and Scheduler may be nil;
// without a Scheduler dropped items never fade.
type Options struct {
	Catalog      Catalog
	Store        ItemStore
	Scores       ScoreEvaluator
	Auditor      Auditor
	Hooks        *Hooks
	Scheduler    *scheduler.Scheduler
	DropLifetime time.Duration
	Logger       *zap.Logger
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		factory:      NewFactory(opts.Catalog, opts.Store, opts.Scores),
		store:        opts.Store,
		scores:       opts.Scores,
		auditor:      opts.Auditor,
		hooks:        opts.Hooks,
		sched:        opts.Scheduler,
		dropLifetime: opts.DropLifetime,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock overrides the wall clock for the service and its factory.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
	s.factory.SetClock(now)
}

// Factory exposes the underlying factory for preview objects.
func (s *Service) Factory() *Factory { return s.factory }

// Create builds and optionally stores a new instance of template id.
func (s *Service) Create(ctx context.Context, id, amount, rarity int, persist bool) (*Item, error) {
	start := time.Now()
	it, err := s.factory.Create(ctx, id, amount, rarity, persist)
	if err != nil {
		s.logger.Warn("item create failed", zap.Int("item_id", id), zap.Error(err))
		return nil, err
	}
	if persist {
		s.record(ctx, start, audit.ActionCreate, it, nil, map[string]interface{}{"rarity": it.Rarity}, nil)
	}
	s.after(ctx, hook.AfterItemCreate, it, nil)
	return it, nil
}

// Get loads a stored item.
func (s *Service) Get(ctx context.Context, uid int64) (*Item, error) {
	return s.store.LoadItem(ctx, uid)
}

// ListOwned loads every stored item bound to characterID.
func (s *Service) ListOwned(ctx context.Context, characterID int64) ([]*Item, error) {
	uids, err := s.store.ListByOwner(ctx, characterID)
	if err != nil {
		return nil, err
	}
	items := make([]*Item, 0, len(uids))
	for _, uid := range uids {
		it, err := s.store.LoadItem(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("item: load owned %d: %w", uid, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Split moves n units of the stored item uid into a new stored instance and
// writes the reduced source back. It returns the updated source and the
// new stack.
func (s *Service) Split(ctx context.Context, uid int64, n int) (src, split *Item, err error) {
	start := time.Now()
	src, err = s.store.LoadItem(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	split, ok, err := s.factory.Split(ctx, src, n)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return src, nil, fmt.Errorf("%w: %d of %d", ErrSplitRejected, n, src.Amount)
	}
	if err := s.store.UpdateItem(ctx, src); err != nil {
		if derr := s.store.DeleteItem(ctx, split.UID); derr != nil {
			s.logger.Error("item split rollback failed", zap.Int64("split_uid", split.UID), zap.Error(derr))
		}
		src.Amount += n
		return nil, nil, fmt.Errorf("item: update split source: %w", err)
	}
	s.record(ctx, start, audit.ActionSplit, src, nil, map[string]interface{}{"split_uid": split.UID, "amount": n}, nil)
	s.after(ctx, hook.AfterItemSplit, split, nil)
	return src, split, nil
}

// Bind binds it to p and persists the change when it is stored.
func (s *Service) Bind(ctx context.Context, it *Item, p *player.Player) (bool, error) {
	start := time.Now()
	wasBound := it.IsBound()
	if !it.Bind(p) {
		return false, nil
	}
	if wasBound {
		return true, nil
	}
	err := s.persist(ctx, it)
	s.record(ctx, start, audit.ActionBind, it, p, nil, err)
	if err != nil {
		return false, err
	}
	p.ItemUpdate(NewView(it))
	s.after(ctx, hook.AfterItemBind, it, p)
	return true, nil
}

// Enchant raises the enchant level by levels and refreshes the gear score.
func (s *Service) Enchant(ctx context.Context, it *Item, levels int) error {
	start := time.Now()
	if it.Facts().DisableEnchant {
		return ErrEnchantDisabled
	}
	if levels <= 0 {
		return fmt.Errorf("%w: enchant by %d", ErrInvalidAmount, levels)
	}
	prev, prevExp, prevScore := it.EnchantLevel, it.EnchantExp, it.GearScore
	undo := func() {
		it.EnchantLevel, it.EnchantExp, it.GearScore = prev, prevExp, prevScore
		restoreStats(it)
	}
	it.EnchantLevel += levels
	it.EnchantExp = 0
	if err := RefreshGearScore(ctx, s.scores, it); err != nil {
		undo()
		return err
	}
	detail := map[string]interface{}{"from": prev, "to": it.EnchantLevel}
	if err := s.persist(ctx, it); err != nil {
		s.record(ctx, start, audit.ActionEnchant, it, nil, detail, err)
		undo()
		return err
	}
	s.record(ctx, start, audit.ActionEnchant, it, nil, detail, nil)
	s.after(ctx, hook.AfterItemEnchant, it, nil)
	return nil
}

// LimitBreak raises the limit-break level by one and refreshes the gear score.
func (s *Service) LimitBreak(ctx context.Context, it *Item) error {
	start := time.Now()
	prevScore := it.GearScore
	undo := func() {
		it.LimitBreakLevel--
		it.GearScore = prevScore
		restoreStats(it)
	}
	it.LimitBreakLevel++
	if err := RefreshGearScore(ctx, s.scores, it); err != nil {
		undo()
		return err
	}
	detail := map[string]interface{}{"level": it.LimitBreakLevel}
	if err := s.persist(ctx, it); err != nil {
		s.record(ctx, start, audit.ActionLimitBreak, it, nil, detail, err)
		undo()
		return err
	}
	s.record(ctx, start, audit.ActionLimitBreak, it, nil, detail, nil)
	s.after(ctx, hook.AfterItemLimitBreak, it, nil)
	return nil
}

// Equip checks eligibility, marks it equipped in its template slot and
// pushes the change to p.
func (s *Service) Equip(ctx context.Context, it *Item, p *player.Player) error {
	start := time.Now()
	slot := it.Facts().Slot
	if slot == resource.SlotNone {
		return ErrNotEquippable
	}
	if !it.CanEquip(p, s.now()) {
		return ErrCannotEquip
	}
	if _, err := s.hooks.Trigger(ctx, hook.BeforeItemEquip, HookEvent{Item: it, Player: p}); err != nil {
		return fmt.Errorf("%w: %w", ErrCannotEquip, err)
	}
	prevEquipped, prevSlot := it.IsEquipped, it.Slot
	it.IsEquipped = true
	it.Slot = int16(slot)
	if err := s.persist(ctx, it); err != nil {
		it.IsEquipped, it.Slot = prevEquipped, prevSlot
		return err
	}
	p.ItemUpdate(NewView(it))
	s.record(ctx, start, audit.ActionEquip, it, p, map[string]interface{}{"slot": int(slot)}, nil)
	s.after(ctx, hook.AfterItemEquip, it, p)
	return nil
}

// Unequip clears the equipped flag and leaves it unplaced.
func (s *Service) Unequip(ctx context.Context, it *Item, p *player.Player) error {
	start := time.Now()
	if !it.IsEquipped {
		return ErrNotEquipped
	}
	prevSlot := it.Slot
	it.IsEquipped = false
	it.Slot = SlotUnplaced
	if err := s.persist(ctx, it); err != nil {
		it.IsEquipped, it.Slot = true, prevSlot
		return err
	}
	p.ItemUpdate(NewView(it))
	s.record(ctx, start, audit.ActionUnequip, it, p, map[string]interface{}{"slot": int(prevSlot)}, nil)
	s.after(ctx, hook.AfterItemUnequip, it, p)
	return nil
}

// CanEquip reports whether p may equip it now.
func (s *Service) CanEquip(it *Item, p *player.Player) bool { return it.CanEquip(p, s.now()) }

// CanUse reports whether p may use it now.
func (s *Service) CanUse(it *Item, p *player.Player) bool { return it.CanUse(p, s.now()) }

// GearScore evaluates the current gear score without modifying it.
func (s *Service) GearScore(ctx context.Context, it *Item) (int, error) {
	return GetGearScore(ctx, s.scores, it)
}

// Drop places it on the field. If nobody picks it up within the configured
// lifetime it fades and its stored row is deleted.
func (s *Service) Drop(it *Item, sourceObjectID int, boundTo int64) *scheduler.Handle {
	uid := it.UID
	return PlaceOnField(s.sched, it, sourceObjectID, boundTo, s.dropLifetime, func() {
		s.logger.Info("dropped item faded", zap.Int64("uid", uid), zap.Int("item_id", it.ID))
		s.after(context.Background(), hook.OnItemFade, it, nil)
		if uid == 0 {
			return
		}
		if err := s.store.DeleteItem(context.Background(), uid); err != nil && !errors.Is(err, ErrItemNotFound) {
			s.logger.Error("delete faded item", zap.Int64("uid", uid), zap.Error(err))
		}
	})
}

// Loot picks it up for p, stopping the fade-out timer.
func (s *Service) Loot(it *Item, p *player.Player) error {
	if it.Drop == nil {
		return ErrNotDropped
	}
	if !it.Drop.CanLoot(p.CharacterID) {
		return ErrNotLootable
	}
	PickUp(it)
	return nil
}

// after runs notification hooks. Interrupts only stop the chain.
func (s *Service) after(ctx context.Context, event string, it *Item, p *player.Player) {
	_, _ = s.hooks.Trigger(ctx, event, HookEvent{Item: it, Player: p})
}

func restoreStats(it *Item) {
	if it.Stats != nil {
		it.Stats.Recompute(it.EnchantLevel, it.LimitBreakLevel)
	}
}

func (s *Service) persist(ctx context.Context, it *Item) error {
	if it.UID == 0 {
		return nil
	}
	return s.store.UpdateItem(ctx, it)
}

func (s *Service) record(ctx context.Context, start time.Time, action string, it *Item, p *player.Player, detail interface{}, err error) {
	if s.auditor == nil {
		return
	}
	e := audit.AuditEntry{
		TraceID:    audit.TraceIDFrom(ctx),
		Action:     action,
		ItemUID:    it.UID,
		ItemID:     it.ID,
		Amount:     it.Amount,
		Detail:     detail,
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if p != nil {
		charID, accountID := p.CharacterID, p.AccountID
		e.CharID = &charID
		e.AccountID = &accountID
		e.CharName = p.Name
	}
	if err != nil {
		e.Error = err.Error()
	}
	s.auditor.Log(e)
}
