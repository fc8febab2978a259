package script

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kasuganosora/mmoitems/cache"
	"github.com/kasuganosora/mmoitems/game/item"
	"go.uber.org/zap"
)

type scorePair struct {
	a, b float64
}

// MemoEvaluator caches formula results. The formula is a pure function of
// its input, so results never need invalidation beyond the TTL. An optional
// shared cache backs the in-process LRU across server instances.
type MemoEvaluator struct {
	next   item.ScoreEvaluator
	lru    *expirable.LRU[item.GearScoreInput, scorePair]
	shared cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewMemoEvaluator wraps next. shared may be nil.
func NewMemoEvaluator(next item.ScoreEvaluator, size int, ttl time.Duration, shared cache.Cache, logger *zap.Logger) *MemoEvaluator {
	if size <= 0 {
		size = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoEvaluator{
		next:   next,
		lru:    expirable.NewLRU[item.GearScoreInput, scorePair](size, nil, ttl),
		shared: shared,
		ttl:    ttl,
		logger: logger,
	}
}

func sharedKey(in item.GearScoreInput) string {
	return fmt.Sprintf("gs:%d:%d:%d:%d:%d", in.Factor, in.Rarity, int(in.Type), in.EnchantLevel, in.LimitBreakLevel)
}

// EvaluateGearScore implements item.ScoreEvaluator.
func (m *MemoEvaluator) EvaluateGearScore(ctx context.Context, in item.GearScoreInput) (float64, float64, error) {
	if p, ok := m.lru.Get(in); ok {
		return p.a, p.b, nil
	}
	if p, ok := m.loadShared(ctx, in); ok {
		m.lru.Add(in, p)
		return p.a, p.b, nil
	}

	a, b, err := m.next.EvaluateGearScore(ctx, in)
	if err != nil {
		return 0, 0, err
	}
	p := scorePair{a: a, b: b}
	m.lru.Add(in, p)
	m.storeShared(ctx, in, p)
	return a, b, nil
}

// Len returns the number of memoized inputs held in process.
func (m *MemoEvaluator) Len() int { return m.lru.Len() }

// Purge drops the in-process entries.
func (m *MemoEvaluator) Purge() { m.lru.Purge() }

func (m *MemoEvaluator) loadShared(ctx context.Context, in item.GearScoreInput) (scorePair, bool) {
	if m.shared == nil {
		return scorePair{}, false
	}
	v, err := m.shared.Get(ctx, sharedKey(in))
	if err != nil {
		if !cache.IsNotFound(err) {
			m.logger.Warn("gear score cache read failed", zap.Error(err))
		}
		return scorePair{}, false
	}
	as, bs, found := strings.Cut(v, ",")
	if !found {
		return scorePair{}, false
	}
	a, errA := strconv.ParseFloat(as, 64)
	b, errB := strconv.ParseFloat(bs, 64)
	if errA != nil || errB != nil {
		return scorePair{}, false
	}
	return scorePair{a: a, b: b}, true
}

func (m *MemoEvaluator) storeShared(ctx context.Context, in item.GearScoreInput, p scorePair) {
	if m.shared == nil {
		return
	}
	v := strconv.FormatFloat(p.a, 'g', -1, 64) + "," + strconv.FormatFloat(p.b, 'g', -1, 64)
	if err := m.shared.Set(ctx, sharedKey(in), v, m.ttl); err != nil {
		m.logger.Warn("gear score cache write failed", zap.Error(err))
	}
}
