package item

import (
	"context"
	"fmt"
	"math"
)

// GearScoreInput is the full argument tuple of the gear score formula.
// It is comparable and safe to use as a memo key.
type GearScoreInput struct {
	Factor          int
	Rarity          int
	Type            ItemType
	EnchantLevel    int
	LimitBreakLevel int
}

// ScoreEvaluator runs the gear score formula. Implementations must be pure
// functions of the input; the call may block on an interpreter.
type ScoreEvaluator interface {
	EvaluateGearScore(ctx context.Context, in GearScoreInput) (float64, float64, error)
}

// ScoreEvaluatorFunc adapts a plain function to ScoreEvaluator.
type ScoreEvaluatorFunc func(ctx context.Context, in GearScoreInput) (float64, float64, error)

func (f ScoreEvaluatorFunc) EvaluateGearScore(ctx context.Context, in GearScoreInput) (float64, float64, error) {
	return f(ctx, in)
}

// GearScoreInputOf collects the formula arguments from it.
func GearScoreInputOf(it *Item) GearScoreInput {
	return GearScoreInput{
		Factor:          it.Facts().GearScoreFactor,
		Rarity:          it.Rarity,
		Type:            it.Type(),
		EnchantLevel:    it.EnchantLevel,
		LimitBreakLevel: it.LimitBreakLevel,
	}
}

// GetGearScore evaluates the formula for it. The two returned components are
// summed and truncated toward zero. It does not modify it.
func GetGearScore(ctx context.Context, ev ScoreEvaluator, it *Item) (int, error) {
	in := GearScoreInputOf(it)
	a, b, err := ev.EvaluateGearScore(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("item: gear score for %d: %w", it.ID, err)
	}
	return int(math.Trunc(a + b)), nil
}

// RefreshGearScore recomputes the upgrade stats and stores a new gear score.
// Call it after any change to enchant level, limit-break level or rarity.
func RefreshGearScore(ctx context.Context, ev ScoreEvaluator, it *Item) error {
	if it.Stats != nil {
		it.Stats.Recompute(it.EnchantLevel, it.LimitBreakLevel)
	}
	gs, err := GetGearScore(ctx, ev, it)
	if err != nil {
		return err
	}
	it.GearScore = gs
	return nil
}
