package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kasuganosora/mmoitems/game/item"
	"go.uber.org/zap"
)

// GearScoreFunc is the global the formula script must define. It receives
// (factor, rarity, type, enchantLevel, limitBreakLevel) and returns a
// two-element array.
const GearScoreFunc = "calcItemGearScore"

// ErrBadResult is returned when the formula does not return two numbers.
var ErrBadResult = errors.New("script: gear score formula must return [number, number]")

// DefaultGearScoreScript is used when no formula file is configured.
const DefaultGearScoreScript = `
var rarityMul = [1.0, 1.0, 1.1, 1.25, 1.5, 1.8, 2.2];

function calcItemGearScore(factor, rarity, type, enchant, limitBreak) {
	var r = Math.max(0, Math.min(rarity, rarityMul.length - 1));
	var base = factor * rarityMul[r] * 10;
	var bonus = factor * (enchant * 0.05 + limitBreak * 0.1) * 10;
	return [base, bonus];
}
`

// GojaGearScore evaluates the gear score formula in the JS sandbox.
type GojaGearScore struct {
	sb *Sandbox
}

// NewGojaGearScore compiles src into a pool of size VMs.
func NewGojaGearScore(src string, size int, timeout time.Duration, logger *zap.Logger) (*GojaGearScore, error) {
	sb, err := NewSandbox(size, timeout, src, logger)
	if err != nil {
		return nil, err
	}
	return &GojaGearScore{sb: sb}, nil
}

// LoadGojaGearScore reads the formula from path. A missing file falls back
// to DefaultGearScoreScript.
func LoadGojaGearScore(path string, size int, timeout time.Duration, logger *zap.Logger) (*GojaGearScore, error) {
	src := DefaultGearScoreScript
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			src = string(b)
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("gear score formula not found, using built-in", zap.String("path", path))
		default:
			return nil, fmt.Errorf("script: read %s: %w", path, err)
		}
	}
	return NewGojaGearScore(src, size, timeout, logger)
}

// EvaluateGearScore implements item.ScoreEvaluator.
func (g *GojaGearScore) EvaluateGearScore(ctx context.Context, in item.GearScoreInput) (float64, float64, error) {
	out, err := g.sb.Call(ctx, GearScoreFunc, in.Factor, in.Rarity, int(in.Type), in.EnchantLevel, in.LimitBreakLevel)
	if err != nil {
		return 0, 0, err
	}
	arr, ok := out.([]interface{})
	if !ok || len(arr) != 2 {
		return 0, 0, ErrBadResult
	}
	a, okA := toFloat(arr[0])
	b, okB := toFloat(arr[1])
	if !okA || !okB {
		return 0, 0, ErrBadResult
	}
	return a, b, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
