package script

import (
	"context"
	"fmt"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/kasuganosora/mmoitems/game/item"
)

// ExprEnv is the variable set visible to expr formulas.
type ExprEnv struct {
	Factor          float64
	Rarity          int
	RarityMul       float64
	Type            int
	TypeName        string
	EnchantLevel    float64
	LimitBreakLevel float64
}

// ExprGearScore evaluates the gear score as two compiled expr programs, one
// per component.
type ExprGearScore struct {
	base  *vm.Program
	bonus *vm.Program
}

// NewExprGearScore compiles the base and bonus formulas.
func NewExprGearScore(base, bonus string) (*ExprGearScore, error) {
	b, err := expr.Compile(base, expr.Env(ExprEnv{}), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("script: compile base formula: %w", err)
	}
	o, err := expr.Compile(bonus, expr.Env(ExprEnv{}), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("script: compile bonus formula: %w", err)
	}
	return &ExprGearScore{base: b, bonus: o}, nil
}

// EvaluateGearScore implements item.ScoreEvaluator.
func (e *ExprGearScore) EvaluateGearScore(ctx context.Context, in item.GearScoreInput) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	env := ExprEnv{
		Factor:          float64(in.Factor),
		Rarity:          in.Rarity,
		RarityMul:       item.RarityMultiplier(in.Rarity),
		Type:            int(in.Type),
		TypeName:        in.Type.String(),
		EnchantLevel:    float64(in.EnchantLevel),
		LimitBreakLevel: float64(in.LimitBreakLevel),
	}
	a, err := expr.Run(e.base, env)
	if err != nil {
		return 0, 0, fmt.Errorf("script: base formula: %w", err)
	}
	b, err := expr.Run(e.bonus, env)
	if err != nil {
		return 0, 0, fmt.Errorf("script: bonus formula: %w", err)
	}
	return a.(float64), b.(float64), nil
}
