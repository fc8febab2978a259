package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kasuganosora/mmoitems/cache/local"
	"github.com/kasuganosora/mmoitems/game/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var daggerInput = item.GearScoreInput{
	Factor:          10,
	Rarity:          4,
	Type:            item.ItemTypeDagger,
	EnchantLevel:    2,
	LimitBreakLevel: 1,
}

func TestGojaGearScore_DefaultFormula(t *testing.T) {
	g, err := NewGojaGearScore(DefaultGearScoreScript, 2, time.Second, nop())
	require.NoError(t, err)

	a, b, err := g.EvaluateGearScore(context.Background(), daggerInput)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, a, 1e-9)
	assert.InDelta(t, 20.0, b, 1e-9)
}

func TestGojaGearScore_ReceivesAllArguments(t *testing.T) {
	src := `function calcItemGearScore(f, r, t, e, l) { return [f * 1000 + r * 100 + t, e * 10 + l]; }`
	g, err := NewGojaGearScore(src, 1, time.Second, nop())
	require.NoError(t, err)

	a, b, err := g.EvaluateGearScore(context.Background(), daggerInput)
	require.NoError(t, err)
	assert.EqualValues(t, 10*1000+4*100+int(item.ItemTypeDagger), a)
	assert.EqualValues(t, 21, b)
}

func TestGojaGearScore_BadResult(t *testing.T) {
	for name, src := range map[string]string{
		"scalar":    `function calcItemGearScore() { return 5; }`,
		"too_short": `function calcItemGearScore() { return [5]; }`,
		"not_num":   `function calcItemGearScore() { return ["a", 1]; }`,
	} {
		t.Run(name, func(t *testing.T) {
			g, err := NewGojaGearScore(src, 1, time.Second, nop())
			require.NoError(t, err)
			_, _, err = g.EvaluateGearScore(context.Background(), daggerInput)
			assert.ErrorIs(t, err, ErrBadResult)
		})
	}
}

func TestGojaGearScore_MissingFunction(t *testing.T) {
	g, err := NewGojaGearScore(`var x = 1;`, 1, time.Second, nop())
	require.NoError(t, err)
	_, _, err = g.EvaluateGearScore(context.Background(), daggerInput)
	assert.ErrorIs(t, err, ErrNoFunction)
}

func TestLoadGojaGearScore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gs.js")
	require.NoError(t, os.WriteFile(path, []byte(`function calcItemGearScore(f) { return [f, 1]; }`), 0o644))

	g, err := LoadGojaGearScore(path, 1, time.Second, nop())
	require.NoError(t, err)
	a, b, err := g.EvaluateGearScore(context.Background(), daggerInput)
	require.NoError(t, err)
	assert.EqualValues(t, 10, a)
	assert.EqualValues(t, 1, b)

	// Missing file uses the built-in formula.
	g, err = LoadGojaGearScore(filepath.Join(dir, "missing.js"), 1, time.Second, nop())
	require.NoError(t, err)
	a, _, err = g.EvaluateGearScore(context.Background(), daggerInput)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, a, 1e-9)
}

func TestExprGearScore_MatchesDefaultScript(t *testing.T) {
	e, err := NewExprGearScore("Factor * RarityMul * 10", "Factor * (EnchantLevel * 0.05 + LimitBreakLevel * 0.1) * 10")
	require.NoError(t, err)
	g, err := NewGojaGearScore(DefaultGearScoreScript, 1, time.Second, nop())
	require.NoError(t, err)

	for _, in := range []item.GearScoreInput{
		daggerInput,
		{Factor: 3, Rarity: 1, Type: item.ItemTypeHat},
		{Factor: 7, Rarity: 6, Type: item.ItemTypeStaff, EnchantLevel: 15, LimitBreakLevel: 3},
		{Factor: 0, Rarity: 2, Type: item.ItemTypeCurrency},
	} {
		ea, eb, err := e.EvaluateGearScore(context.Background(), in)
		require.NoError(t, err)
		ga, gb, err := g.EvaluateGearScore(context.Background(), in)
		require.NoError(t, err)
		assert.InDelta(t, ga, ea, 1e-9, "%+v", in)
		assert.InDelta(t, gb, eb, 1e-9, "%+v", in)
	}
}

func TestExprGearScore_TypeName(t *testing.T) {
	e, err := NewExprGearScore(`TypeName == "Dagger" ? 100 : 1`, "0")
	require.NoError(t, err)
	a, b, err := e.EvaluateGearScore(context.Background(), daggerInput)
	require.NoError(t, err)
	assert.EqualValues(t, 100, a)
	assert.EqualValues(t, 0, b)
}

func TestExprGearScore_CompileError(t *testing.T) {
	_, err := NewExprGearScore("Factor *", "0")
	assert.Error(t, err)
	_, err = NewExprGearScore("1", "Unknown + 1")
	assert.Error(t, err)
}

func TestExprGearScore_CanceledContext(t *testing.T) {
	e, err := NewExprGearScore("1", "2")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = e.EvaluateGearScore(ctx, daggerInput)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingEvaluator struct {
	calls atomic.Int32
	err   error
}

func (c *countingEvaluator) EvaluateGearScore(_ context.Context, in item.GearScoreInput) (float64, float64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, 0, c.err
	}
	return float64(in.Factor * 10), float64(in.EnchantLevel), nil
}

func TestMemoEvaluator_CachesByInput(t *testing.T) {
	next := &countingEvaluator{}
	m := NewMemoEvaluator(next, 16, time.Minute, nil, nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		a, b, err := m.EvaluateGearScore(ctx, daggerInput)
		require.NoError(t, err)
		assert.EqualValues(t, 100, a)
		assert.EqualValues(t, 2, b)
	}
	assert.EqualValues(t, 1, next.calls.Load())

	other := daggerInput
	other.EnchantLevel = 3
	_, b, err := m.EvaluateGearScore(ctx, other)
	require.NoError(t, err)
	assert.EqualValues(t, 3, b)
	assert.EqualValues(t, 2, next.calls.Load())
	assert.Equal(t, 2, m.Len())

	m.Purge()
	assert.Equal(t, 0, m.Len())
}

func TestMemoEvaluator_ErrorsNotCached(t *testing.T) {
	next := &countingEvaluator{err: errors.New("formula broken")}
	m := NewMemoEvaluator(next, 16, time.Minute, nil, nop())

	_, _, err := m.EvaluateGearScore(context.Background(), daggerInput)
	assert.Error(t, err)
	_, _, err = m.EvaluateGearScore(context.Background(), daggerInput)
	assert.Error(t, err)
	assert.EqualValues(t, 2, next.calls.Load())
	assert.Equal(t, 0, m.Len())
}

func TestMemoEvaluator_SharedTier(t *testing.T) {
	shared, err := local.NewCache(local.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shared.Close() })
	ctx := context.Background()

	first := &countingEvaluator{}
	m1 := NewMemoEvaluator(first, 16, time.Minute, shared, nop())
	_, _, err = m1.EvaluateGearScore(ctx, daggerInput)
	require.NoError(t, err)

	v, err := shared.Get(ctx, sharedKey(daggerInput))
	require.NoError(t, err)
	assert.Equal(t, "100,2", v)

	// A second process with a cold LRU reads the shared entry.
	second := &countingEvaluator{}
	m2 := NewMemoEvaluator(second, 16, time.Minute, shared, nop())
	a, b, err := m2.EvaluateGearScore(ctx, daggerInput)
	require.NoError(t, err)
	assert.EqualValues(t, 100, a)
	assert.EqualValues(t, 2, b)
	assert.EqualValues(t, 0, second.calls.Load())
}

func TestMemoEvaluator_CorruptSharedEntry(t *testing.T) {
	shared, err := local.NewCache(local.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shared.Close() })
	ctx := context.Background()
	require.NoError(t, shared.Set(ctx, sharedKey(daggerInput), "garbage", 0))

	next := &countingEvaluator{}
	m := NewMemoEvaluator(next, 16, time.Minute, shared, nop())
	a, _, err := m.EvaluateGearScore(ctx, daggerInput)
	require.NoError(t, err)
	assert.EqualValues(t, 100, a)
	assert.EqualValues(t, 1, next.calls.Load())
}

func TestGetGearScore_WithScriptEngine(t *testing.T) {
	g, err := NewGojaGearScore(DefaultGearScoreScript, 1, time.Second, nop())
	require.NoError(t, err)

	ev := item.ScoreEvaluatorFunc(func(ctx context.Context, in item.GearScoreInput) (float64, float64, error) {
		return g.EvaluateGearScore(ctx, in)
	})
	a, b, err := ev.EvaluateGearScore(context.Background(), daggerInput)
	require.NoError(t, err)
	assert.InDelta(t, 170.0, a+b, 1e-9)
}

// brokenCache fails every operation with a transport error.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, error) { return "", errors.New("conn reset") }
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("conn reset")
}
func (brokenCache) Del(context.Context, ...string) error         { return nil }
func (brokenCache) Exists(context.Context, string) (bool, error) { return false, nil }
func (brokenCache) Close() error                                  { return nil }

func TestMemoEvaluator_NilLoggerSharedFailure(t *testing.T) {
	next := &countingEvaluator{}
	m := NewMemoEvaluator(next, 16, time.Minute, brokenCache{}, nil)

	a, b, err := m.EvaluateGearScore(context.Background(), daggerInput)
	require.NoError(t, err)
	assert.EqualValues(t, 100, a)
	assert.EqualValues(t, 2, b)
	assert.EqualValues(t, 1, next.calls.Load())
}
