// Package script hosts the gear score formula engines: a pool of sandboxed
// goja VMs for JavaScript formulas and a compiled expr program alternative.
package script

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// ErrTimeout is returned when a script exceeds the execution time limit.
var ErrTimeout = errors.New("script: execution timed out")

// ErrPanic is returned when the interpreter panics.
var ErrPanic = errors.New("script: uncaught exception")

// ErrNoFunction is returned by Call when the prelude does not define fn.
var ErrNoFunction = errors.New("script: function not defined")

// VMPool is a thread-safe pool of pre-initialised goja runtimes. Every VM
// has run the same prelude program, so functions it defines can be called.
type VMPool struct {
	pool    chan *goja.Runtime
	prelude *goja.Program
	timeout time.Duration
	logger  *zap.Logger
	size    int
}

// NewVMPool creates a VMPool with the given concurrency size and per-script
// timeout. prelude may be empty.
func NewVMPool(size int, timeout time.Duration, prelude string, logger *zap.Logger) (*VMPool, error) {
	if size <= 0 {
		size = 4
	}
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	p := &VMPool{
		pool:    make(chan *goja.Runtime, size),
		timeout: timeout,
		logger:  logger,
		size:    size,
	}
	if prelude != "" {
		prog, err := goja.Compile("prelude.js", prelude, true)
		if err != nil {
			return nil, fmt.Errorf("script: compile prelude: %w", err)
		}
		p.prelude = prog
	}
	for i := 0; i < size; i++ {
		vm, err := p.newVM()
		if err != nil {
			return nil, err
		}
		p.pool <- vm
	}
	return p, nil
}

// Size returns the number of VMs in the pool.
func (p *VMPool) Size() int { return p.size }

func (p *VMPool) newVM() (*goja.Runtime, error) {
	vm := newSafeVM()
	if p.prelude != nil {
		if _, err := vm.RunProgram(p.prelude); err != nil {
			return nil, fmt.Errorf("script: run prelude: %w", err)
		}
	}
	return vm, nil
}

// Run executes src inside a pooled VM and returns the exported value of the
// last expression evaluated.
func (p *VMPool) Run(ctx context.Context, src string) (interface{}, error) {
	return p.with(ctx, func(vm *goja.Runtime) (goja.Value, error) {
		return vm.RunString(src)
	})
}

// Call invokes the global function fn defined by the prelude.
func (p *VMPool) Call(ctx context.Context, fn string, args ...interface{}) (interface{}, error) {
	return p.with(ctx, func(vm *goja.Runtime) (goja.Value, error) {
		callable, ok := goja.AssertFunction(vm.Get(fn))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoFunction, fn)
		}
		vals := make([]goja.Value, len(args))
		for i, a := range args {
			vals[i] = vm.ToValue(a)
		}
		return callable(goja.Undefined(), vals...)
	})
}

func (p *VMPool) with(ctx context.Context, body func(vm *goja.Runtime) (goja.Value, error)) (interface{}, error) {
	select {
	case vm := <-p.pool:
		// returnToPool is cleared when the VM is tainted by an interrupt and
		// must be replaced.
		returnToPool := true
		defer func() {
			if returnToPool {
				p.pool <- vm
			}
		}()
		return p.runVM(ctx, vm, body, &returnToPool)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *VMPool) runVM(ctx context.Context, vm *goja.Runtime, body func(vm *goja.Runtime) (goja.Value, error), returnToPool *bool) (interface{}, error) {
	timer := time.AfterFunc(p.timeout, func() {
		vm.Interrupt(ErrTimeout)
	})
	stopCtx := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer func() {
		timer.Stop()
		stopCtx()
		if *returnToPool {
			vm.ClearInterrupt()
		}
	}()

	var result goja.Value
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = ErrPanic
			}
		}()
		result, runErr = body(vm)
	}()

	if runErr != nil {
		var interrupted *goja.InterruptedError
		if errors.As(runErr, &interrupted) {
			*returnToPool = false
			if fresh, err := p.newVM(); err == nil {
				p.pool <- fresh
			} else {
				p.logger.Error("script: replace tainted vm", zap.Error(err))
			}
			if cause, ok := interrupted.Value().(error); ok {
				return nil, cause
			}
			return nil, ErrTimeout
		}
		if ex, ok := runErr.(*goja.Exception); ok {
			return nil, errors.New(ex.Error())
		}
		return nil, runErr
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}
	return result.Export(), nil
}

// newSafeVM creates a goja Runtime with dangerous globals removed.
func newSafeVM() *goja.Runtime {
	vm := goja.New()
	for _, name := range []string{"require", "process", "fetch", "XMLHttpRequest", "eval", "Function"} {
		vm.Set(name, goja.Undefined())
	}
	mathObj := vm.NewObject()
	_ = mathObj.Set("floor", math.Floor)
	_ = mathObj.Set("ceil", math.Ceil)
	_ = mathObj.Set("trunc", math.Trunc)
	_ = mathObj.Set("round", func(v float64) float64 { return math.Floor(v + 0.5) })
	_ = mathObj.Set("abs", math.Abs)
	_ = mathObj.Set("pow", math.Pow)
	_ = mathObj.Set("sqrt", math.Sqrt)
	_ = mathObj.Set("max", math.Max)
	_ = mathObj.Set("min", math.Min)
	_ = mathObj.Set("random", func() float64 { return 0 }) // formulas must be deterministic
	vm.Set("Math", mathObj)
	return vm
}

// Sandbox wraps a VMPool and logs failed evaluations.
type Sandbox struct {
	pool   *VMPool
	logger *zap.Logger
}

// NewSandbox creates a Sandbox backed by a VMPool.
func NewSandbox(size int, timeout time.Duration, prelude string, logger *zap.Logger) (*Sandbox, error) {
	pool, err := NewVMPool(size, timeout, prelude, logger)
	if err != nil {
		return nil, err
	}
	return &Sandbox{pool: pool, logger: logger}, nil
}

// Eval executes src, returning the result.
func (sb *Sandbox) Eval(ctx context.Context, src string) (interface{}, error) {
	result, err := sb.pool.Run(ctx, src)
	if err != nil {
		sb.logger.Warn("script execution error",
			zap.String("src_preview", truncate(src, 80)),
			zap.Error(err))
	}
	return result, err
}

// Call invokes a prelude function, returning the result.
func (sb *Sandbox) Call(ctx context.Context, fn string, args ...interface{}) (interface{}, error) {
	result, err := sb.pool.Call(ctx, fn, args...)
	if err != nil {
		sb.logger.Warn("script call error", zap.String("fn", fn), zap.Error(err))
	}
	return result, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
