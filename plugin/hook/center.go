package hook

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrInterrupt signals that a handler wants to stop further processing.
// On a Before* event it also vetoes the operation.
var ErrInterrupt = errors.New("hook interrupted")

// Fn is a hook handler. It returns the (possibly modified) payload, or
// ErrInterrupt to stop the chain.
type Fn[T any] func(ctx context.Context, event string, data T) (T, error)

type entry[T any] struct {
	priority int
	seq      int
	fn       Fn[T]
	name     string
}

// Center holds hook registrations for one payload type.
type Center[T any] struct {
	mu    sync.RWMutex
	seq   int
	hooks map[string][]*entry[T]
}

// NewCenter creates an empty Center.
func NewCenter[T any]() *Center[T] {
	return &Center[T]{hooks: make(map[string][]*entry[T])}
}

// Register adds fn for event. Lower priorities run first; equal priorities
// run in registration order. name is used for Unregister.
func (c *Center[T]) Register(event string, priority int, name string, fn Fn[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	entries := append(c.hooks[event], &entry[T]{priority: priority, seq: c.seq, fn: fn, name: name})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	c.hooks[event] = entries
}

// Unregister removes every hook named name from event.
func (c *Center[T]) Unregister(event, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[event] = without(c.hooks[event], name)
}

// UnregisterAll removes every hook named name from all events.
func (c *Center[T]) UnregisterAll(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for event, entries := range c.hooks {
		c.hooks[event] = without(entries, name)
	}
}

func without[T any](entries []*entry[T], name string) []*entry[T] {
	out := entries[:0]
	for _, e := range entries {
		if e.name != name {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of hooks registered for event.
func (c *Center[T]) Count(event string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hooks[event])
}

// Trigger runs the hooks for event in order, threading data through each.
// It stops at the first ErrInterrupt and returns it. Other handler errors
// are ignored and the previous payload is kept. A nil Center is a no-op.
func (c *Center[T]) Trigger(ctx context.Context, event string, data T) (T, error) {
	if c == nil {
		return data, nil
	}
	c.mu.RLock()
	entries := make([]*entry[T], len(c.hooks[event]))
	copy(entries, c.hooks[event])
	c.mu.RUnlock()

	for _, e := range entries {
		out, err := e.fn(ctx, event, data)
		if errors.Is(err, ErrInterrupt) {
			return out, err
		}
		if err == nil {
			data = out
		}
	}
	return data, nil
}

// Item lifecycle events.
const (
	AfterItemCreate     = "after_item_create"
	AfterItemSplit      = "after_item_split"
	AfterItemBind       = "after_item_bind"
	AfterItemEnchant    = "after_item_enchant"
	AfterItemLimitBreak = "after_item_limit_break"
	BeforeItemEquip     = "before_item_equip"
	AfterItemEquip      = "after_item_equip"
	AfterItemUnequip    = "after_item_unequip"
	OnItemFade          = "on_item_fade"
)
