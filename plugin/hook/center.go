package hook

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrInterrupt stops the handler chain. Trigger returns it to the caller.
var ErrInterrupt = errors.New("hook interrupted")

// Events raised by the combat world.
const (
	AfterActorDeath    = "after_actor_death"
	OnActorDamaged     = "on_actor_damaged"
	OnLevelUp          = "on_level_up"
	OnWeaponEquipped   = "on_weapon_equipped"
	OnAggravate        = "on_aggravate"
	OnProjectileImpact = "on_projectile_impact"
)

// Events lists every event the world raises.
func Events() []string {
	return []string{AfterActorDeath, OnActorDamaged, OnLevelUp, OnWeaponEquipped, OnAggravate, OnProjectileImpact}
}

// HookFn handles one event. The returned data is passed to the next handler.
type HookFn func(ctx context.Context, event string, data any) (any, error)

type registration struct {
	name     string
	priority int
	fn       HookFn
}

// HookCenter dispatches events to handlers ordered by priority. Handlers
// with equal priority run in registration order.
type HookCenter struct {
	mu       sync.RWMutex
	handlers map[string][]registration
}

// NewHookCenter returns an empty HookCenter.
func NewHookCenter() *HookCenter {
	return &HookCenter{handlers: make(map[string][]registration)}
}

// Register adds fn for event. Lower priorities run first; name identifies
// the handler for Unregister.
func (hc *HookCenter) Register(event string, priority int, name string, fn HookFn) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	list := append(hc.handlers[event], registration{name: name, priority: priority, fn: fn})
	sort.SliceStable(list, func(i, j int) bool { return list[i].priority < list[j].priority })
	hc.handlers[event] = list
}

// Unregister drops every handler called name from event.
func (hc *HookCenter) Unregister(event, name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.handlers[event] = without(hc.handlers[event], name)
}

// UnregisterAll drops every handler called name from all events.
func (hc *HookCenter) UnregisterAll(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	for event, list := range hc.handlers {
		hc.handlers[event] = without(list, name)
	}
}

func without(list []registration, name string) []registration {
	kept := list[:0]
	for _, r := range list {
		if r.name != name {
			kept = append(kept, r)
		}
	}
	return kept
}

// Count is the number of handlers registered for event.
func (hc *HookCenter) Count(event string) int {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return len(hc.handlers[event])
}

// Trigger runs the handlers for event in order, threading data through
// them. Errors other than ErrInterrupt do not stop the chain.
func (hc *HookCenter) Trigger(ctx context.Context, event string, data any) (any, error) {
	hc.mu.RLock()
	list := append([]registration(nil), hc.handlers[event]...)
	hc.mu.RUnlock()

	for _, r := range list {
		out, err := r.fn(ctx, event, data)
		data = out
		if errors.Is(err, ErrInterrupt) {
			return data, err
		}
	}
	return data, nil
}
