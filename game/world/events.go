package world

import (
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/plugin/hook"
	"github.com/kasuganosora/rpgcore/server/resource"
)

// Event is the payload passed to hook handlers.
type Event struct {
	Type     string       `json:"type"`
	Time     float64      `json:"time"`
	ActorID  core.ActorID `json:"actor_id,omitempty"`
	TargetID core.ActorID `json:"target_id,omitempty"`
	WeaponID string       `json:"weapon_id,omitempty"`
	Amount   float64      `json:"amount,omitempty"`
	Level    int          `json:"level,omitempty"`
	Position *core.Vec3   `json:"position,omitempty"`
}

func (w *World) emit(ev Event) {
	if w.hooks == nil {
		return
	}
	ev.Time = w.timeline.Now()
	if _, err := w.hooks.Trigger(w.ctx, ev.Type, ev); err != nil {
		w.logger.Warn("hook chain interrupted", zap.String("event", ev.Type), zap.Error(err))
	}
}

// watch forwards an actor's component events to the hook center.
func (w *World) watch(a *Actor) {
	id := a.id
	a.unsubscribe = append(a.unsubscribe,
		a.health.OnDamage(func(amount float64) {
			w.emit(Event{Type: hook.OnActorDamaged, ActorID: id, Amount: amount})
		}),
		a.health.OnDie(func() {
			w.logger.Info("actor died", zap.String("actor_id", id.String()), zap.String("name", a.name))
			w.emit(Event{Type: hook.AfterActorDeath, ActorID: id})
		}),
		a.stats.OnLevelUp(func(level int) {
			w.logger.Info("actor levelled up", zap.String("actor_id", id.String()), zap.Int("level", level))
			w.emit(Event{Type: hook.OnLevelUp, ActorID: id, Level: level})
		}),
		a.fighter.OnWeaponEquipped(func(spec *resource.Weapon) {
			w.emit(Event{Type: hook.OnWeaponEquipped, ActorID: id, WeaponID: spec.ID})
		}),
	)
	if a.ai != nil {
		a.unsubscribe = append(a.unsubscribe, a.ai.OnAggravated(func() {
			w.emit(Event{Type: hook.OnAggravate, ActorID: id})
		}))
	}
}
