package world

import (
	"github.com/kasuganosora/rpgcore/server/game/combat"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/stats"
)

// ActorView is the read-only state of one actor.
type ActorView struct {
	ID         core.ActorID     `json:"id"`
	Name       string           `json:"name"`
	Tag        string           `json:"tag,omitempty"`
	Class      string           `json:"class"`
	Level      int              `json:"level"`
	Position   core.Vec3        `json:"position"`
	Yaw        float64          `json:"yaw"`
	Health     float64          `json:"health"`
	MaxHealth  float64          `json:"max_health"`
	Dead       bool             `json:"dead"`
	Experience *float64         `json:"experience,omitempty"`
	Damage     float64          `json:"damage"`
	Weapon     string           `json:"weapon"`
	Visuals    []*combat.Visual `json:"visuals"`
	Target     core.ActorID     `json:"target,omitempty"`
	Moving     bool             `json:"moving"`
	Speed      float64          `json:"speed"`
	AIState    string           `json:"ai_state,omitempty"`
	Cue        string           `json:"cue,omitempty"`
	Override   string           `json:"override,omitempty"`
}

// ProjectileView is the read-only state of a projectile in flight.
type ProjectileView struct {
	ID       string       `json:"id"`
	Position core.Vec3    `json:"position"`
	Target   core.ActorID `json:"target"`
	Impacted bool         `json:"impacted"`
}

// PickupView is the read-only state of a weapon pickup.
type PickupView struct {
	Weapon   string    `json:"weapon"`
	Position core.Vec3 `json:"position"`
	Visible  bool      `json:"visible"`
}

// Snapshot is a consistent copy of the world between two ticks.
type Snapshot struct {
	Time        float64          `json:"time"`
	Actors      []ActorView      `json:"actors"`
	Projectiles []ProjectileView `json:"projectiles"`
	Pickups     []PickupView     `json:"pickups"`
	Effects     []Effect         `json:"effects"`
}

// Snapshot copies the world state under the world lock.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		Time:        w.timeline.Now(),
		Actors:      make([]ActorView, 0, len(w.order)),
		Projectiles: make([]ProjectileView, 0, len(w.projectiles)),
		Pickups:     make([]PickupView, 0, len(w.pickups)),
		Effects:     make([]Effect, 0, len(w.effects)),
	}
	for _, a := range w.order {
		s.Actors = append(s.Actors, a.View())
	}
	for _, f := range w.projectiles {
		p := f.projectile
		s.Projectiles = append(s.Projectiles, ProjectileView{
			ID: p.ID(), Position: p.Position(), Target: p.Target(), Impacted: p.Impacted(),
		})
	}
	for _, p := range w.pickups {
		s.Pickups = append(s.Pickups, PickupView{Weapon: p.Weapon().ID, Position: p.Position(), Visible: p.Visible()})
	}
	for _, e := range w.effects {
		s.Effects = append(s.Effects, *e)
	}
	return s
}

// View returns a copy of a single actor's state.
func (w *World) View(id core.ActorID) (ActorView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, err := w.Actor(id)
	if err != nil {
		return ActorView{}, err
	}
	return a.View(), nil
}

// View copies the actor's state. Outside of Exec use World.View.
func (a *Actor) View() ActorView {
	v := ActorView{
		ID:        a.id,
		Name:      a.name,
		Tag:       a.tag,
		Class:     string(a.stats.Class()),
		Level:     a.stats.GetLevel(),
		Position:  a.transform.Position,
		Yaw:       a.transform.Yaw,
		Health:    a.health.HealthPoints(),
		MaxHealth: a.health.MaxHealthPoints(),
		Dead:      a.health.IsDead(),
		Damage:    a.stats.GetStat(stats.Damage),
		Weapon:    a.fighter.Weapon().Spec.ID,
		Visuals:   a.hands.Visuals(),
		Target:    a.fighter.Target(),
		Moving:    a.mover.IsMoving(),
		Speed:     a.animator.speed,
		Cue:       a.animator.lastCue,
		Override:  a.animator.override,
	}
	if a.experience != nil {
		xp := a.experience.Points()
		v.Experience = &xp
	}
	if a.ai != nil {
		v.AIState = a.ai.State().String()
	}
	return v
}
