package world

import (
	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/combat"
	"github.com/kasuganosora/rpgcore/server/game/control"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
	"github.com/kasuganosora/rpgcore/server/game/stats"
	"github.com/kasuganosora/rpgcore/server/resource"
)

// PlayerTag marks the actor that AI guards hunt and that can take pickups.
const PlayerTag = "player"

// Default collider used when a spawn has no capsule.
const (
	defaultCapsuleRadius = 0.5
	defaultCapsuleHeight = 2
)

// Actor bundles the components of one scene actor.
type Actor struct {
	id      core.ActorID
	name    string
	tag     string
	capsule resource.Capsule

	transform  *core.Transform
	actions    *core.ActionScheduler
	animator   *cueAnimator
	stats      *stats.BaseStats
	experience *stats.Experience
	health     *attributes.Health
	mover      *movement.Mover
	hands      *combat.Hands
	fighter    *combat.Fighter
	ai         *control.AIController
	commands   *control.PlayerController

	unsubscribe []func()
}

func (a *Actor) ID() core.ActorID               { return a.id }
func (a *Actor) Name() string                   { return a.name }
func (a *Actor) Tag() string                    { return a.tag }
func (a *Actor) IsPlayer() bool                 { return a.tag == PlayerTag }
func (a *Actor) Health() *attributes.Health     { return a.health }
func (a *Actor) Stats() *stats.BaseStats        { return a.stats }
func (a *Actor) Fighter() *combat.Fighter       { return a.fighter }
func (a *Actor) Mover() *movement.Mover         { return a.mover }
func (a *Actor) AI() *control.AIController      { return a.ai }
func (a *Actor) Position() core.Vec3            { return a.transform.Position }
func (a *Actor) Transform() *core.Transform     { return a.transform }
func (a *Actor) Actions() *core.ActionScheduler { return a.actions }

// Experience is nil for actors without an experience pool.
func (a *Actor) Experience() *stats.Experience { return a.experience }

// Commands is the command interface used by the control API. AI actors
// have none.
func (a *Actor) Commands() *control.PlayerController { return a.commands }

// AimPoint is the middle of the actor's capsule.
func (a *Actor) AimPoint() core.Vec3 {
	return a.transform.Position.Add(core.Up.Scale(a.capsule.Height / 2))
}

// Contains reports whether p lies inside the actor's upright capsule.
func (a *Actor) Contains(p core.Vec3) bool {
	r := a.capsule.Radius
	bottom := a.transform.Position.Add(core.Up.Scale(r))
	top := a.transform.Position.Add(core.Up.Scale(max(a.capsule.Height-r, r)))
	y := min(max(p.Y, bottom.Y), top.Y)
	axis := core.Vec3{X: bottom.X, Y: y, Z: bottom.Z}
	return p.Dist(axis) <= r
}

func (a *Actor) saveables() map[string]core.Saveable {
	out := map[string]core.Saveable{
		"health":  a.health,
		"mover":   a.mover,
		"fighter": a.fighter,
	}
	if a.experience != nil {
		out["experience"] = a.experience
	}
	return out
}

func (a *Actor) dispose() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
	a.animator.stop()
	a.health.Close()
	a.stats.Close()
	a.hands.Clear()
}
