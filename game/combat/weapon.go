package combat

import (
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/resource"
)

// Weapon is an equipped weapon: its definition plus the visual it created.
type Weapon struct {
	Spec   *resource.Weapon
	Visual *Visual
}

// Equip swaps the actor's weapon in one step: old visuals are destroyed,
// the new prefab is attached to its hand and the animation set is
// overridden.
func Equip(spec *resource.Weapon, hands *Hands, animator core.Animator) *Weapon {
	hands.Clear()
	w := &Weapon{Spec: spec}
	if spec.Prefab != "" {
		w.Visual = hands.Attach(spec.Hand, spec.Prefab)
	}
	animator.SetOverride(spec.AnimationOverride)
	return w
}

// Hit describes one resolved attack.
type Hit struct {
	Instigator attributes.Instigator
	Target     Target
	Damage     float64
	// Origin is where a projectile leaves the attacker.
	Origin core.Vec3
	Logger *zap.Logger
}

// ResolveHit delivers hit. Ranged weapons launch a projectile and return;
// melee weapons damage the target immediately.
func (w *Weapon) ResolveHit(arena Arena, hit Hit) {
	if w.Spec.IsRanged() {
		arena.AddProjectile(NewProjectile(arena, ProjectileConfig{
			Spec:       w.Spec.Projectile,
			Origin:     hit.Origin,
			Target:     hit.Target.ID(),
			Instigator: hit.Instigator,
			Damage:     hit.Damage,
			Logger:     hit.Logger,
		}))
		return
	}
	hit.Target.Health().TakeDamage(hit.Instigator, hit.Damage)
}
