package combat

import (
	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

// Target is an actor that can be attacked.
type Target interface {
	ID() core.ActorID
	Health() *attributes.Health
	Position() core.Vec3
	// AimPoint is where projectiles home in: the collider centre.
	AimPoint() core.Vec3
	// Contains reports whether p lies inside the actor's collider.
	Contains(p core.Vec3) bool
}

// Arena is what combat needs from the running simulation.
type Arena interface {
	// Resolve looks up a live actor. Destroyed actors are reported missing.
	Resolve(id core.ActorID) (Target, bool)
	AddProjectile(p *Projectile)
	SpawnEffect(effect string, at core.Vec3)
	Timeline() *scheduler.Timeline
}

// WeaponCatalog finds weapon definitions by ID.
type WeaponCatalog interface {
	WeaponByID(id string) *resource.Weapon
}
