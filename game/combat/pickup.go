package combat

import (
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

// WeaponPickup equips whoever walks into it, then hides until it respawns.
type WeaponPickup struct {
	weapon   *resource.Weapon
	position core.Vec3
	radius   float64
	respawn  float64
	timeline *scheduler.Timeline

	hidden bool
	show   *scheduler.Continuation
}

// NewWeaponPickup places a visible pickup.
func NewWeaponPickup(spec *resource.PickupSpawn, weapon *resource.Weapon, timeline *scheduler.Timeline) *WeaponPickup {
	return &WeaponPickup{
		weapon:   weapon,
		position: spec.Position,
		radius:   spec.Radius,
		respawn:  spec.Respawn,
		timeline: timeline,
	}
}

func (p *WeaponPickup) Weapon() *resource.Weapon { return p.weapon }
func (p *WeaponPickup) Position() core.Vec3      { return p.position }
func (p *WeaponPickup) Visible() bool            { return !p.hidden }

// Offer lets a fighter standing at pos take the weapon. It reports whether
// the weapon was taken.
func (p *WeaponPickup) Offer(f *Fighter, pos core.Vec3) bool {
	if p.hidden || pos.Flat().Dist(p.position.Flat()) > p.radius {
		return false
	}
	f.EquipWeapon(p.weapon)
	p.hidden = true
	p.show = p.timeline.Schedule(p.respawn, func() { p.hidden = false })
	return true
}

// ShowNow makes the pickup available immediately.
func (p *WeaponPickup) ShowNow() {
	p.timeline.Cancel(p.show)
	p.hidden = false
}
