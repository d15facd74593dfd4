package control

import (
	"github.com/kasuganosora/rpgcore/server/game/combat"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
)

// PlayerController turns player commands into actions.
type PlayerController struct {
	health  movement.Vitality
	fighter *combat.Fighter
	mover   *movement.Mover
}

// NewPlayerController creates a controller for the given components.
func NewPlayerController(health movement.Vitality, fighter *combat.Fighter, mover *movement.Mover) *PlayerController {
	return &PlayerController{health: health, fighter: fighter, mover: mover}
}

// InteractWithCombat starts attacking target. It reports false, and does
// nothing, when the player is dead or the target cannot be attacked.
func (p *PlayerController) InteractWithCombat(target core.ActorID) bool {
	if p.dead() || p.fighter == nil || !p.fighter.CanAttack(target) {
		return false
	}
	p.fighter.Attack(target)
	return true
}

// InteractWithMovement walks to dest at full speed when it is reachable.
func (p *PlayerController) InteractWithMovement(dest core.Vec3) bool {
	if p.dead() || !p.mover.CanMoveTo(dest) {
		return false
	}
	p.mover.StartMoveAction(dest, 1)
	return true
}

func (p *PlayerController) dead() bool {
	return p.health != nil && p.health.IsDead()
}
