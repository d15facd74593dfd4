package combat

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
	"github.com/kasuganosora/rpgcore/server/game/stats"
	"github.com/kasuganosora/rpgcore/server/resource"
)

// ErrUnknownWeapon is returned when a weapon ID cannot be resolved.
var ErrUnknownWeapon = errors.New("combat: unknown weapon")

// FighterConfig wires a Fighter to its actor.
type FighterConfig struct {
	Self          Target
	Instigator    attributes.Instigator
	Transform     *core.Transform
	Stats         *stats.BaseStats
	Mover         *movement.Mover
	Actions       *core.ActionScheduler
	Animator      core.Animator
	Hands         *Hands
	Arena         Arena
	Catalog       WeaponCatalog
	DefaultWeapon *resource.Weapon
	Logger        *zap.Logger
}

// Fighter pursues a target and attacks it at the weapon's cadence.
// Damage lands when the animation reaches its hit frame and calls Hit.
type Fighter struct {
	self       Target
	instigator attributes.Instigator
	transform  *core.Transform
	stats      *stats.BaseStats
	mover      *movement.Mover
	actions    *core.ActionScheduler
	animator   core.Animator
	hands      *Hands
	arena      Arena
	catalog    WeaponCatalog
	logger     *zap.Logger

	target              core.ActorID
	timeSinceLastAttack float64
	weapon              *Weapon
	equipped            core.Observers[*resource.Weapon]
}

// NewFighter creates a Fighter holding DefaultWeapon and registers it as a
// modifier provider on the actor's stats.
func NewFighter(cfg FighterConfig) (*Fighter, error) {
	if cfg.Self == nil || cfg.Transform == nil || cfg.Stats == nil || cfg.Mover == nil || cfg.Arena == nil {
		return nil, errors.New("combat: fighter is missing a collaborator")
	}
	if cfg.DefaultWeapon == nil {
		return nil, fmt.Errorf("%w: actor %s has no default weapon", ErrUnknownWeapon, cfg.Self.ID())
	}
	if cfg.Actions == nil {
		cfg.Actions = &core.ActionScheduler{}
	}
	if cfg.Animator == nil {
		cfg.Animator = core.NopAnimator{}
	}
	if cfg.Hands == nil {
		cfg.Hands = NewHands(cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	f := &Fighter{
		self:                cfg.Self,
		instigator:          cfg.Instigator,
		transform:           cfg.Transform,
		stats:               cfg.Stats,
		mover:               cfg.Mover,
		actions:             cfg.Actions,
		animator:            cfg.Animator,
		hands:               cfg.Hands,
		arena:               cfg.Arena,
		catalog:             cfg.Catalog,
		logger:              cfg.Logger,
		timeSinceLastAttack: math.Inf(1),
	}
	f.EquipWeapon(cfg.DefaultWeapon)
	cfg.Stats.AddModifierProvider(f)
	return f, nil
}

// Weapon is the equipped weapon.
func (f *Fighter) Weapon() *Weapon { return f.weapon }

// Target is the current target ID, empty when idle.
func (f *Fighter) Target() core.ActorID { return f.target }

// EquipWeapon replaces the current weapon. The target is kept.
func (f *Fighter) EquipWeapon(spec *resource.Weapon) {
	f.weapon = Equip(spec, f.hands, f.animator)
	f.logger.Debug("weapon equipped",
		zap.String("actor_id", f.self.ID().String()),
		zap.String("weapon", spec.ID))
	f.equipped.Notify(spec)
}

// OnWeaponEquipped observes every later weapon change.
func (f *Fighter) OnWeaponEquipped(fn func(*resource.Weapon)) (unsubscribe func()) {
	return f.equipped.Add(fn)
}

// Attack takes the action slot and sets the target.
func (f *Fighter) Attack(target core.ActorID) {
	f.actions.StartAction(f)
	f.target = target
}

// Cancel stops attacking and stands still.
func (f *Fighter) Cancel() {
	f.animator.PlayCue(core.CueStopAttack)
	f.target = ""
	f.mover.Cancel()
}

// CanAttack reports whether id names a living actor other than this one
// that is in range or reachable.
func (f *Fighter) CanAttack(id core.ActorID) bool {
	if id == "" || id == f.self.ID() {
		return false
	}
	t, ok := f.arena.Resolve(id)
	if !ok || t.Health().IsDead() {
		return false
	}
	return f.inRange(t) || f.mover.CanMoveTo(t.Position())
}

// Tick chases the target until in range, then attacks at the weapon cadence.
func (f *Fighter) Tick(dt float64) {
	f.timeSinceLastAttack += dt
	if f.target == "" {
		return
	}
	t, ok := f.arena.Resolve(f.target)
	if !ok || t.Health().IsDead() {
		return
	}
	if !f.inRange(t) {
		f.mover.MoveTo(t.Position(), 1)
		return
	}
	f.mover.Cancel()
	f.attackBehaviour(t)
}

func (f *Fighter) attackBehaviour(t Target) {
	f.transform.LookAt(t.Position())
	if f.timeSinceLastAttack > f.weapon.Spec.AttackCadence {
		f.animator.PlayCue(core.CueAttack)
		f.timeSinceLastAttack = 0
	}
}

func (f *Fighter) inRange(t Target) bool {
	return f.transform.Position.Dist(t.Position()) < f.weapon.Spec.Range
}

// Hit is the animation hit event. Damage is resolved only if the target is
// still present and alive.
func (f *Fighter) Hit() {
	if f.target == "" {
		return
	}
	t, ok := f.arena.Resolve(f.target)
	if !ok || t.Health().IsDead() {
		return
	}
	f.weapon.ResolveHit(f.arena, Hit{
		Instigator: f.instigator,
		Target:     t,
		Damage:     f.stats.GetStat(stats.Damage),
		Origin:     f.self.AimPoint(),
		Logger:     f.logger,
	})
}

func (f *Fighter) AdditiveModifiers(stat stats.Stat) []float64 {
	if stat == stats.Damage {
		return []float64{f.weapon.Spec.Damage}
	}
	return nil
}

func (f *Fighter) PercentageModifiers(stat stats.Stat) []float64 {
	if stat == stats.Damage {
		return []float64{f.weapon.Spec.PercentageBonus}
	}
	return nil
}

func (f *Fighter) CaptureState() (json.RawMessage, error) {
	return json.Marshal(f.weapon.Spec.ID)
}

// RestoreState re-equips the saved weapon.
func (f *Fighter) RestoreState(state json.RawMessage) error {
	var id string
	if err := json.Unmarshal(state, &id); err != nil {
		return fmt.Errorf("combat: restore fighter: %w", err)
	}
	if f.catalog == nil {
		return fmt.Errorf("%w: %q (no catalog)", ErrUnknownWeapon, id)
	}
	spec := f.catalog.WeaponByID(id)
	if spec == nil {
		return fmt.Errorf("%w: %q", ErrUnknownWeapon, id)
	}
	f.EquipWeapon(spec)
	return nil
}
