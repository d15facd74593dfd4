package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/stats"
)

func TestNewFighter_Validation(t *testing.T) {
	_, err := NewFighter(FighterConfig{})
	assert.Error(t, err)

	w := newArena(t)
	a := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, nil)
	_, err = NewFighter(FighterConfig{Self: a, Transform: a.transform, Stats: a.stats, Mover: a.mover, Arena: w})
	assert.ErrorIs(t, err, ErrUnknownWeapon)
}

func TestFighter_WeaponModifiesDamage(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, sword)
	// (10 base + 10 sword) * (1 + 50%)
	assert.InDelta(t, 30.0, hero.stats.GetStat(stats.Damage), 1e-9)
	assert.Nil(t, hero.fighter.AdditiveModifiers(stats.Health))
	assert.Nil(t, hero.fighter.PercentageModifiers(stats.Health))

	hero.fighter.EquipWeapon(unarmed)
	assert.InDelta(t, 11.0, hero.stats.GetStat(stats.Damage), 1e-9)
}

func TestFighter_ChasesThenAttacks(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 5}, sword)
	w.spawn(t, "g1", "grunt", core.Vec3{X: 11, Z: 5}, nil)

	require.True(t, hero.fighter.CanAttack("g1"))
	hero.fighter.Attack("g1")
	assert.Same(t, hero.fighter, hero.actions.Current())

	for i := 0; i < 40 && len(hero.animator.cues) == 0; i++ {
		w.step(0.1)
	}
	require.Equal(t, []string{core.CueAttack}, hero.animator.cues, "first swing is immediate once in range")
	assert.Less(t, hero.transform.Position.Dist(core.Vec3{X: 11, Z: 5}), sword.Range)
	assert.False(t, hero.mover.IsMoving())

	// Cadence is one second.
	for i := 0; i < 9; i++ {
		w.step(0.1)
	}
	assert.Len(t, hero.animator.cues, 1)
	w.step(0.15)
	w.step(0.1)
	assert.Len(t, hero.animator.cues, 2)
}

func TestFighter_HitKillsAndAwardsExperience(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, sword)
	grunt := w.spawn(t, "g1", "grunt", core.Vec3{X: 2, Z: 1}, nil)

	hero.fighter.Hit() // no target yet
	assert.Equal(t, 30.0, grunt.health.HealthPoints())

	hero.fighter.Attack("g1")
	hero.fighter.Hit()
	assert.True(t, grunt.health.IsDead())
	assert.Equal(t, 25.0, hero.xp.Points())

	hero.fighter.Hit()
	assert.Equal(t, 25.0, hero.xp.Points(), "dead targets take no more hits")
	assert.False(t, hero.fighter.CanAttack("g1"))

	hero.animator.cues = nil
	w.step(1)
	assert.Empty(t, hero.animator.cues, "dead target is never swung at")
}

func TestFighter_HitAfterTargetRemoved(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, sword)
	w.spawn(t, "g1", "grunt", core.Vec3{X: 2, Z: 1}, nil)
	hero.fighter.Attack("g1")
	delete(w.actors, "g1")

	assert.NotPanics(t, func() {
		hero.fighter.Hit()
		hero.fighter.Tick(0.1)
	})
}

func TestFighter_Cancel(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, sword)
	w.spawn(t, "g1", "grunt", core.Vec3{X: 20, Z: 1}, nil)
	hero.fighter.Attack("g1")
	w.step(0.1)
	require.True(t, hero.mover.IsMoving())

	hero.mover.StartMoveAction(core.Vec3{X: 1, Z: 10}, 1)
	assert.Contains(t, hero.animator.cues, core.CueStopAttack)
	assert.Equal(t, core.ActorID(""), hero.fighter.Target())
	assert.Same(t, hero.mover, hero.actions.Current())
	assert.True(t, hero.mover.IsMoving(), "the new move survives the cancel")
}

func TestFighter_CanAttack(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, sword)
	w.spawn(t, "near", "grunt", core.Vec3{X: 2, Z: 1}, nil)
	w.spawn(t, "far", "grunt", core.Vec3{X: 38, Z: 38}, nil)
	dead := w.spawn(t, "dead", "grunt", core.Vec3{X: 3, Z: 1}, nil)
	dead.health.TakeDamage(nil, 100)

	assert.True(t, hero.fighter.CanAttack("near"))
	assert.False(t, hero.fighter.CanAttack(""))
	assert.False(t, hero.fighter.CanAttack("hero"))
	assert.False(t, hero.fighter.CanAttack("ghost"))
	assert.False(t, hero.fighter.CanAttack("dead"))
	assert.False(t, hero.fighter.CanAttack("far"), "path longer than the navigation limit")
}

func TestFighter_EquipKeepsTargetAndSingleVisual(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, sword)
	w.spawn(t, "g1", "grunt", core.Vec3{X: 2, Z: 1}, nil)
	hero.fighter.Attack("g1")

	require.Len(t, hero.hands.Visuals(), 1)
	first := hero.hands.Visuals()[0]

	hero.fighter.EquipWeapon(bow)
	visuals := hero.hands.Visuals()
	require.Len(t, visuals, 1)
	assert.Equal(t, "Bow", visuals[0].Prefab)
	assert.NotEqual(t, first.ID, visuals[0].ID)
	assert.Equal(t, core.ActorID("g1"), hero.fighter.Target())
	assert.Equal(t, []string{"sword", ""}, hero.animator.overrides)

	hero.fighter.EquipWeapon(unarmed)
	assert.Empty(t, hero.hands.Visuals())
}

func TestFighter_CaptureRestore(t *testing.T) {
	w := newArena(t)
	hero := w.spawn(t, "hero", "hero", core.Vec3{X: 1, Z: 1}, sword)
	hero.fighter.EquipWeapon(bow)
	state, err := hero.fighter.CaptureState()
	require.NoError(t, err)

	other := w.spawn(t, "other", "hero", core.Vec3{X: 5, Z: 5}, unarmed)
	require.NoError(t, other.fighter.RestoreState(state))
	assert.Equal(t, "bow", other.fighter.Weapon().Spec.ID)

	err = other.fighter.RestoreState([]byte(`"axe"`))
	assert.ErrorIs(t, err, ErrUnknownWeapon)
	assert.Equal(t, "bow", other.fighter.Weapon().Spec.ID)
}

func TestFighter_RangedHitLaunchesProjectile(t *testing.T) {
	w := newArena(t)
	archer := w.spawn(t, "archer", "hero", core.Vec3{X: 1, Z: 1}, bow)
	grunt := w.spawn(t, "g1", "grunt", core.Vec3{X: 6, Z: 1}, nil)
	archer.fighter.Attack("g1")
	archer.fighter.Hit()

	require.Len(t, w.projectiles, 1)
	assert.Equal(t, 30.0, grunt.health.HealthPoints(), "damage waits for the projectile")

	for i := 0; i < 20 && !w.projectiles[0].Impacted(); i++ {
		w.step(0.05)
	}
	assert.True(t, w.projectiles[0].Impacted())
	assert.Equal(t, 15.0, grunt.health.HealthPoints())
	assert.Equal(t, []string{"Spark"}, w.effects)
}
