package combat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/rpgcore/server/game/ai"
	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
	"github.com/kasuganosora/rpgcore/server/game/stats"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

var (
	sword = &resource.Weapon{ID: "sword", Range: 2, Damage: 10, PercentageBonus: 50, AttackCadence: 1,
		Hand: resource.HandRight, Prefab: "Sword", AnimationOverride: "sword"}
	unarmed = &resource.Weapon{ID: "unarmed", Range: 1.5, Damage: 1, AttackCadence: 0.5, Hand: resource.HandRight}
	bow     = &resource.Weapon{ID: "bow", Range: 10, Damage: 5, AttackCadence: 1.5, Hand: resource.HandLeft, Prefab: "Bow",
		Projectile: &resource.Projectile{Speed: 10, Homing: true, MaxLifetime: 10, LifetimeAfterImpact: 2, HitEffect: "Spark"}}
)

type catalog map[string]*resource.Weapon

func (c catalog) WeaponByID(id string) *resource.Weapon { return c[id] }

type cueAnimator struct {
	cues      []string
	overrides []string
}

func (a *cueAnimator) PlayCue(c string)           { a.cues = append(a.cues, c) }
func (a *cueAnimator) SetLocomotionSpeed(float64) {}
func (a *cueAnimator) SetOverride(n string)       { a.overrides = append(a.overrides, n) }

type testActor struct {
	id        core.ActorID
	transform *core.Transform
	health    *attributes.Health
	stats     *stats.BaseStats
	xp        *stats.Experience
	mover     *movement.Mover
	fighter   *Fighter
	animator  *cueAnimator
	hands     *Hands
	actions   *core.ActionScheduler
	radius    float64
	height    float64
}

func (a *testActor) ID() core.ActorID              { return a.id }
func (a *testActor) Health() *attributes.Health    { return a.health }
func (a *testActor) Position() core.Vec3           { return a.transform.Position }
func (a *testActor) AimPoint() core.Vec3           { return a.transform.Position.Add(core.Up.Scale(a.height / 2)) }
func (a *testActor) Experience() *stats.Experience { return a.xp }

func (a *testActor) Contains(p core.Vec3) bool {
	pos := a.transform.Position
	return p.Flat().Dist(pos.Flat()) <= a.radius && p.Y >= pos.Y && p.Y <= pos.Y+a.height
}

type testArena struct {
	actors      map[core.ActorID]*testActor
	projectiles []*Projectile
	effects     []string
	timeline    *scheduler.Timeline
	pathfinder  movement.Pathfinder
	progression *stats.Progression
}

func newArena(t *testing.T) *testArena {
	t.Helper()
	p, err := stats.NewProgression(&resource.ProgressionData{Classes: []*resource.ProgressionClass{
		{Class: "hero", Stats: map[string][]float64{"health": {100}, "damage": {10}}},
		{Class: "grunt", Stats: map[string][]float64{"health": {30}, "damage": {2}, "experience_reward": {25}}},
	}})
	require.NoError(t, err)
	return &testArena{
		actors:      make(map[core.ActorID]*testActor),
		timeline:    scheduler.NewTimeline(),
		pathfinder:  ai.NewGridPathfinder(resource.NewPassabilityMap(40, 40)),
		progression: p,
	}
}

func (w *testArena) Resolve(id core.ActorID) (Target, bool) {
	a, ok := w.actors[id]
	if !ok {
		return nil, false
	}
	return a, true
}

func (w *testArena) AddProjectile(p *Projectile)       { w.projectiles = append(w.projectiles, p) }
func (w *testArena) SpawnEffect(e string, _ core.Vec3) { w.effects = append(w.effects, e) }
func (w *testArena) Timeline() *scheduler.Timeline     { return w.timeline }

func (w *testArena) step(dt float64) {
	w.timeline.Advance(dt)
	for _, a := range w.actors {
		if a.fighter != nil {
			a.fighter.Tick(dt)
		}
	}
	for _, a := range w.actors {
		if a.mover != nil {
			a.mover.Tick(dt)
		}
	}
	for _, p := range w.projectiles {
		p.Tick(dt)
	}
}

func (w *testArena) spawn(t *testing.T, id core.ActorID, class stats.CharacterClass, pos core.Vec3, weapon *resource.Weapon) *testActor {
	t.Helper()
	a := &testActor{
		id:        id,
		transform: &core.Transform{Position: pos},
		xp:        stats.NewExperience(),
		animator:  &cueAnimator{},
		actions:   &core.ActionScheduler{},
		radius:    0.5,
		height:    2,
	}
	a.hands = NewHands(nil)
	var err error
	a.stats, err = stats.New(stats.Config{Class: class, Progression: w.progression, UsePercentageModifiers: true})
	require.NoError(t, err)
	a.health, err = attributes.NewHealth(attributes.HealthConfig{Owner: id, Stats: a.stats, Actions: a.actions, Animator: a.animator})
	require.NoError(t, err)
	a.mover, err = movement.New(movement.Config{
		Owner: id, Transform: a.transform, Pathfinder: w.pathfinder, Actions: a.actions,
		Animator: a.animator, Health: a.health, MaxSpeed: 4, MaxPathLength: 30,
	})
	require.NoError(t, err)
	if weapon != nil {
		a.fighter, err = NewFighter(FighterConfig{
			Self: a, Instigator: a, Transform: a.transform, Stats: a.stats, Mover: a.mover,
			Actions: a.actions, Animator: a.animator, Hands: a.hands, Arena: w,
			Catalog: catalog{"sword": sword, "unarmed": unarmed, "bow": bow}, DefaultWeapon: weapon,
		})
		require.NoError(t, err)
	}
	w.actors[id] = a
	return a
}
