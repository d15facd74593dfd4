package control

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/rpgcore/server/game/ai"
	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/combat"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
	"github.com/kasuganosora/rpgcore/server/game/stats"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

var club = &resource.Weapon{ID: "club", Range: 1.5, Damage: 1, AttackCadence: 1, Hand: resource.HandRight}

type actor struct {
	id        core.ActorID
	transform *core.Transform
	health    *attributes.Health
	stats     *stats.BaseStats
	actions   *core.ActionScheduler
	mover     *movement.Mover
	fighter   *combat.Fighter
	ai        *AIController
}

func (a *actor) ID() core.ActorID              { return a.id }
func (a *actor) Health() *attributes.Health    { return a.health }
func (a *actor) Position() core.Vec3           { return a.transform.Position }
func (a *actor) AimPoint() core.Vec3           { return a.transform.Position.Add(core.Up) }
func (a *actor) Contains(p core.Vec3) bool     { return p.Dist(a.AimPoint()) <= 0.5 }
func (a *actor) Experience() *stats.Experience { return nil }

type env struct {
	order      []*actor
	byID       map[core.ActorID]*actor
	player     *actor
	timeline   *scheduler.Timeline
	pathfinder movement.Pathfinder
	prog       *stats.Progression
}

func newEnv(t *testing.T) *env {
	t.Helper()
	p, err := stats.NewProgression(&resource.ProgressionData{Classes: []*resource.ProgressionClass{
		{Class: "any", Stats: map[string][]float64{"health": {50}, "damage": {1}}},
	}})
	require.NoError(t, err)
	return &env{
		byID:       make(map[core.ActorID]*actor),
		timeline:   scheduler.NewTimeline(),
		pathfinder: ai.NewGridPathfinder(resource.NewPassabilityMap(40, 40)),
		prog:       p,
	}
}

func (e *env) Resolve(id core.ActorID) (combat.Target, bool) {
	a, ok := e.byID[id]
	if !ok {
		return nil, false
	}
	return a, true
}

func (e *env) AddProjectile(*combat.Projectile) {}
func (e *env) SpawnEffect(string, core.Vec3)    {}
func (e *env) Timeline() *scheduler.Timeline    { return e.timeline }

func (e *env) Player() (combat.Target, bool) {
	if e.player == nil {
		return nil, false
	}
	return e.player, true
}

func (e *env) NearbyControllers(center core.Vec3, radius float64) []*AIController {
	var out []*AIController
	for _, a := range e.order {
		if a.ai != nil && a.Position().Dist(center) <= radius {
			out = append(out, a.ai)
		}
	}
	return out
}

func (e *env) spawn(t *testing.T, id core.ActorID, pos core.Vec3) *actor {
	t.Helper()
	a := &actor{id: id, transform: &core.Transform{Position: pos}, actions: &core.ActionScheduler{}}
	var err error
	a.stats, err = stats.New(stats.Config{Class: "any", Progression: e.prog})
	require.NoError(t, err)
	a.health, err = attributes.NewHealth(attributes.HealthConfig{Owner: id, Stats: a.stats, Actions: a.actions})
	require.NoError(t, err)
	a.mover, err = movement.New(movement.Config{Owner: id, Transform: a.transform, Pathfinder: e.pathfinder,
		Actions: a.actions, Health: a.health, MaxSpeed: 4, MaxPathLength: 40})
	require.NoError(t, err)
	a.fighter, err = combat.NewFighter(combat.FighterConfig{Self: a, Instigator: a, Transform: a.transform,
		Stats: a.stats, Mover: a.mover, Actions: a.actions, Arena: e, DefaultWeapon: club})
	require.NoError(t, err)
	e.order = append(e.order, a)
	e.byID[id] = a
	return a
}

func (e *env) spawnGuard(t *testing.T, id core.ActorID, pos core.Vec3, path *PatrolPath) *actor {
	t.Helper()
	a := e.spawn(t, id, pos)
	a.ai = NewAIController(AIConfig{
		Self: id, Transform: a.transform, Health: a.health, Fighter: a.fighter, Mover: a.mover,
		Actions: a.actions, Patrol: path, Surroundings: e,
	})
	return a
}

func (e *env) step(dt float64) {
	e.timeline.Advance(dt)
	for _, a := range e.order {
		if a.ai != nil {
			a.ai.Tick(dt)
		}
		a.fighter.Tick(dt)
		a.mover.Tick(dt)
	}
}
