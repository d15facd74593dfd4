package world

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/ai"
	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/combat"
	"github.com/kasuganosora/rpgcore/server/game/control"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
	"github.com/kasuganosora/rpgcore/server/game/stats"
	"github.com/kasuganosora/rpgcore/server/plugin/hook"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

var (
	ErrActorNotFound  = errors.New("world: actor not found")
	ErrDuplicateActor = errors.New("world: duplicate actor id")
)

// Config tunes the simulation.
type Config struct {
	TickInterval        time.Duration
	PercentageModifiers bool
	RegenPercent        float64
	MaxSpeed            float64
	MaxPathLength       float64
	HitDelay            float64 // seconds from the attack cue to the hit
	EffectLifetime      float64 // seconds a hit effect stays in snapshots
	DefaultWeapon       string  // used by spawns that name no weapon
	AI                  control.Settings
}

// DefaultConfig matches the shipped config.yaml.
func DefaultConfig() Config {
	return Config{
		TickInterval:        50 * time.Millisecond,
		PercentageModifiers: true,
		RegenPercent:        attributes.DefaultRegenPercent,
		MaxSpeed:            5.66,
		MaxPathLength:       40,
		HitDelay:            0.3,
		EffectLifetime:      1,
		DefaultWeapon:       "unarmed",
		AI:                  control.DefaultSettings(),
	}
}

// Effect is a spawned hit effect.
type Effect struct {
	Name      string    `json:"name"`
	Position  core.Vec3 `json:"position"`
	SpawnedAt float64   `json:"spawned_at"`
}

type flight struct {
	projectile *combat.Projectile
	reported   bool
}

// World owns every actor, projectile and pickup of the loaded scene and
// advances them in fixed ticks.
//
// Step, Exec and Snapshot serialize on the world lock. Every other method
// must be called from inside Exec, from a hook handler, or before Run.
type World struct {
	mu     sync.Mutex
	res    *resource.ResourceLoader
	cfg    Config
	hooks  *hook.HookCenter
	logger *zap.Logger
	ctx    context.Context

	progression *stats.Progression
	pathfinder  *ai.GridPathfinder
	patrols     map[string]*control.PatrolPath
	timeline    *scheduler.Timeline

	actors      map[core.ActorID]*Actor
	order       []*Actor
	player      *Actor
	pickups     []*combat.WeaponPickup
	projectiles []*flight
	effects     []*Effect

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New builds the world from loaded resources and spawns the scene.
// hooks may be nil.
func New(res *resource.ResourceLoader, cfg Config, hooks *hook.HookCenter, logger *zap.Logger) (*World, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	prog, err := stats.NewProgression(res.Progression)
	if err != nil {
		return nil, err
	}
	w := &World{
		res:         res,
		cfg:         cfg,
		hooks:       hooks,
		logger:      logger,
		ctx:         context.Background(),
		progression: prog,
		pathfinder:  ai.NewGridPathfinder(res.Passability),
		patrols:     make(map[string]*control.PatrolPath),
		timeline:    scheduler.NewTimeline(),
		actors:      make(map[core.ActorID]*Actor),
		stopCh:      make(chan struct{}),
	}
	for name, waypoints := range res.Scene.PatrolPaths {
		w.patrols[name] = &control.PatrolPath{Name: name, Waypoints: waypoints}
	}
	for _, spec := range res.Scene.Actors {
		if _, err := w.Spawn(spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range res.Scene.Pickups {
		w.pickups = append(w.pickups, combat.NewWeaponPickup(spec, res.WeaponByID(spec.Weapon), w.timeline))
	}
	logger.Info("world loaded",
		zap.Int("actors", len(w.order)),
		zap.Int("pickups", len(w.pickups)),
		zap.Int("patrol_paths", len(w.patrols)))
	return w, nil
}

// Spawn creates an actor from spec. An empty spec ID gets a fresh one.
func (w *World) Spawn(spec *resource.ActorSpawn) (*Actor, error) {
	id := core.ActorID(spec.ID)
	if id == "" {
		id = core.NewActorID()
	}
	if _, dup := w.actors[id]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateActor, id)
	}
	weaponID := spec.Weapon
	if weaponID == "" {
		weaponID = w.cfg.DefaultWeapon
	}
	weapon := w.res.WeaponByID(weaponID)
	if weapon == nil {
		return nil, fmt.Errorf("world: spawn %s: %w: %q", id, combat.ErrUnknownWeapon, weaponID)
	}
	capsule := resource.Capsule{Radius: defaultCapsuleRadius, Height: defaultCapsuleHeight}
	if spec.Capsule != nil {
		capsule = *spec.Capsule
	}

	logger := w.logger.With(zap.String("actor_id", id.String()))
	a := &Actor{
		id:        id,
		name:      spec.Name,
		tag:       spec.Tag,
		capsule:   capsule,
		transform: &core.Transform{Position: spec.Position, Yaw: spec.Yaw},
		actions:   &core.ActionScheduler{},
		animator:  newCueAnimator(w.timeline, w.cfg.HitDelay),
		hands:     combat.NewHands(logger),
	}
	if spec.Experience {
		a.experience = stats.NewExperience()
	}

	var err error
	a.stats, err = stats.New(stats.Config{
		Class:                  stats.CharacterClass(spec.Class),
		StartingLevel:          spec.Level,
		Progression:            w.progression,
		Experience:             a.experience,
		UsePercentageModifiers: w.cfg.PercentageModifiers,
	})
	if err != nil {
		return nil, fmt.Errorf("world: spawn %s: %w", id, err)
	}
	if err := w.assemble(a, weapon, spec, logger); err != nil {
		a.stats.Close()
		return nil, fmt.Errorf("world: spawn %s: %w", id, err)
	}

	w.watch(a)
	w.actors[id] = a
	w.order = append(w.order, a)
	if a.IsPlayer() && w.player == nil {
		w.player = a
	}
	logger.Debug("actor spawned",
		zap.String("name", a.name),
		zap.String("class", spec.Class),
		zap.Int("level", a.stats.GetLevel()),
		zap.Bool("ai", a.ai != nil))
	return a, nil
}

func (w *World) assemble(a *Actor, weapon *resource.Weapon, spec *resource.ActorSpawn, logger *zap.Logger) error {
	var err error
	a.health, err = attributes.NewHealth(attributes.HealthConfig{
		Owner:        a.id,
		Stats:        a.stats,
		Actions:      a.actions,
		Animator:     a.animator,
		Logger:       logger,
		RegenPercent: w.cfg.RegenPercent,
	})
	if err != nil {
		return err
	}
	a.mover, err = movement.New(movement.Config{
		Owner:         a.id,
		Transform:     a.transform,
		Pathfinder:    w.pathfinder,
		Actions:       a.actions,
		Animator:      a.animator,
		Health:        a.health,
		MaxSpeed:      w.cfg.MaxSpeed,
		MaxPathLength: w.cfg.MaxPathLength,
		Logger:        logger,
	})
	if err != nil {
		a.health.Close()
		return err
	}
	a.fighter, err = combat.NewFighter(combat.FighterConfig{
		Self:          a,
		Instigator:    a,
		Transform:     a.transform,
		Stats:         a.stats,
		Mover:         a.mover,
		Actions:       a.actions,
		Animator:      a.animator,
		Hands:         a.hands,
		Arena:         w,
		Catalog:       w.res,
		DefaultWeapon: weapon,
		Logger:        logger,
	})
	if err != nil {
		a.health.Close()
		return err
	}
	a.animator.onHit = a.fighter.Hit

	if spec.AI {
		a.ai = control.NewAIController(control.AIConfig{
			Self:         a.id,
			Transform:    a.transform,
			Health:       a.health,
			Fighter:      a.fighter,
			Mover:        a.mover,
			Actions:      a.actions,
			Patrol:       w.patrols[spec.PatrolPath],
			Surroundings: w,
			Settings:     w.cfg.AI,
			Logger:       logger,
		})
	} else {
		a.commands = control.NewPlayerController(a.health, a.fighter, a.mover)
	}
	return nil
}

// Remove takes an actor out of the world. Projectiles aimed at it dispose
// themselves on their next tick.
func (w *World) Remove(id core.ActorID) error {
	a, ok := w.actors[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	a.actions.CancelCurrentAction()
	a.dispose()
	delete(w.actors, id)
	for i, o := range w.order {
		if o == a {
			w.order = append(w.order[:i:i], w.order[i+1:]...)
			break
		}
	}
	if w.player == a {
		w.player = nil
		for _, o := range w.order {
			if o.IsPlayer() {
				w.player = o
				break
			}
		}
	}
	w.logger.Debug("actor removed", zap.String("actor_id", id.String()))
	return nil
}

// Actor looks up a live actor.
func (w *World) Actor(id core.ActorID) (*Actor, error) {
	a, ok := w.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	return a, nil
}

// Actors lists actors in spawn order.
func (w *World) Actors() []*Actor {
	return append([]*Actor(nil), w.order...)
}

// Pickups lists the scene's weapon pickups.
func (w *World) Pickups() []*combat.WeaponPickup { return w.pickups }

// Resolve turns a held ActorID back into a target. It fails once the actor
// has been removed.
func (w *World) Resolve(id core.ActorID) (combat.Target, bool) {
	a, ok := w.actors[id]
	if !ok {
		return nil, false
	}
	return a, true
}

func (w *World) AddProjectile(p *combat.Projectile) {
	w.projectiles = append(w.projectiles, &flight{projectile: p})
}

func (w *World) SpawnEffect(name string, at core.Vec3) {
	e := &Effect{Name: name, Position: at, SpawnedAt: w.timeline.Now()}
	w.effects = append(w.effects, e)
	w.timeline.Schedule(w.cfg.EffectLifetime, func() {
		for i, o := range w.effects {
			if o == e {
				w.effects = append(w.effects[:i:i], w.effects[i+1:]...)
				return
			}
		}
	})
}

func (w *World) Timeline() *scheduler.Timeline { return w.timeline }

// Player is the earliest spawned actor tagged "player" still in the world.
func (w *World) Player() (combat.Target, bool) {
	if w.player == nil {
		return nil, false
	}
	return w.player, true
}

func (w *World) NearbyControllers(center core.Vec3, radius float64) []*control.AIController {
	var out []*control.AIController
	for _, a := range w.order {
		if a.ai != nil && a.transform.Position.Dist(center) <= radius {
			out = append(out, a.ai)
		}
	}
	return out
}

// Saveables lists every persistent component by actor and component name.
func (w *World) Saveables() map[core.ActorID]map[string]core.Saveable {
	out := make(map[core.ActorID]map[string]core.Saveable, len(w.order))
	for _, a := range w.order {
		out[a.id] = a.saveables()
	}
	return out
}

// Now is the simulated time in seconds. It takes the world lock.
func (w *World) Now() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeline.Now()
}

// Step advances the simulation by dt: due continuations first, then each
// actor's controller, fighter and mover in spawn order, then pickups and
// projectiles.
func (w *World) Step(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step(dt.Seconds())
}

func (w *World) step(dt float64) {
	w.timeline.Advance(dt)
	for _, a := range w.Actors() {
		if a.ai != nil {
			a.ai.Tick(dt)
		}
		a.fighter.Tick(dt)
		a.mover.Tick(dt)
	}
	if p := w.player; p != nil && !p.health.IsDead() {
		for _, pickup := range w.pickups {
			if pickup.Offer(p.fighter, p.Position()) {
				w.logger.Debug("weapon picked up",
					zap.String("actor_id", p.id.String()),
					zap.String("weapon", pickup.Weapon().ID))
			}
		}
	}
	w.tickProjectiles(dt)
}

func (w *World) tickProjectiles(dt float64) {
	live := w.projectiles[:0]
	for _, f := range w.projectiles {
		f.projectile.Tick(dt)
		if f.projectile.Impacted() && !f.reported {
			f.reported = true
			pos := f.projectile.Position()
			w.emit(Event{Type: hook.OnProjectileImpact, TargetID: f.projectile.Target(), Position: &pos})
		}
		if !f.projectile.Disposed() {
			live = append(live, f)
		}
	}
	clear(w.projectiles[len(live):])
	w.projectiles = live
}

// Exec runs fn under the world lock, between ticks.
func (w *World) Exec(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn()
}

// Run steps the world every TickInterval until ctx is done or Stop is
// called.
func (w *World) Run(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	ticker := time.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.Step(w.cfg.TickInterval)
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		}
	}
}

// Stop makes Run return. It may be called more than once.
func (w *World) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}
