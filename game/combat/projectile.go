package combat

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/attributes"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

// ProjectileConfig describes a launch.
type ProjectileConfig struct {
	Spec       *resource.Projectile
	Origin     core.Vec3
	Target     core.ActorID
	Instigator attributes.Instigator
	Damage     float64
	Logger     *zap.Logger
}

// Projectile flies toward its target and damages it at most once.
// The target is held by ID and re-resolved every tick.
type Projectile struct {
	id         string
	spec       *resource.Projectile
	arena      Arena
	timeline   *scheduler.Timeline
	logger     *zap.Logger
	target     core.ActorID
	instigator attributes.Instigator
	damage     float64

	position  core.Vec3
	direction core.Vec3
	speed     float64
	impacted  bool
	disposed  bool

	expiry *scheduler.Continuation
	linger *scheduler.Continuation
}

// NewProjectile aims at the target and starts the lifetime clock.
func NewProjectile(arena Arena, cfg ProjectileConfig) *Projectile {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	p := &Projectile{
		id:         uuid.NewString(),
		spec:       cfg.Spec,
		arena:      arena,
		timeline:   arena.Timeline(),
		logger:     cfg.Logger,
		target:     cfg.Target,
		instigator: cfg.Instigator,
		damage:     cfg.Damage,
		position:   cfg.Origin,
		speed:      cfg.Spec.Speed,
	}
	if t, ok := arena.Resolve(cfg.Target); ok {
		p.aimAt(t)
	}
	p.expiry = p.timeline.Schedule(cfg.Spec.MaxLifetime, p.Dispose)
	return p
}

func (p *Projectile) ID() string           { return p.id }
func (p *Projectile) Position() core.Vec3  { return p.position }
func (p *Projectile) Target() core.ActorID { return p.target }
func (p *Projectile) Impacted() bool       { return p.impacted }
func (p *Projectile) Disposed() bool       { return p.disposed }
func (p *Projectile) Speed() float64       { return p.speed }

func (p *Projectile) aimAt(t Target) {
	if d := t.AimPoint().Sub(p.position).Normalize(); !d.IsZero() {
		p.direction = d
	}
}

// Tick moves the projectile and checks for impact.
func (p *Projectile) Tick(dt float64) {
	if p.disposed {
		return
	}
	t, ok := p.arena.Resolve(p.target)
	if !ok {
		p.Dispose()
		return
	}
	if p.impacted {
		return
	}
	if p.spec.Homing && !t.Health().IsDead() {
		p.aimAt(t)
	}
	from := p.position
	p.position = from.Add(p.direction.Scale(p.speed * dt))
	if t.Contains(closestOnSegment(from, p.position, t.AimPoint())) {
		p.impact(t)
	}
}

func (p *Projectile) impact(t Target) {
	if t.Health().IsDead() {
		return
	}
	t.Health().TakeDamage(p.instigator, p.damage)
	p.impacted = true
	p.speed = 0
	if p.spec.HitEffect != "" {
		p.arena.SpawnEffect(p.spec.HitEffect, p.position)
	}
	p.logger.Debug("projectile impact",
		zap.String("projectile_id", p.id),
		zap.String("target_id", t.ID().String()),
		zap.Float64("damage", p.damage))
	p.linger = p.timeline.Schedule(p.spec.LifetimeAfterImpact, p.Dispose)
}

// Dispose removes the projectile. Repeated calls are no-ops.
func (p *Projectile) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.timeline.Cancel(p.expiry)
	p.timeline.Cancel(p.linger)
}

// closestOnSegment returns the point of segment ab nearest to c.
func closestOnSegment(a, b, c core.Vec3) core.Vec3 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return a
	}
	t := min(max(c.Sub(a).Dot(ab)/l2, 0), 1)
	return a.Add(ab.Scale(t))
}
