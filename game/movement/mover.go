package movement

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/core"
)

// Vitality is the part of Health the mover needs.
type Vitality interface {
	IsDead() bool
}

// Config wires a Mover to its actor.
type Config struct {
	Owner         core.ActorID
	Transform     *core.Transform
	Pathfinder    Pathfinder
	Actions       *core.ActionScheduler
	Animator      core.Animator
	Health        Vitality
	MaxSpeed      float64
	MaxPathLength float64
	Logger        *zap.Logger
}

// Mover walks its actor along pathfinder routes and reports locomotion
// speed to the animator every tick.
type Mover struct {
	owner         core.ActorID
	transform     *core.Transform
	pathfinder    Pathfinder
	actions       *core.ActionScheduler
	animator      core.Animator
	health        Vitality
	maxSpeed      float64
	maxPathLength float64
	logger        *zap.Logger

	corners  []core.Vec3
	next     int
	speed    float64
	velocity core.Vec3
}

// New creates a Mover. Transform and Pathfinder are required.
func New(cfg Config) (*Mover, error) {
	if cfg.Transform == nil || cfg.Pathfinder == nil {
		return nil, fmt.Errorf("movement: actor %s needs a transform and a pathfinder", cfg.Owner)
	}
	if cfg.Actions == nil {
		cfg.Actions = &core.ActionScheduler{}
	}
	if cfg.Animator == nil {
		cfg.Animator = core.NopAnimator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Mover{
		owner:         cfg.Owner,
		transform:     cfg.Transform,
		pathfinder:    cfg.Pathfinder,
		actions:       cfg.Actions,
		animator:      cfg.Animator,
		health:        cfg.Health,
		maxSpeed:      cfg.MaxSpeed,
		maxPathLength: cfg.MaxPathLength,
		logger:        cfg.Logger,
	}, nil
}

// StartMoveAction takes the action slot and heads for dest.
func (m *Mover) StartMoveAction(dest core.Vec3, speedFraction float64) {
	m.actions.StartAction(m)
	m.MoveTo(dest, speedFraction)
}

// MoveTo heads for dest at maxSpeed × speedFraction without touching the
// action slot. When no path exists the actor stays put.
func (m *Mover) MoveTo(dest core.Vec3, speedFraction float64) {
	speedFraction = min(max(speedFraction, 0), 1)
	path, ok := m.pathfinder.FindPath(m.transform.Position, dest)
	if !ok || path == nil || len(path.Corners) == 0 {
		m.stop()
		return
	}
	m.corners = path.Corners
	m.next = 0
	m.speed = m.maxSpeed * speedFraction
}

// Cancel halts in place.
func (m *Mover) Cancel() {
	m.stop()
}

func (m *Mover) stop() {
	m.corners = nil
	m.next = 0
	m.speed = 0
}

// CanMoveTo reports whether dest is reachable by a complete path no longer
// than the configured maximum.
func (m *Mover) CanMoveTo(dest core.Vec3) bool {
	path, ok := m.pathfinder.FindPath(m.transform.Position, dest)
	if !ok || path == nil || !path.Complete {
		return false
	}
	return PathLength(path) <= m.maxPathLength
}

// IsMoving reports whether a path is being followed.
func (m *Mover) IsMoving() bool {
	return m.corners != nil
}

// Destination is the end of the current path, if any.
func (m *Mover) Destination() (core.Vec3, bool) {
	if m.corners == nil {
		return core.Vec3{}, false
	}
	return m.corners[len(m.corners)-1], true
}

// Velocity is the displacement per second of the last tick.
func (m *Mover) Velocity() core.Vec3 { return m.velocity }

// ForwardSpeed is the velocity projected on the facing direction.
func (m *Mover) ForwardSpeed() float64 {
	return m.velocity.Dot(m.transform.Forward())
}

// Tick advances along the path. A dead actor does not move.
func (m *Mover) Tick(dt float64) {
	m.velocity = core.Vec3{}
	if dt > 0 && m.corners != nil && !m.dead() {
		m.advance(dt)
	}
	m.animator.SetLocomotionSpeed(m.ForwardSpeed())
}

func (m *Mover) dead() bool {
	return m.health != nil && m.health.IsDead()
}

func (m *Mover) advance(dt float64) {
	start := m.transform.Position
	budget := m.speed * dt
	pos := start
	for m.next < len(m.corners) {
		corner := m.corners[m.next]
		d := pos.Dist(corner)
		if d > budget {
			pos = pos.MoveTowards(corner, budget)
			break
		}
		budget -= d
		pos = corner
		m.next++
	}
	travel := pos.Sub(start)
	if !travel.Flat().IsZero() {
		m.transform.LookAt(pos)
	}
	m.transform.Position = pos
	m.velocity = travel.Scale(1 / dt)
	if m.next >= len(m.corners) {
		m.stop()
	}
}

type moverState struct {
	Position core.Vec3 `json:"position"`
	Yaw      float64   `json:"yaw"`
}

func (m *Mover) CaptureState() (json.RawMessage, error) {
	return json.Marshal(moverState{Position: m.transform.Position, Yaw: m.transform.Yaw})
}

// RestoreState warps the actor and drops any path in progress.
func (m *Mover) RestoreState(state json.RawMessage) error {
	var s moverState
	if err := json.Unmarshal(state, &s); err != nil {
		return fmt.Errorf("movement: restore: %w", err)
	}
	m.stop()
	m.transform.Position = s.Position
	m.transform.Yaw = s.Yaw
	m.logger.Debug("actor warped", zap.String("actor_id", m.owner.String()))
	return nil
}
