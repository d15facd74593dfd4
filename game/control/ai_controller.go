package control

import (
	"math"

	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/ai"
	"github.com/kasuganosora/rpgcore/server/game/combat"
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
)

// State is the high-level behavior of an AI actor.
type State int

const (
	StatePatrol State = iota
	StateSuspicious
	StateAttacking
)

func (s State) String() string {
	switch s {
	case StatePatrol:
		return "patrol"
	case StateSuspicious:
		return "suspicious"
	case StateAttacking:
		return "attacking"
	}
	return "unknown"
}

// Settings tunes an AIController. The zero Settings means DefaultSettings;
// otherwise a zero field is used as given (AggroCooldown 0 disables
// aggravation) and a negative field takes its default.
type Settings struct {
	ChaseDistance       float64 `mapstructure:"chase_distance"`
	SuspicionTime       float64 `mapstructure:"suspicion_time"`
	AggroCooldown       float64 `mapstructure:"aggro_cooldown"`
	WaypointTolerance   float64 `mapstructure:"waypoint_tolerance"`
	WaypointDwell       float64 `mapstructure:"waypoint_dwell"`
	PatrolSpeedFraction float64 `mapstructure:"patrol_speed_fraction"`
	ShoutDistance       float64 `mapstructure:"shout_distance"`
}

// DefaultSettings are the stock guard values.
func DefaultSettings() Settings {
	return Settings{
		ChaseDistance:       5,
		SuspicionTime:       3,
		AggroCooldown:       5,
		WaypointTolerance:   1,
		WaypointDwell:       1.5,
		PatrolSpeedFraction: 0.5,
		ShoutDistance:       5,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s == (Settings{}) {
		return d
	}
	fill := func(v *float64, def float64) {
		if *v < 0 {
			*v = def
		}
	}
	fill(&s.ChaseDistance, d.ChaseDistance)
	fill(&s.SuspicionTime, d.SuspicionTime)
	fill(&s.AggroCooldown, d.AggroCooldown)
	fill(&s.WaypointTolerance, d.WaypointTolerance)
	fill(&s.WaypointDwell, d.WaypointDwell)
	fill(&s.PatrolSpeedFraction, d.PatrolSpeedFraction)
	fill(&s.ShoutDistance, d.ShoutDistance)
	return s
}

// Surroundings is what an AI actor can perceive.
type Surroundings interface {
	// Player is the actor AI guards hunt, if one exists.
	Player() (combat.Target, bool)
	// NearbyControllers lists AI controllers whose actors are within radius
	// of center.
	NearbyControllers(center core.Vec3, radius float64) []*AIController
}

// AIConfig wires an AIController to its actor.
type AIConfig struct {
	Self         core.ActorID
	Transform    *core.Transform
	Health       movement.Vitality
	Fighter      *combat.Fighter
	Mover        *movement.Mover
	Actions      *core.ActionScheduler
	Patrol       *PatrolPath
	Surroundings Surroundings
	Settings     Settings
	Logger       *zap.Logger
}

// AIController drives a guard through patrol, suspicion and attack. Each
// tick picks the highest-priority behavior whose condition holds.
type AIController struct {
	self         core.ActorID
	transform    *core.Transform
	health       movement.Vitality
	fighter      *combat.Fighter
	mover        *movement.Mover
	actions      *core.ActionScheduler
	patrol       *PatrolPath
	surroundings Surroundings
	settings     Settings
	logger       *zap.Logger

	guardPosition core.Vec3
	state         State
	tree          *ai.BehaviorTree
	waypoint      int
	dwelling      bool

	timeSinceSawTarget  float64
	timeSinceAggravated float64
	timeAtWaypoint      float64

	aggravated core.Observers[struct{}]
}

// NewAIController records the actor's current position as its guard post.
func NewAIController(cfg AIConfig) *AIController {
	if cfg.Actions == nil {
		cfg.Actions = &core.ActionScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	c := &AIController{
		self:                cfg.Self,
		transform:           cfg.Transform,
		health:              cfg.Health,
		fighter:             cfg.Fighter,
		mover:               cfg.Mover,
		actions:             cfg.Actions,
		patrol:              cfg.Patrol,
		surroundings:        cfg.Surroundings,
		settings:            cfg.Settings.withDefaults(),
		logger:              cfg.Logger,
		guardPosition:       cfg.Transform.Position,
		timeSinceSawTarget:  math.Inf(1),
		timeSinceAggravated: math.Inf(1),
		timeAtWaypoint:      math.Inf(1),
	}
	if c.patrol != nil && c.patrol.Len() == 0 {
		c.patrol = nil
	}
	c.tree = &ai.BehaviorTree{Root: &ai.Selector{Children: []ai.Node{
		&ai.Sequence{Children: []ai.Node{ai.Condition(c.canEngage), ai.Do(c.attackBehaviour)}},
		&ai.Sequence{Children: []ai.Node{ai.Condition(c.isSuspicious), ai.Do(c.suspicionBehaviour)}},
		ai.Do(c.patrolBehaviour),
	}}}
	return c
}

// ID is the controlled actor.
func (c *AIController) ID() core.ActorID { return c.self }

// State is the behavior chosen on the last tick.
func (c *AIController) State() State { return c.state }

// CurrentWaypoint is the index of the waypoint being approached or dwelt at.
func (c *AIController) CurrentWaypoint() int { return c.waypoint }

// GuardPosition is where the actor returns when it has no patrol path.
func (c *AIController) GuardPosition() core.Vec3 { return c.guardPosition }

// Aggravate makes the actor hostile for the aggro cooldown.
func (c *AIController) Aggravate() {
	c.timeSinceAggravated = 0
	c.aggravated.Notify(struct{}{})
}

// OnAggravated observes calls to Aggravate.
func (c *AIController) OnAggravated(fn func()) (unsubscribe func()) {
	return c.aggravated.Add(func(struct{}) { fn() })
}

// Tick evaluates one behavior and then advances the timers.
func (c *AIController) Tick(dt float64) {
	if c.health != nil && c.health.IsDead() {
		return
	}
	c.tree.Tick(&ai.Context{Delta: dt})
	c.timeSinceSawTarget += dt
	c.timeSinceAggravated += dt
	c.timeAtWaypoint += dt
}

func (c *AIController) setState(s State) {
	if c.state == s {
		return
	}
	c.logger.Debug("ai state changed",
		zap.String("actor_id", c.self.String()),
		zap.Stringer("from", c.state),
		zap.Stringer("to", s))
	c.state = s
}

func (c *AIController) isAggravated(target combat.Target) bool {
	if c.transform.Position.Dist(target.Position()) < c.settings.ChaseDistance {
		return true
	}
	return c.timeSinceAggravated < c.settings.AggroCooldown
}

func (c *AIController) canEngage(*ai.Context) bool {
	target, ok := c.surroundings.Player()
	if !ok {
		return false
	}
	return c.isAggravated(target) && c.fighter.CanAttack(target.ID())
}

func (c *AIController) attackBehaviour(*ai.Context) {
	target, _ := c.surroundings.Player()
	c.timeSinceSawTarget = 0
	c.fighter.Attack(target.ID())
	if c.state != StateAttacking {
		c.setState(StateAttacking)
		c.aggravateNearby()
	}
}

func (c *AIController) aggravateNearby() {
	for _, other := range c.surroundings.NearbyControllers(c.transform.Position, c.settings.ShoutDistance) {
		if other == c {
			continue
		}
		other.Aggravate()
	}
}

func (c *AIController) isSuspicious(*ai.Context) bool {
	return c.timeSinceSawTarget < c.settings.SuspicionTime
}

func (c *AIController) suspicionBehaviour(*ai.Context) {
	c.setState(StateSuspicious)
	c.actions.CancelCurrentAction()
}

func (c *AIController) patrolBehaviour(*ai.Context) {
	c.setState(StatePatrol)
	next := c.guardPosition
	if c.patrol != nil {
		if !c.dwelling && c.atWaypoint() {
			c.dwelling = true
			c.timeAtWaypoint = 0
		}
		if c.dwelling && c.timeAtWaypoint > c.settings.WaypointDwell {
			c.waypoint = c.patrol.NextIndex(c.waypoint)
			c.dwelling = false
		}
		next = c.patrol.Waypoint(c.waypoint)
	}
	if !c.dwelling {
		c.mover.StartMoveAction(next, c.settings.PatrolSpeedFraction)
	}
}

func (c *AIController) atWaypoint() bool {
	return c.transform.Position.Dist(c.patrol.Waypoint(c.waypoint)) < c.settings.WaypointTolerance
}
