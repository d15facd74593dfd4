package attributes

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/stats"
)

var (
	ErrNoStats          = errors.New("attributes: health requires base stats")
	ErrInvalidMaxHealth = errors.New("attributes: max health must be positive")
)

// DefaultRegenPercent is the share of max health restored on level-up.
const DefaultRegenPercent = 70

// Instigator is whoever dealt the damage. Experience may return nil for
// instigators that cannot gain experience.
type Instigator interface {
	Experience() *stats.Experience
}

// HealthConfig wires Health to its actor.
type HealthConfig struct {
	Owner    core.ActorID
	Stats    *stats.BaseStats
	Actions  *core.ActionScheduler
	Animator core.Animator
	Logger   *zap.Logger

	// RegenPercent defaults to DefaultRegenPercent when zero.
	RegenPercent float64
}

// Health tracks an actor's hit points and the one-way death transition.
type Health struct {
	owner        core.ActorID
	stats        *stats.BaseStats
	actions      *core.ActionScheduler
	animator     core.Animator
	logger       *zap.Logger
	regenPercent float64

	points float64
	dead   bool

	damaged     core.Observers[float64]
	died        core.Observers[struct{}]
	unsubscribe func()
}

// NewHealth creates a Health at full points and subscribes it to level-ups.
func NewHealth(cfg HealthConfig) (*Health, error) {
	if cfg.Stats == nil {
		return nil, ErrNoStats
	}
	maxHP := cfg.Stats.GetStat(stats.Health)
	if maxHP <= 0 {
		return nil, fmt.Errorf("%w: actor %s has %v", ErrInvalidMaxHealth, cfg.Owner, maxHP)
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
	if cfg.RegenPercent == 0 {
		cfg.RegenPercent = DefaultRegenPercent
	}
	h := &Health{
		owner:        cfg.Owner,
		stats:        cfg.Stats,
		actions:      cfg.Actions,
		animator:     cfg.Animator,
		logger:       cfg.Logger,
		regenPercent: cfg.RegenPercent,
		points:       maxHP,
	}
	h.unsubscribe = cfg.Stats.OnLevelUp(func(int) { h.regenerate() })
	return h, nil
}

// Close detaches Health from level-up notifications.
func (h *Health) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

// IsDead reports whether the death transition has happened.
func (h *Health) IsDead() bool { return h.dead }

// HealthPoints is the current value.
func (h *Health) HealthPoints() float64 { return h.points }

// MaxHealthPoints is the health stat at the current level.
func (h *Health) MaxHealthPoints() float64 { return h.stats.GetStat(stats.Health) }

// Fraction is current over max in [0, 1]. A non-positive max is a
// configuration defect and panics.
func (h *Health) Fraction() float64 {
	maxHP := h.MaxHealthPoints()
	if maxHP <= 0 {
		panic(fmt.Sprintf("attributes: actor %s has non-positive max health %v", h.owner, maxHP))
	}
	f := h.points / maxHP
	if f > 1 {
		return 1
	}
	return f
}

// Percentage is 100 × Fraction.
func (h *Health) Percentage() float64 { return 100 * h.Fraction() }

// OnDamage registers fn to receive the amount of every non-lethal hit.
func (h *Health) OnDamage(fn func(amount float64)) (unsubscribe func()) {
	return h.damaged.Add(fn)
}

// OnDie registers fn to run once when the actor dies.
func (h *Health) OnDie(fn func()) (unsubscribe func()) {
	return h.died.Add(func(struct{}) { fn() })
}

// TakeDamage subtracts amount (negative treated as zero). The hit that
// reaches zero kills the actor and pays the instigator its experience
// reward. Damage to a dead actor is ignored.
func (h *Health) TakeDamage(instigator Instigator, amount float64) {
	if h.dead {
		return
	}
	if amount < 0 {
		amount = 0
	}
	h.points -= amount
	if h.points > 0 {
		h.damaged.Notify(amount)
		return
	}
	h.points = 0
	h.die()
	h.awardExperience(instigator)
	h.died.Notify(struct{}{})
}

// Heal restores amount up to max. The dead cannot be healed.
func (h *Health) Heal(amount float64) {
	if h.dead || amount <= 0 {
		return
	}
	h.points = min(h.points+amount, h.MaxHealthPoints())
}

func (h *Health) die() {
	if h.dead {
		return
	}
	h.dead = true
	h.animator.PlayCue(core.CueDie)
	h.actions.CancelCurrentAction()
	h.logger.Debug("actor died", zap.String("actor_id", h.owner.String()))
}

func (h *Health) awardExperience(instigator Instigator) {
	if instigator == nil {
		return
	}
	xp := instigator.Experience()
	if xp == nil {
		return
	}
	xp.GainExperience(h.stats.GetStat(stats.ExperienceReward))
}

func (h *Health) regenerate() {
	if h.dead {
		return
	}
	floor := h.MaxHealthPoints() * h.regenPercent / 100
	if h.points < floor {
		h.points = floor
	}
}

func (h *Health) CaptureState() (json.RawMessage, error) {
	return json.Marshal(h.points)
}

// RestoreState sets the points directly. Zero runs the death transition
// without awarding experience; a positive value revives the actor and is
// capped at the current maximum.
func (h *Health) RestoreState(state json.RawMessage) error {
	var points float64
	if err := json.Unmarshal(state, &points); err != nil {
		return fmt.Errorf("attributes: restore health: %w", err)
	}
	if points <= 0 {
		h.points = 0
		h.die()
		return nil
	}
	h.points = min(points, h.MaxHealthPoints())
	h.dead = false
	return nil
}
