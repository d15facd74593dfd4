package stats

import (
	"errors"

	"github.com/kasuganosora/rpgcore/server/game/core"
)

// ErrNoProgression is returned when BaseStats is built without a table.
var ErrNoProgression = errors.New("stats: progression is required")

// Config configures BaseStats for one actor.
type Config struct {
	Class         CharacterClass
	StartingLevel int // clamped to at least 1
	Progression   *Progression
	// Experience is optional; without it the level stays at StartingLevel.
	Experience *Experience
	// UsePercentageModifiers enables the multiplicative layer.
	UsePercentageModifiers bool
}

// BaseStats resolves an actor's stats from its class, level and modifier
// providers: (base(level) + Σadditive) × (1 + Σpercentage/100).
type BaseStats struct {
	class         CharacterClass
	startingLevel int
	progression   *Progression
	experience    *Experience
	usePercentage bool

	providers    []ModifierProvider
	currentLevel int
	levelUp      core.Observers[int]
	unsubscribe  []func()
}

// New builds BaseStats and, when an experience pool is attached, starts
// tracking it for level changes.
func New(cfg Config) (*BaseStats, error) {
	if cfg.Progression == nil {
		return nil, ErrNoProgression
	}
	start := cfg.StartingLevel
	if start < 1 {
		start = 1
	}
	b := &BaseStats{
		class:         cfg.Class,
		startingLevel: start,
		progression:   cfg.Progression,
		experience:    cfg.Experience,
		usePercentage: cfg.UsePercentageModifiers,
	}
	b.currentLevel = b.calculateLevel()
	if b.experience != nil {
		b.unsubscribe = append(b.unsubscribe,
			b.experience.OnExperienceGained(func(float64) { b.updateLevel() }),
			b.experience.OnRestored(func(float64) { b.currentLevel = b.calculateLevel() }),
		)
	}
	return b, nil
}

// Close detaches BaseStats from its experience pool.
func (b *BaseStats) Close() {
	for _, u := range b.unsubscribe {
		u()
	}
	b.unsubscribe = nil
}

// Class is the actor's character class.
func (b *BaseStats) Class() CharacterClass { return b.class }

// AddModifierProvider registers p. Providers are consulted in registration
// order on every GetStat.
func (b *BaseStats) AddModifierProvider(p ModifierProvider) {
	b.providers = append(b.providers, p)
}

// OnLevelUp registers fn to receive the new level each time it increases.
func (b *BaseStats) OnLevelUp(fn func(level int)) (unsubscribe func()) {
	return b.levelUp.Add(fn)
}

// GetStat resolves the final value of stat at the current level.
func (b *BaseStats) GetStat(stat Stat) float64 {
	value := b.BaseStat(stat) + b.additive(stat)
	if b.usePercentage {
		value *= 1 + b.percentage(stat)/100
	}
	return value
}

// BaseStat is the unmodified table value at the current level.
func (b *BaseStats) BaseStat(stat Stat) float64 {
	return b.progression.Stat(stat, b.class, b.GetLevel())
}

// GetLevel returns the cached level.
func (b *BaseStats) GetLevel() int {
	return b.currentLevel
}

func (b *BaseStats) updateLevel() {
	newLevel := b.calculateLevel()
	if newLevel <= b.currentLevel {
		return
	}
	b.currentLevel = newLevel
	b.levelUp.Notify(newLevel)
}

// calculateLevel walks the experience_to_level_up table and returns the
// first level whose threshold is above the current total, or one past the
// table once every threshold is reached.
func (b *BaseStats) calculateLevel() int {
	if b.experience == nil {
		return b.startingLevel
	}
	points := b.experience.Points()
	penultimate := b.progression.Levels(ExperienceToLevelUp, b.class)
	for level := 1; level <= penultimate; level++ {
		if b.progression.Stat(ExperienceToLevelUp, b.class, level) > points {
			return level
		}
	}
	return penultimate + 1
}

func (b *BaseStats) additive(stat Stat) float64 {
	var total float64
	for _, p := range b.providers {
		for _, m := range p.AdditiveModifiers(stat) {
			total += m
		}
	}
	return total
}

func (b *BaseStats) percentage(stat Stat) float64 {
	var total float64
	for _, p := range b.providers {
		for _, m := range p.PercentageModifiers(stat) {
			total += m
		}
	}
	return total
}
