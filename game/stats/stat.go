package stats

// Stat names a derived attribute.
type Stat string

const (
	Health              Stat = "health"
	ExperienceReward    Stat = "experience_reward"
	ExperienceToLevelUp Stat = "experience_to_level_up"
	Damage              Stat = "damage"
)

// Known reports whether s is one of the defined stats.
func (s Stat) Known() bool {
	switch s {
	case Health, ExperienceReward, ExperienceToLevelUp, Damage:
		return true
	}
	return false
}

// CharacterClass selects a row in the progression tables.
type CharacterClass string

// ModifierProvider contributes bonuses to stats. Additive values are summed
// onto the base; percentage values are summed and applied as a multiplier.
type ModifierProvider interface {
	AdditiveModifiers(stat Stat) []float64
	PercentageModifiers(stat Stat) []float64
}
