package attributes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/stats"
	"github.com/kasuganosora/rpgcore/server/resource"
)

type recordingAnimator struct {
	core.NopAnimator
	cues []string
}

func (r *recordingAnimator) PlayCue(cue string) { r.cues = append(r.cues, cue) }

type cancelCounter struct{ n int }

func (c *cancelCounter) Cancel() { c.n++ }

type killer struct{ xp *stats.Experience }

func (k killer) Experience() *stats.Experience { return k.xp }

func newProgression(t *testing.T) *stats.Progression {
	t.Helper()
	p, err := stats.NewProgression(&resource.ProgressionData{Classes: []*resource.ProgressionClass{
		{Class: "player", Stats: map[string][]float64{
			"health":                 {100, 200, 300},
			"experience_to_level_up": {10, 20},
		}},
		{Class: "grunt", Stats: map[string][]float64{
			"health":            {50},
			"experience_reward": {15},
		}},
		{Class: "ghost", Stats: map[string][]float64{"damage": {1}}},
	}})
	require.NoError(t, err)
	return p
}

type fixture struct {
	health   *Health
	stats    *stats.BaseStats
	xp       *stats.Experience
	animator *recordingAnimator
	actions  *core.ActionScheduler
}

func newFixture(t *testing.T, class stats.CharacterClass, withXP bool) *fixture {
	t.Helper()
	f := &fixture{animator: &recordingAnimator{}, actions: &core.ActionScheduler{}}
	if withXP {
		f.xp = stats.NewExperience()
	}
	var err error
	f.stats, err = stats.New(stats.Config{Class: class, Progression: newProgression(t), Experience: f.xp})
	require.NoError(t, err)
	f.health, err = NewHealth(HealthConfig{Owner: "a1", Stats: f.stats, Actions: f.actions, Animator: f.animator})
	require.NoError(t, err)
	return f
}

func TestNewHealth_Validation(t *testing.T) {
	_, err := NewHealth(HealthConfig{})
	assert.ErrorIs(t, err, ErrNoStats)

	bs, err := stats.New(stats.Config{Class: "ghost", Progression: newProgression(t)})
	require.NoError(t, err)
	_, err = NewHealth(HealthConfig{Stats: bs})
	assert.ErrorIs(t, err, ErrInvalidMaxHealth)
}

func TestHealth_StartsFull(t *testing.T) {
	f := newFixture(t, "grunt", false)
	assert.Equal(t, 50.0, f.health.HealthPoints())
	assert.Equal(t, 1.0, f.health.Fraction())
	assert.Equal(t, 100.0, f.health.Percentage())
	assert.False(t, f.health.IsDead())
}

func TestHealth_DamageClampsAndNotifies(t *testing.T) {
	f := newFixture(t, "grunt", false)
	var hits []float64
	f.health.OnDamage(func(a float64) { hits = append(hits, a) })

	f.health.TakeDamage(nil, 20)
	f.health.TakeDamage(nil, -5)
	assert.Equal(t, 30.0, f.health.HealthPoints())
	assert.Equal(t, []float64{20, 0}, hits)
	assert.InDelta(t, 0.6, f.health.Fraction(), 1e-9)
}

func TestHealth_DeathTransitionOnce(t *testing.T) {
	f := newFixture(t, "grunt", false)
	action := &cancelCounter{}
	f.actions.StartAction(action)

	killerXP := stats.NewExperience()
	died := 0
	f.health.OnDie(func() { died++ })

	f.health.TakeDamage(killer{killerXP}, 80)
	assert.True(t, f.health.IsDead())
	assert.Equal(t, 0.0, f.health.HealthPoints())
	assert.Equal(t, []string{core.CueDie}, f.animator.cues)
	assert.Equal(t, 1, action.n)
	assert.Nil(t, f.actions.Current())
	assert.Equal(t, 15.0, killerXP.Points())
	assert.Equal(t, 1, died)

	f.health.TakeDamage(killer{killerXP}, 10)
	assert.Equal(t, []string{core.CueDie}, f.animator.cues, "no second die cue")
	assert.Equal(t, 15.0, killerXP.Points(), "experience awarded once")
	assert.Equal(t, 1, died)
}

func TestHealth_OnlyKillingBlowEarnsExperience(t *testing.T) {
	f := newFixture(t, "grunt", false)
	first := stats.NewExperience()
	second := stats.NewExperience()

	f.health.TakeDamage(killer{first}, 20)
	require.False(t, f.health.IsDead())
	assert.Zero(t, first.Points())

	f.health.TakeDamage(killer{second}, 35)
	require.True(t, f.health.IsDead())
	assert.Zero(t, first.Points())
	assert.Equal(t, 15.0, second.Points())
}

func TestHealth_InstigatorWithoutExperience(t *testing.T) {
	f := newFixture(t, "grunt", false)
	assert.NotPanics(t, func() { f.health.TakeDamage(killer{}, 100) })
	assert.True(t, f.health.IsDead())
}

func TestHealth_Heal(t *testing.T) {
	f := newFixture(t, "grunt", false)
	f.health.TakeDamage(nil, 30)
	f.health.Heal(10)
	assert.Equal(t, 30.0, f.health.HealthPoints())
	f.health.Heal(1000)
	assert.Equal(t, 50.0, f.health.HealthPoints())

	f.health.TakeDamage(nil, 50)
	f.health.Heal(10)
	assert.Equal(t, 0.0, f.health.HealthPoints(), "dead cannot heal")
}

func TestHealth_RegenerateOnLevelUp(t *testing.T) {
	f := newFixture(t, "player", true)
	f.health.TakeDamage(nil, 90)
	require.Equal(t, 10.0, f.health.HealthPoints())

	f.xp.GainExperience(10) // level 2, max 200
	assert.Equal(t, 2, f.stats.GetLevel())
	assert.Equal(t, 140.0, f.health.HealthPoints())

	f.health.Heal(60)
	f.xp.GainExperience(10) // level 3, max 300
	assert.Equal(t, 210.0, f.health.HealthPoints())
}

func TestHealth_RegenerateKeepsHigherValue(t *testing.T) {
	xp := stats.NewExperience()
	bs, err := stats.New(stats.Config{Class: "player", Progression: newProgression(t), Experience: xp})
	require.NoError(t, err)
	h, err := NewHealth(HealthConfig{Stats: bs, RegenPercent: 30})
	require.NoError(t, err)

	h.TakeDamage(nil, 5)
	xp.GainExperience(10)
	assert.Equal(t, 95.0, h.HealthPoints(), "floor of 60 is below current")
}

func TestHealth_CaptureRestore(t *testing.T) {
	f := newFixture(t, "grunt", false)
	f.health.TakeDamage(nil, 12)
	state, err := f.health.CaptureState()
	require.NoError(t, err)

	g := newFixture(t, "grunt", false)
	require.NoError(t, g.health.RestoreState(state))
	assert.Equal(t, 38.0, g.health.HealthPoints())
	assert.False(t, g.health.IsDead())
}

func TestHealth_RestoreCapsAtMax(t *testing.T) {
	f := newFixture(t, "grunt", false)
	require.NoError(t, f.health.RestoreState([]byte("500")))
	assert.Equal(t, 50.0, f.health.HealthPoints())
	assert.LessOrEqual(t, f.health.HealthPoints(), f.health.MaxHealthPoints())
	assert.Equal(t, 1.0, f.health.Fraction())
}

func TestHealth_RestoreZeroDiesWithoutReward(t *testing.T) {
	f := newFixture(t, "grunt", false)
	died := 0
	f.health.OnDie(func() { died++ })

	require.NoError(t, f.health.RestoreState([]byte("0")))
	assert.True(t, f.health.IsDead())
	assert.Equal(t, []string{core.CueDie}, f.animator.cues)

	require.NoError(t, f.health.RestoreState([]byte("0")))
	assert.Equal(t, []string{core.CueDie}, f.animator.cues, "already dead plays no cue")
	assert.Equal(t, 0, died)

	require.NoError(t, f.health.RestoreState([]byte("25")))
	assert.False(t, f.health.IsDead(), "explicit restore revives")
	assert.Equal(t, 25.0, f.health.HealthPoints())

	assert.Error(t, f.health.RestoreState([]byte(`{}`)))
}
