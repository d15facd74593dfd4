package core

// Animation cues understood by every animator.
const (
	CueDie        = "die"
	CueAttack     = "attack"
	CueStopAttack = "stop-attack"
)

// Animator is the presentation side of an actor. The simulation only ever
// sends it fire-and-forget signals.
type Animator interface {
	// PlayCue triggers a one-shot animation.
	PlayCue(cue string)
	// SetLocomotionSpeed reports the forward speed used by the blend tree.
	SetLocomotionSpeed(speed float64)
	// SetOverride swaps the animation set for the equipped weapon.
	// An empty name restores the default set.
	SetOverride(name string)
}

// NopAnimator discards every signal.
type NopAnimator struct{}

func (NopAnimator) PlayCue(string)             {}
func (NopAnimator) SetLocomotionSpeed(float64) {}
func (NopAnimator) SetOverride(string)         {}
