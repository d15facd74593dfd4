package world

import (
	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

// cueAnimator stands in for a rendered animation controller. It remembers
// what it was told for snapshots and turns the attack cue into a hit event
// hitDelay seconds later, the way an animation clip fires its hit frame.
type cueAnimator struct {
	timeline *scheduler.Timeline
	hitDelay float64
	onHit    func()

	lastCue  string
	speed    float64
	override string
	pending  *scheduler.Continuation
}

func newCueAnimator(timeline *scheduler.Timeline, hitDelay float64) *cueAnimator {
	return &cueAnimator{timeline: timeline, hitDelay: hitDelay}
}

func (a *cueAnimator) PlayCue(cue string) {
	a.lastCue = cue
	switch cue {
	case core.CueAttack:
		a.timeline.Cancel(a.pending)
		a.pending = a.timeline.Schedule(a.hitDelay, a.fireHit)
	case core.CueStopAttack, core.CueDie:
		a.timeline.Cancel(a.pending)
		a.pending = nil
	}
}

func (a *cueAnimator) fireHit() {
	a.pending = nil
	if a.onHit != nil {
		a.onHit()
	}
}

func (a *cueAnimator) SetLocomotionSpeed(speed float64) { a.speed = speed }
func (a *cueAnimator) SetOverride(name string)          { a.override = name }

func (a *cueAnimator) stop() {
	a.timeline.Cancel(a.pending)
	a.pending = nil
}
