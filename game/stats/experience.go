package stats

import (
	"encoding/json"
	"fmt"

	"github.com/kasuganosora/rpgcore/server/game/core"
)

// Experience accumulates experience points for one actor.
type Experience struct {
	points   float64
	gained   core.Observers[float64]
	restored core.Observers[float64]
}

// NewExperience returns an empty pool.
func NewExperience() *Experience {
	return &Experience{}
}

// Points is the current total.
func (e *Experience) Points() float64 { return e.points }

// GainExperience adds amount and notifies observers. Non-positive amounts
// are ignored.
func (e *Experience) GainExperience(amount float64) {
	if amount <= 0 {
		return
	}
	e.points += amount
	e.gained.Notify(amount)
}

// OnExperienceGained registers fn to receive every gained amount.
func (e *Experience) OnExperienceGained(fn func(amount float64)) (unsubscribe func()) {
	return e.gained.Add(fn)
}

// OnRestored registers fn to run after the total is replaced by a restore.
func (e *Experience) OnRestored(fn func(points float64)) (unsubscribe func()) {
	return e.restored.Add(fn)
}

func (e *Experience) CaptureState() (json.RawMessage, error) {
	return json.Marshal(e.points)
}

// RestoreState replaces the total. Gain observers are not notified.
func (e *Experience) RestoreState(state json.RawMessage) error {
	var points float64
	if err := json.Unmarshal(state, &points); err != nil {
		return fmt.Errorf("stats: restore experience: %w", err)
	}
	e.points = points
	e.restored.Notify(points)
	return nil
}
