package core

// Action is anything that can hold an actor's exclusive action slot.
// Movement and combat are the two owners used by the simulation.
type Action interface {
	Cancel()
}

// ActionScheduler guarantees that at most one Action drives an actor at a
// time. Installing a new owner cancels the previous one first.
type ActionScheduler struct {
	current Action
}

// StartAction makes a the current owner. Re-starting the current owner is a
// no-op; otherwise the displaced owner receives exactly one Cancel before a
// is installed. A nil a simply clears the slot.
func (s *ActionScheduler) StartAction(a Action) {
	if s.current == a {
		return
	}
	if s.current != nil {
		s.current.Cancel()
	}
	s.current = a
}

// CancelCurrentAction cancels and clears the current owner, if any.
func (s *ActionScheduler) CancelCurrentAction() {
	s.StartAction(nil)
}

// Current returns the active owner or nil.
func (s *ActionScheduler) Current() Action {
	return s.current
}
