package core

import "slices"

// Observers is an ordered list of callbacks. Delivery is synchronous, in
// registration order, over a snapshot of the list so that callbacks may
// subscribe or unsubscribe while being notified.
type Observers[T any] struct {
	subs []*func(T)
}

// Add registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (o *Observers[T]) Add(fn func(T)) (unsubscribe func()) {
	p := &fn
	o.subs = append(o.subs, p)
	return func() {
		for i, s := range o.subs {
			if s == p {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every registered callback with v.
func (o *Observers[T]) Notify(v T) {
	if len(o.subs) == 0 {
		return
	}
	snapshot := slices.Clone(o.subs)
	for _, s := range snapshot {
		(*s)(v)
	}
}

// Len is the number of subscribers.
func (o *Observers[T]) Len() int { return len(o.subs) }
