package ai

// Status is the result of a behavior tree node tick.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	}
	return "unknown"
}

// Node is a single node in a behavior tree.
type Node interface {
	Tick(ctx *Context) Status
}

// NodeFunc adapts a plain function to Node.
type NodeFunc func(ctx *Context) Status

func (f NodeFunc) Tick(ctx *Context) Status { return f(ctx) }

// ---- Composite nodes ----

// Selector ticks children in priority order and stops at the first one that
// does not fail. The index of that child is kept for inspection.
type Selector struct {
	Children []Node
	active   int
}

func (s *Selector) Tick(ctx *Context) Status {
	for i, c := range s.Children {
		if st := c.Tick(ctx); st != StatusFailure {
			s.active = i
			return st
		}
	}
	s.active = -1
	return StatusFailure
}

// Active is the index of the child that handled the last tick, or -1.
func (s *Selector) Active() int { return s.active }

// Sequence succeeds only when all children succeed.
type Sequence struct {
	Children []Node
}

func (s *Sequence) Tick(ctx *Context) Status {
	for _, c := range s.Children {
		if st := c.Tick(ctx); st != StatusSuccess {
			return st
		}
	}
	return StatusSuccess
}

// ---- Leaf nodes ----

// Condition evaluates a predicate.
type Condition func(ctx *Context) bool

func (c Condition) Tick(ctx *Context) Status {
	if c(ctx) {
		return StatusSuccess
	}
	return StatusFailure
}

// Do runs fn and succeeds.
func Do(fn func(ctx *Context)) Node {
	return NodeFunc(func(ctx *Context) Status {
		fn(ctx)
		return StatusSuccess
	})
}

// ---- Decorators ----

// Inverter swaps success and failure of its child.
type Inverter struct {
	Child Node
}

func (i *Inverter) Tick(ctx *Context) Status {
	switch i.Child.Tick(ctx) {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return StatusRunning
	}
}

// BehaviorTree wraps the root node.
type BehaviorTree struct {
	Root Node
}

// Tick runs one frame of the behavior tree.
func (bt *BehaviorTree) Tick(ctx *Context) Status {
	if bt.Root == nil {
		return StatusFailure
	}
	return bt.Root.Tick(ctx)
}
