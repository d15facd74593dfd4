package ai

// Context is passed to every behavior tree node during a tick.
type Context struct {
	// Delta is the simulated time since the previous tick, in seconds.
	Delta float64
}
