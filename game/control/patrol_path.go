package control

import "github.com/kasuganosora/rpgcore/server/game/core"

// PatrolPath is a cyclic list of waypoints.
type PatrolPath struct {
	Name      string
	Waypoints []core.Vec3
}

// Len is the number of waypoints.
func (p *PatrolPath) Len() int { return len(p.Waypoints) }

// Waypoint returns waypoint i.
func (p *PatrolPath) Waypoint(i int) core.Vec3 { return p.Waypoints[i] }

// NextIndex returns the index after i, wrapping to 0.
func (p *PatrolPath) NextIndex(i int) int {
	if i+1 >= len(p.Waypoints) {
		return 0
	}
	return i + 1
}
