package movement

import "github.com/kasuganosora/rpgcore/server/game/core"

// Path is a route produced by a Pathfinder. Corners start at the origin.
// Complete is false when the destination could not be reached and the path
// ends at the closest reachable point instead.
type Path struct {
	Corners  []core.Vec3
	Complete bool
}

// Pathfinder computes routes over the walkable area.
type Pathfinder interface {
	FindPath(from, to core.Vec3) (*Path, bool)
}

// PathLength is the summed length of the path's segments.
func PathLength(p *Path) float64 {
	if p == nil || len(p.Corners) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(p.Corners); i++ {
		total += p.Corners[i-1].Dist(p.Corners[i])
	}
	return total
}
