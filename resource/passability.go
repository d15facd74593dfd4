package resource

import (
	"math"

	"github.com/kasuganosora/rpgcore/server/game/core"
)

// PassabilityMap marks which grid cells can be walked on.
type PassabilityMap struct {
	Width int
	Depth int
	// blocked[z][x]
	blocked [][]bool
}

// NewPassabilityMap creates a PassabilityMap with all cells passable.
func NewPassabilityMap(w, d int) *PassabilityMap {
	pm := &PassabilityMap{Width: w, Depth: d}
	pm.blocked = make([][]bool, d)
	for z := range pm.blocked {
		pm.blocked[z] = make([]bool, w)
	}
	return pm
}

// SetBlocked marks (x, z). Out-of-range cells are ignored.
func (pm *PassabilityMap) SetBlocked(x, z int, blocked bool) {
	if !pm.InBounds(x, z) {
		return
	}
	pm.blocked[z][x] = blocked
}

// InBounds reports whether (x, z) lies on the grid.
func (pm *PassabilityMap) InBounds(x, z int) bool {
	return x >= 0 && x < pm.Width && z >= 0 && z < pm.Depth
}

// CanPass reports whether (x, z) is on the grid and not blocked.
func (pm *PassabilityMap) CanPass(x, z int) bool {
	return pm.InBounds(x, z) && !pm.blocked[z][x]
}

// CellOf returns the grid cell containing the world position p.
func CellOf(p core.Vec3) (x, z int) {
	return int(math.Floor(p.X + 0.5)), int(math.Floor(p.Z + 0.5))
}

// CellCenter returns the world position of a cell at ground height.
func CellCenter(x, z int) core.Vec3 {
	return core.Vec3{X: float64(x), Z: float64(z)}
}
