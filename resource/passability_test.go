package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasuganosora/rpgcore/server/game/core"
)

func TestPassabilityMap_DefaultAllPassable(t *testing.T) {
	pm := NewPassabilityMap(4, 3)
	for z := 0; z < 3; z++ {
		for x := 0; x < 4; x++ {
			assert.True(t, pm.CanPass(x, z), "(%d,%d) should be passable", x, z)
		}
	}
	assert.False(t, pm.CanPass(-1, 0))
	assert.False(t, pm.CanPass(4, 0))
	assert.False(t, pm.CanPass(0, 3))
}

func TestPassabilityMap_SetBlocked(t *testing.T) {
	pm := NewPassabilityMap(4, 4)
	pm.SetBlocked(2, 1, true)
	pm.SetBlocked(9, 9, true) // ignored
	assert.False(t, pm.CanPass(2, 1))
	pm.SetBlocked(2, 1, false)
	assert.True(t, pm.CanPass(2, 1))
}

func TestCellOf(t *testing.T) {
	x, z := CellOf(core.Vec3{X: 2.4, Y: 7, Z: -0.2})
	assert.Equal(t, 2, x)
	assert.Equal(t, 0, z)
	x, z = CellOf(core.Vec3{X: 2.6, Z: 3.5})
	assert.Equal(t, 3, x)
	assert.Equal(t, 4, z)
	assert.Equal(t, core.Vec3{X: 3, Z: 4}, CellCenter(3, 4))
}
