package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_MoveTowards(t *testing.T) {
	from := Vec3{}
	to := Vec3{X: 10}

	assert.Equal(t, Vec3{X: 4}, from.MoveTowards(to, 4))
	assert.Equal(t, to, from.MoveTowards(to, 25), "must not overshoot")
	assert.Equal(t, to, to.MoveTowards(to, 1))
}

func TestVec3_Normalize(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	n := Vec3{X: 3, Z: 4}.Normalize()
	assert.InDelta(t, 1.0, n.Len(), 1e-9)
	assert.InDelta(t, 0.6, n.X, 1e-9)
}

func TestTransform_LookAtAndForward(t *testing.T) {
	tr := Transform{}
	tr.LookAt(Vec3{X: 5, Y: 3})
	assert.InDelta(t, math.Pi/2, tr.Yaw, 1e-9)
	f := tr.Forward()
	assert.InDelta(t, 1.0, f.X, 1e-9)
	assert.InDelta(t, 0.0, f.Z, 1e-9)

	tr.LookAt(tr.Position)
	assert.InDelta(t, math.Pi/2, tr.Yaw, 1e-9, "looking at self keeps yaw")
}
