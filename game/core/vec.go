package core

import "math"

// Vec3 is a world-space vector. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Up is the world up axis.
var Up = Vec3{Y: 1}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64         { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Dist(o Vec3) float64  { return v.Sub(o).Len() }
func (v Vec3) Flat() Vec3           { return Vec3{X: v.X, Z: v.Z} }
func (v Vec3) IsZero() bool         { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Normalize returns the unit vector in v's direction, or the zero vector
// when v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// MoveTowards steps from v toward target by at most maxDelta without
// overshooting.
func (v Vec3) MoveTowards(target Vec3, maxDelta float64) Vec3 {
	d := target.Sub(v)
	l := d.Len()
	if l <= maxDelta || l == 0 {
		return target
	}
	return v.Add(d.Scale(maxDelta / l))
}

// Transform is an actor's placement: position plus yaw around Up in radians.
// Yaw 0 faces +Z.
type Transform struct {
	Position Vec3    `json:"position"`
	Yaw      float64 `json:"yaw"`
}

// Forward is the unit facing direction on the ground plane.
func (t Transform) Forward() Vec3 {
	return Vec3{X: math.Sin(t.Yaw), Z: math.Cos(t.Yaw)}
}

// LookAt turns the transform to face p. Height differences are ignored and
// looking at the current position keeps the old yaw.
func (t *Transform) LookAt(p Vec3) {
	d := p.Sub(t.Position).Flat()
	if d.IsZero() {
		return
	}
	t.Yaw = math.Atan2(d.X, d.Z)
}
