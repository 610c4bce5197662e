// Package geom holds the small vector and colour types shared by the hex
// layout, the vertex arena and the mesh sinks.
package geom

import "math"

// Vec2 is a point or direction on the horizontal (XZ) plane.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Z float64 `json:"z" yaml:"z"`
}

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Z + b.Z} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Z - b.Z} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Z * k} }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Z) }
func (a Vec2) Mid(b Vec2) Vec2      { return Vec2{(a.X + b.X) * 0.5, (a.Z + b.Z) * 0.5} }

func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Z + (b.Z-a.Z)*t}
}

// Normalize returns the unit vector of a, or the zero vector when a has no length.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Z / l}
}

// Cross is the z component of (b-a) x (c-a) in the XZ plane. Negative means
// a,b,c run clockwise when viewed from above (+Y).
func Cross(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Z-a.Z) - (b.Z-a.Z)*(c.X-a.X)
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) XZ() Vec2 { return Vec2{v.X, v.Z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

func (v Vec3) Dist(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Color is linear RGBA in [0,1].
type Color struct {
	R float32 `json:"r" yaml:"r"`
	G float32 `json:"g" yaml:"g"`
	B float32 `json:"b" yaml:"b"`
	A float32 `json:"a" yaml:"a"`
}

var White = Color{1, 1, 1, 1}

// MeanColor averages colours component-wise.
func MeanColor(cs ...Color) Color {
	if len(cs) == 0 {
		return Color{}
	}
	var out Color
	for _, c := range cs {
		out.R += c.R
		out.G += c.G
		out.B += c.B
		out.A += c.A
	}
	n := float32(len(cs))
	return Color{out.R / n, out.G / n, out.B / n, out.A / n}
}
