// Package mesh collects triangles for one surface layer of a chunk.
package mesh

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"hexterrain.dev/internal/terrain/geom"
)

type Layer uint8

const (
	Ground Layer = iota
	Water
	Shore
	River
)

var Layers = [4]Layer{Ground, Water, Shore, River}

func (l Layer) String() string {
	switch l {
	case Ground:
		return "ground"
	case Water:
		return "water"
	case Shore:
		return "shore"
	case River:
		return "river"
	}
	return "unknown"
}

// Point is a fully resolved mesh vertex.
type Point struct {
	Pos   geom.Vec3
	Color geom.Color
	UV    geom.Vec2
}

// Quad UVs in emission order: (0,1) (1,1) (1,0) (0,0).
var quadUV = [4]geom.Vec2{{X: 0, Z: 1}, {X: 1, Z: 1}, {X: 1, Z: 0}, {X: 0, Z: 0}}

// Mesh is a non-indexed triangle list: every triangle appends three points,
// and Indices numbers them in order for consumers that want an index buffer.
type Mesh struct {
	Layer   Layer
	Points  []Point
	Indices []uint32
}

func New(l Layer) *Mesh { return &Mesh{Layer: l} }

func (m *Mesh) Clear() {
	m.Points = m.Points[:0]
	m.Indices = m.Indices[:0]
}

func (m *Mesh) AddTriangle(a, b, c Point) {
	n := uint32(len(m.Points))
	m.Points = append(m.Points, a, b, c)
	m.Indices = append(m.Indices, n, n+1, n+2)
}

// AddQuad emits (a,b,c) and (a,c,d) with generated quad UVs.
func (m *Mesh) AddQuad(a, b, c, d Point) {
	a.UV, b.UV, c.UV, d.UV = quadUV[0], quadUV[1], quadUV[2], quadUV[3]
	m.AddQuadUV(a, b, c, d)
}

// AddQuadUV emits (a,b,c) and (a,c,d) keeping the points' own UVs.
func (m *Mesh) AddQuadUV(a, b, c, d Point) {
	m.AddTriangle(a, b, c)
	m.AddTriangle(a, c, d)
}

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

func (m *Mesh) Triangle(i int) [3]Point {
	return [3]Point{m.Points[m.Indices[3*i]], m.Points[m.Indices[3*i+1]], m.Points[m.Indices[3*i+2]]}
}

// Buffers are the four layer meshes of one chunk.
type Buffers struct {
	Ground *Mesh
	Water  *Mesh
	Shore  *Mesh
	River  *Mesh
}

func NewBuffers() *Buffers {
	return &Buffers{Ground: New(Ground), Water: New(Water), Shore: New(Shore), River: New(River)}
}

func (b *Buffers) Layer(l Layer) *Mesh {
	switch l {
	case Water:
		return b.Water
	case Shore:
		return b.Shore
	case River:
		return b.River
	}
	return b.Ground
}

func (b *Buffers) Clear() {
	for _, l := range Layers {
		b.Layer(l).Clear()
	}
}

func (b *Buffers) TriangleCount() int {
	n := 0
	for _, l := range Layers {
		n += b.Layer(l).TriangleCount()
	}
	return n
}

// Digest hashes every point of every layer in emission order.
func (b *Buffers) Digest() [32]byte {
	h := sha256.New()
	var tmp [8]byte
	putF := func(f float64) {
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
		h.Write(tmp[:])
	}
	for _, l := range Layers {
		m := b.Layer(l)
		binary.LittleEndian.PutUint64(tmp[:], uint64(len(m.Points)))
		h.Write(tmp[:])
		for _, p := range m.Points {
			putF(p.Pos.X)
			putF(p.Pos.Y)
			putF(p.Pos.Z)
			putF(p.UV.X)
			putF(p.UV.Z)
			putF(float64(p.Color.R))
			putF(float64(p.Color.G))
			putF(float64(p.Color.B))
			putF(float64(p.Color.A))
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
