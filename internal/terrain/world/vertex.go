package world

import (
	"hexterrain.dev/internal/terrain/geom"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mesh"
)

// Kind selects which base elevation of the owner tile a vertex sits on.
type Kind uint8

const (
	KindGround Kind = iota
	KindWater
	KindRiver
)

type (
	TileID   int32
	VertexID int32
)

const NoVertex VertexID = -1

// Vertex is one arena record. Its world position is the owner tile's centre
// plus Offset on the XZ plane, and the owner's base elevation for Kind plus
// Height on Y.
type Vertex struct {
	Owner  TileID
	Kind   Kind
	Offset geom.Vec2
	Height float64
	UV     geom.Vec2
}

// Vertices maps each direction to a fixed-length row of T.
type Vertices[T any] [6][]T

func NewVertices[T any](n int, fill T) Vertices[T] {
	var v Vertices[T]
	for d := range v {
		v[d] = make([]T, n)
		for i := range v[d] {
			v[d][i] = fill
		}
	}
	return v
}

func (v Vertices[T]) At(d hex.Direction, i int) T { return v[d%6][i] }
func (v Vertices[T]) Row(d hex.Direction) []T     { return v[d%6] }
func (v Vertices[T]) Len() int                    { return len(v[0]) }

// arena owns every vertex record of a world. Tiles and edges reserve fixed
// blocks when they are created and overwrite them in place afterwards.
type arena struct {
	verts []Vertex
}

func (a *arena) alloc(n int, owner TileID, kind Kind) VertexID {
	first := VertexID(len(a.verts))
	for i := 0; i < n; i++ {
		a.verts = append(a.verts, Vertex{Owner: owner, Kind: kind})
	}
	return first
}

func (a *arena) get(id VertexID) *Vertex { return &a.verts[id] }

func (a *arena) reset() { a.verts = a.verts[:0] }

// Vertex returns a copy of the record behind id.
func (w *World) Vertex(id VertexID) Vertex { return w.arena.verts[id] }

// Position resolves id to a world-space position.
func (w *World) Position(id VertexID) geom.Vec3 {
	v := &w.arena.verts[id]
	t := w.tiles[v.Owner]
	xz := t.center.Add(v.Offset)
	return geom.Vec3{X: xz.X, Y: t.baseElevation(v.Kind) + v.Height, Z: xz.Z}
}

// Point resolves id to a mesh point coloured by its owner.
func (w *World) Point(id VertexID) mesh.Point {
	v := &w.arena.verts[id]
	return mesh.Point{Pos: w.Position(id), Color: w.tiles[v.Owner].color, UV: v.UV}
}

// place stores an absolute XZ position in id, relative to owner.
func (w *World) place(id VertexID, owner *Tile, kind Kind, xz geom.Vec2) {
	v := w.arena.get(id)
	v.Owner = owner.id
	v.Kind = kind
	v.Offset = xz.Sub(owner.center)
	v.Height = 0
	v.UV = geom.Vec2{}
}
