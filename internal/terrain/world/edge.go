package world

import (
	"hexterrain.dev/internal/terrain/geom"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mesh"
)

type EdgeType uint8

const (
	EdgeLand EdgeType = iota
	EdgeShore
	EdgeWater
)

func (t EdgeType) String() string {
	switch t {
	case EdgeLand:
		return "LAND"
	case EdgeShore:
		return "SHORE"
	case EdgeWater:
		return "WATER"
	}
	return "UNKNOWN"
}

// Ground row positions: the even slots of one tile side, left to right as
// seen from that tile. Row index i of one tile faces index 4-i of the other.
var rowSlots = [5]int{SlotFoldLeft, SlotBankLeft, SlotMiddle, SlotBankRight, SlotFoldRight}

// Edge is the boundary strip between tile a and its neighbour in a primary
// direction. It references the ground records of both tiles and owns the
// water and shore records along the strip.
type Edge struct {
	world *World
	a, b  *Tile
	dir   hex.Direction
	ready bool

	rowA, rowB [5]VertexID
	water      [2][2]VertexID // [side][left,right]; side 0 is a, side 1 is b
	shore      [2]VertexID
}

func newEdge(w *World, a *Tile, dir hex.Direction) *Edge {
	e := &Edge{world: w, a: a, dir: dir}
	base := w.arena.alloc(6, a.id, KindWater)
	e.water = [2][2]VertexID{{base, base + 1}, {base + 2, base + 3}}
	e.shore = [2]VertexID{base + 4, base + 5}
	for i := range e.rowA {
		e.rowA[i], e.rowB[i] = NoVertex, NoVertex
	}
	return e
}

func (e *Edge) A() *Tile                 { return e.a }
func (e *Edge) B() *Tile                 { return e.b }
func (e *Edge) Direction() hex.Direction { return e.dir }

// Ready reports whether the edge has a neighbour and has been refreshed.
func (e *Edge) Ready() bool { return e.ready }

// Type classifies the boundary. An edge without a neighbour counts as WATER
// so open water runs to the world border.
func (e *Edge) Type() EdgeType {
	if e.b == nil {
		return EdgeWater
	}
	aw, bw := e.a.Underwater(), e.b.Underwater()
	switch {
	case aw && bw:
		return EdgeWater
	case aw != bw:
		return EdgeShore
	}
	return EdgeLand
}

// Lower is the lower of the two tiles; a wins ties.
func (e *Edge) Lower() *Tile {
	if e.b == nil || e.a.height <= e.b.height {
		return e.a
	}
	return e.b
}

func (e *Edge) Upper() *Tile {
	if e.b == nil {
		return e.a
	}
	return e.Other(e.Lower())
}

// Upstream points from Lower to Upper.
func (e *Edge) Upstream() hex.Direction {
	if e.Lower() == e.a {
		return e.dir
	}
	return e.dir.Opposite()
}

func (e *Edge) Other(t *Tile) *Tile {
	if t == e.a {
		return e.b
	}
	return e.a
}

func (e *Edge) side(t *Tile) int {
	if t == e.a {
		return 0
	}
	return 1
}

// SideOf is the direction of t's side that this edge runs along.
func (e *Edge) SideOf(t *Tile) hex.Direction {
	if t == e.a {
		return e.dir
	}
	return e.dir.Opposite()
}

func (e *Edge) GroundRow(t *Tile) [5]VertexID {
	if t == e.a {
		return e.rowA
	}
	return e.rowB
}

// WaterRow returns t's water row as [left, right] seen from t.
func (e *Edge) WaterRow(t *Tile) [2]VertexID { return e.water[e.side(t)] }

// ShorePair returns the waterline points at the two river banks.
func (e *Edge) ShorePair() [2]VertexID { return e.shore }

func isShore(e *Edge) bool { return e != nil && e.ready && e.Type() == EdgeShore }

// Refresh resolves the neighbour, rebuilds both ground rows and then the
// water rows. Without a neighbour the edge holds no geometry.
func (e *Edge) Refresh() {
	e.b = e.world.Neighbor(e.a, e.dir)
	if e.b == nil {
		e.ready = false
		return
	}
	for i, s := range rowSlots {
		e.rowA[i] = e.a.ground.At(e.dir, s)
		e.rowB[i] = e.b.ground.At(e.dir.Opposite(), s)
	}
	e.ready = true
	e.RefreshWater(true)
}

// RefreshWater recomputes the water rows and, for a shore, the shore pair.
// With refreshNeighbors a shore also refreshes the shore edges beside it on
// the wet tile (bottom left and bottom right) once, without recursing.
func (e *Edge) RefreshWater(refreshNeighbors bool) {
	if !e.ready {
		return
	}
	typ := e.Type()
	wet, _ := e.wetDry()
	for side, t := range [2]*Tile{e.a, e.b} {
		owner := t
		if typ == EdgeShore {
			owner = wet
		}
		row := e.waterRowXZ(t)
		e.world.place(e.water[side][0], owner, KindWater, row[0])
		e.world.place(e.water[side][1], owner, KindWater, row[1])
	}
	if typ != EdgeShore {
		return
	}
	pair := e.shorePairXZ()
	e.world.place(e.shore[0], wet, KindWater, pair[0])
	e.world.place(e.shore[1], wet, KindWater, pair[1])
	if !refreshNeighbors {
		return
	}
	sd := e.SideOf(wet)
	for _, n := range [2]*Edge{wet.Edge(sd.CounterClockwise()), wet.Edge(sd.Clockwise())} {
		if isShore(n) {
			n.RefreshWater(false)
		}
	}
}

// Triangulate emits the ground strip, then the shore or water quad, then the
// river crossing if a river flows over this boundary.
func (e *Edge) Triangulate(b *mesh.Buffers) {
	if !e.ready {
		return
	}
	p := e.world.Point
	var A, B [5]mesh.Point
	for i := range A {
		A[i] = p(e.rowA[i])
		B[i] = p(e.rowB[i])
	}
	b.Ground.AddQuad(B[4], B[3], A[1], A[0])
	b.Ground.AddQuad(B[1], B[0], A[4], A[3])
	U, L := A, B
	if e.Upper() == e.b {
		U, L = B, A
	}
	b.Ground.AddTriangle(U[3], U[2], L[1])
	b.Ground.AddTriangle(U[2], L[2], L[1])
	b.Ground.AddTriangle(U[2], L[3], L[2])
	b.Ground.AddTriangle(U[2], U[1], L[3])

	switch e.Type() {
	case EdgeShore:
		wet, dry := e.wetDry()
		d := e.WaterRow(dry)
		w := e.WaterRow(wet)
		b.Shore.AddQuad(p(d[1]), p(d[0]), p(w[1]), p(w[0]))
	case EdgeWater:
		if e.a.Underwater() && e.b.Underwater() {
			wa, wb := e.water[0], e.water[1]
			b.Water.AddQuad(p(wb[1]), p(wb[0]), p(wa[1]), p(wa[0]))
		}
	}
	e.triangulateRiver(b.River)
}

// riverSource returns the tile whose outgoing river crosses this edge and
// the tile it flows into.
func (e *Edge) riverSource() (src, dst *Tile) {
	if out, ok := e.a.OutgoingRiver(); ok && out == e.dir {
		return e.a, e.b
	}
	if out, ok := e.b.OutgoingRiver(); ok && out == e.dir.Opposite() {
		return e.b, e.a
	}
	return nil, nil
}

func (e *Edge) triangulateRiver(m *mesh.Mesh) {
	src, dst := e.riverSource()
	if src == nil || (src.Underwater() && dst.Underwater()) {
		return
	}
	p := e.world.Point
	sd := e.SideOf(src)
	s0 := p(src.river.At(sd, RiverBankLeft))
	s1 := p(src.river.At(sd, RiverBankRight))
	if dst.Underwater() {
		// River mouth: the channel ends on the waterline of the lake.
		m0, m1 := p(e.shore[0]), p(e.shore[1])
		m0.UV = geom.Vec2{X: 0, Z: 0}
		m1.UV = geom.Vec2{X: 1, Z: 0}
		m.AddQuadUV(s1, s0, m0, m1)
		return
	}
	td := sd.Opposite()
	if !dst.HasIncomingRiver(td) {
		return
	}
	m.AddQuadUV(s1, s0, p(dst.river.At(td, RiverBankRight)), p(dst.river.At(td, RiverBankLeft)))
}
