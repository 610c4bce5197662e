package world

import (
	"sort"

	"hexterrain.dev/internal/logic/mathx"
	"hexterrain.dev/internal/terrain/geom"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mesh"
)

// Ground slots per direction. Even slots lie on the tile side, odd slots are
// interior. Slot 5 of d is the same record as slot 3 of d.Clockwise().
const (
	SlotFoldLeft      = 0
	SlotShoulderLeft  = 1
	SlotBankLeft      = 2
	SlotInnerLeft     = 3
	SlotMiddle        = 4
	SlotInnerRight    = 5
	SlotBankRight     = 6
	SlotShoulderRight = 7
	SlotFoldRight     = 8

	groundSlots = 9
	riverSlots  = 5
)

// Per-tile arena block: centre, 8 unique ground records per direction, 5
// river records per direction, river centre, water centre.
const (
	blockCenter      = 0
	blockGround      = 1
	blockRiver       = blockGround + 6*8
	blockRiverCenter = blockRiver + 6*riverSlots
	blockWaterCenter = blockRiverCenter + 1
	tileBlockSize    = blockWaterCenter + 1
)

var groundBlockIndex = [groundSlots]int{0, 1, 2, 3, 4, -1, 5, 6, 7}

type Tile struct {
	world *World
	chunk *Chunk
	id    TileID

	coords hex.Coords
	center geom.Vec2
	jitter geom.Vec2

	height      int
	waterLevel  int
	color       geom.Color
	outgoing    hex.Direction
	hasOutgoing bool
	incoming    [6]bool

	centerID      VertexID
	riverCenterID VertexID
	waterCenterID VertexID
	ground        Vertices[VertexID]
	river         Vertices[VertexID]

	edges [3]*Edge
}

func newTile(w *World, id TileID, c hex.Coords) *Tile {
	t := &Tile{
		world:  w,
		id:     id,
		coords: c,
		center: w.metrics.Center(c),
		color:  geom.White,
	}
	dx, dz := mathx.Jitter2(w.geo.Seed, c.X, c.Y, w.geo.CenterJitter)
	t.jitter = geom.Vec2{X: dx, Z: dz}

	base := w.arena.alloc(tileBlockSize, id, KindGround)
	t.centerID = base + blockCenter
	t.riverCenterID = base + blockRiverCenter
	t.waterCenterID = base + blockWaterCenter
	w.arena.get(t.waterCenterID).Kind = KindWater
	w.arena.get(t.riverCenterID).Kind = KindRiver

	t.ground = NewVertices(groundSlots, NoVertex)
	t.river = NewVertices(riverSlots, NoVertex)
	for _, d := range hex.All {
		for i := 0; i < groundSlots; i++ {
			if i == SlotInnerRight {
				continue
			}
			t.ground[d][i] = base + blockGround + VertexID(int(d)*8+groundBlockIndex[i])
		}
		for i := 0; i < riverSlots; i++ {
			rid := base + blockRiver + VertexID(int(d)*riverSlots+i)
			t.river[d][i] = rid
			w.arena.get(rid).Kind = KindRiver
		}
	}
	for _, d := range hex.All {
		t.ground[d][SlotInnerRight] = t.ground[d.Clockwise()][SlotInnerLeft]
	}
	for i, d := range hex.Primary {
		t.edges[i] = newEdge(w, t, d)
	}
	return t
}

func (t *Tile) Coords() hex.Coords     { return t.coords }
func (t *Tile) Center() geom.Vec2      { return t.center }
func (t *Tile) Height() int            { return t.height }
func (t *Tile) WaterLevel() int        { return t.waterLevel }
func (t *Tile) Color() geom.Color      { return t.color }
func (t *Tile) Chunk() *Chunk          { return t.chunk }
func (t *Tile) Underwater() bool       { return t.waterLevel > t.height }
func (t *Tile) HasRiver() bool         { return t.hasOutgoing || t.incomingCount() > 0 }
func (t *Tile) CenterVertex() VertexID { return t.centerID }

// Ground returns the ground vertex id for slot i of direction d.
func (t *Tile) Ground(d hex.Direction, i int) VertexID { return t.ground.At(d, i) }

// River returns the river vertex id for slot i of direction d.
func (t *Tile) River(d hex.Direction, i int) VertexID { return t.river.At(d, i) }

func (t *Tile) OutgoingRiver() (hex.Direction, bool) { return t.outgoing, t.hasOutgoing }

func (t *Tile) HasIncomingRiver(d hex.Direction) bool { return t.incoming[d%6] }

// IncomingRivers lists incoming directions in clockwise order from NE.
func (t *Tile) IncomingRivers() []hex.Direction {
	var out []hex.Direction
	for _, d := range hex.All {
		if t.incoming[d] {
			out = append(out, d)
		}
	}
	return out
}

func (t *Tile) incomingCount() int {
	n := 0
	for _, in := range t.incoming {
		if in {
			n++
		}
	}
	return n
}

// riverMask reports every direction touched by an incoming or outgoing river.
func (t *Tile) riverMask() [6]bool {
	m := t.incoming
	if t.hasOutgoing {
		m[t.outgoing] = true
	}
	return m
}

func (t *Tile) Elevation() float64    { return float64(t.height) * t.world.geo.HeightScale }
func (t *Tile) WaterSurface() float64 { return float64(t.waterLevel) * t.world.geo.HeightScale }

// RiverSurface is the water height inside a carved channel.
func (t *Tile) RiverSurface() float64 {
	g := t.world.geo
	return t.Elevation() - g.RiverDepth()*(1-g.RiverWaterHeight)
}

func (t *Tile) baseElevation(k Kind) float64 {
	switch k {
	case KindWater:
		return t.WaterSurface()
	case KindRiver:
		return t.RiverSurface()
	}
	return t.Elevation()
}

func (t *Tile) SetHeight(h int) {
	if t.height == h {
		return
	}
	t.height = h
	t.Refresh()
}

func (t *Tile) SetWaterLevel(l int) {
	if t.waterLevel == l {
		return
	}
	t.waterLevel = l
	t.Refresh()
}

func (t *Tile) SetColor(c geom.Color) {
	if t.color == c {
		return
	}
	t.color = c
	t.Refresh()
}

// AddOutgoingRiver points this tile's river out through side d, replacing
// any previous outgoing direction. The neighbour behind the old outgoing
// side loses its incoming river, and a neighbour flowing in through d loses
// its outgoing one.
func (t *Tile) AddOutgoingRiver(d hex.Direction) {
	d %= 6
	if t.hasOutgoing && t.outgoing == d {
		return
	}
	if t.hasOutgoing {
		t.unlinkRiver(t.outgoing)
	}
	if t.incoming[d] {
		t.unlinkRiver(d)
	}
	t.outgoing = d
	t.hasOutgoing = true
	t.incoming[d] = false
	t.Refresh()
}

// AddIncomingRiver adds a river entering through side d. Duplicates and the
// current outgoing side are ignored.
func (t *Tile) AddIncomingRiver(d hex.Direction) {
	d %= 6
	if t.incoming[d] || (t.hasOutgoing && t.outgoing == d) {
		return
	}
	t.incoming[d] = true
	t.Refresh()
}

// RemoveRivers clears every river of the tile together with the matching
// halves on its neighbours.
func (t *Tile) RemoveRivers() {
	if !t.HasRiver() {
		return
	}
	if t.hasOutgoing {
		t.unlinkRiver(t.outgoing)
	}
	for _, d := range hex.All {
		if t.incoming[d] {
			t.unlinkRiver(d)
		}
	}
	t.hasOutgoing = false
	t.incoming = [6]bool{}
	t.Refresh()
}

// unlinkRiver clears the neighbour's half of a river crossing side d.
func (t *Tile) unlinkRiver(d hex.Direction) {
	n := t.Neighbor(d)
	if n == nil {
		return
	}
	back := d.Opposite()
	changed := false
	if n.incoming[back] {
		n.incoming[back] = false
		changed = true
	}
	if n.hasOutgoing && n.outgoing == back {
		n.hasOutgoing = false
		changed = true
	}
	if changed {
		n.Refresh()
	}
}

// Neighbor returns the existing tile across side d, or nil.
func (t *Tile) Neighbor(d hex.Direction) *Tile { return t.world.Neighbor(t, d) }

// Edge returns the edge that owns side d: this tile's own edge for primary
// directions, otherwise the neighbour's edge in the opposite direction. It
// returns nil when that neighbour does not exist.
func (t *Tile) Edge(d hex.Direction) *Edge {
	d %= 6
	if d.IsPrimary() {
		return t.edges[d]
	}
	n := t.Neighbor(d)
	if n == nil {
		return nil
	}
	return n.edges[d.Opposite()]
}

// OwnEdges returns the NE, E and SE edges in that order.
func (t *Tile) OwnEdges() [3]*Edge { return t.edges }

// Refresh re-derives the tile's own vertices and queues it and its existing
// neighbours for the next triangulation pass of their chunks.
func (t *Tile) Refresh() {
	t.derive()
	t.world.markDirty(t)
	for _, d := range hex.All {
		if n := t.Neighbor(d); n != nil {
			t.world.markDirty(n)
		}
	}
}

// derive rebuilds every ground and river record of the tile from its
// attributes. It only writes records the tile owns.
func (t *Tile) derive() {
	g := t.world.geo
	m := t.world.metrics
	a := &t.world.arena

	fold := g.EdgeFoldWidth()
	halfRiver := g.RiverWidth() / 2
	inner := g.InnerHexRadius()
	depth := g.RiverDepth()
	rivers := t.riverMask()
	hasRiver := t.HasRiver()

	set := func(id VertexID, off geom.Vec2, h float64) {
		v := a.get(id)
		v.Offset = off
		v.Height = h
		v.UV = geom.Vec2{}
	}
	lowered := func(b bool) float64 {
		if b {
			return -depth
		}
		return 0
	}

	set(t.centerID, t.jitter, lowered(hasRiver))
	for _, d := range hex.All {
		l, r := m.Left(d), m.Right(d)
		mid := l.Mid(r)
		u := r.Sub(l).Normalize()
		innerL := t.jitter.Add(l.Normalize().Scale(inner))
		innerR := t.jitter.Add(r.Normalize().Scale(inner))
		s0 := l.Add(u.Scale(fold))
		s8 := r.Sub(u.Scale(fold))

		row := t.ground.Row(d)
		set(row[SlotFoldLeft], s0, 0)
		set(row[SlotShoulderLeft], innerL.Mid(s0), 0)
		set(row[SlotBankLeft], mid.Sub(u.Scale(halfRiver)), 0)
		set(row[SlotInnerLeft], innerL, lowered(rivers[d] || rivers[d.CounterClockwise()]))
		set(row[SlotMiddle], mid, lowered(rivers[d]))
		set(row[SlotBankRight], mid.Add(u.Scale(halfRiver)), 0)
		set(row[SlotShoulderRight], innerR.Mid(s8), 0)
		set(row[SlotFoldRight], s8, 0)
	}
	set(t.waterCenterID, t.jitter, 0)
	if hasRiver {
		t.deriveRiver()
	}
}

// Triangulate emits the tile interior: river channel first, then the ground
// fan, then the water fan when the tile is underwater.
func (t *Tile) Triangulate(b *mesh.Buffers) {
	if t.HasRiver() {
		t.triangulateRiver(b.River)
	}
	t.triangulateGround(b.Ground)
	if t.Underwater() {
		t.triangulateWater(b.Water)
	}
}

func (t *Tile) triangulateGround(m *mesh.Mesh) {
	p := t.world.Point
	c := p(t.centerID)
	for _, d := range hex.All {
		s := t.ground.Row(d)
		n := t.ground.Row(d.Clockwise())
		m.AddTriangle(c, p(s[3]), p(s[5]))
		m.AddTriangle(p(s[1]), p(s[0]), p(s[2]))
		m.AddTriangle(p(s[3]), p(s[1]), p(s[2]))
		m.AddTriangle(p(s[3]), p(s[2]), p(s[4]))
		m.AddTriangle(p(s[3]), p(s[4]), p(s[5]))
		m.AddTriangle(p(s[4]), p(s[6]), p(s[5]))
		m.AddTriangle(p(s[6]), p(s[7]), p(s[5]))
		m.AddTriangle(p(s[6]), p(s[8]), p(s[7]))
		// chamfer towards the next side
		m.AddTriangle(p(s[8]), p(n[0]), p(n[1]))
		m.AddTriangle(p(s[8]), p(n[1]), p(s[7]))
		m.AddTriangle(p(n[1]), p(s[5]), p(s[7]))
	}
}

// waterEnds returns the left and right water points of side d, falling back
// to the ground fold points at water level when no edge has computed them.
func (t *Tile) waterEnds(d hex.Direction) [2]mesh.Point {
	if e := t.Edge(d); e != nil && e.ready {
		row := e.WaterRow(t)
		return [2]mesh.Point{t.world.Point(row[0]), t.world.Point(row[1])}
	}
	y := t.WaterSurface()
	var out [2]mesh.Point
	for k, slot := range [2]int{SlotFoldLeft, SlotFoldRight} {
		xz := t.center.Add(t.world.arena.get(t.ground.At(d, slot)).Offset)
		out[k] = mesh.Point{Pos: geom.Vec3{X: xz.X, Y: y, Z: xz.Z}, Color: t.color}
	}
	return out
}

func (t *Tile) triangulateWater(m *mesh.Mesh) {
	c := t.world.Point(t.waterCenterID)
	var ends [6][2]mesh.Point
	for _, d := range hex.All {
		ends[d] = t.waterEnds(d)
	}
	for _, d := range hex.All {
		m.AddTriangle(c, ends[d][0], ends[d][1])
		// A shore on either side already joins the two ends into one point.
		if isShore(t.Edge(d)) || isShore(t.Edge(d.Clockwise())) {
			continue
		}
		m.AddTriangle(c, ends[d][1], ends[d.Clockwise()][0])
	}
}

func sortTiles(ts []*Tile) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].coords.Less(ts[j].coords) })
}
