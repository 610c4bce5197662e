package world

import (
	"hexterrain.dev/internal/terrain/geom"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mesh"
)

// cornerOwnerDirs are the directions for which a tile owns the junction
// with its neighbours in d and d.Clockwise(). Every three-tile junction has
// exactly one owner.
var cornerOwnerDirs = [2]hex.Direction{hex.NE, hex.E}

// cornerTile is one of the three tiles at a junction in clockwise order.
// next faces the following tile and next.Clockwise() faces the previous one.
type cornerTile struct {
	t    *Tile
	next hex.Direction
}

func (c cornerTile) prev() hex.Direction { return c.next.Clockwise() }

// junction returns the tiles around the corner of t between d and
// d.Clockwise(), or false when one of them does not exist.
func junction(t *Tile, d hex.Direction) ([3]cornerTile, bool) {
	b := t.Neighbor(d)
	c := t.Neighbor(d.Clockwise())
	if b == nil || c == nil {
		return [3]cornerTile{}, false
	}
	return [3]cornerTile{{t, d}, {b, d.Rotate(2)}, {c, d.Rotate(4)}}, true
}

// TriangulateCorners emits the junctions t owns.
func (t *Tile) TriangulateCorners(b *mesh.Buffers) {
	for _, d := range cornerOwnerDirs {
		cs, ok := junction(t, d)
		if !ok {
			continue
		}
		triangulateGroundCorner(cs, b.Ground)
		triangulateWaterCorner(cs, b)
	}
}

// triangulateGroundCorner caps the gap between the three ground strips with
// a hexagon fanned around its mean point.
func triangulateGroundCorner(cs [3]cornerTile, m *mesh.Mesh) {
	w := cs[0].t.world
	var ring [6]mesh.Point
	for i, c := range cs {
		ring[2*i] = w.Point(c.t.ground.At(c.prev(), SlotFoldLeft))
		ring[2*i+1] = w.Point(c.t.ground.At(c.next, SlotFoldRight))
	}
	center := meanPoint(ring[:])
	center.Color = geom.MeanColor(cs[0].t.color, cs[1].t.color, cs[2].t.color)
	for i := range ring {
		m.AddTriangle(center, ring[i], ring[(i+1)%6])
	}
}

// waterEnds returns the two water points a junction tile contributes, or
// false when one of its edges has not been refreshed yet.
func (c cornerTile) waterEnds() ([2]mesh.Point, bool) {
	ep, en := c.t.Edge(c.prev()), c.t.Edge(c.next)
	if ep == nil || en == nil || !ep.ready || !en.ready {
		return [2]mesh.Point{}, false
	}
	w := c.t.world
	return [2]mesh.Point{w.Point(ep.WaterRow(c.t)[0]), w.Point(en.WaterRow(c.t)[1])}, true
}

func triangulateWaterCorner(cs [3]cornerTile, b *mesh.Buffers) {
	wet := 0
	for _, c := range cs {
		if c.t.Underwater() {
			wet++
		}
	}
	switch wet {
	case 0:
		return
	case 1:
		for !cs[0].t.Underwater() {
			cs = [3]cornerTile{cs[1], cs[2], cs[0]}
		}
	case 2:
		for cs[2].t.Underwater() {
			cs = [3]cornerTile{cs[1], cs[2], cs[0]}
		}
	}
	var ends [3][2]mesh.Point
	for i, c := range cs {
		e, ok := c.waterEnds()
		if !ok {
			return
		}
		ends[i] = e
	}

	switch wet {
	case 3:
		ring := []mesh.Point{ends[0][0], ends[0][1], ends[1][0], ends[1][1], ends[2][0], ends[2][1]}
		center := meanPoint(ring)
		for i := range ring {
			b.Water.AddTriangle(center, ring[i], ring[(i+1)%6])
		}
	case 2:
		// WWL: both wet tiles end on a merged shore point.
		b.Shore.AddQuad(ends[0][0], ends[1][0], ends[2][0], ends[2][1])
	case 1:
		// WLL: one shore triangle between the wet tile and both waterlines.
		b.Shore.AddTriangle(ends[0][0], ends[1][0], ends[2][1])
	}
}

func meanPoint(ps []mesh.Point) mesh.Point {
	var sum geom.Vec3
	for _, p := range ps {
		sum = sum.Add(p.Pos)
	}
	out := ps[0]
	out.Pos = sum.Scale(1 / float64(len(ps)))
	out.UV = geom.Vec2{}
	return out
}
