package world

import (
	"hexterrain.dev/internal/logic/mathx"
	"hexterrain.dev/internal/terrain/geom"
)

// Water rows are pure functions of the ground records and tile attributes,
// so an edge and its neighbours always agree on shared points no matter the
// order in which they were refreshed.

// wetDry returns the underwater tile of a shore first. For other edge types
// it returns a, b.
func (e *Edge) wetDry() (wet, dry *Tile) {
	if e.b != nil && !e.a.Underwater() && e.b.Underwater() {
		return e.b, e.a
	}
	return e.a, e.b
}

func (e *Edge) rowPositions(t *Tile) [5]geom.Vec3 {
	var out [5]geom.Vec3
	for i, id := range e.GroundRow(t) {
		out[i] = e.world.Position(id)
	}
	return out
}

// crossing finds where the segment p-q reaches height h, interpolating from
// the lower end. The parameter is clamped to [0,1]; a flat segment resolves
// to the upper end when h reaches it and to the lower end otherwise.
func crossing(p, q geom.Vec3, h float64) geom.Vec2 {
	lo, up := p, q
	if q.Y < p.Y {
		lo, up = q, p
	}
	var t float64
	if up.Y == lo.Y {
		if h >= up.Y {
			t = 1
		}
	} else {
		t = mathx.Clamp01((h - lo.Y) / (up.Y - lo.Y))
	}
	return lo.XZ().Lerp(up.XZ(), t)
}

// waterline is the row where the wet tile's water surface meets the strip,
// given as [left, right] seen from the dry tile.
func (e *Edge) waterline() [2]geom.Vec2 {
	wet, dry := e.wetDry()
	W, D := e.rowPositions(wet), e.rowPositions(dry)
	h := wet.WaterSurface()
	return [2]geom.Vec2{crossing(W[4], D[0], h), crossing(W[0], D[4], h)}
}

// leftShore is the waterline pushed ShoreWidth towards the wet tile at the
// wet tile's left end of the side.
func (e *Edge) leftShore() geom.Vec2 {
	wet, dry := e.wetDry()
	W, D := e.rowPositions(wet), e.rowPositions(dry)
	push := W[0].XZ().Sub(D[4].XZ()).Normalize().Scale(e.world.geo.ShoreWidth())
	return e.waterline()[1].Add(push)
}

func (e *Edge) rightShore() geom.Vec2 {
	wet, dry := e.wetDry()
	W, D := e.rowPositions(wet), e.rowPositions(dry)
	push := W[4].XZ().Sub(D[0].XZ()).Normalize().Scale(e.world.geo.ShoreWidth())
	return e.waterline()[0].Add(push)
}

// shoreVertex merges the left end of shore l with the right end of shore r
// where both meet on the same wet tile.
func shoreVertex(l, r *Edge) geom.Vec2 {
	return l.leftShore().Mid(r.rightShore())
}

// waterRowXZ computes t's water row as [left, right] seen from t.
func (e *Edge) waterRowXZ(t *Tile) [2]geom.Vec2 {
	d := e.SideOf(t)
	if e.Type() == EdgeShore {
		wet, _ := e.wetDry()
		if t != wet {
			return e.waterline()
		}
		left, right := e.leftShore(), e.rightShore()
		if bl := wet.Edge(d.CounterClockwise()); isShore(bl) {
			left = shoreVertex(e, bl)
		}
		if br := wet.Edge(d.Clockwise()); isShore(br) {
			right = shoreVertex(br, e)
		}
		return [2]geom.Vec2{left, right}
	}

	row := e.GroundRow(t)
	left := e.world.Position(row[0]).XZ()
	right := e.world.Position(row[4]).XZ()
	if le := t.Edge(d.CounterClockwise()); isShore(le) {
		left = le.waterRowXZ(t)[1]
	}
	if re := t.Edge(d.Clockwise()); isShore(re) {
		right = re.waterRowXZ(t)[0]
	}
	return [2]geom.Vec2{left, right}
}

// shorePairXZ is the waterline at the two river banks, indexed like the dry
// tile's river bank slots.
func (e *Edge) shorePairXZ() [2]geom.Vec2 {
	wet, dry := e.wetDry()
	W, D := e.rowPositions(wet), e.rowPositions(dry)
	h := wet.WaterSurface()
	return [2]geom.Vec2{crossing(W[3], D[1], h), crossing(W[1], D[3], h)}
}
