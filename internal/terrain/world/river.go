package world

import (
	"hexterrain.dev/internal/terrain/geom"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mesh"
)

// River slots per direction.
const (
	RiverBankLeft   = 0
	RiverBankRight  = 1
	RiverInnerLeft  = 2
	RiverInnerRight = 3
	RiverEnd        = 4
)

var (
	outgoingRowUV = [4]geom.Vec2{{X: 0, Z: 1}, {X: 1, Z: 1}, {X: 0, Z: 0.7}, {X: 1, Z: 0.7}}
	incomingRowUV = [4]geom.Vec2{{X: 1, Z: 0}, {X: 0, Z: 0}, {X: 1, Z: 0.3}, {X: 0, Z: 0.3}}

	// Channel end UV for a tile with only an outgoing river, indexed by the
	// clockwise offset from the side to the outgoing direction.
	outgoingOnlyEndUV = [6]geom.Vec2{
		1: {X: 0, Z: 0.45},
		2: {X: 0, Z: 0.15},
		3: {X: 0.5, Z: 0},
		4: {X: 1, Z: 0.15},
		5: {X: 1, Z: 0.45},
	}
)

type sideUV struct {
	rot int // clockwise steps from the incoming side
	uv  geom.Vec2
}

// confluenceUV returns the channel end UVs an incoming river at side in
// contributes to the remaining sides, keyed by the clockwise offset from in
// to the outgoing side. Sides are given as clockwise rotations of in.
// Every bend except the counter-clockwise one also contributes the fallback
// entries, so their sides average both lists.
func confluenceUV(offset int) []sideUV {
	const (
		ccw  = -1
		ccw2 = -2
		opp  = 3
		cw   = 1
		cw2  = 2
	)
	fallback := []sideUV{{cw, geom.Vec2{X: 0, Z: 4.0 / 9}}, {cw2, geom.Vec2{X: 0, Z: 5.0 / 9}}, {opp, geom.Vec2{X: 0, Z: 6.0 / 9}}, {ccw, geom.Vec2{X: 1, Z: 4.0 / 7}}}
	switch offset {
	case 1:
		return append([]sideUV{{ccw, geom.Vec2{X: 1, Z: 0.4}}, {ccw2, geom.Vec2{X: 1, Z: 0.5}}, {opp, geom.Vec2{X: 1, Z: 0.6}}, {cw2, geom.Vec2{X: 1, Z: 0.7}}}, fallback...)
	case 2:
		return append([]sideUV{{ccw, geom.Vec2{X: 1, Z: 4.0 / 9}}, {ccw2, geom.Vec2{X: 1, Z: 5.0 / 9}}, {opp, geom.Vec2{X: 1, Z: 6.0 / 9}}, {cw, geom.Vec2{X: 0, Z: 4.0 / 7}}}, fallback...)
	case 3:
		return append([]sideUV{{ccw, geom.Vec2{X: 1, Z: 0.5}}, {ccw2, geom.Vec2{X: 1, Z: 5.0 / 8}}, {cw, geom.Vec2{X: 0, Z: 0.5}}, {cw2, geom.Vec2{X: 0, Z: 5.0 / 8}}}, fallback...)
	case 5:
		return []sideUV{{cw, geom.Vec2{X: 0, Z: 0.4}}, {cw2, geom.Vec2{X: 0, Z: 0.5}}, {opp, geom.Vec2{X: 0, Z: 0.6}}, {ccw2, geom.Vec2{X: 0, Z: 0.7}}}
	default: // 4, or no outgoing river
		return fallback
	}
}

// riverUVs is the UV layout of a tile's river records: the four bank and
// inner slots of every river side, the channel end of every side, and the
// river centre.
type riverUVs struct {
	rows   [6][4]geom.Vec2
	ends   [6]geom.Vec2
	center geom.Vec2
}

func computeRiverUVs(out hex.Direction, hasOut bool, incoming [6]bool) riverUVs {
	var r riverUVs
	anyIncoming := false
	for _, d := range hex.All {
		if incoming[d] {
			anyIncoming = true
			r.rows[d] = incomingRowUV
		}
	}
	if hasOut {
		r.rows[out] = outgoingRowUV
	}
	r.center = geom.Vec2{X: 0.5, Z: 0.3}
	if anyIncoming {
		r.center = geom.Vec2{X: 0.5, Z: 0.5}
	}

	var sum [6]geom.Vec2
	var count [6]int
	for _, in := range hex.All {
		if !incoming[in] {
			continue
		}
		offset := -1
		if hasOut {
			offset = in.Offset(out)
		}
		for _, s := range confluenceUV(offset) {
			d := in.Rotate(s.rot)
			sum[d] = sum[d].Add(s.uv)
			count[d]++
		}
	}

	for _, d := range hex.All {
		switch {
		case hasOut && out == d:
			r.ends[d] = geom.Vec2{X: 0.5, Z: 0.6}
		case incoming[d]:
			r.ends[d] = geom.Vec2{X: 0.5, Z: 0.4}
		case anyIncoming:
			if count[d] == 0 {
				r.ends[d] = r.center
			} else {
				r.ends[d] = sum[d].Scale(1 / float64(count[d]))
			}
		case hasOut:
			r.ends[d] = outgoingOnlyEndUV[d.Offset(out)]
		}
	}
	return r
}

// deriveRiver lays out the river records on top of the freshly derived
// ground records. Ground carving already happened in derive.
func (t *Tile) deriveRiver() {
	a := &t.world.arena
	m := t.world.metrics
	inner := t.world.geo.InnerHexRadius()
	uvs := computeRiverUVs(t.outgoing, t.hasOutgoing, t.incoming)

	set := func(id VertexID, off, uv geom.Vec2) {
		v := a.get(id)
		v.Offset = off
		v.Height = 0
		v.UV = uv
	}
	for _, d := range hex.All {
		g := t.ground.Row(d)
		r := t.river.Row(d)
		set(r[RiverBankLeft], a.get(g[SlotBankLeft]).Offset, uvs.rows[d][0])
		set(r[RiverBankRight], a.get(g[SlotBankRight]).Offset, uvs.rows[d][1])
		set(r[RiverInnerLeft], a.get(g[SlotInnerLeft]).Offset, uvs.rows[d][2])
		set(r[RiverInnerRight], a.get(g[SlotInnerRight]).Offset, uvs.rows[d][3])
		set(r[RiverEnd], t.jitter.Add(m.Middle(d).Normalize().Scale(inner*0.5)), uvs.ends[d])
	}
	set(t.riverCenterID, t.jitter, uvs.center)
}

func (t *Tile) triangulateRiver(m *mesh.Mesh) {
	p := t.world.Point
	rivers := t.riverMask()
	c := p(t.riverCenterID)
	for _, d := range hex.All {
		r := t.river.Row(d)
		next := t.river.Row(d.Clockwise())
		if rivers[d] {
			m.AddQuadUV(p(r[RiverInnerRight]), p(r[RiverInnerLeft]), p(r[RiverBankLeft]), p(r[RiverBankRight]))
			m.AddTriangle(p(r[RiverInnerLeft]), p(r[RiverInnerRight]), p(r[RiverEnd]))
			m.AddTriangle(p(r[RiverEnd]), p(r[RiverInnerRight]), p(next[RiverEnd]))
			if !rivers[d.CounterClockwise()] {
				prev := t.river.Row(d.CounterClockwise())
				m.AddTriangle(p(prev[RiverEnd]), p(r[RiverInnerLeft]), p(r[RiverEnd]))
			}
		}
		m.AddTriangle(p(r[RiverEnd]), p(next[RiverEnd]), c)
	}
}
