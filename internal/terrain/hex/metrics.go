package hex

import (
	"math"

	"hexterrain.dev/internal/logic/mathx"
	"hexterrain.dev/internal/terrain/geom"
)

// Cos30 is the ratio between the inner and outer radius of a hexagon.
var Cos30 = math.Cos(math.Pi / 6)

// Metrics is the pure layout maths for a pointy-top hex grid where
// neighbouring tiles are separated by a gap of EdgeWidth.
type Metrics struct {
	InnerRadius float64
	OuterRadius float64
	EdgeWidth   float64

	corners [6]geom.Vec2
}

func NewMetrics(scale, edgeWidth float64) Metrics {
	r := scale / 2
	R := r / Cos30
	m := Metrics{InnerRadius: r, OuterRadius: R, EdgeWidth: edgeWidth}
	m.corners = [6]geom.Vec2{
		{X: 0, Z: R},
		{X: r, Z: R / 2},
		{X: r, Z: -R / 2},
		{X: 0, Z: -R},
		{X: -r, Z: -R / 2},
		{X: -r, Z: R / 2},
	}
	return m
}

// WidthDiff is the centre-to-centre distance between tiles in one row.
func (m Metrics) WidthDiff() float64 { return 2*m.InnerRadius + m.EdgeWidth }

// HeightDiff is the distance between rows.
func (m Metrics) HeightDiff() float64 { return m.WidthDiff() * Cos30 }

// Center is the XZ position of the tile centre.
func (m Metrics) Center(c Coords) geom.Vec2 {
	wd := m.WidthDiff()
	x := float64(c.X) * wd
	if c.Y&1 != 0 {
		x += wd / 2
	}
	return geom.Vec2{X: x, Z: float64(c.Y) * m.HeightDiff()}
}

// Corner returns hexagon corner i relative to the centre. Corner 0 is north
// and the rest follow clockwise.
func (m Metrics) Corner(i int) geom.Vec2 { return m.corners[mathx.Mod(i, 6)] }

// Left is the corner at the counter-clockwise end of side d.
func (m Metrics) Left(d Direction) geom.Vec2 { return m.Corner(int(d)) }

// Right is the corner at the clockwise end of side d.
func (m Metrics) Right(d Direction) geom.Vec2 { return m.Corner(int(d) + 1) }

func (m Metrics) Middle(d Direction) geom.Vec2 { return m.Left(d).Mid(m.Right(d)) }
