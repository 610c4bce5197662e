package mesh

import (
	"testing"

	"hexterrain.dev/internal/terrain/geom"
)

func pt(x, z float64) Point { return Point{Pos: geom.Vec3{X: x, Z: z}} }

func TestAddQuad_GeneratesUVs(t *testing.T) {
	m := New(Shore)
	m.AddQuad(pt(0, 1), pt(1, 1), pt(1, 0), pt(0, 0))
	if m.TriangleCount() != 2 {
		t.Fatalf("triangles=%d want 2", m.TriangleCount())
	}
	a, b := m.Triangle(0), m.Triangle(1)
	want := [][3]geom.Vec2{
		{{X: 0, Z: 1}, {X: 1, Z: 1}, {X: 1, Z: 0}},
		{{X: 0, Z: 1}, {X: 1, Z: 0}, {X: 0, Z: 0}},
	}
	for i, tri := range [][3]Point{a, b} {
		for k := range tri {
			if tri[k].UV != want[i][k] {
				t.Fatalf("tri %d vertex %d uv=%v want %v", i, k, tri[k].UV, want[i][k])
			}
		}
	}
}

func TestAddQuadUV_KeepsUVs(t *testing.T) {
	m := New(River)
	a, b, c, d := pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)
	a.UV = geom.Vec2{X: 0.5, Z: 0.25}
	m.AddQuadUV(a, b, c, d)
	if m.Triangle(0)[0].UV != a.UV || m.Triangle(1)[0].UV != a.UV {
		t.Fatalf("uv overwritten")
	}
}

func TestBuffers_ClearAndDigest(t *testing.T) {
	b := NewBuffers()
	empty := b.Digest()
	b.Ground.AddTriangle(pt(0, 0), pt(0, 1), pt(1, 0))
	b.River.AddQuad(pt(0, 0), pt(0, 1), pt(1, 1), pt(1, 0))
	if b.TriangleCount() != 3 {
		t.Fatalf("TriangleCount=%d want 3", b.TriangleCount())
	}
	full := b.Digest()
	if full == empty {
		t.Fatalf("digest did not change")
	}
	b.Clear()
	if b.TriangleCount() != 0 || len(b.River.Points) != 0 {
		t.Fatalf("Clear left data behind")
	}
	if b.Digest() != empty {
		t.Fatalf("digest after Clear differs from empty digest")
	}
	if b.Layer(Water) != b.Water || b.Layer(Ground).Layer != Ground {
		t.Fatalf("Layer lookup mismatch")
	}
}
