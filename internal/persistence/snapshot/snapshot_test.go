package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"hexterrain.dev/internal/terrain/tuning"
)

func sample() MeshSnapshotV1 {
	return MeshSnapshotV1{
		Header:   Header{Version: Version, MapName: "demo", Chunks: 1, Triangles: 1, CreatedAt: "2026-01-01T00:00:00Z"},
		Geometry: tuning.Defaults(),
		Tiles: []TileV1{
			{X: 0, Y: 0, Height: 1, Water: 0, Color: [4]float32{1, 1, 1, 1}, River: 1},
			{X: 1, Y: 0, Height: 0, Water: 1, Color: [4]float32{0, 0, 1, 1}, River: -1, Incoming: []int{4}},
		},
		Chunks: []ChunkMeshV1{{
			CX: 0, CZ: -1, Pass: 3, Digest: "abc",
			Layers: []LayerV1{{
				Layer:     "ground",
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 0, -1},
				Colors:    []float32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
				UVs:       []float32{0, 1, 1, 1, 1, 0},
				Indices:   []uint32{0, 1, 2},
			}},
		}},
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "mesh.snap.zst")
	in := sample()
	if err := WriteSnapshot(p, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadSnapshot(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header != in.Header || out.Geometry != in.Geometry {
		t.Fatalf("header/geometry mismatch: %+v", out.Header)
	}
	if len(out.Tiles) != 2 || out.Tiles[1].Incoming[0] != 4 || out.Tiles[0].River != 1 {
		t.Fatalf("tiles mismatch: %+v", out.Tiles)
	}
	l := out.Chunks[0].Layers[0]
	if out.Chunks[0].CZ != -1 || l.VertexCount() != 3 || l.TriangleCount() != 1 || l.Positions[8] != -1 {
		t.Fatalf("layer mismatch: %+v", out.Chunks[0])
	}

	h, err := ReadHeader(p)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h != in.Header {
		t.Fatalf("header=%+v want %+v", h, in.Header)
	}
}

func TestSnapshot_RejectsVersion(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mesh.snap.zst")
	in := sample()
	in.Header.Version = 9
	if err := WriteSnapshot(p, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(p); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestSnapshot_Missing(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope")); !os.IsNotExist(err) {
		t.Fatalf("err=%v", err)
	}
}
