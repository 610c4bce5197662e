package world

import (
	"path/filepath"
	"testing"

	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/tuning"
)

func TestSnapshot_ExportAndReload(t *testing.T) {
	w := randomWorld(13)
	snap := w.Snapshot("random")

	if snap.Header.Chunks != len(w.ChunkKeys()) || len(snap.Tiles) != w.TileCount() {
		t.Fatalf("chunks=%d tiles=%d", snap.Header.Chunks, len(snap.Tiles))
	}
	total := 0
	for i, k := range w.ChunkKeys() {
		c := snap.Chunks[i]
		if c.CX != k.CX || c.CZ != k.CZ || len(c.Layers) != 4 {
			t.Fatalf("chunk %d = %d,%d with %d layers", i, c.CX, c.CZ, len(c.Layers))
		}
		for _, l := range c.Layers {
			if 3*l.VertexCount() != len(l.Positions) || 2*l.VertexCount() != len(l.UVs) || 4*l.VertexCount() != len(l.Colors) {
				t.Fatalf("layer %s arrays out of step", l.Layer)
			}
			total += l.TriangleCount()
		}
	}
	if total != snap.Header.Triangles {
		t.Fatalf("triangles=%d header=%d", total, snap.Header.Triangles)
	}

	p := filepath.Join(t.TempDir(), "mesh.snap.zst")
	if err := snapshot.WriteSnapshot(p, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := snapshot.ReadSnapshot(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.Chunks[0].Digest != snap.Chunks[0].Digest || back.Geometry != w.Geometry() {
		t.Fatalf("reloaded snapshot differs")
	}
}

func TestSnapshot_TileRivers(t *testing.T) {
	w := New(tuning.Defaults())
	a := setTile(w, 0, 0, 1, 0)
	setTile(w, 1, 0, 0, 0)
	w.AddRiver(a.Coords(), hex.E)
	w.Rebuild()

	snap := w.Snapshot("")
	if snap.Tiles[0].River != int(hex.E) || snap.Tiles[1].River != -1 {
		t.Fatalf("rivers=%d,%d", snap.Tiles[0].River, snap.Tiles[1].River)
	}
	if len(snap.Tiles[1].Incoming) != 1 || snap.Tiles[1].Incoming[0] != int(hex.W) {
		t.Fatalf("incoming=%v", snap.Tiles[1].Incoming)
	}
}
