package world

import (
	"encoding/hex"
	"time"

	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/mesh"
)

// ChunkMesh flattens the last triangulation of one chunk.
func (c *Chunk) ChunkMesh() snapshot.ChunkMeshV1 {
	out := snapshot.ChunkMeshV1{
		CX:     c.Key.CX,
		CZ:     c.Key.CZ,
		Pass:   c.pass,
		Digest: hex.EncodeToString(c.digest[:]),
	}
	for _, l := range mesh.Layers {
		out.Layers = append(out.Layers, snapshot.LayerFromMesh(c.mesh.Layer(l)))
	}
	return out
}

// Snapshot captures the tiles and the current meshes of every chunk. Call
// Rebuild first; dirty chunks are exported as last triangulated.
func (w *World) Snapshot(mapName string) snapshot.MeshSnapshotV1 {
	snap := snapshot.MeshSnapshotV1{
		Header: snapshot.Header{
			Version:   snapshot.Version,
			MapName:   mapName,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Geometry: w.geo,
	}
	for _, t := range w.Tiles() {
		tv := snapshot.TileV1{
			X:      t.coords.X,
			Y:      t.coords.Y,
			Height: t.height,
			Water:  t.waterLevel,
			Color:  [4]float32{t.color.R, t.color.G, t.color.B, t.color.A},
			River:  -1,
		}
		if t.hasOutgoing {
			tv.River = int(t.outgoing)
		}
		for _, d := range t.IncomingRivers() {
			tv.Incoming = append(tv.Incoming, int(d))
		}
		snap.Tiles = append(snap.Tiles, tv)
	}
	for _, k := range w.ChunkKeys() {
		c := w.chunks[k]
		snap.Chunks = append(snap.Chunks, c.ChunkMesh())
		snap.Header.Triangles += c.mesh.TriangleCount()
	}
	snap.Header.Chunks = len(snap.Chunks)
	return snap
}
