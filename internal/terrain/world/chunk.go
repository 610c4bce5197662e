package world

import (
	"encoding/hex"
	"time"

	hexgrid "hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mesh"
)

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk owns a square block of tiles, their dirty set and the four layer
// meshes built from them.
type Chunk struct {
	world *World
	Key   ChunkKey

	tiles map[hexgrid.Coords]*Tile
	dirty map[hexgrid.Coords]struct{}
	mesh  *mesh.Buffers

	pass   uint64
	digest [32]byte
}

func newChunk(w *World, k ChunkKey) *Chunk {
	return &Chunk{
		world: w,
		Key:   k,
		tiles: map[hexgrid.Coords]*Tile{},
		dirty: map[hexgrid.Coords]struct{}{},
		mesh:  mesh.NewBuffers(),
	}
}

// Tiles returns the chunk's tiles in row-major order.
func (c *Chunk) Tiles() []*Tile {
	out := make([]*Tile, 0, len(c.tiles))
	for _, t := range c.tiles {
		out = append(out, t)
	}
	sortTiles(out)
	return out
}

func (c *Chunk) TileCount() int { return len(c.tiles) }

func (c *Chunk) Dirty() bool { return len(c.dirty) > 0 }

// Mesh returns the buffers of the last triangulation pass.
func (c *Chunk) Mesh() *mesh.Buffers { return c.mesh }

func (c *Chunk) Pass() uint64 { return c.pass }

func (c *Chunk) Digest() [32]byte { return c.digest }

func (c *Chunk) markDirty(t *Tile) { c.dirty[t.coords] = struct{}{} }

// drain refreshes the owned edges of every queued tile and empties the set.
func (c *Chunk) drain() {
	if len(c.dirty) == 0 {
		return
	}
	queued := make([]*Tile, 0, len(c.dirty))
	for k := range c.dirty {
		if t := c.tiles[k]; t != nil {
			queued = append(queued, t)
		}
	}
	sortTiles(queued)
	for _, t := range queued {
		for _, e := range t.edges {
			e.Refresh()
		}
	}
	c.dirty = map[hexgrid.Coords]struct{}{}
}

// Triangulate drains the dirty set and rebuilds all four meshes from empty:
// tile interiors first, then owned edges, then owned corners.
func (c *Chunk) Triangulate() PassRecord {
	start := time.Now()
	c.drain()
	tiles := c.Tiles()

	// Water rows of shared edges may depend on edges in other chunks or on
	// shores that were not among the refreshed neighbours.
	for _, t := range tiles {
		for _, d := range hexgrid.All {
			e := t.Edge(d)
			switch {
			case e == nil:
			case !e.ready:
				e.Refresh()
			default:
				e.RefreshWater(false)
			}
		}
	}

	c.mesh.Clear()
	for _, t := range tiles {
		t.Triangulate(c.mesh)
	}
	for _, t := range tiles {
		for _, e := range t.edges {
			e.Triangulate(c.mesh)
		}
	}
	for _, t := range tiles {
		t.TriangulateCorners(c.mesh)
	}
	c.pass++
	c.digest = c.mesh.Digest()

	return PassRecord{
		Pass:           c.pass,
		ChunkX:         c.Key.CX,
		ChunkZ:         c.Key.CZ,
		Tiles:          len(tiles),
		GroundTris:     c.mesh.Ground.TriangleCount(),
		WaterTris:      c.mesh.Water.TriangleCount(),
		ShoreTris:      c.mesh.Shore.TriangleCount(),
		RiverTris:      c.mesh.River.TriangleCount(),
		Digest:         hex.EncodeToString(c.digest[:]),
		DurationMicros: time.Since(start).Microseconds(),
		RecordedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
}
