package world

import (
	"sort"

	"hexterrain.dev/internal/logic/mathx"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/tuning"
)

// World is the tile registry: it owns the vertex arena, every tile and the
// chunks that batch them for triangulation. It is not safe for concurrent
// use.
type World struct {
	geo     tuning.Geometry
	metrics hex.Metrics
	arena   arena

	tiles    []*Tile
	byCoords map[hex.Coords]*Tile
	chunks   map[ChunkKey]*Chunk
}

func New(geo tuning.Geometry) *World {
	geo.Normalize()
	return &World{
		geo:      geo,
		metrics:  geo.Metrics(),
		byCoords: map[hex.Coords]*Tile{},
		chunks:   map[ChunkKey]*Chunk{},
	}
}

func (w *World) Geometry() tuning.Geometry { return w.geo }
func (w *World) Metrics() hex.Metrics      { return w.metrics }
func (w *World) TileCount() int            { return len(w.tiles) }

// InBounds reports whether c lies inside the optional world boundary.
func (w *World) InBounds(c hex.Coords) bool {
	r := w.geo.WorldBoundaryR
	if r <= 0 {
		return true
	}
	return mathx.AbsInt(c.X) <= r && mathx.AbsInt(c.Y) <= r
}

// Tile returns the tile at c, or nil.
func (w *World) Tile(c hex.Coords) *Tile { return w.byCoords[c] }

// GetOrCreateTile returns the tile at c, creating a flat dry tile when it
// does not exist yet. It returns nil outside the world boundary.
func (w *World) GetOrCreateTile(c hex.Coords) *Tile {
	if t := w.byCoords[c]; t != nil {
		return t
	}
	if !w.InBounds(c) {
		return nil
	}
	t := newTile(w, TileID(len(w.tiles)), c)
	w.tiles = append(w.tiles, t)
	w.byCoords[c] = t

	k := w.ChunkKeyOf(c)
	ch := w.chunks[k]
	if ch == nil {
		ch = newChunk(w, k)
		w.chunks[k] = ch
	}
	ch.tiles[c] = t
	t.chunk = ch
	t.Refresh()
	return t
}

// Neighbor returns the existing tile across side d of t, or nil.
func (w *World) Neighbor(t *Tile, d hex.Direction) *Tile {
	if t == nil {
		return nil
	}
	return w.byCoords[t.coords.Neighbor(d)]
}

// AddRiver sets an outgoing river on the tile at c towards d and the
// matching incoming river on the neighbour. Both tiles must exist.
func (w *World) AddRiver(c hex.Coords, d hex.Direction) bool {
	src := w.byCoords[c]
	dst := w.Neighbor(src, d)
	if src == nil || dst == nil {
		return false
	}
	src.AddOutgoingRiver(d)
	dst.AddIncomingRiver(d.Opposite())
	return true
}

func (w *World) markDirty(t *Tile) {
	if t.chunk != nil {
		t.chunk.markDirty(t)
	}
}

func (w *World) ChunkKeyOf(c hex.Coords) ChunkKey {
	n := w.geo.ChunkSize
	return ChunkKey{CX: mathx.FloorDiv(c.X, n), CZ: mathx.FloorDiv(c.Y, n)}
}

func (w *World) Chunk(k ChunkKey) *Chunk { return w.chunks[k] }

// ChunkKeys returns all chunk keys sorted row-major.
func (w *World) ChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(w.chunks))
	for k := range w.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CZ != keys[j].CZ {
			return keys[i].CZ < keys[j].CZ
		}
		return keys[i].CX < keys[j].CX
	})
	return keys
}

func (w *World) DirtyChunks() []ChunkKey {
	var out []ChunkKey
	for _, k := range w.ChunkKeys() {
		if w.chunks[k].Dirty() {
			out = append(out, k)
		}
	}
	return out
}

// Rebuild triangulates every dirty chunk once. All dirty sets are drained
// before any chunk emits, so edges shared across chunks are current.
func (w *World) Rebuild() []PassRecord {
	dirty := w.DirtyChunks()
	for _, k := range dirty {
		w.chunks[k].drain()
	}
	out := make([]PassRecord, 0, len(dirty))
	for _, k := range dirty {
		out = append(out, w.chunks[k].Triangulate())
	}
	return out
}

// Tiles returns every tile sorted row-major.
func (w *World) Tiles() []*Tile {
	out := append([]*Tile(nil), w.tiles...)
	sortTiles(out)
	return out
}

// Clear drops every tile, chunk and vertex record.
func (w *World) Clear() {
	w.arena.reset()
	w.tiles = nil
	w.byCoords = map[hex.Coords]*Tile{}
	w.chunks = map[ChunkKey]*Chunk{}
}
