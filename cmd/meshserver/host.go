package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"hexterrain.dev/internal/meshproto"
	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/mapfile"
	"hexterrain.dev/internal/terrain/tuning"
	"hexterrain.dev/internal/terrain/world"
	"hexterrain.dev/internal/transport/meshstream"
)

// host owns the world. Edits are applied under mu, rebuilt and published;
// the stream server only ever sees the published meshes.
type host struct {
	mu     sync.Mutex
	world  *world.World
	stream *meshstream.Server
	log    *log.Logger
}

func newHost(geo tuning.Geometry, m mapfile.Map, stream *meshstream.Server, logger *log.Logger) (*host, error) {
	h := &host{world: world.New(geo), stream: stream, log: logger}
	if err := m.Apply(h.world); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.rebuildLocked(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *host) rebuildLocked() ([]world.PassRecord, error) {
	recs := h.world.Rebuild()
	chunks := make([]snapshot.ChunkMeshV1, 0, len(recs))
	for _, r := range recs {
		c := h.world.Chunk(world.ChunkKey{CX: r.ChunkX, CZ: r.ChunkZ})
		chunks = append(chunks, c.ChunkMesh())
	}
	v, err := h.stream.Publish(chunks)
	if err != nil {
		return recs, err
	}
	if h.log != nil {
		h.log.Printf("version %d: rebuilt %d chunks", v, len(recs))
	}
	return recs, nil
}

// Edit applies a JSON list of tile specs, the same shape as map file tiles.
func (h *host) Edit(body json.RawMessage) error {
	var tiles []mapfile.TileSpec
	if err := json.Unmarshal(body, &tiles); err != nil {
		return &meshproto.CodedError{Code: meshproto.ErrProtoBadRequest, Err: fmt.Errorf("decode edits: %w", err)}
	}
	m := mapfile.Map{Tiles: tiles}
	if err := m.Validate(); err != nil {
		return &meshproto.CodedError{Code: meshproto.ErrBadRequest, Err: err}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := m.Apply(h.world); err != nil {
		// Tiles applied before the failure stay; rebuild so the stream matches.
		if _, rerr := h.rebuildLocked(); rerr != nil {
			return &meshproto.CodedError{Code: meshproto.ErrInternal, Err: rerr}
		}
		return &meshproto.CodedError{Code: meshproto.ErrInvalidTarget, Err: err}
	}
	if _, err := h.rebuildLocked(); err != nil {
		return &meshproto.CodedError{Code: meshproto.ErrInternal, Err: err}
	}
	return nil
}
