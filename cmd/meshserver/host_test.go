package main

import (
	"encoding/json"
	"errors"
	"testing"

	"hexterrain.dev/internal/meshproto"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mapfile"
	"hexterrain.dev/internal/terrain/tuning"
	"hexterrain.dev/internal/transport/meshstream"
)

func TestHost_EditRebuildsAndPublishes(t *testing.T) {
	geo := tuning.Defaults()
	geo.ChunkSize = 2
	m := mapfile.Map{Name: "t", Fill: &mapfile.FillSpec{Max: hex.Coords{X: 3, Y: 3}, Height: 1}}
	stream := meshstream.NewServer("t", geo, nil)
	h, err := newHost(geo, m, stream, nil)
	if err != nil {
		t.Fatalf("newHost: %v", err)
	}
	if stream.Version() != 1 {
		t.Fatalf("version=%d want 1", stream.Version())
	}

	if err := h.Edit(json.RawMessage(`[{"coords":{"x":0,"y":0},"height":0,"water":1}]`)); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if stream.Version() != 2 {
		t.Fatalf("version=%d want 2", stream.Version())
	}
	if !h.world.Tile(hex.Coords{X: 0, Y: 0}).Underwater() {
		t.Fatalf("edit not applied")
	}
	if len(h.world.DirtyChunks()) != 0 {
		t.Fatalf("world left dirty")
	}

	var ce *meshproto.CodedError
	err = h.Edit(json.RawMessage(`[{"coords":{"x":0,"y":0},"river":"sideways"}]`))
	if !errors.As(err, &ce) || ce.Code != meshproto.ErrProtoBadRequest {
		t.Fatalf("decode err=%v", err)
	}
	err = h.Edit(json.RawMessage(`[{"coords":{"x":0,"y":0},"height":-2}]`))
	if !errors.As(err, &ce) || ce.Code != meshproto.ErrBadRequest {
		t.Fatalf("validation err=%v", err)
	}
	if stream.Version() != 2 {
		t.Fatalf("rejected edits published: version=%d", stream.Version())
	}
}
