package meshproto_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"hexterrain.dev/internal/meshproto"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/mesh"
	"hexterrain.dev/internal/terrain/tuning"
	"hexterrain.dev/internal/terrain/world"
)

func TestSchemas_ValidateMessages(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}
	validate := func(s *jsonschema.Schema, msg any) {
		t.Helper()
		b, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v\n%s", err, b)
		}
	}

	subscribeSchema := compile("subscribe.schema.json")
	bootstrapSchema := compile("bootstrap.schema.json")
	chunkSchema := compile("chunk_mesh.schema.json")

	validate(subscribeSchema, meshproto.SubscribeMsg{
		Type:            meshproto.TypeSubscribe,
		ProtocolVersion: meshproto.Version,
		Center:          meshproto.ChunkCoord{CX: -1, CZ: 2},
		ChunkRadius:     2,
		MaxChunks:       64,
	})

	w := world.New(tuning.Defaults())
	a := w.GetOrCreateTile(hex.Coords{X: 0, Y: 0})
	a.SetHeight(1)
	b := w.GetOrCreateTile(hex.Coords{X: 1, Y: 0})
	b.SetWaterLevel(1)
	w.AddRiver(a.Coords(), hex.E)
	w.Rebuild()
	snap := w.Snapshot("schema")

	layers := make([]string, 0, len(mesh.Layers))
	for _, l := range mesh.Layers {
		layers = append(layers, l.String())
	}
	validate(bootstrapSchema, meshproto.BootstrapResponse{
		ProtocolVersion: meshproto.Version,
		MapName:         "schema",
		Version:         1,
		Geometry:        w.Geometry(),
		Chunks:          []meshproto.ChunkCoord{{CX: 0, CZ: 0}},
		Layers:          layers,
	})

	msg := meshproto.NewChunkMeshMsg(1, snap.Chunks[0])
	validate(chunkSchema, msg)

	var bad any
	_ = json.Unmarshal([]byte(`{"type":"SUBSCRIBE","protocol_version":"0.1","center":{"cx":0,"cz":0},"chunk_radius":-1}`), &bad)
	if err := subscribeSchema.Validate(bad); err == nil {
		t.Fatalf("expected negative radius to fail validation")
	}
}

func TestChunkMeshMsg_DecodeRoundTrip(t *testing.T) {
	w := world.New(tuning.Defaults())
	w.GetOrCreateTile(hex.Coords{X: 0, Y: 0})
	w.GetOrCreateTile(hex.Coords{X: 1, Y: 0}).SetHeight(2)
	w.Rebuild()
	c := w.Snapshot("").Chunks[0]

	msg := meshproto.NewChunkMeshMsg(3, c)
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back meshproto.ChunkMeshMsg
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, l := range back.Layers {
		got, err := l.Decode()
		if err != nil {
			t.Fatalf("decode %s: %v", l.Layer, err)
		}
		want := c.Layers[i]
		if len(got.Indices) != len(want.Indices) || len(got.Positions) != len(want.Positions) {
			t.Fatalf("layer %s: %d/%d indices %d/%d positions", l.Layer, len(got.Indices), len(want.Indices), len(got.Positions), len(want.Positions))
		}
		for k := range want.Indices {
			if got.Indices[k] != want.Indices[k] {
				t.Fatalf("layer %s index %d: %d want %d", l.Layer, k, got.Indices[k], want.Indices[k])
			}
		}
	}

	bad := back.Layers[0]
	bad.IndexEncoding = "RAW"
	if _, err := bad.Decode(); err == nil {
		t.Fatalf("expected encoding error")
	}
}
