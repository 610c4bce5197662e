package meshproto

import (
	"fmt"

	"hexterrain.dev/internal/encoding"
	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/tuning"
)

// Version is the mesh stream protocol version.
const Version = "0.1"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeChunkMesh = "CHUNK_MESH"

	// IndexEncoding names the index buffer codec: delta, zig-zag, run-length
	// (value, run) varint pairs, base64.
	IndexEncoding = "DZRLE_VARINT_B64"
)

// Client -> Server. First message on the stream connection; it can be re-sent
// to move the window.
type SubscribeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Center          ChunkCoord `json:"center"`
	ChunkRadius     int        `json:"chunk_radius"`
	MaxChunks       int        `json:"max_chunks"`
}

type ChunkCoord struct {
	CX int `json:"cx"`
	CZ int `json:"cz"`
}

// HTTP response for GET /v1/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string          `json:"protocol_version"`
	MapName         string          `json:"map_name"`
	Version         uint64          `json:"version"`
	Geometry        tuning.Geometry `json:"geometry"`
	Chunks          []ChunkCoord    `json:"chunks"`
	Layers          []string        `json:"layers"`
}

// Server -> Client. The full mesh of one chunk, sent on subscribe and after
// every rebuild that touched the chunk.
type ChunkMeshMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Version         uint64     `json:"version"`
	CX              int        `json:"cx"`
	CZ              int        `json:"cz"`
	Pass            uint64     `json:"pass"`
	Digest          string     `json:"digest"`
	Layers          []LayerMsg `json:"layers"`
}

type LayerMsg struct {
	Layer         string    `json:"layer"`
	Positions     []float32 `json:"positions"`
	Colors        []float32 `json:"colors"`
	UVs           []float32 `json:"uvs"`
	IndexEncoding string    `json:"index_encoding"`
	Indices       string    `json:"indices"`
}

func NewChunkMeshMsg(version uint64, c snapshot.ChunkMeshV1) ChunkMeshMsg {
	msg := ChunkMeshMsg{
		Type:            TypeChunkMesh,
		ProtocolVersion: Version,
		Version:         version,
		CX:              c.CX,
		CZ:              c.CZ,
		Pass:            c.Pass,
		Digest:          c.Digest,
		Layers:          make([]LayerMsg, 0, len(c.Layers)),
	}
	for _, l := range c.Layers {
		msg.Layers = append(msg.Layers, LayerMsg{
			Layer:         l.Layer,
			Positions:     nonNil(l.Positions),
			Colors:        nonNil(l.Colors),
			UVs:           nonNil(l.UVs),
			IndexEncoding: IndexEncoding,
			Indices:       encoding.EncodeIndices(l.Indices),
		})
	}
	return msg
}

// Decode turns a received layer back into its flat snapshot form.
func (l LayerMsg) Decode() (snapshot.LayerV1, error) {
	if l.IndexEncoding != IndexEncoding {
		return snapshot.LayerV1{}, fmt.Errorf("unsupported index encoding %q", l.IndexEncoding)
	}
	idx, err := encoding.DecodeIndices(l.Indices)
	if err != nil {
		return snapshot.LayerV1{}, fmt.Errorf("layer %s indices: %w", l.Layer, err)
	}
	return snapshot.LayerV1{Layer: l.Layer, Positions: l.Positions, Colors: l.Colors, UVs: l.UVs, Indices: idx}, nil
}

func nonNil(v []float32) []float32 {
	if v == nil {
		return []float32{}
	}
	return v
}
