package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"hexterrain.dev/internal/terrain/mesh"
	"hexterrain.dev/internal/terrain/tuning"
)

const Version = 1

type Header struct {
	Version   int    `json:"version"`
	MapName   string `json:"map_name"`
	Chunks    int    `json:"chunks"`
	Triangles int    `json:"triangles"`
	CreatedAt string `json:"created_at"`
}

// MeshSnapshotV1 is the hand-off format to renderers: the geometry the
// meshes were built with, the tile attributes and every chunk's four layers.
type MeshSnapshotV1 struct {
	Header   Header          `json:"header"`
	Geometry tuning.Geometry `json:"geometry"`

	Tiles  []TileV1      `json:"tiles"`
	Chunks []ChunkMeshV1 `json:"chunks"`
}

type TileV1 struct {
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Height int        `json:"height"`
	Water  int        `json:"water"`
	Color  [4]float32 `json:"color"`

	// Outgoing river direction, -1 for none.
	River    int   `json:"river"`
	Incoming []int `json:"incoming,omitempty"`
}

type ChunkMeshV1 struct {
	CX     int       `json:"cx"`
	CZ     int       `json:"cz"`
	Pass   uint64    `json:"pass"`
	Digest string    `json:"digest"`
	Layers []LayerV1 `json:"layers"`
}

// LayerV1 holds one layer as flat arrays: 3 floats per position, 4 per
// colour, 2 per UV.
type LayerV1 struct {
	Layer     string    `json:"layer"`
	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors"`
	UVs       []float32 `json:"uvs"`
	Indices   []uint32  `json:"indices"`
}

func (l LayerV1) VertexCount() int   { return len(l.Positions) / 3 }
func (l LayerV1) TriangleCount() int { return len(l.Indices) / 3 }

func WriteSnapshot(path string, snap MeshSnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (MeshSnapshotV1, error) {
	var snap MeshSnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

// LayerFromMesh flattens a layer mesh.
func LayerFromMesh(m *mesh.Mesh) LayerV1 {
	n := len(m.Points)
	l := LayerV1{
		Layer:     m.Layer.String(),
		Positions: make([]float32, 0, 3*n),
		Colors:    make([]float32, 0, 4*n),
		UVs:       make([]float32, 0, 2*n),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	for _, p := range m.Points {
		l.Positions = append(l.Positions, float32(p.Pos.X), float32(p.Pos.Y), float32(p.Pos.Z))
		l.Colors = append(l.Colors, p.Color.R, p.Color.G, p.Color.B, p.Color.A)
		l.UVs = append(l.UVs, float32(p.UV.X), float32(p.UV.Z))
	}
	return l
}
