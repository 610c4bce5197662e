package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"hexterrain.dev/internal/terrain/world"
)

func readJSONL(t *testing.T, path string) []world.PassRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var out []world.PassRecord
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var r world.PassRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestBuildLogger_WritesPasses(t *testing.T) {
	dir := t.TempDir()
	l := NewBuildLogger(dir)
	recs := []world.PassRecord{
		{Pass: 1, ChunkX: 0, ChunkZ: 0, GroundTris: 10, Digest: "aa"},
		{Pass: 1, ChunkX: 1, ChunkZ: 0, GroundTris: 20, Digest: "bb"},
	}
	if err := l.WritePasses(recs); err != nil {
		t.Fatalf("WritePasses: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "passes", "passes-*.jsonl.zst"))
	if err != nil || len(files) == 0 {
		t.Fatalf("no log files: %v", err)
	}
	var got []world.PassRecord
	for _, f := range files {
		got = append(got, readJSONL(t, f)...)
	}
	if len(got) != 2 || got[0].Digest != "aa" || got[1].ChunkX != 1 || got[1].GroundTris != 20 {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestJSONLZstdWriter_CloseWithoutWrite(t *testing.T) {
	w := NewJSONLZstdWriter(t.TempDir(), "x")
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
