package meshstream

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hexterrain.dev/internal/meshproto"
	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/tuning"
)

func chunk(cx, cz int, digest string) snapshot.ChunkMeshV1 {
	return snapshot.ChunkMeshV1{
		CX: cx, CZ: cz, Pass: 1, Digest: digest,
		Layers: []snapshot.LayerV1{{Layer: "ground", Positions: []float32{0, 0, 0, 1, 0, 0, 0, 0, -1}, Indices: []uint32{0, 1, 2}}},
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readChunk(t *testing.T, conn *websocket.Conn) meshproto.ChunkMeshMsg {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg meshproto.ChunkMeshMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != meshproto.TypeChunkMesh {
		t.Fatalf("type=%q", msg.Type)
	}
	return msg
}

func TestServer_SubscribeAndPublish(t *testing.T) {
	s := NewServer("test", tuning.Defaults(), nil)
	if _, err := s.Publish([]snapshot.ChunkMeshV1{chunk(0, 0, "a0"), chunk(1, 0, "b0"), chunk(9, 9, "far")}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	sub := meshproto.SubscribeMsg{Type: meshproto.TypeSubscribe, ProtocolVersion: meshproto.Version, ChunkRadius: 1}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Nearest first; the far chunk is outside the window.
	first, second := readChunk(t, conn), readChunk(t, conn)
	if first.CX != 0 || second.CX != 1 || first.Version != 1 {
		t.Fatalf("initial chunks %d,%d version %d", first.CX, second.CX, first.Version)
	}
	layer, err := first.Layers[0].Decode()
	if err != nil || len(layer.Indices) != 3 {
		t.Fatalf("decode layer: %v %+v", err, layer)
	}

	// An unchanged digest is not re-sent.
	if _, err := s.Publish([]snapshot.ChunkMeshV1{chunk(0, 0, "a0")}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := s.Publish([]snapshot.ChunkMeshV1{chunk(1, 0, "b1")}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	upd := readChunk(t, conn)
	if upd.CX != 1 || upd.Digest != "b1" || upd.Version != 3 {
		t.Fatalf("update cx=%d digest=%q version=%d", upd.CX, upd.Digest, upd.Version)
	}

	// Moving the window delivers the far chunk.
	sub.Center = meshproto.ChunkCoord{CX: 9, CZ: 9}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if far := readChunk(t, conn); far.CX != 9 || far.Digest != "far" {
		t.Fatalf("far chunk %+v", far)
	}
}

func TestServer_RejectsBadHandshake(t *testing.T) {
	srv := httptest.NewServer(NewServer("test", tuning.Defaults(), nil).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	var ce *websocket.CloseError
	if !errors.As(err, &ce) || ce.Code != websocket.ClosePolicyViolation {
		t.Fatalf("err=%v want policy violation close", err)
	}
}

func TestServer_BootstrapAndEdit(t *testing.T) {
	s := NewServer("demo", tuning.Defaults(), nil)
	_, _ = s.Publish([]snapshot.ChunkMeshV1{chunk(1, 0, "b"), chunk(0, 0, "a")})
	var got json.RawMessage
	s.SetEditFunc(func(edits json.RawMessage) error {
		got = edits
		_, err := s.Publish([]snapshot.ChunkMeshV1{chunk(0, 0, "a2")})
		return err
	})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/bootstrap")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	var boot meshproto.BootstrapResponse
	err = json.NewDecoder(resp.Body).Decode(&boot)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode bootstrap: %v", err)
	}
	if boot.MapName != "demo" || boot.Version != 1 || len(boot.Chunks) != 2 || boot.Chunks[0].CX != 0 || len(boot.Layers) != 4 {
		t.Fatalf("bootstrap=%+v", boot)
	}

	resp, err = http.Post(srv.URL+"/v1/edit", "application/json", strings.NewReader(`[{"coords":{"x":0,"y":0},"height":2}]`))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	var out map[string]uint64
	err = json.NewDecoder(resp.Body).Decode(&out)
	resp.Body.Close()
	if err != nil || resp.StatusCode != http.StatusOK || out["version"] != 2 {
		t.Fatalf("edit status=%d out=%v err=%v", resp.StatusCode, out, err)
	}
	if !strings.Contains(string(got), `"height":2`) {
		t.Fatalf("edit body=%s", got)
	}

	resp, err = http.Get(srv.URL + "/v1/edit")
	if err != nil {
		t.Fatalf("edit get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	s.SetEditFunc(func(json.RawMessage) error {
		return &meshproto.CodedError{Code: meshproto.ErrInvalidTarget, Err: errors.New("outside world boundary")}
	})
	resp, err = http.Post(srv.URL+"/v1/edit", "application/json", strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	var rej meshproto.ErrorResponse
	err = json.NewDecoder(resp.Body).Decode(&rej)
	resp.Body.Close()
	if err != nil || resp.StatusCode != http.StatusBadRequest || rej.Code != meshproto.ErrInvalidTarget {
		t.Fatalf("reject status=%d body=%+v err=%v", resp.StatusCode, rej, err)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	for addr, want := range map[string]bool{
		"127.0.0.1:1234": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	} {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}
