package meshstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"hexterrain.dev/internal/logic/mathx"
	"hexterrain.dev/internal/meshproto"
	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/mesh"
	"hexterrain.dev/internal/terrain/tuning"
)

// EditFunc applies a batch of tile edits, rebuilds and publishes. It is
// called from HTTP handlers and must serialise access to the world itself.
type EditFunc func(edits json.RawMessage) error

// Server streams chunk meshes to subscribers. It only holds published,
// already encoded messages; the world stays with its owner.
type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu       sync.Mutex
	mapName  string
	geo      tuning.Geometry
	version  uint64
	chunks   map[meshproto.ChunkCoord]published
	sessions map[string]*session
	edit     EditFunc
}

type published struct {
	digest string
	msg    []byte
}

type session struct {
	id  string
	out chan []byte

	center    meshproto.ChunkCoord
	radius    int
	maxChunks int
	sent      map[meshproto.ChunkCoord]string
}

func NewServer(mapName string, geo tuning.Geometry, logger *log.Logger) *Server {
	return &Server{
		log:     logger,
		mapName: mapName,
		geo:     geo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		chunks:   map[meshproto.ChunkCoord]published{},
		sessions: map[string]*session{},
	}
}

// SetEditFunc enables POST /v1/edit.
func (s *Server) SetEditFunc(f EditFunc) {
	s.mu.Lock()
	s.edit = f
	s.mu.Unlock()
}

func (s *Server) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Publish stores new meshes for the given chunks under a new version and
// pushes them to every session whose window contains them.
func (s *Server) Publish(chunks []snapshot.ChunkMeshV1) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	for _, c := range chunks {
		b, err := json.Marshal(meshproto.NewChunkMeshMsg(s.version, c))
		if err != nil {
			return s.version, fmt.Errorf("encode chunk (%d,%d): %w", c.CX, c.CZ, err)
		}
		s.chunks[meshproto.ChunkCoord{CX: c.CX, CZ: c.CZ}] = published{digest: c.Digest, msg: b}
	}
	for _, sess := range s.sessions {
		s.pushLocked(sess)
	}
	return s.version, nil
}

// window lists the published chunks inside a session's radius, nearest
// first, capped at maxChunks.
func (s *Server) windowLocked(sess *session) []meshproto.ChunkCoord {
	var keys []meshproto.ChunkCoord
	for k := range s.chunks {
		if mathx.AbsInt(k.CX-sess.center.CX) <= sess.radius && mathx.AbsInt(k.CZ-sess.center.CZ) <= sess.radius {
			keys = append(keys, k)
		}
	}
	dist := func(k meshproto.ChunkCoord) int {
		return mathx.AbsInt(k.CX-sess.center.CX) + mathx.AbsInt(k.CZ-sess.center.CZ)
	}
	sort.Slice(keys, func(i, j int) bool {
		di, dj := dist(keys[i]), dist(keys[j])
		if di != dj {
			return di < dj
		}
		if keys[i].CZ != keys[j].CZ {
			return keys[i].CZ < keys[j].CZ
		}
		return keys[i].CX < keys[j].CX
	})
	if len(keys) > sess.maxChunks {
		keys = keys[:sess.maxChunks]
	}
	return keys
}

// pushLocked queues every chunk in the window the session has not seen in
// its current form. A full queue drops the rest; they are retried on the
// next publish or subscribe.
func (s *Server) pushLocked(sess *session) {
	for _, k := range s.windowLocked(sess) {
		p := s.chunks[k]
		if sess.sent[k] == p.digest {
			continue
		}
		select {
		case sess.out <- p.msg:
			sess.sent[k] = p.digest
		default:
			return
		}
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/v1/ws", s.WSHandler())
	mux.HandleFunc("/v1/edit", s.EditHandler())
	return mux
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		s.mu.Lock()
		resp := meshproto.BootstrapResponse{
			ProtocolVersion: meshproto.Version,
			MapName:         s.mapName,
			Version:         s.version,
			Geometry:        s.geo,
			Chunks:          make([]meshproto.ChunkCoord, 0, len(s.chunks)),
		}
		for k := range s.chunks {
			resp.Chunks = append(resp.Chunks, k)
		}
		s.mu.Unlock()
		sort.Slice(resp.Chunks, func(i, j int) bool {
			if resp.Chunks[i].CZ != resp.Chunks[j].CZ {
				return resp.Chunks[i].CZ < resp.Chunks[j].CZ
			}
			return resp.Chunks[i].CX < resp.Chunks[j].CX
		})
		for _, l := range mesh.Layers {
			resp.Layers = append(resp.Layers, l.String())
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) EditHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		s.mu.Lock()
		edit := s.edit
		s.mu.Unlock()
		if edit == nil {
			writeError(rw, http.StatusNotFound, meshproto.ErrEditDisabled, "editing disabled")
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(rw, http.StatusBadRequest, meshproto.ErrProtoBadRequest, "bad body")
			return
		}
		if err := edit(body); err != nil {
			code, status := meshproto.ErrBadRequest, http.StatusBadRequest
			var ce *meshproto.CodedError
			if errors.As(err, &ce) {
				code = ce.Code
				if code == meshproto.ErrInternal {
					status = http.StatusInternalServerError
				}
			}
			writeError(rw, status, code, err.Error())
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]uint64{"version": s.Version()})
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, ok := decodeSubscribe(msg)
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sess := &session{
			id:   fmt.Sprintf("M%d", s.nextID.Add(1)),
			out:  make(chan []byte, 1024),
			sent: map[meshproto.ChunkCoord]string{},
		}
		s.mu.Lock()
		sess.center, sess.radius, sess.maxChunks = sub.Center, sub.ChunkRadius, sub.MaxChunks
		s.sessions[sess.id] = sess
		s.pushLocked(sess)
		s.mu.Unlock()
		if s.log != nil {
			s.log.Printf("session %s subscribed center=%v radius=%d", sess.id, sub.Center, sub.ChunkRadius)
		}
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sess.id)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			sub, ok := decodeSubscribe(msg)
			if !ok {
				continue
			}
			s.mu.Lock()
			sess.center, sess.radius, sess.maxChunks = sub.Center, sub.ChunkRadius, sub.MaxChunks
			s.pushLocked(sess)
			s.mu.Unlock()
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func writeError(rw http.ResponseWriter, status int, code, msg string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(meshproto.ErrorResponse{Code: code, Message: msg})
}

func decodeSubscribe(msg []byte) (meshproto.SubscribeMsg, bool) {
	var sub meshproto.SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, false
	}
	if sub.Type != meshproto.TypeSubscribe || sub.ProtocolVersion != meshproto.Version {
		return sub, false
	}
	normalizeSubscribe(&sub)
	return sub, true
}

func normalizeSubscribe(sub *meshproto.SubscribeMsg) {
	if sub.ChunkRadius <= 0 {
		sub.ChunkRadius = 2
	}
	if sub.ChunkRadius > 32 {
		sub.ChunkRadius = 32
	}
	if sub.MaxChunks <= 0 {
		sub.MaxChunks = 256
	}
	if sub.MaxChunks > 4096 {
		sub.MaxChunks = 4096
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
