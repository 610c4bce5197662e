package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/tuning"
	"hexterrain.dev/internal/terrain/world"
)

// SQLiteIndex is a queryable secondary index of triangulation passes and
// written snapshots. Writes are queued and applied by one goroutine.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropPass     atomic.Uint64
	dropSnapshot atomic.Uint64
}

type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
	DropPassTotal     uint64 `json:"drop_pass_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
}

type reqKind int

const (
	reqPass reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	pass     world.PassRecord
	snapshot snapshotRow
}

type snapshotRow struct {
	Path      string
	MapName   string
	Chunks    int
	Tiles     int
	Triangles int
	CreatedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS passes (
			chunk_x INTEGER NOT NULL,
			chunk_z INTEGER NOT NULL,
			pass INTEGER NOT NULL,
			tiles INTEGER NOT NULL,
			ground_tris INTEGER NOT NULL,
			water_tris INTEGER NOT NULL,
			shore_tris INTEGER NOT NULL,
			river_tris INTEGER NOT NULL,
			digest TEXT NOT NULL,
			duration_micros INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (chunk_x, chunk_z, pass)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_passes_digest ON passes(digest);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			path TEXT PRIMARY KEY,
			map_name TEXT NOT NULL,
			chunks INTEGER NOT NULL,
			tiles INTEGER NOT NULL,
			triangles INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains the queue and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropPassTotal:     s.dropPass.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

func (s *SQLiteIndex) RecordPass(rec world.PassRecord) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqPass, pass: rec}:
	default:
		// Drop if the indexer falls behind; the build log remains the source of truth.
		s.dropPass.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.MeshSnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Path:      path,
		MapName:   snap.Header.MapName,
		Chunks:    len(snap.Chunks),
		Tiles:     len(snap.Tiles),
		Triangles: snap.Header.Triangles,
		CreatedAt: snap.Header.CreatedAt,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// UpsertGeometry stores the geometry a build used, as canonical JSON with
// its digest, so index rows can be traced back to their parameters.
func (s *SQLiteIndex) UpsertGeometry(geo tuning.Geometry) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(geo)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, kv := range [][2]string{
		{"schema_version", "1"},
		{"geometry", string(b)},
		{"geometry_digest", hex.EncodeToString(sum[:])},
	} {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertPass, _ := s.db.Prepare(`INSERT OR REPLACE INTO passes(chunk_x,chunk_z,pass,tiles,ground_tris,water_tris,shore_tris,river_tris,digest,duration_micros,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(path,map_name,chunks,tiles,triangles,created_at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insertPass != nil {
			_ = insertPass.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqPass:
			p := r.pass
			if insertPass != nil {
				if _, err := tx.Stmt(insertPass).Exec(
					p.ChunkX,
					p.ChunkZ,
					int64(p.Pass),
					p.Tiles,
					p.GroundTris,
					p.WaterTris,
					p.ShoreTris,
					p.RiverTris,
					p.Digest,
					p.DurationMicros,
					p.RecordedAt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				if _, err := tx.Stmt(insertSnapshot).Exec(
					sn.Path,
					sn.MapName,
					sn.Chunks,
					sn.Tiles,
					sn.Triangles,
					sn.CreatedAt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
