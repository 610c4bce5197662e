package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"hexterrain.dev/internal/persistence/indexdb"
	persistlog "hexterrain.dev/internal/persistence/log"
	"hexterrain.dev/internal/persistence/snapshot"
	"hexterrain.dev/internal/terrain/mapfile"
	"hexterrain.dev/internal/terrain/tuning"
	"hexterrain.dev/internal/terrain/world"
)

type config struct {
	TuningPath string
	MapPath    string
	OutPath    string
	IndexPath  string
	LogsDir    string
}

type summary struct {
	Tiles     int
	Chunks    int
	Triangles int
	Passes    []world.PassRecord
}

func loadTuning(path string, logger *log.Logger) (tuning.Geometry, error) {
	geo, err := tuning.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", path)
			return tuning.Defaults(), nil
		}
		return geo, fmt.Errorf("load tuning: %w", err)
	}
	return geo, nil
}

// run loads the map, triangulates every chunk and writes the snapshot plus
// the optional build log and index rows.
func run(cfg config, logger *log.Logger) (summary, error) {
	var sum summary

	geo, err := loadTuning(cfg.TuningPath, logger)
	if err != nil {
		return sum, err
	}
	m, err := mapfile.Load(cfg.MapPath)
	if err != nil {
		return sum, fmt.Errorf("load map: %w", err)
	}

	w := world.New(geo)
	if err := m.Apply(w); err != nil {
		return sum, fmt.Errorf("apply map: %w", err)
	}
	sum.Passes = w.Rebuild()
	logger.Printf("triangulated %d chunks", len(sum.Passes))

	if dir := strings.TrimSpace(cfg.LogsDir); dir != "" {
		bl := persistlog.NewBuildLogger(dir)
		err := bl.WritePasses(sum.Passes)
		if cerr := bl.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return sum, fmt.Errorf("build log: %w", err)
		}
	}

	snap := w.Snapshot(m.Name)
	if err := snapshot.WriteSnapshot(cfg.OutPath, snap); err != nil {
		return sum, fmt.Errorf("write snapshot: %w", err)
	}
	sum.Tiles = len(snap.Tiles)
	sum.Chunks = snap.Header.Chunks
	sum.Triangles = snap.Header.Triangles

	if p := strings.TrimSpace(cfg.IndexPath); p != "" {
		idx, err := indexdb.OpenSQLite(p)
		if err != nil {
			return sum, fmt.Errorf("open index: %w", err)
		}
		if err := idx.UpsertGeometry(geo); err != nil {
			_ = idx.Close()
			return sum, fmt.Errorf("index geometry: %w", err)
		}
		for _, r := range sum.Passes {
			_ = idx.RecordPass(r)
		}
		idx.RecordSnapshot(cfg.OutPath, snap)
		if st := idx.Stats(); st.DropPassTotal > 0 {
			logger.Printf("index dropped %d pass rows", st.DropPassTotal)
		}
		if err := idx.Close(); err != nil {
			return sum, fmt.Errorf("close index: %w", err)
		}
	}
	return sum, nil
}
