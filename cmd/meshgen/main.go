package main

import (
	"flag"
	"log"
	"os"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		mapPath    = flag.String("map", "./configs/maps/demo.yaml", "map file to triangulate")
		outPath    = flag.String("out", "./data/mesh.snap.zst", "mesh snapshot output path")
		indexPath  = flag.String("index", "", "sqlite index path (empty to disable)")
		logsDir    = flag.String("logs", "", "build log directory (empty to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[meshgen] ", log.LstdFlags|log.Lmicroseconds)

	sum, err := run(config{
		TuningPath: *tuningPath,
		MapPath:    *mapPath,
		OutPath:    *outPath,
		IndexPath:  *indexPath,
		LogsDir:    *logsDir,
	}, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Printf("wrote %s: %d tiles, %d chunks, %d triangles", *outPath, sum.Tiles, sum.Chunks, sum.Triangles)
}
