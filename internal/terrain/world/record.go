package world

// PassRecord describes one chunk triangulation pass. It is written to the
// build log and the index database.
type PassRecord struct {
	Pass           uint64 `json:"pass"`
	ChunkX         int    `json:"chunk_x"`
	ChunkZ         int    `json:"chunk_z"`
	Tiles          int    `json:"tiles"`
	GroundTris     int    `json:"ground_tris"`
	WaterTris      int    `json:"water_tris"`
	ShoreTris      int    `json:"shore_tris"`
	RiverTris      int    `json:"river_tris"`
	Digest         string `json:"digest"`
	DurationMicros int64  `json:"duration_micros"`
	RecordedAt     string `json:"recorded_at"`
}
