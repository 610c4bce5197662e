package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hexterrain.dev/internal/terrain/hex"
)

// Geometry holds the boundary-geometry constants the mesh core reads. The
// *_mult fields are relative to the quantity named in their comment.
type Geometry struct {
	Scale       float64 `yaml:"scale" json:"scale"`               // tile width, flat side to flat side
	HeightScale float64 `yaml:"height_scale" json:"height_scale"` // world units per height level
	EdgeWidth   float64 `yaml:"edge_width" json:"edge_width"`     // gap between neighbouring tiles

	ShoreWidthMult   float64 `yaml:"shore_width_mult" json:"shore_width_mult"`     // of EdgeWidth
	FoldWidthMult    float64 `yaml:"fold_width_mult" json:"fold_width_mult"`       // of EdgeWidth
	RiverWidthMult   float64 `yaml:"river_width_mult" json:"river_width_mult"`     // of the outer radius
	RiverDepthMult   float64 `yaml:"river_depth_mult" json:"river_depth_mult"`     // of HeightScale
	RiverWaterHeight float64 `yaml:"river_water_height" json:"river_water_height"` // fraction of the channel filled
	CenterJitter     float64 `yaml:"center_jitter" json:"center_jitter"`           // max interior offset, world units
	Seed             int64   `yaml:"seed" json:"seed"`
	ChunkSize        int     `yaml:"chunk_size" json:"chunk_size"`             // tiles per chunk side
	WorldBoundaryR   int     `yaml:"world_boundary_r" json:"world_boundary_r"` // 0 = unbounded
}

func Load(path string) (Geometry, error) {
	g := Defaults()
	if strings.TrimSpace(path) == "" {
		return g, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return g, err
	}
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return g, fmt.Errorf("tuning.yaml: %w", err)
	}
	g.Normalize()
	if err := g.Validate(); err != nil {
		return g, fmt.Errorf("tuning.yaml: %w", err)
	}
	return g, nil
}

func Defaults() Geometry {
	return Geometry{
		Scale:            1,
		HeightScale:      3,
		EdgeWidth:        0.6,
		ShoreWidthMult:   0.5,
		FoldWidthMult:    0.2,
		RiverWidthMult:   0.5,
		RiverDepthMult:   0.1,
		RiverWaterHeight: 0.75,
		CenterJitter:     0.05,
		Seed:             1337,
		ChunkSize:        16,
	}
}

// Normalize fills unset fields from Defaults. Zero is a valid value only for
// CenterJitter, Seed and WorldBoundaryR.
func (g *Geometry) Normalize() {
	if g == nil {
		return
	}
	d := Defaults()
	if g.Scale == 0 {
		g.Scale = d.Scale
	}
	if g.HeightScale == 0 {
		g.HeightScale = d.HeightScale
	}
	if g.EdgeWidth == 0 {
		g.EdgeWidth = d.EdgeWidth
	}
	if g.ShoreWidthMult == 0 {
		g.ShoreWidthMult = d.ShoreWidthMult
	}
	if g.FoldWidthMult == 0 {
		g.FoldWidthMult = d.FoldWidthMult
	}
	if g.RiverWidthMult == 0 {
		g.RiverWidthMult = d.RiverWidthMult
	}
	if g.RiverDepthMult == 0 {
		g.RiverDepthMult = d.RiverDepthMult
	}
	if g.RiverWaterHeight == 0 {
		g.RiverWaterHeight = d.RiverWaterHeight
	}
	if g.ChunkSize == 0 {
		g.ChunkSize = d.ChunkSize
	}
}

func (g Geometry) Validate() error {
	if g.Scale <= 0 {
		return fmt.Errorf("scale must be > 0")
	}
	if g.HeightScale <= 0 {
		return fmt.Errorf("height_scale must be > 0")
	}
	if g.EdgeWidth <= 0 {
		return fmt.Errorf("edge_width must be > 0")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"shore_width_mult", g.ShoreWidthMult},
		{"fold_width_mult", g.FoldWidthMult},
		{"river_width_mult", g.RiverWidthMult},
		{"river_depth_mult", g.RiverDepthMult},
		{"river_water_height", g.RiverWaterHeight},
	} {
		if f.v <= 0 || f.v > 1 {
			return fmt.Errorf("%s must be in (0,1]", f.name)
		}
	}
	if g.CenterJitter < 0 {
		return fmt.Errorf("center_jitter must be >= 0")
	}
	if g.CenterJitter > g.InnerRadius()*0.25 {
		return fmt.Errorf("center_jitter must be <= %.4f (a quarter of the inner radius)", g.InnerRadius()*0.25)
	}
	// Each side runs corner, fold, river bank, midpoint; the fold must end
	// before the bank starts.
	if g.EdgeFoldWidth()+g.RiverWidth()/2 >= g.OuterRadius()/2 {
		return fmt.Errorf("fold width plus half the river width must stay below half a tile side")
	}
	if g.ShoreWidth() >= g.InnerRadius()*0.8 {
		return fmt.Errorf("shore width must stay below 0.8 of the inner radius")
	}
	if g.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0")
	}
	if g.WorldBoundaryR < 0 {
		return fmt.Errorf("world_boundary_r must be >= 0")
	}
	return nil
}

func (g Geometry) InnerRadius() float64   { return g.Scale / 2 }
func (g Geometry) OuterRadius() float64   { return g.InnerRadius() / hex.Cos30 }
func (g Geometry) ShoreWidth() float64    { return g.EdgeWidth * g.ShoreWidthMult }
func (g Geometry) EdgeFoldWidth() float64 { return g.EdgeWidth * g.FoldWidthMult }
func (g Geometry) RiverWidth() float64    { return g.OuterRadius() * g.RiverWidthMult }
func (g Geometry) RiverDepth() float64    { return g.HeightScale * g.RiverDepthMult }

// InnerHexRadius is the corner radius of the inner hexagon that is one river
// width across its flat sides.
func (g Geometry) InnerHexRadius() float64 { return g.RiverWidth() / hex.Cos30 * 0.5 }

func (g Geometry) Metrics() hex.Metrics { return hex.NewMetrics(g.Scale, g.EdgeWidth) }
