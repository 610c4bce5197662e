package mapfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hexterrain.dev/internal/terrain/geom"
	"hexterrain.dev/internal/terrain/hex"
	"hexterrain.dev/internal/terrain/world"
)

// Map describes the tiles of a world. Fill creates a rectangle of uniform
// tiles first; Tiles then override or extend it one by one.
type Map struct {
	Name  string     `yaml:"name"`
	Fill  *FillSpec  `yaml:"fill,omitempty"`
	Tiles []TileSpec `yaml:"tiles"`
}

type FillSpec struct {
	Min    hex.Coords  `yaml:"min"`
	Max    hex.Coords  `yaml:"max"`
	Height int         `yaml:"height"`
	Water  int         `yaml:"water"`
	Color  *geom.Color `yaml:"color,omitempty"`
}

type TileSpec struct {
	Coords hex.Coords     `yaml:"coords" json:"coords"`
	Height int            `yaml:"height" json:"height"`
	Water  int            `yaml:"water" json:"water"`
	Color  *geom.Color    `yaml:"color,omitempty" json:"color,omitempty"`
	River  *hex.Direction `yaml:"river,omitempty" json:"river,omitempty"` // outgoing direction

	// ClearRivers removes the tile's existing rivers before River is applied.
	ClearRivers bool `yaml:"clear_rivers,omitempty" json:"clear_rivers,omitempty"`
}

func Load(path string) (Map, error) {
	var m Map
	if strings.TrimSpace(path) == "" {
		return m, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("map %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("map %s: %w", path, err)
	}
	return m, nil
}

func (m Map) Validate() error {
	if f := m.Fill; f != nil {
		if f.Max.X < f.Min.X || f.Max.Y < f.Min.Y {
			return fmt.Errorf("fill: max %v below min %v", f.Max, f.Min)
		}
	}
	seen := map[hex.Coords]bool{}
	for i, t := range m.Tiles {
		if seen[t.Coords] {
			return fmt.Errorf("tiles[%d]: duplicate coords %v", i, t.Coords)
		}
		seen[t.Coords] = true
		if t.Height < 0 || t.Water < 0 {
			return fmt.Errorf("tiles[%d]: height and water must be >= 0", i)
		}
	}
	return nil
}

// Apply creates and configures every tile, then lays rivers once all
// neighbours exist. The world is left dirty; callers rebuild.
func (m Map) Apply(w *world.World) error {
	if f := m.Fill; f != nil {
		for y := f.Min.Y; y <= f.Max.Y; y++ {
			for x := f.Min.X; x <= f.Max.X; x++ {
				t := w.GetOrCreateTile(hex.Coords{X: x, Y: y})
				if t == nil {
					return fmt.Errorf("fill: (%d,%d) outside world boundary", x, y)
				}
				t.SetHeight(f.Height)
				t.SetWaterLevel(f.Water)
				if f.Color != nil {
					t.SetColor(*f.Color)
				}
			}
		}
	}
	for i, spec := range m.Tiles {
		t := w.GetOrCreateTile(spec.Coords)
		if t == nil {
			return fmt.Errorf("tiles[%d]: %v outside world boundary", i, spec.Coords)
		}
		t.SetHeight(spec.Height)
		t.SetWaterLevel(spec.Water)
		if spec.Color != nil {
			t.SetColor(*spec.Color)
		}
		if spec.ClearRivers {
			t.RemoveRivers()
		}
	}
	for i, spec := range m.Tiles {
		if spec.River == nil {
			continue
		}
		if !w.AddRiver(spec.Coords, *spec.River) {
			return fmt.Errorf("tiles[%d]: river %v from %v has no neighbour", i, *spec.River, spec.Coords)
		}
	}
	return nil
}
