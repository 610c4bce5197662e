package tuning

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	g, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g != Defaults() {
		t.Fatalf("expected defaults, got %+v", g)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_PartialFileIsNormalized(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	body := "edge_width: 0.4\nheight_scale: 2\nseed: 7\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	g, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.EdgeWidth != 0.4 || g.HeightScale != 2 || g.Seed != 7 {
		t.Fatalf("file values not applied: %+v", g)
	}
	if g.Scale != 1 || g.RiverWaterHeight != 0.75 || g.ChunkSize != 16 {
		t.Fatalf("defaults not kept: %+v", g)
	}
	if math.Abs(g.ShoreWidth()-0.2) > 1e-12 {
		t.Fatalf("ShoreWidth=%v want 0.2", g.ShoreWidth())
	}
	if math.Abs(g.RiverDepth()-0.2) > 1e-12 {
		t.Fatalf("RiverDepth=%v want 0.2", g.RiverDepth())
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative scale":  "scale: -1\n",
		"mult above one":  "river_width_mult: 1.5\n",
		"fold into river": "edge_width: 1.0\nfold_width_mult: 0.5\nriver_width_mult: 0.2\n",
		"jitter too big":  "center_jitter: 0.3\n",
		"bad yaml":        "scale: [\n",
	}
	dir := t.TempDir()
	for name, body := range cases {
		p := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.HasPrefix(err.Error(), "tuning.yaml: ") {
			t.Fatalf("%s: error not prefixed: %v", name, err)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDerivedMetrics(t *testing.T) {
	g := Defaults()
	m := g.Metrics()
	if m.InnerRadius != g.InnerRadius() || m.OuterRadius != g.OuterRadius() || m.EdgeWidth != g.EdgeWidth {
		t.Fatalf("metrics mismatch: %+v", m)
	}
	if math.Abs(g.InnerHexRadius()*math.Cos(math.Pi/6)*2-g.RiverWidth()) > 1e-12 {
		t.Fatalf("inner hexagon is not one river width across")
	}
}
