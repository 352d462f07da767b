package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdot/SVG2Gcode/cam"
	"github.com/cdot/SVG2Gcode/geom"
)

func TestUnitConversionMm(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 1.0, cfg.mmPerUnit())
	assert.Equal(t, int64(3e6), cfg.toUnits(3))
	assert.Equal(t, geom.Pt(1e6, -2e6), cfg.converter().point(1, -2))

	job := cfg.job(0, nil)
	assert.InEpsilon(t, 1.0/geom.Scale, job.XScale, 1e-12)
	assert.InEpsilon(t, -1.0/geom.Scale, job.YScale, 1e-12)
}

// An inch job crosses 25.4 on the way onto the metric grid and back.
func TestUnitConversionInch(t *testing.T) {
	cfg := defaultConfig()
	cfg.Units = "inch"
	assert.Equal(t, 25.4, cfg.mmPerUnit())

	// A 1/8" cutter is 3.175 mm.
	assert.Equal(t, int64(3_175_000), cfg.toUnits(0.125))
	assert.Equal(t, geom.Pt(25_400_000, 0), cfg.converter().point(1, 0))

	job := cfg.job(0, nil)
	assert.InEpsilon(t, 1.0/(geom.Scale*25.4), job.XScale, 1e-12)
	assert.InEpsilon(t, -1.0/(geom.Scale*25.4), job.YScale, 1e-12)

	// Round trip: one inch of geometry emits as one unit.
	x := float64(cfg.toUnits(1)) * job.XScale
	assert.InEpsilon(t, 1.0, x, 1e-9)
}

func TestBuildOperationsInch(t *testing.T) {
	cfg := defaultConfig()
	cfg.Units = "inch"
	cfg.Operations = []OpConfig{{
		Name:      "edge",
		Kind:      "outside",
		CutterDia: 0.125,
		Width:     0.25,
		CutDepth:  0.1,
	}}
	shapes := []Shape{{
		Path:   geom.Path{{X: 0, Y: 0}, {X: 25_400_000, Y: 0}, {X: 25_400_000, Y: 25_400_000}},
		Closed: true,
	}}

	ops, maxDia, err := buildOperations(cfg, shapes, discard())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, cam.OutlineOutside, ops[0].Kind)
	assert.Equal(t, int64(3_175_000), ops[0].CutterDia)
	assert.Equal(t, int64(6_350_000), ops[0].Width)
	assert.Equal(t, int64(3_175_000), maxDia)
	require.Len(t, ops[0].Geometry, 1)
}

func TestBuildOperationsSkipsOpenForPocket(t *testing.T) {
	cfg := defaultConfig()
	cfg.Operations = []OpConfig{{Name: "p", Kind: "pocket", CutterDia: 3}}
	shapes := []Shape{
		{Path: geom.Path{{X: 0, Y: 0}, {X: 1e6, Y: 0}}, Closed: false},
		{Path: geom.Path{{X: 0, Y: 0}, {X: 1e6, Y: 0}, {X: 1e6, Y: 1e6}}, Closed: true},
	}
	ops, _, err := buildOperations(cfg, shapes, discard())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Len(t, ops[0].Geometry, 1)
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	data := `units: inch
safeZ: 0.25
passDepth: 0.05
operations:
  - name: edge
    kind: outside
    cutterDiameter: 0.125
    width: 0.25
    cutDepth: 0.1
tabs:
  z: -0.05
  polygons:
    - [[0, 0], [1, 0], [1, 1]]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "inch", cfg.Units)
	assert.Equal(t, 0.25, cfg.SafeZ)
	require.Len(t, cfg.Operations, 1)
	assert.Equal(t, 0.125, cfg.Operations[0].CutterDia)
	assert.Equal(t, -0.05, cfg.Tabs.Z)

	// Defaults survive fields the file leaves out.
	assert.Equal(t, 300.0, cfg.CutFeed)

	// Tab polygons land on the grid through the inch conversion.
	tabs := cfg.tabPaths()
	require.Len(t, tabs, 1)
	assert.Equal(t, geom.Pt(25_400_000, 0), tabs[0][1])
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	data := `{"units": "mm", "returnTo00": true,
  "operations": [{"name": "holes", "kind": "drill", "cutterDiameter": 1, "cutDepth": 3}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.ReturnTo00)
	require.Len(t, cfg.Operations, 1)
	assert.Equal(t, "drill", cfg.Operations[0].Kind)
}

func TestTabGeometryBloated(t *testing.T) {
	cfg := defaultConfig()
	cfg.Tabs.Polygons = [][][2]float64{
		{{4, -1}, {6, -1}, {6, 1}, {4, 1}},
	}
	tabs := tabGeometry(cfg, int64(2e6))
	require.NotEmpty(t, tabs)

	// Bloated by half the cutter: the box grows 1 mm each way.
	b := tabs.Bounds()
	assert.Equal(t, geom.Pt(3e6, -2e6), b.Min)
	assert.Equal(t, geom.Pt(7e6, 2e6), b.Max)
}
