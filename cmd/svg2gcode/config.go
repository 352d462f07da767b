package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/cdot/SVG2Gcode/cam"
	"github.com/cdot/SVG2Gcode/gcode"
	"github.com/cdot/SVG2Gcode/geom"
)

// Config is the job file schema. YAML (.yaml/.yml) and JSON project files
// share it; lengths and depths are in G-code units, except the tab
// polygons, which are in SVG units.
type Config struct {
	Units       string  `yaml:"units" json:"units"`
	TopZ        float64 `yaml:"topZ" json:"topZ"`
	BotZ        float64 `yaml:"botZ" json:"botZ"`
	SafeZ       float64 `yaml:"safeZ" json:"safeZ"`
	PassDepth   float64 `yaml:"passDepth" json:"passDepth"`
	PlungeFeed  float64 `yaml:"plungeFeed" json:"plungeFeed"`
	CutFeed     float64 `yaml:"cutFeed" json:"cutFeed"`
	RapidFeed   float64 `yaml:"rapidFeed" json:"rapidFeed"`
	RetractFeed float64 `yaml:"retractFeed" json:"retractFeed"`
	Decimal     int     `yaml:"decimal" json:"decimal"`
	Scale       float64 `yaml:"scale" json:"scale"` // SVG user units → G-code units
	ReturnTo00  bool    `yaml:"returnTo00" json:"returnTo00"`

	Tabs       TabsConfig `yaml:"tabs" json:"tabs"`
	Operations []OpConfig `yaml:"operations" json:"operations"`
}

// TabsConfig lists holding tabs as polygons in SVG units. Z is the
// absolute height the cutter keeps while crossing a tab.
type TabsConfig struct {
	Z        float64       `yaml:"z" json:"z"`
	Polygons [][][2]float64 `yaml:"polygons" json:"polygons"`
}

// OpConfig is one user operation. Stroke selects geometry by colour; an
// empty stroke takes every shape.
type OpConfig struct {
	Name      string  `yaml:"name" json:"name"`
	Kind      string  `yaml:"kind" json:"kind"`
	Stroke    string  `yaml:"stroke" json:"stroke"`
	CutterDia float64 `yaml:"cutterDiameter" json:"cutterDiameter"`
	Overlap   float64 `yaml:"overlap" json:"overlap"`
	Climb     bool    `yaml:"climb" json:"climb"`
	Width     float64 `yaml:"width" json:"width"`
	CutDepth  float64 `yaml:"cutDepth" json:"cutDepth"`
	Ramp      bool    `yaml:"ramp" json:"ramp"`
}

func defaultConfig() Config {
	return Config{
		Units:       "mm",
		TopZ:        0,
		BotZ:        -3,
		SafeZ:       5,
		PassDepth:   1,
		PlungeFeed:  120,
		CutFeed:     300,
		RapidFeed:   2500,
		RetractFeed: 500,
		Scale:       1,
		Tabs:        TabsConfig{Z: -1},
	}
}

// loadConfig reads a YAML job file or a JSON project file over the
// defaults; the extension picks the decoder.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func parseKind(s string) (cam.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pocket":
		return cam.Pocket, nil
	case "inside", "outline-inside":
		return cam.OutlineInside, nil
	case "outside", "outline-outside":
		return cam.OutlineOutside, nil
	case "engrave", "":
		return cam.Engrave, nil
	case "perforate":
		return cam.Perforate, nil
	case "drill":
		return cam.Drill, nil
	case "vcarve", "v-carve":
		return cam.VCarve, nil
	}
	return 0, fmt.Errorf("unknown operation kind %q", s)
}

func (c Config) units() gcode.Units {
	if strings.EqualFold(c.Units, "inch") || strings.EqualFold(c.Units, "in") {
		return gcode.Inch
	}
	return gcode.Mm
}

// mmPerUnit is the millimetre size of one G-code unit. The integer grid
// is always metric, so every inch-job length crosses this factor on the
// way in and its inverse on the way out.
func (c Config) mmPerUnit() float64 {
	if c.units() == gcode.Inch {
		return 25.4
	}
	return 1
}

// toUnits converts a length in G-code units (cutter diameter, cut
// width) to the integer grid.
func (c Config) toUnits(v float64) int64 {
	return int64(math.Round(v * c.mmPerUnit() * geom.Scale))
}

// converter maps SVG user units onto the grid: scale to G-code units
// first, then to millimetres.
func (c Config) converter() converter {
	f := c.Scale * c.mmPerUnit()
	if f <= 0 {
		f = 1
	}
	return converter{mmPerUnit: f}
}

// job assembles the emitter profile. svgHeight (in G-code units) places
// the origin at the bottom-left of the document: internal Y grows down,
// G-code Y grows up.
func (c Config) job(svgHeight float64, tabs geom.Paths) gcode.Job {
	return gcode.Job{
		GUnits:      c.units(),
		TopZ:        c.TopZ,
		BotZ:        c.BotZ,
		SafeZ:       c.SafeZ,
		PassDepth:   c.PassDepth,
		PlungeFeed:  c.PlungeFeed,
		CutFeed:     c.CutFeed,
		RapidFeed:   c.RapidFeed,
		RetractFeed: c.RetractFeed,
		Decimal:     c.Decimal,
		OffsetX:     0,
		OffsetY:     svgHeight,
		XScale:      1.0 / (geom.Scale * c.mmPerUnit()),
		YScale:      -1.0 / (geom.Scale * c.mmPerUnit()),
		ZScale:      1,
		ReturnTo00:  c.ReturnTo00,
		TabGeometry: tabs,
		TabZ:        c.Tabs.Z,
	}
}

// tabPaths converts the configured tab polygons to the integer grid.
func (c Config) tabPaths() geom.Paths {
	conv := c.converter()
	var out geom.Paths
	for _, poly := range c.Tabs.Polygons {
		if len(poly) < 3 {
			continue
		}
		p := make(geom.Path, 0, len(poly))
		for _, v := range poly {
			p = append(p, conv.point(v[0], v[1]))
		}
		out = append(out, p)
	}
	return out
}
