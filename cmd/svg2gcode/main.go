// Command svg2gcode converts closed vector geometry from an SVG document
// into G-code for a three-axis CNC router. The CAM work happens in the
// geom, cam and gcode packages; this command parses the input, converts
// units onto the integer grid and wires the job together.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cdot/SVG2Gcode/cam"
	"github.com/cdot/SVG2Gcode/gcode"
	"github.com/cdot/SVG2Gcode/geom"
)

func main() {
	inPath := flag.String("in", "", "input SVG file")
	outPath := flag.String("out", "", "output G-code file (default: stdout)")
	jobPath := flag.String("job", "", "job file (.yaml) or project file (.json)")

	opKind := flag.String("op", "engrave", "operation when the job file lists none: pocket, inside, outside, engrave, perforate, drill")
	toolDia := flag.Float64("tooldia", 3.0, "tool diameter (G-code units)")
	cutDepth := flag.Float64("cutdepth", 1.0, "cut depth for the flag-defined operation (G-code units, positive)")
	width := flag.Float64("width", 0, "total cut width for inside/outside outlines (G-code units)")
	overlap := flag.Float64("overlap", 0.4, "fraction of the tool diameter re-covered between passes [0,1)")
	climb := flag.Bool("climb", false, "climb cutting (reverses path direction)")
	ramp := flag.Bool("ramp", false, "ramp into the material instead of plunging")
	stroke := flag.String("stroke", "", "only machine shapes with this stroke colour")
	scale := flag.Float64("scale", 1.0, "coordinate scale factor (SVG units → G-code units)")
	construction := flag.String("construction", "#0000ff",
		"hex color (e.g. #0000ff) for construction geometry to ignore; empty or 'none' to disable")

	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *inPath == "" {
		log.Error("-in SVG file is required")
		os.Exit(1)
	}

	cfg := defaultConfig()
	if *jobPath != "" {
		var err error
		cfg, err = loadConfig(*jobPath)
		if err != nil {
			log.Error("load job file", "error", err)
			os.Exit(1)
		}
	}
	if *scale != 1 {
		cfg.Scale = *scale
	}
	if len(cfg.Operations) == 0 {
		cfg.Operations = []OpConfig{{
			Name:      "default",
			Kind:      *opKind,
			Stroke:    *stroke,
			CutterDia: *toolDia,
			Overlap:   *overlap,
			Climb:     *climb,
			Width:     *width,
			CutDepth:  *cutDepth,
			Ramp:      *ramp,
		}}
	}

	svgFile, err := os.Open(*inPath)
	if err != nil {
		log.Error("open SVG", "error", err)
		os.Exit(1)
	}
	defer svgFile.Close()

	doc, err := parseSVG(svgFile, cfg.converter(), log)
	if err != nil {
		log.Error("parse SVG", "error", err)
		os.Exit(1)
	}
	shapes := dropConstruction(doc.Shapes, *construction)
	if len(shapes) == 0 {
		log.Warn("no usable paths / polylines / polygons found")
	}

	ops, maxDia, err := buildOperations(cfg, shapes, log)
	if err != nil {
		log.Error("build operations", "error", err)
		os.Exit(1)
	}

	tabs := tabGeometry(cfg, maxDia)
	job := cfg.job(doc.Height*cfg.Scale, tabs)

	prog := gcode.Generate(job, ops, func(w gcode.Warning) {
		switch w.Kind {
		case gcode.PassDepthClamped:
			log.Warn("pass depth below zero, clamped", "passDepth", w.Value)
		case gcode.CutDepthClamped:
			log.Warn("cut depth below zero, clamped", "operation", w.Op, "cutDepth", w.Value)
		case gcode.UnsupportedOperation:
			log.Warn("operation not supported", "operation", w.Op)
		}
	})
	for _, err := range prog.Errors {
		log.Warn("operation skipped", "error", err)
	}

	out := os.Stdout
	if *outPath != "" && *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Error("create output file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if _, err := fmt.Fprintln(out, strings.Join(prog.Lines, "\n")); err != nil {
		log.Error("write G-code", "error", err)
		os.Exit(1)
	}
}

// dropConstruction filters out shapes drawn in the construction colour.
func dropConstruction(shapes []Shape, construction string) []Shape {
	cc := strings.TrimSpace(construction)
	if strings.EqualFold(cc, "none") {
		cc = ""
	} else {
		cc = normalizeColor(cc)
	}
	if cc == "" {
		return shapes
	}
	kept := shapes[:0]
	for _, s := range shapes {
		if s.Stroke == cc {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// buildOperations turns each configured operation into CAM input,
// selecting geometry by stroke colour. Open shapes only make sense for
// engraving; elsewhere they are skipped with a warning. Tool lengths
// arrive in G-code units and cross onto the integer grid here.
func buildOperations(cfg Config, shapes []Shape, log *slog.Logger) ([]cam.Operation, int64, error) {
	var ops []cam.Operation
	var maxDia int64
	for _, oc := range cfg.Operations {
		kind, err := parseKind(oc.Kind)
		if err != nil {
			return nil, 0, err
		}
		sel := normalizeColor(oc.Stroke)

		var paths geom.Paths
		for _, s := range shapes {
			if sel != "" && s.Stroke != sel {
				continue
			}
			if !s.Closed && kind != cam.Engrave {
				log.Warn("open path skipped", "operation", oc.Name, "kind", oc.Kind)
				continue
			}
			paths = append(paths, s.Path)
		}

		dia := cfg.toUnits(oc.CutterDia)
		if dia > maxDia {
			maxDia = dia
		}
		ops = append(ops, cam.Operation{
			Name:      oc.Name,
			Kind:      kind,
			Geometry:  paths,
			CutterDia: dia,
			Overlap:   oc.Overlap,
			Climb:     oc.Climb,
			Width:     cfg.toUnits(oc.Width),
			CutDepth:  oc.CutDepth,
			Ramp:      oc.Ramp,
		})
	}
	return ops, maxDia, nil
}

// tabGeometry unions the configured holding tabs and bloats them by half
// the largest cutter diameter, so the emitter lifts before the flutes
// reach a tab.
func tabGeometry(cfg Config, maxDia int64) geom.Paths {
	raw := cfg.tabPaths()
	if len(raw) == 0 {
		return nil
	}
	union := geom.Clip(raw, nil, geom.Union, geom.NonZero)
	return geom.Offset(union, maxDia/2)
}
