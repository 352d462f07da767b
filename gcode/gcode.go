package gcode

import (
	"errors"
	"fmt"
	"math"

	"github.com/cdot/SVG2Gcode/cam"
	"github.com/cdot/SVG2Gcode/geom"
)

// Generate compiles every operation and emits the complete G-code
// program. Per-operation failures are collected into Program.Errors; the
// preamble and postamble are emitted regardless. warn receives clamp and
// unsupported-operation notices.
func Generate(job Job, ops []cam.Operation, warn WarnFunc) Program {
	if job.PassDepth < 0 {
		if warn != nil {
			warn(Warning{Kind: PassDepthClamped, Value: job.PassDepth})
		}
		job.PassDepth = 0
	}

	e := &emitter{job: job, decimal: job.Decimal}
	if e.decimal <= 0 {
		if job.GUnits == Inch {
			e.decimal = 3
		} else {
			e.decimal = 2
		}
	}

	e.preamble(ops)
	var errs []error
	for i, op := range ops {
		if op.CutDepth < 0 {
			if warn != nil {
				warn(Warning{Kind: CutDepthClamped, Op: op.Name, Value: op.CutDepth})
			}
			op.CutDepth = 0
		}
		paths, err := cam.Compile(op)
		if err != nil {
			if errors.Is(err, cam.ErrUnsupported) && warn != nil {
				warn(Warning{Kind: UnsupportedOperation, Op: op.Name})
			}
			errs = append(errs, fmt.Errorf("operation %d (%s): %w", i+1, op.Name, err))
			continue
		}
		e.operation(i+1, op, paths)
	}
	e.postamble()
	return Program{Lines: e.lines, Errors: errs}
}

// emitter tracks the cutter position while lines accumulate. Feeds are
// restated on every motion line so the output stays diffable.
type emitter struct {
	job     Job
	decimal int
	lines   []string

	cur    geom.Point // cutter XY, integer units
	haveXY bool
	z      float64 // cutter Z, G-code units before ZScale
}

func (e *emitter) emitf(format string, args ...any) {
	e.lines = append(e.lines, fmt.Sprintf(format, args...))
}

// num formats a coordinate or feed with the job's decimal count.
// Trailing zeros are kept; controllers vary and stable width eases
// diffing.
func (e *emitter) num(v float64) string {
	if v == 0 {
		v = 0 // avoid -0.00
	}
	return fmt.Sprintf("%.*f", e.decimal, v)
}

// xy transforms an integer point into G-code units.
func (e *emitter) xy(p geom.Point) (float64, float64) {
	return float64(p.X)*e.job.XScale + e.job.OffsetX,
		float64(p.Y)*e.job.YScale + e.job.OffsetY
}

func (e *emitter) zOut(z float64) float64 { return z * e.job.ZScale }

func (e *emitter) rapidXY(p geom.Point) {
	x, y := e.xy(p)
	e.emitf("G0 X%s Y%s F%s", e.num(x), e.num(y), e.num(e.job.RapidFeed))
	e.cur, e.haveXY = p, true
}

func (e *emitter) feedXY(p geom.Point, feed float64) {
	x, y := e.xy(p)
	e.emitf("G1 X%s Y%s F%s", e.num(x), e.num(y), e.num(feed))
	e.cur, e.haveXY = p, true
}

func (e *emitter) rapidZ(z float64) {
	e.emitf("G0 Z%s F%s", e.num(e.zOut(z)), e.num(e.job.RapidFeed))
	e.z = z
}

func (e *emitter) feedZ(z, feed float64) {
	if z == e.z {
		return
	}
	e.emitf("G1 Z%s F%s", e.num(e.zOut(z)), e.num(feed))
	e.z = z
}

// rampXYZ is a combined move used by ramp entries.
func (e *emitter) rampXYZ(p geom.Point, z, feed float64) {
	x, y := e.xy(p)
	e.emitf("G1 X%s Y%s Z%s F%s", e.num(x), e.num(y), e.num(e.zOut(z)), e.num(feed))
	e.cur, e.haveXY = p, true
	e.z = z
}

func (e *emitter) preamble(ops []cam.Operation) {
	e.emitf("; Generated by SVG2Gcode")

	var all geom.Paths
	for _, op := range ops {
		all = append(all, op.Geometry...)
	}
	if b := all.Bounds(); !b.Empty() {
		x0, y0 := e.xy(b.Min)
		x1, y1 := e.xy(b.Max)
		// YScale is negative, so the transformed corners swap.
		e.emitf("; Work bounding box: X%s Y%s to X%s Y%s",
			e.num(math.Min(x0, x1)), e.num(math.Min(y0, y1)),
			e.num(math.Max(x0, x1)), e.num(math.Max(y0, y1)))
	}
	e.emitf("; Origin offset: X%s Y%s", e.num(e.job.OffsetX), e.num(e.job.OffsetY))
	e.emitf("; Material: top Z%s, bottom Z%s, rapids at Z%s",
		e.num(e.job.TopZ), e.num(e.job.BotZ), e.num(e.job.SafeZ))

	if e.job.GUnits == Inch {
		e.emitf("G20 ; inch")
	} else {
		e.emitf("G21 ; mm")
	}
	e.emitf("G90 ; absolute coordinates")
	e.rapidZ(e.job.SafeZ)
}

func (e *emitter) postamble() {
	if e.z < e.job.SafeZ {
		e.feedZ(e.job.SafeZ, e.job.RetractFeed)
	}
	if e.job.ReturnTo00 {
		e.emitf("G0 X%s Y%s F%s", e.num(0), e.num(0), e.num(e.job.RapidFeed))
	}
	e.emitf("M2")
}

func (e *emitter) operation(index int, op cam.Operation, paths []cam.CamPath) {
	dir := "Conventional"
	if op.Climb {
		dir = "Climb"
	}
	e.emitf("")
	e.emitf("; Operation: %d", index)
	e.emitf("; Name: %s", op.Name)
	e.emitf("; Type: %s", op.Kind)
	e.emitf("; Paths: %d", len(paths))
	e.emitf("; Direction: %s", dir)
	e.emitf("; Cut Depth: %s", e.num(op.CutDepth))
	e.emitf("; Pass Depth: %s", e.num(e.job.PassDepth))
	e.emitf("; Plunge rate: %s", e.num(e.job.PlungeFeed))
	e.emitf("; Cut rate: %s", e.num(e.job.CutFeed))

	if op.Kind.PrecalculatedZ() {
		e.drillPaths(op, paths)
		return
	}

	passes := 1
	if e.job.PassDepth > 0 && op.CutDepth > 0 {
		passes = int(math.Ceil(op.CutDepth / e.job.PassDepth))
	}

	for pi, cp := range paths {
		e.cutPath(op, cp, passes)

		stayDown := false
		if cp.SafeToClose && pi+1 < len(paths) {
			next := paths[pi+1].Path
			if len(next) > 0 && e.haveXY &&
				e.cur.Dist(next[0]) <= float64(op.CutterDia)/1000 {
				stayDown = true
			}
		}
		if !stayDown {
			e.feedZ(e.job.SafeZ, e.job.RetractFeed)
		}
	}
}

// cutPath lowers the cutter through the pass layers of one tool path.
func (e *emitter) cutPath(op cam.Operation, cp cam.CamPath, passes int) {
	t := traversal(cp)
	subs := cam.SplitAtTabs(t, e.job.TabGeometry)
	closed := t[0] == t[len(t)-1]

	// Position over the start unless the previous path left us there.
	if !e.haveXY || e.cur.Dist(t[0]) > float64(op.CutterDia)/1000 {
		if e.z < e.job.SafeZ {
			e.feedZ(e.job.SafeZ, e.job.RetractFeed)
		}
		e.rapidXY(t[0])
	}

	prevPassZ := e.job.TopZ
	for k := 1; k <= passes; k++ {
		passZ := e.job.TopZ - op.CutDepth*float64(k)/float64(passes)
		e.pass(op, subs, passZ, prevPassZ)
		prevPassZ = passZ
		if k < passes && !closed {
			e.feedZ(e.job.SafeZ, e.job.RetractFeed)
			e.rapidXY(t[0])
		}
	}
}

// traversal expands a CamPath into the explicit vertex sequence the
// cutter follows. A closed path that is safe to close gets the implicit
// closing segment made explicit.
func traversal(cp cam.CamPath) geom.Path {
	t := cp.Path
	if cp.SafeToClose && len(t) > 1 && t[0] != t[len(t)-1] {
		t = append(append(geom.Path(nil), t...), t[0])
	}
	return t
}

// pass emits one Z layer of a split tool path. Odd sub-paths cross a tab
// and are capped at TabZ; Z transitions happen on the shared endpoint,
// with no XY motion.
func (e *emitter) pass(op cam.Operation, subs []geom.Path, passZ, prevPassZ float64) {
	zFor := func(si int) float64 {
		if si%2 == 1 && passZ < e.job.TabZ {
			return e.job.TabZ
		}
		return passZ
	}

	entered := false
	for si, sub := range subs {
		if len(sub) < 2 {
			continue
		}
		target := zFor(si)
		if !entered {
			if op.Ramp && target < prevPassZ {
				e.feedZ(prevPassZ, e.job.PlungeFeed)
				e.rampXYZ(sub[1], target, e.job.PlungeFeed)
				e.cutAlong(sub[2:])
			} else {
				e.feedZ(target, e.job.PlungeFeed)
				e.cutAlong(sub[1:])
			}
			entered = true
			continue
		}
		if target > e.z {
			e.feedZ(target, e.job.RetractFeed)
		} else if target < e.z {
			e.feedZ(target, e.job.PlungeFeed)
		}
		e.cutAlong(sub[1:])
	}
	if !entered {
		// Nothing but zero-length fragments; still reach depth.
		e.feedZ(zFor(0), e.job.PlungeFeed)
	}
}

func (e *emitter) cutAlong(points geom.Path) {
	for _, p := range points {
		e.feedXY(p, e.job.CutFeed)
	}
}

// drillPaths handles Perforate and Drill, whose paths carry their own Z
// semantics: one plunge-retract cycle per distinct point, no layering.
func (e *emitter) drillPaths(op cam.Operation, paths []cam.CamPath) {
	bot := e.job.TopZ - op.CutDepth
	for _, cp := range paths {
		var prev geom.Point
		first := true
		for _, p := range cp.Path {
			if !first && p == prev {
				continue
			}
			first = false
			prev = p
			if e.z < e.job.SafeZ {
				e.feedZ(e.job.SafeZ, e.job.RetractFeed)
			}
			e.rapidXY(p)
			e.feedZ(bot, e.job.PlungeFeed)
			e.feedZ(e.job.SafeZ, e.job.RetractFeed)
		}
	}
}
