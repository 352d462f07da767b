package gcode

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdot/SVG2Gcode/cam"
	"github.com/cdot/SVG2Gcode/geom"
)

func mm(v float64) int64 { return int64(v * geom.Scale) }

func square(x0, y0, x1, y1 int64) geom.Path {
	return geom.Path{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// testJob keeps Y unflipped so expectations read like the inputs.
func testJob() Job {
	return Job{
		GUnits:      Mm,
		TopZ:        0,
		BotZ:        -5,
		SafeZ:       5,
		PassDepth:   2,
		PlungeFeed:  120,
		CutFeed:     300,
		RapidFeed:   2500,
		RetractFeed: 500,
		XScale:      1.0 / geom.Scale,
		YScale:      1.0 / geom.Scale,
		ZScale:      1,
	}
}

func joined(p Program) string { return strings.Join(p.Lines, "\n") }

func TestPreamblePostambleOnly(t *testing.T) {
	p := Generate(testJob(), nil, nil)
	require.Empty(t, p.Errors)

	text := joined(p)
	assert.Contains(t, text, "G21 ; mm")
	assert.Contains(t, text, "G90 ; absolute coordinates")
	assert.Contains(t, text, "G0 Z5.00 F2500.00")
	assert.Equal(t, "M2", p.Lines[len(p.Lines)-1])
}

func TestInchUnitsAndDecimals(t *testing.T) {
	job := testJob()
	job.GUnits = Inch
	p := Generate(job, nil, nil)
	text := joined(p)
	assert.Contains(t, text, "G20 ; inch")
	// Inch default is three decimals.
	assert.Contains(t, text, "G0 Z5.000 F2500.000")
}

func TestReturnTo00(t *testing.T) {
	job := testJob()
	job.ReturnTo00 = true
	p := Generate(job, nil, nil)

	n := len(p.Lines)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, "G0 X0.00 Y0.00 F2500.00", p.Lines[n-2])
	assert.Equal(t, "M2", p.Lines[n-1])
}

// Tab lift-over: a straight cut across one tab, two passes below the
// tab height. Every pass runs outside at pass depth and rises to the
// tab height in between.
func TestTabLiftOver(t *testing.T) {
	job := testJob()
	job.TabGeometry = geom.Paths{square(mm(4), -mm(1), mm(6), mm(1))}
	job.TabZ = -1

	e := &emitter{job: job, decimal: 2, z: job.SafeZ}
	op := cam.Operation{Kind: cam.Engrave, CutterDia: mm(3), CutDepth: 4}
	cp := cam.CamPath{Path: geom.Path{{X: 0, Y: 0}, {X: mm(10), Y: 0}}}
	e.cutPath(op, cp, 2)

	text := strings.Join(e.lines, "\n")
	// Two pass plunges, two tab lifts, two drops back.
	assert.Equal(t, 1, strings.Count(text, "G1 Z-2.00 F120.00\nG1 X4.00 Y0.00 F300.00"))
	assert.Equal(t, 1, strings.Count(text, "G1 Z-4.00 F120.00\nG1 X4.00 Y0.00 F300.00"))
	assert.Equal(t, 2, strings.Count(text, "G1 Z-1.00 F500.00\nG1 X6.00 Y0.00 F300.00"))
	// After each tab the cutter drops back to the pass depth before
	// moving on.
	assert.Equal(t, 1, strings.Count(text, "G1 X6.00 Y0.00 F300.00\nG1 Z-2.00 F120.00\nG1 X10.00 Y0.00 F300.00"))
	assert.Equal(t, 1, strings.Count(text, "G1 X6.00 Y0.00 F300.00\nG1 Z-4.00 F120.00\nG1 X10.00 Y0.00 F300.00"))
}

// A pass above the tab height never lifts.
func TestTabAbovePassDepthNoLift(t *testing.T) {
	job := testJob()
	job.TabGeometry = geom.Paths{square(mm(4), -mm(1), mm(6), mm(1))}
	job.TabZ = -3

	e := &emitter{job: job, decimal: 2, z: job.SafeZ}
	op := cam.Operation{Kind: cam.Engrave, CutterDia: mm(3), CutDepth: 2}
	cp := cam.CamPath{Path: geom.Path{{X: 0, Y: 0}, {X: mm(10), Y: 0}}}
	e.cutPath(op, cp, 1)

	text := strings.Join(e.lines, "\n")
	assert.NotContains(t, text, "Z-3.00")
	assert.Contains(t, text, "G1 X4.00 Y0.00 F300.00")
	assert.Contains(t, text, "G1 X6.00 Y0.00 F300.00")
	assert.Contains(t, text, "G1 X10.00 Y0.00 F300.00")
}

// Perforate: one plunge to full depth per point, no layering.
func TestPerforateSinglePlunge(t *testing.T) {
	job := testJob()
	job.PassDepth = 2
	op := cam.Operation{
		Name:      "holes",
		Kind:      cam.Perforate,
		Geometry:  geom.Paths{
			square(0, 0, mm(2), mm(2)),
			square(mm(8), 0, mm(10), mm(2)),
			square(0, mm(8), mm(2), mm(10)),
		},
		CutterDia: mm(1),
		CutDepth:  5,
	}
	p := Generate(job, []cam.Operation{op}, nil)
	require.Empty(t, p.Errors)

	text := joined(p)
	assert.Equal(t, 3, strings.Count(text, "G1 Z-5.00 F120.00"))
	assert.Equal(t, 3, strings.Count(text, "G1 Z5.00 F500.00"))
	// No intermediate pass depths.
	assert.NotContains(t, text, "Z-2.00")
	assert.NotContains(t, text, "Z-4.00")
}

func TestUnsupportedOperationCollected(t *testing.T) {
	var warned []Warning
	op := cam.Operation{Name: "carve", Kind: cam.VCarve,
		Geometry: geom.Paths{square(0, 0, mm(5), mm(5))}}
	p := Generate(testJob(), []cam.Operation{op}, func(w Warning) { warned = append(warned, w) })

	require.Len(t, p.Errors, 1)
	assert.ErrorIs(t, p.Errors[0], cam.ErrUnsupported)
	require.Len(t, warned, 1)
	assert.Equal(t, UnsupportedOperation, warned[0].Kind)
	assert.Equal(t, "carve", warned[0].Op)
	// The program is still well formed.
	assert.Equal(t, "M2", p.Lines[len(p.Lines)-1])
}

func TestClampWarnings(t *testing.T) {
	var warned []Warning
	job := testJob()
	job.PassDepth = -1
	op := cam.Operation{Name: "neg", Kind: cam.Engrave,
		Geometry: geom.Paths{square(0, 0, mm(5), mm(5))}, CutterDia: mm(1), CutDepth: -2}
	p := Generate(job, []cam.Operation{op}, func(w Warning) { warned = append(warned, w) })
	require.Empty(t, p.Errors)

	require.Len(t, warned, 2)
	assert.Equal(t, PassDepthClamped, warned[0].Kind)
	assert.Equal(t, -1.0, warned[0].Value)
	assert.Equal(t, CutDepthClamped, warned[1].Kind)
	assert.Equal(t, "neg", warned[1].Op)

	// Plotter mode: the single pass runs at the material top.
	assert.Contains(t, joined(p), "G1 Z0.00 F120.00")
}

func TestDegenerateGeometrySkipped(t *testing.T) {
	op := cam.Operation{Name: "tiny", Kind: cam.Pocket,
		Geometry: geom.Paths{square(0, 0, mm(1), mm(1))}, CutterDia: mm(3), CutDepth: 1}
	p := Generate(testJob(), []cam.Operation{op}, nil)

	require.Len(t, p.Errors, 1)
	assert.ErrorIs(t, p.Errors[0], cam.ErrDegenerate)
	assert.Equal(t, "M2", p.Lines[len(p.Lines)-1])
}

var zRe = regexp.MustCompile(`Z(-?\d+\.\d+)`)

// The Z coordinate never goes below min(topZ−cutDepth, tabZ).
func TestZFloor(t *testing.T) {
	job := testJob()
	job.TabGeometry = geom.Paths{square(mm(4), -mm(1), mm(6), mm(1))}
	job.TabZ = -1
	ops := []cam.Operation{
		{Name: "p", Kind: cam.Pocket, Geometry: geom.Paths{square(0, 0, mm(20), mm(20))},
			CutterDia: mm(3), Overlap: 0.4, CutDepth: 3},
		{Name: "e", Kind: cam.Engrave, Geometry: geom.Paths{square(0, 0, mm(10), mm(10))},
			CutterDia: mm(3), CutDepth: 4, Ramp: true},
	}
	p := Generate(job, ops, nil)
	require.Empty(t, p.Errors)

	for _, line := range p.Lines {
		if strings.HasPrefix(line, ";") {
			continue
		}
		for _, m := range zRe.FindAllStringSubmatch(line, -1) {
			z, err := strconv.ParseFloat(m[1], 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, z, -4.0, "line %q", line)
		}
	}
}

func TestDeterminism(t *testing.T) {
	job := testJob()
	job.TabGeometry = geom.Paths{square(mm(4), -mm(1), mm(6), mm(1))}
	job.TabZ = -1
	ops := []cam.Operation{
		{Name: "p", Kind: cam.Pocket, Geometry: geom.Paths{square(0, 0, mm(20), mm(20))},
			CutterDia: mm(3), Overlap: 0.4, CutDepth: 3},
	}
	first := Generate(job, ops, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Generate(job, ops, nil))
	}
}

func TestOperationHeader(t *testing.T) {
	op := cam.Operation{Name: "edge", Kind: cam.OutlineOutside,
		Geometry: geom.Paths{square(0, 0, mm(10), mm(10))},
		CutterDia: mm(2), Width: mm(2), CutDepth: 1, Climb: true}
	p := Generate(testJob(), []cam.Operation{op}, nil)
	require.Empty(t, p.Errors)

	text := joined(p)
	assert.Contains(t, text, "; Operation: 1")
	assert.Contains(t, text, "; Name: edge")
	assert.Contains(t, text, "; Type: Outside")
	assert.Contains(t, text, "; Direction: Climb")
	assert.Contains(t, text, "; Cut Depth: 1.00")
}

// The YScale sign convention: internal Y-down becomes G-code Y-up.
func TestYAxisFlip(t *testing.T) {
	job := testJob()
	job.YScale = -1.0 / geom.Scale
	job.OffsetY = 20
	op := cam.Operation{Name: "e", Kind: cam.Engrave,
		Geometry: geom.Paths{geom.Path{{X: 0, Y: 0}, {X: 0, Y: mm(5)}}},
		CutterDia: mm(1), CutDepth: 1}
	p := Generate(job, []cam.Operation{op}, nil)
	require.Empty(t, p.Errors)

	text := joined(p)
	// Internal y=0 maps to Y20, internal y=5mm maps to Y15.
	assert.Contains(t, text, "Y20.00")
	assert.Contains(t, text, "Y15.00")
	assert.NotContains(t, text, "Y-")
}
