// Package gcode turns compiled tool paths into an RS-274/NGC program.
// The generator is a pure function: identical inputs produce a
// byte-identical line sequence on every platform.
package gcode

import "github.com/cdot/SVG2Gcode/geom"

// Units selects the G-code unit directive.
type Units int

const (
	Mm Units = iota
	Inch
)

func (u Units) String() string {
	if u == Inch {
		return "inch"
	}
	return "mm"
}

// Job carries the material and machine profile shared by every operation.
// Z values and feeds are in G-code units; TabGeometry is in integer units
// and must already be unioned and bloated by half the cutter diameter.
type Job struct {
	GUnits      Units
	TopZ        float64 // top of material
	BotZ        float64 // bottom of material
	SafeZ       float64 // rapid clearance height; must be above TopZ
	PassDepth   float64 // maximum Z descent per cutting layer
	PlungeFeed  float64
	CutFeed     float64
	RapidFeed   float64
	RetractFeed float64
	Decimal     int // fractional digits; 0 picks the unit default
	OffsetX     float64
	OffsetY     float64
	XScale      float64
	YScale      float64 // negative: internal Y points down, G-code Y up
	ZScale      float64
	ReturnTo00  bool
	TabGeometry geom.Paths
	TabZ        float64 // cutter height while crossing a tab
}

// WarningKind tags a host-facing warning. The core never formats warning
// text; the host localises.
type WarningKind int

const (
	PassDepthClamped WarningKind = iota
	CutDepthClamped
	UnsupportedOperation
)

// Warning is one tagged datum delivered through the host callback.
type Warning struct {
	Kind  WarningKind
	Op    string  // operation name, when the warning is per-operation
	Value float64 // the offending value, when there is one
}

// WarnFunc receives warnings as they are discovered. A nil WarnFunc
// drops them.
type WarnFunc func(Warning)

// Program is the generator output: one G-code line per element, no
// trailing newlines, ASCII only. Errors collects the per-operation
// failures; the preamble and postamble are emitted regardless.
type Program struct {
	Lines  []string
	Errors []error
}
