// Package cam compiles user operations into ordered 2-D cutter-centre
// tool paths. Each compiler keeps the cutter diameter, step-over and
// direction honest; depth handling is the emitter's job.
package cam

import (
	"errors"
	"fmt"
	"math"

	"github.com/cdot/SVG2Gcode/geom"
)

// Kind enumerates the operation kinds the compiler understands.
type Kind int

const (
	Pocket Kind = iota
	OutlineInside
	OutlineOutside
	Engrave
	Perforate
	Drill
	VCarve
)

func (k Kind) String() string {
	switch k {
	case Pocket:
		return "Pocket"
	case OutlineInside:
		return "Inside"
	case OutlineOutside:
		return "Outside"
	case Engrave:
		return "Engrave"
	case Perforate:
		return "Perforate"
	case Drill:
		return "Drill"
	case VCarve:
		return "V Carve"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// PrecalculatedZ reports whether the emitter must treat each path point
// as its own plunge-retract cycle instead of layering passes.
func (k Kind) PrecalculatedZ() bool {
	return k == Perforate || k == Drill
}

var (
	// ErrUnsupported marks an operation kind the core refuses to compile.
	ErrUnsupported = errors.New("operation not supported")
	// ErrDegenerate marks geometry that collapsed to nothing after
	// cutter-diameter compensation.
	ErrDegenerate = errors.New("degenerate geometry")
)

// Operation describes one unit of user intent.
type Operation struct {
	Name      string
	Kind      Kind
	Geometry  geom.Paths
	CutterDia int64   // integer units
	Overlap   float64 // fraction of the cutter diameter re-covered per pass
	Climb     bool
	Width     int64   // Outline only; total cut width
	CutDepth  float64 // G-code units; consumed by the emitter
	Ramp      bool    // ramp entries instead of straight plunges
}

// CamPath is one cutter-centre path. SafeToClose means the implicit
// closing segment stays inside the operation's clip region, so the
// emitter may run last→first without retracting.
type CamPath struct {
	Path        geom.Path
	SafeToClose bool
}

// Compile translates an operation into tool paths. A VCarve operation
// fails with ErrUnsupported; geometry that vanishes under compensation
// fails with ErrDegenerate. Other operations in a job are unaffected
// either way.
func Compile(op Operation) ([]CamPath, error) {
	overlap := op.Overlap
	if overlap < 0 {
		overlap = 0
	} else if overlap > 0.99 {
		overlap = 0.99
	}
	op.Overlap = overlap

	switch op.Kind {
	case Pocket:
		return pocket(op)
	case OutlineInside, OutlineOutside:
		return outline(op)
	case Engrave:
		return engrave(op)
	case Perforate, Drill:
		return drill(op)
	default:
		return nil, fmt.Errorf("%s: %w", op.Kind, ErrUnsupported)
	}
}

// stepWidth is the cutter advance between adjacent passes.
func stepWidth(op Operation) int64 {
	w := int64(math.Round(float64(op.CutterDia) * (1 - op.Overlap)))
	if w < 1 {
		w = 1
	}
	return w
}
