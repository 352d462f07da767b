package cam

import "github.com/cdot/SVG2Gcode/geom"

// outline cuts an annulus of total width op.Width along the geometry
// boundary, inside or outside of it. The pass direction keeps flute
// engagement consistent: inside cuts reverse on climb, outside cuts
// reverse on conventional.
func outline(op Operation) ([]CamPath, error) {
	width := op.Width
	if width < op.CutterDia {
		width = op.CutterDia
	}
	step := stepWidth(op)

	var current, bounds geom.Paths
	var sign int64
	var needReverse bool
	if op.Kind == OutlineInside {
		current = geom.Offset(op.Geometry, -op.CutterDia/2)
		inner := geom.Offset(op.Geometry, -(width - op.CutterDia/2))
		bounds = geom.Clip(current, inner, geom.Difference, geom.EvenOdd)
		sign = -1
		needReverse = op.Climb
	} else {
		current = geom.Offset(op.Geometry, op.CutterDia/2)
		outer := geom.Offset(op.Geometry, width-op.CutterDia/2)
		bounds = geom.Clip(outer, current, geom.Difference, geom.EvenOdd)
		sign = 1
		needReverse = !op.Climb
	}
	if len(current) == 0 {
		return nil, ErrDegenerate
	}

	passes := current.Copy()
	currentWidth := op.CutterDia
	for currentWidth+step <= width && len(current) > 0 {
		current = geom.Offset(current, sign*step)
		passes = append(passes, current.Copy()...)
		currentWidth += step
	}
	// One correcting pass lands exactly on the requested width.
	if rem := width - currentWidth; rem > 0 && len(current) > 0 {
		current = geom.Offset(current, sign*rem)
		passes = append(passes, current.Copy()...)
	}

	if needReverse {
		for _, p := range passes {
			p.Reverse()
		}
	}
	return mergePaths(bounds, passes, op.CutterDia), nil
}
