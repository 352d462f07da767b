package cam

import "github.com/cdot/SVG2Gcode/geom"

// pocket clears the interior of the geometry with concentric passes
// stepping inward. Passes are accumulated innermost-first so the cutter
// finishes at the outermost boundary, where the retract is cheapest.
func pocket(op Operation) ([]CamPath, error) {
	g0 := geom.Offset(op.Geometry, -op.CutterDia/2)
	if len(g0) == 0 {
		return nil, ErrDegenerate
	}
	step := stepWidth(op)

	var passes geom.Paths
	current := g0
	for len(current) > 0 {
		passes = append(current.Copy(), passes...)
		current = geom.Offset(current, -step)
	}
	if op.Climb {
		for _, p := range passes {
			p.Reverse()
		}
	}
	return mergePaths(g0, passes, op.CutterDia), nil
}
