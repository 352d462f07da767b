package cam

import "github.com/cdot/SVG2Gcode/geom"

// engrave follows each contour literally, ignoring the cutter diameter.
// The emitter wants the first point duplicated at the end, so each path
// is closed explicitly here.
func engrave(op Operation) ([]CamPath, error) {
	var out []CamPath
	for _, p := range op.Geometry {
		if len(p) == 0 {
			continue
		}
		q := append(geom.Path(nil), p...)
		if op.Climb {
			q.Reverse()
		}
		q = append(q, q[0])
		out = append(out, CamPath{Path: q, SafeToClose: true})
	}
	if len(out) == 0 {
		return nil, ErrDegenerate
	}
	return out, nil
}

// drill turns each contour into a zero-length path at its centroid. The
// emitter runs Perforate and Drill paths (Kind.PrecalculatedZ) as
// plunge-retract cycles and skips pass layering.
func drill(op Operation) ([]CamPath, error) {
	var out []CamPath
	for _, p := range op.Geometry {
		if len(p) == 0 {
			continue
		}
		c := p.Centroid()
		out = append(out, CamPath{Path: geom.Path{c, c}, SafeToClose: true})
	}
	if len(out) == 0 {
		return nil, ErrDegenerate
	}
	return out, nil
}
