package cam

import "github.com/cdot/SVG2Gcode/geom"

// mergePaths greedily concatenates consecutive paths whose endpoints
// meet, so the cutter stays down across pass boundaries. A path is
// appended to the open end when one of its endpoints lies within
// cutterDia/1000 of it and the connecting segment stays inside the clip
// region. Un-mergeable paths keep their input order.
func mergePaths(clip geom.Paths, paths geom.Paths, cutterDia int64) []CamPath {
	mergeDist := float64(cutterDia) / 1000

	var out []CamPath
	var cur geom.Path
	flush := func() {
		if len(cur) == 0 {
			return
		}
		safe := !geom.Crosses(clip, cur[len(cur)-1], cur[0])
		out = append(out, CamPath{Path: cur, SafeToClose: safe})
		cur = nil
	}

	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		if cur == nil {
			cur = append(geom.Path(nil), p...)
			continue
		}
		end := cur[len(cur)-1]
		cand := p
		if end.Dist(p[0]) > mergeDist && end.Dist(p[len(p)-1]) <= mergeDist {
			// Run the candidate backwards from its near endpoint
			// (Path.Reversed keeps the first vertex in place).
			cand = make(geom.Path, len(p))
			for i, v := range p {
				cand[len(p)-1-i] = v
			}
		}
		if end.Dist(cand[0]) <= mergeDist && !geom.Crosses(clip, end, cand[0]) {
			if cand[0] == end {
				cand = cand[1:]
			}
			cur = append(cur, cand...)
			continue
		}
		flush()
		cur = append(geom.Path(nil), p...)
	}
	flush()
	return out
}
