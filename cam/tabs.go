package cam

import (
	"sort"

	"github.com/cdot/SVG2Gcode/geom"
)

// SplitAtTabs cuts a traversal polyline wherever it crosses the boundary
// of the holding-tab geometry. Sub-paths at even indices lie outside all
// tabs and are cut at full depth; odd indices lie inside a tab and are
// lifted by the emitter. When the polyline starts inside a tab, a
// zero-length sub-path is prepended so the parity holds.
//
// A segment lying exactly on a tab boundary counts as outside, and a
// tangent touch does not split; both follow from counting only proper
// crossings.
func SplitAtTabs(path geom.Path, tabs geom.Paths) []geom.Path {
	if len(path) == 0 {
		return nil
	}
	if len(tabs) == 0 {
		return []geom.Path{path}
	}

	var out []geom.Path
	if insideTabs(tabs, path[0]) {
		out = append(out, geom.Path{path[0]})
	}

	cur := geom.Path{path[0]}
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		type hit struct {
			at geom.Point
			t  float64
		}
		var hits []hit
		for _, tab := range tabs {
			for j, c := range tab {
				d := tab[(j+1)%len(tab)]
				if at, t, ok := geom.SegCross(a, b, c, d); ok {
					hits = append(hits, hit{at, t})
				}
			}
		}
		sort.Slice(hits, func(x, y int) bool { return hits[x].t < hits[y].t })
		for _, h := range hits {
			cur = append(cur, h.at)
			out = append(out, cur)
			cur = geom.Path{h.at}
		}
		cur = append(cur, b)
	}
	out = append(out, cur)
	return out
}

// insideTabs reports whether p is strictly inside the tab geometry; a
// point on a tab boundary is outside.
func insideTabs(tabs geom.Paths, p geom.Point) bool {
	for _, tab := range tabs {
		for i, c := range tab {
			d := tab[(i+1)%len(tab)]
			if onSegment(c, d, p) {
				return false
			}
		}
	}
	return geom.Winding(tabs, float64(p.X), float64(p.Y))&1 == 1
}

// onSegment reports whether p lies on the closed segment cd.
func onSegment(c, d, p geom.Point) bool {
	cross := float64(d.X-c.X)*float64(p.Y-c.Y) - float64(p.X-c.X)*float64(d.Y-c.Y)
	if cross != 0 {
		return false
	}
	if p.X < min(c.X, d.X) || p.X > max(c.X, d.X) {
		return false
	}
	return p.Y >= min(c.Y, d.Y) && p.Y <= max(c.Y, d.Y)
}
