package geom

import (
	"math"
	"sort"
)

// ClipOp selects the boolean operation applied by Clip.
type ClipOp int

const (
	Union ClipOp = iota
	Difference
	Intersection
	Xor
)

// FillRule decides which winding numbers count as interior.
type FillRule int

const (
	// EvenOdd fills where the winding number is odd.
	EvenOdd FillRule = iota
	// NonZero fills where the winding number is not zero.
	NonZero
	// Positive fills where the winding number is greater than zero.
	// Offset relies on it to discard collapsed contours.
	Positive
)

// filled reports whether winding number w is interior under the rule.
func (f FillRule) filled(w int) bool {
	switch f {
	case NonZero:
		return w != 0
	case Positive:
		return w > 0
	default:
		return w&1 == 1
	}
}

// clipEdge is one directed boundary edge during a clip sweep.
type clipEdge struct {
	a, b   Point
	splits []float64 // parameters in (0,1) where other edges cut this one
}

// Clip computes a boolean combination of two polygon soups. Both soups are
// interpreted under the given fill rule; the result is always returned in
// even-odd normalised form: holes contained in outers, outers disjoint,
// outers with positive signed area. Degenerate input produces empty
// output, never an error.
//
// The sweep works edge-wise: every input edge is split at each point where
// another edge meets it, each fragment is classified by sampling the
// combined region just left and right of its midpoint, and the surviving
// fragments are stitched back into closed contours with the interior kept
// on the left.
func Clip(subj, clip Paths, op ClipOp, fill FillRule) Paths {
	subj = sanitized(subj)
	clip = sanitized(clip)
	if len(subj) == 0 && len(clip) == 0 {
		return nil
	}

	edges := gatherEdges(subj)
	edges = append(edges, gatherEdges(clip)...)
	splitEdges(edges)

	frags := classifyFragments(edges, subj, clip, op, fill)
	return stitch(frags)
}

// Normalized rewrites a soup into even-odd normalised form. It is the
// identity on already-normalised geometry.
func Normalized(ps Paths) Paths {
	return Clip(ps, nil, Union, EvenOdd)
}

func gatherEdges(ps Paths) []*clipEdge {
	var edges []*clipEdge
	for _, p := range ps {
		for i, a := range p {
			b := p[(i+1)%len(p)]
			edges = append(edges, &clipEdge{a: a, b: b})
		}
	}
	return edges
}

// splitEdges finds every pairwise meeting point and records the split
// parameters on both edges involved. Collinear overlaps contribute the
// projections of each edge's endpoints onto the other.
func splitEdges(edges []*clipEdge) {
	for i := 0; i < len(edges); i++ {
		for j := i + 1; j < len(edges); j++ {
			crossSplit(edges[i], edges[j])
		}
	}
}

const paramEps = 1e-12

func crossSplit(e1, e2 *clipEdge) {
	ax, ay := float64(e1.a.X), float64(e1.a.Y)
	dx1, dy1 := float64(e1.b.X-e1.a.X), float64(e1.b.Y-e1.a.Y)
	cx, cy := float64(e2.a.X), float64(e2.a.Y)
	dx2, dy2 := float64(e2.b.X-e2.a.X), float64(e2.b.Y-e2.a.Y)

	denom := dx1*dy2 - dy1*dx2
	wx, wy := cx-ax, cy-ay
	if denom == 0 {
		// Parallel. Only collinear segments interact.
		if wx*dy1-wy*dx1 != 0 {
			return
		}
		len1 := dx1*dx1 + dy1*dy1
		len2 := dx2*dx2 + dy2*dy2
		if len1 == 0 || len2 == 0 {
			return
		}
		// Project the other edge's endpoints.
		for _, q := range []Point{e2.a, e2.b} {
			t := ((float64(q.X)-ax)*dx1 + (float64(q.Y)-ay)*dy1) / len1
			e1.addSplit(t)
		}
		for _, q := range []Point{e1.a, e1.b} {
			t := ((float64(q.X)-cx)*dx2 + (float64(q.Y)-cy)*dy2) / len2
			e2.addSplit(t)
		}
		return
	}

	t := (wx*dy2 - wy*dx2) / denom
	u := (wx*dy1 - wy*dx1) / denom
	if t < -paramEps || t > 1+paramEps || u < -paramEps || u > 1+paramEps {
		return
	}
	e1.addSplit(t)
	e2.addSplit(u)
}

func (e *clipEdge) addSplit(t float64) {
	if t > paramEps && t < 1-paramEps {
		e.splits = append(e.splits, t)
	}
}

// point returns the edge point at parameter t snapped to the grid.
func (e *clipEdge) point(t float64) Point {
	return Point{
		X: e.a.X + int64(math.Round(t*float64(e.b.X-e.a.X))),
		Y: e.a.Y + int64(math.Round(t*float64(e.b.Y-e.a.Y))),
	}
}

// fragment is a directed piece of boundary kept for the result.
type fragment struct {
	a, b Point
}

// inResult evaluates the boolean truth table at one sample point.
func inResult(op ClipOp, inSubj, inClip bool) bool {
	switch op {
	case Union:
		return inSubj || inClip
	case Difference:
		return inSubj && !inClip
	case Intersection:
		return inSubj && inClip
	default: // Xor
		return inSubj != inClip
	}
}

// classifyFragments cuts each edge at its recorded splits and keeps the
// fragments that form the boundary of the result region, directed with
// the interior on the left.
func classifyFragments(edges []*clipEdge, subj, clip Paths, op ClipOp, fill FillRule) []fragment {
	// Sample distance from the fragment midpoint, in integer units.
	const side = 0.25

	var frags []fragment
	seen := make(map[[2]Point]bool)
	for _, e := range edges {
		ts := append([]float64{0}, e.splits...)
		ts = append(ts, 1)
		sort.Float64s(ts)
		prev := e.a
		for _, t := range ts[1:] {
			p := e.point(t)
			if p == prev {
				continue
			}
			a, b := prev, p
			prev = p

			mx := (float64(a.X) + float64(b.X)) / 2
			my := (float64(a.Y) + float64(b.Y)) / 2
			dx := float64(b.X - a.X)
			dy := float64(b.Y - a.Y)
			l := math.Hypot(dx, dy)
			nx, ny := -dy/l, dx/l // left normal

			inL := inResult(op,
				fill.filled(Winding(subj, mx+nx*side, my+ny*side)),
				fill.filled(Winding(clip, mx+nx*side, my+ny*side)))
			inR := inResult(op,
				fill.filled(Winding(subj, mx-nx*side, my-ny*side)),
				fill.filled(Winding(clip, mx-nx*side, my-ny*side)))

			var f fragment
			switch {
			case inL && !inR:
				f = fragment{a, b}
			case inR && !inL:
				f = fragment{b, a}
			default:
				continue
			}
			// Coincident boundary edges from both soups survive
			// classification twice; keep one.
			key := [2]Point{f.a, f.b}
			if seen[key] {
				continue
			}
			seen[key] = true
			frags = append(frags, f)
		}
	}
	return frags
}

// Winding returns the winding number of the soup around the float point
// (x, y). Points on an edge are not expected; callers sample strictly off
// the boundary.
func Winding(ps Paths, x, y float64) int {
	w := 0
	for _, p := range ps {
		for i, a := range p {
			b := p[(i+1)%len(p)]
			ay, by := float64(a.Y), float64(b.Y)
			if ay <= y {
				if by > y && isLeftOf(a, b, x, y) > 0 {
					w++
				}
			} else if by <= y && isLeftOf(a, b, x, y) < 0 {
				w--
			}
		}
	}
	return w
}

// isLeftOf returns >0 when (x,y) is left of the directed line a→b, <0 when
// right, 0 on the line.
func isLeftOf(a, b Point, x, y float64) float64 {
	return (float64(b.X)-float64(a.X))*(y-float64(a.Y)) -
		(x-float64(a.X))*(float64(b.Y)-float64(a.Y))
}

// stitch links fragments end-to-start into closed contours. Where more
// than one fragment leaves a vertex, the one turning most sharply left is
// taken, which keeps touching contours separate.
func stitch(frags []fragment) Paths {
	bySource := make(map[Point][]int)
	for i, f := range frags {
		bySource[f.a] = append(bySource[f.a], i)
	}
	used := make([]bool, len(frags))

	var out Paths
	for i := range frags {
		if used[i] {
			continue
		}
		var contour Path
		closed := false
		cur := i
		for {
			used[cur] = true
			contour = append(contour, frags[cur].a)
			if frags[cur].b == contour[0] {
				closed = true
				break
			}
			next := -1
			var bestTurn float64
			for _, c := range bySource[frags[cur].b] {
				if used[c] {
					continue
				}
				turn := turnAngle(frags[cur], frags[c])
				if next < 0 || turn > bestTurn {
					next = c
					bestTurn = turn
				}
			}
			if next < 0 {
				break
			}
			cur = next
		}
		if closed {
			contour = dropCollinear(contour)
			if len(contour) >= 3 {
				out = append(out, canonical(contour))
			}
		}
	}
	return out
}

// dropCollinear removes vertices that sit exactly on the line through
// their neighbours; edge splitting leaves them behind where boundaries
// met end-to-end.
func dropCollinear(p Path) Path {
	if len(p) < 3 {
		return p
	}
	out := make(Path, 0, len(p))
	for i, v := range p {
		a := p[(i-1+len(p))%len(p)]
		b := p[(i+1)%len(p)]
		cross := float64(v.X-a.X)*float64(b.Y-v.Y) - float64(b.X-v.X)*float64(v.Y-a.Y)
		if cross != 0 {
			out = append(out, v)
		}
	}
	return out
}

// turnAngle measures the signed turn from fragment f into fragment g,
// larger meaning a sharper left turn (left as in isLeftOf).
func turnAngle(f, g fragment) float64 {
	a1 := math.Atan2(float64(f.b.Y-f.a.Y), float64(f.b.X-f.a.X))
	a2 := math.Atan2(float64(g.b.Y-g.a.Y), float64(g.b.X-g.a.X))
	d := a2 - a1
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// canonical rotates a contour so it starts at its leftmost-then-lowest
// vertex, making clip output deterministic and easy to compare.
func canonical(p Path) Path {
	k := 0
	for i, v := range p {
		if v.X < p[k].X || (v.X == p[k].X && v.Y < p[k].Y) {
			k = i
		}
	}
	if k == 0 {
		return p
	}
	out := make(Path, 0, len(p))
	out = append(out, p[k:]...)
	out = append(out, p[:k]...)
	return out
}
