package geom

import "math"

// SegCross reports whether the open segments ab and cd properly cross,
// and if so where. Shared endpoints, tangent touches and collinear
// overlaps do not count as crossings. The returned parameter t positions
// the crossing along ab.
func SegCross(a, b, c, d Point) (at Point, t float64, ok bool) {
	s1 := isLeftOf(c, d, float64(a.X), float64(a.Y))
	s2 := isLeftOf(c, d, float64(b.X), float64(b.Y))
	s3 := isLeftOf(a, b, float64(c.X), float64(c.Y))
	s4 := isLeftOf(a, b, float64(d.X), float64(d.Y))
	if s1*s2 >= 0 || s3*s4 >= 0 {
		return Point{}, 0, false
	}
	t = s1 / (s1 - s2)
	at = Point{
		X: a.X + int64(math.Round(t*float64(b.X-a.X))),
		Y: a.Y + int64(math.Round(t*float64(b.Y-a.Y))),
	}
	return at, t, true
}

// Crosses reports whether the open segment ab crosses the boundary of the
// clip soup. A segment lying on the boundary, or touching it at a point
// without passing through, does not cross.
func Crosses(clip Paths, a, b Point) bool {
	if a == b {
		return false
	}
	for _, p := range clip {
		for i, c := range p {
			d := p[(i+1)%len(p)]
			if _, _, ok := SegCross(a, b, c, d); ok {
				return true
			}
		}
	}
	return false
}
