// Package geom implements the fixed-point planar geometry the CAM layers
// work in. Coordinates are int64 with 1 unit = 10⁻⁶ mm; Y increases down
// the page, matching SVG. Polygons are implicitly closed vertex lists with
// no duplicate final vertex, interpreted under the even-odd rule unless a
// caller asks for non-zero.
package geom

import "math"

// Scale is the number of integer units per millimetre.
const Scale = 1e6

// maxCoord bounds the coordinate domain the algebra accepts. Paths with a
// coordinate beyond it are treated as degenerate rather than risking loss
// of precision in the float64 intermediates.
const maxCoord = int64(1) << 52

// Point is a fixed-point 2-D coordinate.
type Point struct {
	X, Y int64
}

// Pt is shorthand for constructing a Point.
func Pt(x, y int64) Point {
	return Point{X: x, Y: y}
}

// FromMm converts millimetre coordinates to the integer grid.
func FromMm(x, y float64) Point {
	return Point{X: int64(math.Round(x * Scale)), Y: int64(math.Round(y * Scale))}
}

// MmX returns the X coordinate in millimetres.
func (p Point) MmX() float64 { return float64(p.X) / Scale }

// MmY returns the Y coordinate in millimetres.
func (p Point) MmY() float64 { return float64(p.Y) / Scale }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y))
}

// Rect is an axis-aligned integer bounding box.
type Rect struct {
	Min, Max Point
}

// Empty reports whether the box contains no area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Union returns the smallest box containing both r and s. An empty box
// (see Empty) is ignored, so a zero-area box contributes nothing.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	if s.Min.X < r.Min.X {
		r.Min.X = s.Min.X
	}
	if s.Min.Y < r.Min.Y {
		r.Min.Y = s.Min.Y
	}
	if s.Max.X > r.Max.X {
		r.Max.X = s.Max.X
	}
	if s.Max.Y > r.Max.Y {
		r.Max.Y = s.Max.Y
	}
	return r
}

// Path is a non-empty ordered vertex sequence. A closed path has an
// implicit edge from the last vertex back to the first; the closing vertex
// is never stored twice.
type Path []Point

// Paths is a polygon soup.
type Paths []Path

// Bounds returns the bounding box of the path.
func (p Path) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	r := Rect{Min: p[0], Max: p[0]}
	for _, v := range p[1:] {
		if v.X < r.Min.X {
			r.Min.X = v.X
		}
		if v.Y < r.Min.Y {
			r.Min.Y = v.Y
		}
		if v.X > r.Max.X {
			r.Max.X = v.X
		}
		if v.Y > r.Max.Y {
			r.Max.Y = v.Y
		}
	}
	return r
}

// Area returns the signed area of the implicitly closed path. Positive
// area marks an outer contour, negative a hole.
func (p Path) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	sum := 0.0
	for i, a := range p {
		b := p[(i+1)%len(p)]
		sum += float64(a.X)*float64(b.Y) - float64(b.X)*float64(a.Y)
	}
	return sum / 2
}

// Reverse reverses the vertex order in place, flipping orientation without
// moving the starting vertex.
func (p Path) Reverse() {
	for i, j := 1, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// Reversed returns a reversed copy of p.
func (p Path) Reversed() Path {
	q := make(Path, len(p))
	copy(q, p)
	q.Reverse()
	return q
}

// Centroid returns the area centroid of the implicitly closed path. A path
// with no area falls back to the vertex average.
func (p Path) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	area := p.Area()
	if math.Abs(area) < 0.5 {
		var sx, sy float64
		for _, v := range p {
			sx += float64(v.X)
			sy += float64(v.Y)
		}
		n := float64(len(p))
		return Point{int64(math.Round(sx / n)), int64(math.Round(sy / n))}
	}
	var cx, cy float64
	for i, a := range p {
		b := p[(i+1)%len(p)]
		f := float64(a.X)*float64(b.Y) - float64(b.X)*float64(a.Y)
		cx += (float64(a.X) + float64(b.X)) * f
		cy += (float64(a.Y) + float64(b.Y)) * f
	}
	cx /= 6 * area
	cy /= 6 * area
	return Point{int64(math.Round(cx)), int64(math.Round(cy))}
}

// Bounds returns the bounding box of the whole soup.
func (ps Paths) Bounds() Rect {
	var r Rect
	first := true
	for _, p := range ps {
		if len(p) == 0 {
			continue
		}
		b := p.Bounds()
		if first {
			r = b
			first = false
			continue
		}
		r.Min.X = min(r.Min.X, b.Min.X)
		r.Min.Y = min(r.Min.Y, b.Min.Y)
		r.Max.X = max(r.Max.X, b.Max.X)
		r.Max.Y = max(r.Max.Y, b.Max.Y)
	}
	return r
}

// Copy returns a deep copy of the soup.
func (ps Paths) Copy() Paths {
	out := make(Paths, len(ps))
	for i, p := range ps {
		out[i] = append(Path(nil), p...)
	}
	return out
}

// inDomain reports whether every coordinate of p is inside the supported
// coordinate range.
func (p Path) inDomain() bool {
	for _, v := range p {
		if v.X > maxCoord || v.X < -maxCoord || v.Y > maxCoord || v.Y < -maxCoord {
			return false
		}
	}
	return true
}

// sanitized drops degenerate contours: consecutive duplicate vertices are
// collapsed, contours with fewer than three distinct vertices or zero area
// are removed, and out-of-domain contours are reclassified as degenerate.
func sanitized(ps Paths) Paths {
	var out Paths
	for _, p := range ps {
		if !p.inDomain() {
			continue
		}
		q := make(Path, 0, len(p))
		for _, v := range p {
			if len(q) > 0 && q[len(q)-1] == v {
				continue
			}
			q = append(q, v)
		}
		for len(q) > 1 && q[0] == q[len(q)-1] {
			q = q[:len(q)-1]
		}
		if len(q) < 3 || q.Area() == 0 {
			continue
		}
		out = append(out, q)
	}
	return out
}
