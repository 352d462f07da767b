package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/cdot/SVG2Gcode/geom"
)

// converter maps SVG user units onto the integer grid.
type converter struct {
	mmPerUnit float64 // millimetres per SVG user unit
}

func (c converter) point(x, y float64) geom.Point {
	return geom.FromMm(x*c.mmPerUnit, y*c.mmPerUnit)
}

// flatTol is the curve-flattening chord tolerance in SVG units, fixed at
// a tenth of a millimetre regardless of the document's unit scale.
func (c converter) flatTol() float64 {
	return 0.1 / c.mmPerUnit
}

// pathScanner walks SVG path data and points lists, yielding command
// letters and numbers. Separators are whitespace and commas; a sign or a
// second decimal point also terminates the previous number, so runs like
// "10-5" scan as two values.
type pathScanner struct {
	s   string
	pos int
}

func (sc *pathScanner) skip() {
	for sc.pos < len(sc.s) {
		switch sc.s[sc.pos] {
		case ' ', '\t', '\n', '\r', ',':
			sc.pos++
		default:
			return
		}
	}
}

func (sc *pathScanner) done() bool {
	sc.skip()
	return sc.pos >= len(sc.s)
}

// command consumes the next command letter, if one is pending.
func (sc *pathScanner) command() (byte, bool) {
	sc.skip()
	if sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			sc.pos++
			return c, true
		}
	}
	return 0, false
}

// number consumes one coordinate value.
func (sc *pathScanner) number() (float64, error) {
	sc.skip()
	start := sc.pos
	if sc.pos < len(sc.s) && (sc.s[sc.pos] == '+' || sc.s[sc.pos] == '-') {
		sc.pos++
	}
	dot := false
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		switch {
		case c >= '0' && c <= '9':
			sc.pos++
		case c == '.' && !dot:
			dot = true
			sc.pos++
		case (c == 'e' || c == 'E') && sc.pos > start:
			sc.pos++
			if sc.pos < len(sc.s) && (sc.s[sc.pos] == '+' || sc.s[sc.pos] == '-') {
				sc.pos++
			}
		default:
			goto parse
		}
	}
parse:
	if sc.pos == start {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	return strconv.ParseFloat(sc.s[start:sc.pos], 64)
}

// errUnsupportedPathCommand marks path data using commands beyond
// M/L/H/V/C/Z; the caller skips the shape.
var errUnsupportedPathCommand = errors.New("unsupported path command")

// parsePathData flattens one path element onto the integer grid. The
// group translation tx, ty is applied in SVG units before conversion.
// The reported closed flag covers a trailing or embedded Z.
func parsePathData(d string, tx, ty float64, conv converter) (geom.Path, bool, error) {
	sc := &pathScanner{s: d}
	var path geom.Path
	var curX, curY, startX, startY float64
	closed := false
	cmd := byte(0)
	tol := conv.flatTol()

	add := func(x, y float64) {
		p := conv.point(x+tx, y+ty)
		if n := len(path); n > 0 && path[n-1] == p {
			return
		}
		path = append(path, p)
	}

	for !sc.done() {
		if c, ok := sc.command(); ok {
			cmd = c
			if cmd == 'Z' || cmd == 'z' {
				if len(path) > 0 {
					closed = true
				}
				curX, curY = startX, startY
				continue
			}
		}
		if cmd == 0 {
			return nil, false, errors.New("path data must start with a moveto")
		}

		switch cmd {
		case 'M', 'm', 'L', 'l':
			x, err := sc.number()
			if err != nil {
				return nil, false, err
			}
			y, err := sc.number()
			if err != nil {
				return nil, false, err
			}
			if cmd == 'm' || cmd == 'l' {
				x += curX
				y += curY
			}
			curX, curY = x, y
			if cmd == 'M' || cmd == 'm' {
				startX, startY = x, y
			}
			add(curX, curY)
			// Coordinate pairs after a moveto continue as linetos.
			if cmd == 'M' {
				cmd = 'L'
			} else if cmd == 'm' {
				cmd = 'l'
			}

		case 'H', 'h':
			x, err := sc.number()
			if err != nil {
				return nil, false, err
			}
			if cmd == 'h' {
				x += curX
			}
			curX = x
			add(curX, curY)

		case 'V', 'v':
			y, err := sc.number()
			if err != nil {
				return nil, false, err
			}
			if cmd == 'v' {
				y += curY
			}
			curY = y
			add(curX, curY)

		case 'C', 'c':
			var n [6]float64
			for i := range n {
				v, err := sc.number()
				if err != nil {
					return nil, false, err
				}
				n[i] = v
			}
			if cmd == 'c' {
				n[0] += curX
				n[1] += curY
				n[2] += curX
				n[3] += curY
				n[4] += curX
				n[5] += curY
			}
			flattenCubic(curX, curY, n[0], n[1], n[2], n[3], n[4], n[5], tol, 0, add)
			curX, curY = n[4], n[5]

		default:
			return nil, false, fmt.Errorf("%w %q", errUnsupportedPathCommand, string(cmd))
		}
	}
	return path, closed, nil
}

// parsePoints reads a polyline/polygon points attribute onto the grid.
func parsePoints(attr string, tx, ty float64, conv converter) (geom.Path, error) {
	sc := &pathScanner{s: attr}
	var path geom.Path
	for !sc.done() {
		x, err := sc.number()
		if err != nil {
			return nil, err
		}
		y, err := sc.number()
		if err != nil {
			return nil, fmt.Errorf("odd coordinate count: %w", err)
		}
		p := conv.point(x+tx, y+ty)
		if n := len(path); n == 0 || path[n-1] != p {
			path = append(path, p)
		}
	}
	return path, nil
}

// flattenCubic subdivides a cubic Bézier until both control points sit
// within tol of the chord, emitting the endpoint of each accepted
// segment. The depth cap bounds pathological control polygons.
func flattenCubic(x0, y0, x1, y1, x2, y2, x3, y3, tol float64, depth int, emit func(x, y float64)) {
	if depth >= 16 ||
		(chordDist(x1, y1, x0, y0, x3, y3) <= tol && chordDist(x2, y2, x0, y0, x3, y3) <= tol) {
		emit(x3, y3)
		return
	}
	ax, ay := (x0+x1)/2, (y0+y1)/2
	bx, by := (x1+x2)/2, (y1+y2)/2
	cx, cy := (x2+x3)/2, (y2+y3)/2
	abx, aby := (ax+bx)/2, (ay+by)/2
	bcx, bcy := (bx+cx)/2, (by+cy)/2
	mx, my := (abx+bcx)/2, (aby+bcy)/2
	flattenCubic(x0, y0, ax, ay, abx, aby, mx, my, tol, depth+1, emit)
	flattenCubic(mx, my, bcx, bcy, cx, cy, x3, y3, tol, depth+1, emit)
}

// chordDist is the distance from (px,py) to the line through a and b.
func chordDist(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	l := math.Hypot(dx, dy)
	if l == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	return math.Abs(dx*(ay-py)-dy*(ax-px)) / l
}
