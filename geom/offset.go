package geom

import "math"

// Offset computes the Minkowski sum of the soup with a disk of radius
// |delta|. Positive delta grows the region, negative shrinks it; holes
// move the opposite way to outers, and contours that collapse are dropped
// silently. Joins are rounded with a chord tolerance of max(1, |delta|/256).
//
// Each contour is first expanded into a raw offset ring: every edge is
// displaced along its outward normal, convex corners get arc segments, and
// reflex corners get a spike back through the original vertex. The rings
// self-intersect near corners; a positive-fill self-union cuts away the
// excess and removes inverted (collapsed) rings.
func Offset(ps Paths, delta int64) Paths {
	ps = Normalized(ps)
	if len(ps) == 0 {
		return nil
	}
	if delta == 0 {
		return ps
	}

	d := float64(delta)
	tol := math.Max(1, math.Abs(d)/256)
	step := math.Pi / 2
	if tol < math.Abs(d) {
		step = 2 * math.Acos(1-tol/math.Abs(d))
	}

	raw := make(Paths, 0, len(ps))
	for _, p := range ps {
		raw = append(raw, offsetRing(p, d, step))
	}
	return Clip(raw, nil, Union, Positive)
}

// offsetRing displaces one contour by d. The contour must be oriented
// with its interior on the left, which Normalized guarantees for outers
// and holes alike.
func offsetRing(p Path, d, step float64) Path {
	n := len(p)
	// Unit outward normal of each edge.
	nx := make([]float64, n)
	ny := make([]float64, n)
	for i, a := range p {
		b := p[(i+1)%n]
		dx := float64(b.X - a.X)
		dy := float64(b.Y - a.Y)
		l := math.Hypot(dx, dy)
		nx[i] = dy / l
		ny[i] = -dx / l
	}

	var ring Path
	add := func(x, y float64) {
		ring = append(ring, Point{int64(math.Round(x)), int64(math.Round(y))})
	}
	for i, v := range p {
		j := (i - 1 + n) % n
		px, py := float64(v.X), float64(v.Y)
		sinA := nx[j]*ny[i] - ny[j]*nx[i]
		cosA := nx[j]*nx[i] + ny[j]*ny[i]

		switch {
		case sinA == 0 && cosA > 0:
			// Straight continuation.
			add(px+nx[i]*d, py+ny[i]*d)
		case sinA*d < 0:
			// Reflex relative to the offset direction: spike through
			// the original vertex; the self-union trims it.
			add(px+nx[j]*d, py+ny[j]*d)
			add(px, py)
			add(px+nx[i]*d, py+ny[i]*d)
		default:
			// Convex: arc from the previous normal to the next.
			a1 := math.Atan2(ny[j], nx[j])
			a2 := math.Atan2(ny[i], nx[i])
			if sinA > 0 {
				for a2 < a1 {
					a2 += 2 * math.Pi
				}
			} else {
				for a2 > a1 {
					a2 -= 2 * math.Pi
				}
			}
			add(px+nx[j]*d, py+ny[j]*d)
			arc := math.Abs(a2 - a1)
			steps := int(arc / step)
			for k := 1; k <= steps; k++ {
				a := a1 + float64(k)*math.Copysign(step, a2-a1)
				add(px+math.Cos(a)*d, py+math.Sin(a)*d)
			}
			add(px+nx[i]*d, py+ny[i]*d)
		}
	}
	return ring
}
