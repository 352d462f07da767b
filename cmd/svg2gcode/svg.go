package main

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cdot/SVG2Gcode/geom"
)

// Shape is one vector element from the document, already discretised
// onto the integer grid.
type Shape struct {
	Path   geom.Path
	Closed bool
	Stroke string
}

// Document is the parsed SVG: its shapes plus the viewBox size in SVG
// user units.
type Document struct {
	Shapes        []Shape
	Width, Height float64
}

// groupState is the inherited context of the enclosing <g> elements:
// the effective stroke colour and the accumulated translation. Only
// translate transforms are honoured; anything else is ignored.
type groupState struct {
	stroke string
	tx, ty float64
}

// parseSVG walks the document with a streaming decoder. Shapes come
// from <path>, <polyline> and <polygon>; paths using commands beyond
// M/L/H/V/C/Z are skipped with a warning rather than failing the run.
func parseSVG(r io.Reader, conv converter, log *slog.Logger) (Document, error) {
	dec := xml.NewDecoder(r)
	var doc Document
	stack := []groupState{{}}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return doc, fmt.Errorf("decode token: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			g := stack[len(stack)-1]
			switch t.Name.Local {
			case "svg":
				doc.Width, doc.Height = viewBoxSize(attrOf(t, "viewBox"))

			case "g":
				child := g
				if s := strokeOf(attrOf(t, "stroke"), attrOf(t, "style")); s != "" {
					child.stroke = s
				}
				dx, dy := parseTranslate(attrOf(t, "transform"))
				child.tx += dx
				child.ty += dy
				stack = append(stack, child)

			case "path":
				d := strings.TrimSpace(attrOf(t, "d"))
				if d == "" {
					continue
				}
				p, closed, err := parsePathData(d, g.tx, g.ty, conv)
				if err != nil {
					if errors.Is(err, errUnsupportedPathCommand) {
						log.Warn("path skipped", "reason", err)
						continue
					}
					return doc, fmt.Errorf("path %q: %w", clip40(d), err)
				}
				doc.add(p, closed, t, g)

			case "polyline":
				p, err := parsePoints(attrOf(t, "points"), g.tx, g.ty, conv)
				if err != nil {
					return doc, fmt.Errorf("polyline: %w", err)
				}
				doc.add(p, false, t, g)

			case "polygon":
				p, err := parsePoints(attrOf(t, "points"), g.tx, g.ty, conv)
				if err != nil {
					return doc, fmt.Errorf("polygon: %w", err)
				}
				// The core stores no duplicate closing vertex.
				if len(p) > 1 && p[0] == p[len(p)-1] {
					p = p[:len(p)-1]
				}
				doc.add(p, true, t, g)
			}

		case xml.EndElement:
			if t.Name.Local == "g" && len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return doc, nil
}

// add records a parsed shape, resolving its stroke against the group.
func (doc *Document) add(p geom.Path, closed bool, e xml.StartElement, g groupState) {
	if len(p) == 0 {
		return
	}
	stroke := strokeOf(attrOf(e, "stroke"), attrOf(e, "style"))
	if stroke == "" {
		stroke = g.stroke
	}
	doc.Shapes = append(doc.Shapes, Shape{Path: p, Closed: closed, Stroke: stroke})
}

// attrOf returns the named attribute of the element, or "".
func attrOf(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// viewBoxSize reads the width and height out of a viewBox attribute.
func viewBoxSize(vb string) (w, h float64) {
	f := strings.Fields(vb)
	if len(f) == 4 {
		w, _ = strconv.ParseFloat(f[2], 64)
		h, _ = strconv.ParseFloat(f[3], 64)
	}
	return w, h
}

// strokeOf resolves a stroke colour from the stroke attribute, falling
// back to a "stroke:" declaration in the style attribute.
func strokeOf(strokeAttr, styleAttr string) string {
	if strokeAttr != "" {
		return normalizeColor(strokeAttr)
	}
	for styleAttr != "" {
		var decl string
		decl, styleAttr, _ = strings.Cut(styleAttr, ";")
		if k, v, ok := strings.Cut(decl, ":"); ok &&
			strings.TrimSpace(strings.ToLower(k)) == "stroke" {
			return normalizeColor(v)
		}
	}
	return ""
}

func normalizeColor(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" || c[0] == '#' {
		return c
	}
	return "#" + c
}

// parseTranslate extracts translate(x[,y]); other transforms read as no
// translation.
func parseTranslate(s string) (tx, ty float64) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "translate")
	if !ok {
		return 0, 0
	}
	rest = strings.TrimSpace(rest)
	end := strings.IndexByte(rest, ')')
	if len(rest) == 0 || rest[0] != '(' || end < 0 {
		return 0, 0
	}
	sc := &pathScanner{s: rest[1:end]}
	if v, err := sc.number(); err == nil {
		tx = v
	}
	if !sc.done() {
		if v, err := sc.number(); err == nil {
			ty = v
		}
	}
	return tx, ty
}

func clip40(s string) string {
	if len(s) <= 40 {
		return s
	}
	return s[:40] + "..."
}
