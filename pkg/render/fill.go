package render

import (
	"cmp"
	"slices"
)

// edge is one non-horizontal polygon side, stored bottom-up (lowY < highY)
// with the per-scanline change of x and every attribute.
type edge struct {
	lowY, highY int
	lowX        float64
	dxdy        float64
	low         Attributes
	slope       Attributes
}

func (e *edge) xAt(y int) float64 {
	return e.lowX + e.dxdy*float64(y-e.lowY)
}

// at returns the span end on scanline y. The normal is renormalized so the
// first pixel of a span, which the line primitives emit as is, is unit
// length too.
func (e *edge) at(y int) ScreenVertex {
	a := e.low.add(e.slope.scale(float64(y - e.lowY)))
	a.Normal = a.Normal.Normalize()
	return ScreenVertex{
		X:          roundHalfUp(e.xAt(y)),
		Y:          y,
		Attributes: a,
	}
}

// buildEdges returns the edge table for the closed polygon verts sorted by
// (lowY, lowX). Horizontal sides are left out.
func buildEdges(verts []ScreenVertex) []edge {
	edges := make([]edge, 0, len(verts))
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		if a.Y == b.Y {
			continue
		}
		if a.Y > b.Y {
			a, b = b, a
		}
		h := float64(b.Y - a.Y)
		edges = append(edges, edge{
			lowY:  a.Y,
			highY: b.Y,
			lowX:  float64(a.X),
			dxdy:  float64(b.X-a.X) / h,
			low:   a.Attributes,
			slope: b.Attributes.sub(a.Attributes).scale(1 / h),
		})
	}
	slices.SortFunc(edges, func(p, q edge) int {
		if c := cmp.Compare(p.lowY, q.lowY); c != 0 {
			return c
		}
		return cmp.Compare(p.lowX, q.lowX)
	})
	return edges
}

// FillPolygon scan-converts a simple polygon given in cyclic order. Each
// scanline y covers lowY <= y < highY of the edges crossing it, so faces
// sharing a side do not both shade it. Active edges are paired left to
// right and each span is drawn with line. An unmatched edge on a scanline
// is ignored.
func FillPolygon(verts []ScreenVertex, line LineFunc, plot func(ScreenVertex)) {
	if len(verts) < 3 {
		return
	}
	edges := buildEdges(verts)
	if len(edges) < 2 {
		return
	}

	minY, maxY := edges[0].lowY, edges[0].highY
	for i := range edges {
		maxY = max(maxY, edges[i].highY)
	}

	active := make([]*edge, 0, len(edges))
	for y := minY; y < maxY; y++ {
		active = active[:0]
		for i := range edges {
			e := &edges[i]
			if e.lowY > y {
				break
			}
			if y < e.highY {
				active = append(active, e)
			}
		}
		slices.SortFunc(active, func(p, q *edge) int {
			return cmp.Compare(p.xAt(y), q.xAt(y))
		})

		for i := 0; i+1 < len(active); i += 2 {
			line(active[i].at(y), active[i+1].at(y), plot)
		}
	}
}
