package render

import (
	"math"
	"testing"

	"github.com/taigrr/objviewer/pkg/math3d"
)

func fill(verts []ScreenVertex, line LineFunc) map[[2]int]ScreenVertex {
	pts := make(map[[2]int]ScreenVertex)
	FillPolygon(verts, line, func(p ScreenVertex) {
		pts[[2]int{p.X, p.Y}] = p
	})
	return pts
}

func countFill(verts []ScreenVertex) int {
	n := 0
	FillPolygon(verts, DrawLineDDA, func(ScreenVertex) { n++ })
	return n
}

func TestFillPolygonRectangle(t *testing.T) {
	rect := []ScreenVertex{sv(0, 0, 0), sv(10, 0, 0), sv(10, 5, 0), sv(0, 5, 0)}

	// Rows 0..4 (the top row is exclusive), columns 0..10.
	if n := countFill(rect); n != 55 {
		t.Errorf("got %d samples, want 55", n)
	}
	pts := fill(rect, DrawLineDDA)
	if len(pts) != 55 {
		t.Errorf("got %d distinct pixels, want 55", len(pts))
	}
	if _, ok := pts[[2]int{0, 5}]; ok {
		t.Error("row at highY was filled")
	}
}

func TestFillPolygonTriangleDepth(t *testing.T) {
	tri := []ScreenVertex{sv(0, 0, 0), sv(8, 0, 8), sv(0, 8, 0)}

	pts := fill(tri, DrawLineDDA)
	if len(pts) != 44 {
		t.Errorf("got %d pixels, want 44", len(pts))
	}
	for k, p := range pts {
		if k[0]+k[1] > 8 || k[0] < 0 || k[1] < 0 {
			t.Errorf("pixel %v outside triangle", k)
		}
		// depth was set equal to x at every vertex
		if math.Abs(p.Depth-float64(k[0])) > 1e-9 {
			t.Errorf("depth at %v = %v, want %v", k, p.Depth, float64(k[0]))
		}
	}
}

// edgeDistances returns the signed distance of (x, y) to each side of a
// convex polygon, positive inside.
func edgeDistances(verts []ScreenVertex, x, y float64) []float64 {
	var area float64
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		area += float64(a.X*b.Y - b.X*a.Y)
	}
	sign := 1.0
	if area < 0 {
		sign = -1
	}

	d := make([]float64, len(verts))
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		ex, ey := float64(b.X-a.X), float64(b.Y-a.Y)
		cross := ex*(y-float64(a.Y)) - ey*(x-float64(a.X))
		d[i] = sign * cross / math.Hypot(ex, ey)
	}
	return d
}

func TestFillPolygonConvexCoverage(t *testing.T) {
	const tol = 1.5
	quad := []ScreenVertex{sv(2, 1, 0), sv(15, 4, 0), sv(12, 14, 0), sv(1, 9, 0)}

	for _, algo := range []LineAlgorithm{LineDDA, LineBresenham} {
		t.Run(algo.String(), func(t *testing.T) {
			seen := make(map[[2]int]int)
			FillPolygon(quad, algo.Func(), func(p ScreenVertex) {
				seen[[2]int{p.X, p.Y}]++
			})

			for k, n := range seen {
				if n > 1 {
					t.Errorf("pixel %v shaded %d times", k, n)
				}
				for _, d := range edgeDistances(quad, float64(k[0]), float64(k[1])) {
					if d < -tol {
						t.Errorf("pixel %v is %.2f outside the polygon", k, -d)
						break
					}
				}
			}

			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					inside := true
					for _, d := range edgeDistances(quad, float64(x), float64(y)) {
						if d <= tol {
							inside = false
							break
						}
					}
					if inside && seen[[2]int{x, y}] == 0 {
						t.Errorf("interior pixel (%d,%d) not shaded", x, y)
					}
				}
			}
		})
	}
}

func TestFillPolygonUnitNormals(t *testing.T) {
	nv := func(x, y int, n math3d.Vec3) ScreenVertex {
		return ScreenVertex{X: x, Y: y, Attributes: Attributes{Normal: n}}
	}
	tri := []ScreenVertex{
		nv(0, 0, math3d.V3(1, 0, 0)),
		nv(12, 0, math3d.V3(1, 0, 0)),
		nv(0, 12, math3d.V3(0, 0, 1)),
	}

	for _, algo := range []LineAlgorithm{LineDDA, LineBresenham} {
		t.Run(algo.String(), func(t *testing.T) {
			n := 0
			FillPolygon(tri, algo.Func(), func(p ScreenVertex) {
				n++
				if l := p.Normal.Len(); math.Abs(l-1) > 1e-9 {
					t.Errorf("normal at (%d,%d) has length %v, want 1", p.X, p.Y, l)
				}
			})
			if n == 0 {
				t.Fatal("no samples")
			}
		})
	}
}

// insidePolygon reports whether (x, y) is inside verts by the even-odd rule.
func insidePolygon(verts []ScreenVertex, x, y float64) bool {
	in := false
	for i, j := 0, len(verts)-1; i < len(verts); j, i = i, i+1 {
		xi, yi := float64(verts[i].X), float64(verts[i].Y)
		xj, yj := float64(verts[j].X), float64(verts[j].Y)
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
	}
	return in
}

func TestFillPolygonConcaveCoverage(t *testing.T) {
	chevron := []ScreenVertex{sv(0, 0, 0), sv(20, 10, 0), sv(0, 20, 0), sv(8, 10, 0)}

	// near reports whether (x, y) or one of its neighbours is inside.
	near := func(x, y int, all bool) bool {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				in := insidePolygon(chevron, float64(x+dx), float64(y+dy))
				if in != all {
					return in
				}
			}
		}
		return all
	}

	for _, algo := range []LineAlgorithm{LineDDA, LineBresenham} {
		t.Run(algo.String(), func(t *testing.T) {
			pts := fill(chevron, algo.Func())
			for k := range pts {
				if !near(k[0], k[1], false) {
					t.Errorf("pixel %v is outside the chevron", k)
				}
			}
			for y := -1; y <= 21; y++ {
				for x := -1; x <= 21; x++ {
					if _, ok := pts[[2]int{x, y}]; !ok && near(x, y, true) {
						t.Errorf("interior pixel (%d,%d) not shaded", x, y)
					}
				}
			}
			// The notch between the arms stays empty.
			for x := 0; x < 7; x++ {
				if _, ok := pts[[2]int{x, 10}]; ok {
					t.Errorf("notch pixel (%d,10) was shaded", x)
				}
			}
		})
	}
}

func TestFillPolygonSelfIntersecting(t *testing.T) {
	tests := []struct {
		name  string
		verts []ScreenVertex
	}{
		{"bow tie", []ScreenVertex{sv(0, 0, 0), sv(10, 10, 0), sv(10, 0, 0), sv(0, 10, 0)}},
		{"touching", []ScreenVertex{sv(0, 0, 0), sv(10, 0, 0), sv(5, 5, 0), sv(10, 10, 0), sv(0, 10, 0), sv(5, 5, 0)}},
		{"spike", []ScreenVertex{sv(0, 0, 0), sv(9, 4, 0), sv(0, 4, 0), sv(9, 0, 0), sv(4, 9, 0)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			minX, minY, maxX, maxY := tc.verts[0].X, tc.verts[0].Y, tc.verts[0].X, tc.verts[0].Y
			for _, v := range tc.verts {
				minX, maxX = min(minX, v.X), max(maxX, v.X)
				minY, maxY = min(minY, v.Y), max(maxY, v.Y)
			}
			for _, algo := range []LineAlgorithm{LineDDA, LineBresenham} {
				n := 0
				FillPolygon(tc.verts, algo.Func(), func(p ScreenVertex) {
					n++
					if p.X < minX || p.X > maxX || p.Y < minY || p.Y > maxY {
						t.Errorf("%v: pixel (%d,%d) outside the bounds", algo, p.X, p.Y)
					}
				})
				if n == 0 {
					t.Errorf("%v: no samples", algo)
				}
			}
		})
	}
}

func TestFillPolygonDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		verts []ScreenVertex
	}{
		{"empty", nil},
		{"two vertices", []ScreenVertex{sv(0, 0, 0), sv(5, 5, 0)}},
		{"horizontal", []ScreenVertex{sv(0, 3, 0), sv(5, 3, 0), sv(9, 3, 0)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if n := countFill(tc.verts); n != 0 {
				t.Errorf("got %d samples, want 0", n)
			}
		})
	}
}

func BenchmarkFillPolygon(b *testing.B) {
	quad := []ScreenVertex{sv(20, 10, 0), sv(150, 40, 0.5), sv(120, 140, 1), sv(10, 90, 0.2)}
	for b.Loop() {
		FillPolygon(quad, DrawLineDDA, func(ScreenVertex) {})
	}
}
