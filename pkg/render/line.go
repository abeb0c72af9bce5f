package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/objviewer/pkg/math3d"
)

// Attributes are the values interpolated across a face.
type Attributes struct {
	Depth     float64
	Lightness float64
	UV        math3d.Vec2
	Normal    math3d.Vec3
	World     math3d.Vec3
}

func (a Attributes) add(b Attributes) Attributes {
	return Attributes{
		Depth:     a.Depth + b.Depth,
		Lightness: a.Lightness + b.Lightness,
		UV:        a.UV.Add(b.UV),
		Normal:    a.Normal.Add(b.Normal),
		World:     a.World.Add(b.World),
	}
}

func (a Attributes) sub(b Attributes) Attributes {
	return a.add(b.scale(-1))
}

func (a Attributes) scale(s float64) Attributes {
	return Attributes{
		Depth:     a.Depth * s,
		Lightness: a.Lightness * s,
		UV:        a.UV.Scale(s),
		Normal:    a.Normal.Scale(s),
		World:     a.World.Scale(s),
	}
}

// ScreenVertex is a pixel position with its interpolated attributes.
type ScreenVertex struct {
	X, Y int
	Attributes
}

// LineFunc rasterizes the segment a-b, calling plot once per pixel.
type LineFunc func(a, b ScreenVertex, plot func(ScreenVertex))

// LineAlgorithm selects a LineFunc.
type LineAlgorithm int

const (
	LineDDA LineAlgorithm = iota
	LineBresenham
)

var lineNames = map[LineAlgorithm]string{
	LineDDA:       "dda",
	LineBresenham: "bresenham",
}

func (a LineAlgorithm) String() string {
	if s, ok := lineNames[a]; ok {
		return s
	}
	return fmt.Sprintf("LineAlgorithm(%d)", int(a))
}

// ParseLineAlgorithm parses "dda" or "bresenham".
func ParseLineAlgorithm(s string) (LineAlgorithm, error) {
	for a, name := range lineNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLineAlgorithm, s)
}

// Func returns the rasterizer for a.
func (a LineAlgorithm) Func() LineFunc {
	if a == LineBresenham {
		return DrawLineBresenham
	}
	return DrawLineDDA
}

// DrawLineDDA emits max(|dx|,|dy|)+1 points from a to b inclusive. Step i
// sits at fraction i/n along the segment; pixel coordinates are floored and
// the normal is renormalized at every step. The first point is exactly a.
func DrawLineDDA(a, b ScreenVertex, plot func(ScreenVertex)) {
	dx, dy := b.X-a.X, b.Y-a.Y
	n := max(abs(dx), abs(dy))
	if n == 0 {
		plot(a)
		return
	}

	delta := b.Attributes.sub(a.Attributes)
	for i := 0; i <= n; i++ {
		p := a
		if i > 0 {
			p.X = a.X + floorDiv(dx*i, n)
			p.Y = a.Y + floorDiv(dy*i, n)
			p.Attributes = a.Attributes.add(delta.scale(float64(i) / float64(n)))
			p.Normal = p.Normal.Normalize()
		}
		plot(p)
	}
}

// DrawLineBresenham walks the segment with an integer error term. It emits
// the same number of points as DrawLineDDA, and attributes advance by one
// step fraction per emitted pixel.
func DrawLineBresenham(a, b ScreenVertex, plot func(ScreenVertex)) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	n := max(dx, -dy)
	if n == 0 {
		plot(a)
		return
	}

	delta := b.Attributes.sub(a.Attributes)
	x, y := a.X, a.Y
	e := dx + dy
	for i := 0; ; i++ {
		p := a
		p.X, p.Y = x, y
		if i > 0 {
			p.Attributes = a.Attributes.add(delta.scale(float64(i) / float64(n)))
			p.Normal = p.Normal.Normalize()
		}
		plot(p)
		if i == n {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// floorDiv divides rounding toward negative infinity. d must be positive.
func floorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}

// roundHalfUp rounds to the nearest integer, ties toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
