package render

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/objviewer/pkg/math3d"
	"github.com/taigrr/objviewer/pkg/scene"
)

var (
	ErrUnknownShading       = errors.New("unknown shading mode")
	ErrUnknownLineAlgorithm = errors.New("unknown line algorithm")
)

// Frame is the per-frame lighting input shared by all faces.
type Frame struct {
	Eye    math3d.Vec3
	Lights []scene.LightSource
}

// Shader turns a processed face into depth-tested samples.
type Shader interface {
	Shade(fr *Frame, face *ProcessedFace, sink Sink)
}

// ShadingMode selects one of the built-in shaders.
type ShadingMode int

const (
	ShadeStroke ShadingMode = iota
	ShadeFlat
	ShadeLambert
	ShadePhong
	ShadeTextured
)

var shadingNames = []string{"stroke", "flat", "lambert", "phong", "textured"}

func (m ShadingMode) String() string {
	if m >= 0 && int(m) < len(shadingNames) {
		return shadingNames[m]
	}
	return fmt.Sprintf("ShadingMode(%d)", int(m))
}

// ParseShadingMode parses a mode name, ignoring case.
func ParseShadingMode(s string) (ShadingMode, error) {
	for i, name := range shadingNames {
		if strings.EqualFold(s, name) {
			return ShadingMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownShading, s, strings.Join(shadingNames, ", "))
}

// NewShader builds the shader for opts.Shading.
func NewShader(opts Options) (Shader, error) {
	line := opts.Line.Func()
	switch opts.Shading {
	case ShadeStroke:
		return StrokeShader{Color: opts.StrokeColor, Line: line}, nil
	case ShadeFlat:
		return FlatShader{Line: line}, nil
	case ShadeLambert:
		return LambertShader{Line: line}, nil
	case ShadePhong:
		return PhongShader{Material: PhongMaterial, Line: line}, nil
	case ShadeTextured:
		return TexturedShader{Material: TexturedMaterial, Maps: opts.Maps, Line: line}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownShading, opts.Shading)
}

// StrokeShader draws face outlines in a single color.
type StrokeShader struct {
	Color Color
	Line  LineFunc
}

func (s StrokeShader) Shade(_ *Frame, face *ProcessedFace, sink Sink) {
	plot := func(p ScreenVertex) { sink.AddPoint(p.X, p.Y, p.Depth, s.Color) }
	vs := face.Vertices
	for i := range vs {
		s.Line(vs[i], vs[(i+1)%len(vs)], plot)
	}
}

// FlatShader fills the face with its base color scaled by the lightness the
// pipeline computed at the face centroid.
type FlatShader struct {
	Line LineFunc
}

func (s FlatShader) Shade(_ *Frame, face *ProcessedFace, sink Sink) {
	c := MultiplyColor(face.Color, face.Vertices[0].Lightness)
	FillPolygon(face.Vertices, s.Line, func(p ScreenVertex) {
		sink.AddPoint(p.X, p.Y, p.Depth, c)
	})
}

// LambertShader fills with one diffuse lightness per face, evaluated at the
// first vertex when the face is shaded.
type LambertShader struct {
	Line LineFunc
}

func (s LambertShader) Shade(fr *Frame, face *ProcessedFace, sink Sink) {
	c := MultiplyColor(face.Color, diffuseLightness(face.Normal, face.Vertices[0].World, fr.Lights))
	FillPolygon(face.Vertices, s.Line, func(p ScreenVertex) {
		sink.AddPoint(p.X, p.Y, p.Depth, c)
	})
}

// Material holds the lighting coefficients of the per-pixel shaders.
type Material struct {
	Ambient   float64
	Diffuse   float64
	Specular  float64
	Shininess float64
}

var (
	PhongMaterial    = Material{Ambient: 0.1, Diffuse: 0.5, Specular: 1.9, Shininess: 128}
	TexturedMaterial = Material{Ambient: 0.5, Diffuse: 0.4, Specular: 0.3, Shininess: 8}
)

// Lightness evaluates ambient + Σ(diffuse·max(0,L·N) + specular·k·max(0,R·V)^shininess)
// at point with unit normal n, where k scales the specular term. A light
// behind the surface (L·N <= 0) adds neither diffuse nor specular light, so a
// back-lit face shows no highlight wherever the eye is.
func (m Material) Lightness(n, point, eye math3d.Vec3, lights []scene.LightSource, k float64) float64 {
	l := m.Ambient
	toEye := eye.Sub(point).Normalize()
	for _, light := range lights {
		toLight := light.Position.Sub(point).Normalize()
		diff := n.Dot(toLight)
		if diff <= 0 {
			continue
		}
		l += m.Diffuse * diff
		if spec := toLight.Negate().Reflect(n).Dot(toEye); spec > 0 {
			l += m.Specular * k * math.Pow(spec, m.Shininess)
		}
	}
	return l
}

// PhongShader lights every pixel from the interpolated normal and world
// position.
type PhongShader struct {
	Material Material
	Line     LineFunc
}

func (s PhongShader) Shade(fr *Frame, face *ProcessedFace, sink Sink) {
	FillPolygon(face.Vertices, s.Line, func(p ScreenVertex) {
		l := s.Material.Lightness(p.Normal, p.World, fr.Eye, fr.Lights, 1)
		sink.AddPoint(p.X, p.Y, p.Depth, MultiplyColor(face.Color, l))
	})
}

// TexturedShader is PhongShader with color, normal and specular taken from
// texture maps at the interpolated texture coordinate.
type TexturedShader struct {
	Material Material
	Maps     Maps
	Line     LineFunc
}

func (s TexturedShader) Shade(fr *Frame, face *ProcessedFace, sink Sink) {
	colors := s.Maps.Color
	if colors == nil {
		colors = face.Texture
	}
	if colors == nil {
		colors = PlainColor(face.Color)
	}

	FillPolygon(face.Vertices, s.Line, func(p ScreenVertex) {
		u, v := p.UV.X, p.UV.Y
		n := p.Normal
		if s.Maps.Normal != nil {
			if mn := s.Maps.Normal.NormalAt(u, v); !mn.IsZero() {
				n = mn
			}
		}
		k := 1.0
		if s.Maps.Specular != nil {
			k = s.Maps.Specular.SpecularAt(u, v)
		}
		l := s.Material.Lightness(n, p.World, fr.Eye, fr.Lights, k)
		sink.AddPoint(p.X, p.Y, p.Depth, MultiplyColor(colors.ColorAt(u, v), l))
	})
}
