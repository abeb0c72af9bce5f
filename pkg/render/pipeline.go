package render

import (
	"iter"
	"math"

	"github.com/taigrr/objviewer/pkg/math3d"
	"github.com/taigrr/objviewer/pkg/models"
	"github.com/taigrr/objviewer/pkg/scene"
)

// ProcessedFace is a visible face in screen space, ready for shading.
type ProcessedFace struct {
	Vertices []ScreenVertex
	Normal   math3d.Vec3 // world-space unit normal
	Centroid math3d.Vec3 // world-space
	Color    Color       // material or default base color
	Texture  ColorMap    // material texture, nil if none
}

// Reject says why the pipeline discarded a face.
type Reject int

const (
	Visible Reject = iota
	RejectDegenerate
	RejectClip
	RejectBounds
	RejectBackFace
)

func (r Reject) String() string {
	switch r {
	case Visible:
		return "visible"
	case RejectDegenerate:
		return "degenerate"
	case RejectClip:
		return "clip"
	case RejectBounds:
		return "bounds"
	case RejectBackFace:
		return "backface"
	}
	return "unknown"
}

// Pipeline transforms faces for one frame. It holds the frame's matrices
// and lights and is safe for concurrent use once built.
type Pipeline struct {
	cam       scene.CameraState
	lights    []scene.LightSource
	viewProj  math3d.Mat4
	mirror    bool
	baseColor Color
	textures  func(*models.Material) ColorMap
}

// NewPipeline prepares the per-frame transform state. When mirror is set,
// pixel coordinates are taken as width−x and height−y after the viewport
// transform. textures may be nil.
func NewPipeline(snap scene.Snapshot, base Color, mirror bool, textures func(*models.Material) ColorMap) *Pipeline {
	return &Pipeline{
		cam:       snap.Camera,
		lights:    snap.Lights,
		viewProj:  snap.Camera.Projection.Mul(snap.Camera.View),
		mirror:    mirror,
		baseColor: base,
		textures:  textures,
	}
}

// Faces yields the visible faces of obj lazily.
func (p *Pipeline) Faces(obj *scene.WorldObject) iter.Seq[ProcessedFace] {
	return func(yield func(ProcessedFace) bool) {
		for _, f := range obj.Mesh.Faces {
			pf, r := p.Process(obj, f)
			if r != Visible {
				continue
			}
			if !yield(pf) {
				return
			}
		}
	}
}

// Process transforms one face and applies, in order, the degenerate,
// near/far, bounds and back-face tests.
func (p *Pipeline) Process(obj *scene.WorldObject, f models.Face) (ProcessedFace, Reject) {
	n := len(f.Items)
	if n < 3 {
		return ProcessedFace{}, RejectDegenerate
	}

	world := make([]math3d.Vec3, n)
	for i, it := range f.Items {
		world[i] = obj.Model.MulVec4(it.Vertex.Homogeneous()).PerspectiveDivide()
	}

	normal := world[1].Sub(world[0]).Cross(world[2].Sub(world[1])).Normalize()
	if normal.IsZero() || math.IsNaN(normal.X) {
		return ProcessedFace{}, RejectDegenerate
	}

	w, h := float64(p.cam.Width), float64(p.cam.Height)
	verts := make([]ScreenVertex, n)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var centroid math3d.Vec3

	for i, it := range f.Items {
		clip := p.viewProj.MulVec4(math3d.Point(world[i]))
		// clip.W is the distance in front of the eye
		if clip.W < p.cam.Near || clip.W > p.cam.Far {
			return ProcessedFace{}, RejectClip
		}
		vp := p.cam.Viewport.MulVec4(clip)
		sx, sy := vp.X/vp.W, vp.Y/vp.W
		if p.mirror {
			sx, sy = w-sx, h-sy
		}
		minX, maxX = math.Min(minX, sx), math.Max(maxX, sx)
		minY, maxY = math.Min(minY, sy), math.Max(maxY, sy)

		vn := normal
		if it.Normal != nil {
			if d := obj.Model.MulDir(*it.Normal).Normalize(); !d.IsZero() {
				vn = d
			}
		}
		var uv math3d.Vec2
		if it.TexCoord != nil {
			uv = math3d.V2(it.TexCoord.U, it.TexCoord.V)
		}

		verts[i] = ScreenVertex{
			X: int(math.Floor(sx)),
			Y: int(math.Floor(sy)),
			Attributes: Attributes{
				Depth:  clip.Z / clip.W,
				UV:     uv,
				Normal: vn,
				World:  world[i],
			},
		}
		centroid = centroid.Add(world[i])
	}

	if maxX < 0 || minX > w || maxY < 0 || minY > h {
		return ProcessedFace{}, RejectBounds
	}

	toFace := world[0].Sub(p.cam.Position).Normalize()
	if normal.Dot(toFace) > 0 {
		return ProcessedFace{}, RejectBackFace
	}

	centroid = centroid.Scale(1 / float64(n))
	light := diffuseLightness(normal, centroid, p.lights)
	for i := range verts {
		verts[i].Lightness = light
	}

	pf := ProcessedFace{
		Vertices: verts,
		Normal:   normal,
		Centroid: centroid,
		Color:    p.baseColor,
	}
	if mat := obj.Mesh.Material(f); mat != nil {
		pf.Color = FloatColor(mat.BaseColor)
		if p.textures != nil {
			pf.Texture = p.textures(mat)
		}
	}
	return pf, Visible
}

// diffuseLightness averages clamp01((N·L+1)/2) over all lights, with L the
// unit vector from point to light. Without lights the result is 1.
func diffuseLightness(normal, point math3d.Vec3, lights []scene.LightSource) float64 {
	if len(lights) == 0 {
		return 1
	}
	var sum float64
	for _, l := range lights {
		toLight := l.Position.Sub(point).Normalize()
		sum += clamp01((normal.Dot(toLight) + 1) / 2)
	}
	return sum / float64(len(lights))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
