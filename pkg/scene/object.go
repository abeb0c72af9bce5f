package scene

import (
	"github.com/google/uuid"

	"github.com/taigrr/objviewer/pkg/math3d"
	"github.com/taigrr/objviewer/pkg/models"
)

// LightSource is a point light.
type LightSource struct {
	Position math3d.Vec3
}

// NewLight creates a point light at (x, y, z).
func NewLight(x, y, z float64) LightSource {
	return LightSource{Position: math3d.V3(x, y, z)}
}

// WorldObject places a mesh in the world. Objects are treated as immutable
// once added; change the transform through World.SetTransform.
type WorldObject struct {
	ID    uuid.UUID
	Mesh  *models.Mesh
	Model math3d.Mat4
}

// NewObject wraps mesh with a fresh id and the identity transform.
func NewObject(mesh *models.Mesh) *WorldObject {
	return &WorldObject{
		ID:    uuid.New(),
		Mesh:  mesh,
		Model: math3d.Identity(),
	}
}

// WorldBounds returns the axis-aligned box around the mesh bounds after
// applying the model transform.
func (o *WorldObject) WorldBounds() (lo, hi math3d.Vec3) {
	bmin, bmax := o.Mesh.BoundsMin, o.Mesh.BoundsMax
	for i := range 8 {
		corner := math3d.V3(
			pick(i&1 != 0, bmax.X, bmin.X),
			pick(i&2 != 0, bmax.Y, bmin.Y),
			pick(i&4 != 0, bmax.Z, bmin.Z),
		)
		p := o.Model.MulPoint(corner)
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo, hi = lo.Min(p), hi.Max(p)
	}
	return lo, hi
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
