// Package models loads polygon meshes and holds them in the resolved form the
// renderer consumes: every face item carries its vertex, texture coordinate
// and normal by value.
package models

import (
	"errors"
	"image"

	"github.com/taigrr/objviewer/pkg/math3d"
)

// ErrNoMesh is returned when a file parses but contains no faces.
var ErrNoMesh = errors.New("no faces in mesh")

// Vertex is a homogeneous position. W defaults to 1.
type Vertex struct {
	X, Y, Z, W float64
}

// Position returns the vertex as a 3D point.
func (v Vertex) Position() math3d.Vec3 {
	return math3d.V3(v.X, v.Y, v.Z)
}

// Homogeneous returns the vertex as a Vec4.
func (v Vertex) Homogeneous() math3d.Vec4 {
	return math3d.V4(v.X, v.Y, v.Z, v.W)
}

// TexCoord is a texture coordinate. V and W default to 0.
type TexCoord struct {
	U, V, W float64
}

// FaceItem is one corner of a face.
type FaceItem struct {
	Vertex   Vertex
	TexCoord *TexCoord    // nil when the source had none
	Normal   *math3d.Vec3 // nil when the source had none
}

// Face is an ordered polygon. Faces with fewer than three items are never
// produced by the loaders.
type Face struct {
	Items    []FaceItem
	Material int // index into Mesh.Materials, -1 for none
}

// Material is the subset of a glTF material the renderer uses.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	BaseMap   image.Image
}

// Mesh is a loaded model.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	TexCoords []TexCoord
	Normals   []math3d.Vec3
	Faces     []Face
	Materials []Material

	// Bounding box, set by CalculateBounds
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box of the vertex list.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Vertices[0].Position()
	m.BoundsMax = m.BoundsMin
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position())
		m.BoundsMax = m.BoundsMax.Max(v.Position())
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Material returns the material for face f, or nil.
func (m *Mesh) Material(f Face) *Material {
	if f.Material < 0 || f.Material >= len(m.Materials) {
		return nil
	}
	return &m.Materials[f.Material]
}
