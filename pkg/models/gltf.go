package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/objviewer/pkg/math3d"
)

// LoadGLB loads a binary glTF file. It is an alias of LoadGLTF kept for the
// common extension.
func LoadGLB(path string) (*Mesh, error) {
	return LoadGLTF(path)
}

// LoadGLTF loads the triangle primitives of every mesh in a glTF or GLB
// document. Node transforms are not applied. Base color factors and
// textures become Materials.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = readMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := appendPrimitives(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrNoMesh
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func appendPrimitives(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		// Keep the shared lists populated so Bounds and callers that want the
		// raw data see the whole document.
		for _, p := range positions {
			mesh.Vertices = append(mesh.Vertices, Vertex{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2]), W: 1})
		}

		item := func(i uint32) (FaceItem, error) {
			if int(i) >= len(positions) {
				return FaceItem{}, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, i, len(positions))
			}
			p := positions[i]
			it := FaceItem{Vertex: Vertex{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2]), W: 1}}
			if int(i) < len(normals) {
				n := math3d.V3(float64(normals[i][0]), float64(normals[i][1]), float64(normals[i][2]))
				it.Normal = &n
			}
			if int(i) < len(uvs) {
				// glTF puts v=0 at the top of the image
				it.TexCoord = &TexCoord{U: float64(uvs[i][0]), V: 1 - float64(uvs[i][1])}
			}
			return it, nil
		}

		// glTF front faces wind counter-clockwise, which already yields
		// outward normals for (v1-v0)x(v2-v1).
		for i := 0; i+2 < len(indices); i += 3 {
			face := Face{Items: make([]FaceItem, 3), Material: material}
			for k := range 3 {
				it, err := item(indices[i+k])
				if err != nil {
					return err
				}
				face.Items[k] = it
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}
	return nil
}

func readMaterials(doc *gltf.Document, dir string) []Material {
	materials := make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		mat := Material{Name: m.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				mat.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseMap = textureImage(doc, pbr.BaseColorTexture.Index, dir)
			}
		}
		materials[i] = mat
	}
	return materials
}

// textureImage decodes the image behind texture index idx. Missing or
// undecodable images yield nil so the material falls back to its factor.
func textureImage(doc *gltf.Document, idx int, dir string) image.Image {
	if idx < 0 || idx >= len(doc.Textures) || doc.Textures[idx].Source == nil {
		return nil
	}
	src := *doc.Textures[idx].Source
	if src >= len(doc.Images) {
		return nil
	}
	img := doc.Images[src]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
	default:
		return nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return decoded
}
