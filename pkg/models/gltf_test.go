package models

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func writeTriangleGLB(t *testing.T, withIndices bool) string {
	t.Helper()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION:   pos,
			gltf.NORMAL:     nrm,
			gltf.TEXCOORD_0: uv,
		},
		Material: gltf.Index(0),
	}
	if withIndices {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2}))
	}
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}}
	doc.Materials = []*gltf.Material{{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 1},
		},
	}}

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save glb: %v", err)
	}
	return path
}

func TestLoadGLTF(t *testing.T) {
	for _, indexed := range []bool{true, false} {
		name := "sequential"
		if indexed {
			name = "indexed"
		}
		t.Run(name, func(t *testing.T) {
			mesh, err := LoadGLB(writeTriangleGLB(t, indexed))
			if err != nil {
				t.Fatalf("LoadGLB: %v", err)
			}
			if len(mesh.Faces) != 1 {
				t.Fatalf("got %d faces, want 1", len(mesh.Faces))
			}

			f := mesh.Faces[0]
			if got := f.Items[1].Vertex; got.X != 1 || got.W != 1 {
				t.Errorf("item 1 vertex: got %+v", got)
			}
			if n := f.Items[0].Normal; n == nil || n.Z != 1 {
				t.Errorf("item 0 normal: got %v", n)
			}
			if tc := f.Items[2].TexCoord; tc == nil || tc.V != 0 {
				t.Errorf("item 2 texcoord should be flipped to v=0, got %+v", tc)
			}

			mat := mesh.Material(f)
			if mat == nil || mat.BaseColor != [4]float64{1, 0, 0, 1} {
				t.Errorf("material: got %+v", mat)
			}
		})
	}
}

func TestLoadGLTFNoTriangles(t *testing.T) {
	doc := gltf.NewDocument()
	path := filepath.Join(t.TempDir(), "empty.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGLTF(path); !errors.Is(err, ErrNoMesh) {
		t.Errorf("got %v, want ErrNoMesh", err)
	}
}
