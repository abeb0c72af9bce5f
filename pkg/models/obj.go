package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/objviewer/pkg/math3d"
)

var (
	// ErrInvalidIndex is returned for a zero or out-of-range face index.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrMalformedLine is returned when a statement has missing or non-numeric fields.
	ErrMalformedLine = errors.New("malformed line")
)

// ParseError reports the line a parse failure happened on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadOBJ opens and parses a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseOBJ reads the v, vt, vn and f statements of an OBJ stream. Face
// indices are resolved against the lists as they stand when the face is
// read: positive indices are 1-based, negative ones count back from the
// current end. Other statements are ignored.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("")
	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			err = parseVertex(mesh, fields[1:])
		case "vt":
			err = parseTexCoord(mesh, fields[1:])
		case "vn":
			err = parseNormal(mesh, fields[1:])
		case "f":
			err = parseFace(mesh, fields[1:])
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrNoMesh
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, minN, maxN int) ([]float64, error) {
	if len(fields) < minN {
		return nil, fmt.Errorf("%w: want at least %d values, got %d", ErrMalformedLine, minN, len(fields))
	}
	if len(fields) > maxN {
		fields = fields[:maxN]
	}
	out := make([]float64, len(fields))
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedLine, s)
		}
		out[i] = f
	}
	return out, nil
}

func parseVertex(mesh *Mesh, fields []string) error {
	vals, err := parseFloats(fields, 3, 4)
	if err != nil {
		return err
	}
	v := Vertex{X: vals[0], Y: vals[1], Z: vals[2], W: 1}
	if len(vals) == 4 {
		v.W = vals[3]
	}
	mesh.Vertices = append(mesh.Vertices, v)
	return nil
}

func parseTexCoord(mesh *Mesh, fields []string) error {
	vals, err := parseFloats(fields, 1, 3)
	if err != nil {
		return err
	}
	var t TexCoord
	t.U = vals[0]
	if len(vals) > 1 {
		t.V = vals[1]
	}
	if len(vals) > 2 {
		t.W = vals[2]
	}
	mesh.TexCoords = append(mesh.TexCoords, t)
	return nil
}

func parseNormal(mesh *Mesh, fields []string) error {
	vals, err := parseFloats(fields, 3, 3)
	if err != nil {
		return err
	}
	mesh.Normals = append(mesh.Normals, math3d.V3(vals[0], vals[1], vals[2]))
	return nil
}

func parseFace(mesh *Mesh, fields []string) error {
	face := Face{Items: make([]FaceItem, 0, len(fields)), Material: -1}

	for _, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) > 3 || parts[0] == "" {
			return fmt.Errorf("%w: face item %q", ErrMalformedLine, field)
		}

		vi, err := resolveIndex(parts[0], len(mesh.Vertices))
		if err != nil {
			return err
		}
		item := FaceItem{Vertex: mesh.Vertices[vi]}

		if len(parts) > 1 && parts[1] != "" {
			ti, err := resolveIndex(parts[1], len(mesh.TexCoords))
			if err != nil {
				return err
			}
			tc := mesh.TexCoords[ti]
			item.TexCoord = &tc
		}
		if len(parts) > 2 && parts[2] != "" {
			ni, err := resolveIndex(parts[2], len(mesh.Normals))
			if err != nil {
				return err
			}
			n := mesh.Normals[ni]
			item.Normal = &n
		}

		face.Items = append(face.Items, item)
	}

	if len(face.Items) < 3 {
		return nil
	}
	mesh.Faces = append(mesh.Faces, face)
	return nil
}

// resolveIndex converts an OBJ index into a 0-based slice index for a list
// currently holding n elements.
func resolveIndex(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLine, s)
	}

	var i int
	switch {
	case idx > 0:
		i = idx - 1
	case idx < 0:
		i = n + idx
	default:
		return 0, fmt.Errorf("%w: 0", ErrInvalidIndex)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, idx, n)
	}
	return i, nil
}
