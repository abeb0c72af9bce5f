package models

import "strings"

// Unit cube spanning (0,0,0)-(1,1,1); faces wind counter-clockwise seen from outside.
const cubeOBJ = `
v 0 0 0
v 0 0 1
v 0 1 0
v 0 1 1
v 1 0 0
v 1 0 1
v 1 1 0
v 1 1 1
f 1 2 4 3
f 3 4 8 7
f 7 8 6 5
f 5 6 2 1
f 3 7 5 1
f 2 6 8 4
`

// Square pyramid on the unit base with its apex at height 1.
const pyramidOBJ = `
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
v 0.5 1 0.5
f 1 2 3 4
f 1 5 2
f 2 5 3
f 3 5 4
f 4 5 1
`

// Cube returns a closed unit cube.
func Cube() *Mesh {
	return mustParse("cube", cubeOBJ)
}

// Pyramid returns a closed square pyramid.
func Pyramid() *Mesh {
	return mustParse("pyramid", pyramidOBJ)
}

// Builtin returns a built-in mesh by name, or nil.
func Builtin(name string) *Mesh {
	switch name {
	case "cube":
		return Cube()
	case "pyramid":
		return Pyramid()
	}
	return nil
}

func mustParse(name, src string) *Mesh {
	m, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		panic("models: built-in " + name + ": " + err.Error())
	}
	m.Name = name
	return m
}
