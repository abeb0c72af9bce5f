package scene

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/taigrr/objviewer/pkg/math3d"
)

// World owns the camera, lights and objects of a scene.
//
// Generation is the dirty-tracking contract: it changes after every
// mutation that affects the rendered image (camera setters, adding or
// removing objects and lights, transform changes and MarkDirty) and stays
// the same otherwise.
type World struct {
	mu      sync.RWMutex
	camera  *Camera
	objects []*WorldObject
	lights  []LightSource
	gen     uint64
}

// NewWorld creates an empty world viewed through cam. A nil cam gets
// NewCamera.
func NewWorld(cam *Camera) *World {
	if cam == nil {
		cam = NewCamera()
	}
	return &World{camera: cam}
}

// Camera returns the world camera. Mutating it advances the world
// generation.
func (w *World) Camera() *Camera {
	return w.camera
}

// Generation combines the world and camera counters. Both only grow, so the
// sum changes whenever either does.
func (w *World) Generation() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.gen + w.camera.Generation()
}

// MarkDirty forces the next frame to be rendered.
func (w *World) MarkDirty() {
	w.mu.Lock()
	w.gen++
	w.mu.Unlock()
}

// AddObject appends o to the scene.
func (w *World) AddObject(o *WorldObject) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.objects = append(w.objects, o)
	w.gen++
}

// RemoveObject removes the object with the given id and reports whether it
// was present.
func (w *World) RemoveObject(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.IndexFunc(w.objects, func(o *WorldObject) bool { return o.ID == id })
	if i < 0 {
		return false
	}
	w.objects = slices.Delete(w.objects, i, i+1)
	w.gen++
	return true
}

// SetTransform replaces the model matrix of the object with the given id.
func (w *World) SetTransform(id uuid.UUID, m math3d.Mat4) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.IndexFunc(w.objects, func(o *WorldObject) bool { return o.ID == id })
	if i < 0 || w.objects[i].Model == m {
		return false
	}
	// copy so snapshots taken earlier keep the old transform
	o := *w.objects[i]
	o.Model = m
	w.objects[i] = &o
	w.gen++
	return true
}

// Objects returns a copy of the object list.
func (w *World) Objects() []*WorldObject {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.objects)
}

// AddLight appends a light source.
func (w *World) AddLight(l LightSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lights = append(w.lights, l)
	w.gen++
}

// RemoveLight removes the first light at l's position and reports whether
// one was found.
func (w *World) RemoveLight(l LightSource) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.Index(w.lights, l)
	if i < 0 {
		return false
	}
	w.lights = slices.Delete(w.lights, i, i+1)
	w.gen++
	return true
}

// Lights returns a copy of the light list.
func (w *World) Lights() []LightSource {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.lights)
}

// Snapshot is a consistent, read-only view of the world for one frame.
type Snapshot struct {
	Generation uint64
	Camera     CameraState
	Objects    []*WorldObject
	Lights     []LightSource
}

// Snapshot copies the current state. The returned Generation matches the
// copied state.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	cam := w.camera.State()
	return Snapshot{
		Generation: w.gen + cam.Generation,
		Camera:     cam,
		Objects:    slices.Clone(w.objects),
		Lights:     slices.Clone(w.lights),
	}
}
