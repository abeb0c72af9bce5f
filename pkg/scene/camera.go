// Package scene holds the mutable state a frame is rendered from: the
// camera, point lights and mesh objects. Every mutation that changes what
// a frame would look like advances a generation counter so renderers can
// skip unchanged frames.
package scene

import (
	"math"
	"sync"

	"github.com/taigrr/objviewer/pkg/math3d"
)

// MaxPitch limits Turn so the front vector never becomes parallel to up.
const MaxPitch = 89 * math.Pi / 180

// Camera is a look-direction camera with a fixed (0,1,0) up vector.
// Its view, projection and viewport matrices are cached and rebuilt only
// after a setter changes the inputs they depend on.
type Camera struct {
	mu sync.Mutex

	position math3d.Vec3
	front    math3d.Vec3
	speed    float64
	width    int
	height   int
	near     float64
	far      float64
	fov      float64

	// yaw and pitch mirror front for Turn
	yaw, pitch float64

	gen uint64

	view, proj, viewport                math3d.Mat4
	viewDirty, projDirty, viewportDirty bool
}

// NewCamera creates a camera at the origin looking down +X into a 640x480
// window with a 60 degree field of view.
func NewCamera() *Camera {
	c := &Camera{
		position: math3d.V3(0, 0, 0),
		speed:    2,
		width:    640,
		height:   480,
		near:     1,
		far:      1000,
		fov:      math.Pi / 3,
	}
	c.setFront(math3d.V3(1, 0, 0))
	c.viewDirty, c.projDirty, c.viewportDirty = true, true, true
	return c
}

func (c *Camera) touch() {
	c.gen++
}

// Generation increases on every effective mutation.
func (c *Camera) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetPosition moves the camera. It reports whether the position changed.
func (c *Camera) SetPosition(p math3d.Vec3) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == c.position {
		return false
	}
	c.position = p
	c.viewDirty = true
	c.touch()
	return true
}

// SetFront sets the look direction. Callers keep it normalized.
func (c *Camera) SetFront(f math3d.Vec3) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f == c.front {
		return false
	}
	c.setFront(f)
	c.viewDirty = true
	c.touch()
	return true
}

func (c *Camera) setFront(f math3d.Vec3) {
	c.front = f
	n := f.Normalize()
	c.yaw = math.Atan2(n.Z, n.X)
	c.pitch = math.Asin(math.Max(-1, math.Min(1, n.Y)))
}

// SetSpeed sets the movement speed in world units per second.
func (c *Camera) SetSpeed(s float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == c.speed {
		return false
	}
	c.speed = s
	c.touch()
	return true
}

// SetWindowSize sets the pixel size of the target surface.
func (c *Camera) SetWindowSize(width, height int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width == c.width && height == c.height {
		return false
	}
	c.width, c.height = width, height
	c.projDirty = true
	c.viewportDirty = true
	c.touch()
	return true
}

// SetClipPlanes sets the near and far projection planes.
func (c *Camera) SetClipPlanes(near, far float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if near == c.near && far == c.far {
		return false
	}
	c.near, c.far = near, far
	c.projDirty = true
	c.touch()
	return true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fov == c.fov {
		return false
	}
	c.fov = fov
	c.projDirty = true
	c.touch()
	return true
}

// Move translates the camera along its front, right and world up axes,
// scaled by speed and dt seconds.
func (c *Camera) Move(forward, right, up, dt float64) bool {
	c.mu.Lock()
	front := c.front
	step := c.speed * dt
	pos := c.position
	c.mu.Unlock()

	side := front.Cross(math3d.Up()).Normalize()
	pos = pos.
		Add(front.Scale(forward * step)).
		Add(side.Scale(right * step)).
		Add(math3d.Up().Scale(up * step))
	return c.SetPosition(pos)
}

// Turn rotates the look direction by yaw and pitch deltas in radians.
// Pitch is clamped to ±MaxPitch.
func (c *Camera) Turn(dyaw, dpitch float64) bool {
	c.mu.Lock()
	yaw := c.yaw + dyaw
	pitch := math.Max(-MaxPitch, math.Min(MaxPitch, c.pitch+dpitch))
	c.mu.Unlock()

	front := math3d.V3(
		math.Cos(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw)*math.Cos(pitch),
	)
	return c.SetFront(front.Normalize())
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) bool {
	c.mu.Lock()
	dir := target.Sub(c.position).Normalize()
	c.mu.Unlock()
	if dir.IsZero() {
		return false
	}
	return c.SetFront(dir)
}

func (c *Camera) Position() math3d.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *Camera) Front() math3d.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front
}

// Target is position + front.
func (c *Camera) Target() math3d.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position.Add(c.front)
}

func (c *Camera) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// WindowSize returns the surface size in pixels.
func (c *Camera) WindowSize() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// ClipPlanes returns the near and far planes.
func (c *Camera) ClipPlanes() (near, far float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near, c.far
}

func (c *Camera) FOV() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

// ViewMatrix returns the cached look-at matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix()
}

// ProjectionMatrix returns the cached perspective matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projMatrix()
}

// ViewportMatrix returns the cached NDC to pixel matrix.
func (c *Camera) ViewportMatrix() math3d.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewportMatrix()
}

func (c *Camera) viewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.view = math3d.LookAt(c.position, c.position.Add(c.front), math3d.Up())
		c.viewDirty = false
	}
	return c.view
}

func (c *Camera) projMatrix() math3d.Mat4 {
	if c.projDirty {
		aspect := 1.0
		if c.height > 0 {
			aspect = float64(c.width) / float64(c.height)
		}
		c.proj = math3d.Perspective(c.fov, aspect, c.near, c.far)
		c.projDirty = false
	}
	return c.proj
}

func (c *Camera) viewportMatrix() math3d.Mat4 {
	if c.viewportDirty {
		c.viewport = math3d.Viewport(float64(c.width), float64(c.height))
		c.viewportDirty = false
	}
	return c.viewport
}

// CameraState is an immutable copy of the camera and its matrices.
type CameraState struct {
	Generation uint64
	Position   math3d.Vec3
	Front      math3d.Vec3
	Width      int
	Height     int
	Near, Far  float64
	FOV        float64
	View       math3d.Mat4
	Projection math3d.Mat4
	Viewport   math3d.Mat4
}

// State captures the camera under one lock so the matrices agree with the
// fields.
func (c *Camera) State() CameraState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CameraState{
		Generation: c.gen,
		Position:   c.position,
		Front:      c.front,
		Width:      c.width,
		Height:     c.height,
		Near:       c.near,
		Far:        c.far,
		FOV:        c.fov,
		View:       c.viewMatrix(),
		Projection: c.projMatrix(),
		Viewport:   c.viewportMatrix(),
	}
}
