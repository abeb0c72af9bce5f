package render

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/objviewer/pkg/models"
	"github.com/taigrr/objviewer/pkg/scene"
)

// Stats are cumulative counters since the renderer was created.
type Stats struct {
	Frames         uint64 // frames actually rasterized
	Skipped        uint64 // RenderFrame calls answered from the previous frame
	FacesProcessed uint64 // faces fed to the pipeline
	FacesCulled    uint64 // faces the pipeline rejected
	ObjectsCulled  uint64 // objects skipped by the frustum test
	Samples        uint64 // samples submitted to the depth buffer
}

// Renderer draws a World into a Framebuffer.
type Renderer struct {
	mu     sync.Mutex
	world  *scene.World
	opts   Options
	shader Shader
	depth  *DepthBuffer
	fb     *Framebuffer

	textures map[*models.Material]ColorMap

	lastGen  uint64
	rendered bool
	// camera generation of the last depth buffer resize attempt
	sizeGen uint64

	frames, skipped       atomic.Uint64
	processed, culled     atomic.Uint64
	objectsCulled, points atomic.Uint64
}

// NewRenderer creates a renderer for world. The depth buffer is allocated
// once at the configured capacity.
func NewRenderer(world *scene.World, opts Options) (*Renderer, error) {
	shader, err := NewShader(opts)
	if err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 64
	}

	r := &Renderer{
		world:    world,
		opts:     opts,
		shader:   shader,
		depth:    NewDepthBuffer(opts.CapacityWidth, opts.CapacityHeight, opts.Blank),
		fb:       NewFramebuffer(0, 0),
		textures: make(map[*models.Material]ColorMap),
	}
	cam := world.Camera()
	w, h := cam.WindowSize()
	r.depth.Resize(w, h)
	r.sizeGen = cam.Generation()
	return r, nil
}

// SetShader replaces the shader; the next RenderFrame redraws.
func (r *Renderer) SetShader(s Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shader = s
	r.rendered = false
}

// Resize sets the output size. Sizes beyond the depth buffer capacity are
// refused and leave the current size in place.
func (r *Renderer) Resize(width, height int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.depth.Resize(width, height) {
		return false
	}
	r.world.Camera().SetWindowSize(width, height)
	return true
}

// Stats returns a copy of the counters.
func (r *Renderer) Stats() Stats {
	return Stats{
		Frames:         r.frames.Load(),
		Skipped:        r.skipped.Load(),
		FacesProcessed: r.processed.Load(),
		FacesCulled:    r.culled.Load(),
		ObjectsCulled:  r.objectsCulled.Load(),
		Samples:        r.points.Load(),
	}
}

// RenderFrame draws the current world. If the world generation has not
// changed since the last completed frame, no work is done and the previous
// framebuffer is returned as is.
//
// The returned framebuffer is owned by the renderer and stays valid until
// the next call.
func (r *Renderer) RenderFrame(ctx context.Context) (*Framebuffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.world.Snapshot()
	if r.rendered && snap.Generation == r.lastGen {
		r.skipped.Add(1)
		Logger().Debug("frame unchanged", "generation", snap.Generation)
		return r.fb, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	r.rendered = false
	// A refused size is retried only after the camera changes again.
	if w, h := r.depth.Size(); (w != snap.Camera.Width || h != snap.Camera.Height) && snap.Camera.Generation != r.sizeGen {
		r.depth.Resize(snap.Camera.Width, snap.Camera.Height)
		r.sizeGen = snap.Camera.Generation
	}
	r.depth.Invalidate()

	pipe := NewPipeline(snap, r.opts.BaseColor, r.opts.ScreenMirror, r.materialTextures(snap.Objects))
	frame := &Frame{Eye: snap.Camera.Position, Lights: snap.Lights}
	objects := r.visibleObjects(snap)

	var err error
	if r.opts.Workers == 1 {
		err = r.renderSequential(ctx, pipe, frame, objects)
	} else {
		err = r.renderParallel(ctx, pipe, frame, objects)
	}
	if err != nil {
		return nil, fmt.Errorf("render frame: %w", err)
	}

	w, h := r.depth.Size()
	r.fb.Resize(w, h)
	r.depth.Transfer(func(x, y int, c Color) {
		r.fb.Pixels[y*w+x] = c
	})

	r.lastGen = snap.Generation
	r.rendered = true
	r.frames.Add(1)
	Logger().Debug("frame rendered",
		"generation", snap.Generation,
		"objects", len(objects),
		"elapsed", time.Since(start))
	return r.fb, nil
}

func (r *Renderer) visibleObjects(snap scene.Snapshot) []*scene.WorldObject {
	out := make([]*scene.WorldObject, 0, len(snap.Objects))
	frustum := NewFrustumFromMatrix(snap.Camera.Projection.Mul(snap.Camera.View))
	for _, obj := range snap.Objects {
		if obj.Mesh == nil {
			continue
		}
		if r.opts.FrustumCull {
			lo, hi := obj.WorldBounds()
			if !frustum.IntersectAABB(AABB{Min: lo, Max: hi}) {
				r.objectsCulled.Add(1)
				continue
			}
		}
		out = append(out, obj)
	}
	return out
}

// materialTextures converts material images once and returns a read-only
// lookup for the pipeline.
func (r *Renderer) materialTextures(objects []*scene.WorldObject) func(*models.Material) ColorMap {
	for _, obj := range objects {
		if obj.Mesh == nil {
			continue
		}
		for i := range obj.Mesh.Materials {
			mat := &obj.Mesh.Materials[i]
			if _, ok := r.textures[mat]; ok || mat.BaseMap == nil {
				continue
			}
			r.textures[mat] = TextureFromImage(mat.BaseMap)
		}
	}
	textures := r.textures
	return func(m *models.Material) ColorMap {
		return textures[m]
	}
}

// countingSink counts samples locally so workers touch the shared counter
// once per batch.
type countingSink struct {
	Sink
	n uint64
}

func (s *countingSink) AddPoint(x, y int, depth float64, c Color) {
	s.n++
	s.Sink.AddPoint(x, y, depth, c)
}

func (r *Renderer) renderSequential(ctx context.Context, pipe *Pipeline, frame *Frame, objects []*scene.WorldObject) error {
	sink := &countingSink{Sink: r.depth}
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return err
		}
		visible := 0
		for face := range pipe.Faces(obj) {
			visible++
			r.shader.Shade(frame, &face, sink)
		}
		total := len(obj.Mesh.Faces)
		r.processed.Add(uint64(total))
		r.culled.Add(uint64(total - visible))
	}
	r.points.Add(sink.n)
	return nil
}

func (r *Renderer) renderParallel(ctx context.Context, pipe *Pipeline, frame *Frame, objects []*scene.WorldObject) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	shader := r.shader

	for _, obj := range objects {
		faces := obj.Mesh.Faces
		for lo := 0; lo < len(faces); lo += r.opts.BatchSize {
			batch := faces[lo:min(lo+r.opts.BatchSize, len(faces))]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				sink := &countingSink{Sink: r.depth}
				var culled uint64
				for _, f := range batch {
					face, reject := pipe.Process(obj, f)
					if reject != Visible {
						culled++
						continue
					}
					shader.Shade(frame, &face, sink)
				}
				r.processed.Add(uint64(len(batch)))
				r.culled.Add(culled)
				r.points.Add(sink.n)
				return nil
			})
		}
	}
	return g.Wait()
}
