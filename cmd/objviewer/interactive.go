package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/objviewer/pkg/models"
	"github.com/taigrr/objviewer/pkg/render"
	"github.com/taigrr/objviewer/pkg/scene"
)

// Axis is one input channel whose velocity decays back to zero with a
// critically damped spring after each key press.
type Axis struct {
	Velocity float64
	spring   harmonica.Spring
	accel    float64
}

// NewAxis creates an axis updated fps times per second.
func NewAxis(fps int) Axis {
	return Axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update returns the current velocity and moves it one step toward zero.
func (a *Axis) Update() float64 {
	v := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	if math.Abs(a.Velocity) < restVelocity && math.Abs(a.accel) < restVelocity {
		a.Velocity, a.accel = 0, 0
	}
	return v
}

// Controls holds the movement and turn axes driven by the keyboard.
type Controls struct {
	Forward, Right, Up Axis
	Yaw, Pitch         Axis
}

func NewControls(fps int) *Controls {
	return &Controls{
		Forward: NewAxis(fps),
		Right:   NewAxis(fps),
		Up:      NewAxis(fps),
		Yaw:     NewAxis(fps),
		Pitch:   NewAxis(fps),
	}
}

// Apply advances every axis and moves the camera by dt seconds. The camera
// only reports a change, and so only dirties the world, while an axis is
// still moving.
func (c *Controls) Apply(cam *scene.Camera, dt float64) {
	f, r, u := c.Forward.Update(), c.Right.Update(), c.Up.Update()
	if f != 0 || r != 0 || u != 0 {
		cam.Move(f, r, u, dt)
	}
	yaw, pitch := c.Yaw.Update(), c.Pitch.Update()
	if yaw != 0 || pitch != 0 {
		cam.Turn(yaw*dt, pitch*dt)
	}
}

const (
	restVelocity = 1e-3
	moveImpulse  = 2.0
	turnImpulse  = 1.5
)

func runInteractive(ctx context.Context, world *scene.World, opts render.Options, mesh *models.Mesh) error {
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	// Each cell holds two pixel rows.
	world.Camera().SetWindowSize(cols, rows*2)

	r, err := render.NewRenderer(world, opts)
	if err != nil {
		return err
	}

	controls := NewControls(targetFPS)
	cam := world.Camera()
	mode := opts.Shading
	showHUD := false
	hud := NewHUD(mesh.Name, len(mesh.Faces))

	ticker := time.NewTicker(time.Second / time.Duration(targetFPS))
	defer ticker.Stop()
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-term.Events():
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				cols, rows = ev.Width, ev.Height
				term.Erase()
				term.Resize(cols, rows)
				if !r.Resize(cols, rows*2) {
					render.Logger().Warn("window larger than depth buffer", "cols", cols, "rows", rows)
				}

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "q", "ctrl+c"):
					return nil
				case ev.MatchString("w"):
					controls.Forward.Velocity += moveImpulse
				case ev.MatchString("s"):
					controls.Forward.Velocity -= moveImpulse
				case ev.MatchString("d"):
					controls.Right.Velocity += moveImpulse
				case ev.MatchString("a"):
					controls.Right.Velocity -= moveImpulse
				case ev.MatchString("r"):
					controls.Up.Velocity += moveImpulse
				case ev.MatchString("f"):
					controls.Up.Velocity -= moveImpulse
				case ev.MatchString("right"):
					controls.Yaw.Velocity += turnImpulse
				case ev.MatchString("left"):
					controls.Yaw.Velocity -= turnImpulse
				case ev.MatchString("up"):
					controls.Pitch.Velocity += turnImpulse
				case ev.MatchString("down"):
					controls.Pitch.Velocity -= turnImpulse
				case ev.MatchString("m"):
					mode = (mode + 1) % (render.ShadeTextured + 1)
					o := opts
					o.Shading = mode
					shader, err := render.NewShader(o)
					if err != nil {
						return err
					}
					r.SetShader(shader)
				case ev.MatchString("?", "shift+/"):
					showHUD = !showHUD
					world.MarkDirty()
				}
			}

		case now := <-ticker.C:
			dt := min(now.Sub(lastFrame).Seconds(), 0.1)
			lastFrame = now
			controls.Apply(cam, dt)

			before := r.Stats().Frames
			fb, err := r.RenderFrame(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			stats := r.Stats()
			hud.Update(stats)
			if showHUD && hud.Draw(fb, mode, stats.Frames != before) {
				world.MarkDirty()
			}

			term.Draw(fb)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// HUD summarizes the model and renderer activity for the overlay.
type HUD struct {
	name    string
	faces   int
	fps     float64
	frames  uint64
	skipped uint64
	since   time.Time
	last    render.Stats
	// label currently in the framebuffer
	drawn string
}

func NewHUD(name string, faces int) *HUD {
	return &HUD{name: name, faces: faces, since: time.Now()}
}

// Update recomputes the rendered frame rate about once a second.
func (h *HUD) Update(s render.Stats) {
	elapsed := time.Since(h.since)
	if elapsed < time.Second {
		return
	}
	h.fps = float64(s.Frames-h.last.Frames) / elapsed.Seconds()
	h.frames, h.skipped = s.Frames, s.Skipped
	h.last = s
	h.since = time.Now()
}

func (h *HUD) String(mode render.ShadingMode) string {
	return fmt.Sprintf("%s %d faces %s %.0f fps (%d drawn, %d reused)",
		h.name, h.faces, mode, h.fps, h.frames, h.skipped)
}

// Draw writes the overlay into fb. A reused frame still holds the previous
// label, and a shorter one drawn over it would leave part of it behind. So a
// changed label on a reused frame is not drawn and Draw reports that a fresh
// frame is needed.
func (h *HUD) Draw(fb *render.Framebuffer, mode render.ShadingMode, fresh bool) (redraw bool) {
	text := h.String(mode)
	if !fresh && text != h.drawn {
		return true
	}
	fb.DrawLabel(1, 1, text, render.ColorWhite, render.RGB(0, 0, 0))
	h.drawn = text
	return false
}
