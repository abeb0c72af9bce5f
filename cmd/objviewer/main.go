// objviewer - software rendered 3D model viewer
// Renders OBJ and GLB models with a CPU rasterizer, either once to an image
// file or interactively in the terminal.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	R/F         - Move up/down
//	Arrows      - Turn
//	M           - Cycle shading mode
//	?           - Toggle stats overlay
//	Esc/Q       - Quit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/taigrr/objviewer/pkg/math3d"
	"github.com/taigrr/objviewer/pkg/models"
	"github.com/taigrr/objviewer/pkg/render"
	"github.com/taigrr/objviewer/pkg/scene"
)

var (
	shading      string
	lineAlgo     string
	width        int
	height       int
	outPath      string
	outScale     int
	texturePath  string
	normalPath   string
	specularPath string
	checker      bool
	targetFPS    int
	bgColor      string
	mirror       bool
	workers      int
	label        bool
	verbose      bool
)

const controlsHelp = `Controls:
  W/S/A/D     - Move
  R/F         - Up/down
  Arrows      - Turn
  M           - Cycle shading mode
  ?           - Toggle stats overlay
  Esc/Q       - Quit`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objviewer [model.obj|model.glb|cube|pyramid]",
		Short: "Software rendered 3D model viewer",
		Long:  "Renders OBJ and glTF models with a CPU rasterizer, once to an image file or interactively in the terminal.\n\n" + controlsHelp,
		Example: `  objviewer teapot.obj
  objviewer --mode textured --checker cube
  objviewer --out frame.png --width 800 --height 600 --label pyramid`,
		Args: cobra.MaximumNArgs(1),
		PreRun: func(*cobra.Command, []string) {
			if verbose {
				render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			model := "cube"
			if len(args) > 0 {
				model = args[0]
			}
			return run(cmd.Context(), model)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&shading, "mode", "m", "phong", "Shading mode (stroke, flat, lambert, phong, textured)")
	f.StringVar(&lineAlgo, "line", "dda", "Line algorithm (dda, bresenham)")
	f.IntVar(&width, "width", 640, "Output width in pixels (file output)")
	f.IntVar(&height, "height", 480, "Output height in pixels (file output)")
	f.StringVarP(&outPath, "out", "o", "", "Render one frame to a PNG or BMP file instead of the terminal")
	f.IntVar(&outScale, "scale", 1, "Integer upscale factor for file output")
	f.StringVar(&texturePath, "texture", "", "Color map image for textured mode")
	f.StringVar(&normalPath, "normal", "", "Normal map image for textured mode")
	f.StringVar(&specularPath, "specular", "", "Specular map image for textured mode")
	f.BoolVar(&checker, "checker", false, "Use a checkerboard color map when no texture is given")
	f.IntVar(&targetFPS, "fps", 30, "Target FPS")
	f.StringVar(&bgColor, "bg", "255,255,255", "Background color (R,G,B)")
	f.BoolVar(&mirror, "mirror", false, "Turn the image by 180 degrees")
	f.IntVarP(&workers, "workers", "j", runtime.GOMAXPROCS(0), "Shading goroutines (1 renders sequentially)")
	f.BoolVar(&label, "label", false, "Draw a stats label into file output")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log renderer activity to stderr")
	return cmd
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, model string) error {
	if targetFPS <= 0 {
		return fmt.Errorf("invalid --fps %d", targetFPS)
	}
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	mesh, err := loadMesh(model)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	world := buildWorld(mesh)
	if outPath != "" {
		return renderToFile(ctx, world, opts, mesh)
	}
	return runInteractive(ctx, world, opts, mesh)
}

func buildOptions() (render.Options, error) {
	opts := render.DefaultOptions()

	mode, err := render.ParseShadingMode(shading)
	if err != nil {
		return opts, err
	}
	line, err := render.ParseLineAlgorithm(lineAlgo)
	if err != nil {
		return opts, err
	}
	opts.Shading = mode
	opts.Line = line
	opts.Workers = workers
	opts.ScreenMirror = mirror

	bg, err := parseColor(bgColor)
	if err != nil {
		return opts, fmt.Errorf("parse --bg: %w", err)
	}
	opts.Blank = bg

	if texturePath != "" {
		tex, err := render.LoadTexture(texturePath)
		if err != nil {
			return opts, fmt.Errorf("load texture: %w", err)
		}
		opts.Maps.Color = tex
	} else if checker {
		opts.Maps.Color = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}
	if normalPath != "" {
		img, err := render.LoadImage(normalPath)
		if err != nil {
			return opts, fmt.Errorf("load normal map: %w", err)
		}
		opts.Maps.Normal = render.ImageNormalMap{Texture: render.TextureFromImage(img)}
	}
	if specularPath != "" {
		img, err := render.LoadImage(specularPath)
		if err != nil {
			return opts, fmt.Errorf("load specular map: %w", err)
		}
		opts.Maps.Specular = render.ImageSpecularMap{Texture: render.TextureFromImage(img)}
	}
	return opts, nil
}

// parseColor reads an "R,G,B" triple of 0..255 integers.
func parseColor(s string) (render.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.Color{}, fmt.Errorf("color %q is not R,G,B", s)
	}
	var c [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		c[i] = uint8(v)
	}
	return render.RGB(c[0], c[1], c[2]), nil
}

func loadMesh(model string) (*models.Mesh, error) {
	switch strings.ToLower(filepath.Ext(model)) {
	case ".obj":
		return models.LoadOBJ(model)
	case ".glb":
		return models.LoadGLB(model)
	case ".gltf":
		return models.LoadGLTF(model)
	}
	if m := models.Builtin(model); m != nil {
		return m, nil
	}
	return nil, fmt.Errorf("unsupported model %q (use .obj, .glb, cube or pyramid)", model)
}

// buildWorld centers the mesh at the origin and places the camera and a
// light outside its bounds.
func buildWorld(mesh *models.Mesh) *scene.World {
	mesh.CalculateBounds()
	size := mesh.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	if extent <= 0 {
		extent = 1
	}

	obj := scene.NewObject(mesh)
	obj.Model = math3d.Translate(mesh.Center().Negate())

	cam := scene.NewCamera()
	dist := 2 * extent
	cam.SetPosition(math3d.V3(1, 0.8, 1.3).Normalize().Scale(dist))
	cam.LookAt(math3d.V3(0, 0, 0))
	cam.SetClipPlanes(0.05*extent, 20*dist)
	cam.SetSpeed(extent)

	world := scene.NewWorld(cam)
	world.AddObject(obj)
	world.AddLight(scene.NewLight(dist, 2*dist, 1.5*dist))
	return world
}

func renderToFile(ctx context.Context, world *scene.World, opts render.Options, mesh *models.Mesh) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid output size %dx%d", width, height)
	}
	world.Camera().SetWindowSize(width, height)
	opts.CapacityWidth, opts.CapacityHeight = width, height

	r, err := render.NewRenderer(world, opts)
	if err != nil {
		return err
	}

	start := time.Now()
	fb, err := r.RenderFrame(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	stats := r.Stats()
	if label {
		text := fmt.Sprintf("%s %s %d faces %v", mesh.Name, opts.Shading, len(mesh.Faces), elapsed.Round(time.Millisecond))
		fb.DrawLabel(2, 2, text, render.ColorWhite, render.RGB(0, 0, 0))
	}

	if err := fb.Save(outPath, outScale); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	lipgloss.Println(titleStyle.Render("Wrote "+outPath) + dimStyle.Render(p.Sprintf(" %dx%d in %v", fb.Width, fb.Height, elapsed.Round(time.Microsecond))))
	lipgloss.Println(statLine(p, "faces", "%d processed, %d culled", stats.FacesProcessed, stats.FacesCulled))
	lipgloss.Println(statLine(p, "samples", "%d", stats.Samples))
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFFF"))
	keyStyle   = lipgloss.NewStyle().Width(10).PaddingLeft(2).Foreground(lipgloss.Color("#AFAFAF"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// statLine formats one summary row with locale digit grouping.
func statLine(p *message.Printer, key, format string, args ...any) string {
	return keyStyle.Render(key+":") + p.Sprintf(format, args...)
}
