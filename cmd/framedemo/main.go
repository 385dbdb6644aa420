// Command framedemo runs the frame pipeline against a synthetic animated
// scene and saves the last presented frame as a PNG.
//
// It renders a bouncing circle with an FPS overlay, submitting one scene
// snapshot per display interval. Run with -v to watch the pipeline's
// lifecycle and drop decisions.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/framepipe"
	"github.com/gogpu/framepipe/surface"
)

func main() {
	var (
		width      = flag.Int("width", 800, "frame width")
		height     = flag.Int("height", 600, "frame height")
		duration   = flag.Duration("duration", 3*time.Second, "how long to run")
		output     = flag.String("output", "framedemo.png", "output file")
		configPath = flag.String("config", "", "optional YAML config file")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	framepipe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cfg := framepipe.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Failed to parse config: %v", err)
		}
	}

	display, err := surface.NewImageSurface(*width, *height)
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}

	renderer := newBallRenderer(*width, *height)
	p, err := framepipe.New(cfg, renderer, display)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Start(ctx); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	// Submit one scene snapshot per display interval.
	start := time.Now()
	interval := time.Duration(float64(time.Second) / cfg.TargetFPS)
	ticker := time.NewTicker(interval)
	for now := range ticker.C {
		elapsed := now.Sub(start)
		if elapsed > *duration {
			break
		}
		p.Submit(ballScene{
			T:   elapsed.Seconds(),
			FPS: p.FPS(),
		})
	}
	ticker.Stop()

	if err := p.Stop(); err != nil {
		log.Fatalf("Pipeline error: %v", err)
	}

	if err := savePNG(*output, display.Snapshot()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	stats := p.Stats()
	log.Printf("Demo saved to %s (%dx%d)", *output, *width, *height)
	log.Printf("Presented %d frames (%d redisplays, %d stale, %d evicted, %d abandoned)",
		stats.FramesPresented, stats.FramesRedisplayed, stats.StaleFrames,
		stats.QueueEvictions, stats.AbandonedRequests)
}

// ballScene is the opaque scene state handed to the renderer.
type ballScene struct {
	T   float64 // seconds since start
	FPS float64 // measured display rate at submission time
}

// ballRenderer draws a bouncing circle with a text overlay.
type ballRenderer struct {
	width  int
	height int
}

func newBallRenderer(width, height int) *ballRenderer {
	return &ballRenderer{width: width, height: height}
}

func (r *ballRenderer) RenderFrame(_ context.Context, req framepipe.RenderRequest) (*framepipe.Frame, error) {
	scene, ok := req.Scene.(ballScene)
	if !ok {
		return nil, fmt.Errorf("unexpected scene type %T", req.Scene)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	drawBackground(img)

	// Bounce along both axes.
	radius := 40.0
	cx := bounce(scene.T*220, float64(r.width)-2*radius) + radius
	cy := bounce(scene.T*170, float64(r.height)-2*radius) + radius
	drawCircle(img, cx, cy, radius, color.RGBA{R: 0, G: 200, B: 255, A: 255})

	overlay := fmt.Sprintf("FPS: %.0f  Frame: %d", scene.FPS, req.Index)
	drawLabel(img, overlay, 10, r.height-10)

	return framepipe.NewFrame(req.Index, r.width, r.height, img.Pix), nil
}

// bounce maps t to a position ping-ponging between 0 and limit.
func bounce(t, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	period := 2 * limit
	pos := math.Mod(t, period)
	if pos > limit {
		pos = period - pos
	}
	return pos
}

func drawBackground(img *image.RGBA) {
	bg := color.RGBA{R: 20, G: 20, B: 30, A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = bg.R
		img.Pix[i+1] = bg.G
		img.Pix[i+2] = bg.B
		img.Pix[i+3] = bg.A
	}
}

func drawCircle(img *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	r2 := radius * radius
	minX := int(math.Max(0, cx-radius))
	maxX := int(math.Min(float64(img.Rect.Dx()-1), cx+radius))
	minY := int(math.Max(0, cy-radius))
	maxY := int(math.Min(float64(img.Rect.Dy()-1), cy+radius))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func drawLabel(img *image.RGBA, text string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
