// Command outlinedemo renders selected objects of a small scene with an
// outline highlight and writes the frame to a PNG file.
//
// Usage:
//
//	outlinedemo [-config demo.toml] [-renderer software|gpu] [-output out.png]
//
// Flags override values read from the configuration file. Pass
// -print-config to write the effective configuration as TOML.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/postfx"
	"github.com/gogpu/postfx/render"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	var (
		configPath  = flag.String("config", "", "TOML configuration file")
		width       = flag.Int("width", 0, "image width")
		height      = flag.Int("height", 0, "image height")
		output      = flag.String("output", "", "output PNG file")
		rendererArg = flag.String("renderer", "", "renderer: software or gpu")
		strength    = flag.Float64("edge-strength", 0, "outline edge strength")
		glow        = flag.Float64("edge-glow", 0, "outline glow weight")
		thickness   = flag.Float64("edge-thickness", 0, "outline thickness in texels")
		pulse       = flag.Float64("pulse-period", 0, "pulse period in seconds, 0 disables pulsing")
		visible     = flag.String("visible-color", "", "visible edge color, #rrggbb")
		hidden      = flag.String("hidden-color", "", "hidden edge color, #rrggbb")
		pattern     = flag.String("pattern", "", "pattern image tiled over the selection (png, jpeg, bmp, webp) or \"checker\"")
		at          = flag.Float64("time", 0, "animation time in seconds")
		verbose     = flag.Bool("v", false, "debug logging")
		printConfig = flag.Bool("print-config", false, "print the effective configuration and exit")
	)
	flag.Parse()

	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	postfx.SetLogger(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("configuration", "err", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "output":
			cfg.Output = *output
		case "renderer":
			cfg.Renderer = *rendererArg
		case "edge-strength":
			cfg.Outline.EdgeStrength = *strength
		case "edge-glow":
			cfg.Outline.EdgeGlow = *glow
		case "edge-thickness":
			cfg.Outline.EdgeThickness = *thickness
		case "pulse-period":
			cfg.Outline.PulsePeriod = *pulse
		case "visible-color":
			cfg.Outline.VisibleEdgeColor = *visible
		case "hidden-color":
			cfg.Outline.HiddenEdgeColor = *hidden
		case "pattern":
			cfg.Outline.Pattern = *pattern
		case "time":
			cfg.Outline.Time = *at
		}
	})
	if err := cfg.validate(); err != nil {
		logger.Error("configuration", "err", err)
		os.Exit(2)
	}
	if *printConfig {
		b, err := cfg.encode()
		if err != nil {
			logger.Error("encode configuration", "err", err)
			os.Exit(1)
		}
		os.Stdout.Write(b)
		return
	}

	if err := run(cfg); err != nil {
		logger.Error("render failed", "err", err)
		os.Exit(1)
	}
}

// openRenderer creates the configured renderer. A GPU that cannot be
// opened falls back to the software renderer.
func openRenderer(cfg Config) (render.Renderer, func()) {
	if cfg.Renderer == "gpu" {
		r, closeFn, err := openGPU(cfg.Width, cfg.Height)
		if err == nil {
			return r, closeFn
		}
		logger.Warn("gpu unavailable, using software renderer", "err", err)
	}
	return render.NewSoftwareRenderer(cfg.Width, cfg.Height), func() {}
}

func run(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	colors, err := cfg.colors()
	if err != nil {
		return err
	}

	r, closeRenderer := openRenderer(cfg)
	defer closeRenderer()

	r.SetClearColor(colors.background, 1)

	d := newDemoScene(float32(cfg.Width) / float32(cfg.Height))

	// The animation clock starts at a fixed instant and is moved to the
	// requested time before the frame is drawn.
	epoch := time.Unix(0, 0)
	elapsed := time.Duration(0)
	clock := func() time.Time { return epoch.Add(elapsed) }

	composer, err := postfx.NewComposer(r, postfx.WithClock(clock))
	if err != nil {
		return err
	}
	defer composer.Dispose()

	opts := []postfx.OutlineOption{
		postfx.WithDownSampleRatio(cfg.Outline.DownSampleRatio),
		postfx.WithPulseClock(clock),
	}
	if cfg.Outline.Pattern != "" {
		tile := checkerPattern(patternTileSize, 8)
		if cfg.Outline.Pattern != checkerPatternName {
			if tile, err = decodePattern(cfg.Outline.Pattern); err != nil {
				return err
			}
		}
		s, err := uploadPattern(r, tile)
		if err != nil {
			return err
		}
		defer s.Dispose()
		opts = append(opts, postfx.WithPatternTexture(s))
	}

	outline := postfx.NewOutlinePass(r, image.Pt(cfg.Width, cfg.Height), d.scene, d.camera, d.selected, opts...)
	if err := outline.Err(); err != nil {
		return fmt.Errorf("outline pass: %w", err)
	}
	defer outline.Dispose()
	outline.VisibleEdgeColor = colors.visibleEdge
	outline.HiddenEdgeColor = colors.hiddenEdge
	outline.EdgeStrength = cfg.Outline.EdgeStrength
	outline.EdgeGlow = cfg.Outline.EdgeGlow
	outline.EdgeThickness = cfg.Outline.EdgeThickness
	outline.PulsePeriod = cfg.Outline.PulsePeriod

	output := postfx.NewShaderPass(postfx.CopyShader(), "")
	output.RenderToScreen = true

	composer.AddPass(postfx.NewRenderPass(d.scene, d.camera))
	composer.AddPass(outline)
	composer.AddPass(output)

	elapsed = time.Duration(cfg.Outline.Time * float64(time.Second))
	start := time.Now()
	if err := composer.Render(cfg.Outline.Time); err != nil {
		return err
	}
	logger.Info("frame rendered", "renderer", fmt.Sprintf("%T", r), "elapsed", time.Since(start),
		"pulse", outline.PulseWeight())

	return writeFrame(r, cfg.Output)
}

// writeFrame reads the screen back and encodes it as PNG.
func writeFrame(r render.Renderer, path string) error {
	reader, ok := r.(render.PixelReader)
	if !ok {
		return fmt.Errorf("renderer %T cannot read pixels", r)
	}
	img, err := reader.ReadPixels(nil)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("frame written", "path", path, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}
