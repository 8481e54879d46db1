package main

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx"
	"github.com/gogpu/postfx/render"
)

// Config is the demo configuration, read from a TOML file and overridden
// by flags.
type Config struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Output string `toml:"output"`

	// Renderer is "software" or "gpu".
	Renderer string `toml:"renderer"`

	// Background is the clear color of the scene as a hex triplet.
	Background string `toml:"background"`

	Outline OutlineConfig `toml:"outline"`
}

// OutlineConfig holds the outline pass parameters.
type OutlineConfig struct {
	EdgeStrength    float64 `toml:"edge_strength"`
	EdgeGlow        float64 `toml:"edge_glow"`
	EdgeThickness   float64 `toml:"edge_thickness"`
	PulsePeriod     float64 `toml:"pulse_period"`
	DownSampleRatio float64 `toml:"down_sample_ratio"`

	VisibleEdgeColor string `toml:"visible_edge_color"`
	HiddenEdgeColor  string `toml:"hidden_edge_color"`

	// Pattern is an image tiled over the selected objects. PNG, JPEG, BMP
	// and WebP are accepted; "checker" selects a built-in checkerboard.
	Pattern string `toml:"pattern"`

	// Time is the animation time in seconds the frame is rendered at.
	Time float64 `toml:"time"`
}

func defaultConfig() Config {
	return Config{
		Width:      800,
		Height:     600,
		Output:     "outline.png",
		Renderer:   "software",
		Background: "#222222",
		Outline: OutlineConfig{
			EdgeStrength:     3,
			EdgeGlow:         0,
			EdgeThickness:    1,
			DownSampleRatio:  2,
			VisibleEdgeColor: "#ffffff",
			HiddenEdgeColor:  "#ff00ff",
		},
	}
}

// loadConfig decodes path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("read config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

// encode writes cfg as TOML.
func (c Config) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Config) validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Renderer != "software" && c.Renderer != "gpu" {
		errs = append(errs, fmt.Errorf("renderer %q must be software or gpu", c.Renderer))
	}
	o := c.Outline
	if o.EdgeThickness < 0 || o.EdgeThickness > postfx.MaxEdgeThickness {
		errs = append(errs, fmt.Errorf("edge_thickness %v outside [0, %d]", o.EdgeThickness, postfx.MaxEdgeThickness))
	}
	if o.DownSampleRatio <= 0 {
		errs = append(errs, fmt.Errorf("down_sample_ratio %v must be positive", o.DownSampleRatio))
	}
	if _, err := c.colors(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// palette holds the parsed colors of a Config.
type palette struct {
	background, visibleEdge, hiddenEdge gputypes.Color
}

// colors parses the background and edge colors.
func (c Config) colors() (palette, error) {
	var (
		p    palette
		errs []error
	)
	for _, f := range []struct {
		key string
		in  string
		out *gputypes.Color
	}{
		{"background", c.Background, &p.background},
		{"visible_edge_color", c.Outline.VisibleEdgeColor, &p.visibleEdge},
		{"hidden_edge_color", c.Outline.HiddenEdgeColor, &p.hiddenEdge},
	} {
		v, err := parseColor(f.in)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
			continue
		}
		*f.out = v
	}
	return p, errors.Join(errs...)
}

// parseColor parses a hex triplet written as "#rrggbb", "0xrrggbb" or
// "rrggbb".
func parseColor(s string) (gputypes.Color, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(h) != 6 {
		return gputypes.Color{}, fmt.Errorf("color %q: want six hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return gputypes.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return render.Hex(uint32(v)), nil
}
