package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gogpu/gputypes"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/postfx/render"
)

// checkerPatternName selects the built-in checkerboard instead of a file.
const checkerPatternName = "checker"

// patternTileSize is the edge length of the pattern tile uploaded to the
// renderer.
const patternTileSize = 64

// decodePattern reads an image file and resamples it to a square tile.
func decodePattern(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode pattern %s: %w", path, err)
	}
	tile := resampleSquare(src, patternTileSize)
	logger.Debug("pattern decoded", "path", path, "format", format,
		"source", src.Bounds().Size(), "tile", patternTileSize)
	return tile, nil
}

// resampleSquare scales the largest centered square of src to size×size.
func resampleSquare(src image.Image, size int) *image.NRGBA {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, side, side).Add(b.Min).Add(image.Pt((b.Dx()-side)/2, (b.Dy()-side)/2))

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

// checkerPattern returns a two-tone checkerboard tile.
func checkerPattern(size, cells int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	cell := max(size/cells, 1)
	for y := range size {
		for x := range size {
			v := uint8(0x40)
			if (x/cell+y/cell)%2 == 0 {
				v = 0xc0
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = v
			img.Pix[i+1] = v
			img.Pix[i+2] = v
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// uploadPattern loads a tile into a repeating texture on r.
func uploadPattern(r render.Renderer, tile image.Image) (render.Surface, error) {
	loader, ok := r.(render.TextureLoader)
	if !ok {
		return nil, fmt.Errorf("renderer %T cannot load textures", r)
	}
	desc := render.SurfaceDescriptor{
		Label:       "pattern",
		AddressMode: gputypes.AddressModeRepeat,
	}
	return loader.LoadTexture(tile, desc)
}
