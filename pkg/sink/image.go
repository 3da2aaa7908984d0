package sink

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/matzehuels/evsynth/pkg/core/raster"
)

// Gray converts a display canvas to an 8-bit grayscale image. Each value is
// clamped to [0, 1], scaled by 255 and rounded half to even.
func Gray(c *raster.Canvas) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, c.Width, c.Height))
	for y := range c.Height {
		row := c.Row(y)
		for x, v := range row {
			img.Pix[y*img.Stride+x] = quantize8(v)
		}
	}
	return img
}

// Gray16 converts a display canvas to a 16-bit grayscale image.
func Gray16(c *raster.Canvas) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, c.Width, c.Height))
	for y := range c.Height {
		for x, v := range c.Row(y) {
			img.SetGray16(x, y, color.Gray16{Y: quantize16(v)})
		}
	}
	return img
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	dst := image.NewGray(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func quantize8(v float64) uint8 {
	return uint8(math.RoundToEven(unit(v) * math.MaxUint8))
}

func quantize16(v float64) uint16 {
	return uint16(math.RoundToEven(unit(v) * math.MaxUint16))
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(v, 1))
}
