package sink

import (
	"bytes"

	"golang.org/x/image/tiff"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// TIFFOption configures TIFF rendering.
type TIFFOption func(*tiffRenderer)

type tiffRenderer struct {
	compression tiff.CompressionType
	eightBit    bool
}

// WithDeflate compresses the TIFF with deflate.
func WithDeflate() TIFFOption {
	return func(r *tiffRenderer) { r.compression = tiff.Deflate }
}

// WithTIFF8Bit writes 8-bit samples instead of the default 16-bit.
func WithTIFF8Bit() TIFFOption {
	return func(r *tiffRenderer) { r.eightBit = true }
}

// RenderTIFF encodes a display canvas as a grayscale TIFF. 16-bit samples
// keep the low end of the intensity range that an 8-bit PNG collapses.
func RenderTIFF(display *raster.Canvas, opts ...TIFFOption) ([]byte, error) {
	r := tiffRenderer{compression: tiff.Uncompressed}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	var err error
	if r.eightBit {
		err = tiff.Encode(&buf, Gray(display), &tiff.Options{Compression: r.compression})
	} else {
		err = tiff.Encode(&buf, Gray16(display), &tiff.Options{Compression: r.compression})
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode tiff")
	}
	return buf.Bytes(), nil
}
