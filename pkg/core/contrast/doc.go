// Package contrast maps raw rendered intensities into the [0, 1] display
// range.
//
// [Rescale] computes the low and high percentiles of a canvas, clips every
// pixel into that window and stretches it linearly so p_low maps to 0 and
// p_high maps to 1. The defaults [DefaultLow] and [DefaultHigh] saturate the
// brightest half percent of pixels, which keeps a few dense clusters from
// washing out the rest of the image.
//
// Percentiles use linear interpolation between the closest ranks, the same
// definition most array libraries default to.
package contrast
