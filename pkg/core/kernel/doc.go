// Package kernel builds the point-spread-function patches used by the rasterizer.
//
// # Overview
//
// A [Patch] is a square grid of weights with an odd side length 2r+1. The
// Gaussian patch produced by [Gaussian] samples
//
//	G[x,y] = exp(-((x-x0)² + (y-y0)²) / (2σ²))
//
// on integer pixel positions and divides every entry by the total, so the
// patch always sums to 1 (up to floating-point rounding). A rendered point
// therefore contributes unit mass to the canvas.
//
// # Preview
//
// [Preview] returns the exact patch the renderer would stamp for a given
// kernel radius and PSF sigma. Callers use it to inspect the PSF before
// rendering a full image:
//
//	p, err := kernel.Preview(8, 3.0)
//	fmt.Println(p.Size, p.At(8, 8))
package kernel
