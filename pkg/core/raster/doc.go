// Package raster holds the canvas and coordinate model shared by both
// generation policies and renders point sets into dense float rasters.
//
// # Canvas
//
// A [Canvas] is a Width×Height grid of float64 intensities stored row-major
// by y. A fresh canvas is all zero. Renderers only ever add to it (Gaussian
// path) or overwrite pixels with [DiskValue] (disk path).
//
// # Gaussian Rendering
//
// [Render] stamps one normalized Gaussian patch per point. A point whose
// patch, widened by a one-pixel margin, would cross the canvas border is
// skipped entirely and counted in [RenderStats]. Overlapping patches sum:
//
//	c, stats, err := raster.Render(points, raster.RenderParams{
//	    Radius: 8, Sigma: 3, Width: 1024, Height: 1024,
//	})
//
// With Workers > 1 the canvas is split into horizontal bands rendered
// concurrently. Each band applies points in input order, so the result is
// identical to the sequential path.
//
// # Disk Rendering
//
// [RenderDisks] fills every pixel within radius r of a disk centre with
// [DiskValue]. It is the final pass of the disk-packing policy.
package raster
