// Package pkg provides the libraries behind evsynth, a generator of synthetic
// point-emitter images for training and testing detection models.
//
// # Overview
//
// evsynth draws a ground-truth point set, renders it into a float canvas and
// normalizes the contrast into a display image. Every image is exported
// together with its coordinates, so the pair can serve as a labelled sample.
// The pkg directory is organized into four areas:
//
//  1. [core] - Domain logic (sampling, kernels, rasterization, contrast)
//  2. [sink] - Export formats (PNG, TIFF, CSV, JSON manifest, QA overlay)
//  3. [pipeline] - Orchestration with caching (generate → render → rescale → export)
//  4. Outer surfaces: [config] presets, [server] HTTP API, [catalog] run records
//
// # Architecture
//
// The data flow of one run:
//
//	Options (flags, TOML preset or JSON request)
//	         ↓
//	    [core/sample] uniform+cluster points, or packed disks
//	         ↓
//	    [core/raster] Gaussian PSF stamping via [core/kernel], or disk fill
//	         ↓
//	    [core/contrast] percentile window rescale to [0, 1]
//	         ↓
//	    [sink] PNG/TIFF/CSV/JSON/overlay bytes
//
// # Quick Start
//
// Generate one clustered image with its coordinates:
//
//	import (
//	    "github.com/matzehuels/evsynth/pkg/core/contrast"
//	    "github.com/matzehuels/evsynth/pkg/core/raster"
//	    "github.com/matzehuels/evsynth/pkg/core/sample"
//	    "github.com/matzehuels/evsynth/pkg/sink"
//	)
//
//	rng := sample.NewRNG(7)
//	points, _ := sample.UniformCluster(sample.ClusterParams{
//	    Parents: 40, ClusterMin: 10, ClusterMax: 20, Spread: 10,
//	    Width: 512, Height: 512,
//	}, rng)
//
//	raw, stats, _ := raster.Render(points, raster.RenderParams{
//	    Radius: 10, Sigma: 2, Width: 512, Height: 512,
//	})
//	display, _ := contrast.Rescale(raw, 0, 99.5)
//
//	png, _ := sink.RenderPNG(display)
//	csv, _ := sink.RenderCSV(points)
//
// Most callers use [pipeline.Runner] instead, which adds caching, run IDs and
// the manifest.
//
// # Main Packages
//
// [core/sample] - Point samplers. UniformCluster scatters parents uniformly
// and children with Gaussian spread; DiskPacking places non-overlapping disks
// with an optional neighbour bias. Randomness always comes from an explicit
// generator built by sample.NewRNG.
//
// [core/kernel] - Normalized Gaussian patches, including the preview used by
// "evsynth kernel".
//
// [core/raster] - The float canvas, PSF stamping (optionally in parallel
// bands) and disk fill.
//
// [core/contrast] - Percentiles with linear interpolation and the window
// rescale.
//
// [cache] - Null, file and Redis backends keyed by option hashes.
//
// [observability] - Hook registry for pipeline, cache and HTTP events.
//
// [errors] - Structured errors with codes shared by the CLI and the server.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/core
// [core/sample]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/core/sample
// [core/kernel]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/core/kernel
// [core/raster]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/core/raster
// [core/contrast]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/core/contrast
// [sink]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/pipeline#Runner
// [config]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/server
// [catalog]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/catalog
// [cache]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/evsynth/pkg/errors
package pkg
