// Package sample draws synthetic point sets under two spatial policies.
//
// # Uniform + Cluster
//
// [UniformCluster] scatters parent anchors uniformly and replaces each one
// with a random-sized cluster of Gaussian-distributed children. Children are
// clipped to the canvas and truncated to integer pixels; parents are never
// emitted. By default parents are drawn over a square of side max(W, H), as
// the reference generator did. Set [ClusterParams.RectangularParents] to draw
// x over [0, W) and y over [0, H) instead.
//
// # Disk Packing
//
// [DiskPacking] places beads one at a time. Each attempt may be pulled next
// to an already occupied pixel, is rejected when its neighbourhood or its
// footprint touches an earlier bead, and is otherwise recorded. The
// [Occupancy] index tracks covered pixels; rendering is a separate final pass
// with [raster.RenderDisks]. Placement is inherently sequential.
//
// # Randomness
//
// Every sampler takes an explicit *rand.Rand. [NewRNG] builds the seeded PCG
// generator used across evsynth, so a fixed seed reproduces the same output:
//
//	rng := sample.NewRNG(42)
//	points, err := sample.UniformCluster(params, rng)
package sample
