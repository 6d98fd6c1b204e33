// Package puzzle implements the interlocking-edge geometry model for
// splitting a raster image into jigsaw pieces.
//
// # Overview
//
// A split is described by a [Grid] (rows × columns) laid over an image.
// The package provides the four geometric building blocks:
//
//  1. [Bounds] partitions a pixel extent into near-even integer segments.
//  2. [GenerateLayout] assigns a random bump/hole orientation to every
//     interior seam of the grid.
//  3. [EdgeLayout.Resolve] derives one piece's four edge orientations
//     from the shared layout.
//  4. [TabGeometry] carries the tab dimensions (radius, neck, offset,
//     pad) shared by every piece of a split.
//
// # Seam matching
//
// Two adjacent pieces always interlock because both read their facing
// edge from the same layout cell: the piece above a horizontal seam
// negates the cell, the piece below reads it directly. There is no
// second copy to keep in sync; storing both sides independently would
// break the matching guarantee.
//
// # Determinism
//
// All randomness flows through the *rand.Rand passed to
// [GenerateLayout]. The same seed and grid dimensions produce a
// bit-identical layout, which makes whole splits reproducible.
package puzzle
