// Package pipeline provides the core splitting pipeline for jigsaw.
//
// This package implements the complete decode → layout → render → compose
// pipeline that can be used by CLI and server components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Decode: Read and decode the source image
//  2. Layout: Partition the image and generate edge orientations
//  3. Render: Draw the silhouette mask for each piece
//  4. Compose: Crop, paste, and alpha-apply each piece raster
//
// Layout is sequential and cheap; render and compose run per piece on a
// bounded worker pool.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input: "photo.png",
//	    Rows:  3,
//	    Cols:  4,
//	    Seed:  42,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range result.Pieces {
//	    os.WriteFile(p.Name, p.Data, 0o644)
//	}
package pipeline

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fkolbe/jigsaw/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultRows is the default number of piece rows.
	DefaultRows = 3

	// DefaultCols is the default number of piece columns.
	DefaultCols = 3

	// DefaultSeed requests a randomly drawn seed. Any negative value
	// means "pick one"; the effective seed is reported in the result.
	DefaultSeed = int64(-1)
)

// Format constants for piece output formats.
const (
	FormatPNG = "png"
)

// ValidFormats is the set of supported piece output formats. Pieces
// need an alpha channel, which rules out the usual lossy formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the splitting pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is the source image path. Execute reads it; Split takes a
	// decoded image instead and ignores this field.
	Input string `json:"input,omitempty"`

	// Grid options
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Seed drives edge orientation. Negative means draw a random seed.
	Seed int64 `json:"seed"`

	// Render options
	Format  string `json:"format,omitempty"`
	Workers int    `json:"workers,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Piece is one finished puzzle piece.
type Piece struct {
	Row  int
	Col  int
	Name string
	// Box is the piece's nominal rectangle in source-image coordinates.
	// The raster extends Pad pixels beyond it on every side.
	Box  image.Rectangle
	Data []byte
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// JobID uniquely identifies this run.
	JobID string

	// Seed is the effective seed, after random drawing if requested.
	Seed uint64

	// TabRadius and Pad are the shared tab geometry of the run.
	TabRadius int
	Pad       int

	// XBounds and YBounds are the cumulative partition boundaries.
	XBounds []int
	YBounds []int

	// Pieces holds the encoded piece rasters in row-major order.
	Pieces []Piece

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks piece-level cache effectiveness.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PieceCount int
	DecodeTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits and misses across the run's pieces.
type CacheInfo struct {
	Hits   int
	Misses int
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a piece output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be png)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Rows <= 0 || o.Cols <= 0 {
		return errors.New(errors.ErrCodeInvalidGrid,
			"grid dimensions must be positive, got %dx%d", o.Rows, o.Cols)
	}
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}
