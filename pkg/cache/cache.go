// Package cache provides pluggable byte caching for split artifacts.
//
// The pipeline stores encoded piece PNGs keyed by the source image
// hash, the grid, the effective seed, and the piece coordinates, so
// re-splitting the same image with the same parameters is served from
// cache. Backends: file (CLI default), redis and mongo (serve mode
// deployments), and null (caching disabled).
package cache

import (
	"context"
	"time"
)

// TTL constants for cached artifact types.
const (
	// TTLPiece is how long encoded piece rasters stay cached.
	TTLPiece = 24 * time.Hour

	// TTLMask is how long serialized silhouette masks stay cached.
	// Masks depend only on geometry, never on image content, so they
	// can outlive the pieces cut with them.
	TTLMask = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PieceKeyOpts are the parameters that determine one piece's pixels.
type PieceKeyOpts struct {
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Seed      uint64 `json:"seed"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	TabRadius int    `json:"tab_radius"`
	Format    string `json:"format"`
}

// MaskKeyOpts are the parameters that determine one mask's pixels.
type MaskKeyOpts struct {
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	Top       int8  `json:"top"`
	Right     int8  `json:"right"`
	Bottom    int8  `json:"bottom"`
	Left      int8  `json:"left"`
	TabRadius int   `json:"tab_radius"`
}

// Keyer generates cache keys for the artifact types.
type Keyer interface {
	// PieceKey generates a key for an encoded piece raster.
	PieceKey(imageHash string, opts PieceKeyOpts) string

	// MaskKey generates a key for a serialized silhouette mask.
	MaskKey(opts MaskKeyOpts) string
}

// DefaultKeyer hashes the key options into stable prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PieceKey generates a key for an encoded piece raster.
func (k *DefaultKeyer) PieceKey(imageHash string, opts PieceKeyOpts) string {
	return hashKey("piece", imageHash, opts)
}

// MaskKey generates a key for a serialized silhouette mask.
func (k *DefaultKeyer) MaskKey(opts MaskKeyOpts) string {
	return hashKey("mask", opts)
}
