package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Serve-mode deployments use this to keep different tenants' artifacts
// in separate cache namespaces on a shared backend.
//
// Example usage:
//
//	// Tenant-specific keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Global keys
//	keyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PieceKey generates a prefixed key for an encoded piece raster.
func (k *ScopedKeyer) PieceKey(imageHash string, opts PieceKeyOpts) string {
	return k.prefix + k.inner.PieceKey(imageHash, opts)
}

// MaskKey generates a prefixed key for a serialized silhouette mask.
func (k *ScopedKeyer) MaskKey(opts MaskKeyOpts) string {
	return k.prefix + k.inner.MaskKey(opts)
}
