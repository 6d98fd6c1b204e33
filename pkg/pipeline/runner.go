package pipeline

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fkolbe/jigsaw/pkg/cache"
	"github.com/fkolbe/jigsaw/pkg/compose"
	"github.com/fkolbe/jigsaw/pkg/errors"
	"github.com/fkolbe/jigsaw/pkg/mask"
	"github.com/fkolbe/jigsaw/pkg/observability"
	"github.com/fkolbe/jigsaw/pkg/puzzle"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute reads and decodes opts.Input, then runs Split on it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	decodeStart := time.Now()
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", opts.Input)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decode %s", opts.Input)
	}
	decodeTime := time.Since(decodeStart)

	r.Logger.Debug("decoded image",
		"path", opts.Input,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"duration", decodeTime)

	result, err := r.Split(ctx, img, cache.Hash(data), opts)
	if err != nil {
		return nil, err
	}
	result.Stats.DecodeTime = decodeTime
	return result, nil
}

// Split cuts a decoded image into opts.Rows × opts.Cols interlocking
// pieces. imageHash identifies the image content for cache keys; pass
// "" to disable the cross-run piece cache for this call.
func (r *Runner) Split(ctx context.Context, img image.Image, imageHash string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimensions,
			"image dimensions must be positive, got %dx%d", width, height)
	}

	start := time.Now()
	observability.Split().OnSplitStart(ctx, opts.Rows, opts.Cols)

	// Stage 1: Layout
	layoutStart := time.Now()
	seed := effectiveSeed(opts.Seed)
	rng := puzzle.NewRand(seed)
	layout := puzzle.GenerateLayout(opts.Rows, opts.Cols, rng)

	xBounds := puzzle.Bounds(width, opts.Cols)
	yBounds := puzzle.Bounds(height, opts.Rows)
	geom := puzzle.NewTabGeometry(puzzle.SharedTabRadius(xBounds, yBounds))

	result := &Result{
		JobID:     uuid.NewString(),
		Seed:      seed,
		TabRadius: geom.Radius,
		Pad:       geom.Pad,
		XBounds:   xBounds,
		YBounds:   yBounds,
		Pieces:    make([]Piece, opts.Rows*opts.Cols),
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.PieceCount = len(result.Pieces)

	r.Logger.Info("generated layout",
		"grid", fmt.Sprintf("%dx%d", opts.Rows, opts.Cols),
		"seed", seed,
		"tab_radius", geom.Radius)

	// Stage 2: Render and compose, one goroutine per piece.
	renderStart := time.Now()
	var hits, misses atomic.Int64
	masks := newMaskMemo()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for row := 0; row < opts.Rows; row++ {
		for col := 0; col < opts.Cols; col++ {
			row, col := row, col
			g.Go(func() error {
				p, cached, err := r.renderPiece(gctx, img, imageHash, seed, layout, geom, xBounds, yBounds, row, col, opts, masks)
				if err != nil {
					return err
				}
				if cached {
					hits.Add(1)
				} else {
					misses.Add(1)
				}
				observability.Split().OnPieceRendered(gctx, row, col, cached)
				result.Pieces[row*opts.Cols+col] = p
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		observability.Split().OnSplitComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}

	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.Hits = int(hits.Load())
	result.CacheInfo.Misses = int(misses.Load())

	r.Logger.Info("rendered pieces",
		"pieces", result.Stats.PieceCount,
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.RenderTime)

	observability.Split().OnSplitComplete(ctx, result.Stats.PieceCount, time.Since(start), nil)
	return result, nil
}

// renderPiece produces one encoded piece, consulting the cross-run
// cache first. The bool return reports a cache hit.
func (r *Runner) renderPiece(ctx context.Context, img image.Image, imageHash string, seed uint64, layout *puzzle.EdgeLayout, geom puzzle.TabGeometry, xBounds, yBounds []int, row, col int, opts Options, masks *maskMemo) (Piece, bool, error) {
	box := image.Rect(xBounds[col], yBounds[row], xBounds[col+1], yBounds[row+1])
	p := Piece{
		Row:  row,
		Col:  col,
		Name: fmt.Sprintf("piece_r%d_c%d.%s", row, col, opts.Format),
		Box:  box,
	}

	var key string
	if imageHash != "" {
		key = r.Keyer.PieceKey(imageHash, cache.PieceKeyOpts{
			Rows:      opts.Rows,
			Cols:      opts.Cols,
			Seed:      seed,
			Row:       row,
			Col:       col,
			TabRadius: geom.Radius,
			Format:    opts.Format,
		})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "piece")
				p.Data = data
				return p, true, nil
			}
			observability.Cache().OnCacheMiss(ctx, "piece")
		}
	}

	edges := layout.Resolve(row, col)
	m := masks.get(box.Dx(), box.Dy(), edges, geom)

	raster := compose.Piece(img, box, m, geom.Pad)
	var buf bytes.Buffer
	if err := png.Encode(&buf, raster); err != nil {
		return Piece{}, false, errors.Wrap(errors.ErrCodeImageEncode, err, "encode piece %d,%d", row, col)
	}
	p.Data = buf.Bytes()

	if key != "" {
		if err := r.Cache.Set(ctx, key, p.Data, cache.TTLPiece); err == nil {
			observability.Cache().OnCacheSet(ctx, "piece", len(p.Data))
		}
	}
	return p, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// effectiveSeed resolves the user's seed request: non-negative values
// pass through, negative values draw a fresh seed from crypto/rand.
func effectiveSeed(seed int64) uint64 {
	if seed >= 0 {
		return uint64(seed)
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall
		// back to the clock rather than panic in a library.
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

func defaultWorkers() int {
	return runtime.NumCPU()
}

// maskMemo caches rendered masks within a single run. Pieces in the
// same row and column band share cell sizes, so identical edge
// combinations recur often on larger grids.
type maskMemo struct {
	mu sync.Mutex
	m  map[cache.MaskKeyOpts]*image.Alpha
}

func newMaskMemo() *maskMemo {
	return &maskMemo{m: make(map[cache.MaskKeyOpts]*image.Alpha)}
}

func (mm *maskMemo) get(width, height int, edges puzzle.Edges, geom puzzle.TabGeometry) *image.Alpha {
	key := cache.MaskKeyOpts{
		Width:     width,
		Height:    height,
		Top:       int8(edges.Top),
		Right:     int8(edges.Right),
		Bottom:    int8(edges.Bottom),
		Left:      int8(edges.Left),
		TabRadius: geom.Radius,
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if m, ok := mm.m[key]; ok {
		return m
	}
	m := mask.Render(width, height, edges, geom)
	mm.m[key] = m
	return m
}
