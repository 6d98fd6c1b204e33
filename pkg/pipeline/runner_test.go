package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/fkolbe/jigsaw/pkg/cache"
	"github.com/fkolbe/jigsaw/pkg/errors"
)

// testImage builds a 100x80 gradient image.
func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestSplit(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, testLogger())
	defer r.Close()

	result, err := r.Split(context.Background(), testImage(), "", Options{Rows: 2, Cols: 2, Seed: 1})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if result.Seed != 1 {
		t.Errorf("Seed = %d, want 1", result.Seed)
	}
	if result.JobID == "" {
		t.Error("JobID should be set")
	}
	if len(result.Pieces) != 4 {
		t.Fatalf("pieces = %d, want 4", len(result.Pieces))
	}
	if result.Stats.PieceCount != 4 {
		t.Errorf("Stats.PieceCount = %d, want 4", result.Stats.PieceCount)
	}

	// 100x80 in a 2x2 grid: 50x40 cells, radius 40/5 = 8, pad 18.
	if result.TabRadius != 8 {
		t.Errorf("TabRadius = %d, want 8", result.TabRadius)
	}
	if result.Pad != 18 {
		t.Errorf("Pad = %d, want 18", result.Pad)
	}

	wantBoxes := []image.Rectangle{
		image.Rect(0, 0, 50, 40), image.Rect(50, 0, 100, 40),
		image.Rect(0, 40, 50, 80), image.Rect(50, 40, 100, 80),
	}
	wantNames := []string{"piece_r0_c0.png", "piece_r0_c1.png", "piece_r1_c0.png", "piece_r1_c1.png"}
	for i, p := range result.Pieces {
		if p.Name != wantNames[i] {
			t.Errorf("piece %d name = %q, want %q", i, p.Name, wantNames[i])
		}
		if p.Box != wantBoxes[i] {
			t.Errorf("piece %d box = %v, want %v", i, p.Box, wantBoxes[i])
		}

		img, err := png.Decode(bytes.NewReader(p.Data))
		if err != nil {
			t.Fatalf("piece %d does not decode: %v", i, err)
		}
		b := img.Bounds()
		if b.Dx() != 50+2*18 || b.Dy() != 40+2*18 {
			t.Errorf("piece %d raster = %dx%d, want 86x76", i, b.Dx(), b.Dy())
		}
	}
}

func TestSplitDeterminism(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, testLogger())
	defer r.Close()
	ctx := context.Background()

	a, err := r.Split(ctx, testImage(), "", Options{Rows: 3, Cols: 3, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Split(ctx, testImage(), "", Options{Rows: 3, Cols: 3, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Pieces {
		if !bytes.Equal(a.Pieces[i].Data, b.Pieces[i].Data) {
			t.Errorf("piece %d differs between identical runs", i)
		}
	}
}

func TestSplitRandomSeed(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, testLogger())
	defer r.Close()

	a, err := r.Split(context.Background(), testImage(), "", Options{Rows: 2, Cols: 2, Seed: -1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Split(context.Background(), testImage(), "", Options{Rows: 2, Cols: 2, Seed: -1})
	if err != nil {
		t.Fatal(err)
	}
	// Two random draws colliding is vanishingly unlikely; the drawn
	// seed is reported so either run can be reproduced.
	if a.Seed == b.Seed {
		t.Errorf("both runs drew seed %d", a.Seed)
	}
}

func TestSplitInvalidDimensions(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, testLogger())
	defer r.Close()

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	_, err := r.Split(context.Background(), empty, "", Options{Rows: 2, Cols: 2})
	if err == nil {
		t.Fatal("empty image should not split")
	}
	if !errors.Is(err, errors.ErrCodeInvalidDimensions) {
		t.Errorf("error code = %s, want INVALID_DIMENSIONS", errors.GetCode(err))
	}
}

func TestSplitCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, testLogger())
	defer r.Close()
	ctx := context.Background()

	opts := Options{Rows: 2, Cols: 2, Seed: 7}
	first, err := r.Split(ctx, testImage(), "imghash", opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.Hits != 0 || first.CacheInfo.Misses != 4 {
		t.Errorf("first run cache = %+v, want 0 hits, 4 misses", first.CacheInfo)
	}

	second, err := r.Split(ctx, testImage(), "imghash", opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo.Hits != 4 || second.CacheInfo.Misses != 0 {
		t.Errorf("second run cache = %+v, want 4 hits, 0 misses", second.CacheInfo)
	}
	for i := range first.Pieces {
		if !bytes.Equal(first.Pieces[i].Data, second.Pieces[i].Data) {
			t.Errorf("cached piece %d differs from rendered piece", i)
		}
	}

	// Refresh bypasses cached pieces.
	opts.Refresh = true
	third, err := r.Split(ctx, testImage(), "imghash", opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.Hits != 0 {
		t.Errorf("refresh run hits = %d, want 0", third.CacheInfo.Hits)
	}
}

func TestSplitNoImageHashSkipsCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, testLogger())
	defer r.Close()
	ctx := context.Background()

	opts := Options{Rows: 2, Cols: 2, Seed: 7}
	if _, err := r.Split(ctx, testImage(), "", opts); err != nil {
		t.Fatal(err)
	}
	second, err := r.Split(ctx, testImage(), "", opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo.Hits != 0 {
		t.Errorf("hits = %d, want 0 without an image hash", second.CacheInfo.Hits)
	}
}

func TestExecuteMissingFile(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, testLogger())
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{Input: "does-not-exist.png", Rows: 2, Cols: 2})
	if err == nil {
		t.Fatal("missing input should error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("error code = %s, want INVALID_PATH", errors.GetCode(err))
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Error("NewRunner should default all nil dependencies")
	}
}
