package pipeline

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func testResult() *Result {
	return &Result{
		JobID:     "job-123",
		Seed:      42,
		TabRadius: 8,
		Pad:       18,
		XBounds:   []int{0, 50, 100},
		YBounds:   []int{0, 40, 80},
		Pieces: []Piece{
			{Row: 0, Col: 0, Name: "piece_r0_c0.png", Box: image.Rect(0, 0, 50, 40)},
			{Row: 0, Col: 1, Name: "piece_r0_c1.png", Box: image.Rect(50, 0, 100, 40)},
			{Row: 1, Col: 0, Name: "piece_r1_c0.png", Box: image.Rect(0, 40, 50, 80)},
			{Row: 1, Col: 1, Name: "piece_r1_c1.png", Box: image.Rect(50, 40, 100, 80)},
		},
	}
}

func TestNewManifest(t *testing.T) {
	m := NewManifest(testResult(), "photo.png")

	if m.JobID != "job-123" || m.Source != "photo.png" {
		t.Errorf("identity fields: %+v", m)
	}
	if m.Rows != 2 || m.Cols != 2 {
		t.Errorf("grid = %dx%d, want 2x2", m.Rows, m.Cols)
	}
	if m.Width != 100 || m.Height != 80 {
		t.Errorf("dimensions = %dx%d, want 100x80", m.Width, m.Height)
	}
	if m.Seed != 42 || m.TabRadius != 8 || m.Pad != 18 {
		t.Errorf("geometry fields: %+v", m)
	}
	if len(m.Pieces) != 4 {
		t.Fatalf("pieces = %d, want 4", len(m.Pieces))
	}

	last := m.Pieces[3]
	if last.File != "piece_r1_c1.png" || last.X0 != 50 || last.Y0 != 40 || last.X1 != 100 || last.Y1 != 80 {
		t.Errorf("last entry = %+v", last)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := NewManifest(testResult(), "photo.png")

	if err := WriteManifest(m, dir); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	path := filepath.Join(dir, "manifest.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("manifest.json not written: %v", err)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got.JobID != m.JobID || got.Seed != m.Seed || got.Rows != m.Rows {
		t.Errorf("round trip changed manifest: %+v", got)
	}
	if len(got.Pieces) != len(m.Pieces) {
		t.Fatalf("pieces = %d, want %d", len(got.Pieces), len(m.Pieces))
	}
	for i := range got.Pieces {
		if got.Pieces[i] != m.Pieces[i] {
			t.Errorf("piece %d = %+v, want %+v", i, got.Pieces[i], m.Pieces[i])
		}
	}
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("missing manifest should error")
	}
}
