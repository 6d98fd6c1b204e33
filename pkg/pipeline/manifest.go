package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fkolbe/jigsaw/pkg/errors"
)

// Manifest describes one split run: the parameters that produced it and
// the bounding box of every piece. It is written next to the piece
// files so a downstream assembler can reposition pieces without
// re-deriving the layout.
type Manifest struct {
	JobID     string       `json:"job_id"`
	Source    string       `json:"source,omitempty"`
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	Seed      uint64       `json:"seed"`
	TabRadius int          `json:"tab_radius"`
	Pad       int          `json:"pad"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Pieces    []PieceEntry `json:"pieces"`
}

// PieceEntry locates one piece file within the source image. The box
// is the piece's nominal rectangle; the raster extends Pad pixels
// beyond it on every side.
type PieceEntry struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	File string `json:"file"`
	X0   int    `json:"x0"`
	Y0   int    `json:"y0"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
}

// NewManifest builds the manifest for a finished run. source is the
// input path as given by the user; pass "" for in-memory sources.
func NewManifest(result *Result, source string) Manifest {
	m := Manifest{
		JobID:     result.JobID,
		Source:    source,
		Rows:      len(result.YBounds) - 1,
		Cols:      len(result.XBounds) - 1,
		Seed:      result.Seed,
		TabRadius: result.TabRadius,
		Pad:       result.Pad,
		Width:     result.XBounds[len(result.XBounds)-1],
		Height:    result.YBounds[len(result.YBounds)-1],
		Pieces:    make([]PieceEntry, 0, len(result.Pieces)),
	}
	for _, p := range result.Pieces {
		m.Pieces = append(m.Pieces, PieceEntry{
			Row:  p.Row,
			Col:  p.Col,
			File: p.Name,
			X0:   p.Box.Min.X,
			Y0:   p.Box.Min.Y,
			X1:   p.Box.Max.X,
			Y1:   p.Box.Max.Y,
		})
	}
	return m
}

// Marshal serializes the manifest as indented JSON.
func (m Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal manifest")
	}
	return data, nil
}

// WriteManifest writes the manifest as manifest.json in dir.
func WriteManifest(m Manifest, dir string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInternal, err, "parse %s", path)
	}
	return m, nil
}
