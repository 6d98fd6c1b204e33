package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/fkolbe/jigsaw/pkg/cache"
	"github.com/fkolbe/jigsaw/pkg/errors"
	"github.com/fkolbe/jigsaw/pkg/pipeline"
)

// maxUploadBytes caps the multipart body read into memory.
const maxUploadBytes = 64 << 20

// handleSplit accepts a multipart form with an "image" file plus
// "rows", "cols", and optional "seed" fields, and responds with a zip
// archive of the piece PNGs and a manifest.json. The job id is echoed
// in the X-Job-ID header.
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "missing image file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "read upload"))
		return
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeImageDecode, err, "decode upload"))
		return
	}

	opts, err := splitOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.runner.Split(r.Context(), img, cache.Hash(data), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	archive, err := zipResult(result, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="pieces.zip"`)
	w.Header().Set("X-Job-ID", result.JobID)
	_, _ = w.Write(archive)
}

// splitOptions reads the grid form fields into pipeline options.
func splitOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{Seed: pipeline.DefaultSeed}

	rows, err := formInt(r, "rows")
	if err != nil {
		return opts, err
	}
	cols, err := formInt(r, "cols")
	if err != nil {
		return opts, err
	}
	opts.Rows, opts.Cols = rows, cols

	if v := r.FormValue("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidSeed, "seed must be an integer, got %q", v)
		}
		opts.Seed = seed
	}
	return opts, nil
}

func formInt(r *http.Request, field string) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, errors.New(errors.ErrCodeInvalidGrid, "missing %s field", field)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidGrid, "%s must be an integer, got %q", field, v)
	}
	return n, nil
}

// zipResult packs the pieces and the manifest into one archive.
func zipResult(result *pipeline.Result, source string) ([]byte, error) {
	m := pipeline.NewManifest(result, source)
	manifest, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range result.Pieces {
		f, err := zw.Create(p.Name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "zip entry %s", p.Name)
		}
		if _, err := f.Write(p.Data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "zip entry %s", p.Name)
		}
	}
	f, err := zw.Create("manifest.json")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "zip entry manifest.json")
	}
	if _, err := f.Write(manifest); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "zip entry manifest.json")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "finalize zip")
	}
	return buf.Bytes(), nil
}

// writeError maps error codes onto HTTP statuses and emits a JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeImageDecode):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeNotFound):
		status = http.StatusNotFound
	}

	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    string(errors.GetCode(err)),
			"message": errors.UserMessage(err),
		},
	})
}
