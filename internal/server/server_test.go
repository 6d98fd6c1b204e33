package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/fkolbe/jigsaw/pkg/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(":0", runner, logger)
}

// testPNG encodes a small gradient image.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 6), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartBody builds a split request body. Pass nil image to omit the
// file field.
func multipartBody(t *testing.T, imageData []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if imageData != nil {
		fw, err := w.CreateFormFile("image", "test.png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(imageData); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSplitEndpoint(t *testing.T) {
	s := testServer(t)

	body, contentType := multipartBody(t, testPNG(t), map[string]string{
		"rows": "2",
		"cols": "2",
		"seed": "1",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/split", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q, want application/zip", ct)
	}
	if rec.Header().Get("X-Job-ID") == "" {
		t.Error("X-Job-ID header should be set")
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"piece_r0_c0.png", "piece_r0_c1.png", "piece_r1_c0.png", "piece_r1_c1.png", "manifest.json",
	} {
		if !names[want] {
			t.Errorf("zip is missing %s (has %v)", want, names)
		}
	}

	mf, err := zr.Open("manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	defer mf.Close()
	var manifest pipeline.Manifest
	if err := json.NewDecoder(mf).Decode(&manifest); err != nil {
		t.Fatalf("manifest does not parse: %v", err)
	}
	if manifest.Rows != 2 || manifest.Cols != 2 || manifest.Seed != 1 {
		t.Errorf("manifest = %+v", manifest)
	}
	if manifest.Source != "test.png" {
		t.Errorf("manifest source = %q, want test.png", manifest.Source)
	}
}

func TestSplitEndpointMissingGrid(t *testing.T) {
	s := testServer(t)

	body, contentType := multipartBody(t, testPNG(t), map[string]string{"cols": "2"})
	req := httptest.NewRequest(http.MethodPost, "/v1/split", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("INVALID_GRID")) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSplitEndpointMissingImage(t *testing.T) {
	s := testServer(t)

	body, contentType := multipartBody(t, nil, map[string]string{"rows": "2", "cols": "2"})
	req := httptest.NewRequest(http.MethodPost, "/v1/split", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSplitEndpointBadImage(t *testing.T) {
	s := testServer(t)

	body, contentType := multipartBody(t, []byte("not a png"), map[string]string{"rows": "2", "cols": "2"})
	req := httptest.NewRequest(http.MethodPost, "/v1/split", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("IMAGE_DECODE")) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSplitEndpointBadSeed(t *testing.T) {
	s := testServer(t)

	body, contentType := multipartBody(t, testPNG(t), map[string]string{
		"rows": "2",
		"cols": "2",
		"seed": "abc",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/split", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("INVALID_SEED")) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
