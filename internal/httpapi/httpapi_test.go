package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/sketch-tools-mcp/internal/config"
	"github.com/ironsheep/sketch-tools-mcp/internal/pipeline"
)

// createSketchPNG encodes a white image with a black square in the middle.
func createSketchPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x >= width/4 && x < 3*width/4 && y >= height/4 && y < 3*height/4 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds an upload with the given file under field.
func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "upload.png")
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	} else if err := mw.WriteField("note", "no file here"); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/process-image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestProcessImage(t *testing.T) {
	h := NewHandler(pipeline.DefaultOptions(), 10<<20)

	rec := serve(h, multipartRequest(t, "image", createSketchPNG(t, 64, 48)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q", ct)
	}

	var resp ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for name, doc := range map[string]string{"sigma1": resp.Sigma1, "sigma2": resp.Sigma2} {
		if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="utf-8" ?>`) {
			t.Errorf("%s: missing XML header: %.60q", name, doc)
		}
		if !strings.Contains(doc, "<path ") {
			t.Errorf("%s: drawing has no paths", name)
		}
	}
}

func TestProcessImage_MatchesPipeline(t *testing.T) {
	opts := pipeline.DefaultOptions()
	data := createSketchPNG(t, 40, 40)

	want, err := pipeline.ProcessBytes(data, opts)
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}

	rec := serve(NewHandler(opts, 0), multipartRequest(t, "image", data))
	var resp ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Sigma1 != want.Low.String() || resp.Sigma2 != want.High.String() {
		t.Error("HTTP response differs from direct pipeline output")
	}
}

func TestProcessImage_Errors(t *testing.T) {
	h := NewHandler(pipeline.DefaultOptions(), 10<<20)

	notMultipart := httptest.NewRequest(http.MethodPost, "/api/process-image", strings.NewReader("{}"))
	notMultipart.Header.Set("Content-Type", "application/json")

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantError  string
	}{
		{"missing field", multipartRequest(t, "", nil), http.StatusBadRequest, msgNoImage},
		{"wrong field", multipartRequest(t, "file", createSketchPNG(t, 8, 8)), http.StatusBadRequest, msgNoImage},
		{"empty file", multipartRequest(t, "image", nil), http.StatusBadRequest, msgNoImage},
		{"not multipart", notMultipart, http.StatusBadRequest, msgNoImage},
		{"undecodable", multipartRequest(t, "image", []byte("not an image")), http.StatusInternalServerError, msgProcessFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeError(t, rec); got != tt.wantError {
				t.Errorf("error: got %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestProcessImage_TooLarge(t *testing.T) {
	h := NewHandler(pipeline.DefaultOptions(), 1024)

	rec := serve(h, multipartRequest(t, "image", bytes.Repeat([]byte{0xAB}, 4096)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d, want 413", rec.Code)
	}
	if got := decodeError(t, rec); got != msgTooLarge {
		t.Errorf("error: got %q, want %q", got, msgTooLarge)
	}
}

func TestProcessImage_MethodNotAllowed(t *testing.T) {
	h := NewHandler(pipeline.DefaultOptions(), 0)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := serve(h, httptest.NewRequest(method, "/api/process-image", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status %d, want 405", method, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	h := NewHandler(pipeline.DefaultOptions(), 0)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz: got %d %q, want 200 \"ok\"", rec.Code, rec.Body.String())
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", rec.Code)
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.Defaults().HTTP
	srv := NewServer(cfg, pipeline.DefaultOptions())

	if srv.Addr != cfg.Addr {
		t.Errorf("Addr: got %q, want %q", srv.Addr, cfg.Addr)
	}
	if srv.ReadTimeout != 30*time.Second || srv.WriteTimeout != 120*time.Second {
		t.Errorf("timeouts: got %v/%v, want 30s/2m", srv.ReadTimeout, srv.WriteTimeout)
	}
	if srv.Handler == nil {
		t.Error("Handler is nil")
	}
}

func TestServe_Shutdown(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: NewHandler(pipeline.DefaultOptions(), 0)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
