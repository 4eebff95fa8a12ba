// Package httpapi serves the conversion pipeline over HTTP.
//
// A single upload endpoint accepts a multipart image and answers with both
// drawings as SVG strings:
//
//	POST /api/process-image   form field "image"
//	    200 {"sigma1": "<svg ...>", "sigma2": "<svg ...>"}
//	    400 {"error": "No image provided"}
//	    413 {"error": "Image too large"}
//	    500 {"error": "Failed to process image"}
//
// GET /healthz answers "ok" for liveness checks.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ironsheep/sketch-tools-mcp/internal/config"
	"github.com/ironsheep/sketch-tools-mcp/internal/log"
	"github.com/ironsheep/sketch-tools-mcp/internal/pipeline"
)

// Client-facing error messages.
const (
	msgNoImage       = "No image provided"
	msgTooLarge      = "Image too large"
	msgProcessFailed = "Failed to process image"
)

// multipartMemory is the part of an upload kept in memory before spilling to
// temporary files.
const multipartMemory = 8 << 20

// shutdownGrace bounds how long in-flight conversions may finish after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

// ProcessResponse is the success body of the upload endpoint.
type ProcessResponse struct {
	Sigma1 string `json:"sigma1"`
	Sigma2 string `json:"sigma2"`
}

type errorBody struct {
	Error string `json:"error"`
}

type handler struct {
	opts      pipeline.Options
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler returns the API routes. maxUpload caps the request body in
// bytes; zero or less means no cap.
func NewHandler(opts pipeline.Options, maxUpload int64) http.Handler {
	h := &handler{opts: opts, maxUpload: maxUpload, logger: log.WithComponent("httpapi")}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process-image", h.processImage)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (h *handler) processImage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	raw, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("upload rejected", slog.Int64("limit", tooLarge.Limit))
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		h.logger.Debug("no image in request", slog.String("err", err.Error()))
		writeError(w, http.StatusBadRequest, msgNoImage)
		return
	}

	res, err := pipeline.ProcessBytes(raw, h.opts)
	if err != nil {
		h.logger.Error("error processing image", slog.String("err", err.Error()),
			slog.Int("bytes", len(raw)))
		writeError(w, http.StatusInternalServerError, msgProcessFailed)
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		Sigma1: res.Low.String(),
		Sigma2: res.High.String(),
	})
	h.logger.Info("processed image",
		slog.Int("width", res.Width), slog.Int("height", res.Height),
		slog.Int("paths_low", len(res.Low.Paths)), slog.Int("paths_high", len(res.High.Paths)),
		slog.Duration("elapsed", time.Since(start)))
}

// readUpload returns the bytes of the "image" form file. An empty file
// counts as missing.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, http.ErrMissingFile
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// NewServer builds an http.Server for the API using the HTTP section of the
// configuration.
func NewServer(cfg config.HTTPConfig, opts pipeline.Options) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(opts, cfg.MaxUploadBytes()),
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server) error {
	logger := log.WithComponent("httpapi")
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
