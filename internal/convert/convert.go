// Package convert writes line drawings for image files on disk.
//
// Each input produces <name>.sigma1.svg and <name>.sigma2.svg in the output
// directory, plus optional edge mask and preview PNGs. Several inputs are
// converted concurrently by a fixed pool of workers.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ironsheep/sketch-tools-mcp/internal/log"
	"github.com/ironsheep/sketch-tools-mcp/internal/pipeline"
	"github.com/ironsheep/sketch-tools-mcp/internal/preview"
	"github.com/ironsheep/sketch-tools-mcp/internal/raster"
	"github.com/ironsheep/sketch-tools-mcp/internal/svg"
)

// Options controls what is written for each input.
type Options struct {
	// OutDir receives the output files. Empty means next to each input.
	OutDir string

	// Base64 treats input files as base64 text, optionally with a data URI
	// header, instead of raw image bytes.
	Base64 bool

	// DumpMasks also writes the two edge masks as PNG.
	DumpMasks bool

	// Preview also writes a PNG rendering of each drawing.
	Preview bool

	// Workers is the number of inputs converted at once. Zero or less uses
	// the number of CPUs.
	Workers int
}

// Result reports the outcome for one input.
type Result struct {
	Input string
	Files []string
	Err   error
}

// Run converts every input and returns one result per input in input order.
// Cancelling ctx stops handing out new inputs; those never started report
// the context error.
func Run(ctx context.Context, inputs []string, popts pipeline.Options, opts Options) []Result {
	results := make([]Result, len(inputs))
	for i, in := range inputs {
		results[i] = Result{Input: in}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				files, err := File(inputs[i], popts, opts)
				results[i].Files, results[i].Err = files, err
			}
		}()
	}

	next := 0
feed:
	for ; next < len(inputs); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(inputs); i++ {
		results[i].Err = ctx.Err()
	}
	return results
}

// File converts a single input and returns the paths it wrote.
func File(input string, popts pipeline.Options, opts Options) ([]string, error) {
	logger := log.WithComponent("convert").With(slog.String("input", input))

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	popts.KeepMasks = opts.DumpMasks
	var res *pipeline.Result
	if opts.Base64 {
		res, err = pipeline.Process(string(data), popts)
	} else {
		res, err = pipeline.ProcessBytes(data, popts)
	}
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", input, err)
	}

	dir := opts.OutDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(dir, stem(input))

	var written []string
	outputs := []struct {
		tag  string
		doc  *svg.Document
		mask *raster.Mask
	}{
		{"sigma1", res.Low, res.LowMask},
		{"sigma2", res.High, res.HighMask},
	}
	for _, o := range outputs {
		path := base + "." + o.tag + ".svg"
		if err := o.doc.WriteFile(path); err != nil {
			return written, err
		}
		written = append(written, path)

		if o.mask != nil {
			path = base + "." + o.tag + ".mask.png"
			if err := o.mask.SavePNG(path); err != nil {
				return written, err
			}
			written = append(written, path)
		}

		if opts.Preview {
			path = base + "." + o.tag + ".preview.png"
			if err := writePreview(path, o.doc); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	logger.Info("converted",
		slog.Int("width", res.Width), slog.Int("height", res.Height),
		slog.Int("paths_low", len(res.Low.Paths)), slog.Int("paths_high", len(res.High.Paths)),
		slog.Int("files", len(written)))
	return written, nil
}

func writePreview(path string, doc *svg.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := preview.EncodePNG(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write preview %s: %w", path, err)
	}
	return f.Close()
}

// stem is the file name without directory or extension.
func stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
