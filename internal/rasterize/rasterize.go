// Package rasterize converts an uploaded PDF's first page into a PNG image
// suitable for a vision model request.
package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
)

// ErrEmptyDocument is returned when the PDF produced no page images.
var ErrEmptyDocument = errors.New("rasterize: document produced no pages")

// DecodeError is returned when the document could not be rendered at all,
// e.g. the bytes are not a PDF. Stderr carries the renderer's diagnostics.
type DecodeError struct {
	Stderr string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("rasterize: decode failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("rasterize: decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Config controls the pdftoppm invocation.
type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI, default 200
	MaxWidth int    // downscale pages wider than this; 0 disables
}

// PageImage is the rendered first page. Discarded after the remote call.
type PageImage struct {
	Data   []byte // PNG encoded
	MIME   string // always "image/png"
	Width  int
	Height int
}

// Rasterizer renders PDFs through pdftoppm, the same renderer backing
// pdf2image. The exec boundary sits behind Runner so tests run without
// poppler installed.
type Rasterizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &Rasterizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner replaces the exec runner. Test hook.
func (r *Rasterizer) WithRunner(runner Runner) *Rasterizer {
	r.runner = runner
	return r
}

// FirstPage renders only page one of the document. Remaining pages are never
// inspected, matching the single-page scope of the extraction pipeline.
func (r *Rasterizer) FirstPage(ctx context.Context, pdf []byte) (*PageImage, error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyDocument
	}

	tmpDir, err := os.MkdirTemp("", "awb-ras-*")
	if err != nil {
		return nil, fmt.Errorf("rasterize: temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "err", err)
		}
	}()

	pdfPath := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0600); err != nil {
		return nil, fmt.Errorf("rasterize: write pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png -f 1 -l 1 <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", "-f", "1", "-l", "1", pdfPath, prefix)
	if err != nil {
		return nil, &DecodeError{Stderr: string(bytes.TrimSpace(errb)), Err: err}
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, ErrEmptyDocument
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("rasterize: read page image: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("invalid page image: %w", err)}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if r.cfg.MaxWidth > 0 && width > r.cfg.MaxWidth {
		data, width, height, err = downscale(img, r.cfg.MaxWidth)
		if err != nil {
			return nil, fmt.Errorf("rasterize: downscale: %w", err)
		}
		r.logger.Debug("page image downscaled", "width", width, "height", height)
	}

	r.logger.Info("first page rasterized", "width", width, "height", height, "bytes", len(data))
	return &PageImage{Data: data, MIME: "image/png", Width: width, Height: height}, nil
}

// downscale caps the page width so the inference request stays small without
// changing what the model can read.
func downscale(img image.Image, maxWidth int) ([]byte, int, int, error) {
	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, 0, 0, err
	}
	b := resized.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}
