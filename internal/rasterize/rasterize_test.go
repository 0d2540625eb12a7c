package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

// fakeRunner stands in for pdftoppm. It writes pages (or fails) based on the
// scenario instead of shelling out.
type fakeRunner struct {
	pages  int // PNGs to produce
	width  int
	height int
	fail   bool
	stderr string
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.fail {
		return nil, []byte(f.stderr), errors.New("exit status 1")
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		data, err := testPNG(f.width, f.height)
		if err != nil {
			return nil, nil, err
		}
		if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), data, 0600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func testPNG(width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.White)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func TestFirstPage(t *testing.T) {
	runner := &fakeRunner{pages: 1, width: 100, height: 140}
	ras := New(Config{DPI: 150}, nil).WithRunner(runner)

	page, err := ras.FirstPage(context.Background(), []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("FirstPage failed: %v", err)
	}
	if page.Width != 100 || page.Height != 140 {
		t.Errorf("Expected 100x140, got %dx%d", page.Width, page.Height)
	}
	if page.MIME != "image/png" {
		t.Errorf("Expected image/png, got %s", page.MIME)
	}
	if _, err := png.Decode(bytes.NewReader(page.Data)); err != nil {
		t.Errorf("Page data is not valid PNG: %v", err)
	}
}

func TestFirstPageOnlyRendersPageOne(t *testing.T) {
	runner := &fakeRunner{pages: 1, width: 10, height: 10}
	ras := New(Config{}, nil).WithRunner(runner)

	if _, err := ras.FirstPage(context.Background(), []byte("pdf")); err != nil {
		t.Fatalf("FirstPage failed: %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("Expected 1 invocation, got %d", len(runner.calls))
	}
	args := runner.calls[0]
	joined := fmt.Sprint(args)
	for _, flag := range []string{"-png", "-f 1 -l 1"} {
		if !bytes.Contains([]byte(joined), []byte(flag)) {
			t.Errorf("Expected %q in args %v", flag, args)
		}
	}
}

func TestFirstPageEmptyDocument(t *testing.T) {
	tests := []struct {
		name   string
		pdf    []byte
		runner *fakeRunner
	}{
		{"no bytes", nil, &fakeRunner{}},
		{"no pages rendered", []byte("pdf"), &fakeRunner{pages: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ras := New(Config{}, nil).WithRunner(tt.runner)
			_, err := ras.FirstPage(context.Background(), tt.pdf)
			if !errors.Is(err, ErrEmptyDocument) {
				t.Errorf("Expected ErrEmptyDocument, got %v", err)
			}
		})
	}
}

func TestFirstPageDecodeFailure(t *testing.T) {
	runner := &fakeRunner{fail: true, stderr: "Syntax Error: not a PDF"}
	ras := New(Config{}, nil).WithRunner(runner)

	_, err := ras.FirstPage(context.Background(), []byte("not a pdf"))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
	if decodeErr.Stderr != "Syntax Error: not a PDF" {
		t.Errorf("Stderr not preserved: %q", decodeErr.Stderr)
	}
}

func TestFirstPageDownscalesWidePages(t *testing.T) {
	runner := &fakeRunner{pages: 1, width: 400, height: 200}
	ras := New(Config{MaxWidth: 100}, nil).WithRunner(runner)

	page, err := ras.FirstPage(context.Background(), []byte("pdf"))
	if err != nil {
		t.Fatalf("FirstPage failed: %v", err)
	}
	if page.Width != 100 {
		t.Errorf("Expected width capped at 100, got %d", page.Width)
	}
	if page.Height != 50 {
		t.Errorf("Expected proportional height 50, got %d", page.Height)
	}
}
