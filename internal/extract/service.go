// Package extract drives the document -> image -> model -> record pipeline.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aircargo-labs/awb-extractor/internal/awb"
	"github.com/aircargo-labs/awb-extractor/internal/gemini"
	"github.com/aircargo-labs/awb-extractor/internal/ollama"
	"github.com/aircargo-labs/awb-extractor/internal/openai"
	"github.com/aircargo-labs/awb-extractor/internal/providers"
	"github.com/aircargo-labs/awb-extractor/internal/rasterize"
	"github.com/aircargo-labs/awb-extractor/internal/recovery"
)

// Pre-flight failures, reported before any stage runs.
var (
	ErrMissingDocument   = errors.New("extract: no document supplied")
	ErrMissingCredential = errors.New("extract: no credential supplied")
)

// Stage names the pipeline step a run is in. Every failing stage is terminal
// for the request; the user resubmits.
type Stage string

const (
	StageSubmitted   Stage = "submitted"
	StageRasterizing Stage = "rasterizing"
	StageInferring   Stage = "inferring"
	StageParsing     Stage = "parsing"
	StageRendered    Stage = "rendered"
)

// RunError reports which stage failed. RawText carries the model output when
// one was produced before the failure, so the caller can display it; it is
// empty for failures with no output.
type RunError struct {
	Stage   Stage
	RawText string
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("extract: %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Request is one extraction run, created per user action. The credential and
// display toggles travel with the request instead of living in globals.
type Request struct {
	PDF        []byte
	Filename   string
	Credential string
	Provider   string
	Model      string
	ShowRaw    bool
	Export     bool
}

// Result is a completed run.
type Result struct {
	Record      awb.Record
	RawResponse string
	Provider    string
	Model       string
	Elapsed     time.Duration
	ShowRaw     bool
	Export      bool
}

// Pager renders the first page of a PDF. Satisfied by rasterize.Rasterizer.
type Pager interface {
	FirstPage(ctx context.Context, pdf []byte) (*rasterize.PageImage, error)
}

// ProviderFactory resolves a provider name to a client.
type ProviderFactory func(name string) (providers.Provider, error)

// DefaultProviderFactory knows the three built-in backends.
func DefaultProviderFactory(name string) (providers.Provider, error) {
	switch name {
	case "gemini", "":
		return gemini.New(), nil
	case "openai":
		return openai.New(), nil
	case "ollama":
		return ollama.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// Service runs extractions. One logical request is in flight per user action;
// nothing here is shared mutable state, so the service is safe to reuse.
type Service struct {
	pager       Pager
	newProvider ProviderFactory
	temperature float64
	logger      *slog.Logger
}

func NewService(pager Pager, temperature float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pager:       pager,
		newProvider: DefaultProviderFactory,
		temperature: temperature,
		logger:      logger,
	}
}

// WithProviderFactory replaces the provider lookup. Test hook.
func (s *Service) WithProviderFactory(f ProviderFactory) *Service {
	s.newProvider = f
	return s
}

// Run executes the full pipeline: rasterize the first page, call the model
// with the fixed prompt, recover the JSON object from the reply. The call
// blocks until the model answers or errors; the context deadline is the only
// best-effort cancellation.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.PDF) == 0 {
		return nil, ErrMissingDocument
	}

	provider, err := s.newProvider(req.Provider)
	if err != nil {
		return nil, &RunError{Stage: StageSubmitted, Err: err}
	}
	// Ollama is local and keyless; the remote providers require the
	// pre-configured credential.
	if req.Credential == "" && req.Provider != "ollama" {
		return nil, ErrMissingCredential
	}

	start := time.Now()
	logger := s.logger.With("file", req.Filename, "provider", req.Provider, "model", req.Model, "prompt", awb.PromptVersion)
	logger.Info("extraction started")

	page, err := s.pager.FirstPage(ctx, req.PDF)
	if err != nil {
		logger.Error("rasterization failed", "err", err)
		return nil, &RunError{Stage: StageRasterizing, Err: err}
	}
	logger.Info("page rasterized", "width", page.Width, "height", page.Height)

	raw, err := provider.ExtractText(ctx, providers.Config{
		APIKey:      req.Credential,
		Model:       req.Model,
		Temperature: s.temperature,
		Prompt:      awb.ExtractionPrompt,
		Image:       page.Data,
		ImageMIME:   page.MIME,
	})
	if err != nil {
		logger.Error("inference failed", "err", err)
		return nil, &RunError{Stage: StageInferring, Err: err}
	}
	logger.Info("model responded", "length", len(raw))

	record, err := recovery.Extract(raw)
	if err != nil {
		logger.Warn("response recovery failed", "err", err)
		return nil, &RunError{Stage: StageParsing, RawText: raw, Err: err}
	}

	elapsed := time.Since(start)
	logger.Info("extraction complete", "waybill", record.WaybillNumber(), "elapsed", elapsed)

	return &Result{
		Record:      record,
		RawResponse: raw,
		Provider:    req.Provider,
		Model:       req.Model,
		Elapsed:     elapsed,
		ShowRaw:     req.ShowRaw,
		Export:      req.Export,
	}, nil
}
