package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/aircargo-labs/awb-extractor/internal/providers"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini
type Gemini struct{}

// New returns a new Gemini provider
func New() *Gemini {
	return &Gemini{}
}

// ExtractText sends the page image and prompt to Gemini and returns the raw
// reply. The client is constructed per call with the request's credential.
func (g *Gemini) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if config.APIKey == "" {
		return "", &providers.ServiceError{Provider: "gemini", Err: fmt.Errorf("api key not set")}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return "", &providers.ServiceError{Provider: "gemini", Err: fmt.Errorf("failed to create client: %w", err)}
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))

	parts := []genai.Part{genai.Text(config.Prompt)}
	if len(config.Image) > 0 {
		// genai wants the bare format, not the full MIME type
		format := strings.TrimPrefix(config.ImageMIME, "image/")
		parts = append([]genai.Part{genai.ImageData(format, config.Image)}, parts...)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &providers.ServiceError{Provider: "gemini", Err: fmt.Errorf("failed to generate content: %w", err)}
	}

	if len(resp.Candidates) == 0 {
		return "", &providers.ServiceError{Provider: "gemini", Err: fmt.Errorf("no candidates returned")}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &providers.ServiceError{Provider: "gemini", Err: fmt.Errorf("empty content returned")}
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", &providers.ServiceError{Provider: "gemini", Err: fmt.Errorf("unexpected response format")}
}
