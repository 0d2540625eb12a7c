package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aircargo-labs/awb-extractor/internal/providers"
)

// OpenAI is a provider for OpenAI
type OpenAI struct{}

// New returns a new OpenAI provider
func New() *OpenAI {
	return &OpenAI{}
}

// ExtractText sends the page image and prompt to OpenAI and returns the raw
// reply.
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if config.APIKey == "" {
		return "", &providers.ServiceError{Provider: "openai", Err: fmt.Errorf("api key not set")}
	}

	url := "https://api.openai.com/v1/chat/completions"

	content := []map[string]any{
		{
			"type": "text",
			"text": config.Prompt,
		},
	}
	if len(config.Image) > 0 {
		dataURL := "data:" + config.ImageMIME + ";base64," + base64.StdEncoding.EncodeToString(config.Image)
		content = append(content, map[string]any{
			"type": "image_url",
			"image_url": map[string]string{
				"url": dataURL,
			},
		})
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": config.Model,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": content,
			},
		},
		"temperature": config.Temperature,
	})
	if err != nil {
		return "", &providers.ServiceError{Provider: "openai", Err: fmt.Errorf("failed to marshal request body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", &providers.ServiceError{Provider: "openai", Err: fmt.Errorf("failed to create new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.APIKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", &providers.ServiceError{Provider: "openai", Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &providers.ServiceError{Provider: "openai", Err: fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", &providers.ServiceError{Provider: "openai", Err: fmt.Errorf("failed to decode response body: %w", err)}
	}

	if len(response.Choices) == 0 {
		return "", &providers.ServiceError{Provider: "openai", Err: fmt.Errorf("no choices returned")}
	}

	return response.Choices[0].Message.Content, nil
}
