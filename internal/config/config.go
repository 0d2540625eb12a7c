// Package config loads runtime settings from the environment, optionally
// overlaid by an awb-extractor.yml file next to the binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the optional YAML overlay looked up by Load.
const DefaultFile = "awb-extractor.yml"

// Config holds all application configuration. Credentials stay here and are
// handed to the pipeline per request; nothing reads them ambiently.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Inference InferenceConfig `yaml:"inference"`
	Rasterize RasterizeConfig `yaml:"rasterize"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port            string `yaml:"port"`
	UploadLimitMB   int    `yaml:"upload_limit_mb"`
	RequestTimeoutS int    `yaml:"request_timeout_s"`
}

// InferenceConfig holds the provider selection and credentials.
type InferenceConfig struct {
	Provider     string  `yaml:"provider"` // "gemini", "openai", or "ollama"
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	GeminiAPIKey string  `yaml:"-"`
	OpenAIAPIKey string  `yaml:"-"`
}

// RasterizeConfig holds PDF rendering settings.
type RasterizeConfig struct {
	Pdftoppm string `yaml:"pdftoppm"`
	DPI      int    `yaml:"dpi"`
	MaxWidth int    `yaml:"max_width"`
}

// Load builds the configuration from environment variables, then applies the
// YAML overlay file when one exists. Env wins for credentials; the overlay
// never carries secrets.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8888"),
			UploadLimitMB:   getEnvAsInt("UPLOAD_LIMIT_MB", 20),
			RequestTimeoutS: getEnvAsInt("REQUEST_TIMEOUT_S", 120),
		},
		Inference: InferenceConfig{
			Provider:     getEnv("EXTRACTION_PROVIDER", "gemini"),
			Model:        getEnv("EXTRACTION_MODEL", ""),
			Temperature:  getEnvAsFloat("EXTRACTION_TEMPERATURE", 0.0),
			GeminiAPIKey: getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", "")),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		},
		Rasterize: RasterizeConfig{
			Pdftoppm: getEnv("PDFTOPPM", "pdftoppm"),
			DPI:      getEnvAsInt("RASTER_DPI", 200),
			MaxWidth: getEnvAsInt("RASTER_MAX_WIDTH", 2000),
		},
	}

	if err := cfg.applyFile(DefaultFile); err != nil {
		return nil, err
	}

	if cfg.Inference.Model == "" {
		cfg.Inference.Model = DefaultModel(cfg.Inference.Provider)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// DefaultModel returns the model used when none is configured for a provider.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "llama3.2-vision"
	default:
		return "models/gemini-2.5-flash"
	}
}

// Credential resolves the pre-configured credential for the given provider.
// Ollama runs without one.
func (c *Config) Credential(provider string) string {
	switch provider {
	case "openai":
		return c.Inference.OpenAIAPIKey
	case "ollama":
		return ""
	default:
		return c.Inference.GeminiAPIKey
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
