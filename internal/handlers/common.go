package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aircargo-labs/awb-extractor/internal/config"
	"github.com/aircargo-labs/awb-extractor/internal/extract"
	"github.com/aircargo-labs/awb-extractor/internal/storage"
)

type Handler struct {
	store   *storage.ResultStore
	service *extract.Service
	cfg     *config.Config
}

func New(service *extract.Service, cfg *config.Config) *Handler {
	return &Handler{
		store:   storage.New(),
		service: service,
		cfg:     cfg,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
