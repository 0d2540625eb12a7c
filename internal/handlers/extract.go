package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aircargo-labs/awb-extractor/internal/awb"
	"github.com/aircargo-labs/awb-extractor/internal/export"
	"github.com/aircargo-labs/awb-extractor/internal/extract"
	"github.com/aircargo-labs/awb-extractor/internal/render"
	"github.com/google/uuid"
)

// extractResponse is the success payload for one extraction run.
type extractResponse struct {
	ID        string           `json:"id"`
	Document  *render.Document `json:"document"`
	Waybill   string           `json:"waybill_number"`
	ElapsedMS int64            `json:"elapsed_ms"`
	Record    awb.Record       `json:"record,omitempty"` // only when show_raw was requested
	Export    *exportInfo      `json:"export,omitempty"` // only when export was enabled
}

type exportInfo struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// failureResponse carries the error message plus the untouched raw model
// text when one was produced, so it can be inspected manually.
type failureResponse struct {
	Error   string `json:"error"`
	Stage   string `json:"stage,omitempty"`
	RawText string `json:"raw_text,omitempty"`
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := int64(h.cfg.Server.UploadLimitMB) * 1024 * 1024

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeFailure(w, http.StatusBadRequest, failureResponse{Error: "No PDF file uploaded: " + err.Error()})
		return
	}
	defer file.Close()

	pdfData, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.writeFailure(w, http.StatusInternalServerError, failureResponse{Error: "Failed to read file contents: " + err.Error()})
		return
	}
	if int64(len(pdfData)) > limit {
		h.writeFailure(w, http.StatusBadRequest, failureResponse{Error: "File too large"})
		return
	}

	provider := r.FormValue("provider")
	if provider == "" {
		provider = h.cfg.Inference.Provider
	}
	model := r.FormValue("model")
	if model == "" {
		model = h.cfg.Inference.Model
	}

	req := extract.Request{
		PDF:        pdfData,
		Filename:   header.Filename,
		Credential: h.cfg.Credential(provider),
		Provider:   provider,
		Model:      model,
		ShowRaw:    r.FormValue("show_raw") == "true",
		Export:     r.FormValue("export") != "false",
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.writeFailure(w, failureStatus(err), runFailure(err))
		return
	}

	id := uuid.NewString()
	h.store.Set(id, result)

	resp := extractResponse{
		ID:        id,
		Document:  render.Build(result.Record),
		Waybill:   result.Record.WaybillNumber(),
		ElapsedMS: result.Elapsed.Milliseconds(),
	}
	if result.ShowRaw {
		resp.Record = result.Record
	}
	if result.Export {
		resp.Export = &exportInfo{
			URL:      "/api/export/" + id,
			Filename: export.Filename(result.Record, export.FormatJSON),
		}
	}

	h.writeJSON(w, resp)
}

func (h *Handler) writeFailure(w http.ResponseWriter, status int, body failureResponse) {
	slog.Error("extraction request failed", "status", status, "stage", body.Stage, "err", body.Error)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Unable to encode failure response", "err", err)
	}
}

// runFailure converts a pipeline error into the user-visible failure payload,
// preserving the raw model text when the run produced one.
func runFailure(err error) failureResponse {
	var runErr *extract.RunError
	if errors.As(err, &runErr) {
		return failureResponse{
			Error:   runErr.Error(),
			Stage:   string(runErr.Stage),
			RawText: runErr.RawText,
		}
	}
	return failureResponse{Error: err.Error()}
}

func failureStatus(err error) int {
	if errors.Is(err, extract.ErrMissingDocument) || errors.Is(err, extract.ErrMissingCredential) {
		return http.StatusBadRequest
	}
	var runErr *extract.RunError
	if errors.As(err, &runErr) {
		switch runErr.Stage {
		case extract.StageRasterizing, extract.StageSubmitted:
			return http.StatusBadRequest
		case extract.StageInferring:
			return http.StatusBadGateway
		case extract.StageParsing:
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
