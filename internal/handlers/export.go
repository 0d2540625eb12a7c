package handlers

import (
	"net/http"
	"strings"

	"github.com/aircargo-labs/awb-extractor/internal/export"
)

// HandleExport serves the on-demand export of a completed run. The body is
// the pretty-printed decoded record (or its XLSX rendition) and the download
// name is derived from the extracted waybill number.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/export/")
	entry, exists := h.store.Get(id)
	if !exists {
		h.writeError(w, "Result not found", http.StatusNotFound)
		return
	}
	if !entry.Result.Export {
		h.writeError(w, "Export not enabled for this result", http.StatusForbidden)
		return
	}

	format := export.FormatJSON
	if r.URL.Query().Get("format") == string(export.FormatXLSX) {
		format = export.FormatXLSX
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case export.FormatXLSX:
		data, err = export.XLSX(entry.Result.Record)
	default:
		data, err = export.JSON(entry.Result.Record)
	}
	if err != nil {
		h.writeError(w, "Failed to build export: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.MIME())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(entry.Result.Record, format)+`"`)
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Failed to write export: "+err.Error(), http.StatusInternalServerError)
	}
}
