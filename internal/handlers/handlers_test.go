package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aircargo-labs/awb-extractor/internal/config"
	"github.com/aircargo-labs/awb-extractor/internal/extract"
	"github.com/aircargo-labs/awb-extractor/internal/providers"
	"github.com/aircargo-labs/awb-extractor/internal/rasterize"
)

type fakePager struct {
	err error
}

func (f *fakePager) FirstPage(context.Context, []byte) (*rasterize.PageImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rasterize.PageImage{Data: []byte("png"), MIME: "image/png", Width: 10, Height: 10}, nil
}

type fakeProvider struct {
	reply string
	err   error
}

func (f *fakeProvider) ExtractText(context.Context, providers.Config) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8888", UploadLimitMB: 20},
		Inference: config.InferenceConfig{
			Provider:     "gemini",
			Model:        "models/gemini-2.5-flash",
			GeminiAPIKey: "test-key",
		},
	}
}

func newTestHandler(pager extract.Pager, provider providers.Provider) *Handler {
	service := extract.NewService(pager, 0, nil).
		WithProviderFactory(func(string) (providers.Provider, error) {
			return provider, nil
		})
	return New(service, testConfig())
}

func uploadRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "waybill.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 fake")); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/extract", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestExtractEndToEnd(t *testing.T) {
	provider := &fakeProvider{
		reply: "Here is the data:\n```json\n{\"Air Waybill Number\": \"020-12345678\", \"Routing and Destination\": [{\"to\": \"JFK\", \"by\": \"AA\"}]}\n```",
	}
	handler := newTestHandler(&fakePager{}, provider)

	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, uploadRequest(t, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp extractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}

	if resp.Waybill != "020-12345678" {
		t.Errorf("Expected waybill number, got %q", resp.Waybill)
	}
	if resp.Export == nil {
		t.Fatal("Export should be enabled by default")
	}
	if !strings.Contains(resp.Export.Filename, "020-12345678") {
		t.Errorf("Export filename should contain the waybill number: %q", resp.Export.Filename)
	}
	if resp.Record != nil {
		t.Error("Raw record should be omitted unless show_raw is set")
	}

	// routing section renders one line per leg
	found := false
	for _, sec := range resp.Document.Sections {
		for _, line := range sec.Lines {
			if line == "To: JFK | By: AA" {
				found = true
			}
		}
	}
	if !found {
		t.Error("Rendered routing line not found")
	}

	// the offered export is downloadable and named after the waybill
	exportReq := httptest.NewRequest("GET", resp.Export.URL, nil)
	exportRec := httptest.NewRecorder()
	handler.HandleExport(exportRec, exportReq)

	if exportRec.Code != http.StatusOK {
		t.Fatalf("Export fetch failed: %d", exportRec.Code)
	}
	disposition := exportRec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "awb_data_020-12345678.json") {
		t.Errorf("Unexpected disposition: %q", disposition)
	}
	var exported map[string]any
	if err := json.Unmarshal(exportRec.Body.Bytes(), &exported); err != nil {
		t.Fatalf("Exported body is not JSON: %v", err)
	}
	if exported["Air Waybill Number"] != "020-12345678" {
		t.Error("Exported record does not match the extraction")
	}
}

func TestExtractShowRaw(t *testing.T) {
	provider := &fakeProvider{reply: `{"Air Waybill Number": "020-12345678"}`}
	handler := newTestHandler(&fakePager{}, provider)

	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, uploadRequest(t, map[string]string{"show_raw": "true"}))

	var resp extractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if resp.Record == nil {
		t.Error("Expected raw record when show_raw is set")
	}
}

func TestExtractParseFailureReturnsRawText(t *testing.T) {
	raw := "I could not find any waybill data in this image."
	handler := newTestHandler(&fakePager{}, &fakeProvider{reply: raw})

	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, uploadRequest(t, nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}
	var resp failureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid failure JSON: %v", err)
	}
	if resp.RawText != raw {
		t.Errorf("Raw text not surfaced: %q", resp.RawText)
	}
	if resp.Stage != "parsing" {
		t.Errorf("Expected parsing stage, got %q", resp.Stage)
	}
}

func TestExtractRasterizeFailure(t *testing.T) {
	handler := newTestHandler(&fakePager{err: rasterize.ErrEmptyDocument}, &fakeProvider{})

	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, uploadRequest(t, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var resp failureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid failure JSON: %v", err)
	}
	if resp.RawText != "" {
		t.Error("No raw text exists before inference")
	}
}

func TestExtractInferenceFailure(t *testing.T) {
	cause := &providers.ServiceError{Provider: "gemini", Err: errors.New("401 unauthorized")}
	handler := newTestHandler(&fakePager{}, &fakeProvider{err: cause})

	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, uploadRequest(t, nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
}

func TestExtractMissingFile(t *testing.T) {
	handler := newTestHandler(&fakePager{}, &fakeProvider{})

	req := httptest.NewRequest("POST", "/api/extract", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestExtractMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&fakePager{}, &fakeProvider{})
	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, httptest.NewRequest("GET", "/api/extract", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rec.Code)
	}
}

func TestExportUnknownResult(t *testing.T) {
	handler := newTestHandler(&fakePager{}, &fakeProvider{})
	rec := httptest.NewRecorder()
	handler.HandleExport(rec, httptest.NewRequest("GET", "/api/export/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestExportDisabled(t *testing.T) {
	provider := &fakeProvider{reply: `{"Air Waybill Number": "x"}`}
	handler := newTestHandler(&fakePager{}, provider)

	rec := httptest.NewRecorder()
	handler.HandleExtract(rec, uploadRequest(t, map[string]string{"export": "false"}))

	var resp extractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if resp.Export != nil {
		t.Fatal("Export info should be absent when disabled")
	}

	exportRec := httptest.NewRecorder()
	handler.HandleExport(exportRec, httptest.NewRequest("GET", "/api/export/"+resp.ID, nil))
	if exportRec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", exportRec.Code)
	}
}
