package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hcpro/triaged/internal/document"
	"github.com/hcpro/triaged/internal/session"
)

// handleUpload accepts a PDF as the "pdf" multipart field, extracts its text
// and opens a document session.
func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid multipart request: %v", err)
			return
		}

		file, header, err := r.FormFile("pdf")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "no PDF file provided")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading uploaded file: %v", err)
			return
		}

		id, textLen, err := deps.Documents.Upload(header.Filename, data)
		switch {
		case errors.Is(err, document.ErrEmptyFile):
			httpError(w, http.StatusBadRequest, "invalid_request_error", "uploaded file is empty")
			return
		case errors.Is(err, document.ErrNotPDF):
			httpError(w, http.StatusBadRequest, "invalid_request_error", "only PDF files are supported")
			return
		case err != nil:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "could not extract text: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "PDF uploaded and processed successfully",
			"session_id":  id,
			"filename":    header.Filename,
			"text_length": textLen,
		})
	}
}

// handleAsk answers a question about a previously uploaded document.
func handleAsk(deps Deps) http.HandlerFunc {
	type askRequest struct {
		Query     string `json:"query"`
		SessionID string `json:"session_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}

		answer, filename, err := deps.Documents.Ask(r.Context(), req.SessionID, req.Query)
		switch {
		case errors.Is(err, session.ErrNotFound):
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session not found or expired, please upload the PDF again")
			return
		case err != nil:
			httpError(w, http.StatusBadGateway, "upstream_error", "answering question: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"response": answer,
			"filename": filename,
		})
	}
}

// handleSessionInfo serves a document session summary without refreshing its
// TTL window.
func handleSessionInfo(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		info, err := deps.Documents.Describe(id)
		if errors.Is(err, session.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found or expired")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading session: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"filename":    info.Filename,
			"text_length": info.TextLength,
			"upload_time": info.UploadTime.UTC().Format(time.RFC3339),
		})
	}
}
