package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hcpro/triaged/internal/storage"
)

type triagePayload struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	Source       string `json:"source"`
	Record       string `json:"record"`
	Results      string `json:"results"`
	ReportStatus string `json:"report_status"`
}

func toTriagePayload(t storage.Triage) triagePayload {
	return triagePayload{
		ID:           t.ID,
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
		Source:       t.Source,
		Record:       t.RecordJSON,
		Results:      t.ResultsJSON,
		ReportStatus: t.ReportStatus,
	}
}

// handleListTriages serves the audit log, newest first.
func handleListTriages(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Audit == nil {
			httpError(w, http.StatusInternalServerError, "api_error", "audit log is not configured")
			return
		}

		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		triages, err := deps.Audit.ListTriages(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing triages: %v", err)
			return
		}

		payload := make([]triagePayload, 0, len(triages))
		for _, t := range triages {
			payload = append(payload, toTriagePayload(t))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"triages": payload,
			"count":   len(payload),
		})
	}
}

func handleGetTriage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Audit == nil {
			httpError(w, http.StatusInternalServerError, "api_error", "audit log is not configured")
			return
		}

		id := chi.URLParam(r, "id")
		t, err := deps.Audit.GetTriage(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "triage %s not found", id)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading triage: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, toTriagePayload(t))
	}
}
