package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hcpro/triaged/internal/feature"
	"github.com/hcpro/triaged/internal/intake"
	"github.com/hcpro/triaged/internal/report"
	"github.com/hcpro/triaged/internal/session"
	"github.com/hcpro/triaged/internal/storage"
)

// handleChat serves the legacy stateless question lookup: a question index in,
// the prompt text out.
func handleChat() http.HandlerFunc {
	type chatRequest struct {
		ID *int `json:"id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == nil {
			httpError(w, http.StatusInternalServerError, "api_error", "question id is required")
			return
		}

		q, ok := intake.Question(*req.ID)
		if !ok {
			httpError(w, http.StatusInternalServerError, "api_error", "question id %d out of range", *req.ID)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": 201,
			"data":   q.Prompt,
		})
	}
}

type questionPayload struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
}

func handleIntakeStart(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := deps.Intake.Start()
		writeJSON(w, http.StatusCreated, map[string]any{
			"session_id": id,
			"question":   questionPayload{Index: 0, Prompt: intake.Questions[0].Prompt},
		})
	}
}

func handleIntakeQuestion(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		q, complete, err := deps.Intake.CurrentQuestion(id)
		if errors.Is(err, session.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "intake session not found or expired")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading intake session: %v", err)
			return
		}

		if complete {
			writeJSON(w, http.StatusOK, map[string]any{"complete": true})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"complete": false,
			"question": questionPayload{Index: q.Index, Prompt: q.Prompt},
		})
	}
}

func handleIntakeAnswer(deps Deps) http.HandlerFunc {
	type answerRequest struct {
		Answer string `json:"answer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		id := chi.URLParam(r, "id")

		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Answer == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "answer is required")
			return
		}

		next, complete, err := deps.Intake.SubmitAnswer(id, req.Answer)
		switch {
		case errors.Is(err, session.ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "intake session not found or expired")
			return
		case errors.Is(err, intake.ErrAlreadyComplete):
			httpError(w, http.StatusConflict, "invalid_request_error", "intake already complete")
			return
		case err != nil:
			httpError(w, http.StatusInternalServerError, "api_error", "recording answer: %v", err)
			return
		}

		if !complete {
			writeJSON(w, http.StatusOK, map[string]any{
				"complete": false,
				"question": questionPayload{Index: next.Index, Prompt: next.Prompt},
			})
			return
		}

		completeIntake(w, r, deps, id)
	}
}

// completeIntake runs the triage pipeline over a just-finished conversation:
// finalize, derive, score, rank, audit, report. The report sink is a side
// channel; its failure becomes a status flag, not a failed request.
func completeIntake(w http.ResponseWriter, r *http.Request, deps Deps, id string) {
	rec, err := deps.Intake.Finalize(id)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "finalizing intake: %v", err)
		return
	}

	nurses, err := scoreAndRank(r.Context(), deps, feature.Derive(rec))
	if err != nil {
		httpError(w, http.StatusBadGateway, "upstream_error", "triage scoring failed: %v", err)
		return
	}

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "encoding record: %v", err)
		return
	}

	reportStatus := dispatchReport(r, deps, id, string(recordJSON))
	auditTriage(deps, "intake", string(recordJSON), nurses, reportStatus)

	writeJSON(w, http.StatusOK, map[string]any{
		"complete":      true,
		"message":       "Prediction successful",
		"top_nurses":    nurses,
		"report_status": reportStatus,
	})
}

// dispatchReport delivers the completed record to the downstream sink.
// Returns "delivered", "failed", or "skipped" when no sink is configured.
func dispatchReport(r *http.Request, deps Deps, sessionID, recordJSON string) string {
	if deps.Reports == nil {
		return "skipped"
	}

	rep := report.Report{
		SessionID:     sessionID,
		Filename:      "intake",
		ExtractedData: recordJSON,
		Timestamp:     time.Now().UTC(),
	}
	if err := deps.Reports.Create(r.Context(), rep); err != nil {
		slog.Warn("report delivery failed", "session_id", sessionID, "error", err)
		return "failed"
	}
	return "delivered"
}

// auditTriage persists a completed scoring run. Audit failures are logged,
// never surfaced: the audit log is not on the request's critical path.
func auditTriage(deps Deps, source, recordJSON string, nurses []nurseScore, reportStatus string) {
	if deps.Audit == nil {
		return
	}

	resultsJSON, err := json.Marshal(nurses)
	if err != nil {
		slog.Warn("encoding triage results for audit", "error", err)
		return
	}
	t := storage.Triage{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Source:       source,
		RecordJSON:   recordJSON,
		ResultsJSON:  string(resultsJSON),
		ReportStatus: reportStatus,
	}
	if err := deps.Audit.SaveTriage(t); err != nil {
		slog.Warn("saving triage audit row", "error", err)
	}
}
