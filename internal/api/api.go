// Package api exposes the intake and triage routing engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hcpro/triaged/internal/document"
	"github.com/hcpro/triaged/internal/feature"
	"github.com/hcpro/triaged/internal/intake"
	"github.com/hcpro/triaged/internal/ranking"
	"github.com/hcpro/triaged/internal/report"
	"github.com/hcpro/triaged/internal/scoring"
	"github.com/hcpro/triaged/internal/session"
	"github.com/hcpro/triaged/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB
const maxUploadSize = 10 << 20     // 10MB

// TriageLog abstracts the audit-log store for the API layer.
// Implemented by storage.Store.
type TriageLog interface {
	SaveTriage(t storage.Triage) error
	GetTriage(id string) (storage.Triage, error)
	ListTriages(limit, offset int) ([]storage.Triage, error)
}

// Deps carries the collaborators every handler closes over.
type Deps struct {
	Sessions  *session.Store
	Intake    *intake.Machine
	Documents *document.Manager
	Scorer    scoring.Scorer
	Schema    []string
	Roster    ranking.Roster
	TopN      int
	Reports   report.Sink // optional; nil skips report delivery
	Audit     TriageLog
}

// NewHandler builds the HTTP router. Every route that can touch the session
// store sweeps expired entries first (lazy expiry).
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(sweepSessions(deps.Sessions))

	r.Get("/health", handleHealth)

	r.Post("/chat", handleChat())
	r.Post("/predict", handlePredict(deps))

	r.Post("/intake", handleIntakeStart(deps))
	r.Get("/intake/{id}", handleIntakeQuestion(deps))
	r.Post("/intake/{id}/answer", handleIntakeAnswer(deps))

	r.Post("/upload", handleUpload(deps))
	r.Post("/ask", handleAsk(deps))
	r.Get("/session/{id}", handleSessionInfo(deps))

	r.Get("/triages", handleListTriages(deps))
	r.Get("/triages/{id}", handleGetTriage(deps))

	return r
}

// sweepSessions reclaims expired sessions before each request is handled.
// Correctness does not depend on it (reads re-check the TTL); this is memory
// hygiene on the request path instead of a background timer.
func sweepSessions(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store.Sweep()
			next.ServeHTTP(w, r)
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// nurseScore is one entry of a ranked result, with the probability rounded
// for presentation.
type nurseScore struct {
	NurseID     string  `json:"nurse_id"`
	Probability float64 `json:"probability"`
}

// rankNurses runs the ranking engine over a model distribution and resolves
// candidate ids through the roster. Rounding happens here, after ranking.
func rankNurses(dist map[int]float64, roster ranking.Roster, topN int) ([]nurseScore, error) {
	ranked, err := ranking.Rank(dist, topN)
	if err != nil {
		return nil, err
	}

	nurses := make([]nurseScore, 0, len(ranked))
	for _, cs := range ranked {
		providerID, ok := roster.ProviderID(cs.CandidateID)
		if !ok {
			return nil, fmt.Errorf("candidate %d not in provider roster", cs.CandidateID)
		}
		nurses = append(nurses, nurseScore{
			NurseID:     providerID,
			Probability: ranking.RoundProbability(cs.Probability),
		})
	}
	return nurses, nil
}

// scoreAndRank vectorizes, calls the external scorer, and ranks the result.
func scoreAndRank(ctx context.Context, deps Deps, values map[string]float64) ([]nurseScore, error) {
	vec := feature.Vectorize(values, deps.Schema)
	dist, err := deps.Scorer.Score(ctx, vec)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	return rankNurses(dist, deps.Roster, deps.TopN)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
