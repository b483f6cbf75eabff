package api

import (
	"encoding/json"
	"net/http"

	"github.com/hcpro/triaged/internal/feature"
)

// handlePredict scores a flat feature map directly, without an intake
// conversation. This is the surface the original batch clients use.
func handlePredict(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request. JSON expected: %v", err)
			return
		}

		nurses, err := scoreAndRank(r.Context(), deps, feature.NumericValues(data))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "error during prediction: %v", err)
			return
		}

		recordJSON, err := json.Marshal(data)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "encoding features: %v", err)
			return
		}
		auditTriage(deps, "predict", string(recordJSON), nurses, "skipped")

		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Prediction successful",
			"top_nurses": nurses,
		})
	}
}
