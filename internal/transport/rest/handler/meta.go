package handler

import (
	"encoding/json"
	"net/http"

	"amiai/internal/model"
	"amiai/internal/service"
)

// MetaHandler serves health, server stats and provider info
type MetaHandler struct {
	match *service.MatchService
	ai    *service.AIClient
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(match *service.MatchService, ai *service.AIClient) *MetaHandler {
	return &MetaHandler{match: match, ai: ai}
}

// Health handles GET /health
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	aiStatus := "down"
	if h.ai.HealthCheck(r.Context()) {
		aiStatus = "ok"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"aiService": aiStatus,
	})
}

// Stats handles GET /stats
func (h *MetaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.match.Stats(r.Context()))
}

// Providers handles GET /providers. When the ai-service is unreachable the
// built-in fallback generator is reported as the only provider.
func (h *MetaHandler) Providers(w http.ResponseWriter, r *http.Request) {
	providers, err := h.ai.ListProviders(r.Context())
	if err != nil {
		providers = []model.ProviderInfo{
			{Name: "fallback", Enabled: true, Model: "builtin", Current: true},
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"providers": providers})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
