package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"amiai/internal/model"
	"amiai/internal/service"
)

// DuelHandler serves the standalone one-shot char duel
type DuelHandler struct {
	duelSvc *service.DuelService
}

// NewDuelHandler creates a new duel handler
func NewDuelHandler(duelSvc *service.DuelService) *DuelHandler {
	return &DuelHandler{duelSvc: duelSvc}
}

// Topic handles GET /topic
func (h *DuelHandler) Topic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.duelSvc.Topic(r.Context()))
}

type duelRequest struct {
	Topic    model.CharacterTopic `json:"topic"`
	UserChar string               `json:"userChar"`
	Guess    model.DuelGuess      `json:"guess"`
	Provider string               `json:"provider"`
}

// Play handles POST /duel
func (h *DuelHandler) Play(w http.ResponseWriter, r *http.Request) {
	var req duelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic.Title == "" {
		writeError(w, http.StatusBadRequest, "missing topic")
		return
	}

	result, err := h.duelSvc.Play(r.Context(), req.Topic, req.UserChar, req.Guess, req.Provider)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuelChar) || errors.Is(err, service.ErrInvalidDuelGuess) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
