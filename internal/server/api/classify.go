package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// ClassifyHandler classifies posted landmarks without touching the camera.
type ClassifyHandler struct {
	recognizer *gesture.Recognizer
}

// NewClassifyHandler creates a ClassifyHandler.
func NewClassifyHandler(r *gesture.Recognizer) *ClassifyHandler {
	return &ClassifyHandler{recognizer: r}
}

type classifyRequest struct {
	Hands []detector.HandLandmarks `json:"hands"`
}

type classifyResponse struct {
	Results []gesture.Result `json:"results"`
	// Skipped counts hands that could not be modelled.
	Skipped int `json:"skipped"`
}

// ServeHTTP handles POST /api/classify.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if len(req.Hands) == 0 {
		writeError(w, http.StatusBadRequest, "hands is required")
		return
	}

	results, err := h.recognizer.Recognize(req.Hands, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		Results: results,
		Skipped: len(req.Hands) - len(results),
	})
}
