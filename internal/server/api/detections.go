package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// DetectionsHandler serves recognition history.
type DetectionsHandler struct {
	store *store.Store
}

// NewDetectionsHandler creates a DetectionsHandler.
func NewDetectionsHandler(s *store.Store) *DetectionsHandler {
	return &DetectionsHandler{store: s}
}

type detectionResponse struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Handedness string  `json:"handedness"`
	Curls      string  `json:"curls"`
	AnchorX    float64 `json:"anchor_x"`
	AnchorY    float64 `json:"anchor_y"`
	Angle      float64 `json:"angle"`
	CreatedAt  string  `json:"created_at"`
}

type listDetectionsResponse struct {
	Detections []detectionResponse `json:"detections"`
}

// ServeHTTP handles GET /api/detections?label=L&limit=N&since=RFC3339.
func (h *DetectionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := store.DetectionQuery{Label: r.URL.Query().Get("label")}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		query.Limit = limit
	}
	if v := r.URL.Query().Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		query.Since = since
	}

	detections, err := h.store.Detections().List(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list detections")
		return
	}

	response := listDetectionsResponse{
		Detections: make([]detectionResponse, 0, len(detections)),
	}
	for _, d := range detections {
		response.Detections = append(response.Detections, detectionResponse{
			ID:         d.ID,
			Label:      d.Label,
			Handedness: d.Handedness,
			Curls:      d.Curls,
			AnchorX:    d.AnchorX,
			AnchorY:    d.AnchorY,
			Angle:      d.Angle,
			CreatedAt:  d.CreatedAt.Format(timeLayout),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
