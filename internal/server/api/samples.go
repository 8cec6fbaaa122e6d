package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// SamplesHandler serves labelled ground-truth samples and verifies the
// recognizer against them.
type SamplesHandler struct {
	store      *store.Store
	recognizer *gesture.Recognizer
}

// NewSamplesHandler creates a SamplesHandler.
func NewSamplesHandler(s *store.Store, r *gesture.Recognizer) *SamplesHandler {
	return &SamplesHandler{store: s, recognizer: r}
}

// ServeHTTP routes /api/samples, /api/samples/verify and /api/samples/{id}.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := itemID(r, "/api/samples")

	switch {
	case id == "":
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case id == "verify":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.verify(w, r)
	default:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type createSampleRequest struct {
	Label  string                 `json:"label"`
	Hand   detector.HandLandmarks `json:"hand"`
	Source string                 `json:"source"`
}

type sampleResponse struct {
	ID         string                                  `json:"id"`
	Label      string                                  `json:"label"`
	Handedness string                                  `json:"handedness"`
	Points     [detector.NumLandmarks]detector.Point3D `json:"points"`
	Source     string                                  `json:"source,omitempty"`
	CreatedAt  string                                  `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
	Counts  map[string]int   `json:"counts"`
}

type verifyResponse struct {
	Reports []gesture.Report `json:"reports"`
}

func toSampleResponse(s *store.Sample) sampleResponse {
	return sampleResponse{
		ID:         s.ID,
		Label:      s.Label,
		Handedness: s.Hand.Handedness,
		Points:     s.Hand.Points,
		Source:     s.Source,
		CreatedAt:  s.CreatedAt.Format(timeLayout),
	}
}

// list handles GET /api/samples?label=L.
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request) {
	samples, err := h.store.Samples().List(r.URL.Query().Get("label"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}
	counts, err := h.store.Samples().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count samples")
		return
	}

	response := listSamplesResponse{
		Samples: make([]sampleResponse, 0, len(samples)),
		Counts:  counts,
	}
	for _, s := range samples {
		response.Samples = append(response.Samples, toSampleResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/samples/{id}.
func (h *SamplesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sample, err := h.store.Samples().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sample not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sample")
		return
	}

	writeJSON(w, http.StatusOK, toSampleResponse(sample))
}

// create handles POST /api/samples.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	if _, ok := req.Hand.IsRight(); !ok {
		writeError(w, http.StatusBadRequest, "hand.handedness must be Left or Right")
		return
	}
	if err := req.Hand.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sample := &store.Sample{Label: req.Label, Hand: req.Hand, Source: req.Source}
	if err := h.store.Samples().Create(sample); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create sample")
		return
	}

	writeJSON(w, http.StatusCreated, toSampleResponse(sample))
}

// delete handles DELETE /api/samples/{id}.
func (h *SamplesHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Samples().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sample not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete sample")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// verify handles POST /api/samples/verify: accuracy over every stored sample,
// once per thumb rotation convention.
func (h *SamplesHandler) verify(w http.ResponseWriter, r *http.Request) {
	samples, err := h.store.Samples().List(r.URL.Query().Get("label"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	reports := gesture.CompareThumbConventions(h.recognizer.Matcher(), h.recognizer.HandConfig(), labelled(samples))
	writeJSON(w, http.StatusOK, verifyResponse{Reports: reports})
}

// labelled converts stored samples into recognizer verification input.
func labelled(samples []*store.Sample) []gesture.Labelled {
	out := make([]gesture.Labelled, len(samples))
	for i, s := range samples {
		out[i] = gesture.Labelled{ID: s.ID, Expected: s.Label, Hand: s.Hand}
	}
	return out
}
