// Package api implements the JSON handlers under /api: classification,
// labelled samples, recognition history and hook bindings.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDecodeError reports a request body that could not be decoded. Hands
// with the wrong number of landmarks get a message saying so.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, detector.ErrLandmarkCount) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON")
}

// itemID returns the path segment after prefix, or "" for the collection itself.
func itemID(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
