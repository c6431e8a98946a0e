package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/storage"
	"github.com/dyike/QuantumGPT/models"
)

const maxBody = 1 << 20

// ErrorResponse is the single error body of the API.
type ErrorResponse struct {
	Message string         `json:"message"`
	Errors  []models.Issue `json:"errors,omitempty"`
}

// errUpstream marks failures of the AI provider.
var errUpstream = errors.New("upstream failure")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}

// writeErr maps err onto a status code and the error body.
func writeErr(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid input", Errors: verr.Issues})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errUpstream):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[HTTP] internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		var verr models.ValidationError
		verr.Add("body", fmt.Sprintf("Malformed JSON: %v", err))
		return &verr
	}
	return nil
}

func clientID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Client-ID")); id != "" {
		return id
	}
	return consts.DefaultClientID
}
