package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fraudlens/ml"
	"fraudlens/results"
	"fraudlens/store"
	"fraudlens/tabular"
)

// statusForError maps the pipeline error taxonomy to HTTP statuses.
// Every failure is request-local; nothing here crashes the process.
func statusForError(err error) int {
	var parseErr *tabular.ParseError
	var validationErr *ml.ValidationError
	var inferenceErr *ml.InferenceError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &inferenceErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrNoBatch), errors.Is(err, results.ErrEmptyBatch):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
