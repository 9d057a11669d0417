package server

import (
	"encoding/json"
	"net/http"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// errorResponse is the body of every failed API call
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.IsInvalidRequestError(err):
		return http.StatusBadRequest
	case errors.IsServiceUnavailableError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers a failed API call. In legacy mode every error is a 200,
// and a missing document is the JSON null the Mongoose proxy sent.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := logger.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Errorw("API request failed", logger.FieldPath, r.URL.Path, logger.FieldError, err)
	} else {
		log.Debugw("API request rejected", logger.FieldPath, r.URL.Path, logger.FieldStatus, status, logger.FieldError, err)
	}

	if s.legacyErrors.Load() {
		if status == http.StatusNotFound {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		status = http.StatusOK
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// respond writes data, or the error if err is set
func (s *Server) respond(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		logger.LoggerFromContext(r.Context()).Debugw("Response write failed", logger.FieldError, err)
	}
}

// readJSON decodes a JSON request body; failures are invalid requests
func readJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewInvalidRequestError("invalid request body: %v", err)
	}
	return nil
}

// orEmpty keeps empty results from encoding as null
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
