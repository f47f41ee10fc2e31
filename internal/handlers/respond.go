package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string                `json:"error"`
	Field string                `json:"field,omitempty"`
	Steps []StepFailureResponse `json:"steps,omitempty"`
}

// StepFailureResponse is a StepFailure as JSON
type StepFailureResponse struct {
	State string `json:"state"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	var (
		ve      *apperrors.ErrValidation
		aborted *apperrors.ErrFundingAborted
	)
	switch {
	case errors.As(err, &aborted):
		return http.StatusConflict
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case apperrors.IsNotFound(err, ""):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	body := ErrorResponse{Error: err.Error()}

	var (
		ve      *apperrors.ErrValidation
		aborted *apperrors.ErrFundingAborted
	)
	if errors.As(err, &aborted) {
		body.Error = "funding aborted"
		for _, f := range aborted.Failures {
			body.Steps = append(body.Steps, StepFailureResponse{State: f.State, Error: f.Err.Error()})
		}
	} else if errors.As(err, &ve) {
		body.Error = ve.Message
		body.Field = ve.Field
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		body.Error = "internal server error"
	}
	writeJSON(w, status, body)
}

// asOf reads the optional as_of query parameter (RFC3339), defaulting to now
func asOf(r *http.Request, now func() time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return now(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &apperrors.ErrValidation{Field: "as_of", Message: "must be an RFC3339 timestamp"}
	}
	return t, nil
}
