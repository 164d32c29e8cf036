package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/njchilds90/fixpoint-explorer/internal/explore"
	"github.com/njchilds90/fixpoint-explorer/internal/function"
	"github.com/njchilds90/fixpoint-explorer/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads exactly one JSON value with no unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var ve *function.ValidationError
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve),
		errors.Is(err, explore.ErrNoLimit),
		errors.Is(err, explore.ErrTooManyConstants),
		errors.Is(err, explore.ErrRange),
		errors.Is(err, store.ErrIndexRange):
		return http.StatusUnprocessableEntity
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// userMessage is the text shown for err. Internal errors are not exposed.
func userMessage(err error) string {
	var ve *function.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if statusOf(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	body := errorBody{Error: userMessage(err)}
	var ve *function.ValidationError
	if errors.As(err, &ve) {
		body.Kind = ve.Kind.String()
	}
	writeJSON(w, status, body)
}

func (s *Server) recordValidation(err error) {
	outcome := "ok"
	var ve *function.ValidationError
	switch {
	case errors.As(err, &ve):
		outcome = ve.Kind.String()
	case err != nil:
		outcome = "error"
	}
	s.metrics.validations.WithLabelValues(outcome).Inc()
}

// pathID reads the {id} wildcard. Malformed ids are reported as missing.
func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: function %q", store.ErrNotFound, raw)
	}
	return uint(id), nil
}
