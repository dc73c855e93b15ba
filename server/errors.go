package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"weldsim/material"
	"weldsim/model"
	"weldsim/simulator"
)

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("malformed request")

var errTooManyRequests = errors.New("too many requests, try again later")

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, material.ErrUnknownMaterial):
		return http.StatusNotFound
	case errors.Is(err, simulator.ErrInvalidParameter),
		errors.Is(err, simulator.ErrSingularEvaluation),
		errors.Is(err, simulator.ErrInvalidGrid):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	entry := log.WithFields(log.Fields{"path": r.URL.Path, "status": code}).WithError(err)
	if code == http.StatusInternalServerError {
		entry.Error("request failed")
		writeJSON(w, code, errorBody("internal server error"))
		return
	}
	entry.Warn("request rejected")
	writeJSON(w, code, errorBody(err.Error()))
}

func errorBody(msg string) model.ErrorResponse {
	return model.ErrorResponse{Error: msg}
}

// writeJSON encodes v before the status line goes out so an encoding failure still
// reaches the client as a 500.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.WithError(err).Error("encode response")
		code = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorBody("internal server error"))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("write response")
	}
}
