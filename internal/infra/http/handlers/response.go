package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/infra/http/middleware"
	"github.com/xavierca1/leaddialer/internal/usecase"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

// readJSON decodes a JSON request body with a size limit and answers 400 on failure.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return v, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFailure maps a usecase error to a status. The cause is logged, never returned.
func writeFailure(w http.ResponseWriter, log *zap.Logger, err error, notFoundMsg, fallbackMsg string) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		log.Info(notFoundMsg, zap.String("code", de.Code), zap.Error(err))
		writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}

	var ue *entity.UpstreamError
	if errors.As(err, &ue) {
		middleware.RecordIntegrationError(ue.Service)
	}
	log.Error(fallbackMsg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, fallbackMsg)
}
