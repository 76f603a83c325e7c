package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/infra/http/middleware"
	"github.com/xavierca1/leaddialer/internal/logger"
	"github.com/xavierca1/leaddialer/internal/usecase"
)

type CallService interface {
	StartCall(ctx context.Context, input usecase.StartCallInput) (*usecase.StartCallOutput, error)
	EndCall(ctx context.Context, input usecase.EndCallInput) (*usecase.EndCallOutput, error)
	GetCallStatus(ctx context.Context, leadID string) (*usecase.CallStatusOutput, error)
}

// TwiMLSource renders the instructions the provider fetches once the callee answers.
type TwiMLSource interface {
	Instructions() (string, error)
}

type CallHandler struct {
	calls  CallService
	twiml  TwiMLSource
	logger *zap.Logger
}

func NewCallHandler(calls CallService, twiml TwiMLSource, log *zap.Logger) *CallHandler {
	return &CallHandler{calls: calls, twiml: twiml, logger: logger.OrNop(log)}
}

// StartCall handles POST /api/calls/start.
func (h *CallHandler) StartCall(w http.ResponseWriter, r *http.Request) {
	input, ok := readJSON[usecase.StartCallInput](w, r)
	if !ok {
		return
	}

	out, err := h.calls.StartCall(r.Context(), input)
	if err != nil {
		writeFailure(w, h.logger, err, "Lead not found", "Failed to start call")
		return
	}

	middleware.RecordCallStarted()
	writeJSON(w, http.StatusOK, out)
}

// EndCall handles POST /api/calls/end.
func (h *CallHandler) EndCall(w http.ResponseWriter, r *http.Request) {
	input, ok := readJSON[usecase.EndCallInput](w, r)
	if !ok {
		return
	}

	out, err := h.calls.EndCall(r.Context(), input)
	if err != nil {
		writeFailure(w, h.logger, err, "Lead not found", "Failed to end call")
		return
	}

	middleware.RecordCallEnded()
	writeJSON(w, http.StatusOK, out)
}

// CallStatus handles GET /api/calls/{leadId}/status.
func (h *CallHandler) CallStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.calls.GetCallStatus(r.Context(), chi.URLParam(r, "leadId"))
	if err != nil {
		writeFailure(w, h.logger, err, "Call not found", "Failed to fetch call status")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// TwiML handles GET and POST /api/calls/twiml.
func (h *CallHandler) TwiML(w http.ResponseWriter, r *http.Request) {
	doc, err := h.twiml.Instructions()
	if err != nil {
		h.logger.Error("render twiml", zap.Error(err))
		http.Error(w, "Failed to render call instructions", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}
