package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/logger"
)

type LeadReader interface {
	ListLeads(ctx context.Context) ([]entity.LeadSummary, error)
	GetLead(ctx context.Context, id string) (*entity.Lead, error)
}

type LeadHandler struct {
	leads  LeadReader
	logger *zap.Logger
}

func NewLeadHandler(leads LeadReader, log *zap.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, logger: logger.OrNop(log)}
}

// ListLeads handles GET /api/leads.
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.ListLeads(r.Context())
	if err != nil {
		writeFailure(w, h.logger, err, "Lead not found", "Failed to fetch leads")
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// GetLead handles GET /api/leads/{id}.
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, h.logger, err, "Lead not found", "Failed to fetch lead details")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
