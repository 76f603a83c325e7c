package usecase

import (
	"time"

	"github.com/xavierca1/leaddialer/internal/entity"
)

type StartCallInput struct {
	LeadID entity.LeadID `json:"leadId"`
}

type StartCallOutput struct {
	CallSID string `json:"callSid"`
}

type EndCallInput struct {
	LeadID   entity.LeadID `json:"leadId"`
	Notes    string        `json:"notes"`
	Duration int           `json:"duration"`
}

type EndCallOutput struct {
	Success bool `json:"success"`
}

type CallStatusOutput struct {
	LeadID    string            `json:"leadId"`
	CallSID   string            `json:"callSid"`
	Status    entity.CallStatus `json:"status"`
	StartedAt time.Time         `json:"startedAt"`
	EndedAt   *time.Time        `json:"endedAt,omitempty"`
}
