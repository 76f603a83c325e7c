package entity

import (
	"context"
	"time"
)

type CallStatus string

const (
	CallStarted CallStatus = "started"
	CallEnded   CallStatus = "ended"
)

// CallSession is the server-side record of one outbound call to a lead.
type CallSession struct {
	CallSID         string     `json:"callSid"`
	LeadID          string     `json:"leadId"`
	Status          CallStatus `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	DurationSeconds int        `json:"duration"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
}

func NewCallSession(callSID, leadID string, now time.Time) *CallSession {
	return &CallSession{
		CallSID:   callSID,
		LeadID:    leadID,
		Status:    CallStarted,
		StartedAt: now,
	}
}

// End marks the session finished. duration is whatever the client submitted.
func (s *CallSession) End(notes string, duration int, now time.Time) {
	s.Status = CallEnded
	s.Notes = notes
	s.DurationSeconds = duration
	s.EndedAt = &now
}

// CallSessionRepository keeps the latest call session per lead.
type CallSessionRepository interface {
	Save(ctx context.Context, s *CallSession) error
	FindByLeadID(ctx context.Context, leadID string) (*CallSession, error)
}
