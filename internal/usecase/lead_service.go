package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/infra/queue"
	"github.com/xavierca1/leaddialer/internal/logger"
)

// lastContactLayout matches the millisecond ISO-8601 form the sheet already holds.
const lastContactLayout = "2006-01-02T15:04:05.000Z"

// LeadService is the single entry point for reading leads and driving calls.
type LeadService struct {
	Leads       entity.LeadRepositoryInterface
	Calls       CallProvider
	Sessions    entity.CallSessionRepository
	Events      queue.CallEventPublisher
	CallbackURL string

	now    func() time.Time
	logger *zap.Logger
}

// NewLeadService wires the service. events may be nil when no broker is configured.
func NewLeadService(
	leads entity.LeadRepositoryInterface,
	calls CallProvider,
	sessions entity.CallSessionRepository,
	events queue.CallEventPublisher,
	callbackURL string,
	log *zap.Logger,
) *LeadService {
	return &LeadService{
		Leads:       leads,
		Calls:       calls,
		Sessions:    sessions,
		Events:      events,
		CallbackURL: callbackURL,
		now:         time.Now,
		logger:      logger.OrNop(log).Named("lead_service"),
	}
}

func (s *LeadService) ListLeads(ctx context.Context) ([]entity.LeadSummary, error) {
	leads, err := s.Leads.FindAll(ctx)
	if err != nil {
		return nil, classify(err)
	}

	out := make([]entity.LeadSummary, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.Summary())
	}
	return out, nil
}

func (s *LeadService) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := s.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return lead, nil
}

// StartCall dials the lead's phone. An unknown lead never reaches the telephony provider.
func (s *LeadService) StartCall(ctx context.Context, input StartCallInput) (*StartCallOutput, error) {
	leadID := input.LeadID.String()

	lead, err := s.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, classify(err)
	}

	callSID, err := s.Calls.PlaceCall(ctx, lead.Phone, s.CallbackURL)
	if err != nil {
		return nil, classify(err)
	}

	log := s.logger.With(zap.String("lead_id", leadID), zap.String("call_sid", callSID))
	log.Info("call started")

	// the call is already ringing; a lost session only costs the status view
	if err := s.Sessions.Save(ctx, entity.NewCallSession(callSID, leadID, s.now().UTC())); err != nil {
		log.Warn("save call session", zap.Error(err))
	}

	s.publish(ctx, queue.CallEvent{
		Type:     queue.EventCallStarted,
		LeadID:   leadID,
		CallSID:  callSID,
		LeadName: lead.Name,
		Phone:    lead.Phone,
		Email:    lead.Email,
	})

	return &StartCallOutput{CallSID: callSID}, nil
}

// EndCall marks the lead contacted with the submitted notes. Two calls in a row
// leave the second call's notes.
func (s *LeadService) EndCall(ctx context.Context, input EndCallInput) (*EndCallOutput, error) {
	leadID := input.LeadID.String()
	now := s.now().UTC()

	lead, err := s.Leads.Update(ctx, leadID, entity.LeadUpdate{
		Status:      entity.LeadStatusContacted,
		LastContact: now.Format(lastContactLayout),
		Notes:       input.Notes,
	})
	if err != nil {
		return nil, classify(err)
	}

	log := s.logger.With(zap.String("lead_id", leadID), zap.Int("duration", input.Duration))

	callSID := ""
	session, err := s.Sessions.FindByLeadID(ctx, leadID)
	switch {
	case errors.Is(err, entity.ErrCallNotFound):
		log.Warn("call ended without a recorded session")
	case err != nil:
		log.Warn("load call session", zap.Error(err))
	default:
		callSID = session.CallSID
		session.End(input.Notes, input.Duration, now)
		if err := s.Sessions.Save(ctx, session); err != nil {
			log.Warn("save call session", zap.Error(err))
		}
	}

	log.Info("call ended", zap.String("call_sid", callSID))

	s.publish(ctx, queue.CallEvent{
		Type:     queue.EventCallEnded,
		LeadID:   leadID,
		CallSID:  callSID,
		LeadName: lead.Name,
		Phone:    lead.Phone,
		Email:    lead.Email,
		Notes:    input.Notes,
		Duration: input.Duration,
	})

	return &EndCallOutput{Success: true}, nil
}

func (s *LeadService) GetCallStatus(ctx context.Context, leadID string) (*CallStatusOutput, error) {
	session, err := s.Sessions.FindByLeadID(ctx, leadID)
	if err != nil {
		return nil, classify(err)
	}
	return &CallStatusOutput{
		LeadID:    session.LeadID,
		CallSID:   session.CallSID,
		Status:    session.Status,
		StartedAt: session.StartedAt,
		EndedAt:   session.EndedAt,
	}, nil
}

// publish never fails the request; the sheet is already updated.
func (s *LeadService) publish(ctx context.Context, event queue.CallEvent) {
	if s.Events == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	if err := s.Events.PublishCallEvent(ctx, event); err != nil {
		s.logger.Error("publish call event",
			zap.String("type", event.Type),
			zap.String("lead_id", event.LeadID),
			zap.Error(err),
		)
	}
}
