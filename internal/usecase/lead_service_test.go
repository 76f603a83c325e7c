package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/infra/queue"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindAll(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, update entity.LeadUpdate) (*entity.Lead, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

type MockCallProvider struct {
	mock.Mock
}

func (m *MockCallProvider) PlaceCall(ctx context.Context, to, callbackURL string) (string, error) {
	args := m.Called(ctx, to, callbackURL)
	return args.String(0), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, s *entity.CallSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByLeadID(ctx context.Context, leadID string) (*entity.CallSession, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CallSession), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCallEvent(ctx context.Context, event queue.CallEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const callbackURL = "https://dialer.example.com/api/calls/twiml"

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

type fixture struct {
	leads    *MockLeadRepository
	calls    *MockCallProvider
	sessions *MockSessionRepository
	events   *MockPublisher
	svc      *LeadService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		leads:    new(MockLeadRepository),
		calls:    new(MockCallProvider),
		sessions: new(MockSessionRepository),
		events:   new(MockPublisher),
	}
	f.svc = NewLeadService(f.leads, f.calls, f.sessions, f.events, callbackURL, nil)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func jane() *entity.Lead {
	return &entity.Lead{
		ID:       entity.PositionalID(1),
		Name:     "Jane Doe",
		Phone:    "+15551234567",
		Email:    "jane@example.com",
		Status:   entity.LeadStatusNew,
		Notes:    "prefers mornings",
		Position: 1,
	}
}

func TestListLeadsProjectsSummaries(t *testing.T) {
	f := newFixture(t)
	f.leads.On("FindAll", mock.Anything).Return([]*entity.Lead{jane()}, nil)

	out, err := f.svc.ListLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Jane Doe", out[0].Name)
	assert.Equal(t, "1", out[0].ID.String())
}

func TestListLeadsUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.leads.On("FindAll", mock.Anything).
		Return(nil, entity.NewUpstreamError("google-sheets", "read", errors.New("503")))

	_, err := f.svc.ListLeads(context.Background())
	assert.True(t, IsTechnicalError(err))
	assert.True(t, entity.IsUpstream(err))
}

func TestGetLeadNotFound(t *testing.T) {
	f := newFixture(t)
	f.leads.On("FindByID", mock.Anything, "99").Return(nil, entity.ErrLeadNotFound)

	_, err := f.svc.GetLead(context.Background(), "99")
	assert.True(t, IsDomainError(err))
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeLeadNotFound, de.Code)
}

func TestStartCall(t *testing.T) {
	f := newFixture(t)
	f.leads.On("FindByID", mock.Anything, "1").Return(jane(), nil)
	f.calls.On("PlaceCall", mock.Anything, "+15551234567", callbackURL).Return("CA123", nil)
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *entity.CallSession) bool {
		return s.CallSID == "CA123" && s.LeadID == "1" && s.Status == entity.CallStarted
	})).Return(nil)
	f.events.On("PublishCallEvent", mock.Anything, mock.MatchedBy(func(e queue.CallEvent) bool {
		return e.Type == queue.EventCallStarted && e.CallSID == "CA123" && e.OccurredAt.Equal(fixedNow)
	})).Return(nil)

	out, err := f.svc.StartCall(context.Background(), StartCallInput{LeadID: entity.ExplicitID("1")})
	require.NoError(t, err)
	assert.Equal(t, "CA123", out.CallSID)

	f.calls.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestStartCallUnknownLeadNeverDials(t *testing.T) {
	f := newFixture(t)
	f.leads.On("FindByID", mock.Anything, "42").Return(nil, entity.ErrLeadNotFound)

	_, err := f.svc.StartCall(context.Background(), StartCallInput{LeadID: entity.ExplicitID("42")})
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	f.calls.AssertNotCalled(t, "PlaceCall", mock.Anything, mock.Anything, mock.Anything)
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStartCallProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.leads.On("FindByID", mock.Anything, "1").Return(jane(), nil)
	f.calls.On("PlaceCall", mock.Anything, mock.Anything, mock.Anything).
		Return("", entity.NewUpstreamError("twilio", "create call", errors.New("invalid number")))

	_, err := f.svc.StartCall(context.Background(), StartCallInput{LeadID: entity.ExplicitID("1")})
	assert.True(t, IsTechnicalError(err))
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishCallEvent", mock.Anything, mock.Anything)
}

func TestStartCallSurvivesSessionAndPublishFailures(t *testing.T) {
	f := newFixture(t)
	f.leads.On("FindByID", mock.Anything, "1").Return(jane(), nil)
	f.calls.On("PlaceCall", mock.Anything, mock.Anything, mock.Anything).Return("CA1", nil)
	f.sessions.On("Save", mock.Anything, mock.Anything).Return(errors.New("cache full"))
	f.events.On("PublishCallEvent", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	out, err := f.svc.StartCall(context.Background(), StartCallInput{LeadID: entity.ExplicitID("1")})
	require.NoError(t, err)
	assert.Equal(t, "CA1", out.CallSID)
}

func TestStartCallWithoutBroker(t *testing.T) {
	f := newFixture(t)
	f.svc.Events = nil
	f.leads.On("FindByID", mock.Anything, "1").Return(jane(), nil)
	f.calls.On("PlaceCall", mock.Anything, mock.Anything, mock.Anything).Return("CA1", nil)
	f.sessions.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.StartCall(context.Background(), StartCallInput{LeadID: entity.ExplicitID("1")})
	assert.NoError(t, err)
}

func TestEndCall(t *testing.T) {
	f := newFixture(t)
	update := entity.LeadUpdate{
		Status:      entity.LeadStatusContacted,
		LastContact: "2024-05-01T10:30:00.000Z",
		Notes:       "left voicemail",
	}
	updated := jane()
	update.Apply(updated)

	session := entity.NewCallSession("CA123", "1", fixedNow.Add(-time.Minute))

	f.leads.On("Update", mock.Anything, "1", update).Return(updated, nil)
	f.sessions.On("FindByLeadID", mock.Anything, "1").Return(session, nil)
	f.sessions.On("Save", mock.Anything, session).Return(nil)
	f.events.On("PublishCallEvent", mock.Anything, mock.MatchedBy(func(e queue.CallEvent) bool {
		return e.Type == queue.EventCallEnded && e.CallSID == "CA123" && e.Notes == "left voicemail"
	})).Return(nil)

	out, err := f.svc.EndCall(context.Background(), EndCallInput{
		LeadID: entity.ExplicitID("1"),
		Notes:  "left voicemail",
	})
	require.NoError(t, err)
	assert.True(t, out.Success)

	assert.Equal(t, entity.CallEnded, session.Status)
	assert.Equal(t, "left voicemail", session.Notes)
	require.NotNil(t, session.EndedAt)
	assert.Equal(t, fixedNow, *session.EndedAt)
	f.events.AssertExpectations(t)
}

func TestEndCallWithoutSession(t *testing.T) {
	f := newFixture(t)
	f.leads.On("Update", mock.Anything, "1", mock.Anything).Return(jane(), nil)
	f.sessions.On("FindByLeadID", mock.Anything, "1").Return(nil, entity.ErrCallNotFound)
	f.events.On("PublishCallEvent", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.EndCall(context.Background(), EndCallInput{LeadID: entity.ExplicitID("1"), Notes: "n"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestEndCallUnknownLead(t *testing.T) {
	f := newFixture(t)
	f.leads.On("Update", mock.Anything, "7", mock.Anything).Return(nil, entity.ErrLeadNotFound)

	_, err := f.svc.EndCall(context.Background(), EndCallInput{LeadID: entity.ExplicitID("7")})
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	f.sessions.AssertNotCalled(t, "FindByLeadID", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishCallEvent", mock.Anything, mock.Anything)
}

func TestGetCallStatus(t *testing.T) {
	f := newFixture(t)
	f.sessions.On("FindByLeadID", mock.Anything, "1").Return(entity.NewCallSession("CA1", "1", fixedNow), nil)

	out, err := f.svc.GetCallStatus(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "CA1", out.CallSID)
	assert.Equal(t, entity.CallStarted, out.Status)
	assert.Nil(t, out.EndedAt)
}

func TestGetCallStatusMissing(t *testing.T) {
	f := newFixture(t)
	f.sessions.On("FindByLeadID", mock.Anything, "1").Return(nil, entity.ErrCallNotFound)

	_, err := f.svc.GetCallStatus(context.Background(), "1")
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeCallNotFound, de.Code)
}
